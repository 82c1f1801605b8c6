package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/matvault/matvault/internal/catalog/importer"
	"github.com/matvault/matvault/internal/catalog/models"
	"github.com/matvault/matvault/internal/catalog/service"
)

type Handler struct {
	svc *service.Service
	imp *importer.Importer
}

func New(svc *service.Service, imp *importer.Importer) *Handler {
	return &Handler{svc: svc, imp: imp}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorJSON(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Videos serves /videos: search on GET, create on POST.
func (h *Handler) Videos(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.searchVideos(w, r)
	case http.MethodPost:
		h.createVideo(w, r)
	default:
		writeErrorJSON(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) searchVideos(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	filter := service.Filter(r.URL.Query().Get("filter"))

	videos, err := h.svc.Search(r.Context(), query, filter)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]VideoResponse, 0, len(videos))
	for i := range videos {
		out = append(out, toVideoResponse(&videos[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) createVideo(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req CreateVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "invalid json body")
		return
	}

	v, err := h.svc.CreateVideo(r.Context(), service.NewVideoParams{
		Title:       req.Title,
		Instructor:  req.Instructor,
		Description: req.Description,
		SourceType:  req.SourceType,
		SourceURL:   req.SourceURL,
		LocalPath:   req.LocalPath,
		Duration:    req.Duration,
		CategoryID:  req.CategoryID,
		GiType:      req.GiType,
		Level:       req.Level,
		VideoType:   req.VideoType,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toVideoResponse(v))
}

// VideoByID serves /videos/{id} and its sub-resources
// (/progress, /favorite, /timestamps).
func (h *Handler) VideoByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/videos/")
	if rest == "" || rest == r.URL.Path {
		writeErrorJSON(w, http.StatusBadRequest, "missing id")
		return
	}

	idStr, sub, _ := strings.Cut(rest, "/")
	id, err := uuid.Parse(idStr)
	if err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "invalid id")
		return
	}

	switch sub {
	case "":
		switch r.Method {
		case http.MethodGet:
			v, err := h.svc.GetVideo(r.Context(), id)
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, toVideoResponse(v))
		case http.MethodDelete:
			if err := h.svc.DeleteVideo(r.Context(), id); err != nil {
				writeError(w, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		default:
			writeErrorJSON(w, http.StatusMethodNotAllowed, "method not allowed")
		}

	case "progress":
		if r.Method != http.MethodPatch {
			writeErrorJSON(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		defer r.Body.Close()
		var req SetProgressRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErrorJSON(w, http.StatusBadRequest, "invalid json body")
			return
		}
		v, err := h.svc.SetProgress(r.Context(), id, req.Status)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toVideoResponse(v))

	case "favorite":
		if r.Method != http.MethodPatch {
			writeErrorJSON(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		v, err := h.svc.ToggleFavorite(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toVideoResponse(v))

	case "timestamps":
		if r.Method != http.MethodPost {
			writeErrorJSON(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		defer r.Body.Close()
		var req AddTimestampRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErrorJSON(w, http.StatusBadRequest, "invalid json body")
			return
		}
		ts, err := h.svc.AddTimestamp(r.Context(), id, req.Time, req.Label)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, TimestampResponse{
			ID:            ts.ID,
			Time:          ts.Time,
			Label:         ts.Label,
			FormattedTime: ts.FormattedTime(),
		})

	default:
		writeErrorJSON(w, http.StatusNotFound, "not found")
	}
}

// Categories serves /categories: summaries on GET, create on POST.
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		summaries, err := h.svc.CategorySummaries(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		out := make([]CategoryResponse, 0, len(summaries))
		for _, c := range summaries {
			out = append(out, toCategoryResponse(c))
		}
		writeJSON(w, http.StatusOK, out)

	case http.MethodPost:
		defer r.Body.Close()
		var req CreateCategoryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErrorJSON(w, http.StatusBadRequest, "invalid json body")
			return
		}
		c, err := h.svc.CreateCategory(r.Context(), service.NewCategoryParams{
			Name:      req.Name,
			Icon:      req.Icon,
			ColorName: req.ColorName,
			ParentID:  req.ParentID,
			SortOrder: req.SortOrder,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, CategoryResponse{
			ID:        c.ID,
			Name:      c.Name,
			Icon:      c.Icon,
			ColorName: c.ColorName,
			ParentID:  c.ParentID,
			SortOrder: c.SortOrder,
		})

	default:
		writeErrorJSON(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// CategoryByID serves /categories/{id}.
func (h *Handler) CategoryByID(w http.ResponseWriter, r *http.Request) {
	idStr := strings.TrimPrefix(r.URL.Path, "/categories/")
	if idStr == "" || idStr == r.URL.Path {
		writeErrorJSON(w, http.StatusBadRequest, "missing id")
		return
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "invalid id")
		return
	}

	if r.Method != http.MethodDelete {
		writeErrorJSON(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if err := h.svc.DeleteCategory(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorJSON(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toStatsResponse(stats))
}

// Scan triggers a synchronous import run.
func (h *Handler) Scan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErrorJSON(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if h.imp == nil {
		writeErrorJSON(w, http.StatusServiceUnavailable, "importer not configured")
		return
	}
	report, err := h.imp.Scan(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toScanResponse(report))
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		writeErrorJSON(w, http.StatusNotFound, "not found")
	case errors.Is(err, models.ErrInvalidArgument):
		writeErrorJSON(w, http.StatusBadRequest, "invalid argument")
	case errors.Is(err, models.ErrConflict):
		writeErrorJSON(w, http.StatusConflict, "conflict")
	case errors.Is(err, models.ErrCycle):
		writeErrorJSON(w, http.StatusUnprocessableEntity, "category cycle")
	default:
		writeErrorJSON(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErrorJSON(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
