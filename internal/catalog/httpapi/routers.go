package httpapi

import "net/http"

func NewRouter(h *Handler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", h.Health)

	// GET (search) + POST /videos
	mux.HandleFunc("/videos", h.Videos)

	// /videos/{id} and its progress/favorite/timestamps sub-resources.
	// Trailing slash so the handler can TrimPrefix("/videos/").
	mux.HandleFunc("/videos/", h.VideoByID)

	mux.HandleFunc("/categories", h.Categories)
	mux.HandleFunc("/categories/", h.CategoryByID)

	mux.HandleFunc("/stats", h.Stats)
	mux.HandleFunc("/scan", h.Scan)

	return mux
}
