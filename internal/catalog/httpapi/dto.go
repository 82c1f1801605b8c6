package httpapi

import (
	"time"

	"github.com/google/uuid"

	"github.com/matvault/matvault/internal/catalog/aggregate"
	"github.com/matvault/matvault/internal/catalog/domain"
	"github.com/matvault/matvault/internal/catalog/importer"
	"github.com/matvault/matvault/internal/catalog/models"
	"github.com/matvault/matvault/internal/catalog/service"
)

type CreateVideoRequest struct {
	Title       string                `json:"title"`
	Instructor  *string               `json:"instructor,omitempty"`
	Description *string               `json:"description,omitempty"`
	SourceType  domain.SourceType     `json:"source_type,omitempty"`
	SourceURL   *string               `json:"source_url,omitempty"`
	LocalPath   *string               `json:"local_path,omitempty"`
	Duration    *float64              `json:"duration,omitempty"`
	CategoryID  *uuid.UUID            `json:"category_id,omitempty"`
	GiType      domain.GiType         `json:"gi_type,omitempty"`
	Level       domain.TechniqueLevel `json:"level,omitempty"`
	VideoType   domain.VideoType      `json:"video_type,omitempty"`
}

type SetProgressRequest struct {
	Status domain.ProgressStatus `json:"status"`
}

type AddTimestampRequest struct {
	Time  float64 `json:"time"`
	Label string  `json:"label"`
}

type CreateCategoryRequest struct {
	Name      string     `json:"name"`
	Icon      string     `json:"icon,omitempty"`
	ColorName string     `json:"color_name,omitempty"`
	ParentID  *uuid.UUID `json:"parent_id,omitempty"`
	SortOrder int        `json:"sort_order,omitempty"`
}

type TimestampResponse struct {
	ID            uuid.UUID `json:"id"`
	Time          float64   `json:"time"`
	Label         string    `json:"label"`
	FormattedTime string    `json:"formatted_time"`
}

type TagResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	ColorName string    `json:"color_name"`
}

type VideoResponse struct {
	ID               uuid.UUID             `json:"id"`
	Title            string                `json:"title"`
	Instructor       *string               `json:"instructor,omitempty"`
	Description      *string               `json:"description,omitempty"`
	SourceType       domain.SourceType     `json:"source_type"`
	SourceURL        *string               `json:"source_url,omitempty"`
	LocalPath        *string               `json:"local_path,omitempty"`
	Duration         *float64              `json:"duration,omitempty"`
	CategoryID       *uuid.UUID            `json:"category_id,omitempty"`
	ProgressStatus   domain.ProgressStatus `json:"progress_status"`
	IsFavorite       bool                  `json:"is_favorite"`
	Notes            *string               `json:"notes,omitempty"`
	LastWatched      *time.Time            `json:"last_watched,omitempty"`
	DateAdded        time.Time             `json:"date_added"`
	GiType           domain.GiType         `json:"gi_type"`
	Level            domain.TechniqueLevel `json:"level"`
	VideoType        domain.VideoType      `json:"video_type"`
	AvailableOffline bool                  `json:"available_offline"`
	Tags             []TagResponse         `json:"tags,omitempty"`
	Timestamps       []TimestampResponse   `json:"timestamps,omitempty"`
}

type CategoryResponse struct {
	ID                 uuid.UUID  `json:"id"`
	Name               string     `json:"name"`
	Icon               string     `json:"icon"`
	ColorName          string     `json:"color_name"`
	ParentID           *uuid.UUID `json:"parent_id,omitempty"`
	SortOrder          int        `json:"sort_order"`
	VideoCount         int        `json:"video_count"`
	ProgressPercentage float64    `json:"progress_percentage"`
}

type StatsResponse struct {
	Total                int     `json:"total"`
	NotSeen              int     `json:"not_seen"`
	Seen                 int     `json:"seen"`
	InProgress           int     `json:"in_progress"`
	Mastered             int     `json:"mastered"`
	ToReview             int     `json:"to_review"`
	CompletionPercentage float64 `json:"completion_percentage"`
}

type ScanResponse struct {
	Courses    int                `json:"courses"`
	Skipped    int                `json:"skipped"`
	TotalAdded int                `json:"total_added"`
	PerCourse  []CourseScanResult `json:"per_course,omitempty"`
}

type CourseScanResult struct {
	Folder   string `json:"folder"`
	Category string `json:"category"`
	Title    string `json:"title"`
	Creator  string `json:"creator"`
	Added    int    `json:"added"`
}

func toVideoResponse(v *models.Video) VideoResponse {
	resp := VideoResponse{
		ID:               v.ID,
		Title:            v.Title,
		Instructor:       v.Instructor,
		Description:      v.Description,
		SourceType:       v.SourceType,
		SourceURL:        v.SourceURL,
		LocalPath:        v.LocalPath,
		Duration:         v.Duration,
		CategoryID:       v.CategoryID,
		ProgressStatus:   v.ProgressStatus,
		IsFavorite:       v.IsFavorite,
		Notes:            v.Notes,
		LastWatched:      v.LastWatched,
		DateAdded:        v.DateAdded,
		GiType:           v.GiType,
		Level:            v.Level,
		VideoType:        v.VideoType,
		AvailableOffline: v.IsAvailableOffline(),
	}
	for _, t := range v.Tags {
		resp.Tags = append(resp.Tags, TagResponse{ID: t.ID, Name: t.Name, ColorName: t.ColorName})
	}
	for i := range v.Timestamps {
		ts := &v.Timestamps[i]
		resp.Timestamps = append(resp.Timestamps, TimestampResponse{
			ID:            ts.ID,
			Time:          ts.Time,
			Label:         ts.Label,
			FormattedTime: ts.FormattedTime(),
		})
	}
	return resp
}

func toCategoryResponse(c service.CategorySummary) CategoryResponse {
	return CategoryResponse{
		ID:                 c.ID,
		Name:               c.Name,
		Icon:               c.Icon,
		ColorName:          c.ColorName,
		ParentID:           c.ParentID,
		SortOrder:          c.SortOrder,
		VideoCount:         c.VideoCount,
		ProgressPercentage: c.ProgressPercentage,
	}
}

func toStatsResponse(s aggregate.ProgressStats) StatsResponse {
	return StatsResponse{
		Total:                s.Total,
		NotSeen:              s.NotSeen,
		Seen:                 s.Seen,
		InProgress:           s.InProgress,
		Mastered:             s.Mastered,
		ToReview:             s.ToReview,
		CompletionPercentage: s.CompletionPercentage(),
	}
}

func toScanResponse(r *importer.ScanReport) ScanResponse {
	resp := ScanResponse{
		Courses:    r.Courses,
		Skipped:    r.Skipped,
		TotalAdded: r.TotalAdded,
	}
	for _, c := range r.PerCourse {
		resp.PerCourse = append(resp.PerCourse, CourseScanResult{
			Folder:   c.Folder,
			Category: c.Category,
			Title:    c.Title,
			Creator:  c.Creator,
			Added:    c.Added,
		})
	}
	return resp
}
