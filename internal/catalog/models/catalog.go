package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/matvault/matvault/internal/catalog/domain"
)

// Video is a catalogued clip.
type Video struct {
	ID             uuid.UUID             `db:"id"`
	Title          string                `db:"title"`
	Instructor     *string               `db:"instructor"`
	Description    *string               `db:"description"`
	SourceType     domain.SourceType     `db:"source_type"`
	SourceURL      *string               `db:"source_url"`
	LocalPath      *string               `db:"local_path"`
	ThumbnailPath  *string               `db:"thumbnail_path"`
	Duration       *float64              `db:"duration"`
	CategoryID     *uuid.UUID            `db:"category_id"`
	ProgressStatus domain.ProgressStatus `db:"progress_status"`
	IsFavorite     bool                  `db:"is_favorite"`
	Notes          *string               `db:"notes"`
	LastWatched    *time.Time            `db:"last_watched"`
	DateAdded      time.Time             `db:"date_added"`
	GiType         domain.GiType         `db:"gi_type"`
	Level          domain.TechniqueLevel `db:"level"`
	VideoType      domain.VideoType      `db:"video_type"`

	// Loaded by the repository, not columns of the videos table.
	Tags       []Tag            `db:"-"`
	Timestamps []VideoTimestamp `db:"-"`
}

// IsAvailableOffline is recomputed from the source type, never stored.
func (v *Video) IsAvailableOffline() bool {
	return v.SourceType.AvailableOffline()
}

// FormattedDuration renders the duration as minutes:seconds, or "--:--"
// when the duration is unknown.
func (v *Video) FormattedDuration() string {
	if v.Duration == nil {
		return "--:--"
	}
	return formatSeconds(*v.Duration)
}

// Category is a node in the tree used to organize videos. Parent and
// children are linked by id only; child lists are derived by lookup
// (see aggregate.Tree), never maintained as a second live pointer.
type Category struct {
	ID           uuid.UUID  `db:"id"`
	Name         string     `db:"name"`
	Icon         string     `db:"icon"`
	ColorName    string     `db:"color_name"`
	ParentID     *uuid.UUID `db:"parent_id"`
	SortOrder    int        `db:"sort_order"`
	CategoryType *string    `db:"category_type"`
}

// IsRoot reports whether this category has no parent.
func (c *Category) IsRoot() bool {
	return c.ParentID == nil
}

// Tag is a labeled attribute, typically an instructor name.
type Tag struct {
	ID        uuid.UUID `db:"id"`
	Name      string    `db:"name"`
	ColorName string    `db:"color_name"`
}

// VideoTimestamp is a named point-in-time marker within a video. It is
// owned by its video: deleting the video deletes its timestamps.
type VideoTimestamp struct {
	ID      uuid.UUID `db:"id"`
	VideoID uuid.UUID `db:"video_id"`
	Time    float64   `db:"time"`
	Label   string    `db:"label"`
}

// FormattedTime renders the marker as minutes:seconds, floor-truncated.
func (t *VideoTimestamp) FormattedTime() string {
	return formatSeconds(t.Time)
}

func formatSeconds(secs float64) string {
	total := int(secs)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
