// Package repository defines the storage port consumed by the catalog
// service and the importer, plus an in-memory implementation.
package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/matvault/matvault/internal/catalog/models"
)

type VideoStore interface {
	CreateVideo(ctx context.Context, v *models.Video) error
	VideoByID(ctx context.Context, id uuid.UUID) (*models.Video, error)
	UpdateVideo(ctx context.Context, v *models.Video) error
	// DeleteVideo removes the video and every timestamp it owns.
	DeleteVideo(ctx context.Context, id uuid.UUID) error
	ListVideos(ctx context.Context) ([]models.Video, error)
	// VideoByLocalPath is an exact-equality lookup; models.ErrNotFound
	// when no video has that local path.
	VideoByLocalPath(ctx context.Context, path string) (*models.Video, error)
}

type CategoryStore interface {
	CreateCategory(ctx context.Context, c *models.Category) error
	CategoryByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	UpdateCategory(ctx context.Context, c *models.Category) error
	// DeleteCategory deletes the whole subtree rooted at id and sets the
	// category reference to nil on videos that pointed into it.
	DeleteCategory(ctx context.Context, id uuid.UUID) error
	ListCategories(ctx context.Context) ([]models.Category, error)
	// CategoryByNameContains is a case-insensitive substring match over
	// category names; first match wins.
	CategoryByNameContains(ctx context.Context, s string) (*models.Category, error)
}

type TagStore interface {
	CreateTag(ctx context.Context, t *models.Tag) error
	TagByID(ctx context.Context, id uuid.UUID) (*models.Tag, error)
	ListTags(ctx context.Context) ([]models.Tag, error)
	// DeleteTag removes the tag and strips it from every video.
	DeleteTag(ctx context.Context, id uuid.UUID) error
	TagVideo(ctx context.Context, videoID, tagID uuid.UUID) error
	UntagVideo(ctx context.Context, videoID, tagID uuid.UUID) error
}

type TimestampStore interface {
	AddTimestamp(ctx context.Context, ts *models.VideoTimestamp) error
	DeleteTimestamp(ctx context.Context, id uuid.UUID) error
}

// Batch stages inserts, updates and events, then persists them all
// atomically on Commit. Nothing staged is visible to reads before
// Commit, and nothing survives a failed Commit.
type Batch interface {
	CreateVideo(v *models.Video)
	CreateCategory(c *models.Category)
	UpdateVideo(v *models.Video)
	RecordEvent(e models.DomainEvent)
	Commit(ctx context.Context) error
	Rollback() error
}

// Store is the full storage port.
type Store interface {
	VideoStore
	CategoryStore
	TagStore
	TimestampStore
	Begin(ctx context.Context) (Batch, error)
}
