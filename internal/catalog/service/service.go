// Package service owns the catalog operations: entity lifecycle,
// progress tracking, tagging, cascade and nullify delete semantics, and
// the search/grouping queries the library screens consume.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/matvault/matvault/internal/catalog/aggregate"
	"github.com/matvault/matvault/internal/catalog/domain"
	"github.com/matvault/matvault/internal/catalog/models"
	"github.com/matvault/matvault/internal/catalog/repository"
)

type Service struct {
	store repository.Store
	clock func() time.Time
	idGen func() uuid.UUID
}

func New(store repository.Store) *Service {
	return &Service{
		store: store,
		clock: time.Now,
		idGen: uuid.New,
	}
}

// NewVideoParams carries the caller-supplied fields of a new video.
// Zero values fall back to the catalog defaults.
type NewVideoParams struct {
	Title       string
	Instructor  *string
	Description *string
	SourceType  domain.SourceType
	SourceURL   *string
	LocalPath   *string
	Duration    *float64
	CategoryID  *uuid.UUID
	GiType      domain.GiType
	Level       domain.TechniqueLevel
	VideoType   domain.VideoType
}

// CreateVideo validates the params, fills in defaults and invariants,
// and persists the video together with its VideoAdded event.
func (s *Service) CreateVideo(ctx context.Context, p NewVideoParams) (*models.Video, error) {
	if p.Title == "" {
		return nil, models.ErrInvalidArgument
	}
	if p.Duration != nil && *p.Duration < 0 {
		return nil, models.ErrInvalidArgument
	}
	if p.SourceType == "" {
		p.SourceType = domain.Streaming
	}
	if p.GiType == "" {
		p.GiType = domain.BothGi
	}
	if p.Level == "" {
		p.Level = domain.Beginner
	}
	if p.VideoType == "" {
		p.VideoType = domain.Instructional
	}
	if !p.SourceType.Valid() || !p.GiType.Valid() || !p.Level.Valid() || !p.VideoType.Valid() {
		return nil, models.ErrInvalidArgument
	}
	if p.CategoryID != nil {
		if _, err := s.store.CategoryByID(ctx, *p.CategoryID); err != nil {
			return nil, err
		}
	}

	v := &models.Video{
		ID:             s.idGen(),
		Title:          p.Title,
		Instructor:     p.Instructor,
		Description:    p.Description,
		SourceType:     p.SourceType,
		SourceURL:      p.SourceURL,
		LocalPath:      p.LocalPath,
		Duration:       p.Duration,
		CategoryID:     p.CategoryID,
		ProgressStatus: domain.NotSeen,
		DateAdded:      s.clock(),
		GiType:         p.GiType,
		Level:          p.Level,
		VideoType:      p.VideoType,
	}

	batch, err := s.store.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin batch: %w", err)
	}
	defer batch.Rollback()

	batch.CreateVideo(v)
	batch.RecordEvent(models.NewVideoAdded(v.ID, v.Title, v.SourceType))
	if err := batch.Commit(ctx); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *Service) GetVideo(ctx context.Context, id uuid.UUID) (*models.Video, error) {
	if id == uuid.Nil {
		return nil, models.ErrInvalidArgument
	}
	return s.store.VideoByID(ctx, id)
}

func (s *Service) ListVideos(ctx context.Context) ([]models.Video, error) {
	return s.store.ListVideos(ctx)
}

// DeleteVideo removes the video; its timestamps go with it, everything
// else (category, tags) is untouched.
func (s *Service) DeleteVideo(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return models.ErrInvalidArgument
	}
	return s.store.DeleteVideo(ctx, id)
}

// SetProgress moves a video's progress status and records the change in
// the same commit.
func (s *Service) SetProgress(ctx context.Context, id uuid.UUID, to domain.ProgressStatus) (*models.Video, error) {
	if id == uuid.Nil || !to.Valid() {
		return nil, models.ErrInvalidArgument
	}

	v, err := s.store.VideoByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if v.ProgressStatus == to {
		return v, nil
	}

	from := v.ProgressStatus
	v.ProgressStatus = to

	batch, err := s.store.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin batch: %w", err)
	}
	defer batch.Rollback()

	batch.UpdateVideo(v)
	batch.RecordEvent(models.NewProgressChanged(v.ID, from, to))
	if err := batch.Commit(ctx); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *Service) ToggleFavorite(ctx context.Context, id uuid.UUID) (*models.Video, error) {
	v, err := s.store.VideoByID(ctx, id)
	if err != nil {
		return nil, err
	}
	v.IsFavorite = !v.IsFavorite
	if err := s.store.UpdateVideo(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

// MarkWatched stamps the video with the current time.
func (s *Service) MarkWatched(ctx context.Context, id uuid.UUID) (*models.Video, error) {
	v, err := s.store.VideoByID(ctx, id)
	if err != nil {
		return nil, err
	}
	now := s.clock()
	v.LastWatched = &now
	if err := s.store.UpdateVideo(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *Service) UpdateNotes(ctx context.Context, id uuid.UUID, notes *string) (*models.Video, error) {
	v, err := s.store.VideoByID(ctx, id)
	if err != nil {
		return nil, err
	}
	v.Notes = notes
	if err := s.store.UpdateVideo(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *Service) AddTimestamp(ctx context.Context, videoID uuid.UUID, at float64, label string) (*models.VideoTimestamp, error) {
	if videoID == uuid.Nil || at < 0 {
		return nil, models.ErrInvalidArgument
	}
	ts := &models.VideoTimestamp{
		ID:      s.idGen(),
		VideoID: videoID,
		Time:    at,
		Label:   label,
	}
	if err := s.store.AddTimestamp(ctx, ts); err != nil {
		return nil, err
	}
	return ts, nil
}

func (s *Service) DeleteTimestamp(ctx context.Context, id uuid.UUID) error {
	return s.store.DeleteTimestamp(ctx, id)
}

// Categories

type NewCategoryParams struct {
	Name      string
	Icon      string
	ColorName string
	ParentID  *uuid.UUID
	SortOrder int
}

func (s *Service) CreateCategory(ctx context.Context, p NewCategoryParams) (*models.Category, error) {
	if p.Name == "" {
		return nil, models.ErrInvalidArgument
	}
	if p.Icon == "" {
		p.Icon = "folder.fill"
	}
	if p.ColorName == "" {
		p.ColorName = "blue"
	}
	if p.ParentID != nil {
		if _, err := s.store.CategoryByID(ctx, *p.ParentID); err != nil {
			return nil, err
		}
	}

	c := &models.Category{
		ID:        s.idGen(),
		Name:      p.Name,
		Icon:      p.Icon,
		ColorName: p.ColorName,
		ParentID:  p.ParentID,
		SortOrder: p.SortOrder,
	}
	if err := s.store.CreateCategory(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	if id == uuid.Nil {
		return nil, models.ErrInvalidArgument
	}
	return s.store.CategoryByID(ctx, id)
}

func (s *Service) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.store.ListCategories(ctx)
}

// DeleteCategory removes the category and its whole subtree. Videos
// that pointed into the subtree lose their category reference but are
// never deleted.
func (s *Service) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return models.ErrInvalidArgument
	}
	return s.store.DeleteCategory(ctx, id)
}

// SetParentCategory reparents a category. The new parent chain is
// checked before writing: making a category its own ancestor would hang
// every recursive walk, so it is rejected with ErrCycle.
func (s *Service) SetParentCategory(ctx context.Context, id uuid.UUID, parentID *uuid.UUID) (*models.Category, error) {
	if id == uuid.Nil {
		return nil, models.ErrInvalidArgument
	}
	c, err := s.store.CategoryByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if parentID != nil {
		if *parentID == id {
			return nil, models.ErrCycle
		}
		ancestor, err := s.store.CategoryByID(ctx, *parentID)
		if err != nil {
			return nil, err
		}
		for ancestor.ParentID != nil {
			if *ancestor.ParentID == id {
				return nil, models.ErrCycle
			}
			ancestor, err = s.store.CategoryByID(ctx, *ancestor.ParentID)
			if err != nil {
				return nil, err
			}
		}
	}

	c.ParentID = parentID
	if err := s.store.UpdateCategory(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// CategorySummary is a category with its derived numbers, computed on
// demand over a snapshot of the catalog.
type CategorySummary struct {
	models.Category
	VideoCount         int
	ProgressPercentage float64
}

// CategorySummaries returns every category with recursive video count
// and mastery percentage, in sort order.
func (s *Service) CategorySummaries(ctx context.Context) ([]CategorySummary, error) {
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	videos, err := s.store.ListVideos(ctx)
	if err != nil {
		return nil, err
	}

	tree := aggregate.NewTree(categories, videos)
	out := make([]CategorySummary, 0, len(categories))
	for _, c := range categories {
		out = append(out, CategorySummary{
			Category:           c,
			VideoCount:         tree.VideoCount(c.ID),
			ProgressPercentage: tree.ProgressPercentage(c.ID),
		})
	}
	return out, nil
}

// Stats partitions the whole library by progress status.
func (s *Service) Stats(ctx context.Context) (aggregate.ProgressStats, error) {
	videos, err := s.store.ListVideos(ctx)
	if err != nil {
		return aggregate.ProgressStats{}, err
	}
	return aggregate.Stats(videos), nil
}

// Tags

func (s *Service) CreateTag(ctx context.Context, name, colorName string) (*models.Tag, error) {
	if name == "" {
		return nil, models.ErrInvalidArgument
	}
	if colorName == "" {
		colorName = "blue"
	}
	t := &models.Tag{
		ID:        s.idGen(),
		Name:      name,
		ColorName: colorName,
	}
	if err := s.store.CreateTag(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) ListTags(ctx context.Context) ([]models.Tag, error) {
	return s.store.ListTags(ctx)
}

// DeleteTag removes the tag everywhere; tagged videos stay.
func (s *Service) DeleteTag(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return models.ErrInvalidArgument
	}
	return s.store.DeleteTag(ctx, id)
}

func (s *Service) TagVideo(ctx context.Context, videoID, tagID uuid.UUID) error {
	return s.store.TagVideo(ctx, videoID, tagID)
}

func (s *Service) UntagVideo(ctx context.Context, videoID, tagID uuid.UUID) error {
	return s.store.UntagVideo(ctx, videoID, tagID)
}

// Bootstrap installs the predefined categories that are not present
// yet, keyed by their categoryType marker. Safe to run on every start.
func (s *Service) Bootstrap(ctx context.Context) error {
	existing, err := s.store.ListCategories(ctx)
	if err != nil {
		return err
	}
	seeded := make(map[string]struct{})
	for _, c := range existing {
		if c.CategoryType != nil {
			seeded[*c.CategoryType] = struct{}{}
		}
	}

	for i, seed := range domain.DefaultCategories {
		if _, ok := seeded[seed.Name]; ok {
			continue
		}
		marker := seed.Name
		c := &models.Category{
			ID:           s.idGen(),
			Name:         seed.Name,
			Icon:         seed.Icon,
			ColorName:    seed.Color,
			SortOrder:    i,
			CategoryType: &marker,
		}
		if err := s.store.CreateCategory(ctx, c); err != nil {
			return fmt.Errorf("seed category %q: %w", seed.Name, err)
		}
	}
	return nil
}
