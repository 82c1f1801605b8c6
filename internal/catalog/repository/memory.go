package repository

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/matvault/matvault/internal/catalog/models"
)

// MemoryStore is the in-memory implementation of Store. It guards all
// state with one RWMutex and hands out defensive copies so callers
// cannot mutate stored records behind its back.
type MemoryStore struct {
	mu         sync.RWMutex
	videos     map[uuid.UUID]*models.Video
	categories map[uuid.UUID]*models.Category
	tags       map[uuid.UUID]*models.Tag
	timestamps map[uuid.UUID]*models.VideoTimestamp
	videoTags  map[uuid.UUID]map[uuid.UUID]struct{}
	events     []models.DomainEvent
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		videos:     make(map[uuid.UUID]*models.Video),
		categories: make(map[uuid.UUID]*models.Category),
		tags:       make(map[uuid.UUID]*models.Tag),
		timestamps: make(map[uuid.UUID]*models.VideoTimestamp),
		videoTags:  make(map[uuid.UUID]map[uuid.UUID]struct{}),
	}
}

// Events returns the domain events recorded so far. Memory mode has no
// outbox table; tests read them from here.
func (s *MemoryStore) Events() []models.DomainEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.DomainEvent, len(s.events))
	copy(out, s.events)
	return out
}

// Videos

func (s *MemoryStore) CreateVideo(ctx context.Context, v *models.Video) error {
	if v == nil || v.ID == uuid.Nil || v.Title == "" {
		return models.ErrInvalidArgument
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertVideoLocked(v)
}

func (s *MemoryStore) insertVideoLocked(v *models.Video) error {
	if _, exists := s.videos[v.ID]; exists {
		return models.ErrConflict
	}
	cp := *v
	cp.Tags = nil
	cp.Timestamps = nil
	s.videos[v.ID] = &cp
	return nil
}

func (s *MemoryStore) VideoByID(ctx context.Context, id uuid.UUID) (*models.Video, error) {
	if id == uuid.Nil {
		return nil, models.ErrInvalidArgument
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.videos[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return s.loadVideoLocked(v), nil
}

func (s *MemoryStore) UpdateVideo(ctx context.Context, v *models.Video) error {
	if v == nil || v.ID == uuid.Nil || v.Title == "" {
		return models.ErrInvalidArgument
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateVideoLocked(v)
}

func (s *MemoryStore) updateVideoLocked(v *models.Video) error {
	if _, ok := s.videos[v.ID]; !ok {
		return models.ErrNotFound
	}
	cp := *v
	cp.Tags = nil
	cp.Timestamps = nil
	s.videos[v.ID] = &cp
	return nil
}

func (s *MemoryStore) DeleteVideo(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return models.ErrInvalidArgument
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.videos[id]; !ok {
		return models.ErrNotFound
	}
	delete(s.videos, id)
	delete(s.videoTags, id)
	// Timestamps are owned by the video: cascade.
	for tsID, ts := range s.timestamps {
		if ts.VideoID == id {
			delete(s.timestamps, tsID)
		}
	}
	return nil
}

func (s *MemoryStore) ListVideos(ctx context.Context) ([]models.Video, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Video, 0, len(s.videos))
	for _, v := range s.videos {
		out = append(out, *s.loadVideoLocked(v))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DateAdded.Equal(out[j].DateAdded) {
			return out[i].DateAdded.Before(out[j].DateAdded)
		}
		return out[i].Title < out[j].Title
	})
	return out, nil
}

func (s *MemoryStore) VideoByLocalPath(ctx context.Context, path string) (*models.Video, error) {
	if path == "" {
		return nil, models.ErrInvalidArgument
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, v := range s.videos {
		if v.LocalPath != nil && *v.LocalPath == path {
			return s.loadVideoLocked(v), nil
		}
	}
	return nil, models.ErrNotFound
}

// loadVideoLocked copies a stored video and attaches its tags and
// timestamps. Caller must hold at least a read lock.
func (s *MemoryStore) loadVideoLocked(v *models.Video) *models.Video {
	cp := *v
	for tagID := range s.videoTags[v.ID] {
		if t, ok := s.tags[tagID]; ok {
			cp.Tags = append(cp.Tags, *t)
		}
	}
	sort.Slice(cp.Tags, func(i, j int) bool { return cp.Tags[i].Name < cp.Tags[j].Name })
	for _, ts := range s.timestamps {
		if ts.VideoID == v.ID {
			cp.Timestamps = append(cp.Timestamps, *ts)
		}
	}
	sort.Slice(cp.Timestamps, func(i, j int) bool { return cp.Timestamps[i].Time < cp.Timestamps[j].Time })
	return &cp
}

// Categories

func (s *MemoryStore) CreateCategory(ctx context.Context, c *models.Category) error {
	if c == nil || c.ID == uuid.Nil || c.Name == "" {
		return models.ErrInvalidArgument
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertCategoryLocked(c)
}

func (s *MemoryStore) insertCategoryLocked(c *models.Category) error {
	if _, exists := s.categories[c.ID]; exists {
		return models.ErrConflict
	}
	cp := *c
	s.categories[c.ID] = &cp
	return nil
}

func (s *MemoryStore) CategoryByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	if id == uuid.Nil {
		return nil, models.ErrInvalidArgument
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.categories[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *MemoryStore) UpdateCategory(ctx context.Context, c *models.Category) error {
	if c == nil || c.ID == uuid.Nil || c.Name == "" {
		return models.ErrInvalidArgument
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.categories[c.ID]; !ok {
		return models.ErrNotFound
	}
	cp := *c
	s.categories[c.ID] = &cp
	return nil
}

func (s *MemoryStore) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return models.ErrInvalidArgument
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.categories[id]; !ok {
		return models.ErrNotFound
	}

	// Collect the subtree, delete it, and nullify video references.
	// Category deletion cascades down the tree but never to videos.
	doomed := map[uuid.UUID]struct{}{id: {}}
	for {
		grew := false
		for _, c := range s.categories {
			if _, gone := doomed[c.ID]; gone {
				continue
			}
			if c.ParentID != nil {
				if _, parentGone := doomed[*c.ParentID]; parentGone {
					doomed[c.ID] = struct{}{}
					grew = true
				}
			}
		}
		if !grew {
			break
		}
	}
	for cid := range doomed {
		delete(s.categories, cid)
	}
	for _, v := range s.videos {
		if v.CategoryID != nil {
			if _, gone := doomed[*v.CategoryID]; gone {
				v.CategoryID = nil
			}
		}
	}
	return nil
}

func (s *MemoryStore) ListCategories(ctx context.Context) ([]models.Category, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (s *MemoryStore) CategoryByNameContains(ctx context.Context, sub string) (*models.Category, error) {
	if sub == "" {
		return nil, models.ErrInvalidArgument
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(sub)
	names := make([]*models.Category, 0, len(s.categories))
	for _, c := range s.categories {
		names = append(names, c)
	}
	sort.Slice(names, func(i, j int) bool { return names[i].Name < names[j].Name })
	for _, c := range names {
		if strings.Contains(strings.ToLower(c.Name), needle) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, models.ErrNotFound
}

// Tags

func (s *MemoryStore) CreateTag(ctx context.Context, t *models.Tag) error {
	if t == nil || t.ID == uuid.Nil || t.Name == "" {
		return models.ErrInvalidArgument
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tags[t.ID]; exists {
		return models.ErrConflict
	}
	cp := *t
	s.tags[t.ID] = &cp
	return nil
}

func (s *MemoryStore) TagByID(ctx context.Context, id uuid.UUID) (*models.Tag, error) {
	if id == uuid.Nil {
		return nil, models.ErrInvalidArgument
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tags[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (s *MemoryStore) ListTags(ctx context.Context) ([]models.Tag, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Tag, 0, len(s.tags))
	for _, t := range s.tags {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryStore) DeleteTag(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return models.ErrInvalidArgument
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tags[id]; !ok {
		return models.ErrNotFound
	}
	delete(s.tags, id)
	// Nullify, never cascade: affected videos stay.
	for _, set := range s.videoTags {
		delete(set, id)
	}
	return nil
}

func (s *MemoryStore) TagVideo(ctx context.Context, videoID, tagID uuid.UUID) error {
	if videoID == uuid.Nil || tagID == uuid.Nil {
		return models.ErrInvalidArgument
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.videos[videoID]; !ok {
		return models.ErrNotFound
	}
	if _, ok := s.tags[tagID]; !ok {
		return models.ErrNotFound
	}
	set := s.videoTags[videoID]
	if set == nil {
		set = make(map[uuid.UUID]struct{})
		s.videoTags[videoID] = set
	}
	set[tagID] = struct{}{}
	return nil
}

func (s *MemoryStore) UntagVideo(ctx context.Context, videoID, tagID uuid.UUID) error {
	if videoID == uuid.Nil || tagID == uuid.Nil {
		return models.ErrInvalidArgument
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.videoTags[videoID], tagID)
	return nil
}

// Timestamps

func (s *MemoryStore) AddTimestamp(ctx context.Context, ts *models.VideoTimestamp) error {
	if ts == nil || ts.ID == uuid.Nil || ts.VideoID == uuid.Nil || ts.Time < 0 {
		return models.ErrInvalidArgument
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.videos[ts.VideoID]; !ok {
		return models.ErrNotFound
	}
	if _, exists := s.timestamps[ts.ID]; exists {
		return models.ErrConflict
	}
	cp := *ts
	s.timestamps[ts.ID] = &cp
	return nil
}

func (s *MemoryStore) DeleteTimestamp(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return models.ErrInvalidArgument
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.timestamps[id]; !ok {
		return models.ErrNotFound
	}
	delete(s.timestamps, id)
	return nil
}

// Batch

type memoryOp struct {
	insertVideo    *models.Video
	insertCategory *models.Category
	updateVideo    *models.Video
}

// memoryBatch stages operations and applies them under one lock on
// Commit. Validation runs over the whole batch before anything is
// applied, so a failed Commit leaves the store untouched.
type memoryBatch struct {
	store  *MemoryStore
	ops    []memoryOp
	events []models.DomainEvent
	done   bool
}

func (s *MemoryStore) Begin(ctx context.Context) (Batch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &memoryBatch{store: s}, nil
}

func (b *memoryBatch) CreateVideo(v *models.Video) {
	cp := *v
	b.ops = append(b.ops, memoryOp{insertVideo: &cp})
}

func (b *memoryBatch) CreateCategory(c *models.Category) {
	cp := *c
	b.ops = append(b.ops, memoryOp{insertCategory: &cp})
}

func (b *memoryBatch) UpdateVideo(v *models.Video) {
	cp := *v
	b.ops = append(b.ops, memoryOp{updateVideo: &cp})
}

func (b *memoryBatch) RecordEvent(e models.DomainEvent) {
	b.events = append(b.events, e)
}

func (b *memoryBatch) Commit(ctx context.Context) error {
	if b.done {
		return models.ErrInvalidArgument
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	b.done = true

	s := b.store
	s.mu.Lock()
	defer s.mu.Unlock()

	staged := make(map[uuid.UUID]struct{})
	for _, op := range b.ops {
		switch {
		case op.insertVideo != nil:
			if op.insertVideo.ID == uuid.Nil || op.insertVideo.Title == "" {
				return models.ErrInvalidArgument
			}
			if _, exists := s.videos[op.insertVideo.ID]; exists {
				return models.ErrConflict
			}
			if _, exists := staged[op.insertVideo.ID]; exists {
				return models.ErrConflict
			}
			staged[op.insertVideo.ID] = struct{}{}
		case op.insertCategory != nil:
			if op.insertCategory.ID == uuid.Nil || op.insertCategory.Name == "" {
				return models.ErrInvalidArgument
			}
			if _, exists := s.categories[op.insertCategory.ID]; exists {
				return models.ErrConflict
			}
			if _, exists := staged[op.insertCategory.ID]; exists {
				return models.ErrConflict
			}
			staged[op.insertCategory.ID] = struct{}{}
		case op.updateVideo != nil:
			if _, ok := s.videos[op.updateVideo.ID]; ok {
				continue
			}
			if _, ok := staged[op.updateVideo.ID]; !ok {
				return models.ErrNotFound
			}
		}
	}

	for _, op := range b.ops {
		switch {
		case op.insertVideo != nil:
			_ = s.insertVideoLocked(op.insertVideo)
		case op.insertCategory != nil:
			_ = s.insertCategoryLocked(op.insertCategory)
		case op.updateVideo != nil:
			_ = s.updateVideoLocked(op.updateVideo)
		}
	}
	s.events = append(s.events, b.events...)
	return nil
}

func (b *memoryBatch) Rollback() error {
	b.done = true
	b.ops = nil
	b.events = nil
	return nil
}
