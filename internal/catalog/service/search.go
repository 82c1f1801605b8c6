package service

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/matvault/matvault/internal/catalog/domain"
	"github.com/matvault/matvault/internal/catalog/models"
)

// Filter narrows a search to favorites or to one progress status.
type Filter string

const (
	FilterAll        Filter = "all"
	FilterFavorites  Filter = "favorites"
	FilterNotSeen    Filter = "not-seen"
	FilterSeen       Filter = "seen"
	FilterInProgress Filter = "in-progress"
	FilterMastered   Filter = "mastered"
	FilterToReview   Filter = "to-review"
)

func (f Filter) Valid() bool {
	switch f {
	case FilterAll, FilterFavorites, FilterNotSeen, FilterSeen, FilterInProgress, FilterMastered, FilterToReview:
		return true
	}
	return false
}

func (f Filter) matches(v *models.Video) bool {
	switch f {
	case FilterAll:
		return true
	case FilterFavorites:
		return v.IsFavorite
	case FilterNotSeen:
		return v.ProgressStatus == domain.NotSeen
	case FilterSeen:
		return v.ProgressStatus == domain.Seen
	case FilterInProgress:
		return v.ProgressStatus == domain.InProgress
	case FilterMastered:
		return v.ProgressStatus == domain.Mastered
	case FilterToReview:
		return v.ProgressStatus == domain.ToReview
	}
	return false
}

// Search returns the videos whose title, instructor or category name
// contains the query (case-insensitive), further narrowed by the
// filter. An empty query matches everything.
func (s *Service) Search(ctx context.Context, query string, filter Filter) ([]models.Video, error) {
	if filter == "" {
		filter = FilterAll
	}
	if !filter.Valid() {
		return nil, models.ErrInvalidArgument
	}

	videos, err := s.store.ListVideos(ctx)
	if err != nil {
		return nil, err
	}
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	categoryNames := make(map[uuid.UUID]string, len(categories))
	for _, c := range categories {
		categoryNames[c.ID] = c.Name
	}

	needle := strings.ToLower(strings.TrimSpace(query))
	var out []models.Video
	for i := range videos {
		v := &videos[i]
		if !filter.matches(v) {
			continue
		}
		if needle != "" && !matchesQuery(v, categoryNames, needle) {
			continue
		}
		out = append(out, *v)
	}
	return out, nil
}

func matchesQuery(v *models.Video, categoryNames map[uuid.UUID]string, needle string) bool {
	if strings.Contains(strings.ToLower(v.Title), needle) {
		return true
	}
	if v.Instructor != nil && strings.Contains(strings.ToLower(*v.Instructor), needle) {
		return true
	}
	if v.CategoryID != nil {
		if name, ok := categoryNames[*v.CategoryID]; ok && strings.Contains(strings.ToLower(name), needle) {
			return true
		}
	}
	return false
}

// CategoryGroup is one category's slice of a search result.
type CategoryGroup struct {
	Category models.Category
	Videos   []models.Video
}

// GroupByCategory runs a search and groups the hits by category for
// list display. Only categories with at least one matching video are
// returned, ordered by name ascending. Videos without a category are
// not part of grouped output.
func (s *Service) GroupByCategory(ctx context.Context, query string, filter Filter) ([]CategoryGroup, error) {
	videos, err := s.Search(ctx, query, filter)
	if err != nil {
		return nil, err
	}
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]models.Category, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}

	grouped := make(map[uuid.UUID][]models.Video)
	for _, v := range videos {
		if v.CategoryID == nil {
			continue
		}
		if _, ok := byID[*v.CategoryID]; !ok {
			continue
		}
		grouped[*v.CategoryID] = append(grouped[*v.CategoryID], v)
	}

	out := make([]CategoryGroup, 0, len(grouped))
	for id, vs := range grouped {
		out = append(out, CategoryGroup{Category: byID[id], Videos: vs})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category.Name < out[j].Category.Name })
	return out, nil
}
