// Package aggregate computes derived numbers over the catalog: recursive
// video counts, mastery percentages, global progress stats. Everything
// here is pure and computed on demand, since the underlying collections
// mutate freely.
package aggregate

import (
	"github.com/google/uuid"

	"github.com/matvault/matvault/internal/catalog/domain"
	"github.com/matvault/matvault/internal/catalog/models"
)

// Tree is an arena over a snapshot of categories and videos. Children
// are derived from parent ids at build time rather than kept as live
// two-way pointers.
//
// Precondition: the category graph is acyclic. Parent links are set by
// callers and nothing in the model enforces acyclicity; a cycle would
// make the recursive walks loop. The service layer rejects cycles on
// reparent, so trees built from stored data are safe.
type Tree struct {
	byID     map[uuid.UUID]*models.Category
	children map[uuid.UUID][]*models.Category
	videos   map[uuid.UUID][]*models.Video
}

func NewTree(categories []models.Category, videos []models.Video) *Tree {
	t := &Tree{
		byID:     make(map[uuid.UUID]*models.Category, len(categories)),
		children: make(map[uuid.UUID][]*models.Category),
		videos:   make(map[uuid.UUID][]*models.Video),
	}
	for i := range categories {
		c := &categories[i]
		t.byID[c.ID] = c
	}
	for i := range categories {
		c := &categories[i]
		if c.ParentID != nil {
			t.children[*c.ParentID] = append(t.children[*c.ParentID], c)
		}
	}
	for i := range videos {
		v := &videos[i]
		if v.CategoryID != nil {
			t.videos[*v.CategoryID] = append(t.videos[*v.CategoryID], v)
		}
	}
	return t
}

// Category returns the category for id, or nil.
func (t *Tree) Category(id uuid.UUID) *models.Category {
	return t.byID[id]
}

// Children returns the direct subcategories of id.
func (t *Tree) Children(id uuid.UUID) []*models.Category {
	return t.children[id]
}

// DirectVideos returns the videos directly associated with id.
func (t *Tree) DirectVideos(id uuid.UUID) []*models.Video {
	return t.videos[id]
}

// Roots returns the categories with no parent.
func (t *Tree) Roots() []*models.Category {
	var roots []*models.Category
	for _, c := range t.byID {
		if c.IsRoot() {
			roots = append(roots, c)
		}
	}
	return roots
}

// VideoCount is the number of videos directly in the category plus the
// counts of the whole subtree below it.
func (t *Tree) VideoCount(id uuid.UUID) int {
	n := len(t.videos[id])
	for _, child := range t.children[id] {
		n += t.VideoCount(child.ID)
	}
	return n
}

// ProgressPercentage is 100 * mastered / total over the category's
// subtree, 0 when the subtree holds no videos.
func (t *Tree) ProgressPercentage(id uuid.UUID) float64 {
	total := t.VideoCount(id)
	if total == 0 {
		return 0
	}
	return float64(t.masteredCount(id)) / float64(total) * 100
}

func (t *Tree) masteredCount(id uuid.UUID) int {
	n := 0
	for _, v := range t.videos[id] {
		if v.ProgressStatus == domain.Mastered {
			n++
		}
	}
	for _, child := range t.children[id] {
		n += t.masteredCount(child.ID)
	}
	return n
}

// ProgressStats partitions a set of videos by progress status.
type ProgressStats struct {
	Total      int
	NotSeen    int
	Seen       int
	InProgress int
	Mastered   int
	ToReview   int
}

// CompletionPercentage is 100 * mastered / total, 0 for an empty set.
func (s ProgressStats) CompletionPercentage() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Mastered) / float64(s.Total) * 100
}

// Stats counts videos per progress status.
func Stats(videos []models.Video) ProgressStats {
	s := ProgressStats{Total: len(videos)}
	for i := range videos {
		switch videos[i].ProgressStatus {
		case domain.NotSeen:
			s.NotSeen++
		case domain.Seen:
			s.Seen++
		case domain.InProgress:
			s.InProgress++
		case domain.Mastered:
			s.Mastered++
		case domain.ToReview:
			s.ToReview++
		}
	}
	return s
}
