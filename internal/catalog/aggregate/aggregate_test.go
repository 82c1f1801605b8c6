package aggregate

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matvault/matvault/internal/catalog/domain"
	"github.com/matvault/matvault/internal/catalog/models"
)

func category(name string, parent *uuid.UUID) models.Category {
	return models.Category{ID: uuid.New(), Name: name, ParentID: parent}
}

func video(categoryID uuid.UUID, status domain.ProgressStatus) models.Video {
	return models.Video{
		ID:             uuid.New(),
		Title:          "v",
		CategoryID:     &categoryID,
		ProgressStatus: status,
	}
}

func TestTree_EmptySubtree(t *testing.T) {
	root := category("Guard", nil)
	child := category("Closed Guard", &root.ID)

	tree := NewTree([]models.Category{root, child}, nil)

	assert.Equal(t, 0, tree.VideoCount(root.ID))
	assert.Equal(t, 0.0, tree.ProgressPercentage(root.ID))
}

func TestTree_VideoCountIsRecursive(t *testing.T) {
	root := category("Guard", nil)
	child := category("Closed Guard", &root.ID)
	grandchild := category("Armbar from Closed Guard", &child.ID)

	videos := []models.Video{
		video(root.ID, domain.NotSeen),
		video(child.ID, domain.NotSeen),
		video(child.ID, domain.NotSeen),
		video(grandchild.ID, domain.NotSeen),
	}
	tree := NewTree([]models.Category{root, child, grandchild}, videos)

	// Count = direct videos + sum over subcategories, all the way down.
	assert.Equal(t, 4, tree.VideoCount(root.ID))
	assert.Equal(t, 3, tree.VideoCount(child.ID))
	assert.Equal(t, 1, tree.VideoCount(grandchild.ID))

	direct := len(tree.DirectVideos(root.ID))
	sum := 0
	for _, c := range tree.Children(root.ID) {
		sum += tree.VideoCount(c.ID)
	}
	assert.Equal(t, tree.VideoCount(root.ID), direct+sum)
}

func TestTree_ProgressPercentageCountsDeepMastery(t *testing.T) {
	root := category("Leg Locks", nil)
	child := category("Ashi Garami", &root.ID)
	grandchild := category("Inside Heel Hooks", &child.ID)

	videos := []models.Video{
		video(root.ID, domain.Mastered),
		video(child.ID, domain.Seen),
		video(grandchild.ID, domain.Mastered),
		video(grandchild.ID, domain.NotSeen),
	}
	tree := NewTree([]models.Category{root, child, grandchild}, videos)

	// 2 mastered out of 4, including the deepest level.
	assert.InDelta(t, 50.0, tree.ProgressPercentage(root.ID), 1e-9)
	assert.InDelta(t, 50.0, tree.ProgressPercentage(grandchild.ID), 1e-9)
	assert.InDelta(t, 33.333, tree.ProgressPercentage(child.ID), 0.001)
}

func TestTree_VideosWithoutCategoryAreIgnored(t *testing.T) {
	root := category("Passing", nil)
	stray := models.Video{ID: uuid.New(), Title: "stray", ProgressStatus: domain.Mastered}

	tree := NewTree([]models.Category{root}, []models.Video{stray})

	assert.Equal(t, 0, tree.VideoCount(root.ID))
}

func TestTree_Roots(t *testing.T) {
	a := category("A", nil)
	b := category("B", nil)
	child := category("C", &a.ID)

	tree := NewTree([]models.Category{a, b, child}, nil)

	roots := tree.Roots()
	require.Len(t, roots, 2)
	for _, r := range roots {
		assert.True(t, r.IsRoot())
	}
}

func TestStats(t *testing.T) {
	videos := []models.Video{
		{ID: uuid.New(), Title: "a", ProgressStatus: domain.Mastered},
		{ID: uuid.New(), Title: "b", ProgressStatus: domain.Mastered},
		{ID: uuid.New(), Title: "c", ProgressStatus: domain.Seen},
		{ID: uuid.New(), Title: "d", ProgressStatus: domain.NotSeen},
	}

	s := Stats(videos)
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 2, s.Mastered)
	assert.Equal(t, 1, s.Seen)
	assert.Equal(t, 1, s.NotSeen)
	assert.Equal(t, 0, s.InProgress)
	assert.Equal(t, 0, s.ToReview)
	assert.InDelta(t, 50.0, s.CompletionPercentage(), 1e-9)
}

func TestStats_Empty(t *testing.T) {
	s := Stats(nil)
	assert.Equal(t, 0, s.Total)
	assert.Equal(t, 0.0, s.CompletionPercentage())
}
