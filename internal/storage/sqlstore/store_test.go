package sqlstore

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matvault/matvault/internal/catalog/domain"
	"github.com/matvault/matvault/internal/catalog/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()

	db, err := Connect(ctx, filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db)
}

func testVideo(title string) *models.Video {
	return &models.Video{
		ID:             uuid.New(),
		Title:          title,
		SourceType:     domain.Streaming,
		ProgressStatus: domain.NotSeen,
		DateAdded:      time.Now().UTC().Truncate(time.Second),
		GiType:         domain.BothGi,
		Level:          domain.Beginner,
		VideoType:      domain.Instructional,
	}
}

func TestStore_VideoCRUD(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	v := testVideo("Armbar Basics")
	require.NoError(t, s.CreateVideo(ctx, v))

	got, err := s.VideoByID(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, "Armbar Basics", got.Title)
	assert.Equal(t, domain.Streaming, got.SourceType)

	v.Title = "Armbar Details"
	v.ProgressStatus = domain.Mastered
	require.NoError(t, s.UpdateVideo(ctx, v))
	got, err = s.VideoByID(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, "Armbar Details", got.Title)
	assert.Equal(t, domain.Mastered, got.ProgressStatus)

	require.NoError(t, s.DeleteVideo(ctx, v.ID))
	_, err = s.VideoByID(ctx, v.ID)
	require.ErrorIs(t, err, models.ErrNotFound)
	require.ErrorIs(t, s.DeleteVideo(ctx, v.ID), models.ErrNotFound)
}

func TestStore_VideoByLocalPath(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	path := "/videos/course/intro.mp4"
	v := testVideo("Intro")
	v.LocalPath = &path
	require.NoError(t, s.CreateVideo(ctx, v))

	got, err := s.VideoByLocalPath(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, v.ID, got.ID)

	_, err = s.VideoByLocalPath(ctx, "/videos/other.mp4")
	require.ErrorIs(t, err, models.ErrNotFound)

	// The unique index refuses a second video at the same path.
	dup := testVideo("Intro Again")
	dup.LocalPath = &path
	require.Error(t, s.CreateVideo(ctx, dup))
}

func TestStore_DeleteVideoCascadesTimestamps(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	v := testVideo("Heel Hook Entries")
	require.NoError(t, s.CreateVideo(ctx, v))
	ts := &models.VideoTimestamp{ID: uuid.New(), VideoID: v.ID, Time: 30, Label: "entry"}
	require.NoError(t, s.AddTimestamp(ctx, ts))

	require.NoError(t, s.DeleteVideo(ctx, v.ID))
	require.ErrorIs(t, s.DeleteTimestamp(ctx, ts.ID), models.ErrNotFound)
}

func TestStore_DeleteCategorySubtreeNullifiesVideos(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	root := &models.Category{ID: uuid.New(), Name: "Guard", Icon: "folder.fill", ColorName: "blue"}
	require.NoError(t, s.CreateCategory(ctx, root))
	child := &models.Category{ID: uuid.New(), Name: "Closed Guard", Icon: "folder.fill", ColorName: "blue", ParentID: &root.ID}
	require.NoError(t, s.CreateCategory(ctx, child))
	other := &models.Category{ID: uuid.New(), Name: "Passing", Icon: "folder.fill", ColorName: "blue"}
	require.NoError(t, s.CreateCategory(ctx, other))

	v := testVideo("Closed Guard Basics")
	v.CategoryID = &child.ID
	require.NoError(t, s.CreateVideo(ctx, v))

	require.NoError(t, s.DeleteCategory(ctx, root.ID))

	_, err := s.CategoryByID(ctx, child.ID)
	require.ErrorIs(t, err, models.ErrNotFound)
	_, err = s.CategoryByID(ctx, other.ID)
	require.NoError(t, err)

	got, err := s.VideoByID(ctx, v.ID)
	require.NoError(t, err)
	assert.Nil(t, got.CategoryID)
}

func TestStore_CategoryByNameContains(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	c := &models.Category{ID: uuid.New(), Name: "Leg Locks", Icon: "folder.fill", ColorName: "red"}
	require.NoError(t, s.CreateCategory(ctx, c))

	got, err := s.CategoryByNameContains(ctx, "leg locks")
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)

	got, err = s.CategoryByNameContains(ctx, "LOCKS")
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)

	_, err = s.CategoryByNameContains(ctx, "wrestling")
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestStore_ListCategoriesOrder(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	for _, c := range []*models.Category{
		{ID: uuid.New(), Name: "Zeta", Icon: "folder.fill", ColorName: "blue", SortOrder: 0},
		{ID: uuid.New(), Name: "Alpha", Icon: "folder.fill", ColorName: "blue", SortOrder: 1},
	} {
		require.NoError(t, s.CreateCategory(ctx, c))
	}

	got, err := s.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Zeta", got[0].Name)
	assert.Equal(t, "Alpha", got[1].Name)
}

func TestStore_TagsAndRelations(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	v := testVideo("Passing Concepts")
	require.NoError(t, s.CreateVideo(ctx, v))
	tag := &models.Tag{ID: uuid.New(), Name: "John Danaher", ColorName: "blue"}
	require.NoError(t, s.CreateTag(ctx, tag))

	require.NoError(t, s.TagVideo(ctx, v.ID, tag.ID))
	// Tagging twice is a no-op, not an error.
	require.NoError(t, s.TagVideo(ctx, v.ID, tag.ID))

	got, err := s.VideoByID(ctx, v.ID)
	require.NoError(t, err)
	require.Len(t, got.Tags, 1)
	assert.Equal(t, "John Danaher", got.Tags[0].Name)

	require.NoError(t, s.DeleteTag(ctx, tag.ID))
	got, err = s.VideoByID(ctx, v.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Tags)
}

func TestStore_TimestampsOrderedByTime(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	v := testVideo("Back Attacks")
	require.NoError(t, s.CreateVideo(ctx, v))
	require.NoError(t, s.AddTimestamp(ctx, &models.VideoTimestamp{ID: uuid.New(), VideoID: v.ID, Time: 90, Label: "choke"}))
	require.NoError(t, s.AddTimestamp(ctx, &models.VideoTimestamp{ID: uuid.New(), VideoID: v.ID, Time: 15, Label: "grips"}))

	got, err := s.VideoByID(ctx, v.ID)
	require.NoError(t, err)
	require.Len(t, got.Timestamps, 2)
	assert.Equal(t, "grips", got.Timestamps[0].Label)
	assert.Equal(t, "choke", got.Timestamps[1].Label)
}

func TestBatch_CommitWritesEverythingOrNothing(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	c := &models.Category{ID: uuid.New(), Name: "Takedowns", Icon: "folder.fill", ColorName: "brown"}
	v := testVideo("Single Leg")
	v.CategoryID = &c.ID

	batch, err := s.Begin(ctx)
	require.NoError(t, err)
	batch.CreateCategory(c)
	batch.CreateVideo(v)
	batch.RecordEvent(models.NewVideoAdded(v.ID, v.Title, v.SourceType))
	require.NoError(t, batch.Commit(ctx))

	_, err = s.VideoByID(ctx, v.ID)
	require.NoError(t, err)

	pending, err := s.Outbox().GetPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "VideoAdded", pending[0].EventType)
}

func TestBatch_FailedCommitPersistsNothing(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	existing := testVideo("Already Here")
	require.NoError(t, s.CreateVideo(ctx, existing))

	fresh := testVideo("Fresh")
	dup := *existing // same primary key, insert must fail

	batch, err := s.Begin(ctx)
	require.NoError(t, err)
	batch.CreateVideo(fresh)
	batch.CreateVideo(&dup)
	require.Error(t, batch.Commit(ctx))

	_, err = s.VideoByID(ctx, fresh.ID)
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestOutbox_PendingAndProcessed(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	v := testVideo("Berimbolo")
	batch, err := s.Begin(ctx)
	require.NoError(t, err)
	batch.CreateVideo(v)
	batch.RecordEvent(models.NewVideoAdded(v.ID, v.Title, v.SourceType))
	batch.RecordEvent(models.NewProgressChanged(v.ID, domain.NotSeen, domain.Seen))
	require.NoError(t, batch.Commit(ctx))

	pending, err := s.Outbox().GetPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "VideoAdded", pending[0].EventType)
	assert.Equal(t, "ProgressChanged", pending[1].EventType)
	assert.Equal(t, v.ID.String(), pending[0].AggregateID)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(pending[0].Payload, &payload))
	assert.Equal(t, "Berimbolo", payload["title"])

	require.NoError(t, s.Outbox().MarkProcessed(ctx, pending[0].ID))

	pending, err = s.Outbox().GetPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "ProgressChanged", pending[0].EventType)
}
