package importer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/matvault/matvault/internal/catalog/domain"
	"github.com/matvault/matvault/internal/catalog/models"
	"github.com/matvault/matvault/internal/catalog/repository"
)

func write(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func newTestImporter(root string, store Store) *Importer {
	return New(root, store, zerolog.Nop())
}

func TestParseCourseFolder(t *testing.T) {
	cases := []struct {
		name     string
		folder   string
		category string
		title    string
		creator  string
		ok       bool
	}{
		{
			name:     "three segments",
			folder:   "Leg Locks - Ashi Garami Mastery - Lachlan Giles",
			category: "Leg Locks",
			title:    "Ashi Garami Mastery",
			creator:  "Lachlan Giles",
			ok:       true,
		},
		{
			name:     "embedded hyphen stays in title",
			folder:   "Guard - De La Riva - Advanced - Mendes",
			category: "Guard",
			title:    "De La Riva - Advanced",
			creator:  "Mendes",
			ok:       true,
		},
		{
			name:     "double hyphen collapses",
			folder:   "Guard -- Spider Guard - Mendes",
			category: "Guard",
			title:    "Spider Guard",
			creator:  "Mendes",
			ok:       true,
		},
		{name: "one segment", folder: "RandomFolder", ok: false},
		{name: "two segments", folder: "Guard - Passing", ok: false},
		{name: "double hyphen, two real segments", folder: "Guard--Mendes", ok: false},
		{name: "only hyphens", folder: "- - -", ok: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			category, title, creator, ok := ParseCourseFolder(tc.folder)
			require.Equal(t, tc.ok, ok)
			if !ok {
				return
			}
			assert.Equal(t, tc.category, category)
			assert.Equal(t, tc.title, title)
			assert.Equal(t, tc.creator, creator)
		})
	}
}

func TestScan_CourseFolderScenario(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	course := filepath.Join(root, "Leg Locks - Ashi Garami Mastery - Lachlan Giles")
	write(t, filepath.Join(course, "intro.mp4"))
	write(t, filepath.Join(course, "part2", "drill.mov"))
	write(t, filepath.Join(course, "notes.txt"))
	write(t, filepath.Join(course, ".hidden.mp4"))

	store := repository.NewMemoryStore()
	imp := newTestImporter(root, store)

	report, err := imp.Scan(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Courses)
	assert.Equal(t, 2, report.TotalAdded)
	require.Len(t, report.PerCourse, 1)
	assert.Equal(t, 2, report.PerCourse[0].Added)
	assert.Equal(t, "Lachlan Giles", report.PerCourse[0].Creator)

	videos, err := store.ListVideos(ctx)
	require.NoError(t, err)
	require.Len(t, videos, 2)

	titles := []string{videos[0].Title, videos[1].Title}
	assert.ElementsMatch(t, []string{
		"Ashi Garami Mastery - intro",
		"Ashi Garami Mastery - part2/drill",
	}, titles)

	cat, err := store.CategoryByNameContains(ctx, "Leg Locks")
	require.NoError(t, err)
	assert.Equal(t, 999, cat.SortOrder)

	for _, v := range videos {
		require.NotNil(t, v.Instructor)
		assert.Equal(t, "Lachlan Giles", *v.Instructor)
		require.NotNil(t, v.CategoryID)
		assert.Equal(t, cat.ID, *v.CategoryID)
		assert.Equal(t, domain.Local, v.SourceType)
		require.NotNil(t, v.LocalPath)
		assert.True(t, filepath.IsAbs(*v.LocalPath))
	}
}

func TestScan_MalformedFolderIsSkippedNotFailed(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	write(t, filepath.Join(root, "RandomFolder", "clip.mp4"))

	store := repository.NewMemoryStore()
	imp := newTestImporter(root, store)

	report, err := imp.Scan(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Courses)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 0, report.TotalAdded)

	videos, err := store.ListVideos(ctx)
	require.NoError(t, err)
	assert.Empty(t, videos)
	categories, err := store.ListCategories(ctx)
	require.NoError(t, err)
	assert.Empty(t, categories)
}

func TestScan_EmptyRootIsNoop(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	imp := newTestImporter(t.TempDir(), store)

	report, err := imp.Scan(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Courses)
	assert.Equal(t, 0, report.TotalAdded)
}

func TestScan_HiddenFoldersIgnored(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	write(t, filepath.Join(root, ".Trash - Old Course - Nobody", "clip.mp4"))

	store := repository.NewMemoryStore()
	imp := newTestImporter(root, store)

	report, err := imp.Scan(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Courses)
	assert.Equal(t, 0, report.Skipped)
}

func TestScan_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	course := filepath.Join(root, "Passing - Pressure Passing - Bernardo Faria")
	write(t, filepath.Join(course, "vol1.mp4"))
	write(t, filepath.Join(course, "vol2.mkv"))

	store := repository.NewMemoryStore()
	imp := newTestImporter(root, store)

	first, err := imp.Scan(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, first.TotalAdded)

	firstVideos, err := store.ListVideos(ctx)
	require.NoError(t, err)

	second, err := imp.Scan(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, second.TotalAdded)

	secondVideos, err := store.ListVideos(ctx)
	require.NoError(t, err)
	assert.Equal(t, firstVideos, secondVideos)

	categories, err := store.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, 1)
}

func TestScan_ReusesExistingCategoryCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	write(t, filepath.Join(root, "leg locks - Saddle Entries - Craig Jones", "e1.m4v"))

	store := repository.NewMemoryStore()
	existing := &models.Category{
		ID:        uuid.New(),
		Name:      "Leg Locks",
		Icon:      "figure.strengthtraining.traditional",
		ColorName: "red",
		SortOrder: 3,
	}
	require.NoError(t, store.CreateCategory(ctx, existing))

	imp := newTestImporter(root, store)
	_, err := imp.Scan(ctx)
	require.NoError(t, err)

	categories, err := store.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 1, "must reuse the existing category")

	videos, err := store.ListVideos(ctx)
	require.NoError(t, err)
	require.Len(t, videos, 1)
	assert.Equal(t, existing.ID, *videos[0].CategoryID)
}

func TestScan_SameCategoryAcrossFoldersStagedOnce(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	write(t, filepath.Join(root, "Guard - Closed Guard - Roger Gracie", "a.mp4"))
	write(t, filepath.Join(root, "Guard - Open Guard - Marcelo Garcia", "b.mp4"))

	store := repository.NewMemoryStore()
	imp := newTestImporter(root, store)

	_, err := imp.Scan(ctx)
	require.NoError(t, err)

	categories, err := store.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, 1)
}

func TestScan_CommitFailurePropagates(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	write(t, filepath.Join(root, "Guard - Closed Guard - Roger Gracie", "a.mp4"))

	batch := new(BatchMock)
	batch.On("CreateCategory", mock.Anything).Return()
	batch.On("CreateVideo", mock.Anything).Return()
	batch.On("RecordEvent", mock.Anything).Return()
	batch.On("Commit", mock.Anything).Return(errors.New("disk full")).Once()
	batch.On("Rollback").Return(nil)

	store := new(StoreMock)
	store.On("Begin", mock.Anything).Return(batch, nil).Once()
	store.On("CategoryByNameContains", mock.Anything, "Guard").Return(nil, models.ErrNotFound).Once()
	store.On("VideoByLocalPath", mock.Anything, mock.Anything).Return(nil, models.ErrNotFound)

	imp := newTestImporter(root, store)
	_, err := imp.Scan(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	batch.AssertExpectations(t)
}

func TestScan_FetchFailureAbortsScan(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	write(t, filepath.Join(root, "Guard - Closed Guard - Roger Gracie", "a.mp4"))

	batch := new(BatchMock)
	batch.On("CreateCategory", mock.Anything).Return()
	batch.On("Rollback").Return(nil)

	store := new(StoreMock)
	store.On("Begin", mock.Anything).Return(batch, nil).Once()
	store.On("CategoryByNameContains", mock.Anything, "Guard").Return(nil, models.ErrNotFound).Once()
	store.On("VideoByLocalPath", mock.Anything, mock.Anything).Return(nil, errors.New("db gone")).Once()

	imp := newTestImporter(root, store)
	_, err := imp.Scan(ctx)
	require.Error(t, err)
	batch.AssertNotCalled(t, "Commit", mock.Anything)
}

func TestFileSize(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "clip.mp4")
	require.NoError(t, os.WriteFile(path, make([]byte, 2048), 0o644))

	imp := newTestImporter(root, repository.NewMemoryStore())

	v := &models.Video{LocalPath: &path}
	size, err := imp.FileSize(v)
	require.NoError(t, err)
	assert.Equal(t, "2.0 KB", size)

	missing := filepath.Join(root, "gone.mp4")
	v = &models.Video{LocalPath: &missing}
	_, err = imp.FileSize(v)
	require.ErrorIs(t, err, models.ErrMediaNotFound)
}
