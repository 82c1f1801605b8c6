// Package importer reconciles an on-disk course folder tree against the
// catalog. Course folders follow the `Category - Title - Creator` naming
// convention; every video file found under a course folder becomes one
// catalog record, deduplicated by absolute local path so re-scans are
// idempotent.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/matvault/matvault/internal/catalog/domain"
	"github.com/matvault/matvault/internal/catalog/models"
	"github.com/matvault/matvault/internal/catalog/repository"
)

// videoExtensions is the allow-list of file extensions, compared
// case-insensitively and without the leading dot.
var videoExtensions = map[string]struct{}{
	"mp4": {},
	"mov": {},
	"avi": {},
	"mkv": {},
	"m4v": {},
}

// Store is the slice of the storage port the importer needs.
type Store interface {
	VideoByLocalPath(ctx context.Context, path string) (*models.Video, error)
	CategoryByNameContains(ctx context.Context, s string) (*models.Category, error)
	Begin(ctx context.Context) (repository.Batch, error)
}

// CourseReport is the per-folder outcome of a scan.
type CourseReport struct {
	Folder   string
	Category string
	Title    string
	Creator  string
	Added    int
}

// ScanReport summarizes one full scan.
type ScanReport struct {
	Courses    int
	Skipped    int
	TotalAdded int
	PerCourse  []CourseReport
}

// Importer scans a videos directory. Construct one per process and pass
// it where needed; scans are serialized by an internal mutex, so a
// trigger arriving while a scan runs waits for it instead of
// double-importing.
type Importer struct {
	root   string
	store  Store
	logger zerolog.Logger

	mu    sync.Mutex
	clock func() time.Time
	idGen func() uuid.UUID
}

func New(root string, store Store, logger zerolog.Logger) *Importer {
	return &Importer{
		root:   root,
		store:  store,
		logger: logger.With().Str("component", "importer").Logger(),
		clock:  time.Now,
		idGen:  uuid.New,
	}
}

// EnsureRoot creates the videos directory if it does not exist yet.
func (i *Importer) EnsureRoot() error {
	if err := os.MkdirAll(i.root, 0o755); err != nil {
		return fmt.Errorf("create videos dir: %w", err)
	}
	return nil
}

// Scan walks every course folder under the root and stages new videos
// and categories, committing once at the end. Folders that do not match
// the naming convention are skipped and logged, never surfaced as
// errors. Storage failures abort the scan; nothing staged survives a
// failed commit.
func (i *Importer) Scan(ctx context.Context) (*ScanReport, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	root, err := filepath.Abs(i.root)
	if err != nil {
		return nil, fmt.Errorf("resolve videos dir: %w", err)
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read videos dir: %w", err)
	}

	var folders []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			folders = append(folders, e.Name())
		}
	}

	report := &ScanReport{}
	if len(folders) == 0 {
		// Nothing to do, not an error.
		i.logger.Info().Str("root", root).Msg("no course folders found")
		return report, nil
	}

	i.logger.Info().Str("root", root).Int("folders", len(folders)).Msg("scan started")

	batch, err := i.store.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin batch: %w", err)
	}
	defer batch.Rollback()

	// Categories staged during this scan, so later folders of the same
	// category reuse it instead of staging a duplicate.
	var staged []*models.Category

	for _, name := range folders {
		// Checkpoint between course folders: a cancelled scan stops
		// cleanly before the commit, leaving the catalog untouched.
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cr, err := i.scanCourseFolder(ctx, batch, &staged, root, name)
		if err != nil {
			return nil, err
		}
		if cr == nil {
			report.Skipped++
			continue
		}
		report.Courses++
		report.TotalAdded += cr.Added
		report.PerCourse = append(report.PerCourse, *cr)
	}

	if err := batch.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit scan: %w", err)
	}

	i.logger.Info().
		Int("courses", report.Courses).
		Int("skipped", report.Skipped).
		Int("added", report.TotalAdded).
		Msg("scan complete")
	return report, nil
}

// scanCourseFolder stages the videos of one course folder. A nil report
// with nil error means the folder name did not match the convention.
func (i *Importer) scanCourseFolder(ctx context.Context, batch repository.Batch, staged *[]*models.Category, root, folder string) (*CourseReport, error) {
	categoryName, courseTitle, creator, ok := ParseCourseFolder(folder)
	if !ok {
		i.logger.Warn().Str("folder", folder).Msg("skipping folder, name does not match Category - Title - Creator")
		return nil, nil
	}

	category, err := i.findOrCreateCategory(ctx, batch, staged, categoryName)
	if err != nil {
		return nil, err
	}

	report := &CourseReport{
		Folder:   folder,
		Category: category.Name,
		Title:    courseTitle,
		Creator:  creator,
	}

	courseDir := filepath.Join(root, folder)
	err = filepath.WalkDir(courseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if strings.HasPrefix(d.Name(), ".") && path != courseDir {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(d.Name())), ".")
		if _, ok := videoExtensions[ext]; !ok {
			return nil
		}

		rel, err := filepath.Rel(courseDir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		title := courseTitle + " - " + strings.TrimSuffix(rel, filepath.Ext(rel))

		// Dedup by absolute local path: an already-imported file is
		// left exactly as it is.
		_, err = i.store.VideoByLocalPath(ctx, path)
		if err == nil {
			return nil
		}
		if !errors.Is(err, models.ErrNotFound) {
			return err
		}

		v := &models.Video{
			ID:             i.idGen(),
			Title:          title,
			Instructor:     &creator,
			SourceType:     domain.Local,
			LocalPath:      &path,
			CategoryID:     &category.ID,
			ProgressStatus: domain.NotSeen,
			DateAdded:      i.clock(),
			GiType:         domain.BothGi,
			Level:          domain.Beginner,
			VideoType:      domain.Instructional,
		}
		batch.CreateVideo(v)
		batch.RecordEvent(models.NewVideoAdded(v.ID, v.Title, v.SourceType))
		report.Added++
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk course folder %q: %w", folder, err)
	}

	i.logger.Info().
		Str("course", courseTitle).
		Str("category", category.Name).
		Int("added", report.Added).
		Msg("course folder scanned")
	return report, nil
}

func (i *Importer) findOrCreateCategory(ctx context.Context, batch repository.Batch, staged *[]*models.Category, name string) (*models.Category, error) {
	needle := strings.ToLower(name)
	for _, c := range *staged {
		if strings.Contains(strings.ToLower(c.Name), needle) {
			return c, nil
		}
	}

	c, err := i.store.CategoryByNameContains(ctx, name)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	// Auto-created categories sort after manually curated ones.
	c = &models.Category{
		ID:        i.idGen(),
		Name:      name,
		Icon:      "folder.fill",
		ColorName: "blue",
		SortOrder: 999,
	}
	batch.CreateCategory(c)
	*staged = append(*staged, c)
	i.logger.Info().Str("category", name).Msg("created category")
	return c, nil
}

// ParseCourseFolder splits a folder name into its category, title and
// creator segments. The hyphen is the only delimiter; a title that
// itself contains hyphens keeps them, since the middle segments are
// rejoined with " - ". Empty segments (double hyphens, stray
// delimiters) are dropped before counting, so "Guard--Mendes" is
// malformed, not a course with an empty title.
func ParseCourseFolder(name string) (category, title, creator string, ok bool) {
	var parts []string
	for _, p := range strings.Split(name, "-") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) < 3 {
		return "", "", "", false
	}
	category = parts[0]
	creator = parts[len(parts)-1]
	title = strings.Join(parts[1:len(parts)-1], " - ")
	return category, title, creator, true
}

// FileSize returns a human-readable size of the video's local file.
func (i *Importer) FileSize(v *models.Video) (string, error) {
	if v.LocalPath == nil {
		return "", models.ErrInvalidArgument
	}
	info, err := os.Stat(*v.LocalPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", models.ErrMediaNotFound
		}
		return "", err
	}
	return formatBytes(info.Size()), nil
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
