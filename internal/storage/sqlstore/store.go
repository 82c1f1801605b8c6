package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/matvault/matvault/internal/catalog/models"
	"github.com/matvault/matvault/internal/catalog/repository"
)

const videoColumns = `id, title, instructor, description, source_type, source_url, local_path,
	thumbnail_path, duration, category_id, progress_status, is_favorite, notes,
	last_watched, date_added, gi_type, level, video_type`

const categoryColumns = `id, name, icon, color_name, parent_id, sort_order, category_type`

// Store implements repository.Store over sqlx.
type Store struct {
	db     *sqlx.DB
	outbox *OutboxRepo
}

func New(db *sqlx.DB) *Store {
	return &Store{db: db, outbox: NewOutboxRepo(db)}
}

// Outbox exposes the outbox repository for the publisher.
func (s *Store) Outbox() *OutboxRepo {
	return s.outbox
}

// Videos

func (s *Store) CreateVideo(ctx context.Context, v *models.Video) error {
	if v == nil || v.ID == uuid.Nil || v.Title == "" {
		return models.ErrInvalidArgument
	}
	return insertVideo(ctx, s.db, v)
}

func (s *Store) rebind(q string) string { return s.db.Rebind(q) }

func insertVideoQuery() string {
	return `
		INSERT INTO videos (` + videoColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
}

func videoArgs(v *models.Video) []interface{} {
	return []interface{}{
		v.ID, v.Title, v.Instructor, v.Description, v.SourceType, v.SourceURL, v.LocalPath,
		v.ThumbnailPath, v.Duration, v.CategoryID, v.ProgressStatus, v.IsFavorite, v.Notes,
		v.LastWatched, v.DateAdded, v.GiType, v.Level, v.VideoType,
	}
}

func insertVideo(ctx context.Context, db *sqlx.DB, v *models.Video) error {
	if _, err := db.ExecContext(ctx, db.Rebind(insertVideoQuery()), videoArgs(v)...); err != nil {
		return fmt.Errorf("video create: %w", err)
	}
	return nil
}

func (s *Store) VideoByID(ctx context.Context, id uuid.UUID) (*models.Video, error) {
	if id == uuid.Nil {
		return nil, models.ErrInvalidArgument
	}
	q := s.rebind(`SELECT ` + videoColumns + ` FROM videos WHERE id = ?`)

	var v models.Video
	if err := s.db.GetContext(ctx, &v, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("video get by id: %w", err)
	}
	if err := s.loadVideoRelations(ctx, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *Store) UpdateVideo(ctx context.Context, v *models.Video) error {
	if v == nil || v.ID == uuid.Nil || v.Title == "" {
		return models.ErrInvalidArgument
	}
	q := s.rebind(`
		UPDATE videos
		SET title = ?, instructor = ?, description = ?, source_type = ?, source_url = ?,
		    local_path = ?, thumbnail_path = ?, duration = ?, category_id = ?,
		    progress_status = ?, is_favorite = ?, notes = ?, last_watched = ?,
		    gi_type = ?, level = ?, video_type = ?
		WHERE id = ?
	`)
	res, err := s.db.ExecContext(ctx, q,
		v.Title, v.Instructor, v.Description, v.SourceType, v.SourceURL,
		v.LocalPath, v.ThumbnailPath, v.Duration, v.CategoryID,
		v.ProgressStatus, v.IsFavorite, v.Notes, v.LastWatched,
		v.GiType, v.Level, v.VideoType,
		v.ID,
	)
	if err != nil {
		return fmt.Errorf("video update: %w", err)
	}
	return requireRow(res)
}

func (s *Store) DeleteVideo(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return models.ErrInvalidArgument
	}
	// Timestamps and tag links go via ON DELETE CASCADE.
	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM videos WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("video delete: %w", err)
	}
	return requireRow(res)
}

func (s *Store) ListVideos(ctx context.Context) ([]models.Video, error) {
	q := `SELECT ` + videoColumns + ` FROM videos ORDER BY date_added, title`

	var videos []models.Video
	if err := s.db.SelectContext(ctx, &videos, q); err != nil {
		return nil, fmt.Errorf("video list: %w", err)
	}
	for i := range videos {
		if err := s.loadVideoRelations(ctx, &videos[i]); err != nil {
			return nil, err
		}
	}
	return videos, nil
}

func (s *Store) VideoByLocalPath(ctx context.Context, path string) (*models.Video, error) {
	if path == "" {
		return nil, models.ErrInvalidArgument
	}
	q := s.rebind(`SELECT ` + videoColumns + ` FROM videos WHERE local_path = ?`)

	var v models.Video
	if err := s.db.GetContext(ctx, &v, q, path); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("video get by local path: %w", err)
	}
	if err := s.loadVideoRelations(ctx, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *Store) loadVideoRelations(ctx context.Context, v *models.Video) error {
	tagsQ := s.rebind(`
		SELECT t.id, t.name, t.color_name
		FROM tags t
		JOIN video_tags vt ON vt.tag_id = t.id
		WHERE vt.video_id = ?
		ORDER BY t.name
	`)
	if err := s.db.SelectContext(ctx, &v.Tags, tagsQ, v.ID); err != nil {
		return fmt.Errorf("video load tags: %w", err)
	}

	tsQ := s.rebind(`
		SELECT id, video_id, time, label
		FROM timestamps
		WHERE video_id = ?
		ORDER BY time
	`)
	if err := s.db.SelectContext(ctx, &v.Timestamps, tsQ, v.ID); err != nil {
		return fmt.Errorf("video load timestamps: %w", err)
	}
	return nil
}

// Categories

func (s *Store) CreateCategory(ctx context.Context, c *models.Category) error {
	if c == nil || c.ID == uuid.Nil || c.Name == "" {
		return models.ErrInvalidArgument
	}
	return insertCategory(ctx, s.db, c)
}

func insertCategoryQuery() string {
	return `
		INSERT INTO categories (` + categoryColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
}

func categoryArgs(c *models.Category) []interface{} {
	return []interface{}{c.ID, c.Name, c.Icon, c.ColorName, c.ParentID, c.SortOrder, c.CategoryType}
}

func insertCategory(ctx context.Context, db *sqlx.DB, c *models.Category) error {
	if _, err := db.ExecContext(ctx, db.Rebind(insertCategoryQuery()), categoryArgs(c)...); err != nil {
		return fmt.Errorf("category create: %w", err)
	}
	return nil
}

func (s *Store) CategoryByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	if id == uuid.Nil {
		return nil, models.ErrInvalidArgument
	}
	q := s.rebind(`SELECT ` + categoryColumns + ` FROM categories WHERE id = ?`)

	var c models.Category
	if err := s.db.GetContext(ctx, &c, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("category get by id: %w", err)
	}
	return &c, nil
}

func (s *Store) UpdateCategory(ctx context.Context, c *models.Category) error {
	if c == nil || c.ID == uuid.Nil || c.Name == "" {
		return models.ErrInvalidArgument
	}
	q := s.rebind(`
		UPDATE categories
		SET name = ?, icon = ?, color_name = ?, parent_id = ?, sort_order = ?, category_type = ?
		WHERE id = ?
	`)
	res, err := s.db.ExecContext(ctx, q,
		c.Name, c.Icon, c.ColorName, c.ParentID, c.SortOrder, c.CategoryType, c.ID,
	)
	if err != nil {
		return fmt.Errorf("category update: %w", err)
	}
	return requireRow(res)
}

func (s *Store) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return models.ErrInvalidArgument
	}
	// The subtree cascades through the self-referencing FK; videos are
	// set to NULL by theirs.
	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM categories WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("category delete: %w", err)
	}
	return requireRow(res)
}

func (s *Store) ListCategories(ctx context.Context) ([]models.Category, error) {
	q := `SELECT ` + categoryColumns + ` FROM categories ORDER BY sort_order, name`

	var categories []models.Category
	if err := s.db.SelectContext(ctx, &categories, q); err != nil {
		return nil, fmt.Errorf("category list: %w", err)
	}
	return categories, nil
}

func (s *Store) CategoryByNameContains(ctx context.Context, sub string) (*models.Category, error) {
	if sub == "" {
		return nil, models.ErrInvalidArgument
	}
	q := s.rebind(`
		SELECT ` + categoryColumns + `
		FROM categories
		WHERE LOWER(name) LIKE '%' || LOWER(?) || '%'
		ORDER BY name
		LIMIT 1
	`)

	var c models.Category
	if err := s.db.GetContext(ctx, &c, q, sub); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("category find by name: %w", err)
	}
	return &c, nil
}

// Tags

func (s *Store) CreateTag(ctx context.Context, t *models.Tag) error {
	if t == nil || t.ID == uuid.Nil || t.Name == "" {
		return models.ErrInvalidArgument
	}
	q := s.rebind(`INSERT INTO tags (id, name, color_name) VALUES (?, ?, ?)`)
	if _, err := s.db.ExecContext(ctx, q, t.ID, t.Name, t.ColorName); err != nil {
		return fmt.Errorf("tag create: %w", err)
	}
	return nil
}

func (s *Store) TagByID(ctx context.Context, id uuid.UUID) (*models.Tag, error) {
	if id == uuid.Nil {
		return nil, models.ErrInvalidArgument
	}
	var t models.Tag
	if err := s.db.GetContext(ctx, &t, s.rebind(`SELECT id, name, color_name FROM tags WHERE id = ?`), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("tag get by id: %w", err)
	}
	return &t, nil
}

func (s *Store) ListTags(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	if err := s.db.SelectContext(ctx, &tags, `SELECT id, name, color_name FROM tags ORDER BY name`); err != nil {
		return nil, fmt.Errorf("tag list: %w", err)
	}
	return tags, nil
}

func (s *Store) DeleteTag(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return models.ErrInvalidArgument
	}
	// Join rows cascade; videos keep everything else.
	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM tags WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("tag delete: %w", err)
	}
	return requireRow(res)
}

func (s *Store) TagVideo(ctx context.Context, videoID, tagID uuid.UUID) error {
	if videoID == uuid.Nil || tagID == uuid.Nil {
		return models.ErrInvalidArgument
	}
	q := s.rebind(`INSERT INTO video_tags (video_id, tag_id) VALUES (?, ?) ON CONFLICT DO NOTHING`)
	if _, err := s.db.ExecContext(ctx, q, videoID, tagID); err != nil {
		return fmt.Errorf("tag video: %w", err)
	}
	return nil
}

func (s *Store) UntagVideo(ctx context.Context, videoID, tagID uuid.UUID) error {
	if videoID == uuid.Nil || tagID == uuid.Nil {
		return models.ErrInvalidArgument
	}
	q := s.rebind(`DELETE FROM video_tags WHERE video_id = ? AND tag_id = ?`)
	if _, err := s.db.ExecContext(ctx, q, videoID, tagID); err != nil {
		return fmt.Errorf("untag video: %w", err)
	}
	return nil
}

// Timestamps

func (s *Store) AddTimestamp(ctx context.Context, ts *models.VideoTimestamp) error {
	if ts == nil || ts.ID == uuid.Nil || ts.VideoID == uuid.Nil || ts.Time < 0 {
		return models.ErrInvalidArgument
	}
	q := s.rebind(`INSERT INTO timestamps (id, video_id, time, label) VALUES (?, ?, ?, ?)`)
	if _, err := s.db.ExecContext(ctx, q, ts.ID, ts.VideoID, ts.Time, ts.Label); err != nil {
		return fmt.Errorf("timestamp add: %w", err)
	}
	return nil
}

func (s *Store) DeleteTimestamp(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return models.ErrInvalidArgument
	}
	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM timestamps WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("timestamp delete: %w", err)
	}
	return requireRow(res)
}

// Batch

// sqlBatch queues statements and runs them in one transaction at
// Commit, so a failed commit durably persists nothing.
type sqlBatch struct {
	store *Store
	ops   []func(ctx context.Context, tx *sqlx.Tx) error
	done  bool
}

func (s *Store) Begin(ctx context.Context) (repository.Batch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &sqlBatch{store: s}, nil
}

func (b *sqlBatch) CreateVideo(v *models.Video) {
	cp := *v
	b.ops = append(b.ops, func(ctx context.Context, tx *sqlx.Tx) error {
		q := tx.Rebind(insertVideoQuery())
		if _, err := tx.ExecContext(ctx, q, videoArgs(&cp)...); err != nil {
			return fmt.Errorf("batch video create: %w", err)
		}
		return nil
	})
}

func (b *sqlBatch) CreateCategory(c *models.Category) {
	cp := *c
	b.ops = append(b.ops, func(ctx context.Context, tx *sqlx.Tx) error {
		q := tx.Rebind(insertCategoryQuery())
		if _, err := tx.ExecContext(ctx, q, categoryArgs(&cp)...); err != nil {
			return fmt.Errorf("batch category create: %w", err)
		}
		return nil
	})
}

func (b *sqlBatch) UpdateVideo(v *models.Video) {
	cp := *v
	b.ops = append(b.ops, func(ctx context.Context, tx *sqlx.Tx) error {
		q := tx.Rebind(`
			UPDATE videos
			SET title = ?, instructor = ?, description = ?, source_type = ?, source_url = ?,
			    local_path = ?, thumbnail_path = ?, duration = ?, category_id = ?,
			    progress_status = ?, is_favorite = ?, notes = ?, last_watched = ?,
			    gi_type = ?, level = ?, video_type = ?
			WHERE id = ?
		`)
		res, err := tx.ExecContext(ctx, q,
			cp.Title, cp.Instructor, cp.Description, cp.SourceType, cp.SourceURL,
			cp.LocalPath, cp.ThumbnailPath, cp.Duration, cp.CategoryID,
			cp.ProgressStatus, cp.IsFavorite, cp.Notes, cp.LastWatched,
			cp.GiType, cp.Level, cp.VideoType,
			cp.ID,
		)
		if err != nil {
			return fmt.Errorf("batch video update: %w", err)
		}
		return requireRow(res)
	})
}

func (b *sqlBatch) RecordEvent(e models.DomainEvent) {
	b.ops = append(b.ops, func(ctx context.Context, tx *sqlx.Tx) error {
		return b.store.outbox.Add(ctx, tx, e)
	})
}

func (b *sqlBatch) Commit(ctx context.Context) error {
	if b.done {
		return models.ErrInvalidArgument
	}
	b.done = true

	tx, err := b.store.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, op := range b.ops {
		if err := op(ctx, tx); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (b *sqlBatch) Rollback() error {
	b.done = true
	b.ops = nil
	return nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return models.ErrNotFound
	}
	return nil
}
