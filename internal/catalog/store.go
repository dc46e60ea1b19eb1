package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"quill/internal/config"
)

// Store manages catalog persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the catalog database.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.DataDir, "catalog.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Path returns the location of the backing database file.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// CreateNovel inserts a new novel. The slug must already be disambiguated;
// a UNIQUE violation is returned as-is so callers can retry with a new slug.
func (s *Store) CreateNovel(ctx context.Context, novel *Novel) error {
	if novel == nil {
		return errors.New("novel is nil")
	}
	if strings.TrimSpace(novel.Title) == "" {
		return errors.New("novel title is required")
	}
	if strings.TrimSpace(novel.Slug) == "" {
		return errors.New("novel slug is required")
	}
	if novel.Status == "" {
		novel.Status = NovelUnknown
	}

	now := time.Now().UTC()
	timestamp := now.Format(time.RFC3339Nano)

	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO novels (title, slug, author, synopsis, cover_url, source_url, status, language, ingested, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		novel.Title,
		novel.Slug,
		nullableString(novel.Author),
		nullableString(novel.Synopsis),
		nullableString(novel.CoverURL),
		nullableString(novel.SourceURL),
		string(novel.Status),
		nullableString(novel.Language),
		boolToInt(novel.Ingested),
		timestamp,
		timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert novel: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	novel.ID = id
	novel.CreatedAt = now
	novel.UpdatedAt = now
	return nil
}

// UpdateNovel persists changes to an existing novel. Slug is immutable.
func (s *Store) UpdateNovel(ctx context.Context, novel *Novel) error {
	if novel == nil {
		return errors.New("novel is nil")
	}
	novel.UpdatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE novels
         SET title = ?, author = ?, synopsis = ?, cover_url = ?, source_url = ?,
             status = ?, language = ?, ingested = ?, updated_at = ?
         WHERE id = ?`,
		novel.Title,
		nullableString(novel.Author),
		nullableString(novel.Synopsis),
		nullableString(novel.CoverURL),
		nullableString(novel.SourceURL),
		string(novel.Status),
		nullableString(novel.Language),
		boolToInt(novel.Ingested),
		novel.UpdatedAt.Format(time.RFC3339Nano),
		novel.ID,
	)
	if err != nil {
		return fmt.Errorf("update novel: %w", err)
	}
	return nil
}

// GetNovel fetches a novel by identifier. Returns nil when no novel matches.
func (s *Store) GetNovel(ctx context.Context, id int64) (*Novel, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+novelColumns+` FROM novels WHERE id = ?`, id)
	novel, err := scanNovel(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get novel: %w", err)
	}
	return novel, nil
}

// FindBySlug returns the novel with the given slug, or nil.
func (s *Store) FindBySlug(ctx context.Context, slug string) (*Novel, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+novelColumns+` FROM novels WHERE slug = ?`, slug)
	novel, err := scanNovel(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find novel by slug: %w", err)
	}
	return novel, nil
}

// FindBySourceURL returns the first novel recorded for a source URL, or nil.
func (s *Store) FindBySourceURL(ctx context.Context, sourceURL string) (*Novel, error) {
	sourceURL = strings.TrimSpace(sourceURL)
	if sourceURL == "" {
		return nil, nil
	}
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+novelColumns+` FROM novels WHERE source_url = ? ORDER BY id LIMIT 1`,
		sourceURL,
	)
	novel, err := scanNovel(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find novel by source url: %w", err)
	}
	return novel, nil
}

// ListNovels returns all novels ordered by creation time.
func (s *Store) ListNovels(ctx context.Context) ([]*Novel, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+novelColumns+` FROM novels ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list novels: %w", err)
	}
	defer rows.Close()

	var list []*Novel
	for rows.Next() {
		novel, err := scanNovel(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, novel)
	}
	return list, rows.Err()
}

// ListTitles returns the identity slice of every novel for reconciliation
// matching. The caller receives a snapshot; it is not kept current.
func (s *Store) ListTitles(ctx context.Context) ([]TitleEntry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, title, slug, COALESCE(source_url, '') FROM novels ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list titles: %w", err)
	}
	defer rows.Close()

	var entries []TitleEntry
	for rows.Next() {
		var entry TitleEntry
		if err := rows.Scan(&entry.ID, &entry.Title, &entry.Slug, &entry.SourceURL); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// SlugExists reports whether any novel already uses the given slug.
func (s *Store) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM novels WHERE slug = ?`, slug).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check slug: %w", err)
	}
	return count > 0, nil
}

// NextAvailableSlug disambiguates a slug base against existing novels by
// appending an incrementing numeric suffix: foo, foo-2, foo-3, ...
func (s *Store) NextAvailableSlug(ctx context.Context, base string) (string, error) {
	base = strings.TrimSpace(base)
	if base == "" {
		base = "untitled"
	}
	candidate := base
	for suffix := 2; ; suffix++ {
		exists, err := s.SlugExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, suffix)
	}
}

// DeleteNovel removes a novel and, via the foreign key cascade, its chapters.
func (s *Store) DeleteNovel(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM novels WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete novel: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

const novelColumns = "id, title, slug, author, synopsis, cover_url, source_url, status, language, ingested, created_at, updated_at"

func scanNovel(scanner interface{ Scan(dest ...any) error }) (*Novel, error) {
	var (
		id         int64
		title      string
		slug       string
		author     sql.NullString
		synopsis   sql.NullString
		coverURL   sql.NullString
		sourceURL  sql.NullString
		statusStr  string
		language   sql.NullString
		ingested   sql.NullInt64
		createdRaw sql.NullString
		updatedRaw sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&title,
		&slug,
		&author,
		&synopsis,
		&coverURL,
		&sourceURL,
		&statusStr,
		&language,
		&ingested,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	novel := &Novel{
		ID:        id,
		Title:     title,
		Slug:      slug,
		Author:    author.String,
		Synopsis:  synopsis.String,
		CoverURL:  coverURL.String,
		SourceURL: sourceURL.String,
		Status:    NovelStatus(statusStr),
		Language:  language.String,
	}
	if ingested.Valid {
		novel.Ingested = ingested.Int64 != 0
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		novel.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		novel.UpdatedAt = updated
	}
	return novel, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
