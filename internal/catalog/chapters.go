package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
)

// WordCount counts whitespace-separated runs of printable text.
func WordCount(text string) int {
	return len(strings.FieldsFunc(text, unicode.IsSpace))
}

// UpsertChapter inserts a chapter or updates it in place when the novel
// already has one with the same number. Chapter number and novel ownership
// never change on update; only title, texts, and derived word count do.
// Returns true when a new row was created.
func (s *Store) UpsertChapter(ctx context.Context, chapter *Chapter) (bool, error) {
	if chapter == nil {
		return false, errors.New("chapter is nil")
	}
	if chapter.NovelID == 0 {
		return false, errors.New("chapter requires a novel id")
	}
	if chapter.Number <= 0 {
		return false, fmt.Errorf("chapter number must be positive, got %d", chapter.Number)
	}

	existing, err := s.GetChapter(ctx, chapter.NovelID, chapter.Number)
	if err != nil {
		return false, err
	}

	now := time.Now().UTC()
	timestamp := now.Format(time.RFC3339Nano)

	if chapter.WordCount == 0 {
		chapter.WordCount = WordCount(chapter.CleanText)
	}

	if existing == nil {
		res, err := s.db.ExecContext(
			ctx,
			`INSERT INTO chapters (novel_id, number, title, raw_text, clean_text, word_count, published, price, created_at, updated_at)
             VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
             ON CONFLICT (novel_id, number) DO UPDATE SET
                 title = excluded.title,
                 raw_text = excluded.raw_text,
                 clean_text = excluded.clean_text,
                 word_count = excluded.word_count,
                 updated_at = excluded.updated_at`,
			chapter.NovelID,
			chapter.Number,
			nullableString(chapter.Title),
			nullableString(chapter.RawText),
			nullableString(chapter.CleanText),
			chapter.WordCount,
			boolToInt(chapter.Published),
			chapter.Price,
			timestamp,
			timestamp,
		)
		if err != nil {
			return false, fmt.Errorf("insert chapter: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return false, fmt.Errorf("last insert id: %w", err)
		}
		chapter.ID = id
		chapter.CreatedAt = now
		chapter.UpdatedAt = now
		return true, nil
	}

	_, err = s.db.ExecContext(
		ctx,
		`UPDATE chapters
         SET title = ?, raw_text = ?, clean_text = ?, word_count = ?, updated_at = ?
         WHERE novel_id = ? AND number = ?`,
		nullableString(chapter.Title),
		nullableString(chapter.RawText),
		nullableString(chapter.CleanText),
		chapter.WordCount,
		timestamp,
		chapter.NovelID,
		chapter.Number,
	)
	if err != nil {
		return false, fmt.Errorf("update chapter: %w", err)
	}
	chapter.ID = existing.ID
	chapter.Published = existing.Published
	chapter.Price = existing.Price
	chapter.CreatedAt = existing.CreatedAt
	chapter.UpdatedAt = now
	return false, nil
}

// GetChapter returns the chapter with the given number, or nil.
func (s *Store) GetChapter(ctx context.Context, novelID int64, number int) (*Chapter, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+chapterColumns+` FROM chapters WHERE novel_id = ? AND number = ?`,
		novelID,
		number,
	)
	chapter, err := scanChapter(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get chapter: %w", err)
	}
	return chapter, nil
}

// ListChapters returns a novel's chapters ordered by number.
func (s *Store) ListChapters(ctx context.Context, novelID int64) ([]*Chapter, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+chapterColumns+` FROM chapters WHERE novel_id = ? ORDER BY number`,
		novelID,
	)
	if err != nil {
		return nil, fmt.Errorf("list chapters: %w", err)
	}
	defer rows.Close()

	var list []*Chapter
	for rows.Next() {
		chapter, err := scanChapter(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, chapter)
	}
	return list, rows.Err()
}

// ChapterCount returns the number of chapters recorded for a novel.
func (s *Store) ChapterCount(ctx context.Context, novelID int64) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM chapters WHERE novel_id = ?`, novelID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count chapters: %w", err)
	}
	return count, nil
}

// UpdateChapterCleanText rewrites a chapter's cleaned text and word count.
// Used by the normalizer backfill pass; raw text is never touched.
func (s *Store) UpdateChapterCleanText(ctx context.Context, chapterID int64, cleanText string) error {
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE chapters SET clean_text = ?, word_count = ?, updated_at = ? WHERE id = ?`,
		nullableString(cleanText),
		WordCount(cleanText),
		time.Now().UTC().Format(time.RFC3339Nano),
		chapterID,
	)
	if err != nil {
		return fmt.Errorf("update chapter clean text: %w", err)
	}
	return nil
}

const chapterColumns = "id, novel_id, number, title, raw_text, clean_text, word_count, published, price, created_at, updated_at"

func scanChapter(scanner interface{ Scan(dest ...any) error }) (*Chapter, error) {
	var (
		id         int64
		novelID    int64
		number     int
		title      sql.NullString
		rawText    sql.NullString
		cleanText  sql.NullString
		wordCount  int
		published  sql.NullInt64
		price      sql.NullFloat64
		createdRaw sql.NullString
		updatedRaw sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&novelID,
		&number,
		&title,
		&rawText,
		&cleanText,
		&wordCount,
		&published,
		&price,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	chapter := &Chapter{
		ID:        id,
		NovelID:   novelID,
		Number:    number,
		Title:     title.String,
		RawText:   rawText.String,
		CleanText: cleanText.String,
		WordCount: wordCount,
		Price:     price.Float64,
	}
	if published.Valid {
		chapter.Published = published.Int64 != 0
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		chapter.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		chapter.UpdatedAt = updated
	}
	return chapter, nil
}
