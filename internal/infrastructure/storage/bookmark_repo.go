// Package storage provides SQLite-based repositories for bookmarks, sync
// state, and the sync pass log.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jbctechsolutions/markkeep/internal/application/ports"
	"github.com/jbctechsolutions/markkeep/internal/domain/bookmark"
	domainErrors "github.com/jbctechsolutions/markkeep/internal/domain/errors"
)

// Compile-time check that BookmarkRepository implements BookmarkStoragePort.
var _ ports.BookmarkStoragePort = (*BookmarkRepository)(nil)

// BookmarkRepository implements BookmarkStoragePort using SQLite.
type BookmarkRepository struct {
	db *sql.DB
}

// NewBookmarkRepository creates a new bookmark repository.
func NewBookmarkRepository(db *sql.DB) *BookmarkRepository {
	return &BookmarkRepository{db: db}
}

// Create persists a new bookmark to storage.
func (r *BookmarkRepository) Create(ctx context.Context, b *bookmark.Bookmark) error {
	if b.ID == "" {
		return domainErrors.NewError(domainErrors.CodeValidation, "bookmark ID is required", nil)
	}

	tagsJSON, err := marshalTags(b.Tags)
	if err != nil {
		return fmt.Errorf("failed to marshal tags: %w", err)
	}

	query := `
		INSERT INTO bookmarks (id, url, title, tags, excerpt, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.ExecContext(ctx, query,
		b.ID,
		b.URL,
		b.Title,
		tagsJSON,
		nullableString(b.Excerpt),
		b.CreatedAt.Format(time.RFC3339),
		b.UpdatedAt.Format(time.RFC3339),
	)

	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return domainErrors.ErrDuplicateBookmark
		}
		return fmt.Errorf("failed to create bookmark: %w", err)
	}

	return nil
}

// Get retrieves a bookmark by its unique identifier.
func (r *BookmarkRepository) Get(ctx context.Context, id string) (*bookmark.Bookmark, error) {
	query := `
		SELECT id, url, title, tags, excerpt, created_at, updated_at
		FROM bookmarks
		WHERE id = ?
	`

	b, err := scanBookmarkRow(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, domainErrors.ErrBookmarkNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bookmark: %w", err)
	}

	return b, nil
}

// GetByURL retrieves a bookmark by its URL.
func (r *BookmarkRepository) GetByURL(ctx context.Context, rawURL string) (*bookmark.Bookmark, error) {
	query := `
		SELECT id, url, title, tags, excerpt, created_at, updated_at
		FROM bookmarks
		WHERE url = ?
	`

	b, err := scanBookmarkRow(r.db.QueryRowContext(ctx, query, rawURL))
	if err == sql.ErrNoRows {
		return nil, domainErrors.ErrBookmarkNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bookmark by url: %w", err)
	}

	return b, nil
}

// GetAll returns every stored bookmark keyed by ID.
func (r *BookmarkRepository) GetAll(ctx context.Context) (map[string]*bookmark.Bookmark, error) {
	query := `
		SELECT id, url, title, tags, excerpt, created_at, updated_at
		FROM bookmarks
	`

	bookmarks, err := r.queryBookmarks(ctx, query)
	if err != nil {
		return nil, err
	}

	all := make(map[string]*bookmark.Bookmark, len(bookmarks))
	for _, b := range bookmarks {
		all[b.ID] = b
	}
	return all, nil
}

// List returns bookmarks matching the filter criteria, most recently
// updated first. A nil filter returns everything.
func (r *BookmarkRepository) List(ctx context.Context, filter *bookmark.Filter) ([]*bookmark.Bookmark, error) {
	query := `
		SELECT id, url, title, tags, excerpt, created_at, updated_at
		FROM bookmarks
		WHERE 1=1
	`
	args := []any{}

	if filter != nil {
		if filter.Tag != "" {
			// Tags are stored as a JSON array of lowercase strings, so an
			// exact tag match is a quoted substring match.
			tag := strings.ToLower(strings.TrimSpace(filter.Tag))
			query += " AND tags LIKE ?"
			args = append(args, `%"`+tag+`"%`)
		}
		if filter.Query != "" {
			pattern := "%" + strings.TrimSpace(filter.Query) + "%"
			query += " AND (url LIKE ? OR title LIKE ? OR excerpt LIKE ? OR tags LIKE ?)"
			args = append(args, pattern, pattern, pattern, pattern)
		}
	}

	query += " ORDER BY updated_at DESC, url ASC"

	if filter != nil && filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	return r.queryBookmarks(ctx, query, args...)
}

// Update persists changes to an existing bookmark.
func (r *BookmarkRepository) Update(ctx context.Context, b *bookmark.Bookmark) error {
	if b.ID == "" {
		return domainErrors.NewError(domainErrors.CodeValidation, "bookmark ID is required", nil)
	}

	tagsJSON, err := marshalTags(b.Tags)
	if err != nil {
		return fmt.Errorf("failed to marshal tags: %w", err)
	}

	query := `
		UPDATE bookmarks
		SET url = ?, title = ?, tags = ?, excerpt = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		b.URL,
		b.Title,
		tagsJSON,
		nullableString(b.Excerpt),
		b.UpdatedAt.Format(time.RFC3339),
		b.ID,
	)

	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return domainErrors.ErrDuplicateBookmark
		}
		return fmt.Errorf("failed to update bookmark: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}

	if rows == 0 {
		return domainErrors.ErrBookmarkNotFound
	}

	return nil
}

// Delete removes a bookmark from storage.
func (r *BookmarkRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM bookmarks WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete bookmark: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}

	if rows == 0 {
		return domainErrors.ErrBookmarkNotFound
	}

	return nil
}

// Count returns the number of stored bookmarks.
func (r *BookmarkRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bookmarks`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count bookmarks: %w", err)
	}
	return count, nil
}

// queryBookmarks executes a query and returns multiple bookmarks.
func (r *BookmarkRepository) queryBookmarks(ctx context.Context, query string, args ...any) ([]*bookmark.Bookmark, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookmarks: %w", err)
	}
	defer rows.Close()

	var bookmarks []*bookmark.Bookmark
	for rows.Next() {
		b, err := scanBookmarkRows(rows)
		if err != nil {
			return nil, err
		}
		bookmarks = append(bookmarks, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bookmarks: %w", err)
	}

	return bookmarks, nil
}

// scanBookmarkRow scans a single row into a bookmark.
func scanBookmarkRow(row *sql.Row) (*bookmark.Bookmark, error) {
	var (
		id, url, title       string
		tags, excerpt        sql.NullString
		createdAt, updatedAt string
	)

	err := row.Scan(&id, &url, &title, &tags, &excerpt, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	return buildBookmark(id, url, title, tags, excerpt, createdAt, updatedAt)
}

// scanBookmarkRows scans rows into a bookmark.
func scanBookmarkRows(rows *sql.Rows) (*bookmark.Bookmark, error) {
	var (
		id, url, title       string
		tags, excerpt        sql.NullString
		createdAt, updatedAt string
	)

	err := rows.Scan(&id, &url, &title, &tags, &excerpt, &createdAt, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to scan bookmark: %w", err)
	}

	return buildBookmark(id, url, title, tags, excerpt, createdAt, updatedAt)
}

// buildBookmark constructs a Bookmark domain entity from database fields.
func buildBookmark(id, url, title string, tags, excerpt sql.NullString, createdAt, updatedAt string) (*bookmark.Bookmark, error) {
	b := &bookmark.Bookmark{
		ID:    id,
		URL:   url,
		Title: title,
	}

	if excerpt.Valid {
		b.Excerpt = excerpt.String
	}

	if tags.Valid && tags.String != "" && tags.String != "null" {
		if err := json.Unmarshal([]byte(tags.String), &b.Tags); err != nil {
			return nil, fmt.Errorf("failed to unmarshal tags: %w", err)
		}
	}

	parsedCreatedAt, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	b.CreatedAt = parsedCreatedAt

	parsedUpdatedAt, err := time.Parse(time.RFC3339, updatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	b.UpdatedAt = parsedUpdatedAt

	return b, nil
}

// marshalTags serializes a tag list to JSON, using NULL for an empty list.
func marshalTags(tags []string) (sql.NullString, error) {
	if len(tags) == 0 {
		return sql.NullString{Valid: false}, nil
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// nullableString returns a sql.NullString for the given string.
func nullableString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}
