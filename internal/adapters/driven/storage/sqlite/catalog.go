package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/keaunsolNa/knock-crawling/internal/core/domain"
	"github.com/keaunsolNa/knock-crawling/internal/core/ports/driven"
)

// ==================== Category Store ====================

// categoryStore implements driven.CategoryStore.
type categoryStore struct {
	store *Store
}

var _ driven.CategoryStore = (*categoryStore)(nil)

// ListByParent returns every category under a parent domain.
func (s *categoryStore) ListByParent(ctx context.Context, parent string) ([]domain.Category, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, name, parent FROM categories WHERE parent_key = ? ORDER BY name
	`, domain.CategoryKey(parent))
	if err != nil {
		return nil, fmt.Errorf("querying categories: %w", err)
	}
	defer rows.Close()

	var categories []domain.Category //nolint:prealloc // size unknown from query
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Parent); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating categories: %w", err)
	}
	return categories, nil
}

// Find returns the category whose normalised name and parent match, the
// same keys the unique index uses.
func (s *categoryStore) Find(ctx context.Context, name, parent string) (*domain.Category, error) {
	var c domain.Category
	err := s.store.db.QueryRowContext(ctx, `
		SELECT id, name, parent FROM categories WHERE name_key = ? AND parent_key = ?
	`, domain.CategoryKey(name), domain.CategoryKey(parent)).Scan(&c.ID, &c.Name, &c.Parent)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning category: %w", err)
	}
	return &c, nil
}

// Create stores a new category. A second category with the same
// normalised name and parent is rejected.
func (s *categoryStore) Create(ctx context.Context, c domain.Category) error {
	if c.ID == "" {
		return fmt.Errorf("%w: category without ID", domain.ErrInvalidInput)
	}
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO categories (id, name, parent, name_key, parent_key)
		VALUES (?, ?, ?, ?, ?)
	`, c.ID, c.Name, c.Parent, domain.CategoryKey(c.Name), domain.CategoryKey(c.Parent))
	if err != nil {
		return fmt.Errorf("%w: creating category %s/%s: %w", domain.ErrStoreWrite, c.Parent, c.Name, err)
	}
	return nil
}

// ==================== Authoritative Store ====================

// authoritativeStore implements driven.AuthoritativeStore.
type authoritativeStore struct {
	store *Store
}

var _ driven.AuthoritativeStore = (*authoritativeStore)(nil)

// ListAll returns every entry in load order.
func (s *authoritativeStore) ListAll(ctx context.Context) ([]domain.AuthoritativeEntry, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT code, title, opening_time, directors, cast_members, companies, genres, running_time
		FROM authoritative_index ORDER BY rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("querying authoritative index: %w", err)
	}
	defer rows.Close()

	var entries []domain.AuthoritativeEntry //nolint:prealloc // size unknown from query
	for rows.Next() {
		var (
			e                                  domain.AuthoritativeEntry
			directors, cast, companies, genres string
		)
		if err := rows.Scan(&e.Code, &e.Title, &e.OpeningTime,
			&directors, &cast, &companies, &genres, &e.RunningTime); err != nil {
			return nil, fmt.Errorf("scanning authoritative entry: %w", err)
		}
		if e.Directors, err = decodeList("directors", directors); err != nil {
			return nil, err
		}
		if e.Cast, err = decodeList("cast_members", cast); err != nil {
			return nil, err
		}
		if e.Companies, err = decodeList("companies", companies); err != nil {
			return nil, err
		}
		if e.Genres, err = decodeList("genres", genres); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating authoritative index: %w", err)
	}
	return entries, nil
}

// Import stores or replaces entries by code in one transaction.
func (s *authoritativeStore) Import(ctx context.Context, entries []domain.AuthoritativeEntry) (int, error) {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO authoritative_index (code, title, opening_time, directors, cast_members, companies, genres, running_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(code) DO UPDATE SET
			title = excluded.title,
			opening_time = excluded.opening_time,
			directors = excluded.directors,
			cast_members = excluded.cast_members,
			companies = excluded.companies,
			genres = excluded.genres,
			running_time = excluded.running_time
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, e.Code, e.Title, e.OpeningTime,
			encodeList(e.Directors), encodeList(e.Cast), encodeList(e.Companies), encodeList(e.Genres),
			e.RunningTime); err != nil {
			return 0, fmt.Errorf("importing %s: %w", e.Code, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing transaction: %w", err)
	}
	return len(entries), nil
}
