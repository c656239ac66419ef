package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/keaunsolNa/knock-crawling/internal/core/domain"
	"github.com/keaunsolNa/knock-crawling/internal/core/ports/driven"
)

// ==================== Record Store ====================

const recordColumns = `id, code, title, title_key, opening_time, closing_time,
	directors, cast_members, companies, reservation_links, poster, plot,
	domain, categories, running_time, venue, area, source_id, created_at, updated_at`

// recordStore implements driven.RecordStore.
type recordStore struct {
	store *Store
	now   func() time.Time
}

var _ driven.RecordStore = (*recordStore)(nil)

// FindByCode returns the record with the exact code.
func (s *recordStore) FindByCode(ctx context.Context, code string) (*domain.CanonicalRecord, error) {
	if code == "" {
		return nil, domain.ErrNotFound
	}
	row := s.store.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM records WHERE code = ? LIMIT 1`, code)
	return scanRecord(row)
}

// FindByTitleKey returns the earliest record with the exact title key.
func (s *recordStore) FindByTitleKey(ctx context.Context, titleKey string) (*domain.CanonicalRecord, error) {
	if titleKey == "" {
		return nil, domain.ErrNotFound
	}
	row := s.store.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM records WHERE title_key = ? ORDER BY rowid LIMIT 1`, titleKey)
	return scanRecord(row)
}

// Get retrieves a record by ID.
func (s *recordStore) Get(ctx context.Context, id string) (*domain.CanonicalRecord, error) {
	row := s.store.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM records WHERE id = ?`, id)
	return scanRecord(row)
}

// Scan pages through the table by ID so a long scan never holds a read
// transaction open between pages.
func (s *recordStore) Scan(ctx context.Context, pageSize int, fn func([]domain.CanonicalRecord) error) error {
	if pageSize <= 0 {
		return fmt.Errorf("%w: page size %d", domain.ErrInvalidInput, pageSize)
	}

	after := ""
	for {
		page, err := s.query(ctx,
			`SELECT `+recordColumns+` FROM records WHERE id > ? ORDER BY id LIMIT ?`, after, pageSize)
		if err != nil {
			return err
		}
		if len(page) == 0 {
			return nil
		}
		if err := fn(page); err != nil {
			return err
		}
		if len(page) < pageSize {
			return nil
		}
		after = page[len(page)-1].ID
	}
}

// Bulk applies each operation as its own statement. A failed operation
// does not affect its siblings.
func (s *recordStore) Bulk(ctx context.Context, ops []domain.WriteOp) ([]domain.OpResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	results := make([]domain.OpResult, len(ops))
	for i, op := range ops {
		switch op.Kind {
		case domain.OpCreate:
			results[i] = s.create(ctx, op.Record)
		case domain.OpUpdate:
			results[i] = s.update(ctx, op.ID, op.Patch)
		default:
			results[i] = domain.OpResult{Err: fmt.Errorf("%w: operation %q", domain.ErrInvalidInput, op.Kind)}
		}
	}
	return results, nil
}

func (s *recordStore) create(ctx context.Context, rec *domain.CanonicalRecord) domain.OpResult {
	if rec == nil || rec.ID == "" {
		return domain.OpResult{Err: fmt.Errorf("%w: record without ID", domain.ErrStoreWrite)}
	}

	now := s.now().UTC()
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}
	categories, err := json.Marshal(nonNilRefs(rec.Categories))
	if err != nil {
		return domain.OpResult{ID: rec.ID, Err: fmt.Errorf("%w: marshalling categories: %w", domain.ErrStoreWrite, err)}
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO records (`+recordColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.Code, rec.Title, rec.TitleKey, rec.OpeningTime, rec.ClosingTime,
		encodeList(rec.Directors), encodeList(rec.Cast), encodeList(rec.Companies),
		encodeList(padLinks(rec.ReservationLinks)), rec.Poster, rec.Plot,
		rec.Domain.String(), string(categories), rec.RunningTime, rec.Venue, rec.Area, rec.SourceID,
		formatTime(createdAt), formatTime(now))
	if err != nil {
		return domain.OpResult{ID: rec.ID, Err: fmt.Errorf("%w: inserting %s: %w", domain.ErrStoreWrite, rec.Key(), err)}
	}
	return domain.OpResult{ID: rec.ID}
}

// update writes only the fields the patch sets, in one statement.
func (s *recordStore) update(ctx context.Context, id string, patch domain.RecordPatch) domain.OpResult {
	sets := []string{"updated_at = ?"}
	args := []any{formatTime(s.now())}
	if patch.ReservationLinks != nil {
		sets = append(sets, "reservation_links = ?")
		args = append(args, encodeList(padLinks(patch.ReservationLinks)))
	}
	if patch.Poster != nil {
		sets = append(sets, "poster = ?")
		args = append(args, *patch.Poster)
	}
	if patch.Plot != nil {
		sets = append(sets, "plot = ?")
		args = append(args, *patch.Plot)
	}
	args = append(args, id)

	res, err := s.store.db.ExecContext(ctx,
		`UPDATE records SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return domain.OpResult{ID: id, Err: fmt.Errorf("%w: updating %s: %w", domain.ErrStoreWrite, id, err)}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.OpResult{ID: id, Err: fmt.Errorf("%w: updating %s: %w", domain.ErrStoreWrite, id, err)}
	}
	if n == 0 {
		return domain.OpResult{ID: id, Err: fmt.Errorf("record %s: %w", id, domain.ErrNotFound)}
	}
	return domain.OpResult{ID: id}
}

// List returns records ordered by opening time, newest first.
func (s *recordStore) List(ctx context.Context, limit, offset int) ([]domain.CanonicalRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	return s.query(ctx, `SELECT `+recordColumns+` FROM records
		ORDER BY opening_time DESC, title LIMIT ? OFFSET ?`, limit, offset)
}

// Count returns the number of records.
func (s *recordStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.store.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting records: %w", err)
	}
	return n, nil
}

func (s *recordStore) query(ctx context.Context, query string, args ...any) ([]domain.CanonicalRecord, error) {
	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	records := []domain.CanonicalRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating records: %w", err)
	}
	return records, nil
}

func scanRecord(row rowScanner) (*domain.CanonicalRecord, error) {
	var (
		rec                                     domain.CanonicalRecord
		directors, cast, companies, links, cats string
		dom, createdAt, updatedAt               string
	)
	err := row.Scan(&rec.ID, &rec.Code, &rec.Title, &rec.TitleKey, &rec.OpeningTime, &rec.ClosingTime,
		&directors, &cast, &companies, &links, &rec.Poster, &rec.Plot,
		&dom, &cats, &rec.RunningTime, &rec.Venue, &rec.Area, &rec.SourceID, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning record: %w", err)
	}

	if rec.Directors, err = decodeList("directors", directors); err != nil {
		return nil, err
	}
	if rec.Cast, err = decodeList("cast_members", cast); err != nil {
		return nil, err
	}
	if rec.Companies, err = decodeList("companies", companies); err != nil {
		return nil, err
	}
	if rec.ReservationLinks, err = decodeList("reservation_links", links); err != nil {
		return nil, err
	}
	rec.ReservationLinks = padLinks(rec.ReservationLinks)
	if err := json.Unmarshal([]byte(cats), &rec.Categories); err != nil {
		return nil, fmt.Errorf("unmarshalling categories: %w", err)
	}

	rec.Domain = domain.Domain(dom)
	rec.CreatedAt = parseTime(createdAt)
	rec.UpdatedAt = parseTime(updatedAt)
	return &rec, nil
}

// padLinks returns a copy with exactly ReservationSlotCount positions.
func padLinks(links []string) []string {
	out := make([]string, domain.ReservationSlotCount)
	copy(out, links)
	return out
}

func nonNilRefs(refs []domain.CategoryRef) []domain.CategoryRef {
	if refs == nil {
		return []domain.CategoryRef{}
	}
	return refs
}
