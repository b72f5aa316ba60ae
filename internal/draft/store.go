// Package draft keeps unsubmitted reports on local disk so a failed save
// never loses typed content. A draft stores the editable markup plus the
// image metadata already uploaded, so retrying re-encodes instead of
// re-uploading.
package draft

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"laporan/internal/content"
)

var ErrNotFound = errors.New("draft not found")

type Draft struct {
	ID         string
	Category   string
	ReportDate string
	// RemoteID is the server id when the draft edits an existing report,
	// 0 for a new one.
	RemoteID  int64
	Markup    string
	Images    []content.ImageRef
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return err
	}
	version, err := s.storedVersion(ctx)
	if err != nil {
		return err
	}
	if version != schemaVersion {
		return s.setVersion(ctx, schemaVersion)
	}
	return nil
}

func (s *Store) storedVersion(ctx context.Context) (int, error) {
	var v int
	err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return v, nil
}

func (s *Store) setVersion(ctx context.Context, v int) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM schema_version"); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, "INSERT INTO schema_version(version) VALUES(?)", v)
	return err
}

// Stash inserts or updates a draft and returns its id. A draft without an
// id gets a fresh one.
func (s *Store) Stash(ctx context.Context, d Draft) (string, error) {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	images, err := json.Marshal(d.Images)
	if err != nil {
		return "", err
	}
	now := time.Now().Unix()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO drafts(id, category, report_date, remote_id, markup, images_json, created_at, updated_at)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			category=excluded.category,
			report_date=excluded.report_date,
			remote_id=excluded.remote_id,
			markup=excluded.markup,
			images_json=excluded.images_json,
			updated_at=excluded.updated_at
	`, d.ID, d.Category, d.ReportDate, d.RemoteID, d.Markup, string(images), now, now)
	if err != nil {
		return "", err
	}
	return d.ID, nil
}

func (s *Store) Get(ctx context.Context, id string) (Draft, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, category, report_date, remote_id, markup, images_json, created_at, updated_at
		FROM drafts WHERE id=?
	`, id)
	d, err := scanDraft(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return Draft{}, ErrNotFound
	}
	return d, err
}

func (s *Store) List(ctx context.Context) ([]Draft, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, category, report_date, remote_id, markup, images_json, created_at, updated_at
		FROM drafts ORDER BY updated_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Draft
	for rows.Next() {
		d, err := scanDraft(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM drafts WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanDraft(scan func(dest ...any) error) (Draft, error) {
	var d Draft
	var images string
	var createdAt, updatedAt int64
	if err := scan(&d.ID, &d.Category, &d.ReportDate, &d.RemoteID, &d.Markup, &images, &createdAt, &updatedAt); err != nil {
		return Draft{}, err
	}
	if err := json.Unmarshal([]byte(images), &d.Images); err != nil {
		return Draft{}, err
	}
	d.CreatedAt = time.Unix(createdAt, 0).Local()
	d.UpdatedAt = time.Unix(updatedAt, 0).Local()
	return d, nil
}
