package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"path/filepath"
	"strings"
	"time"

	"github.com/jrsteele09/wedding-site/auth"
	"github.com/jrsteele09/wedding-site/internal/database/sqlite/migrations"
	"github.com/jrsteele09/wedding-site/internal/errors"
	"github.com/jrsteele09/wedding-site/rsvps"
	"github.com/jrsteele09/wedding-site/siteconfig"
	_ "modernc.org/sqlite"
)

// Fixed width so that text ordering matches time ordering.
const timeFormat = "2006-01-02T15:04:05.000000Z07:00"

const defaultAuditLimit = 100

var (
	_ siteconfig.Repo = SiteConfigStore{}
	_ rsvps.Repo      = RSVPStore{}
	_ auth.AuditRepo  = AuditStore{}
)

// Store is the SQLite-backed store for site content, RSVPs and the login
// audit log.
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

// Open opens a SQLite store at path and applies pending migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("storage path is required")
	}

	dsn := filepath.Clean(path) +
		"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "open sqlite db")
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, errors.Wrapf(err, "ping sqlite db")
	}

	if err := applyMigrations(context.Background(), sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, errors.Wrapf(err, "run migrations")
	}

	return &Store{sqlDB: sqlDB, now: time.Now}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) timestamp() string {
	return s.now().UTC().Format(timeFormat)
}

func parseTime(v string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

// SiteConfigStore keeps the single site config document.
type SiteConfigStore struct{ *Store }

func (s *Store) SiteConfig() SiteConfigStore { return SiteConfigStore{s} }

func (s SiteConfigStore) Get(ctx context.Context) (siteconfig.Document, error) {
	var raw string
	err := s.sqlDB.QueryRowContext(ctx, `SELECT config FROM site_config WHERE id = 1`).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get site config")
	}
	return siteconfig.Document(raw), nil
}

func (s SiteConfigStore) Put(ctx context.Context, doc siteconfig.Document) error {
	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO site_config (id, config, updated_at) VALUES (1, ?, ?)
ON CONFLICT(id) DO UPDATE SET config = excluded.config, updated_at = excluded.updated_at`,
		string(doc), s.timestamp())
	if err != nil {
		return errors.Wrapf(err, "put site config")
	}
	return nil
}

type RSVPStore struct{ *Store }

func (s *Store) RSVPs() RSVPStore { return RSVPStore{s} }

func (s RSVPStore) Create(ctx context.Context, r *rsvps.RSVP) error {
	events, err := json.Marshal(r.Events)
	if err != nil {
		return errors.Wrapf(err, "encode rsvp events")
	}
	now := s.timestamp()

	res, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO rsvps (full_name, email, num_guests, events, dietary, message, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.FullName, r.Email, r.NumGuests, string(events), r.Dietary, r.Message, now, now)
	if err != nil {
		return errors.Wrapf(err, "insert rsvp")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return errors.Wrapf(err, "rsvp id")
	}

	r.ID = id
	r.CreatedAt = parseTime(now)
	r.UpdatedAt = r.CreatedAt
	return nil
}

func (s RSVPStore) List(ctx context.Context) ([]rsvps.RSVP, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, full_name, email, num_guests, events, dietary, message, created_at, updated_at
FROM rsvps ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, errors.Wrapf(err, "list rsvps")
	}
	defer rows.Close()

	list := []rsvps.RSVP{}
	for rows.Next() {
		var (
			r                    rsvps.RSVP
			events               string
			createdAt, updatedAt string
		)
		if err := rows.Scan(&r.ID, &r.FullName, &r.Email, &r.NumGuests, &events, &r.Dietary, &r.Message, &createdAt, &updatedAt); err != nil {
			return nil, errors.Wrapf(err, "scan rsvp")
		}
		if err := json.Unmarshal([]byte(events), &r.Events); err != nil {
			return nil, errors.Wrapf(err, "decode events of rsvp %d", r.ID)
		}
		r.CreatedAt = parseTime(createdAt)
		r.UpdatedAt = parseTime(updatedAt)
		list = append(list, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(err, "iterate rsvps")
	}
	return list, nil
}

func (s RSVPStore) Delete(ctx context.Context, id int64) error {
	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM rsvps WHERE id = ?`, id); err != nil {
		return errors.Wrapf(err, "delete rsvp %d", id)
	}
	return nil
}

// AuditStore is the login audit log.
type AuditStore struct{ *Store }

func (s *Store) Audit() AuditStore { return AuditStore{s} }

func (s AuditStore) RecordLoginAttempt(ctx context.Context, a auth.LoginAttempt) error {
	createdAt := a.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.now()
	}
	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO login_attempts (method, email, success, reason, remote_addr, created_at)
VALUES (?, ?, ?, ?, ?, ?)`,
		string(a.Method), a.Email, a.Success, a.Reason, a.RemoteAddr, createdAt.UTC().Format(timeFormat))
	if err != nil {
		return errors.Wrapf(err, "insert login attempt")
	}
	return nil
}

// ListLoginAttempts returns the newest attempts first. A non-positive limit
// uses the default page size.
func (s AuditStore) ListLoginAttempts(ctx context.Context, limit int) ([]auth.LoginAttempt, error) {
	if limit <= 0 {
		limit = defaultAuditLimit
	}
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, method, email, success, reason, remote_addr, created_at
FROM login_attempts ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, errors.Wrapf(err, "list login attempts")
	}
	defer rows.Close()

	list := []auth.LoginAttempt{}
	for rows.Next() {
		var (
			a         auth.LoginAttempt
			method    string
			createdAt string
		)
		if err := rows.Scan(&a.ID, &method, &a.Email, &a.Success, &a.Reason, &a.RemoteAddr, &createdAt); err != nil {
			return nil, errors.Wrapf(err, "scan login attempt")
		}
		a.Method = auth.LoginMethod(method)
		a.CreatedAt = parseTime(createdAt)
		list = append(list, a)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(err, "iterate login attempts")
	}
	return list, nil
}
