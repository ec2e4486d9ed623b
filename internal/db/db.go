package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sqlite "github.com/glebarez/go-sqlite"
	"year-journal/internal/models"
)

// ErrConflict is returned when a create targets a date that already has
// an entry. ErrNotFound is returned when an id lookup matches no row.
var (
	ErrConflict = errors.New("an entry already exists for this date")
	ErrNotFound = errors.New("entry not found")
)

// SQLite extended result codes for UNIQUE/PRIMARY KEY constraint
// violations. Matching on these instead of the error message keeps
// conflict detection stable across driver versions.
const (
	sqliteConstraintUnique     = 2067
	sqliteConstraintPrimaryKey = 1555
)

type DB struct {
	conn *sql.DB
}

func New(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return db, nil
}

func (d *DB) migrate() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS day_entries (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			date TEXT NOT NULL UNIQUE,
			entry_type TEXT NOT NULL CHECK (entry_type IN ('photo', 'text')),
			photo_url TEXT,
			photo_thumbnail_url TEXT,
			text_content TEXT,
			color TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_day_entries_date ON day_entries(date)`,
		`CREATE TABLE IF NOT EXISTS auth_tokens (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			token TEXT NOT NULL UNIQUE,
			used BOOLEAN DEFAULT FALSE,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			expires_at DATETIME NOT NULL
		)`,
	}

	for _, q := range queries {
		if _, err := d.conn.Exec(q); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}
	return nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Code() == sqliteConstraintUnique || se.Code() == sqliteConstraintPrimaryKey
}

const entryColumns = `id, date, entry_type, photo_url, photo_thumbnail_url, text_content, color, created_at, updated_at`

func scanEntry(row *sql.Row) (*models.DayEntry, error) {
	var e models.DayEntry
	err := row.Scan(&e.ID, &e.Date, &e.EntryType, &e.PhotoURL, &e.PhotoThumbnailURL,
		&e.TextContent, &e.Color, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// ListEntriesByYear returns all entries dated within a calendar year,
// ascending by date. A year with no entries yields an empty slice.
func (d *DB) ListEntriesByYear(year int) ([]models.DayEntry, error) {
	from := fmt.Sprintf("%04d-01-01", year)
	to := fmt.Sprintf("%04d-12-31", year)
	rows, err := d.conn.Query(
		`SELECT `+entryColumns+` FROM day_entries WHERE date >= ? AND date <= ? ORDER BY date ASC`,
		from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.DayEntry
	for rows.Next() {
		var e models.DayEntry
		if err := rows.Scan(&e.ID, &e.Date, &e.EntryType, &e.PhotoURL, &e.PhotoThumbnailURL,
			&e.TextContent, &e.Color, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (d *DB) GetEntry(id int64) (*models.DayEntry, error) {
	row := d.conn.QueryRow(`SELECT `+entryColumns+` FROM day_entries WHERE id = ?`, id)
	return scanEntry(row)
}

func (d *DB) GetEntryByDate(date string) (*models.DayEntry, error) {
	row := d.conn.QueryRow(`SELECT `+entryColumns+` FROM day_entries WHERE date = ?`, date)
	return scanEntry(row)
}

// CreateEntry inserts a new entry. Uniqueness of the date is enforced
// solely by the UNIQUE constraint; a violation surfaces as ErrConflict.
func (d *DB) CreateEntry(req *models.CreateEntryRequest) (*models.DayEntry, error) {
	result, err := d.conn.Exec(
		`INSERT INTO day_entries (date, entry_type, photo_url, photo_thumbnail_url, text_content, color)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		req.Date, req.EntryType, req.PhotoURL, req.PhotoThumbnailURL, req.TextContent, req.Color)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, err
	}
	id, _ := result.LastInsertId()
	return d.GetEntry(id)
}

// UpdateEntry applies a sparse patch: only non-nil fields are written,
// everything else is left untouched. The modification timestamp is
// refreshed in the same statement.
func (d *DB) UpdateEntry(id int64, req *models.UpdateEntryRequest) (*models.DayEntry, error) {
	sets := []string{}
	args := []interface{}{}

	if req.EntryType != nil {
		sets = append(sets, "entry_type = ?")
		args = append(args, *req.EntryType)
	}
	if req.PhotoURL != nil {
		sets = append(sets, "photo_url = ?")
		args = append(args, *req.PhotoURL)
	}
	if req.PhotoThumbnailURL != nil {
		sets = append(sets, "photo_thumbnail_url = ?")
		args = append(args, *req.PhotoThumbnailURL)
	}
	if req.TextContent != nil {
		sets = append(sets, "text_content = ?")
		args = append(args, *req.TextContent)
	}
	if req.Color != nil {
		sets = append(sets, "color = ?")
		args = append(args, *req.Color)
	}
	sets = append(sets, "updated_at = CURRENT_TIMESTAMP")
	args = append(args, id)

	result, err := d.conn.Exec(
		`UPDATE day_entries SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return nil, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrNotFound
	}
	return d.GetEntry(id)
}

// DeleteEntry removes an entry by id. There is no existence check:
// deleting an absent id succeeds.
func (d *DB) DeleteEntry(id int64) error {
	_, err := d.conn.Exec(`DELETE FROM day_entries WHERE id = ?`, id)
	return err
}

// Auth Tokens
func (d *DB) CreateAuthToken(token string, expiresAt time.Time) error {
	_, err := d.conn.Exec(`INSERT INTO auth_tokens (token, expires_at) VALUES (?, ?)`, token, expiresAt)
	return err
}

func (d *DB) GetAuthToken(token string) (*models.AuthToken, error) {
	var t models.AuthToken
	err := d.conn.QueryRow(`SELECT id, token, used, created_at, expires_at FROM auth_tokens WHERE token = ?`, token).
		Scan(&t.ID, &t.Token, &t.Used, &t.CreatedAt, &t.ExpiresAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (d *DB) MarkTokenUsed(token string) error {
	_, err := d.conn.Exec(`UPDATE auth_tokens SET used = TRUE WHERE token = ?`, token)
	return err
}
