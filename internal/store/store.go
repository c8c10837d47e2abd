// Package store keeps the privacy-conscious visitor log and the contact
// message archive in SQLite.
package store

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/oogunniyi/portfolio/internal/contact"

	_ "modernc.org/sqlite"
)

// timeLayout is how timestamps are stored; it sorts and compares as text.
const timeLayout = "2006-01-02 15:04:05"

// Retention is how long visitor records are kept.
const Retention = 365 * 24 * time.Hour

var ErrNotFound = errors.New("not found")

const schema = `
CREATE TABLE IF NOT EXISTS visitors (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	hashed_ip TEXT NOT NULL,
	user_agent TEXT,
	path TEXT,
	timestamp TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_visitors_timestamp ON visitors(timestamp);

CREATE TABLE IF NOT EXISTS messages (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	email TEXT NOT NULL,
	message TEXT NOT NULL,
	status TEXT NOT NULL,
	created_at TEXT NOT NULL
);
`

// Visitor is one tracked page view. The IP is never stored in clear.
type Visitor struct {
	ID        int64     `json:"id"`
	HashedIP  string    `json:"hashed_ip"`
	UserAgent string    `json:"user_agent"`
	Path      string    `json:"path"`
	Timestamp time.Time `json:"timestamp"`
}

// Message is one archived contact attempt.
type Message struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	StatusSent   = "sent"
	StatusFailed = "failed"
)

// Stats summarises the visitor log and the archive.
type Stats struct {
	TotalVisitors    int64     `json:"total_visitors"`
	UniqueVisitors   int64     `json:"unique_visitors"`
	VisitorsToday    int64     `json:"visitors_today"`
	VisitorsThisWeek int64     `json:"visitors_this_week"`
	MessagesSent     int64     `json:"messages_sent"`
	MessagesFailed   int64     `json:"messages_failed"`
	RecentVisitors   []Visitor `json:"recent_visitors"`
	RecentMessages   []Message `json:"recent_messages"`
}

// DB wraps the SQLite handle.
type DB struct {
	sql  *sql.DB
	salt string
	now  func() time.Time
}

// Open opens (creating if needed) the database at path and applies the schema.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	salt, err := randomHex(32)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return &DB{sql: conn, salt: salt, now: time.Now}, nil
}

// Close closes the database.
func (d *DB) Close() error {
	return d.sql.Close()
}

// HashIP returns a truncated salted hash of ip. The salt lives for the
// process, so hashes are consistent within a run only.
func (d *DB) HashIP(ip string) string {
	sum := sha256.Sum256([]byte(ip + d.salt))
	return hex.EncodeToString(sum[:])[:16]
}

// TrackVisit records a page view.
func (d *DB) TrackVisit(ctx context.Context, ip, userAgent, path string) error {
	_, err := d.sql.ExecContext(ctx,
		`INSERT INTO visitors (hashed_ip, user_agent, path, timestamp) VALUES (?, ?, ?, ?)`,
		d.HashIP(ip), userAgent, path, d.stamp(d.now()))
	if err != nil {
		return fmt.Errorf("record visitor: %w", err)
	}
	return nil
}

// RecordMessage archives a contact attempt.
func (d *DB) RecordMessage(ctx context.Context, f contact.Form, sent bool) error {
	status := StatusFailed
	if sent {
		status = StatusSent
	}
	_, err := d.sql.ExecContext(ctx,
		`INSERT INTO messages (name, email, message, status, created_at) VALUES (?, ?, ?, ?, ?)`,
		f.Name, f.Email, f.Message, status, d.stamp(d.now()))
	if err != nil {
		return fmt.Errorf("record message: %w", err)
	}
	return nil
}

// Prune deletes visitor records older than Retention.
func (d *DB) Prune(ctx context.Context) (int64, error) {
	res, err := d.sql.ExecContext(ctx,
		`DELETE FROM visitors WHERE timestamp < ?`, d.stamp(d.now().Add(-Retention)))
	if err != nil {
		return 0, fmt.Errorf("prune visitors: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// Stats gathers the dashboard numbers.
func (d *DB) Stats(ctx context.Context) (*Stats, error) {
	now := d.now().UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	stats := &Stats{}
	counts := []struct {
		dst   *int64
		query string
		args  []any
	}{
		{&stats.TotalVisitors, `SELECT COUNT(*) FROM visitors`, nil},
		{&stats.UniqueVisitors, `SELECT COUNT(DISTINCT hashed_ip) FROM visitors`, nil},
		{&stats.VisitorsToday, `SELECT COUNT(*) FROM visitors WHERE timestamp >= ?`, []any{d.stamp(midnight)}},
		{&stats.VisitorsThisWeek, `SELECT COUNT(*) FROM visitors WHERE timestamp >= ?`, []any{d.stamp(now.Add(-7 * 24 * time.Hour))}},
		{&stats.MessagesSent, `SELECT COUNT(*) FROM messages WHERE status = ?`, []any{StatusSent}},
		{&stats.MessagesFailed, `SELECT COUNT(*) FROM messages WHERE status = ?`, []any{StatusFailed}},
	}
	for _, c := range counts {
		if err := d.sql.QueryRowContext(ctx, c.query, c.args...).Scan(c.dst); err != nil {
			return nil, fmt.Errorf("stats: %w", err)
		}
	}

	var err error
	if stats.RecentVisitors, err = d.RecentVisitors(ctx, 50); err != nil {
		return nil, err
	}
	if stats.RecentMessages, err = d.Messages(ctx, 20); err != nil {
		return nil, err
	}
	return stats, nil
}

// RecentVisitors returns the newest visitor records first.
func (d *DB) RecentVisitors(ctx context.Context, limit int) ([]Visitor, error) {
	rows, err := d.sql.QueryContext(ctx, `
		SELECT id, hashed_ip, COALESCE(user_agent, ''), COALESCE(path, ''), timestamp
		FROM visitors
		ORDER BY timestamp DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query visitors: %w", err)
	}
	defer rows.Close()

	var visitors []Visitor
	for rows.Next() {
		var v Visitor
		var ts string
		if err := rows.Scan(&v.ID, &v.HashedIP, &v.UserAgent, &v.Path, &ts); err != nil {
			return nil, fmt.Errorf("scan visitor: %w", err)
		}
		v.Timestamp, _ = time.Parse(timeLayout, ts)
		visitors = append(visitors, v)
	}
	return visitors, rows.Err()
}

// Messages returns the newest archived messages first.
func (d *DB) Messages(ctx context.Context, limit int) ([]Message, error) {
	rows, err := d.sql.QueryContext(ctx, `
		SELECT id, name, email, message, status, created_at
		FROM messages
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var m Message
		var ts string
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Message, &m.Status, &ts); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.CreatedAt, _ = time.Parse(timeLayout, ts)
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// DeleteMessage removes one archived message.
func (d *DB) DeleteMessage(ctx context.Context, id int64) error {
	res, err := d.sql.ExecContext(ctx, `DELETE FROM messages WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete message %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (d *DB) stamp(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// RandomToken returns a 64 character hex token.
func RandomToken() (string, error) {
	return randomHex(32)
}
