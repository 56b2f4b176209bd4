package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS clicks (
    token         TEXT PRIMARY KEY,
    ts            INTEGER NOT NULL,
    ip            TEXT,
    user_agent    TEXT,
    referrer      TEXT,
    tg_user_id    INTEGER,
    tg_username   TEXT,
    tg_first_name TEXT,
    tg_last_name  TEXT,
    linked_ts     INTEGER
);

CREATE INDEX IF NOT EXISTS idx_clicks_ts ON clicks(ts DESC);
CREATE INDEX IF NOT EXISTS idx_clicks_tg_user_id ON clicks(tg_user_id);
`

type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the embedded store at path and applies the
// schema.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	db.SetMaxOpenConns(1) // SQLite handles one writer at a time

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) InsertClick(ctx context.Context, c Click) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO clicks (token, ts, ip, user_agent, referrer) VALUES (?, ?, ?, ?, ?)`,
		c.Token, c.TS, c.IP, c.UserAgent, c.Referrer,
	)
	if err != nil {
		return fmt.Errorf("insert click: %w", err)
	}
	return nil
}

func (s *SQLite) LinkClick(ctx context.Context, token string, user TGUser) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE clicks
		    SET tg_user_id = ?, tg_username = ?, tg_first_name = ?, tg_last_name = ?, linked_ts = ?
		  WHERE token = ?`,
		user.ID, user.Username, user.FirstName, user.LastName, time.Now().Unix(), token,
	)
	if err != nil {
		return fmt.Errorf("link click: %w", err)
	}
	return nil
}

func (s *SQLite) RecentClicks(ctx context.Context, limit int) ([]Click, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT token, ts, ip, user_agent, referrer,
		        tg_user_id, tg_username, tg_first_name, tg_last_name, linked_ts
		   FROM clicks
	       ORDER BY ts DESC
	          LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query recent clicks: %w", err)
	}
	defer rows.Close()

	var clicks []Click
	for rows.Next() {
		var c Click
		if err := rows.Scan(
			&c.Token, &c.TS, &c.IP, &c.UserAgent, &c.Referrer,
			&c.TGUserID, &c.TGUsername, &c.TGFirstName, &c.TGLastName, &c.LinkedTS,
		); err != nil {
			return nil, fmt.Errorf("scan click: %w", err)
		}
		clicks = append(clicks, c)
	}
	return clicks, rows.Err()
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
