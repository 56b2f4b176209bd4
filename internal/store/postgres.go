package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const pgDialTimeout = 5 * time.Second

var pgSchema = []string{
	`CREATE TABLE IF NOT EXISTS clicks (
	    token         TEXT PRIMARY KEY,
	    ts            BIGINT NOT NULL,
	    ip            TEXT,
	    user_agent    TEXT,
	    referrer      TEXT,
	    tg_user_id    BIGINT,
	    tg_username   TEXT,
	    tg_first_name TEXT,
	    tg_last_name  TEXT,
	    linked_ts     BIGINT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_clicks_ts ON clicks(ts DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_clicks_tg_user_id ON clicks(tg_user_id)`,
}

type Postgres struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects to the networked store, verifies connectivity and
// applies the schema.
func OpenPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	dialCtx, cancel := context.WithTimeout(ctx, pgDialTimeout)
	defer cancel()

	pool, err := pgxpool.New(dialCtx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("postgres: create pool: %w", err)
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, pgDialTimeout)
	defer pingCancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	for _, stmt := range pgSchema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			pool.Close()
			return nil, fmt.Errorf("postgres: apply schema: %w", err)
		}
	}

	return &Postgres{pool: pool}, nil
}

func (s *Postgres) InsertClick(ctx context.Context, c Click) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO clicks (token, ts, ip, user_agent, referrer)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (token) DO NOTHING`,
		c.Token, c.TS, c.IP, c.UserAgent, c.Referrer,
	)
	if err != nil {
		return fmt.Errorf("insert click: %w", err)
	}
	return nil
}

func (s *Postgres) LinkClick(ctx context.Context, token string, user TGUser) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE clicks
		    SET tg_user_id = $1, tg_username = $2, tg_first_name = $3, tg_last_name = $4, linked_ts = $5
		  WHERE token = $6`,
		user.ID, user.Username, user.FirstName, user.LastName, time.Now().Unix(), token,
	)
	if err != nil {
		return fmt.Errorf("link click: %w", err)
	}
	return nil
}

func (s *Postgres) RecentClicks(ctx context.Context, limit int) ([]Click, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT token, ts, ip, user_agent, referrer,
		        tg_user_id, tg_username, tg_first_name, tg_last_name, linked_ts
		   FROM clicks
	       ORDER BY ts DESC
	          LIMIT $1`,
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

func (s *Postgres) Close() error {
	s.pool.Close()
	return nil
}
