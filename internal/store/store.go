package store

import "context"

// Click is one recorded visit to the bio link. The tg_* fields and LinkedTS
// stay nil until the visitor presses Start in Telegram.
type Click struct {
	Token       string  `json:"token"`
	TS          int64   `json:"ts"`
	IP          string  `json:"ip"`
	UserAgent   string  `json:"user_agent"`
	Referrer    string  `json:"referrer"`
	TGUserID    *int64  `json:"tg_user_id"`
	TGUsername  *string `json:"tg_username"`
	TGFirstName *string `json:"tg_first_name"`
	TGLastName  *string `json:"tg_last_name"`
	LinkedTS    *int64  `json:"linked_ts"`
}

// Linked reports whether the click has been attributed to a Telegram user.
func (c *Click) Linked() bool {
	return c.LinkedTS != nil
}

// TGUser is the Telegram identity attached to a click by the webhook.
type TGUser struct {
	ID        int64
	Username  string
	FirstName string
	LastName  string
}

// Store is the persistence contract shared by the sqlite and postgres
// backends. One implementation is picked at startup and injected into the
// handlers.
//
//   - InsertClick ignores primary-key conflicts: inserting the same token
//     twice leaves the first row untouched.
//   - LinkClick updates by primary key and is a no-op when no row matches.
//   - RecentClicks returns at most limit rows, newest first.
type Store interface {
	InsertClick(ctx context.Context, c Click) error
	LinkClick(ctx context.Context, token string, user TGUser) error
	RecentClicks(ctx context.Context, limit int) ([]Click, error)
	Close() error
}
