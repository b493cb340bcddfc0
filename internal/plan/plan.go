package plan

import (
	"encoding/json"
	"time"
)

// Plan is a generated business plan owned by exactly one user. Content is
// kept as raw JSON so client updates round-trip byte-for-byte.
type Plan struct {
	ID           int64           `json:"id"`
	UserID       int64           `json:"-"`
	Title        string          `json:"title"`
	Content      json.RawMessage `json:"content"`
	BusinessName string          `json:"business_name"`
	Industry     string          `json:"industry"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Summary is the list projection: everything but the content.
type Summary struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	BusinessName string    `json:"business_name"`
	Industry     string    `json:"industry"`
	CreatedAt    time.Time `json:"created_at"`
}
