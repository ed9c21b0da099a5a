package model

import "time"

// Owner is the denormalized owner reference attached to content when it is
// read back. List and share responses expand the owning user to this pair
// so the frontend can display "saved by alice" without a second request.
type Owner struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Content is a single saved reference — a bookmark with a free-form type
// tag such as "video", "article", or "pdf".
//
// Link is optional: a PDF the user scanned themselves has no URL.
//
// TagIDs is an ordered set of references to an external Tag entity. Tags
// are managed elsewhere; this service only stores their identifiers and
// never interprets them. New content always starts with an empty set.
type Content struct {
	ID        string    `json:"id"        db:"id"`
	Title     string    `json:"title"     db:"title"`
	Link      string    `json:"link"      db:"link"`
	Type      string    `json:"type"      db:"type"`
	TagIDs    []string  `json:"tags"      db:"tags"`
	OwnerID   string    `json:"-"         db:"user_id"`
	Owner     Owner     `json:"user"` // populated on reads, expanded from user_id
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}
