package model

import "time"

// ShareLink grants unauthenticated read access to one user's content list.
//
// The hash is a short random alphanumeric string; possessing it is the only
// access control on the public share endpoint (capability-style sharing).
// Each user has at most one active link — enabling sharing twice returns
// the same hash, and disabling deletes the row.
type ShareLink struct {
	ID        string    `json:"id"        db:"id"`
	Hash      string    `json:"hash"      db:"hash"`
	OwnerID   string    `json:"userId"    db:"user_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
