// Package repository declares the storage interfaces consumed by the
// service layer. Services program against these interfaces; the concrete
// implementation (repository/sqlite) is injected at the composition root,
// which keeps the services storage-agnostic and lets tests swap in fakes.
package repository

import (
	"context"

	"github.com/sakif/second-brain/internal/model"
)

type UserRepository interface {
	// Create inserts a new user. Returns apperror.ErrConflict when the
	// username or email is already taken (unique indexes are the actual
	// guard — a concurrent duplicate signup loses here, not at the
	// application-level existence check).
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	// GetByUsername returns apperror.ErrNotFound when no such user exists.
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	// UpsertGitHub inserts or refreshes a user keyed by GitHub ID,
	// keeping the internal ID stable across logins.
	UpsertGitHub(ctx context.Context, user *model.User) error
}

type ContentRepository interface {
	Create(ctx context.Context, content *model.Content) error
	// ListByOwner returns all of the owner's content in insertion order,
	// with the Owner reference expanded to id+username.
	ListByOwner(ctx context.Context, ownerID string) ([]model.Content, error)
	// DeleteOwned deletes the row matching both IDs. A row owned by
	// someone else is indistinguishable from a missing row: ErrNotFound.
	DeleteOwned(ctx context.Context, ownerID, contentID string) error
}

type ShareLinkRepository interface {
	Create(ctx context.Context, link *model.ShareLink) error
	GetByOwner(ctx context.Context, ownerID string) (*model.ShareLink, error)
	GetByHash(ctx context.Context, hash string) (*model.ShareLink, error)
	// DeleteByOwner removes all of the owner's links; deleting zero rows
	// is not an error.
	DeleteByOwner(ctx context.Context, ownerID string) error
}
