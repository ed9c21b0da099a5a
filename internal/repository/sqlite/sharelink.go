package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/second-brain/internal/apperror"
	"github.com/sakif/second-brain/internal/model"
	"github.com/sakif/second-brain/internal/repository"
)

// ShareLinkDB is the share-link repository view of the shared connection
// pool, obtained via DB.ShareLinks.
type ShareLinkDB struct {
	conn *sql.DB
}

// compile-time check that *ShareLinkDB implements repository.ShareLinkRepository
var _ repository.ShareLinkRepository = (*ShareLinkDB)(nil)

// Create inserts a share link for link.OwnerID.
//
// Two unique indexes back this table: one on hash (a collision with
// another user's hash must never silently grant access to the wrong
// brain) and one on user_id (at most one active link per user). A losing
// racer on the user_id index comes back as ErrConflict; the service
// re-reads the winner's hash to keep enable idempotent.
func (r *ShareLinkDB) Create(ctx context.Context, link *model.ShareLink) error {
	link.ID = xid.New().String()
	link.CreatedAt = time.Now()

	_, err := r.conn.ExecContext(ctx,
		`INSERT INTO share_links (id, hash, user_id, created_at)
		 VALUES (?, ?, ?, ?)`,
		link.ID,
		link.Hash,
		link.OwnerID,
		link.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "share_links.user_id") {
			return apperror.Conflict("share link", link.OwnerID)
		}
		if isUniqueViolation(err, "share_links.hash") {
			return apperror.Conflict("share hash", link.Hash)
		}
		return fmt.Errorf("sqlite: creating share link: %w", err)
	}

	return nil
}

// GetByOwner returns the owner's share link, or ErrNotFound when sharing
// is disabled.
func (r *ShareLinkDB) GetByOwner(ctx context.Context, ownerID string) (*model.ShareLink, error) {
	return r.getShareLink(ctx, `WHERE user_id = ?`, ownerID)
}

// GetByHash resolves a public share hash. ErrNotFound for unknown hashes —
// including hashes that were valid before sharing was disabled.
func (r *ShareLinkDB) GetByHash(ctx context.Context, hash string) (*model.ShareLink, error) {
	return r.getShareLink(ctx, `WHERE hash = ?`, hash)
}

func (r *ShareLinkDB) getShareLink(ctx context.Context, where string, arg any) (*model.ShareLink, error) {
	var link model.ShareLink

	err := r.conn.QueryRowContext(ctx,
		`SELECT id, hash, user_id, created_at FROM share_links `+where,
		arg,
	).Scan(
		&link.ID,
		&link.Hash,
		&link.OwnerID,
		&link.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("share link", fmt.Sprint(arg))
		}
		return nil, fmt.Errorf("sqlite: getting share link %v: %w", arg, err)
	}

	return &link, nil
}

// DeleteByOwner removes all of the owner's share links. Zero rows deleted
// is fine — disabling sharing that was never enabled succeeds.
func (r *ShareLinkDB) DeleteByOwner(ctx context.Context, ownerID string) error {
	_, err := r.conn.ExecContext(ctx,
		`DELETE FROM share_links WHERE user_id = ?`,
		ownerID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting share links for user %s: %w", ownerID, err)
	}
	return nil
}
