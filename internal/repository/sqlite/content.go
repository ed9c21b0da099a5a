package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/second-brain/internal/apperror"
	"github.com/sakif/second-brain/internal/model"
	"github.com/sakif/second-brain/internal/repository"
)

// ContentDB is the content repository view of the shared connection pool,
// obtained via DB.Contents.
type ContentDB struct {
	conn *sql.DB
}

// compile-time check that *ContentDB implements repository.ContentRepository
var _ repository.ContentRepository = (*ContentDB)(nil)

// Create inserts a new content row owned by content.OwnerID.
//
// The tag references are stored as a JSON array in a TEXT column: the Tag
// entity lives outside this service, so the IDs are opaque strings and a
// join table would buy nothing. The array keeps the caller's order.
func (r *ContentDB) Create(ctx context.Context, content *model.Content) error {
	now := time.Now()
	content.ID = xid.New().String()
	content.CreatedAt = now
	content.UpdatedAt = now

	if content.TagIDs == nil {
		content.TagIDs = []string{}
	}
	tags, err := json.Marshal(content.TagIDs)
	if err != nil {
		return fmt.Errorf("sqlite: encoding tags: %w", err)
	}

	_, err = r.conn.ExecContext(ctx,
		`INSERT INTO contents (id, title, link, type, tags, user_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		content.ID,
		content.Title,
		content.Link,
		content.Type,
		string(tags),
		content.OwnerID,
		content.CreatedAt,
		content.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating content: %w", err)
	}

	return nil
}

// ListByOwner returns all content owned by ownerID with the owner expanded
// to id+username via a join. No pagination — the whole set, in insertion
// order (xids are creation-time sortable, so ORDER BY id is stable even
// for rows created within the same second).
func (r *ContentDB) ListByOwner(ctx context.Context, ownerID string) ([]model.Content, error) {
	rows, err := r.conn.QueryContext(ctx,
		`SELECT c.id, c.title, c.link, c.type, c.tags, c.user_id, u.username, c.created_at, c.updated_at
		 FROM contents c
		 JOIN users u ON u.id = c.user_id
		 WHERE c.user_id = ?
		 ORDER BY c.id`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing content: %w", err)
	}
	defer rows.Close()

	contents := []model.Content{}

	for rows.Next() {
		var (
			c    model.Content
			tags string
		)
		if err := rows.Scan(
			&c.ID, &c.Title, &c.Link, &c.Type, &tags,
			&c.OwnerID, &c.Owner.Username, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning content row: %w", err)
		}
		if err := json.Unmarshal([]byte(tags), &c.TagIDs); err != nil {
			return nil, fmt.Errorf("sqlite: decoding tags for content %s: %w", c.ID, err)
		}
		c.Owner.ID = c.OwnerID
		contents = append(contents, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating content: %w", err)
	}

	return contents, nil
}

// DeleteOwned deletes the content row matching both contentID and ownerID.
//
// The owner check is part of the WHERE clause, so deleting someone else's
// content affects zero rows and reports not-found — indistinguishable from
// a content ID that never existed. This is the whole authorization
// boundary beyond token verification.
func (r *ContentDB) DeleteOwned(ctx context.Context, ownerID, contentID string) error {
	result, err := r.conn.ExecContext(ctx,
		`DELETE FROM contents WHERE id = ? AND user_id = ?`,
		contentID, ownerID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting content %s: %w", contentID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("content", contentID)
	}

	return nil
}
