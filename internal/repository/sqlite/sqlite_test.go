package sqlite

import (
	"context"
	"testing"

	"github.com/sakif/second-brain/internal/model"
)

// newTestDB returns a *DB backed by a fresh in-memory database, migrated
// and closed automatically when the test finishes.
func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("opening in-memory database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}

// createTestUser inserts a user and fails the test on error.
func createTestUser(t *testing.T, db *DB, username string) *model.User {
	t.Helper()

	user := &model.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "$2a$04$fakefakefakefakefakefakefakefakefakefakefakefakefake",
	}
	if err := db.Users().Create(context.Background(), user); err != nil {
		t.Fatalf("creating test user %q: %v", username, err)
	}
	return user
}

// createTestContent inserts a content row owned by ownerID.
func createTestContent(t *testing.T, db *DB, ownerID, title string) *model.Content {
	t.Helper()

	content := &model.Content{
		Title:   title,
		Link:    "https://example.com/" + title,
		Type:    "article",
		OwnerID: ownerID,
	}
	if err := db.Contents().Create(context.Background(), content); err != nil {
		t.Fatalf("creating test content %q: %v", title, err)
	}
	return content
}
