package service

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/second-brain/internal/apperror"
	"github.com/sakif/second-brain/internal/model"
)

func newTestContentService(t *testing.T) (*ContentService, *fakeUserRepo) {
	t.Helper()
	users := newFakeUserRepo()
	contents := newFakeContentRepo(users)
	return NewContentService(contents, testLogger()), users
}

func registerTestUser(t *testing.T, users *fakeUserRepo, username string) *model.User {
	t.Helper()
	user := &model.User{Username: username, PasswordHash: "x"}
	if err := users.Create(context.Background(), user); err != nil {
		t.Fatalf("creating user %q: %v", username, err)
	}
	return user
}

func TestContentServiceCreate(t *testing.T) {
	svc, users := newTestContentService(t)
	owner := registerTestUser(t, users, "alice")

	content, err := svc.Create(context.Background(), owner.ID, "  My notes  ", " https://example.com/notes ", "article")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if content.ID == "" {
		t.Error("Create() did not assign an ID")
	}
	if content.Title != "My notes" {
		t.Errorf("Title = %q, want trimmed %q", content.Title, "My notes")
	}
	if content.Link != "https://example.com/notes" {
		t.Errorf("Link = %q, want trimmed %q", content.Link, "https://example.com/notes")
	}
	if content.TagIDs == nil || len(content.TagIDs) != 0 {
		t.Errorf("TagIDs = %v, want empty non-nil slice", content.TagIDs)
	}
}

func TestContentServiceCreate_NoOwner(t *testing.T) {
	svc, _ := newTestContentService(t)

	_, err := svc.Create(context.Background(), "", "title", "", "article")
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("Create() error = %v, want ErrValidation", err)
	}
}

func TestContentServiceList_ScopedToOwner(t *testing.T) {
	svc, users := newTestContentService(t)
	alice := registerTestUser(t, users, "alice")
	bob := registerTestUser(t, users, "bob")

	if _, err := svc.Create(context.Background(), alice.ID, "alice one", "", "article"); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := svc.Create(context.Background(), bob.ID, "bob one", "", "video"); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	list, err := svc.List(context.Background(), alice.ID)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("len(list) = %d, want 1", len(list))
	}
	if list[0].Title != "alice one" {
		t.Errorf("Title = %q, want %q", list[0].Title, "alice one")
	}
	if list[0].Owner.Username != "alice" {
		t.Errorf("Owner.Username = %q, want %q", list[0].Owner.Username, "alice")
	}
}

func TestContentServiceDelete(t *testing.T) {
	svc, users := newTestContentService(t)
	alice := registerTestUser(t, users, "alice")
	bob := registerTestUser(t, users, "bob")

	content, err := svc.Create(context.Background(), alice.ID, "keep out", "", "article")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// Another user's ID must not be deletable; it looks like a miss.
	if err := svc.Delete(context.Background(), bob.ID, content.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("cross-owner Delete() error = %v, want ErrNotFound", err)
	}

	if err := svc.Delete(context.Background(), alice.ID, content.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	list, err := svc.List(context.Background(), alice.ID)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 0 {
		t.Errorf("len(list) after delete = %d, want 0", len(list))
	}
}

func TestContentServiceDelete_EmptyID(t *testing.T) {
	svc, users := newTestContentService(t)
	alice := registerTestUser(t, users, "alice")

	err := svc.Delete(context.Background(), alice.ID, "   ")
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("Delete() error = %v, want ErrValidation", err)
	}
}
