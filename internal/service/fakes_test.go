package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/sakif/second-brain/internal/apperror"
	"github.com/sakif/second-brain/internal/auth"
	"github.com/sakif/second-brain/internal/model"
)

// In-memory repository fakes. They mirror the SQLite implementation's
// contract (conflict on duplicates, not-found on misses) without a
// database, so the service tests exercise only the business rules.

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestTokenService(t *testing.T) *auth.TokenService {
	t.Helper()
	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars!!", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService() error = %v", err)
	}
	return tokens
}

type fakeUserRepo struct {
	users  map[string]*model.User // keyed by ID
	nextID int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range f.users {
		if u.Username == user.Username {
			return apperror.Conflict("username", user.Username)
		}
		if user.Email != "" && u.Email == user.Email {
			return apperror.Conflict("email", user.Email)
		}
	}
	f.nextID++
	user.ID = fmt.Sprintf("user-%d", f.nextID)
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperror.NotFound("user", username)
}

func (f *fakeUserRepo) UpsertGitHub(_ context.Context, user *model.User) error {
	for _, u := range f.users {
		if u.GitHubID == user.GitHubID && u.GitHubID != 0 {
			u.Email = user.Email
			user.ID = u.ID
			user.Username = u.Username
			return nil
		}
	}
	f.nextID++
	user.ID = fmt.Sprintf("user-%d", f.nextID)
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

type fakeContentRepo struct {
	users    *fakeUserRepo // for expanding Owner on list
	contents []model.Content
	nextID   int
}

func newFakeContentRepo(users *fakeUserRepo) *fakeContentRepo {
	return &fakeContentRepo{users: users}
}

func (f *fakeContentRepo) Create(_ context.Context, content *model.Content) error {
	if f.users != nil {
		if _, ok := f.users.users[content.OwnerID]; !ok {
			return fmt.Errorf("content: unknown owner %s", content.OwnerID)
		}
	}
	f.nextID++
	content.ID = fmt.Sprintf("content-%d", f.nextID)
	f.contents = append(f.contents, *content)
	return nil
}

func (f *fakeContentRepo) ListByOwner(_ context.Context, ownerID string) ([]model.Content, error) {
	out := []model.Content{}
	for _, c := range f.contents {
		if c.OwnerID != ownerID {
			continue
		}
		if f.users != nil {
			if u, ok := f.users.users[ownerID]; ok {
				c.Owner = model.Owner{ID: u.ID, Username: u.Username}
			}
		}
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeContentRepo) DeleteOwned(_ context.Context, ownerID, contentID string) error {
	for i, c := range f.contents {
		if c.ID == contentID && c.OwnerID == ownerID {
			f.contents = append(f.contents[:i], f.contents[i+1:]...)
			return nil
		}
	}
	return apperror.NotFound("content", contentID)
}

type fakeShareLinkRepo struct {
	links map[string]*model.ShareLink // keyed by owner ID
}

func newFakeShareLinkRepo() *fakeShareLinkRepo {
	return &fakeShareLinkRepo{links: make(map[string]*model.ShareLink)}
}

func (f *fakeShareLinkRepo) Create(_ context.Context, link *model.ShareLink) error {
	if _, ok := f.links[link.OwnerID]; ok {
		return apperror.Conflict("share link", link.OwnerID)
	}
	for _, l := range f.links {
		if l.Hash == link.Hash {
			return apperror.Conflict("share link", link.Hash)
		}
	}
	link.ID = "link-" + link.OwnerID
	cp := *link
	f.links[link.OwnerID] = &cp
	return nil
}

func (f *fakeShareLinkRepo) GetByOwner(_ context.Context, ownerID string) (*model.ShareLink, error) {
	l, ok := f.links[ownerID]
	if !ok {
		return nil, apperror.NotFound("share link", ownerID)
	}
	cp := *l
	return &cp, nil
}

func (f *fakeShareLinkRepo) GetByHash(_ context.Context, hash string) (*model.ShareLink, error) {
	for _, l := range f.links {
		if l.Hash == hash {
			cp := *l
			return &cp, nil
		}
	}
	return nil, apperror.NotFound("share link", hash)
}

func (f *fakeShareLinkRepo) DeleteByOwner(_ context.Context, ownerID string) error {
	delete(f.links, ownerID)
	return nil
}
