package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/sakif/second-brain/internal/apperror"
	"github.com/sakif/second-brain/internal/model"
	"github.com/sakif/second-brain/internal/repository"
)

// Share hash parameters. 10 alphanumeric characters give 62^10 ≈ 8×10^17
// possible hashes — unguessable for a capability link, short enough to
// paste anywhere. The alphabet is explicit (not nanoid's default) because
// the hash appears in a URL path and must stay strictly alphanumeric.
const (
	shareHashLength   = 10
	shareHashAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
)

// ShareService manages the public share link of each user's brain.
//
// Per-user state machine: NoLink —enable→ Linked(hash) —enable→ the same
// Linked(hash) —disable→ NoLink. Nothing else; in particular there is no
// "rotate" — disable then enable produces a fresh hash.
type ShareService struct {
	links    repository.ShareLinkRepository
	contents repository.ContentRepository
	users    repository.UserRepository
	logger   *slog.Logger
}

func NewShareService(
	links repository.ShareLinkRepository,
	contents repository.ContentRepository,
	users repository.UserRepository,
	logger *slog.Logger,
) *ShareService {
	return &ShareService{
		links:    links,
		contents: contents,
		users:    users,
		logger:   logger,
	}
}

// EnableOrFetch turns sharing on for ownerID and returns the hash.
// Idempotent: an existing link is returned as-is, never duplicated.
func (s *ShareService) EnableOrFetch(ctx context.Context, ownerID string) (string, error) {
	existing, err := s.links.GetByOwner(ctx, ownerID)
	if err == nil {
		return existing.Hash, nil
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return "", fmt.Errorf("checking share link: %w", err)
	}

	hash, err := gonanoid.Generate(shareHashAlphabet, shareHashLength)
	if err != nil {
		return "", fmt.Errorf("generating share hash: %w", err)
	}

	link := &model.ShareLink{
		Hash:    hash,
		OwnerID: ownerID,
	}
	if err := s.links.Create(ctx, link); err != nil {
		// Lost a race with a concurrent enable: the unique index on
		// user_id kept the winner's row, so return that hash.
		if errors.Is(err, apperror.ErrConflict) {
			if winner, gerr := s.links.GetByOwner(ctx, ownerID); gerr == nil {
				return winner.Hash, nil
			}
		}
		s.logger.Error("failed to create share link",
			slog.String("ownerID", ownerID),
			slog.String("error", err.Error()),
		)
		return "", fmt.Errorf("creating share link: %w", err)
	}

	s.logger.Info("sharing enabled",
		slog.String("ownerID", ownerID),
		slog.String("hash", hash),
	)

	return hash, nil
}

// Disable turns sharing off for ownerID. Succeeds even when sharing was
// never enabled.
func (s *ShareService) Disable(ctx context.Context, ownerID string) error {
	if err := s.links.DeleteByOwner(ctx, ownerID); err != nil {
		return fmt.Errorf("disabling sharing: %w", err)
	}

	s.logger.Info("sharing disabled", slog.String("ownerID", ownerID))
	return nil
}

// SharedBrain is the public view resolved from a share hash: the link
// metadata plus the owner's full content list.
type SharedBrain struct {
	Link    *model.ShareLink
	Content []model.Content
}

// Resolve looks up a public share hash and returns the owner's content.
// No authentication — possession of the hash is the capability. Unknown
// (or disabled) hashes return ErrNotFound and leak nothing about whether
// the hash ever existed.
func (s *ShareService) Resolve(ctx context.Context, hash string) (*SharedBrain, error) {
	if hash == "" {
		return nil, apperror.ValidationFailed("shareLink", "share link is required")
	}

	link, err := s.links.GetByHash(ctx, hash)
	if err != nil {
		return nil, err
	}

	contents, err := s.contents.ListByOwner(ctx, link.OwnerID)
	if err != nil {
		s.logger.Error("failed to load shared content",
			slog.String("ownerID", link.OwnerID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("loading shared content: %w", err)
	}

	return &SharedBrain{
		Link:    link,
		Content: contents,
	}, nil
}
