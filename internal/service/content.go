package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/second-brain/internal/apperror"
	"github.com/sakif/second-brain/internal/model"
	"github.com/sakif/second-brain/internal/repository"
)

// ContentService handles saved content references, always scoped to the
// authenticated owner. Structural validation of the input (title length,
// required type) happens at the HTTP boundary; this layer enforces the
// ownership rules.
type ContentService struct {
	contents repository.ContentRepository
	logger   *slog.Logger
}

func NewContentService(contents repository.ContentRepository, logger *slog.Logger) *ContentService {
	return &ContentService{
		contents: contents,
		logger:   logger,
	}
}

// Create saves a new content reference for ownerID with an empty tag set.
// Tags are attached later through the external tag collaborator, never at
// creation time.
func (s *ContentService) Create(ctx context.Context, ownerID, title, link, contentType string) (*model.Content, error) {
	if ownerID == "" {
		return nil, apperror.ValidationFailed("ownerId", "owner ID is required")
	}

	content := &model.Content{
		Title:   strings.TrimSpace(title),
		Link:    strings.TrimSpace(link),
		Type:    contentType,
		OwnerID: ownerID,
		TagIDs:  []string{},
	}

	if err := s.contents.Create(ctx, content); err != nil {
		s.logger.Error("failed to create content",
			slog.String("ownerID", ownerID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating content: %w", err)
	}

	s.logger.Info("content created",
		slog.String("id", content.ID),
		slog.String("ownerID", ownerID),
		slog.String("type", content.Type),
	)

	return content, nil
}

// List returns all of the owner's content with the owner reference
// expanded to username. The full set, insertion order — the frontend
// renders the whole brain at once.
func (s *ContentService) List(ctx context.Context, ownerID string) ([]model.Content, error) {
	if ownerID == "" {
		return nil, apperror.ValidationFailed("ownerId", "owner ID is required")
	}

	contents, err := s.contents.ListByOwner(ctx, ownerID)
	if err != nil {
		s.logger.Error("failed to list content",
			slog.String("ownerID", ownerID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing content: %w", err)
	}

	return contents, nil
}

// Delete removes one content item owned by ownerID.
//
// A contentID that belongs to another user returns ErrNotFound, exactly
// like an ID that does not exist — the repository matches on both columns,
// so there is no way to probe other users' content IDs.
func (s *ContentService) Delete(ctx context.Context, ownerID, contentID string) error {
	contentID = strings.TrimSpace(contentID)
	if contentID == "" {
		return apperror.ValidationFailed("contentId", "contentId is required")
	}

	if err := s.contents.DeleteOwned(ctx, ownerID, contentID); err != nil {
		return err
	}

	s.logger.Info("content deleted",
		slog.String("id", contentID),
		slog.String("ownerID", ownerID),
	)
	return nil
}
