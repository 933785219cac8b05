package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Hayacku/initium/internal/models"
)

// NotesRepository defines backlink and template storage
type NotesRepository interface {
	BacklinksTo(ctx context.Context, userID, targetID string) ([]*models.Backlink, error)
	CreateBacklink(ctx context.Context, b *models.Backlink) error
	ListTemplates(ctx context.Context, userID string) ([]*models.NoteTemplate, error)
	CreateTemplate(ctx context.Context, t *models.NoteTemplate) error
}

type NotesService struct {
	repo       NotesRepository
	predefined []models.NoteTemplate
	logger     *slog.Logger
}

func NewNotesService(repo NotesRepository, predefined []models.NoteTemplate, logger *slog.Logger) *NotesService {
	return &NotesService{repo: repo, predefined: predefined, logger: logger}
}

func (s *NotesService) Backlinks(ctx context.Context, userID, noteID string) ([]*models.Backlink, error) {
	links, err := s.repo.BacklinksTo(ctx, userID, noteID)
	if err != nil {
		s.logger.Error("failed to list backlinks", slog.String("user_id", userID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return links, nil
}

// CreateBacklink links source to target. created is false when the link
// already existed.
func (s *NotesService) CreateBacklink(ctx context.Context, userID, sourceID, targetID string) (link *models.Backlink, created bool, err error) {
	link = &models.Backlink{UserID: userID, SourceID: sourceID, TargetID: targetID}
	if err := s.repo.CreateBacklink(ctx, link); err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, false, nil
		}
		s.logger.Error("failed to create backlink", slog.String("user_id", userID), slog.Any("error", err))
		return nil, false, models.ErrInternalServer
	}
	return link, true, nil
}

// Templates returns the built-in templates and the caller's own
func (s *NotesService) Templates(ctx context.Context, userID string) (predefined []models.NoteTemplate, custom []*models.NoteTemplate, err error) {
	custom, err = s.repo.ListTemplates(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list templates", slog.String("user_id", userID), slog.Any("error", err))
		return nil, nil, models.ErrInternalServer
	}
	return s.predefined, custom, nil
}

func (s *NotesService) CreateTemplate(ctx context.Context, userID, name, content, category string) (*models.NoteTemplate, error) {
	t := &models.NoteTemplate{UserID: userID, Name: name, Content: content, Category: category}
	if err := s.repo.CreateTemplate(ctx, t); err != nil {
		s.logger.Error("failed to create template", slog.String("user_id", userID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return t, nil
}
