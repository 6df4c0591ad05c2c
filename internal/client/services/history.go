package services

import (
	"context"

	"github.com/dmitrijs2005/lphoto/internal/client/models"
	"github.com/dmitrijs2005/lphoto/internal/client/repositories/uploads"
)

// HistoryService reads the upload journal.
type HistoryService interface {
	Recent(ctx context.Context, limit int) ([]*models.UploadAttempt, error)
	// Orphans returns attempts whose target was granted but never used.
	Orphans(ctx context.Context) ([]*models.UploadAttempt, error)
}

type historyService struct {
	repo uploads.Repository
}

// NewHistoryService reads the upload journal from repo.
func NewHistoryService(repo uploads.Repository) HistoryService {
	return &historyService{repo: repo}
}

func (s *historyService) Recent(ctx context.Context, limit int) ([]*models.UploadAttempt, error) {
	return s.repo.List(ctx, limit)
}

func (s *historyService) Orphans(ctx context.Context) ([]*models.UploadAttempt, error) {
	return s.repo.ListByStatus(ctx, models.AttemptOrphaned)
}
