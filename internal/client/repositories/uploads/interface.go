package uploads

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/lphoto/internal/client/models"
)

// ErrNotFound is returned when no attempt has the requested id.
var ErrNotFound = errors.New("upload attempt not found")

// Update describes a status transition. Empty TargetURL and Error leave the
// stored values unchanged; a zero At means now.
type Update struct {
	Status    models.AttemptStatus
	TargetURL string
	Error     string
	At        time.Time
}

// Repository stores upload attempts.
type Repository interface {
	Create(ctx context.Context, a *models.UploadAttempt) error
	UpdateStatus(ctx context.Context, id string, u Update) error
	GetByID(ctx context.Context, id string) (*models.UploadAttempt, error)
	// List returns the most recent attempts first. limit <= 0 means all.
	List(ctx context.Context, limit int) ([]*models.UploadAttempt, error)
	ListByStatus(ctx context.Context, status models.AttemptStatus) ([]*models.UploadAttempt, error)
}
