package notes

import (
	"context"

	"github.com/dmitrijs2005/notekeeper/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, note *models.Note) error
	Update(ctx context.Context, note *models.Note) error
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*models.Note, error)
	ListOwnedBy(ctx context.Context, userID string) ([]*models.Note, error)
	DeleteOwnedBy(ctx context.Context, userID string) (int64, error)
}
