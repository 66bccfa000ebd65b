package folders

import (
	"context"

	"github.com/dmitrijs2005/notekeeper/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, folder *models.Folder) error
	Update(ctx context.Context, folder *models.Folder) error
	Delete(ctx context.Context, id string) error
	ListOwnedBy(ctx context.Context, userID string) ([]*models.Folder, error)
	DeleteOwnedBy(ctx context.Context, userID string) (int64, error)
}
