package users

import (
	"context"

	"github.com/dmitrijs2005/notekeeper/internal/server/models"
)

// Repository persists identity records and the owner reference sets hung off
// them. Reference mutations are single statements so concurrent appends to
// the same user cannot lose each other.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateCredentials(ctx context.Context, id string, userName, passwordHash *string) (*models.User, error)
	Delete(ctx context.Context, id string) error

	Exists(ctx context.Context, id string) (bool, error)
	Refs(ctx context.Context, id string, kind models.Kind) ([]string, error)
	HasRef(ctx context.Context, id string, kind models.Kind, ref string) (bool, error)
	AttachRef(ctx context.Context, id string, kind models.Kind, ref string) error
	DetachRef(ctx context.Context, id string, kind models.Kind, ref string) error
}
