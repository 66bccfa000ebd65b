package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/logging"
	"github.com/dmitrijs2005/notekeeper/internal/server/models"
	"github.com/dmitrijs2005/notekeeper/internal/server/ownership"
	"github.com/dmitrijs2005/notekeeper/internal/server/repositories/repomanager"
)

// FolderService exposes folder CRUD scoped to the owning user. Every call
// returns the caller's folder list as it stands afterwards.
type FolderService struct {
	ledger *ownership.Ledger[*models.Folder]
}

// NewFolderService builds the folder ledger. cache may be nil.
func NewFolderService(db *sql.DB, m repomanager.RepositoryManager, cache ownership.ListCache, logger logging.Logger) *FolderService {
	opts := []ownership.Option[*models.Folder]{ownership.WithValidator[*models.Folder](validateFolder)}
	if cache != nil {
		opts = append(opts, ownership.WithCache[*models.Folder](cache))
	}
	return &FolderService{
		ledger: ownership.NewLedger[*models.Folder](models.KindFolder, m.Users(db), m.Folders(db),
			logger.With("service", "folders"), opts...),
	}
}

func validateFolder(_ context.Context, _ string, f *models.Folder) error {
	f.Name = strings.TrimSpace(f.Name)
	if f.Name == "" {
		return fmt.Errorf("%w: folder name is required", common.ErrorInvalidInput)
	}
	return nil
}

func (s *FolderService) List(ctx context.Context, userID string) ([]*models.Folder, error) {
	return s.ledger.List(ctx, userID)
}

func (s *FolderService) Create(ctx context.Context, userID, name string) ([]*models.Folder, error) {
	return s.ledger.Create(ctx, userID, &models.Folder{Name: name})
}

func (s *FolderService) Update(ctx context.Context, userID, id, name string) ([]*models.Folder, error) {
	return s.ledger.Update(ctx, userID, id, &models.Folder{Name: name})
}

func (s *FolderService) Delete(ctx context.Context, userID, id string) ([]*models.Folder, error) {
	return s.ledger.Delete(ctx, userID, id)
}
