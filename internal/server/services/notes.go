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
	"github.com/dmitrijs2005/notekeeper/internal/server/repositories/notes"
	"github.com/dmitrijs2005/notekeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/notekeeper/internal/server/repositories/users"
	"github.com/google/uuid"
)

// NotePatch is the client payload for note create and update. Nil fields are
// left unchanged on update and take their zero value on create.
type NotePatch struct {
	Title      *string `json:"title"`
	Content    *string `json:"content"`
	IsPinned   *bool   `json:"isPinned"`
	IsStarred  *bool   `json:"isStarred"`
	IsArchived *bool   `json:"isArchived"`
	IsDeleted  *bool   `json:"isDeleted"`
	FolderID   *string `json:"folderId"`
}

func (p NotePatch) apply(n *models.Note) *models.Note {
	if p.Title != nil {
		n.Title = p.Title
	}
	if p.Content != nil {
		n.Content = p.Content
	}
	if p.IsPinned != nil {
		n.IsPinned = *p.IsPinned
	}
	if p.IsStarred != nil {
		n.IsStarred = *p.IsStarred
	}
	if p.IsArchived != nil {
		n.IsArchived = *p.IsArchived
	}
	if p.IsDeleted != nil {
		n.IsDeleted = *p.IsDeleted
	}
	if p.FolderID != nil {
		n.FolderID = p.FolderID
	}
	return n
}

// NoteService exposes note CRUD scoped to the owning user.
type NoteService struct {
	ledger *ownership.Ledger[*models.Note]
	notes  notes.Repository
}

// NewNoteService builds the note ledger. cache may be nil.
func NewNoteService(db *sql.DB, m repomanager.RepositoryManager, cache ownership.ListCache, logger logging.Logger) *NoteService {
	refs := m.Users(db)
	opts := []ownership.Option[*models.Note]{ownership.WithValidator[*models.Note](folderInCallerSet(refs))}
	if cache != nil {
		opts = append(opts, ownership.WithCache[*models.Note](cache))
	}
	store := m.Notes(db)
	return &NoteService{
		ledger: ownership.NewLedger[*models.Note](models.KindNote, refs, store, logger.With("service", "notes"), opts...),
		notes:  store,
	}
}

// folderInCallerSet accepts a note whose folder id is empty or one of the
// caller's own folders. An empty folder id is stored as no folder.
func folderInCallerSet(refs users.Repository) ownership.Validator[*models.Note] {
	return func(ctx context.Context, userID string, n *models.Note) error {
		if n.FolderID == nil {
			return nil
		}
		id := strings.TrimSpace(*n.FolderID)
		if id == "" {
			n.FolderID = nil
			return nil
		}
		if _, err := uuid.Parse(id); err != nil {
			return fmt.Errorf("%w: folder %q does not exist", common.ErrorInvalidInput, id)
		}
		ok, err := refs.HasRef(ctx, userID, models.KindFolder, id)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: folder %q does not exist", common.ErrorInvalidInput, id)
		}
		n.FolderID = &id
		return nil
	}
}

func (s *NoteService) List(ctx context.Context, userID string) ([]*models.Note, error) {
	return s.ledger.List(ctx, userID)
}

func (s *NoteService) Create(ctx context.Context, userID string, p NotePatch) ([]*models.Note, error) {
	return s.ledger.Create(ctx, userID, p.apply(&models.Note{}))
}

// Update merges p into the stored note. The ownership check runs before the
// stored note is read.
func (s *NoteService) Update(ctx context.Context, userID, id string, p NotePatch) ([]*models.Note, error) {
	owned, err := s.ledger.Owns(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if !owned {
		return nil, common.ErrorNotFound
	}

	current, err := s.notes.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	return s.ledger.Update(ctx, userID, id, p.apply(current))
}

func (s *NoteService) Delete(ctx context.Context, userID, id string) ([]*models.Note, error) {
	return s.ledger.Delete(ctx, userID, id)
}
