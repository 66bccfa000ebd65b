package services

import (
	"context"
	"database/sql"
	"slices"
	"sync"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/dbx"
	"github.com/dmitrijs2005/notekeeper/internal/server/models"
	"github.com/dmitrijs2005/notekeeper/internal/server/repositories/folders"
	"github.com/dmitrijs2005/notekeeper/internal/server/repositories/notes"
	"github.com/dmitrijs2005/notekeeper/internal/server/repositories/users"
)

// memDB is an in-memory stand-in for the three PostgreSQL repositories.
type memDB struct {
	mu      sync.Mutex
	users   map[string]*models.User
	folders map[string]*models.Folder
	notes   map[string]*models.Note

	createUserErr error
	deleteUserErr error
}

func newMemDB() *memDB {
	return &memDB{
		users:   map[string]*models.User{},
		folders: map[string]*models.Folder{},
		notes:   map[string]*models.Note{},
	}
}

type fakeRepoManager struct{ db *memDB }

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository             { return (*memUsers)(m.db) }
func (m *fakeRepoManager) Folders(dbx.DBTX) folders.Repository         { return (*memFolders)(m.db) }
func (m *fakeRepoManager) Notes(dbx.DBTX) notes.Repository             { return (*memNotes)(m.db) }

type memUsers memDB

func (r *memUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createUserErr != nil {
		return nil, r.createUserErr
	}
	for _, other := range r.users {
		if other.UserName == u.UserName {
			return nil, &common.DuplicateError{Field: common.FieldUsername}
		}
		if other.Email == u.Email {
			return nil, &common.DuplicateError{Field: common.FieldEmail}
		}
	}
	cp := *u
	cp.FolderIDs, cp.NoteIDs = []string{}, []string{}
	cp.CreatedAt, cp.UpdatedAt = time.Now(), time.Now()
	r.users[u.ID] = &cp
	out := cp
	return &out, nil
}

func (r *memUsers) get(pred func(*models.User) bool) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if pred(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return r.get(func(u *models.User) bool { return u.Email == email })
}

func (r *memUsers) UpdateCredentials(_ context.Context, id string, userName, hash *string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if userName != nil {
		for _, other := range r.users {
			if other.ID != id && other.UserName == *userName {
				return nil, &common.DuplicateError{Field: common.FieldUsername}
			}
		}
		u.UserName = *userName
	}
	if hash != nil {
		u.PasswordHash = *hash
	}
	cp := *u
	return &cp, nil
}

func (r *memUsers) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteUserErr != nil {
		return r.deleteUserErr
	}
	if _, ok := r.users[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *memUsers) Exists(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.users[id]
	return ok, nil
}

func (r *memUsers) set(u *models.User, kind models.Kind) *[]string {
	if kind == models.KindFolder {
		return &u.FolderIDs
	}
	return &u.NoteIDs
}

func (r *memUsers) Refs(_ context.Context, id string, kind models.Kind) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return slices.Clone(*r.set(u, kind)), nil
}

func (r *memUsers) HasRef(_ context.Context, id string, kind models.Kind, ref string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return false, common.ErrorNotFound
	}
	return slices.Contains(*r.set(u, kind), ref), nil
}

func (r *memUsers) AttachRef(_ context.Context, id string, kind models.Kind, ref string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return common.ErrorNotFound
	}
	s := r.set(u, kind)
	if !slices.Contains(*s, ref) {
		*s = append(*s, ref)
	}
	return nil
}

func (r *memUsers) DetachRef(_ context.Context, id string, kind models.Kind, ref string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return common.ErrorNotFound
	}
	s := r.set(u, kind)
	*s = slices.DeleteFunc(*s, func(v string) bool { return v == ref })
	return nil
}

type memFolders memDB

func (r *memFolders) Create(_ context.Context, f *models.Folder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f.CreatedAt, f.UpdatedAt = time.Now(), time.Now()
	cp := *f
	r.folders[f.ID] = &cp
	return nil
}

func (r *memFolders) Update(_ context.Context, f *models.Folder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.folders[f.ID]; !ok {
		return common.ErrorNotFound
	}
	cp := *f
	r.folders[f.ID] = &cp
	return nil
}

func (r *memFolders) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.folders[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.folders, id)
	for _, n := range r.notes {
		if n.FolderID != nil && *n.FolderID == id {
			n.FolderID = nil
		}
	}
	return nil
}

func (r *memFolders) ListOwnedBy(_ context.Context, userID string) ([]*models.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.Folder{}
	u, ok := r.users[userID]
	if !ok {
		return out, nil
	}
	for _, id := range u.FolderIDs {
		if f, ok := r.folders[id]; ok {
			cp := *f
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memFolders) DeleteOwnedBy(_ context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return 0, nil
	}
	var n int64
	for _, id := range u.FolderIDs {
		if _, ok := r.folders[id]; ok {
			delete(r.folders, id)
			n++
		}
	}
	return n, nil
}

type memNotes memDB

func (r *memNotes) Create(_ context.Context, n *models.Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n.CreatedAt, n.UpdatedAt = time.Now(), time.Now()
	cp := *n
	r.notes[n.ID] = &cp
	return nil
}

func (r *memNotes) Update(_ context.Context, n *models.Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.notes[n.ID]; !ok {
		return common.ErrorNotFound
	}
	cp := *n
	r.notes[n.ID] = &cp
	return nil
}

func (r *memNotes) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.notes[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.notes, id)
	return nil
}

func (r *memNotes) Get(_ context.Context, id string) (*models.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.notes[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *n
	return &cp, nil
}

func (r *memNotes) ListOwnedBy(_ context.Context, userID string) ([]*models.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.Note{}
	u, ok := r.users[userID]
	if !ok {
		return out, nil
	}
	for _, id := range u.NoteIDs {
		if n, ok := r.notes[id]; ok {
			cp := *n
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memNotes) DeleteOwnedBy(_ context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return 0, nil
	}
	var n int64
	for _, id := range u.NoteIDs {
		if _, ok := r.notes[id]; ok {
			delete(r.notes, id)
			n++
		}
	}
	return n, nil
}
