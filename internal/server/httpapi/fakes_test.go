package httpapi

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/server/auth"
	"github.com/dmitrijs2005/notekeeper/internal/server/models"
	"github.com/dmitrijs2005/notekeeper/internal/server/services"
	"github.com/google/uuid"
)

type fakeUsers struct {
	mu        sync.Mutex
	tokens    *auth.TokenService
	byEmail   map[string]*models.User
	passwords map[string]string
	deleteErr error
	deleted   []string
}

func newFakeUsers(tokens *auth.TokenService) *fakeUsers {
	return &fakeUsers{tokens: tokens, byEmail: map[string]*models.User{}, passwords: map[string]string{}}
}

func (f *fakeUsers) result(u *models.User) (*services.AuthResult, error) {
	tok, err := f.tokens.Issue(u.ID, u.Email)
	if err != nil {
		return nil, err
	}
	return &services.AuthResult{Token: tok, User: u.Public()}, nil
}

func (f *fakeUsers) SignUp(_ context.Context, username, email, password string) (*services.AuthResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if username == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: username, email and password are required", common.ErrorInvalidInput)
	}
	if _, ok := f.byEmail[email]; ok {
		return nil, &common.DuplicateError{Field: common.FieldEmail}
	}
	for _, u := range f.byEmail {
		if u.UserName == username {
			return nil, &common.DuplicateError{Field: common.FieldUsername}
		}
	}
	u := &models.User{ID: uuid.NewString(), UserName: username, Email: email}
	f.byEmail[email] = u
	f.passwords[u.ID] = password
	return f.result(u)
}

func (f *fakeUsers) SignIn(_ context.Context, email, password string) (*services.AuthResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if f.passwords[u.ID] != password {
		return nil, common.ErrorInvalidCredentials
	}
	return f.result(u)
}

func (f *fakeUsers) find(id string) *models.User {
	for _, u := range f.byEmail {
		if u.ID == id {
			return u
		}
	}
	return nil
}

func (f *fakeUsers) UpdateCredentials(_ context.Context, userID string, upd models.CredentialsUpdate) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := f.find(userID)
	if u == nil {
		return nil, common.ErrorNotFound
	}
	if upd.UserName == nil && upd.Password == nil {
		return nil, fmt.Errorf("%w: nothing to update", common.ErrorInvalidInput)
	}
	if upd.UserName != nil {
		u.UserName = *upd.UserName
	}
	if upd.Password != nil && strings.TrimSpace(*upd.Password) != "" {
		f.passwords[u.ID] = *upd.Password
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) Delete(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	u := f.find(userID)
	if u == nil {
		return common.ErrorNotFound
	}
	delete(f.byEmail, u.Email)
	f.deleted = append(f.deleted, userID)
	return nil
}

// fakeFolders keeps one ordered folder list per user.
type fakeFolders struct {
	mu    sync.Mutex
	byUsr map[string][]*models.Folder
	err   error
	calls int
}

func newFakeFolders() *fakeFolders {
	return &fakeFolders{byUsr: map[string][]*models.Folder{}}
}

func (f *fakeFolders) snapshot(userID string) []*models.Folder {
	return append([]*models.Folder{}, f.byUsr[userID]...)
}

func (f *fakeFolders) List(_ context.Context, userID string) ([]*models.Folder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.snapshot(userID), nil
}

func (f *fakeFolders) Create(_ context.Context, userID, name string) ([]*models.Folder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: folder name is required", common.ErrorInvalidInput)
	}
	f.byUsr[userID] = append(f.byUsr[userID], &models.Folder{ID: uuid.NewString(), Name: name})
	return f.snapshot(userID), nil
}

func (f *fakeFolders) Update(_ context.Context, userID, id, name string) ([]*models.Folder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	for _, fl := range f.byUsr[userID] {
		if fl.ID == id {
			fl.Name = name
			return f.snapshot(userID), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeFolders) Delete(_ context.Context, userID, id string) ([]*models.Folder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	before := len(f.byUsr[userID])
	f.byUsr[userID] = slices.DeleteFunc(f.byUsr[userID], func(fl *models.Folder) bool { return fl.ID == id })
	if len(f.byUsr[userID]) == before {
		return nil, common.ErrorNotFound
	}
	return f.snapshot(userID), nil
}

type fakeNotes struct {
	mu      sync.Mutex
	byUsr   map[string][]*models.Note
	lastPat services.NotePatch
}

func newFakeNotes() *fakeNotes {
	return &fakeNotes{byUsr: map[string][]*models.Note{}}
}

func (f *fakeNotes) List(_ context.Context, userID string) ([]*models.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*models.Note{}, f.byUsr[userID]...), nil
}

func (f *fakeNotes) Create(_ context.Context, userID string, p services.NotePatch) ([]*models.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastPat = p
	n := &models.Note{ID: uuid.NewString(), Title: p.Title, Content: p.Content, FolderID: p.FolderID}
	if p.IsPinned != nil {
		n.IsPinned = *p.IsPinned
	}
	f.byUsr[userID] = append(f.byUsr[userID], n)
	return append([]*models.Note{}, f.byUsr[userID]...), nil
}

func (f *fakeNotes) Update(_ context.Context, userID, id string, p services.NotePatch) ([]*models.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastPat = p
	for _, n := range f.byUsr[userID] {
		if n.ID == id {
			if p.Title != nil {
				n.Title = p.Title
			}
			return append([]*models.Note{}, f.byUsr[userID]...), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeNotes) Delete(_ context.Context, userID, id string) ([]*models.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	before := len(f.byUsr[userID])
	f.byUsr[userID] = slices.DeleteFunc(f.byUsr[userID], func(n *models.Note) bool { return n.ID == id })
	if len(f.byUsr[userID]) == before {
		return nil, common.ErrorNotFound
	}
	return append([]*models.Note{}, f.byUsr[userID]...), nil
}
