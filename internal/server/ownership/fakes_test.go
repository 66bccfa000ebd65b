package ownership

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/server/models"
)

type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (c *callLog) add(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, s)
}

func (c *callLog) snapshot() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.calls)
}

type fakeRefs struct {
	mu        sync.Mutex
	log       *callLog
	sets      map[string]map[models.Kind][]string
	attachErr error
	detachErr error
}

func newFakeRefs(log *callLog, users ...string) *fakeRefs {
	r := &fakeRefs{log: log, sets: map[string]map[models.Kind][]string{}}
	for _, u := range users {
		r.sets[u] = map[models.Kind][]string{}
	}
	return r
}

func (r *fakeRefs) Exists(_ context.Context, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.sets[userID]
	return ok, nil
}

func (r *fakeRefs) Refs(_ context.Context, userID string, kind models.Kind) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sets[userID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return append([]string{}, s[kind]...), nil
}

func (r *fakeRefs) HasRef(_ context.Context, userID string, kind models.Kind, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sets[userID]
	if !ok {
		return false, common.ErrorNotFound
	}
	return slices.Contains(s[kind], id), nil
}

func (r *fakeRefs) AttachRef(_ context.Context, userID string, kind models.Kind, id string) error {
	r.log.add("refs.attach")
	if r.attachErr != nil {
		return r.attachErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sets[userID]
	if !ok {
		return common.ErrorNotFound
	}
	if !slices.Contains(s[kind], id) {
		s[kind] = append(s[kind], id)
	}
	return nil
}

func (r *fakeRefs) DetachRef(_ context.Context, userID string, kind models.Kind, id string) error {
	r.log.add("refs.detach")
	if r.detachErr != nil {
		return r.detachErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sets[userID]
	if !ok {
		return common.ErrorNotFound
	}
	s[kind] = slices.DeleteFunc(s[kind], func(v string) bool { return v == id })
	return nil
}

type fakeFolders struct {
	mu        sync.Mutex
	log       *callLog
	refs      *fakeRefs
	rows      map[string]*models.Folder
	createErr error
	deleteErr error
	// afterList, when set, runs once ListOwnedBy has read its rows.
	afterList func()
}

func newFakeFolders(log *callLog, refs *fakeRefs) *fakeFolders {
	return &fakeFolders{log: log, refs: refs, rows: map[string]*models.Folder{}}
}

func (s *fakeFolders) Create(_ context.Context, f *models.Folder) error {
	s.log.add("store.create")
	if s.createErr != nil {
		return s.createErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *f
	s.rows[f.ID] = &cp
	return nil
}

func (s *fakeFolders) Update(_ context.Context, f *models.Folder) error {
	s.log.add("store.update")
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[f.ID]; !ok {
		return common.ErrorNotFound
	}
	cp := *f
	s.rows[f.ID] = &cp
	return nil
}

func (s *fakeFolders) Delete(_ context.Context, id string) error {
	s.log.add("store.delete")
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[id]; !ok {
		return common.ErrorNotFound
	}
	delete(s.rows, id)
	return nil
}

func (s *fakeFolders) ListOwnedBy(ctx context.Context, userID string) ([]*models.Folder, error) {
	ids, err := s.refs.Refs(ctx, userID, models.KindFolder)
	if err != nil {
		return []*models.Folder{}, nil
	}
	s.mu.Lock()
	out := []*models.Folder{}
	for _, id := range ids {
		if f, ok := s.rows[id]; ok {
			cp := *f
			out = append(out, &cp)
		}
	}
	hook := s.afterList
	s.mu.Unlock()

	if hook != nil {
		hook()
	}
	return out, nil
}

// fakeCache mirrors the generation scheme of the Redis cache.
type fakeCache struct {
	mu          sync.Mutex
	gens        map[string]int64
	data        map[string][]byte
	loads, hits int
	invalidated []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{gens: map[string]int64{}, data: map[string][]byte{}}
}

func cacheKey(kind models.Kind, userID string, gen int64) string {
	return fmt.Sprintf("%s:%s:%d", kind, userID, gen)
}

func (c *fakeCache) Load(_ context.Context, kind models.Kind, userID string, dst any) (int64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loads++
	gen := c.gens[userID]
	b, ok := c.data[cacheKey(kind, userID, gen)]
	if !ok {
		return gen, false, nil
	}
	c.hits++
	return gen, true, json.Unmarshal(b, dst)
}

func (c *fakeCache) Store(_ context.Context, kind models.Kind, userID string, gen int64, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[cacheKey(kind, userID, gen)] = b
	return nil
}

func (c *fakeCache) Invalidate(_ context.Context, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, userID)
	c.gens[userID]++
	return nil
}
