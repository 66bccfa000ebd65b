// Package ownership keeps every folder and note reachable from exactly one
// user's reference set. All create, update and delete paths for owned
// resources go through a Ledger.
package ownership

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/logging"
	"github.com/dmitrijs2005/notekeeper/internal/server/models"
	"github.com/google/uuid"
)

// Resource is an owned record with an id assigned by the ledger.
type Resource interface {
	ResourceID() string
	SetResourceID(id string)
}

// RefStore holds per-user reference sets. Unknown users yield
// common.ErrorNotFound from every method except Exists.
type RefStore interface {
	Exists(ctx context.Context, userID string) (bool, error)
	Refs(ctx context.Context, userID string, kind models.Kind) ([]string, error)
	HasRef(ctx context.Context, userID string, kind models.Kind, id string) (bool, error)
	AttachRef(ctx context.Context, userID string, kind models.Kind, id string) error
	DetachRef(ctx context.Context, userID string, kind models.Kind, id string) error
}

// Store persists the resources themselves.
type Store[T Resource] interface {
	Create(ctx context.Context, item T) error
	Update(ctx context.Context, item T) error
	Delete(ctx context.Context, id string) error
	ListOwnedBy(ctx context.Context, userID string) ([]T, error)
}

// ListCache optionally memoizes owned lists per user. Entries are versioned
// by a per-user generation: Load reports the generation it looked under,
// Store writes under the generation it is given, and Invalidate moves the
// user to a new generation. A list read before a write can therefore only be
// stored where no later reader looks.
type ListCache interface {
	Load(ctx context.Context, kind models.Kind, userID string, dst any) (gen int64, ok bool, err error)
	Store(ctx context.Context, kind models.Kind, userID string, gen int64, v any) error
	Invalidate(ctx context.Context, userID string) error
}

// Validator rejects a create or update payload with common.ErrorInvalidInput.
type Validator[T Resource] func(ctx context.Context, userID string, item T) error

type Option[T Resource] func(*Ledger[T])

func WithValidator[T Resource](v Validator[T]) Option[T] {
	return func(l *Ledger[T]) { l.validate = v }
}

func WithCache[T Resource](c ListCache) Option[T] {
	return func(l *Ledger[T]) { l.cache = c }
}

func WithIDGenerator[T Resource](f func() string) Option[T] {
	return func(l *Ledger[T]) { l.newID = f }
}

// Ledger coordinates a resource store with the owner's reference set.
//
// Writes that span both are ordered so a failure part-way leaves at worst an
// unreferenced resource, never a reference to a missing one:
//   - create persists the resource, then attaches the reference;
//   - delete detaches the reference, then removes the resource.
type Ledger[T Resource] struct {
	kind     models.Kind
	refs     RefStore
	items    Store[T]
	validate Validator[T]
	cache    ListCache
	newID    func() string
	logger   logging.Logger
}

func NewLedger[T Resource](kind models.Kind, refs RefStore, items Store[T], logger logging.Logger, opts ...Option[T]) *Ledger[T] {
	l := &Ledger[T]{
		kind:   kind,
		refs:   refs,
		items:  items,
		newID:  uuid.NewString,
		logger: logger.With("kind", string(kind)),
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// List returns the caller's resources in reference order.
func (l *Ledger[T]) List(ctx context.Context, userID string) ([]T, error) {
	if l.cache == nil {
		return l.load(ctx, userID)
	}

	var cached []T
	gen, ok, err := l.cache.Load(ctx, l.kind, userID, &cached)
	if err != nil {
		l.logger.Warn(ctx, "list cache load failed", "user_id", userID, "error", err)
		return l.load(ctx, userID)
	}
	if ok {
		return cached, nil
	}

	items, err := l.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	// gen was read before load, so a write that raced it has already moved
	// readers past this entry.
	if err := l.cache.Store(ctx, l.kind, userID, gen, items); err != nil {
		l.logger.Warn(ctx, "list cache store failed", "user_id", userID, "error", err)
	}
	return items, nil
}

func (l *Ledger[T]) load(ctx context.Context, userID string) ([]T, error) {
	refs, err := l.refs.Refs(ctx, userID, l.kind)
	if err != nil {
		return nil, err
	}
	if len(refs) == 0 {
		return []T{}, nil
	}

	items, err := l.items.ListOwnedBy(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(items) != len(refs) {
		l.logger.Warn(ctx, "dangling references", "user_id", userID, "refs", len(refs), "resolved", len(items))
	}
	return items, nil
}

// Create persists item under a fresh id, attaches it to the caller and
// returns the caller's updated list.
func (l *Ledger[T]) Create(ctx context.Context, userID string, item T) ([]T, error) {
	ok, err := l.refs.Exists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, common.ErrorNotFound
	}

	if l.validate != nil {
		if err := l.validate(ctx, userID, item); err != nil {
			return nil, err
		}
	}

	id := l.newID()
	item.SetResourceID(id)
	if err := l.items.Create(ctx, item); err != nil {
		return nil, err
	}

	if err := l.refs.AttachRef(ctx, userID, l.kind, id); err != nil {
		l.logger.Error(ctx, "resource stored but not attached", "user_id", userID, "id", id, "error", err)
		return nil, err
	}

	l.invalidate(ctx, userID)
	return l.load(ctx, userID)
}

// Update overwrites a resource the caller owns. Ids that are malformed or not
// in the caller's set are reported as common.ErrorNotFound.
func (l *Ledger[T]) Update(ctx context.Context, userID, id string, item T) ([]T, error) {
	if err := l.checkOwned(ctx, userID, id); err != nil {
		return nil, err
	}

	if l.validate != nil {
		if err := l.validate(ctx, userID, item); err != nil {
			return nil, err
		}
	}

	item.SetResourceID(id)
	if err := l.items.Update(ctx, item); err != nil {
		return nil, err
	}

	l.invalidate(ctx, userID)
	return l.load(ctx, userID)
}

// Delete detaches and removes a resource the caller owns.
func (l *Ledger[T]) Delete(ctx context.Context, userID, id string) ([]T, error) {
	if err := l.checkOwned(ctx, userID, id); err != nil {
		return nil, err
	}

	if err := l.refs.DetachRef(ctx, userID, l.kind, id); err != nil {
		return nil, err
	}

	if err := l.items.Delete(ctx, id); err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			l.logger.Error(ctx, "resource detached but not removed", "user_id", userID, "id", id, "error", err)
			l.invalidate(ctx, userID)
			return nil, err
		}
		l.logger.Warn(ctx, "detached reference had no resource", "user_id", userID, "id", id)
	}

	l.invalidate(ctx, userID)
	return l.load(ctx, userID)
}

// Owns reports whether id is in the caller's reference set. Malformed ids are
// never owned.
func (l *Ledger[T]) Owns(ctx context.Context, userID, id string) (bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return false, nil
	}
	return l.refs.HasRef(ctx, userID, l.kind, id)
}

func (l *Ledger[T]) checkOwned(ctx context.Context, userID, id string) error {
	owned, err := l.Owns(ctx, userID, id)
	if err != nil {
		return err
	}
	if !owned {
		return common.ErrorNotFound
	}
	return nil
}

func (l *Ledger[T]) invalidate(ctx context.Context, userID string) {
	if l.cache == nil {
		return
	}
	if err := l.cache.Invalidate(ctx, userID); err != nil {
		l.logger.Warn(ctx, "list cache invalidate failed", "user_id", userID, "error", err)
	}
}
