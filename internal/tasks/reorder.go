package tasks

import (
	"context"
	"fmt"
	"slices"

	"github.com/desertthunder/contactsync/internal/models"
	"github.com/desertthunder/contactsync/internal/shared"
)

// ReorderResult reports a reorder. Contacts is the committed local order.
//
// Persisted is false when the store did not accept the order; Warning then wraps
// [shared.ErrOrderNotPersisted]. The local order is kept either way and a later full load
// will bring back the store's order.
type ReorderResult struct {
	Contacts  models.ContactList
	Persisted bool
	Warning   error
}

// ReorderCoordinator turns a finished drag into a committed local order plus one persisted reorder request.
type ReorderCoordinator struct {
	engine *SyncEngine
}

// NewReorderCoordinator binds a coordinator to engine's store and cache.
func NewReorderCoordinator(engine *SyncEngine) *ReorderCoordinator {
	return &ReorderCoordinator{engine: engine}
}

// ReorderTo rewrites the cache to newOrder and submits [{id, order: index}] for every contact.
//
// newOrder must be a permutation of the cached IDs, otherwise [shared.ErrValidation] is returned and nothing
// changes. A failed submission is reported through [ReorderResult.Warning], never as an error.
func (r *ReorderCoordinator) ReorderTo(ctx context.Context, newOrder []models.ContactID) (ReorderResult, error) {
	e := r.engine

	e.mu.Lock()
	defer e.mu.Unlock()

	reordered, err := permute(e.cache.Current(), newOrder)
	if err != nil {
		return ReorderResult{}, err
	}

	e.cache.Replace(reordered)
	e.clearView()

	result := ReorderResult{Contacts: reordered.Clone(), Persisted: true}
	if err := e.store.Reorder(ctx, reordered.OrderEntries()); err != nil {
		result.Persisted = false
		result.Warning = fmt.Errorf("%w: %w", shared.ErrOrderNotPersisted, remoteErr(err))
		e.logger.Warn("order kept locally but not persisted", "err", err)
		return result, nil
	}

	e.logger.Info("order persisted", "contacts", len(reordered))
	return result, nil
}

// Move converts a "row moved to position" signal into a full order and applies it with ReorderTo.
//
// position is clamped to the list bounds.
func (r *ReorderCoordinator) Move(ctx context.Context, id models.ContactID, position int) (ReorderResult, error) {
	ids := r.engine.cache.Current().IDs()

	from := slices.Index(ids, id)
	if from < 0 {
		return ReorderResult{}, fmt.Errorf("%w: contact %s is not in the list", shared.ErrValidation, id)
	}

	ids = slices.Delete(ids, from, from+1)
	position = min(max(position, 0), len(ids))
	ids = slices.Insert(ids, position, id)

	return r.ReorderTo(ctx, ids)
}

// permute arranges current in the order given by ids, which must name every contact exactly once.
func permute(current models.ContactList, ids []models.ContactID) (models.ContactList, error) {
	if len(ids) != len(current) {
		return nil, fmt.Errorf("%w: new order has %d ids, list has %d", shared.ErrValidation, len(ids), len(current))
	}

	byID := make(map[models.ContactID]models.Contact, len(current))
	for _, c := range current {
		byID[c.ID] = c
	}

	out := make(models.ContactList, 0, len(ids))
	for _, id := range ids {
		c, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: unknown or repeated contact %s in new order", shared.ErrValidation, id)
		}
		delete(byID, id)
		out = append(out, c)
	}
	return out, nil
}
