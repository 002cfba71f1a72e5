package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/contactsync/internal/models"
	"github.com/desertthunder/contactsync/internal/services"
	"github.com/desertthunder/contactsync/internal/shared"
	"golang.org/x/sync/singleflight"
)

// ConfirmFunc asks the user whether contact may be deleted.
type ConfirmFunc func(ctx context.Context, contact models.Contact) bool

// Options tunes a [SyncEngine].
type Options struct {
	// ReloadAfterEdit makes Edit re-fetch the full list after a successful write.
	ReloadAfterEdit bool
	Logger          *log.Logger
}

// SyncEngine orchestrates contact mutations against a [services.ContactStore] and keeps a
// [ContactCache] equal to the store's last full read.
//
// Mutations are serialized per engine. Plain loads may overlap; concurrent ones share one request.
type SyncEngine struct {
	store   services.ContactStore
	cache   *ContactCache
	logger  *log.Logger
	opts    Options
	reorder *ReorderCoordinator
	search  *SearchEngine

	mu    sync.Mutex // serializes mutations
	loads singleflight.Group

	viewMu sync.RWMutex
	view   *remoteView
	// cleared is the ticket of the newest load that reset the view.
	cleared uint64
}

// remoteView is a store search result shown in place of the full list.
type remoteView struct {
	keyword  string
	contacts models.ContactList
	gen      uint64
}

// NewSyncEngine creates an engine over store. A nil cache gets a fresh one.
func NewSyncEngine(store services.ContactStore, cache *ContactCache, opts Options) *SyncEngine {
	if cache == nil {
		cache = NewContactCache()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(io.Discard)
	}

	e := &SyncEngine{
		store:  store,
		cache:  cache,
		logger: opts.Logger,
		opts:   opts,
	}
	e.reorder = NewReorderCoordinator(e)
	e.search = NewSearchEngine(e)
	return e
}

// Cache returns the engine's snapshot holder.
func (e *SyncEngine) Cache() *ContactCache { return e.cache }

// Reorderer returns the coordinator used by [SyncEngine.ReorderTo].
func (e *SyncEngine) Reorderer() *ReorderCoordinator { return e.reorder }

// Search returns the local search engine bound to this engine's cache.
func (e *SyncEngine) Search() *SearchEngine { return e.search }

// LoadAll fetches the full list and installs it.
//
// On failure the previous snapshot stays in place and the error wraps [shared.ErrRemoteUnavailable].
// A successful load also returns the displayed list to the full cache.
//
// The shared fetch is not cancelled by any one caller; each caller stops waiting when its own ctx ends.
func (e *SyncEngine) LoadAll(ctx context.Context) error {
	fetchCtx := context.WithoutCancel(ctx)
	ch := e.loads.DoChan("load", func() (any, error) {
		return nil, e.load(fetchCtx)
	})

	select {
	case res := <-ch:
		if res.Shared {
			e.logger.Debug("load shared with concurrent caller")
		}
		return res.Err
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", shared.ErrRemoteUnavailable, ctx.Err())
	}
}

// Reset clears a remote search by reloading the full list.
func (e *SyncEngine) Reset(ctx context.Context) error {
	return e.LoadAll(ctx)
}

// load performs one uncollapsed fetch. Mutations call it directly so the fetch starts after their write.
func (e *SyncEngine) load(ctx context.Context) error {
	gen := e.cache.ticket()

	list, err := e.store.List(ctx)
	if err != nil {
		e.logger.Warn("load failed, keeping previous snapshot", "err", err)
		return remoteErr(err)
	}
	if list.HasDuplicates() {
		e.logger.Warn("store returned duplicate ids, keeping previous snapshot")
		return fmt.Errorf("%w: list contains duplicate ids", shared.ErrRemoteUnavailable)
	}

	if !e.cache.install(gen, list) {
		e.logger.Debug("dropped stale load", "generation", gen)
		return nil
	}
	e.clearViewBefore(gen)
	e.logger.Debug("installed snapshot", "generation", gen, "contacts", len(list))
	return nil
}

// Add validates and creates a contact, then reloads the full list.
//
// Empty name or phone fails with [shared.ErrValidation] before any remote call.
func (e *SyncEngine) Add(ctx context.Context, name, phone, email string) (*models.Contact, error) {
	nc := models.NewContact{Name: name, Phone: phone, Email: email}.Trimmed()
	if err := nc.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrValidation, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	created, err := e.store.Create(ctx, nc)
	if err != nil {
		e.logger.Error("create failed", "name", nc.Name, "err", err)
		return nil, remoteErr(err)
	}
	e.logger.Info("contact created", "id", created.ID)

	if err := e.load(ctx); err != nil {
		return created, err
	}
	return created, nil
}

// Edit overwrites one field of a contact.
//
// The record is read from the store rather than the cache so concurrent remote changes to other fields
// survive. The cache is not reloaded unless [Options.ReloadAfterEdit] is set; callers patch their visible
// row with the returned record.
func (e *SyncEngine) Edit(ctx context.Context, id models.ContactID, field models.Field, value string) (*models.Contact, error) {
	field, err := models.ParseField(string(field))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrValidation, err)
	}
	value = strings.TrimSpace(value)
	if field.Required() && value == "" {
		return nil, fmt.Errorf("%w: %s is required", shared.ErrValidation, field)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	current, err := e.store.Get(ctx, id)
	if err != nil {
		return nil, remoteErr(err)
	}
	if current.ID == "" {
		current.ID = id
	}

	stored, err := e.store.Update(ctx, current.With(field, value))
	if err != nil {
		return nil, remoteErr(err)
	}
	e.logger.Info("contact updated", "id", id, "field", field)

	if e.opts.ReloadAfterEdit {
		if err := e.load(ctx); err != nil {
			return stored, err
		}
	}
	return stored, nil
}

// Delete removes a contact once confirm agrees, then reloads the full list whatever the delete reported.
//
// It returns false without touching the store when the user declines.
func (e *SyncEngine) Delete(ctx context.Context, id models.ContactID, confirm ConfirmFunc) (bool, error) {
	if confirm == nil {
		return false, fmt.Errorf("%w: delete requires a confirmation", shared.ErrMissingArgument)
	}

	target, ok := e.cache.Current().Find(id)
	if !ok {
		target, ok = e.Displayed().Find(id)
	}
	if !ok {
		target = models.Contact{ID: id}
	}
	if !confirm(ctx, target) {
		e.logger.Debug("delete declined", "id", id)
		return false, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	deleteErr := e.store.Delete(ctx, id)
	if deleteErr != nil {
		e.logger.Error("delete failed, reloading anyway", "id", id, "err", deleteErr)
		deleteErr = remoteErr(deleteErr)
	} else {
		e.logger.Info("contact deleted", "id", id)
	}

	return true, errors.Join(deleteErr, e.load(ctx))
}

// SearchRemote shows the store's search results in place of the full list.
//
// The cache keeps the full list; call [SyncEngine.Reset] to return to it.
func (e *SyncEngine) SearchRemote(ctx context.Context, keyword string) (models.ContactList, error) {
	keyword = strings.TrimSpace(keyword)
	gen := e.cache.ticket()

	results, err := e.store.Search(ctx, keyword)
	if err != nil {
		return nil, remoteErr(err)
	}

	e.viewMu.Lock()
	if gen > e.cleared {
		e.view = &remoteView{keyword: keyword, contacts: results.Clone(), gen: gen}
	} else {
		e.logger.Debug("dropped search overtaken by a newer load", "keyword", keyword)
	}
	e.viewMu.Unlock()

	return results.Clone(), nil
}

// ReorderTo commits newOrder locally and submits it to the store. See [ReorderCoordinator.ReorderTo].
func (e *SyncEngine) ReorderTo(ctx context.Context, newOrder []models.ContactID) (ReorderResult, error) {
	return e.reorder.ReorderTo(ctx, newOrder)
}

// Move repositions one contact. See [ReorderCoordinator.Move].
func (e *SyncEngine) Move(ctx context.Context, id models.ContactID, position int) (ReorderResult, error) {
	return e.reorder.Move(ctx, id, position)
}

// FilterLocal filters the cache without a round trip. See [SearchEngine.FilterLocal].
func (e *SyncEngine) FilterLocal(keyword string) models.SearchResult {
	return e.search.FilterLocal(keyword)
}

// Displayed returns the list the presentation layer should render.
func (e *SyncEngine) Displayed() models.ContactList {
	e.viewMu.RLock()
	view := e.view
	e.viewMu.RUnlock()

	if view != nil {
		return view.contacts.Clone()
	}
	return e.cache.Current()
}

// Searching reports whether remote search results are displayed, and for which keyword.
func (e *SyncEngine) Searching() (string, bool) {
	e.viewMu.RLock()
	defer e.viewMu.RUnlock()
	if e.view == nil {
		return "", false
	}
	return e.view.keyword, true
}

func (e *SyncEngine) clearView() {
	e.viewMu.Lock()
	e.view = nil
	e.viewMu.Unlock()
}

// clearViewBefore drops the remote view when the load holding ticket gen started after the search.
func (e *SyncEngine) clearViewBefore(gen uint64) {
	e.viewMu.Lock()
	defer e.viewMu.Unlock()
	e.cleared = max(e.cleared, gen)
	if e.view != nil && e.view.gen < gen {
		e.view = nil
	}
}

// remoteErr makes sure a store error carries one of the remote sentinels.
func remoteErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, shared.ErrRemoteUnavailable) || errors.Is(err, shared.ErrNotFound) {
		return err
	}
	return fmt.Errorf("%w: %w", shared.ErrRemoteUnavailable, err)
}
