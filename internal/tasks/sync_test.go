package tasks

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/contactsync/internal/models"
	"github.com/desertthunder/contactsync/internal/services"
	"github.com/desertthunder/contactsync/internal/shared"
	tu "github.com/desertthunder/contactsync/internal/testing"
)

var _ services.ContactStore = (*tu.FakeStore)(nil)

func seed() []models.Contact {
	return []models.Contact{
		{ID: "1", Name: "Ann", Phone: "111", Email: "ann@example.com"},
		{ID: "2", Name: "Bo", Phone: "222", Email: ""},
		{ID: "3", Name: "Cy", Phone: "333", Email: "cy@example.com"},
	}
}

// newLoadedEngine returns an engine whose cache already holds the seeded store.
func newLoadedEngine(t *testing.T, opts Options, contacts ...models.Contact) (*SyncEngine, *tu.FakeStore) {
	t.Helper()
	store := tu.NewFakeStore(contacts...)
	engine := NewSyncEngine(store, nil, opts)
	if err := engine.LoadAll(context.Background()); err != nil {
		t.Fatalf("initial load failed: %v", err)
	}
	return engine, store
}

func TestSyncEngine(t *testing.T) {
	ctx := context.Background()

	t.Run("LoadAll", func(t *testing.T) {
		t.Run("installs store list", func(t *testing.T) {
			engine, _ := newLoadedEngine(t, Options{}, seed()...)

			got := engine.Cache().Current()
			if !slices.Equal(got.IDs(), []models.ContactID{"1", "2", "3"}) {
				t.Errorf("unexpected cache order %v", got.IDs())
			}
		})

		t.Run("failure keeps previous snapshot", func(t *testing.T) {
			engine, store := newLoadedEngine(t, Options{}, seed()...)
			before := engine.Cache().Generation()

			store.Fail("List", errors.New("connection refused"))
			err := engine.LoadAll(ctx)

			if !errors.Is(err, shared.ErrRemoteUnavailable) {
				t.Fatalf("expected ErrRemoteUnavailable, got %v", err)
			}
			if engine.Cache().Len() != 3 || engine.Cache().Generation() != before {
				t.Error("failed load must not touch the snapshot")
			}
		})

		t.Run("duplicate ids are rejected", func(t *testing.T) {
			engine, _ := newLoadedEngine(t, Options{}, seed()...)
			dup := tu.NewFakeStore(models.Contact{ID: "1"}, models.Contact{ID: "1"})
			engine.store = dup

			if err := engine.LoadAll(ctx); !errors.Is(err, shared.ErrRemoteUnavailable) {
				t.Fatalf("expected ErrRemoteUnavailable, got %v", err)
			}
			if engine.Cache().Len() != 3 {
				t.Error("snapshot should be unchanged")
			}
		})

		t.Run("stale completion is dropped", func(t *testing.T) {
			engine, store := newLoadedEngine(t, Options{}, seed()...)
			store.Fail("Reorder", tu.Unavailable("Reorder"))

			entered := make(chan struct{})
			release := make(chan struct{})
			var once sync.Once
			store.BeforeList = func(context.Context) {
				once.Do(func() {
					close(entered)
					<-release
				})
			}

			done := make(chan error, 1)
			go func() { done <- engine.LoadAll(ctx) }()
			<-entered

			if _, err := engine.ReorderTo(ctx, []models.ContactID{"3", "1", "2"}); err != nil {
				t.Fatalf("reorder failed: %v", err)
			}
			close(release)

			if err := <-done; err != nil {
				t.Fatalf("load failed: %v", err)
			}
			if got := engine.Cache().Current().IDs(); !slices.Equal(got, []models.ContactID{"3", "1", "2"}) {
				t.Errorf("older load regressed the cache to %v", got)
			}
		})
	})

	t.Run("Add", func(t *testing.T) {
		t.Run("success reloads and contains record", func(t *testing.T) {
			engine, store := newLoadedEngine(t, Options{}, seed()...)

			created, err := engine.Add(ctx, " Dee ", "444", "dee@example.com")
			if err != nil {
				t.Fatalf("Add() error = %v", err)
			}

			got, ok := engine.Cache().Current().Find(created.ID)
			if !ok {
				t.Fatalf("cache missing created contact %s", created.ID)
			}
			if got.Name != "Dee" || got.Phone != "444" || got.Email != "dee@example.com" {
				t.Errorf("unexpected cached record %+v", got)
			}
			if store.Count("List") != 2 {
				t.Errorf("expected Add to reload, got %d List calls", store.Count("List"))
			}
		})

		t.Run("empty required fields never reach the store", func(t *testing.T) {
			tc := []struct {
				name, n, p, e string
			}{
				{name: "empty name", n: "", p: "555", e: ""},
				{name: "empty phone", n: "Bob", p: "", e: ""},
				{name: "whitespace name", n: "   ", p: "555", e: ""},
			}

			for _, tt := range tc {
				t.Run(tt.name, func(t *testing.T) {
					engine, store := newLoadedEngine(t, Options{}, seed()...)
					calls := len(store.Calls())

					_, err := engine.Add(ctx, tt.n, tt.p, tt.e)
					if !errors.Is(err, shared.ErrValidation) {
						t.Fatalf("expected ErrValidation, got %v", err)
					}
					var verr *models.ValidationError
					if !errors.As(err, &verr) {
						t.Errorf("expected wrapped *models.ValidationError, got %v", err)
					}
					if len(store.Calls()) != calls {
						t.Errorf("store was called: %v", store.Calls()[calls:])
					}
				})
			}
		})

		t.Run("remote failure leaves cache unchanged", func(t *testing.T) {
			engine, store := newLoadedEngine(t, Options{}, seed()...)
			store.Fail("Create", tu.Unavailable("Create"))

			_, err := engine.Add(ctx, "Dee", "444", "")
			if !errors.Is(err, shared.ErrRemoteUnavailable) {
				t.Fatalf("expected ErrRemoteUnavailable, got %v", err)
			}
			if engine.Cache().Len() != 3 {
				t.Errorf("expected 3 cached contacts, got %d", engine.Cache().Len())
			}
		})
	})

	t.Run("Edit", func(t *testing.T) {
		t.Run("writes one field onto the remote record", func(t *testing.T) {
			engine, store := newLoadedEngine(t, Options{}, seed()...)
			store.Put(models.Contact{ID: "1", Name: "Ann", Phone: "111", Email: "changed-remotely@example.com"})

			stored, err := engine.Edit(ctx, "1", models.FieldPhone, "999")
			if err != nil {
				t.Fatalf("Edit() error = %v", err)
			}

			remote, _ := store.Contacts().Find("1")
			if remote.Phone != "999" || remote.Email != "changed-remotely@example.com" {
				t.Errorf("edit clobbered remote fields: %+v", remote)
			}
			if stored.Phone != "999" {
				t.Errorf("expected returned record to carry new phone, got %+v", stored)
			}

			cached, _ := engine.Cache().Current().Find("1")
			if cached.Phone != "111" {
				t.Errorf("edit should not reload by default, cache has %+v", cached)
			}
		})

		t.Run("reload after edit when configured", func(t *testing.T) {
			engine, _ := newLoadedEngine(t, Options{ReloadAfterEdit: true}, seed()...)

			if _, err := engine.Edit(ctx, "2", models.FieldEmail, "bo@example.com"); err != nil {
				t.Fatalf("Edit() error = %v", err)
			}

			cached, _ := engine.Cache().Current().Find("2")
			if cached.Email != "bo@example.com" {
				t.Errorf("expected cache to reflect edit, got %+v", cached)
			}
		})

		t.Run("missing id is NotFound and cache unchanged", func(t *testing.T) {
			engine, store := newLoadedEngine(t, Options{ReloadAfterEdit: true}, seed()...)
			before := engine.Cache().Current()

			_, err := engine.Edit(ctx, "42", models.FieldPhone, "111")
			if !errors.Is(err, shared.ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
			if store.Count("Update") != 0 {
				t.Error("update must not be attempted for a missing contact")
			}
			if !slices.Equal(engine.Cache().Current(), before) {
				t.Error("cache changed after failed edit")
			}
		})

		t.Run("invalid input is rejected locally", func(t *testing.T) {
			engine, store := newLoadedEngine(t, Options{}, seed()...)
			calls := len(store.Calls())

			if _, err := engine.Edit(ctx, "1", models.Field("address"), "x"); !errors.Is(err, shared.ErrValidation) {
				t.Errorf("expected ErrValidation for unknown field, got %v", err)
			}
			if _, err := engine.Edit(ctx, "1", models.FieldName, "  "); !errors.Is(err, shared.ErrValidation) {
				t.Errorf("expected ErrValidation for empty name, got %v", err)
			}
			if _, err := engine.Edit(ctx, "1", models.Field("PHONE"), ""); !errors.Is(err, shared.ErrValidation) {
				t.Errorf("expected ErrValidation for empty phone in upper case, got %v", err)
			}
			if _, err := engine.Edit(ctx, "1", models.FieldEmail, ""); err != nil {
				t.Errorf("clearing email should be allowed, got %v", err)
			}
			if got := store.Calls()[calls:]; !slices.Equal(got, []string{"Get", "Update"}) {
				t.Errorf("unexpected store calls %v", got)
			}
		})

		t.Run("field names are normalized", func(t *testing.T) {
			engine, store := newLoadedEngine(t, Options{}, seed()...)

			stored, err := engine.Edit(ctx, "1", models.Field(" Name "), "Zed")
			if err != nil {
				t.Fatalf("Edit() error = %v", err)
			}
			if stored.Name != "Zed" {
				t.Errorf("expected returned record to carry new name, got %+v", stored)
			}
			if remote, _ := store.Contacts().Find("1"); remote.Name != "Zed" || remote.Phone != "111" {
				t.Errorf("unexpected remote record %+v", remote)
			}
		})

		t.Run("transport failure is RemoteUnavailable", func(t *testing.T) {
			engine, store := newLoadedEngine(t, Options{}, seed()...)
			store.Fail("Update", errors.New("connection reset"))

			if _, err := engine.Edit(ctx, "1", models.FieldName, "Anna"); !errors.Is(err, shared.ErrRemoteUnavailable) {
				t.Errorf("expected ErrRemoteUnavailable, got %v", err)
			}
		})
	})

	t.Run("Delete", func(t *testing.T) {
		yes := func(context.Context, models.Contact) bool { return true }
		no := func(context.Context, models.Contact) bool { return false }

		t.Run("confirmed delete reloads", func(t *testing.T) {
			engine, store := newLoadedEngine(t, Options{}, seed()...)

			var asked models.Contact
			deleted, err := engine.Delete(ctx, "2", func(_ context.Context, c models.Contact) bool {
				asked = c
				return true
			})
			if err != nil || !deleted {
				t.Fatalf("Delete() = %v, %v", deleted, err)
			}
			if asked.Name != "Bo" {
				t.Errorf("confirmation should receive the cached contact, got %+v", asked)
			}
			if got := engine.Cache().Current().IDs(); !slices.Equal(got, []models.ContactID{"1", "3"}) {
				t.Errorf("unexpected cache after delete %v", got)
			}
			if store.Count("List") != 2 {
				t.Errorf("expected reload after delete")
			}
		})

		t.Run("declined delete touches nothing", func(t *testing.T) {
			engine, store := newLoadedEngine(t, Options{}, seed()...)
			calls := len(store.Calls())

			deleted, err := engine.Delete(ctx, "2", no)
			if err != nil || deleted {
				t.Fatalf("Delete() = %v, %v", deleted, err)
			}
			if len(store.Calls()) != calls {
				t.Errorf("store was called: %v", store.Calls()[calls:])
			}
		})

		t.Run("failed delete still reloads", func(t *testing.T) {
			engine, store := newLoadedEngine(t, Options{}, seed()...)
			store.Fail("Delete", tu.Unavailable("Delete"))
			store.Put(models.Contact{ID: "3", Name: "Cyrus", Phone: "333"})

			deleted, err := engine.Delete(ctx, "2", yes)
			if !deleted {
				t.Error("expected delete to be attempted")
			}
			if !errors.Is(err, shared.ErrRemoteUnavailable) {
				t.Errorf("expected delete failure to be reported, got %v", err)
			}
			if store.Count("List") != 2 {
				t.Fatalf("expected reload after failed delete, got %d List calls", store.Count("List"))
			}
			cached, _ := engine.Cache().Current().Find("3")
			if cached.Name != "Cyrus" {
				t.Errorf("cache should match server state after reload, got %+v", cached)
			}
		})

		t.Run("nil confirmation is refused", func(t *testing.T) {
			engine, _ := newLoadedEngine(t, Options{}, seed()...)
			if _, err := engine.Delete(ctx, "1", nil); !errors.Is(err, shared.ErrMissingArgument) {
				t.Errorf("expected ErrMissingArgument, got %v", err)
			}
		})
	})

	t.Run("SearchRemote", func(t *testing.T) {
		t.Run("replaces displayed list only", func(t *testing.T) {
			engine, _ := newLoadedEngine(t, Options{}, seed()...)

			results, err := engine.SearchRemote(ctx, "  cy ")
			if err != nil {
				t.Fatalf("SearchRemote() error = %v", err)
			}
			if len(results) != 1 || results[0].ID != "3" {
				t.Errorf("unexpected results %+v", results)
			}
			if got := engine.Displayed().IDs(); !slices.Equal(got, []models.ContactID{"3"}) {
				t.Errorf("displayed should be search results, got %v", got)
			}
			if engine.Cache().Len() != 3 {
				t.Error("cache must keep the full list")
			}
			if kw, ok := engine.Searching(); !ok || kw != "cy" {
				t.Errorf("Searching() = %q, %v", kw, ok)
			}

			if err := engine.Reset(ctx); err != nil {
				t.Fatalf("Reset() error = %v", err)
			}
			if _, ok := engine.Searching(); ok {
				t.Error("reset should leave search mode")
			}
			if len(engine.Displayed()) != 3 {
				t.Errorf("expected full list after reset, got %d", len(engine.Displayed()))
			}
		})

		t.Run("failure keeps displayed list", func(t *testing.T) {
			engine, store := newLoadedEngine(t, Options{}, seed()...)
			store.Fail("Search", tu.Unavailable("Search"))

			if _, err := engine.SearchRemote(ctx, "ann"); !errors.Is(err, shared.ErrRemoteUnavailable) {
				t.Fatalf("expected ErrRemoteUnavailable, got %v", err)
			}
			if _, ok := engine.Searching(); ok {
				t.Error("failed search should not enter search mode")
			}
		})
	})

	t.Run("Concurrency", func(t *testing.T) {
		t.Run("overlapping loads share one request", func(t *testing.T) {
			engine, store := newLoadedEngine(t, Options{}, seed()...)

			entered := make(chan struct{}, 2)
			release := make(chan struct{})
			store.BeforeList = func(context.Context) {
				entered <- struct{}{}
				<-release
			}

			errs := make(chan error, 2)
			go func() { errs <- engine.LoadAll(ctx) }()
			<-entered
			go func() { errs <- engine.LoadAll(ctx) }()

			select {
			case <-entered:
				t.Fatal("second LoadAll started its own request")
			case <-time.After(50 * time.Millisecond):
			}
			close(release)

			for range 2 {
				if err := <-errs; err != nil {
					t.Fatalf("LoadAll() error = %v", err)
				}
			}
			if store.Count("List") != 2 {
				t.Errorf("expected the initial load plus one shared load, got %d List calls", store.Count("List"))
			}
		})

		t.Run("a cancelled caller does not fail the others", func(t *testing.T) {
			engine, store := newLoadedEngine(t, Options{}, seed()...)

			entered := make(chan struct{}, 1)
			release := make(chan struct{})
			fetchErr := make(chan error, 1)
			store.BeforeList = func(ctx context.Context) {
				entered <- struct{}{}
				<-release
				fetchErr <- ctx.Err()
			}

			first, cancel := context.WithCancel(ctx)
			firstErr := make(chan error, 1)
			go func() { firstErr <- engine.LoadAll(first) }()
			<-entered

			secondErr := make(chan error, 1)
			go func() { secondErr <- engine.LoadAll(ctx) }()
			time.Sleep(20 * time.Millisecond)

			cancel()
			if err := <-firstErr; !errors.Is(err, context.Canceled) {
				t.Errorf("expected cancelled caller to see context.Canceled, got %v", err)
			}
			close(release)

			if err := <-secondErr; err != nil {
				t.Errorf("expected joined caller to succeed, got %v", err)
			}
			if err := <-fetchErr; err != nil {
				t.Errorf("shared fetch saw a cancelled context: %v", err)
			}
		})

		t.Run("mutations are serialized", func(t *testing.T) {
			engine, store := newLoadedEngine(t, Options{}, seed()...)
			yes := func(context.Context, models.Contact) bool { return true }

			entered := make(chan struct{})
			release := make(chan struct{})
			var once sync.Once
			store.BeforeList = func(context.Context) {
				once.Do(func() {
					close(entered)
					<-release
				})
			}

			addErr := make(chan error, 1)
			go func() {
				_, err := engine.Add(ctx, "Dee", "444", "")
				addErr <- err
			}()
			<-entered

			delErr := make(chan error, 1)
			go func() {
				_, err := engine.Delete(ctx, "2", yes)
				delErr <- err
			}()

			time.Sleep(50 * time.Millisecond)
			if store.Count("Delete") != 0 {
				t.Fatal("delete ran while add was still reloading")
			}
			close(release)

			if err := <-addErr; err != nil {
				t.Fatalf("Add() error = %v", err)
			}
			if err := <-delErr; err != nil {
				t.Fatalf("Delete() error = %v", err)
			}

			want := store.Contacts()
			if got := engine.Cache().Current(); !slices.Equal(got, want) {
				t.Errorf("cache %v does not match store %v", got.IDs(), want.IDs())
			}
			if !slices.Equal(want.IDs(), []models.ContactID{"1", "3", "4"}) {
				t.Errorf("unexpected store contents %v", want.IDs())
			}
		})

		t.Run("load started before a remote search keeps its results", func(t *testing.T) {
			engine, store := newLoadedEngine(t, Options{}, seed()...)

			entered := make(chan struct{})
			release := make(chan struct{})
			var once sync.Once
			store.BeforeList = func(context.Context) {
				once.Do(func() {
					close(entered)
					<-release
				})
			}

			done := make(chan error, 1)
			go func() { done <- engine.LoadAll(ctx) }()
			<-entered

			if _, err := engine.SearchRemote(ctx, "cy"); err != nil {
				t.Fatalf("SearchRemote() error = %v", err)
			}
			close(release)
			if err := <-done; err != nil {
				t.Fatalf("LoadAll() error = %v", err)
			}

			if kw, ok := engine.Searching(); !ok || kw != "cy" {
				t.Errorf("Searching() = %q, %v; older load cleared the search", kw, ok)
			}
			if got := engine.Displayed().IDs(); !slices.Equal(got, []models.ContactID{"3"}) {
				t.Errorf("displayed should still be search results, got %v", got)
			}

			if err := engine.LoadAll(ctx); err != nil {
				t.Fatalf("LoadAll() error = %v", err)
			}
			if _, ok := engine.Searching(); ok {
				t.Error("a load started after the search should clear it")
			}
		})
	})
}
