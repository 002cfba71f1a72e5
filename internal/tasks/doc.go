// Package tasks keeps an in-memory contact list consistent with the remote contact store.
//
// # Components
//
//  1. [ContactCache] : the single ordered snapshot mirroring the store's last full read
//     - replaced whole, never patched in place
//     - stale fetches are refused by generation
//
//  2. [SyncEngine] : one operation per user intent
//     - LoadAll, Add and Delete end with the cache equal to the store
//     - Edit writes one field back onto the store's current record and, unless configured to reload,
//     leaves the cache alone (the caller patches its visible row)
//     - SearchRemote swaps the displayed list for the store's results until the next load
//
//  3. [ReorderCoordinator] : commits a new order locally, then persists it in one request
//
//  4. [SearchEngine] : case-insensitive local filtering with highlight spans, no round trips
//
// # Concurrency
//
// Mutations are serialized per engine. Concurrent plain loads share one request ([singleflight.Group]),
// and every fetch reserves a cache generation before it starts so a superseded response is dropped
// instead of regressing the snapshot.
//
// # Error Handling
//
// Operations return errors wrapping the shared sentinels:
//   - [shared.ErrValidation] : rejected before any network call
//   - [shared.ErrRemoteUnavailable] : store unreachable or failing; the previous snapshot is kept
//   - [shared.ErrNotFound] : the store has no such contact
//
// A failed reorder submission is not an error: [ReorderResult.Warning] wraps [shared.ErrOrderNotPersisted].
package tasks
