// Package models defines the contact records exchanged with the remote contact store and the derived views built from them.
//
//   - [Contact] : a record identified by its store-assigned [ContactID]
//   - [ContactList] : an ordered sequence of contacts; position is display and persisted order
//   - [NewContact] : the create payload, validated before any network call
//   - [OrderEntry] : one element of a reorder submission
//   - [SearchResult] : a filtered list plus per-field highlight [Span]s, never persisted
//
// Identity for synchronization is by [ContactID] alone.
package models
