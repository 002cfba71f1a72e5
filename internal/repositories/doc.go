// Package repositories implements SQLite persistence for the reference contact store.
//
// [ContactRepository] satisfies services.ContactStore directly, so the same engine code runs against
// the HTTP client or the database. Rows carry an explicit position column; list and search results
// are ordered by (position, id).
//
// Missing rows are reported as [shared.ErrNotFound] and invalid payloads as [shared.ErrValidation].
// Schema comes from the embedded migrations in the shared package.
package repositories
