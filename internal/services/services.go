// package services defines interface ContactStore for talking to the remote contact store
package services

import (
	"context"

	"github.com/desertthunder/contactsync/internal/models"
)

// ContactStore is the remote authoritative store of contacts.
//
// Implementations wrap transport failures and non-success statuses in [shared.ErrRemoteUnavailable]
// and missing entities in [shared.ErrNotFound].
type ContactStore interface {
	// List returns the full contact list in store order.
	List(ctx context.Context) (models.ContactList, error)

	// Get returns the current record for id.
	Get(ctx context.Context, id models.ContactID) (*models.Contact, error)

	// Create stores a new contact and returns it with its assigned ID.
	Create(ctx context.Context, contact models.NewContact) (*models.Contact, error)

	// Update replaces the whole record identified by contact.ID.
	Update(ctx context.Context, contact models.Contact) (*models.Contact, error)

	// Delete removes the contact with id.
	Delete(ctx context.Context, id models.ContactID) error

	// Reorder persists list positions for every entry in one request.
	Reorder(ctx context.Context, order []models.OrderEntry) error

	// Search returns the store's matches for keyword. Matching semantics belong to the store.
	Search(ctx context.Context, keyword string) (models.ContactList, error)
}
