package tasks

import (
	"sync"
	"sync/atomic"

	"github.com/desertthunder/contactsync/internal/models"
)

// ContactCache holds the single in-memory snapshot of the contact list.
//
// Snapshots are only ever replaced whole. Each one carries a generation taken from a monotonically
// increasing ticket counter; a snapshot whose ticket is older than the installed one is refused, so a
// slow fetch can never overwrite a newer list.
type ContactCache struct {
	mu         sync.RWMutex
	contacts   models.ContactList
	generation uint64
	issued     atomic.Uint64
}

// NewContactCache creates an empty cache. It stays empty until the first load.
func NewContactCache() *ContactCache {
	return &ContactCache{contacts: models.ContactList{}}
}

// Replace installs list as the current snapshot.
func (c *ContactCache) Replace(list models.ContactList) {
	c.install(c.ticket(), list)
}

// Current returns a copy of the latest snapshot.
func (c *ContactCache) Current() models.ContactList {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.contacts.Clone()
}

// Len returns the number of contacts in the snapshot.
func (c *ContactCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.contacts)
}

// Generation identifies the installed snapshot. Zero means nothing was ever installed.
func (c *ContactCache) Generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generation
}

// ticket reserves a generation. Take it before starting the fetch whose result will be installed.
func (c *ContactCache) ticket() uint64 {
	return c.issued.Add(1)
}

// install stores list under gen unless a newer snapshot is already installed.
func (c *ContactCache) install(gen uint64, list models.ContactList) bool {
	snapshot := list.Clone()

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen <= c.generation {
		return false
	}
	c.contacts = snapshot
	c.generation = gen
	return true
}
