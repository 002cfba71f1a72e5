package models

import "slices"

// ContactList is an ordered sequence of contacts. Position defines display and persisted order.
type ContactList []Contact

// Clone returns a copy that shares no backing array with l.
func (l ContactList) Clone() ContactList {
	if l == nil {
		return ContactList{}
	}
	return slices.Clone(l)
}

// IDs returns the contact IDs in list order.
func (l ContactList) IDs() []ContactID {
	ids := make([]ContactID, len(l))
	for i, c := range l {
		ids[i] = c.ID
	}
	return ids
}

// Index returns the position of id, or -1.
func (l ContactList) Index(id ContactID) int {
	return slices.IndexFunc(l, func(c Contact) bool { return c.ID == id })
}

// Find returns the contact with id.
func (l ContactList) Find(id ContactID) (Contact, bool) {
	if i := l.Index(id); i >= 0 {
		return l[i], true
	}
	return Contact{}, false
}

// HasDuplicates reports whether two entries share an ID.
func (l ContactList) HasDuplicates() bool {
	seen := make(map[ContactID]struct{}, len(l))
	for _, c := range l {
		if _, ok := seen[c.ID]; ok {
			return true
		}
		seen[c.ID] = struct{}{}
	}
	return false
}

// OrderEntries builds the reorder payload assigning each contact its index.
func (l ContactList) OrderEntries() []OrderEntry {
	entries := make([]OrderEntry, len(l))
	for i, c := range l {
		entries[i] = OrderEntry{ID: c.ID, Order: i}
	}
	return entries
}
