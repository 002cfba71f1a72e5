package testing

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/desertthunder/contactsync/internal/models"
	"github.com/desertthunder/contactsync/internal/shared"
)

// FakeStore is an in-memory test double for services.ContactStore.
//
// Calls are recorded by method name. Failures are injected per method through Fail.
type FakeStore struct {
	mu       sync.Mutex
	contacts models.ContactList
	nextID   int
	calls    []string
	failures map[string]error
	// BeforeList, when set, runs at the start of every List call outside the store lock.
	BeforeList func(ctx context.Context)
}

// NewFakeStore seeds a store with contacts. Assigned IDs continue after the largest numeric seed ID.
func NewFakeStore(seed ...models.Contact) *FakeStore {
	s := &FakeStore{contacts: models.ContactList(seed).Clone(), failures: map[string]error{}}
	for _, c := range seed {
		if n, err := strconv.Atoi(c.ID.String()); err == nil && n > s.nextID {
			s.nextID = n
		}
	}
	return s
}

// Fail makes every subsequent call to method return err. A nil err clears the failure.
func (s *FakeStore) Fail(method string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, method)
		return
	}
	s.failures[method] = err
}

// Unavailable is a convenience error wrapping [shared.ErrRemoteUnavailable].
func Unavailable(method string) error {
	return fmt.Errorf("%w: %s: status 503", shared.ErrRemoteUnavailable, method)
}

// Calls returns the recorded method names in call order.
func (s *FakeStore) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.calls)
}

// Count returns how many times method was called.
func (s *FakeStore) Count(method string) int {
	n := 0
	for _, c := range s.Calls() {
		if c == method {
			n++
		}
	}
	return n
}

// Contacts returns the store's current contents.
func (s *FakeStore) Contacts() models.ContactList {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.contacts.Clone()
}

// Put replaces a record server-side, as a concurrent remote edit would.
func (s *FakeStore) Put(c models.Contact) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.contacts.Index(c.ID); i >= 0 {
		s.contacts[i] = c
	}
}

func (s *FakeStore) record(method string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, method)
	return s.failures[method]
}

func (s *FakeStore) List(ctx context.Context) (models.ContactList, error) {
	if s.BeforeList != nil {
		s.BeforeList(ctx)
	}
	if err := s.record("List"); err != nil {
		return nil, err
	}
	return s.Contacts(), nil
}

func (s *FakeStore) Get(ctx context.Context, id models.ContactID) (*models.Contact, error) {
	if err := s.record("Get"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.contacts.Find(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrNotFound, id)
	}
	return &c, nil
}

func (s *FakeStore) Create(ctx context.Context, nc models.NewContact) (*models.Contact, error) {
	if err := s.record("Create"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	c := models.Contact{ID: models.ContactID(strconv.Itoa(s.nextID)), Name: nc.Name, Phone: nc.Phone, Email: nc.Email}
	s.contacts = append(s.contacts, c)
	return &c, nil
}

func (s *FakeStore) Update(ctx context.Context, c models.Contact) (*models.Contact, error) {
	if err := s.record("Update"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.contacts.Index(c.ID)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", shared.ErrNotFound, c.ID)
	}
	s.contacts[i] = c
	return &c, nil
}

func (s *FakeStore) Delete(ctx context.Context, id models.ContactID) error {
	if err := s.record("Delete"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.contacts.Index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", shared.ErrNotFound, id)
	}
	s.contacts = slices.Delete(s.contacts, i, i+1)
	return nil
}

func (s *FakeStore) Reorder(ctx context.Context, order []models.OrderEntry) error {
	if err := s.record("Reorder"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	positions := make(map[models.ContactID]int, len(order))
	for _, e := range order {
		positions[e.ID] = e.Order
	}
	slices.SortStableFunc(s.contacts, func(a, b models.Contact) int {
		return positions[a.ID] - positions[b.ID]
	})
	return nil
}

func (s *FakeStore) Search(ctx context.Context, keyword string) (models.ContactList, error) {
	if err := s.record("Search"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	kw := strings.ToLower(keyword)
	out := models.ContactList{}
	for _, c := range s.contacts {
		if strings.Contains(strings.ToLower(c.Name), kw) ||
			strings.Contains(strings.ToLower(c.Phone), kw) ||
			strings.Contains(strings.ToLower(c.Email), kw) {
			out = append(out, c)
		}
	}
	return out, nil
}
