package repositories

import (
	"context"
	"database/sql"
	"errors"
	"slices"
	"testing"

	"github.com/desertthunder/contactsync/internal/models"
	"github.com/desertthunder/contactsync/internal/services"
	"github.com/desertthunder/contactsync/internal/shared"
)

var _ services.ContactStore = (*ContactRepository)(nil)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	shared.ConfigureDatabase(db, ":memory:", 0, 0)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// seedContacts inserts one contact per name, with phone numbers 100, 101, ...
func seedContacts(t *testing.T, repo *ContactRepository, names ...string) models.ContactList {
	t.Helper()

	out := models.ContactList{}
	for i, name := range names {
		c, err := repo.Create(context.Background(), models.NewContact{Name: name, Phone: "10" + string(rune('0'+i))})
		if err != nil {
			t.Fatalf("failed to create contact %s: %v", name, err)
		}
		out = append(out, *c)
	}
	return out
}

func TestNextPosition(t *testing.T) {
	db := setupTestDB(t)

	pos, err := NextPosition(db, "contacts")
	if err != nil {
		t.Fatalf("NextPosition() error = %v", err)
	}
	if pos != 0 {
		t.Errorf("expected 0 on empty table, got %d", pos)
	}

	if _, err := db.Exec("INSERT INTO contacts (name, phone, position) VALUES ('A', '1', 7)"); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if pos, _ = NextPosition(db, "contacts"); pos != 8 {
		t.Errorf("expected 8, got %d", pos)
	}
}

func TestLikePattern(t *testing.T) {
	tc := []struct{ in, want string }{
		{in: "ann", want: "%ann%"},
		{in: "50%", want: `%50\%%`},
		{in: "a_b", want: `%a\_b%`},
		{in: `c:\`, want: `%c:\\%`},
	}
	for _, tt := range tc {
		if got := likePattern(tt.in); got != tt.want {
			t.Errorf("likePattern(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestContactRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Create", func(t *testing.T) {
		t.Run("Assigns ID And Appends", func(t *testing.T) {
			repo := NewContactRepository(setupTestDB(t))

			created := seedContacts(t, repo, "Ann", "Bo")
			if created[0].ID == "" || created[0].ID == created[1].ID {
				t.Fatalf("expected distinct ids, got %v", created.IDs())
			}

			list, err := repo.List(ctx)
			if err != nil {
				t.Fatalf("failed to list: %v", err)
			}
			if !slices.Equal(list.IDs(), created.IDs()) {
				t.Errorf("expected creation order %v, got %v", created.IDs(), list.IDs())
			}
		})

		t.Run("Trims Input", func(t *testing.T) {
			repo := NewContactRepository(setupTestDB(t))

			c, err := repo.Create(ctx, models.NewContact{Name: "  Ann ", Phone: " 111", Email: " a@b.c "})
			if err != nil {
				t.Fatalf("failed to create: %v", err)
			}
			if c.Name != "Ann" || c.Phone != "111" || c.Email != "a@b.c" {
				t.Errorf("expected trimmed values, got %+v", c)
			}
		})

		t.Run("ValidationError", func(t *testing.T) {
			repo := NewContactRepository(setupTestDB(t))

			_, err := repo.Create(ctx, models.NewContact{Name: "Bob"})
			if !errors.Is(err, shared.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
			if list, _ := repo.List(ctx); len(list) != 0 {
				t.Error("invalid contact must not be stored")
			}
		})
	})

	t.Run("Get", func(t *testing.T) {
		repo := NewContactRepository(setupTestDB(t))
		created := seedContacts(t, repo, "Ann")

		got, err := repo.Get(ctx, created[0].ID)
		if err != nil {
			t.Fatalf("failed to get: %v", err)
		}
		if *got != created[0] {
			t.Errorf("expected %+v, got %+v", created[0], got)
		}

		t.Run("NotFound", func(t *testing.T) {
			for _, id := range []models.ContactID{"999", "not-a-number"} {
				if _, err := repo.Get(ctx, id); !errors.Is(err, shared.ErrNotFound) {
					t.Errorf("Get(%s): expected ErrNotFound, got %v", id, err)
				}
			}
		})
	})

	t.Run("Update", func(t *testing.T) {
		repo := NewContactRepository(setupTestDB(t))
		created := seedContacts(t, repo, "Ann", "Bo")

		updated, err := repo.Update(ctx, created[1].With(models.FieldEmail, "bo@example.com"))
		if err != nil {
			t.Fatalf("failed to update: %v", err)
		}
		if updated.Email != "bo@example.com" || updated.Name != "Bo" {
			t.Errorf("unexpected updated contact %+v", updated)
		}

		list, _ := repo.List(ctx)
		if !slices.Equal(list.IDs(), created.IDs()) {
			t.Error("update must not change position")
		}

		t.Run("NotFound", func(t *testing.T) {
			_, err := repo.Update(ctx, models.Contact{ID: "999", Name: "X", Phone: "1"})
			if !errors.Is(err, shared.ErrNotFound) {
				t.Errorf("expected ErrNotFound, got %v", err)
			}
		})

		t.Run("ValidationError", func(t *testing.T) {
			_, err := repo.Update(ctx, created[0].With(models.FieldPhone, ""))
			if !errors.Is(err, shared.ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
		})
	})

	t.Run("Delete", func(t *testing.T) {
		repo := NewContactRepository(setupTestDB(t))
		created := seedContacts(t, repo, "Ann", "Bo")

		if err := repo.Delete(ctx, created[0].ID); err != nil {
			t.Fatalf("failed to delete: %v", err)
		}
		if _, err := repo.Get(ctx, created[0].ID); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected deleted contact to be gone, got %v", err)
		}
		if err := repo.Delete(ctx, created[0].ID); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound on second delete, got %v", err)
		}
	})

	t.Run("Reorder", func(t *testing.T) {
		t.Run("Applies Positions", func(t *testing.T) {
			repo := NewContactRepository(setupTestDB(t))
			created := seedContacts(t, repo, "Ann", "Bo", "Cy")

			order := models.ContactList{created[2], created[0], created[1]}
			if err := repo.Reorder(ctx, order.OrderEntries()); err != nil {
				t.Fatalf("failed to reorder: %v", err)
			}

			list, _ := repo.List(ctx)
			if !slices.Equal(list.IDs(), order.IDs()) {
				t.Errorf("expected %v, got %v", order.IDs(), list.IDs())
			}

			next := seedContacts(t, repo, "Dee")[0]
			list, _ = repo.List(ctx)
			if list[len(list)-1].ID != next.ID {
				t.Error("new contact should be appended after reorder")
			}
		})

		t.Run("Unknown ID Rolls Back", func(t *testing.T) {
			repo := NewContactRepository(setupTestDB(t))
			created := seedContacts(t, repo, "Ann", "Bo")

			err := repo.Reorder(ctx, []models.OrderEntry{
				{ID: created[1].ID, Order: 0},
				{ID: "999", Order: 1},
				{ID: created[0].ID, Order: 2},
			})
			if !errors.Is(err, shared.ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}

			list, _ := repo.List(ctx)
			if !slices.Equal(list.IDs(), created.IDs()) {
				t.Errorf("expected original order after rollback, got %v", list.IDs())
			}
		})
	})

	t.Run("Search", func(t *testing.T) {
		repo := NewContactRepository(setupTestDB(t))
		created := seedContacts(t, repo, "Ann", "Bo", "Joanna")
		if _, err := repo.Update(ctx, created[1].With(models.FieldEmail, "bo@anne.org")); err != nil {
			t.Fatalf("failed to update: %v", err)
		}

		got, err := repo.Search(ctx, "AN")
		if err != nil {
			t.Fatalf("failed to search: %v", err)
		}
		if !slices.Equal(got.IDs(), created.IDs()) {
			t.Errorf("expected all three in list order, got %v", got.IDs())
		}

		got, _ = repo.Search(ctx, "%")
		if len(got) != 0 {
			t.Errorf("wildcards must be literal, got %v", got.IDs())
		}
	})

	t.Run("Page", func(t *testing.T) {
		repo := NewContactRepository(setupTestDB(t))
		created := seedContacts(t, repo, "Ann", "Bo", "Cy")

		page, total, err := repo.Page(ctx, 2, 1)
		if err != nil {
			t.Fatalf("failed to page: %v", err)
		}
		if total != 3 {
			t.Errorf("expected total 3, got %d", total)
		}
		if !slices.Equal(page.IDs(), created.IDs()[1:]) {
			t.Errorf("expected %v, got %v", created.IDs()[1:], page.IDs())
		}
	})
}
