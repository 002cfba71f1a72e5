package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/desertthunder/contactsync/internal/models"
	"github.com/desertthunder/contactsync/internal/shared"
)

const contactColumns = "id, name, phone, email"

// ContactRepository persists contacts in the contacts table.
type ContactRepository struct {
	db *sql.DB
}

// NewContactRepository creates a new ContactRepository with the given database connection
func NewContactRepository(db *sql.DB) *ContactRepository {
	return &ContactRepository{db: db}
}

// List returns every contact ordered by position.
func (r *ContactRepository) List(ctx context.Context) (models.ContactList, error) {
	return r.query(ctx, "SELECT "+contactColumns+" FROM contacts ORDER BY position ASC, id ASC")
}

// Page returns up to limit contacts starting at offset, plus the total count.
func (r *ContactRepository) Page(ctx context.Context, limit, offset int) (models.ContactList, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM contacts").Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count contacts: %w", err)
	}

	list, err := r.query(ctx,
		"SELECT "+contactColumns+" FROM contacts ORDER BY position ASC, id ASC LIMIT ? OFFSET ?",
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// Get retrieves a contact by ID
func (r *ContactRepository) Get(ctx context.Context, id models.ContactID) (*models.Contact, error) {
	key, err := rowID(id)
	if err != nil {
		return nil, err
	}

	row := r.db.QueryRowContext(ctx, "SELECT "+contactColumns+" FROM contacts WHERE id = ?", key)
	c, err := scanContact(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}
	return c, nil
}

// Create validates and inserts a contact at the end of the list.
func (r *ContactRepository) Create(ctx context.Context, nc models.NewContact) (*models.Contact, error) {
	nc = nc.Trimmed()
	if err := nc.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrValidation, err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	position, err := NextPosition(tx, "contacts")
	if err != nil {
		return nil, err
	}

	now := time.Now()
	result, err := tx.ExecContext(ctx, `
		INSERT INTO contacts (name, phone, email, position, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, nc.Name, nc.Phone, nc.Email, position, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to insert contact: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read inserted id: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit contact: %w", err)
	}

	return &models.Contact{
		ID:    models.ContactID(strconv.FormatInt(id, 10)),
		Name:  nc.Name,
		Phone: nc.Phone,
		Email: nc.Email,
	}, nil
}

// Update replaces name, phone and email of an existing contact. Position is left alone.
func (r *ContactRepository) Update(ctx context.Context, c models.Contact) (*models.Contact, error) {
	key, err := rowID(c.ID)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrValidation, err)
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE contacts
		SET name = ?, phone = ?, email = ?, updated_at = ?
		WHERE id = ?
	`, c.Name, c.Phone, c.Email, time.Now(), key)
	if err != nil {
		return nil, fmt.Errorf("failed to update contact: %w", err)
	}
	if err := expectRow(result, c.ID); err != nil {
		return nil, err
	}

	return r.Get(ctx, c.ID)
}

// Delete removes a contact by ID.
func (r *ContactRepository) Delete(ctx context.Context, id models.ContactID) error {
	key, err := rowID(id)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, "DELETE FROM contacts WHERE id = ?", key)
	if err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}
	return expectRow(result, id)
}

// Reorder writes every entry's position in one transaction. An unknown ID aborts the whole submission.
func (r *ContactRepository) Reorder(ctx context.Context, order []models.OrderEntry) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, "UPDATE contacts SET position = ? WHERE id = ?")
	if err != nil {
		return fmt.Errorf("failed to prepare reorder: %w", err)
	}
	defer stmt.Close()

	for _, e := range order {
		key, err := rowID(e.ID)
		if err != nil {
			return err
		}
		result, err := stmt.ExecContext(ctx, e.Order, key)
		if err != nil {
			return fmt.Errorf("failed to set position of %s: %w", e.ID, err)
		}
		if err := expectRow(result, e.ID); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reorder: %w", err)
	}
	return nil
}

// Search returns contacts whose name, phone or email contains keyword, ignoring ASCII case.
func (r *ContactRepository) Search(ctx context.Context, keyword string) (models.ContactList, error) {
	pattern := likePattern(keyword)
	return r.query(ctx, `
		SELECT `+contactColumns+` FROM contacts
		WHERE name LIKE ? ESCAPE '\' OR phone LIKE ? ESCAPE '\' OR email LIKE ? ESCAPE '\'
		ORDER BY position ASC, id ASC
	`, pattern, pattern, pattern)
}

func (r *ContactRepository) query(ctx context.Context, query string, args ...any) (models.ContactList, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query contacts: %w", err)
	}
	defer rows.Close()

	contacts := models.ContactList{}
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		contacts = append(contacts, *c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return contacts, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanContact(s scanner) (*models.Contact, error) {
	var (
		id                 int64
		name, phone, email string
	)
	if err := s.Scan(&id, &name, &phone, &email); err != nil {
		return nil, err
	}
	return &models.Contact{
		ID:    models.ContactID(strconv.FormatInt(id, 10)),
		Name:  name,
		Phone: phone,
		Email: email,
	}, nil
}

// rowID converts a ContactID to the table's integer key. Non-numeric IDs cannot exist here.
func rowID(id models.ContactID) (int64, error) {
	n, err := strconv.ParseInt(id.String(), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", shared.ErrNotFound, id)
	}
	return n, nil
}

func expectRow(result sql.Result, id models.ContactID) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrNotFound, id)
	}
	return nil
}
