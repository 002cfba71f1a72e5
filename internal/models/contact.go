package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ContactID is the opaque identifier assigned by the store.
//
// It decodes from either a JSON number or string and encodes back as a number when it is all digits.
type ContactID string

func (id ContactID) String() string { return string(id) }

// MarshalJSON implements [json.Marshaler].
func (id ContactID) MarshalJSON() ([]byte, error) {
	if id.numeric() {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// UnmarshalJSON implements [json.Unmarshaler].
func (id *ContactID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("invalid contact id: %w", err)
		}
		*id = ContactID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid contact id %s: %w", data, err)
	}
	*id = ContactID(n.String())
	return nil
}

func (id ContactID) numeric() bool {
	if id == "" || (len(id) > 1 && id[0] == '0') {
		return false
	}
	_, err := strconv.ParseUint(string(id), 10, 64)
	return err == nil
}

// Field names one editable attribute of a [Contact].
type Field string

const (
	FieldName  Field = "name"
	FieldPhone Field = "phone"
	FieldEmail Field = "email"
)

// Fields lists the editable fields in display order.
var Fields = []Field{FieldName, FieldPhone, FieldEmail}

// ParseField converts user input to a [Field].
func ParseField(s string) (Field, error) {
	f := Field(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(Fields, f) {
		return "", fmt.Errorf("unknown field %q (want one of name, phone, email)", s)
	}
	return f, nil
}

// Required reports whether the field may not be empty.
func (f Field) Required() bool {
	return f == FieldName || f == FieldPhone
}

// Contact is a single record held by the remote store.
type Contact struct {
	ID    ContactID `json:"id"`
	Name  string    `json:"name"`
	Phone string    `json:"phone"`
	Email string    `json:"email"`
}

// Get returns the value of f.
func (c Contact) Get(f Field) string {
	switch f {
	case FieldName:
		return c.Name
	case FieldPhone:
		return c.Phone
	case FieldEmail:
		return c.Email
	}
	return ""
}

// With returns a copy of c with f set to value. Unknown fields leave the copy unchanged.
func (c Contact) With(f Field, value string) Contact {
	switch f {
	case FieldName:
		c.Name = value
	case FieldPhone:
		c.Phone = value
	case FieldEmail:
		c.Email = value
	}
	return c
}

// NewContact is the payload of a create request.
type NewContact struct {
	Name  string `json:"name" validate:"required"`
	Phone string `json:"phone" validate:"required"`
	Email string `json:"email"`
}

// Trimmed returns n with surrounding whitespace removed from every field.
func (n NewContact) Trimmed() NewContact {
	return NewContact{
		Name:  strings.TrimSpace(n.Name),
		Phone: strings.TrimSpace(n.Phone),
		Email: strings.TrimSpace(n.Email),
	}
}

var validate = validator.New()

func init() {
	validate.RegisterTagNameFunc(jsonTagName)
}

// Validate checks required fields, returning a [ValidationError] naming each missing one.
func (n NewContact) Validate() error {
	if err := validate.Struct(n); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return newValidationError(verrs)
		}
		return err
	}
	return nil
}

// Validate checks the required fields of an existing contact.
func (c Contact) Validate() error {
	return NewContact{Name: c.Name, Phone: c.Phone, Email: c.Email}.Trimmed().Validate()
}

// OrderEntry assigns a list position to one contact in a reorder submission.
type OrderEntry struct {
	ID    ContactID `json:"id"`
	Order int       `json:"order"`
}
