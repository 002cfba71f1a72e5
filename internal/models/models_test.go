package models

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestContactID(t *testing.T) {
	t.Run("decodes numbers and strings", func(t *testing.T) {
		var got []Contact
		body := `[{"id": 12, "name": "Ann", "phone": "111", "email": ""}, {"id": "a-b", "name": "Bo", "phone": "222", "email": "bo@example.com"}]`
		if err := json.Unmarshal([]byte(body), &got); err != nil {
			t.Fatalf("unmarshal failed: %v", err)
		}
		if got[0].ID != "12" {
			t.Errorf("expected id 12, got %q", got[0].ID)
		}
		if got[1].ID != "a-b" {
			t.Errorf("expected id a-b, got %q", got[1].ID)
		}
	})

	t.Run("encodes numeric ids as numbers", func(t *testing.T) {
		tc := []struct {
			id   ContactID
			want string
		}{
			{id: "7", want: `{"id":7,"order":0}`},
			{id: "0", want: `{"id":0,"order":0}`},
			{id: "007", want: `{"id":"007","order":0}`},
			{id: "uuid-1", want: `{"id":"uuid-1","order":0}`},
			{id: "", want: `{"id":"","order":0}`},
		}
		for _, tt := range tc {
			data, err := json.Marshal(OrderEntry{ID: tt.id})
			if err != nil {
				t.Fatalf("marshal failed: %v", err)
			}
			if string(data) != tt.want {
				t.Errorf("Marshal(%q) = %s, want %s", tt.id, data, tt.want)
			}
		}
	})

	t.Run("rejects objects", func(t *testing.T) {
		var id ContactID
		if err := json.Unmarshal([]byte(`{"x":1}`), &id); err == nil {
			t.Error("expected error for object id")
		}
	})
}

func TestParseField(t *testing.T) {
	for _, in := range []string{"name", " Phone ", "EMAIL"} {
		if _, err := ParseField(in); err != nil {
			t.Errorf("ParseField(%q) unexpected error: %v", in, err)
		}
	}
	if _, err := ParseField("address"); err == nil {
		t.Error("expected error for unknown field")
	}
	if !FieldName.Required() || !FieldPhone.Required() || FieldEmail.Required() {
		t.Error("only name and phone are required")
	}
}

func TestContactWith(t *testing.T) {
	c := Contact{ID: "1", Name: "Ann", Phone: "111", Email: "ann@example.com"}

	edited := c.With(FieldPhone, "999")
	if edited.Phone != "999" || edited.Name != "Ann" || edited.Email != "ann@example.com" {
		t.Errorf("With() changed more than one field: %+v", edited)
	}
	if c.Phone != "111" {
		t.Error("With() must not modify the receiver")
	}
	if edited.Get(FieldPhone) != "999" {
		t.Errorf("Get() = %q, want 999", edited.Get(FieldPhone))
	}
}

func TestNewContactValidate(t *testing.T) {
	tc := []struct {
		name    string
		in      NewContact
		missing []string
	}{
		{name: "valid", in: NewContact{Name: "Bob", Phone: "555"}},
		{name: "missing name", in: NewContact{Phone: "555"}, missing: []string{"name"}},
		{name: "missing phone", in: NewContact{Name: "Bob"}, missing: []string{"phone"}},
		{name: "missing both", in: NewContact{Email: "x@example.com"}, missing: []string{"name", "phone"}},
		{name: "whitespace only", in: NewContact{Name: "  ", Phone: "\t"}.Trimmed(), missing: []string{"name", "phone"}},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Validate()
			if len(tt.missing) == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			if len(verr.Fields) != len(tt.missing) {
				t.Errorf("expected %d failing fields, got %v", len(tt.missing), verr.Fields)
			}
			for _, f := range tt.missing {
				if !strings.Contains(verr.Error(), f+" is required") {
					t.Errorf("expected message for %s, got %q", f, verr.Error())
				}
			}
		})
	}
}

func TestContactList(t *testing.T) {
	l := ContactList{{ID: "1", Name: "Ann"}, {ID: "2", Name: "Bo"}, {ID: "3", Name: "Cy"}}

	if l.Index("2") != 1 || l.Index("9") != -1 {
		t.Error("Index() returned wrong position")
	}
	if c, ok := l.Find("3"); !ok || c.Name != "Cy" {
		t.Errorf("Find() = %+v, %v", c, ok)
	}
	if l.HasDuplicates() {
		t.Error("unexpected duplicates")
	}
	if !append(l.Clone(), Contact{ID: "1"}).HasDuplicates() {
		t.Error("expected duplicates to be detected")
	}

	entries := l.OrderEntries()
	for i, e := range entries {
		if e.Order != i || e.ID != l[i].ID {
			t.Errorf("entry %d = %+v", i, e)
		}
	}

	clone := l.Clone()
	clone[0].Name = "changed"
	if l[0].Name != "Ann" {
		t.Error("Clone() shares backing array")
	}
	if ContactList(nil).Clone() == nil {
		t.Error("Clone() of nil should be an empty list")
	}
}
