package models

// Span is a half-open byte range [Start, End) within a field value.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Highlight holds the matched spans of one contact, per field.
type Highlight map[Field][]Span

// SearchResult is a filtered, annotated view of a [ContactList]. It is derived for display only.
type SearchResult struct {
	Keyword    string                  `json:"keyword"`
	Contacts   ContactList             `json:"contacts"`
	Highlights map[ContactID]Highlight `json:"highlights,omitempty"`
}

// SpansFor returns the spans of field f for contact id, if any.
func (r SearchResult) SpansFor(id ContactID, f Field) []Span {
	if r.Highlights == nil {
		return nil
	}
	return r.Highlights[id][f]
}

// Highlighted reports whether any span was recorded.
func (r SearchResult) Highlighted() bool {
	for _, h := range r.Highlights {
		for _, spans := range h {
			if len(spans) > 0 {
				return true
			}
		}
	}
	return false
}
