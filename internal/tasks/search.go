package tasks

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/desertthunder/contactsync/internal/models"
	"golang.org/x/text/cases"
)

// SearchEngine derives filtered, highlighted views of the cache. It never mutates the cache or the store.
type SearchEngine struct {
	engine *SyncEngine
}

// NewSearchEngine binds a search engine to engine's cache.
func NewSearchEngine(engine *SyncEngine) *SearchEngine {
	return &SearchEngine{engine: engine}
}

// FilterLocal keeps contacts whose name or phone contains keyword, ignoring case, in cache order.
//
// Highlights cover every occurrence in name, phone and email of the kept contacts. Email never decides
// whether a contact is kept. An empty keyword returns the whole cache without highlights.
func (s *SearchEngine) FilterLocal(keyword string) models.SearchResult {
	keyword = strings.TrimSpace(keyword)
	contacts := s.engine.cache.Current()

	if keyword == "" {
		return models.SearchResult{Contacts: contacts}
	}

	m := newMatcher(keyword)
	result := models.SearchResult{
		Keyword:    keyword,
		Contacts:   models.ContactList{},
		Highlights: map[models.ContactID]models.Highlight{},
	}

	for _, c := range contacts {
		name, phone := m.spans(c.Name), m.spans(c.Phone)
		if len(name) == 0 && len(phone) == 0 {
			continue
		}

		h := models.Highlight{}
		for field, spans := range map[models.Field][]models.Span{
			models.FieldName:  name,
			models.FieldPhone: phone,
			models.FieldEmail: m.spans(c.Email),
		} {
			if len(spans) > 0 {
				h[field] = spans
			}
		}

		result.Contacts = append(result.Contacts, c)
		result.Highlights[c.ID] = h
	}

	return result
}

// SearchRemote delegates to the store's search. See [SyncEngine.SearchRemote].
func (s *SearchEngine) SearchRemote(ctx context.Context, keyword string) (models.ContactList, error) {
	return s.engine.SearchRemote(ctx, keyword)
}

// matcher finds literal, case-folded occurrences of a keyword.
//
// Candidate windows span as many runes as the keyword, so foldings that change rune count (ß, ss) do not match.
type matcher struct {
	caser  cases.Caser
	folded string
	runes  int
}

func newMatcher(keyword string) *matcher {
	c := cases.Fold()
	return &matcher{caser: c, folded: c.String(keyword), runes: utf8.RuneCountInString(keyword)}
}

// spans returns non-overlapping matches in text, left to right, as byte offsets.
func (m *matcher) spans(text string) []models.Span {
	var out []models.Span
	for i := 0; i < len(text); {
		end := advance(text, i, m.runes)
		if end < 0 {
			break
		}
		if m.caser.String(text[i:end]) == m.folded {
			out = append(out, models.Span{Start: i, End: end})
			i = end
			continue
		}
		_, size := utf8.DecodeRuneInString(text[i:])
		i += size
	}
	return out
}

// advance returns the byte offset n runes after start, or -1 if text is too short.
func advance(text string, start, n int) int {
	i := start
	for range n {
		if i >= len(text) {
			return -1
		}
		_, size := utf8.DecodeRuneInString(text[i:])
		i += size
	}
	return i
}
