package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/contactsync/internal/models"
)

var _ Painter = (*Palette)(nil)

// contactRow renders one contact with its highlight spans painted by match.
type contactRow struct {
	contact   models.Contact
	highlight models.Highlight
}

func (r contactRow) field(f models.Field, match lipgloss.Style) string {
	text := r.contact.Get(f)
	spans := r.highlight[f]
	if len(spans) == 0 {
		return text
	}

	var b strings.Builder
	last := 0
	for _, s := range spans {
		if s.Start < last || s.End > len(text) || s.Start >= s.End {
			continue
		}
		b.WriteString(text[last:s.Start])
		b.WriteString(match.Render(text[s.Start:s.End]))
		last = s.End
	}
	b.WriteString(text[last:])
	return b.String()
}

func (r contactRow) render(selected bool) string {
	cursor := "  "
	if selected {
		cursor = styles.selected.Render("> ")
	}

	line := fmt.Sprintf("%s  %s", r.field(models.FieldName, styles.match), r.field(models.FieldPhone, styles.match))
	if r.contact.Email != "" {
		line += "  " + r.field(models.FieldEmail, styles.match)
	}
	return cursor + line
}
