// package formatter renders contact lists as plain text, Markdown, CSV or JSON, and marks search highlights
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/desertthunder/contactsync/internal/models"
	"github.com/desertthunder/contactsync/internal/shared"
)

// Format names an export format.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
)

// Formats lists every supported format.
var Formats = []Format{FormatText, FormatMarkdown, FormatCSV, FormatJSON}

// ParseFormat accepts a format name, case-insensitively; "md" is an alias for markdown.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatMarkdown, FormatCSV, FormatJSON:
		return f, nil
	case "md":
		return FormatMarkdown, nil
	case "":
		return FormatText, nil
	}
	return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, s)
}

// Marker pairs surround highlighted spans in plain output.
const (
	MarkOpen  = "["
	MarkClose = "]"
)

// Highlight wraps every span of text in before/after. Spans must be sorted and non-overlapping; out-of-range spans are skipped.
func Highlight(text string, spans []models.Span, before, after string) string {
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
		b.WriteString(before)
		b.WriteString(text[s.Start:s.End])
		b.WriteString(after)
		last = s.End
	}
	b.WriteString(text[last:])
	return b.String()
}

// ExportToText renders one numbered line per contact: "1. Name  phone  email".
func ExportToText(contacts models.ContactList) []byte {
	return textLines(contacts, func(c models.Contact, f models.Field) string { return c.Get(f) })
}

// FormatSearchResult renders a filtered list with highlighted spans in [brackets].
func FormatSearchResult(result models.SearchResult) []byte {
	return textLines(result.Contacts, func(c models.Contact, f models.Field) string {
		return Highlight(c.Get(f), result.SpansFor(c.ID, f), MarkOpen, MarkClose)
	})
}

func textLines(contacts models.ContactList, value func(models.Contact, models.Field) string) []byte {
	var buf bytes.Buffer

	if len(contacts) == 0 {
		buf.WriteString("No contacts.\n")
		return buf.Bytes()
	}

	for i, c := range contacts {
		fmt.Fprintf(&buf, "%d. %s  %s", i+1, value(c, models.FieldName), value(c, models.FieldPhone))
		if c.Email != "" {
			fmt.Fprintf(&buf, "  %s", value(c, models.FieldEmail))
		}
		fmt.Fprintf(&buf, "  (id %s)\n", c.ID)
	}
	return buf.Bytes()
}

// ExportToMarkdown renders a contact table.
func ExportToMarkdown(contacts models.ContactList) []byte {
	var buf bytes.Buffer

	buf.WriteString("# Contacts\n\n")
	fmt.Fprintf(&buf, "**Total**: %d\n\n", len(contacts))
	buf.WriteString("| # | Name | Phone | Email |\n")
	buf.WriteString("|---|------|-------|-------|\n")
	for i, c := range contacts {
		fmt.Fprintf(&buf, "| %d | %s | %s | %s |\n", i+1, escapeCell(c.Name), escapeCell(c.Phone), escapeCell(c.Email))
	}
	return buf.Bytes()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// ExportToCSV converts contacts to CSV with columns: ID, Name, Phone, Email
func ExportToCSV(contacts models.ContactList) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"ID", "Name", "Phone", "Email"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}
	for _, c := range contacts {
		if err := writer.Write([]string{c.ID.String(), c.Name, c.Phone, c.Email}); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportToJSON renders contacts as an indented JSON array.
func ExportToJSON(contacts models.ContactList) ([]byte, error) {
	if contacts == nil {
		contacts = models.ContactList{}
	}
	data, err := json.MarshalIndent(contacts, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return append(data, '\n'), nil
}

// Render converts contacts to the given format.
func Render(contacts models.ContactList, format Format) ([]byte, error) {
	switch format {
	case FormatText:
		return ExportToText(contacts), nil
	case FormatMarkdown:
		return ExportToMarkdown(contacts), nil
	case FormatCSV:
		return ExportToCSV(contacts)
	case FormatJSON:
		return ExportToJSON(contacts)
	}
	return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
}

// Extension returns the conventional file extension for format.
func Extension(format Format) string {
	switch format {
	case FormatMarkdown:
		return ".md"
	case FormatCSV:
		return ".csv"
	case FormatJSON:
		return ".json"
	}
	return ".txt"
}

// WriteExport renders contacts and writes them to path.
//
// Defaults to contacts{ext} as the filename.
func WriteExport(contacts models.ContactList, format Format, path string) (string, error) {
	if path == "" {
		path = "contacts" + Extension(format)
	}

	data, err := Render(contacts, format)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}
	return path, nil
}
