package ui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/contactsync/internal/models"
)

// contactForm collects input for add (all fields) or edit (one field at a time).
type contactForm struct {
	editing models.Contact // zero for add
	fields  []models.Field
	inputs  map[models.Field]*textinput.Model
	focus   int
	err     error
}

func newInput(f models.Field, value string) *textinput.Model {
	in := textinput.New()
	in.Prompt = string(f) + ": "
	in.Placeholder = string(f)
	in.CharLimit = 120
	in.SetValue(value)
	return &in
}

func newAddForm() *contactForm {
	form := &contactForm{fields: models.Fields, inputs: map[models.Field]*textinput.Model{}}
	for _, f := range models.Fields {
		form.inputs[f] = newInput(f, "")
	}
	form.inputs[form.current()].Focus()
	return form
}

func newEditForm(c models.Contact) *contactForm {
	form := &contactForm{editing: c, fields: models.Fields, inputs: map[models.Field]*textinput.Model{}}
	for _, f := range models.Fields {
		form.inputs[f] = newInput(f, c.Get(f))
	}
	form.inputs[form.current()].Focus()
	return form
}

func (f *contactForm) isEdit() bool { return f.editing.ID != "" }

func (f *contactForm) current() models.Field { return f.fields[f.focus] }

func (f *contactForm) value(field models.Field) string { return f.inputs[field].Value() }

// cycle moves focus to the next field. On the edit form this also picks which field gets written.
func (f *contactForm) cycle() {
	f.inputs[f.current()].Blur()
	f.focus = (f.focus + 1) % len(f.fields)
	f.inputs[f.current()].Focus()
}

func (f *contactForm) update(msg tea.Msg) tea.Cmd {
	in := f.inputs[f.current()]
	updated, cmd := in.Update(msg)
	*in = updated
	return cmd
}

func (f *contactForm) view() string {
	title := "New contact"
	if f.isEdit() {
		title = "Edit " + f.editing.Name + " (tab selects the field to change)"
	}

	s := styles.title.Render(title) + "\n"
	for i, field := range f.fields {
		line := f.inputs[field].View()
		if f.isEdit() && i == f.focus {
			line = styles.selected.Render("* ") + line
		} else {
			line = "  " + line
		}
		s += line + "\n"
	}
	if f.err != nil {
		s += "\n" + styles.err.Render(f.err.Error()) + "\n"
	}
	return s
}
