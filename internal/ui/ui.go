package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/contactsync/internal/models"
	"github.com/desertthunder/contactsync/internal/services"
	"github.com/desertthunder/contactsync/internal/shared"
	"github.com/desertthunder/contactsync/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	ListView ViewState = iota
	FilterView
	SearchView
	FormView
	ConfirmView
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusErr
)

// Model represents the TUI application state.
type Model struct {
	ctx     context.Context
	engine  *tasks.SyncEngine
	view    ViewState
	rows    models.ContactList
	filter  *models.SearchResult
	cursor  int
	input   textinput.Model
	form    *contactForm
	target  models.Contact
	status  string
	kind    statusKind
	loading bool
	width   int
	height  int
	help    help.Model
	keys    keyMap
}

// NewModel creates a new TUI model over engine.
func NewModel(ctx context.Context, engine *tasks.SyncEngine) *Model {
	input := textinput.New()
	input.CharLimit = 120

	return &Model{
		ctx:    ctx,
		engine: engine,
		view:   ListView,
		input:  input,
		help:   help.New(),
		keys:   newKeyMap(),
	}
}

// Init initializes the TUI by loading the full contact list.
func (m *Model) Init() tea.Cmd {
	m.loading = true
	return m.load()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case ListView:
			return m.handleListKeys(msg)
		case FilterView:
			return m.handleFilterKeys(msg)
		case SearchView:
			return m.handleSearchKeys(msg)
		case FormView:
			return m.handleFormKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m, nil
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	m.loading = false

	switch msg.kind {
	case MsgLoaded:
		m.refresh()
		if msg.err != nil {
			m.setStatus(statusErr, "reload failed, showing last known list: %s", describe(msg.err))
			return m, nil
		}
		m.setStatus(statusInfo, "%d contacts", len(m.rows))

	case MsgSearched:
		if msg.err != nil {
			m.setStatus(statusErr, "search failed: %s", describe(msg.err))
			return m, nil
		}
		m.filter = nil
		m.refresh()
		m.setStatus(statusInfo, "%d results for %q (r to reset)", len(m.rows), msg.data.(string))

	case MsgAdded:
		if msg.err != nil {
			if m.form != nil && errors.Is(msg.err, shared.ErrValidation) {
				m.form.err = msg.err
				return m, nil
			}
			m.closeForm()
			m.refresh()
			m.setStatus(statusErr, "add failed: %s", describe(msg.err))
			return m, nil
		}
		created := msg.data.(*models.Contact)
		m.closeForm()
		m.refresh()
		m.selectID(created.ID)
		m.setStatus(statusOK, "added %s", created.Name)

	case MsgEdited:
		if msg.err != nil {
			if m.form != nil && errors.Is(msg.err, shared.ErrValidation) {
				m.form.err = msg.err
				return m, nil
			}
			m.closeForm()
			m.setStatus(statusErr, "edit failed: %s", describe(msg.err))
			return m, nil
		}
		stored := msg.data.(*models.Contact)
		m.closeForm()
		m.patch(*stored)
		m.setStatus(statusOK, "saved %s", stored.Name)

	case MsgDeleted:
		target := msg.data.(models.Contact)
		m.refresh()
		if msg.err != nil {
			m.setStatus(statusErr, "delete of %s reported: %s", target.Name, describe(msg.err))
			return m, nil
		}
		m.setStatus(statusOK, "deleted %s", target.Name)

	case MsgReordered:
		data := msg.data.(moved)
		if msg.err != nil {
			m.setStatus(statusErr, "move failed: %s", describe(msg.err))
			return m, nil
		}
		m.refresh()
		m.selectID(data.id)
		if data.result.Warning != nil {
			m.setStatus(statusWarn, "order kept locally but not saved: %s", describe(data.result.Warning))
			return m, nil
		}
		m.setStatus(statusOK, "order saved")
	}

	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case FormView:
		return m.renderForm()
	case ConfirmView:
		return m.renderConfirm()
	default:
		return m.renderList()
	}
}

func (m *Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.up):
		m.cursor = max(m.cursor-1, 0)
	case key.Matches(msg, m.keys.down):
		m.cursor = min(m.cursor+1, max(len(m.rows)-1, 0))
	case key.Matches(msg, m.keys.back):
		if m.filter != nil {
			m.filter = nil
			m.refresh()
		}
	case key.Matches(msg, m.keys.filter):
		m.view = FilterView
		m.input.Prompt = "/"
		if m.filter != nil {
			m.input.SetValue(m.filter.Keyword)
		} else {
			m.input.SetValue("")
		}
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.search):
		m.view = SearchView
		m.input.Prompt = "search: "
		m.input.SetValue("")
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.reset):
		m.filter = nil
		m.loading = true
		return m, m.load()
	case key.Matches(msg, m.keys.add):
		m.form = newAddForm()
		m.view = FormView
	case key.Matches(msg, m.keys.edit):
		if c, ok := m.selected(); ok {
			m.form = newEditForm(c)
			m.view = FormView
		}
	case key.Matches(msg, m.keys.delete):
		if c, ok := m.selected(); ok {
			m.target = c
			m.view = ConfirmView
		}
	case key.Matches(msg, m.keys.moveUp):
		return m, m.move(-1)
	case key.Matches(msg, m.keys.moveDown):
		return m, m.move(1)
	}
	return m, nil
}

func (m *Model) handleFilterKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back):
		m.input.Blur()
		m.filter = nil
		m.view = ListView
		m.refresh()
		return m, nil
	case key.Matches(msg, m.keys.enter):
		m.input.Blur()
		m.view = ListView
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.applyFilter(m.input.Value())
	return m, cmd
}

func (m *Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back):
		m.input.Blur()
		m.view = ListView
		return m, nil
	case key.Matches(msg, m.keys.enter):
		m.input.Blur()
		m.view = ListView
		m.loading = true
		return m, m.searchRemote(m.input.Value())
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleFormKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "ctrl+c":
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.closeForm()
		return m, nil
	case key.Matches(msg, m.keys.next):
		m.form.cycle()
		return m, nil
	case key.Matches(msg, m.keys.enter):
		m.loading = true
		return m, m.submit()
	}
	return m, m.form.update(msg)
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.yes):
		m.view = ListView
		m.loading = true
		return m, m.delete(m.target)
	case key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.quit):
		m.view = ListView
		m.setStatus(statusInfo, "kept %s", m.target.Name)
		return m, nil
	}
	return m, nil
}

// refresh re-reads the rows to show from the engine, reapplying an active local filter.
func (m *Model) refresh() {
	if m.filter != nil {
		result := m.engine.FilterLocal(m.filter.Keyword)
		m.filter = &result
		m.rows = result.Contacts
	} else {
		m.rows = m.engine.Displayed()
	}
	m.cursor = min(m.cursor, max(len(m.rows)-1, 0))
}

func (m *Model) applyFilter(keyword string) {
	if strings.TrimSpace(keyword) == "" {
		m.filter = nil
	} else {
		m.filter = &models.SearchResult{Keyword: keyword}
	}
	m.refresh()
}

// patch replaces the visible row with the stored record. When the engine reloaded after the edit the
// cache already holds the record and the rows are re-read instead.
func (m *Model) patch(c models.Contact) {
	if cached, ok := m.engine.Cache().Current().Find(c.ID); ok && cached == c {
		m.refresh()
		return
	}
	if i := m.rows.Index(c.ID); i >= 0 {
		m.rows[i] = c
	}
}

func (m *Model) selected() (models.Contact, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return models.Contact{}, false
	}
	return m.rows[m.cursor], true
}

func (m *Model) selectID(id models.ContactID) {
	if i := m.rows.Index(id); i >= 0 {
		m.cursor = i
	}
}

func (m *Model) closeForm() {
	m.form = nil
	m.view = ListView
}

func (m *Model) setStatus(kind statusKind, format string, args ...any) {
	m.kind = kind
	m.status = fmt.Sprintf(format, args...)
}

func (m *Model) load() tea.Cmd {
	return func() tea.Msg {
		return loadedMsg(m.engine.LoadAll(m.ctx))
	}
}

func (m *Model) searchRemote(keyword string) tea.Cmd {
	keyword = strings.TrimSpace(keyword)
	return func() tea.Msg {
		_, err := m.engine.SearchRemote(m.ctx, keyword)
		return searchedMsg(keyword, err)
	}
}

func (m *Model) submit() tea.Cmd {
	form := m.form
	if !form.isEdit() {
		name, phone, email := form.value(models.FieldName), form.value(models.FieldPhone), form.value(models.FieldEmail)
		return func() tea.Msg {
			created, err := m.engine.Add(m.ctx, name, phone, email)
			return addedMsg(created, err)
		}
	}

	id, field, value := form.editing.ID, form.current(), form.value(form.current())
	return func() tea.Msg {
		stored, err := m.engine.Edit(m.ctx, id, field, value)
		return editedMsg(stored, err)
	}
}

func (m *Model) delete(target models.Contact) tea.Cmd {
	return func() tea.Msg {
		// The user already answered y in the confirm view.
		_, err := m.engine.Delete(m.ctx, target.ID, func(context.Context, models.Contact) bool { return true })
		return deletedMsg(target, err)
	}
}

func (m *Model) move(delta int) tea.Cmd {
	if m.filter != nil {
		m.setStatus(statusWarn, "clear the filter (esc) before reordering")
		return nil
	}
	if _, searching := m.engine.Searching(); searching {
		m.setStatus(statusWarn, "reset the search (r) before reordering")
		return nil
	}
	c, ok := m.selected()
	if !ok {
		return nil
	}

	position := m.cursor + delta
	if position < 0 || position >= len(m.rows) {
		return nil
	}
	return func() tea.Msg {
		result, err := m.engine.Move(m.ctx, c.ID, position)
		return reorderedMsg(c.ID, result, err)
	}
}

// describe shortens store errors for the status line.
func describe(err error) string {
	switch {
	case services.IsUnavailable(err):
		return "contact store unreachable (" + err.Error() + ")"
	case errors.Is(err, shared.ErrNotFound):
		return "contact no longer exists"
	}
	return err.Error()
}

func (m *Model) renderList() string {
	var b strings.Builder

	title := "Contacts"
	if kw, ok := m.engine.Searching(); ok {
		title = fmt.Sprintf("Contacts matching %q on the store", kw)
	}
	b.WriteString(styles.title.Render(title))
	b.WriteString("\n")

	if len(m.rows) == 0 {
		if m.loading {
			b.WriteString(styles.help.Render("loading..."))
		} else {
			b.WriteString(styles.help.Render("no contacts"))
		}
		b.WriteString("\n")
	}
	for i, c := range m.rows {
		row := contactRow{contact: c}
		if m.filter != nil && m.filter.Highlights != nil {
			row.highlight = m.filter.Highlights[c.ID]
		}
		b.WriteString(row.render(i == m.cursor))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch m.view {
	case FilterView, SearchView:
		b.WriteString(m.input.View())
		b.WriteString("\n")
	default:
		if m.filter != nil {
			b.WriteString(styles.help.Render(fmt.Sprintf("filter: %s (esc clears)", m.filter.Keyword)))
			b.WriteString("\n")
		}
	}

	if m.status != "" {
		b.WriteString(m.renderStatus())
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *Model) renderStatus() string {
	switch m.kind {
	case statusOK:
		return styles.ok.Render(m.status)
	case statusWarn:
		return styles.warn.Render(m.status)
	case statusErr:
		return styles.err.Render(m.status)
	}
	return styles.help.Render(m.status)
}

func (m *Model) renderForm() string {
	helpKeys := []key.Binding{m.keys.next, m.keys.enter, m.keys.back}
	return fmt.Sprintf("%s\n%s", m.form.view(), m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render(fmt.Sprintf("Delete %s?", m.target.Name))
	info := fmt.Sprintf("\nPhone: %s\nEmail: %s\n", m.target.Phone, m.target.Email)

	helpKeys := []key.Binding{m.keys.yes, m.keys.no}
	return fmt.Sprintf("%s\n%s\n%s", title, info, m.help.ShortHelpView(helpKeys))
}
