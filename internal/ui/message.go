package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/contactsync/internal/models"
	"github.com/desertthunder/contactsync/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
	err  error
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgLoaded MsgKind = iota
	MsgSearched
	MsgAdded
	MsgEdited
	MsgDeleted
	MsgReordered
)

// loadedMsg is the constructor for [MsgLoaded]
func loadedMsg(err error) Msg {
	return Msg{kind: MsgLoaded, err: err}
}

// searchedMsg is the constructor for [MsgSearched]; data is the keyword.
func searchedMsg(keyword string, err error) Msg {
	return Msg{kind: MsgSearched, data: keyword, err: err}
}

// addedMsg is the constructor for [MsgAdded]
func addedMsg(contact *models.Contact, err error) Msg {
	return Msg{kind: MsgAdded, data: contact, err: err}
}

// editedMsg is the constructor for [MsgEdited]
func editedMsg(contact *models.Contact, err error) Msg {
	return Msg{kind: MsgEdited, data: contact, err: err}
}

// deletedMsg is the constructor for [MsgDeleted]
func deletedMsg(target models.Contact, err error) Msg {
	return Msg{kind: MsgDeleted, data: target, err: err}
}

// moved is the payload of [MsgReordered]: the contact that moved and the committed order.
type moved struct {
	id     models.ContactID
	result tasks.ReorderResult
}

// reorderedMsg is the constructor for [MsgReordered]
func reorderedMsg(id models.ContactID, result tasks.ReorderResult, err error) Msg {
	return Msg{kind: MsgReordered, data: moved{id: id, result: result}, err: err}
}
