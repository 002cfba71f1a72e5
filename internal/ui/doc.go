// Package ui implements an interactive contact list using bubbletea's Elm architecture.
//
// The TUI renders [tasks.SyncEngine.Displayed] and maps keys to engine operations:
//   - / : filter the cached list locally, highlighting matched spans as you type
//   - ? : replace the list with the store's search results (r reloads the full list)
//   - a, e : add and edit forms; on edit, tab picks the one field that is written
//   - d : delete after a y/n confirmation view
//   - K, J : move the selected row up or down; a failed save leaves the new order and shows a warning
//
// Every engine call runs inside a [tea.Cmd] and reports back through the [Msg] union, so the view never
// blocks on the network. The status line distinguishes success, warnings and errors by color.
package ui
