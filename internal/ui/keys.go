package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gravitrone/balance-console/internal/collection"
	"github.com/gravitrone/balance-console/internal/form"
	"github.com/gravitrone/balance-console/internal/ui/components"
)

type keysMode int

const (
	keysBrowse keysMode = iota
	keysSearching
	keysAdding
	keysDeleting
	keysConfirm
)

// KeysModel edits one key collection: search, paging, bulk paste and
// single deletes. The page window is pushed in by the editor on every change.
type KeysModel struct {
	form   *form.Form
	spec   form.FieldSpec
	editor *collection.Editor
	window *collection.Window
	cursor int
	mode   keysMode
	search textinput.Model
	paste  textarea.Model
	pager  paginator.Model
	closed bool
	width  int
}

// NewKeysModel opens the editor of spec's collection.
func NewKeysModel(f *form.Form, spec form.FieldSpec, width int) KeysModel {
	m := KeysModel{
		form:   f,
		spec:   spec,
		editor: f.Editor(spec.Key),
		window: &collection.Window{},
		width:  width,
	}
	if m.editor == nil {
		m.editor = collection.New(collection.DefaultPageSize)
	}
	win := m.window
	m.editor.OnRender(func(w collection.Window) { *win = w })
	m.editor.Render()

	m.search = textinput.New()
	m.search.Prompt = "/ "
	m.search.Placeholder = "filter keys"
	m.search.SetValue(m.editor.Filter())

	m.paste = textarea.New()
	m.paste.Placeholder = "Paste keys in any format; separators are ignored."
	m.paste.ShowLineNumbers = false
	m.paste.SetHeight(6)
	m.paste.SetWidth(pasteWidth(width))

	m.pager = paginator.New()
	m.pager.Type = paginator.Dots
	m.pager.ActiveDot = PagerActiveStyle.Render("•")
	m.pager.InactiveDot = PagerInactiveStyle.Render("•")
	return m
}

func (m KeysModel) Update(msg tea.Msg) (KeysModel, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		switch m.mode {
		case keysSearching:
			m.search, cmd = m.search.Update(msg)
		case keysAdding, keysDeleting:
			m.paste, cmd = m.paste.Update(msg)
		}
		return m, cmd
	}

	switch m.mode {
	case keysSearching:
		return m.handleSearch(key)
	case keysAdding, keysDeleting:
		return m.handlePaste(key)
	case keysConfirm:
		return m.handleConfirm(key)
	}

	switch {
	case isUp(key):
		if m.cursor > 0 {
			m.cursor--
		}
	case isDown(key):
		if m.cursor < len(m.window.Items)-1 {
			m.cursor++
		}
	case isLeft(key), isKey(key, "pgup"):
		if m.editor.PrevPage() {
			m.cursor = 0
		}
	case isRight(key), isKey(key, "pgdown"):
		if m.editor.NextPage() {
			m.cursor = 0
		}
	case isKey(key, "/"):
		m.mode = keysSearching
		focusCmd := m.search.Focus()
		return m, focusCmd
	case isKey(key, "c"):
		m.search.SetValue("")
		m.editor.Search("")
		m.cursor = 0
	case isKey(key, "a"):
		m.mode = keysAdding
		m.paste.Reset()
		focusCmd := m.paste.Focus()
		return m, focusCmd
	case isKey(key, "x"):
		m.mode = keysDeleting
		m.paste.Reset()
		focusCmd := m.paste.Focus()
		return m, focusCmd
	case isKey(key, "d", "delete"):
		if _, ok := m.selected(); ok {
			m.mode = keysConfirm
		}
	case isBack(key):
		m.closed = true
	}
	return m, nil
}

func (m KeysModel) handleSearch(msg tea.KeyMsg) (KeysModel, tea.Cmd) {
	switch {
	case isEnter(msg):
		m.mode = keysBrowse
		m.search.Blur()
		return m, nil
	case isBack(msg):
		m.mode = keysBrowse
		m.search.Blur()
		m.search.SetValue("")
		m.editor.Search("")
		m.cursor = 0
		return m, nil
	}
	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if value := m.search.Value(); value != before {
		m.editor.Search(value)
		m.cursor = 0
	}
	return m, cmd
}

func (m KeysModel) handlePaste(msg tea.KeyMsg) (KeysModel, tea.Cmd) {
	switch {
	case isApply(msg):
		var (
			notice collection.Notice
			err    error
		)
		if m.mode == keysAdding {
			notice, err = m.form.AddKeys(m.spec.Key, m.paste.Value())
		} else {
			notice, err = m.form.DeleteKeys(m.spec.Key, m.paste.Value())
		}
		m.closePaste()
		if err != nil {
			return m, errCmd(err)
		}
		return m, noticeCmd(string(notice.Level), notice.Text)
	case isBack(msg):
		m.closePaste()
		return m, nil
	}
	var cmd tea.Cmd
	m.paste, cmd = m.paste.Update(msg)
	return m, cmd
}

func (m *KeysModel) closePaste() {
	m.mode = keysBrowse
	m.paste.Blur()
	m.paste.Reset()
	m.clampCursor()
}

func (m KeysModel) handleConfirm(msg tea.KeyMsg) (KeysModel, tea.Cmd) {
	switch {
	case isKey(msg, "y"):
		m.mode = keysBrowse
		value, ok := m.selected()
		if !ok {
			return m, nil
		}
		removed, err := m.form.DeleteKey(m.spec.Key, value)
		if err != nil {
			return m, errCmd(err)
		}
		m.clampCursor()
		if removed {
			return m, noticeCmd("success", "Deleted "+collection.Redact(value))
		}
	case isKey(msg, "n"), isBack(msg):
		m.mode = keysBrowse
	}
	return m, nil
}

func (m KeysModel) selected() (string, bool) {
	if m.cursor < 0 || m.cursor >= len(m.window.Items) {
		return "", false
	}
	return m.window.Items[m.cursor], true
}

func (m *KeysModel) clampCursor() {
	if m.cursor >= len(m.window.Items) {
		m.cursor = len(m.window.Items) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m KeysModel) View() string {
	w := *m.window
	var b strings.Builder

	if m.mode == keysSearching {
		b.WriteString(m.search.View() + "\n\n")
	} else if filter := m.editor.Filter(); filter != "" {
		b.WriteString(MutedStyle.Render(fmt.Sprintf("filter %q: %s", filter, countLabel(len(m.editor.Filtered()), "match", "matches"))) + "\n\n")
	}

	if w.Empty != collection.EmptyNone {
		b.WriteString(MutedStyle.Render(w.Empty.Message()))
	} else {
		tableWidth := components.BoxContentWidth(m.width)
		if tableWidth <= 0 {
			tableWidth = 60
		}
		cols := []components.TableColumn{
			{Header: "#", Width: 5, Align: lipgloss.Right},
			{Header: "Key", Width: 20},
		}
		rows := make([][]string, len(w.Items))
		for i, item := range w.Items {
			rows[i] = []string{strconv.Itoa(w.Offset + i + 1), collection.Redact(item)}
		}
		b.WriteString(components.TableGridWithActiveRow(cols, rows, tableWidth, m.cursor))
	}

	if !w.ControlsHidden {
		pager := m.pager
		pager.TotalPages = w.TotalPages
		pager.Page = w.Page - 1
		b.WriteString("\n\n" + pager.View() + MutedStyle.Render(fmt.Sprintf("  page %d of %d", w.Page, w.TotalPages)))
	}

	title := fmt.Sprintf("%s (%d)", m.spec.Label, m.editor.Len())
	out := components.TitledBox(title, b.String(), m.width)

	switch m.mode {
	case keysAdding:
		out += "\n" + components.PasteDialog("Add Keys", m.paste.View(), "ctrl+d: add | esc: cancel", m.width)
	case keysDeleting:
		out += "\n" + components.PasteDialog("Delete Keys", m.paste.View(), "ctrl+d: delete | esc: cancel", m.width)
	case keysConfirm:
		value, _ := m.selected()
		out += "\n" + components.ConfirmDialog("Delete Key", "Remove "+collection.Redact(value)+"?")
	}
	return components.Indent(out, 1)
}

func (m KeysModel) hints() []string {
	switch m.mode {
	case keysSearching:
		return []string{
			components.Hint("enter", "Apply"),
			components.Hint("esc", "Clear"),
		}
	case keysAdding, keysDeleting:
		return []string{
			components.Hint("ctrl+d", "Apply"),
			components.Hint("esc", "Cancel"),
		}
	case keysConfirm:
		return []string{
			components.Hint("y", "Confirm"),
			components.Hint("n", "Cancel"),
		}
	}
	hints := []string{
		components.Hint("↑/↓", "Select"),
		components.Hint("/", "Search"),
		components.Hint("a", "Add"),
		components.Hint("x", "Bulk delete"),
		components.Hint("d", "Delete"),
	}
	if w := *m.window; !w.ControlsHidden {
		hints = append(hints, pageHint("←", "Prev", w.PrevDisabled), pageHint("→", "Next", w.NextDisabled))
	}
	return append(hints, components.Hint("esc", "Back"))
}

func pageHint(key, desc string, disabled bool) string {
	if disabled {
		return components.DisabledHint(key, desc)
	}
	return components.Hint(key, desc)
}

func pasteWidth(width int) int {
	w := components.BoxContentWidth(width)
	if w <= 0 {
		return 60
	}
	return w
}
