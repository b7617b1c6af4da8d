package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/gravitrone/balance-console/internal/form"
	"github.com/gravitrone/balance-console/internal/ui/components"
)

// PairsEditor edits a string mapping such as custom headers.
type PairsEditor struct {
	form *form.Form
	spec form.FieldSpec
	list *components.List

	editing    bool
	editID     string
	fresh      bool
	keyInput   textinput.Model
	valueInput textinput.Model
	focusValue bool

	closed bool
	width  int
}

// NewPairsEditor opens the mapping editor of spec.
func NewPairsEditor(f *form.Form, spec form.FieldSpec, width int) PairsEditor {
	m := PairsEditor{form: f, spec: spec, list: components.NewList(15), width: width}
	m.refresh()
	return m
}

func (m *PairsEditor) refresh() {
	pairs := m.form.Pairs(m.spec.Key)
	items := make([]string, len(pairs))
	for i, p := range pairs {
		items[i] = p.Key
	}
	m.list.Replace(items)
}

func (m PairsEditor) selected() (form.Pair, bool) {
	pairs := m.form.Pairs(m.spec.Key)
	idx := m.list.Selected()
	if idx < 0 || idx >= len(pairs) {
		return form.Pair{}, false
	}
	return pairs[idx], true
}

func (m PairsEditor) Update(msg tea.Msg) (PairsEditor, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		if !m.editing {
			return m, nil
		}
		var cmd tea.Cmd
		if m.focusValue {
			m.valueInput, cmd = m.valueInput.Update(msg)
		} else {
			m.keyInput, cmd = m.keyInput.Update(msg)
		}
		return m, cmd
	}
	if m.editing {
		return m.handleEditKeys(key)
	}

	switch {
	case isUp(key):
		m.list.Up()
	case isDown(key):
		m.list.Down()
	case isKey(key, "n"):
		id, err := m.form.AddPair(m.spec.Key, "", "")
		if err != nil {
			return m, errCmd(err)
		}
		m.refresh()
		m.list.SetCursor(len(m.list.Items) - 1)
		return m.startEdit(form.Pair{ID: id}, true)
	case isEnter(key):
		if p, ok := m.selected(); ok {
			return m.startEdit(p, false)
		}
	case isKey(key, "d", "delete"):
		p, ok := m.selected()
		if !ok {
			return m, nil
		}
		if err := m.form.RemovePair(m.spec.Key, p.ID); err != nil {
			return m, errCmd(err)
		}
		m.refresh()
	case isBack(key):
		m.closed = true
	}
	return m, nil
}

func (m PairsEditor) startEdit(p form.Pair, fresh bool) (PairsEditor, tea.Cmd) {
	m.keyInput = newFieldInput("Header-Name", false)
	m.keyInput.Prompt = "key   > "
	m.keyInput.SetValue(p.Key)
	m.valueInput = newFieldInput("value", false)
	m.valueInput.Prompt = "value > "
	m.valueInput.SetValue(p.Value)
	m.editing = true
	m.editID = p.ID
	m.fresh = fresh
	m.focusValue = false
	focusCmd := m.keyInput.Focus()
	return m, focusCmd
}

func (m PairsEditor) handleEditKeys(msg tea.KeyMsg) (PairsEditor, tea.Cmd) {
	switch {
	case isKey(msg, "tab", "shift+tab"):
		m.focusValue = !m.focusValue
		if m.focusValue {
			m.keyInput.Blur()
			focusCmd := m.valueInput.Focus()
			return m, focusCmd
		}
		m.valueInput.Blur()
		focusCmd := m.keyInput.Focus()
		return m, focusCmd
	case isEnter(msg):
		k := strings.TrimSpace(m.keyInput.Value())
		if k == "" && m.fresh {
			return m.cancelEdit()
		}
		err := m.form.SetPair(m.spec.Key, m.editID, k, m.valueInput.Value())
		m.endEdit()
		return m, errCmd(err)
	case isBack(msg):
		return m.cancelEdit()
	}

	var cmd tea.Cmd
	if m.focusValue {
		m.valueInput, cmd = m.valueInput.Update(msg)
	} else {
		m.keyInput, cmd = m.keyInput.Update(msg)
	}
	return m, cmd
}

func (m PairsEditor) cancelEdit() (PairsEditor, tea.Cmd) {
	var err error
	if m.fresh {
		err = m.form.RemovePair(m.spec.Key, m.editID)
	}
	m.endEdit()
	return m, errCmd(err)
}

func (m *PairsEditor) endEdit() {
	m.keyInput.Blur()
	m.valueInput.Blur()
	m.editing = false
	m.editID = ""
	m.fresh = false
	m.refresh()
}

func (m PairsEditor) View() string {
	pairs := m.form.Pairs(m.spec.Key)
	rows := make([]components.TableRow, 0, len(pairs))
	for i, p := range pairs {
		label := p.Key
		if strings.TrimSpace(label) == "" {
			label = "(blank)"
		}
		rows = append(rows, components.TableRow{Label: label, Value: p.Value, Active: m.list.IsSelected(i)})
	}

	title := fmt.Sprintf("%s (%d)", m.spec.Label, len(pairs))
	out := components.Table(title, rows, m.width)
	if len(rows) == 0 {
		out = components.TitledBox(title, MutedStyle.Render("No entries yet. Press n to add one."), m.width)
	}
	if m.editing {
		body := m.keyInput.View() + "\n" + m.valueInput.View()
		out += "\n" + components.InputDialog("Edit Entry", body, "tab: switch | enter: save | esc: cancel")
	}
	return components.Indent(out, 1)
}

func (m PairsEditor) hints() []string {
	if m.editing {
		return []string{
			components.Hint("tab", "Switch"),
			components.Hint("enter", "Save"),
			components.Hint("esc", "Cancel"),
		}
	}
	return []string{
		components.Hint("↑/↓", "Select"),
		components.Hint("n", "New"),
		components.Hint("enter", "Edit"),
		components.Hint("d", "Remove"),
		components.Hint("esc", "Back"),
	}
}
