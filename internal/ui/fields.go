package ui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/gravitrone/balance-console/internal/api"
	"github.com/gravitrone/balance-console/internal/collection"
	"github.com/gravitrone/balance-console/internal/form"
	"github.com/gravitrone/balance-console/internal/masking"
	"github.com/gravitrone/balance-console/internal/ui/components"
)

type fieldsView int

const (
	fieldsViewList fieldsView = iota
	fieldsViewKeys
	fieldsViewRows
	fieldsViewPairs
	fieldsViewBudgets
)

// FieldsModel browses the fields of one section and opens the editors for
// compound values.
type FieldsModel struct {
	form    *form.Form
	catalog *api.ModelCatalog
	section int
	list    *components.List
	view    fieldsView

	editing  bool
	editKey  string
	original string
	input    textinput.Model

	keys    KeysModel
	rows    RowsModel
	pairs   PairsEditor
	budgets BudgetsModel

	width  int
	height int
}

// NewFieldsModel creates the section browser. catalog may be nil.
func NewFieldsModel(catalog *api.ModelCatalog) FieldsModel {
	m := FieldsModel{catalog: catalog, list: components.NewList(32)}
	m.setSection(0)
	return m
}

// SetForm swaps in a freshly populated form and returns to the field list.
func (m *FieldsModel) SetForm(f *form.Form) {
	m.form = f
	m.view = fieldsViewList
	m.editing = false
	m.list.Replace(m.labels())
}

func (m *FieldsModel) setSection(idx int) {
	m.section = idx
	m.view = fieldsViewList
	m.editing = false
	m.list.SetItems(m.labels())
}

func (m *FieldsModel) setSize(width, height int) {
	m.width = width
	m.height = height
	m.keys.width = width
	m.rows.width = width
	m.pairs.width = width
	m.budgets.width = width
}

func (m FieldsModel) specs() []form.FieldSpec {
	return form.InSection(form.Sections[m.section])
}

func (m FieldsModel) labels() []string {
	specs := m.specs()
	labels := make([]string, len(specs))
	for i, spec := range specs {
		labels[i] = spec.Label
	}
	return labels
}

func (m FieldsModel) selected() (form.FieldSpec, bool) {
	specs := m.specs()
	idx := m.list.Selected()
	if idx < 0 || idx >= len(specs) {
		return form.FieldSpec{}, false
	}
	return specs[idx], true
}

// capturing reports whether keys belong to a text control.
func (m FieldsModel) capturing() bool {
	switch m.view {
	case fieldsViewKeys:
		return m.keys.mode != keysBrowse
	case fieldsViewRows:
		return m.rows.editing
	case fieldsViewPairs:
		return m.pairs.editing
	case fieldsViewBudgets:
		return m.budgets.editing
	}
	return m.editing
}

func (m FieldsModel) Update(msg tea.Msg) (FieldsModel, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	var cmd tea.Cmd
	switch m.view {
	case fieldsViewKeys:
		m.keys, cmd = m.keys.Update(msg)
		if m.keys.closed {
			m.view = fieldsViewList
		}
		return m, cmd
	case fieldsViewRows:
		m.rows, cmd = m.rows.Update(msg)
		if m.rows.closed {
			m.view = fieldsViewList
		}
		return m, cmd
	case fieldsViewPairs:
		m.pairs, cmd = m.pairs.Update(msg)
		if m.pairs.closed {
			m.view = fieldsViewList
		}
		return m, cmd
	case fieldsViewBudgets:
		m.budgets, cmd = m.budgets.Update(msg)
		if m.budgets.closed {
			m.view = fieldsViewList
		}
		return m, cmd
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		if m.editing {
			m.input, cmd = m.input.Update(msg)
		}
		return m, cmd
	}
	if m.editing {
		return m.handleEditKeys(key)
	}

	spec, ok := m.selected()
	switch {
	case isUp(key):
		m.list.Up()
	case isDown(key):
		m.list.Down()
	case !ok:
		return m, nil
	case isLeft(key) && spec.Kind == form.KindSelect:
		return m, errCmd(m.form.CycleOption(spec.Key, -1))
	case isRight(key) && spec.Kind == form.KindSelect:
		return m, errCmd(m.form.CycleOption(spec.Key, 1))
	case isSpace(key) && spec.Kind == form.KindBool:
		return m, errCmd(m.form.Toggle(spec.Key))
	case isKey(key, "g") && spec.Generate && spec.Kind == form.KindSensitive:
		token, _, err := m.form.Generate(spec.Key)
		if err != nil {
			return m, errCmd(err)
		}
		return m, noticeCmd("success", "Generated "+collection.Redact(token))
	case isEnter(key):
		return m.open(spec)
	}
	return m, nil
}

func (m FieldsModel) open(spec form.FieldSpec) (FieldsModel, tea.Cmd) {
	switch spec.Kind {
	case form.KindBool:
		return m, errCmd(m.form.Toggle(spec.Key))
	case form.KindSelect:
		return m, errCmd(m.form.CycleOption(spec.Key, 1))
	case form.KindText, form.KindNumber, form.KindSensitive:
		if spec.Kind == form.KindSensitive {
			m.form.Focus(spec.Key)
		}
		m.original = m.form.Value(spec.Key)
		m.input = newFieldInput(spec.Label, spec.Storage == masking.StorageSecret)
		m.input.SetValue(m.original)
		m.editing = true
		m.editKey = spec.Key
		focusCmd := m.input.Focus()
		return m, focusCmd
	case form.KindKeyCollection:
		m.keys = NewKeysModel(m.form, spec, m.width)
		m.view = fieldsViewKeys
	case form.KindList, form.KindSensitiveList:
		m.rows = NewRowsModel(m.form, spec, m.catalog, m.width)
		m.view = fieldsViewRows
	case form.KindPairs:
		m.pairs = NewPairsEditor(m.form, spec, m.width)
		m.view = fieldsViewPairs
	case form.KindBudgetMap:
		m.budgets = NewBudgetsModel(m.form, spec, m.width)
		m.view = fieldsViewBudgets
	}
	return m, nil
}

func (m FieldsModel) handleEditKeys(msg tea.KeyMsg) (FieldsModel, tea.Cmd) {
	switch {
	case isEnter(msg):
		m.finishEdit()
		return m, nil
	case isBack(msg):
		if m.input.Value() != m.original {
			if err := m.form.SetText(m.editKey, m.original); err != nil {
				return m, errCmd(err)
			}
		}
		m.finishEdit()
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if value := m.input.Value(); value != before {
		if err := m.form.SetText(m.editKey, value); err != nil {
			return m, errCmd(err)
		}
	}
	return m, cmd
}

func (m *FieldsModel) finishEdit() {
	if spec, ok := form.Lookup(m.editKey); ok && spec.Kind == form.KindSensitive {
		m.form.Blur(m.editKey)
	}
	m.input.Blur()
	m.editing = false
	m.editKey = ""
}

func (m FieldsModel) View() string {
	if m.form == nil {
		return components.Indent(components.TitledBox("Loading", MutedStyle.Render("Fetching configuration..."), m.width), 1)
	}
	switch m.view {
	case fieldsViewKeys:
		return m.keys.View()
	case fieldsViewRows:
		return m.rows.View()
	case fieldsViewPairs:
		return m.pairs.View()
	case fieldsViewBudgets:
		return m.budgets.View()
	}

	specs := m.specs()
	rows := make([]components.TableRow, 0, len(specs))
	for i, spec := range specs {
		rows = append(rows, components.TableRow{
			Label:  spec.Label,
			Value:  m.display(spec),
			Note:   spec.Key,
			Active: m.list.IsSelected(i),
		})
	}
	out := components.Table(string(form.Sections[m.section]), rows, m.width)
	if m.editing {
		spec, _ := form.Lookup(m.editKey)
		hint := "enter: done | esc: revert"
		if spec.Kind == form.KindNumber {
			hint = "numbers only, anything else saves as 0 | " + hint
		}
		out += "\n" + components.InputDialog(spec.Label, m.input.View(), hint)
	}
	return components.Indent(out, 1)
}

// display renders the current value of a field for the browser table.
func (m FieldsModel) display(spec form.FieldSpec) string {
	switch spec.Kind {
	case form.KindBool:
		if m.form.Bool(spec.Key) {
			return "[x] on"
		}
		return "[ ] off"
	case form.KindSelect:
		return "‹ " + m.form.Value(spec.Key) + " ›"
	case form.KindSensitive:
		value := m.form.Value(spec.Key)
		switch {
		case value == "":
			return "(not set)"
		case spec.Storage == masking.StorageSecret:
			return strings.Repeat("•", utf8.RuneCountInString(value))
		}
		return value
	case form.KindKeyCollection:
		return countLabel(m.form.Editor(spec.Key).Len(), "key", "keys")
	case form.KindList:
		return countLabel(len(m.form.Rows(spec.Key)), "entry", "entries")
	case form.KindSensitiveList:
		return countLabel(len(m.form.Rows(spec.Key)), "token", "tokens")
	case form.KindPairs:
		return countLabel(len(m.form.Pairs(spec.Key)), "pair", "pairs")
	case form.KindBudgetMap:
		return countLabel(len(m.form.Budgets(spec.Key)), "model", "models")
	}
	if value := m.form.Value(spec.Key); value != "" {
		return value
	}
	return "-"
}

func (m FieldsModel) hints() []string {
	switch m.view {
	case fieldsViewKeys:
		return m.keys.hints()
	case fieldsViewRows:
		return m.rows.hints()
	case fieldsViewPairs:
		return m.pairs.hints()
	case fieldsViewBudgets:
		return m.budgets.hints()
	}
	if m.editing {
		return []string{
			components.Hint("enter", "Done"),
			components.Hint("esc", "Revert"),
		}
	}
	hints := []string{components.Hint("↑/↓", "Select")}
	spec, ok := m.selected()
	if !ok {
		return hints
	}
	switch spec.Kind {
	case form.KindBool:
		hints = append(hints, components.Hint("space", "Toggle"))
	case form.KindSelect:
		hints = append(hints, components.Hint("←/→", "Cycle"))
	default:
		hints = append(hints, components.Hint("enter", "Edit"))
	}
	if spec.Generate && spec.Kind == form.KindSensitive {
		hints = append(hints, components.Hint("g", "Generate"))
	}
	return hints
}

// --- Shared Helpers ---

func newFieldInput(placeholder string, secret bool) textinput.Model {
	input := textinput.New()
	input.Prompt = "> "
	input.Placeholder = placeholder
	input.Width = 48
	if secret {
		input.EchoMode = textinput.EchoPassword
		input.EchoCharacter = '•'
	}
	return input
}

func errCmd(err error) tea.Cmd {
	if err == nil {
		return nil
	}
	return func() tea.Msg { return errMsg{err} }
}

func noticeCmd(level, text string) tea.Cmd {
	return func() tea.Msg { return noticeMsg{level: level, text: text} }
}

func countLabel(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", one)
	}
	return fmt.Sprintf("%d %s", n, many)
}
