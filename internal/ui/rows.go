package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/gravitrone/balance-console/internal/api"
	"github.com/gravitrone/balance-console/internal/form"
	"github.com/gravitrone/balance-console/internal/ui/components"
)

// RowsModel edits a free-form list. Rows of sensitive lists stay masked
// unless they are being edited.
type RowsModel struct {
	form    *form.Form
	spec    form.FieldSpec
	catalog *api.ModelCatalog
	list    *components.List

	editing  bool
	editID   string
	original string
	input    textinput.Model

	picking bool
	loading bool
	picker  *components.List

	closed bool
	width  int
}

// NewRowsModel opens the row editor of a list field.
func NewRowsModel(f *form.Form, spec form.FieldSpec, catalog *api.ModelCatalog, width int) RowsModel {
	m := RowsModel{
		form:    f,
		spec:    spec,
		catalog: catalog,
		list:    components.NewList(15),
		picker:  components.NewList(10),
		width:   width,
	}
	m.refresh()
	return m
}

func (m *RowsModel) refresh() {
	rows := m.form.Rows(m.spec.Key)
	items := make([]string, len(rows))
	for i, row := range rows {
		items[i] = row.Value
	}
	m.list.Replace(items)
}

func (m RowsModel) selected() (form.Row, bool) {
	rows := m.form.Rows(m.spec.Key)
	idx := m.list.Selected()
	if idx < 0 || idx >= len(rows) {
		return form.Row{}, false
	}
	return rows[idx], true
}

func (m RowsModel) sensitive() bool {
	return m.spec.Kind == form.KindSensitiveList
}

func (m RowsModel) Update(msg tea.Msg) (RowsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case modelsLoadedMsg:
		if !m.picking {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.picking = false
			return m, errCmd(fmt.Errorf("load models: %w", msg.err))
		}
		if len(msg.models) == 0 {
			m.picking = false
			return m, noticeCmd("warning", "The server returned no models.")
		}
		m.picker.SetItems(msg.models)
		return m, nil
	case tea.KeyMsg:
		switch {
		case m.editing:
			return m.handleEditKeys(msg)
		case m.picking:
			return m.handlePickerKeys(msg)
		}
		return m.handleKeys(msg)
	}
	if m.editing {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m RowsModel) handleKeys(msg tea.KeyMsg) (RowsModel, tea.Cmd) {
	switch {
	case isUp(msg):
		m.list.Up()
	case isDown(msg):
		m.list.Down()
	case isKey(msg, "n"):
		id, err := m.form.AddRow(m.spec.Key, "")
		if err != nil {
			return m, errCmd(err)
		}
		m.refresh()
		m.list.SetCursor(len(m.list.Items) - 1)
		return m.startEdit(id)
	case isEnter(msg):
		if row, ok := m.selected(); ok {
			return m.startEdit(row.ID)
		}
	case isKey(msg, "d", "delete"):
		row, ok := m.selected()
		if !ok {
			return m, nil
		}
		if err := m.form.RemoveRow(m.spec.Key, row.ID); err != nil {
			return m, errCmd(err)
		}
		m.refresh()
		return m, noticeCmd("info", "Entry removed.")
	case isKey(msg, "g") && m.spec.Generate:
		_, _, err := m.form.Generate(m.spec.Key)
		if err != nil {
			return m, errCmd(err)
		}
		m.refresh()
		m.list.SetCursor(len(m.list.Items) - 1)
		return m, noticeCmd("success", "Token generated.")
	case isKey(msg, "m") && m.canPick():
		m.picking = true
		m.loading = true
		return m, loadModelsCmd(m.catalog)
	case isBack(msg):
		m.closed = true
	}
	return m, nil
}

func (m RowsModel) canPick() bool {
	return m.catalog != nil && m.spec.Kind == form.KindList
}

func (m RowsModel) startEdit(id string) (RowsModel, tea.Cmd) {
	value := ""
	if m.sensitive() {
		m.form.Focus(id)
		if field, ok := m.form.Masked(id); ok {
			value = field.Displayed()
		}
	} else if row, ok := m.selected(); ok {
		value = row.Value
	}
	m.input = newFieldInput(m.spec.Label, false)
	m.input.SetValue(value)
	m.original = value
	m.editing = true
	m.editID = id
	focusCmd := m.input.Focus()
	return m, focusCmd
}

func (m RowsModel) handleEditKeys(msg tea.KeyMsg) (RowsModel, tea.Cmd) {
	if isBack(msg) && m.input.Value() != m.original {
		if err := m.form.SetRow(m.spec.Key, m.editID, m.original); err != nil {
			return m, errCmd(err)
		}
	}
	if isEnter(msg) || isBack(msg) {
		if m.sensitive() {
			m.form.Blur(m.editID)
		}
		m.input.Blur()
		m.editing = false
		m.editID = ""
		m.refresh()
		return m, nil
	}
	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if value := m.input.Value(); value != before {
		if err := m.form.SetRow(m.spec.Key, m.editID, value); err != nil {
			return m, errCmd(err)
		}
	}
	return m, cmd
}

func (m RowsModel) handlePickerKeys(msg tea.KeyMsg) (RowsModel, tea.Cmd) {
	switch {
	case isUp(msg):
		m.picker.Up()
	case isDown(msg):
		m.picker.Down()
	case isEnter(msg):
		if m.loading || len(m.picker.Items) == 0 {
			return m, nil
		}
		model := m.picker.Items[m.picker.Selected()]
		m.picking = false
		for _, row := range m.form.Rows(m.spec.Key) {
			if row.Value == model {
				return m, noticeCmd("info", model+" is already listed.")
			}
		}
		if _, err := m.form.AddRow(m.spec.Key, model); err != nil {
			return m, errCmd(err)
		}
		m.refresh()
		m.list.SetCursor(len(m.list.Items) - 1)
		return m, noticeCmd("success", "Added "+model+".")
	case isBack(msg):
		m.picking = false
		m.loading = false
	}
	return m, nil
}

func (m RowsModel) View() string {
	var b strings.Builder
	items := m.list.Visible()
	if len(m.list.Items) == 0 {
		b.WriteString(MutedStyle.Render("No entries yet. Press n to add one."))
	}
	for i, value := range items {
		abs := m.list.RelToAbs(i)
		marker := "  "
		if m.list.IsSelected(abs) {
			marker = SelectedStyle.Render("> ")
		}
		if value == "" {
			value = MutedStyle.Render("(blank, skipped on save)")
		} else {
			value = components.ClampTextWidthEllipsis(value, 60)
		}
		if m.editing && m.list.IsSelected(abs) {
			value = m.input.View()
		}
		b.WriteString(fmt.Sprintf("%s%s %s", marker, MutedStyle.Render(fmt.Sprintf("%2d.", abs+1)), value))
		if i < len(items)-1 {
			b.WriteString("\n")
		}
	}

	title := fmt.Sprintf("%s (%d)", m.spec.Label, len(m.list.Items))
	out := components.TitledBox(title, b.String(), m.width)
	if m.picking {
		out += "\n" + m.renderPicker()
	}
	return components.Indent(out, 1)
}

func (m RowsModel) renderPicker() string {
	if m.loading {
		return components.TitledBox("Models", MutedStyle.Render("Loading models..."), m.width)
	}
	var b strings.Builder
	visible := m.picker.Visible()
	for i, model := range visible {
		abs := m.picker.RelToAbs(i)
		if m.picker.IsSelected(abs) {
			b.WriteString(SelectedStyle.Render("> " + model))
		} else {
			b.WriteString("  " + model)
		}
		if i < len(visible)-1 {
			b.WriteString("\n")
		}
	}
	return components.TitledBox("Models", b.String(), m.width)
}

func (m RowsModel) hints() []string {
	if m.editing {
		return []string{
			components.Hint("enter", "Done"),
			components.Hint("esc", "Revert"),
		}
	}
	if m.picking {
		return []string{
			components.Hint("↑/↓", "Select"),
			components.Hint("enter", "Add"),
			components.Hint("esc", "Close"),
		}
	}
	hints := []string{
		components.Hint("↑/↓", "Select"),
		components.Hint("n", "New"),
		components.Hint("enter", "Edit"),
		components.Hint("d", "Remove"),
	}
	if m.spec.Generate {
		hints = append(hints, components.Hint("g", "Generate"))
	}
	if m.canPick() {
		hints = append(hints, components.Hint("m", "Models"))
	}
	return append(hints, components.Hint("esc", "Back"))
}

func loadModelsCmd(catalog *api.ModelCatalog) tea.Cmd {
	return func() tea.Msg {
		models, err := catalog.Models()
		return modelsLoadedMsg{models: models, err: err}
	}
}
