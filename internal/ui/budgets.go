package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gravitrone/balance-console/internal/form"
	"github.com/gravitrone/balance-console/internal/ui/components"
)

// BudgetsModel edits the thinking budget of every listed thinking model.
// Rows are added and removed from the model list, not here.
type BudgetsModel struct {
	form *form.Form
	spec form.FieldSpec
	list *components.List

	editing bool
	editID  string
	input   textinput.Model

	closed bool
	width  int
}

// NewBudgetsModel opens the budget editor of spec.
func NewBudgetsModel(f *form.Form, spec form.FieldSpec, width int) BudgetsModel {
	m := BudgetsModel{form: f, spec: spec, list: components.NewList(15), width: width}
	budgets := f.Budgets(spec.Key)
	items := make([]string, len(budgets))
	for i, b := range budgets {
		items[i] = b.Model
	}
	m.list.SetItems(items)
	return m
}

func (m BudgetsModel) selected() (form.Budget, bool) {
	budgets := m.form.Budgets(m.spec.Key)
	idx := m.list.Selected()
	if idx < 0 || idx >= len(budgets) {
		return form.Budget{}, false
	}
	return budgets[idx], true
}

func (m BudgetsModel) Update(msg tea.Msg) (BudgetsModel, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		if !m.editing {
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	if m.editing {
		switch {
		case isEnter(key):
			return m.commit()
		case isBack(key):
			m.input.Blur()
			m.editing = false
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(key)
		return m, cmd
	}

	switch {
	case isUp(key):
		m.list.Up()
	case isDown(key):
		m.list.Down()
	case isEnter(key):
		b, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.input = newFieldInput("budget", false)
		m.input.CharLimit = 8
		m.input.SetValue(strconv.Itoa(b.Value))
		m.editing = true
		m.editID = b.ID
		focusCmd := m.input.Focus()
		return m, focusCmd
	case isBack(key):
		m.closed = true
	}
	return m, nil
}

func (m BudgetsModel) commit() (BudgetsModel, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	m.input.Blur()
	m.editing = false

	value, err := m.form.SetBudget(m.spec.Key, m.editID, text)
	if err != nil {
		return m, errCmd(err)
	}
	n, ok := form.LeadingInt(text)
	switch {
	case !ok:
		return m, noticeCmd("warning", "Not a number; budget set to 0.")
	case n != value:
		return m, noticeCmd("info", fmt.Sprintf("Budget clamped to %d.", value))
	}
	return m, nil
}

func (m BudgetsModel) View() string {
	budgets := m.form.Budgets(m.spec.Key)
	title := fmt.Sprintf("%s (%d)", m.spec.Label, len(budgets))
	if len(budgets) == 0 {
		body := MutedStyle.Render("No thinking models listed. Every model added there gets a budget row here.")
		return components.Indent(components.TitledBox(title, body, m.width), 1)
	}

	tableWidth := components.BoxContentWidth(m.width)
	if tableWidth <= 0 {
		tableWidth = 60
	}
	cols := []components.TableColumn{
		{Header: "Model", Width: 32},
		{Header: "Budget", Width: 10, Align: lipgloss.Right},
	}
	rows := make([][]string, len(budgets))
	for i, b := range budgets {
		value := strconv.Itoa(b.Value)
		if b.Value == form.BudgetMin {
			value += " (dynamic)"
		}
		if m.editing && b.ID == m.editID {
			value = m.input.Value() + "_"
		}
		model := b.Model
		if strings.TrimSpace(model) == "" {
			model = "(blank model)"
		}
		rows[i] = []string{model, value}
	}
	body := components.TableGridWithActiveRow(cols, rows, tableWidth, m.list.Selected())
	body += "\n\n" + MutedStyle.Render(fmt.Sprintf("Range %d to %d; %d lets the model decide.", form.BudgetMin, form.BudgetMax, form.BudgetMin))
	return components.Indent(components.TitledBox(title, body, m.width), 1)
}

func (m BudgetsModel) hints() []string {
	if m.editing {
		return []string{
			components.Hint("enter", "Save"),
			components.Hint("esc", "Cancel"),
		}
	}
	return []string{
		components.Hint("↑/↓", "Select"),
		components.Hint("enter", "Edit"),
		components.Hint("esc", "Back"),
	}
}
