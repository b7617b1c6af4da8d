package ui

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/gravitrone/balance-console/internal/api"
	"github.com/gravitrone/balance-console/internal/form"
	"github.com/gravitrone/balance-console/internal/masking"
	"github.com/gravitrone/balance-console/internal/ui/components"
)

type staticModels struct {
	models []string
	err    error
	calls  int
}

func (s *staticModels) ListUIModels() ([]string, error) {
	s.calls++
	return s.models, s.err
}

func rowsModel(t *testing.T, f *form.Form, field string, catalog *api.ModelCatalog) RowsModel {
	t.Helper()
	return NewRowsModel(f, specFor(t, field), catalog, 100)
}

func modelsOf(t *testing.T, m RowsModel) []string {
	t.Helper()
	rows := m.form.Rows(m.spec.Key)
	out := make([]string, len(rows))
	for i, row := range rows {
		out[i] = row.Value
	}
	return out
}

func TestRowsAddEditRemoveKeepsBudgetsLinked(t *testing.T) {
	f := testForm(t, testDoc)
	m := rowsModel(t, f, "THINKING_MODELS", nil)

	m, _ = pressKeys(m, "n")
	require.True(t, m.editing)
	m = typeText(m, "gemini-3-pro")
	m, _ = pressKeys(m, "enter")
	assert.False(t, m.editing)
	assert.Equal(t, []string{"gemini-2.5-pro", "gemini-2.5-flash", "gemini-3-pro"}, modelsOf(t, m))

	budgets := f.Budgets("THINKING_BUDGET_MAP")
	require.Len(t, budgets, 3)
	assert.Equal(t, "gemini-3-pro", budgets[2].Model)
	assert.Equal(t, form.DefaultBudget, budgets[2].Value)

	m, _ = pressKeys(m, "up", "enter")
	m = typeText(m, "-001")
	m, _ = pressKeys(m, "enter")
	assert.Equal(t, "gemini-2.5-flash-001", f.Budgets("THINKING_BUDGET_MAP")[1].Model)

	m, cmd := pressKeys(m, "up", "d")
	assert.Equal(t, "Entry removed.", noticeOf(t, cmd).text)
	assert.Equal(t, []string{"gemini-2.5-flash-001", "gemini-3-pro"}, modelsOf(t, m))
	assert.Len(t, f.Budgets("THINKING_BUDGET_MAP"), 2)
	assert.True(t, f.Dirty())
}

func TestRowsBlankRowIsSkippedOnSave(t *testing.T) {
	f := testForm(t, `{}`)
	m := rowsModel(t, f, "PROXIES", nil)
	assert.Contains(t, components.SanitizeText(m.View()), "No entries yet")

	m, _ = pressKeys(m, "n", "esc")
	assert.Contains(t, components.SanitizeText(m.View()), "(blank, skipped on save)")

	out, err := f.Serialize()
	require.NoError(t, err)
	assert.Equal(t, 0, len(gjson.GetBytes(out, "PROXIES").Array()))
}

func TestRowsSensitiveListStaysMasked(t *testing.T) {
	f := testForm(t, testDoc)
	m := rowsModel(t, f, "ALLOWED_TOKENS", nil)

	view := components.SanitizeText(m.View())
	assert.NotContains(t, view, "sk-one")
	assert.Contains(t, view, masking.Sentinel)

	m, _ = pressKeys(m, "enter")
	require.True(t, m.editing)
	assert.Equal(t, "sk-one", m.input.Value())

	m = typeText(m, "9")
	m, _ = pressKeys(m, "enter")
	assert.Equal(t, masking.Sentinel, f.Rows("ALLOWED_TOKENS")[0].Value)

	out, err := f.Serialize()
	require.NoError(t, err)
	assert.Equal(t, "sk-one9", gjson.GetBytes(out, "ALLOWED_TOKENS.0").String())
	assert.Equal(t, "sk-two", gjson.GetBytes(out, "ALLOWED_TOKENS.1").String())
}

func TestRowsEscRevertsEdit(t *testing.T) {
	f := testForm(t, testDoc)
	m := rowsModel(t, f, "THINKING_MODELS", nil)

	m, _ = pressKeys(m, "enter")
	require.True(t, m.editing)
	m = typeText(m, "-x")
	assert.Equal(t, "gemini-2.5-pro-x", f.Budgets("THINKING_BUDGET_MAP")[0].Model)

	m, _ = pressKeys(m, "esc")
	assert.False(t, m.editing)
	assert.Equal(t, []string{"gemini-2.5-pro", "gemini-2.5-flash"}, modelsOf(t, m))
	assert.Equal(t, "gemini-2.5-pro", f.Budgets("THINKING_BUDGET_MAP")[0].Model)

	tokens := rowsModel(t, f, "ALLOWED_TOKENS", nil)
	tokens, _ = pressKeys(tokens, "enter")
	tokens = typeText(tokens, "9")
	tokens, _ = pressKeys(tokens, "esc")
	assert.False(t, tokens.editing)
	assert.Equal(t, masking.Sentinel, f.Rows("ALLOWED_TOKENS")[0].Value)

	out, err := f.Serialize()
	require.NoError(t, err)
	assert.Equal(t, "sk-one", gjson.GetBytes(out, "ALLOWED_TOKENS.0").String())
}

func TestRowsGenerateAddsMaskedToken(t *testing.T) {
	f := testForm(t, testDoc)
	m := rowsModel(t, f, "ALLOWED_TOKENS", nil)

	m, cmd := pressKeys(m, "g")
	assert.Equal(t, "success", noticeOf(t, cmd).level)
	rows := f.Rows("ALLOWED_TOKENS")
	require.Len(t, rows, 3)
	assert.Equal(t, masking.Sentinel, rows[2].Value)
	assert.Equal(t, 2, m.list.Selected())

	field, ok := f.Masked(rows[2].ID)
	require.True(t, ok)
	assert.Len(t, field.TrueValue(), 51)
}

func TestRowsModelPickerAddsFromCatalog(t *testing.T) {
	f := testForm(t, testDoc)
	source := &staticModels{models: []string{"gemini-2.5-pro", "imagen-3"}}
	catalog := api.NewModelCatalog(source)
	m := rowsModel(t, f, "IMAGE_MODELS", catalog)

	m, cmd := pressKeys(m, "m")
	require.NotNil(t, cmd)
	assert.True(t, m.picking)
	assert.Contains(t, components.SanitizeText(m.View()), "Loading models")

	m, _ = m.Update(cmd())
	assert.False(t, m.loading)
	m, cmd = pressKeys(m, "down", "enter")
	assert.Equal(t, "Added imagen-3.", noticeOf(t, cmd).text)
	assert.Contains(t, modelsOf(t, m), "imagen-3")

	m, cmd = pressKeys(m, "m")
	m, _ = m.Update(cmd())
	_, cmd = pressKeys(m, "down", "enter")
	assert.Equal(t, "imagen-3 is already listed.", noticeOf(t, cmd).text)
	assert.Equal(t, 1, source.calls)
}

func TestRowsModelPickerReportsFailures(t *testing.T) {
	f := testForm(t, testDoc)

	failing := api.NewModelCatalog(&staticModels{err: errors.New("connection refused")})
	m := rowsModel(t, f, "SEARCH_MODELS", failing)
	m, cmd := pressKeys(m, "m")
	m, cmd = m.Update(cmd())
	assert.False(t, m.picking)
	require.NotNil(t, cmd)
	msg, ok := cmd().(errMsg)
	require.True(t, ok)
	assert.Contains(t, msg.err.Error(), "connection refused")

	empty := api.NewModelCatalog(&staticModels{})
	m = rowsModel(t, f, "SEARCH_MODELS", empty)
	m, cmd = pressKeys(m, "m")
	m, cmd = m.Update(cmd())
	assert.False(t, m.picking)
	assert.Equal(t, "warning", noticeOf(t, cmd).level)
}

func TestRowsPickerOnlyForPlainListsWithCatalog(t *testing.T) {
	f := testForm(t, testDoc)

	m := rowsModel(t, f, "THINKING_MODELS", nil)
	m, cmd := pressKeys(m, "m")
	assert.Nil(t, cmd)
	assert.False(t, m.picking)

	catalog := api.NewModelCatalog(&staticModels{models: []string{"x"}})
	m = rowsModel(t, f, "ALLOWED_TOKENS", catalog)
	_, cmd = pressKeys(m, "m")
	assert.Nil(t, cmd)
}
