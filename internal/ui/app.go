package ui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zlog "github.com/rs/zerolog/log"

	"github.com/gravitrone/balance-console/internal/api"
	"github.com/gravitrone/balance-console/internal/collection"
	"github.com/gravitrone/balance-console/internal/config"
	"github.com/gravitrone/balance-console/internal/form"
	"github.com/gravitrone/balance-console/internal/ui/components"
)

// --- Messages ---

type errMsg struct{ err error }
type clearToastMsg struct{}
type noticeMsg struct {
	level string
	text  string
}
type configLoadedMsg struct {
	doc []byte
	err error
}
type configSavedMsg struct {
	gen uint64
	err error
}
type configResetMsg struct {
	doc []byte
	err error
}
type modelsLoadedMsg struct {
	models []string
	err    error
}

type appToast struct {
	level string
	text  string
}

// --- App Model ---

// App is the root TUI model. Each tab is one section of the configuration.
type App struct {
	client   *api.Client
	saver    *api.Saver
	config   *config.Config
	form     *form.Form
	pageSize int

	tab    int
	width  int
	height int

	loading      bool
	saving       bool
	err          string
	helpOpen     bool
	quitConfirm  bool
	resetConfirm bool
	toast        *appToast

	fields FieldsModel
}

// NewApp creates the root application model.
func NewApp(client *api.Client, cfg *config.Config) App {
	pageSize := collection.DefaultPageSize
	if cfg != nil && cfg.PageSize > 0 {
		pageSize = cfg.PageSize
	}
	var (
		saver   *api.Saver
		catalog *api.ModelCatalog
	)
	if client != nil {
		saver = api.NewSaver(client)
		catalog = api.NewModelCatalog(client)
	}
	return App{
		client:   client,
		saver:    saver,
		config:   cfg,
		pageSize: pageSize,
		loading:  client != nil,
		fields:   NewFieldsModel(catalog),
	}
}

func (a App) Init() tea.Cmd {
	if a.client == nil {
		return nil
	}
	return a.loadConfigCmd()
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.fields.setSize(msg.Width, msg.Height)
		return a, nil

	case errMsg:
		a.err = msg.err.Error()
		return a, nil
	case clearToastMsg:
		a.toast = nil
		return a, nil
	case noticeMsg:
		toastCmd := a.setToast(msg.level, msg.text)
		return a, toastCmd

	case configLoadedMsg:
		a.loading = false
		if msg.err != nil {
			zlog.Error().Err(msg.err).Msg("load config failed")
			a.err = fmt.Sprintf("load config: %v", msg.err)
			return a, nil
		}
		if err := a.populate(msg.doc); err != nil {
			return a, nil
		}
		zlog.Info().Int("bytes", len(msg.doc)).Msg("config loaded")
		toastCmd := a.setToast("info", "Configuration loaded.")
		return a, toastCmd

	case configSavedMsg:
		a.saving = false
		if msg.err != nil {
			if errors.Is(msg.err, api.ErrSaveInFlight) {
				toastCmd := a.setToast("warning", "A save is already in progress.")
				return a, toastCmd
			}
			zlog.Error().Err(msg.err).Msg("save config failed")
			a.err = fmt.Sprintf("save failed: %v", msg.err)
			return a, nil
		}
		zlog.Info().Msg("config saved")
		if a.form != nil && !a.form.MarkSaved(msg.gen) {
			toastCmd := a.setToast("info", "Configuration saved. Later edits are still unsaved.")
			return a, toastCmd
		}
		toastCmd := a.setToast("success", "Configuration saved.")
		return a, toastCmd

	case configResetMsg:
		a.saving = false
		if msg.err != nil {
			zlog.Error().Err(msg.err).Msg("reset config failed")
			a.err = fmt.Sprintf("reset failed: %v", msg.err)
			return a, nil
		}
		if err := a.populate(msg.doc); err != nil {
			return a, nil
		}
		zlog.Info().Msg("config reset")
		toastCmd := a.setToast("success", "Configuration reset to defaults.")
		return a, toastCmd

	case tea.KeyMsg:
		if a.quitConfirm {
			switch {
			case isKey(msg, "y"):
				return a, tea.Quit
			case isKey(msg, "n"), isBack(msg):
				a.quitConfirm = false
			}
			return a, nil
		}
		if a.resetConfirm {
			switch {
			case isKey(msg, "y"):
				a.resetConfirm = false
				a.saving = true
				cmd := a.resetCmd()
				return a, cmd
			case isKey(msg, "n"), isBack(msg):
				a.resetConfirm = false
			}
			return a, nil
		}
		if a.helpOpen {
			if isBack(msg) || isKey(msg, "?") {
				a.helpOpen = false
			}
			return a, nil
		}

		if isKey(msg, "ctrl+c") {
			return a.requestQuit()
		}
		if isSave(msg) {
			return a.startSave()
		}
		if a.fields.capturing() {
			var cmd tea.Cmd
			a.fields, cmd = a.fields.Update(msg)
			return a, cmd
		}
		a.err = ""

		switch {
		case isKey(msg, "?"):
			a.helpOpen = true
			return a, nil
		case isQuit(msg):
			return a.requestQuit()
		case isKey(msg, "ctrl+r"):
			if a.form != nil && !a.saving {
				a.resetConfirm = true
			}
			return a, nil
		case isKey(msg, "tab"):
			return a.switchTab((a.tab + 1) % len(form.Sections)), nil
		case isKey(msg, "shift+tab"):
			return a.switchTab((a.tab - 1 + len(form.Sections)) % len(form.Sections)), nil
		}
		if idx, ok := tabIndexForKey(msg.String(), len(form.Sections)); ok {
			return a.switchTab(idx), nil
		}
	}

	var cmd tea.Cmd
	a.fields, cmd = a.fields.Update(msg)
	return a, cmd
}

func (a App) View() string {
	banner := centerBlockUniform(RenderBanner(), a.width)
	tabs := centerBlockUniform(a.renderTabs(), a.width)

	content := a.fields.View()
	switch {
	case a.quitConfirm:
		content = components.Indent(components.ConfirmDialog("Quit", "You have unsaved changes. Quit anyway?"), 1)
	case a.resetConfirm:
		content = components.Indent(components.ConfirmDialog("Reset Config", "Replace the whole configuration with server defaults? Unsaved edits are lost."), 1)
	case a.helpOpen:
		content = a.renderHelp()
	}
	content = centerBlockUniform(content, a.width)

	hints := components.StatusBar(a.statusHints(), a.width)

	feedback := ""
	if a.err != "" {
		feedback = "\n\n" + centerBlockUniform(components.ErrorBox("Error", a.err, a.width), a.width)
	} else if a.toast != nil {
		feedback = "\n\n" + centerBlockUniform(a.renderToast(), a.width)
	}

	return fmt.Sprintf("%s\n%s\n\n%s\n\n\n%s%s", banner, tabs, content, hints, feedback)
}

func (a *App) populate(doc []byte) error {
	f, err := form.Populate(doc, a.pageSize)
	if err != nil {
		zlog.Error().Err(err).Msg("populate form failed")
		a.err = fmt.Sprintf("read config: %v", err)
		return err
	}
	a.form = f
	a.fields.SetForm(f)
	return nil
}

func (a App) switchTab(idx int) App {
	if idx != a.tab {
		a.tab = idx
		a.fields.setSection(idx)
	}
	return a
}

func (a App) requestQuit() (App, tea.Cmd) {
	if a.form != nil && a.form.Dirty() {
		a.quitConfirm = true
		return a, nil
	}
	return a, tea.Quit
}

func (a App) startSave() (App, tea.Cmd) {
	if a.form == nil || a.saver == nil {
		return a, nil
	}
	if a.saving {
		toastCmd := a.setToast("warning", "A save is already in progress.")
		return a, toastCmd
	}
	payload, err := a.form.Serialize()
	if err != nil {
		a.err = fmt.Sprintf("build payload: %v", err)
		return a, nil
	}
	a.saving = true
	saver := a.saver
	gen := a.form.Generation()
	return a, func() tea.Msg {
		return configSavedMsg{gen: gen, err: saver.Save(payload)}
	}
}

func (a App) loadConfigCmd() tea.Cmd {
	client := a.client
	return func() tea.Msg {
		doc, err := client.GetConfig()
		return configLoadedMsg{doc: doc, err: err}
	}
}

func (a App) resetCmd() tea.Cmd {
	saver := a.saver
	return func() tea.Msg {
		doc, err := saver.Reset()
		return configResetMsg{doc: doc, err: err}
	}
}

func (a App) renderTabs() string {
	segments := make([]string, 0, len(form.Sections)+1)
	for i, section := range form.Sections {
		label := fmt.Sprintf("%d %s", i+1, section)
		if i == a.tab {
			segments = append(segments, TabActiveStyle.Render(label))
		} else {
			segments = append(segments, TabInactiveStyle.Render(label))
		}
	}
	if a.form != nil && a.form.Dirty() {
		segments = append(segments, TabDirtyStyle.Render(" ● unsaved"))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, segments...)
}

func (a App) statusHints() []string {
	if a.quitConfirm || a.resetConfirm {
		return []string{
			components.Hint("y", "Confirm"),
			components.Hint("n", "Cancel"),
		}
	}
	if a.helpOpen {
		return []string{components.Hint("esc", "Back")}
	}
	hints := a.fields.hints()
	if a.saving {
		hints = append(hints, components.DisabledHint("ctrl+s", "Saving"))
	} else {
		hints = append(hints, components.Hint("ctrl+s", "Save"))
	}
	if a.fields.capturing() {
		return hints
	}
	return append(hints,
		components.Hint("tab", "Section"),
		components.Hint("?", "Help"),
		components.Hint("q", "Quit"),
	)
}

func (a App) renderHelp() string {
	lines := []string{
		MutedStyle.Render("esc to close"),
		"",
		"  " + components.Hint("1-7", "Jump to section"),
		"  " + components.Hint("tab/shift+tab", "Next or previous section"),
		"  " + components.Hint("ctrl+s", "Save every section"),
		"  " + components.Hint("ctrl+r", "Reset to server defaults"),
		"  " + components.Hint("esc", "Leave an editor"),
		"",
		MutedStyle.Render("Secrets stay masked until you open them for editing."),
	}
	return components.Indent(components.TitledBox("Help", strings.Join(lines, "\n"), a.width), 1)
}

func (a *App) setToast(level, text string) tea.Cmd {
	a.toast = &appToast{
		level: level,
		text:  components.SanitizeOneLine(text),
	}
	return tea.Tick(2500*time.Millisecond, func(time.Time) tea.Msg {
		return clearToastMsg{}
	})
}

func (a App) renderToast() string {
	if a.toast == nil {
		return ""
	}
	title := "Info"
	switch a.toast.level {
	case "success":
		title = "Success"
	case "warning":
		title = "Warning"
	case "error":
		return components.ErrorBox("Error", a.toast.text, a.width)
	}
	return components.TitledBox(title, a.toast.text, a.width)
}

func centerBlockUniform(s string, width int) string {
	if width <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	maxWidth := 0
	for _, line := range lines {
		if w := lipgloss.Width(line); w > maxWidth {
			maxWidth = w
		}
	}
	if maxWidth <= 0 || maxWidth >= width {
		return s
	}
	pad := (width - maxWidth) / 2
	if pad <= 0 {
		return s
	}
	prefix := strings.Repeat(" ", pad)
	for i := range lines {
		if lines[i] != "" {
			lines[i] = prefix + lines[i]
		}
	}
	return strings.Join(lines, "\n")
}
