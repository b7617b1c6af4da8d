package ui

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/gravitrone/balance-console/internal/api"
	"github.com/gravitrone/balance-console/internal/config"
	"github.com/gravitrone/balance-console/internal/form"
)

func geminiKey(suffix string) string {
	return "AIzaSy" + suffix + strings.Repeat("x", 33-len(suffix))
}

var testDoc = `{
	"API_KEYS": ["` + geminiKey("k1") + `", "` + geminiKey("k2") + `", "` + geminiKey("k3") + `", "` + geminiKey("k4") + `", "` + geminiKey("k5") + `"],
	"AUTH_TOKEN": "sk-admin",
	"PAID_KEY": "paid-secret",
	"ALLOWED_TOKENS": ["sk-one", "sk-two"],
	"TIME_OUT": 120,
	"THINKING_MODELS": ["gemini-2.5-pro", "gemini-2.5-flash"],
	"THINKING_BUDGET_MAP": {"gemini-2.5-pro": 50000},
	"CUSTOM_HEADERS": {"X-Team": "core"},
	"UPLOAD_PROVIDER": "picgo",
	"SAFETY_SETTINGS": [{"category": "HARM_CATEGORY_HARASSMENT", "threshold": "OFF"}]
}`

const resetDoc = `{"API_KEYS": [], "TIME_OUT": 300}`

// testBackend is a minimal configuration server recording every call.
type testBackend struct {
	mu    sync.Mutex
	doc   string
	puts  []string
	calls []string
}

func newTestBackend(t *testing.T, doc string) (*testBackend, *api.Client) {
	t.Helper()
	b := &testBackend{doc: doc}
	srv := httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(srv.Close)
	return b, api.NewClient(srv.URL, "sk-test")
}

func (b *testBackend) serve(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, r.Method+" "+r.URL.Path)
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/api/config":
		_, _ = io.WriteString(w, b.doc)
	case r.Method == http.MethodPut && r.URL.Path == "/api/config":
		body, _ := io.ReadAll(r.Body)
		b.puts = append(b.puts, string(body))
		b.doc = string(body)
		_, _ = w.Write(body)
	case r.Method == http.MethodPost && r.URL.Path == "/api/config/reset":
		b.doc = resetDoc
		_, _ = io.WriteString(w, b.doc)
	case r.Method == http.MethodPost && strings.HasPrefix(r.URL.Path, "/api/scheduler/"):
		_, _ = io.WriteString(w, `{}`)
	case r.Method == http.MethodGet && r.URL.Path == "/api/config/ui/models":
		_, _ = io.WriteString(w, `{"models": [{"name": "models/gemini-2.5-pro"}, {"name": "models/gemini-2.5-flash"}]}`)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (b *testBackend) Calls() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.calls...)
}

func (b *testBackend) LastPut(t *testing.T) gjson.Result {
	t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()
	require.NotEmpty(t, b.puts)
	return gjson.Parse(b.puts[len(b.puts)-1])
}

// loadedApp returns an App that has finished its initial config load.
func loadedApp(t *testing.T, doc string) (*testBackend, App) {
	t.Helper()
	b, client := newTestBackend(t, doc)
	app := NewApp(client, &config.Config{PageSize: 2})
	cmd := app.Init()
	require.NotNil(t, cmd)
	model, _ := app.Update(cmd())
	app = model.(App)
	require.NotNil(t, app.form)
	return b, app
}

func testForm(t *testing.T, doc string) *form.Form {
	t.Helper()
	f, err := form.Populate([]byte(doc), 2)
	require.NoError(t, err)
	return f
}

func specFor(t *testing.T, key string) form.FieldSpec {
	t.Helper()
	spec, ok := form.Lookup(key)
	require.True(t, ok, key)
	return spec
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+r":
		return tea.KeyMsg{Type: tea.KeyCtrlR}
	case "ctrl+d":
		return tea.KeyMsg{Type: tea.KeyCtrlD}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press feeds keys to the app and returns the command of the last one.
func press(a App, keys ...string) (App, tea.Cmd) {
	var cmd tea.Cmd
	for _, k := range keys {
		var model tea.Model
		model, cmd = a.Update(key(k))
		a = model.(App)
	}
	return a, cmd
}

type updater[M any] interface {
	Update(tea.Msg) (M, tea.Cmd)
}

// pressKeys feeds keys to a sub model and returns the command of the last one.
func pressKeys[M updater[M]](m M, keys ...string) (M, tea.Cmd) {
	var cmd tea.Cmd
	for _, k := range keys {
		m, cmd = m.Update(key(k))
	}
	return m, cmd
}

// typeText sends text one rune at a time.
func typeText[M updater[M]](m M, text string) M {
	for _, r := range text {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func noticeOf(t *testing.T, cmd tea.Cmd) noticeMsg {
	t.Helper()
	require.NotNil(t, cmd)
	msg, ok := cmd().(noticeMsg)
	require.True(t, ok)
	return msg
}
