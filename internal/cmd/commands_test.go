package cmd

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/gravitrone/balance-console/internal/config"
	"github.com/gravitrone/balance-console/internal/masking"
)

const adminToken = "sk-admin"

func geminiKey(suffix string) string {
	return "AIzaSy" + suffix + strings.Repeat("x", 33-len(suffix))
}

var serverDoc = `{
	"API_KEYS": ["` + geminiKey("k1") + `", "` + geminiKey("k2") + `", "` + geminiKey("k3") + `", "` + geminiKey("k4") + `", "` + geminiKey("k5") + `"],
	"AUTH_TOKEN": "` + adminToken + `",
	"ALLOWED_TOKENS": ["sk-user"],
	"SAFETY_SETTINGS": [{"category": "HARM_CATEGORY_HARASSMENT", "threshold": "OFF"}]
}`

type fakeServer struct {
	mu    sync.Mutex
	doc   string
	calls []string
	puts  []string
}

func startServer(t *testing.T, doc string) (*fakeServer, *httptest.Server) {
	t.Helper()
	s := &fakeServer{doc: doc}
	srv := httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(srv.Close)
	return s, srv
}

func (s *fakeServer) serve(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.Header.Get("Authorization") != "Bearer "+adminToken {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"detail": "Unauthorized"}`)
		return
	}
	s.calls = append(s.calls, r.Method+" "+r.URL.Path)
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/api/config":
		_, _ = io.WriteString(w, s.doc)
	case r.Method == http.MethodPut && r.URL.Path == "/api/config":
		body, _ := io.ReadAll(r.Body)
		s.puts = append(s.puts, string(body))
		s.doc = string(body)
		_, _ = w.Write(body)
	case r.Method == http.MethodPost && r.URL.Path == "/api/config/reset":
		s.doc = `{"API_KEYS": []}`
		_, _ = io.WriteString(w, s.doc)
	case r.Method == http.MethodPost && strings.HasPrefix(r.URL.Path, "/api/scheduler/"):
		_, _ = io.WriteString(w, `{}`)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (s *fakeServer) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func (s *fakeServer) Puts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.puts...)
}

func loggedIn(t *testing.T, serverURL string) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv(config.EnvToken, "")
	t.Setenv(config.EnvServerURL, "")
	t.Setenv(config.EnvPageSize, "")
	require.NoError(t, (&config.Config{ServerURL: serverURL, Token: adminToken, PageSize: 2}).Save())
}

func execute(t *testing.T, cmd *cobra.Command, stdin string, args ...string) (string, error) {
	t.Helper()
	var out strings.Builder
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err := cmd.Execute()
	return out.String(), err
}

func TestLoginSavesConfigAfterCheckingToken(t *testing.T) {
	_, srv := startServer(t, serverDoc)
	t.Setenv("HOME", t.TempDir())
	t.Setenv(config.EnvToken, "")
	t.Setenv(config.EnvServerURL, "")

	out, err := execute(t, LoginCmd(), srv.URL+"/\n"+adminToken+"\n")
	require.NoError(t, err)
	assert.Contains(t, out, "logged in to "+srv.URL)

	loaded, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, srv.URL, loaded.ServerURL)
	assert.Equal(t, adminToken, loaded.Token)
	assert.Equal(t, 20, loaded.PageSize)
}

func TestLoginRejectsWrongToken(t *testing.T) {
	_, srv := startServer(t, serverDoc)
	t.Setenv("HOME", t.TempDir())

	_, err := execute(t, LoginCmd(), srv.URL+"\nsk-wrong\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "login failed")
	_, statErr := os.Stat(config.Path())
	assert.True(t, os.IsNotExist(statErr))
}

func TestKeysListPrintsOneRedactedPage(t *testing.T) {
	_, srv := startServer(t, serverDoc)
	loggedIn(t, srv.URL)

	out, err := execute(t, KeysCmd(), "", "list", "--page", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "page 2 of 3 (5 of 5 keys)")
	assert.Contains(t, out, "   3  AIzaSy...xxxxxx")
	assert.NotContains(t, out, geminiKey("k3"))

	out, err = execute(t, KeysCmd(), "", "list", "--search", "K4", "--full")
	require.NoError(t, err)
	assert.Contains(t, out, geminiKey("k4"))
	assert.Contains(t, out, "page 1 of 1 (1 of 5 keys)")

	out, err = execute(t, KeysCmd(), "", "list", "--search", "nothing")
	require.NoError(t, err)
	assert.Contains(t, out, "No keys match the current search.")

	_, err = execute(t, KeysCmd(), "", "list", "--page", "9")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range (1-3)")
}

func TestKeysAddSavesWithSchedulerPaused(t *testing.T) {
	s, srv := startServer(t, serverDoc)
	loggedIn(t, srv.URL)

	file := filepath.Join(t.TempDir(), "keys.txt")
	require.NoError(t, os.WriteFile(file, []byte(geminiKey("n1")+"\n"+geminiKey("k1")+"\nnoise"), 0o600))

	out, err := execute(t, KeysCmd(), "", "add", "--file", file)
	require.NoError(t, err)
	assert.Contains(t, out, "1 unique key added")
	assert.Contains(t, out, "saved (6 keys configured)")

	assert.Equal(t, []string{
		"GET /api/config",
		"POST /api/scheduler/stop",
		"PUT /api/config",
		"POST /api/scheduler/start",
	}, s.Calls())

	puts := s.Puts()
	require.Len(t, puts, 1)
	payload := gjson.Parse(puts[0])
	assert.Equal(t, geminiKey("n1"), payload.Get("API_KEYS.5").String())
	assert.Equal(t, adminToken, payload.Get("AUTH_TOKEN").String())
	assert.Equal(t, "sk-user", payload.Get("ALLOWED_TOKENS.0").String())
	assert.Equal(t, "OFF", payload.Get("SAFETY_SETTINGS.0.threshold").String())
	assert.NotContains(t, puts[0], masking.Sentinel)
}

func TestKeysDeleteFromStdin(t *testing.T) {
	s, srv := startServer(t, serverDoc)
	loggedIn(t, srv.URL)

	out, err := execute(t, KeysCmd(), geminiKey("k2")+" "+geminiKey("k4"), "delete", "--file", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "2 keys deleted")

	puts := s.Puts()
	require.Len(t, puts, 1)
	assert.Len(t, gjson.Get(puts[0], "API_KEYS").Array(), 3)
}

func TestKeysBulkWithoutMatchesDoesNotSave(t *testing.T) {
	s, srv := startServer(t, serverDoc)
	loggedIn(t, srv.URL)

	out, err := execute(t, KeysCmd(), geminiKey("k1"), "add", "--file", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "All recognized keys already exist.")
	assert.Empty(t, s.Puts())

	_, err = execute(t, KeysCmd(), "", "add")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--file is required")
}

func TestConfigShowMasksSecrets(t *testing.T) {
	_, srv := startServer(t, serverDoc)
	loggedIn(t, srv.URL)

	out, err := execute(t, ConfigCmd(), "", "show")
	require.NoError(t, err)
	assert.NotContains(t, out, adminToken)
	assert.NotContains(t, out, "sk-user")
	assert.NotContains(t, out, geminiKey("k1"))
	assert.Contains(t, out, masking.Sentinel)
	assert.Contains(t, out, "SAFETY_SETTINGS")
	assert.Equal(t, masking.Sentinel, gjson.Get(out, "AUTH_TOKEN").String())
}

func TestConfigResetConfirms(t *testing.T) {
	s, srv := startServer(t, serverDoc)
	loggedIn(t, srv.URL)

	out, err := execute(t, ConfigCmd(), "n\n", "reset")
	require.NoError(t, err)
	assert.Contains(t, out, "reset cancelled")
	assert.Empty(t, s.Calls())

	out, err = execute(t, ConfigCmd(), "", "reset", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "configuration reset (0 keys configured)")
	assert.Equal(t, []string{
		"POST /api/scheduler/stop",
		"POST /api/config/reset",
		"POST /api/scheduler/start",
	}, s.Calls())
}
