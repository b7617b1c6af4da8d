package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := NewClient(srv.URL, "sk-testtoken")
	return srv, client
}

func jsonBody(data any) []byte {
	b, _ := json.Marshal(data)
	return b
}

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func TestGetConfigSendsTokenHeaderAndCookie(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/config", r.URL.Path)
		assert.Equal(t, "Bearer sk-testtoken", r.Header.Get("Authorization"))
		cookie, err := r.Cookie("auth_token")
		require.NoError(t, err)
		assert.Equal(t, "sk-testtoken", cookie.Value)
		w.Write(jsonBody(map[string]any{"API_KEYS": []string{"a"}, "TIME_OUT": 300}))
	})

	doc, err := client.GetConfig()
	require.NoError(t, err)
	assert.JSONEq(t, `{"API_KEYS":["a"],"TIME_OUT":300}`, string(doc))
}

func TestGetConfigRejectsNonObject(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`["not","an","object"]`))
	})

	_, err := client.GetConfig()
	assert.ErrorIs(t, err, ErrNotObject)
}

func TestUpdateConfigSendsPayloadVerbatim(t *testing.T) {
	payload := []byte(`{"AUTH_TOKEN":"sk-real","API_KEYS":["k1","k2"]}`)
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/config", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, string(payload), string(body))
		w.Write([]byte(`{}`))
	})

	require.NoError(t, client.UpdateConfig(payload))
}

func TestUpdateConfigRejectsInvalidPayload(t *testing.T) {
	called := false
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	err := client.UpdateConfig([]byte("nope"))
	assert.ErrorIs(t, err, ErrNotObject)
	assert.False(t, called)
}

func TestUpdateConfigSurfacesDetail(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write(jsonBody(map[string]any{"detail": "MAX_FAILURES must be positive"}))
	})

	err := client.UpdateConfig([]byte(`{}`))
	require.Error(t, err)
	assert.Equal(t, "MAX_FAILURES must be positive", err.Error())

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadRequest, statusErr.Code)
}

func TestValidationDetailListIsJoined(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write(jsonBody(map[string]any{"detail": []map[string]any{
			{"loc": []string{"body", "TIME_OUT"}, "msg": "value is not a valid integer"},
			{"loc": []string{"body", "MAX_RETRIES"}, "msg": "field required"},
		}}))
	})

	err := client.UpdateConfig([]byte(`{}`))
	require.Error(t, err)
	assert.Equal(t, "value is not a valid integer; field required", err.Error())
}

func TestHTTPErrorWithoutEnvelope(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream down\n"))
	})

	_, err := client.GetConfig()
	require.Error(t, err)
	assert.Equal(t, "HTTP 502: upstream down", err.Error())
}

func TestNestedErrorEnvelope(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write(jsonBody(map[string]any{
			"error": map[string]any{"code": "UNAUTHORIZED", "message": "bad token"},
		}))
	})

	_, err := client.GetConfig()
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED: bad token", err.Error())
}

func TestResetConfig(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/config/reset", r.URL.Path)
		w.Write(jsonBody(map[string]any{"MAX_FAILURES": 3}))
	})

	doc, err := client.ResetConfig()
	require.NoError(t, err)
	assert.JSONEq(t, `{"MAX_FAILURES":3}`, string(doc))
}

func TestSchedulerEndpoints(t *testing.T) {
	var paths []string
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		paths = append(paths, r.URL.Path)
		w.Write([]byte(`{"message":"ok"}`))
	})

	require.NoError(t, client.StopScheduler())
	require.NoError(t, client.StartScheduler())
	assert.Equal(t, []string{"/api/scheduler/stop", "/api/scheduler/start"}, paths)
}

func TestNoTokenSendsNoAuth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		_, err := r.Cookie("auth_token")
		assert.ErrorIs(t, err, http.ErrNoCookie)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL+"/", "")
	_, err := client.GetConfig()
	require.NoError(t, err)
	assert.Equal(t, srv.URL, client.BaseURL())
}

func TestNewClientCustomTimeout(t *testing.T) {
	client := NewClient("http://example.com", "sk-testtoken", 5*time.Second)
	assert.Equal(t, 5*time.Second, client.httpClient.Timeout)
}
