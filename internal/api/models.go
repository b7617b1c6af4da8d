package api

import (
	"errors"
	"strings"
	"sync"

	"github.com/tidwall/gjson"
)

// modelPrefix is stripped from every model name the backend reports.
const modelPrefix = "models/"

// ErrMalformedModels is returned when the model list has an unexpected shape.
var ErrMalformedModels = errors.New("malformed model list response")

// ListUIModels fetches model names for the picker, prefix stripped, in
// response order.
func (c *Client) ListUIModels() ([]string, error) {
	data, err := c.get("/api/config/ui/models")
	if err != nil {
		return nil, err
	}
	return parseModels(data)
}

func parseModels(data []byte) ([]string, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrMalformedModels
	}
	list := gjson.GetBytes(data, "models")
	if !list.IsArray() {
		return nil, ErrMalformedModels
	}
	var names []string
	for _, item := range list.Array() {
		name := item.Get("name")
		if name.Type != gjson.String {
			continue
		}
		trimmed := strings.TrimPrefix(strings.TrimSpace(name.String()), modelPrefix)
		if trimmed != "" {
			names = append(names, trimmed)
		}
	}
	return names, nil
}

// ModelLister is the part of the client a ModelCatalog needs.
type ModelLister interface {
	ListUIModels() ([]string, error)
}

// ModelCatalog caches the model list for the session. A malformed response is
// cached as an empty list so the fetch is not retried; transport errors are
// not cached.
type ModelCatalog struct {
	mu     sync.Mutex
	source ModelLister
	models []string
	loaded bool
}

// NewModelCatalog wraps source with a session cache.
func NewModelCatalog(source ModelLister) *ModelCatalog {
	return &ModelCatalog{source: source}
}

// Models returns the cached list, fetching it on first use.
func (m *ModelCatalog) Models() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.loaded {
		return append([]string(nil), m.models...), nil
	}

	models, err := m.source.ListUIModels()
	if err != nil {
		if errors.Is(err, ErrMalformedModels) {
			m.loaded = true
			m.models = nil
		}
		return nil, err
	}
	m.models = models
	m.loaded = true
	return append([]string(nil), models...), nil
}

// Loaded reports whether a fetch result (possibly empty) is cached.
func (m *ModelCatalog) Loaded() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loaded
}
