package api

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// ErrNotObject is returned when the backend sends a configuration document
// that is not a JSON object.
var ErrNotObject = errors.New("configuration is not a JSON object")

// --- Config Methods ---

// GetConfig fetches the raw configuration document.
func (c *Client) GetConfig() ([]byte, error) {
	data, err := c.get("/api/config")
	if err != nil {
		return nil, err
	}
	return checkObject(data)
}

// UpdateConfig replaces the configuration with payload. The success body is
// ignored beyond the status check.
func (c *Client) UpdateConfig(payload []byte) error {
	if _, err := checkObject(payload); err != nil {
		return fmt.Errorf("update config: %w", err)
	}
	_, err := c.put("/api/config", payload)
	return err
}

// ResetConfig restores backend defaults and returns the new document.
func (c *Client) ResetConfig() ([]byte, error) {
	data, err := c.post("/api/config/reset", nil)
	if err != nil {
		return nil, err
	}
	return checkObject(data)
}

// --- Scheduler Methods ---

// StartScheduler starts the backend's scheduled key-check task.
func (c *Client) StartScheduler() error {
	_, err := c.post("/api/scheduler/start", nil)
	return err
}

// StopScheduler stops the backend's scheduled key-check task.
func (c *Client) StopScheduler() error {
	_, err := c.post("/api/scheduler/stop", nil)
	return err
}

func checkObject(data []byte) ([]byte, error) {
	if !gjson.ValidBytes(data) || !gjson.ParseBytes(data).IsObject() {
		return nil, ErrNotObject
	}
	return data, nil
}
