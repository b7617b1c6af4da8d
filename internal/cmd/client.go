package cmd

import (
	"fmt"

	"github.com/gravitrone/balance-console/internal/api"
	"github.com/gravitrone/balance-console/internal/config"
)

// NewClient builds a backend client from the CLI config.
func NewClient(cfg *config.Config) *api.Client {
	if cfg.ServerURL == "" {
		return api.NewDefaultClient(cfg.Token)
	}
	return api.NewClient(cfg.ServerURL, cfg.Token)
}

func loadClient() (*config.Config, *api.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("not logged in: %w", err)
	}
	return cfg, NewClient(cfg), nil
}
