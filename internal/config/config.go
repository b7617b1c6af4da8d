package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables that override the config file.
const (
	EnvServerURL = "BALANCE_SERVER_URL"
	EnvToken     = "BALANCE_TOKEN"
	EnvPageSize  = "BALANCE_PAGE_SIZE"
	EnvLogLevel  = "BALANCE_LOG_LEVEL"
)

const defaultPageSize = 20

// Config holds CLI configuration stored at ~/.balance/config.
type Config struct {
	ServerURL string `yaml:"server_url"`
	Token     string `yaml:"token"`
	PageSize  int    `yaml:"page_size,omitempty"`
	LogLevel  string `yaml:"log_level,omitempty"`
	LogFile   string `yaml:"log_file,omitempty"`
}

// Dir returns the CLI config directory.
func Dir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".balance")
}

// Path returns the config file path.
func Path() string {
	return filepath.Join(Dir(), "config")
}

// LoadEnv reads a dotenv file into the process environment without replacing
// variables that are already set. A missing file is not an error.
func LoadEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Load reads the config file, applies environment overrides and defaults.
// A missing file is accepted when the token comes from the environment.
func Load() (*Config, error) {
	cfg, err := readFile(Path())
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) || os.Getenv(EnvToken) == "" {
			return nil, err
		}
		cfg = &Config{}
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if cfg.Token == "" {
		return nil, fmt.Errorf("config missing token")
	}
	return cfg, nil
}

func readFile(path string) (*Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("config not found: %w", err)
	}

	perm := info.Mode().Perm()
	if perm != 0600 {
		return nil, fmt.Errorf("config permissions too open: %04o (want 0600)", perm)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvServerURL)); v != "" {
		c.ServerURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvToken)); v != "" {
		c.Token = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		c.LogLevel = v
	}
	if n, err := strconv.Atoi(strings.TrimSpace(os.Getenv(EnvPageSize))); err == nil && n > 0 {
		c.PageSize = n
	}
}

func (c *Config) applyDefaults() {
	if c.PageSize <= 0 {
		c.PageSize = defaultPageSize
	}
	if c.LogFile == "" {
		c.LogFile = filepath.Join(Dir(), "balance.log")
	}
}

// Save writes the config to disk with secure permissions.
func (c *Config) Save() error {
	path := Path()
	dir := filepath.Dir(path)

	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0600)
}
