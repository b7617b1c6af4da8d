package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	zlog "github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/gravitrone/balance-console/internal/cmd"
	"github.com/gravitrone/balance-console/internal/config"
	"github.com/gravitrone/balance-console/internal/logging"
	"github.com/gravitrone/balance-console/internal/ui"
)

func main() {
	var logCloser io.Closer
	root := &cobra.Command{
		Use:   "balance",
		Short: "Balance - Gemini Balance configuration console",
		Long:  "Balance CLI: edit keys, models and server settings of a Gemini Balance proxy.",
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if err := config.LoadEnv(".env"); err != nil {
				return err
			}
			closer, err := setupLogging()
			if err != nil {
				return err
			}
			logCloser = closer
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if logCloser != nil {
				_ = logCloser.Close()
			}
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			return runTUI()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(cmd.LoginCmd())
	root.AddCommand(cmd.ConfigCmd())
	root.AddCommand(cmd.KeysCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	// Force truecolor so hex colors render correctly
	// Must be set before any lipgloss style initialization
	os.Setenv("COLORTERM", "truecolor")
}

// setupLogging sends logs to the configured file. Without a config, logs are
// discarded.
func setupLogging() (io.Closer, error) {
	cfg, err := config.Load()
	if err != nil {
		return logging.Setup("", "")
	}
	return logging.Setup(cfg.LogLevel, cfg.LogFile)
}

func runTUI() error {
	cfg, err := config.Load()
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		if !isInteractiveTerminal(os.Stdin) || !isInteractiveTerminal(os.Stdout) {
			fmt.Println("not logged in. run 'balance login' first.")
			return err
		}
		if err := cmd.RunInteractiveLogin(os.Stdin, os.Stdout); err != nil {
			return err
		}
		if cfg, err = config.Load(); err != nil {
			return err
		}
	}

	client := cmd.NewClient(cfg)
	zlog.Info().Str("server", client.BaseURL()).Msg("starting console")
	app := ui.NewApp(client, cfg)

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}

func isInteractiveTerminal(file *os.File) bool {
	if file == nil {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
