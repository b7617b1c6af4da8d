package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gravitrone/balance-console/internal/api"
	"github.com/gravitrone/balance-console/internal/config"
)

// RunInteractiveLogin prompts for the server and admin token, checks them
// against the backend and persists the CLI config.
func RunInteractiveLogin(in io.Reader, out io.Writer) error {
	reader := bufio.NewReader(in)

	fmt.Fprintf(out, "server url [%s]: ", api.DefaultBaseURL)
	serverURL, _ := reader.ReadString('\n')
	serverURL = strings.TrimSpace(serverURL)
	if serverURL == "" {
		serverURL = api.DefaultBaseURL
	}

	fmt.Fprint(out, "admin token: ")
	token, _ := reader.ReadString('\n')
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("admin token is required")
	}

	client := api.NewClient(serverURL, token)
	if _, err := client.GetConfig(); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	cfg := &config.Config{
		ServerURL: client.BaseURL(),
		Token:     token,
	}
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	fmt.Fprintf(out, "logged in to %s\n", client.BaseURL())
	fmt.Fprintf(out, "config saved to %s\n", config.Path())
	return nil
}

// LoginCmd returns the `balance login` command.
func LoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Authenticate with a Gemini Balance server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return RunInteractiveLogin(cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}
