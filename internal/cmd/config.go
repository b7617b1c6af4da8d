package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"github.com/gravitrone/balance-console/internal/api"
	"github.com/gravitrone/balance-console/internal/form"
)

// ConfigCmd returns the `balance config` command group.
func ConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or reset the server configuration",
	}
	cmd.AddCommand(configShowCmd())
	cmd.AddCommand(configResetCmd())
	return cmd
}

func configShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the configuration with secrets masked",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, client, err := loadClient()
			if err != nil {
				return err
			}
			doc, err := client.GetConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			f, err := form.Populate(doc, cfg.PageSize)
			if err != nil {
				return fmt.Errorf("read config: %w", err)
			}
			out, err := f.Redacted()
			if err != nil {
				return fmt.Errorf("mask config: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), gjson.GetBytes(out, "@pretty").Raw)
			return nil
		},
	}
}

func configResetCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Replace the configuration with server defaults",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, client, err := loadClient()
			if err != nil {
				return err
			}
			if !yes {
				fmt.Fprint(cmd.OutOrStdout(), "reset the whole configuration to defaults? [y/N]: ")
				answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if !strings.EqualFold(strings.TrimSpace(answer), "y") {
					fmt.Fprintln(cmd.OutOrStdout(), "reset cancelled")
					return nil
				}
			}
			doc, err := api.NewSaver(client).Reset()
			if err != nil {
				return fmt.Errorf("reset config: %w", err)
			}
			keys := gjson.GetBytes(doc, "API_KEYS").Array()
			fmt.Fprintf(cmd.OutOrStdout(), "configuration reset (%d keys configured)\n", len(keys))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}
