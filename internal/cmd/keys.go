package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/gravitrone/balance-console/internal/api"
	"github.com/gravitrone/balance-console/internal/collection"
	"github.com/gravitrone/balance-console/internal/form"
)

// KeysCmd returns the `balance keys` command group.
func KeysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage the server's API key collections",
	}
	cmd.PersistentFlags().String("field", "API_KEYS", "key collection to edit (API_KEYS or VERTEX_API_KEYS)")
	cmd.AddCommand(keysListCmd())
	cmd.AddCommand(keysBulkCmd("add", "Add every key found in a file", (*form.Form).AddKeys))
	cmd.AddCommand(keysBulkCmd("delete", "Delete every key found in a file", (*form.Form).DeleteKeys))
	return cmd
}

func keyField(cmd *cobra.Command) (string, error) {
	field, _ := cmd.Flags().GetString("field")
	spec, ok := form.Lookup(field)
	if !ok || spec.Kind != form.KindKeyCollection {
		return "", fmt.Errorf("%s is not a key collection", field)
	}
	return field, nil
}

func loadForm(pageSize int, client *api.Client) (*form.Form, error) {
	doc, err := client.GetConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	f, err := form.Populate(doc, pageSize)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return f, nil
}

func keysListCmd() *cobra.Command {
	var (
		search string
		page   int
		full   bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List one page of keys",
		RunE: func(cmd *cobra.Command, _ []string) error {
			field, err := keyField(cmd)
			if err != nil {
				return err
			}
			cfg, client, err := loadClient()
			if err != nil {
				return err
			}
			f, err := loadForm(cfg.PageSize, client)
			if err != nil {
				return err
			}

			editor := f.Editor(field)
			editor.Search(search)
			if !editor.GoToPage(page) {
				return fmt.Errorf("page %d out of range (1-%d)", page, editor.TotalPages())
			}
			w := editor.Render()

			out := cmd.OutOrStdout()
			if w.Empty != collection.EmptyNone {
				fmt.Fprintln(out, w.Empty.Message())
				return nil
			}
			for i, key := range w.Items {
				if !full {
					key = collection.Redact(key)
				}
				fmt.Fprintf(out, "  %4d  %s\n", w.Offset+i+1, key)
			}
			fmt.Fprintf(out, "page %d of %d (%d of %d keys)\n", w.Page, w.TotalPages, len(editor.Filtered()), editor.Len())
			return nil
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "case-insensitive substring filter")
	cmd.Flags().IntVarP(&page, "page", "p", 1, "page to print")
	cmd.Flags().BoolVar(&full, "full", false, "print keys unredacted")
	return cmd
}

type bulkEdit func(f *form.Form, key, text string) (collection.Notice, error)

func keysBulkCmd(use, short string, edit bulkEdit) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, _ []string) error {
			field, err := keyField(cmd)
			if err != nil {
				return err
			}
			if file == "" {
				return fmt.Errorf("--file is required (use - for stdin)")
			}
			text, err := readInput(cmd, file)
			if err != nil {
				return err
			}

			cfg, client, err := loadClient()
			if err != nil {
				return err
			}
			f, err := loadForm(cfg.PageSize, client)
			if err != nil {
				return err
			}

			notice, err := edit(f, field, text)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), notice.Text)
			if notice.Count == 0 {
				return nil
			}

			payload, err := f.Serialize()
			if err != nil {
				return fmt.Errorf("build payload: %w", err)
			}
			if err := api.NewSaver(client).Save(payload); err != nil {
				return fmt.Errorf("save config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved (%d keys configured)\n", f.Editor(field).Len())
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "file to read keys from, - for stdin")
	return cmd
}

func readInput(cmd *cobra.Command, file string) (string, error) {
	if file == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", file, err)
	}
	return string(data), nil
}
