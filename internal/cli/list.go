// Package cli — list.go implements the "acfileserver list" command.
//
// The list command scans the shared directory and prints every file
// with its publication state, either as a text table or as JSON.
package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"acfileserver/internal/config"
	"acfileserver/internal/model"
	"acfileserver/internal/registry"
)

// listFlags holds the flag values for the list command.
type listFlags struct {
	dir       string // --dir: working directory holding files/ and data/
	published bool   // --published: show published files only
}

// NewListCommand creates the "list" cobra command.
func NewListCommand() *cobra.Command {
	flags := &listFlags{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List shared files and their publication state",
		Long: `List the files in the shared directory.

Each file is shown with its size, modification time and whether it is
currently published. Files never seen before default to unpublished.

Examples:
  acfileserver list
  acfileserver list --published
  acfileserver list --json`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(flags)
		},
	}

	cmd.Flags().StringVar(&flags.dir, "dir", ".", "Working directory containing the shared files")
	cmd.Flags().BoolVar(&flags.published, "published", false, "Show only published files")

	return cmd
}

// runList scans the directory and prints the file table.
func runList(flags *listFlags) error {
	cfg, err := config.Load(flags.dir)
	if err != nil {
		return err
	}

	reg, err := registry.New(cfg.FilesDir, cfg.StateDir, zap.NewNop())
	if err != nil {
		return err
	}

	entries := reg.List()
	if flags.published {
		entries = reg.Published()
	}

	if IsJSONOutput() {
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return model.WrapCLIError(model.ExitGeneralError, "failed to marshal file list", err)
		}
		fmt.Println(string(data))
		return nil
	}

	if len(entries) == 0 {
		fmt.Println("No files found.")
		return nil
	}

	fmt.Println(fileTableHeader())
	for _, e := range entries {
		fmt.Println(formatFileRow(e))
	}
	return nil
}

// Column widths for the text table. Name gets the most room because
// file names dominate the output.
const (
	colName     = 40
	colSize     = 10
	colModified = 16
)

// fileTableHeader returns the header line of the text table.
func fileTableHeader() string {
	return fmt.Sprintf("%-*s %-*s %-*s %s",
		colName, "NAME", colSize, "SIZE", colModified, "MODIFIED", "PUBLISHED")
}

// formatFileRow renders one file entry as a table row.
func formatFileRow(e model.FileEntry) string {
	return fmt.Sprintf("%-*s %-*s %-*s %s",
		colName, e.Name,
		colSize, e.HumanSize(),
		colModified, e.ModTime.Format("2006-01-02 15:04"),
		formatPublished(e.Published))
}

// formatPublished renders the publication state for the table.
func formatPublished(published bool) string {
	if published {
		return "yes"
	}
	return "no"
}
