// Package cli — publish.go implements the "acfileserver publish" and
// "acfileserver unpublish" commands.
//
// Both commands toggle the publication state of a single file in the
// shared directory. They are the scriptable counterpart of the admin
// panel checkboxes.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"acfileserver/internal/config"
	"acfileserver/internal/model"
	"acfileserver/internal/registry"
)

// publishFlags holds the flag values shared by publish and unpublish.
type publishFlags struct {
	dir string // --dir: working directory holding files/ and data/
}

// NewPublishCommand creates the "publish" cobra command.
func NewPublishCommand() *cobra.Command {
	flags := &publishFlags{}

	cmd := &cobra.Command{
		Use:   "publish <filename>",
		Short: "Publish a file so visitors can see and download it",
		Long: `Mark a file in the shared directory as published.

Published files appear on the public index page and can be downloaded.
The file must already exist in the shared directory.

Examples:
  acfileserver publish report.pdf`,

		// Args validates that exactly one positional argument (file name)
		// is provided.
		Args: cobra.ExactArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			return runSetPublished(args[0], true, flags)
		},
	}

	cmd.Flags().StringVar(&flags.dir, "dir", ".", "Working directory containing the shared files")

	return cmd
}

// NewUnpublishCommand creates the "unpublish" cobra command.
func NewUnpublishCommand() *cobra.Command {
	flags := &publishFlags{}

	cmd := &cobra.Command{
		Use:   "unpublish <filename>",
		Short: "Unpublish a file so visitors can no longer download it",
		Long: `Mark a file in the shared directory as unpublished.

The file stays in the directory but disappears from the public index,
and download attempts are refused.

Examples:
  acfileserver unpublish report.pdf`,

		Args: cobra.ExactArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			return runSetPublished(args[0], false, flags)
		},
	}

	cmd.Flags().StringVar(&flags.dir, "dir", ".", "Working directory containing the shared files")

	return cmd
}

// runSetPublished flips the publication state of one file and prints
// the result.
func runSetPublished(name string, published bool, flags *publishFlags) error {
	cfg, err := config.Load(flags.dir)
	if err != nil {
		return err
	}

	reg, err := registry.New(cfg.FilesDir, cfg.StateDir, zap.NewNop())
	if err != nil {
		return err
	}

	if err := reg.SetPublished(name, published); err != nil {
		if errors.Is(err, registry.ErrUnknownFile) {
			return model.WrapCLIError(model.ExitFileNotFound,
				fmt.Sprintf("no such file in %s: %s", cfg.FilesDir, name), err)
		}
		return err
	}

	if IsJSONOutput() {
		out := map[string]interface{}{
			"name":      name,
			"published": published,
		}
		data, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(data))
		return nil
	}

	if published {
		fmt.Printf("Published %s\n", name)
	} else {
		fmt.Printf("Unpublished %s\n", name)
	}
	return nil
}
