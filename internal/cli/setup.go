// Package cli — setup.go implements the "acfileserver setup" command.
//
// The setup command provisions the working directory: the shared files
// directory, the state directory, and a .env copied from .env.example.
// Provisioning is transactional: on failure, everything the run created
// is removed again, while pre-existing artifacts are left untouched.
package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"acfileserver/internal/config"
	"acfileserver/internal/setup"
)

// setupFlags holds the flag values for the setup command.
type setupFlags struct {
	dir string // --dir: working directory to provision
}

// NewSetupCommand creates the "setup" cobra command.
func NewSetupCommand() *cobra.Command {
	flags := &setupFlags{}

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Provision the working directory",
		Long: `Provision the working directory for the server.

Creates the shared files directory and the state directory, and copies
.env.example to .env if no .env exists yet. An existing .env is never
overwritten. If any step fails, everything this run created is rolled
back; pre-existing directories and files are left in place.

Examples:
  acfileserver setup
  acfileserver setup --dir /srv/share`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runSetup(flags)
		},
	}

	cmd.Flags().StringVar(&flags.dir, "dir", ".", "Working directory to provision")

	return cmd
}

// runSetup provisions the directory and reports what happened.
func runSetup(flags *setupFlags) error {
	// The settings file may relocate the files/state directories, so it
	// is consulted before provisioning. A missing .env is fine here;
	// creating it is the point of this command.
	cfg, err := config.Load(flags.dir)
	if err != nil {
		return err
	}
	VerboseLog("Provisioning %s", flags.dir)

	res, err := setup.New(flags.dir, cfg.FilesDir, cfg.StateDir).Run()
	if err != nil {
		return err
	}

	printSetupResult(res)
	return nil
}

// printSetupResult writes the provisioning summary to stdout.
func printSetupResult(res *setup.Result) {
	if IsJSONOutput() {
		data, _ := json.MarshalIndent(res, "", "  ")
		fmt.Println(string(data))
		return
	}

	for _, p := range res.Created {
		fmt.Printf("created  %s\n", p)
	}
	for _, p := range res.Skipped {
		fmt.Printf("exists   %s\n", p)
	}
	fmt.Println("Setup complete.")
}
