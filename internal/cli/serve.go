// Package cli — serve.go implements the "acfileserver serve" command.
//
// The serve command is the primary user-facing operation. It loads the
// configuration, scans the shared directory, resolves a listen port and
// starts the HTTP server until interrupted.
//
// Orchestration steps:
//  1. Parse the optional positional port argument
//  2. Load configuration (.env, settings file, environment overrides)
//  3. Ensure the shared directory exists and build the registry
//  4. Start the directory watcher
//  5. Resolve the listen port
//  6. Announce URLs (and QR code) on the console
//  7. Run the server until SIGINT/SIGTERM
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"acfileserver/internal/config"
	"acfileserver/internal/httpserver"
	"acfileserver/internal/model"
	"acfileserver/internal/netutil"
	"acfileserver/internal/port"
	"acfileserver/internal/registry"
)

// serveFlags holds the flag values for the serve command.
// These are bound to cobra flags in NewServeCommand.
type serveFlags struct {
	dir  string // --dir: working directory holding files/, data/ and .env
	noQR bool   // --no-qr: suppress the terminal QR code
}

// NewServeCommand creates the "serve" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewServeCommand() *cobra.Command {
	flags := &serveFlags{}

	cmd := &cobra.Command{
		Use:   "serve [port]",
		Short: "Start the file sharing server",
		Long: `Start the HTTP server that shares published files on your LAN.

The optional positional argument selects the listen port (default 5000).
If the port is taken the command fails; pass 0 to pick a free port
automatically.

Examples:
  acfileserver serve
  acfileserver serve 8080
  acfileserver serve 0
  acfileserver serve --dir /srv/share`,

		// Args allows at most one positional argument (the port).
		Args: cobra.MaximumNArgs(1),

		// RunE is used instead of Run so we can return errors. Cobra will
		// pass them to the Execute error handler in root.go.
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(args, flags)
		},
	}

	// Register command-specific flags.
	cmd.Flags().StringVar(&flags.dir, "dir", ".", "Working directory containing the shared files")
	cmd.Flags().BoolVar(&flags.noQR, "no-qr", false, "Do not print a QR code of the public URL")

	return cmd
}

// parsePortArg interprets the optional positional port argument.
// No argument means the configured default; a non-integer is an error.
func parsePortArg(args []string) (int, error) {
	if len(args) == 0 {
		return config.DefaultPort, nil
	}
	p, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, model.WrapCLIError(model.ExitGeneralError,
			fmt.Sprintf("invalid port %q: must be an integer", args[0]), err)
	}
	return p, nil
}

// runServe is the main orchestration function for the serve command.
func runServe(args []string, flags *serveFlags) error {
	// Step 1: positional port argument.
	requested, err := parsePortArg(args)
	if err != nil {
		return err
	}

	// Step 2: configuration.
	cfg, err := config.Load(flags.dir)
	if err != nil {
		return err
	}
	if flags.noQR {
		cfg.ShowQR = false
	}
	VerboseLog("Files directory: %s", cfg.FilesDir)
	VerboseLog("State directory: %s", cfg.StateDir)

	log, err := newLogger()
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to initialize logger", err)
	}
	defer log.Sync()

	// Step 3: shared directory and publication registry. The shared
	// directory is created on demand so a bare "serve" works out of
	// the box.
	if err := os.MkdirAll(cfg.FilesDir, 0o755); err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to create files directory", err)
	}
	reg, err := registry.New(cfg.FilesDir, cfg.StateDir, log)
	if err != nil {
		return err
	}

	// Step 4: keep the registry in sync with the directory while serving.
	watcher, err := registry.NewWatcher(reg, log)
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to watch files directory", err)
	}
	watcher.Start()
	defer watcher.Stop()

	// Step 5: listen port.
	scanner := port.NewScanner()
	resolved, err := scanner.Resolve(requested)
	if err != nil {
		return model.WrapCLIError(model.ExitPortUnavailable, "cannot listen", err)
	}
	VerboseLog("Resolved port: %d", resolved)

	// Step 6: announce where we are reachable. The admin URL is printed
	// to the server console only, never exposed by the server itself.
	info := serverInfo(cfg, resolved)
	printServerInfo(cfg, info)
	log.Info("server starting",
		zap.String("url", info.URL),
		zap.Int("port", info.Port),
		zap.String("filesDir", info.FilesDir),
		zap.Bool("adminRouteGenerated", cfg.AdminRouteGenerated))

	// Step 7: serve until interrupted.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := httpserver.New(cfg, reg, log)
	addr := fmt.Sprintf("%s:%d", cfg.Host, resolved)
	if err := srv.Run(ctx, addr); err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "server error", err)
	}
	log.Info("server stopped")
	return nil
}

// serverInfo assembles the startup summary for the resolved port.
func serverInfo(cfg *config.Config, resolvedPort int) model.ServerInfo {
	ip := netutil.LANIP()
	url := fmt.Sprintf("http://%s:%d", ip, resolvedPort)
	return model.ServerInfo{
		URL:      url,
		AdminURL: fmt.Sprintf("%s/%s", url, cfg.AdminRoute),
		LocalIP:  ip,
		Port:     resolvedPort,
		FilesDir: cfg.FilesDir,
	}
}

// printServerInfo writes the startup summary to stdout, as JSON or text
// depending on the --json flag. The QR code is a text-mode nicety only.
func printServerInfo(cfg *config.Config, info model.ServerInfo) {
	if IsJSONOutput() {
		data, _ := json.MarshalIndent(info, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Printf("Sharing %s\n", info.FilesDir)
	fmt.Printf("Public URL:  %s\n", info.URL)
	fmt.Printf("Admin panel: %s\n", info.AdminURL)
	if cfg.AdminRouteGenerated {
		fmt.Println("(admin route was generated for this run; set ADMIN_ROUTE to pin it)")
	}
	if cfg.ShowQR {
		fmt.Println()
		netutil.PrintQR(os.Stdout, info.URL)
	}
}
