package host

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	globalConfig "github.com/jvano/azure-webjobs-sdk-script/internal/config"
	"github.com/jvano/azure-webjobs-sdk-script/internal/di"
	"github.com/jvano/azure-webjobs-sdk-script/pkg/host"
	"github.com/jvano/azure-webjobs-sdk-script/pkg/host/secrets"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

// NewHostStartCommand creates a command to start the function host.
func NewHostStartCommand() *cobra.Command {
	// Configuration options
	var config struct {
		scriptRoot string
		logRoot    string
	}

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the function host",
		Long: `Start the funchost script function host.

The host provides:
* Discovery of function folders under the script root
* Host configuration resolution with defaults and range validation
* An HTTP route table built from function trigger metadata
* File watching with debounced host restarts
* Debug-mode tracking through a sentinel file

The host keeps running until interrupted. Edits to host.json, function.json
files, or watched directories restart it in place with a fresh host instance.`,
		Example: `  # Start the host in the current directory
  funchost host start

  # Start against a specific script root
  funchost host start --script-root /srv/functions

  # Keep logs in a custom directory
  funchost host start --log-root /var/log/funchost`,
		RunE: func(cmd *cobra.Command, args []string) error {
			// The root-level flag applies when no local override is given.
			if config.scriptRoot == "" {
				config.scriptRoot = globalConfig.ScriptRoot
			}

			// Print startup message
			fmt.Println("Starting function host...")
			fmt.Println("Press Ctrl+C to stop")

			// Stop the restart loop on SIGINT/SIGTERM.
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			// Create app configuration for fx
			appConfig := di.NewAppConfig(
				globalConfig.ConfigPath,
				config.scriptRoot,
				config.logRoot,
			)

			// Setup the fx app with our module
			app := fx.New(
				// Provide app configuration
				fx.Supply(appConfig),

				// Include all our dependency providers
				di.Module,

				// Register the host run loop as an fx invocation
				fx.Invoke(func(manager *host.Manager, secretStore *secrets.Store) {
					// Provision the host master key before serving.
					if _, err := secretStore.MasterKey(); err != nil {
						fmt.Fprintf(os.Stderr, "Host secret provisioning failed: %v\n", err)
						os.Exit(1)
					}

					// Run blocks until the context is cancelled or the
					// host fails to initialize. fx.Invoke doesn't
					// propagate errors up to RunE, so report here.
					if err := manager.Run(ctx); err != nil {
						fmt.Fprintf(os.Stderr, "Function host failed: %v\n", err)
						os.Exit(1)
					}
				}),

				// Configure fx options
				fx.StartTimeout(30*time.Second),
				fx.StopTimeout(30*time.Second),
			)

			// Start the application and wait for it to finish
			if err := app.Start(context.Background()); err != nil {
				return fmt.Errorf("failed to start host: %w", err)
			}

			// Handle shutdown
			if err := app.Stop(context.Background()); err != nil {
				return fmt.Errorf("error during shutdown: %w", err)
			}

			return nil
		},
	}

	// Register command flags
	cmd.Flags().StringVarP(&config.scriptRoot, "script-root", "r", "", "Script root directory (overrides config)")
	cmd.Flags().StringVarP(&config.logRoot, "log-root", "l", "", "Log root directory (overrides config)")

	return cmd
}
