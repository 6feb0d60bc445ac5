package cmd

import (
	"os"

	globalConfig "github.com/jvano/azure-webjobs-sdk-script/internal/config"
	"github.com/jvano/azure-webjobs-sdk-script/internal/ui"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var rootCmd = &cobra.Command{
	Use:   "funchost",
	Short: "funchost CLI",
	Long: `funchost is a script function host for serverless workloads.

It reads a host configuration file and a directory tree of function folders,
resolves per-function metadata, and serves the functions it discovers with
file watching, debug-mode tracking, and structured logging.

Key capabilities:
* Start the host against a script root and restart it on file changes
* Inspect discovered functions, their routes, and their metadata errors
* Manage host and function keys in the local secret store
* Track debug mode through a sentinel file in the log directory`,
	Example: `  # Start the host in the current directory
  funchost host start

  # Start the host against a specific script root
  funchost host start --script-root /srv/functions

  # List discovered functions
  funchost functions list

  # Show metadata errors for one function
  funchost functions errors HttpTrigger

  # Use a custom config file
  funchost --config ~/.funchost/custom-config.yaml functions list`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		// Skip for help commands
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}

		// The host start command owns its console output.
		if cmd.CommandPath() == "funchost host start" {
			return nil
		}

		// Check if any command in the hierarchy has a plain flag set to true
		plainFlag := false
		cmd.Flags().Visit(func(f *pflag.Flag) {
			if f.Name == "plain" && f.Value.String() == "true" {
				plainFlag = true
			}
		})

		if !plainFlag {
			ui.PrintLogo()
		}

		return nil
	},
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// Add global flags
	rootCmd.PersistentFlags().StringVarP(&globalConfig.ConfigPath, "config", "c", globalConfig.DefaultConfigPath, "Path to the configuration file")
	rootCmd.PersistentFlags().StringVarP(&globalConfig.ScriptRoot, "script-root", "r", "", "Path to the functions script root (overrides config)")
}
