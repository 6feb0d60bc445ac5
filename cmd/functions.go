package cmd

import (
	"github.com/jvano/azure-webjobs-sdk-script/cmd/functions"
	"github.com/spf13/cobra"
)

var functionsCmd = &cobra.Command{
	Use:   "functions",
	Short: "Inspect discovered functions",
	Long: `Commands for inspecting the functions the host discovers under the
script root.

Each function lives in its own folder containing a function.json metadata
file. This command group resolves the host configuration, scans the script
root the same way the running host does, and reports:
* The functions found and whether they can be invoked
* The HTTP routes registered for them
* The metadata errors recorded against individual functions

Functions with metadata errors stay visible here even though the host will
not serve them.`,
	Example: `  # List all discovered functions
  funchost functions list

  # List functions under a specific script root
  funchost functions list --script-root /srv/functions

  # Show metadata errors for every function
  funchost functions errors

  # Show metadata errors for one function
  funchost functions errors HttpTrigger`,
	Aliases: []string{"fn"},
}

func init() {
	functionsCmd.AddCommand(functions.NewFunctionsListCommand())
	functionsCmd.AddCommand(functions.NewFunctionsErrorsCommand())

	rootCmd.AddCommand(functionsCmd)
}
