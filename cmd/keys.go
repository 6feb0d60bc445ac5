package cmd

import (
	"github.com/jvano/azure-webjobs-sdk-script/cmd/keys"
	"github.com/spf13/cobra"
)

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage host and function keys",
	Long: `Commands for managing the access keys kept in the local secret store.

The host holds one master key; every function gets a default key on first
access and can carry additional named keys. Keys are random secrets minted
by the host and persisted across restarts.

This command group reads and writes the same database the running host
uses, so keys created here are immediately valid.`,
	Example: `  # Show the host master key
  funchost keys list

  # Show the keys of one function
  funchost keys list HttpTrigger

  # Create or rotate a named function key
  funchost keys new HttpTrigger deploy

  # Rotate the host master key
  funchost keys rotate`,
}

func init() {
	keysCmd.AddCommand(keys.NewKeysListCommand())
	keysCmd.AddCommand(keys.NewKeysNewCommand())
	keysCmd.AddCommand(keys.NewKeysDeleteCommand())
	keysCmd.AddCommand(keys.NewKeysRotateCommand())

	rootCmd.AddCommand(keysCmd)
}
