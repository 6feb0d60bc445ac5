package keys

import (
	"fmt"

	"github.com/jvano/azure-webjobs-sdk-script/internal/ui"
	"github.com/spf13/cobra"
)

func NewKeysDeleteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "delete <function> <name>",
		Aliases: []string{"rm"},
		Short:   "Delete a named function key",
		Long: `Remove a named key from a function's key set.

The secret stops working immediately. Deleting the 'default' key is allowed;
a fresh default is minted the next time the function's keys are read.`,
		Example: `  # Delete a deploy key
  funchost keys delete HttpTrigger deploy

  # Delete using the short alias
  funchost keys rm HttpTrigger deploy`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeStore, err := openStore()
			if err != nil {
				return err
			}
			defer closeStore()

			if err := store.DeleteFunctionKey(args[0], args[1]); err != nil {
				return fmt.Errorf("failed to delete key: %w", err)
			}

			ui.PrintSuccess(fmt.Sprintf("Key '%s' deleted from function '%s'", args[1], args[0]))
			return nil
		},
	}
	return cmd
}
