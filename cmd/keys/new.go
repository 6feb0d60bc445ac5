package keys

import (
	"fmt"

	"github.com/jvano/azure-webjobs-sdk-script/internal/ui"
	"github.com/spf13/cobra"
)

func NewKeysNewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "new <function> <name>",
		Short: "Create or rotate a named function key",
		Long: `Create a named key for a function, minting a fresh secret.

If a key with the same name already exists, its secret is rotated and the
previous value stops working. The name 'master' is reserved for the host
key and cannot be used for function keys.`,
		Example: `  # Create a deploy key for a function
  funchost keys new HttpTrigger deploy

  # Rotate the function's default key
  funchost keys new HttpTrigger default`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeStore, err := openStore()
			if err != nil {
				return err
			}
			defer closeStore()

			key, err := store.CreateFunctionKey(args[0], args[1])
			if err != nil {
				return fmt.Errorf("failed to create key: %w", err)
			}

			ui.PrintSuccess("Function key created")
			ui.PrintInfo("Function", args[0])
			ui.PrintInfo("Name", key.Name)
			ui.PrintInfo("Value", key.Value)
			return nil
		},
	}
	return cmd
}
