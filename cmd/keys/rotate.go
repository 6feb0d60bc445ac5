package keys

import (
	"fmt"

	"github.com/jvano/azure-webjobs-sdk-script/internal/ui"
	"github.com/spf13/cobra"
)

func NewKeysRotateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rotate",
		Short: "Rotate the host master key",
		Long: `Replace the host master key with a freshly minted secret.

The previous master key stops working immediately. Function keys are not
affected by a master key rotation.`,
		Example: `  # Rotate the master key
  funchost keys rotate`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeStore, err := openStore()
			if err != nil {
				return err
			}
			defer closeStore()

			key, err := store.RotateMasterKey()
			if err != nil {
				return fmt.Errorf("failed to rotate master key: %w", err)
			}

			ui.PrintSuccess("Master key rotated")
			ui.PrintInfo("Value", key.Value)
			return nil
		},
	}
	return cmd
}
