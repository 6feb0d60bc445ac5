package keys

import (
	"fmt"
	"time"

	"github.com/jvano/azure-webjobs-sdk-script/internal/ui"
	"github.com/jvano/azure-webjobs-sdk-script/pkg/host/secrets"
	"github.com/spf13/cobra"
)

func NewKeysListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list [function]",
		Aliases: []string{"ls"},
		Short:   "List host or function keys",
		Long: `Display the keys kept in the local secret store.

With no arguments, shows the host master key. Passing a function name shows
that function's keys instead, provisioning its default key if the function
has never been accessed before.`,
		Example: `  # Show the host master key
  funchost keys list

  # Show the keys of one function
  funchost keys list HttpTrigger

  # List in plain format (useful for scripting)
  funchost keys list HttpTrigger --plain`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Check if output should be machine-readable
			plainFormat, _ := cmd.Flags().GetBool("plain")

			store, closeStore, err := openStore()
			if err != nil {
				return err
			}
			defer closeStore()

			var listed []secrets.Key
			scope := "host"
			if len(args) == 1 {
				scope = args[0]
				listed, err = store.FunctionKeys(args[0])
			} else {
				var master secrets.Key
				master, err = store.MasterKey()
				listed = []secrets.Key{master}
			}
			if err != nil {
				return fmt.Errorf("failed to read keys: %w", err)
			}

			if plainFormat {
				renderKeysPlain(scope, listed)
				return nil
			}

			renderKeys(scope, listed)
			return nil
		},
	}

	cmd.Flags().Bool("plain", false, "Output in plain, machine-readable format (useful for piping to other commands)")
	return cmd
}

func renderKeysPlain(scope string, listed []secrets.Key) {
	// Use format strings with exact field widths for consistent alignment
	const headerFormat = "%-12s\t%-12s\t%-56s\t%-20s\n"
	const dataFormat = "%-12s\t%-12s\t%-56s\t%-20s\n"

	fmt.Printf(headerFormat, "SCOPE", "NAME", "VALUE", "CREATED")
	for _, key := range listed {
		fmt.Printf(dataFormat, scope, key.Name, key.Value, key.CreatedAt.Format(time.RFC3339))
	}
}

func renderKeys(scope string, listed []secrets.Key) {
	table := ui.NewTable([]string{"SCOPE", "NAME", "VALUE", "CREATED"})
	for _, key := range listed {
		table.AddRow(scope, key.Name, key.Value, key.CreatedAt.Format(time.RFC3339))
	}
	fmt.Println(ui.RenderTable(table))
}
