package functions

import (
	"fmt"
	"sort"

	"github.com/jvano/azure-webjobs-sdk-script/internal/ui"
	"github.com/spf13/cobra"
)

func NewFunctionsErrorsCommand() *cobra.Command {
	var scriptRoot string

	cmd := &cobra.Command{
		Use:   "errors [function]",
		Short: "Show metadata errors recorded against functions",
		Long: `Display the metadata errors the host records while resolving function
folders.

A function with metadata errors stays discovered but is never served. The
errors reported here include:
* Unparsable or invalid function.json content
* Missing or ambiguous script files
* Route conflicts with other functions or with reserved routes

With no arguments, every function carrying errors is listed. Passing a
function name shows the errors for that function only.`,
		Example: `  # Show metadata errors for every function
  funchost functions errors

  # Show metadata errors for one function
  funchost functions errors HttpTrigger

  # Show errors in plain format (useful for scripting)
  funchost functions errors --plain`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Check if output should be machine-readable
			plainFormat, _ := cmd.Flags().GetBool("plain")

			root, logRoot := resolvePaths(scriptRoot)

			h, err := inspectHost(cmd.Context(), root, logRoot)
			if err != nil {
				if !plainFormat {
					ui.PrintError(fmt.Sprintf("Failed to inspect script root: %v", err))
				}
				return err
			}
			defer h.Close()

			errs := h.FunctionErrors()

			if len(args) == 1 {
				name := args[0]
				fn := h.Function(name)
				if fn == nil {
					return fmt.Errorf("function '%s' not found under '%s'", name, root)
				}
				renderFunctionErrors(fn.Name, errs[fn.Name], plainFormat)
				return nil
			}

			names := make([]string, 0, len(errs))
			for name := range errs {
				names = append(names, name)
			}
			sort.Strings(names)

			if len(names) == 0 {
				if plainFormat {
					fmt.Println("No function errors")
				} else {
					ui.PrintSuccess("No function errors")
				}
				return nil
			}

			for _, name := range names {
				renderFunctionErrors(name, errs[name], plainFormat)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&scriptRoot, "script-root", "r", "", "Script root directory (overrides config)")
	cmd.Flags().Bool("plain", false, "Output in plain, machine-readable format (useful for piping to other commands)")
	return cmd
}

func renderFunctionErrors(name string, messages []string, plain bool) {
	if plain {
		for _, message := range messages {
			fmt.Printf("%s\t%s\n", name, message)
		}
		if len(messages) == 0 {
			fmt.Printf("%s\t-\n", name)
		}
		return
	}

	if len(messages) == 0 {
		ui.PrintSuccess(fmt.Sprintf("Function '%s' has no errors", name))
		return
	}

	fmt.Println(ui.HeaderStyle.Render(name))
	for _, message := range messages {
		fmt.Printf("  %s %s\n", ui.ErrorStyle.Render(ui.BulletSymbol), message)
	}
	fmt.Println()
}
