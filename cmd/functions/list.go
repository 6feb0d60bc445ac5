package functions

import (
	"fmt"
	"strconv"

	"github.com/jvano/azure-webjobs-sdk-script/internal/ui"
	"github.com/jvano/azure-webjobs-sdk-script/internal/ui/operations"
	"github.com/jvano/azure-webjobs-sdk-script/pkg/host/routes"
	"github.com/spf13/cobra"
)

// functionListing is one row of the list output.
type functionListing struct {
	Name    string
	State   string
	Trigger string
	Route   string
	Errors  int
}

func NewFunctionsListCommand() *cobra.Command {
	var scriptRoot string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List functions discovered under the script root",
		Long: `Display every function the host discovers under the script root.

Each function folder containing a function.json file appears in the output
with:
* Name and state (ready, disabled, or error)
* Trigger type from the function metadata
* The HTTP route registered for it, if any
* The number of metadata errors recorded against it

The listing resolves the host configuration first, so the function
allow-list and the HTTP route prefix apply exactly as they would on a
running host.`,
		Example: `  # List all discovered functions
  funchost functions list

  # List functions under a specific script root
  funchost functions list --script-root /srv/functions

  # List in plain format (useful for scripting)
  funchost functions list --plain`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Check if output should be machine-readable
			plainFormat, _ := cmd.Flags().GetBool("plain")

			root, logRoot := resolvePaths(scriptRoot)

			collect := func() (interface{}, error) {
				h, err := inspectHost(cmd.Context(), root, logRoot)
				if err != nil {
					return nil, err
				}
				defer h.Close()
				return collectListings(h), nil
			}

			if plainFormat {
				result, err := collect()
				if err != nil {
					return err
				}
				renderFunctionListPlain(result.([]functionListing))
				return nil
			}

			return operations.WithSpinner("Scanning functions...", collect, func(result interface{}) {
				renderFunctionList(result.([]functionListing))
			})
		},
	}

	cmd.Flags().StringVarP(&scriptRoot, "script-root", "r", "", "Script root directory (overrides config)")
	cmd.Flags().Bool("plain", false, "Output in plain, machine-readable format (useful for piping to other commands)")
	return cmd
}

// collectListings flattens an initialized host into display rows.
func collectListings(h hostView) []functionListing {
	routesByFunction := make(map[string]routes.Entry)
	for _, entry := range h.Routes().Entries() {
		routesByFunction[entry.Function] = entry
	}
	errs := h.FunctionErrors()
	prefix := h.Configuration().HTTP.RoutePrefix

	var listings []functionListing
	for _, fn := range h.Functions() {
		listing := functionListing{
			Name:    fn.Name,
			State:   "ready",
			Trigger: "-",
			Route:   "-",
			Errors:  len(errs[fn.Name]),
		}
		if fn.Trigger != nil {
			listing.Trigger = fn.Trigger.Type
		}
		if entry, ok := routesByFunction[fn.Name]; ok {
			listing.Route = routePath(prefix, entry.Route)
		}
		if listing.Errors > 0 {
			listing.State = "error"
		} else if fn.Disabled {
			listing.State = "disabled"
		}
		listings = append(listings, listing)
	}
	return listings
}

func renderFunctionListPlain(listings []functionListing) {
	// Use format strings with exact field widths for consistent alignment
	const headerFormat = "%-25s\t%-10s\t%-15s\t%-30s\t%-8s\n"
	const dataFormat = "%-25s\t%-10s\t%-15s\t%-30s\t%-8s\n"

	fmt.Printf(headerFormat, "NAME", "STATE", "TRIGGER", "ROUTE", "ERRORS")

	if len(listings) == 0 {
		fmt.Println("No functions found")
		return
	}
	for _, listing := range listings {
		fmt.Printf(dataFormat,
			listing.Name,
			listing.State,
			listing.Trigger,
			listing.Route,
			strconv.Itoa(listing.Errors))
	}
}

func renderFunctionList(listings []functionListing) {
	if len(listings) == 0 {
		ui.PrintEmptyState("No functions found under the script root")
		return
	}

	errored := 0
	table := ui.NewTable([]string{"NAME", "STATE", "TRIGGER", "ROUTE", "ERRORS"})
	for _, listing := range listings {
		if listing.Errors > 0 {
			errored++
		}
		table.AddRow(
			listing.Name,
			ui.StyleStatusValue(listing.State),
			listing.Trigger,
			listing.Route,
			strconv.Itoa(listing.Errors))
	}

	fmt.Println(ui.RenderTable(table))

	if errored > 0 {
		ui.PrintWarning(fmt.Sprintf("%d function(s) carry metadata errors; run 'funchost functions errors' for details", errored))
	}
}
