package commands

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/restgen/internal/app"
	"github.com/conduit-lang/restgen/internal/cli/ui"
	"github.com/conduit-lang/restgen/internal/web/router"
)

// NewRoutesCommand creates the routes command
func NewRoutesCommand(flags *globalFlags) *cobra.Command {
	var resource string
	var verbose bool

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "List the generated routes",
		Long: `Print the routes generated for the configured resources. With --verbose
every route is followed by its parameters and declared responses.

Examples:
  restgen routes
  restgen routes --resource model --verbose`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load(cmd)
			if err != nil {
				return err
			}
			// the route table only depends on the schemas
			cfg.Database.Driver = "memory"
			cfg.RateLimit.Enabled = false

			a, err := app.New(cfg, nil)
			if err != nil {
				return err
			}

			routes := a.Router.GetRoutes()
			if resource != "" {
				if _, ok := a.Registry.Get(resource); !ok {
					ui.ResourceNotFound(resource, a.Registry.List(), flags.noColor).Write(cmd.ErrOrStderr())
					return errReported
				}
				routes = filterRoutes(routes, resource)
			}

			out := cmd.OutOrStdout()
			if verbose {
				for _, info := range routes {
					describeRoute(out, info, flags.noColor)
				}
				return nil
			}

			table := ui.NewTable(out, flags.noColor, "METHOD", "PATTERN", "NAME", "TITLE")
			table.StyleColumn(0, ui.MethodColor)
			for _, info := range routes {
				table.AddRow(info.Method, info.Pattern, info.Name, info.Title)
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().StringVarP(&resource, "resource", "r", "", "only list the routes of this resource")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show parameters and responses")
	return cmd
}

func filterRoutes(routes []*router.RouteInfo, resource string) []*router.RouteInfo {
	out := make([]*router.RouteInfo, 0, len(routes))
	for _, r := range routes {
		if r.ResourceName == resource {
			out = append(out, r)
		}
	}
	return out
}

func describeRoute(w io.Writer, info *router.RouteInfo, noColor bool) {
	ui.Header(w, info.Method+" "+info.Pattern, noColor)

	kv := ui.NewKeyValueTable(w, noColor)
	kv.AddRow("name", info.Name)
	kv.AddRow("title", info.Title)
	if info.Description != "" {
		kv.AddRow("description", info.Description)
	}
	for _, p := range info.Parameters {
		kv.AddRow(p.Source.String()+" "+p.Name, describeParam(p))
	}

	returns := make([]router.ReturnDeclaration, len(info.Returns))
	copy(returns, info.Returns)
	sort.SliceStable(returns, func(i, j int) bool { return returns[i].Status < returns[j].Status })
	for _, r := range returns {
		value := r.Type
		if r.Error != "" {
			value = r.Error
		}
		kv.AddRow(fmt.Sprintf("returns %d", r.Status), value)
	}
	kv.Render()
	fmt.Fprintln(w)
}

func describeParam(p router.RouteParameter) string {
	parts := []string{p.Type}
	if p.Optional {
		parts = append(parts, "optional")
	}
	if p.Default != nil {
		parts = append(parts, fmt.Sprintf("default %v", p.Default))
	}
	return strings.Join(parts, ", ")
}
