package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/aussiebroadwan/lingua/internal/lingua/app"
	"github.com/aussiebroadwan/lingua/pkg/guard"
	"github.com/aussiebroadwan/lingua/pkg/routes"
	"github.com/aussiebroadwan/lingua/web"
	"github.com/spf13/cobra"
)

func newRoutesCmd(cfg *app.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Route table commands",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Validate the route table and list its entries",
		Long: `Loads the route table (--routes, or the embedded one), validates it and
checks that every view it names exists. Prints the compiled entries with
their effective access requirements.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				tbl *routes.Table
				err error
			)
			if cfg.RoutesFile != "" {
				tbl, err = routes.LoadFile(cfg.RoutesFile)
			} else {
				tbl, err = web.Routes()
			}
			if err != nil {
				return err
			}
			if err := web.Views().Check(tbl); err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "PATH\tNAME\tVIEW\tACCESS")
			for _, e := range tbl.Entries() {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Path, e.Name, e.View, access(guard.Fold(e.Chain)))
			}
			return tw.Flush()
		},
	})
	return cmd
}

func access(r guard.Requirements) string {
	switch {
	case r.Guest:
		return "guest"
	case r.Admin:
		return "admin"
	case r.Role != "":
		return "role:" + r.Role
	case r.Auth:
		return "auth"
	default:
		return "public"
	}
}
