package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/reglet-dev/machinist/internal/application/dto"
)

// listCmd lists the models and blueprints declared by documents.
var listCmd = &cobra.Command{
	Use:   "list <blueprints.yaml>...",
	Short: "List models and blueprints declared by documents",
	Args:  cobra.MinimumNArgs(1),
	RunE: withContainer(func(cc *CommandContext, cmd *cobra.Command, args []string) error {
		resp, err := cc.Container.FixtureService().List(cc.Context, dto.ListRequest{Documents: args})
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "MODEL\tEXTENDS\tBLUEPRINTS")
		for _, m := range resp.Models {
			extends := m.Extends
			if extends == "" {
				extends = "-"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\n", m.Name, extends, strings.Join(m.Blueprints, ", "))
		}
		return tw.Flush()
	}),
}

func init() {
	rootCmd.AddCommand(listCmd)
}
