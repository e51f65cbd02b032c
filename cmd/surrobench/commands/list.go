package commands

import (
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"surrobench/pkg/core"
	"surrobench/pkg/reporter"
	"surrobench/pkg/surrogate"
)

func newListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List available components",
		RunE: func(cmd *cobra.Command, args []string) error {
			writeList("Surrogates", surrogate.Names())
			writeList("Modes", []string{
				core.ModeAccuracy,
				core.ModeInterpolation,
				core.ModeExtrapolation,
				core.ModeSparse,
				core.ModeUQ,
			})
			writeList("Formats", reporter.Formats())
			return nil
		},
	}
	return cmd
}

func writeList(title string, items []string) {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header([]string{title})
	for _, item := range items {
		table.Append([]string{item})
	}
	table.Render()
}
