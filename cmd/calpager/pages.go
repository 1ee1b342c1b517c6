package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/cpuguy83/calpager/internal/ui/text"
)

func addPages(topLevel *cobra.Command, g *globalOptions) {
	var (
		from  int
		count int
	)

	cmd := &cobra.Command{
		Use:   "pages",
		Short: "List page indexes and their visible ranges",
		Example: `
calpager pages
calpager pages --from 0 --count 20
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			now, err := g.now()
			if err != nil {
				return err
			}
			state, err := g.newState(now)
			if err != nil {
				return err
			}
			defer state.Close()

			cur := state.Snapshot().PageIndex
			if !cmd.Flags().Changed("from") {
				from = max(cur-count/2, 0)
			}
			return text.Pages(os.Stdout, state.Indexer(), from, count, cur)
		},
	}
	cmd.Flags().IntVar(&from, "from", 0, "first page index (default: centered on today)")
	cmd.Flags().IntVar(&count, "count", 14, "number of pages to list")

	topLevel.AddCommand(cmd)
}
