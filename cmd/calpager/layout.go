package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/cpuguy83/calpager/internal/calendar"
	"github.com/cpuguy83/calpager/internal/sync"
	"github.com/cpuguy83/calpager/internal/ui/text"
)

func addLayout(topLevel *cobra.Command, g *globalOptions) {
	var (
		date  string
		match string
	)

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Sync once and print the layout of one page",
		Example: `
calpager layout
calpager layout --date 2024-6-3
calpager layout --date 6/3 --match standup
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			now, err := g.now()
			if err != nil {
				return err
			}
			target := now
			if date != "" {
				if target, err = parseDate(date, now); err != nil {
					return err
				}
			}
			display, err := matchFilter(match)
			if err != nil {
				return err
			}

			state, err := g.newState(now)
			if err != nil {
				return err
			}
			defer state.Close()

			ctrl := g.newController()
			ctrl.Attach(state)
			if err := ctrl.JumpToDate(target); err != nil {
				return err
			}
			visible := state.Snapshot().VisibleRange

			store := calendar.NewStore[calendar.Event]()
			syncer, err := sync.NewSyncer(g.cfg, store, g.syncWindow(visible))
			if err != nil {
				return fmt.Errorf("create syncer: %w", err)
			}
			if syncer.SourceCount() == 0 {
				slog.Warn("no calendar sources configured")
			} else if _, err := syncer.Sync(cmd.Context()); err != nil {
				return fmt.Errorf("sync: %w", err)
			}

			return text.Page(os.Stdout, state.Granularity(), visible, store, display)
		},
	}
	cmd.Flags().StringVar(&date, "date", "", `date to show, example: --date="2024-2-28" or --date="2/28"`)
	cmd.Flags().StringVar(&match, "match", "", "only show events whose title contains this text")

	topLevel.AddCommand(cmd)
}
