package ui

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/dayblocks/internal/scheduler"
	"github.com/javiermolinar/dayblocks/internal/task"
)

func (a *App) listCmd() *cobra.Command {
	var (
		verbose bool
		noColor bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the day's blocks",
		Long: `List all blocks in logical-day order.

Blocks starting before 06:00 belong to the tail of the day and are listed
last, marked with '+'. Free slots are computed inside the configured
[schedule] day_start and day_end window.`,
		Example: `  dayblocks list
  dayblocks list --verbose`,
		Aliases: []string{"ls"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if noColor {
				DisableColor()
			}
			ctx := cmd.Context()
			if err := a.ensureStore(ctx); err != nil {
				return err
			}

			tasks, err := a.store.List(ctx)
			if err != nil {
				return fmt.Errorf("listing tasks: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(tasks) == 0 {
				_, _ = fmt.Fprintln(out, "No blocks scheduled.")
				return nil
			}

			maxNameWidth := 40
			if verbose {
				maxNameWidth = max(termWidth()-32, maxNameWidth)
			}

			_, _ = fmt.Fprintln(out, formatHeader("=== Today ==="))
			_, _ = fmt.Fprintln(out)
			for _, t := range task.SortLogical(tasks) {
				PrintTaskRow(out, t, maxNameWidth)
			}

			_, _ = fmt.Fprintln(out)
			PrintDayStats(out, task.StatsOf(tasks))
			sched := scheduler.New(a.config.Schedule.DayStart, a.config.Schedule.DayEnd)
			PrintFreeSlots(out, sched.FreeSlots(tasks))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show full block names")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable color output")
	return cmd
}
