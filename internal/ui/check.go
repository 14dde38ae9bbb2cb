package ui

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/dayblocks/internal/task"
)

func (a *App) checkCmd() *cobra.Command {
	var (
		start   string
		end     string
		exclude int64
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check whether an interval is free",
		Long: `Report the blocks an interval would overlap. Touching intervals do not
overlap. Use --exclude to ignore a block, e.g. the one being edited.`,
		Example: `  dayblocks check --start=10:00 --end=11:00
  dayblocks check --start=10:00 --end=11:00 --exclude=3`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := task.ValidateTime(start); err != nil {
				return fmt.Errorf("start time: %w", err)
			}
			if err := task.ValidateTime(end); err != nil {
				return fmt.Errorf("end time: %w", err)
			}

			ctx := cmd.Context()
			if err := a.ensureStore(ctx); err != nil {
				return err
			}

			var excludeID *int64
			if exclude > 0 {
				excludeID = &exclude
			}
			conflicts, err := a.store.Conflicts(ctx, start, end, excludeID)
			if err != nil {
				return fmt.Errorf("checking overlap: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(conflicts) == 0 {
				_, _ = fmt.Fprintf(out, "%s-%s is free\n", start, end)
				return nil
			}
			_, _ = fmt.Fprintf(out, "%s-%s overlaps %d block(s):\n", start, end, len(conflicts))
			PrintConflicts(out, start, end, conflicts)
			return nil
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "Start time (HH:MM, required)")
	cmd.Flags().StringVar(&end, "end", "", "End time (HH:MM, required)")
	cmd.Flags().Int64Var(&exclude, "exclude", 0, "Block ID to ignore")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")

	return cmd
}
