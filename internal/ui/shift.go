package ui

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/dayblocks/internal/task"
)

func (a *App) shiftCmd() *cobra.Command {
	var (
		end    string
		name   string
		start  string
		color  string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "shift [id]",
		Short: "Move a block's end and every block after it",
		Long: `Change the end time of a block and move every block that starts at or
after its old end by the same amount.

Moved blocks wrap around midnight. The edited block itself is not checked
for overlaps. Use --dry-run to see the moves without saving them.`,
		Example: `  dayblocks shift 2 --end=11:30
  dayblocks shift 2 --end=10:45 --dry-run`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if err := a.ensureStore(ctx); err != nil {
				return err
			}

			current, err := a.findTask(ctx, id)
			if err != nil {
				return err
			}
			t, err := task.New(
				valueOr(name, current.Name),
				valueOr(start, current.Start),
				end,
				valueOr(color, current.Color),
			)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if dryRun {
				delta, moves, err := a.store.PreviewShift(ctx, id, t.End, current.End)
				if err != nil {
					return fmt.Errorf("previewing shift: %w", err)
				}
				_, _ = fmt.Fprintf(out, "#%d %s-%s -> %s-%s (%+dm)\n",
					id, current.Start, current.End, t.Start, t.End, delta)
				printMoves(out, moves)
				_, _ = fmt.Fprintln(out, formatMuted("(Dry run - nothing saved)"))
				return nil
			}

			if _, err := a.store.UpdateWithShift(ctx, id, t.Name, t.Start, t.End, t.Color, current.End); err != nil {
				return fmt.Errorf("shifting schedule: %w", err)
			}
			_, _ = fmt.Fprintf(out, "Block #%d now ends at %s (%+dm)\n", id, t.End, task.ShiftDelta(current.End, t.End))
			return nil
		},
	}

	cmd.Flags().StringVar(&end, "end", "", "New end time (HH:MM, required)")
	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVar(&start, "start", "", "New start time (HH:MM)")
	cmd.Flags().StringVar(&color, "color", "", "New color (#RRGGBB)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show the moves without saving")
	_ = cmd.MarkFlagRequired("end")

	return cmd
}

func printMoves(out io.Writer, moves []task.TimeUpdate) {
	if len(moves) == 0 {
		_, _ = fmt.Fprintln(out, "No other blocks move.")
		return
	}
	for _, m := range moves {
		_, _ = fmt.Fprintf(out, "  #%d -> %s-%s\n", m.ID, m.NewStart, m.NewEnd)
	}
}
