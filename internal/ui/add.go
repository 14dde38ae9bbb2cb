package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/dayblocks/internal/scheduler"
	"github.com/javiermolinar/dayblocks/internal/task"
)

func (a *App) addCmd() *cobra.Command {
	var (
		start    string
		end      string
		duration int
		after    string
		color    string
	)

	cmd := &cobra.Command{
		Use:   "add [name]",
		Short: "Add a new block",
		Long: `Add a new block to the day.

Give either an explicit --start and --end, or a --duration in minutes to
place the block in the first free slot of the configured window (at or
after --after).`,
		Example: `  dayblocks add "Write documentation" --start=09:00 --end=11:00
  dayblocks add "Gym" --duration=60 --after=17:00 --color=#a6e3a1`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.ensureStore(ctx); err != nil {
				return err
			}

			if duration > 0 {
				if start != "" || end != "" {
					return errors.New("use either --duration or --start/--end, not both")
				}
				tasks, err := a.store.List(ctx)
				if err != nil {
					return fmt.Errorf("listing tasks: %w", err)
				}
				sched := scheduler.New(a.config.Schedule.DayStart, a.config.Schedule.DayEnd)
				if after == "" {
					after = sched.DayStart()
				}
				slot, ok := sched.NextFree(tasks, after, duration)
				if !ok {
					return fmt.Errorf("no free slot of %s after %s", FormatDuration(duration), after)
				}
				start, end = slot.Start, slot.End
			}

			if color == "" {
				color = a.config.UI.DefaultColor
			}
			t, err := task.New(strings.Join(args, " "), start, end, color)
			if err != nil {
				return err
			}

			created, err := a.store.Create(ctx, t.Name, t.Start, t.End, t.Color)
			if err != nil {
				return fmt.Errorf("creating block: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created block #%d: %s %s-%s\n",
				created.ID, created.Name, created.Start, created.End)
			return nil
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "Start time (HH:MM)")
	cmd.Flags().StringVar(&end, "end", "", "End time (HH:MM)")
	cmd.Flags().IntVar(&duration, "duration", 0, "Length in minutes; finds the next free slot")
	cmd.Flags().StringVar(&after, "after", "", "With --duration, earliest start (HH:MM, default: day start)")
	cmd.Flags().StringVar(&color, "color", "", "Block color (#RRGGBB, default from config)")

	return cmd
}

func (a *App) editCmd() *cobra.Command {
	var (
		name  string
		start string
		end   string
		color string
	)

	cmd := &cobra.Command{
		Use:   "edit [id]",
		Short: "Edit a block",
		Long: `Change the name, times or color of a block.

Unset flags keep their current value. The new interval must not overlap
another block; later blocks are not moved (see 'shift').`,
		Example: `  dayblocks edit 3 --name="Deep work"
  dayblocks edit 3 --start=10:00 --end=11:30`,
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
				valueOr(end, current.End),
				valueOr(color, current.Color),
			)
			if err != nil {
				return err
			}

			updated, err := a.store.Update(ctx, id, t.Name, t.Start, t.End, t.Color)
			if err != nil {
				return fmt.Errorf("updating block: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Updated block #%d: %s %s-%s\n",
				updated.ID, updated.Name, updated.Start, updated.End)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVar(&start, "start", "", "New start time (HH:MM)")
	cmd.Flags().StringVar(&end, "end", "", "New end time (HH:MM)")
	cmd.Flags().StringVar(&color, "color", "", "New color (#RRGGBB)")

	return cmd
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
