package ui

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

func (a *App) rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm [id...]",
		Short:   "Remove blocks",
		Long:    `Remove one or more blocks by ID. Unknown IDs are ignored.`,
		Example: `  dayblocks rm 3 4`,
		Aliases: []string{"delete"},
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]int64, 0, len(args))
			for _, arg := range args {
				id, err := parseID(arg)
				if err != nil {
					return err
				}
				ids = append(ids, id)
			}

			ctx := cmd.Context()
			if err := a.ensureStore(ctx); err != nil {
				return err
			}
			for _, id := range ids {
				if err := a.store.Delete(ctx, id); err != nil {
					return fmt.Errorf("removing block #%d: %w", id, err)
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Removed block #%d\n", id)
			}
			return nil
		},
	}
}

func (a *App) clearCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every block",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if !yes && !promptYesNo(cmd.InOrStdin(), out, "Remove every block?") {
				_, _ = fmt.Fprintln(out, "Nothing removed.")
				return nil
			}

			ctx := cmd.Context()
			if err := a.ensureStore(ctx); err != nil {
				return err
			}
			if err := a.store.DeleteAll(ctx); err != nil {
				return fmt.Errorf("clearing blocks: %w", err)
			}
			_, _ = fmt.Fprintln(out, "All blocks removed.")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func promptYesNo(in io.Reader, out io.Writer, question string) bool {
	_, _ = fmt.Fprintf(out, "%s [y/N]: ", question)
	input, _ := bufio.NewReader(in).ReadString('\n')
	input = strings.TrimSpace(strings.ToLower(input))
	return input == "y" || input == "yes"
}
