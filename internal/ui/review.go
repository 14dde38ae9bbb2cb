package ui

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/dayblocks/internal/llm"
)

func (a *App) reviewCmd() *cobra.Command {
	var modelFlag string

	cmd := &cobra.Command{
		Use:   "review",
		Short: "Ask the LLM for feedback on the day",
		RunE: func(cmd *cobra.Command, _ []string) error {
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
				_, _ = fmt.Fprintln(out, "No blocks to review.")
				return nil
			}

			llmCfg := a.config.LLM
			if modelFlag != "" {
				llmCfg.Model = modelFlag
			}
			client, err := llm.NewClient(llmCfg, a.log)
			if err != nil {
				return fmt.Errorf("creating LLM client: %w", err)
			}

			_, _ = fmt.Fprintln(out, "Reviewing the day...")
			review, err := llm.NewEvaluator(client).ReviewDay(ctx, tasks)
			if err != nil {
				return fmt.Errorf("reviewing day: %w", err)
			}

			_, _ = fmt.Fprintln(out)
			PrintInsightWrapped(out, review, min(termWidth(), 100))
			return nil
		},
	}

	cmd.Flags().StringVar(&modelFlag, "model", "", "LLM model to use (from config if not set)")
	return cmd
}
