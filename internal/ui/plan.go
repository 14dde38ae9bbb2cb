package ui

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/dayblocks/internal/llm"
	"github.com/javiermolinar/dayblocks/internal/planner"
)

const maxRetries = 3

func (a *App) planCmd() *cobra.Command {
	var (
		modelFlag string
		dryRun    bool
	)

	cmd := &cobra.Command{
		Use:   "plan [description]",
		Short: "Plan blocks from natural language input",
		Long: `Use AI to turn a description of your day into time blocks.

Proposals never overlap each other or the existing blocks. Invalid answers
are sent back to the model up to three times.

Examples:
  dayblocks plan "Two hours of writing, gym after 6pm, call mum"
  dayblocks plan "Focus on documentation" --dry-run

Interactive mode:
  After the AI proposes a schedule, you can:
  - [a]ccept: Save the blocks
  - [m]odify: Provide feedback to adjust the proposal
  - [c]ancel: Exit without saving`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.ensureStore(ctx); err != nil {
				return err
			}

			input := strings.Join(args, " ")
			out := cmd.OutOrStdout()

			llmCfg := a.config.LLM
			if modelFlag != "" {
				llmCfg.Model = modelFlag
			}

			client, err := llm.NewClient(llmCfg, a.log)
			if err != nil {
				return fmt.Errorf("creating LLM client: %w", err)
			}
			p := planner.New(client, a.config, a.store)

			_, _ = fmt.Fprintln(out, "Planning blocks...")
			result, err := p.PlanWithRetry(ctx, planner.PlanRequest{Input: input}, maxRetries)
			if err != nil {
				return fmt.Errorf("planning: %w", err)
			}

			// Interactive loop
			reader := bufio.NewReader(cmd.InOrStdin())
			for {
				displayPlanResult(out, result)

				if result.HasValidationErrors() {
					_, _ = fmt.Fprintln(out, "\nValidation errors (LLM retry limit reached):")
					for _, ve := range result.ValidationErrors {
						_, _ = fmt.Fprintf(out, "  - %s\n", ve.Message)
					}
				}

				if dryRun {
					_, _ = fmt.Fprintln(out, "\n(Dry run - blocks not saved)")
					return nil
				}

				_, _ = fmt.Fprint(out, "\n[a]ccept / [m]odify / [c]ancel: ")
				choice, err := reader.ReadString('\n')
				if err != nil {
					return fmt.Errorf("reading input: %w", err)
				}

				switch strings.TrimSpace(strings.ToLower(choice)) {
				case "a", "accept":
					if result.HasValidationErrors() {
						_, _ = fmt.Fprintln(out, "Cannot save: there are unresolved validation errors.")
						_, _ = fmt.Fprintln(out, "Please [m]odify the plan or [c]ancel.")
						continue
					}
					created, err := p.Save(ctx, result)
					if err != nil {
						return fmt.Errorf("saving blocks: %w", err)
					}
					_, _ = fmt.Fprintf(out, "\n%d blocks saved\n", len(created))
					return nil

				case "m", "modify":
					_, _ = fmt.Fprint(out, "What would you like to change? ")
					modification, err := reader.ReadString('\n')
					if err != nil {
						return fmt.Errorf("reading input: %w", err)
					}
					modification = strings.TrimSpace(modification)
					if modification == "" {
						_, _ = fmt.Fprintln(out, "No modification provided, showing current plan...")
						continue
					}

					_, _ = fmt.Fprintln(out, "\nReplanning...")
					result, err = p.ContinuePlanning(ctx, modification, maxRetries)
					if err != nil {
						return fmt.Errorf("replanning: %w", err)
					}

				case "c", "cancel":
					_, _ = fmt.Fprintln(out, "Planning cancelled.")
					return nil

				default:
					_, _ = fmt.Fprintln(out, "Invalid choice. Please enter 'a', 'm', or 'c'.")
				}
			}
		},
	}

	cmd.Flags().StringVar(&modelFlag, "model", "", "LLM model to use (from config if not set)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show planned blocks without saving")

	return cmd
}

// displayPlanResult shows the planning result to the user.
func displayPlanResult(out io.Writer, result *planner.PlanResult) {
	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintf(out, "Planning context: %s\n", result.Now.Format("Monday, January 2, 2006 15:04"))
	_, _ = fmt.Fprintf(out, "Available in window: %s\n", FormatDuration(result.AvailableMinutes))

	if len(result.Warnings) > 0 {
		_, _ = fmt.Fprintln(out, "\nWarnings:")
		for _, w := range result.Warnings {
			_, _ = fmt.Fprintf(out, "  ! %s\n", w)
		}
	}

	if len(result.Suggestions) > 0 {
		_, _ = fmt.Fprintln(out, "\nSuggestions:")
		for _, s := range result.Suggestions {
			_, _ = fmt.Fprintf(out, "  * %s\n", s)
		}
	}

	if result.TotalTasks() == 0 {
		_, _ = fmt.Fprintln(out, "\nNo blocks proposed.")
		return
	}

	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintln(out, strings.Repeat("-", 60))
	for _, t := range result.Tasks {
		_, _ = fmt.Fprintf(out, "  %s %s-%s  %s\n", swatch(t.Color), t.Start, t.End, t.Name)
	}
	_, _ = fmt.Fprintln(out, strings.Repeat("-", 60))
	_, _ = fmt.Fprintf(out, "Total: %d blocks\n", result.TotalTasks())
}
