package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/javiermolinar/dayblocks/internal/schedule"
	"github.com/javiermolinar/dayblocks/internal/task"
)

// scheduleFile is the YAML document written by export and read by import.
type scheduleFile struct {
	Blocks []*task.Task `yaml:"blocks"`
}

func (a *App) exportCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the day as YAML",
		Example: `  dayblocks export > today.yaml
  dayblocks export --file=today.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := a.ensureStore(ctx); err != nil {
				return err
			}
			tasks, err := a.store.List(ctx)
			if err != nil {
				return fmt.Errorf("listing tasks: %w", err)
			}

			if file == "" {
				return writeSchedule(cmd.OutOrStdout(), tasks)
			}

			path, err := resolvePath(file)
			if err != nil {
				return err
			}
			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("creating export file: %w", err)
			}
			if err := writeSchedule(f, tasks); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("closing export file: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Exported %d blocks to %s\n", len(tasks), path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Write to a file instead of stdout")
	return cmd
}

func (a *App) importCmd() *cobra.Command {
	var replace bool

	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import blocks from a YAML export",
		Long: `Import every block of a YAML file written by 'export'.

Either all blocks are imported or none. Without --replace the blocks must
not overlap the existing ones. With --replace the file is validated first,
then the day is cleared and the blocks inserted; a storage failure between
those two steps leaves the day empty.`,
		Example: `  dayblocks import today.yaml
  dayblocks import today.yaml --replace`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolvePath(args[0])
			if err != nil {
				return err
			}
			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("opening import file: %w", err)
			}
			defer func() { _ = f.Close() }()

			blocks, err := readSchedule(f, a.config.UI.DefaultColor)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if err := a.ensureStore(ctx); err != nil {
				return err
			}
			created, err := importBlocks(ctx, a.store, blocks, replace)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Imported %d blocks from %s\n", len(created), path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&replace, "replace", false, "Remove existing blocks first")
	return cmd
}

func writeSchedule(w io.Writer, tasks []*task.Task) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(scheduleFile{Blocks: task.SortLogical(tasks)}); err != nil {
		return fmt.Errorf("encoding schedule: %w", err)
	}
	return enc.Close()
}

// readSchedule decodes and validates an exported schedule.
// Blocks without a color get defaultColor.
func readSchedule(r io.Reader, defaultColor string) ([]*task.Task, error) {
	var doc scheduleFile
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decoding schedule: %w", err)
	}

	blocks := make([]*task.Task, 0, len(doc.Blocks))
	for i, b := range doc.Blocks {
		if b == nil {
			return nil, fmt.Errorf("block %d: empty entry", i+1)
		}
		color := b.Color
		if color == "" {
			color = defaultColor
		}
		t, err := task.New(b.Name, b.Start, b.End, color)
		if err != nil {
			return nil, fmt.Errorf("block %d (%q): %w", i+1, b.Name, err)
		}
		blocks = append(blocks, t)
	}

	// Reject files that overlap themselves before touching the store.
	if _, err := task.NewDayWithTasks(blocks); err != nil {
		return nil, err
	}
	return blocks, nil
}

func importBlocks(ctx context.Context, store *schedule.Store, blocks []*task.Task, replace bool) ([]*task.Task, error) {
	if replace {
		if err := store.DeleteAll(ctx); err != nil {
			return nil, fmt.Errorf("clearing blocks: %w", err)
		}
	}
	created, err := store.CreateMany(ctx, blocks)
	if err != nil {
		return nil, fmt.Errorf("importing blocks: %w", err)
	}
	return created, nil
}

func resolvePath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", fmt.Errorf("empty path")
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	return absPath, nil
}
