package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"policytrack/internal/diff"
	"policytrack/internal/model"
)

// DiffOptions holds flags for the diff command.
type DiffOptions struct {
	Name       string
	MinChars   int
	MaxChanges int
}

// NewDiffCommand creates the diff command.
func NewDiffCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DiffOptions{}
	def := diff.DefaultOptions()

	cmd := &cobra.Command{
		Use:   "diff <old.txt> <new.txt>",
		Short: "List the significant changes between two plain-text versions",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(rootOpts, opts, cmd, args[0], args[1])
		},
	}

	cmd.Flags().StringVarP(&opts.Name, "name", "n", "", "document name used in change labels (default: new file name)")
	cmd.Flags().IntVar(&opts.MinChars, "min-chars", def.MinChars, "ignore spans shorter than this")
	cmd.Flags().IntVar(&opts.MaxChanges, "max-changes", def.MaxChanges, "keep at most this many changes")

	return cmd
}

func runDiff(rootOpts *RootOptions, opts *DiffOptions, cmd *cobra.Command, oldPath, newPath string) error {
	oldText, err := os.ReadFile(oldPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "read old text", err)
	}
	newText, err := os.ReadFile(newPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "read new text", err)
	}

	name := opts.Name
	if name == "" {
		name = filepath.Base(newPath)
	}

	o := diff.DefaultOptions()
	o.MinChars = opts.MinChars
	o.MaxChanges = opts.MaxChanges
	res := diff.New(o).Compare(string(oldText), string(newText), name)

	return render(cmd.OutOrStdout(), rootOpts.Format, res, func(w io.Writer) {
		fmt.Fprintf(w, "%d changes (%d added, %d removed)", res.Stats.Total, res.Stats.Added, res.Stats.Removed)
		if res.Stats.Truncated {
			fmt.Fprint(w, ", truncated")
		}
		fmt.Fprintln(w)
		for _, c := range res.Changes {
			fmt.Fprintf(w, "\n[%s] %s\n  %s\n", c.Type, c.Section, c.Summary)
			if c.Type == model.ChangeAdded {
				fmt.Fprintf(w, "  + %s\n", c.After)
			} else {
				fmt.Fprintf(w, "  - %s\n", c.Before)
			}
		}
	})
}
