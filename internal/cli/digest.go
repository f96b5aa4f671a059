package cli

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"policytrack/internal/logger"
	"policytrack/internal/model"
	"policytrack/internal/period"
	"policytrack/internal/service"
)

// NewDigestCommand creates the digest command.
func NewDigestCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "digest <week|month> <year> <n>",
		Short: "Build the change digest of a period from the document store",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDigest(rootOpts, cmd, args)
		},
	}
}

func runDigest(opts *RootOptions, cmd *cobra.Command, args []string) error {
	typ, year, num, err := parsePeriodArgs(args)
	if err != nil {
		return err
	}
	now, err := opts.now()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	repo, closeRepo, err := opts.OpenRepository(ctx)
	if err != nil {
		return err
	}
	defer closeRepo()

	svc := service.NewDigestService(repo, period.NewCalculator(opts.RetentionMonths),
		func() time.Time { return now }, nil, logger.Nop())
	d, err := svc.Build(ctx, typ, year, num)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			return WrapExitError(ExitFailure, "build digest", err)
		}
		return WrapExitError(ExitCommandError, "build digest", err)
	}

	return render(cmd.OutOrStdout(), opts.Format, d, func(w io.Writer) {
		writeDigestText(w, d)
	})
}

func writeDigestText(w io.Writer, d *model.Digest) {
	fmt.Fprintln(w, d.Period.Label)
	fmt.Fprintf(w, "%d new, %d updated, %d changes\n", d.NewPolicies, d.UpdatedPolicies, d.TotalChanges)
	for _, e := range d.Documents {
		title := e.DocumentName
		if e.ShortCode != "" {
			title = e.ShortCode + " " + title
		}
		if e.IsNew {
			title += " (new)"
		}
		fmt.Fprintf(w, "\n%s\n", title)
		for _, c := range e.Changes {
			fmt.Fprintf(w, "  %s  %-9s %s", c.CreatedAt.Format("2006-01-02"), c.Status, c.UploadedBy)
			if c.Summary != "" {
				fmt.Fprintf(w, ": %s", c.Summary)
			}
			fmt.Fprintln(w)
		}
	}
}
