package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"policytrack/internal/model"
	"policytrack/internal/period"
)

// PeriodReport is a resolved period with its archive check.
type PeriodReport struct {
	model.DigestPeriod
	Archive period.Validation `json:"archive"`
}

// NewPeriodCommand creates the period command.
func NewPeriodCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "period <week|month> <year> <n>",
		Short: "Resolve a digest period",
		Long: `Resolve an ISO week or calendar month to its UTC bounds and display label,
and check it against the archive window.

Exits 1 when the period is valid but outside the archive window or in the future.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPeriod(rootOpts, cmd, args)
		},
	}
}

func runPeriod(opts *RootOptions, cmd *cobra.Command, args []string) error {
	typ, year, num, err := parsePeriodArgs(args)
	if err != nil {
		return err
	}
	now, err := opts.now()
	if err != nil {
		return err
	}

	p, err := period.Resolve(typ, year, num)
	if err != nil {
		return WrapExitError(ExitCommandError, "resolve period", err)
	}
	report := PeriodReport{
		DigestPeriod: p,
		Archive:      period.NewCalculator(opts.RetentionMonths).ValidateArchiveWindow(typ, year, num, now),
	}

	if err := render(cmd.OutOrStdout(), opts.Format, report, func(w io.Writer) {
		fmt.Fprintln(w, report.Label)
		fmt.Fprintf(w, "  start:   %s\n", report.Start.Format(timeLayout))
		fmt.Fprintf(w, "  end:     %s\n", report.End.Format(timeLayout))
		if report.Archive.Valid {
			fmt.Fprintln(w, "  archive: ok")
		} else {
			fmt.Fprintf(w, "  archive: %s\n", report.Archive.Reason)
		}
	}); err != nil {
		return err
	}

	if !report.Archive.Valid {
		return NewExitError(ExitFailure, report.Archive.Reason)
	}
	return nil
}

// NewPeriodsCommand creates the periods command.
func NewPeriodsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "periods <week|month>",
		Short: "List selectable digest periods, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			typ, err := period.ParseType(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "parse period type", err)
			}
			now, err := rootOpts.now()
			if err != nil {
				return err
			}
			ps, err := period.NewCalculator(rootOpts.RetentionMonths).Available(typ, now)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), rootOpts.Format, ps, func(w io.Writer) {
				for _, p := range ps {
					fmt.Fprintf(w, "%d-%02d\t%s\n", p.Year, p.Period, p.Label)
				}
			})
		},
	}
}

func parsePeriodArgs(args []string) (model.PeriodType, int, int, error) {
	typ, err := period.ParseType(args[0])
	if err != nil {
		return "", 0, 0, WrapExitError(ExitCommandError, "parse period type", err)
	}
	year, err := strconv.Atoi(args[1])
	if err != nil {
		return "", 0, 0, NewExitError(ExitCommandError, fmt.Sprintf("invalid year %q", args[1]))
	}
	num, err := strconv.Atoi(args[2])
	if err != nil {
		return "", 0, 0, NewExitError(ExitCommandError, fmt.Sprintf("invalid period %q", args[2]))
	}
	return typ, year, num, nil
}
