// Package cli implements policyctl, the operator command line for period math,
// ad-hoc text comparisons and digests.
package cli

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"policytrack/internal/config"
	"policytrack/internal/database"
	"policytrack/internal/logger"
	"policytrack/internal/repository"
	"policytrack/internal/repository/postgres"
)

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json", "yaml"}

// RepositoryOpener connects to the document store. The returned func releases it.
type RepositoryOpener func(ctx context.Context) (repository.DocumentRepository, func() error, error)

// RootOptions holds global flags and collaborators for all commands.
type RootOptions struct {
	Format          string
	At              string // RFC 3339 instant used as "now"; empty means the wall clock
	RetentionMonths int
	OpenRepository  RepositoryOpener
}

// now resolves --at.
func (o *RootOptions) now() (time.Time, error) {
	if o.At == "" {
		return time.Now().UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, o.At)
	if err != nil {
		return time.Time{}, NewExitError(ExitCommandError, fmt.Sprintf("invalid --at %q: want RFC 3339", o.At))
	}
	return t.UTC(), nil
}

// NewRootCommand creates the root command wired to the configured Postgres database.
func NewRootCommand() *cobra.Command {
	cfg := config.Load()
	return newRootCommand(&RootOptions{
		RetentionMonths: cfg.Digest.RetentionMonths,
		OpenRepository:  openPostgres(cfg),
	})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	if opts.RetentionMonths == 0 {
		opts.RetentionMonths = 12
	}

	cmd := &cobra.Command{
		Use:           "policyctl",
		Short:         "policyctl - policy document tooling",
		Long:          "Inspect digest periods, compare document texts and build period digests.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json|yaml)")
	cmd.PersistentFlags().StringVar(&opts.At, "at", "", "evaluate as of this RFC 3339 instant")
	cmd.PersistentFlags().IntVar(&opts.RetentionMonths, "retention-months", opts.RetentionMonths, "archive window in months")

	cmd.AddCommand(NewPeriodCommand(opts))
	cmd.AddCommand(NewPeriodsCommand(opts))
	cmd.AddCommand(NewDiffCommand(opts))
	cmd.AddCommand(NewDigestCommand(opts))

	return cmd
}

func openPostgres(cfg *config.AppConfig) RepositoryOpener {
	return func(ctx context.Context) (repository.DocumentRepository, func() error, error) {
		db, err := database.NewPostgres(ctx, cfg.Database, logger.Nop())
		if err != nil {
			return nil, nil, WrapExitError(ExitCommandError, "connect database", err)
		}
		return postgres.NewDocumentPostgres(db), db.Close, nil
	}
}
