package cli

import (
	"context"
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/limbic/internal/journal"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	Database string
	Session  string
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a recorded session as JSON Lines",
		Long: `Write every recorded tick of a session to stdout, one JSON object
per line, oldest first. The output is JSON Lines regardless of
--format, so it can be piped straight into jq or similar tools.

Examples:
  limbic export --db limbic.db
  limbic export --db limbic.db --session 01J9ZK3N4Q5R6S7T8V9W0X1Y2Z`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to the journal database")
	cmd.Flags().StringVar(&opts.Session, "session", "", "session ID (defaults to the most recent)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runExport(opts *ExportOptions, cmd *cobra.Command) error {
	setupLogging(opts.Verbose)

	j, err := openJournal(opts.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := j.Close(); err != nil {
			slog.Error("failed to close journal", "error", err)
		}
	}()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if err := j.Export(ctx, cmd.OutOrStdout(), opts.Session); err != nil {
		if errors.Is(err, journal.ErrSessionNotFound) {
			return WrapExitError(ExitNotFound, "session not found", err)
		}
		return WrapExitError(ExitCommandError, "export failed", err)
	}
	return nil
}
