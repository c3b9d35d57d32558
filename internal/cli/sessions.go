package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
)

// SessionsOptions holds flags for the sessions command.
type SessionsOptions struct {
	*RootOptions
	Database string
}

// SessionInfo is one listed session in JSON output.
type SessionInfo struct {
	ID        string    `json:"id"`
	Profile   string    `json:"profile"`
	StartedAt time.Time `json:"started_at"`
	Ticks     int       `json:"ticks"`
}

// NewSessionsCommand creates the sessions command.
func NewSessionsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SessionsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List recorded sessions in a journal",
		Long: `List every session in a journal database, oldest first, with its
profile and tick count.

Examples:
  limbic sessions --db limbic.db
  limbic sessions --db limbic.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSessions(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to the journal database")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runSessions(opts *SessionsOptions, cmd *cobra.Command) error {
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

	sessions, err := j.Sessions(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list sessions", err)
	}

	infos := make([]SessionInfo, len(sessions))
	for i, s := range sessions {
		infos[i] = SessionInfo{
			ID:        s.ID,
			Profile:   s.Profile,
			StartedAt: s.StartedAt,
			Ticks:     s.Ticks,
		}
	}

	if opts.Format == "json" {
		formatter := &OutputFormatter{
			Format:  opts.Format,
			Writer:  cmd.OutOrStdout(),
			Verbose: opts.Verbose,
		}
		return formatter.Success(infos)
	}

	w := cmd.OutOrStdout()
	if len(infos) == 0 {
		fmt.Fprintln(w, "No sessions recorded.")
		return nil
	}
	for _, info := range infos {
		fmt.Fprintf(w, "%s  %-8s  %s  %5d ticks\n",
			info.ID, info.Profile, info.StartedAt.Format(time.RFC3339), info.Ticks)
	}
	return nil
}
