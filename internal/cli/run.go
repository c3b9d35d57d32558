package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/limbic/internal/agent"
	"github.com/roach88/limbic/internal/journal"
	"github.com/roach88/limbic/internal/render"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Profile  string
	Database string
	Interval time.Duration
	APIBase  string
	APIKey   string
	Model    string
	Simulate bool
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a living agent session",
		Long: `Run an agent session: the life loop ticks the engine every interval,
lines you type arrive as stimuli, and awareness events make the agent
speak unprompted.

Ctrl-D ends the session; Ctrl-C interrupts it. Without --api-key (or
OPENAI_API_KEY in the environment) replies come from the offline
simulator; --simulate forces that even when a key is present.

Examples:
  limbic run
  limbic run --profile orion --db ./limbic.db
  limbic run --profile ./my-persona.cue --interval 500ms --simulate`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAgent(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Profile, "profile", "aura", "builtin profile name or path to a .cue file")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite journal (empty disables journaling)")
	cmd.Flags().DurationVar(&opts.Interval, "interval", agent.DefaultInterval, "life loop tick interval")
	cmd.Flags().StringVar(&opts.APIBase, "api-base", "", "OpenAI-compatible API base URL")
	cmd.Flags().StringVar(&opts.APIKey, "api-key", "", "API key (defaults to $OPENAI_API_KEY)")
	cmd.Flags().StringVar(&opts.Model, "model", "gpt-4o-mini", "model used for replies")
	cmd.Flags().BoolVar(&opts.Simulate, "simulate", false, "use the offline generator even if a key is set")

	return cmd
}

func runAgent(opts *RunOptions, cmd *cobra.Command) error {
	// Configure logging based on verbose flag
	setupLogging(opts.Verbose)
	out := cmd.OutOrStdout()

	p, err := loadProfile(opts.Profile)
	if err != nil {
		return err
	}

	apiKey := opts.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	gen := buildGenerator(opts.APIBase, apiKey, opts.Model, opts.Simulate)

	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	agentOpts := []agent.Option{
		agent.WithInterval(opts.Interval),
		agent.WithConsumer(func(u agent.Utterance) {
			fmt.Fprintf(out, "\n%s (unprompted, %s): %s\n> ", p.Name, u.Snapshot.Reason, u.Text)
		}),
	}

	if opts.Database != "" {
		slog.Info("opening journal", "path", opts.Database)
		j, err := journal.Open(opts.Database)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open journal", err)
		}
		defer func() {
			if closeErr := j.Close(); closeErr != nil {
				slog.Error("error closing journal", "error", closeErr)
			}
		}()

		sessionID, err := j.BeginSession(ctx, p.Name, time.Now())
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to begin session", err)
		}
		slog.Info("journaling session", "session", sessionID)
		agentOpts = append(agentOpts, agent.WithRecorder(j, sessionID))
	}

	ag, err := agent.New(p, gen, nil, agentOpts...)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to configure agent", err)
	}

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan) // Prevent signal handler leak

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	runErr := make(chan error, 1)
	go func() { runErr <- ag.Run(ctx) }()

	lines := readLines(ctx, cmd.InOrStdin())

	slog.Info("agent running", "profile", p.Name, "interval", opts.Interval)
	fmt.Fprintf(out, "%s is awake. Type to talk, Ctrl-D to leave.\n", p.Name)
	fmt.Fprint(out, "> ")

	for {
		select {
		case <-ctx.Done():
			return drainAgent(runErr)

		case line, ok := <-lines:
			if !ok {
				// Input ended; the session is over.
				fmt.Fprintln(out)
				cancel()
				return drainAgent(runErr)
			}
			text := strings.TrimSpace(line)
			if text == "" {
				fmt.Fprint(out, "> ")
				continue
			}

			reply, snap, err := ag.Stimulate(ctx, text)
			if err != nil {
				slog.Error("reply failed", "error", err)
				fmt.Fprint(out, "> ")
				continue
			}
			fmt.Fprintf(out, "%s: %s\n", p.Name, reply)
			if opts.Verbose {
				fmt.Fprintf(out, "  %s\n", render.ProcessLine(snap))
			}
			fmt.Fprint(out, "> ")
		}
	}
}

// readLines pumps input lines into a channel so the command loop can select
// over stdin, the life loop, and cancellation at once. The channel closes
// when input ends.
func readLines(ctx context.Context, r io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return lines
}

// drainAgent waits for the life loop to stop. Cancellation is how every
// session ends, so context errors are not failures.
func drainAgent(runErr <-chan error) error {
	err := <-runErr
	if err != nil && err != context.Canceled && err != context.DeadlineExceeded {
		return WrapExitError(ExitFailure, "agent error", err)
	}
	slog.Info("session ended")
	return nil
}
