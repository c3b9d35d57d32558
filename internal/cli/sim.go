package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/limbic/internal/core"
	"github.com/roach88/limbic/internal/render"
)

// Sim modes select which line view the simulator prints.
const (
	ModeField   = "field"
	ModeProcess = "process"
)

// SimOptions holds flags for the sim command.
type SimOptions struct {
	*RootOptions
	Profile  string
	Mode     string
	Interval time.Duration
	Ticks    int
	Seed     int64
}

// NewSimCommand creates the sim command.
func NewSimCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SimOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sim",
		Short: "Watch the engine tick in the terminal",
		Long: `Render the engine's state as one line per tick, with no language
model attached.

Field mode shows the rhythm: pulse bar, attention level, echo count.
Process mode shows the awareness computation: internal vs external
state, direction momentum, classification.

Standard input feeds the engine while it runs: an empty line is a pure
attention pulse, any other line maps to a signal through the profile's
lexicon. End of input only stops the feed; Ctrl-C (or --ticks) stops
the simulation.

Examples:
  limbic sim
  limbic sim --profile orion --mode process
  limbic sim --ticks 30 --interval 100ms --seed 7`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSim(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Profile, "profile", "aura", "builtin profile name or path to a .cue file")
	cmd.Flags().StringVar(&opts.Mode, "mode", ModeField, "line view (field|process)")
	cmd.Flags().DurationVar(&opts.Interval, "interval", time.Second, "tick interval")
	cmd.Flags().IntVar(&opts.Ticks, "ticks", 0, "stop after this many ticks (0 runs until interrupted)")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 0, "randomness seed (0 seeds from the clock)")

	return cmd
}

func runSim(opts *SimOptions, cmd *cobra.Command) error {
	setupLogging(opts.Verbose)

	var line func(core.Snapshot) string
	switch opts.Mode {
	case ModeField:
		line = render.FieldLine
	case ModeProcess:
		line = render.ProcessLine
	default:
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid mode %q: must be field or process", opts.Mode))
	}

	p, err := loadProfile(opts.Profile)
	if err != nil {
		return err
	}

	var coreOpts []core.Option
	if opts.Seed != 0 {
		coreOpts = append(coreOpts, core.WithSeed(opts.Seed))
	}
	eng, err := core.New(p.CoreConfig(), coreOpts...)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to configure engine", err)
	}
	mapper := p.Mapper()

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	lines := readLines(ctx, cmd.InOrStdin())

	out := cmd.OutOrStdout()
	ticker := time.NewTicker(opts.Interval)
	defer ticker.Stop()

	rendered := 0
	emit := func(in core.Input) bool {
		s := eng.Tick(time.Now(), in)
		fmt.Fprintln(out, line(s))
		rendered++
		return opts.Ticks == 0 || rendered < opts.Ticks
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case text, ok := <-lines:
			if !ok {
				// Input ended; keep ticking on the clock alone.
				lines = nil
				continue
			}
			in := core.Input{Attention: true}
			if t := strings.TrimSpace(text); t != "" {
				in.Signal = mapper.Map(t)
			}
			if !emit(in) {
				return nil
			}

		case <-ticker.C:
			if !emit(core.Input{}) {
				return nil
			}
		}
	}
}
