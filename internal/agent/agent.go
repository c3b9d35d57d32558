// Package agent runs the engine as a living process. A background life loop
// ticks the core once per interval whether or not anyone is talking to it;
// user input arrives through the stimulus path; and when a tick crosses the
// awareness threshold the agent speaks without being asked.
package agent

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/roach88/limbic/internal/bridge"
	"github.com/roach88/limbic/internal/core"
	"github.com/roach88/limbic/internal/profile"
	"github.com/roach88/limbic/internal/signal"
)

const (
	// DefaultInterval is the life loop heartbeat.
	DefaultInterval = time.Second
	// DefaultAttentionWindow is how long after user contact the life loop
	// keeps ticking with attention.
	DefaultAttentionWindow = 10 * time.Second

	// maxHistory bounds the conversation history sent to the generator,
	// counted in messages. Oldest turns are dropped first.
	maxHistory = 64

	// awarenessBuffer is the queue between the life loop and the speaker
	// goroutine. When it is full, awareness events are logged and dropped
	// rather than stalling the heartbeat.
	awarenessBuffer = 4
)

// Recorder persists snapshots. Implementations must be safe for concurrent
// use; the agent appends from both the life loop and the stimulus path.
type Recorder interface {
	Append(ctx context.Context, sessionID string, s core.Snapshot) error
}

// Utterance is one self-initiated thing the agent said, with the snapshot
// that triggered it.
type Utterance struct {
	Text     string
	Snapshot core.Snapshot
}

// Agent wires a core engine to a sentiment mapper, a bridge, and a reply
// generator.
//
// Thread-safety: Run and Stimulate may be used concurrently. The core
// serializes ticks internally; the agent's own mutex guards conversation
// history and the contact timestamp.
type Agent struct {
	core      *core.Core
	mapper    signal.Mapper
	bridge    *bridge.Bridge
	generator bridge.Generator

	recorder  Recorder
	sessionID string

	interval        time.Duration
	attentionWindow time.Duration
	now             func() time.Time
	consumer        func(Utterance)

	mu          sync.Mutex
	history     []bridge.Message
	lastContact time.Time

	awareness chan core.Snapshot
}

// Option configures an Agent.
type Option func(*Agent)

// WithInterval sets the life loop heartbeat.
func WithInterval(d time.Duration) Option {
	return func(a *Agent) { a.interval = d }
}

// WithAttentionWindow sets how long after user contact the life loop keeps
// ticking with attention.
func WithAttentionWindow(d time.Duration) Option {
	return func(a *Agent) { a.attentionWindow = d }
}

// WithClock replaces the wall clock. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(a *Agent) { a.now = now }
}

// WithRecorder persists every tick's snapshot under the given session.
// Recorder failures are logged and never interrupt ticking.
func WithRecorder(r Recorder, sessionID string) Option {
	return func(a *Agent) {
		a.recorder = r
		a.sessionID = sessionID
	}
}

// WithConsumer registers a callback for self-initiated speech. Replies to
// Stimulate are returned directly and do not pass through the consumer.
func WithConsumer(fn func(Utterance)) Option {
	return func(a *Agent) { a.consumer = fn }
}

// New builds an agent for a profile. coreOpts are forwarded to the engine,
// which lets tests inject a scripted randomness source.
func New(p profile.Profile, gen bridge.Generator, coreOpts []core.Option, opts ...Option) (*Agent, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	c, err := core.New(p.CoreConfig(), coreOpts...)
	if err != nil {
		return nil, err
	}

	a := &Agent{
		core:            c,
		mapper:          p.Mapper(),
		bridge:          bridge.FromProfile(p),
		generator:       gen,
		interval:        DefaultInterval,
		attentionWindow: DefaultAttentionWindow,
		now:             time.Now,
		awareness:       make(chan core.Snapshot, awarenessBuffer),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Run drives the life loop until the context is cancelled. Every interval it
// ticks the core with no signal, records the snapshot, and hands acts of
// awareness to a dedicated speaker goroutine so generation latency never
// stalls the heartbeat.
//
// ERROR HANDLING: recorder and generator failures are logged and the loop
// continues. The internal state must keep evolving even when the storage or
// language layer is down.
func (a *Agent) Run(ctx context.Context) error {
	slog.Info("agent starting", "interval", a.interval)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		a.speaker(ctx)
	}()

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("agent stopping: context cancelled")
			close(a.awareness)
			wg.Wait()
			return ctx.Err()

		case <-ticker.C:
			a.lifeTick(ctx)
		}
	}
}

// lifeTick advances the core one autonomous step.
func (a *Agent) lifeTick(ctx context.Context) {
	now := a.now()
	s := a.core.Tick(now, core.Input{Attention: a.recentContact(now)})
	a.record(ctx, s)

	slog.Debug("tick",
		"tick", s.Tick,
		"pulse", s.Pulse,
		"internal", s.InternalState,
		"attention", s.AttentionLevel,
	)

	if !s.ActOfAwareness {
		return
	}
	select {
	case a.awareness <- s:
	default:
		slog.Warn("awareness event dropped, speaker busy",
			"tick", s.Tick,
			"reason", string(s.Reason),
		)
	}
}

// speaker turns awareness events into speech, one at a time.
func (a *Agent) speaker(ctx context.Context) {
	for s := range a.awareness {
		a.speak(ctx, s)
	}
}

func (a *Agent) speak(ctx context.Context, s core.Snapshot) {
	req := bridge.Request{
		System:      a.bridge.SystemPrompt(),
		History:     a.historyCopy(),
		Note:        a.bridge.AwarenessNote(s),
		Temperature: a.bridge.Temperature(s),
	}

	reply, err := a.generator.Generate(ctx, req)
	if err != nil {
		slog.Error("self-initiated speech failed",
			"tick", s.Tick,
			"reason", string(s.Reason),
			"error", err,
		)
		return
	}

	slog.Info("act of awareness",
		"tick", s.Tick,
		"reason", string(s.Reason),
		"acts_total", s.ActsOfAwarenessTotal,
	)

	a.appendHistory(bridge.Message{Role: bridge.RoleAssistant, Content: reply})
	if a.consumer != nil {
		a.consumer(Utterance{Text: reply, Snapshot: s})
	}
}

// Stimulate feeds user text into the core and returns the generated reply
// along with the snapshot of the tick that absorbed the input. The text is
// mapped to a signal, the tick runs with attention, and the reply is
// generated under the resulting state.
func (a *Agent) Stimulate(ctx context.Context, text string) (string, core.Snapshot, error) {
	now := a.now()
	sig := a.mapper.Map(text)
	s := a.core.Tick(now, core.Input{Signal: sig, Attention: true})
	a.markContact(now)
	a.record(ctx, s)

	req := bridge.Request{
		System:      a.bridge.SystemPrompt(),
		History:     a.historyCopy(),
		Note:        a.bridge.Note(s),
		UserInput:   text,
		Temperature: a.bridge.Temperature(s),
	}

	reply, err := a.generator.Generate(ctx, req)
	if err != nil {
		return "", s, fmt.Errorf("generate reply: %w", err)
	}

	a.appendHistory(
		bridge.Message{Role: bridge.RoleUser, Content: text},
		bridge.Message{Role: bridge.RoleAssistant, Content: reply},
	)
	return reply, s, nil
}

// Snapshot returns the most recent tick's snapshot without advancing the
// engine.
func (a *Agent) Snapshot() core.Snapshot {
	return a.core.Peek()
}

func (a *Agent) record(ctx context.Context, s core.Snapshot) {
	if a.recorder == nil {
		return
	}
	if err := a.recorder.Append(ctx, a.sessionID, s); err != nil {
		slog.Error("journal append failed", "tick", s.Tick, "error", err)
	}
}

func (a *Agent) recentContact(now time.Time) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.lastContact.IsZero() {
		return false
	}
	return now.Sub(a.lastContact) < a.attentionWindow
}

func (a *Agent) markContact(now time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastContact = now
}

func (a *Agent) historyCopy() []bridge.Message {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]bridge.Message, len(a.history))
	copy(out, a.history)
	return out
}

func (a *Agent) appendHistory(msgs ...bridge.Message) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.history = append(a.history, msgs...)
	if len(a.history) > maxHistory {
		a.history = a.history[len(a.history)-maxHistory:]
	}
}
