package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/limbic/internal/core"
	"github.com/roach88/limbic/internal/profile"
)

// Scenario defines a conformance test scenario.
// Scenarios validate engine behavior by driving a scripted sequence of
// ticks and asserting on the resulting snapshots.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Profile selects the engine configuration. A value ending in ".cue"
	// is loaded as a profile file (relative paths resolve against the
	// scenario file location); anything else must be a builtin name.
	Profile string `yaml:"profile"`

	// Config optionally overrides individual knobs of the profile's
	// engine configuration.
	Config *ConfigPatch `yaml:"config,omitempty"`

	// Noise selects the deterministic randomness source for the run.
	// An empty spec pins every draw to the quiet midpoint 0.5.
	Noise NoiseSpec `yaml:"noise,omitempty"`

	// Steps contains the tick script. Each step runs one or more ticks.
	Steps []Step `yaml:"steps"`

	// Final validates the last snapshot of the whole run.
	Final *ExpectClause `yaml:"final,omitempty"`
}

// Step represents one scripted tick, or a run of identical ticks.
type Step struct {
	// Dt is the simulated time between ticks, as a duration string.
	// Defaults to "1s". Negative values are allowed and exercise the
	// engine's non-monotonic clock handling.
	Dt string `yaml:"dt,omitempty"`

	// Signal feeds a numeric stimulus directly into the tick.
	Signal *float64 `yaml:"signal,omitempty"`

	// Text feeds a textual stimulus, mapped through the profile's
	// lexicon. Mutually exclusive with Signal.
	Text string `yaml:"text,omitempty"`

	// Attention overrides the attended flag. When unset, a step with a
	// stimulus is attended and an empty step is not.
	Attention *bool `yaml:"attention,omitempty"`

	// Repeat runs the step this many times. Zero means once.
	Repeat int `yaml:"repeat,omitempty"`

	// Expect validates the snapshot of the step's last repeat.
	// If nil, the step only advances state.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// NoiseSpec selects the deterministic randomness source for a run.
// Constant and Tape are mutually exclusive.
type NoiseSpec struct {
	// Constant pins every draw to one value in [0, 1).
	Constant *float64 `yaml:"constant,omitempty"`

	// Tape loops a scripted sequence of draws in [0, 1).
	Tape []float64 `yaml:"tape,omitempty"`
}

// ConfigPatch overrides individual engine knobs on top of a profile's
// configuration. Unset fields keep the profile value.
type ConfigPatch struct {
	BaseFrequency               *float64 `yaml:"base_frequency,omitempty"`
	NoiseAmplitude              *float64 `yaml:"noise_amplitude,omitempty"`
	InternalVariability         *float64 `yaml:"internal_variability,omitempty"`
	SpontaneousEventProbability *float64 `yaml:"spontaneous_event_probability,omitempty"`
	RhythmDriftProbability      *float64 `yaml:"rhythm_drift_probability,omitempty"`

	// EchoLifetime is in seconds, matching the profile schema.
	EchoLifetime *float64 `yaml:"echo_lifetime,omitempty"`

	AwarenessThreshold *float64 `yaml:"awareness_threshold,omitempty"`
	SignalLimit        *float64 `yaml:"signal_limit,omitempty"`
}

// Apply returns cfg with the patch's set fields substituted.
func (p *ConfigPatch) Apply(cfg core.Config) core.Config {
	if p.BaseFrequency != nil {
		cfg.BaseFrequency = *p.BaseFrequency
	}
	if p.NoiseAmplitude != nil {
		cfg.NoiseAmplitude = *p.NoiseAmplitude
	}
	if p.InternalVariability != nil {
		cfg.InternalVariability = *p.InternalVariability
	}
	if p.SpontaneousEventProbability != nil {
		cfg.SpontaneousEventProbability = *p.SpontaneousEventProbability
	}
	if p.RhythmDriftProbability != nil {
		cfg.RhythmDriftProbability = *p.RhythmDriftProbability
	}
	if p.EchoLifetime != nil {
		cfg.EchoLifetime = time.Duration(*p.EchoLifetime * float64(time.Second))
	}
	if p.AwarenessThreshold != nil {
		cfg.AwarenessThreshold = *p.AwarenessThreshold
	}
	if p.SignalLimit != nil {
		cfg.SignalLimit = *p.SignalLimit
	}
	return cfg
}

// ExpectClause specifies expected snapshot values. All three maps address
// fields by their wire names; every named field must hold for the clause
// to pass.
type ExpectClause struct {
	// Equals maps fields to exact expected values. Float fields compare
	// within a small tolerance.
	Equals map[string]interface{} `yaml:"equals,omitempty"`

	// Min maps numeric fields to inclusive lower bounds.
	Min map[string]float64 `yaml:"min,omitempty"`

	// Max maps numeric fields to inclusive upper bounds.
	Max map[string]float64 `yaml:"max,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed, contains
// unknown fields (typos), or is missing required fields. A relative
// profile file path resolves against the scenario file's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Parse YAML with strict field validation (catches typos like "step:" vs "steps:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Resolve a file-based profile relative to the scenario location
	// BEFORE validation, which checks existence.
	if isProfilePath(scenario.Profile) && !filepath.IsAbs(scenario.Profile) {
		scenario.Profile = filepath.Join(filepath.Dir(path), scenario.Profile)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadDir loads every scenario file in dir, in lexical filename order.
// Files must use a .yaml or .yml extension; other files are ignored.
// Scenario names must be unique across the directory.
func LoadDir(dir string) ([]*Scenario, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("stat scenario dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scenario path %s is not a directory", dir)
	}

	files, err := findYAMLFiles(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no scenario files found in %s", dir)
	}

	scenarios := make([]*Scenario, 0, len(files))
	seen := make(map[string]string)
	for _, path := range files {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, err
		}
		if prior, dup := seen[s.Name]; dup {
			return nil, fmt.Errorf("duplicate scenario name %q in %s (already defined in %s)", s.Name, path, prior)
		}
		seen[s.Name] = path
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// findYAMLFiles walks dir collecting scenario files in lexical order.
func findYAMLFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		switch filepath.Ext(path) {
		case ".yaml", ".yml":
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk scenario dir: %w", err)
	}
	sort.Strings(files)
	return files, nil
}

// isProfilePath reports whether a profile reference names a file rather
// than a builtin.
func isProfilePath(ref string) bool {
	return strings.HasSuffix(ref, ".cue")
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Profile == "" {
		return fmt.Errorf("profile is required")
	}
	if isProfilePath(s.Profile) {
		if _, err := os.Stat(s.Profile); os.IsNotExist(err) {
			return fmt.Errorf("profile file not found: %s", s.Profile)
		}
	} else if _, ok := profile.Builtin(s.Profile); !ok {
		return fmt.Errorf("unknown builtin profile %q", s.Profile)
	}

	if err := validateNoise(s.Noise); err != nil {
		return err
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	expects := 0
	for i, step := range s.Steps {
		if step.Dt != "" {
			if _, err := time.ParseDuration(step.Dt); err != nil {
				return fmt.Errorf("steps[%d]: invalid dt %q: %w", i, step.Dt, err)
			}
		}
		if step.Text != "" && step.Signal != nil {
			return fmt.Errorf("steps[%d]: signal and text are mutually exclusive", i)
		}
		if step.Repeat < 0 {
			return fmt.Errorf("steps[%d]: repeat must be non-negative", i)
		}
		if step.Expect != nil {
			expects++
			if err := validateExpect(fmt.Sprintf("steps[%d].expect", i), step.Expect); err != nil {
				return err
			}
		}
	}

	if s.Final != nil {
		expects++
		if err := validateExpect("final", s.Final); err != nil {
			return err
		}
	}
	if expects == 0 {
		return fmt.Errorf("at least one expect clause or a final clause is required")
	}

	return nil
}

// validateNoise checks the randomness spec. Draws must stay in [0, 1),
// the half-open range a Source produces.
func validateNoise(n NoiseSpec) error {
	if n.Constant != nil && len(n.Tape) > 0 {
		return fmt.Errorf("noise: constant and tape are mutually exclusive")
	}
	if n.Constant != nil && (*n.Constant < 0 || *n.Constant >= 1) {
		return fmt.Errorf("noise: constant must be in [0, 1), got %v", *n.Constant)
	}
	for i, v := range n.Tape {
		if v < 0 || v >= 1 {
			return fmt.Errorf("noise: tape[%d] must be in [0, 1), got %v", i, v)
		}
	}
	return nil
}

// validateExpect checks one expect clause: every named field must exist,
// bounds must address numeric fields, and equals values must match the
// field's type.
func validateExpect(where string, c *ExpectClause) error {
	if len(c.Equals) == 0 && len(c.Min) == 0 && len(c.Max) == 0 {
		return fmt.Errorf("%s: at least one of equals, min, max is required", where)
	}

	for _, key := range sortedExpectKeys(c.Equals) {
		kind, ok := snapshotFields[key]
		if !ok {
			return fmt.Errorf("%s.equals: unknown snapshot field %q", where, key)
		}
		if err := checkEqualsValue(kind, c.Equals[key]); err != nil {
			return fmt.Errorf("%s.equals: field %q %w", where, key, err)
		}
	}
	if err := validateBoundFields(where, "min", c.Min); err != nil {
		return err
	}
	if err := validateBoundFields(where, "max", c.Max); err != nil {
		return err
	}
	return nil
}

// validateBoundFields checks that a min or max map addresses only
// numeric snapshot fields.
func validateBoundFields(where, label string, fields map[string]float64) error {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		kind, ok := snapshotFields[key]
		if !ok {
			return fmt.Errorf("%s.%s: unknown snapshot field %q", where, label, key)
		}
		if kind == kindBool || kind == kindString {
			return fmt.Errorf("%s.%s: field %q is not numeric", where, label, key)
		}
	}
	return nil
}

// checkEqualsValue verifies a YAML-decoded expected value is comparable
// to the field it addresses.
func checkEqualsValue(kind fieldKind, v interface{}) error {
	switch kind {
	case kindFloat, kindCount:
		switch v.(type) {
		case int, int64, float64:
			return nil
		}
		return fmt.Errorf("expects a numeric value, got %T", v)
	case kindBool:
		if _, ok := v.(bool); !ok {
			return fmt.Errorf("expects a boolean value, got %T", v)
		}
	case kindString:
		if _, ok := v.(string); !ok {
			return fmt.Errorf("expects a string value, got %T", v)
		}
	}
	return nil
}

// sortedExpectKeys orders an equals map for deterministic reporting.
func sortedExpectKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
