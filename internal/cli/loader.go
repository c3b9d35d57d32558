package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/roach88/limbic/internal/bridge"
	"github.com/roach88/limbic/internal/journal"
	"github.com/roach88/limbic/internal/profile"
)

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric  = "E001" // Generic/unknown error
	ErrCodeNotFound = "E002" // Profile, session, or path not found

	// Profile errors
	ErrCodeProfileInvalid = "E101" // Profile failed to compile or validate

	// Journal errors
	ErrCodeJournal = "E201" // Journal open/read error

	// Verification errors
	ErrCodeVerifyFailed = "E301" // One or more scenarios failed
)

// loadProfile resolves a --profile flag value: the name of a builtin
// persona, or a path to a .cue profile file.
func loadProfile(ref string) (profile.Profile, error) {
	if strings.HasSuffix(ref, ".cue") {
		if _, err := os.Stat(ref); os.IsNotExist(err) {
			return profile.Profile{}, NewExitError(ExitNotFound, fmt.Sprintf("profile file not found: %s", ref))
		}
		p, err := profile.LoadFile(ref)
		if err != nil {
			return profile.Profile{}, WrapExitError(ExitCommandError, "failed to load profile", err)
		}
		return p, nil
	}

	p, ok := profile.Builtin(ref)
	if !ok {
		return profile.Profile{}, NewExitError(ExitNotFound,
			fmt.Sprintf("unknown profile %q (builtins: %s)", ref, strings.Join(builtinNames(), ", ")))
	}
	return p, nil
}

// builtinNames returns the names of the compiled-in profiles.
func builtinNames() []string {
	builtins := profile.Builtins()
	names := make([]string, len(builtins))
	for i, p := range builtins {
		names[i] = p.Name
	}
	return names
}

// buildGenerator picks the reply generator. Missing credentials degrade to
// the offline simulator rather than failing: the engine must always run.
func buildGenerator(apiBase, apiKey, model string, simulate bool) bridge.Generator {
	if simulate || apiKey == "" {
		return bridge.Simulated{}
	}
	return bridge.NewOpenAIGenerator(apiBase, apiKey, model)
}

// openJournal opens an existing journal database. Unlike journal.Open it
// refuses to create one: a read command pointed at a missing path is a
// user error, not a reason to leave an empty database behind.
func openJournal(path string) (*journal.Journal, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, NewExitError(ExitNotFound, fmt.Sprintf("journal not found: %s", path))
	}
	j, err := journal.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	return j, nil
}
