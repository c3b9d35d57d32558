package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/limbic/internal/profile"
)

// ProfilesOptions holds flags for the profiles command.
type ProfilesOptions struct {
	*RootOptions
	Dir string
}

// ProfileInfo is one listed profile in JSON output.
type ProfileInfo struct {
	Name            string  `json:"name"`
	Voice           string  `json:"voice"`
	BaseTemperature float64 `json:"base_temperature"`
	Source          string  `json:"source"`
	Description     string  `json:"description,omitempty"`
}

// NewProfilesCommand creates the profiles command.
func NewProfilesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ProfilesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "List available personality profiles",
		Long: `List the builtin profiles, plus any loaded from a directory of
.cue files when --dir is given.

Examples:
  limbic profiles
  limbic profiles --dir ./profiles --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProfiles(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Dir, "dir", "", "directory of .cue profile files to include")

	return cmd
}

func runProfiles(opts *ProfilesOptions, cmd *cobra.Command) error {
	setupLogging(opts.Verbose)

	var infos []ProfileInfo
	for _, p := range profile.Builtins() {
		infos = append(infos, profileInfo(p, "builtin"))
	}

	if opts.Dir != "" {
		if _, err := os.Stat(opts.Dir); os.IsNotExist(err) {
			return NewExitError(ExitNotFound, fmt.Sprintf("profile directory not found: %s", opts.Dir))
		}
		loaded, err := profile.LoadDir(opts.Dir)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load profiles", err)
		}
		for _, p := range loaded {
			infos = append(infos, profileInfo(p, opts.Dir))
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
	for _, info := range infos {
		fmt.Fprintf(w, "%-10s %-7s temp=%.1f  %s\n",
			info.Name, info.Voice, info.BaseTemperature, info.Description)
	}
	return nil
}

func profileInfo(p profile.Profile, source string) ProfileInfo {
	return ProfileInfo{
		Name:            p.Name,
		Voice:           string(p.Voice),
		BaseTemperature: p.BaseTemperature,
		Source:          source,
		Description:     p.Description,
	}
}
