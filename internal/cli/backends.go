package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/synth/internal/synth"
)

// BackendInfo describes one registered backend.
type BackendInfo struct {
	Tag         string `json:"tag"`
	DefaultFor  string `json:"default_for,omitempty"`
	Description string `json:"description"`
}

// BackendsResult is the backends command payload.
type BackendsResult struct {
	Backends []BackendInfo `json:"backends"`
	// Pinned is the backend forced by configuration, empty for automatic.
	Pinned string `json:"pinned,omitempty"`
}

var backendNotes = map[synth.BackendTag]struct{ defaultFor, description string }{
	synth.BackendSubclass: {
		defaultFor:  "classes",
		description: "extends the base class; overrides become trampolines, properties become fields with accessors",
	},
	synth.BackendForwarding: {
		defaultFor:  "interfaces",
		description: "routes every call through one proxy trap; class bases are wrapped as delegates",
	},
}

// NewBackendsCommand creates the backends command.
func NewBackendsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "backends",
		Short: "List synthesis backends",
		Long: `List the registered synthesis backends and which base types pick
each one when no backend is pinned by --backend or the backend config key.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBackends(rootOpts, cmd)
		},
	}
}

func runBackends(opts *RootOptions, cmd *cobra.Command) error {
	out := NewOutputFormatter(cmd, opts)

	result := BackendsResult{Pinned: opts.settings().BackendTag().String()}
	for _, tag := range synth.Backends() {
		note := backendNotes[tag]
		result.Backends = append(result.Backends, BackendInfo{
			Tag:         tag.String(),
			DefaultFor:  note.defaultFor,
			Description: note.description,
		})
	}

	if out.JSON() {
		return out.Success(result)
	}

	w := out.Out
	for _, b := range result.Backends {
		fmt.Fprintf(w, "%-10s  %s\n", b.Tag, b.Description)
		if b.DefaultFor != "" {
			fmt.Fprintf(w, "%-10s  default for %s\n", "", b.DefaultFor)
		}
	}
	if result.Pinned != "" {
		fmt.Fprintf(w, "\npinned by config: %s\n", result.Pinned)
	}
	return nil
}
