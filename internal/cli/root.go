package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/synth/internal/config"
	"github.com/roach88/synth/internal/logger"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    int    // -v count
	Format     string // "json" | "text"
	ConfigPath string

	// Config is resolved by the root command before any subcommand runs.
	Config *config.Config
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the synth CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "synth",
		Short: "synth - dynamic type and proxy synthesis",
		Long: `Synthesize subclasses, forwarding proxies and property beans from
declared base types, with a shared cache keyed on the structural request.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			cfg, err := config.Load(opts.ConfigPath)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to load config", err)
			}
			opts.Config = cfg
			return logger.Initialize(cfg.Log.JSON, max(opts.Verbose, cfg.Log.Verbose))
		},
	}

	cmd.PersistentFlags().CountVarP(&opts.Verbose, "verbose", "v", "verbose output (repeat for debug)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default ./synth.toml)")

	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewDescribeCommand(opts))
	cmd.AddCommand(NewCatalogCommand(opts))
	cmd.AddCommand(NewBackendsCommand(opts))

	return cmd
}

// settings returns the resolved config, or defaults when a subcommand runs
// without the root (as in tests).
func (o *RootOptions) settings() *config.Config {
	if o.Config != nil {
		return o.Config
	}
	cfg, err := config.FromViper(config.New())
	if err != nil {
		return &config.Config{Backend: "auto"}
	}
	return cfg
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
