package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/synth/internal/harness"
	"github.com/roach88/synth/internal/ir"
	"github.com/roach88/synth/internal/synth"
)

// DescribeOptions holds flags for the describe command.
type DescribeOptions struct {
	*RootOptions
	Backend string
}

// TypeDescription is the layout of one synthesized type.
type TypeDescription struct {
	Alias        string              `json:"alias"`
	Name         string              `json:"name,omitempty"`
	Base         string              `json:"base"`
	Backend      string              `json:"backend,omitempty"`
	Hash         string              `json:"hash,omitempty"`
	Interfaces   []string            `json:"interfaces,omitempty"`
	Properties   []string            `json:"properties,omitempty"`
	Constructors []string            `json:"constructors,omitempty"`
	Members      []MemberDescription `json:"members,omitempty"`
	Error        string              `json:"error,omitempty"`
}

// MemberDescription is one dispatch-table entry.
type MemberDescription struct {
	Signature  string `json:"signature"`
	Origin     string `json:"origin"`
	DeclaredIn string `json:"declared_in"`
}

// NewDescribeCommand creates the describe command.
func NewDescribeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DescribeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "describe <scenario>",
		Short: "Print the layout of a scenario's synthesized types",
		Long: `Build the types declared by a scenario and print each one's
dispatch table: member signatures, where each body comes from, and the
constructors the type exposes.

Types whose build fails are listed with their error code. The scenario's
flow and assertions are run but not reported; use "synth test" for that.

Examples:
  synth describe scenarios/bean_properties.cue
  synth describe scenarios/greeter.yaml --backend forwarding --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDescribe(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Backend, "backend", "", "default backend: auto, subclass or forwarding")

	return cmd
}

func runDescribe(opts *DescribeOptions, path string, cmd *cobra.Command) error {
	out := NewOutputFormatter(cmd, opts.RootOptions)

	scenario, err := harness.LoadScenario(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}

	var runOpts []harness.Option
	if opts.Backend != "" {
		runOpts = append(runOpts, harness.WithDefaultBackend(opts.Backend))
	}
	result, err := harness.Run(scenario, runOpts...)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to run scenario", err)
	}

	descs := describeTypes(scenario, result)
	if out.JSON() {
		return out.Success(descs)
	}
	outputDescribeText(out, descs)
	return nil
}

// describeTypes lists the scenario's types in declaration order.
func describeTypes(scenario *harness.Scenario, result *harness.Result) []TypeDescription {
	buildErrors := make(map[string]string)
	for _, e := range result.Trace {
		if e.Op == harness.OpBuild && e.Failed() {
			buildErrors[strings.TrimPrefix(e.Action, "build:")] = e.Error
		}
	}

	descs := make([]TypeDescription, 0, len(scenario.Types))
	for _, def := range scenario.Types {
		t, ok := result.Types[def.Alias]
		if !ok {
			descs = append(descs, TypeDescription{Alias: def.Alias, Base: def.Base, Error: buildErrors[def.Alias]})
			continue
		}
		descs = append(descs, describeType(def.Alias, t))
	}
	return descs
}

func describeType(alias string, t *synth.Type) TypeDescription {
	layout := t.Describe()
	d := TypeDescription{
		Alias:   alias,
		Name:    layout.Name.String(),
		Base:    layout.Base.String(),
		Backend: layout.Backend.String(),
		Hash:    layout.Hash,
	}
	for _, iface := range layout.Interfaces {
		d.Interfaces = append(d.Interfaces, iface.String())
	}
	for _, p := range layout.Properties {
		d.Properties = append(d.Properties, fmt.Sprintf("%s %s", p.Name, p.Type))
	}
	for _, params := range layout.Constructors {
		d.Constructors = append(d.Constructors, formatParams(params))
	}
	for _, m := range layout.Members {
		d.Members = append(d.Members, MemberDescription{
			Signature:  m.Signature.String(),
			Origin:     string(m.Origin),
			DeclaredIn: m.DeclaredIn.String(),
		})
	}
	return d
}

func formatParams(params []ir.TypeRef) string {
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.String()
	}
	return "(" + strings.Join(names, ",") + ")"
}

func outputDescribeText(out *OutputFormatter, descs []TypeDescription) {
	w := out.Out
	for i, d := range descs {
		if i > 0 {
			fmt.Fprintln(w)
		}
		if d.Error != "" {
			fmt.Fprintf(w, "%s: build failed [%s]\n", d.Alias, d.Error)
			continue
		}

		fmt.Fprintf(w, "%s: %s\n", d.Alias, d.Name)
		fmt.Fprintf(w, "  base:    %s\n", d.Base)
		fmt.Fprintf(w, "  backend: %s\n", d.Backend)
		out.VerboseLog("%s hash %s", d.Alias, d.Hash)
		if len(d.Interfaces) > 0 {
			fmt.Fprintf(w, "  implements: %s\n", strings.Join(d.Interfaces, ", "))
		}
		for _, p := range d.Properties {
			fmt.Fprintf(w, "  property: %s\n", p)
		}
		if len(d.Constructors) > 0 {
			fmt.Fprintf(w, "  constructors: %s\n", strings.Join(d.Constructors, " "))
		}
		fmt.Fprintln(w, "  members:")
		for _, m := range d.Members {
			fmt.Fprintf(w, "    %-24s %-9s %s\n", m.Signature, m.Origin, m.DeclaredIn)
		}
	}
}
