package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/synth/internal/ir"
	"github.com/roach88/synth/internal/store"
)

// CatalogOptions holds flags for the catalog command.
type CatalogOptions struct {
	*RootOptions
	Database   string
	Base       string // only entries synthesized from this base
	Overriding string // only entries overriding this signature, e.g. "greet(string)"
	Members    bool   // include each entry's dispatch table
}

// CatalogEntry is one row of catalog output.
type CatalogEntry struct {
	store.Entry
	Members []ir.MemberRecord `json:"members,omitempty"`
}

// NewCatalogCommand creates the catalog command.
func NewCatalogCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CatalogOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List synthesized types recorded in a catalog",
		Long: `List the synthesized types recorded by "synth test --db".

Entries are printed in the order they were first synthesized. Filters
combine: --base and --overriding both have to match.

Examples:
  synth catalog --db catalog.db
  synth catalog --db catalog.db --base example.Greeter
  synth catalog --db catalog.db --overriding "greet(string)" --members`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCatalog(cmd.Context(), opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to catalog database (default from catalog.path)")
	cmd.Flags().StringVar(&opts.Base, "base", "", "filter by base type")
	cmd.Flags().StringVar(&opts.Overriding, "overriding", "", "filter by overridden signature")
	cmd.Flags().BoolVar(&opts.Members, "members", false, "print member tables")

	return cmd
}

func runCatalog(ctx context.Context, opts *CatalogOptions, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	out := NewOutputFormatter(cmd, opts.RootOptions)

	path := opts.Database
	if path == "" {
		path = opts.settings().Catalog.Path
	}
	if path == "" {
		return NewExitError(ExitCommandError, "no catalog: pass --db or set catalog.path")
	}
	if _, err := os.Stat(path); err != nil {
		return NewExitError(ExitCommandError, fmt.Sprintf("catalog not found: %s", path))
	}

	var sig *ir.MethodSignature
	if opts.Overriding != "" {
		parsed, err := ir.ParseSignature(opts.Overriding)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid --overriding signature", err)
		}
		sig = &parsed
	}

	st, err := store.Open(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open catalog", err)
	}
	defer st.Close()

	var entries []store.Entry
	switch {
	case sig != nil:
		entries, err = st.Overriding(ctx, *sig)
	case opts.Base != "":
		entries, err = st.ListByBase(ctx, ir.TypeRef(opts.Base))
	default:
		entries, err = st.List(ctx)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to query catalog", err)
	}

	rows := make([]CatalogEntry, 0, len(entries))
	for _, e := range entries {
		if sig != nil && opts.Base != "" && string(e.Base) != opts.Base {
			continue
		}
		row := CatalogEntry{Entry: e}
		if opts.Members {
			row.Members, err = st.Members(ctx, e.KeyHash)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to read members", err)
			}
		}
		rows = append(rows, row)
	}

	if out.JSON() {
		return out.Success(rows)
	}
	outputCatalogText(out, rows)
	return nil
}

func outputCatalogText(out *OutputFormatter, rows []CatalogEntry) {
	w := out.Out
	if len(rows) == 0 {
		fmt.Fprintln(w, "No synthesized types recorded.")
		return
	}
	for _, r := range rows {
		fmt.Fprintf(w, "%4d  %s  %-10s  %s\n", r.Seq, shortHash(r.KeyHash), r.Backend, r.TypeName)
		out.VerboseLog("      run %s", r.RunID)
		for _, m := range r.Members {
			fmt.Fprintf(w, "        %-24s %-9s %s\n", m.Signature, m.Origin, m.DeclaredIn)
		}
	}
	fmt.Fprintf(w, "\n%d type(s)\n", len(rows))
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
