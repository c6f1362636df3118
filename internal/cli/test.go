package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/synth/internal/errors"
	"github.com/roach88/synth/internal/harness"
	"github.com/roach88/synth/internal/store"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update   bool   // regenerate golden files
	Filter   string // keep scenarios whose name contains this
	Golden   string // golden directory; falls back to golden.dir
	Database string // catalog to record synthesized types into
	Backend  string // default backend for scenarios that do not pin one
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name   string   `json:"name"`
	Path   string   `json:"path"`
	Pass   bool     `json:"pass"`
	Errors []string `json:"errors,omitempty"`
}

// TestResult holds the overall test result.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Skipped   int              `json:"skipped"`
	Total     int              `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios>...",
		Short: "Run synthesis scenarios",
		Long: `Run scenario files (YAML or CUE) through the synthesis engine.

Each scenario declares base classes and interfaces, the types to
synthesize, and a flow of instantiations and calls with expectations.
When a golden directory exists, each trace is also compared against
<golden>/<scenario>.golden.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, unreadable catalog, etc.)

Examples:
  synth test ./scenarios
  synth test ./scenarios --filter bean
  synth test ./scenarios --golden ./golden --update
  synth test ./scenarios --db catalog.db --format json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(cmd.Context(), opts, args, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "run only scenarios whose name contains this")
	cmd.Flags().StringVar(&opts.Golden, "golden", "", "golden directory (default from golden.dir)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record synthesized types into this catalog")
	cmd.Flags().StringVar(&opts.Backend, "backend", "", "default backend: auto, subclass or forwarding")

	return cmd
}

func runTests(ctx context.Context, opts *TestOptions, paths []string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := opts.settings()
	out := NewOutputFormatter(cmd, opts.RootOptions)

	var files []string
	for _, p := range paths {
		found, err := harness.FindScenarios(p)
		if err != nil {
			var notFound *harness.ScenarioNotFoundError
			if errors.As(err, &notFound) {
				return NewExitError(ExitCommandError, fmt.Sprintf("scenarios not found: %s", p))
			}
			return WrapExitError(ExitCommandError, "failed to find scenarios", err)
		}
		files = append(files, found...)
	}

	if len(files) == 0 {
		if out.JSON() {
			return outputTestJSON(out, TestResult{Scenarios: []ScenarioResult{}})
		}
		fmt.Fprintln(out.Out, "No scenarios found.")
		return nil
	}

	var runOpts []harness.Option
	backend := opts.Backend
	if backend == "" && cfg.BackendTag() != "" {
		backend = cfg.Backend
	}
	if backend != "" {
		runOpts = append(runOpts, harness.WithDefaultBackend(backend))
	}

	dbPath := opts.Database
	if dbPath == "" {
		dbPath = cfg.Catalog.Path
	}
	if dbPath != "" {
		st, err := store.Open(dbPath)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open catalog", err)
		}
		defer st.Close()
		runOpts = append(runOpts, harness.WithObserver(st))
		out.VerboseLog("recording into %s (run %s)", dbPath, st.RunID())
	}

	suiteCfg := harness.SuiteConfig{
		Filter:       opts.Filter,
		GoldenDir:    goldenDir(opts, cfg.Golden.Dir),
		UpdateGolden: opts.Update || cfg.Golden.Update,
	}
	if suiteCfg.GoldenDir == "" {
		out.VerboseLog("no golden directory, checking assertions only")
	}

	suite, err := harness.RunSuite(ctx, files, suiteCfg, runOpts...)
	if err != nil {
		return WrapExitError(ExitCommandError, "scenario run interrupted", err)
	}

	result := summarize(suite)
	if out.JSON() {
		return outputTestJSON(out, result)
	}
	return outputTestText(out, result)
}

// goldenDir picks the flag over the configured directory. A directory that
// does not exist disables golden comparison unless golden files are being
// written.
func goldenDir(opts *TestOptions, configured string) string {
	dir := opts.Golden
	if dir == "" {
		dir = configured
	}
	if dir == "" || opts.Update {
		return dir
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return ""
	}
	return dir
}

// summarize folds a suite result into per-scenario rows. Scenarios that
// failed to load are listed under their file name.
func summarize(suite *harness.SuiteResult) TestResult {
	failures := make(map[string][]string)
	for _, f := range suite.Failures {
		failures[f.Path] = append(failures[f.Path], f.Error)
	}

	result := TestResult{
		Scenarios: make([]ScenarioResult, 0, suite.Total),
		Passed:    suite.Passed,
		Failed:    suite.Failed,
		Skipped:   suite.Skipped,
		Total:     suite.Total,
	}
	seen := make(map[string]bool)
	for _, run := range suite.Results {
		seen[run.Path] = true
		errs := failures[run.Path]
		result.Scenarios = append(result.Scenarios, ScenarioResult{
			Name:   run.Name,
			Path:   run.Path,
			Pass:   len(errs) == 0,
			Errors: errs,
		})
	}
	for _, f := range suite.Failures {
		if seen[f.Path] {
			continue
		}
		seen[f.Path] = true
		name := f.Scenario
		if name == "" {
			name = filepath.Base(f.Path)
		}
		result.Scenarios = append(result.Scenarios, ScenarioResult{
			Name:   name,
			Path:   f.Path,
			Errors: failures[f.Path],
		})
	}
	return result
}

// outputTestJSON writes the suite result, failing the command when any
// scenario failed.
func outputTestJSON(out *OutputFormatter, result TestResult) error {
	if result.Failed == 0 {
		return out.Success(result)
	}
	msg := fmt.Sprintf("%d scenario(s) failed", result.Failed)
	if err := out.Failure("E_TEST_FAILED", msg, result); err != nil {
		return err
	}
	return NewExitError(ExitFailure, msg)
}

// outputTestText outputs the test result as text.
func outputTestText(out *OutputFormatter, result TestResult) error {
	w := out.Out

	for _, s := range result.Scenarios {
		if s.Pass {
			fmt.Fprintf(w, "✓ %s\n", s.Name)
			continue
		}
		fmt.Fprintf(w, "✗ %s\n", s.Name)
		for _, e := range s.Errors {
			fmt.Fprintf(w, "  %s\n", e)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Test Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)
	if result.Skipped > 0 {
		fmt.Fprintf(w, "Skipped: %d\n", result.Skipped)
	}

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}

	fmt.Fprintln(w, "✓ All scenarios passed")
	return nil
}
