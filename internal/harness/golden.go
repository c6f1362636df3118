package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/synth/internal/ir"
)

// GoldenDir is where RunWithGolden keeps fixtures, relative to the test's
// package directory.
const GoldenDir = "testdata/golden"

// TraceSnapshot captures the complete trace for a scenario execution.
type TraceSnapshot struct {
	ScenarioName string       `json:"scenario_name"`
	Trace        []TraceEvent `json:"trace"`
}

// toCanonicalMap converts a TraceSnapshot to a map[string]any for canonical JSON serialization.
// This is required because ir.MarshalCanonical only handles primitives, slices and maps.
func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	traceList := make([]any, len(s.Trace))
	for i, event := range s.Trace {
		eventMap := map[string]any{
			"seq":    event.Seq,
			"op":     event.Op,
			"action": event.Action,
		}
		if event.As != "" {
			eventMap["as"] = event.As
		}
		if len(event.Args) > 0 {
			eventMap["args"] = event.Args
		}
		if event.Backend != "" {
			eventMap["backend"] = event.Backend
		}
		if len(event.Members) > 0 {
			eventMap["members"] = event.Members
		}
		if event.Op == OpCall && !event.Failed() {
			eventMap["result"] = event.Result
		}
		if event.Failed() {
			eventMap["error"] = event.Error
		}
		traceList[i] = eventMap
	}

	return map[string]any{
		"scenario_name": s.ScenarioName,
		"trace":         traceList,
	}
}

// Snapshot returns the canonical JSON form of a result's trace.
func Snapshot(name string, result *Result) ([]byte, error) {
	snapshot := TraceSnapshot{ScenarioName: name, Trace: result.Trace}
	return ir.MarshalCanonical(snapshot.toCanonicalMap())
}

// RunWithGolden executes a scenario and compares the trace against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns the result so callers can check Pass; a returned error means the
// scenario could not run.
func RunWithGolden(t *testing.T, scenario *Scenario, opts ...Option) (*Result, error) {
	t.Helper()

	result, err := Run(scenario, opts...)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares the given result's trace against a golden file
// without re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	traceJSON, err := Snapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir(GoldenDir),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, traceJSON)
	return nil
}

// GoldenMismatchError reports a trace that differs from its golden file.
type GoldenMismatchError struct {
	Path     string
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *GoldenMismatchError) Error() string {
	return fmt.Sprintf("trace differs from %s\n  expected: %s\n  actual:   %s", e.Path, e.Expected, e.Actual)
}

// CompareGolden checks a result against dir/<name>.golden outside of tests.
// With update set the file is (re)written instead. A missing file is an
// error unless updating.
func CompareGolden(dir, name string, result *Result, update bool) error {
	traceJSON, err := Snapshot(name, result)
	if err != nil {
		return err
	}
	path := filepath.Join(dir, name+".golden")

	if update {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create golden dir: %w", err)
		}
		return os.WriteFile(path, traceJSON, 0o644)
	}

	want, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read golden file: %w", err)
	}
	if !bytes.Equal(bytes.TrimSpace(want), traceJSON) {
		return &GoldenMismatchError{Path: path, Expected: string(bytes.TrimSpace(want)), Actual: string(traceJSON)}
	}
	return nil
}
