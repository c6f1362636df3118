package harness

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// ScenarioNotFoundError is returned when a scenario path doesn't exist.
type ScenarioNotFoundError struct {
	Path string
}

// Error implements the error interface.
func (e *ScenarioNotFoundError) Error() string {
	return fmt.Sprintf("scenario path %q does not exist", e.Path)
}

// FindScenarios returns the scenario files under path in lexical order.
// A file path is returned as-is.
func FindScenarios(path string) ([]string, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, &ScenarioNotFoundError{Path: path}
	}
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() && p != path && (d.Name() == "golden" || strings.HasPrefix(d.Name(), ".")) {
			return filepath.SkipDir
		}
		if !d.IsDir() && IsScenarioFile(p) {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", path, err)
	}
	slices.Sort(files)
	return files, nil
}

// SuiteConfig controls RunSuite.
type SuiteConfig struct {
	// Filter keeps only scenarios whose name contains it.
	Filter string

	// GoldenDir, if set, compares each trace against <GoldenDir>/<name>.golden.
	GoldenDir string

	// UpdateGolden rewrites golden files instead of comparing.
	UpdateGolden bool
}

// SuiteResult summarises a suite run.
type SuiteResult struct {
	Total    int            `json:"total"`
	Passed   int            `json:"passed"`
	Failed   int            `json:"failed"`
	Skipped  int            `json:"skipped"`
	Results  []ScenarioRun  `json:"results"`
	Failures []SuiteFailure `json:"failures,omitempty"`
}

// ScenarioRun is one executed scenario.
type ScenarioRun struct {
	Name   string  `json:"name"`
	Path   string  `json:"path"`
	Result *Result `json:"result"`
}

// SuiteFailure represents a scenario that failed to load, run or pass.
type SuiteFailure struct {
	Scenario string `json:"scenario,omitempty"`
	Path     string `json:"path"`
	Error    string `json:"error"`
}

// RunSuite loads and runs every scenario in paths, collecting failures
// rather than stopping at the first. It stops early only when ctx is done.
func RunSuite(ctx context.Context, paths []string, cfg SuiteConfig, opts ...Option) (*SuiteResult, error) {
	result := &SuiteResult{Results: []ScenarioRun{}}

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		scenario, err := LoadScenario(path)
		if err != nil {
			result.Total++
			result.fail(SuiteFailure{Path: path, Error: fmt.Sprintf("failed to load scenario: %v", err)})
			continue
		}
		if cfg.Filter != "" && !strings.Contains(scenario.Name, cfg.Filter) {
			result.Skipped++
			continue
		}
		result.Total++

		runResult, err := Run(scenario, opts...)
		if err != nil {
			result.fail(SuiteFailure{Scenario: scenario.Name, Path: path, Error: fmt.Sprintf("scenario execution failed: %v", err)})
			continue
		}
		result.Results = append(result.Results, ScenarioRun{Name: scenario.Name, Path: path, Result: runResult})

		if cfg.GoldenDir != "" {
			if err := CompareGolden(cfg.GoldenDir, scenario.Name, runResult, cfg.UpdateGolden); err != nil {
				result.fail(SuiteFailure{Scenario: scenario.Name, Path: path, Error: err.Error()})
				continue
			}
		}
		if !runResult.Pass {
			result.fail(SuiteFailure{
				Scenario: scenario.Name,
				Path:     path,
				Error:    fmt.Sprintf("scenario assertions failed: %s", strings.Join(runResult.Errors, "; ")),
			})
			continue
		}
		result.Passed++
	}
	return result, nil
}

func (r *SuiteResult) fail(f SuiteFailure) {
	r.Failed++
	r.Failures = append(r.Failures, f)
}
