package harness

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/roach88/synth/internal/errors"
	"github.com/roach88/synth/internal/ir"
	"github.com/roach88/synth/internal/logger"
	"github.com/roach88/synth/internal/meta"
	"github.com/roach88/synth/internal/synth"
	"github.com/roach88/synth/internal/typecache"
)

// Option configures a run.
type Option func(*runConfig)

type runConfig struct {
	observers []synth.Observer
	backend   string
	cache     *typecache.Cache[synth.Shape]
}

// WithObserver reports every synthesized shape to o, for example a catalog.
func WithObserver(o synth.Observer) Option {
	return func(c *runConfig) { c.observers = append(c.observers, o) }
}

// WithDefaultBackend overrides the scenario's default backend.
func WithDefaultBackend(backend string) Option {
	return func(c *runConfig) { c.backend = backend }
}

// WithCache shares c across runs instead of a fresh cache per scenario.
func WithCache(c *typecache.Cache[synth.Shape]) Option {
	return func(cfg *runConfig) { cfg.cache = c }
}

// Harness executes one scenario. Each run gets its own shape cache so
// scenarios never observe each other's types.
type Harness struct {
	scenario *Scenario
	world    *world
	opts     []synth.Option
	backend  string
	types    map[string]*synth.Type
	objects  map[string]meta.Object
	log      *zap.SugaredLogger
}

// Run executes a scenario and returns the result.
//
// Execution flow:
//  1. Declare interfaces and classes
//  2. Build every type, checking expected build errors
//  3. Execute flow steps with expect validation
//  4. Evaluate assertions
//
// A returned error means the scenario itself is unusable (unknown base type,
// a Go body that does not compile). Failed expectations are reported in
// the Result instead.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	cfg := runConfig{backend: scenario.Backend}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.cache == nil {
		cfg.cache = typecache.New[synth.Shape]()
	}

	w, err := newWorld(scenario)
	if err != nil {
		return nil, fmt.Errorf("failed to declare types: %w", err)
	}

	h := &Harness{
		scenario: scenario,
		world:    w,
		opts:     []synth.Option{synth.WithCache(cfg.cache)},
		backend:  cfg.backend,
		types:    make(map[string]*synth.Type),
		objects:  make(map[string]meta.Object),
		log:      logger.Named("harness").With("scenario", scenario.Name),
	}
	for _, o := range cfg.observers {
		h.opts = append(h.opts, synth.WithObserver(o))
	}

	result := NewResult()
	if err := h.buildTypes(result); err != nil {
		return nil, fmt.Errorf("failed to build types: %w", err)
	}
	h.executeFlow(result)

	result.Types = h.types
	actx := &AssertionContext{Types: h.types}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(msg)
	}

	h.log.Debugw("scenario finished", "pass", result.Pass, "events", len(result.Trace))
	return result, nil
}

// buildTypes synthesizes every declared type in order.
func (h *Harness) buildTypes(result *Result) error {
	for i, def := range h.scenario.Types {
		event := TraceEvent{Op: OpBuild, Action: "build:" + def.Alias}

		t, err := h.world.build(def, h.backend, h.opts)
		if err != nil && errors.CodeOf(err) == "" {
			return fmt.Errorf("types[%d] %s: %w", i, def.Alias, err)
		}

		if err != nil {
			event.Error = string(errors.CodeOf(err))
		} else {
			h.types[def.Alias] = t
			event.Backend = string(t.Backend())
			for _, m := range t.Members() {
				event.Members = append(event.Members, fmt.Sprintf("%s %s", m.Signature, m.Origin))
			}
		}
		result.addEvent(event)

		switch {
		case def.ExpectError != "" && event.Error != def.ExpectError:
			result.AddError(fmt.Sprintf("types[%d] %s: expected build error %s, got %s",
				i, def.Alias, def.ExpectError, describe(err)))
		case def.ExpectError == "" && err != nil:
			result.AddError(fmt.Sprintf("types[%d] %s: build failed: %v", i, def.Alias, err))
		}
		h.log.Debugw("built type", "alias", def.Alias, "error", event.Error)
	}
	return nil
}

// executeFlow runs all flow steps and validates expect clauses.
func (h *Harness) executeFlow(result *Result) {
	for i, step := range h.scenario.Flow {
		var event TraceEvent
		var res any
		var err error

		if step.New != "" {
			event = TraceEvent{Op: OpNew, Action: "new:" + step.New, As: step.As, Args: renderAll(step.Args)}
			res, err = h.instantiate(step)
		} else {
			event = TraceEvent{Op: OpCall, Action: step.Call + "." + step.Method, Args: renderAll(step.Args)}
			res, err = h.call(step)
		}

		if err != nil {
			event.Error = string(errors.CodeOf(err))
			if event.Error == "" {
				event.Error = "ERROR"
			}
		} else if step.Call != "" {
			event.Result = render(res)
		}
		result.addEvent(event)

		if msg := checkExpect(step.Expect, res, err); msg != "" {
			result.AddError(fmt.Sprintf("flow[%d] %s: %s", i, event.Action, msg))
		}
	}
}

func (h *Harness) instantiate(step FlowStep) (meta.Object, error) {
	t, ok := h.types[step.New]
	if !ok {
		return nil, errors.UnsupportedOperation(step.New, "", "type was not built")
	}
	args, err := h.resolveArgs(step.Args)
	if err != nil {
		return nil, err
	}
	obj, err := t.InstantiateWith(refs(step.Params), args...)
	if err != nil {
		return nil, err
	}
	if step.As != "" {
		h.objects[step.As] = obj
	}
	return obj, nil
}

func (h *Harness) call(step FlowStep) (any, error) {
	obj, ok := h.objects[step.Call]
	if !ok {
		return nil, errors.UnsupportedOperation(step.Call, step.Method, "object was not created")
	}
	args, err := h.resolveArgs(step.Args)
	if err != nil {
		return nil, err
	}
	if strings.Contains(step.Method, "(") {
		sig, err := ir.ParseSignature(step.Method)
		if err != nil {
			return nil, errors.InvalidArgument(step.Call, step.Method, err.Error())
		}
		return obj.Call(sig, args...)
	}
	return obj.Send(step.Method, args...)
}

// resolveArgs replaces "@name" arguments with the named object.
func (h *Harness) resolveArgs(args []any) ([]any, error) {
	out := make([]any, len(args))
	for i, a := range args {
		s, ok := a.(string)
		if !ok || !strings.HasPrefix(s, "@") {
			out[i] = a
			continue
		}
		obj, ok := h.objects[s[1:]]
		if !ok {
			return nil, errors.InvalidArgument("", s, "no such object")
		}
		out[i] = obj
	}
	return out, nil
}

// checkExpect returns a failure message, or "" if the outcome matches.
func checkExpect(expect *ExpectClause, res any, err error) string {
	switch {
	case expect == nil && err != nil:
		return fmt.Sprintf("unexpected error: %v", err)
	case expect == nil:
		return ""
	case expect.Error != "":
		if string(errors.CodeOf(err)) != expect.Error {
			return fmt.Sprintf("expected error %s, got %s", expect.Error, describe(err))
		}
	case err != nil:
		return fmt.Sprintf("unexpected error: %v", err)
	case expect.Result != nil && render(expect.Result) != render(res):
		return fmt.Sprintf("expected result %s, got %s", render(expect.Result), render(res))
	}
	return ""
}

func describe(err error) string {
	if err == nil {
		return "success"
	}
	return err.Error()
}

// render prints a value for traces and comparisons. Numbers of any width
// render alike, so a YAML 3 matches an int64 3.
func render(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return val
	case meta.Object:
		return "<" + string(val.TypeName()) + ">"
	}
	return fmt.Sprint(v)
}

func renderAll(vs []any) []string {
	if len(vs) == 0 {
		return nil
	}
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = render(v)
	}
	return out
}
