package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/synth/internal/synth"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, event := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s %v", event.Seq, event.Action, event.Args)
			if event.Failed() {
				fmt.Fprintf(&buf, " !%s", event.Error)
			}
			buf.WriteByte('\n')
		}
	}
	return buf.String()
}

// assertTraceContains checks that some event has the given action.
func assertTraceContains(trace []TraceEvent, assertion Assertion) error {
	for _, event := range trace {
		if event.Action == assertion.Action {
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: fmt.Sprintf("action %s", assertion.Action),
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertTraceOrder checks if actions appear in the specified order.
// Actions don't need to be consecutive (intervening actions are allowed).
func assertTraceOrder(trace []TraceEvent, assertion Assertion) error {
	positions := make(map[string]int)
	for i, event := range trace {
		if _, seen := positions[event.Action]; !seen {
			positions[event.Action] = i + 1 // 1-indexed for readability
		}
	}

	for _, action := range assertion.Actions {
		if positions[action] == 0 {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("all actions present: %v", assertion.Actions),
				Actual:   fmt.Sprintf("missing action: %s", action),
				Trace:    trace,
			}
		}
	}

	for i := 1; i < len(assertion.Actions); i++ {
		prev := assertion.Actions[i-1]
		curr := assertion.Actions[i]
		if positions[prev] >= positions[curr] {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("actions in order: %v", assertion.Actions),
				Actual: fmt.Sprintf("%s (pos %d) should be before %s (pos %d)",
					prev, positions[prev], curr, positions[curr]),
				Trace: trace,
			}
		}
	}
	return nil
}

// assertTraceCount checks if the action appears exactly the specified number of times.
func assertTraceCount(trace []TraceEvent, assertion Assertion) error {
	count := 0
	for _, event := range trace {
		if event.Action == assertion.Action {
			count++
		}
	}
	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d occurrences of %s", assertion.Count, assertion.Action),
			Actual:   fmt.Sprintf("%d occurrences", count),
			Trace:    trace,
		}
	}
	return nil
}

// assertMember checks that a built type's dispatch table holds the
// signature, with the given origin if one is named.
func assertMember(types map[string]*synth.Type, assertion Assertion) error {
	t, ok := types[assertion.Target]
	if !ok {
		return &AssertionError{
			Type:     AssertMember,
			Expected: fmt.Sprintf("type %s to be built", assertion.Target),
			Actual:   "type was not built",
		}
	}
	for _, m := range t.Members() {
		if m.Signature.String() != assertion.Signature {
			continue
		}
		if assertion.Origin != "" && string(m.Origin) != assertion.Origin {
			return &AssertionError{
				Type:     AssertMember,
				Expected: fmt.Sprintf("%s on %s with origin %s", assertion.Signature, assertion.Target, assertion.Origin),
				Actual:   fmt.Sprintf("origin %s", m.Origin),
			}
		}
		return nil
	}
	return &AssertionError{
		Type:     AssertMember,
		Expected: fmt.Sprintf("%s on %s", assertion.Signature, assertion.Target),
		Actual:   fmt.Sprintf("members %v", t.Methods()),
	}
}

// assertSameType checks cached shape identity across aliases.
func assertSameType(types map[string]*synth.Type, assertion Assertion) error {
	built := make([]*synth.Type, len(assertion.Types))
	for i, alias := range assertion.Types {
		t, ok := types[alias]
		if !ok {
			return &AssertionError{
				Type:     AssertSameType,
				Expected: fmt.Sprintf("type %s to be built", alias),
				Actual:   "type was not built",
			}
		}
		built[i] = t
	}

	for i := range built {
		for j := i + 1; j < len(built); j++ {
			same := built[i].Same(built[j])
			if same == assertion.Distinct {
				want := "the same shape"
				if assertion.Distinct {
					want = "distinct shapes"
				}
				return &AssertionError{
					Type:     AssertSameType,
					Expected: fmt.Sprintf("%s and %s to have %s", assertion.Types[i], assertion.Types[j], want),
					Actual:   fmt.Sprintf("%s vs %s", built[i].Name(), built[j].Name()),
				}
			}
		}
	}
	return nil
}

// AssertionContext provides the built types to type assertions.
type AssertionContext struct {
	Types map[string]*synth.Type
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errs []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertTraceContains:
			err = assertTraceContains(result.Trace, assertion)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, assertion)
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, assertion)
		case AssertMember, AssertSameType:
			if actx == nil {
				err = fmt.Errorf("assertion[%d]: %s requires built types", i, assertion.Type)
			} else if assertion.Type == AssertMember {
				err = assertMember(actx.Types, assertion)
			} else {
				err = assertSameType(actx.Types, assertion)
			}
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errs = append(errs, err.Error())
		}
	}
	return errs
}
