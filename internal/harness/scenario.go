package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Scenario defines a synthesis conformance scenario.
// It declares base types, the types synthesized from them, and a flow of
// instantiations and calls with expected outcomes.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Backend is the default backend for types that do not pin one.
	// Empty means the base-kind rule.
	Backend string `yaml:"backend,omitempty"`

	// Interfaces are declared before classes so classes can implement them.
	Interfaces []InterfaceDef `yaml:"interfaces,omitempty"`

	// Classes are declared in order; a class may only extend an earlier one.
	Classes []ClassDef `yaml:"classes,omitempty"`

	// Types are built in order before the flow runs.
	Types []TypeDef `yaml:"types"`

	// Flow contains instantiations and calls with expected results.
	Flow []FlowStep `yaml:"flow,omitempty"`

	// Assertions validate the final trace and the built types.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// InterfaceDef declares a meta.Interface.
type InterfaceDef struct {
	Name    string            `yaml:"name"`
	Extends []string          `yaml:"extends,omitempty"`
	Methods []InterfaceMethod `yaml:"methods,omitempty"`
}

// InterfaceMethod is an interface signature. A nil Default is abstract.
type InterfaceMethod struct {
	Name    string   `yaml:"name"`
	Params  []string `yaml:"params,omitempty"`
	Default *Body    `yaml:"default,omitempty"`
}

// ClassDef declares a meta.Class.
type ClassDef struct {
	Name         string           `yaml:"name"`
	Extends      string           `yaml:"extends,omitempty"`
	Final        bool             `yaml:"final,omitempty"`
	Implements   []string         `yaml:"implements,omitempty"`
	Fields       []FieldDef       `yaml:"fields,omitempty"`
	Constructors []ConstructorDef `yaml:"constructors,omitempty"`
	Methods      []MethodDef      `yaml:"methods,omitempty"`
}

// FieldDef declares a field with an initial value.
type FieldDef struct {
	Name    string `yaml:"name"`
	Type    string `yaml:"type"`
	Initial any    `yaml:"initial,omitempty"`
}

// ConstructorDef declares a constructor. Assign stores arguments into the
// named fields positionally. Chain passes every argument to the superclass
// constructor with the same parameter list.
type ConstructorDef struct {
	Params     []string `yaml:"params,omitempty"`
	Assign     []string `yaml:"assign,omitempty"`
	Chain      bool     `yaml:"chain,omitempty"`
	Visibility string   `yaml:"visibility,omitempty"`
}

// MethodDef declares a class method.
type MethodDef struct {
	Name       string   `yaml:"name"`
	Params     []string `yaml:"params,omitempty"`
	Final      bool     `yaml:"final,omitempty"`
	Static     bool     `yaml:"static,omitempty"`
	Visibility string   `yaml:"visibility,omitempty"`
	Body       Body     `yaml:"body"`
}

// Body describes what a method, default or override returns. Exactly one
// source is used, checked in this order: Go, Super, Wrap, Self, Field, Arg,
// Value. An empty body returns nil.
type Body struct {
	// Value is returned as-is.
	Value any `yaml:"value,omitempty"`

	// Field returns the receiver's field. Needs a class instance.
	Field string `yaml:"field,omitempty"`

	// Arg returns the argument at this index.
	Arg *int `yaml:"arg,omitempty"`

	// Self sends this method name to the receiver with the same arguments.
	Self string `yaml:"self,omitempty"`

	// Super runs the shadowed base body. Overrides only.
	Super bool `yaml:"super,omitempty"`

	// Wrap runs the base body and formats its result with this verb string.
	// Overrides only.
	Wrap string `yaml:"wrap,omitempty"`

	// Go is a statement list compiled with yaegi as the body of
	//	func(args []interface{}, super func([]interface{}) (interface{}, error)) (interface{}, error)
	Go string `yaml:"go,omitempty"`

	// Imports lists the stdlib packages Go may import.
	Imports []string `yaml:"imports,omitempty"`
}

// TypeDef declares a synthesized type.
type TypeDef struct {
	// Alias names the type in flow steps and assertions.
	Alias      string        `yaml:"alias"`
	Base       string        `yaml:"base"`
	Backend    string        `yaml:"backend,omitempty"`
	Interfaces []string      `yaml:"interfaces,omitempty"`
	Overrides  []OverrideDef `yaml:"overrides,omitempty"`
	Properties []PropertyDef `yaml:"properties,omitempty"`

	// ExpectError is the error code the build must fail with.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// OverrideDef intercepts one base signature.
type OverrideDef struct {
	Name   string   `yaml:"name"`
	Params []string `yaml:"params,omitempty"`
	Body   Body     `yaml:"body"`
}

// PropertyDef adds a bean property.
type PropertyDef struct {
	Name    string `yaml:"name"`
	Type    string `yaml:"type"`
	Initial any    `yaml:"initial,omitempty"`
}

// FlowStep is either an instantiation (New) or a call (Call).
type FlowStep struct {
	// New is the alias of the type to instantiate.
	New string `yaml:"new,omitempty"`

	// As names the new object for later calls.
	As string `yaml:"as,omitempty"`

	// Params selects the constructor. Omitted means the no-arg one.
	Params []string `yaml:"params,omitempty"`

	// Call is the object to call.
	Call string `yaml:"call,omitempty"`

	// Method is a name resolved dynamically, or a full signature such as
	// "greet(string)" for an exact call.
	Method string `yaml:"method,omitempty"`

	Args []any `yaml:"args,omitempty"`

	// Expect validates the outcome. Nil means success with any result.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies the expected outcome of a step.
type ExpectClause struct {
	// Result is compared against the rendered result. Use "null" for nil.
	Result any `yaml:"result,omitempty"`

	// Error is the expected error code.
	Error string `yaml:"error,omitempty"`
}

// Assertion validates trace or built types.
type Assertion struct {
	// Type is one of trace_contains, trace_order, trace_count, member, same_type.
	Type string `yaml:"type"`

	// Action is the trace action (used by trace_contains and trace_count).
	Action string `yaml:"action,omitempty"`

	// Actions is the expected action order (used by trace_order).
	Actions []string `yaml:"actions,omitempty"`

	// Count is the expected number of occurrences (used by trace_count).
	Count int `yaml:"count,omitempty"`

	// Target is a type alias (used by member).
	Target string `yaml:"target,omitempty"`

	// Signature and Origin describe the expected member (used by member).
	Signature string `yaml:"signature,omitempty"`
	Origin    string `yaml:"origin,omitempty"`

	// Types must all share one cached shape (used by same_type). With
	// Distinct set they must all differ instead.
	Types    []string `yaml:"types,omitempty"`
	Distinct bool     `yaml:"distinct,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertMember        = "member"
	AssertSameType      = "same_type"
)

// LoadScenario reads and parses a scenario file. Files ending in .cue are
// evaluated with CUE; everything else is parsed as YAML.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".cue") {
		data, err = exportCUE(path, data)
		if err != nil {
			return nil, err
		}
	}
	return ParseScenario(data)
}

// ParseScenario decodes YAML (or JSON) scenario bytes and validates them.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// IsScenarioFile reports whether path has a scenario extension.
func IsScenarioFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".cue":
		return true
	}
	return false
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Types) == 0 {
		return fmt.Errorf("types list is required and must be non-empty")
	}

	declared := make(map[string]bool)
	for i, def := range s.Interfaces {
		if def.Name == "" {
			return fmt.Errorf("interfaces[%d]: name is required", i)
		}
		if declared[def.Name] {
			return fmt.Errorf("interfaces[%d]: %q declared twice", i, def.Name)
		}
		declared[def.Name] = true
		for j, m := range def.Methods {
			if m.Name == "" {
				return fmt.Errorf("interfaces[%d].methods[%d]: name is required", i, j)
			}
			if m.Default != nil {
				if err := m.Default.validate(false); err != nil {
					return fmt.Errorf("interfaces[%d].methods[%d]: %w", i, j, err)
				}
			}
		}
	}
	for i, def := range s.Classes {
		if def.Name == "" {
			return fmt.Errorf("classes[%d]: name is required", i)
		}
		if declared[def.Name] {
			return fmt.Errorf("classes[%d]: %q declared twice", i, def.Name)
		}
		declared[def.Name] = true
		for j, c := range def.Constructors {
			if len(c.Assign) > len(c.Params) {
				return fmt.Errorf("classes[%d].constructors[%d]: assigns %d fields from %d params",
					i, j, len(c.Assign), len(c.Params))
			}
		}
		for j, m := range def.Methods {
			if m.Name == "" {
				return fmt.Errorf("classes[%d].methods[%d]: name is required", i, j)
			}
			if err := m.Body.validate(false); err != nil {
				return fmt.Errorf("classes[%d].methods[%d]: %w", i, j, err)
			}
		}
	}

	aliases := make(map[string]bool)
	for i, t := range s.Types {
		if t.Alias == "" {
			return fmt.Errorf("types[%d]: alias is required", i)
		}
		if aliases[t.Alias] {
			return fmt.Errorf("types[%d]: alias %q declared twice", i, t.Alias)
		}
		aliases[t.Alias] = true
		if t.Base == "" {
			return fmt.Errorf("types[%d]: base is required", i)
		}
		for j, o := range t.Overrides {
			if o.Name == "" {
				return fmt.Errorf("types[%d].overrides[%d]: name is required", i, j)
			}
			if err := o.Body.validate(true); err != nil {
				return fmt.Errorf("types[%d].overrides[%d]: %w", i, j, err)
			}
		}
	}

	objects := make(map[string]bool)
	for i, step := range s.Flow {
		switch {
		case step.New != "" && step.Call != "":
			return fmt.Errorf("flow[%d]: new and call are mutually exclusive", i)
		case step.New != "":
			if !aliases[step.New] {
				return fmt.Errorf("flow[%d]: unknown type alias %q", i, step.New)
			}
			if step.As != "" {
				objects[step.As] = true
			}
		case step.Call != "":
			if !objects[step.Call] {
				return fmt.Errorf("flow[%d]: unknown object %q", i, step.Call)
			}
			if step.Method == "" {
				return fmt.Errorf("flow[%d]: method is required for call", i)
			}
		default:
			return fmt.Errorf("flow[%d]: one of new or call is required", i)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a, aliases); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion, aliases map[string]bool) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTraceContains:
		if a.Action == "" {
			return fmt.Errorf("assertions[%d]: action is required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Actions) == 0 {
			return fmt.Errorf("assertions[%d]: actions list is required for trace_order", index)
		}
	case AssertTraceCount:
		if a.Action == "" {
			return fmt.Errorf("assertions[%d]: action is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertMember:
		if !aliases[a.Target] {
			return fmt.Errorf("assertions[%d]: unknown type alias %q", index, a.Target)
		}
		if a.Signature == "" {
			return fmt.Errorf("assertions[%d]: signature is required for member", index)
		}
	case AssertSameType:
		if len(a.Types) < 2 {
			return fmt.Errorf("assertions[%d]: same_type needs at least two types", index)
		}
		for _, alias := range a.Types {
			if !aliases[alias] {
				return fmt.Errorf("assertions[%d]: unknown type alias %q", index, alias)
			}
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}

// validate checks that the body uses one source and that super-only
// sources appear in overrides.
func (b *Body) validate(override bool) error {
	sources := 0
	for _, set := range []bool{b.Go != "", b.Super, b.Wrap != "", b.Self != "", b.Field != "", b.Arg != nil} {
		if set {
			sources++
		}
	}
	if sources > 1 || (sources == 1 && b.Value != nil) {
		return fmt.Errorf("body must use exactly one of value, field, arg, self, super, wrap, go")
	}
	if !override && (b.Super || b.Wrap != "") {
		return fmt.Errorf("super and wrap are only valid in overrides")
	}
	if b.Arg != nil && *b.Arg < 0 {
		return fmt.Errorf("arg index must be non-negative")
	}
	if len(b.Imports) > 0 && b.Go == "" {
		return fmt.Errorf("imports need a go body")
	}
	return nil
}
