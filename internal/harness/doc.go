// Package harness runs synthesis conformance scenarios.
//
// A scenario declares base classes and interfaces, the types synthesized
// from them, and a flow of instantiations and calls with expected results.
// Running it produces a deterministic trace that can be compared against a
// golden file.
//
// # Scenario Format
//
// Scenarios are YAML (strict: unknown fields are rejected) or CUE files that
// export to the same structure:
//
//	name: greeter_override
//	description: "An override wraps the base greeting"
//	classes:
//	  - name: example.Greeter
//	    methods:
//	      - name: greet
//	        params: [string]
//	        body: { go: 'return "hello " + args[0].(string), nil' }
//	types:
//	  - alias: Loud
//	    base: example.Greeter
//	    overrides:
//	      - { name: greet, params: [string], body: { wrap: "%v!" } }
//	flow:
//	  - new: Loud
//	    as: g
//	  - call: g
//	    method: greet
//	    args: [bob]
//	    expect: { result: "hello bob!" }
//	assertions:
//	  - { type: member, target: Loud, signature: "greet(string)", origin: override }
//
// # Bodies
//
// Method, default and override bodies are one of:
//
//   - value: a constant
//   - field: the receiver's field (class instances only)
//   - arg: the argument at an index
//   - self: re-send the call under another name to the receiver
//   - super: run the shadowed base body (overrides only)
//   - wrap: run the base body and format its result (overrides only)
//   - go: Go statements interpreted with yaegi as the body of
//     func(args []interface{}, super func([]interface{}) (interface{}, error)) (interface{}, error)
//
// # Assertion Types
//
//   - trace_contains: an action appears in the trace
//   - trace_order: actions appear in the specified order
//   - trace_count: an action appears exactly N times
//   - member: a type's dispatch table holds a signature with an origin
//   - same_type: aliases share one cached shape (or, with distinct, do not)
//
// # Deterministic Testing
//
// Every run uses a fresh shape cache and numbers trace events from 1. The
// trace never contains key hashes, so golden files survive key format
// changes that do not change behavior.
package harness
