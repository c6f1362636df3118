// Package synth builds new types from existing ones at runtime.
//
// A Builder takes a base type (a meta.Class or meta.Interface), a set of
// method overrides and, optionally, extra interfaces and properties. Build
// turns that request into a *Type whose overridden methods run the supplied
// Behavior while every other method keeps the base type's semantics. A
// Behavior can reach the shadowed implementation through its SuperInvoker.
//
// # Backends
//
// Two strategies materialise a type:
//
//   - subclass: a new meta.Class extending the base. Overrides become
//     trampolines in its method table, properties become backing fields with
//     accessor/mutator pairs, and every visible base constructor is forwarded.
//   - forwarding: a *Proxy whose every call passes through a single trap
//     consulting the override table. Class bases are wrapped by delegation.
//     Properties are not supported.
//
// Interfaces default to forwarding and classes to subclass; WithBackend or
// Builder.UseBackend pins one.
//
// # Shapes and bindings
//
// The synthesized structure (the Shape) depends only on the structural key:
// base, interfaces, override signatures, property names and types, and
// backend. Shapes are memoised in a process-wide typecache.Cache, so equal
// requests never synthesize twice. Behaviors and property initial values
// are not part of the key; each Type pairs a cached Shape with its own
// Binding of those values. Type.Same reports whether two types share a shape.
//
// # Concurrency
//
// Build and Instantiate run synchronously on the caller's goroutine. A *Type
// is immutable and safe for concurrent Instantiate. Instances are not
// synchronised.
package synth
