// Package meta is the object model synthesized types are built from.
//
// Go cannot define new types at runtime, so base types are described
// explicitly: a Class is a name, a superclass, declared methods (signature,
// visibility, final/static flags, body), constructors and fields; an
// Interface is a set of signatures with optional default bodies. Instances
// dispatch calls through the class chain the way a vtable would.
//
// Classes are built once at setup time. They are not synchronised:
// mutating a class while instances of it are in use is a programming error.
// Once setup is done, classes are read-only and safe to share.
//
// Dispatch order for Instance.Call:
//  1. Most-derived declaration of the signature in the class chain
//  2. Default body from an implemented interface
//  3. METHOD_NOT_FOUND
//
// Visibility and the final/static flags constrain overriding only. They do
// not restrict Call: the model has no caller context to check access from.
//
// FromGo derives a Class from a real Go type through reflect, so existing Go
// values can serve as base types without hand-written descriptors.
package meta
