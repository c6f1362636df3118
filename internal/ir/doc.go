// Package ir provides the identity types shared by every synth package.
//
// This package contains value types only. All other internal packages
// import ir; ir imports nothing internal. The types here describe *what* a
// synthesis request is (type references, method signatures, property
// specs, structural keys), never how a type is materialised.
//
// Key design constraints:
//   - MethodSignature equality is exact: name plus ordered parameter types
//   - Key is normalised on construction; insertion order never leaks into it
//   - Key identity is content-addressed (canonical JSON + SHA-256)
package ir
