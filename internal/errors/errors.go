// Package errors provides error handling for synth.
//
// This package re-exports github.com/cockroachdb/errors (stack traces,
// wrapping, hints) and defines the synthesis error taxonomy: every failure
// raised by builders, backends and synthesized types is a *SynthError
// carrying a Code, wrapped with a stack.
//
// Usage:
//
//	if errors.IsMethodNotFound(err) {
//	    // the override targets nothing on the base type
//	}
//
//	var se *errors.SynthError
//	if errors.As(err, &se) {
//	    log.Println(se.Code, se.Member)
//	}
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint     = crdb.WithHint
	WithHintf    = crdb.WithHintf
	WithDetail   = crdb.WithDetail
	WithDetailf  = crdb.WithDetailf
	GetAllHints  = crdb.GetAllHints
	FlattenHints = crdb.FlattenHints
)

// Error inspection
var (
	Is        = crdb.Is
	IsAny     = crdb.IsAny
	As        = crdb.As
	Unwrap    = crdb.Unwrap
	UnwrapAll = crdb.UnwrapAll
)
