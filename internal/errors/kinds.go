package errors

import (
	"fmt"

	crdb "github.com/cockroachdb/errors"
)

// Code categorizes synthesis errors.
type Code string

const (
	// CodeMethodNotFound: an override signature does not exist on the base
	// type, exists but is not overridable, or a call names no method.
	CodeMethodNotFound Code = "METHOD_NOT_FOUND"

	// CodeDuplicateOverride: the same signature was registered twice on one builder.
	CodeDuplicateOverride Code = "DUPLICATE_OVERRIDE"

	// CodeDuplicateProperty: a property name was registered twice, or it
	// collides with a member the base type already has.
	CodeDuplicateProperty Code = "DUPLICATE_PROPERTY"

	// CodeUnsupportedBaseType: the base type cannot be extended.
	CodeUnsupportedBaseType Code = "UNSUPPORTED_BASE_TYPE"

	// CodeUnsupportedOperation: the selected backend cannot do what was
	// asked, or a SuperInvoker has no base body to run.
	CodeUnsupportedOperation Code = "UNSUPPORTED_OPERATION"

	// CodeNoMatchingConstructor: instantiate arguments match no constructor.
	CodeNoMatchingConstructor Code = "NO_MATCHING_CONSTRUCTOR"

	// CodeInvalidArgument: call or definition arguments do not fit the
	// declared parameter types.
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
)

// SynthError is the structured error raised by the synthesis engine.
type SynthError struct {
	// Code identifies the error category.
	Code Code

	// Message is a human-readable description.
	Message string

	// Type is the type the error concerns (base or synthesized), if any.
	Type string

	// Member is the signature, property or constructor the error concerns.
	Member string
}

// Error implements the error interface.
func (e *SynthError) Error() string {
	switch {
	case e.Type != "" && e.Member != "":
		return fmt.Sprintf("%s: %s (type=%s, member=%s)", e.Code, e.Message, e.Type, e.Member)
	case e.Type != "":
		return fmt.Sprintf("%s: %s (type=%s)", e.Code, e.Message, e.Type)
	case e.Member != "":
		return fmt.Sprintf("%s: %s (member=%s)", e.Code, e.Message, e.Member)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Newc creates a SynthError with a stack trace attached.
func Newc(code Code, typ, member, format string, args ...any) error {
	return crdb.WithStackDepth(&SynthError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Type:    typ,
		Member:  member,
	}, 1)
}

// MethodNotFound reports that member does not resolve on typ.
func MethodNotFound(typ, member, reason string) error {
	return Newc(CodeMethodNotFound, typ, member, "%s", reason)
}

// DuplicateOverride reports a signature registered twice.
func DuplicateOverride(typ, member string) error {
	return Newc(CodeDuplicateOverride, typ, member, "override already registered")
}

// DuplicateProperty reports a property name collision.
func DuplicateProperty(typ, member, reason string) error {
	return Newc(CodeDuplicateProperty, typ, member, "%s", reason)
}

// UnsupportedBaseType reports a base that cannot be extended.
func UnsupportedBaseType(typ, reason string) error {
	return Newc(CodeUnsupportedBaseType, typ, "", "%s", reason)
}

// UnsupportedOperation reports an operation the backend cannot perform.
func UnsupportedOperation(typ, member, reason string) error {
	return Newc(CodeUnsupportedOperation, typ, member, "%s", reason)
}

// NoMatchingConstructor reports an instantiate call with no matching constructor.
func NoMatchingConstructor(typ, member, reason string) error {
	return Newc(CodeNoMatchingConstructor, typ, member, "%s", reason)
}

// InvalidArgument reports arguments that do not fit declared types.
func InvalidArgument(typ, member, reason string) error {
	return Newc(CodeInvalidArgument, typ, member, "%s", reason)
}

// CodeOf returns the Code of the first SynthError in err's chain, or "".
// Uses errors.As to handle wrapped errors.
func CodeOf(err error) Code {
	var se *SynthError
	if crdb.As(err, &se) {
		return se.Code
	}
	return ""
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}

// IsMethodNotFound returns true for CodeMethodNotFound errors.
func IsMethodNotFound(err error) bool { return HasCode(err, CodeMethodNotFound) }

// IsDuplicateOverride returns true for CodeDuplicateOverride errors.
func IsDuplicateOverride(err error) bool { return HasCode(err, CodeDuplicateOverride) }

// IsDuplicateProperty returns true for CodeDuplicateProperty errors.
func IsDuplicateProperty(err error) bool { return HasCode(err, CodeDuplicateProperty) }

// IsUnsupportedBaseType returns true for CodeUnsupportedBaseType errors.
func IsUnsupportedBaseType(err error) bool { return HasCode(err, CodeUnsupportedBaseType) }

// IsUnsupportedOperation returns true for CodeUnsupportedOperation errors.
func IsUnsupportedOperation(err error) bool { return HasCode(err, CodeUnsupportedOperation) }

// IsNoMatchingConstructor returns true for CodeNoMatchingConstructor errors.
func IsNoMatchingConstructor(err error) bool { return HasCode(err, CodeNoMatchingConstructor) }

// IsInvalidArgument returns true for CodeInvalidArgument errors.
func IsInvalidArgument(err error) bool { return HasCode(err, CodeInvalidArgument) }
