// Copyright 2026 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package convert

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// Static errors for conversion operations.
var (
	// ErrNoConverter is returned (wrapped in a *ConversionError) when no
	// converter resolves for the requested pair. Callers can recover by
	// trying a different pair or reporting to the end user.
	ErrNoConverter = errors.New("no converter found")

	// ErrNilValue is returned when a nil value is converted to a target
	// type that has no nil representation.
	ErrNilValue = errors.New("nil value for non-nilable target")

	// ErrNilConverter is returned by registration methods when passed a
	// nil converter or factory.
	ErrNilConverter = errors.New("nil converter")

	// ErrInvalidDescriptor is returned when a zero TypeDescriptor is used
	// where a concrete type is required.
	ErrInvalidDescriptor = errors.New("invalid type descriptor")

	// ErrInvalidBooleanValue is returned when a string cannot be parsed
	// as a boolean.
	ErrInvalidBooleanValue = errors.New("invalid boolean value")

	// ErrLengthMismatch is returned when converting a slice to an array
	// of a different length.
	ErrLengthMismatch = errors.New("length mismatch")

	// ErrNotSingleton is returned when converting a multi-element slice
	// to a single object.
	ErrNotSingleton = errors.New("expected exactly one element")
)

// ConversionError is the failure type surfaced by [Service.Convert].
// It carries the value and the (source, target) pair for diagnostics.
// The engine never discards a converter's failure: the originating cause is
// attached as Err and reachable via [errors.Is] and [errors.As].
//
// An unsupported pair wraps [ErrNoConverter]:
//
//	_, err := svc.Convert(v, src, dst)
//	if errors.Is(err, convert.ErrNoConverter) {
//	    // no converter registered for (src, dst)
//	}
type ConversionError struct {
	Value  any            // The value that failed conversion
	Source TypeDescriptor // Requested source descriptor
	Target TypeDescriptor // Requested target descriptor
	Reason string         // Human-readable reason for failure
	Err    error          // Underlying error
}

// Error returns a formatted error message with contextual hints.
func (e *ConversionError) Error() string {
	var base string
	if e.Reason != "" {
		base = fmt.Sprintf("converting %s to %s: %s", e.Source, e.Target, e.Reason)
	} else {
		base = fmt.Sprintf("converting %s to %s: failed to convert %v: %v",
			e.Source, e.Target, e.Value, e.Err)
	}

	if hint := e.hint(); hint != "" {
		base += " (hint: " + hint + ")"
	}

	return base
}

// hint returns a contextual hint for common conversion mistakes.
func (e *ConversionError) hint() string {
	t := e.Target.Type()
	if t == nil {
		return ""
	}

	s, isString := e.Value.(string)

	// Decimal point in integer target
	if isString && isIntKind(t.Kind()) && strings.Contains(s, ".") {
		return "use a float target type for decimal values"
	}

	// Boolean with unexpected value
	if isString && t.Kind() == reflect.Bool {
		return "accepted values: true/false, yes/no, 1/0, on/off"
	}

	// Slice target from a plain string
	if t.Kind() == reflect.Slice && isString && !strings.Contains(s, ",") {
		return "list values are comma-separated with no trimming"
	}

	if errors.Is(e.Err, ErrNilValue) {
		return "use a pointer target type to represent absent values"
	}

	return ""
}

// Unwrap returns the underlying error for errors.Is/As compatibility.
func (e *ConversionError) Unwrap() error {
	return e.Err
}

// HTTPStatus implements rivaas.dev/errors.ErrorType.
func (e *ConversionError) HTTPStatus() int {
	return 400 // Bad Request
}

// Code implements rivaas.dev/errors.ErrorCode.
func (e *ConversionError) Code() string {
	return "conversion_error"
}

// isIntKind returns true for any integer kind, signed or unsigned.
func isIntKind(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Uint64
}

// newUnsupportedError builds the Unsupported failure for a pair.
func newUnsupportedError(value any, source, target TypeDescriptor) *ConversionError {
	return &ConversionError{
		Value:  value,
		Source: source,
		Target: target,
		Reason: fmt.Sprintf("no converter registered for (%s, %s)", source, target),
		Err:    ErrNoConverter,
	}
}

// newConverterError wraps a located converter's failure with pair context.
func newConverterError(value any, source, target TypeDescriptor, cause error) *ConversionError {
	return &ConversionError{
		Value:  value,
		Source: source,
		Target: target,
		Err:    cause,
	}
}
