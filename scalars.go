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
	"fmt"
	"math"
	"reflect"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// Cached reflect.Type values for the built-in converters.
var (
	stringType   = reflect.TypeOf((*string)(nil)).Elem()
	boolType     = reflect.TypeOf((*bool)(nil)).Elem()
	bytesType    = reflect.TypeOf((*[]byte)(nil)).Elem()
	timeType     = reflect.TypeOf((*time.Time)(nil)).Elem()
	durationType = reflect.TypeOf((*time.Duration)(nil)).Elem()
)

// pairConverter is the concrete Converter shape used by the built-in set:
// a declared pair plus an untyped transform.
type pairConverter struct {
	source reflect.Type
	target reflect.Type
	fn     func(any) (any, error)
}

func (c pairConverter) Pair() (source, target reflect.Type) {
	return c.source, c.target
}

func (c pairConverter) Convert(value any) (any, error) {
	return c.fn(value)
}

// stringToNumberFactory produces converters from string to any numeric
// type, including named numeric types such as `type Port int`. Parsing
// goes through spf13/cast with an explicit range check for the target
// width.
type stringToNumberFactory struct {
	cache converterCache
}

func newStringToNumberFactory() *stringToNumberFactory {
	return &stringToNumberFactory{}
}

func (f *stringToNumberFactory) SourceType() reflect.Type {
	return stringType
}

func (f *stringToNumberFactory) ConverterFor(target reflect.Type) Converter {
	return f.cache.get(target, func() Converter {
		if !isNumericKind(target.Kind()) {
			return nil
		}
		return pairConverter{
			source: stringType,
			target: target,
			fn: func(value any) (any, error) {
				s, ok := value.(string)
				if !ok {
					return nil, fmt.Errorf("expected string, got %T", value)
				}
				return parseNumber(s, target)
			},
		}
	})
}

// parseNumber parses s into a value of the numeric type target.
func parseNumber(s string, target reflect.Type) (any, error) {
	out := reflect.New(target).Elem()
	switch target.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := cast.ToInt64E(s)
		if err != nil {
			return nil, fmt.Errorf("invalid integer: %w", err)
		}
		if out.OverflowInt(n) {
			return nil, fmt.Errorf("value %d overflows %s", n, target)
		}
		out.SetInt(n)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := cast.ToUint64E(s)
		if err != nil {
			return nil, fmt.Errorf("invalid unsigned integer: %w", err)
		}
		if out.OverflowUint(n) {
			return nil, fmt.Errorf("value %d overflows %s", n, target)
		}
		out.SetUint(n)

	case reflect.Float32, reflect.Float64:
		n, err := cast.ToFloat64E(s)
		if err != nil {
			return nil, fmt.Errorf("invalid float: %w", err)
		}
		if out.OverflowFloat(n) {
			return nil, fmt.Errorf("value %g overflows %s", n, target)
		}
		out.SetFloat(n)

	default:
		return nil, fmt.Errorf("%s is not a numeric type", target)
	}
	return out.Interface(), nil
}

func isNumericKind(k reflect.Kind) bool {
	return isIntKind(k) || k == reflect.Float32 || k == reflect.Float64
}

// newStringToBoolConverter accepts the generous boolean vocabulary:
// true/false, 1/0, yes/no, on/off, t/f, y/n, case-insensitive. The empty
// string converts to false.
func newStringToBoolConverter() Converter {
	return pairConverter{
		source: stringType,
		target: boolType,
		fn: func(value any) (any, error) {
			s, _ := value.(string)
			return parseBoolGenerous(s)
		},
	}
}

func parseBoolGenerous(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "on", "t", "y":
		return true, nil
	case "false", "0", "no", "off", "f", "n", "":
		return false, nil
	default:
		return false, fmt.Errorf("%w: %q", ErrInvalidBooleanValue, s)
	}
}

// newStringToTimeConverter parses RFC3339 and the other layouts cast
// recognizes (date-only, RFC1123, unix datetime forms).
func newStringToTimeConverter() Converter {
	return pairConverter{
		source: stringType,
		target: timeType,
		fn: func(value any) (any, error) {
			s, _ := value.(string)
			t, err := cast.ToTimeE(s)
			if err != nil {
				return nil, fmt.Errorf("unable to parse time %q: %w", s, err)
			}
			return t, nil
		},
	}
}

// newStringToDurationConverter parses Go duration strings such as "1h30m".
func newStringToDurationConverter() Converter {
	return pairConverter{
		source: stringType,
		target: durationType,
		fn: func(value any) (any, error) {
			s, _ := value.(string)
			d, err := cast.ToDurationE(s)
			if err != nil {
				return nil, fmt.Errorf("invalid duration: %w", err)
			}
			return d, nil
		},
	}
}

// newTimeToStringConverter formats times as RFC3339Nano, the canonical
// form the string-to-time side round-trips.
func newTimeToStringConverter() Converter {
	return pairConverter{
		source: timeType,
		target: stringType,
		fn: func(value any) (any, error) {
			t, ok := value.(time.Time)
			if !ok {
				return nil, fmt.Errorf("expected time.Time, got %T", value)
			}
			return t.Format(time.RFC3339Nano), nil
		},
	}
}

// newStringToBytesConverter converts strings to raw bytes. Registered as
// an exact pair so the string-to-slice splitter never sees []byte targets.
func newStringToBytesConverter() Converter {
	return pairConverter{
		source: stringType,
		target: bytesType,
		fn: func(value any) (any, error) {
			s, _ := value.(string)
			return []byte(s), nil
		},
	}
}

func newBytesToStringConverter() Converter {
	return pairConverter{
		source: bytesType,
		target: stringType,
		fn: func(value any) (any, error) {
			b, ok := value.([]byte)
			if !ok {
				return nil, fmt.Errorf("expected []byte, got %T", value)
			}
			return string(b), nil
		},
	}
}

// numberToNumberConverter widens or narrows between any two numeric types,
// failing on range overflow or a negative value narrowed into an unsigned
// type. Fractional parts truncate toward zero, matching Go conversions.
type numberToNumberConverter struct{}

func (numberToNumberConverter) Matches(source, target TypeDescriptor) bool {
	if !source.IsValid() || !target.IsValid() {
		return false
	}
	return isNumericKind(source.typ.Kind()) && isNumericKind(target.typ.Kind())
}

func (numberToNumberConverter) Convert(value any, source, target TypeDescriptor) (any, error) {
	in := reflect.ValueOf(value)
	out := reflect.New(target.typ).Elem()

	switch {
	case isSignedKind(in.Kind()):
		return setFromInt(out, in.Int(), target)
	case isUnsignedKind(in.Kind()):
		return setFromUint(out, in.Uint(), target)
	default:
		return setFromFloat(out, in.Float(), target)
	}
}

func isSignedKind(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Int64
}

func isUnsignedKind(k reflect.Kind) bool {
	return k >= reflect.Uint && k <= reflect.Uint64
}

func setFromInt(out reflect.Value, n int64, target TypeDescriptor) (any, error) {
	switch {
	case isSignedKind(out.Kind()):
		if out.OverflowInt(n) {
			return nil, fmt.Errorf("value %d overflows %s", n, target)
		}
		out.SetInt(n)
	case isUnsignedKind(out.Kind()):
		if n < 0 {
			return nil, fmt.Errorf("negative value %d for unsigned %s", n, target)
		}
		if out.OverflowUint(uint64(n)) {
			return nil, fmt.Errorf("value %d overflows %s", n, target)
		}
		out.SetUint(uint64(n))
	default:
		out.SetFloat(float64(n))
	}
	return out.Interface(), nil
}

func setFromUint(out reflect.Value, n uint64, target TypeDescriptor) (any, error) {
	switch {
	case isSignedKind(out.Kind()):
		if n > 1<<63-1 || out.OverflowInt(int64(n)) {
			return nil, fmt.Errorf("value %d overflows %s", n, target)
		}
		out.SetInt(int64(n))
	case isUnsignedKind(out.Kind()):
		if out.OverflowUint(n) {
			return nil, fmt.Errorf("value %d overflows %s", n, target)
		}
		out.SetUint(n)
	default:
		out.SetFloat(float64(n))
	}
	return out.Interface(), nil
}

func setFromFloat(out reflect.Value, f float64, target TypeDescriptor) (any, error) {
	// int64(f)/uint64(f) is undefined for f outside the integer range (and
	// for NaN), so bounds are checked on f itself before converting. The
	// range comparisons also catch the infinities.
	switch {
	case isSignedKind(out.Kind()):
		if math.IsNaN(f) {
			return nil, fmt.Errorf("value NaN is not representable in %s", target)
		}
		if f < math.MinInt64 || f >= math.MaxInt64 {
			return nil, fmt.Errorf("value %g overflows %s", f, target)
		}
		n := int64(f)
		if out.OverflowInt(n) {
			return nil, fmt.Errorf("value %g overflows %s", f, target)
		}
		out.SetInt(n)
	case isUnsignedKind(out.Kind()):
		if math.IsNaN(f) {
			return nil, fmt.Errorf("value NaN is not representable in %s", target)
		}
		if f < 0 {
			return nil, fmt.Errorf("negative value %g for unsigned %s", f, target)
		}
		if f >= math.MaxUint64 {
			return nil, fmt.Errorf("value %g overflows %s", f, target)
		}
		n := uint64(f)
		if out.OverflowUint(n) {
			return nil, fmt.Errorf("value %g overflows %s", f, target)
		}
		out.SetUint(n)
	default:
		if out.OverflowFloat(f) {
			return nil, fmt.Errorf("value %g overflows %s", f, target)
		}
		out.SetFloat(f)
	}
	return out.Interface(), nil
}
