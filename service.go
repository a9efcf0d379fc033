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
	"reflect"
	"sync"
)

// Service is the public-facing resolver: given a (value, source, target)
// triple it finds the best-matching converter through the registry, executes
// it, and memoizes the resolution. Convert and CanConvert are safe for
// unbounded concurrent callers; registration methods may race with early use
// and remain correct, at the cost of dropping the resolution cache.
type Service struct {
	registry  *Registry
	separator string
}

// New constructs a Service with the built-in converter set (scalars,
// collections, strings, pointers) registered. Use [WithoutDefaults] to start
// from an empty registry.
//
// Example:
//
//	svc := convert.New(
//	    convert.WithConverter(convert.NewConverter(uuidFromString)),
//	)
//	id, err := convert.To[uuid.UUID](svc, "b7a0…")
func New(opts ...Option) *Service {
	cfg := applyOptions(opts)

	s := &Service{
		registry:  NewRegistry(),
		separator: cfg.separator,
	}

	if cfg.defaults {
		s.registerDefaults()
	}

	for _, c := range cfg.converters {
		if err := s.registry.AddConverter(c); err != nil {
			panic(fmt.Sprintf("convert: invalid converter option: %v", err))
		}
	}
	for _, f := range cfg.factories {
		if err := s.registry.AddConverterFactory(f); err != nil {
			panic(fmt.Sprintf("convert: invalid factory option: %v", err))
		}
	}
	for _, g := range cfg.generics {
		if err := s.registry.AddGenericConverter(g); err != nil {
			panic(fmt.Sprintf("convert: invalid generic converter option: %v", err))
		}
	}

	return s
}

// registerDefaults installs the standard converter set. Generic converters
// are appended in fixed priority order: pointer handling first, then the
// collection family, then string fallbacks.
func (s *Service) registerDefaults() {
	r := s.registry

	// Scalar pair converters and factories.
	r.AddConverterFactory(newStringToNumberFactory())
	r.AddConverter(newStringToBoolConverter())
	r.AddConverter(newStringToTimeConverter())
	r.AddConverter(newStringToDurationConverter())
	r.AddConverter(newTimeToStringConverter())
	r.AddConverter(newStringToBytesConverter())
	r.AddConverter(newBytesToStringConverter())

	// Generic converters, priority order.
	r.appendGeneric(derefConverter{service: s})
	r.appendGeneric(pointerWrapConverter{service: s})
	r.appendGeneric(numberToNumberConverter{})
	r.appendGeneric(sliceToSliceConverter{service: s})
	r.appendGeneric(sliceToArrayConverter{service: s})
	r.appendGeneric(mapToMapConverter{service: s})
	r.appendGeneric(sliceToStringConverter{service: s})
	r.appendGeneric(stringToSliceConverter{service: s})
	r.appendGeneric(sliceToObjectConverter{service: s})
	r.appendGeneric(objectToSliceConverter{service: s})
	r.appendGeneric(textUnmarshalerConverter{})
	r.appendGeneric(fallbackStringConverter{})
}

// Registry returns the service's underlying registry, exposed for
// inspection via [Registry.Stats]. Mutate it through the Service methods.
func (s *Service) Registry() *Registry {
	return s.registry
}

// AddConverter registers c and invalidates the resolution cache.
func (s *Service) AddConverter(c Converter) error {
	return s.registry.AddConverter(c)
}

// AddConverterFactory registers f and invalidates the resolution cache.
func (s *Service) AddConverterFactory(f ConverterFactory) error {
	return s.registry.AddConverterFactory(f)
}

// AddGenericConverter registers g ahead of the built-in generic set and
// invalidates the resolution cache.
func (s *Service) AddGenericConverter(g GenericConverter) error {
	return s.registry.AddGenericConverter(g)
}

// RemoveConvertible drops all converters registered for exactly the pair
// and invalidates the resolution cache.
func (s *Service) RemoveConvertible(source, target reflect.Type) {
	s.registry.RemoveConvertible(source, target)
}

// CanConvert reports whether a converter resolves for the pair. The
// resolution, including a negative answer, is cached until the next
// registry mutation.
func (s *Service) CanConvert(source, target TypeDescriptor) bool {
	if !target.IsValid() {
		return false
	}
	if !source.IsValid() {
		// nil source value: convertibility is decided by the nil policy.
		return target.IsNilable()
	}
	return s.registry.resolve(source, target).found()
}

// Convert transforms value from source to target.
//
// A nil value converts to the target's zero value when the target is
// nilable (pointer, slice, map, interface, channel, function); converting
// nil to any other target fails with [ErrNilValue]. A nil-to-pointer
// conversion is how an "absent" value is represented.
//
// When no converter resolves the error wraps [ErrNoConverter]; when a
// located converter fails the error wraps the converter's own failure.
// Both carry the (source, target) pair for diagnostics.
func (s *Service) Convert(value any, source, target TypeDescriptor) (any, error) {
	if !target.IsValid() {
		return nil, &ConversionError{
			Value: value, Source: source, Target: target,
			Reason: "invalid target descriptor", Err: ErrInvalidDescriptor,
		}
	}

	if value == nil {
		if target.IsNilable() {
			return reflect.Zero(target.typ).Interface(), nil
		}
		return nil, &ConversionError{
			Value: value, Source: source, Target: target,
			Reason: fmt.Sprintf("cannot convert nil to %s", target), Err: ErrNilValue,
		}
	}

	if !source.IsValid() || source.typ.Kind() == reflect.Interface {
		// Narrow interface descriptors to the value's dynamic type, so
		// elements of []any convert according to what they actually hold.
		source = TypeOf(value)
	}

	res := s.registry.resolve(source, target)
	switch {
	case res.identity:
		return value, nil

	case res.conv != nil:
		return s.invoke(res, value, source, target)

	case res.gen != nil:
		out, err := res.gen.Convert(value, source, target)
		if err != nil {
			return nil, wrapPairError(err, value, source, target)
		}
		return adaptOutput(out, target.typ)

	default:
		return nil, newUnsupportedError(value, source, target)
	}
}

// invoke runs a pair converter, widening the input to the candidate source
// type the converter was matched under and narrowing the result to the
// requested target type.
func (s *Service) invoke(res *resolution, value any, source, target TypeDescriptor) (any, error) {
	in, err := adaptInput(value, res.source)
	if err != nil {
		return nil, newConverterError(value, source, target, err)
	}

	out, err := res.conv.Convert(in)
	if err != nil {
		return nil, wrapPairError(err, value, source, target)
	}

	return adaptOutput(out, target.typ)
}

// wrapPairError attaches pair context to a converter failure, unless the
// failure already carries it (recursive element conversions report the
// innermost pair plus positional context added by the collection
// converters).
func wrapPairError(err error, value any, source, target TypeDescriptor) error {
	if _, ok := err.(*ConversionError); ok {
		return err
	}
	return newConverterError(value, source, target, err)
}

// adaptInput converts value to the candidate source type the matched
// converter declares: a no-op for assignable values, a dereference for
// pointer sources matched against their pointee, and a reflect conversion
// for named types matched against their underlying type.
func adaptInput(value any, want reflect.Type) (any, error) {
	rv := reflect.ValueOf(value)
	if rv.Type().AssignableTo(want) {
		return value, nil
	}
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, ErrNilValue
		}
		rv = rv.Elem()
		if rv.Type().AssignableTo(want) {
			return rv.Interface(), nil
		}
	}
	if !rv.Type().ConvertibleTo(want) {
		return nil, fmt.Errorf("value of type %s is not convertible to %s", rv.Type(), want)
	}
	return rv.Convert(want).Interface(), nil
}

// adaptOutput converts a converter's result to the requested target type:
// a reflect conversion when the converter was matched under the target's
// underlying type, or a pointer wrap when it was matched under the
// target's pointee.
func adaptOutput(out any, target reflect.Type) (any, error) {
	if out == nil {
		return reflect.Zero(target).Interface(), nil
	}
	rv := reflect.ValueOf(out)
	if rv.Type().AssignableTo(target) {
		return out, nil
	}
	if target.Kind() == reflect.Pointer {
		elem := target.Elem()
		if rv.Type().AssignableTo(elem) {
			p := reflect.New(elem)
			p.Elem().Set(rv)
			return p.Interface(), nil
		}
		if rv.Type().ConvertibleTo(elem) {
			p := reflect.New(elem)
			p.Elem().Set(rv.Convert(elem))
			return p.Interface(), nil
		}
	}
	if rv.Type().ConvertibleTo(target) {
		return rv.Convert(target).Interface(), nil
	}
	return nil, fmt.Errorf("converter produced %s, want %s", rv.Type(), target)
}

// To converts value to the compile-time type T using s, deriving the source
// descriptor from value's dynamic type. It is the generic front door for
// the common case:
//
//	n, err := convert.To[int](svc, "42")
func To[T any](s *Service, value any) (T, error) {
	out, err := s.Convert(value, TypeOf(value), TypeFor[T]())
	if err != nil {
		var zero T
		return zero, err
	}
	if out == nil {
		var zero T
		return zero, nil
	}
	if v, ok := out.(T); ok {
		return v, nil
	}
	// Assignable but not identical dynamic type (identity conversions of
	// named types to unnamed shapes). Settle it with one reflect convert.
	return reflect.ValueOf(out).Convert(reflect.TypeOf((*T)(nil)).Elem()).Interface().(T), nil
}

var (
	defaultOnce    sync.Once
	defaultService *Service
)

// Default returns a process-wide shared Service with the built-in
// converters, constructed on first use. It exists as a convenience for
// code with no way to thread a Service through; prefer constructing one
// Service during application startup and passing it to consumers.
func Default() *Service {
	defaultOnce.Do(func() {
		defaultService = New()
	})
	return defaultService
}
