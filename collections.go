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
	"strings"
)

// isSequence reports whether d describes a slice or array.
func isSequence(d TypeDescriptor) bool {
	return d.IsSlice() || d.IsArray()
}

// isRecursive reports whether d's type reaches itself through its own
// element, key, or pointee chain, as in `type Node []Node`. The structural
// Matches predicates refuse such types: their element convertibility check
// recurses through the resolver before the outer pair is cached, so a
// self-referential element type would never terminate.
func isRecursive(d TypeDescriptor) bool {
	if d.typ == nil {
		return false
	}
	return typeCycles(d.typ, make(map[reflect.Type]bool))
}

func typeCycles(t reflect.Type, seen map[reflect.Type]bool) bool {
	for {
		switch t.Kind() {
		case reflect.Map:
			if seen[t] {
				return true
			}
			seen[t] = true
			if typeCycles(t.Key(), seen) {
				return true
			}
			t = t.Elem()
		case reflect.Slice, reflect.Array, reflect.Pointer:
			if seen[t] {
				return true
			}
			seen[t] = true
			t = t.Elem()
		default:
			return false
		}
	}
}

// canConvertElem is the element-convertibility predicate used by the
// collection converters. Interface element types are deferred to runtime,
// where the service narrows each element to its dynamic type.
func canConvertElem(s *Service, source, target TypeDescriptor) bool {
	if source.typ.Kind() == reflect.Interface {
		return true
	}
	return s.CanConvert(source, target)
}

// sliceToSliceConverter converts slices and arrays to slices element-wise,
// recursing through the service for each element. Any element failure
// aborts the whole conversion; there are no partial results.
type sliceToSliceConverter struct {
	service *Service
}

func (c sliceToSliceConverter) Matches(source, target TypeDescriptor) bool {
	if !isSequence(source) || !target.IsSlice() {
		return false
	}
	if isRecursive(source) || isRecursive(target) {
		return false
	}
	return canConvertElem(c.service, source.Elem(), target.Elem())
}

func (c sliceToSliceConverter) Convert(value any, source, target TypeDescriptor) (any, error) {
	in := reflect.ValueOf(value)
	out := reflect.MakeSlice(target.typ, in.Len(), in.Len())
	if err := convertElements(c.service, in, out, source.Elem(), target.Elem()); err != nil {
		return nil, err
	}
	return out.Interface(), nil
}

// sliceToArrayConverter converts slices and arrays to arrays. The source
// length must equal the array length exactly.
type sliceToArrayConverter struct {
	service *Service
}

func (c sliceToArrayConverter) Matches(source, target TypeDescriptor) bool {
	if !isSequence(source) || !target.IsArray() {
		return false
	}
	if isRecursive(source) || isRecursive(target) {
		return false
	}
	return canConvertElem(c.service, source.Elem(), target.Elem())
}

func (c sliceToArrayConverter) Convert(value any, source, target TypeDescriptor) (any, error) {
	in := reflect.ValueOf(value)
	if in.Len() != target.typ.Len() {
		return nil, fmt.Errorf("%w: %d elements into %s", ErrLengthMismatch, in.Len(), target)
	}
	out := reflect.New(target.typ).Elem()
	if err := convertElements(c.service, in, out, source.Elem(), target.Elem()); err != nil {
		return nil, err
	}
	return out.Interface(), nil
}

// convertElements converts in's elements into out, which must be settable
// and of equal length.
func convertElements(s *Service, in, out reflect.Value, sourceElem, targetElem TypeDescriptor) error {
	for i := 0; i < in.Len(); i++ {
		ev, err := s.Convert(in.Index(i).Interface(), sourceElem, targetElem)
		if err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
		if ev == nil {
			continue // nilable element types keep their zero value
		}
		out.Index(i).Set(reflect.ValueOf(ev))
	}
	return nil
}

// mapToMapConverter converts maps key-wise and value-wise. Result
// iteration order is whatever Go map iteration yields; the engine adds no
// ordering guarantees of its own.
type mapToMapConverter struct {
	service *Service
}

func (c mapToMapConverter) Matches(source, target TypeDescriptor) bool {
	if !source.IsMap() || !target.IsMap() {
		return false
	}
	if isRecursive(source) || isRecursive(target) {
		return false
	}
	return canConvertElem(c.service, source.Key(), target.Key()) &&
		canConvertElem(c.service, source.Elem(), target.Elem())
}

func (c mapToMapConverter) Convert(value any, source, target TypeDescriptor) (any, error) {
	in := reflect.ValueOf(value)
	out := reflect.MakeMapWithSize(target.typ, in.Len())

	iter := in.MapRange()
	for iter.Next() {
		k, err := c.service.Convert(iter.Key().Interface(), source.Key(), target.Key())
		if err != nil {
			return nil, fmt.Errorf("key %v: %w", iter.Key(), err)
		}
		v, err := c.service.Convert(iter.Value().Interface(), source.Elem(), target.Elem())
		if err != nil {
			return nil, fmt.Errorf("value for key %v: %w", iter.Key(), err)
		}
		out.SetMapIndex(reflect.ValueOf(k), valueOrZero(v, target.typ.Elem()))
	}
	return out.Interface(), nil
}

func valueOrZero(v any, t reflect.Type) reflect.Value {
	if v == nil {
		return reflect.Zero(t)
	}
	return reflect.ValueOf(v)
}

// sliceToStringConverter joins sequence elements with the service's list
// separator, converting each element to string first. An empty sequence
// converts to the empty string.
type sliceToStringConverter struct {
	service *Service
}

func (c sliceToStringConverter) Matches(source, target TypeDescriptor) bool {
	if !isSequence(source) || !target.IsString() || isRecursive(source) {
		return false
	}
	return canConvertElem(c.service, source.Elem(), TypeFor[string]())
}

func (c sliceToStringConverter) Convert(value any, source, target TypeDescriptor) (any, error) {
	in := reflect.ValueOf(value)
	parts := make([]string, in.Len())
	for i := 0; i < in.Len(); i++ {
		ev, err := c.service.Convert(in.Index(i).Interface(), source.Elem(), TypeFor[string]())
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		parts[i], _ = ev.(string)
	}
	return strings.Join(parts, c.service.separator), nil
}

// stringToSliceConverter splits a string on the service's list separator
// and converts each token to the element type. Tokens are not trimmed; the
// empty string converts to an empty slice, not a one-element slice.
type stringToSliceConverter struct {
	service *Service
}

func (c stringToSliceConverter) Matches(source, target TypeDescriptor) bool {
	if !source.IsString() || !target.IsSlice() || isRecursive(target) {
		return false
	}
	return c.service.CanConvert(TypeFor[string](), target.Elem())
}

func (c stringToSliceConverter) Convert(value any, source, target TypeDescriptor) (any, error) {
	s := reflect.ValueOf(value).String()

	if s == "" {
		return reflect.MakeSlice(target.typ, 0, 0).Interface(), nil
	}

	tokens := strings.Split(s, c.service.separator)
	out := reflect.MakeSlice(target.typ, len(tokens), len(tokens))
	for i, token := range tokens {
		ev, err := c.service.Convert(token, TypeFor[string](), target.Elem())
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		if ev == nil {
			continue
		}
		out.Index(i).Set(reflect.ValueOf(ev))
	}
	return out.Interface(), nil
}

// sliceToObjectConverter unwraps a single-element sequence into its
// element. Sequences with any other length fail at conversion time.
type sliceToObjectConverter struct {
	service *Service
}

func (c sliceToObjectConverter) Matches(source, target TypeDescriptor) bool {
	if !isSequence(source) || isSequence(target) || target.IsMap() {
		return false
	}
	if isRecursive(source) {
		return false
	}
	return canConvertElem(c.service, source.Elem(), target)
}

func (c sliceToObjectConverter) Convert(value any, source, target TypeDescriptor) (any, error) {
	in := reflect.ValueOf(value)
	if in.Len() != 1 {
		return nil, fmt.Errorf("%w, got %d", ErrNotSingleton, in.Len())
	}
	return c.service.Convert(in.Index(0).Interface(), source.Elem(), target)
}

// objectToSliceConverter wraps a single value into a one-element slice.
type objectToSliceConverter struct {
	service *Service
}

func (c objectToSliceConverter) Matches(source, target TypeDescriptor) bool {
	if isSequence(source) || source.IsMap() || !target.IsSlice() || isRecursive(target) {
		return false
	}
	return c.service.CanConvert(source, target.Elem())
}

func (c objectToSliceConverter) Convert(value any, source, target TypeDescriptor) (any, error) {
	ev, err := c.service.Convert(value, source, target.Elem())
	if err != nil {
		return nil, err
	}
	out := reflect.MakeSlice(target.typ, 1, 1)
	out.Index(0).Set(valueOrZero(ev, target.typ.Elem()))
	return out.Interface(), nil
}
