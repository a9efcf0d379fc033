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
	"reflect"
)

// TypeDescriptor is an immutable description of a type occurrence. It wraps
// a reflect.Type, which already carries element, key, and value types for
// composite kinds, so descriptor equality is plain == on the wrapped type.
//
// The zero TypeDescriptor is invalid; construct descriptors with [TypeFor],
// [TypeOf], [ForType], or the composite constructors.
//
// TypeDescriptor is comparable and safe to use as a map key. Two descriptors
// are equal iff they describe the same reflect.Type, including all nested
// element, key, and value types.
type TypeDescriptor struct {
	typ reflect.Type
}

// TypeFor returns the descriptor for the compile-time type T.
//
// Example:
//
//	td := convert.TypeFor[[]int]()
func TypeFor[T any]() TypeDescriptor {
	return TypeDescriptor{typ: reflect.TypeOf((*T)(nil)).Elem()}
}

// TypeOf returns the descriptor for the dynamic type of v.
// For an untyped nil v the returned descriptor is invalid; [Service.Convert]
// applies its nil policy before consulting the source descriptor, so
// TypeOf(nil) is still a usable argument there.
func TypeOf(v any) TypeDescriptor {
	return TypeDescriptor{typ: reflect.TypeOf(v)}
}

// ForType wraps an existing reflect.Type in a descriptor.
func ForType(t reflect.Type) TypeDescriptor {
	return TypeDescriptor{typ: t}
}

// SliceOf returns the descriptor for a slice with the given element type.
func SliceOf(elem TypeDescriptor) TypeDescriptor {
	return TypeDescriptor{typ: reflect.SliceOf(elem.typ)}
}

// ArrayOf returns the descriptor for an array of length n with the given
// element type.
func ArrayOf(n int, elem TypeDescriptor) TypeDescriptor {
	return TypeDescriptor{typ: reflect.ArrayOf(n, elem.typ)}
}

// MapOf returns the descriptor for a map with the given key and value types.
func MapOf(key, value TypeDescriptor) TypeDescriptor {
	return TypeDescriptor{typ: reflect.MapOf(key.typ, value.typ)}
}

// PointerTo returns the descriptor for a pointer to the given type.
func PointerTo(elem TypeDescriptor) TypeDescriptor {
	return TypeDescriptor{typ: reflect.PointerTo(elem.typ)}
}

// Type returns the wrapped reflect.Type. It is nil for the zero descriptor.
func (d TypeDescriptor) Type() reflect.Type {
	return d.typ
}

// IsValid reports whether the descriptor describes a type.
func (d TypeDescriptor) IsValid() bool {
	return d.typ != nil
}

// Elem returns the element descriptor for slices, arrays, pointers, and
// channels, and the value descriptor for maps. It panics for other kinds,
// mirroring reflect.Type.Elem.
func (d TypeDescriptor) Elem() TypeDescriptor {
	return TypeDescriptor{typ: d.typ.Elem()}
}

// Key returns the key descriptor for maps.
func (d TypeDescriptor) Key() TypeDescriptor {
	return TypeDescriptor{typ: d.typ.Key()}
}

// IsSlice reports whether the described type is a slice.
func (d TypeDescriptor) IsSlice() bool {
	return d.typ != nil && d.typ.Kind() == reflect.Slice
}

// IsArray reports whether the described type is an array.
func (d TypeDescriptor) IsArray() bool {
	return d.typ != nil && d.typ.Kind() == reflect.Array
}

// IsMap reports whether the described type is a map.
func (d TypeDescriptor) IsMap() bool {
	return d.typ != nil && d.typ.Kind() == reflect.Map
}

// IsPointer reports whether the described type is a pointer.
func (d TypeDescriptor) IsPointer() bool {
	return d.typ != nil && d.typ.Kind() == reflect.Pointer
}

// IsString reports whether the described type has string kind.
// This includes named string types such as `type Status string`.
func (d TypeDescriptor) IsString() bool {
	return d.typ != nil && d.typ.Kind() == reflect.String
}

// IsNilable reports whether the described type has a nil representation
// (pointer, slice, map, interface, channel, or function).
func (d TypeDescriptor) IsNilable() bool {
	if d.typ == nil {
		return false
	}
	switch d.typ.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Map,
		reflect.Interface, reflect.Chan, reflect.Func:
		return true
	default:
		return false
	}
}

// AssignableTo reports whether a value of this descriptor's type can be used
// where other is expected without conversion. Because reflect.Type preserves
// element types, assignability for slices, arrays, and maps is exact.
func (d TypeDescriptor) AssignableTo(other TypeDescriptor) bool {
	if d.typ == nil || other.typ == nil {
		return false
	}
	return d.typ.AssignableTo(other.typ)
}

// String returns the Go syntax of the described type, or "<nil>" for the
// zero descriptor.
func (d TypeDescriptor) String() string {
	if d.typ == nil {
		return "<nil>"
	}
	return d.typ.String()
}
