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
	"maps"
	"reflect"
	"sync"
	"sync/atomic"
)

// Converter transforms a value of one concrete type into another.
// Converters are registered once, must be stateless, and are shared across
// all conversion calls without synchronization.
//
// A Converter may additionally implement [ConditionalConverter] to refuse
// individual (source, target) pairs at resolution time even though the
// declared pair matches.
type Converter interface {
	// Pair returns the declared source and target types.
	Pair() (source, target reflect.Type)

	// Convert transforms value, which is guaranteed by the resolution
	// algorithm to be assignable to the declared source type. It must not
	// mutate shared state; on failure it returns an error describing the
	// cause, which the service wraps with pair context.
	Convert(value any) (any, error)
}

// ConditionalConverter is a capability that lets a [Converter],
// [ConverterFactory], or factory-produced converter refuse a candidate pair
// at resolution time. The predicate receives the original, non-widened
// descriptors of the requested conversion.
type ConditionalConverter interface {
	Matches(source, target TypeDescriptor) bool
}

// ConverterFactory produces a family of converters parameterized by the
// concrete target type, covering cases like "string to any numeric type"
// with a single registration. Implementations must be idempotent: for the
// same target type the returned converters must behave identically.
type ConverterFactory interface {
	// SourceType returns the declared source type of the family.
	SourceType() reflect.Type

	// ConverterFor returns a converter producing the given target type,
	// or nil if the factory does not support that target.
	ConverterFor(target reflect.Type) Converter
}

// GenericConverter is a converter that declares no fixed pair and instead
// self-reports applicability against a structural category (slice, map,
// string, pointer, object). Generic converters receive the full descriptors
// so they can recurse through the owning [Service] for element conversions.
type GenericConverter interface {
	// Matches reports whether this converter handles the pair.
	Matches(source, target TypeDescriptor) bool

	// Convert transforms value from source to target.
	Convert(value any, source, target TypeDescriptor) (any, error)
}

// funcConverter adapts a typed Go function to the Converter interface.
type funcConverter[S, T any] struct {
	fn func(S) (T, error)
}

// NewConverter builds a [Converter] from a plain conversion function.
// The declared pair is derived from the function's type parameters.
//
// Example:
//
//	c := convert.NewConverter(func(s string) (uuid.UUID, error) {
//	    return uuid.Parse(s)
//	})
//	svc.AddConverter(c)
func NewConverter[S, T any](fn func(S) (T, error)) Converter {
	return funcConverter[S, T]{fn: fn}
}

func (c funcConverter[S, T]) Pair() (source, target reflect.Type) {
	return reflect.TypeOf((*S)(nil)).Elem(), reflect.TypeOf((*T)(nil)).Elem()
}

func (c funcConverter[S, T]) Convert(value any) (any, error) {
	s, ok := value.(S)
	if !ok {
		return nil, fmt.Errorf("expected %s, got %T", reflect.TypeOf((*S)(nil)).Elem(), value)
	}
	return c.fn(s)
}

// conditionalConverter pairs a Converter with a resolution-time predicate.
type conditionalConverter struct {
	Converter
	matches func(source, target TypeDescriptor) bool
}

func (c conditionalConverter) Matches(source, target TypeDescriptor) bool {
	return c.matches(source, target)
}

// NewConditionalConverter wraps c with a predicate consulted during
// resolution. The predicate sees the original requested descriptors, not
// the widened candidate pair that matched c's declaration.
func NewConditionalConverter(c Converter, matches func(source, target TypeDescriptor) bool) Converter {
	return conditionalConverter{Converter: c, matches: matches}
}

// converterCache memoizes factory-produced converters per target type.
// It uses the same RCU shape as the registry's resolution cache: lock-free
// reads from an immutable map, copy-on-write updates under a mutex with a
// double check. A nil Converter is a cached "unsupported target" answer.
type converterCache struct {
	mu sync.Mutex
	m  atomic.Pointer[map[reflect.Type]Converter]
}

func (c *converterCache) get(target reflect.Type, build func() Converter) Converter {
	if m := c.m.Load(); m != nil {
		if conv, ok := (*m)[target]; ok {
			return conv
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.m.Load()
	if old != nil {
		if conv, ok := (*old)[target]; ok {
			return conv
		}
	}

	conv := build()

	var next map[reflect.Type]Converter
	if old != nil {
		next = make(map[reflect.Type]Converter, len(*old)+1)
		maps.Copy(next, *old)
	} else {
		next = make(map[reflect.Type]Converter, 1)
	}
	next[target] = conv
	c.m.Store(&next)

	return conv
}
