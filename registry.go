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
	"maps"
	"reflect"
	"slices"
	"sync"
	"sync/atomic"
)

// pair keys exact-converter registrations and resolution cache entries.
type pair struct {
	source reflect.Type
	target reflect.Type
}

// resolution is the memoized outcome of one registry walk. Exactly one of
// conv, gen, or identity is set for a successful resolution; the zero
// resolution is the "no converter found" sentinel.
type resolution struct {
	conv     Converter
	gen      GenericConverter
	identity bool

	// source and target record the candidate pair conv was registered
	// under, so the service can widen the input value (named type to
	// underlying type) before invoking it and narrow the result after.
	source reflect.Type
	target reflect.Type
}

// noMatch is the shared "no converter found" sentinel.
var noMatch = &resolution{}

func (r *resolution) found() bool {
	return r.conv != nil || r.gen != nil || r.identity
}

// Stats reports registry resolution counters. CacheHits counts lookups
// answered from the resolution cache; Resolutions counts full registry
// walks. A repeated lookup with no intervening mutation increments only
// CacheHits.
type Stats struct {
	Resolutions int64
	CacheHits   int64
}

// snapshot is an immutable view of the registry contents. Mutations build
// a new snapshot and swap it in atomically; because each snapshot owns its
// resolution cache, a reader can never observe a cache entry computed
// against registry state that has since been replaced.
type snapshot struct {
	converters map[pair][]Converter                // registration order, most recent last
	factories  map[reflect.Type][]ConverterFactory // keyed by declared source type
	generics   []GenericConverter                  // priority order, scanned front to back
	ifaces     []reflect.Type                      // interface keys for the hierarchy walk

	cacheMu sync.Mutex
	cache   atomic.Pointer[map[pair]*resolution]
}

// Registry is a mutable store of converters, converter factories, and
// generic converters, plus the resolution algorithm that matches a
// (source, target) descriptor pair to the best registered converter.
//
// Reads are lock-free against an immutable snapshot; mutations are
// serialized by a mutex and atomically swap in a new snapshot with a fresh
// (empty) resolution cache. Registries are built once at startup and read
// concurrently afterward, but late registration remains correct: it simply
// drops all cached resolutions.
type Registry struct {
	mu   sync.Mutex
	snap atomic.Pointer[snapshot]

	resolutions atomic.Int64
	cacheHits   atomic.Int64
}

// NewRegistry returns an empty registry. Most callers want [New], which
// wires a registry into a Service and installs the built-in converters.
func NewRegistry() *Registry {
	r := &Registry{}
	r.snap.Store(newSnapshot())
	return r
}

func newSnapshot() *snapshot {
	s := &snapshot{
		converters: make(map[pair][]Converter),
		factories:  make(map[reflect.Type][]ConverterFactory),
	}
	empty := make(map[pair]*resolution)
	s.cache.Store(&empty)
	return s
}

// clone copies the registrations of s into a new snapshot with an empty
// resolution cache. Slices are copied so appends never share backing
// arrays with a published snapshot.
func (s *snapshot) clone() *snapshot {
	next := newSnapshot()
	for k, v := range s.converters {
		next.converters[k] = slices.Clone(v)
	}
	for k, v := range s.factories {
		next.factories[k] = slices.Clone(v)
	}
	next.generics = slices.Clone(s.generics)
	next.ifaces = slices.Clone(s.ifaces)
	return next
}

// addIface records t as a hierarchy-walk candidate if it is an interface
// type not already tracked.
func (s *snapshot) addIface(t reflect.Type) {
	if t == nil || t.Kind() != reflect.Interface {
		return
	}
	if !slices.Contains(s.ifaces, t) {
		s.ifaces = append(s.ifaces, t)
	}
}

// AddConverter registers c under its declared (source, target) pair.
// Converters for the same pair stack; the most recently registered wins,
// which is also how ambiguous registrations are resolved (no
// AmbiguousRegistration diagnostic is raised). Registration swaps the
// snapshot and therefore invalidates the resolution cache.
func (r *Registry) AddConverter(c Converter) error {
	if c == nil {
		return ErrNilConverter
	}
	source, target := c.Pair()
	if source == nil || target == nil {
		return ErrInvalidDescriptor
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	next := r.snap.Load().clone()
	key := pair{source: source, target: target}
	next.converters[key] = append(next.converters[key], c)
	next.addIface(source)
	next.addIface(target)
	r.snap.Store(next)
	return nil
}

// AddConverterFactory registers f under its declared source type. The
// factory fans out to any target type it accepts at resolution time.
// Invalidates the resolution cache.
func (r *Registry) AddConverterFactory(f ConverterFactory) error {
	if f == nil {
		return ErrNilConverter
	}
	source := f.SourceType()
	if source == nil {
		return ErrInvalidDescriptor
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	next := r.snap.Load().clone()
	next.factories[source] = append(next.factories[source], f)
	next.addIface(source)
	r.snap.Store(next)
	return nil
}

// AddGenericConverter registers g ahead of previously registered generic
// converters, so later registrations take priority over the built-in set.
// Invalidates the resolution cache.
func (r *Registry) AddGenericConverter(g GenericConverter) error {
	if g == nil {
		return ErrNilConverter
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	next := r.snap.Load().clone()
	next.generics = append([]GenericConverter{g}, next.generics...)
	r.snap.Store(next)
	return nil
}

// appendGeneric registers g after existing generic converters. Used by
// [New] to install the built-in set in its fixed priority order.
func (r *Registry) appendGeneric(g GenericConverter) {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := r.snap.Load().clone()
	next.generics = append(next.generics, g)
	r.snap.Store(next)
}

// RemoveConvertible drops all converters registered for exactly the
// (source, target) pair. Factories and generic converters are unaffected.
// Invalidates the resolution cache.
func (r *Registry) RemoveConvertible(source, target reflect.Type) {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := r.snap.Load().clone()
	delete(next.converters, pair{source: source, target: target})
	r.snap.Store(next)
}

// Stats returns the resolution counters accumulated so far.
func (r *Registry) Stats() Stats {
	return Stats{
		Resolutions: r.resolutions.Load(),
		CacheHits:   r.cacheHits.Load(),
	}
}

// resolve returns the memoized resolution for the pair, walking the
// registry on a cache miss. The winning outcome, including the no-match
// sentinel, is recorded in the snapshot's cache before returning.
func (r *Registry) resolve(source, target TypeDescriptor) *resolution {
	s := r.snap.Load()
	key := pair{source: source.typ, target: target.typ}

	if m := s.cache.Load(); m != nil {
		if res, ok := (*m)[key]; ok {
			r.cacheHits.Add(1)
			return res
		}
	}

	r.resolutions.Add(1)
	res := s.lookup(source, target)
	s.storeResolution(key, res)
	return res
}

// storeResolution records res in the snapshot's cache using copy-on-write
// with a double check under the write lock.
func (s *snapshot) storeResolution(key pair, res *resolution) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	old := s.cache.Load()
	if _, ok := (*old)[key]; ok {
		return
	}

	next := make(map[pair]*resolution, len(*old)+1)
	maps.Copy(next, *old)
	next[key] = res
	s.cache.Store(&next)
}

// lookup is the resolution algorithm:
//
//  1. Walk the cross product of candidate source and target types
//     (source-major) over exact-pair converters and factory-produced
//     converters. The first match whose conditional predicate accepts the
//     original descriptors wins; within one pair the most recently
//     registered converter is tried first.
//  2. If the source is assignable to the target, an identity no-op wins.
//     Identity sits after exact converters so a converter registered for
//     the identity pair overrides it, and before generic converters so an
//     assignable value is returned as-is rather than structurally copied.
//  3. Otherwise the generic converter list is scanned in priority order.
//  4. Otherwise the no-match sentinel.
func (s *snapshot) lookup(source, target TypeDescriptor) *resolution {
	if source.typ != nil && target.typ != nil {
		sources := s.candidateTypes(source.typ)
		targets := s.candidateTypes(target.typ)

		for _, cs := range sources {
			for _, ct := range targets {
				if res := s.lookupPair(cs, ct, source, target); res != nil {
					return res
				}
			}
		}

		if source.AssignableTo(target) {
			return &resolution{identity: true}
		}
	}

	for _, g := range s.generics {
		if g.Matches(source, target) {
			return &resolution{gen: g}
		}
	}

	return noMatch
}

// lookupPair checks exact converters, then factories, for one candidate
// (source, target) type pair. Returns nil if nothing matched.
func (s *snapshot) lookupPair(cs, ct reflect.Type, source, target TypeDescriptor) *resolution {
	list := s.converters[pair{source: cs, target: ct}]
	for i := len(list) - 1; i >= 0; i-- {
		c := list[i]
		if cond, ok := c.(ConditionalConverter); ok && !cond.Matches(source, target) {
			continue
		}
		return &resolution{conv: c, source: cs, target: ct}
	}

	factories := s.factories[cs]
	for i := len(factories) - 1; i >= 0; i-- {
		f := factories[i]
		if cond, ok := f.(ConditionalConverter); ok && !cond.Matches(source, target) {
			continue
		}
		c := f.ConverterFor(ct)
		if c == nil {
			continue
		}
		if cond, ok := c.(ConditionalConverter); ok && !cond.Matches(source, target) {
			continue
		}
		return &resolution{conv: c, source: cs, target: ct}
	}

	return nil
}

// candidateTypes builds the ordered candidate set for one side of the
// walk: the exact type first, then progressively less specific concrete
// shapes (pointee for pointers, the underlying unnamed type for named
// types), and finally every registered interface the type implements, in
// key registration order. Concrete types before interfaces guarantees
// that a converter registered for a concrete type beats one registered
// for an interface. Duplicates are removed.
func (s *snapshot) candidateTypes(t reflect.Type) []reflect.Type {
	out := make([]reflect.Type, 0, 4)
	add := func(c reflect.Type) {
		if c != nil && !slices.Contains(out, c) {
			out = append(out, c)
		}
	}

	add(t)
	if t.Kind() == reflect.Pointer {
		elem := t.Elem()
		add(elem)
		add(underlyingType(elem))
	}
	add(underlyingType(t))

	for _, it := range s.ifaces {
		if t != it && t.Implements(it) {
			add(it)
		}
	}

	return out
}

// kindTypes maps basic kinds to their predeclared unnamed types.
var kindTypes = map[reflect.Kind]reflect.Type{
	reflect.Bool:       reflect.TypeOf((*bool)(nil)).Elem(),
	reflect.Int:        reflect.TypeOf((*int)(nil)).Elem(),
	reflect.Int8:       reflect.TypeOf((*int8)(nil)).Elem(),
	reflect.Int16:      reflect.TypeOf((*int16)(nil)).Elem(),
	reflect.Int32:      reflect.TypeOf((*int32)(nil)).Elem(),
	reflect.Int64:      reflect.TypeOf((*int64)(nil)).Elem(),
	reflect.Uint:       reflect.TypeOf((*uint)(nil)).Elem(),
	reflect.Uint8:      reflect.TypeOf((*uint8)(nil)).Elem(),
	reflect.Uint16:     reflect.TypeOf((*uint16)(nil)).Elem(),
	reflect.Uint32:     reflect.TypeOf((*uint32)(nil)).Elem(),
	reflect.Uint64:     reflect.TypeOf((*uint64)(nil)).Elem(),
	reflect.Float32:    reflect.TypeOf((*float32)(nil)).Elem(),
	reflect.Float64:    reflect.TypeOf((*float64)(nil)).Elem(),
	reflect.Complex64:  reflect.TypeOf((*complex64)(nil)).Elem(),
	reflect.Complex128: reflect.TypeOf((*complex128)(nil)).Elem(),
	reflect.String:     reflect.TypeOf((*string)(nil)).Elem(),
}

// underlyingType returns the unnamed type with the same structure as t,
// the Go analog of walking to a supertype. For unnamed types and kinds
// with no constructible unnamed form (structs, interfaces) it returns t
// itself.
func underlyingType(t reflect.Type) reflect.Type {
	if t.Name() == "" {
		return t
	}
	if bt, ok := kindTypes[t.Kind()]; ok {
		return bt
	}
	switch t.Kind() {
	case reflect.Slice:
		return reflect.SliceOf(t.Elem())
	case reflect.Array:
		return reflect.ArrayOf(t.Len(), t.Elem())
	case reflect.Map:
		return reflect.MapOf(t.Key(), t.Elem())
	case reflect.Pointer:
		return reflect.PointerTo(t.Elem())
	default:
		return t
	}
}
