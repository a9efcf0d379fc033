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
	"encoding"
	"fmt"
	"reflect"

	"github.com/spf13/cast"
)

var (
	textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
	textMarshalerType   = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
	stringerType        = reflect.TypeOf((*fmt.Stringer)(nil)).Elem()
	errorType           = reflect.TypeOf((*error)(nil)).Elem()
)

// derefConverter handles pointer sources: a nil pointer follows the nil
// policy (zero value for nilable targets, ErrNilValue otherwise), a non-nil
// pointer converts its pointee.
type derefConverter struct {
	service *Service
}

func (c derefConverter) Matches(source, target TypeDescriptor) bool {
	if !source.IsPointer() || isRecursive(source) {
		return false
	}
	return c.service.CanConvert(source.Elem(), target)
}

func (c derefConverter) Convert(value any, source, target TypeDescriptor) (any, error) {
	rv := reflect.ValueOf(value)
	if rv.IsNil() {
		if target.IsNilable() {
			return reflect.Zero(target.typ).Interface(), nil
		}
		return nil, fmt.Errorf("%w: nil %s", ErrNilValue, source)
	}
	return c.service.Convert(rv.Elem().Interface(), source.Elem(), target)
}

// pointerWrapConverter handles pointer targets: the value converts to the
// pointee type and the result is heap-allocated and addressed. This is the
// "object to optional wrapper" conversion; nil flows through the service's
// nil policy before converters are consulted.
type pointerWrapConverter struct {
	service *Service
}

func (c pointerWrapConverter) Matches(source, target TypeDescriptor) bool {
	if !target.IsPointer() || isRecursive(target) {
		return false
	}
	return c.service.CanConvert(source, target.Elem())
}

func (c pointerWrapConverter) Convert(value any, source, target TypeDescriptor) (any, error) {
	elem, err := c.service.Convert(value, source, target.Elem())
	if err != nil {
		return nil, err
	}
	p := reflect.New(target.typ.Elem())
	if elem != nil {
		p.Elem().Set(reflect.ValueOf(elem))
	}
	return p.Interface(), nil
}

// textUnmarshalerConverter converts strings to any target whose pointer
// implements encoding.TextUnmarshaler, letting custom types define their
// own parsing.
type textUnmarshalerConverter struct{}

func (textUnmarshalerConverter) Matches(source, target TypeDescriptor) bool {
	if !source.IsString() || target.IsString() || !target.IsValid() {
		return false
	}
	return reflect.PointerTo(target.typ).Implements(textUnmarshalerType)
}

func (textUnmarshalerConverter) Convert(value any, source, target TypeDescriptor) (any, error) {
	s := reflect.ValueOf(value).String()
	p := reflect.New(target.typ)
	u := p.Interface().(encoding.TextUnmarshaler)
	if err := u.UnmarshalText([]byte(s)); err != nil {
		return nil, err
	}
	return p.Elem().Interface(), nil
}

// fallbackStringConverter is the object-to-string fallback. Its predicate
// is deliberately narrow: it accepts only sources with an inherent string
// representation (string kinds, scalars, Stringer, TextMarshaler, error),
// so it cannot shadow explicitly registered object converters.
type fallbackStringConverter struct{}

func (fallbackStringConverter) Matches(source, target TypeDescriptor) bool {
	if !target.IsString() || !source.IsValid() {
		return false
	}
	k := source.typ.Kind()
	switch {
	case k == reflect.String, k == reflect.Bool, isNumericKind(k):
		return true
	case source.typ.Implements(stringerType),
		source.typ.Implements(textMarshalerType),
		source.typ.Implements(errorType):
		return true
	default:
		return false
	}
}

func (fallbackStringConverter) Convert(value any, source, target TypeDescriptor) (any, error) {
	rv := reflect.ValueOf(value)

	switch {
	case rv.Kind() == reflect.String:
		return rv.String(), nil
	case rv.Type().Implements(textMarshalerType):
		b, err := value.(encoding.TextMarshaler).MarshalText()
		if err != nil {
			return nil, err
		}
		return string(b), nil
	case rv.Type().Implements(stringerType):
		return value.(fmt.Stringer).String(), nil
	case rv.Type().Implements(errorType):
		return value.(error).Error(), nil
	default:
		s, err := cast.ToStringE(rv.Convert(underlyingType(rv.Type())).Interface())
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

// NewEntityLookup builds a Converter that resolves an identifier into an
// entity through an explicitly registered lookup function. It replaces
// reflective discovery of find-by-id methods with a named registration:
//
//	svc.AddConverter(convert.NewEntityLookup(func(id int64) (*User, error) {
//	    return userStore.Find(id)
//	}))
func NewEntityLookup[ID, E any](lookup func(ID) (E, error)) Converter {
	return NewConverter(lookup)
}
