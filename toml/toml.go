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

// Package toml provides TOML converters for the convert package, using
// github.com/BurntSushi/toml.
//
// TOML documents always have a table at the top level, so the decoder
// factory only produces converters for struct and map targets, and the
// encoder only matches struct and map sources.
//
//	svc := convert.New()
//	toml.Register(svc)
//
//	cfg, err := convert.To[Config](svc, toml.Raw(body))
package toml

import (
	"bytes"
	"fmt"
	"reflect"

	"github.com/BurntSushi/toml"

	"rivaas.dev/convert"
)

// Raw is a TOML-encoded payload.
type Raw []byte

var rawType = reflect.TypeOf((*Raw)(nil)).Elem()

// Register adds the TOML decoder factory and encoder to s.
func Register(s *convert.Service) {
	s.AddConverterFactory(Decoder())
	s.AddGenericConverter(Encoder())
}

// Decoder returns a factory producing converters from [Raw] to struct and
// map targets.
func Decoder() convert.ConverterFactory {
	return decoderFactory{}
}

type decoderFactory struct{}

func (decoderFactory) SourceType() reflect.Type {
	return rawType
}

func (decoderFactory) ConverterFor(target reflect.Type) convert.Converter {
	if !isTable(target) {
		return nil
	}
	return decodeConverter{target: target}
}

// isTable reports whether t can hold a top-level TOML table.
func isTable(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Kind() == reflect.Struct || t.Kind() == reflect.Map
}

type decodeConverter struct {
	target reflect.Type
}

func (c decodeConverter) Pair() (source, target reflect.Type) {
	return rawType, c.target
}

func (c decodeConverter) Convert(value any) (any, error) {
	raw, ok := value.(Raw)
	if !ok {
		return nil, fmt.Errorf("expected toml.Raw, got %T", value)
	}
	out := reflect.New(c.target)
	if _, err := toml.Decode(string(raw), out.Interface()); err != nil {
		return nil, fmt.Errorf("decoding TOML: %w", err)
	}
	return out.Elem().Interface(), nil
}

// Encoder returns a generic converter from struct and map values to [Raw].
func Encoder() convert.GenericConverter {
	return encoder{}
}

type encoder struct{}

func (encoder) Matches(source, target convert.TypeDescriptor) bool {
	return target.Type() == rawType && source.IsValid() && isTable(source.Type())
}

func (encoder) Convert(value any, source, target convert.TypeDescriptor) (any, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(value); err != nil {
		return nil, fmt.Errorf("encoding TOML: %w", err)
	}
	return Raw(buf.Bytes()), nil
}
