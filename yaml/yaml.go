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

// Package yaml provides YAML converters for the convert package, using
// gopkg.in/yaml.v3.
//
// The package declares [Raw], a named bytes type, so YAML payloads stay
// distinguishable from other serialized forms when several formats are
// registered on one service:
//
//	svc := convert.New()
//	yaml.Register(svc)
//
//	cfg, err := convert.To[Config](svc, yaml.Raw(body))
//	out, err := convert.To[yaml.Raw](svc, cfg)
package yaml

import (
	"fmt"
	"reflect"

	"gopkg.in/yaml.v3"

	"rivaas.dev/convert"
)

// Raw is a YAML-encoded payload.
type Raw []byte

var rawType = reflect.TypeOf((*Raw)(nil)).Elem()

// Register adds the YAML decoder factory and encoder to s.
func Register(s *convert.Service) {
	s.AddConverterFactory(Decoder())
	s.AddGenericConverter(Encoder())
}

// Decoder returns a factory producing converters from [Raw] to any
// target type, via yaml.Unmarshal.
func Decoder() convert.ConverterFactory {
	return decoderFactory{}
}

type decoderFactory struct{}

func (decoderFactory) SourceType() reflect.Type {
	return rawType
}

func (decoderFactory) ConverterFor(target reflect.Type) convert.Converter {
	if target == rawType {
		return nil // identity, not a decode
	}
	return decodeConverter{target: target}
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
		return nil, fmt.Errorf("expected yaml.Raw, got %T", value)
	}
	out := reflect.New(c.target)
	if err := yaml.Unmarshal(raw, out.Interface()); err != nil {
		return nil, fmt.Errorf("decoding YAML: %w", err)
	}
	return out.Elem().Interface(), nil
}

// Encoder returns a generic converter from any value to [Raw], via
// yaml.Marshal.
func Encoder() convert.GenericConverter {
	return encoder{}
}

type encoder struct{}

func (encoder) Matches(source, target convert.TypeDescriptor) bool {
	return target.Type() == rawType && source.Type() != rawType
}

func (encoder) Convert(value any, source, target convert.TypeDescriptor) (any, error) {
	b, err := yaml.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encoding YAML: %w", err)
	}
	return Raw(b), nil
}
