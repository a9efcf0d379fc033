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

// Package msgpack provides MessagePack converters for the convert
// package, using github.com/vmihailenco/msgpack/v5.
//
//	svc := convert.New()
//	msgpack.Register(svc)
//
//	msg, err := convert.To[Event](svc, msgpack.Raw(body))
//	out, err := convert.To[msgpack.Raw](svc, msg)
package msgpack

import (
	"fmt"
	"reflect"

	"github.com/vmihailenco/msgpack/v5"

	"rivaas.dev/convert"
)

// Raw is a MessagePack-encoded payload.
type Raw []byte

var rawType = reflect.TypeOf((*Raw)(nil)).Elem()

// Register adds the MessagePack decoder factory and encoder to s.
func Register(s *convert.Service) {
	s.AddConverterFactory(Decoder())
	s.AddGenericConverter(Encoder())
}

// Decoder returns a factory producing converters from [Raw] to any
// target type, via msgpack.Unmarshal.
func Decoder() convert.ConverterFactory {
	return decoderFactory{}
}

type decoderFactory struct{}

func (decoderFactory) SourceType() reflect.Type {
	return rawType
}

func (decoderFactory) ConverterFor(target reflect.Type) convert.Converter {
	if target == rawType {
		return nil
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
		return nil, fmt.Errorf("expected msgpack.Raw, got %T", value)
	}
	out := reflect.New(c.target)
	if err := msgpack.Unmarshal(raw, out.Interface()); err != nil {
		return nil, fmt.Errorf("decoding MessagePack: %w", err)
	}
	return out.Elem().Interface(), nil
}

// Encoder returns a generic converter from any value to [Raw], via
// msgpack.Marshal.
func Encoder() convert.GenericConverter {
	return encoder{}
}

type encoder struct{}

func (encoder) Matches(source, target convert.TypeDescriptor) bool {
	return target.Type() == rawType && source.Type() != rawType
}

func (encoder) Convert(value any, source, target convert.TypeDescriptor) (any, error) {
	b, err := msgpack.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encoding MessagePack: %w", err)
	}
	return Raw(b), nil
}
