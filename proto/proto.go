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

// Package proto provides Protocol Buffers converters for the convert
// package, using google.golang.org/protobuf.
//
// The decoder factory refuses targets that do not implement
// proto.Message, so registering it never shadows other byte conversions.
//
//	svc := convert.New()
//	proto.Register(svc)
//
//	user, err := convert.To[*pb.User](svc, proto.Raw(body))
package proto

import (
	"fmt"
	"reflect"

	"google.golang.org/protobuf/proto"

	"rivaas.dev/convert"
)

// Message is an alias for proto.Message to simplify imports.
type Message = proto.Message

// Raw is a wire-format Protocol Buffers payload.
type Raw []byte

var (
	rawType     = reflect.TypeOf((*Raw)(nil)).Elem()
	messageType = reflect.TypeOf((*proto.Message)(nil)).Elem()
)

// Register adds the Protocol Buffers decoder factory and encoder to s.
func Register(s *convert.Service) {
	s.AddConverterFactory(Decoder())
	s.AddGenericConverter(Encoder())
}

// Decoder returns a factory producing converters from [Raw] to any
// pointer type implementing proto.Message.
func Decoder() convert.ConverterFactory {
	return decoderFactory{}
}

type decoderFactory struct{}

func (decoderFactory) SourceType() reflect.Type {
	return rawType
}

func (decoderFactory) ConverterFor(target reflect.Type) convert.Converter {
	if target.Kind() != reflect.Pointer || !target.Implements(messageType) {
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
		return nil, fmt.Errorf("expected proto.Raw, got %T", value)
	}
	msg, ok := reflect.New(c.target.Elem()).Interface().(proto.Message)
	if !ok {
		return nil, fmt.Errorf("%s does not implement proto.Message", c.target)
	}
	if err := proto.Unmarshal(raw, msg); err != nil {
		return nil, fmt.Errorf("decoding protobuf: %w", err)
	}
	return msg, nil
}

// Encoder returns a generic converter from proto.Message values to [Raw].
func Encoder() convert.GenericConverter {
	return encoder{}
}

type encoder struct{}

func (encoder) Matches(source, target convert.TypeDescriptor) bool {
	return target.Type() == rawType &&
		source.IsValid() && source.Type().Implements(messageType)
}

func (encoder) Convert(value any, source, target convert.TypeDescriptor) (any, error) {
	msg, ok := value.(proto.Message)
	if !ok {
		return nil, fmt.Errorf("expected proto.Message, got %T", value)
	}
	b, err := proto.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encoding protobuf: %w", err)
	}
	return Raw(b), nil
}
