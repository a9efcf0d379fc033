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

// Package mapstruct adapts a convert.Service into a mapstructure decode
// hook, so configuration binding layers built on
// github.com/go-viper/mapstructure/v2 coerce leaf values through the
// conversion engine.
//
//	svc := convert.New()
//
//	var cfg ServerConfig
//	err := mapstruct.Decode(rawMap, &cfg, svc, mapstruct.WithTagName("config"))
package mapstruct

import (
	"reflect"

	"github.com/go-viper/mapstructure/v2"

	"rivaas.dev/convert"
)

// Option configures decoding behavior.
type Option func(*mapstructure.DecoderConfig)

// WithTagName sets the struct tag consulted for field names.
// The mapstructure default is "mapstructure".
func WithTagName(tag string) Option {
	return func(c *mapstructure.DecoderConfig) {
		c.TagName = tag
	}
}

// WithErrorUnused makes decoding fail when the input contains keys the
// target struct does not declare.
func WithErrorUnused() Option {
	return func(c *mapstructure.DecoderConfig) {
		c.ErrorUnused = true
	}
}

// DecodeHook returns a hook that offers every (from, to) leaf pair to s.
// Pairs the service cannot convert pass through unchanged, leaving
// mapstructure's own struct and map traversal in charge of the rest.
func DecodeHook(s *convert.Service) mapstructure.DecodeHookFuncValue {
	return func(from, to reflect.Value) (any, error) {
		if !from.IsValid() {
			return nil, nil
		}
		// The first return value replaces the data being decoded, so every
		// pass-through path must hand back the original value.
		if !to.IsValid() || from.Type() == to.Type() {
			return from.Interface(), nil
		}

		source := convert.ForType(from.Type())
		target := convert.ForType(to.Type())
		if !s.CanConvert(source, target) {
			return from.Interface(), nil
		}
		return s.Convert(from.Interface(), source, target)
	}
}

// Decode binds input to out, routing leaf value coercion through s.
func Decode(input, out any, s *convert.Service, opts ...Option) error {
	cfg := &mapstructure.DecoderConfig{
		Result:     out,
		DecodeHook: DecodeHook(s),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	dec, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return err
	}
	return dec.Decode(input)
}
