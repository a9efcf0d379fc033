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

// DefaultListSeparator is the delimiter used by the collection/string
// converters. Joining uses it verbatim; splitting performs no whitespace
// trimming, and the empty string converts to an empty collection.
const DefaultListSeparator = ","

// config holds construction-time settings for a Service.
type config struct {
	separator  string
	defaults   bool
	converters []Converter
	factories  []ConverterFactory
	generics   []GenericConverter
}

// Option configures a Service at construction time.
type Option func(*config)

func applyOptions(opts []Option) *config {
	cfg := &config{
		separator: DefaultListSeparator,
		defaults:  true,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithConverter registers a converter during construction.
//
// Example:
//
//	svc := convert.New(
//	    convert.WithConverter(convert.NewConverter(func(s string) (Level, error) {
//	        return ParseLevel(s)
//	    })),
//	)
func WithConverter(c Converter) Option {
	return func(cfg *config) {
		cfg.converters = append(cfg.converters, c)
	}
}

// WithConverterFactory registers a converter factory during construction.
func WithConverterFactory(f ConverterFactory) Option {
	return func(cfg *config) {
		cfg.factories = append(cfg.factories, f)
	}
}

// WithGenericConverter registers a generic converter during construction.
// It takes priority over the built-in generic set.
func WithGenericConverter(g GenericConverter) Option {
	return func(cfg *config) {
		cfg.generics = append(cfg.generics, g)
	}
}

// WithListSeparator overrides the delimiter used when converting between
// collections and strings. The split side still performs no trimming.
func WithListSeparator(sep string) Option {
	return func(cfg *config) {
		if sep != "" {
			cfg.separator = sep
		}
	}
}

// WithoutDefaults skips registration of the built-in converter set,
// leaving only identity conversions until converters are registered.
func WithoutDefaults() Option {
	return func(cfg *config) {
		cfg.defaults = false
	}
}
