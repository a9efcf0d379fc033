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

// Package convert provides a registry of pluggable type converters and a
// resolution engine that coerces a value of one runtime type into another.
// It is the conversion layer behind configuration binding and request
// mapping: callers hand it a (value, source, target) triple and get back a
// converted value or a typed failure.
//
// # Quick Start
//
//	svc := convert.New()
//
//	n, err := convert.To[int](svc, "42")          // 42
//	ok, err := convert.To[bool](svc, "yes")       // true
//	xs, err := convert.To[[]int](svc, "1,2,3")    // []int{1, 2, 3}
//	p, err := convert.To[*int](svc, "7")          // pointer to 7
//
// Or with explicit descriptors when types come from variables:
//
//	out, err := svc.Convert(value,
//	    convert.TypeOf(value),
//	    convert.ForType(fieldType),
//	)
//
// # Registering Converters
//
// Exact-pair converters are plain functions:
//
//	svc.AddConverter(convert.NewConverter(func(s string) (uuid.UUID, error) {
//	    return uuid.Parse(s)
//	}))
//
// A [ConverterFactory] covers a whole family of targets with one
// registration, and a [GenericConverter] matches a structural category
// (slices, maps, pointers, strings) through a predicate. Converters may
// implement [ConditionalConverter] to refuse individual pairs at
// resolution time.
//
// # Resolution
//
// The registry matches the most specific converter first: an exact type
// beats its underlying type, and any concrete type beats an interface.
// Resolutions, including misses, are memoized per (source, target) pair;
// any registration drops the cache, so registering converters after first
// use is supported and simply costs a re-walk.
//
// # Built-in Conversions
//
// [New] installs a standard set: string to numeric/bool/time/duration,
// element-wise slice, array, and map conversion, comma-separated list
// joining and splitting, pointer wrapping and dereferencing,
// encoding.TextUnmarshaler support, and a string fallback for types with
// an inherent text form.
//
// # Serialization Formats
//
// Converter sets for serialized payloads are available as sub-packages:
//
//   - rivaas.dev/convert/yaml: YAML support (gopkg.in/yaml.v3)
//   - rivaas.dev/convert/toml: TOML support (github.com/BurntSushi/toml)
//   - rivaas.dev/convert/msgpack: MessagePack support (github.com/vmihailenco/msgpack/v5)
//   - rivaas.dev/convert/proto: Protocol Buffers support (google.golang.org/protobuf)
//
// Each registers converters between its named raw-bytes type and Go
// values:
//
//	yaml.Register(svc)
//	cfg, err := convert.To[Config](svc, yaml.Raw(body))
//
// The rivaas.dev/convert/mapstruct sub-package adapts a Service into a
// mapstructure decode hook for struct binding.
//
// # Concurrency
//
// Convert and CanConvert are safe for unbounded concurrent callers.
// Registration methods may race with conversions: readers always observe
// a consistent registry snapshot, and every mutation atomically replaces
// the snapshot together with its resolution cache.
package convert
