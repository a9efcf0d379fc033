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

//go:build !integration

package yaml

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rivaas.dev/convert"
)

type serverConfig struct {
	Name string `yaml:"name"`
	Port int    `yaml:"port"`
}

func newService(t *testing.T) *convert.Service {
	t.Helper()
	svc := convert.New()
	Register(svc)
	return svc
}

func TestDecode(t *testing.T) {
	t.Parallel()

	svc := newService(t)

	t.Run("struct target", func(t *testing.T) {
		t.Parallel()

		cfg, err := convert.To[serverConfig](svc, Raw("name: api\nport: 8080\n"))
		require.NoError(t, err)
		assert.Equal(t, serverConfig{Name: "api", Port: 8080}, cfg)
	})

	t.Run("map target", func(t *testing.T) {
		t.Parallel()

		m, err := convert.To[map[string]any](svc, Raw("a: 1\nb: two\n"))
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"a": 1, "b": "two"}, m)
	})

	t.Run("slice target", func(t *testing.T) {
		t.Parallel()

		s, err := convert.To[[]int](svc, Raw("[1, 2, 3]"))
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2, 3}, s)
	})

	t.Run("malformed input fails", func(t *testing.T) {
		t.Parallel()

		_, err := convert.To[serverConfig](svc, Raw("{invalid"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "decoding YAML")
	})
}

func TestEncode(t *testing.T) {
	t.Parallel()

	svc := newService(t)

	raw, err := convert.To[Raw](svc, serverConfig{Name: "api", Port: 8080})
	require.NoError(t, err)

	back, err := convert.To[serverConfig](svc, raw)
	require.NoError(t, err)
	assert.Equal(t, serverConfig{Name: "api", Port: 8080}, back)
}

func TestDecoder_RefusesRawTarget(t *testing.T) {
	t.Parallel()

	assert.Nil(t, Decoder().ConverterFor(reflect.TypeOf((*Raw)(nil)).Elem()))
	assert.NotNil(t, Decoder().ConverterFor(reflect.TypeOf((*serverConfig)(nil)).Elem()))
}

func TestRegister_KeepsScalarConversions(t *testing.T) {
	t.Parallel()

	// Registering the format must not shadow the built-in set.
	svc := newService(t)

	n, err := convert.To[int](svc, "42")
	require.NoError(t, err)
	assert.Equal(t, 42, n)
}
