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

package msgpack

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rivaas.dev/convert"
)

type event struct {
	Name  string `msgpack:"name"`
	Count int    `msgpack:"count"`
}

func newService(t *testing.T) *convert.Service {
	t.Helper()
	svc := convert.New()
	Register(svc)
	return svc
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	svc := newService(t)
	in := event{Name: "deploy", Count: 3}

	raw, err := convert.To[Raw](svc, in)
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	out, err := convert.To[event](svc, raw)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestDecode_ScalarTarget(t *testing.T) {
	t.Parallel()

	svc := newService(t)

	raw, err := convert.To[Raw](svc, 42)
	require.NoError(t, err)

	n, err := convert.To[int](svc, raw)
	require.NoError(t, err)
	assert.Equal(t, 42, n)
}

func TestDecode_MalformedInput(t *testing.T) {
	t.Parallel()

	svc := newService(t)

	_, err := convert.To[event](svc, Raw{0xc1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding MessagePack")
}

func TestDecoder_RefusesRawTarget(t *testing.T) {
	t.Parallel()

	assert.Nil(t, Decoder().ConverterFor(reflect.TypeOf((*Raw)(nil)).Elem()))
	assert.NotNil(t, Decoder().ConverterFor(reflect.TypeOf((*event)(nil)).Elem()))
}
