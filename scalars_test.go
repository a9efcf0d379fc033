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

package convert

import (
	"math"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBoolGenerous(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    bool
		wantErr bool
	}{
		{"true", true, false},
		{"TRUE", true, false},
		{"1", true, false},
		{"yes", true, false},
		{"on", true, false},
		{"t", true, false},
		{"y", true, false},
		{"false", false, false},
		{"0", false, false},
		{"no", false, false},
		{"off", false, false},
		{"f", false, false},
		{"n", false, false},
		{"", false, false},
		{" Yes ", true, false},
		{"maybe", false, true},
		{"2", false, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := parseBoolGenerous(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidBooleanValue)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseNumber(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      string
		target  reflect.Type
		want    any
		wantErr string
	}{
		{"int", "42", reflect.TypeOf((*int)(nil)).Elem(), 42, ""},
		{"negative int", "-7", reflect.TypeOf((*int)(nil)).Elem(), -7, ""},
		{"int8 in range", "100", reflect.TypeOf((*int8)(nil)).Elem(), int8(100), ""},
		{"int8 overflow", "200", reflect.TypeOf((*int8)(nil)).Elem(), nil, "overflows"},
		{"uint", "42", reflect.TypeOf((*uint)(nil)).Elem(), uint(42), ""},
		{"uint rejects negative", "-1", reflect.TypeOf((*uint)(nil)).Elem(), nil, "invalid unsigned"},
		{"float64", "3.14", reflect.TypeOf((*float64)(nil)).Elem(), 3.14, ""},
		{"named int", "8080", reflect.TypeOf((*testPort)(nil)).Elem(), testPort(8080), ""},
		{"garbage", "abc", reflect.TypeOf((*int)(nil)).Elem(), nil, "invalid integer"},
		{"non-numeric target", "42", reflect.TypeOf((*string)(nil)).Elem(), nil, "not a numeric type"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := parseNumber(tt.in, tt.target)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStringToNumberFactory(t *testing.T) {
	t.Parallel()

	f := newStringToNumberFactory()

	t.Run("numeric targets are supported", func(t *testing.T) {
		t.Parallel()

		c := f.ConverterFor(reflect.TypeOf((*int)(nil)).Elem())
		require.NotNil(t, c)

		source, target := c.Pair()
		assert.Equal(t, reflect.TypeOf((*string)(nil)).Elem(), source)
		assert.Equal(t, reflect.TypeOf((*int)(nil)).Elem(), target)

		out, err := c.Convert("42")
		require.NoError(t, err)
		assert.Equal(t, 42, out)
	})

	t.Run("non-numeric targets are refused", func(t *testing.T) {
		t.Parallel()

		assert.Nil(t, f.ConverterFor(reflect.TypeOf((*bool)(nil)).Elem()))
		assert.Nil(t, f.ConverterFor(reflect.TypeOf((*[]int)(nil)).Elem()))
	})

	t.Run("refusals are memoized too", func(t *testing.T) {
		t.Parallel()

		assert.Nil(t, f.ConverterFor(reflect.TypeOf((*account)(nil)).Elem()))
		assert.Nil(t, f.ConverterFor(reflect.TypeOf((*account)(nil)).Elem()))
	})
}

func TestConverterCache(t *testing.T) {
	t.Parallel()

	var cache converterCache
	calls := 0
	build := func() Converter {
		calls++
		return pairConverter{
			source: stringType,
			target: boolType,
			fn:     func(any) (any, error) { return true, nil },
		}
	}

	a := cache.get(boolType, build)
	b := cache.get(boolType, build)
	require.NotNil(t, a)
	require.NotNil(t, b)
	assert.Equal(t, 1, calls, "build runs once per target")

	// A nil result is a cached refusal, not a retry.
	nilCalls := 0
	got := cache.get(stringType, func() Converter { nilCalls++; return nil })
	assert.Nil(t, got)
	got = cache.get(stringType, func() Converter { nilCalls++; return nil })
	assert.Nil(t, got)
	assert.Equal(t, 1, nilCalls)
}

func TestNumberToNumberConverter(t *testing.T) {
	t.Parallel()

	c := numberToNumberConverter{}

	t.Run("matches numeric pairs only", func(t *testing.T) {
		t.Parallel()

		assert.True(t, c.Matches(TypeFor[int](), TypeFor[float64]()))
		assert.True(t, c.Matches(TypeFor[testPort](), TypeFor[int8]()))
		assert.False(t, c.Matches(TypeFor[string](), TypeFor[int]()))
		assert.False(t, c.Matches(TypeFor[int](), TypeFor[bool]()))
		assert.False(t, c.Matches(TypeDescriptor{}, TypeFor[int]()))
	})

	tests := []struct {
		name    string
		value   any
		target  TypeDescriptor
		want    any
		wantErr string
	}{
		{"int to float", 3, TypeFor[float64](), 3.0, ""},
		{"float to int truncates", 3.9, TypeFor[int](), 3, ""},
		{"negative float to int", -3.9, TypeFor[int](), -3, ""},
		{"uint to int", uint(7), TypeFor[int](), 7, ""},
		{"int to named int", 80, TypeFor[testPort](), testPort(80), ""},
		{"int16 overflow", 70000, TypeFor[int16](), nil, "overflows"},
		{"negative to uint", -1, TypeFor[uint](), nil, "negative"},
		{"negative float to uint", -0.5, TypeFor[uint](), nil, "negative"},
		{"huge uint to int64", uint64(1) << 63, TypeFor[int64](), nil, "overflows"},
		{"huge float to int64", 1e30, TypeFor[int64](), nil, "overflows"},
		{"huge float to uint64", 1e300, TypeFor[uint64](), nil, "overflows"},
		{"NaN to int", math.NaN(), TypeFor[int](), nil, "not representable"},
		{"NaN to uint", math.NaN(), TypeFor[uint](), nil, "not representable"},
		{"positive infinity to int", math.Inf(1), TypeFor[int](), nil, "overflows"},
		{"negative infinity to int", math.Inf(-1), TypeFor[int](), nil, "overflows"},
		{"negative infinity to uint", math.Inf(-1), TypeFor[uint](), nil, "negative"},
		{"max int64 boundary stays out of range", 9.3e18, TypeFor[int64](), nil, "overflows"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := c.Convert(tt.value, TypeOf(tt.value), tt.target)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestService_OutOfRangeFloatsError(t *testing.T) {
	t.Parallel()

	svc := New()

	_, err := To[int64](svc, 1e30)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "overflows")

	_, err = To[uint64](svc, 1e300)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "overflows")

	_, err = To[int](svc, math.NaN())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not representable")
}
