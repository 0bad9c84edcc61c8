package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueConversions(t *testing.T) {
	t.Run("int to float and string", func(t *testing.T) {
		v := Int(42)

		f, err := v.AsFloat()
		require.NoError(t, err)
		assert.Equal(t, 42.0, f)

		s, err := v.AsString()
		require.NoError(t, err)
		assert.Equal(t, "42", s)
	})

	t.Run("string to number", func(t *testing.T) {
		v := String("3.5")
		f, err := v.AsFloat()
		require.NoError(t, err)
		assert.Equal(t, 3.5, f)

		_, err = String("nope").AsInt()
		assert.Error(t, err)
	})

	t.Run("null coerces to zero values", func(t *testing.T) {
		v := Null()

		b, err := v.AsBool()
		require.NoError(t, err)
		assert.False(t, b)

		i, err := v.AsInt()
		require.NoError(t, err)
		assert.Zero(t, i)

		s, err := v.AsString()
		require.NoError(t, err)
		assert.Empty(t, s)
	})

	t.Run("incompatible conversions fail", func(t *testing.T) {
		_, err := Array([]Value{Int(1)}).AsBool()
		assert.Error(t, err)

		_, err = Struct(map[string]interface{}{"a": 1}).AsInt()
		assert.Error(t, err)
	})
}

func TestValueTruthy(t *testing.T) {
	assert.False(t, Null().Truthy())
	assert.False(t, Bool(false).Truthy())
	assert.True(t, Bool(true).Truthy())
	assert.False(t, Int(0).Truthy())
	assert.True(t, Int(7).Truthy())
	assert.False(t, String("").Truthy())
	assert.True(t, String("x").Truthy())
}

func TestValueJSONRoundTrip(t *testing.T) {
	cases := []Value{
		Null(),
		Bool(true),
		Int(7),
		Float(2.25),
		String("hello"),
		Array([]Value{Int(1), String("two")}),
		Struct(map[string]interface{}{"x": "y"}),
	}

	for _, original := range cases {
		data, err := json.Marshal(original)
		require.NoError(t, err)

		var decoded Value
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.True(t, Equal(original, decoded), "round trip changed %v -> %v", original, decoded)
	}
}

func TestValueEqual(t *testing.T) {
	assert.True(t, Equal(Int(3), Float(3)))
	assert.False(t, Equal(Int(3), Float(3.5)))
	assert.False(t, Equal(String("3"), Int(3)))
	assert.True(t, Equal(
		Array([]Value{Int(1), Int(2)}),
		Array([]Value{Int(1), Int(2)}),
	))
	assert.False(t, Equal(
		Array([]Value{Int(1)}),
		Array([]Value{Int(2)}),
	))
}

func TestFromInterfaceIntegralFloats(t *testing.T) {
	// JSON numbers arrive as float64; integral ones must come back as ints.
	v, err := FromInterface(float64(5))
	require.NoError(t, err)
	assert.Equal(t, KindInt, v.Kind)

	v, err = FromInterface(5.5)
	require.NoError(t, err)
	assert.Equal(t, KindFloat, v.Kind)
}
