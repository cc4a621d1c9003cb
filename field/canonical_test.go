package field

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonical_SortsKeys(t *testing.T) {
	data, err := MarshalCanonical(map[string]any{
		"zebra": int64(1),
		"alpha": int64(2),
		"mike":  int64(3),
	})
	require.NoError(t, err)
	assert.Equal(t, `{"alpha":2,"mike":3,"zebra":1}`, string(data))
}

func TestMarshalCanonical_Primitives(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, "null"},
		{"true", true, "true"},
		{"false", false, "false"},
		{"int", 42, "42"},
		{"int64", int64(-7), "-7"},
		{"string", "hello", `"hello"`},
		{"id", ID("priceMax"), `"priceMax"`},
		{"array", []any{int64(1), "two", nil}, `[1,"two",null]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := MarshalCanonical(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(data))
		})
	}
}

// TestMarshalCanonical_NFCNormalization tests that composed and decomposed
// forms of the same text encode identically.
func TestMarshalCanonical_NFCNormalization(t *testing.T) {
	composed := "caf\u00e9"   // U+00E9, one code point
	decomposed := "cafe\u0301" // e + U+0301 combining acute accent

	a, err := MarshalCanonical(composed)
	require.NoError(t, err)
	b, err := MarshalCanonical(decomposed)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestMarshalCanonical_NoHTMLEscaping(t *testing.T) {
	data, err := MarshalCanonical("a<b&c>d")
	require.NoError(t, err)
	assert.Equal(t, `"a<b&c>d"`, string(data))
}

func TestMarshalCanonical_Deterministic(t *testing.T) {
	v := map[string]any{
		"nested": map[string]any{"b": int64(2), "a": int64(1)},
		"list":   []any{"x", "y"},
	}

	first, err := MarshalCanonical(v)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := MarshalCanonical(v)
		require.NoError(t, err)
		assert.Equal(t, string(first), string(again))
	}
}
