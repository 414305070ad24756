package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompatible(t *testing.T) {
	tests := []struct {
		desc string
		out  Type
		in   Type
		want bool
	}{
		{"identical", Int(), Int(), true},
		{"wildcard out", Any(), String(), true},
		{"wildcard in", Float(), Any(), true},
		{"param out", Param("T"), Int(), true},
		{"param in", Bool(), Param("T"), true},
		{"undeclared", nil, Int(), true},
		{"same slice", Slice(Int()), Slice(Int()), true},
		{"mismatch", Int(), String(), false},
		{"slice mismatch", Slice(Int()), Slice(String()), false},
		{"slice vs scalar", Slice(Int()), Int(), false},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			assert.Equal(t, tt.want, Compatible(tt.out, tt.in))
		})
	}
}

func TestIntType(t *testing.T) {
	typ := Int()
	assert.Equal(t, "int", typ.Name())

	assert.NoError(t, typ.Validate(42))
	assert.NoError(t, typ.Validate(int64(42)))
	assert.NoError(t, typ.Validate(42.0))
	assert.Error(t, typ.Validate(42.5))
	assert.Error(t, typ.Validate("42"))
	assert.Error(t, typ.Validate(nil))
}

func TestSliceType(t *testing.T) {
	assert.NoError(t, Slice(String()).Validate([]string{"a", "b"}))
	assert.NoError(t, Slice(Int()).Validate([]any{1, 2, 3}))
	assert.Error(t, Slice(Int()).Validate([]any{1, "2"}))
	assert.Error(t, Slice(Int()).Validate("nope"))
	assert.Equal(t, "[[string]]", Slice(Slice(String())).Name())
}

func TestParseType(t *testing.T) {
	tests := []struct {
		input    string
		wantName string
		wantErr  bool
	}{
		{"string", "string", false},
		{"int", "int", false},
		{"float", "float", false},
		{"bool", "bool", false},
		{"any", "any", false},
		{"", "any", false},
		{"T", "T", false},
		{"K2", "K2", false},
		{"[int]", "[int]", false},
		{"[T]", "[T]", false},
		{"Tx", "", true},
		{"unknown", "", true},
		{"[unknown]", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			typ, err := ParseType(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, typ.Name())
		})
	}
}

func TestParseType_Param(t *testing.T) {
	typ, err := ParseType("T")
	require.NoError(t, err)
	assert.True(t, IsWildcard(typ))
}

func TestCoerce(t *testing.T) {
	v, err := Coerce(Int(), int64(7))
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	v, err = Coerce(Int(), float64(3))
	require.NoError(t, err)
	assert.Equal(t, 3, v)

	_, err = Coerce(Int(), "seven")
	assert.Error(t, err)

	v, err = Coerce(Float(), int8(2))
	require.NoError(t, err)
	assert.Equal(t, 2.0, v)

	v, err = Coerce(Slice(Int()), []any{int64(1), int64(2)})
	require.NoError(t, err)
	assert.Equal(t, []any{1, 2}, v)

	payload := map[string]any{"k": "v"}
	v, err = Coerce(Any(), payload)
	require.NoError(t, err)
	assert.Equal(t, payload, v)
}
