package typesys

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		ty   cty.Type
		want Kind
	}{
		{cty.DynamicPseudoType, KindAny},
		{cty.Bool, KindBool},
		{cty.Number, KindNumber},
		{cty.String, KindString},
		{cty.List(cty.String), KindList},
		{cty.Set(cty.Number), KindSet},
		{cty.Map(cty.Bool), KindMap},
		{cty.Tuple([]cty.Type{cty.String}), KindTuple},
		{cty.Object(map[string]cty.Type{"a": cty.String}), KindObject},
		{cty.NilType, KindInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.ty))
		})
	}
}

func TestIsSubtype(t *testing.T) {
	wide := cty.Object(map[string]cty.Type{"a": cty.String, "b": cty.Number})
	narrow := cty.Object(map[string]cty.Type{"a": cty.String})

	assert.True(t, IsSubtype(cty.String, cty.String))
	assert.True(t, IsSubtype(cty.Number, cty.DynamicPseudoType))
	assert.True(t, IsSubtype(wide, narrow), "object with extra attributes is a subtype")
	assert.False(t, IsSubtype(narrow, wide))
	assert.True(t, IsSubtype(cty.List(wide), cty.List(narrow)))
	assert.False(t, IsSubtype(cty.Number, cty.String))
	assert.False(t, IsSubtype(cty.List(cty.String), cty.Set(cty.String)))
	assert.False(t, IsSubtype(cty.NilType, cty.String))
}

func TestCanConnect(t *testing.T) {
	conv := NewConverters()

	tests := []struct {
		name string
		from DataType
		to   DataType
		want bool
	}{
		{"identical", Of(cty.Number), Of(cty.Number), true},
		{"subtype", Of(cty.Number), Any, true},
		{"registered converter", Of(cty.Number), Of(cty.String), true},
		{"no converter", Of(cty.List(cty.String)), Of(cty.Number), false},
		{"dynamic source", Any, Of(cty.Number), true},
		{"any list accepts list", Of(cty.List(cty.Number)), Dynamic(AnyList), true},
		{"any list rejects map", Of(cty.Map(cty.Number)), Dynamic(AnyList), false},
		{"any collection accepts map", Of(cty.Map(cty.Number)), Dynamic(AnyCollection), true},
		{"any collection accepts any list", Dynamic(AnyList), Dynamic(AnyCollection), true},
		{"any list rejects any collection", Dynamic(AnyCollection), Dynamic(AnyList), false},
		{"any value accepts everything", Of(cty.Bool), Dynamic(AnyValue), true},
		{"nil type", Of(cty.NilType), Of(cty.String), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, conv.CanConnect(tt.from, tt.to))
		})
	}
}

func TestConvert(t *testing.T) {
	conv := NewConverters()

	t.Run("conforming value is unchanged", func(t *testing.T) {
		v := cty.StringVal("x")
		out, err := conv.Convert(v, Of(cty.String))
		require.NoError(t, err)
		assert.True(t, out.RawEquals(v))
	})

	t.Run("registered converter", func(t *testing.T) {
		out, err := conv.Convert(cty.NumberIntVal(42), Of(cty.String))
		require.NoError(t, err)
		assert.Equal(t, "42", out.AsString())
	})

	t.Run("registered converter failure", func(t *testing.T) {
		_, err := conv.Convert(cty.StringVal("not a number"), Of(cty.Number))
		require.Error(t, err)
		var convErr *ConversionError
		require.ErrorAs(t, err, &convErr)
		assert.Contains(t, err.Error(), "string")
		assert.Contains(t, err.Error(), "number")
	})

	t.Run("generic coercion", func(t *testing.T) {
		in := cty.TupleVal([]cty.Value{cty.StringVal("a"), cty.StringVal("b")})
		out, err := conv.Convert(in, Of(cty.List(cty.String)))
		require.NoError(t, err)
		assert.True(t, out.Type().Equals(cty.List(cty.String)))
		assert.Equal(t, 2, out.LengthInt())
	})

	t.Run("unconvertible value passes through", func(t *testing.T) {
		in := cty.ListValEmpty(cty.String)
		out, err := conv.Convert(in, Of(cty.Number))
		require.NoError(t, err)
		assert.True(t, out.Type().Equals(cty.List(cty.String)))
	})

	t.Run("custom registration replaces default", func(t *testing.T) {
		custom := NewEmptyConverters()
		custom.Register(cty.Bool, cty.Number, func(v cty.Value) (cty.Value, error) {
			if v.True() {
				return cty.NumberIntVal(1), nil
			}
			return cty.NumberIntVal(0), nil
		})
		assert.True(t, custom.CanConnect(Of(cty.Bool), Of(cty.Number)))
		out, err := custom.Convert(cty.True, Of(cty.Number))
		require.NoError(t, err)
		assert.True(t, out.RawEquals(cty.NumberIntVal(1)))
	})

	t.Run("absent value", func(t *testing.T) {
		out, err := conv.Convert(cty.NilVal, Of(cty.String))
		require.NoError(t, err)
		assert.Equal(t, cty.NilType, out.Type())
	})
}

func TestParseDataType(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		src  string
		want DataType
	}{
		{"string", Of(cty.String)},
		{"number", Of(cty.Number)},
		{"any", Any},
		{"list(number)", Of(cty.List(cty.Number))},
		{"map(set(string))", Of(cty.Map(cty.Set(cty.String)))},
		{"object({ name = string, tags = list(string) })", Of(cty.Object(map[string]cty.Type{
			"name": cty.String,
			"tags": cty.List(cty.String),
		}))},
		{"tuple([number, string])", Of(cty.Tuple([]cty.Type{cty.Number, cty.String}))},
		{"any_list", Dynamic(AnyList)},
		{" any_collection ", Dynamic(AnyCollection)},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got, err := ParseDataType(ctx, tt.src)
			require.NoError(t, err)
			assert.True(t, tt.want.Equals(got), "want %s, got %s", tt.want, got)
		})
	}

	for _, bad := range []string{"strng", "list(string, number)", "tuple(string)", "a.b", "1 +"} {
		t.Run("invalid "+bad, func(t *testing.T) {
			_, err := ParseDataType(ctx, bad)
			require.Error(t, err)
		})
	}
}

func TestTypeStringRoundTrip(t *testing.T) {
	ctx := context.Background()
	for _, ty := range []cty.Type{
		cty.String,
		cty.DynamicPseudoType,
		cty.List(cty.Number),
		cty.Object(map[string]cty.Type{"a": cty.Bool}),
		cty.Tuple([]cty.Type{cty.Number, cty.String}),
		cty.EmptyTuple,
		cty.Map(cty.Tuple([]cty.Type{cty.Bool})),
	} {
		got, err := ParseType(ctx, TypeString(ty))
		require.NoError(t, err)
		assert.True(t, ty.Equals(got), "round trip of %s", TypeString(ty))
	}
	assert.Equal(t, "any_list", Dynamic(AnyList).String())
}
