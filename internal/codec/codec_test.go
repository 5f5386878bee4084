package codec

import (
	"math"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/menukit/internal/ir"
)

var color = Enum("red", "green", "blue")

func TestEncodeSingleBytes(t *testing.T) {
	tests := []struct {
		name string
		typ  Type
		val  ir.Value
		want []byte
	}{
		{"unit", Unit, ir.Null{}, nil},
		{"zero", Int, ir.Int(0), []byte{0x00}},
		{"minus one zigzags to one", Int, ir.Int(-1), []byte{0x01}},
		{"one", Int, ir.Int(1), []byte{0x02}},
		{"64 needs two bytes", Int, ir.Int(64), []byte{0x80, 0x01}},
		{"true", Bool, ir.Bool(true), []byte{0x01}},
		{"string", String, ir.String("hi"), []byte{0x02, 'h', 'i'}},
		{"enum ordinal", color, ir.String("green"), []byte{0x01}},
		{"nullable absent", Nullable(Int), ir.Null{}, []byte{0x00}},
		{"nullable present", Nullable(Int), ir.Int(5), []byte{0x01, 0x0a}},
		{"list", List(Bool), ir.Array{ir.Bool(true), ir.Bool(false)}, []byte{0x02, 0x01, 0x00}},
		{"record", Record(Bool, Int), ir.Array{ir.Bool(false), ir.Int(1)}, []byte{0x00, 0x02}},
		{"float", Float, ir.Float(1), []byte{0x3f, 0xf0, 0, 0, 0, 0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EncodeSingle(tt.typ, tt.val)
			require.NoError(t, err)
			assert.Equal(t, len(tt.want), len(got))
			if len(tt.want) > 0 {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestSingleRoundTrip(t *testing.T) {
	tests := []struct {
		typ Type
		val ir.Value
	}{
		{Unit, ir.Null{}},
		{Bool, ir.Bool(false)},
		{Int, ir.Int(math.MinInt64)},
		{Int, ir.Int(math.MaxInt64)},
		{Float, ir.Float(math.Copysign(0, -1))},
		{Float, ir.Float(math.Inf(-1))},
		{Float, ir.Float(math.NaN())},
		{Float, ir.Float(3.14159)},
		{String, ir.String("")},
		{String, ir.String("héllo, 世界 \U0001F600")},
		{color, ir.String("blue")},
		{Nullable(String), ir.Null{}},
		{Nullable(String), ir.String("x")},
		{List(Nullable(Int)), ir.Array{ir.Int(1), ir.Null{}, ir.Int(-300)}},
		{Nullable(Nullable(Int)), ir.Int(3)},
		{Nullable(Nullable(Int)), ir.Null{}},
		{Nullable(Nullable(Nullable(String))), ir.String("deep")},
		{Nullable(Unit), ir.Null{}},
		{List(Nullable(Nullable(Bool))), ir.Array{ir.Null{}, ir.Bool(true)}},
		{List(List(Unit)), ir.Array{ir.Array{}, ir.Array{ir.Null{}, ir.Null{}}}},
		{Record(), ir.Array{}},
		{Record(String, color, Nullable(Float)), ir.Array{ir.String("a"), ir.String("red"), ir.Float(2.5)}},
	}

	for _, tt := range tests {
		t.Run(tt.typ.String(), func(t *testing.T) {
			token, err := EncodeSingle(tt.typ, tt.val)
			require.NoError(t, err)

			got, err := DecodeSingle(tt.typ, token)
			require.NoError(t, err)
			assert.True(t, ir.Equal(tt.val, got), "want %s got %s", ir.Format(tt.val), ir.Format(got))

			again, err := EncodeSingle(tt.typ, got)
			require.NoError(t, err)
			assert.Equal(t, token, again, "re-encoding must be byte-identical")
		})
	}
}

func TestEncodeTypeMismatch(t *testing.T) {
	tests := []struct {
		name string
		typ  Type
		val  ir.Value
	}{
		{"int given string", Int, ir.String("1")},
		{"unit given int", Unit, ir.Int(0)},
		{"enum non-member", color, ir.String("purple")},
		{"record arity", Record(Int, Int), ir.Array{ir.Int(1)}},
		{"nested list element", List(Int), ir.Array{ir.Int(1), ir.Bool(true)}},
		{"invalid utf8", String, ir.String("\xff")},
		{"nil value", Int, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := EncodeSingle(tt.typ, tt.val)
			require.Error(t, err)
			assert.True(t, IsTypeMismatch(err), "got %v", err)
			assert.Error(t, Validate(tt.typ, tt.val))
		})
	}
}

func TestDecodeMalformed(t *testing.T) {
	tests := []struct {
		name  string
		typ   Type
		input []byte
		code  ErrorCode
	}{
		{"empty int", Int, nil, ErrCodeTruncated},
		{"bad bool", Bool, []byte{0x02}, ErrCodeMalformed},
		{"short float", Float, []byte{0x00, 0x01}, ErrCodeTruncated},
		{"short string", String, []byte{0x05, 'a'}, ErrCodeTruncated},
		{"bad utf8", String, []byte{0x01, 0xff}, ErrCodeMalformed},
		{"enum out of range", color, []byte{0x03}, ErrCodeMalformed},
		{"bad presence", Nullable(Int), []byte{0x02}, ErrCodeMalformed},
		{"present unit", Nullable(Unit), []byte{0x01}, ErrCodeMalformed},
		{"present flag before null", Nullable(Nullable(Int)), []byte{0x01, 0x00}, ErrCodeMalformed},
		{"list longer than input", List(Int), []byte{0x7f, 0x00}, ErrCodeTruncated},
		{"zero-width list too long", List(Unit), []byte{0xff, 0xff, 0x03}, ErrCodeMalformed},
		{"non-minimal varint", Int, []byte{0x80, 0x00}, ErrCodeMalformed},
		{"trailing bytes", Bool, []byte{0x01, 0x01}, ErrCodeTrailing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeSingle(tt.typ, tt.input)
			require.Error(t, err)
			var ce *Error
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.code, ce.Code)
			assert.True(t, IsDecodeError(err))
		})
	}
}

func TestVectorRoundTrip(t *testing.T) {
	types := []Type{Int, String, Bool, Nullable(Int), color, List(String), Record(Int, Float)}
	values := []ir.Value{
		ir.Int(-42),
		ir.String("page"),
		ir.Bool(true),
		ir.Null{},
		ir.String("red"),
		ir.Array{ir.String("a"), ir.String("")},
		ir.Array{ir.Int(7), ir.Float(0.5)},
	}

	data, err := EncodeVector(types, values)
	require.NoError(t, err)

	got, err := DecodeVector(types, data)
	require.NoError(t, err)
	if diff := cmp.Diff(values, got); diff != "" {
		t.Errorf("vector round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestVectorLengthMismatch(t *testing.T) {
	_, err := EncodeVector([]Type{Int}, nil)
	require.Error(t, err)

	data, err := EncodeVector([]Type{Int, Int}, []ir.Value{ir.Int(1), ir.Int(2)})
	require.NoError(t, err)

	_, err = DecodeVector([]Type{Int}, data)
	var ce *Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ErrCodeTrailing, ce.Code)

	_, err = DecodeVector([]Type{Int, Int, Int}, data)
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ErrCodeTruncated, ce.Code)
}

func TestSplitMatchesSingleTokens(t *testing.T) {
	types := []Type{String, Int, List(Int), Unit, Bool}
	values := []ir.Value{ir.String("abc"), ir.Int(300), ir.Array{ir.Int(1), ir.Int(2)}, ir.Null{}, ir.Bool(true)}

	data, err := EncodeVector(types, values)
	require.NoError(t, err)

	tokens, err := Split(types, data)
	require.NoError(t, err)
	require.Len(t, tokens, len(types))

	for i, typ := range types {
		single, err := EncodeSingle(typ, values[i])
		require.NoError(t, err)
		assert.Equal(t, len(single), len(tokens[i]), "token %d length", i)

		v, err := DecodeSingle(typ, tokens[i])
		require.NoError(t, err)
		assert.True(t, ir.Equal(values[i], v))
	}
}

// randomType and randomValue drive the round-trip laws over generated inputs.
func randomType(r *rand.Rand, depth int) Type {
	scalars := []Type{Unit, Bool, Int, Float, String, color}
	if depth <= 0 {
		return scalars[r.Intn(len(scalars))]
	}
	switch r.Intn(9) {
	case 0:
		return Nullable(randomType(r, depth-1))
	case 1:
		return List(randomType(r, depth-1))
	case 2:
		n := r.Intn(4)
		fields := make([]Type, n)
		for i := range fields {
			fields[i] = randomType(r, depth-1)
		}
		return Record(fields...)
	default:
		return scalars[r.Intn(len(scalars))]
	}
}

func randomValue(r *rand.Rand, t Type) ir.Value {
	switch t.Kind() {
	case KindUnit:
		return ir.Null{}
	case KindBool:
		return ir.Bool(r.Intn(2) == 1)
	case KindInt:
		return ir.Int(r.Int63() - r.Int63())
	case KindFloat:
		return ir.Float(r.NormFloat64() * 1e6)
	case KindString:
		runes := []rune("aZ09-_:é世\U0001F600")
		n := r.Intn(8)
		out := make([]rune, n)
		for i := range out {
			out[i] = runes[r.Intn(len(runes))]
		}
		return ir.String(string(out))
	case KindEnum:
		names := t.Names()
		return ir.String(names[r.Intn(len(names))])
	case KindNullable:
		if r.Intn(2) == 0 {
			return ir.Null{}
		}
		return randomValue(r, t.Elem())
	case KindList:
		n := r.Intn(4)
		arr := make(ir.Array, n)
		for i := range arr {
			arr[i] = randomValue(r, t.Elem())
		}
		return arr
	case KindRecord:
		fields := t.Fields()
		arr := make(ir.Array, len(fields))
		for i, f := range fields {
			arr[i] = randomValue(r, f)
		}
		return arr
	}
	panic("unreachable")
}

func TestRoundTripLaws(t *testing.T) {
	r := rand.New(rand.NewSource(20261018))

	for i := 0; i < 300; i++ {
		n := r.Intn(6)
		types := make([]Type, n)
		values := make([]ir.Value, n)
		for j := range types {
			types[j] = randomType(r, 2)
			values[j] = randomValue(r, types[j])

			token, err := EncodeSingle(types[j], values[j])
			require.NoError(t, err)
			got, err := DecodeSingle(types[j], token)
			require.NoError(t, err)
			require.True(t, ir.Equal(values[j], got), "single %s: want %s got %s", types[j], ir.Format(values[j]), ir.Format(got))
		}

		data, err := EncodeVector(types, values)
		require.NoError(t, err)
		got, err := DecodeVector(types, data)
		require.NoError(t, err)
		require.True(t, ir.Equal(ir.Array(values), ir.Array(got)), "vector %v", TypeNames(types))

		text := ToText(data)
		back, err := FromText(text)
		require.NoError(t, err)
		require.Equal(t, len(data), len(back))
	}
}

func TestText(t *testing.T) {
	assert.Equal(t, "AAEC", ToText([]byte{0, 1, 2}))
	assert.Equal(t, "AQ", ToText([]byte{1}))
	assert.Equal(t, "", ToText(nil))
	assert.Equal(t, 4, TextLen(3))
	assert.Equal(t, 2, TextLen(1))

	data, err := FromText("AAEC")
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 1, 2}, data)

	_, err = FromText("AA:C")
	require.Error(t, err)
	assert.True(t, IsDecodeError(err))

	_, err = FromText("A")
	require.Error(t, err)

	data, err = FromText("AQ")
	require.NoError(t, err)
	assert.Equal(t, []byte{1}, data)

	// "AR" carries the same byte with a stray padding bit set.
	_, err = FromText("AR")
	require.Error(t, err)
	assert.True(t, IsDecodeError(err))
}

func TestTypeStringAndParse(t *testing.T) {
	tests := []struct {
		typ  Type
		want string
	}{
		{Int, "int"},
		{Nullable(List(String)), "nullable<list<string>>"},
		{color, "enum<red|green|blue>"},
		{Record(Int, Record(), Bool), "record<int,record<>,bool>"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.typ.String())

			parsed, err := ParseType(tt.want)
			require.NoError(t, err)
			assert.True(t, parsed.Equal(tt.typ))
		})
	}
}

func TestParseTypeList(t *testing.T) {
	types, err := ParseTypeList(" int, list< string >, record<bool,int> , enum<a|b>")
	require.NoError(t, err)
	assert.Equal(t, []string{"int", "list<string>", "record<bool,int>", "enum<a|b>"}, TypeNames(types))

	empty, err := ParseTypeList("  ")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestParseTypeErrors(t *testing.T) {
	for _, input := range []string{"", "integer", "list<int", "enum<>", "record<int,>", "int>", "list<int>>"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseType(input)
			assert.Error(t, err)
		})
	}
}
