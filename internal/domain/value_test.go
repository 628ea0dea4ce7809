package domain

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEqual(t *testing.T) {
	t.Parallel()

	id := uuid.MustParse("0f8fad5b-d9cb-469f-a165-70867728950e")

	tcs := []struct {
		name string
		a, b Value
		want bool
	}{
		{name: "null and null", a: Null(), b: Null(), want: true},
		{name: "zero value is null", a: Value{}, b: Null(), want: true},
		{name: "null and text", a: Null(), b: Text("a@x.com"), want: false},
		{name: "null and empty text", a: Null(), b: Text(""), want: false},
		{name: "null and zero", a: Null(), b: Int(0), want: false},
		{name: "same text", a: Text("555"), b: Text("555"), want: true},
		{name: "different text", a: Text("old@x.com"), b: Text("a@x.com"), want: false},
		{name: "text is case sensitive", a: Text("Bob"), b: Text("bob"), want: false},
		{name: "number forms", a: Number("1.0"), b: Int(1), want: true},
		{name: "exponent form", a: Number("1e2"), b: Float(100), want: true},
		{name: "negative zero", a: Float(-0.0), b: Int(0), want: true},
		{name: "different numbers", a: Number("1.5"), b: Number("1.25"), want: false},
		{name: "number and text", a: Int(5), b: Text("5"), want: false},
		{name: "integers beyond int64", a: Number("12345678901234567890"), b: Number("12345678901234567891"), want: false},
		{name: "integer beyond int64 forms", a: Number("12345678901234567890"), b: Number("1.234567890123456789e19"), want: true},
		{name: "long decimals", a: Number("0.10000000000000000001"), b: Number("0.1"), want: false},
		{name: "28 digit decimals", a: Number("1234567890.123456789012345678"), b: Number("1234567890.123456789012345679"), want: false},
		{name: "decimal trailing zeros", a: Number("0.10000000000000000001000"), b: Number("0.10000000000000000001"), want: true},
		{name: "negative zero decimal", a: Number("-0.000"), b: Int(0), want: true},
		{name: "booleans", a: Bool(true), b: Bool(true), want: true},
		{name: "different booleans", a: Bool(true), b: Bool(false), want: false},
		{name: "identifier casing", a: IdentifierText("0F8FAD5B-D9CB-469F-A165-70867728950E"), b: Identifier(id), want: true},
		{name: "identifier and text", a: Identifier(id), b: Text(id.String()), want: false},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, Equal(tc.a, tc.b))
			assert.Equal(t, tc.want, Equal(tc.b, tc.a), "equality must be symmetric")
		})
	}
}

func TestNumber_KeepsMalformedLiteral(t *testing.T) {
	t.Parallel()

	v := Number("12,5")
	assert.Equal(t, KindNumber, v.Kind())
	assert.Equal(t, "12,5", v.String())

	for _, literal := range []string{"1e", "--1", "0x10", "1.2.3", "NaN", "1e9999999999"} {
		assert.Equal(t, literal, Number(literal).String(), literal)
	}
}

func TestNumber_CanonicalText(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		literal string
		want    string
	}{
		{literal: "007", want: "7"},
		{literal: "+3.50", want: "3.5"},
		{literal: ".5", want: "0.5"},
		{literal: "5.", want: "5"},
		{literal: "-1.5E3", want: "-1500"},
		{literal: "2.5e-3", want: "0.0025"},
		{literal: "12345678901234567890", want: "12345678901234567890"},
		{literal: "-98765432109876543210.0012300", want: "-98765432109876543210.00123"},
		{literal: "1e100", want: "1e+100"},
		{literal: "-1.25e-100", want: "-1.25e-100"},
	}

	for _, tc := range tcs {
		t.Run(tc.literal, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, Number(tc.literal).String())
		})
	}
}

func TestFloat_MatchesNumberLiteral(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "0.1", Float(0.1).String())
	assert.Equal(t, "1000000000000000000000", Float(1e21).String())
	assert.Equal(t, Number("-2.5"), Float(-2.5))
}

func TestValue_TextPtr(t *testing.T) {
	t.Parallel()

	assert.Nil(t, Null().TextPtr())

	p := Text("").TextPtr()
	require.NotNil(t, p)
	assert.Equal(t, "", *p)

	p = Bool(false).TextPtr()
	require.NotNil(t, p)
	assert.Equal(t, "false", *p)
}

func TestValue_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		name     string
		input    string
		wantKind Kind
		wantText string
	}{
		{name: "null", input: `null`, wantKind: KindNull},
		{name: "string", input: `"a@x.com"`, wantKind: KindText, wantText: "a@x.com"},
		{name: "integer", input: `42`, wantKind: KindNumber, wantText: "42"},
		{name: "decimal", input: `42.50`, wantKind: KindNumber, wantText: "42.5"},
		{name: "integer beyond int64", input: `12345678901234567891`, wantKind: KindNumber, wantText: "12345678901234567891"},
		{name: "long decimal", input: `0.10000000000000000001`, wantKind: KindNumber, wantText: "0.10000000000000000001"},
		{name: "typed long decimal", input: `{"type":"number","value":"1234567890.1234567890123456789"}`, wantKind: KindNumber, wantText: "1234567890.1234567890123456789"},
		{name: "bool", input: `true`, wantKind: KindBoolean, wantText: "true"},
		{name: "typed identifier", input: `{"type":"identifier","value":"0F8FAD5B-D9CB-469F-A165-70867728950E"}`, wantKind: KindIdentifier, wantText: "0f8fad5b-d9cb-469f-a165-70867728950e"},
		{name: "typed number as string", input: `{"type":"number","value":"7.0"}`, wantKind: KindNumber, wantText: "7"},
		{name: "typed boolean", input: `{"type":"boolean","value":"false"}`, wantKind: KindBoolean, wantText: "false"},
		{name: "typed null", input: `{"type":"text","value":null}`, wantKind: KindNull},
		{name: "unknown object kept literally", input: `{ "a": 1 }`, wantKind: KindText, wantText: `{"a":1}`},
		{name: "array kept literally", input: `[1, 2]`, wantKind: KindText, wantText: `[1,2]`},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			var v Value
			require.NoError(t, json.Unmarshal([]byte(tc.input), &v))
			assert.Equal(t, tc.wantKind, v.Kind())
			assert.Equal(t, tc.wantText, v.String())
		})
	}
}

func TestFieldMap_UnmarshalNullEntry(t *testing.T) {
	t.Parallel()

	var m FieldMap
	require.NoError(t, json.Unmarshal([]byte(`{"email":null,"phone":"555"}`), &m))

	assert.True(t, m.Has("email"))
	assert.True(t, m.Get("email").IsNull())
	assert.Equal(t, Text("555"), m.Get("phone"))
	assert.True(t, m.Get("missing").IsNull())
	assert.Equal(t, []string{"email", "phone"}, m.Names())
}

func TestValue_MarshalJSON(t *testing.T) {
	t.Parallel()

	m := FieldMap{
		"a": Null(),
		"b": Int(3),
		"c": Identifier(uuid.MustParse("0f8fad5b-d9cb-469f-a165-70867728950e")),
		"d": Text("x"),
	}
	b, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":null,"b":3,"c":{"type":"identifier","value":"0f8fad5b-d9cb-469f-a165-70867728950e"},"d":"x"}`, string(b))

	var back FieldMap
	require.NoError(t, json.Unmarshal(b, &back))
	for name, v := range m {
		assert.True(t, Equal(v, back.Get(name)), name)
	}
}
