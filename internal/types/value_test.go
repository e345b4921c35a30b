package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeLiteral(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Value
	}{
		{name: "null keyword", input: "NULL", want: Null()},
		{name: "null keyword lowercase", input: "null", want: Null()},
		{name: "true keyword", input: "TRUE", want: Bool(true)},
		{name: "false keyword mixed case", input: "False", want: Bool(false)},
		{name: "integer", input: "42", want: Int(42)},
		{name: "negative integer", input: "-7", want: Int(-7)},
		{name: "decimal", input: "99.95", want: Decimal(99.95)},
		{name: "whole decimal", input: "100.0", want: Decimal(100)},
		{name: "single quoted string", input: "'Alice'", want: String("Alice")},
		{name: "double quoted string", input: `"Bob"`, want: String("Bob")},
		{name: "bare string", input: "pending", want: String("pending")},
		{name: "surrounding space trimmed", input: "  5  ", want: Int(5)},
		{name: "digits with letters stay string", input: "12abc", want: String("12abc")},
		{name: "lone dot is string", input: ".", want: String(".")},
		{name: "multiple dots fall back to string", input: "1.2.3", want: String("1.2.3")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeLiteral(tt.input))
		})
	}
}

func TestValueEqual(t *testing.T) {
	ts := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{name: "same ints", a: Int(1), b: Int(1), want: true},
		{name: "different ints", a: Int(1), b: Int(2), want: false},
		{name: "int vs equal decimal", a: Int(1), b: Decimal(1.0), want: true},
		{name: "decimal vs equal int", a: Decimal(2.0), b: Int(2), want: true},
		{name: "int vs string of same digits", a: Int(1), b: String("1"), want: false},
		{name: "strings", a: String("a"), b: String("a"), want: true},
		{name: "bools", a: Bool(true), b: Bool(true), want: true},
		{name: "nulls", a: Null(), b: Null(), want: true},
		{name: "null vs zero int", a: Null(), b: Int(0), want: false},
		{name: "datetime vs itself", a: DateTime(ts), b: DateTime(ts), want: true},
		{name: "datetime vs rfc3339 text", a: DateTime(ts), b: String("2024-01-15T10:30:00Z"), want: true},
		{name: "rfc3339 text vs datetime", a: String("2024-01-15T10:30:00Z"), b: DateTime(ts), want: true},
		{name: "datetime vs other text", a: DateTime(ts), b: String("yesterday"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Equal(tt.b))
			assert.Equal(t, tt.want, tt.b.Equal(tt.a))
		})
	}
}

func TestValueKeyDistinguishesKinds(t *testing.T) {
	assert.NotEqual(t, Int(1).Key(), String("1").Key())
	assert.NotEqual(t, Int(1).Key(), Decimal(1.0).Key())
	assert.NotEqual(t, Bool(true).Key(), String("true").Key())
	assert.Equal(t, "n:", Null().Key())
	assert.Equal(t, "i:42", Int(42).Key())
	assert.Equal(t, "s:42", String("42").Key())
	assert.Equal(t, "d:1.5", Decimal(1.5).Key())
}

func TestValueJSONRoundTrip(t *testing.T) {
	ts := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		v    Value
	}{
		{name: "null", v: Null()},
		{name: "bool", v: Bool(true)},
		{name: "int", v: Int(-12)},
		{name: "decimal", v: Decimal(99.95)},
		{name: "whole decimal keeps kind", v: Decimal(100)},
		{name: "string", v: String("hello world")},
		{name: "datetime", v: DateTime(ts)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.v)
			require.NoError(t, err)

			var got Value
			require.NoError(t, json.Unmarshal(data, &got))

			assert.Equal(t, tt.v.Kind(), got.Kind())
			assert.True(t, tt.v.Equal(got))
		})
	}
}

func TestValueJSONDatetimeDetection(t *testing.T) {
	var v Value
	require.NoError(t, json.Unmarshal([]byte(`"2024-01-15T10:30:00Z"`), &v))
	assert.Equal(t, KindDateTime, v.Kind())

	require.NoError(t, json.Unmarshal([]byte(`"not a timestamp"`), &v))
	assert.Equal(t, KindString, v.Kind())
}

func TestRowMatches(t *testing.T) {
	row := Row{
		"id":     Int(3),
		"name":   String("Alice"),
		"amount": Decimal(150.75),
	}

	assert.True(t, row.Matches(Row{}))
	assert.True(t, row.Matches(Row{"id": Int(3)}))
	assert.True(t, row.Matches(Row{"id": Int(3), "name": String("Alice")}))
	assert.True(t, row.Matches(Row{"amount": Decimal(150.75)}))
	assert.False(t, row.Matches(Row{"id": Int(4)}))
	assert.False(t, row.Matches(Row{"id": String("3")}))
	assert.False(t, row.Matches(Row{"missing": Int(1)}))
	assert.True(t, row.Matches(Row{"missing": Null()}))
}
