package types

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Kind identifies which member of the value union a Value holds.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindDecimal
	KindString
	KindDateTime
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindDecimal:
		return "decimal"
	case KindString:
		return "string"
	case KindDateTime:
		return "datetime"
	default:
		return "unknown"
	}
}

// Value is a tagged union over the closed set of row value types:
// null, bool, int, decimal, string and datetime. The zero Value is NULL.
//
// Column types are advisory metadata only; a Value is never coerced to the
// declared type of the column it is written into.
type Value struct {
	kind Kind
	b    bool
	i    int64
	d    float64
	s    string
	t    time.Time
}

func Null() Value                { return Value{} }
func Bool(b bool) Value          { return Value{kind: KindBool, b: b} }
func Int(i int64) Value          { return Value{kind: KindInt, i: i} }
func Decimal(d float64) Value    { return Value{kind: KindDecimal, d: d} }
func String(s string) Value      { return Value{kind: KindString, s: s} }
func DateTime(t time.Time) Value { return Value{kind: KindDateTime, t: t} }

func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) AsBool() bool       { return v.b }
func (v Value) AsInt() int64       { return v.i }
func (v Value) AsDecimal() float64 { return v.d }
func (v Value) AsString() string   { return v.s }
func (v Value) AsTime() time.Time  { return v.t }

// Float reports the numeric magnitude of int and decimal values.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case KindInt:
		return float64(v.i), true
	case KindDecimal:
		return v.d, true
	default:
		return 0, false
	}
}

// String renders the value the way the console expects it.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "NULL"
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindDecimal:
		return formatDecimal(v.d)
	case KindString:
		return v.s
	case KindDateTime:
		return v.t.Format(time.RFC3339)
	default:
		return fmt.Sprintf("<%d>", v.kind)
	}
}

// Key returns the canonical index key for the value. Keys are tagged with
// the kind so that the integer 1 and the string "1" land in distinct index
// buckets.
func (v Value) Key() string {
	switch v.kind {
	case KindNull:
		return "n:"
	case KindBool:
		return "b:" + strconv.FormatBool(v.b)
	case KindInt:
		return "i:" + strconv.FormatInt(v.i, 10)
	case KindDecimal:
		return "d:" + formatDecimal(v.d)
	case KindDateTime:
		return "t:" + v.t.Format(time.RFC3339)
	default:
		return "s:" + v.s
	}
}

// Equal implements condition matching. Values of the same kind compare
// directly, int compares numerically against decimal, and datetime compares
// against its RFC 3339 text so reloaded rows keep matching pre-reload
// conditions. Every other kind pairing is unequal.
func (v Value) Equal(o Value) bool {
	if v.kind == o.kind {
		switch v.kind {
		case KindNull:
			return true
		case KindBool:
			return v.b == o.b
		case KindInt:
			return v.i == o.i
		case KindDecimal:
			return v.d == o.d
		case KindString:
			return v.s == o.s
		case KindDateTime:
			return v.t.Equal(o.t)
		}
	}

	if vf, ok := v.Float(); ok {
		if of, ok := o.Float(); ok {
			return vf == of
		}
	}

	if v.kind == KindDateTime && o.kind == KindString {
		return v.String() == o.s
	}
	if v.kind == KindString && o.kind == KindDateTime {
		return v.s == o.String()
	}

	return false
}

// NormalizeLiteral converts literal text into a typed Value. The same rule
// is applied to SQL literals and to HTTP query-parameter values: NULL, TRUE
// and FALSE are recognized case-insensitively, then an integer parse is
// attempted, then a decimal parse, and anything else is a string with
// surrounding quote characters stripped.
func NormalizeLiteral(text string) Value {
	s := strings.TrimSpace(text)

	switch strings.ToUpper(s) {
	case "NULL":
		return Null()
	case "TRUE":
		return Bool(true)
	case "FALSE":
		return Bool(false)
	}

	if isNumericToken(s) {
		if strings.Contains(s, ".") {
			if d, err := strconv.ParseFloat(s, 64); err == nil {
				return Decimal(d)
			}
		} else if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return Int(i)
		}
	}

	return String(strings.Trim(s, `'"`))
}

// isNumericToken reports whether the token is all digits once '.' and '-'
// are ignored.
func isNumericToken(s string) bool {
	stripped := strings.NewReplacer(".", "", "-", "").Replace(s)
	if stripped == "" {
		return false
	}
	for _, r := range stripped {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// formatDecimal always keeps a fractional marker so that a whole decimal
// survives a persistence round trip as a decimal instead of an int.
func formatDecimal(d float64) string {
	s := strconv.FormatFloat(d, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindBool:
		return json.Marshal(v.b)
	case KindInt:
		return json.Marshal(v.i)
	case KindDecimal:
		return []byte(formatDecimal(v.d)), nil
	case KindString:
		return json.Marshal(v.s)
	case KindDateTime:
		return json.Marshal(v.t.Format(time.RFC3339))
	default:
		return nil, fmt.Errorf("cannot marshal value of kind %s", v.kind)
	}
}

func (v *Value) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return fmt.Errorf("empty value literal")
	}

	switch trimmed[0] {
	case 'n':
		*v = Null()
		return nil
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*v = Bool(b)
		return nil
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			*v = DateTime(t)
		} else {
			*v = String(s)
		}
		return nil
	default:
		if strings.ContainsAny(trimmed, ".eE") {
			d, err := strconv.ParseFloat(trimmed, 64)
			if err != nil {
				return fmt.Errorf("invalid number literal %q: %w", trimmed, err)
			}
			*v = Decimal(d)
			return nil
		}
		i, err := strconv.ParseInt(trimmed, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid number literal %q: %w", trimmed, err)
		}
		*v = Int(i)
		return nil
	}
}
