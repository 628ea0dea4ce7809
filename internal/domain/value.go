package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Kind is the variant tag of a field Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindText
	KindNumber
	KindBoolean
	KindIdentifier
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	case KindBoolean:
		return "boolean"
	case KindIdentifier:
		return "identifier"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

func parseKind(s string) (Kind, bool) {
	switch s {
	case "null":
		return KindNull, true
	case "text", "string":
		return KindText, true
	case "number":
		return KindNumber, true
	case "boolean", "bool":
		return KindBoolean, true
	case "identifier", "uuid":
		return KindIdentifier, true
	}
	return KindNull, false
}

// Value is a single typed field value. Values are normalized on construction,
// so two values are equal exactly when their kinds and canonical texts match.
// The zero Value is null.
type Value struct {
	kind Kind
	text string
}

func Null() Value { return Value{} }

func Text(s string) Value { return Value{kind: KindText, text: s} }

func Bool(b bool) Value { return Value{kind: KindBoolean, text: strconv.FormatBool(b)} }

func Int(i int64) Value { return Value{kind: KindNumber, text: strconv.FormatInt(i, 10)} }

func Float(f float64) Value { return Value{kind: KindNumber, text: canonicalFloat(f)} }

// Number builds a number from its literal form. Literals that do not parse
// are kept verbatim.
func Number(literal string) Value {
	return Value{kind: KindNumber, text: canonicalNumber(literal)}
}

func Identifier(id uuid.UUID) Value { return Value{kind: KindIdentifier, text: id.String()} }

// IdentifierText builds an identifier from text, normalizing it when it is a UUID.
func IdentifierText(s string) Value {
	if id, err := uuid.Parse(strings.TrimSpace(s)); err == nil {
		return Identifier(id)
	}
	return Value{kind: KindIdentifier, text: s}
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool { return v.kind == KindNull }

// String returns the canonical text. Null has no text and returns "".
func (v Value) String() string { return v.text }

// TextPtr returns the canonical text, or nil for null.
func (v Value) TextPtr() *string {
	if v.IsNull() {
		return nil
	}
	s := v.text
	return &s
}

// Equal reports whether a and b hold the same value. Null equals only null.
func Equal(a, b Value) bool {
	if a.IsNull() || b.IsNull() {
		return a.IsNull() && b.IsNull()
	}
	return a.kind == b.kind && a.text == b.text
}

// maxPadding bounds the zeros written out in plain notation. Numbers that
// would need more are rendered in scientific notation.
const maxPadding = 64

func canonicalNumber(literal string) string {
	s := strings.TrimSpace(literal)
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return strconv.FormatInt(i, 10)
	}
	d, ok := parseDecimal(s)
	if !ok {
		return literal
	}
	return d.String()
}

func canonicalFloat(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return canonicalNumber(strconv.FormatFloat(f, 'e', -1, 64))
}

// decimal is digits × 10^exp with no leading or trailing zeros in digits.
// Zero has empty digits.
type decimal struct {
	neg    bool
	digits string
	exp    int
}

// parseDecimal reads [+-]digits[.digits][(e|E)[+-]digits] exactly, without
// going through a binary float.
func parseDecimal(s string) (decimal, bool) {
	var d decimal
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		d.neg = s[i] == '-'
		i++
	}

	start := i
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	intPart := s[start:i]

	var frac string
	if i < len(s) && s[i] == '.' {
		i++
		start = i
		for i < len(s) && isDigit(s[i]) {
			i++
		}
		frac = s[start:i]
	}
	if intPart == "" && frac == "" {
		return decimal{}, false
	}

	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		i++
		start = i
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			i++
		}
		digitsStart := i
		for i < len(s) && isDigit(s[i]) {
			i++
		}
		if i == digitsStart || i-digitsStart > 9 {
			return decimal{}, false
		}
		exp, err := strconv.Atoi(s[start:i])
		if err != nil {
			return decimal{}, false
		}
		d.exp = exp
	}
	if i != len(s) {
		return decimal{}, false
	}

	mantissa := strings.TrimLeft(intPart+frac, "0")
	d.exp -= len(frac)
	trimmed := strings.TrimRight(mantissa, "0")
	d.exp += len(mantissa) - len(trimmed)
	d.digits = trimmed

	if d.digits == "" {
		return decimal{}, true
	}
	return d, true
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func (d decimal) String() string {
	if d.digits == "" {
		return "0"
	}

	var b strings.Builder
	if d.neg {
		b.WriteByte('-')
	}

	point := len(d.digits) + d.exp
	switch {
	case d.exp >= 0 && d.exp <= maxPadding:
		b.WriteString(d.digits)
		b.WriteString(strings.Repeat("0", d.exp))
	case d.exp < 0 && point > 0:
		b.WriteString(d.digits[:point])
		b.WriteByte('.')
		b.WriteString(d.digits[point:])
	case d.exp < 0 && -point <= maxPadding:
		b.WriteString("0.")
		b.WriteString(strings.Repeat("0", -point))
		b.WriteString(d.digits)
	default:
		b.WriteByte(d.digits[0])
		if len(d.digits) > 1 {
			b.WriteByte('.')
			b.WriteString(d.digits[1:])
		}
		sci := point - 1
		b.WriteByte('e')
		if sci >= 0 {
			b.WriteByte('+')
		}
		b.WriteString(strconv.Itoa(sci))
	}
	return b.String()
}

type typedValue struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

// UnmarshalJSON accepts bare JSON scalars or a typed object
// {"type": "...", "value": ...}. Anything else is kept as its literal text.
func (v *Value) UnmarshalJSON(data []byte) error {
	raw := bytes.TrimSpace(data)
	if len(raw) == 0 {
		*v = Null()
		return nil
	}

	switch raw[0] {
	case 'n':
		*v = Null()
		return nil
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			*v = Text(string(raw))
			return nil
		}
		*v = Bool(b)
		return nil
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return fmt.Errorf("invalid string value: %w", err)
		}
		*v = Text(s)
		return nil
	case '{':
		var tv typedValue
		if err := json.Unmarshal(raw, &tv); err == nil && tv.Type != "" {
			if kind, ok := parseKind(tv.Type); ok {
				*v = fromTyped(kind, tv.Value)
				return nil
			}
		}
		*v = Text(compactJSON(raw))
		return nil
	case '[':
		*v = Text(compactJSON(raw))
		return nil
	default:
		*v = Number(string(raw))
		return nil
	}
}

func fromTyped(kind Kind, raw json.RawMessage) Value {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return Null()
	}

	var s string
	isString := json.Unmarshal(raw, &s) == nil
	if !isString {
		s = compactJSON(raw)
	}

	switch kind {
	case KindText:
		return Text(s)
	case KindNumber:
		return Number(s)
	case KindBoolean:
		b, err := strconv.ParseBool(strings.TrimSpace(s))
		if err != nil {
			return Text(s)
		}
		return Bool(b)
	case KindIdentifier:
		return IdentifierText(s)
	default:
		return Null()
	}
}

func compactJSON(raw []byte) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindBoolean:
		return []byte(v.text), nil
	case KindNumber:
		if json.Valid([]byte(v.text)) {
			return []byte(v.text), nil
		}
		return json.Marshal(typedValue{Type: KindNumber.String(), Value: mustQuote(v.text)})
	case KindIdentifier:
		return json.Marshal(typedValue{Type: KindIdentifier.String(), Value: mustQuote(v.text)})
	default:
		return json.Marshal(v.text)
	}
}

func mustQuote(s string) json.RawMessage {
	b, _ := json.Marshal(s)
	return b
}

// FieldMap holds field values keyed by field name. A missing key reads as null.
type FieldMap map[string]Value

func (m FieldMap) Get(name string) Value {
	if m == nil {
		return Null()
	}
	return m[name]
}

func (m FieldMap) Has(name string) bool {
	_, ok := m[name]
	return ok
}

// Names returns the field names in ascending order.
func (m FieldMap) Names() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
