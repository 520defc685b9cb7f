package systemctl

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Kind identifies which variant a Value holds
type Kind int

const (
	// KindString is a verbatim property value
	KindString Kind = iota
	// KindInt is a value that parsed as a signed decimal integer
	KindInt
	// KindBool is a yes/no value
	KindBool
)

// Kind string constants
const (
	kindStringStr = "string"
	kindIntStr    = "int"
	kindBoolStr   = "bool"
)

// String returns the string representation of Kind
func (k Kind) String() string {
	switch k {
	case KindInt:
		return kindIntStr
	case KindBool:
		return kindBoolStr
	case KindString:
		fallthrough
	default:
		return kindStringStr
	}
}

// Value is a coerced unit property value. It is one of StringValue,
// IntValue or BoolValue; switch on the concrete type or on Kind().
type Value interface {
	Kind() Kind
	String() string
	isValue()
}

// StringValue is a property value kept as text
type StringValue string

// IntValue is a property value parsed as an integer
type IntValue int64

// BoolValue is a property value parsed from yes/no
type BoolValue bool

// Kind implements Value
func (StringValue) Kind() Kind { return KindString }

// Kind implements Value
func (IntValue) Kind() Kind { return KindInt }

// Kind implements Value
func (BoolValue) Kind() Kind { return KindBool }

func (v StringValue) String() string { return string(v) }

func (v IntValue) String() string { return strconv.FormatInt(int64(v), 10) }

// String renders the value the way systemctl prints it
func (v BoolValue) String() string {
	if v {
		return "yes"
	}
	return "no"
}

func (StringValue) isValue() {}
func (IntValue) isValue()    {}
func (BoolValue) isValue()   {}

var (
	// leading zero numbers are modes like 0755, keep them textual
	modeValueRe = regexp.MustCompile(`^0\d+$`)
	intValueRe  = regexp.MustCompile(`^-?\d+$`)

	acronymKeyRe = regexp.MustCompile(`^(CPU|IO|IP|NUMA|OOM|GID|UID)`)
)

// ParseValue coerces a raw systemctl value into a Value.
// Integers that do not fit in 64 bits are returned as StringValue.
func ParseValue(raw string) Value {
	if modeValueRe.MatchString(raw) {
		return StringValue(raw)
	}
	if intValueRe.MatchString(raw) {
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return IntValue(n)
		}
		return StringValue(raw)
	}
	switch raw {
	case "yes":
		return BoolValue(true)
	case "no":
		return BoolValue(false)
	}
	return StringValue(raw)
}

// NormalizeKey converts an upstream PascalCase property name to camelCase.
// Names beginning with CPU, IO, IP, NUMA, OOM, GID or UID are returned unchanged.
func NormalizeKey(key string) string {
	if key == "" || acronymKeyRe.MatchString(key) {
		return key
	}
	r, size := utf8.DecodeRuneInString(key)
	return string(unicode.ToLower(r)) + key[size:]
}

// Properties is a snapshot of a unit's properties keyed by normalized name
type Properties map[string]Value

// ParseProperties parses `systemctl show` output. Every non-empty line is
// split on its first '='; lines without one are skipped.
func ParseProperties(output []byte) Properties {
	props := make(Properties)

	// Lines are split in place; ExecStart and Environment values can be
	// arbitrarily long
	for _, raw := range bytes.Split(output, []byte("\n")) {
		line := string(bytes.TrimSuffix(raw, []byte("\r")))
		if line == "" {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		props[NormalizeKey(key)] = ParseValue(value)
	}

	return props
}

// Get returns the value stored under a normalized key
func (p Properties) Get(key string) (Value, bool) {
	v, ok := p[key]
	return v, ok
}

// String returns the textual form of a property, or "" when absent
func (p Properties) String(key string) string {
	v, ok := p[key]
	if !ok || v == nil {
		return ""
	}
	return v.String()
}

// Int returns an integer property. The second result is false when the
// property is absent or not an integer.
func (p Properties) Int(key string) (int64, bool) {
	v, ok := p[key].(IntValue)
	return int64(v), ok
}

// Bool returns a yes/no property. The second result is false when the
// property is absent or not a boolean.
func (p Properties) Bool(key string) (bool, bool) {
	v, ok := p[key].(BoolValue)
	return bool(v), ok
}

// Clone returns a shallow copy; Values are immutable so this is a full copy
func (p Properties) Clone() Properties {
	out := make(Properties, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Well known property keys after normalization
const (
	PropActiveState   = "activeState"
	PropSubState      = "subState"
	PropLoadState     = "loadState"
	PropUnitFileState = "unitFileState"
	PropMainPID       = "mainPID"
	PropFragmentPath  = "fragmentPath"
	PropDescription   = "description"
	PropID            = "id"
)
