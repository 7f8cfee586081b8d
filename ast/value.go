package ast

import "fmt"

// ValueKind identifies the type tag of a literal Value.
type ValueKind int

const (
	Int ValueKind = iota
	Float
	String
	Bool
	Color
)

func (k ValueKind) String() string {
	switch k {
	case Int:
		return "int"
	case Float:
		return "float"
	case String:
		return "string"
	case Bool:
		return "bool"
	case Color:
		return "color"
	default:
		return "unknown"
	}
}

// Value is the immutable literal value carried by a LiteralNode. It is a
// small tagged union over the literal forms spec.md §6 lists: integer,
// float, string, bool, and color (#RRGGBB / #RRGGBBAA, stored as packed
// 0xRRGGBBAA).
type Value struct {
	kind ValueKind
	i    int64
	f    float64
	s    string
	b    bool
}

func IntValue(i int64) Value       { return Value{kind: Int, i: i} }
func FloatValue(f float64) Value   { return Value{kind: Float, f: f} }
func StringValue(s string) Value   { return Value{kind: String, s: s} }
func BoolValue(b bool) Value       { return Value{kind: Bool, b: b} }
func ColorValue(packed int64) Value { return Value{kind: Color, i: packed} }

func (v Value) Kind() ValueKind { return v.kind }

func (v Value) Int() int64 {
	switch v.kind {
	case Int, Color:
		return v.i
	case Float:
		return int64(v.f)
	case Bool:
		if v.b {
			return 1
		}
		return 0
	default:
		return 0
	}
}

func (v Value) Float() float64 {
	switch v.kind {
	case Float:
		return v.f
	case Int, Color:
		return float64(v.i)
	case Bool:
		if v.b {
			return 1
		}
		return 0
	default:
		return 0
	}
}

func (v Value) String() string {
	switch v.kind {
	case String:
		return v.s
	case Int:
		return fmt.Sprintf("%d", v.i)
	case Float:
		return fmt.Sprintf("%g", v.f)
	case Bool:
		return fmt.Sprintf("%t", v.b)
	case Color:
		return fmt.Sprintf("#%08X", uint32(v.i))
	default:
		return ""
	}
}

func (v Value) Bool() bool {
	switch v.kind {
	case Bool:
		return v.b
	case Int:
		return v.i != 0
	case Float:
		return v.f != 0
	case String:
		return v.s != ""
	default:
		return false
	}
}
