// Package ast defines the typed AST produced by the parser (§3) and the
// closed set of Type values produced and checked by the type checker (§4.3).
package ast

import "strings"

// Kind is the closed tag set of Type values (§3).
type Kind int

const (
	KindInt Kind = iota
	KindBool
	KindUnit
	KindFun
)

// Type is a value (not a type expression): Int, Bool, Unit, or
// Fun(params, return). Equality is structural (Equal), matching §3.
type Type struct {
	Kind   Kind
	Params []Type // only meaningful when Kind == KindFun
	Return *Type  // only meaningful when Kind == KindFun
}

var (
	Int  = Type{Kind: KindInt}
	Bool = Type{Kind: KindBool}
	Unit = Type{Kind: KindUnit}
)

// Fun constructs a Fun(params, return) type value.
func Fun(params []Type, ret Type) Type {
	r := ret
	return Type{Kind: KindFun, Params: params, Return: &r}
}

// Equal reports structural equality between two Type values.
func (t Type) Equal(other Type) bool {
	if t.Kind != other.Kind {
		return false
	}
	if t.Kind != KindFun {
		return true
	}
	if len(t.Params) != len(other.Params) {
		return false
	}
	for i := range t.Params {
		if !t.Params[i].Equal(other.Params[i]) {
			return false
		}
	}
	return t.Return.Equal(*other.Return)
}

func (t Type) String() string {
	switch t.Kind {
	case KindInt:
		return "Int"
	case KindBool:
		return "Bool"
	case KindUnit:
		return "Unit"
	case KindFun:
		params := make([]string, len(t.Params))
		for i, p := range t.Params {
			params[i] = p.String()
		}
		return "(" + strings.Join(params, ", ") + ") => " + t.Return.String()
	default:
		return "<unknown type>"
	}
}
