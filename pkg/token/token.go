// Package token defines the tokens produced by the tokenizer (§4.1) and the
// source locations attached to every token and, later, every AST node.
package token

import "fmt"

// Location is a 1-based line/column pair. A dedicated wildcard value (Any)
// compares equal to every other Location; it exists only so that tests can
// write location-agnostic AST/token literals without hand-computing the
// exact position a parser would have assigned.
type Location struct {
	Line, Column int
	any          bool
}

// Any is the wildcard location: Any.Equal(loc) and loc.Equal(Any) are always
// true, for any loc.
var Any = Location{any: true}

// Equal reports whether two locations denote the same position, treating Any
// as equal to anything. This is a dedicated predicate, not an override of
// struct equality (plain '==' on two real locations still compares fields).
func (l Location) Equal(other Location) bool {
	if l.any || other.any {
		return true
	}
	return l.Line == other.Line && l.Column == other.Column
}

func (l Location) String() string {
	if l.any {
		return "<any>"
	}
	return fmt.Sprintf("%d:%d", l.Line, l.Column)
}

// Kind classifies a token's lexical category. Keywords are NOT a distinct
// Kind: 'if', 'while', 'true', ... are tokenized as Identifier and
// disambiguated by the parser (§4.1).
type Kind int

const (
	IntLiteral Kind = iota
	Identifier
	Operator
	Punctuation
	Other
	End
)

func (k Kind) String() string {
	switch k {
	case IntLiteral:
		return "int_literal"
	case Identifier:
		return "identifier"
	case Operator:
		return "operator"
	case Punctuation:
		return "punctuation"
	case Other:
		return "other"
	case End:
		return "end"
	default:
		return "unknown"
	}
}

// Token is one lexeme with its kind and source location. Text is always a
// contiguous substring of the source it was scanned from.
type Token struct {
	Text     string
	Kind     Kind
	Location Location
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@%s", t.Kind, t.Text, t.Location)
}
