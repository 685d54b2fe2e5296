// Package ir lowers a type-checked AST to the flat three-address
// instruction list of §4.4: explicit labels, explicit jumps, no nesting.
package ir

import "fmt"

// IRVar is an opaque operand name (§3). Freshly generated names are
// x, x2, x3, ...; reserved globals use their source names.
type IRVar string

// Label names a jump target. Freshly generated names reuse a base the
// first time it is requested and suffix a disambiguator thereafter.
type Label string

// Instruction is the closed tag set of §3. Every case is a struct holding
// exactly its operands, mirroring the AST's tagged-variant shape.
type Instruction interface {
	isInstruction()
	String() string
}

type LoadIntConst struct {
	Value int64
	Dest  IRVar
}

type LoadBoolConst struct {
	Value bool
	Dest  IRVar
}

type Copy struct {
	Source IRVar
	Dest   IRVar
}

type Call struct {
	Fun  IRVar
	Args []IRVar
	Dest IRVar
}

type Jump struct {
	Target Label
}

type CondJump struct {
	Cond IRVar
	Then Label
	Else Label
}

// LabelDecl is a pseudo-instruction marking a position in the stream; it
// has no operands and emits nothing at assembly time beyond the label.
type LabelDecl struct {
	Name Label
}

func (LoadIntConst) isInstruction()  {}
func (LoadBoolConst) isInstruction() {}
func (Copy) isInstruction()          {}
func (Call) isInstruction()          {}
func (Jump) isInstruction()          {}
func (CondJump) isInstruction()      {}
func (LabelDecl) isInstruction()     {}

func (i LoadIntConst) String() string  { return fmt.Sprintf("%s = %d", i.Dest, i.Value) }
func (i LoadBoolConst) String() string { return fmt.Sprintf("%s = %t", i.Dest, i.Value) }
func (i Copy) String() string          { return fmt.Sprintf("%s = %s", i.Dest, i.Source) }
func (i Call) String() string          { return fmt.Sprintf("%s = call %s %v", i.Dest, i.Fun, i.Args) }
func (i Jump) String() string          { return fmt.Sprintf("jump %s", i.Target) }
func (i CondJump) String() string {
	return fmt.Sprintf("if %s jump %s else %s", i.Cond, i.Then, i.Else)
}
func (i LabelDecl) String() string { return fmt.Sprintf("%s:", i.Name) }
