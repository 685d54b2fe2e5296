package utils

// Environment is a parent-linked scope chain: a stack of frames, the topmost
// being the current (innermost) lexical scope. 'Define' always installs into
// the current frame; 'Lookup' and 'Assign' walk from the current frame
// outwards (top to bottom of the stack) the way a parent-linked symbol table
// walks its parent chain.
//
// A single implementation is shared by the type checker (frames of name to
// ast.Type) and the IR generator (frames of name to ir.IRVar).
type Environment[V any] struct {
	frames Stack[map[string]V]
}

// Initializes and returns to the caller a brand new 'Environment' struct with
// a single, empty root frame already pushed.
func NewEnvironment[V any]() *Environment[V] {
	env := &Environment[V]{}
	env.frames.Push(map[string]V{})
	return env
}

// Push opens a new child scope, becoming the current frame.
func (env *Environment[V]) Push() {
	env.frames.Push(map[string]V{})
}

// Pop closes the current scope, reverting to its parent frame.
func (env *Environment[V]) Pop() {
	env.frames.Pop()
}

// Define installs 'name' in the current (topmost) frame, shadowing any
// binding for the same name in an outer frame.
func (env *Environment[V]) Define(name string, value V) {
	top, err := env.frames.Top()
	if err != nil {
		panic("utils.Environment: Define called with no frame pushed")
	}
	top[name] = value
}

// DefinedInCurrentFrame reports whether 'name' is already bound in the
// current (topmost) frame only, ignoring outer frames.
func (env *Environment[V]) DefinedInCurrentFrame(name string) bool {
	top, err := env.frames.Top()
	if err != nil {
		return false
	}
	_, ok := top[name]
	return ok
}

// Lookup walks the frame stack from innermost to outermost and returns the
// first binding found for 'name'.
func (env *Environment[V]) Lookup(name string) (V, bool) {
	var found V
	ok := false
	env.frames.Iterator()(func(frame map[string]V) bool {
		if v, exists := frame[name]; exists {
			found, ok = v, true
			return false
		}
		return true
	})
	return found, ok
}

// Assign walks the frame stack from innermost to outermost and mutates the
// first frame that already binds 'name'. Reports whether a binding was found.
func (env *Environment[V]) Assign(name string, value V) bool {
	assigned := false
	env.frames.Iterator()(func(frame map[string]V) bool {
		if _, exists := frame[name]; exists {
			frame[name] = value
			assigned = true
			return false
		}
		return true
	})
	return assigned
}
