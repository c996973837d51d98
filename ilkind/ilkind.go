// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ilkind defines the two parallel type lattices the compiler
// core tracks while importing a method: StackType, used only during
// import to model the abstract evaluation stack, and InterpType, which
// is persisted into the emitted instruction stream and survives into
// the interpreter.
package ilkind

import "fmt"

// StackType is the type of a value as tracked on the abstract IL
// evaluation stack. It exists only during import.
type StackType int8

const (
	StackI4 StackType = iota
	StackI8
	StackR4
	StackR8
	StackO  // object reference
	StackVT // value type, tracked by size + class handle
	StackMP // managed pointer (by-ref)
	StackF  // native float
)

// StackI aliases to the pointer-sized integer stack type for the
// target word size. 64-bit is the only target this core emits for.
const StackI = StackI8

func (t StackType) String() string {
	switch t {
	case StackI4:
		return "i4"
	case StackI8:
		return "i8"
	case StackR4:
		return "r4"
	case StackR8:
		return "r8"
	case StackO:
		return "o"
	case StackVT:
		return "vt"
	case StackMP:
		return "mp"
	case StackF:
		return "f"
	default:
		return fmt.Sprintf("<unknown stack type %d>", int8(t))
	}
}

// IsInteger reports whether t is one of the integral stack types
// (I4, I8 or MP, which behaves as an integer for arithmetic purposes).
func (t StackType) IsInteger() bool {
	return t == StackI4 || t == StackI8 || t == StackMP
}

// IsFloat reports whether t is a floating-point stack type.
func (t StackType) IsFloat() bool {
	return t == StackR4 || t == StackR8
}

// InterpType is the type of a virtual variable as it appears in the
// emitted instruction stream. Narrow integer InterpTypes exist so the
// var-offset allocator and interpreter know the storage width of a
// local/argument slot, but they collapse to InterpI4 the moment a value
// of that type is pushed to the evaluation stack (matching CIL
// semantics: narrow locals widen on load).
type InterpType int8

const (
	InterpI1 InterpType = iota
	InterpU1
	InterpI2
	InterpU2
	InterpI4
	InterpI8
	InterpR4
	InterpR8
	InterpO
	InterpVT
	InterpByRef
	InterpVoid
)

// InterpI aliases to the pointer-sized integer InterpType.
const InterpI = InterpI8

func (t InterpType) String() string {
	names := [...]string{"i1", "u1", "i2", "u2", "i4", "i8", "r4", "r8", "o", "vt", "byref", "void"}
	if int(t) < 0 || int(t) >= len(names) {
		return fmt.Sprintf("<unknown interp type %d>", int8(t))
	}
	return names[t]
}

// Size returns the width in bytes a variable of this InterpType
// occupies in an evaluation-stack slot (not the var's frame offset,
// which is separately aligned up to the stack-slot size by
// emitter.AllocateVarOffsets). VT's element size is not knowable from the type alone — call
// sites must track it out of band via Var.Size.
func (t InterpType) Size() int {
	switch t {
	case InterpI1, InterpU1:
		return 1
	case InterpI2, InterpU2:
		return 2
	case InterpI4, InterpR4:
		return 4
	case InterpI8, InterpR8, InterpO, InterpByRef:
		return 8
	case InterpVoid:
		return 0
	default:
		return 0
	}
}

// IsNarrowInt reports whether t is one of the sub-word integer types
// that collapse to I4 on the evaluation stack.
func (t InterpType) IsNarrowInt() bool {
	return t == InterpI1 || t == InterpU1 || t == InterpI2 || t == InterpU2
}

// stackFromInterp is the single source of truth mapping an InterpType
// to the StackType a value of that type assumes once pushed to the
// evaluation stack. Narrow integers widen to StackI4; everything else
// maps straight across.
var stackFromInterp = [...]StackType{
	InterpI1:   StackI4,
	InterpU1:   StackI4,
	InterpI2:   StackI4,
	InterpU2:   StackI4,
	InterpI4:   StackI4,
	InterpI8:   StackI8,
	InterpR4:   StackR4,
	InterpR8:   StackR8,
	InterpO:    StackO,
	InterpVT:   StackVT,
	InterpByRef: StackMP,
}

// ToStackType widens an InterpType to the StackType it has once on the
// evaluation stack.
func ToStackType(it InterpType) (StackType, bool) {
	if it == InterpVoid || int(it) < 0 || int(it) >= len(stackFromInterp) {
		return 0, false
	}
	return stackFromInterp[it], true
}

// interpFromStack is the reverse mapping, used when a value created
// directly on the stack (e.g. the result of an arithmetic op) needs a
// home InterpType for the var that will hold it. Signed/unsigned
// distinctions and narrow widths are lost going this direction by
// design — a value born on the stack is always full width.
var interpFromStack = [...]InterpType{
	StackI4: InterpI4,
	StackI8: InterpI8,
	StackR4: InterpR4,
	StackR8: InterpR8,
	StackO:  InterpO,
	StackVT: InterpVT,
	StackMP: InterpByRef,
	StackF:  InterpR8,
}

// ToInterpType narrows a StackType down to the InterpType a freshly
// created var should use to hold it.
func ToInterpType(st StackType) InterpType {
	return interpFromStack[st]
}
