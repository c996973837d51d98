// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package intop defines the opcode numbers of the compiler's emitted
// IR (the "INTOP" set) and the per-opcode shape tables the emitter
// needs to encode and size each instruction: how many source-var
// slots, whether there is a dest var, and the total encoded length in
// int32 words.
package intop

import (
	"fmt"

	"github.com/go-interpreter/ilcompile/ilkind"
)

// Op is an emitted IR opcode.
type Op int32

// Type-specialised families are laid out with I4, I8, R4, R8 variants
// consecutive and in that order, so a lowering pass can select the
// concrete opcode by adding offset (resultType - I4) to the family's
// base member, exactly as spec.md §4.1.5 describes for arithmetic.
const (
	Nop Op = iota

	LdcI4
	LdcI8
	LdcR4
	LdcR8

	// MOV family: MovI4U1/MovI4I1/MovI4I2/MovI4U2 are the sign- or
	// zero-extending narrow loads; Mov4/Mov8/MovP/MovVT are the plain
	// moves MovForType returns for wide types.
	MovI4I1
	MovI4U1
	MovI4I2
	MovI4U2
	Mov4
	Mov8
	MovP
	MovVT

	// Arithmetic binary family, four consecutive variants each.
	AddI4
	AddI8
	AddR4
	AddR8

	SubI4
	SubI8
	SubR4
	SubR8

	MulI4
	MulI8
	MulR4
	MulR8

	AndI4
	AndI8

	OrI4
	OrI8

	XorI4
	XorI8

	ShlI4
	ShlI8

	ShrI4
	ShrI8
	ShrUnI4
	ShrUnI8

	NegI4
	NegI8
	NegR4
	NegR8

	NotI4
	NotI8

	CeqI4
	CeqI8
	CeqR4
	CeqR8

	CgtI4
	CgtI8
	CgtR4
	CgtR8

	CgtUnI4
	CgtUnI8
	CgtUnR4
	CgtUnR8

	CltI4
	CltI8
	CltR4
	CltR8

	CltUnI4
	CltUnI8
	CltUnR4
	CltUnR8

	// Control flow.
	Br
	BrTrue
	BrFalse
	Switch

	// Calls and returns.
	Call
	RetVoid
	RetI4
	RetI8
	RetR4
	RetR8
	RetO
	RetByRef
	RetVT

	// Conversions: named per (source, target) pair actually used by
	// the conversion table in package importer; this is not an
	// exhaustive CIL conv.* enumeration, only the ones the importer
	// needs to pick between once stack type and target InterpType are
	// known.
	ConvI4I8
	ConvI4U8
	ConvI8I4
	ConvI4R4
	ConvI4R8
	ConvI8R4
	ConvI8R8
	ConvR4I4
	ConvR4I8
	ConvR4R8
	ConvR8I4
	ConvR8I8
	ConvR8R4

	numOps
)

var opNames = map[Op]string{
	Nop:      "nop",
	LdcI4:    "ldc.i4",
	LdcI8:    "ldc.i8",
	LdcR4:    "ldc.r4",
	LdcR8:    "ldc.r8",
	MovI4I1:  "mov.i4.i1",
	MovI4U1:  "mov.i4.u1",
	MovI4I2:  "mov.i4.i2",
	MovI4U2:  "mov.i4.u2",
	Mov4:     "mov4",
	Mov8:     "mov8",
	MovP:     "movp",
	MovVT:    "movvt",
	AddI4:    "add.i4", AddI8: "add.i8", AddR4: "add.r4", AddR8: "add.r8",
	SubI4: "sub.i4", SubI8: "sub.i8", SubR4: "sub.r4", SubR8: "sub.r8",
	MulI4: "mul.i4", MulI8: "mul.i8", MulR4: "mul.r4", MulR8: "mul.r8",
	AndI4: "and.i4", AndI8: "and.i8",
	OrI4: "or.i4", OrI8: "or.i8",
	XorI4: "xor.i4", XorI8: "xor.i8",
	ShlI4: "shl.i4", ShlI8: "shl.i8",
	ShrI4: "shr.i4", ShrI8: "shr.i8", ShrUnI4: "shr.un.i4", ShrUnI8: "shr.un.i8",
	NegI4: "neg.i4", NegI8: "neg.i8", NegR4: "neg.r4", NegR8: "neg.r8",
	NotI4: "not.i4", NotI8: "not.i8",
	CeqI4: "ceq.i4", CeqI8: "ceq.i8", CeqR4: "ceq.r4", CeqR8: "ceq.r8",
	CgtI4: "cgt.i4", CgtI8: "cgt.i8", CgtR4: "cgt.r4", CgtR8: "cgt.r8",
	CgtUnI4: "cgt.un.i4", CgtUnI8: "cgt.un.i8", CgtUnR4: "cgt.un.r4", CgtUnR8: "cgt.un.r8",
	CltI4: "clt.i4", CltI8: "clt.i8", CltR4: "clt.r4", CltR8: "clt.r8",
	CltUnI4: "clt.un.i4", CltUnI8: "clt.un.i8", CltUnR4: "clt.un.r4", CltUnR8: "clt.un.r8",
	Br: "br", BrTrue: "br.true", BrFalse: "br.false", Switch: "switch",
	Call:    "call",
	RetVoid: "ret.void", RetI4: "ret.i4", RetI8: "ret.i8", RetR4: "ret.r4", RetR8: "ret.r8",
	RetO: "ret.o", RetByRef: "ret.byref", RetVT: "ret.vt",
	ConvI4I8: "conv.i4.i8", ConvI4U8: "conv.i4.u8", ConvI8I4: "conv.i8.i4",
	ConvI4R4: "conv.i4.r4", ConvI4R8: "conv.i4.r8", ConvI8R4: "conv.i8.r4", ConvI8R8: "conv.i8.r8",
	ConvR4I4: "conv.r4.i4", ConvR4I8: "conv.r4.i8", ConvR4R8: "conv.r4.r8",
	ConvR8I4: "conv.r8.i4", ConvR8I8: "conv.r8.i8", ConvR8R4: "conv.r8.r4",
}

// String returns the INTOP mnemonic used in dumps and diagnostics
// (e.g. "add.i4", "br.true"); unrecognised values print as a bare
// number so a future opcode addition never panics a dump tool.
func (op Op) String() string {
	if name, ok := opNames[op]; ok {
		return name
	}
	return fmt.Sprintf("op(%d)", int32(op))
}

// familyBase returns the I4 variant of the 4-wide family opcode
// belongs to, and true if opcode participates in such a family.
// Used by ForStackType to recover the "offset (result_type - I4)"
// relationship spec.md §4.1.5 describes.
func familyBase(op Op) (Op, bool) {
	switch {
	case op >= AddI4 && op <= AddR8:
		return AddI4, true
	case op >= SubI4 && op <= SubR8:
		return SubI4, true
	case op >= MulI4 && op <= MulR8:
		return MulI4, true
	case op >= NegI4 && op <= NegR8:
		return NegI4, true
	case op >= CeqI4 && op <= CeqR8:
		return CeqI4, true
	case op >= CgtI4 && op <= CgtR8:
		return CgtI4, true
	case op >= CgtUnI4 && op <= CgtUnR8:
		return CgtUnI4, true
	case op >= CltI4 && op <= CltR8:
		return CltI4, true
	case op >= CltUnI4 && op <= CltUnR8:
		return CltUnI4, true
	}
	return 0, false
}

// ForStackType picks the concrete opcode in op's family matching st.
// st must be one of StackI4, StackI8, StackR4, StackR8; StackMP and
// StackO arithmetic is resolved by the importer before calling this
// (MP arithmetic always lowers through the I8/I4 integer opcodes).
func ForStackType(op Op, st ilkind.StackType) Op {
	base, ok := familyBase(op)
	if !ok {
		return op
	}
	var idx int
	switch st {
	case ilkind.StackI4:
		idx = 0
	case ilkind.StackI8:
		idx = 1
	case ilkind.StackR4:
		idx = 2
	case ilkind.StackR8:
		idx = 3
	default:
		idx = 0
	}
	return base + Op(idx)
}

// shape describes how many source-var slots, whether a dest var, and
// how many trailing int32 data words an opcode's fixed portion
// occupies (excluding the opcode word itself and excluding sVar/dVar
// words, which the emitter always writes verbatim next). Variable
// length opcodes (Switch) report dataWords = -1 and are handled
// specially by emitter.InsWords.
type shape struct {
	sVars     int
	hasDVar   bool
	dataWords int
}

var shapes = map[Op]shape{
	Nop:     {0, false, 0},
	LdcI4:   {0, true, 1},
	LdcI8:   {0, true, 2},
	LdcR4:   {0, true, 1},
	LdcR8:   {0, true, 2},

	MovI4I1: {1, true, 0},
	MovI4U1: {1, true, 0},
	MovI4I2: {1, true, 0},
	MovI4U2: {1, true, 0},
	Mov4:    {1, true, 0},
	Mov8:    {1, true, 0},
	MovP:    {1, true, 0},
	MovVT:   {1, true, 1}, // data[0] = size in bytes

	Br:      {0, false, 1}, // 1 word: the relative displacement
	BrTrue:  {1, false, 1},
	BrFalse: {1, false, 1},
	Switch:  {1, false, -1}, // variable: 2 + numLabels words after the opcode (sVar, label count, labels)

	Call:    {1, true, 1}, // sVars[0] == CALL_ARGS_SVAR; data[0] = data-item index

	RetVoid: {0, false, 0},
	RetI4:   {1, false, 0},
	RetI8:   {1, false, 0},
	RetR4:   {1, false, 0},
	RetR8:   {1, false, 0},
	RetO:    {1, false, 0},
	RetByRef: {1, false, 0},
	RetVT:   {1, false, 1}, // data[0] = size

	ConvI4I8: {1, true, 0},
	ConvI4U8: {1, true, 0},
	ConvI8I4: {1, true, 0},
	ConvI4R4: {1, true, 0},
	ConvI4R8: {1, true, 0},
	ConvI8R4: {1, true, 0},
	ConvI8R8: {1, true, 0},
	ConvR4I4: {1, true, 0},
	ConvR4I8: {1, true, 0},
	ConvR4R8: {1, true, 0},
	ConvR8I4: {1, true, 0},
	ConvR8I8: {1, true, 0},
	ConvR8R4: {1, true, 0},
}

func binaryShape() shape { return shape{2, true, 0} }
func unaryShape() shape  { return shape{1, true, 0} }
func shiftShape() shape  { return shape{2, true, 0} }
func cmpShape() shape    { return shape{2, true, 0} }

func init() {
	for op := AddI4; op <= AddR8; op++ {
		shapes[op] = binaryShape()
	}
	for op := SubI4; op <= SubR8; op++ {
		shapes[op] = binaryShape()
	}
	for op := MulI4; op <= MulR8; op++ {
		shapes[op] = binaryShape()
	}
	for op := AndI4; op <= AndI8; op++ {
		shapes[op] = binaryShape()
	}
	for op := OrI4; op <= OrI8; op++ {
		shapes[op] = binaryShape()
	}
	for op := XorI4; op <= XorI8; op++ {
		shapes[op] = binaryShape()
	}
	for op := ShlI4; op <= ShlI8; op++ {
		shapes[op] = shiftShape()
	}
	for op := ShrI4; op <= ShrUnI8; op++ {
		shapes[op] = shiftShape()
	}
	for op := NegI4; op <= NegR8; op++ {
		shapes[op] = unaryShape()
	}
	for op := NotI4; op <= NotI8; op++ {
		shapes[op] = unaryShape()
	}
	for op := CeqI4; op <= CeqR8; op++ {
		shapes[op] = cmpShape()
	}
	for op := CgtI4; op <= CgtR8; op++ {
		shapes[op] = cmpShape()
	}
	for op := CgtUnI4; op <= CgtUnR8; op++ {
		shapes[op] = cmpShape()
	}
	for op := CltI4; op <= CltR8; op++ {
		shapes[op] = cmpShape()
	}
	for op := CltUnI4; op <= CltUnR8; op++ {
		shapes[op] = cmpShape()
	}
}

// NumSVars reports how many fixed source-var slots op reads. CALL is
// reported as 1 (the CALL_ARGS_SVAR sentinel); the variable-length
// argument list behind it is walked separately via Ins.ForEachSVar.
func NumSVars(op Op) int {
	if s, ok := shapes[op]; ok {
		return s.sVars
	}
	return 0
}

// HasDVar reports whether op writes a dest var.
func HasDVar(op Op) bool {
	if s, ok := shapes[op]; ok {
		return s.hasDVar
	}
	return false
}

// FixedDataWords reports the number of trailing int32 data words for
// opcodes whose length doesn't depend on the instruction instance.
// Returns (n, true) normally, or (0, false) for Switch, whose true
// length is computed from its own data[0] (spec.md §4.4).
func FixedDataWords(op Op) (int, bool) {
	s, ok := shapes[op]
	if !ok || s.dataWords < 0 {
		return 0, false
	}
	return s.dataWords, true
}

// IsUncondBranch reports whether op is Br.
func IsUncondBranch(op Op) bool { return op == Br }

// IsCondBranch reports whether op is BrTrue or BrFalse.
func IsCondBranch(op Op) bool { return op == BrTrue || op == BrFalse }

// MovForType returns the move-opcode family for storing/loading a
// value of the given InterpType, mirroring InterpGetMovForType in the
// source compiler: narrow integers sign-extend only if signExtend is
// requested, otherwise they fall back to the plain 4-byte move; wide
// scalar types and pointers have one move each; VT moves carry the
// size as a separate data word filled in by the caller.
func MovForType(it ilkind.InterpType, signExtend bool) Op {
	switch it {
	case ilkind.InterpI1:
		if signExtend {
			return MovI4I1
		}
		return Mov4
	case ilkind.InterpU1:
		if signExtend {
			return MovI4U1
		}
		return Mov4
	case ilkind.InterpI2:
		if signExtend {
			return MovI4I2
		}
		return Mov4
	case ilkind.InterpU2:
		if signExtend {
			return MovI4U2
		}
		return Mov4
	case ilkind.InterpI4, ilkind.InterpR4:
		return Mov4
	case ilkind.InterpI8, ilkind.InterpR8:
		return Mov8
	case ilkind.InterpO, ilkind.InterpByRef:
		return MovP
	case ilkind.InterpVT:
		return MovVT
	default:
		return Nop
	}
}

// RetForStackType picks the INTOP_RET_* variant matching a non-void
// return value's stack type, extending spec.md's CEE_RET handling
// (§9 Open Questions) beyond the source's assert(0) for non-int/void
// returns; see SPEC_FULL.md §5.
func RetForStackType(st ilkind.StackType) Op {
	switch st {
	case ilkind.StackI4:
		return RetI4
	case ilkind.StackI8:
		return RetI8
	case ilkind.StackR4:
		return RetR4
	case ilkind.StackR8:
		return RetR8
	case ilkind.StackO:
		return RetO
	case ilkind.StackMP:
		return RetByRef
	case ilkind.StackVT:
		return RetVT
	default:
		return RetVoid
	}
}
