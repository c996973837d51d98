// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ilops is the input-side opcode table: the lengths and
// operand formats the importer's block-discovery pass (spec.md
// §4.1.2) and decode loop (§4.1.4) need to walk IL without yet
// understanding what each instruction means. It mirrors the registry
// pattern of wagon's wasm/operators package (newOp, looked up by
// code), adapted to a two-byte-prefixed opcode space and fixed-width
// little-endian operands instead of WASM's LEB128 immediates.
package ilops

import "fmt"

// Code identifies one IL opcode. Single-byte opcodes use codes
// 0x00-0xFD and 0xFF; 0xFE is the two-byte prefix, and a prefixed
// opcode's Code is 0xFE00|secondByte so the whole space is still a
// single dense integer for table lookups.
type Code uint16

const prefixed = 0xFE00

// Operand format of an instruction, read immediately after the
// opcode byte(s).
type Operand int

const (
	OperandNone   Operand = iota
	OperandI1             // signed byte
	OperandI4             // int32 (also used for tokens and branch displacements)
	OperandI8             // int64
	OperandR4             // float32
	OperandR8             // float64
	OperandSwitch         // uint32 count N, followed by N int32 targets
)

// Op describes one opcode's shape: how many operand bytes follow it,
// and the mnemonic for diagnostics.
type Op struct {
	Code    Code
	Name    string
	Operand Operand
}

// Representative opcode set. This is not an exhaustive CIL opcode
// table — only the subset spec.md §4.1.5 names as lowering patterns,
// plus the handful of control-flow/EH opcodes block discovery (§4.1.2)
// needs to recognise. ECMA-335 byte values are used so the table reads
// like a real IL decoder rather than an invented encoding.
const (
	Nop Code = 0x00

	LdArg0 Code = 0x02
	LdArg1 Code = 0x03
	LdArg2 Code = 0x04
	LdArg3 Code = 0x05
	LdLoc0 Code = 0x06
	LdLoc1 Code = 0x07
	LdLoc2 Code = 0x08
	LdLoc3 Code = 0x09
	StLoc0 Code = 0x0A
	StLoc1 Code = 0x0B
	StLoc2 Code = 0x0C
	StLoc3 Code = 0x0D
	LdArgS Code = 0x0E
	StArgS Code = 0x10
	LdLocS Code = 0x11
	StLocS Code = 0x13

	LdcI4M1 Code = 0x15
	LdcI40  Code = 0x16
	LdcI41  Code = 0x17
	LdcI42  Code = 0x18
	LdcI43  Code = 0x19
	LdcI44  Code = 0x1A
	LdcI45  Code = 0x1B
	LdcI46  Code = 0x1C
	LdcI47  Code = 0x1D
	LdcI48  Code = 0x1E
	LdcI4S  Code = 0x1F
	LdcI4   Code = 0x20
	LdcI8   Code = 0x21
	LdcR4   Code = 0x22
	LdcR8   Code = 0x23

	Dup Code = 0x25
	Pop Code = 0x26

	Call Code = 0x28
	Ret  Code = 0x2A

	BrS       Code = 0x2B
	BrFalseS  Code = 0x2C
	BrTrueS   Code = 0x2D
	BeqS      Code = 0x2E
	BgeS      Code = 0x2F
	BgtS      Code = 0x30
	BleS      Code = 0x31
	BltS      Code = 0x32
	BneUnS    Code = 0x33
	BgeUnS    Code = 0x34
	BgtUnS    Code = 0x35
	BleUnS    Code = 0x36
	BltUnS    Code = 0x37
	Br        Code = 0x38
	BrFalse   Code = 0x39
	BrTrue    Code = 0x3A
	Beq       Code = 0x3B
	Bge       Code = 0x3C
	Bgt       Code = 0x3D
	Ble       Code = 0x3E
	Blt       Code = 0x3F
	BneUn     Code = 0x40
	BgeUn     Code = 0x41
	BgtUn     Code = 0x42
	BleUn     Code = 0x43
	BltUn     Code = 0x44
	Switch    Code = 0x45

	Add Code = 0x58
	Sub Code = 0x59
	Mul Code = 0x5A
	And Code = 0x5F
	Or  Code = 0x60
	Xor Code = 0x61
	Shl Code = 0x62
	Shr Code = 0x63
	ShrUn Code = 0x64
	Neg Code = 0x65
	Not Code = 0x66

	ConvI1 Code = 0x67
	ConvI2 Code = 0x68
	ConvI4 Code = 0x69
	ConvI8 Code = 0x6A
	ConvR4 Code = 0x6B
	ConvR8 Code = 0x6C
	ConvU4 Code = 0x6D
	ConvU8 Code = 0x6E

	Throw      Code = 0x7A
	Rethrow    Code = 0xFE1A // two-byte: FE 1A
	Endfinally Code = 0xDC
	Leave      Code = 0xDD
	LeaveS     Code = 0xDE

	Ceq    Code = prefixed | 0x01
	Cgt    Code = prefixed | 0x02
	CgtUn  Code = prefixed | 0x03
	Clt    Code = prefixed | 0x04
	CltUn  Code = prefixed | 0x05
)

var table = map[Code]Op{
	Nop: {Nop, "nop", OperandNone},

	LdArg0: {LdArg0, "ldarg.0", OperandNone},
	LdArg1: {LdArg1, "ldarg.1", OperandNone},
	LdArg2: {LdArg2, "ldarg.2", OperandNone},
	LdArg3: {LdArg3, "ldarg.3", OperandNone},
	LdLoc0: {LdLoc0, "ldloc.0", OperandNone},
	LdLoc1: {LdLoc1, "ldloc.1", OperandNone},
	LdLoc2: {LdLoc2, "ldloc.2", OperandNone},
	LdLoc3: {LdLoc3, "ldloc.3", OperandNone},
	StLoc0: {StLoc0, "stloc.0", OperandNone},
	StLoc1: {StLoc1, "stloc.1", OperandNone},
	StLoc2: {StLoc2, "stloc.2", OperandNone},
	StLoc3: {StLoc3, "stloc.3", OperandNone},
	LdArgS: {LdArgS, "ldarg.s", OperandI1},
	StArgS: {StArgS, "starg.s", OperandI1},
	LdLocS: {LdLocS, "ldloc.s", OperandI1},
	StLocS: {StLocS, "stloc.s", OperandI1},

	LdcI4M1: {LdcI4M1, "ldc.i4.m1", OperandNone},
	LdcI40:  {LdcI40, "ldc.i4.0", OperandNone},
	LdcI41:  {LdcI41, "ldc.i4.1", OperandNone},
	LdcI42:  {LdcI42, "ldc.i4.2", OperandNone},
	LdcI43:  {LdcI43, "ldc.i4.3", OperandNone},
	LdcI44:  {LdcI44, "ldc.i4.4", OperandNone},
	LdcI45:  {LdcI45, "ldc.i4.5", OperandNone},
	LdcI46:  {LdcI46, "ldc.i4.6", OperandNone},
	LdcI47:  {LdcI47, "ldc.i4.7", OperandNone},
	LdcI48:  {LdcI48, "ldc.i4.8", OperandNone},
	LdcI4S:  {LdcI4S, "ldc.i4.s", OperandI1},
	LdcI4:   {LdcI4, "ldc.i4", OperandI4},
	LdcI8:   {LdcI8, "ldc.i8", OperandI8},
	LdcR4:   {LdcR4, "ldc.r4", OperandR4},
	LdcR8:   {LdcR8, "ldc.r8", OperandR8},

	Dup: {Dup, "dup", OperandNone},
	Pop: {Pop, "pop", OperandNone},

	Call: {Call, "call", OperandI4},
	Ret:  {Ret, "ret", OperandNone},

	BrS:      {BrS, "br.s", OperandI1},
	BrFalseS: {BrFalseS, "brfalse.s", OperandI1},
	BrTrueS:  {BrTrueS, "brtrue.s", OperandI1},
	BeqS:     {BeqS, "beq.s", OperandI1},
	BgeS:     {BgeS, "bge.s", OperandI1},
	BgtS:     {BgtS, "bgt.s", OperandI1},
	BleS:     {BleS, "ble.s", OperandI1},
	BltS:     {BltS, "blt.s", OperandI1},
	BneUnS:   {BneUnS, "bne.un.s", OperandI1},
	BgeUnS:   {BgeUnS, "bge.un.s", OperandI1},
	BgtUnS:   {BgtUnS, "bgt.un.s", OperandI1},
	BleUnS:   {BleUnS, "ble.un.s", OperandI1},
	BltUnS:   {BltUnS, "blt.un.s", OperandI1},
	Br:       {Br, "br", OperandI4},
	BrFalse:  {BrFalse, "brfalse", OperandI4},
	BrTrue:   {BrTrue, "brtrue", OperandI4},
	Beq:      {Beq, "beq", OperandI4},
	Bge:      {Bge, "bge", OperandI4},
	Bgt:      {Bgt, "bgt", OperandI4},
	Ble:      {Ble, "ble", OperandI4},
	Blt:      {Blt, "blt", OperandI4},
	BneUn:    {BneUn, "bne.un", OperandI4},
	BgeUn:    {BgeUn, "bge.un", OperandI4},
	BgtUn:    {BgtUn, "bgt.un", OperandI4},
	BleUn:    {BleUn, "ble.un", OperandI4},
	BltUn:    {BltUn, "blt.un", OperandI4},
	Switch:   {Switch, "switch", OperandSwitch},

	Add:   {Add, "add", OperandNone},
	Sub:   {Sub, "sub", OperandNone},
	Mul:   {Mul, "mul", OperandNone},
	And:   {And, "and", OperandNone},
	Or:    {Or, "or", OperandNone},
	Xor:   {Xor, "xor", OperandNone},
	Shl:   {Shl, "shl", OperandNone},
	Shr:   {Shr, "shr", OperandNone},
	ShrUn: {ShrUn, "shr.un", OperandNone},
	Neg:   {Neg, "neg", OperandNone},
	Not:   {Not, "not", OperandNone},

	ConvI1: {ConvI1, "conv.i1", OperandNone},
	ConvI2: {ConvI2, "conv.i2", OperandNone},
	ConvI4: {ConvI4, "conv.i4", OperandNone},
	ConvI8: {ConvI8, "conv.i8", OperandNone},
	ConvR4: {ConvR4, "conv.r4", OperandNone},
	ConvR8: {ConvR8, "conv.r8", OperandNone},
	ConvU4: {ConvU4, "conv.u4", OperandNone},
	ConvU8: {ConvU8, "conv.u8", OperandNone},

	Throw:      {Throw, "throw", OperandNone},
	Rethrow:    {Rethrow, "rethrow", OperandNone},
	Endfinally: {Endfinally, "endfinally", OperandNone},
	Leave:      {Leave, "leave", OperandI4},
	LeaveS:     {LeaveS, "leave.s", OperandI1},

	Ceq:   {Ceq, "ceq", OperandNone},
	Cgt:   {Cgt, "cgt", OperandNone},
	CgtUn: {CgtUn, "cgt.un", OperandNone},
	Clt:   {Clt, "clt", OperandNone},
	CltUn: {CltUn, "clt.un", OperandNone},
}

// ErrUnknownOpcode is returned by Lookup for a byte sequence this
// table doesn't recognise — a hard decode failure per spec.md §7.
type ErrUnknownOpcode struct {
	Code Code
}

func (e ErrUnknownOpcode) Error() string {
	return fmt.Sprintf("ilops: unknown opcode 0x%x", uint16(e.Code))
}

// Lookup returns the Op for code. For a two-byte opcode, code is the
// 0xFE prefix already folded together with its second byte; the caller
// (the importer's readCode) does that folding, and Lookup reads no
// bytes itself.
func Lookup(code Code) (Op, error) {
	op, ok := table[code]
	if !ok {
		return Op{}, ErrUnknownOpcode{code}
	}
	return op, nil
}

// OperandLen returns the number of bytes occupied by a fixed-width
// operand kind. OperandSwitch has no fixed length; callers must read
// the count first.
func OperandLen(o Operand) int {
	switch o {
	case OperandNone:
		return 0
	case OperandI1:
		return 1
	case OperandI4, OperandR4:
		return 4
	case OperandI8, OperandR8:
		return 8
	default:
		return 0
	}
}

// IsUnconditionalBranch reports whether code always transfers control
// (br/br.s/leave/leave.s), ending the current block unconditionally.
func IsUnconditionalBranch(code Code) bool {
	switch code {
	case Br, BrS, Leave, LeaveS:
		return true
	}
	return false
}

// IsConditionalBranch reports whether code is a one- or two-argument
// conditional branch that both falls through and jumps.
func IsConditionalBranch(code Code) bool {
	switch code {
	case BrTrue, BrTrueS, BrFalse, BrFalseS,
		Beq, BeqS, Bge, BgeS, Bgt, BgtS, Ble, BleS, Blt, BltS,
		BneUn, BneUnS, BgeUn, BgeUnS, BgtUn, BgtUnS, BleUn, BleUnS, BltUn, BltUnS:
		return true
	}
	return false
}

// IsOneArgBranch reports whether a conditional branch pops one value
// (brtrue/brfalse) as opposed to two (beq, blt, ...).
func IsOneArgBranch(code Code) bool {
	switch code {
	case BrTrue, BrTrueS, BrFalse, BrFalseS:
		return true
	}
	return false
}

// EndsBlock reports whether code, having been decoded, ends the
// current basic block regardless of what follows it in the byte
// stream (spec.md §4.1.2: throw/endfinally/rethrow start a new block
// at the following offset). A conditional branch ends its block too:
// its fall-through successor is a distinct block from the one the
// branch targets, even though nothing else may ever jump to it.
func EndsBlock(code Code) bool {
	switch code {
	case Throw, Rethrow, Endfinally, Ret:
		return true
	}
	return IsUnconditionalBranch(code) || IsConditionalBranch(code)
}
