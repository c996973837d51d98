// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ir

import (
	"github.com/go-interpreter/ilcompile/hostiface"
	"github.com/go-interpreter/ilcompile/intop"
)

// Sentinel values an Ins' SVars slot can hold in place of a real Var
// index, matching CALL_ARGS_SVAR / CALL_ARGS_TERMINATOR in the source
// compiler's compiler.h.
const (
	CallArgsSVar       int32 = -2
	CallArgsTerminator int32 = -1
)

// InsFlag is a bitset of per-instruction flags.
type InsFlag uint32

// FlagCall marks an instruction whose sVars[0] is the CALL_ARGS_SVAR
// sentinel and whose Call field (not SVars) carries the real argument
// list — set on every intop.Call instruction.
const FlagCall InsFlag = 1 << 0

// InfoKind tags which field of Ins' info union, if any, is populated.
type InfoKind int

const (
	InfoNone InfoKind = iota
	InfoBranchTarget
	InfoSwitchTargets
	InfoCall
)

// CallInfo is the variable-length argument list a CALL instruction
// carries out of band from its fixed SVars array (spec.md §4.3: "a
// separate CallInfo struct holding ... a null-terminated list of
// argument Var indices"). ArgVars is already a proper Go slice, so no
// terminator sentinel is stored in it; CallArgsTerminator exists only
// to describe the shape to emitted INTOP_CALL data when walking the
// original C representation conceptually.
type CallInfo struct {
	Method        hostiface.MethodHandle // resolved callee, indexed into the data-item table at emit time
	ArgVars       []int32
	CallOffset    int32 // native offset of the call site; EmitCode never sets it, so it stays 0
	CallEndOffset int32 // native offset after the call's return-value move; never set, stays 0
}

// Ins is one instruction in a basic block's doubly-linked list.
type Ins struct {
	Prev, Next *Ins

	Opcode       intop.Op
	ILOffset     int32
	NativeOffset int32
	Flags        InsFlag

	SVars [3]int32
	DVar  int32

	// Data holds the opcode's fixed trailing int32 payload (constants,
	// VT sizes, ...); branch displacements are patched into the emitted
	// stream only, never into Data. For Switch it
	// holds numLabels at Data[0] only; the labels themselves live in
	// SwitchTargets below rather than inline, since they are BB
	// pointers during compilation and only become int32 offsets when
	// emitted (spec.md §4.4).
	Data []int32

	Info           InfoKind
	BranchTarget   *BB
	SwitchTargets  []*BB
	Call           *CallInfo
}

// IsNop reports whether this instruction has been turned into a dead
// placeholder (spec.md §4.1.6: "NOP is also the opcode used to mark a
// deleted instruction without unlinking it").
func (i *Ins) IsNop() bool { return i.Opcode == intop.Nop }

// ForEachSVar calls fn for each real (non-sentinel) source var this
// instruction reads: its fixed SVars slots for ordinary opcodes, or
// its Call.ArgVars for a CALL instruction.
func (i *Ins) ForEachSVar(fn func(v int32)) {
	if i.Flags&FlagCall != 0 && i.Call != nil {
		for _, v := range i.Call.ArgVars {
			fn(v)
		}
		return
	}
	n := intop.NumSVars(i.Opcode)
	for k := 0; k < n; k++ {
		fn(i.SVars[k])
	}
}
