// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package emitter

import (
	"github.com/go-interpreter/ilcompile/intop"
	"github.com/go-interpreter/ilcompile/ir"
)

// InsWords reports how many int32 words ins occupies in the final
// stream, including its own opcode word. A CALL instruction's length
// depends on its argument count (one word per arg plus the
// CALL_ARGS_TERMINATOR sentinel); a SWITCH's length depends on its
// label count — every other opcode has a fixed width from intop's
// shape table (spec.md §4.4).
func InsWords(ins *ir.Ins) int32 {
	n := int32(1) // opcode

	if ins.Flags&ir.FlagCall != 0 {
		n++ // CALL_ARGS_SVAR sentinel
		if intop.HasDVar(ins.Opcode) {
			n++
		}
		n++ // data[0]: data-item table index
		n += int32(len(ins.Call.ArgVars)) + 1
		return n
	}

	n += int32(intop.NumSVars(ins.Opcode))
	if intop.HasDVar(ins.Opcode) {
		n++
	}
	if ins.Opcode == intop.Switch {
		n++ // data[0]: label count
		n += int32(len(ins.SwitchTargets))
		return n
	}
	if words, ok := intop.FixedDataWords(ins.Opcode); ok {
		n += int32(words)
	}
	return n
}

// ComputeCodeSize walks blocks in their final layout order (following
// BB.Next, set by cfg.Linearise) and assigns every block's and every
// instruction's NativeOffset — a word index from the start of the
// stream, not a byte offset — then returns the stream's total length
// in words. A second pass (EmitCode) can then write every branch
// displacement immediately since every target's NativeOffset is
// already known by the time this returns.
func ComputeCodeSize(entry *ir.BB) int32 {
	var offset int32
	for bb := entry; bb != nil; bb = bb.Next {
		bb.NativeOffset = offset
		for ins := bb.First; ins != nil; ins = ins.Next {
			ins.NativeOffset = offset
			offset += InsWords(ins)
		}
	}
	return offset
}
