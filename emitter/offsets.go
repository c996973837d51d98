// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package emitter turns a compiled method's blocks and instructions
// into the final artifact: it assigns every variable a byte offset in
// the interpreter stack frame, sizes and writes the linear int32
// instruction stream, and patches every pending relocation once every
// block's native offset is known (spec.md §4.5).
package emitter

import (
	"github.com/go-interpreter/ilcompile/ilkind"
	"github.com/go-interpreter/ilcompile/ir"
)

// slotSize is the frame alignment unit every variable's offset is
// rounded up to, including narrow integers and floats — frame layout
// never packs sub-word variables tighter than the interpreter's
// native stack slot, only the value representation itself does
// (spec.md §4.5.1).
const slotSize = 8

func align(n, to int) int { return (n + to - 1) &^ (to - 1) }

// FrameLayout is the result of AllocateVarOffsets: the total stack
// space every variable in the method occupies, arguments included,
// since AllocateVarOffsets gives every var its own slot.
type FrameLayout struct {
	TotalSize int
}

// AllocateVarOffsets walks the variable table in index order and
// assigns each one a byte offset, growing the frame as it goes. It
// mirrors the source compiler's linear, no-register-allocation offset
// pass: every variable gets its own slot, sized to its InterpType (or
// Var.Size for a value type), and no two variables ever share space.
func AllocateVarOffsets(vars *ir.Vars) FrameLayout {
	offset := 0
	for i := int32(0); i < vars.Len(); i++ {
		v := vars.Get(i)
		size := v.Size
		if v.InterpType != ilkind.InterpVT {
			size = v.InterpType.Size()
		}
		if size < slotSize {
			size = slotSize
		}
		v.Offset = offset
		offset += align(size, slotSize)
	}
	return FrameLayout{TotalSize: offset}
}
