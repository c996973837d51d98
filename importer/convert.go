// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package importer

import (
	"github.com/go-interpreter/ilcompile/ilkind"
	"github.com/go-interpreter/ilcompile/intop"
)

// convOp picks the INTOP conversion opcode for a CIL conv.* whose
// source is the current top-of-stack type from and whose CIL target
// type maps to the persisted InterpType to. Pairs with no converter
// opcode return (Nop, false): same-type pairs, and narrow integer
// targets, which collapse to I4 on the stack per spec.md §3.1 and which
// convert lowers with a sign-extending move instead.
func convOp(from ilkind.StackType, to ilkind.InterpType) (intop.Op, bool) {
	switch from {
	case ilkind.StackI4:
		switch to {
		case ilkind.InterpI8:
			return intop.ConvI4I8, true
		case ilkind.InterpR4:
			return intop.ConvI4R4, true
		case ilkind.InterpR8:
			return intop.ConvI4R8, true
		}
	case ilkind.StackI8:
		switch to {
		case ilkind.InterpI4:
			return intop.ConvI8I4, true
		case ilkind.InterpR4:
			return intop.ConvI8R4, true
		case ilkind.InterpR8:
			return intop.ConvI8R8, true
		}
	case ilkind.StackR4:
		switch to {
		case ilkind.InterpI4:
			return intop.ConvR4I4, true
		case ilkind.InterpI8:
			return intop.ConvR4I8, true
		case ilkind.InterpR8:
			return intop.ConvR4R8, true
		}
	case ilkind.StackR8:
		switch to {
		case ilkind.InterpI4:
			return intop.ConvR8I4, true
		case ilkind.InterpI8:
			return intop.ConvR8I8, true
		case ilkind.InterpR4:
			return intop.ConvR8R4, true
		}
	}
	return intop.Nop, false
}

// targetOfConv maps a conv.* CIL opcode to the InterpType it converts
// its operand to. conv.u4/conv.u8 map to the same targets as their
// signed variants; convert lowers conv.u8 of an I4 value with the
// zero-extending ConvI4U8, and every other unsigned conversion the same
// way as the signed one.
func targetOfConv(name string) (ilkind.InterpType, ilkind.StackType, bool) {
	switch name {
	case "conv.i1":
		return ilkind.InterpI1, ilkind.StackI4, true
	case "conv.i2":
		return ilkind.InterpI2, ilkind.StackI4, true
	case "conv.i4", "conv.u4":
		return ilkind.InterpI4, ilkind.StackI4, true
	case "conv.i8", "conv.u8":
		return ilkind.InterpI8, ilkind.StackI8, true
	case "conv.r4":
		return ilkind.InterpR4, ilkind.StackR4, true
	case "conv.r8":
		return ilkind.InterpR8, ilkind.StackR8, true
	}
	return 0, 0, false
}
