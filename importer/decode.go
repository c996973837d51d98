// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package importer

import (
	"encoding/binary"
	"math"

	"github.com/go-interpreter/ilcompile/ilops"
)

// decoded is one decoded IL instruction: its opcode, the offset range
// it occupies, and whatever operand value it carries.
type decoded struct {
	Op         ilops.Op
	ILOffset   int32
	NextOffset int32

	I8  int64   // LdcI4S, LdcI4, LdcI8, LdArgS/StArgS/LdLocS/StLocS index, single-target branches
	F64 float64 // LdcR4/LdcR8
	Token uint32 // Call

	SwitchDefault int32   // native IL offset immediately after the switch's target table (the "fallthrough"/default edge)
	SwitchTargets []int32 // absolute IL offsets of each case
}

func readCode(il []byte, pos int) (ilops.Code, int, error) {
	b := ilops.Code(il[pos])
	if b == 0xFE {
		if pos+1 >= len(il) {
			return 0, 0, &BadCodeError{int32(pos), "truncated two-byte opcode"}
		}
		return 0xFE00 | ilops.Code(il[pos+1]), pos + 2, nil
	}
	return b, pos + 1, nil
}

// decodeAt decodes the single instruction starting at byte offset pos.
func decodeAt(il []byte, pos int) (decoded, error) {
	start := pos
	code, after, err := readCode(il, pos)
	if err != nil {
		return decoded{}, err
	}
	op, err := ilops.Lookup(code)
	if err != nil {
		return decoded{}, &BadCodeError{int32(start), err.Error()}
	}

	d := decoded{Op: op, ILOffset: int32(start)}

	switch op.Operand {
	case ilops.OperandNone:
		d.NextOffset = int32(after)

	case ilops.OperandI1:
		if after+1 > len(il) {
			return decoded{}, &BadCodeError{int32(start), "truncated i1 operand"}
		}
		d.I8 = int64(int8(il[after]))
		d.NextOffset = int32(after + 1)

	case ilops.OperandI4:
		if after+4 > len(il) {
			return decoded{}, &BadCodeError{int32(start), "truncated i4 operand"}
		}
		v := int32(binary.LittleEndian.Uint32(il[after:]))
		if code == ilops.Call {
			d.Token = uint32(v)
		} else {
			d.I8 = int64(v)
		}
		d.NextOffset = int32(after + 4)

	case ilops.OperandI8:
		if after+8 > len(il) {
			return decoded{}, &BadCodeError{int32(start), "truncated i8 operand"}
		}
		d.I8 = int64(binary.LittleEndian.Uint64(il[after:]))
		d.NextOffset = int32(after + 8)

	case ilops.OperandR4:
		if after+4 > len(il) {
			return decoded{}, &BadCodeError{int32(start), "truncated r4 operand"}
		}
		bits := binary.LittleEndian.Uint32(il[after:])
		d.F64 = float64(math.Float32frombits(bits))
		d.NextOffset = int32(after + 4)

	case ilops.OperandR8:
		if after+8 > len(il) {
			return decoded{}, &BadCodeError{int32(start), "truncated r8 operand"}
		}
		bits := binary.LittleEndian.Uint64(il[after:])
		d.F64 = math.Float64frombits(bits)
		d.NextOffset = int32(after + 8)

	case ilops.OperandSwitch:
		if after+4 > len(il) {
			return decoded{}, &BadCodeError{int32(start), "truncated switch count"}
		}
		n := int(binary.LittleEndian.Uint32(il[after:]))
		after += 4
		if after+4*n > len(il) {
			return decoded{}, &BadCodeError{int32(start), "truncated switch table"}
		}
		d.SwitchDefault = int32(after + 4*n)
		d.SwitchTargets = make([]int32, n)
		for i := 0; i < n; i++ {
			disp := int32(binary.LittleEndian.Uint32(il[after+4*i:]))
			d.SwitchTargets[i] = d.SwitchDefault + disp
		}
		d.NextOffset = d.SwitchDefault
	}

	// Fixed-width branch displacements (everything but switch) are
	// relative to the instruction following the branch, per ECMA-335.
	switch {
	case ilops.IsUnconditionalBranch(code) && code != ilops.Leave && code != ilops.LeaveS:
		d.I8 = int64(d.NextOffset) + d.I8
	case ilops.IsConditionalBranch(code):
		d.I8 = int64(d.NextOffset) + d.I8
	case code == ilops.Leave || code == ilops.LeaveS:
		d.I8 = int64(d.NextOffset) + d.I8
	}

	return d, nil
}
