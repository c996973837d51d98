// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package importer

import (
	"github.com/go-interpreter/ilcompile/cfg"
	"github.com/go-interpreter/ilcompile/ilops"
)

func isBranchOpcode(d decoded) bool {
	return ilops.IsUnconditionalBranch(d.Op.Code) || ilops.IsConditionalBranch(d.Op.Code)
}

func blockEndsAt(d decoded) bool {
	if d.Op.Operand == ilops.OperandSwitch {
		return true
	}
	return ilops.EndsBlock(d.Op.Code)
}

// discoverBlocks makes a single forward pass over the IL, decoding
// just enough of each instruction (via decodeAt) to find every basic
// block boundary: offset 0 always starts a block, a branch or switch
// target always starts a block, and the instruction immediately after
// one that ilops.EndsBlock reports on always starts a block — even
// when nothing ever jumps to it, so straight-line code after an
// unconditional branch still gets its own (likely unreachable) block
// instead of being silently merged into whatever precedes it
// (spec.md §4.1.2).
func discoverBlocks(il []byte, graph *cfg.Graph) error {
	graph.GetOrCreate(0)

	pos := 0
	for pos < len(il) {
		d, err := decodeAt(il, pos)
		if err != nil {
			return err
		}

		switch {
		case d.Op.Operand == ilops.OperandSwitch:
			for _, t := range d.SwitchTargets {
				if t < 0 || int(t) >= len(il) {
					return &BadCodeError{d.ILOffset, "switch target out of range"}
				}
				graph.GetOrCreate(t)
			}
			graph.GetOrCreate(d.SwitchDefault)

		default:
			if isBranchOpcode(d) {
				target := int32(d.I8)
				if target < 0 || int(target) >= len(il) {
					return &BadCodeError{d.ILOffset, "branch target out of range"}
				}
				graph.GetOrCreate(target)
			}
		}

		if blockEndsAt(d) && int(d.NextOffset) < len(il) {
			graph.GetOrCreate(d.NextOffset)
		}

		pos = int(d.NextOffset)
	}
	return nil
}
