// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package emitter

import (
	"fmt"

	"github.com/go-interpreter/ilcompile/arena"
	"github.com/go-interpreter/ilcompile/intop"
	"github.com/go-interpreter/ilcompile/ir"
)

// EmitCode writes entry's blocks (ComputeCodeSize must already have
// run, fixing every NativeOffset) into an arena-backed int32 stream of
// exactly totalWords words, and patches every branch and switch
// target in place before returning (spec.md §4.4). Data items (the
// dedicated data-item table) are written into dataItem at the point
// a CALL or other data-bearing instruction references one.
func EmitCode(a *arena.Arena, entry *ir.BB, totalWords int32, dataItem func(ins *ir.Ins) int32) (arena.Int32Buf, error) {
	buf, err := a.AllocInt32(int(totalWords))
	if err != nil {
		return arena.Int32Buf{}, err
	}

	var relocs []ir.Reloc
	w := int32(0)
	put := func(v int32) { buf.Set(int(w), v); w++ }

	for bb := entry; bb != nil; bb = bb.Next {
		for ins := bb.First; ins != nil; ins = ins.Next {
			start := w
			put(int32(ins.Opcode))

			switch {
			case ins.Flags&ir.FlagCall != 0:
				put(ir.CallArgsSVar)
				if intop.HasDVar(ins.Opcode) {
					put(ins.DVar)
				}
				put(dataItem(ins))
				for _, v := range ins.Call.ArgVars {
					put(v)
				}
				put(ir.CallArgsTerminator)

			case ins.Opcode == intop.Switch:
				put(ins.SVars[0])
				put(int32(len(ins.SwitchTargets)))
				for _, t := range ins.SwitchTargets {
					relocs = append(relocs, ir.Reloc{Kind: ir.RelocSwitch, StreamOffset: w, Target: t})
					put(ir.DeadbeefSentinel)
				}

			default:
				n := intop.NumSVars(ins.Opcode)
				for i := 0; i < n; i++ {
					put(ins.SVars[i])
				}
				if intop.HasDVar(ins.Opcode) {
					put(ins.DVar)
				}
				if ins.Info == ir.InfoBranchTarget {
					skip := w - start - 1
					relocs = append(relocs, ir.Reloc{Kind: ir.RelocLongBranch, StreamOffset: start, Skip: skip, Target: ins.BranchTarget})
					put(ir.DeadbeefSentinel)
				} else if words, ok := intop.FixedDataWords(ins.Opcode); ok {
					for i := 0; i < words; i++ {
						if i < len(ins.Data) {
							put(ins.Data[i])
						} else {
							put(0)
						}
					}
				}
			}
		}
	}

	if err := PatchRelocations(buf, relocs); err != nil {
		return arena.Int32Buf{}, err
	}
	return buf, nil
}

// PatchRelocations overwrites every pending relocation's placeholder
// slot with its target's now-known native offset. A LongBranch slot
// sits StreamOffset+Skip+1 words in — the "+1" accounts for the
// opcode word itself, which Skip (the count of fixed words between
// the opcode and the displacement slot) deliberately excludes — and
// holds a displacement measured from the start of the branch
// instruction (StreamOffset). A Switch slot sits at StreamOffset
// directly and holds a displacement measured from that label slot.
func PatchRelocations(buf arena.Int32Buf, relocs []ir.Reloc) error {
	for _, r := range relocs {
		var slot, value int32
		switch r.Kind {
		case ir.RelocLongBranch:
			slot = r.StreamOffset + r.Skip + 1
			value = r.Target.NativeOffset - r.StreamOffset
		case ir.RelocSwitch:
			slot = r.StreamOffset
			value = r.Target.NativeOffset - r.StreamOffset
		}
		if value == ir.DeadbeefSentinel {
			return fmt.Errorf("emitter: relocation at word %d resolved to the sentinel value itself", slot)
		}
		buf.Set(int(slot), value)
	}
	return nil
}
