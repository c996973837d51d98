// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package emitter

import (
	"github.com/go-interpreter/ilcompile/intop"
	"github.com/go-interpreter/ilcompile/ir"
)

// ElideBranches drops every unconditional branch whose target is the
// block immediately following it in final layout order, retracting
// its opcode word from the stream entirely (spec.md §4.5.3 case 2).
// Every branch in this IR targets a block rather than a raw byte
// offset, so "the displacement would patch to zero" and "the target
// is the next laid-out block" are the same condition here — one pass
// covers both that case and spec.md §4.1.5's zero-displacement NOP.
// It must run after cfg.Linearise has fixed BB.Next and before
// ComputeCodeSize, and it is idempotent: a block whose trailing
// branch was already elided has nothing left for a second pass to
// remove (spec.md §8).
func ElideBranches(entry *ir.BB) {
	for bb := entry; bb != nil; bb = bb.Next {
		ins := bb.Last
		if ins == nil || ins.Opcode != intop.Br || ins.Info != ir.InfoBranchTarget {
			continue
		}
		if ins.BranchTarget != bb.Next {
			continue
		}
		bb.Last = ins.Prev
		if ins.Prev != nil {
			ins.Prev.Next = nil
		} else {
			bb.First = nil
		}
	}
}
