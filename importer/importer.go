// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package importer

import (
	"github.com/go-interpreter/ilcompile/cfg"
	"github.com/go-interpreter/ilcompile/hostiface"
	"github.com/go-interpreter/ilcompile/ilkind"
	"github.com/go-interpreter/ilcompile/intop"
	"github.com/go-interpreter/ilcompile/ir"
)

// Result is everything CompileMethod's later stages need: the
// variable table, the CFG entry block and the blocks in final layout
// order (spec.md §4.1, §4.2).
type Result struct {
	Vars   *ir.Vars
	Entry  *ir.BB
	Blocks []*ir.BB
}

type state struct {
	host   hostiface.Host
	method hostiface.MethodInfo
	il     []byte
	vars   *ir.Vars
	graph  *cfg.Graph

	stack []ir.StackInfo // running evaluation stack
	cur   *ir.BB

	// newlySeeded accumulates blocks that seedOrMerge fixed the entry
	// stack of for the first time during the block currently being
	// built; build() drains this into its worklist after each block,
	// so a block is only ever decoded once a predecessor has actually
	// established what its incoming stack looks like (spec.md §4.1.4).
	newlySeeded []*ir.BB
}

// Import lowers one method's IL into basic blocks of INTOP
// instructions: it builds the variable prologue, discovers block
// boundaries, then decodes each block exactly once, in the order its
// entry stack becomes known rather than strictly by IL offset, pushing
// and popping a simulated evaluation stack and appending one or more
// ir.Ins per CIL opcode to whichever block is currently open
// (spec.md §4.1).
func Import(host hostiface.Host, method hostiface.MethodInfo) (*Result, error) {
	vars, _, _, err := createVars(host, method)
	if err != nil {
		return nil, err
	}

	graph := cfg.New()
	if err := discoverBlocks(method.ILCode, graph); err != nil {
		return nil, err
	}

	st := &state{host: host, method: method, il: method.ILCode, vars: vars, graph: graph}
	if err := st.build(); err != nil {
		return nil, err
	}

	entry, _ := graph.Lookup(0)
	graph.UnlinkUnreachable(entry)
	layout := graph.Linearise(entry)

	return &Result{Vars: vars, Entry: entry, Blocks: layout}, nil
}

// build walks every block reachable from the entry exactly once,
// deferring a block until some predecessor has actually seeded its
// entry stack instead of importing it against whatever stack
// happened to be left lying around by the block built just before it
// in IL-offset order. This matters for the standard bottom-tested
// loop shape (br to a condition test, whose body sits at a lower IL
// offset than the branch back to it): the loop body is a block with
// no predecessor at a lower offset, so single-pass ascending-offset
// traversal would decode it before anything has established its
// incoming stack (spec.md §4.1.4).
//
// Blocks discovered but never seeded by any reachable predecessor are
// simply never decoded; UnlinkUnreachable removes them afterwards.
func (s *state) build() error {
	blocks := s.graph.Blocks()
	ends := make(map[*ir.BB]int32, len(blocks))
	for i, bb := range blocks {
		end := int32(len(s.il))
		if i+1 < len(blocks) {
			end = blocks[i+1].ILOffset
		}
		ends[bb] = end
	}

	entry, ok := s.graph.Lookup(0)
	if !ok {
		return nil
	}
	entry.StackState = []ir.StackInfo{}
	entry.StackHeight = 0

	queue := []*ir.BB{entry}
	queued := map[*ir.BB]bool{entry: true}
	built := map[*ir.BB]bool{}

	for len(queue) > 0 {
		bb := queue[0]
		queue = queue[1:]
		if built[bb] {
			continue
		}
		built[bb] = true

		s.newlySeeded = s.newlySeeded[:0]
		if err := s.buildBlock(bb, ends[bb]); err != nil {
			return err
		}
		for _, next := range s.newlySeeded {
			if !queued[next] {
				queued[next] = true
				queue = append(queue, next)
			}
		}
	}
	return nil
}

func (s *state) buildBlock(bb *ir.BB, end int32) error {
	s.cur = bb
	s.stack = append(s.stack[:0], bb.StackState...)

	pos := int(bb.ILOffset)
	var fallsThrough = true
	for pos < int(end) {
		d, err := decodeAt(s.il, pos)
		if err != nil {
			return err
		}
		fallsThrough, err = s.lower(bb, d)
		if err != nil {
			if u, ok := err.(*ErrStackUnderflow); ok {
				u.ILOffset = d.ILOffset
			}
			return err
		}
		pos = int(d.NextOffset)
	}

	if fallsThrough && int(end) < len(s.il) {
		if next, ok := s.graph.Lookup(end); ok {
			if err := s.seedOrMerge(bb, next); err != nil {
				return err
			}
			ir.LinkBBs(bb, next)
		}
	}
	return nil
}

// seedOrMerge transfers the running evaluation stack s.stack across
// the edge bb -> target: the first predecessor to reach target fixes
// its entry var layout; every later predecessor instead emits moves
// into that fixed layout so every path arrives with the same vars
// live, matching EmitBBEndVarMoves/MergeStackTypeInfo in the source
// compiler (spec.md §4.1.4).
func (s *state) seedOrMerge(bb, target *ir.BB) error {
	if target.StackState == nil && target.StackHeight < 0 {
		target.StackState = append([]ir.StackInfo{}, s.stack...)
		target.StackHeight = int32(len(s.stack))
		s.newlySeeded = append(s.newlySeeded, target)
		return nil
	}
	if int(target.StackHeight) != len(s.stack) {
		return &BadCodeError{bb.ILOffset, "inconsistent stack depth at block join"}
	}
	for i := range target.StackState {
		want := &target.StackState[i]
		have := s.stack[i]
		if want.Type != have.Type {
			return &BadCodeError{bb.ILOffset, "stack type mismatch at block join"}
		}
		if want.Var != have.Var {
			s.emitMove(bb, have, *want)
		}
		ir.MergeStackTypeInfo(want, &have)
	}
	return nil
}

func (s *state) emitMove(bb *ir.BB, from, to ir.StackInfo) {
	it := ilkind.ToInterpType(to.Type)
	op := intop.MovForType(it, false)
	ins := &ir.Ins{Opcode: op, SVars: [3]int32{from.Var, -1, -1}, DVar: to.Var}
	if op == intop.MovVT {
		ins.Data = []int32{int32(s.vars.Get(to.Var).Size)}
	}
	bb.AppendIns(ins)
}

func (s *state) push(st ilkind.StackType, class hostiface.ClassHandle, v int32) {
	s.stack = append(s.stack, ir.StackInfo{Type: st, Class: class, Var: v})
}

func (s *state) pop() (ir.StackInfo, error) {
	if len(s.stack) == 0 {
		return ir.StackInfo{}, &ErrStackUnderflow{}
	}
	top := s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]
	return top, nil
}

func (s *state) newTemp(it ilkind.InterpType, class hostiface.ClassHandle, size int) int32 {
	idx := s.vars.Create(it, class, size)
	return idx
}
