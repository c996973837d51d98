// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package importer

import (
	"github.com/go-interpreter/ilcompile/hostiface"
	"github.com/go-interpreter/ilcompile/ilkind"
	"github.com/go-interpreter/ilcompile/ir"
)

// interpTypeOf maps the coarse ArgType the host reports to the
// persisted InterpType the compiler works with from here on,
// resolving value-type size through the host when needed.
func interpTypeOf(host hostiface.Host, t hostiface.ArgType) ilkind.InterpType {
	switch t {
	case hostiface.ArgI4:
		return ilkind.InterpI4
	case hostiface.ArgI8:
		return ilkind.InterpI8
	case hostiface.ArgR4:
		return ilkind.InterpR4
	case hostiface.ArgR8:
		return ilkind.InterpR8
	case hostiface.ArgObject:
		return ilkind.InterpO
	case hostiface.ArgValueType:
		return ilkind.InterpVT
	case hostiface.ArgByRef:
		return ilkind.InterpByRef
	default:
		return ilkind.InterpVoid
	}
}

// createVars builds the method's initial variable table: the implicit
// `this` (if any), the declared arguments in order, then the declared
// locals in order. This fixes var index 0..N-1 as the argument/local
// prologue that ldarg/ldloc/stloc/starg lowering addresses directly;
// every variable created later by the import pass (temporaries holding
// intermediate stack values) is appended after this prologue
// (spec.md §4.1.1, SPEC_FULL.md §5 "CreateVarExplicit starting
// capacity").
func createVars(host hostiface.Host, m hostiface.MethodInfo) (vars *ir.Vars, argBase, localBase int32, err error) {
	vars = ir.NewVars()

	if m.HasThis {
		thisType := ilkind.InterpO
		if m.IsValueTypeInstance {
			thisType = ilkind.InterpByRef
		}
		idx := vars.Create(thisType, m.Class, 0)
		vars.Get(idx).ILGlobal = true
	}

	argBase = vars.Len()
	for i, a := range m.Args {
		it := interpTypeOf(host, a)
		class := hostiface.ClassHandle(0)
		size := 0
		if i < len(m.ArgClasses) {
			class = m.ArgClasses[i]
		}
		if it == ilkind.InterpVT && class.Valid() {
			size, err = host.ClassSize(class)
			if err != nil {
				return nil, 0, 0, err
			}
		}
		idx := vars.Create(it, class, size)
		vars.Get(idx).ILGlobal = true
	}

	localBase = vars.Len()
	for _, l := range m.Locals {
		it := interpTypeOf(host, l.Type)
		size := 0
		if it == ilkind.InterpVT && l.Class.Valid() {
			size, err = host.ClassSize(l.Class)
			if err != nil {
				return nil, 0, 0, err
			}
		}
		idx := vars.Create(it, l.Class, size)
		vars.Get(idx).ILGlobal = true
	}

	return vars, argBase, localBase, nil
}
