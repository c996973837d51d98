// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command ilcompile-dump drives the compiler core standalone, the way
// wasm-dump drives wagon's WebAssembly decoder standalone: it reads a
// minimal text fixture describing one method's signature and IL body,
// compiles it, and prints the emitted INTOP stream in a human-readable
// form. There is no real assembly/module loader to open, so the
// fixture format stands in for one.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/go-interpreter/ilcompile/arena"
	"github.com/go-interpreter/ilcompile/compiler"
	"github.com/go-interpreter/ilcompile/hostiface"
	"github.com/go-interpreter/ilcompile/intop"
)

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: ilcompile-dump [options] method1.ilm [method2.ilm [...]]

Each input is a line-oriented method fixture, not a real assembly:

  args: i4 i4      space-separated arg types: i4 i8 r4 r8 o vt byref void
  ret: i4          return type, same vocabulary as args
  locals: i4       space-separated local types (optional)
  thisarg: true    set if the method has an implicit 'this' (optional)
  il: 02 03 58 2a  hex-encoded IL bytes

ex:
 $> ilcompile-dump testdata/add.ilm

options:
`)
		flag.PrintDefaults()
		os.Exit(1)
	}
}

var flagFrame = flag.Bool("f", false, "print the allocated frame size")

func main() {
	log.SetPrefix("ilcompile-dump: ")
	log.SetFlags(0)
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
	}

	for i, fname := range flag.Args() {
		if i > 0 {
			fmt.Println()
		}
		if err := process(os.Stdout, fname); err != nil {
			log.Fatalf("%s: %v", fname, err)
		}
	}
}

// noopHost is a Host that can compile token-free, call-free fixtures:
// it has no assembly to resolve tokens against, so ResolveToken and
// MethodSignature fail loudly rather than fabricate an answer.
type noopHost struct{}

func (noopHost) ResolveToken(hostiface.ModuleHandle, hostiface.ClassHandle, uint32, hostiface.TokenKind) (hostiface.ResolvedToken, error) {
	return hostiface.ResolvedToken{}, fmt.Errorf("ilcompile-dump: fixtures carry no token table, so calls/field/type tokens can't resolve")
}

func (noopHost) MethodSignature(hostiface.MethodHandle) (hostiface.Signature, error) {
	return hostiface.Signature{}, fmt.Errorf("ilcompile-dump: fixtures carry no call targets")
}

func (noopHost) ClassSize(hostiface.ClassHandle) (int, error)      { return 0, nil }
func (noopHost) ClassAlignment(hostiface.ClassHandle) (int, error) { return 8, nil }

func (noopHost) MethodClass(hostiface.MethodHandle) hostiface.ClassHandle { return 0 }
func (noopHost) IsValueClass(hostiface.ClassHandle) bool                  { return false }

func (noopHost) EHInfo(hostiface.MethodHandle, int) (hostiface.EHClause, bool, error) {
	return hostiface.EHClause{}, false, nil
}

func (noopHost) AllocMem(hostiface.AllocRequest) ([]byte, error) { return nil, nil }

func process(w io.Writer, fname string) error {
	f, err := os.Open(fname)
	if err != nil {
		return err
	}
	defer f.Close()

	m, err := parseFixture(f)
	if err != nil {
		return fmt.Errorf("parsing fixture: %w", err)
	}

	a := arena.New()
	defer a.Close()

	method, err := compiler.CompileMethod(a, noopHost{}, m)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "%s:\n", fname)
	if *flagFrame {
		fmt.Fprintf(w, "frame: %d bytes\n", method.Frame.TotalSize)
	}
	dumpCode(w, method.Code.Int32Slice())
	return nil
}

// dumpCode re-walks the flat INTOP word stream the same way the
// emitter wrote it (see emitter.EmitCode), printing one line per
// instruction. It relies only on intop's shape tables plus the two
// variable-length special cases, CALL and SWITCH, that those tables
// can't describe.
func dumpCode(w io.Writer, words []int32) {
	i := 0
	for i < len(words) {
		start := i
		op := intop.Op(words[i])
		i++

		var parts []string
		switch op {
		case intop.Call:
			i++ // CALL_ARGS_SVAR sentinel
			if intop.HasDVar(op) {
				parts = append(parts, fmt.Sprintf("d=%d", words[i]))
				i++
			}
			parts = append(parts, fmt.Sprintf("item=%d", words[i]))
			i++
			var args []string
			for words[i] != -1 {
				args = append(args, strconv.Itoa(int(words[i])))
				i++
			}
			i++ // terminator
			parts = append(parts, fmt.Sprintf("args=[%s]", strings.Join(args, ",")))

		case intop.Switch:
			parts = append(parts, fmt.Sprintf("s=%d", words[i]))
			i++
			n := int(words[i])
			i++
			var targets []string
			for j := 0; j < n; j++ {
				targets = append(targets, strconv.Itoa(int(words[i])))
				i++
			}
			parts = append(parts, fmt.Sprintf("targets=[%s]", strings.Join(targets, ",")))

		default:
			n := intop.NumSVars(op)
			var svars []string
			for j := 0; j < n; j++ {
				svars = append(svars, strconv.Itoa(int(words[i])))
				i++
			}
			if len(svars) > 0 {
				parts = append(parts, fmt.Sprintf("s=[%s]", strings.Join(svars, ",")))
			}
			if intop.HasDVar(op) {
				parts = append(parts, fmt.Sprintf("d=%d", words[i]))
				i++
			}
			if dwords, ok := intop.FixedDataWords(op); ok && dwords > 0 {
				var data []string
				for j := 0; j < dwords; j++ {
					data = append(data, strconv.Itoa(int(words[i])))
					i++
				}
				parts = append(parts, fmt.Sprintf("data=[%s]", strings.Join(data, ",")))
			}
		}

		fmt.Fprintf(w, "%4d: %-12s %s\n", start, op, strings.Join(parts, " "))
	}
}

func parseFixture(r io.Reader) (hostiface.MethodInfo, error) {
	var m hostiface.MethodInfo
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		kv := strings.SplitN(line, ":", 2)
		if len(kv) != 2 {
			return m, fmt.Errorf("malformed line %q: expected key: value", line)
		}
		key := strings.TrimSpace(kv[0])
		rest := strings.TrimSpace(kv[1])

		switch key {
		case "args":
			for _, tok := range strings.Fields(rest) {
				t, err := parseArgType(tok)
				if err != nil {
					return m, err
				}
				m.Args = append(m.Args, t)
			}
		case "ret":
			t, err := parseArgType(rest)
			if err != nil {
				return m, err
			}
			m.ReturnType = t
		case "locals":
			for _, tok := range strings.Fields(rest) {
				t, err := parseArgType(tok)
				if err != nil {
					return m, err
				}
				m.Locals = append(m.Locals, hostiface.LocalVar{Type: t})
			}
		case "thisarg":
			m.HasThis = rest == "true"
		case "il":
			code, err := parseHexBytes(rest)
			if err != nil {
				return m, err
			}
			m.ILCode = code
		default:
			return m, fmt.Errorf("unrecognised fixture key %q", key)
		}
	}
	if err := sc.Err(); err != nil {
		return m, err
	}
	if m.ILCode == nil {
		return m, fmt.Errorf("fixture has no il: line")
	}
	return m, nil
}

func parseArgType(tok string) (hostiface.ArgType, error) {
	switch strings.ToLower(tok) {
	case "i4":
		return hostiface.ArgI4, nil
	case "i8":
		return hostiface.ArgI8, nil
	case "r4":
		return hostiface.ArgR4, nil
	case "r8":
		return hostiface.ArgR8, nil
	case "o":
		return hostiface.ArgObject, nil
	case "vt":
		return hostiface.ArgValueType, nil
	case "byref":
		return hostiface.ArgByRef, nil
	case "void":
		return hostiface.ArgVoid, nil
	}
	return 0, fmt.Errorf("unrecognised arg type %q", tok)
}

func parseHexBytes(s string) ([]byte, error) {
	fields := strings.Fields(s)
	out := make([]byte, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseUint(f, 16, 8)
		if err != nil {
			return nil, fmt.Errorf("byte %d (%q): %w", i, f, err)
		}
		out[i] = byte(v)
	}
	return out, nil
}
