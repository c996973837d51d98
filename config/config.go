// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config holds the small set of method-set-keyed switches the
// compiler core consults: which methods should run interpreted at
// all, which should halt before running (for attaching a debugger),
// and which should have their compiled IR dumped. It is populated
// once at process start and never mutated afterwards, so it carries
// no internal synchronization (spec.md §5).
package config

import "github.com/go-interpreter/ilcompile/methodset"

// Config is an immutable snapshot of the three method-set switches the
// core checks during compilation. The zero value matches nothing —
// every MethodSet field defaults to an empty set, not "match
// everything" — so an uninitialized Config behaves as "compile
// normally, dump nothing."
type Config struct {
	Interpreter methodset.Set
	InterpHalt  methodset.Set
	InterpDump  methodset.Set
}

// These are the only keys this package understands; any other key
// present in a source map passed to New is silently ignored, matching
// how the EE's own config surface tends to gain switches over time
// without every consumer needing to reject what it doesn't recognise.
const (
	keyInterpreter = "Interpreter"
	keyInterpHalt  = "InterpHalt"
	keyInterpDump  = "InterpDump"
)

// New builds a Config from a plain string-keyed map — e.g. parsed out
// of environment variables or a config file by the host process.
// Malformed pattern text for a recognised key is returned as an
// error; unrecognised keys are dropped.
func New(raw map[string]string) (Config, error) {
	var c Config
	var err error

	if v, ok := raw[keyInterpreter]; ok {
		if c.Interpreter, err = methodset.Parse(v); err != nil {
			return Config{}, err
		}
	}
	if v, ok := raw[keyInterpHalt]; ok {
		if c.InterpHalt, err = methodset.Parse(v); err != nil {
			return Config{}, err
		}
	}
	if v, ok := raw[keyInterpDump]; ok {
		if c.InterpDump, err = methodset.Parse(v); err != nil {
			return Config{}, err
		}
	}
	return c, nil
}
