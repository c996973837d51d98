// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package methodset parses and matches the small glob language the EE
// host's method-set config switches use to opt individual methods
// into interpreter behaviour (spec.md's config surface): a
// space-separated list of patterns, each optionally scoped to an
// assembly (name!), a declaring class (Class:), and a parenthesized
// signature, with * and ? wildcards available in every segment.
package methodset

import (
	"fmt"
	"strings"
)

// pattern is one parsed space-separated entry. Empty segments (other
// than Method, which is required) mean "any value matches here."
type pattern struct {
	assembly string
	class    string
	method   string
	sig      string
}

// Set is zero or more patterns; a method matches the set if it
// matches any one pattern. The zero Set matches nothing.
type Set struct {
	patterns []pattern
}

// Parse splits s on whitespace and parses each token as one pattern.
// An empty or all-whitespace s returns an empty, match-nothing Set
// and no error.
func Parse(s string) (Set, error) {
	var set Set
	for _, tok := range strings.Fields(s) {
		p, err := parsePattern(tok)
		if err != nil {
			return Set{}, fmt.Errorf("methodset: %q: %w", tok, err)
		}
		set.patterns = append(set.patterns, p)
	}
	return set, nil
}

func parsePattern(tok string) (pattern, error) {
	var p pattern
	rest := tok

	if i := strings.IndexByte(rest, '!'); i >= 0 {
		p.assembly = rest[:i]
		rest = rest[i+1:]
	}

	if i := strings.IndexByte(rest, '('); i >= 0 {
		if !strings.HasSuffix(rest, ")") {
			return pattern{}, fmt.Errorf("unterminated signature")
		}
		p.sig = rest[i+1 : len(rest)-1]
		rest = rest[:i]
	}

	if i := strings.LastIndexByte(rest, ':'); i >= 0 {
		p.class = rest[:i]
		rest = rest[i+1:]
	}

	p.method = rest
	if p.method == "" {
		return pattern{}, fmt.Errorf("missing method name")
	}
	return p, nil
}

// Matches reports whether (assembly, class, method, sig) matches any
// pattern in the set. An empty sig argument (the caller doesn't know
// or care about overload resolution) only matches patterns that
// didn't specify a signature either.
func (s Set) Matches(assembly, class, method, sig string) bool {
	for _, p := range s.patterns {
		if p.matches(assembly, class, method, sig) {
			return true
		}
	}
	return false
}

func (p pattern) matches(assembly, class, method, sig string) bool {
	if p.assembly != "" && !globMatch(p.assembly, assembly) {
		return false
	}
	if p.class != "" && !globMatch(p.class, class) {
		return false
	}
	if !globMatch(p.method, method) {
		return false
	}
	if p.sig != "" && (sig == "" || !globMatch(p.sig, sig)) {
		return false
	}
	return true
}

// globMatch reports whether s matches pattern, where '*' matches any
// run of characters (including none) and '?' matches exactly one. It
// is the classic two-cursor backtracking algorithm: advance both
// cursors on a literal/'?' match, and on '*' remember the position to
// retry from if a later literal fails to match, which makes this
// O(len(s)*len(pattern)) in the worst case rather than exponential.
func globMatch(pattern, s string) bool {
	var sIdx, pIdx int
	var starIdx = -1
	var matchIdx int

	for sIdx < len(s) {
		switch {
		case pIdx < len(pattern) && (pattern[pIdx] == '?' || pattern[pIdx] == s[sIdx]):
			sIdx++
			pIdx++
		case pIdx < len(pattern) && pattern[pIdx] == '*':
			starIdx = pIdx
			matchIdx = sIdx
			pIdx++
		case starIdx != -1:
			pIdx = starIdx + 1
			matchIdx++
			sIdx = matchIdx
		default:
			return false
		}
	}
	for pIdx < len(pattern) && pattern[pIdx] == '*' {
		pIdx++
	}
	return pIdx == len(pattern)
}
