// SPDX-License-Identifier: EPL-2.0

package pyproject

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrInvalidConstraint is the sentinel error wrapped by InvalidConstraintError.
var ErrInvalidConstraint = errors.New("invalid constraint")

type (
	// Constraint is a parsed Poetry version constraint: one or more
	// requirement groups separated by "||", each group a comma-separated
	// conjunction. A version satisfies the constraint when all requirements
	// of at least one group match.
	//
	// Supported requirement forms are the ones Poetry documents: caret
	// ("^1.2"), tilde ("~1.2.3", "~=1.4.2"), wildcard ("1.2.*", "*"),
	// comparisons (">=3.11", "<4.0", "==2.1.0", "!=2.0.3") and bare exact
	// pins ("2.28.1"). The zero value matches nothing; constraints come
	// from ParseConstraint.
	Constraint struct {
		raw    string
		groups [][]requirement
	}

	// InvalidConstraintError is returned when a constraint string cannot be
	// parsed. It wraps ErrInvalidConstraint for errors.Is() compatibility.
	InvalidConstraintError struct {
		Value  string
		Reason string
	}

	requirement struct {
		op      operator
		version Version
		// wild counts the release components given before a ".*" suffix;
		// 0 means a bare "*" matching any version.
		wild int
	}

	operator int
)

const (
	opExact operator = iota
	opNotEqual
	opGreater
	opGreaterEqual
	opLess
	opLessEqual
	opCaret
	opTilde
	opWildcard
	opNotWildcard
)

// Error implements the error interface.
func (e *InvalidConstraintError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid constraint %q: %s", e.Value, e.Reason)
	}
	return fmt.Sprintf("invalid constraint %q", e.Value)
}

// Unwrap returns ErrInvalidConstraint for errors.Is() checks.
func (e *InvalidConstraintError) Unwrap() error {
	return ErrInvalidConstraint
}

// ParseConstraint parses a Poetry version constraint string such as "^3.0",
// ">=2.28,<3", "1.2.*" or "^1.0 || ^2.0".
func ParseConstraint(s string) (Constraint, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return Constraint{}, &InvalidConstraintError{Value: s, Reason: "empty constraint"}
	}

	c := Constraint{raw: raw}
	for group := range strings.SplitSeq(raw, "||") {
		group = strings.TrimSpace(group)
		if group == "" {
			return Constraint{}, &InvalidConstraintError{Value: s, Reason: "empty alternative"}
		}
		var reqs []requirement
		for part := range strings.SplitSeq(group, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				return Constraint{}, &InvalidConstraintError{Value: s, Reason: "empty requirement"}
			}
			req, err := parseRequirement(part)
			if err != nil {
				return Constraint{}, err
			}
			reqs = append(reqs, req)
		}
		c.groups = append(c.groups, reqs)
	}
	return c, nil
}

// Matches reports whether v satisfies the constraint.
func (c Constraint) Matches(v Version) bool {
	for _, group := range c.groups {
		if allMatch(group, v) {
			return true
		}
	}
	return false
}

// MatchesString parses s as a version and reports whether it satisfies the
// constraint.
func (c Constraint) MatchesString(s string) (bool, error) {
	v, err := ParseVersion(s)
	if err != nil {
		return false, err
	}
	return c.Matches(v), nil
}

// String returns the constraint as written.
func (c Constraint) String() string {
	return c.raw
}

func allMatch(reqs []requirement, v Version) bool {
	for _, r := range reqs {
		if !r.matches(v) {
			return false
		}
	}
	return true
}

func parseRequirement(s string) (requirement, error) {
	op := opExact
	rest := s
	switch {
	case strings.HasPrefix(s, ">="):
		op, rest = opGreaterEqual, s[2:]
	case strings.HasPrefix(s, "<="):
		op, rest = opLessEqual, s[2:]
	case strings.HasPrefix(s, "=="):
		op, rest = opExact, s[2:]
	case strings.HasPrefix(s, "!="):
		op, rest = opNotEqual, s[2:]
	case strings.HasPrefix(s, "~="):
		op, rest = opTilde, s[2:]
	case strings.HasPrefix(s, ">"):
		op, rest = opGreater, s[1:]
	case strings.HasPrefix(s, "<"):
		op, rest = opLess, s[1:]
	case strings.HasPrefix(s, "^"):
		op, rest = opCaret, s[1:]
	case strings.HasPrefix(s, "~"):
		op, rest = opTilde, s[1:]
	case strings.HasPrefix(s, "="):
		op, rest = opExact, s[1:]
	}
	rest = strings.TrimSpace(rest)

	if rest == "*" {
		if op != opExact {
			return requirement{}, &InvalidConstraintError{Value: s, Reason: `"*" cannot follow an operator`}
		}
		return requirement{op: opWildcard}, nil
	}

	if base, ok := strings.CutSuffix(rest, ".*"); ok {
		switch op {
		case opExact:
			op = opWildcard
		case opNotEqual:
			op = opNotWildcard
		default:
			return requirement{}, &InvalidConstraintError{Value: s, Reason: "wildcard only combines with == and !="}
		}
		v, err := ParseVersion(base)
		if err != nil {
			return requirement{}, &InvalidConstraintError{Value: s, Reason: "not a version prefix"}
		}
		if v.PrePhase != "" || v.Post >= 0 || v.Dev >= 0 || v.Local != "" {
			return requirement{}, &InvalidConstraintError{Value: s, Reason: "wildcard requires a plain release prefix"}
		}
		return requirement{op: op, version: v, wild: len(v.Release)}, nil
	}

	v, err := ParseVersion(rest)
	if err != nil {
		return requirement{}, &InvalidConstraintError{Value: s, Reason: "not a version"}
	}
	return requirement{op: op, version: v}, nil
}

func (r requirement) matches(v Version) bool {
	switch r.op {
	case opExact:
		return v.Compare(r.version) == 0
	case opNotEqual:
		return v.Compare(r.version) != 0
	case opGreaterEqual:
		return v.Compare(r.version) >= 0
	case opLessEqual:
		return v.Compare(r.version) <= 0
	case opGreater:
		// ">1.7" does not admit 1.7.0.post1 (PEP 440 exclusive comparison).
		if v.Compare(r.version) <= 0 {
			return false
		}
		if r.version.Post < 0 && v.Post >= 0 && samePhase(v, r.version) {
			return false
		}
		return true
	case opLess:
		// "<2.0" does not admit 2.0.0rc1 (PEP 440 exclusive comparison).
		bound := r.version
		if bound.PrePhase == "" && bound.Post < 0 && bound.Dev < 0 {
			bound = devFloor(bound)
		}
		return v.Compare(bound) < 0
	case opCaret:
		return v.Compare(r.version) >= 0 && v.Compare(caretUpper(r.version)) < 0
	case opTilde:
		return v.Compare(r.version) >= 0 && v.Compare(tildeUpper(r.version)) < 0
	case opWildcard:
		if r.wild == 0 {
			return true
		}
		return v.Compare(devFloor(r.version)) >= 0 && v.Compare(wildcardUpper(r.version)) < 0
	case opNotWildcard:
		return v.Compare(devFloor(r.version)) < 0 || v.Compare(wildcardUpper(r.version)) >= 0
	default:
		return false
	}
}

// samePhase reports whether a and b share epoch, release and pre-release
// segment, i.e. differ at most in their post/dev segments.
func samePhase(a, b Version) bool {
	return a.Epoch == b.Epoch &&
		compareRelease(a.Release, b.Release) == 0 &&
		a.PrePhase == b.PrePhase &&
		a.PreNum == b.PreNum
}

// devFloor is the smallest version of a given release: its dev-0 release.
// Range bounds use it so pre-releases of the bound's own release land on the
// correct side.
func devFloor(v Version) Version {
	return Version{Epoch: v.Epoch, Release: v.Release, Post: -1, Dev: 0}
}

// caretUpper computes the exclusive upper bound of a caret requirement by
// bumping the left-most non-zero release component: "^1.2.3" < 2.0.0,
// "^0.2.3" < 0.3.0, "^0.0.3" < 0.0.4.
func caretUpper(v Version) Version {
	idx := 0
	for i, n := range v.Release {
		idx = i
		if n != 0 {
			break
		}
	}
	upper := make([]int, idx+1)
	copy(upper, v.Release[:idx])
	upper[idx] = v.Release[idx] + 1
	return Version{Epoch: v.Epoch, Release: upper, Post: -1, Dev: 0}
}

// tildeUpper computes the exclusive upper bound of a tilde requirement:
// "~1.2.3" allows patch-level changes (< 1.3.0), "~1" minor-level (< 2).
func tildeUpper(v Version) Version {
	if len(v.Release) == 1 {
		return Version{Epoch: v.Epoch, Release: []int{v.Release[0] + 1}, Post: -1, Dev: 0}
	}
	return Version{Epoch: v.Epoch, Release: []int{v.Release[0], v.Release[1] + 1}, Post: -1, Dev: 0}
}

// wildcardUpper bumps the last given component of a wildcard prefix:
// "1.2.*" < 1.3.
func wildcardUpper(v Version) Version {
	upper := slices.Clone(v.Release)
	upper[len(upper)-1]++
	return Version{Epoch: v.Epoch, Release: upper, Post: -1, Dev: 0}
}
