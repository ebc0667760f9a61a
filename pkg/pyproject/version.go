// SPDX-License-Identifier: EPL-2.0

package pyproject

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidVersion is the sentinel error wrapped by InvalidVersionError.
var ErrInvalidVersion = errors.New("invalid version")

type (
	// Version is a parsed PEP 440 version. The supported grammar is the
	// subset Poetry writes into pyproject.toml and poetry.lock: an optional
	// epoch, a dotted release, and optional pre-release, post-release, dev
	// and local segments. Spelling variants are normalized during parsing,
	// so "1.0-alpha2" and "1.0a2" decode to the same Version.
	Version struct {
		// Epoch is the version epoch ("1!2.0" has epoch 1). Almost always 0.
		Epoch int
		// Release holds the dotted release numbers ("3.11" → [3, 11]).
		// Missing trailing components compare as zero.
		Release []int
		// PrePhase is "a", "b" or "rc" when this is a pre-release, ""
		// otherwise. "alpha", "beta", "c", "pre" and "preview" normalize to
		// these three.
		PrePhase string
		// PreNum is the pre-release number ("1.0rc2" → 2). Meaningful only
		// when PrePhase is set.
		PreNum int
		// Post is the post-release number, -1 when absent.
		Post int
		// Dev is the dev-release number, -1 when absent.
		Dev int
		// Local is the local version label after "+" ("2.1.0+cpu" → "cpu").
		// Local labels do not participate in ordering.
		Local string
	}

	// InvalidVersionError is returned when a version string cannot be
	// parsed. It wraps ErrInvalidVersion for errors.Is() compatibility.
	InvalidVersionError struct {
		Value string
	}
)

// Error implements the error interface.
func (e *InvalidVersionError) Error() string {
	return fmt.Sprintf("invalid version %q: not a PEP 440 version", e.Value)
}

// Unwrap returns ErrInvalidVersion for errors.Is() checks.
func (e *InvalidVersionError) Unwrap() error {
	return ErrInvalidVersion
}

// versionPattern is the grammar from PEP 440's appendix, minus the
// arbitrary-equality and legacy forms Poetry never writes. Matched against
// lowercased, trimmed input.
var versionPattern = regexp.MustCompile(
	`^v?` +
		`(?:(?P<epoch>[0-9]+)!)?` +
		`(?P<release>[0-9]+(?:\.[0-9]+)*)` +
		`(?P<pre>[-_.]?(?P<prephase>a|b|c|rc|alpha|beta|pre|preview)[-_.]?(?P<prenum>[0-9]+)?)?` +
		`(?P<post>-(?P<postn1>[0-9]+)|[-_.]?(?:post|rev|r)[-_.]?(?P<postn2>[0-9]+)?)?` +
		`(?P<dev>[-_.]?dev[-_.]?(?P<devnum>[0-9]+)?)?` +
		`(?:\+(?P<local>[a-z0-9]+(?:[-_.][a-z0-9]+)*))?$`)

// ParseVersion parses a PEP 440 version string such as "3.11", "2.9.0.post0",
// "4.0.0rc1" or "2.1.0+cpu".
func ParseVersion(s string) (Version, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	match := versionPattern.FindStringSubmatch(normalized)
	if match == nil {
		return Version{}, &InvalidVersionError{Value: s}
	}

	group := func(name string) string {
		return match[versionPattern.SubexpIndex(name)]
	}
	number := func(raw string) (int, error) {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return 0, &InvalidVersionError{Value: s}
		}
		return n, nil
	}

	v := Version{Post: -1, Dev: -1}

	if raw := group("epoch"); raw != "" {
		n, err := number(raw)
		if err != nil {
			return Version{}, err
		}
		v.Epoch = n
	}
	for part := range strings.SplitSeq(group("release"), ".") {
		n, err := number(part)
		if err != nil {
			return Version{}, err
		}
		v.Release = append(v.Release, n)
	}
	if group("pre") != "" {
		v.PrePhase = normalizePhase(group("prephase"))
		if raw := group("prenum"); raw != "" {
			n, err := number(raw)
			if err != nil {
				return Version{}, err
			}
			v.PreNum = n
		}
	}
	if group("post") != "" {
		v.Post = 0
		raw := group("postn1")
		if raw == "" {
			raw = group("postn2")
		}
		if raw != "" {
			n, err := number(raw)
			if err != nil {
				return Version{}, err
			}
			v.Post = n
		}
	}
	if group("dev") != "" {
		v.Dev = 0
		if raw := group("devnum"); raw != "" {
			n, err := number(raw)
			if err != nil {
				return Version{}, err
			}
			v.Dev = n
		}
	}
	v.Local = group("local")

	return v, nil
}

// normalizePhase maps the alternate pre-release spellings PEP 440 allows to
// their canonical forms.
func normalizePhase(phase string) string {
	switch phase {
	case "alpha":
		return "a"
	case "beta":
		return "b"
	case "c", "pre", "preview":
		return "rc"
	default:
		return phase
	}
}

// String renders the canonical normalized form, e.g. "1!2.0rc1.post0.dev3+cpu".
func (v Version) String() string {
	var b strings.Builder
	if v.Epoch > 0 {
		fmt.Fprintf(&b, "%d!", v.Epoch)
	}
	for i, n := range v.Release {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(strconv.Itoa(n))
	}
	if v.PrePhase != "" {
		fmt.Fprintf(&b, "%s%d", v.PrePhase, v.PreNum)
	}
	if v.Post >= 0 {
		fmt.Fprintf(&b, ".post%d", v.Post)
	}
	if v.Dev >= 0 {
		fmt.Fprintf(&b, ".dev%d", v.Dev)
	}
	if v.Local != "" {
		fmt.Fprintf(&b, "+%s", v.Local)
	}
	return b.String()
}

// IsPreRelease reports whether the version is a pre-release or dev release.
func (v Version) IsPreRelease() bool {
	return v.PrePhase != "" || v.Dev >= 0
}

// Compare orders v against o per PEP 440, returning -1, 0 or 1. Missing
// release components compare as zero ("3.11" equals "3.11.0"); dev releases
// sort before pre-releases, pre-releases before the final release, the final
// release before its post-releases. Local labels are ignored.
func (v Version) Compare(o Version) int {
	if c := cmp.Compare(v.Epoch, o.Epoch); c != 0 {
		return c
	}
	if c := compareRelease(v.Release, o.Release); c != 0 {
		return c
	}
	vRank, vNum := v.preKey()
	oRank, oNum := o.preKey()
	if c := cmp.Compare(vRank, oRank); c != 0 {
		return c
	}
	if c := cmp.Compare(vNum, oNum); c != 0 {
		return c
	}
	if c := cmp.Compare(v.Post, o.Post); c != 0 {
		return c
	}
	return cmp.Compare(v.devKey(), o.devKey())
}

func compareRelease(a, b []int) int {
	for i := range max(len(a), len(b)) {
		var av, bv int
		if i < len(a) {
			av = a[i]
		}
		if i < len(b) {
			bv = b[i]
		}
		if c := cmp.Compare(av, bv); c != 0 {
			return c
		}
	}
	return 0
}

// preKey positions the pre-release segment on the PEP 440 number line:
// a dev-only version sorts below every pre-release of the same release, and
// versions without a pre-release sort above all of them.
func (v Version) preKey() (rank, num int) {
	switch {
	case v.PrePhase != "":
		return preRank(v.PrePhase), v.PreNum
	case v.Post < 0 && v.Dev >= 0:
		return -1, 0
	default:
		return 3, 0
	}
}

func preRank(phase string) int {
	switch phase {
	case "a":
		return 0
	case "b":
		return 1
	default: // "rc"
		return 2
	}
}

// devKey sorts a dev release before the release it anticipates
// ("1.0.post1.dev2" < "1.0.post1").
func (v Version) devKey() int {
	if v.Dev < 0 {
		return math.MaxInt
	}
	return v.Dev
}
