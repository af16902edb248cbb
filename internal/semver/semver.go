// Package semver implements parsing, comparison, and incrementing of
// semantic version triples as used by the release workflow. Versions are
// immutable values; every operation returns a new Version.
package semver

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind selects which component of a version is incremented.
type Kind int

const (
	// Major increments the first component and zeroes the rest.
	Major Kind = iota
	// Minor increments the second component and zeroes the patch.
	Minor
	// Patch increments the third component.
	Patch
)

// String returns the lowercase name of the bump kind.
func (k Kind) String() string {
	switch k {
	case Major:
		return "major"
	case Minor:
		return "minor"
	case Patch:
		return "patch"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind converts a CLI argument into a bump Kind.
// Valid inputs are exactly "major", "minor", and "patch".
func ParseKind(s string) (Kind, error) {
	switch s {
	case "major":
		return Major, nil
	case "minor":
		return Minor, nil
	case "patch":
		return Patch, nil
	default:
		return 0, fmt.Errorf("invalid release type %q (expected: major, minor, or patch)", s)
	}
}

// Version is a semantic version triple with an optional prerelease suffix.
// The prerelease suffix is carried through formatting but ignored by
// arithmetic and comparison.
type Version struct {
	Major      int
	Minor      int
	Patch      int
	Prerelease string
}

// ParseError describes a version string that does not parse as three
// numeric dot-separated fields.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed version %q: %s", e.Input, e.Reason)
}

// Parse parses a version string of the form "major.minor.patch[-prerelease]".
// A leading "v" prefix and surrounding whitespace are tolerated, so both
// tag names ("v1.2.3") and VERSION file contents ("1.2.3-dev") are accepted.
// The prerelease suffix is split off first, then the numeric core must
// contain exactly three non-negative integer fields.
func Parse(text string) (Version, error) {
	raw := strings.TrimPrefix(strings.TrimSpace(text), "v")

	core, prerelease, _ := strings.Cut(raw, "-")

	fields := strings.Split(core, ".")
	if len(fields) != 3 {
		return Version{}, &ParseError{
			Input:  text,
			Reason: fmt.Sprintf("expected 3 numeric fields, got %d", len(fields)),
		}
	}

	nums := make([]int, 3)
	for i, field := range fields {
		n, err := strconv.Atoi(field)
		if err != nil || n < 0 || strings.TrimSpace(field) != field {
			return Version{}, &ParseError{
				Input:  text,
				Reason: fmt.Sprintf("field %q is not a non-negative integer", field),
			}
		}
		nums[i] = n
	}

	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2], Prerelease: prerelease}, nil
}

// Bump returns the next version for the given kind:
//
//	major: (major+1, 0, 0)
//	minor: (major, minor+1, 0)
//	patch: (major, minor, patch+1)
//
// The prerelease suffix of the receiver is stripped before arithmetic.
// An unrecognized kind is a programming error and panics.
func (v Version) Bump(kind Kind) Version {
	switch kind {
	case Major:
		return Version{Major: v.Major + 1}
	case Minor:
		return Version{Major: v.Major, Minor: v.Minor + 1}
	case Patch:
		return Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch + 1}
	default:
		panic(fmt.Sprintf("semver: unknown bump kind %d", int(kind)))
	}
}

// Dev returns a copy of the version carrying the "dev" prerelease suffix,
// used for version artifacts during a development cycle (e.g. "1.3.1-dev").
func (v Version) Dev() Version {
	v.Prerelease = "dev"
	return v
}

// String formats the version as "major.minor.patch", suffixed with
// "-prerelease" when a prerelease is set.
func (v Version) String() string {
	s := fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.Prerelease != "" {
		s += "-" + v.Prerelease
	}
	return s
}

// Compare orders two versions lexicographically by their numeric triple.
// It returns -1 if a < b, 0 if equal, and 1 if a > b. Prerelease suffixes
// do not participate in the ordering.
func Compare(a, b Version) int {
	pairs := [3][2]int{
		{a.Major, b.Major},
		{a.Minor, b.Minor},
		{a.Patch, b.Patch},
	}
	for _, p := range pairs {
		if p[0] < p[1] {
			return -1
		}
		if p[0] > p[1] {
			return 1
		}
	}
	return 0
}
