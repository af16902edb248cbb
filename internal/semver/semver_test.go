package semver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Valid(t *testing.T) {
	tests := map[string]struct {
		input    string
		expected Version
	}{
		"bare triple": {
			input:    "1.2.3",
			expected: Version{Major: 1, Minor: 2, Patch: 3},
		},
		"v prefix": {
			input:    "v1.2.3",
			expected: Version{Major: 1, Minor: 2, Patch: 3},
		},
		"zero version": {
			input:    "0.0.0",
			expected: Version{},
		},
		"dev prerelease": {
			input:    "1.2.4-dev",
			expected: Version{Major: 1, Minor: 2, Patch: 4, Prerelease: "dev"},
		},
		"dotted prerelease": {
			input:    "2.0.0-rc.1",
			expected: Version{Major: 2, Minor: 0, Patch: 0, Prerelease: "rc.1"},
		},
		"surrounding whitespace": {
			input:    " 1.2.3\n",
			expected: Version{Major: 1, Minor: 2, Patch: 3},
		},
		"large components": {
			input:    "10.20.30",
			expected: Version{Major: 10, Minor: 20, Patch: 30},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			v, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, v)
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	tests := map[string]string{
		"two fields":        "1.2",
		"four fields":       "1.2.3.4",
		"non-numeric field": "1.a.3",
		"empty string":      "",
		"empty field":       "1..3",
		"negative field":    "1.2.-3",
		"plain word":        "banana",
		"internal space":    "1. 2.3",
	}

	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(input)
			require.Error(t, err)
			var perr *ParseError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, input, perr.Input)
		})
	}
}

func TestBump(t *testing.T) {
	tests := map[string]struct {
		current  Version
		kind     Kind
		expected Version
	}{
		"patch increments third field": {
			current:  Version{Major: 1, Minor: 2, Patch: 3},
			kind:     Patch,
			expected: Version{Major: 1, Minor: 2, Patch: 4},
		},
		"minor zeroes patch": {
			current:  Version{Major: 1, Minor: 2, Patch: 3},
			kind:     Minor,
			expected: Version{Major: 1, Minor: 3, Patch: 0},
		},
		"major zeroes minor and patch": {
			current:  Version{Major: 1, Minor: 2, Patch: 3},
			kind:     Major,
			expected: Version{Major: 2, Minor: 0, Patch: 0},
		},
		"prerelease stripped before arithmetic": {
			current:  Version{Major: 1, Minor: 2, Patch: 3, Prerelease: "dev"},
			kind:     Patch,
			expected: Version{Major: 1, Minor: 2, Patch: 4},
		},
		"bump from zero": {
			current:  Version{},
			kind:     Major,
			expected: Version{Major: 1},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.current.Bump(tt.kind))
		})
	}
}

func TestBump_UnknownKindPanics(t *testing.T) {
	assert.Panics(t, func() {
		Version{}.Bump(Kind(42))
	})
}

func TestString(t *testing.T) {
	assert.Equal(t, "1.2.3", Version{Major: 1, Minor: 2, Patch: 3}.String())
	assert.Equal(t, "1.2.4-dev", Version{Major: 1, Minor: 2, Patch: 4, Prerelease: "dev"}.String())
	assert.Equal(t, "0.0.0", Version{}.String())
}

func TestDev(t *testing.T) {
	v := Version{Major: 1, Minor: 3, Patch: 1}
	dev := v.Dev()

	assert.Equal(t, "1.3.1-dev", dev.String())
	assert.Empty(t, v.Prerelease, "receiver must not be mutated")
}

func TestCompare(t *testing.T) {
	tests := map[string]struct {
		a, b     Version
		expected int
	}{
		"equal":                {a: Version{1, 2, 3, ""}, b: Version{1, 2, 3, ""}, expected: 0},
		"major wins":           {a: Version{2, 0, 0, ""}, b: Version{1, 9, 9, ""}, expected: 1},
		"minor wins":           {a: Version{1, 2, 0, ""}, b: Version{1, 3, 0, ""}, expected: -1},
		"patch wins":           {a: Version{1, 2, 4, ""}, b: Version{1, 2, 3, ""}, expected: 1},
		"prerelease ignored":   {a: Version{1, 2, 3, "dev"}, b: Version{1, 2, 3, ""}, expected: 0},
		"ten beats nine major": {a: Version{10, 0, 0, ""}, b: Version{9, 9, 9, ""}, expected: 1},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Compare(tt.a, tt.b))
		})
	}
}

func TestParseKind(t *testing.T) {
	for _, s := range []string{"major", "minor", "patch"} {
		kind, err := ParseKind(s)
		require.NoError(t, err)
		assert.Equal(t, s, kind.String())
	}

	for _, s := range []string{"", "MAJOR", "mini", "release"} {
		_, err := ParseKind(s)
		assert.Error(t, err, "input %q", s)
	}
}
