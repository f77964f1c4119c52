package passgen

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateLengthAndCoverage(t *testing.T) {
	t.Parallel()

	policies := []Policy{
		{Length: 8, Uppercase: true, Lowercase: true, Digits: true, Special: true},
		{Length: 16, Uppercase: true, Lowercase: true, Digits: true},
		{Length: 32, Lowercase: true},
		{Length: 12, Digits: true, Special: true},
		{Length: 9, Uppercase: true, Special: true},
	}

	for _, p := range policies {
		// Repeat so a lucky draw can't mask a missing-class bug.
		for range 50 {
			got, err := Generate(p)
			require.NoError(t, err)
			require.Len(t, got, p.Length)

			if p.Uppercase {
				require.True(t, Contains(got, Uppercase), "missing uppercase in %q", got)
			}
			if p.Lowercase {
				require.True(t, Contains(got, Lowercase), "missing lowercase in %q", got)
			}
			if p.Digits {
				require.True(t, Contains(got, Digits), "missing digit in %q", got)
			}
			if p.Special {
				require.True(t, Contains(got, Special), "missing special in %q", got)
			}
		}
	}
}

func TestGenerateOnlyUsesEnabledClasses(t *testing.T) {
	t.Parallel()

	for range 50 {
		got, err := Generate(Policy{Length: 16, Lowercase: true, Digits: true})
		require.NoError(t, err)
		require.False(t, Contains(got, Uppercase), "unexpected uppercase in %q", got)
		require.False(t, Contains(got, Special), "unexpected special in %q", got)
	}
}

func TestGenerateRejectsEmptyPolicy(t *testing.T) {
	t.Parallel()

	_, err := Generate(Policy{Length: 16})
	require.ErrorIs(t, err, ErrNoClassesEnabled)
}

func TestGenerateRejectsLengthBelowClassCount(t *testing.T) {
	t.Parallel()

	_, err := Generate(Policy{Length: 3, Uppercase: true, Lowercase: true, Digits: true, Special: true})
	require.ErrorIs(t, err, ErrLengthTooShort)
}

func TestGenerateVaries(t *testing.T) {
	t.Parallel()

	p := Policy{Length: 16, Uppercase: true, Lowercase: true, Digits: true}
	seen := make(map[string]struct{})
	for range 20 {
		got, err := Generate(p)
		require.NoError(t, err)
		seen[got] = struct{}{}
	}
	require.Greater(t, len(seen), 1, "generator produced identical outputs")
}
