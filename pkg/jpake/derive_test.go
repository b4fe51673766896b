package jpake

import (
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pakekit/jpake/internal/crypto/curves"
)

func TestDeriveS(t *testing.T) {
	s, err := DeriveS("secretPassword123")
	require.NoError(t, err)
	require.Len(t, s, 32)

	// Deterministic.
	s2, err := DeriveS("secretPassword123")
	require.NoError(t, err)
	require.Equal(t, s, s2)

	// In [1, n).
	v := new(big.Int).SetBytes(s)
	require.Equal(t, 1, v.Sign())
	require.Negative(t, v.Cmp(curves.N()))
}

func TestDeriveSDistinctPasswords(t *testing.T) {
	a, err := DeriveS("passwordA")
	require.NoError(t, err)
	b, err := DeriveS("passwordB")
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestDeriveSEmptyPassword(t *testing.T) {
	_, err := DeriveS("")
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrInvalidArgument))
	require.Contains(t, err.Error(), "Missing password")
}

func TestDeriveSUnicode(t *testing.T) {
	s, err := DeriveS("pässwörd✓")
	require.NoError(t, err)
	require.Len(t, s, 32)
}
