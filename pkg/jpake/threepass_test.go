package jpake

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func runThreePass(t *testing.T, initiator, responder *ThreePass, sInit, sResp []byte) ([]byte, []byte) {
	t.Helper()

	pass1, err := initiator.Pass1()
	require.NoError(t, err)

	pass2, err := responder.Pass2(pass1, sResp, initiator.UserID())
	require.NoError(t, err)

	pass3, err := initiator.Pass3(pass2, sInit, responder.UserID())
	require.NoError(t, err)

	require.NoError(t, responder.ReceivePass3(pass3))

	keyInit, err := initiator.DeriveSharedKey()
	require.NoError(t, err)
	keyResp, err := responder.DeriveSharedKey()
	require.NoError(t, err)
	return keyInit, keyResp
}

func TestThreePassHappyPath(t *testing.T) {
	s, err := DeriveS("secretPassword123")
	require.NoError(t, err)

	initiator, err := NewThreePass("Alice", nil)
	require.NoError(t, err)
	responder, err := NewThreePass("Bob", nil)
	require.NoError(t, err)

	keyInit, keyResp := runThreePass(t, initiator, responder, s, s)
	require.Len(t, keyInit, 32)
	require.Equal(t, keyInit, keyResp)
	require.Equal(t, StateKeyDerived, initiator.State())
	require.Equal(t, StateKeyDerived, responder.State())
}

func TestThreePassWrongPassword(t *testing.T) {
	sInit, err := DeriveS("secretPassword123")
	require.NoError(t, err)
	sResp, err := DeriveS("wrongPassword")
	require.NoError(t, err)

	initiator, err := NewThreePass("Alice", nil)
	require.NoError(t, err)
	responder, err := NewThreePass("Bob", nil)
	require.NoError(t, err)

	keyInit, keyResp := runThreePass(t, initiator, responder, sInit, sResp)
	require.NotEqual(t, keyInit, keyResp)
}

func TestThreePassWithOtherInfo(t *testing.T) {
	s, err := DeriveS("secretPassword123")
	require.NoError(t, err)

	config := &SessionConfig{OtherInfo: []string{"2026-08-02", "pairing"}}
	initiator, err := NewThreePass("Alice", config)
	require.NoError(t, err)
	responder, err := NewThreePass("Bob", config)
	require.NoError(t, err)

	keyInit, keyResp := runThreePass(t, initiator, responder, s, s)
	require.Equal(t, keyInit, keyResp)
}

func TestThreePassSerializedMessages(t *testing.T) {
	s, err := DeriveS("secretPassword123")
	require.NoError(t, err)

	initiator, err := NewThreePass("Alice", nil)
	require.NoError(t, err)
	responder, err := NewThreePass("Bob", nil)
	require.NoError(t, err)

	pass1, err := initiator.Pass1()
	require.NoError(t, err)
	pass1Parsed, err := ParseRound1Result(pass1.Bytes())
	require.NoError(t, err)

	pass2, err := responder.Pass2(pass1Parsed, s, "Alice")
	require.NoError(t, err)
	pass2Parsed, err := ParsePass2Result(pass2.Bytes())
	require.NoError(t, err)

	pass3, err := initiator.Pass3(pass2Parsed, s, "Bob")
	require.NoError(t, err)
	pass3Parsed, err := ParseRound2Result(pass3.Bytes())
	require.NoError(t, err)

	require.NoError(t, responder.ReceivePass3(pass3Parsed))

	keyInit, err := initiator.DeriveSharedKey()
	require.NoError(t, err)
	keyResp, err := responder.DeriveSharedKey()
	require.NoError(t, err)
	require.Equal(t, keyInit, keyResp)
}

func TestThreePassMissingPass2(t *testing.T) {
	initiator, err := NewThreePass("Alice", nil)
	require.NoError(t, err)
	_, err = initiator.Pass1()
	require.NoError(t, err)

	s, err := DeriveS("secretPassword123")
	require.NoError(t, err)
	_, err = initiator.Pass3(nil, s, "Bob")
	require.True(t, errors.Is(err, ErrInvalidArgument))
}

func TestThreePassOutOfOrder(t *testing.T) {
	s, err := DeriveS("secretPassword123")
	require.NoError(t, err)

	initiator, err := NewThreePass("Alice", nil)
	require.NoError(t, err)
	responder, err := NewThreePass("Bob", nil)
	require.NoError(t, err)

	pass1, err := initiator.Pass1()
	require.NoError(t, err)
	pass2, err := responder.Pass2(pass1, s, "Alice")
	require.NoError(t, err)

	// The responder cannot derive before receiving pass 3.
	_, err = responder.DeriveSharedKey()
	require.True(t, errors.Is(err, ErrInvalidState))

	pass3, err := initiator.Pass3(pass2, s, "Bob")
	require.NoError(t, err)
	require.NoError(t, responder.ReceivePass3(pass3))

	keyInit, err := initiator.DeriveSharedKey()
	require.NoError(t, err)
	keyResp, err := responder.DeriveSharedKey()
	require.NoError(t, err)
	require.Equal(t, keyInit, keyResp)
}

func TestThreePassImpersonation(t *testing.T) {
	s, err := DeriveS("secretPassword123")
	require.NoError(t, err)
	sEve, err := DeriveS("eveGuess")
	require.NoError(t, err)

	initiator, err := NewThreePass("Alice", nil)
	require.NoError(t, err)
	eve, err := NewThreePass("Eve", nil)
	require.NoError(t, err)

	pass1, err := initiator.Pass1()
	require.NoError(t, err)

	// Eve answers in place of Bob. The initiator expects proofs bound to
	// "Bob" and rejects hers.
	pass2, err := eve.Pass2(pass1, sEve, "Alice")
	require.NoError(t, err)
	_, err = initiator.Pass3(pass2, s, "Bob")
	require.True(t, errors.Is(err, ErrVerification))
}
