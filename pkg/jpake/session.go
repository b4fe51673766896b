// Package jpake implements the J-PAKE password-authenticated key exchange
// of RFC 8236 over secp256k1, with the RFC 8235 Schnorr zero-knowledge
// proof binding every exchanged point to the sender's identity.
//
// Two parties sharing a low-entropy password each create a Session, run the
// two-round exchange (or the three-pass schedule, see ThreePass), and derive
// the same 32-byte high-entropy key. An adversary on the wire, active or
// passive, learns nothing about the password beyond one online guess per
// session and cannot steer the parties onto a key of its choosing.
//
// The library performs no I/O: callers move the serialized round results
// between the parties. A Session is owned by a single goroutine; concurrent
// use requires external synchronization.
package jpake

import (
	"errors"
	"math/big"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/pion/logging"
	"golang.org/x/crypto/sha3"

	"github.com/pakekit/jpake/internal/crypto/curves"
	"github.com/pakekit/jpake/internal/crypto/zk/schnorr"
)

// SessionConfig carries the optional knobs for a Session.
type SessionConfig struct {
	// OtherInfo is an ordered list of context strings (timestamps, session
	// tags) bound into every proof this party emits and expects from its
	// peer. Both parties must use the same list.
	OtherInfo []string

	// LoggerFactory is the factory for creating loggers.
	// If nil, logging is disabled.
	LoggerFactory logging.LoggerFactory
}

// Session is one party's view of a J-PAKE exchange. The local party always
// plays "Alice": its own commitments are G1/G2 and the peer's are G3/G4,
// whichever role the caller has on the wire.
type Session struct {
	userID    string
	otherInfo []string
	state     State
	failed    bool
	log       logging.LeveledLogger

	// Ephemeral secrets. Zeroed by Close.
	x1  *big.Int
	x2  *big.Int
	x2s *big.Int

	// Own round 1 points.
	g1 *secp256k1.JacobianPoint
	g2 *secp256k1.JacobianPoint

	// Peer material accepted so far.
	g3         *secp256k1.JacobianPoint
	g4         *secp256k1.JacobianPoint
	b          *secp256k1.JacobianPoint
	peerZKPx2s []byte
	peerUserID string

	key []byte
}

// NewSession creates a session for the given party identity. config may be
// nil.
func NewSession(userID string, config *SessionConfig) (*Session, error) {
	if userID == "" {
		return nil, argError("Missing userId")
	}
	s := &Session{
		userID: userID,
		state:  StateInitial,
	}
	if config != nil {
		s.otherInfo = append([]string(nil), config.OtherInfo...)
		if config.LoggerFactory != nil {
			s.log = config.LoggerFactory.NewLogger("jpake")
		}
	}
	return s, nil
}

// UserID returns the identity this session binds into its proofs.
func (s *Session) UserID() string {
	return s.userID
}

// State returns the session's current protocol state.
func (s *Session) State() State {
	return s.state
}

// Close zeroes the session's ephemeral secrets. The session is unusable
// afterwards.
func (s *Session) Close() {
	zeroScalar(s.x1)
	zeroScalar(s.x2)
	zeroScalar(s.x2s)
	s.x1, s.x2, s.x2s = nil, nil, nil
	s.failed = true
}

func zeroScalar(k *big.Int) {
	if k == nil {
		return
	}
	bits := k.Bits()
	for i := range bits {
		bits[i] = 0
	}
	k.SetInt64(0)
}

// require checks that the session is healthy and in the wanted state. A
// mis-ordered call fails without mutating the session.
func (s *Session) require(want State, op string) error {
	if s.failed {
		return stateError("session has failed and must be discarded")
	}
	if s.state != want {
		return stateError(op + " requires state " + want.String() + ", current state is " + s.state.String())
	}
	return nil
}

// fail marks the session unusable and passes the error through. Every
// failure, in any round, is fatal: the caller must discard the session.
func (s *Session) fail(err error) error {
	s.failed = true
	if s.log != nil {
		s.log.Debugf("session %q failed: %v", s.userID, err)
	}
	return err
}

// Round1 samples the ephemeral secrets x1, x2, and emits the commitments
// G1 = x1*G and G2 = x2*G with their proofs of knowledge.
func (s *Session) Round1() (*Round1Result, error) {
	if err := s.require(StateInitial, "round1"); err != nil {
		return nil, err
	}

	x1, err := curves.RandomScalar()
	if err != nil {
		return nil, s.fail(internalError(err.Error()))
	}
	x2, err := curves.RandomScalar()
	if err != nil {
		return nil, s.fail(internalError(err.Error()))
	}

	g1 := curves.ScalarBaseMult(x1)
	g2 := curves.ScalarBaseMult(x2)
	base := curves.Generator()

	zkpX1, err := schnorr.Prove(s.userID, x1, g1, base, s.otherInfo)
	if err != nil {
		return nil, s.fail(s.mapSchnorrError(err))
	}
	zkpX2, err := schnorr.Prove(s.userID, x2, g2, base, s.otherInfo)
	if err != nil {
		return nil, s.fail(s.mapSchnorrError(err))
	}

	g1Bytes, err := curves.EncodeCompressed(g1)
	if err != nil {
		return nil, s.fail(internalError(err.Error()))
	}
	g2Bytes, err := curves.EncodeCompressed(g2)
	if err != nil {
		return nil, s.fail(internalError(err.Error()))
	}

	s.x1, s.x2 = x1, x2
	s.g1, s.g2 = g1, g2
	s.state = StateRound1Done
	if s.log != nil {
		s.log.Tracef("session %q: %s", s.userID, s.state)
	}

	return &Round1Result{
		G1:    g1Bytes,
		G2:    g2Bytes,
		ZKPx1: zkpX1,
		ZKPx2: zkpX2,
	}, nil
}

// Round2 consumes the peer's round 1, taking the peer's commitments as
// G3/G4, and emits A = (G1+G3+G4)*(x2*s mod n) with its proof. s is the
// scalar password representation from DeriveS (or any big-endian value of
// at most 64 bytes, reduced modulo the group order).
func (s *Session) Round2(peerR1 *Round1Result, secret []byte, peerUserID string) (*Round2Result, error) {
	if err := s.require(StateRound1Done, "round2"); err != nil {
		return nil, err
	}

	if !peerR1.complete() || len(secret) == 0 || peerUserID == "" {
		return nil, s.fail(argError("Missing required arguments for round 2"))
	}
	if len(secret) > 2*curves.ScalarLen {
		return nil, s.fail(argError("Invalid s: must be at most 64 bytes"))
	}

	g3, err := curves.DecodeCompressed(peerR1.G1)
	if err != nil {
		return nil, s.fail(argError("Invalid points received: G1 or G2 is not a valid ProjectivePoint"))
	}
	g4, err := curves.DecodeCompressed(peerR1.G2)
	if err != nil {
		return nil, s.fail(argError("Invalid points received: G1 or G2 is not a valid ProjectivePoint"))
	}

	sInt := curves.ReduceBytes(secret)
	if sInt.Sign() == 0 {
		return nil, s.fail(argError("Invalid s: s MUST not be equal to 0 mod n"))
	}

	if peerUserID == s.userID {
		return nil, s.fail(verificationError("Proof verification failed, userIds are equal."))
	}

	base := curves.Generator()
	for _, proof := range []struct {
		gx  *secp256k1.JacobianPoint
		zkp []byte
	}{
		{g3, peerR1.ZKPx1},
		{g4, peerR1.ZKPx2},
	} {
		ok, err := schnorr.Verify(peerUserID, proof.gx, proof.zkp, base, s.otherInfo)
		if err != nil {
			return nil, s.fail(s.mapSchnorrError(err))
		}
		if !ok {
			return nil, s.fail(verificationError("ZKP verification failed"))
		}
	}

	// x2s = x2*s mod n. Nonzero because x2 and s both are and n is prime.
	x2s := new(big.Int).Mul(s.x2, sInt)
	x2s.Mod(x2s, curves.N())

	generator := curves.Add(curves.Add(s.g1, g3), g4)
	if curves.IsInfinity(generator) {
		return nil, s.fail(verificationError("Invalid point: The new generator is the point at infinity"))
	}

	a := curves.ScalarMult(x2s, generator)
	zkpX2s, err := schnorr.Prove(s.userID, x2s, a, generator, s.otherInfo)
	if err != nil {
		return nil, s.fail(s.mapSchnorrError(err))
	}
	aBytes, err := curves.EncodeCompressed(a)
	if err != nil {
		return nil, s.fail(internalError(err.Error()))
	}

	s.g3, s.g4 = g3, g4
	s.x2s = x2s
	s.peerUserID = peerUserID
	s.state = StateRound2Done
	if s.log != nil {
		s.log.Tracef("session %q: %s (peer %q)", s.userID, s.state, peerUserID)
	}

	return &Round2Result{A: aBytes, ZKPx2s: zkpX2s}, nil
}

// SetRound2FromPeer stores the peer's round 2 output, taking the peer's A
// as B. Its proof is checked during key derivation.
func (s *Session) SetRound2FromPeer(peerR2 *Round2Result) error {
	if err := s.require(StateRound2Done, "setRound2ResultFromPeer"); err != nil {
		return err
	}

	if !peerR2.complete() {
		return s.fail(argError("Missing required arguments for setRound2ResultFromPeer"))
	}

	b, err := curves.DecodeCompressed(peerR2.A)
	if err != nil {
		return s.fail(argError("Invalid points received: A is not a valid ProjectivePoint"))
	}

	s.b = b
	s.peerZKPx2s = append([]byte(nil), peerR2.ZKPx2s...)
	s.state = StateRound2Received
	if s.log != nil {
		s.log.Tracef("session %q: %s", s.userID, s.state)
	}
	return nil
}

// DeriveSharedKey verifies the peer's round 2 proof and computes the
// 32-byte shared key as SHA3-256 of the compressed point
// Ka = (B - G4*x2s)*x2.
func (s *Session) DeriveSharedKey() ([]byte, error) {
	if err := s.require(StateRound2Received, "deriveSharedKey"); err != nil {
		return nil, err
	}

	if s.b == nil || s.g1 == nil || s.g2 == nil || s.g3 == nil || s.g4 == nil ||
		s.x2 == nil || s.x2s == nil || len(s.peerZKPx2s) == 0 || s.peerUserID == "" {
		return nil, s.fail(internalError("Missing required data for key derivation"))
	}

	if curves.IsInfinity(s.b) {
		return nil, s.fail(verificationError("Invalid point: B is the point at infinity"))
	}

	// The peer proved knowledge of x4*s against its combined generator,
	// which from this side reads G1 + G3 + G2. Point addition commutes, so
	// this equals the G1 + G2 + G3 of RFC 8236.
	peerGenerator := curves.Add(curves.Add(s.g1, s.g3), s.g2)
	ok, err := schnorr.Verify(s.peerUserID, s.b, s.peerZKPx2s, peerGenerator, s.otherInfo)
	if err != nil {
		return nil, s.fail(s.mapSchnorrError(err))
	}
	if !ok {
		return nil, s.fail(verificationError("ZKP verification failed"))
	}

	// Ka = (B - G4*x2s)*x2
	ka := curves.ScalarMult(s.x2, curves.Sub(s.b, curves.ScalarMult(s.x2s, s.g4)))
	kaBytes, err := curves.EncodeCompressed(ka)
	if err != nil {
		return nil, s.fail(internalError(err.Error()))
	}

	key := sha3.Sum256(kaBytes)
	s.key = key[:]
	s.state = StateKeyDerived
	if s.log != nil {
		s.log.Debugf("session %q: %s", s.userID, s.state)
	}
	return s.key, nil
}

// mapSchnorrError translates the proof package's sentinels onto the public
// taxonomy.
func (s *Session) mapSchnorrError(err error) error {
	switch {
	case errors.Is(err, schnorr.ErrFieldTooLong):
		return argError(err.Error())
	case errors.Is(err, schnorr.ErrProofLength), errors.Is(err, schnorr.ErrProofEncoding):
		return verificationError(err.Error())
	default:
		return internalError(err.Error())
	}
}

func (s *Session) sharedKey() []byte {
	return s.key
}

func (s *Session) peerID() string {
	return s.peerUserID
}
