package jpake

import (
	"github.com/pakekit/jpake/internal/crypto/curves"
	"github.com/pakekit/jpake/internal/crypto/zk/schnorr"
)

// State identifies where a Session is in its protocol run. A session only
// ever moves forward through these states.
type State int

const (
	// StateInitial is a freshly created session.
	StateInitial State = iota
	// StateRound1Done means Round1 has produced this party's commitments.
	StateRound1Done
	// StateRound2Done means the peer's round 1 was accepted and this
	// party's round 2 was produced.
	StateRound2Done
	// StateRound2Received means the peer's round 2 has been stored.
	StateRound2Received
	// StateKeyDerived is the terminal success state.
	StateKeyDerived
)

func (s State) String() string {
	switch s {
	case StateInitial:
		return "INITIAL"
	case StateRound1Done:
		return "ROUND1_DONE"
	case StateRound2Done:
		return "ROUND2_DONE"
	case StateRound2Received:
		return "ROUND2_RECEIVED"
	case StateKeyDerived:
		return "KEY_DERIVED"
	default:
		return "UNKNOWN"
	}
}

// Serialized message sizes.
const (
	// Round1ResultLen is len(G1) + len(G2) + 2 proofs.
	Round1ResultLen = 2*curves.CompressedPointLen + 2*schnorr.ProofLen
	// Round2ResultLen is len(A) + 1 proof.
	Round2ResultLen = curves.CompressedPointLen + schnorr.ProofLen
)

// Round1Result carries a party's round 1 commitments: G1 = x1*G and
// G2 = x2*G as compressed points, each with a proof of knowledge of its
// discrete log with respect to the base point.
type Round1Result struct {
	G1    []byte
	G2    []byte
	ZKPx1 []byte
	ZKPx2 []byte
}

// Bytes serializes the result as G1 || G2 || ZKPx1 || ZKPx2 (200 bytes).
func (r *Round1Result) Bytes() []byte {
	out := make([]byte, 0, Round1ResultLen)
	out = append(out, r.G1...)
	out = append(out, r.G2...)
	out = append(out, r.ZKPx1...)
	out = append(out, r.ZKPx2...)
	return out
}

// ParseRound1Result splits a 200-byte wire message into its fields. Point
// and proof validity is checked where the message is consumed, not here.
func ParseRound1Result(b []byte) (*Round1Result, error) {
	if len(b) != Round1ResultLen {
		return nil, argError("Invalid round 1 message length")
	}
	const p = curves.CompressedPointLen
	return &Round1Result{
		G1:    b[:p:p],
		G2:    b[p : 2*p : 2*p],
		ZKPx1: b[2*p : 2*p+schnorr.ProofLen : 2*p+schnorr.ProofLen],
		ZKPx2: b[2*p+schnorr.ProofLen:],
	}, nil
}

// Round2Result carries a party's round 2 output: A = (G1+G3+G4)*x2*s as a
// compressed point with a proof of knowledge of x2*s with respect to the
// combined generator.
type Round2Result struct {
	A      []byte
	ZKPx2s []byte
}

// Bytes serializes the result as A || ZKPx2s (100 bytes).
func (r *Round2Result) Bytes() []byte {
	out := make([]byte, 0, Round2ResultLen)
	out = append(out, r.A...)
	out = append(out, r.ZKPx2s...)
	return out
}

// ParseRound2Result splits a 100-byte wire message into its fields.
func ParseRound2Result(b []byte) (*Round2Result, error) {
	if len(b) != Round2ResultLen {
		return nil, argError("Invalid round 2 message length")
	}
	const p = curves.CompressedPointLen
	return &Round2Result{
		A:      b[:p:p],
		ZKPx2s: b[p:],
	}, nil
}

func (r *Round1Result) complete() bool {
	return r != nil && len(r.G1) > 0 && len(r.G2) > 0 && len(r.ZKPx1) > 0 && len(r.ZKPx2) > 0
}

func (r *Round2Result) complete() bool {
	return r != nil && len(r.A) > 0 && len(r.ZKPx2s) > 0
}
