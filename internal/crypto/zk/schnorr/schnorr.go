// Package schnorr implements the non-interactive Schnorr zero-knowledge
// proof of RFC 8235, made non-interactive with the Fiat-Shamir transform
// over SHA3-256.
//
// A proof demonstrates knowledge of x such that gx = x*g, where g is an
// arbitrary generator of the prime-order group, not necessarily the curve
// base point. The prover identity and an optional list of context strings
// are bound into the challenge.
package schnorr

import (
	"errors"
	"math/big"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"golang.org/x/crypto/sha3"

	"github.com/pakekit/jpake/internal/crypto/curves"
)

// ProofLen is the serialized proof length: a 1-byte length prefix and a
// 33-byte compressed point V, then a 1-byte length prefix and a 32-byte
// big-endian scalar r.
const ProofLen = 1 + curves.CompressedPointLen + 1 + curves.ScalarLen

var (
	// ErrFieldTooLong is returned when a challenge hash input field exceeds
	// the 255 bytes representable by its length prefix.
	ErrFieldTooLong = errors.New("Challenge hash input field exceeds 255 bytes")

	// ErrProofLength is returned when a proof is not exactly ProofLen bytes.
	ErrProofLength = errors.New("Invalid proof, must be 33 + 32 + 2 bytes long")

	// ErrProofEncoding is returned when a proof's length prefixes do not
	// delimit a 33-byte point and a 32-byte scalar.
	ErrProofEncoding = errors.New("Invalid proof, V must be 33 bytes and r must be 32 bytes")

	// ErrSelfCheck is returned when a freshly generated proof fails its own
	// verification, which indicates broken curve arithmetic.
	ErrSelfCheck = errors.New("Self-verification of generated proof failed")
)

// Challenge computes the Fiat-Shamir challenge
//
//	c = SHA3-256(len(gx) || gx || len(V) || V || len(userID) || userID || len(info_i) || info_i ...) mod n
//
// with each field prefixed by its single-byte length. gx and v are the
// compressed encodings of the public point and the prover's commitment.
func Challenge(userID string, gx, v []byte, otherInfo []string) (*big.Int, error) {
	h := sha3.New256()
	fields := [][]byte{gx, v, []byte(userID)}
	for _, info := range otherInfo {
		fields = append(fields, []byte(info))
	}
	for _, f := range fields {
		if len(f) > 0xff {
			return nil, ErrFieldTooLong
		}
		h.Write([]byte{byte(len(f))})
		h.Write(f)
	}
	c := new(big.Int).SetBytes(h.Sum(nil))
	return c.Mod(c, curves.N()), nil
}

// Prove generates a proof of knowledge of x, where gx = x*g, bound to
// userID and otherInfo. The proof is self-verified before it is returned.
func Prove(userID string, x *big.Int, gx, g *secp256k1.JacobianPoint, otherInfo []string) ([]byte, error) {
	v, err := curves.RandomScalar()
	if err != nil {
		return nil, err
	}

	bigV := curves.ScalarMult(v, g)
	vBytes, err := curves.EncodeCompressed(bigV)
	if err != nil {
		return nil, err
	}
	gxBytes, err := curves.EncodeCompressed(gx)
	if err != nil {
		return nil, err
	}

	c, err := Challenge(userID, gxBytes, vBytes, otherInfo)
	if err != nil {
		return nil, err
	}

	// r = (v - x*c) mod n
	r := new(big.Int).Mul(x, c)
	r.Sub(v, r)
	r.Mod(r, curves.N())
	rBytes := curves.ScalarToBytes(r)

	proof := make([]byte, 0, ProofLen)
	proof = append(proof, byte(curves.CompressedPointLen))
	proof = append(proof, vBytes...)
	proof = append(proof, byte(curves.ScalarLen))
	proof = append(proof, rBytes[:]...)

	ok, err := Verify(userID, gx, proof, g, otherInfo)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrSelfCheck
	}
	return proof, nil
}

// Verify checks a serialized proof of knowledge of the discrete log of gx
// with respect to g, bound to userID and otherInfo.
//
// Structurally malformed proofs (wrong length, wrong length prefixes) are
// reported as errors. A commitment V that does not decode to a curve point
// yields (false, nil) so that callers surface a uniform verification
// failure. Otherwise the result is whether V == r*g + c*gx holds in affine
// coordinates.
func Verify(userID string, gx *secp256k1.JacobianPoint, proof []byte, g *secp256k1.JacobianPoint, otherInfo []string) (bool, error) {
	if len(proof) != ProofLen {
		return false, ErrProofLength
	}
	if proof[0] != curves.CompressedPointLen || proof[34] != curves.ScalarLen {
		return false, ErrProofEncoding
	}

	vBytes := proof[1:34]
	bigV, err := curves.DecodeCompressed(vBytes)
	if err != nil {
		return false, nil
	}
	r := new(big.Int).SetBytes(proof[35:ProofLen])

	gxBytes, err := curves.EncodeCompressed(gx)
	if err != nil {
		return false, err
	}
	c, err := Challenge(userID, gxBytes, vBytes, otherInfo)
	if err != nil {
		return false, err
	}

	// V == r*g + c*gx
	check := curves.Add(curves.ScalarMult(r, g), curves.ScalarMult(c, gx))
	return curves.Equal(bigV, check), nil
}
