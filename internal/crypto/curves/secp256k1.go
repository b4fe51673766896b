// Package curves wraps the secp256k1 arithmetic needed by the PAKE protocol.
//
// All scalar arithmetic above this package is done on big.Int values modulo
// the group order N; points cross the package boundary as Jacobian points and
// are normalized to affine coordinates before comparison or encoding.
package curves

import (
	"crypto/rand"
	"errors"
	"math/big"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// CompressedPointLen is the length of a SEC1 compressed point encoding.
const CompressedPointLen = 33

// ScalarLen is the length of a big-endian encoded scalar.
const ScalarLen = 32

var (
	// ErrInvalidPoint is returned when bytes do not decode to a valid
	// compressed secp256k1 point.
	ErrInvalidPoint = errors.New("curves: invalid compressed point")

	// ErrPointAtInfinity is returned when the point at infinity reaches an
	// operation that has no affine representation for it.
	ErrPointAtInfinity = errors.New("curves: point at infinity")
)

var n = secp256k1.S256().N

// N returns the order of the secp256k1 base point. Callers must not mutate
// the returned value.
func N() *big.Int {
	return n
}

// Generator returns the base point G as a fresh Jacobian point.
func Generator() *secp256k1.JacobianPoint {
	var g secp256k1.JacobianPoint
	one := new(secp256k1.ModNScalar)
	one.SetInt(1)
	secp256k1.ScalarBaseMultNonConst(one, &g)
	return &g
}

// RandomScalar returns a uniformly random scalar in [1, n).
func RandomScalar() (*big.Int, error) {
	for {
		k, err := rand.Int(rand.Reader, n)
		if err != nil {
			return nil, err
		}
		if k.Sign() != 0 {
			return k, nil
		}
	}
}

// ReduceBytes interprets b as a big-endian unsigned integer and reduces it
// modulo the group order.
func ReduceBytes(b []byte) *big.Int {
	k := new(big.Int).SetBytes(b)
	return k.Mod(k, n)
}

// ScalarToBytes encodes k as a fixed-width 32-byte big-endian integer.
// k must be in [0, n).
func ScalarToBytes(k *big.Int) [ScalarLen]byte {
	var out [ScalarLen]byte
	k.FillBytes(out[:])
	return out
}

func modNScalar(k *big.Int) *secp256k1.ModNScalar {
	b := ScalarToBytes(k)
	s := new(secp256k1.ModNScalar)
	s.SetBytes(&b)
	return s
}

// ScalarBaseMult computes k*G.
func ScalarBaseMult(k *big.Int) *secp256k1.JacobianPoint {
	var result secp256k1.JacobianPoint
	secp256k1.ScalarBaseMultNonConst(modNScalar(k), &result)
	return &result
}

// ScalarMult computes k*P without modifying P.
func ScalarMult(k *big.Int, p *secp256k1.JacobianPoint) *secp256k1.JacobianPoint {
	var q, result secp256k1.JacobianPoint
	q.Set(p)
	secp256k1.ScalarMultNonConst(modNScalar(k), &q, &result)
	return &result
}

// Add computes P+Q without modifying either argument.
func Add(p, q *secp256k1.JacobianPoint) *secp256k1.JacobianPoint {
	var a, b, result secp256k1.JacobianPoint
	a.Set(p)
	b.Set(q)
	secp256k1.AddNonConst(&a, &b, &result)
	return &result
}

// Negate returns -P without modifying P.
func Negate(p *secp256k1.JacobianPoint) *secp256k1.JacobianPoint {
	var result secp256k1.JacobianPoint
	result.Set(p)
	result.Y.Normalize()
	result.Y.Negate(1).Normalize()
	return &result
}

// Sub computes P-Q without modifying either argument.
func Sub(p, q *secp256k1.JacobianPoint) *secp256k1.JacobianPoint {
	return Add(p, Negate(q))
}

// IsInfinity reports whether p is the point at infinity. The group identity
// is represented with all coordinates zero.
func IsInfinity(p *secp256k1.JacobianPoint) bool {
	var q secp256k1.JacobianPoint
	q.Set(p)
	q.X.Normalize()
	q.Y.Normalize()
	q.Z.Normalize()
	return q.Z.IsZero() || (q.X.IsZero() && q.Y.IsZero())
}

// Equal reports whether p and q represent the same affine point. Projective
// representations of the same point differ, so both sides are normalized
// before the coordinate comparison.
func Equal(p, q *secp256k1.JacobianPoint) bool {
	if IsInfinity(p) || IsInfinity(q) {
		return IsInfinity(p) && IsInfinity(q)
	}
	var a, b secp256k1.JacobianPoint
	a.Set(p)
	b.Set(q)
	a.ToAffine()
	b.ToAffine()
	return a.X.Equals(&b.X) && a.Y.Equals(&b.Y)
}

// EncodeCompressed returns the 33-byte SEC1 compressed encoding of p.
func EncodeCompressed(p *secp256k1.JacobianPoint) ([]byte, error) {
	if IsInfinity(p) {
		return nil, ErrPointAtInfinity
	}
	var a secp256k1.JacobianPoint
	a.Set(p)
	a.ToAffine()
	return secp256k1.NewPublicKey(&a.X, &a.Y).SerializeCompressed(), nil
}

// DecodeCompressed parses a 33-byte SEC1 compressed encoding into a point.
// The encoding is rejected unless the point is on the curve. The compressed
// form cannot represent the point at infinity, so a successful decode is
// never the group identity.
func DecodeCompressed(b []byte) (*secp256k1.JacobianPoint, error) {
	if len(b) != CompressedPointLen || (b[0] != 0x02 && b[0] != 0x03) {
		return nil, ErrInvalidPoint
	}
	pub, err := secp256k1.ParsePubKey(b)
	if err != nil {
		return nil, ErrInvalidPoint
	}
	var p secp256k1.JacobianPoint
	pub.AsJacobian(&p)
	return &p, nil
}
