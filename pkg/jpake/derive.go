package jpake

import (
	"math/big"

	"golang.org/x/crypto/sha3"

	"github.com/pakekit/jpake/internal/crypto/curves"
)

// retrySuffix is appended to the password and the digest recomputed in the
// negligibly rare case that the reduced hash is zero. The exact suffix is a
// wire-compatibility convention and must not change.
const retrySuffix = "retried"

// DeriveS deterministically maps a password to the scalar representation s
// used in round 2, encoded as 32 big-endian bytes with 1 <= s < n.
//
// The mapping is a single SHA3-256, which is intentionally cheap: callers
// holding low-entropy passwords should run a key-stretching function such
// as Argon2 first and pass the stretched output here.
func DeriveS(password string) ([]byte, error) {
	if password == "" {
		return nil, argError("Missing password")
	}

	buf := []byte(password)
	var s *big.Int
	for {
		h := sha3.Sum256(buf)
		s = new(big.Int).SetBytes(h[:])
		s.Mod(s, curves.N())
		if s.Sign() != 0 {
			break
		}
		buf = append(buf, retrySuffix...)
	}

	out := curves.ScalarToBytes(s)
	return out[:], nil
}
