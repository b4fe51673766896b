package jpake

import "github.com/pion/logging"

// Pass2Result bundles the responder's round 1 and round 2 outputs into the
// single second message of the three-pass schedule.
type Pass2Result struct {
	Round1 *Round1Result
	Round2 *Round2Result
}

// Bytes serializes the result as Round1 || Round2 (300 bytes).
func (r *Pass2Result) Bytes() []byte {
	out := make([]byte, 0, Round1ResultLen+Round2ResultLen)
	out = append(out, r.Round1.Bytes()...)
	out = append(out, r.Round2.Bytes()...)
	return out
}

// ParsePass2Result splits a 300-byte wire message into its fields.
func ParsePass2Result(b []byte) (*Pass2Result, error) {
	if len(b) != Round1ResultLen+Round2ResultLen {
		return nil, argError("Invalid pass 2 message length")
	}
	r1, err := ParseRound1Result(b[:Round1ResultLen])
	if err != nil {
		return nil, err
	}
	r2, err := ParseRound2Result(b[Round1ResultLen:])
	if err != nil {
		return nil, err
	}
	return &Pass2Result{Round1: r1, Round2: r2}, nil
}

// ThreePass reshapes the symmetric two-round exchange into the strict
// initiator/responder back-and-forth of RFC 8236 section 4:
//
//	initiator                     responder
//	Pass1()        ---pass1--->   Pass2(pass1, s, id)
//	               <--pass2----
//	Pass3(pass2,   ---pass3--->   ReceivePass3(pass3)
//	  s, id)
//	DeriveSharedKey()             DeriveSharedKey()
//
// No cryptographic material is added or removed; every message is a
// repackaging of the underlying session's round results.
type ThreePass struct {
	session *Session
}

// NewThreePass creates a three-pass adapter for the given party identity.
// config may be nil.
func NewThreePass(userID string, config *SessionConfig) (*ThreePass, error) {
	session, err := NewSession(userID, config)
	if err != nil {
		return nil, err
	}
	return &ThreePass{session: session}, nil
}

// NewThreePassWithLogger is a convenience for callers that only want to
// attach diagnostics.
func NewThreePassWithLogger(userID string, loggerFactory logging.LoggerFactory) (*ThreePass, error) {
	return NewThreePass(userID, &SessionConfig{LoggerFactory: loggerFactory})
}

// UserID returns the identity bound into this party's proofs.
func (t *ThreePass) UserID() string {
	return t.session.UserID()
}

// State exposes the underlying session state.
func (t *ThreePass) State() State {
	return t.session.State()
}

// Close zeroes the underlying session's secrets.
func (t *ThreePass) Close() {
	t.session.Close()
}

// Pass1 produces the initiator's first message.
func (t *ThreePass) Pass1() (*Round1Result, error) {
	return t.session.Round1()
}

// Pass2 runs on the responder: it consumes the initiator's first message
// and emits the responder's round 1 and round 2 in one bundle.
func (t *ThreePass) Pass2(peerPass1 *Round1Result, secret []byte, peerUserID string) (*Pass2Result, error) {
	r1, err := t.session.Round1()
	if err != nil {
		return nil, err
	}
	r2, err := t.session.Round2(peerPass1, secret, peerUserID)
	if err != nil {
		return nil, err
	}
	return &Pass2Result{Round1: r1, Round2: r2}, nil
}

// Pass3 runs on the initiator: it consumes the responder's bundle, emits
// the initiator's round 2, and stores the responder's round 2 so that
// DeriveSharedKey can run immediately afterwards.
func (t *ThreePass) Pass3(peerPass2 *Pass2Result, secret []byte, peerUserID string) (*Round2Result, error) {
	var peerR1 *Round1Result
	var peerR2 *Round2Result
	if peerPass2 != nil {
		peerR1, peerR2 = peerPass2.Round1, peerPass2.Round2
	}
	r2, err := t.session.Round2(peerR1, secret, peerUserID)
	if err != nil {
		return nil, err
	}
	if err := t.session.SetRound2FromPeer(peerR2); err != nil {
		return nil, err
	}
	return r2, nil
}

// ReceivePass3 runs on the responder: it stores the initiator's round 2.
func (t *ThreePass) ReceivePass3(peerPass3 *Round2Result) error {
	return t.session.SetRound2FromPeer(peerPass3)
}

// DeriveSharedKey completes the exchange for either role.
func (t *ThreePass) DeriveSharedKey() ([]byte, error) {
	return t.session.DeriveSharedKey()
}
