package jpake

import (
	"crypto/hmac"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/sha3"
)

// Key-confirmation labels, one per direction.
const (
	confirmationInfo = "JPAKE_KC"
	tagLabelFirst    = "KC_1_U"
	tagLabelSecond   = "KC_2_U"
)

// KeyConfirmation implements the explicit key confirmation recommended by
// RFC 8236 section 5. A confirmation subkey is expanded from the session
// key with HKDF, and each party sends an HMAC tag over its direction label
// and both identities. Confirmation is optional and adds nothing to the
// core wire formats; the session key itself is unchanged.
type KeyConfirmation struct {
	confirmKey []byte
	localID    string
	peerID     string
}

// NewKeyConfirmation derives confirmation material from a session that has
// reached KEY_DERIVED.
func NewKeyConfirmation(s *Session) (*KeyConfirmation, error) {
	if s.State() != StateKeyDerived {
		return nil, stateError("key confirmation requires state " + StateKeyDerived.String() +
			", current state is " + s.State().String())
	}
	confirmKey := make([]byte, 32)
	r := hkdf.New(sha3.New256, s.sharedKey(), nil, []byte(confirmationInfo))
	if _, err := r.Read(confirmKey); err != nil {
		return nil, internalError(err.Error())
	}
	return &KeyConfirmation{
		confirmKey: confirmKey,
		localID:    s.UserID(),
		peerID:     s.peerID(),
	}, nil
}

// Tag computes this party's confirmation tag. The initiator (the party
// that sends its tag first) uses the first direction label.
func (kc *KeyConfirmation) Tag(initiator bool) []byte {
	return kc.tag(initiator, kc.localID, kc.peerID)
}

// VerifyPeerTag checks the peer's confirmation tag. peerInitiator states
// which direction the peer occupies.
func (kc *KeyConfirmation) VerifyPeerTag(peerInitiator bool, tag []byte) error {
	want := kc.tag(peerInitiator, kc.peerID, kc.localID)
	if !hmac.Equal(want, tag) {
		return verificationError("Key confirmation tag mismatch")
	}
	return nil
}

func (kc *KeyConfirmation) tag(first bool, senderID, receiverID string) []byte {
	label := tagLabelSecond
	if first {
		label = tagLabelFirst
	}
	mac := hmac.New(sha3.New256, kc.confirmKey)
	mac.Write([]byte(label))
	mac.Write([]byte{byte(len(senderID))})
	mac.Write([]byte(senderID))
	mac.Write([]byte{byte(len(receiverID))})
	mac.Write([]byte(receiverID))
	return mac.Sum(nil)
}
