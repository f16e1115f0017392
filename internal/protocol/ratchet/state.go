package ratchet

import (
	"hushwire/internal/crypto"
	"hushwire/internal/domain"
	"hushwire/internal/protocol/kdfchain"
	"hushwire/internal/util/memzero"
)

// InitSender builds the initiator's state from the X3DH shared secret and the
// responder's signed pre-key. It performs one DH ratchet step immediately so
// the very first message already rides a fresh sending chain.
func InitSender(sharedSecret []byte, peerSignedPreKey domain.X25519Public) (domain.RatchetState, error) {
	mustSecret(sharedSecret)

	pair, err := crypto.GenerateX25519Pair()
	if err != nil {
		return domain.RatchetState{}, err
	}
	dh, err := crypto.DH(pair.Priv, peerSignedPreKey)
	if err != nil {
		return domain.RatchetState{}, err
	}
	rootKey, sendCK := kdfchain.RootStep(sharedSecret, dh[:])
	memzero.Zero32(&dh)

	return domain.RatchetState{
		RootKey:      rootKey,
		DHPriv:       pair.Priv,
		DHPub:        pair.Pub,
		PeerDHPub:    peerSignedPreKey,
		SendChainKey: sendCK,
	}, nil
}

// InitReceiver builds the responder's state from the X3DH shared secret. The
// signed pre-key pair the initiator targeted becomes the initial ratchet pair;
// the receiving chain activates on the first message, when the initiator's
// ratchet key arrives.
func InitReceiver(sharedSecret []byte, signedPreKey domain.X25519Pair) (domain.RatchetState, error) {
	mustSecret(sharedSecret)

	return domain.RatchetState{
		RootKey: append([]byte(nil), sharedSecret...),
		DHPriv:  signedPreKey.Priv,
		DHPub:   signedPreKey.Pub,
	}, nil
}

func mustSecret(s []byte) {
	if len(s) != kdfchain.KeySize {
		panic("ratchet: shared secret must be 32 bytes")
	}
}
