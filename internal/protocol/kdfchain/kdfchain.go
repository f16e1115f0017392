// Package kdfchain implements the two key derivation chains of the Double
// Ratchet: the symmetric chain that turns a chain key into a message key plus
// the next chain key, and the root step that folds a Diffie-Hellman output
// into the root key. Both are pure functions of their inputs.
package kdfchain

import "hushwire/internal/crypto"

// KeySize is the length of every chain, root, and message key.
const KeySize = 32

var (
	infoMessageKeys = []byte("MessageKeys")
	infoChainKey    = []byte("ChainKey")
	infoRootKey     = []byte("RootKey")
)

// MessageKey derives the next message key and chain key from chainKey.
// The two outputs come from independent HKDF expansions with distinct
// context strings, so neither can be computed from the other.
func MessageKey(chainKey []byte) (messageKey, nextChainKey []byte) {
	mustKey(chainKey)
	messageKey = crypto.HKDF(chainKey, nil, infoMessageKeys, KeySize)
	nextChainKey = crypto.HKDF(chainKey, nil, infoChainKey, KeySize)
	return messageKey, nextChainKey
}

// RootStep folds dhOutput into rootKey, producing a new root key and the
// chain key that seeds the next sending or receiving chain.
func RootStep(rootKey, dhOutput []byte) (newRootKey, chainKey []byte) {
	mustKey(rootKey)
	mustKey(dhOutput)
	okm := crypto.HKDF(dhOutput, rootKey, infoRootKey, 2*KeySize)
	return okm[:KeySize], okm[KeySize:]
}

// mustKey enforces the 32-byte contract; violating it is a programming error.
func mustKey(k []byte) {
	if len(k) != KeySize {
		panic("kdfchain: key must be 32 bytes")
	}
}
