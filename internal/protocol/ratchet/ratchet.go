package ratchet

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"hushwire/internal/crypto"
	"hushwire/internal/domain"
	"hushwire/internal/protocol/kdfchain"
	"hushwire/internal/util/memzero"
)

const (
	// maxSkipPerCall bounds how many keys a single decrypt may fast-forward
	// past, so a hostile header cannot force unbounded work.
	maxSkipPerCall = 1000

	// maxSkippedKeys caps the cache of out-of-order message keys. The oldest
	// entry is evicted first.
	maxSkippedKeys = 400
)

var (
	// ErrChainNotInitialized is returned when encrypting before any sending
	// chain exists. This is a programmer error, fatal to the call.
	ErrChainNotInitialized = errors.New("ratchet: sending chain not initialized")

	// ErrDecryptionFailed covers a bad key, corrupted ciphertext, or replay
	// of an already-consumed skipped key. The state is left untouched.
	ErrDecryptionFailed = errors.New("ratchet: decryption failed")

	// ErrTooManySkipped is returned when a header demands skipping past the
	// per-call cap. Treat the peer as hostile or broken.
	ErrTooManySkipped = errors.New("ratchet: too many skipped messages")
)

// Encrypt derives the next message key from the sending chain, encrypts
// plaintext with a random nonce, and advances the chain. The header fields
// are authenticated as associated data alongside the caller's ad.
func Encrypt(st *domain.RatchetState, ad, plaintext []byte) (domain.RatchetMessage, error) {
	if len(st.SendChainKey) == 0 {
		return domain.RatchetMessage{}, ErrChainNotInitialized
	}

	nonce, err := crypto.NewNonce()
	if err != nil {
		return domain.RatchetMessage{}, err
	}

	mk, nextCK := kdfchain.MessageKey(st.SendChainKey)
	msg := domain.RatchetMessage{
		RatchetKey:          st.DHPub,
		PreviousChainLength: st.PreviousChainLength,
		MessageIndex:        st.SendCount,
		Nonce:               nonce,
	}
	ct, tag, err := crypto.SealDetached(mk, nonce, plaintext, headerAD(ad, msg))
	memzero.Zero(mk)
	if err != nil {
		return domain.RatchetMessage{}, err
	}
	msg.Ciphertext = ct
	msg.Tag = tag

	memzero.Zero(st.SendChainKey)
	st.SendChainKey = nextCK
	st.SendCount++
	return msg, nil
}

// Decrypt opens msg and advances the receiving side of the state. All work
// happens on a scratch copy; st is mutated only when decryption succeeds, so
// a failed call leaves the state exactly as it was.
func Decrypt(st *domain.RatchetState, ad []byte, msg domain.RatchetMessage) ([]byte, error) {
	sc := st.Clone()

	// A cached key means this message was skipped earlier, possibly on a
	// chain generations old. Consume it before touching the ratchet.
	if mk, ok := takeSkipped(&sc, msg.RatchetKey, msg.MessageIndex); ok {
		pt, err := crypto.OpenDetached(mk, msg.Nonce, msg.Ciphertext, msg.Tag, headerAD(ad, msg))
		memzero.Zero(mk)
		if err != nil {
			return nil, ErrDecryptionFailed
		}
		*st = sc
		return pt, nil
	}

	// A new ratchet key means a DH step is due: finish caching the rest of
	// the old chain, then re-key both directions.
	if msg.RatchetKey != sc.PeerDHPub {
		if len(sc.RecvChainKey) != 0 {
			if err := skipTo(&sc, msg.PreviousChainLength); err != nil {
				return nil, err
			}
		}
		if err := dhStep(&sc, msg.RatchetKey); err != nil {
			return nil, err
		}
	}

	if len(sc.RecvChainKey) == 0 {
		return nil, ErrDecryptionFailed
	}
	if err := skipTo(&sc, msg.MessageIndex); err != nil {
		return nil, err
	}

	mk, nextCK := kdfchain.MessageKey(sc.RecvChainKey)
	pt, err := crypto.OpenDetached(mk, msg.Nonce, msg.Ciphertext, msg.Tag, headerAD(ad, msg))
	memzero.Zero(mk)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	memzero.Zero(sc.RecvChainKey)
	sc.RecvChainKey = nextCK
	sc.RecvCount++

	*st = sc
	return pt, nil
}

// dhStep performs one DH ratchet step: a new receiving chain keyed by the
// peer's fresh ratchet key, a new local ratchet pair, and a new sending chain.
func dhStep(sc *domain.RatchetState, peerKey domain.X25519Public) error {
	dh, err := crypto.DH(sc.DHPriv, peerKey)
	if err != nil {
		return ErrDecryptionFailed
	}
	rootKey, recvCK := kdfchain.RootStep(sc.RootKey, dh[:])
	memzero.Zero32(&dh)

	pair, err := crypto.GenerateX25519Pair()
	if err != nil {
		return err
	}
	dh2, err := crypto.DH(pair.Priv, peerKey)
	if err != nil {
		return ErrDecryptionFailed
	}
	rootKey, sendCK := kdfchain.RootStep(rootKey, dh2[:])
	memzero.Zero32(&dh2)

	sc.PreviousChainLength = sc.SendCount
	sc.SendCount, sc.RecvCount = 0, 0
	sc.RootKey = rootKey
	sc.DHPriv, sc.DHPub = pair.Priv, pair.Pub
	sc.PeerDHPub = peerKey
	sc.SendChainKey, sc.RecvChainKey = sendCK, recvCK
	return nil
}

// skipTo advances the receiving chain to until, caching every intermediate
// message key. A target behind the chain means the key was already consumed.
func skipTo(sc *domain.RatchetState, until uint32) error {
	if until < sc.RecvCount {
		return ErrDecryptionFailed
	}
	if until-sc.RecvCount > maxSkipPerCall {
		return ErrTooManySkipped
	}
	for sc.RecvCount < until {
		mk, nextCK := kdfchain.MessageKey(sc.RecvChainKey)
		putSkipped(sc, domain.SkippedKey{
			RatchetKey:   sc.PeerDHPub,
			MessageIndex: sc.RecvCount,
			MessageKey:   mk,
		})
		memzero.Zero(sc.RecvChainKey)
		sc.RecvChainKey = nextCK
		sc.RecvCount++
	}
	return nil
}

func putSkipped(sc *domain.RatchetState, sk domain.SkippedKey) {
	if len(sc.Skipped) >= maxSkippedKeys {
		memzero.Zero(sc.Skipped[0].MessageKey)
		sc.Skipped = sc.Skipped[1:]
	}
	sc.Skipped = append(sc.Skipped, sk)
}

func takeSkipped(sc *domain.RatchetState, key domain.X25519Public, n uint32) ([]byte, bool) {
	for i, sk := range sc.Skipped {
		if sk.RatchetKey == key && sk.MessageIndex == n {
			sc.Skipped = append(sc.Skipped[:i], sc.Skipped[i+1:]...)
			return sk.MessageKey, true
		}
	}
	return nil, false
}

// headerAD binds the transmitted header fields to the ciphertext.
func headerAD(ad []byte, msg domain.RatchetMessage) []byte {
	out := make([]byte, 0, len(ad)+32+8)
	out = append(out, ad...)
	out = append(out, msg.RatchetKey[:]...)
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], msg.PreviousChainLength)
	out = append(out, b[:]...)
	binary.BigEndian.PutUint32(b[:], msg.MessageIndex)
	out = append(out, b[:]...)
	return out
}
