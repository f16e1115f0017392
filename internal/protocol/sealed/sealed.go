// Package sealed implements the sender-hiding envelope layer. A fresh
// ephemeral X25519 pair per envelope encrypts the inner payload to the
// recipient's exchange key, so transport and relay see only an ephemeral
// public key and ciphertext. The sender's identity travels inside.
package sealed

import (
	"encoding/json"

	"github.com/pkg/errors"

	"hushwire/internal/crypto"
	"hushwire/internal/domain"
	"hushwire/internal/util/memzero"
)

var kdfInfo = []byte("SealedSender")

// ErrSealOpenFailed is returned for any envelope this recipient cannot open.
// Wrong recipient and tampering are deliberately indistinguishable.
var ErrSealOpenFailed = errors.New("sealed: envelope open failed")

// Seal encrypts inner to the recipient's exchange key under a fresh ephemeral
// pair. When signPriv is non-nil the inner envelope gains an Ed25519 signature
// over the ephemeral public key, letting a recipient who already trusts the
// sender's signing key verify authorship (non-anonymous mode).
func Seal(inner domain.InnerEnvelope, recipient domain.X25519Public, signPriv *domain.Ed25519Private) (domain.SealedEnvelope, error) {
	ephPriv, ephPub, err := crypto.GenerateX25519()
	if err != nil {
		return domain.SealedEnvelope{}, err
	}

	if signPriv != nil {
		inner.AuthorSignature = crypto.SignEd25519(*signPriv, ephPub.Slice())
	}

	key, err := deriveKey(ephPriv, ephPub, recipient)
	memzero.Zero(ephPriv[:])
	if err != nil {
		return domain.SealedEnvelope{}, err
	}
	defer memzero.Zero(key)

	blob, err := json.Marshal(inner)
	if err != nil {
		return domain.SealedEnvelope{}, err
	}
	nonce, err := crypto.NewNonce()
	if err != nil {
		return domain.SealedEnvelope{}, err
	}
	ct, err := crypto.Seal(key, nonce, blob, ephPub.Slice())
	if err != nil {
		return domain.SealedEnvelope{}, err
	}

	return domain.SealedEnvelope{
		EphemeralKey: ephPub,
		Nonce:        nonce,
		Ciphertext:   ct,
	}, nil
}

// Open decrypts an envelope with the recipient's exchange private key and
// deserializes the inner payload. Every failure surfaces as ErrSealOpenFailed.
func Open(env domain.SealedEnvelope, recipientPriv domain.X25519Private) (domain.InnerEnvelope, error) {
	recipientPub, err := publicOf(recipientPriv)
	if err != nil {
		return domain.InnerEnvelope{}, ErrSealOpenFailed
	}
	key, err := openKey(recipientPriv, env.EphemeralKey, recipientPub)
	if err != nil {
		return domain.InnerEnvelope{}, ErrSealOpenFailed
	}
	defer memzero.Zero(key)

	blob, err := crypto.Open(key, env.Nonce, env.Ciphertext, env.EphemeralKey.Slice())
	if err != nil {
		return domain.InnerEnvelope{}, ErrSealOpenFailed
	}
	var inner domain.InnerEnvelope
	if err := json.Unmarshal(blob, &inner); err != nil {
		return domain.InnerEnvelope{}, ErrSealOpenFailed
	}
	return inner, nil
}

// VerifyAuthor checks the optional authorship signature against the envelope
// it arrived in. An unsigned envelope never verifies.
func VerifyAuthor(inner domain.InnerEnvelope, env domain.SealedEnvelope) bool {
	if len(inner.AuthorSignature) == 0 {
		return false
	}
	return crypto.VerifyEd25519(inner.SenderSigningKey, env.EphemeralKey.Slice(), inner.AuthorSignature)
}

// deriveKey binds the envelope key to both the ephemeral and recipient keys.
func deriveKey(ephPriv domain.X25519Private, ephPub, recipient domain.X25519Public) ([]byte, error) {
	dh, err := crypto.DH(ephPriv, recipient)
	if err != nil {
		return nil, err
	}
	defer memzero.Zero32(&dh)
	salt := append(append([]byte(nil), ephPub.Slice()...), recipient.Slice()...)
	return crypto.HKDF(dh[:], salt, kdfInfo, crypto.KeySize), nil
}

func openKey(recipientPriv domain.X25519Private, ephPub, recipientPub domain.X25519Public) ([]byte, error) {
	dh, err := crypto.DH(recipientPriv, ephPub)
	if err != nil {
		return nil, err
	}
	defer memzero.Zero32(&dh)
	salt := append(append([]byte(nil), ephPub.Slice()...), recipientPub.Slice()...)
	return crypto.HKDF(dh[:], salt, kdfInfo, crypto.KeySize), nil
}

func publicOf(priv domain.X25519Private) (domain.X25519Public, error) {
	pub, err := crypto.PublicKey(priv)
	if err != nil {
		return domain.X25519Public{}, err
	}
	return pub, nil
}
