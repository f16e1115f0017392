// Package x3dh implements the prekey bundle protocol: asynchronous session
// establishment from a published bundle of signed and one-time exchange keys.
package x3dh

import (
	"github.com/pkg/errors"

	"hushwire/internal/crypto"
	"hushwire/internal/domain"
	"hushwire/internal/util/memzero"
)

// SecretSize is the length of the derived shared secret.
const SecretSize = 32

var kdfInfo = []byte("hushwire-x3dh")

// ErrInvalidBundleSignature rejects session establishment when the signed
// pre-key signature does not verify. No key material is derived past it.
var ErrInvalidBundleSignature = errors.New("x3dh: invalid prekey bundle signature")

// VerifyBundle recomputes the signature check over the signed pre-key using
// the bundle's signing key. Malformed input fails closed.
func VerifyBundle(bundle domain.PreKeyBundle) bool {
	return crypto.VerifyEd25519(bundle.SigningKey, bundle.SignedPreKey.Slice(), bundle.SignedPreKeySignature)
}

// InitiatorSecret runs X3DH as the initiator against a verified bundle,
// returning the shared secret, the ephemeral public key to transmit, and the
// one-time pre-key consumed (empty id if the bundle carried none).
func InitiatorSecret(id domain.Identity, bundle domain.PreKeyBundle) (secret []byte, ephemeral domain.X25519Public, opk domain.OneTimePreKeyID, err error) {
	if !VerifyBundle(bundle) {
		return nil, ephemeral, "", ErrInvalidBundleSignature
	}

	ephPriv, ephPub, err := crypto.GenerateX25519()
	if err != nil {
		return nil, ephemeral, "", err
	}

	dh1, err := crypto.DH(id.XPriv, bundle.SignedPreKey) // DH(IK_A, SPK_B)
	if err != nil {
		return nil, ephemeral, "", err
	}
	dh2, err := crypto.DH(ephPriv, bundle.IdentityKey) // DH(EK_A, IK_B)
	if err != nil {
		return nil, ephemeral, "", err
	}
	dh3, err := crypto.DH(ephPriv, bundle.SignedPreKey) // DH(EK_A, SPK_B)
	if err != nil {
		return nil, ephemeral, "", err
	}

	concat := make([]byte, 0, 32*4)
	concat = append(concat, dh1[:]...)
	concat = append(concat, dh2[:]...)
	concat = append(concat, dh3[:]...)

	if len(bundle.OneTimePreKeys) > 0 {
		otk := bundle.OneTimePreKeys[0]
		dh4, err := crypto.DH(ephPriv, otk.Pub) // DH(EK_A, OPK_B)
		if err != nil {
			return nil, ephemeral, "", err
		}
		concat = append(concat, dh4[:]...)
		opk = otk.ID
		memzero.Zero32(&dh4)
	}

	secret = crypto.HKDF(concat, nil, kdfInfo, SecretSize)
	memzero.Zero(concat)
	memzero.Zero32(&dh1)
	memzero.Zero32(&dh2)
	memzero.Zero32(&dh3)
	memzero.Zero(ephPriv[:])
	return secret, ephPub, opk, nil
}

// ResponderSecret mirrors InitiatorSecret on the receiving side, using the
// signed pre-key private half the initiator targeted and, when the handshake
// consumed one, the matching one-time pre-key private half.
func ResponderSecret(id domain.Identity, spkPriv domain.X25519Private, opkPriv *domain.X25519Private, pre domain.PreKeyMessage) ([]byte, error) {
	dh1, err := crypto.DH(spkPriv, pre.InitiatorIdentityKey) // DH(SPK_B, IK_A)
	if err != nil {
		return nil, err
	}
	dh2, err := crypto.DH(id.XPriv, pre.EphemeralKey) // DH(IK_B, EK_A)
	if err != nil {
		return nil, err
	}
	dh3, err := crypto.DH(spkPriv, pre.EphemeralKey) // DH(SPK_B, EK_A)
	if err != nil {
		return nil, err
	}

	concat := make([]byte, 0, 32*4)
	concat = append(concat, dh1[:]...)
	concat = append(concat, dh2[:]...)
	concat = append(concat, dh3[:]...)

	if opkPriv != nil {
		dh4, err := crypto.DH(*opkPriv, pre.EphemeralKey) // DH(OPK_B, EK_A)
		if err != nil {
			return nil, err
		}
		concat = append(concat, dh4[:]...)
		memzero.Zero32(&dh4)
	}

	secret := crypto.HKDF(concat, nil, kdfInfo, SecretSize)
	memzero.Zero(concat)
	memzero.Zero32(&dh1)
	memzero.Zero32(&dh2)
	memzero.Zero32(&dh3)
	return secret, nil
}
