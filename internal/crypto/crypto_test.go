package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestX25519Agreement(t *testing.T) {
	a, err := GenerateX25519Pair()
	require.NoError(t, err)
	b, err := GenerateX25519Pair()
	require.NoError(t, err)

	ab, err := DH(a.Priv, b.Pub)
	require.NoError(t, err)
	ba, err := DH(b.Priv, a.Pub)
	require.NoError(t, err)
	assert.Equal(t, ab, ba)
}

func TestX25519PrivateKeyClamped(t *testing.T) {
	priv, pub, err := GenerateX25519()
	require.NoError(t, err)

	assert.Zero(t, priv[0]&7)
	assert.Zero(t, priv[31]&128)
	assert.NotZero(t, priv[31]&64)

	recomputed, err := PublicKey(priv)
	require.NoError(t, err)
	assert.Equal(t, pub, recomputed)
}

func TestEd25519SignVerify(t *testing.T) {
	priv, pub, err := GenerateEd25519()
	require.NoError(t, err)

	msg := []byte("attest me")
	sig := SignEd25519(priv, msg)
	assert.True(t, VerifyEd25519(pub, msg, sig))
	assert.False(t, VerifyEd25519(pub, []byte("other"), sig))

	// Truncated and empty signatures fail closed instead of panicking.
	assert.False(t, VerifyEd25519(pub, msg, sig[:16]))
	assert.False(t, VerifyEd25519(pub, msg, nil))
}

func TestAEADDetachedRoundTrip(t *testing.T) {
	key := HKDF([]byte("ikm"), nil, []byte("test"), KeySize)
	nonce, err := NewNonce()
	require.NoError(t, err)

	ct, tag, err := SealDetached(key, nonce, []byte("payload"), []byte("ad"))
	require.NoError(t, err)
	assert.Len(t, tag, TagSize)

	pt, err := OpenDetached(key, nonce, ct, tag, []byte("ad"))
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), pt)

	_, err = OpenDetached(key, nonce, ct, tag, []byte("wrong ad"))
	assert.ErrorIs(t, err, ErrAEADOpen)

	tag[0] ^= 0x01
	_, err = OpenDetached(key, nonce, ct, tag, []byte("ad"))
	assert.ErrorIs(t, err, ErrAEADOpen)
}

func TestAEADBadLengthsFailClosed(t *testing.T) {
	key := HKDF([]byte("ikm"), nil, []byte("test"), KeySize)

	_, err := OpenDetached(key, []byte("short"), nil, make([]byte, TagSize), nil)
	assert.ErrorIs(t, err, ErrAEADOpen)
	_, err = OpenDetached(key, make([]byte, NonceSize), nil, []byte("short"), nil)
	assert.ErrorIs(t, err, ErrAEADOpen)
	_, err = Open(key, []byte("short"), nil, nil)
	assert.ErrorIs(t, err, ErrAEADOpen)
}

func TestNewNonceUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 64; i++ {
		nonce, err := NewNonce()
		require.NoError(t, err)
		require.Len(t, nonce, NonceSize)
		require.False(t, seen[string(nonce)])
		seen[string(nonce)] = true
	}
}

func TestHKDF(t *testing.T) {
	a := HKDF([]byte("ikm"), []byte("salt"), []byte("info"), 32)
	b := HKDF([]byte("ikm"), []byte("salt"), []byte("info"), 32)
	assert.Equal(t, a, b)

	c := HKDF([]byte("ikm"), []byte("salt"), []byte("other"), 32)
	assert.NotEqual(t, a, c)

	assert.Panics(t, func() { HKDF([]byte("ikm"), nil, nil, 0) })
}

func TestFingerprint(t *testing.T) {
	_, pub, err := GenerateX25519()
	require.NoError(t, err)

	fp := Fingerprint(pub)
	assert.Len(t, fp.String(), 20)
	assert.Equal(t, fp, Fingerprint(pub))

	_, other, err := GenerateX25519()
	require.NoError(t, err)
	assert.NotEqual(t, fp, Fingerprint(other))
}
