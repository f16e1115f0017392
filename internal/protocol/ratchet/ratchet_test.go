package ratchet

import (
	"crypto/rand"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hushwire/internal/crypto"
	"hushwire/internal/domain"
)

// newPair returns states for both ends of a fresh conversation: alice
// initialized as sender against bob's signed prekey, bob as receiver.
func newPair(t *testing.T) (alice, bob domain.RatchetState) {
	t.Helper()

	secret := make([]byte, 32)
	_, err := rand.Read(secret)
	require.NoError(t, err)

	spk, err := crypto.GenerateX25519Pair()
	require.NoError(t, err)

	alice, err = InitSender(secret, spk.Pub)
	require.NoError(t, err)
	bob, err = InitReceiver(secret, spk)
	require.NoError(t, err)
	return alice, bob
}

func TestInitStates(t *testing.T) {
	alice, bob := newPair(t)

	// Sender carries a fresh sending chain from the immediate DH step.
	assert.NotEmpty(t, alice.SendChainKey)
	assert.Empty(t, alice.RecvChainKey)

	// Receiver has only the root key; chains activate on first receipt.
	assert.Empty(t, bob.SendChainKey)
	assert.Empty(t, bob.RecvChainKey)
	assert.NotEmpty(t, bob.RootKey)

	// The immediate DH step already moved the sender's root key on.
	assert.NotEqual(t, bob.RootKey, alice.RootKey)
}

func TestEncryptBeforeChainFails(t *testing.T) {
	_, bob := newPair(t)

	_, err := Encrypt(&bob, nil, []byte("too early"))
	assert.ErrorIs(t, err, ErrChainNotInitialized)
}

func TestRoundTrip(t *testing.T) {
	alice, bob := newPair(t)

	msg, err := Encrypt(&alice, nil, []byte("hi"))
	require.NoError(t, err)
	assert.EqualValues(t, 1, alice.SendCount)
	assert.Len(t, msg.Nonce, crypto.NonceSize)
	assert.Len(t, msg.Tag, crypto.TagSize)

	pt, err := Decrypt(&bob, nil, msg)
	require.NoError(t, err)
	assert.Equal(t, []byte("hi"), pt)
}

// The concrete conversation: Alice -> "hi", Bob -> "hello", then Alice sends
// three messages that Bob decrypts in order 2, 0, 1.
func TestConversationScenario(t *testing.T) {
	alice, bob := newPair(t)

	m, err := Encrypt(&alice, nil, []byte("hi"))
	require.NoError(t, err)
	pt, err := Decrypt(&bob, nil, m)
	require.NoError(t, err)
	require.Equal(t, []byte("hi"), pt)

	// Bob's first send performs his DH ratchet step.
	m, err = Encrypt(&bob, nil, []byte("hello"))
	require.NoError(t, err)
	pt, err = Decrypt(&alice, nil, m)
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), pt)

	msgs := make([]domain.RatchetMessage, 3)
	for i, text := range []string{"zero", "one", "two"} {
		msgs[i], err = Encrypt(&alice, nil, []byte(text))
		require.NoError(t, err)
	}

	pt, err = Decrypt(&bob, nil, msgs[2])
	require.NoError(t, err)
	assert.Equal(t, []byte("two"), pt)
	assert.Len(t, bob.Skipped, 2)

	pt, err = Decrypt(&bob, nil, msgs[0])
	require.NoError(t, err)
	assert.Equal(t, []byte("zero"), pt)

	pt, err = Decrypt(&bob, nil, msgs[1])
	require.NoError(t, err)
	assert.Equal(t, []byte("one"), pt)

	// Every cached key was consumed.
	assert.Empty(t, bob.Skipped)
}

func TestOutOfOrderWithinFirstChain(t *testing.T) {
	alice, bob := newPair(t)

	var msgs []domain.RatchetMessage
	for _, text := range []string{"a", "b", "c"} {
		m, err := Encrypt(&alice, nil, []byte(text))
		require.NoError(t, err)
		msgs = append(msgs, m)
	}

	for _, i := range []int{2, 0, 1} {
		pt, err := Decrypt(&bob, nil, msgs[i])
		require.NoError(t, err)
		assert.Equal(t, []byte{"abc"[i]}, pt)
	}
	assert.Empty(t, bob.Skipped)
}

func TestReplayRejected(t *testing.T) {
	alice, bob := newPair(t)

	m, err := Encrypt(&alice, nil, []byte("once"))
	require.NoError(t, err)

	_, err = Decrypt(&bob, nil, m)
	require.NoError(t, err)

	_, err = Decrypt(&bob, nil, m)
	assert.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestDHRatchetRefreshesKeys(t *testing.T) {
	alice, bob := newPair(t)

	m1, err := Encrypt(&alice, nil, []byte("first"))
	require.NoError(t, err)
	_, err = Decrypt(&bob, nil, m1)
	require.NoError(t, err)

	rootBefore := append([]byte(nil), alice.RootKey...)
	peerBefore := alice.PeerDHPub

	// Bob's reply carries a new ratchet key, forcing Alice's DH step.
	m2, err := Encrypt(&bob, nil, []byte("reply"))
	require.NoError(t, err)
	_, err = Decrypt(&alice, nil, m2)
	require.NoError(t, err)

	assert.NotEqual(t, rootBefore, alice.RootKey)
	assert.NotEqual(t, peerBefore, alice.PeerDHPub)
	assert.Equal(t, m2.RatchetKey, alice.PeerDHPub)
	assert.NotEmpty(t, alice.RecvChainKey)
}

// Messages left unreceived on the previous chain are cached when the peer's
// new ratchet key arrives, bounded by the transmitted chain length.
func TestPreviousChainKeysCachedAcrossRatchet(t *testing.T) {
	alice, bob := newPair(t)

	m0, err := Encrypt(&alice, nil, []byte("m0"))
	require.NoError(t, err)
	m1, err := Encrypt(&alice, nil, []byte("m1"))
	require.NoError(t, err)
	m2, err := Encrypt(&alice, nil, []byte("m2"))
	require.NoError(t, err)

	// Bob sees only the first message before replying.
	_, err = Decrypt(&bob, nil, m0)
	require.NoError(t, err)
	reply, err := Encrypt(&bob, nil, []byte("reply"))
	require.NoError(t, err)
	_, err = Decrypt(&alice, nil, reply)
	require.NoError(t, err)

	// Alice moves to a new chain; its first message advertises the old
	// chain's length so Bob caches exactly the two he missed.
	m3, err := Encrypt(&alice, nil, []byte("m3"))
	require.NoError(t, err)
	assert.EqualValues(t, 3, m3.PreviousChainLength)
	assert.EqualValues(t, 0, m3.MessageIndex)

	pt, err := Decrypt(&bob, nil, m3)
	require.NoError(t, err)
	assert.Equal(t, []byte("m3"), pt)
	assert.Len(t, bob.Skipped, 2)

	pt, err = Decrypt(&bob, nil, m2)
	require.NoError(t, err)
	assert.Equal(t, []byte("m2"), pt)
	pt, err = Decrypt(&bob, nil, m1)
	require.NoError(t, err)
	assert.Equal(t, []byte("m1"), pt)
	assert.Empty(t, bob.Skipped)
}

func TestTamperRejectedWithoutStateChange(t *testing.T) {
	flip := func(name string, corrupt func(*domain.RatchetMessage)) {
		t.Run(name, func(t *testing.T) {
			alice, bob := newPair(t)

			m, err := Encrypt(&alice, nil, []byte("intact"))
			require.NoError(t, err)
			corrupt(&m)

			before, err := json.Marshal(bob)
			require.NoError(t, err)

			_, err = Decrypt(&bob, nil, m)
			assert.ErrorIs(t, err, ErrDecryptionFailed)

			after, err := json.Marshal(bob)
			require.NoError(t, err)
			assert.JSONEq(t, string(before), string(after), "failed decrypt must not mutate state")
		})
	}

	flip("ciphertext", func(m *domain.RatchetMessage) { m.Ciphertext[0] ^= 0x01 })
	flip("nonce", func(m *domain.RatchetMessage) { m.Nonce[0] ^= 0x01 })
	flip("tag", func(m *domain.RatchetMessage) { m.Tag[0] ^= 0x01 })
}

func TestAssociatedDataMismatch(t *testing.T) {
	alice, bob := newPair(t)

	m, err := Encrypt(&alice, []byte("conversation-a"), []byte("payload"))
	require.NoError(t, err)

	_, err = Decrypt(&bob, []byte("conversation-b"), m)
	assert.ErrorIs(t, err, ErrDecryptionFailed)

	pt, err := Decrypt(&bob, []byte("conversation-a"), m)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), pt)
}

func TestTooManySkipped(t *testing.T) {
	alice, bob := newPair(t)

	// Establish the receiving chain first.
	m, err := Encrypt(&alice, nil, []byte("start"))
	require.NoError(t, err)
	_, err = Decrypt(&bob, nil, m)
	require.NoError(t, err)

	m, err = Encrypt(&alice, nil, []byte("far"))
	require.NoError(t, err)
	m.MessageIndex = maxSkipPerCall + 2

	_, err = Decrypt(&bob, nil, m)
	assert.ErrorIs(t, err, ErrTooManySkipped)
}

func TestSkippedCacheEviction(t *testing.T) {
	alice, bob := newPair(t)

	// Skip far enough to overflow the cache; the oldest entries go first.
	for i := 0; i < maxSkippedKeys+10; i++ {
		_, err := Encrypt(&alice, nil, []byte("x"))
		require.NoError(t, err)
	}
	m, err := Encrypt(&alice, nil, []byte("latest"))
	require.NoError(t, err)

	pt, err := Decrypt(&bob, nil, m)
	require.NoError(t, err)
	assert.Equal(t, []byte("latest"), pt)
	assert.Len(t, bob.Skipped, maxSkippedKeys)
	assert.EqualValues(t, 10, bob.Skipped[0].MessageIndex, "oldest entries evicted first")
}

// A state serialized mid-conversation, including skipped keys, must resume
// exactly where it left off.
func TestStateSerializationRoundTrip(t *testing.T) {
	alice, bob := newPair(t)

	var msgs []domain.RatchetMessage
	for _, text := range []string{"a", "b", "c"} {
		m, err := Encrypt(&alice, nil, []byte(text))
		require.NoError(t, err)
		msgs = append(msgs, m)
	}

	// Receive the last message so two keys land in the cache.
	_, err := Decrypt(&bob, nil, msgs[2])
	require.NoError(t, err)
	require.Len(t, bob.Skipped, 2)

	raw, err := json.Marshal(bob)
	require.NoError(t, err)
	var restored domain.RatchetState
	require.NoError(t, json.Unmarshal(raw, &restored))

	pt, err := Decrypt(&restored, nil, msgs[0])
	require.NoError(t, err)
	assert.Equal(t, []byte("a"), pt)
	pt, err = Decrypt(&restored, nil, msgs[1])
	require.NoError(t, err)
	assert.Equal(t, []byte("b"), pt)
	assert.Empty(t, restored.Skipped)
}

func TestLongAlternatingConversation(t *testing.T) {
	alice, bob := newPair(t)

	for i := 0; i < 20; i++ {
		m, err := Encrypt(&alice, nil, []byte{byte(i)})
		require.NoError(t, err)
		pt, err := Decrypt(&bob, nil, m)
		require.NoError(t, err)
		require.Equal(t, []byte{byte(i)}, pt)

		m, err = Encrypt(&bob, nil, []byte{byte(i), byte(i)})
		require.NoError(t, err)
		pt, err = Decrypt(&alice, nil, m)
		require.NoError(t, err)
		require.Equal(t, []byte{byte(i), byte(i)}, pt)
	}
}
