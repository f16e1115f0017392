package relay

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hushwire/internal/domain"
)

func newTestClient(t *testing.T) *HTTP {
	t.Helper()
	srv := httptest.NewServer(NewHandler())
	t.Cleanup(srv.Close)
	return NewHTTP(srv.URL, srv.Client())
}

func TestBundleRegisterAndFetch(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	bundle := domain.PreKeyBundle{
		Username:              "bob",
		SignedPreKeyID:        "spk-1",
		SignedPreKeySignature: []byte("sig"),
		OneTimePreKeys: []domain.OneTimePreKeyPublic{
			{ID: "opk-1"},
			{ID: "opk-2"},
		},
	}
	require.NoError(t, c.RegisterPreKeyBundle(ctx, bundle))

	// Each fetch hands out exactly one one-time prekey.
	got, err := c.FetchPreKeyBundle(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, got.OneTimePreKeys, 1)
	assert.EqualValues(t, "opk-1", got.OneTimePreKeys[0].ID)

	got, err = c.FetchPreKeyBundle(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, got.OneTimePreKeys, 1)
	assert.EqualValues(t, "opk-2", got.OneTimePreKeys[0].ID)

	// Pool exhausted: the bundle still serves, without a one-time key.
	got, err = c.FetchPreKeyBundle(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, got.OneTimePreKeys)
	assert.EqualValues(t, "spk-1", got.SignedPreKeyID)
}

func TestFetchUnknownBundle(t *testing.T) {
	c := newTestClient(t)
	_, err := c.FetchPreKeyBundle(context.Background(), "nobody")
	assert.Error(t, err)
}

func TestMailboxFIFO(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	for i := byte(0); i < 3; i++ {
		require.NoError(t, c.SendEnvelope(ctx, domain.Envelope{
			To:     "bob",
			Sealed: domain.SealedEnvelope{Ciphertext: []byte{i}},
		}))
	}

	envs, err := c.FetchEnvelopes(ctx, "bob", 2)
	require.NoError(t, err)
	require.Len(t, envs, 2)
	assert.Equal(t, []byte{0}, envs[0].Sealed.Ciphertext)
	assert.Equal(t, []byte{1}, envs[1].Sealed.Ciphertext)

	// Fetch without ack does not drain the mailbox.
	envs, err = c.FetchEnvelopes(ctx, "bob", 0)
	require.NoError(t, err)
	require.Len(t, envs, 3)

	require.NoError(t, c.AckEnvelopes(ctx, "bob", 2))
	envs, err = c.FetchEnvelopes(ctx, "bob", 0)
	require.NoError(t, err)
	require.Len(t, envs, 1)
	assert.Equal(t, []byte{2}, envs[0].Sealed.Ciphertext)

	// Over-acking clears whatever is left.
	require.NoError(t, c.AckEnvelopes(ctx, "bob", 10))
	envs, err = c.FetchEnvelopes(ctx, "bob", 0)
	require.NoError(t, err)
	assert.Empty(t, envs)
}

func TestMailboxesIsolated(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	require.NoError(t, c.SendEnvelope(ctx, domain.Envelope{To: "bob"}))

	envs, err := c.FetchEnvelopes(ctx, "carol", 0)
	require.NoError(t, err)
	assert.Empty(t, envs)
}
