package prekey

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hushwire/internal/protocol/x3dh"
	"hushwire/internal/services/identity"
	"hushwire/internal/store"
)

const passphrase = "Correct-Horse-42"

func newService(t *testing.T) (*Service, *store.PreKeyFileStore) {
	t.Helper()
	dir := t.TempDir()
	ids := store.NewIdentityFileStore(dir)
	ps := store.NewPreKeyFileStore(dir)
	bs := store.NewBundleFileStore(dir)

	_, _, err := identity.New(ids).GenerateIdentity(passphrase)
	require.NoError(t, err)
	return New(ids, ps, bs), ps
}

func TestGenerateAndStorePreKeys(t *testing.T) {
	svc, ps := newService(t)

	spkPub, opkPubs, err := svc.GenerateAndStorePreKeys(passphrase, 5)
	require.NoError(t, err)
	assert.False(t, spkPub.IsZero())
	assert.Len(t, opkPubs, 5)

	id, ok, err := ps.CurrentSignedPreKeyID()
	require.NoError(t, err)
	require.True(t, ok)

	_, pub, sig, found, err := ps.LoadSignedPreKey(passphrase, id)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, spkPub, pub)
	assert.NotEmpty(t, sig)
}

func TestBuildPreKeyBundle(t *testing.T) {
	svc, _ := newService(t)

	_, _, err := svc.GenerateAndStorePreKeys(passphrase, 3)
	require.NoError(t, err)

	bundle, err := svc.BuildPreKeyBundle(passphrase, "alice")
	require.NoError(t, err)
	assert.EqualValues(t, "alice", bundle.Username)
	assert.Len(t, bundle.OneTimePreKeys, 3)

	// The signed pre-key signature must verify against the bundle itself.
	assert.True(t, x3dh.VerifyBundle(bundle))
}

func TestBuildBundleWithoutPreKeys(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.BuildPreKeyBundle(passphrase, "alice")
	assert.ErrorIs(t, err, ErrNoSignedPreKey)
}
