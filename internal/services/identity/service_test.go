package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hushwire/internal/store"
)

const goodPassphrase = "Correct-Horse-42"

func TestGenerateAndLoadIdentity(t *testing.T) {
	svc := New(store.NewIdentityFileStore(t.TempDir()))

	id, fp, err := svc.GenerateIdentity(goodPassphrase)
	require.NoError(t, err)
	assert.Len(t, string(fp), 20)
	assert.False(t, id.XPub.IsZero())

	loaded, err := svc.LoadIdentity(goodPassphrase)
	require.NoError(t, err)
	assert.Equal(t, id, loaded)

	got, err := svc.FingerprintIdentity(goodPassphrase)
	require.NoError(t, err)
	assert.Equal(t, fp, got)
}

func TestPassphrasePolicy(t *testing.T) {
	svc := New(store.NewIdentityFileStore(t.TempDir()))

	weak := []string{
		"",
		"short1A!",
		"nouppercase1!aaa",
		"NOLOWERCASE1!AAA",
		"NoDigitsHere!!aa",
		"NoSymbolsHere12a",
	}
	for _, p := range weak {
		_, _, err := svc.GenerateIdentity(p)
		assert.ErrorIs(t, err, ErrWeakPassphrase, "passphrase %q should be rejected", p)
	}

	_, _, err := svc.GenerateIdentity(goodPassphrase)
	assert.NoError(t, err)
}

func TestLoadWithWrongPassphrase(t *testing.T) {
	svc := New(store.NewIdentityFileStore(t.TempDir()))

	_, _, err := svc.GenerateIdentity(goodPassphrase)
	require.NoError(t, err)

	_, err = svc.LoadIdentity("Wrong-Horse-43!")
	assert.Error(t, err)
}
