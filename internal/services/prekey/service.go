// Package prekey manages pre-key pairs and assembles the public bundle.
package prekey

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"

	"hushwire/internal/crypto"
	"hushwire/internal/domain"
)

// ErrNoSignedPreKey indicates no current signed pre-key has been generated yet.
var ErrNoSignedPreKey = errors.New("no signed prekey available; run register first")

// Service manages prekey pairs and builds the public bundle.
type Service struct {
	ids domain.IdentityStore
	ps  domain.PreKeyStore
	bs  domain.PreKeyBundleStore
}

// New constructs a prekey service from the given stores.
func New(ids domain.IdentityStore, ps domain.PreKeyStore, bs domain.PreKeyBundleStore) *Service {
	return &Service{ids: ids, ps: ps, bs: bs}
}

// GenerateAndStorePreKeys creates a signed pre-key pair and count one-time
// pairs, signs the signed pre-key public with the identity signing key, and
// marks the new signed pre-key as current.
func (s *Service) GenerateAndStorePreKeys(passphrase string, count int) (domain.X25519Public, []domain.X25519Public, error) {
	id, err := s.ids.LoadIdentity(passphrase)
	if err != nil {
		return domain.X25519Public{}, nil, err
	}

	// Signed pre-key
	spkPriv, spkPub, err := crypto.GenerateX25519()
	if err != nil {
		return domain.X25519Public{}, nil, err
	}
	spkID := domain.SignedPreKeyID(fmt.Sprintf("spk-%d", time.Now().Unix()))
	sig := crypto.SignEd25519(id.EdPriv, spkPub.Slice())
	if err := s.ps.SaveSignedPreKey(passphrase, spkID, spkPriv, spkPub, sig); err != nil {
		return domain.X25519Public{}, nil, errors.Wrap(err, "save signed prekey")
	}
	if err := s.ps.SetCurrentSignedPreKeyID(spkID); err != nil {
		return domain.X25519Public{}, nil, err
	}

	// One-time pre-keys
	pairs := make([]domain.OneTimePreKeyPair, 0, count)
	publics := make([]domain.X25519Public, 0, count)
	for i := 0; i < count; i++ {
		priv, pub, err := crypto.GenerateX25519()
		if err != nil {
			return domain.X25519Public{}, nil, err
		}
		opkID := domain.OneTimePreKeyID(fmt.Sprintf("opk-%d-%d", time.Now().Unix(), i))
		pairs = append(pairs, domain.OneTimePreKeyPair{ID: opkID, Priv: priv, Pub: pub})
		publics = append(publics, pub)
	}
	if err := s.ps.SaveOneTimePreKeys(passphrase, pairs); err != nil {
		return domain.X25519Public{}, nil, errors.Wrap(err, "save one-time prekeys")
	}
	jww.INFO.Printf("Generated signed prekey %s and %d one-time prekeys", spkID, count)
	return spkPub, publics, nil
}

// BuildPreKeyBundle assembles the public bundle from the current signed
// pre-key and the remaining one-time publics, caches it, and returns it.
func (s *Service) BuildPreKeyBundle(passphrase string, username domain.Username) (domain.PreKeyBundle, error) {
	id, err := s.ids.LoadIdentity(passphrase)
	if err != nil {
		return domain.PreKeyBundle{}, err
	}

	spkID, ok, err := s.ps.CurrentSignedPreKeyID()
	if err != nil {
		return domain.PreKeyBundle{}, err
	}
	if !ok {
		return domain.PreKeyBundle{}, ErrNoSignedPreKey
	}
	_, spkPub, sig, found, err := s.ps.LoadSignedPreKey(passphrase, spkID)
	if err != nil {
		return domain.PreKeyBundle{}, err
	}
	if !found {
		return domain.PreKeyBundle{}, ErrNoSignedPreKey
	}

	oneTime, err := s.ps.ListOneTimePreKeyPublics(passphrase)
	if err != nil {
		return domain.PreKeyBundle{}, err
	}

	b := domain.PreKeyBundle{
		Username:              username,
		IdentityKey:           id.XPub,
		SigningKey:            id.EdPub,
		SignedPreKeyID:        spkID,
		SignedPreKey:          spkPub,
		SignedPreKeySignature: sig,
		OneTimePreKeys:        oneTime,
	}
	if err := s.bs.SavePreKeyBundle(b); err != nil {
		return domain.PreKeyBundle{}, err
	}
	return b, nil
}

// Compile-time assertion that Service implements domain.PreKeyService.
var _ domain.PreKeyService = (*Service)(nil)
