// Package session performs prekey-bundle session establishment and teardown.
package session

import (
	"context"
	"time"

	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"

	"hushwire/internal/domain"
	"hushwire/internal/protocol/x3dh"
)

// Service establishes X3DH sessions and persists them.
//
// A session represents the shared root key and associated metadata needed for
// a Double Ratchet conversation with a peer. This service handles:
//   - Retrieving our own identity keys.
//   - Fetching the peer's prekey bundle from the relay.
//   - Running the X3DH key agreement as the initiator.
//   - Persisting the resulting session for later message encryption.
type Service struct {
	idStore      domain.IdentityStore
	sessionStore domain.SessionStore
	ratchetStore domain.RatchetStore
	relayClient  domain.RelayClient
}

// New constructs a session service with the given stores and relay client.
func New(
	idStore domain.IdentityStore,
	sessionStore domain.SessionStore,
	ratchetStore domain.RatchetStore,
	relayClient domain.RelayClient,
) *Service {
	return &Service{
		idStore:      idStore,
		sessionStore: sessionStore,
		ratchetStore: ratchetStore,
		relayClient:  relayClient,
	}
}

// InitiateSession runs X3DH against the peer's prekey bundle and stores the
// resulting session. Bundle verification happens before any key material is
// derived; an invalid signature aborts the handshake entirely.
func (s *Service) InitiateSession(ctx context.Context, passphrase string, peer domain.Username) (domain.Session, error) {
	id, err := s.idStore.LoadIdentity(passphrase)
	if err != nil {
		return domain.Session{}, err
	}

	bundle, err := s.relayClient.FetchPreKeyBundle(ctx, peer)
	if err != nil {
		return domain.Session{}, errors.Wrapf(err, "fetch bundle for %s", peer)
	}

	rootKey, ephemeralPub, opkID, err := x3dh.InitiatorSecret(id, bundle)
	if err != nil {
		return domain.Session{}, err
	}

	session := domain.Session{
		PeerUsername:          peer,
		RootKey:               rootKey,
		PeerSignedPreKey:      bundle.SignedPreKey,
		PeerIdentityKey:       bundle.IdentityKey,
		PeerSigningKey:        bundle.SigningKey,
		CreatedUTC:            time.Now().Unix(),
		SignedPreKeyID:        bundle.SignedPreKeyID,
		OneTimePreKeyID:       opkID,
		InitiatorEphemeralKey: ephemeralPub,
	}

	if err := s.sessionStore.SaveSession(peer, session); err != nil {
		return domain.Session{}, errors.Wrap(err, "save session")
	}
	jww.INFO.Printf("Established session with %s (spk %s)", peer, bundle.SignedPreKeyID)
	return session, nil
}

// GetSession retrieves a stored session for the given peer.
func (s *Service) GetSession(peer domain.Username) (domain.Session, bool, error) {
	return s.sessionStore.LoadSession(peer)
}

// ResetSession clears the session and ratchet state for peer. Sessions are
// never deleted implicitly; this is the explicit teardown path.
func (s *Service) ResetSession(peer domain.Username) error {
	if err := s.sessionStore.DeleteSession(peer); err != nil {
		return err
	}
	if err := s.ratchetStore.DeleteConversation(domain.ConversationID(peer)); err != nil {
		return err
	}
	jww.WARN.Printf("Reset session with %s", peer)
	return nil
}

// Compile-time assertion that Service implements domain.SessionService.
var _ domain.SessionService = (*Service)(nil)
