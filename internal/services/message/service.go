// Package message sends and receives sealed, ratchet-encrypted messages.
package message

import (
	"context"
	"time"

	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"

	"hushwire/internal/domain"
	"hushwire/internal/protocol/ratchet"
	"hushwire/internal/protocol/sealed"
	"hushwire/internal/protocol/x3dh"
	"hushwire/internal/util/memzero"
)

// ErrNoSession indicates there is no stored session with the peer.
var ErrNoSession = errors.New("no session with peer; initiate one first")

// Service sends and receives messages over the relay.
//
// High-level flow:
//   - Send: if no conversation exists, initialize the ratchet as sender and
//     attach a PreKeyMessage so the receiver can bootstrap. Encrypt with the
//     ratchet, then seal the result (sender identity included) to the
//     recipient's exchange key so the relay never learns who sent it.
//   - Receive: fetch envelopes, open the sealed layer, bootstrap a session
//     from the sender's PreKeyMessage if needed, decrypt, persist ratchet
//     state, then ack only what was processed.
type Service struct {
	idStore      domain.IdentityStore
	prekeyStore  domain.PreKeyStore
	ratchetStore domain.RatchetStore
	sessionStore domain.SessionStore
	relayClient  domain.RelayClient
}

// New constructs a message service with the given stores and relay client.
func New(
	idStore domain.IdentityStore,
	prekeyStore domain.PreKeyStore,
	ratchetStore domain.RatchetStore,
	sessionStore domain.SessionStore,
	relayClient domain.RelayClient,
) *Service {
	return &Service{
		idStore:      idStore,
		prekeyStore:  prekeyStore,
		ratchetStore: ratchetStore,
		sessionStore: sessionStore,
		relayClient:  relayClient,
	}
}

// Send encrypts, seals, and posts plaintext to the relay.
//
// The ratchet state is persisted before the envelope is posted, so a crash
// between the two cannot reuse a message key.
func (s *Service) Send(ctx context.Context, passphrase string, from, to domain.Username, plaintext []byte) error {
	sess, ok, err := s.sessionStore.LoadSession(to)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNoSession
	}

	id, err := s.idStore.LoadIdentity(passphrase)
	if err != nil {
		return err
	}

	conv, found, err := s.ratchetStore.LoadConversation(domain.ConversationID(to))
	if err != nil {
		return err
	}

	var pre *domain.PreKeyMessage
	if !found {
		// A responder-side session carries no handshake material; without a
		// conversation record there is nothing to ratchet from.
		if len(sess.RootKey) == 0 {
			return ErrNoSession
		}
		// First message of the conversation: initialize the ratchet as
		// sender and attach the handshake parameters the receiver needs
		// to derive the same root key.
		st, err := ratchet.InitSender(sess.RootKey, sess.PeerSignedPreKey)
		if err != nil {
			return err
		}
		conv = domain.Conversation{Peer: domain.ConversationID(to), State: st}
		pre = &domain.PreKeyMessage{
			InitiatorIdentityKey: id.XPub,
			EphemeralKey:         sess.InitiatorEphemeralKey,
			SignedPreKeyID:       sess.SignedPreKeyID,
			OneTimePreKeyID:      sess.OneTimePreKeyID,
		}
	}

	msg, err := ratchet.Encrypt(&conv.State, nil, plaintext)
	if err != nil {
		return err
	}

	if err := s.ratchetStore.SaveConversation(domain.ConversationID(to), conv); err != nil {
		return errors.Wrap(err, "persist ratchet state")
	}

	if !found && len(sess.RootKey) != 0 {
		// The handshake secret has been folded into the ratchet; the
		// long-lived session record must not keep a copy.
		memzero.Zero(sess.RootKey)
		sess.RootKey = nil
		if err := s.sessionStore.SaveSession(to, sess); err != nil {
			return errors.Wrap(err, "scrub session root key")
		}
	}

	inner := domain.InnerEnvelope{
		From:             from,
		SenderIdentity:   id.XPub,
		SenderSigningKey: id.EdPub,
		PreKey:           pre,
		Message:          msg,
	}
	env, err := sealed.Seal(inner, sess.PeerIdentityKey, &id.EdPriv)
	if err != nil {
		return err
	}

	return s.relayClient.SendEnvelope(ctx, domain.Envelope{
		To:        to,
		Sealed:    env,
		Timestamp: time.Now().Unix(),
	})
}

// Receive fetches pending envelopes, opens and decrypts them in order, and
// acks only the prefix that was processed successfully.
//
// Envelopes that fail to open or decrypt are unrecoverable for this recipient
// (not ours, replayed, or corrupted); they are dropped and acked so they never
// block the envelopes behind them. Only store failures stop the batch, leaving
// the remaining envelopes queued for the next call.
func (s *Service) Receive(ctx context.Context, passphrase string, me domain.Username, limit int) ([]domain.DecryptedMessage, error) {
	envs, err := s.relayClient.FetchEnvelopes(ctx, me, limit)
	if err != nil {
		return nil, err
	}
	if len(envs) == 0 {
		return nil, nil
	}

	id, err := s.idStore.LoadIdentity(passphrase)
	if err != nil {
		return nil, err
	}

	var out []domain.DecryptedMessage
	processed := 0

	for _, env := range envs {
		inner, err := sealed.Open(env.Sealed, id.XPriv)
		if err != nil {
			jww.WARN.Printf("Dropping unopenable envelope for %s", me)
			processed++
			continue
		}

		conv, found, err := s.ratchetStore.LoadConversation(domain.ConversationID(inner.From))
		if err != nil {
			break
		}
		if !found {
			conv, err = s.bootstrap(passphrase, id, inner)
			if err != nil {
				jww.WARN.Printf("Cannot bootstrap conversation with %s: %v", inner.From, err)
				break
			}
		}

		pt, err := ratchet.Decrypt(&conv.State, nil, inner.Message)
		if err != nil {
			if errors.Is(err, ratchet.ErrDecryptionFailed) || errors.Is(err, ratchet.ErrTooManySkipped) {
				// Redelivered, replayed, or corrupted content: retrying the
				// same envelope can never succeed, so it must not block the
				// ones behind it.
				jww.WARN.Printf("Dropping undecryptable envelope from %s: %v", inner.From, err)
				processed++
				continue
			}
			jww.WARN.Printf("Decrypt from %s failed: %v", inner.From, err)
			break
		}
		if err := s.ratchetStore.SaveConversation(domain.ConversationID(inner.From), conv); err != nil {
			return out, errors.Wrap(err, "persist ratchet state")
		}

		out = append(out, domain.DecryptedMessage{
			From:           inner.From,
			To:             me,
			Plaintext:      pt,
			AuthorVerified: sealed.VerifyAuthor(inner, env.Sealed),
			Timestamp:      env.Timestamp,
		})
		processed++
	}

	if processed > 0 {
		if err := s.relayClient.AckEnvelopes(ctx, me, processed); err != nil {
			jww.ERROR.Printf("Ack of %d envelopes failed: %v", processed, err)
		}
	}
	return out, nil
}

// bootstrap initializes the receiving side of a conversation from the
// PreKeyMessage attached to the first envelope.
func (s *Service) bootstrap(passphrase string, id domain.Identity, inner domain.InnerEnvelope) (domain.Conversation, error) {
	pre := inner.PreKey
	if pre == nil {
		return domain.Conversation{}, errors.New("first envelope carries no prekey message")
	}
	if pre.InitiatorIdentityKey != inner.SenderIdentity {
		return domain.Conversation{}, errors.New("prekey identity does not match envelope sender")
	}

	spkPriv, spkPub, _, ok, err := s.prekeyStore.LoadSignedPreKey(passphrase, pre.SignedPreKeyID)
	if err != nil {
		return domain.Conversation{}, err
	}
	if !ok {
		return domain.Conversation{}, errors.Errorf("unknown signed prekey %s", pre.SignedPreKeyID)
	}

	var opkPriv *domain.X25519Private
	if pre.OneTimePreKeyID != "" {
		priv, _, ok, err := s.prekeyStore.ConsumeOneTimePreKey(passphrase, pre.OneTimePreKeyID)
		if err != nil {
			return domain.Conversation{}, err
		}
		if !ok {
			return domain.Conversation{}, errors.Errorf("one-time prekey %s already consumed", pre.OneTimePreKeyID)
		}
		opkPriv = &priv
	}

	secret, err := x3dh.ResponderSecret(id, spkPriv, opkPriv, *pre)
	if err != nil {
		return domain.Conversation{}, err
	}
	st, err := ratchet.InitReceiver(secret, domain.X25519Pair{Priv: spkPriv, Pub: spkPub})
	if err != nil {
		return domain.Conversation{}, err
	}

	// Record a responder-side session so replies can be sealed back to the
	// initiator's exchange key.
	sess := domain.Session{
		PeerUsername:    inner.From,
		PeerIdentityKey: inner.SenderIdentity,
		PeerSigningKey:  inner.SenderSigningKey,
		CreatedUTC:      time.Now().Unix(),
	}
	if err := s.sessionStore.SaveSession(inner.From, sess); err != nil {
		return domain.Conversation{}, errors.Wrap(err, "save responder session")
	}

	jww.INFO.Printf("Bootstrapped conversation with %s", inner.From)
	return domain.Conversation{Peer: domain.ConversationID(inner.From), State: st}, nil
}

// Compile-time assertion that Service implements domain.MessageService.
var _ domain.MessageService = (*Service)(nil)
