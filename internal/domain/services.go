package domain

import "context"

// IdentityService creates, retrieves, and inspects your identity keys.
type IdentityService interface {
	GenerateIdentity(passphrase string) (Identity, Fingerprint, error)
	LoadIdentity(passphrase string) (Identity, error)
	FingerprintIdentity(passphrase string) (Fingerprint, error)
}

// PreKeyService generates pre-keys and assembles your public bundle.
type PreKeyService interface {
	GenerateAndStorePreKeys(passphrase string, count int) (X25519Public, []X25519Public, error)
	BuildPreKeyBundle(passphrase string, username Username) (PreKeyBundle, error)
}

// SessionService establishes, retrieves, and tears down X3DH sessions.
type SessionService interface {
	InitiateSession(ctx context.Context, passphrase string, peer Username) (Session, error)
	GetSession(peer Username) (Session, bool, error)
	ResetSession(peer Username) error
}

// MessageService encrypts, seals, sends, fetches, opens, and decrypts messages.
type MessageService interface {
	Send(ctx context.Context, passphrase string, from, to Username, plaintext []byte) error
	Receive(ctx context.Context, passphrase string, me Username, limit int) ([]DecryptedMessage, error)
}
