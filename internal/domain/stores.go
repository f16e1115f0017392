package domain

// IdentityStore persists your long-term identity keys.
type IdentityStore interface {
	SaveIdentity(passphrase string, id Identity) error
	LoadIdentity(passphrase string) (Identity, error)
}

// PreKeyStore manages signed and one-time pre-keys on disk. The private
// halves are sealed under the identity passphrase; every accessor that
// touches them takes it.
type PreKeyStore interface {
	// Signed pre-key
	SaveSignedPreKey(passphrase string, id SignedPreKeyID, priv X25519Private, pub X25519Public, sig []byte) error
	LoadSignedPreKey(passphrase string, id SignedPreKeyID) (priv X25519Private, pub X25519Public, sig []byte, ok bool, err error)

	// One-time pre-keys
	SaveOneTimePreKeys(passphrase string, pairs []OneTimePreKeyPair) error
	ConsumeOneTimePreKey(passphrase string, id OneTimePreKeyID) (priv X25519Private, pub X25519Public, ok bool, err error)
	ListOneTimePreKeyPublics(passphrase string) ([]OneTimePreKeyPublic, error)

	// Current signed pre-key selection
	SetCurrentSignedPreKeyID(id SignedPreKeyID) error
	CurrentSignedPreKeyID() (SignedPreKeyID, bool, error)
}

// PreKeyBundleStore caches the last bundle you registered.
type PreKeyBundleStore interface {
	SavePreKeyBundle(bundle PreKeyBundle) error
	LoadPreKeyBundle(username Username) (PreKeyBundle, bool, error)
}

// SessionStore persists established X3DH sessions.
type SessionStore interface {
	SaveSession(peer Username, session Session) error
	LoadSession(peer Username) (Session, bool, error)
	DeleteSession(peer Username) error
}

// RatchetStore keeps per-peer Double-Ratchet state. Load must return the most
// recently saved state, round-tripped exactly, or (zero, false) for first contact.
type RatchetStore interface {
	SaveConversation(peer ConversationID, conversation Conversation) error
	LoadConversation(peer ConversationID) (Conversation, bool, error)
	DeleteConversation(peer ConversationID) error
}
