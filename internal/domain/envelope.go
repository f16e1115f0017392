package domain

// SealedEnvelope is the outer, sender-hiding layer. Anything inspecting it
// learns only a fresh ephemeral public key and an opaque blob.
type SealedEnvelope struct {
	EphemeralKey X25519Public `json:"ephemeral_key"`
	Nonce        []byte       `json:"nonce"`
	Ciphertext   []byte       `json:"ciphertext"`
}

// InnerEnvelope is what a sealed envelope decrypts to. Only the intended
// recipient ever sees these fields.
type InnerEnvelope struct {
	From             Username      `json:"from"`
	SenderIdentity   X25519Public  `json:"sender_identity"`
	SenderSigningKey Ed25519Public `json:"sender_signing_key"`
	// AuthorSignature, when present, is an Ed25519 signature over the outer
	// ephemeral public key, letting a recipient who already trusts
	// SenderSigningKey verify authorship without the transport learning it.
	AuthorSignature []byte         `json:"author_signature,omitempty"`
	PreKey          *PreKeyMessage `json:"pre_key,omitempty"`
	Message         RatchetMessage `json:"message"`
}

// Envelope is the wire format posted to and fetched from the relay.
// The relay sees the recipient, never the sender.
type Envelope struct {
	To        Username       `json:"to"`
	Sealed    SealedEnvelope `json:"sealed"`
	Timestamp int64          `json:"timestamp"`
}

// DecryptedMessage is what MessageService.Receive returns.
type DecryptedMessage struct {
	From           Username `json:"from"`
	To             Username `json:"to"`
	Plaintext      []byte   `json:"plaintext"`
	AuthorVerified bool     `json:"author_verified"`
	Timestamp      int64    `json:"timestamp"`
}
