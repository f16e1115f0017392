package domain

// RatchetMessage is the output of one ratchet encryption step. Every field is
// load-bearing on the wire: 32-byte ratchet key, 12-byte nonce, 16-byte tag.
type RatchetMessage struct {
	RatchetKey          X25519Public `json:"ratchet_key"`
	PreviousChainLength uint32       `json:"pn"`
	MessageIndex        uint32       `json:"n"`
	Nonce               []byte       `json:"nonce"`
	Ciphertext          []byte       `json:"ciphertext"`
	Tag                 []byte       `json:"tag"`
}

// SkippedKey caches a message key for a message that has not arrived yet.
// RatchetKey identifies the receiving chain the key was derived from.
type SkippedKey struct {
	RatchetKey   X25519Public `json:"ratchet_key"`
	MessageIndex uint32       `json:"n"`
	MessageKey   []byte       `json:"mk"`
}

// RatchetState contains all fields the Double Ratchet needs to track.
// Skipped is ordered oldest-first so eviction can drop the oldest entry.
type RatchetState struct {
	RootKey             []byte        `json:"root_key"`
	DHPriv              X25519Private `json:"dh_priv"`
	DHPub               X25519Public  `json:"dh_pub"`
	PeerDHPub           X25519Public  `json:"peer_dh_pub"`
	SendChainKey        []byte        `json:"send_ck,omitempty"`
	RecvChainKey        []byte        `json:"recv_ck,omitempty"`
	SendCount           uint32        `json:"ns"`
	RecvCount           uint32        `json:"nr"`
	PreviousChainLength uint32        `json:"pn"`
	Skipped             []SkippedKey  `json:"skipped,omitempty"`
}

// Clone returns a deep copy so decryption can work on scratch state and
// commit only on success.
func (s RatchetState) Clone() RatchetState {
	out := s
	out.RootKey = append([]byte(nil), s.RootKey...)
	out.SendChainKey = append([]byte(nil), s.SendChainKey...)
	out.RecvChainKey = append([]byte(nil), s.RecvChainKey...)
	out.Skipped = make([]SkippedKey, len(s.Skipped))
	for i, sk := range s.Skipped {
		sk.MessageKey = append([]byte(nil), sk.MessageKey...)
		out.Skipped[i] = sk
	}
	return out
}

// Conversation persists the ratchet state for a peer.
type Conversation struct {
	Peer  ConversationID `json:"peer"`
	State RatchetState   `json:"state"`
}
