package crypto

import (
	"crypto/sha256"
	"encoding/hex"

	"hushwire/internal/domain"
)

// Fingerprint returns the short identifier shown to users for an exchange
// public key: SHA-256 of the key, truncated to 10 bytes of hex.
func Fingerprint(pub domain.X25519Public) domain.Fingerprint {
	sum := sha256.Sum256(pub.Slice())
	return domain.Fingerprint(hex.EncodeToString(sum[:10]))
}
