package crypto

import (
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"
)

// HKDF expands ikm into n bytes of key material using HKDF-SHA256.
// Asking for zero or negative output is a contract violation.
func HKDF(ikm, salt, info []byte, n int) []byte {
	if n <= 0 {
		panic("crypto: hkdf output length must be positive")
	}
	out := make([]byte, n)
	r := hkdf.New(sha256.New, ikm, salt, info)
	if _, err := io.ReadFull(r, out); err != nil {
		// Only reachable past the HKDF entropy limit (255*32 bytes),
		// far beyond any length this code requests.
		panic("crypto: hkdf expansion failed: " + err.Error())
	}
	return out
}
