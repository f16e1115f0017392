package crypto

import (
	"crypto/rand"

	"github.com/pkg/errors"
	"golang.org/x/crypto/chacha20poly1305"
)

const (
	// KeySize is the AEAD key length in bytes.
	KeySize = chacha20poly1305.KeySize
	// NonceSize is the AEAD nonce length in bytes.
	NonceSize = chacha20poly1305.NonceSize
	// TagSize is the AEAD authentication tag length in bytes.
	TagSize = chacha20poly1305.Overhead
)

// ErrAEADOpen is returned when authenticated decryption fails.
var ErrAEADOpen = errors.New("aead: authentication failed")

// NewNonce returns a fresh random 12-byte nonce.
func NewNonce() ([]byte, error) {
	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	return nonce, nil
}

// SealDetached encrypts plaintext with ChaCha20-Poly1305 and returns the
// ciphertext and the 16-byte tag separately.
func SealDetached(key, nonce, plaintext, ad []byte) (ciphertext, tag []byte, err error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, nil, err
	}
	sealed := aead.Seal(nil, nonce, plaintext, ad)
	n := len(sealed) - TagSize
	return sealed[:n], sealed[n:], nil
}

// OpenDetached authenticates and decrypts a detached ciphertext+tag pair.
func OpenDetached(key, nonce, ciphertext, tag, ad []byte) ([]byte, error) {
	if len(nonce) != NonceSize || len(tag) != TagSize {
		return nil, ErrAEADOpen
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	sealed := make([]byte, 0, len(ciphertext)+TagSize)
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)
	pt, err := aead.Open(nil, nonce, sealed, ad)
	if err != nil {
		return nil, ErrAEADOpen
	}
	return pt, nil
}

// Seal encrypts plaintext with the tag appended to the ciphertext.
func Seal(key, nonce, plaintext, ad []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	return aead.Seal(nil, nonce, plaintext, ad), nil
}

// Open decrypts a ciphertext produced by Seal.
func Open(key, nonce, ciphertext, ad []byte) ([]byte, error) {
	if len(nonce) != NonceSize {
		return nil, ErrAEADOpen
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	pt, err := aead.Open(nil, nonce, ciphertext, ad)
	if err != nil {
		return nil, ErrAEADOpen
	}
	return pt, nil
}
