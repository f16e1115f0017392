// Package crypto is the primitive boundary: X25519 key agreement, Ed25519
// signatures, ChaCha20-Poly1305 AEAD, and HKDF-SHA256. Everything is
// byte-in/byte-out with fixed lengths (32-byte keys and secrets, 12-byte
// nonces, 16-byte tags) so envelopes stay bit-exact across implementations.
package crypto
