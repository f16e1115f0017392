// Package store persists identities, pre-keys, sessions, and ratchet state
// as JSON files under a single directory. Writes go through a temp file and
// rename so a crash never leaves a torn file; the identity is additionally
// sealed under a passphrase-derived key.
package store
