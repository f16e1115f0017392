// Package ratchet implements the Double Ratchet state machine: a symmetric
// key ratchet per message for forward secrecy, and a Diffie-Hellman ratchet
// step whenever a new peer ratchet key is observed. Out-of-order messages are
// tolerated through a bounded cache of skipped message keys.
//
// Operations on one state are not safe for concurrent use; callers must
// serialize them per conversation. Different conversations are independent.
package ratchet
