// Command relay runs a minimal in-memory relay server for development and
// testing: a prekey bundle registry plus per-recipient mailboxes of sealed
// envelopes. Nothing is persisted across restarts.
package main
