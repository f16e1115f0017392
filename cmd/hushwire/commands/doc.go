// Package commands defines the hushwire CLI and wires dependencies for subcommands.
//
// Commands
//
//   - init         Create the local identity
//   - fingerprint  Print the identity fingerprint
//   - register     Generate prekeys and publish your bundle to a relay
//   - session      Establish a session with a peer from their prekey bundle
//   - send         Encrypt, seal, and send a message
//   - recv         Fetch, open, and decrypt queued messages
//   - reset        Tear down the session and ratchet state for a peer
//
// The root command builds the dependency graph (stores, services, relay
// client) before any subcommand runs. Flags are bound through viper, so every
// option can also come from a HUSHWIRE_* environment variable.
package commands
