// Package app wires stores, services, and the relay client into the
// dependency graph consumed by the CLI.
package app
