// Package cli assembles the relgate command-line interface, wiring
// configuration loading, structured logging, and the release command.
package cli
