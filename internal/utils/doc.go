// Package utils collects shared infrastructure for the relgate CLI:
// configuration loading, logger construction, context plumbing, and output
// helpers.
package utils
