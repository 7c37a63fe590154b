// Package accounts discovers per-account config files and derives the
// AccountTask values the batch runner iterates over.
package accounts
