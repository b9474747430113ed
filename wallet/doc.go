// Package wallet is the custodial wallet store. It holds each user's signing
// key on their behalf, keyed by the social-media user ID, and creates new
// accounts from freshly generated mnemonics.
//
// Both halves of a key pair are stored as one record so a concurrent logout
// can never leave a reader with a secret key and no public key, or the
// reverse.
package wallet
