// Package integrity seals journal events into a tamper-evident chain and
// verifies it.
//
// Each event carries a content hash, the chain hash of its predecessor, and
// its own chain hash. With a keyring configured, chain hashes are also signed
// with an HMAC key derived per journal scope.
package integrity
