package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainTypeKey = "synth/typekey/v1"
)

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Hash returns the content-addressed identity of the key.
// Equal keys always hash equal; the hash is stable across processes.
func (k Key) Hash() (string, error) {
	canonical, err := k.Canonical()
	if err != nil {
		return "", fmt.Errorf("Key.Hash: %w", err)
	}
	return hashWithDomain(DomainTypeKey, canonical), nil
}

// MustHash is like Hash but panics on error.
// Keys built from valid TypeRefs and signatures always marshal.
func (k Key) MustHash() string {
	h, err := k.Hash()
	if err != nil {
		panic(err)
	}
	return h
}
