// Package objects implements the content-addressed object model: the
// canonical byte encoding of blobs, trees and commits, and the digest
// used to key them in the object store.
package objects

import (
	"encoding/hex"
	"fmt"
)

// Digest is a 40-character hex-encoded SHA-1 content identifier.
type Digest string

// NewDigest validates s as a 40-character hex string and returns it as a Digest.
func NewDigest(s string) (Digest, error) {
	if len(s) != 40 {
		return "", fmt.Errorf("invalid digest length: %d", len(s))
	}
	if _, err := hex.DecodeString(s); err != nil {
		return "", fmt.Errorf("invalid digest: %w", err)
	}
	return Digest(s), nil
}

// NewDigestFromBytes encodes a 20-byte SHA-1 sum as a Digest.
func NewDigestFromBytes(b [20]byte) Digest {
	return Digest(hex.EncodeToString(b[:]))
}

// Short returns the first 7 characters of the digest, or the full digest if shorter.
func (d Digest) Short() string {
	if len(d) < 7 {
		return string(d)
	}
	return string(d)[:7]
}

func (d Digest) String() string { return string(d) }

// Zero reports whether d is the empty digest (no object).
func (d Digest) Zero() bool { return d == "" }
