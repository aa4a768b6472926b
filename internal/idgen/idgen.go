// Package idgen mints room codes and opaque entity IDs.
//
// Room codes need a human-typeable shape (6 chars, uppercase alphanumeric)
// and collision checking against the set of currently live codes; entity
// IDs (participants, chat messages, queue items) just need to be opaque
// and unique, so they reuse the teacher's google/uuid dependency the way
// domain.NewUser already does.
package idgen

import (
	"crypto/rand"
	"math/big"

	"github.com/google/uuid"
)

const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength   = 6
)

// NewID mints an opaque entity ID (participant, message, queue item).
func NewID() string {
	return uuid.NewString()
}

// NewRoomCode mints a 6-char uppercase alphanumeric room code.
// Collision checking against live codes is the caller's (registry's)
// responsibility; this function only produces a candidate.
func NewRoomCode() string {
	b := make([]byte, codeLength)
	for i := range b {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeAlphabet))))
		if err != nil {
			// crypto/rand failures are effectively impossible on supported
			// platforms; fall back to a fixed index rather than panic.
			b[i] = codeAlphabet[0]
			continue
		}
		b[i] = codeAlphabet[n.Int64()]
	}
	return string(b)
}
