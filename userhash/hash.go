// Package userhash obfuscates the users who issue commands.
//
// A userhash lets the audit log correlate commands from one user within one
// channel on one platform without storing the user's ID. It is an HMAC over
// the platform, user ID, channel, and a time quantum, so the same user gets
// unrelated hashes in different channels and at different times.
//
// The key used to generate hashes must be preserved across program instances
// for hashes to stay comparable.
package userhash

import (
	"crypto/hmac"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"hash"
	"time"

	"golang.org/x/crypto/sha3"

	"github.com/zephyrtronium/bourse/message"
)

// Size is the size of a userhash in bytes.
const Size = 28

// TimeQuantum is the duration for which hashing a user and location gives the
// same result.
const TimeQuantum = 15 * time.Minute

var (
	// ErrShortHash is returned when scanning a userhash that is too short.
	ErrShortHash = errors.New("short userhash")
	// ErrHashType is returned when scanning a userhash from a type that
	// cannot be handled.
	ErrHashType = errors.New("bad type for userhash")
)

// Hash is an obfuscated hash identifying a user in a location.
type Hash [Size]byte

// Scan implements sql.Scanner.
func (h *Hash) Scan(src any) error {
	switch src := src.(type) {
	case []byte:
		if copy(h[:], src) != Size {
			return ErrShortHash
		}
	case string:
		b, err := hex.DecodeString(src)
		if err != nil {
			return err
		}
		return h.Scan(b)
	default:
		return ErrHashType
	}
	return nil
}

// String formats the hash as hex.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// Short returns the first eight hex digits of the hash, enough to tell
// users apart in listings.
func (h Hash) Short() string {
	return hex.EncodeToString(h[:4])
}

// A Hasher creates Hash values.
// A Hasher is not safe for concurrent use; create one per goroutine.
type Hasher struct {
	mac hash.Hash
	buf []byte
}

// New creates a Hasher.
func New(prk []byte) *Hasher {
	return &Hasher{mac: hmac.New(sha3.New224, prk)}
}

// Hash computes a userhash and writes it into dst.
func (h *Hasher) Hash(dst *Hash, p message.Platform, uid, where string, when time.Time) *Hash {
	h.mac.Reset()
	t := when.UnixNano() / TimeQuantum.Nanoseconds()
	b := binary.LittleEndian.AppendUint64(h.buf[:0], uint64(t))
	b = append(b, p...)
	b = append(b, 0xaa)
	b = append(b, uid...)
	b = append(b, 0xaa)
	b = append(b, where...)
	h.mac.Write(b)
	h.buf = b
	return (*Hash)(h.mac.Sum(dst[:0]))
}

// Of computes the userhash of a message's sender in its channel.
func (h *Hasher) Of(msg *message.Received) Hash {
	var r Hash
	h.Hash(&r, msg.Platform, msg.Sender, msg.To, msg.Time())
	return r
}
