package identity

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
)

// Size is the byte length of every identity in the system.
const Size = 32

var (
	// ErrUnauthorized occurs when a caller identity does not match the identity
	// an operation requires.
	ErrUnauthorized = errors.New("you are not authorized to perform this action")

	// ErrInvalidIdentity indicates a value that does not parse as an identity.
	ErrInvalidIdentity = errors.New("invalid identity")
)

// Identity is a 32-byte public identity: a user key, an administrator key, or
// a protocol-derived custody address. Rendered as lowercase hex on the wire.
type Identity [Size]byte

// Zero is the empty identity.
var Zero Identity

// Parse decodes a hex-encoded identity.
func Parse(s string) (Identity, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return Zero, fmt.Errorf("%w: %v", ErrInvalidIdentity, err)
	}
	if len(raw) != Size {
		return Zero, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidIdentity, Size, len(raw))
	}
	var id Identity
	copy(id[:], raw)
	return id, nil
}

// MustParse parses a hex identity and panics on failure. For tests and fixtures.
func MustParse(s string) Identity {
	id, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return id
}

// Random generates a fresh random identity, standing in for externally
// generated keypairs.
func Random() Identity {
	var id Identity
	if _, err := rand.Read(id[:]); err != nil {
		panic(fmt.Sprintf("read random identity: %v", err))
	}
	return id
}

func (id Identity) String() string {
	return hex.EncodeToString(id[:])
}

// IsZero reports whether the identity is unset.
func (id Identity) IsZero() bool {
	return id == Zero
}

// Require is the authorization guard: it fails unless the caller identity
// equals the required identity. It must run before any mutation in every
// operation that needs it and has no side effects.
func Require(caller, required Identity) error {
	if caller != required {
		return ErrUnauthorized
	}
	return nil
}
