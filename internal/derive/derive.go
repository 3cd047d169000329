// Package derive computes custody account addresses as a pure function of a
// domain-separation label, component identities, and a collision-avoidance
// nonce. Addresses are never stored or trusted from a caller: every operation
// re-derives and verifies them, which is the sole defense against a caller
// substituting an attacker-controlled account.
package derive

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/blake2b"

	"github.com/stakevault/stakevault/internal/identity"
)

const (
	// LabelVault scopes vault custody addresses, derived per token type.
	LabelVault = "vault"
	// LabelUser scopes stake ledger entry addresses, derived per owner.
	LabelUser = "user"

	// NonceSpace bounds the collision-avoidance nonce search.
	NonceSpace = 256

	domainPrefix = "stakevault:v1"
)

var (
	// ErrAddressMismatch occurs when a supplied account address does not match
	// its expected derivation.
	ErrAddressMismatch = errors.New("account address does not match derivation")

	// ErrNonceExhausted indicates no nonce in the search space yields a valid
	// protocol address. Practically unreachable.
	ErrNonceExhausted = errors.New("nonce space exhausted")
)

// Derive computes the address for (label, components, nonce). Identical inputs
// always yield the identical output.
func Derive(label string, nonce uint8, components ...identity.Identity) identity.Identity {
	h, err := blake2b.New256(nil)
	if err != nil {
		panic(fmt.Sprintf("blake2b init: %v", err))
	}
	h.Write([]byte(domainPrefix))
	h.Write([]byte{0})
	h.Write([]byte(label))
	h.Write([]byte{0})
	for _, c := range components {
		h.Write(c[:])
	}
	h.Write([]byte{nonce})

	var addr identity.Identity
	copy(addr[:], h.Sum(nil))
	return addr
}

// Find searches for the smallest nonce whose derived address lies in the
// protocol-owned address space, fixing the (address, nonce) pair for the life
// of the account. Callers must supply the same nonce on every future
// reference.
func Find(label string, components ...identity.Identity) (identity.Identity, uint8, error) {
	for nonce := 0; nonce < NonceSpace; nonce++ {
		addr := Derive(label, uint8(nonce), components...)
		if protocolAddress(addr) {
			return addr, uint8(nonce), nil
		}
	}
	return identity.Zero, 0, fmt.Errorf("%w: label %q", ErrNonceExhausted, label)
}

// Verify re-derives the address for (label, components, nonce) and fails with
// ErrAddressMismatch unless it equals the supplied address.
func Verify(addr identity.Identity, nonce uint8, label string, components ...identity.Identity) error {
	expected := Derive(label, nonce, components...)
	if expected != addr || !protocolAddress(addr) {
		return fmt.Errorf("%w: label %q", ErrAddressMismatch, label)
	}
	return nil
}

// protocolAddress reports whether an address lies in the derived custody
// space, disjoint from externally generated signing keys.
func protocolAddress(addr identity.Identity) bool {
	return addr[identity.Size-1]&0x80 == 0
}
