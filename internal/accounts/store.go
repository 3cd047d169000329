// Package accounts is the account storage collaborator: fixed-size addressable
// records allocated under a payer and looked up by address. Allocation is
// naturally exclusive, which is the system's only duplicate-prevention
// mechanism for derived accounts.
package accounts

import (
	"context"
	"errors"

	"github.com/stakevault/stakevault/internal/identity"
)

var (
	// ErrAccountExists occurs when allocating an address that is already taken.
	ErrAccountExists = errors.New("account already exists")

	// ErrAccountNotFound occurs when reading or writing an unallocated address.
	ErrAccountNotFound = errors.New("account not found")

	// ErrRecordSize occurs when a write does not match the allocated record size.
	ErrRecordSize = errors.New("record size mismatch")
)

// Store allocates and persists raw account records.
type Store interface {
	// Allocate reserves a zero-filled record of the given size at the address,
	// charged to the payer. Fails with ErrAccountExists if the address is taken.
	Allocate(ctx context.Context, address identity.Identity, size int, payer identity.Identity) error

	// Write replaces the record at the address. The data must match the
	// allocated size exactly.
	Write(ctx context.Context, address identity.Identity, data []byte) error

	// Read returns the record at the address.
	Read(ctx context.Context, address identity.Identity) ([]byte, error)

	// Release frees the record so the address can be allocated again.
	// Releasing an unallocated address is not an error.
	Release(ctx context.Context, address identity.Identity) error
}
