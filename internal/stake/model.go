package stake

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/stakevault/stakevault/internal/identity"
)

// EntrySize is the serialized stake ledger entry length: an 8-byte type
// discriminator, the cumulative amount, and the last deposit timestamp. The
// owner is not stored; it is implied by the entry's derived address.
const EntrySize = 8 + 8 + 8

var entryDiscriminator = [8]byte{'s', 't', 'a', 'k', 'e', 0, 0, 0}

// ErrBadEntry indicates stored bytes that do not decode as a stake entry.
var ErrBadEntry = errors.New("malformed stake ledger entry")

// Entry is one user's cumulative staked position. Amount only grows under
// deposit-only semantics; DepositTS holds the latest deposit time only.
type Entry struct {
	Owner     identity.Identity
	Amount    uint64
	DepositTS int64
}

// Marshal serializes the entry into its fixed byte layout.
func (e Entry) Marshal() []byte {
	buf := make([]byte, EntrySize)
	copy(buf[:8], entryDiscriminator[:])
	binary.LittleEndian.PutUint64(buf[8:16], e.Amount)
	binary.LittleEndian.PutUint64(buf[16:24], uint64(e.DepositTS))
	return buf
}

// UnmarshalEntry decodes a stored entry. A zero-filled record, as left by a
// fresh allocation, decodes as an empty entry.
func UnmarshalEntry(owner identity.Identity, data []byte) (Entry, error) {
	if len(data) != EntrySize {
		return Entry{}, fmt.Errorf("%w: length %d", ErrBadEntry, len(data))
	}
	if isZero(data) {
		return Entry{Owner: owner}, nil
	}
	if !bytes.Equal(data[:8], entryDiscriminator[:]) {
		return Entry{}, fmt.Errorf("%w: bad discriminator", ErrBadEntry)
	}
	return Entry{
		Owner:     owner,
		Amount:    binary.LittleEndian.Uint64(data[8:16]),
		DepositTS: int64(binary.LittleEndian.Uint64(data[16:24])),
	}, nil
}

func isZero(data []byte) bool {
	for _, b := range data {
		if b != 0 {
			return false
		}
	}
	return true
}
