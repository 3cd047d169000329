// Package vault defines the custody account record for one token type's
// staked funds. A vault's spending authority is its own derived address, so
// no external key can ever debit it.
package vault

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/stakevault/stakevault/internal/identity"
)

// RecordSize is the serialized record length: an 8-byte type discriminator,
// the token type, the authority identity, and the derivation nonce.
const RecordSize = 8 + identity.Size + identity.Size + 1

var discriminator = [8]byte{'v', 'a', 'u', 'l', 't', 0, 0, 0}

// ErrBadRecord indicates stored bytes that do not decode as a vault record.
var ErrBadRecord = errors.New("malformed vault record")

// Record describes one vault: the token type it accepts, fixed at creation,
// and its authority, which is always the vault's own derived address.
type Record struct {
	TokenType identity.Identity
	Authority identity.Identity
	Nonce     uint8
}

// Marshal serializes the record into its fixed byte layout.
func (r Record) Marshal() []byte {
	buf := make([]byte, 0, RecordSize)
	buf = append(buf, discriminator[:]...)
	buf = append(buf, r.TokenType[:]...)
	buf = append(buf, r.Authority[:]...)
	buf = append(buf, r.Nonce)
	return buf
}

// Unmarshal decodes a stored vault record.
func Unmarshal(data []byte) (Record, error) {
	if len(data) != RecordSize {
		return Record{}, fmt.Errorf("%w: length %d", ErrBadRecord, len(data))
	}
	if !bytes.Equal(data[:8], discriminator[:]) {
		return Record{}, fmt.Errorf("%w: bad discriminator", ErrBadRecord)
	}

	var r Record
	copy(r.TokenType[:], data[8:8+identity.Size])
	copy(r.Authority[:], data[8+identity.Size:8+2*identity.Size])
	r.Nonce = data[RecordSize-1]
	return r, nil
}
