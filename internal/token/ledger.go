package token

import (
	"context"
	"errors"

	"github.com/stakevault/stakevault/internal/identity"
)

var (
	// ErrTransferFailed wraps every rejection of a token movement by the
	// ledger: insufficient balance, unknown account, mismatched token type,
	// or an authority that does not own the debited account.
	ErrTransferFailed = errors.New("transfer failed")

	// ErrInsufficientBalance occurs when the source account cannot cover the move.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrUnknownAccount occurs when a referenced token account does not exist.
	ErrUnknownAccount = errors.New("unknown token account")

	// ErrUnknownMint occurs when a referenced mint does not exist.
	ErrUnknownMint = errors.New("unknown mint")

	// ErrWrongTokenType occurs when source and destination hold different mints.
	ErrWrongTokenType = errors.New("mismatched token type")

	// ErrNotOwner occurs when the transfer authority does not own the source account.
	ErrNotOwner = errors.New("authority does not own the source account")

	// ErrMintExists indicates a duplicate mint registration.
	ErrMintExists = errors.New("mint already exists")

	// ErrAccountExists indicates a duplicate token account registration.
	ErrAccountExists = errors.New("token account already exists")

	// ErrNotMintAuthority occurs when issuance is attempted by anyone but the
	// mint's authority.
	ErrNotMintAuthority = errors.New("not the mint authority")

	// ErrBalanceOverflow occurs when a credit would push an account past the
	// largest balance the backing store can represent.
	ErrBalanceOverflow = errors.New("balance overflow")
)

// Mint describes one fungible token type.
type Mint struct {
	Address   identity.Identity
	Authority identity.Identity
	Decimals  uint8
}

// Account is a holding account for a single mint. Owner is the identity whose
// authority a debit must carry: a user key for ordinary accounts, the derived
// custody address itself for a vault.
type Account struct {
	Address identity.Identity
	Mint    identity.Identity
	Owner   identity.Identity
	Balance uint64
}

// Ledger is the external token primitive: mint, issue, move, and report
// balances. Each call is atomic; the core treats any failure as leaving the
// ledger untouched.
type Ledger interface {
	CreateMint(ctx context.Context, mint Mint) error
	CreateAccount(ctx context.Context, account Account) error
	Account(ctx context.Context, address identity.Identity) (Account, error)
	Balance(ctx context.Context, address identity.Identity) (uint64, error)
	MintTo(ctx context.Context, mint, to identity.Identity, authority identity.Identity, amount uint64) (uint64, error)
	Transfer(ctx context.Context, from, to identity.Identity, authority identity.TransferAuthority, amount uint64) error
}
