package token

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/stakevault/stakevault/internal/identity"
)

type memoryLedger struct {
	mu       sync.RWMutex
	mints    map[identity.Identity]Mint
	accounts map[identity.Identity]Account
}

// NewInMemory creates a concurrency-safe in-memory token ledger useful for
// unit tests and local runs without Postgres.
func NewInMemory() Ledger {
	return &memoryLedger{
		mints:    make(map[identity.Identity]Mint),
		accounts: make(map[identity.Identity]Account),
	}
}

func (l *memoryLedger) CreateMint(_ context.Context, mint Mint) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.mints[mint.Address]; exists {
		return ErrMintExists
	}
	l.mints[mint.Address] = mint
	return nil
}

func (l *memoryLedger) CreateAccount(_ context.Context, account Account) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.mints[account.Mint]; !exists {
		return fmt.Errorf("%w: %s", ErrUnknownMint, account.Mint)
	}
	if _, exists := l.accounts[account.Address]; exists {
		return ErrAccountExists
	}
	account.Balance = 0
	l.accounts[account.Address] = account
	return nil
}

func (l *memoryLedger) Account(_ context.Context, address identity.Identity) (Account, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	account, ok := l.accounts[address]
	if !ok {
		return Account{}, fmt.Errorf("%w: %s", ErrUnknownAccount, address)
	}
	return account, nil
}

func (l *memoryLedger) Balance(_ context.Context, address identity.Identity) (uint64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	account, ok := l.accounts[address]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownAccount, address)
	}
	return account.Balance, nil
}

func (l *memoryLedger) MintTo(_ context.Context, mint, to identity.Identity, authority identity.Identity, amount uint64) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	m, ok := l.mints[mint]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownMint, mint)
	}
	if authority != m.Authority {
		return 0, ErrNotMintAuthority
	}
	account, ok := l.accounts[to]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownAccount, to)
	}
	if account.Mint != mint {
		return 0, fmt.Errorf("%w: account %s does not hold mint %s", ErrWrongTokenType, to, mint)
	}
	if account.Balance > math.MaxUint64-amount {
		return 0, fmt.Errorf("%w: %d + %d", ErrBalanceOverflow, account.Balance, amount)
	}

	account.Balance += amount
	l.accounts[to] = account
	return account.Balance, nil
}

func (l *memoryLedger) Transfer(_ context.Context, from, to identity.Identity, authority identity.TransferAuthority, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	source, ok := l.accounts[from]
	if !ok {
		return fmt.Errorf("%w: %w: %s", ErrTransferFailed, ErrUnknownAccount, from)
	}
	dest, ok := l.accounts[to]
	if !ok {
		return fmt.Errorf("%w: %w: %s", ErrTransferFailed, ErrUnknownAccount, to)
	}
	if source.Mint != dest.Mint {
		return fmt.Errorf("%w: %w", ErrTransferFailed, ErrWrongTokenType)
	}
	if authority.AuthorityID() != source.Owner {
		return fmt.Errorf("%w: %w", ErrTransferFailed, ErrNotOwner)
	}
	if source.Balance < amount {
		return fmt.Errorf("%w: %w", ErrTransferFailed, ErrInsufficientBalance)
	}
	if dest.Balance > math.MaxUint64-amount {
		return fmt.Errorf("%w: %w", ErrTransferFailed, ErrBalanceOverflow)
	}

	source.Balance -= amount
	dest.Balance += amount
	l.accounts[from] = source
	l.accounts[to] = dest
	return nil
}
