package stake

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/stakevault/stakevault/internal/accounts"
	"github.com/stakevault/stakevault/internal/clock"
	"github.com/stakevault/stakevault/internal/derive"
	"github.com/stakevault/stakevault/internal/events"
	"github.com/stakevault/stakevault/internal/identity"
	"github.com/stakevault/stakevault/internal/token"
	"github.com/stakevault/stakevault/internal/vault"
)

var (
	// ErrInvalidAmount occurs when a deposit amount is zero or negative.
	ErrInvalidAmount = errors.New("amount must be greater than zero")

	// ErrVaultNotFound occurs when a deposit references a token type whose
	// vault was never initialized.
	ErrVaultNotFound = errors.New("vault not initialized for token type")

	// ErrNoPosition occurs when an owner has no stake ledger entry.
	ErrNoPosition = errors.New("no stake position for owner")
)

// Service orchestrates vault custody and the per-user stake ledger. Every
// mutating operation runs its authorization guard and address verification
// before touching state.
type Service struct {
	admin    identity.Identity
	tokens   token.Ledger
	accounts accounts.Store
	clock    clock.Clock
	events   events.Sink
}

// NewService builds the staking service. The administrator identity is
// resolved once at startup from configuration.
func NewService(admin identity.Identity, tokens token.Ledger, store accounts.Store, clk clock.Clock, sink events.Sink) *Service {
	return &Service{admin: admin, tokens: tokens, accounts: store, clock: clk, events: sink}
}

// InitializeInput identifies the caller and the token type to provision.
type InitializeInput struct {
	Caller    identity.Identity
	TokenType identity.Identity
}

// InitializeResult reports the provisioned vault.
type InitializeResult struct {
	VaultAddress identity.Identity
	Nonce        uint8
}

// Initialize provisions the vault for a token type. Only the administrator
// may call it, and re-invocation for the same token type fails at the
// allocation step: the derivation is a pure function of the token type, so a
// duplicate vault has the same address and allocation is naturally exclusive.
func (s *Service) Initialize(ctx context.Context, in InitializeInput) (InitializeResult, error) {
	if err := identity.Require(in.Caller, s.admin); err != nil {
		return InitializeResult{}, err
	}

	addr, nonce, err := derive.Find(derive.LabelVault, in.TokenType)
	if err != nil {
		return InitializeResult{}, err
	}

	// The vault's holding account is owned by its own derived address. It is
	// created before the vault record is reserved: the ledger rejects unknown
	// mints, and a failure here must leave nothing allocated, or a retry after
	// registering the mint would hit ErrAccountExists forever.
	err = s.tokens.CreateAccount(ctx, token.Account{Address: addr, Mint: in.TokenType, Owner: addr})
	if err != nil && !errors.Is(err, token.ErrAccountExists) {
		return InitializeResult{}, fmt.Errorf("create vault token account: %w", err)
	}

	if err := s.accounts.Allocate(ctx, addr, vault.RecordSize, in.Caller); err != nil {
		return InitializeResult{}, err
	}

	record := vault.Record{TokenType: in.TokenType, Authority: addr, Nonce: nonce}
	if err := s.accounts.Write(ctx, addr, record.Marshal()); err != nil {
		// Free the reservation so a retry can start over.
		_ = s.accounts.Release(ctx, addr)
		return InitializeResult{}, fmt.Errorf("write vault record: %w", err)
	}

	_ = s.events.Emit(ctx, events.Event{
		Kind:   events.KindVaultInitialized,
		Actor:  in.Caller,
		Target: addr,
	})

	return InitializeResult{VaultAddress: addr, Nonce: nonce}, nil
}

// DepositInput carries a staking deposit request. VaultAddress and VaultNonce
// are caller-supplied and never trusted: the service re-derives them from the
// token type before any funds move.
type DepositInput struct {
	Caller        identity.Identity
	TokenType     identity.Identity
	SourceAccount identity.Identity
	VaultAddress  identity.Identity
	VaultNonce    uint8
	Amount        int64
}

// DepositResult reports the ledger outcome of a deposit.
type DepositResult struct {
	EntryAddress identity.Identity
	Amount       uint64
	TotalStaked  uint64
	DepositTS    int64
}

// Deposit moves tokens from the caller's holding account into the vault and
// updates the caller's stake ledger entry, as one all-or-nothing operation.
func (s *Service) Deposit(ctx context.Context, in DepositInput) (DepositResult, error) {
	if in.Amount <= 0 {
		return DepositResult{}, ErrInvalidAmount
	}
	amount := uint64(in.Amount)

	if err := derive.Verify(in.VaultAddress, in.VaultNonce, derive.LabelVault, in.TokenType); err != nil {
		return DepositResult{}, err
	}
	data, err := s.accounts.Read(ctx, in.VaultAddress)
	if err != nil {
		if errors.Is(err, accounts.ErrAccountNotFound) {
			return DepositResult{}, fmt.Errorf("%w: %s", ErrVaultNotFound, in.TokenType)
		}
		return DepositResult{}, err
	}
	record, err := vault.Unmarshal(data)
	if err != nil {
		return DepositResult{}, err
	}
	if record.TokenType != in.TokenType {
		return DepositResult{}, fmt.Errorf("%w: vault holds %s", derive.ErrAddressMismatch, record.TokenType)
	}

	entryAddr, _, err := derive.Find(derive.LabelUser, in.Caller)
	if err != nil {
		return DepositResult{}, err
	}

	entry, existed, err := s.peekEntry(ctx, entryAddr, in.Caller)
	if err != nil {
		return DepositResult{}, err
	}
	if entry.Amount > math.MaxUint64-amount {
		return DepositResult{}, fmt.Errorf("%w: total stake overflow", ErrInvalidAmount)
	}

	if err := s.tokens.Transfer(ctx, in.SourceAccount, in.VaultAddress, identity.UserOwned{Signer: in.Caller}, amount); err != nil {
		return DepositResult{}, err
	}

	entry.Amount += amount
	entry.DepositTS = s.clock.Now()
	if err := s.commitEntry(ctx, entryAddr, entry, existed); err != nil {
		// Undo the transfer so no state is observable where tokens moved but
		// the ledger did not. Only protocol logic holds the vault's authority.
		reverseErr := s.tokens.Transfer(ctx, in.VaultAddress, in.SourceAccount, identity.ProtocolOwned{Address: in.VaultAddress}, amount)
		if reverseErr != nil {
			return DepositResult{}, fmt.Errorf("write stake entry: %w (reversal also failed: %v)", err, reverseErr)
		}
		return DepositResult{}, fmt.Errorf("write stake entry: %w", err)
	}

	_ = s.events.Emit(ctx, events.Event{
		Kind:   events.KindTokensStaked,
		Actor:  in.Caller,
		Target: in.VaultAddress,
		Amount: amount,
		Total:  entry.Amount,
	})

	return DepositResult{
		EntryAddress: entryAddr,
		Amount:       amount,
		TotalStaked:  entry.Amount,
		DepositTS:    entry.DepositTS,
	}, nil
}

// WithdrawInput identifies the withdrawing caller.
type WithdrawInput struct {
	Caller identity.Identity
}

// Withdraw accepts any caller and deliberately mutates nothing, returning
// success unconditionally. The eventual inverse of Deposit must: authorize
// caller == entry owner, reject amounts above the entry's total, move funds
// out of the vault under the vault's own derived authority, and decrement the
// entry. Until that lands, this is an intentional no-op, not an error.
func (s *Service) Withdraw(_ context.Context, _ WithdrawInput) error {
	return nil
}

// Position returns the caller's current stake ledger entry.
func (s *Service) Position(ctx context.Context, owner identity.Identity) (Entry, error) {
	entryAddr, _, err := derive.Find(derive.LabelUser, owner)
	if err != nil {
		return Entry{}, err
	}
	data, err := s.accounts.Read(ctx, entryAddr)
	if err != nil {
		if errors.Is(err, accounts.ErrAccountNotFound) {
			return Entry{}, fmt.Errorf("%w: %s", ErrNoPosition, owner)
		}
		return Entry{}, err
	}
	return UnmarshalEntry(owner, data)
}

// peekEntry reads an owner's entry without creating one, reporting whether it
// already exists. Absent entries come back empty so a failed deposit never
// leaves a freshly created ledger record behind.
func (s *Service) peekEntry(ctx context.Context, entryAddr, owner identity.Identity) (Entry, bool, error) {
	data, err := s.accounts.Read(ctx, entryAddr)
	if err == nil {
		entry, uerr := UnmarshalEntry(owner, data)
		return entry, true, uerr
	}
	if errors.Is(err, accounts.ErrAccountNotFound) {
		return Entry{Owner: owner}, false, nil
	}
	return Entry{}, false, err
}

// commitEntry implements the lazy "create if absent, otherwise reuse"
// semantics of the stake ledger as an explicit upsert keyed by owner identity.
func (s *Service) commitEntry(ctx context.Context, entryAddr identity.Identity, entry Entry, existed bool) error {
	if !existed {
		if err := s.accounts.Allocate(ctx, entryAddr, EntrySize, entry.Owner); err != nil {
			return fmt.Errorf("allocate stake entry: %w", err)
		}
	}
	return s.accounts.Write(ctx, entryAddr, entry.Marshal())
}
