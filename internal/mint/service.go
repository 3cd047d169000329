// Package mint is the token-issuance companion: a thin pass-through over the
// token primitive for mint creation, issuance, and peer transfers. Its only
// rule is that the relevant authority signed.
package mint

import (
	"context"
	"fmt"

	"github.com/stakevault/stakevault/internal/events"
	"github.com/stakevault/stakevault/internal/identity"
	"github.com/stakevault/stakevault/internal/token"
)

// Service exposes issuance operations backed by the token ledger.
type Service struct {
	tokens token.Ledger
	events events.Sink
}

// NewService builds an issuance service.
func NewService(tokens token.Ledger, sink events.Sink) *Service {
	return &Service{tokens: tokens, events: sink}
}

// CreateMintInput captures data required to register a mint.
type CreateMintInput struct {
	Authority identity.Identity
	Decimals  uint8
}

// CreateMint registers a new token type with the caller as its authority.
func (s *Service) CreateMint(ctx context.Context, in CreateMintInput) (token.Mint, error) {
	mint := token.Mint{
		Address:   identity.Random(),
		Authority: in.Authority,
		Decimals:  in.Decimals,
	}
	if err := s.tokens.CreateMint(ctx, mint); err != nil {
		return token.Mint{}, fmt.Errorf("create mint: %w", err)
	}

	_ = s.events.Emit(ctx, events.Event{
		Kind:   events.KindMintInitialized,
		Actor:  in.Authority,
		Target: mint.Address,
	})
	return mint, nil
}

// CreateAccountInput captures data required to open a holding account.
type CreateAccountInput struct {
	Owner identity.Identity
	Mint  identity.Identity
}

// CreateAccount opens a zero-balance holding account for a mint.
func (s *Service) CreateAccount(ctx context.Context, in CreateAccountInput) (token.Account, error) {
	account := token.Account{
		Address: identity.Random(),
		Mint:    in.Mint,
		Owner:   in.Owner,
	}
	if err := s.tokens.CreateAccount(ctx, account); err != nil {
		return token.Account{}, fmt.Errorf("create token account: %w", err)
	}
	return account, nil
}

// MintToInput captures an issuance request.
type MintToInput struct {
	Authority identity.Identity
	Mint      identity.Identity
	To        identity.Identity
	Amount    uint64
}

// MintTo issues tokens into a holding account. The token ledger rejects any
// caller other than the mint authority.
func (s *Service) MintTo(ctx context.Context, in MintToInput) (uint64, error) {
	total, err := s.tokens.MintTo(ctx, in.Mint, in.To, in.Authority, in.Amount)
	if err != nil {
		return 0, err
	}

	_ = s.events.Emit(ctx, events.Event{
		Kind:   events.KindTokensMinted,
		Actor:  in.Authority,
		Target: in.To,
		Amount: in.Amount,
		Total:  total,
	})
	return total, nil
}

// TransferInput captures a peer-to-peer transfer request.
type TransferInput struct {
	Caller identity.Identity
	From   identity.Identity
	To     identity.Identity
	Amount uint64
}

// Transfer moves tokens between holding accounts with the caller as transfer
// authority.
func (s *Service) Transfer(ctx context.Context, in TransferInput) error {
	err := s.tokens.Transfer(ctx, in.From, in.To, identity.UserOwned{Signer: in.Caller}, in.Amount)
	if err != nil {
		return err
	}

	_ = s.events.Emit(ctx, events.Event{
		Kind:   events.KindTokensTransferred,
		Actor:  in.Caller,
		Target: in.To,
		Amount: in.Amount,
	})
	return nil
}
