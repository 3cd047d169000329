package mint

import (
	"context"
	"errors"
	"testing"

	"github.com/stakevault/stakevault/internal/events"
	"github.com/stakevault/stakevault/internal/identity"
	"github.com/stakevault/stakevault/internal/token"
)

type captureSink struct {
	emitted []events.Event
}

func (s *captureSink) Emit(_ context.Context, event events.Event) error {
	s.emitted = append(s.emitted, event)
	return nil
}

func TestIssuanceFlow(t *testing.T) {
	ledger := token.NewInMemory()
	sink := &captureSink{}
	svc := NewService(ledger, sink)
	ctx := context.Background()

	authority := identity.Random()
	mint, err := svc.CreateMint(ctx, CreateMintInput{Authority: authority, Decimals: 9})
	if err != nil {
		t.Fatalf("create mint: %v", err)
	}
	if mint.Authority != authority {
		t.Fatalf("mint authority mismatch")
	}

	alice := identity.Random()
	bob := identity.Random()
	aliceAccount, err := svc.CreateAccount(ctx, CreateAccountInput{Owner: alice, Mint: mint.Address})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	bobAccount, err := svc.CreateAccount(ctx, CreateAccountInput{Owner: bob, Mint: mint.Address})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}

	total, err := svc.MintTo(ctx, MintToInput{Authority: authority, Mint: mint.Address, To: aliceAccount.Address, Amount: 1_000})
	if err != nil {
		t.Fatalf("mint to: %v", err)
	}
	if total != 1_000 {
		t.Fatalf("expected issued balance 1000, got %d", total)
	}

	if err := svc.Transfer(ctx, TransferInput{Caller: alice, From: aliceAccount.Address, To: bobAccount.Address, Amount: 400}); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if balance, _ := ledger.Balance(ctx, bobAccount.Address); balance != 400 {
		t.Fatalf("expected 400 with bob, got %d", balance)
	}

	kinds := make([]string, 0, len(sink.emitted))
	for _, e := range sink.emitted {
		kinds = append(kinds, e.Kind)
	}
	want := []string{events.KindMintInitialized, events.KindTokensMinted, events.KindTokensTransferred}
	if len(kinds) != len(want) {
		t.Fatalf("expected %v events, got %v", want, kinds)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("expected %v events, got %v", want, kinds)
		}
	}
}

func TestMintToRequiresAuthority(t *testing.T) {
	ledger := token.NewInMemory()
	svc := NewService(ledger, &captureSink{})
	ctx := context.Background()

	mint, err := svc.CreateMint(ctx, CreateMintInput{Authority: identity.Random(), Decimals: 6})
	if err != nil {
		t.Fatalf("create mint: %v", err)
	}
	account, err := svc.CreateAccount(ctx, CreateAccountInput{Owner: identity.Random(), Mint: mint.Address})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}

	_, err = svc.MintTo(ctx, MintToInput{Authority: identity.Random(), Mint: mint.Address, To: account.Address, Amount: 10})
	if !errors.Is(err, token.ErrNotMintAuthority) {
		t.Fatalf("expected ErrNotMintAuthority, got %v", err)
	}
	if balance, _ := ledger.Balance(ctx, account.Address); balance != 0 {
		t.Fatalf("rejected issuance must not credit the account, got %d", balance)
	}
}
