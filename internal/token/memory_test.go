package token

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stakevault/stakevault/internal/identity"
)

func newTestMint(t *testing.T, l Ledger) Mint {
	t.Helper()
	mint := Mint{Address: identity.Random(), Authority: identity.Random(), Decimals: 6}
	if err := l.CreateMint(context.Background(), mint); err != nil {
		t.Fatalf("create mint: %v", err)
	}
	return mint
}

func newTestAccount(t *testing.T, l Ledger, mint Mint, owner identity.Identity) Account {
	t.Helper()
	account := Account{Address: identity.Random(), Mint: mint.Address, Owner: owner}
	if err := l.CreateAccount(context.Background(), account); err != nil {
		t.Fatalf("create account: %v", err)
	}
	return account
}

func TestInMemoryMintAndIssue(t *testing.T) {
	l := NewInMemory()
	ctx := context.Background()
	mint := newTestMint(t, l)

	if err := l.CreateMint(ctx, mint); !errors.Is(err, ErrMintExists) {
		t.Fatalf("expected duplicate mint error, got %v", err)
	}

	holder := identity.Random()
	account := newTestAccount(t, l, mint, holder)

	total, err := l.MintTo(ctx, mint.Address, account.Address, mint.Authority, 1_000)
	if err != nil {
		t.Fatalf("mint to: %v", err)
	}
	if total != 1_000 {
		t.Fatalf("expected balance 1000, got %d", total)
	}

	if _, err := l.MintTo(ctx, mint.Address, account.Address, identity.Random(), 1); !errors.Is(err, ErrNotMintAuthority) {
		t.Fatalf("expected authority rejection, got %v", err)
	}
}

func TestInMemoryTransfer(t *testing.T) {
	l := NewInMemory()
	ctx := context.Background()
	mint := newTestMint(t, l)

	alice := identity.Random()
	bob := identity.Random()
	from := newTestAccount(t, l, mint, alice)
	to := newTestAccount(t, l, mint, bob)
	SeedBalance(l, from.Address, 5_000)

	if err := l.Transfer(ctx, from.Address, to.Address, identity.UserOwned{Signer: alice}, 2_000); err != nil {
		t.Fatalf("transfer: %v", err)
	}

	fromBal, _ := l.Balance(ctx, from.Address)
	toBal, _ := l.Balance(ctx, to.Address)
	if fromBal != 3_000 || toBal != 2_000 {
		t.Fatalf("unexpected balances %d/%d", fromBal, toBal)
	}
}

func TestInMemoryTransferRejections(t *testing.T) {
	l := NewInMemory()
	ctx := context.Background()
	mint := newTestMint(t, l)
	other := newTestMint(t, l)

	alice := identity.Random()
	from := newTestAccount(t, l, mint, alice)
	to := newTestAccount(t, l, mint, identity.Random())
	wrongMint := newTestAccount(t, l, other, identity.Random())
	SeedBalance(l, from.Address, 100)

	err := l.Transfer(ctx, from.Address, to.Address, identity.UserOwned{Signer: alice}, 500)
	if !errors.Is(err, ErrTransferFailed) || !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected insufficient balance, got %v", err)
	}

	err = l.Transfer(ctx, from.Address, wrongMint.Address, identity.UserOwned{Signer: alice}, 50)
	if !errors.Is(err, ErrWrongTokenType) {
		t.Fatalf("expected token type mismatch, got %v", err)
	}

	err = l.Transfer(ctx, from.Address, to.Address, identity.UserOwned{Signer: identity.Random()}, 50)
	if !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected owner rejection, got %v", err)
	}

	if bal, _ := l.Balance(ctx, from.Address); bal != 100 {
		t.Fatalf("failed transfers must not move funds, balance %d", bal)
	}
}

func TestInMemoryBalanceOverflowRejected(t *testing.T) {
	l := NewInMemory()
	ctx := context.Background()
	mint := newTestMint(t, l)

	holder := identity.Random()
	account := newTestAccount(t, l, mint, holder)
	SeedBalance(l, account.Address, math.MaxUint64-10)

	if _, err := l.MintTo(ctx, mint.Address, account.Address, mint.Authority, 11); !errors.Is(err, ErrBalanceOverflow) {
		t.Fatalf("expected overflow rejection, got %v", err)
	}
	if bal, _ := l.Balance(ctx, account.Address); bal != math.MaxUint64-10 {
		t.Fatalf("rejected issuance must not change the balance, got %d", bal)
	}

	from := newTestAccount(t, l, mint, holder)
	SeedBalance(l, from.Address, 100)
	err := l.Transfer(ctx, from.Address, account.Address, identity.UserOwned{Signer: holder}, 50)
	if !errors.Is(err, ErrTransferFailed) || !errors.Is(err, ErrBalanceOverflow) {
		t.Fatalf("expected wrapped overflow rejection, got %v", err)
	}
	if bal, _ := l.Balance(ctx, from.Address); bal != 100 {
		t.Fatalf("rejected transfer must not move funds, balance %d", bal)
	}
}

func TestProtocolOwnedAuthority(t *testing.T) {
	l := NewInMemory()
	ctx := context.Background()
	mint := newTestMint(t, l)

	// A self-owned account is debitable only with its own address as authority.
	vaultAddr := identity.Random()
	vault := Account{Address: vaultAddr, Mint: mint.Address, Owner: vaultAddr}
	if err := l.CreateAccount(ctx, vault); err != nil {
		t.Fatalf("create vault account: %v", err)
	}
	dest := newTestAccount(t, l, mint, identity.Random())
	SeedBalance(l, vaultAddr, 1_000)

	err := l.Transfer(ctx, vaultAddr, dest.Address, identity.UserOwned{Signer: identity.Random()}, 100)
	if !errors.Is(err, ErrNotOwner) {
		t.Fatalf("user authority must not debit a self-owned account, got %v", err)
	}

	if err := l.Transfer(ctx, vaultAddr, dest.Address, identity.ProtocolOwned{Address: vaultAddr}, 100); err != nil {
		t.Fatalf("protocol authority transfer: %v", err)
	}
}
