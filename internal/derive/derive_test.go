package derive

import (
	"errors"
	"testing"

	"github.com/stakevault/stakevault/internal/identity"
)

func TestFindIsDeterministic(t *testing.T) {
	tokenType := identity.Random()

	addr1, nonce1, err := Find(LabelVault, tokenType)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	addr2, nonce2, err := Find(LabelVault, tokenType)
	if err != nil {
		t.Fatalf("find again: %v", err)
	}

	if addr1 != addr2 || nonce1 != nonce2 {
		t.Fatalf("derivation not stable: (%s,%d) vs (%s,%d)", addr1, nonce1, addr2, nonce2)
	}
}

func TestDeriveDomainSeparation(t *testing.T) {
	id := identity.Random()

	vaultAddr := Derive(LabelVault, 0, id)
	userAddr := Derive(LabelUser, 0, id)
	if vaultAddr == userAddr {
		t.Fatalf("labels must separate derivation domains")
	}

	if Derive(LabelVault, 0, id) != vaultAddr {
		t.Fatalf("derive is not pure")
	}
	if Derive(LabelVault, 1, id) == vaultAddr {
		t.Fatalf("nonce must change the derived address")
	}
}

func TestVerify(t *testing.T) {
	owner := identity.Random()

	addr, nonce, err := Find(LabelUser, owner)
	if err != nil {
		t.Fatalf("find: %v", err)
	}

	if err := Verify(addr, nonce, LabelUser, owner); err != nil {
		t.Fatalf("verify with matching inputs: %v", err)
	}

	if err := Verify(identity.Random(), nonce, LabelUser, owner); !errors.Is(err, ErrAddressMismatch) {
		t.Fatalf("expected mismatch for forged address, got %v", err)
	}
	if err := Verify(addr, nonce+1, LabelUser, owner); !errors.Is(err, ErrAddressMismatch) {
		t.Fatalf("expected mismatch for wrong nonce, got %v", err)
	}
	if err := Verify(addr, nonce, LabelVault, owner); !errors.Is(err, ErrAddressMismatch) {
		t.Fatalf("expected mismatch for wrong label, got %v", err)
	}
}
