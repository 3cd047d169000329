package token

import "github.com/stakevault/stakevault/internal/identity"

// SeedBalance is a test helper that sets the balance of an account when using
// the in-memory ledger.
func SeedBalance(l Ledger, address identity.Identity, amount uint64) {
	if mem, ok := l.(*memoryLedger); ok {
		mem.mu.Lock()
		defer mem.mu.Unlock()
		account := mem.accounts[address]
		account.Balance = amount
		mem.accounts[address] = account
	}
}
