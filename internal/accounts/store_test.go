package accounts

import (
	"context"
	"errors"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/stakevault/stakevault/internal/identity"
)

func runStoreSuite(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()
	addr := identity.Random()
	payer := identity.Random()

	if _, err := store.Read(ctx, addr); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected not found before allocation, got %v", err)
	}

	if err := store.Allocate(ctx, addr, 24, payer); err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if err := store.Allocate(ctx, addr, 24, payer); !errors.Is(err, ErrAccountExists) {
		t.Fatalf("expected exists on duplicate allocation, got %v", err)
	}

	record, err := store.Read(ctx, addr)
	if err != nil {
		t.Fatalf("read allocated: %v", err)
	}
	if len(record) != 24 {
		t.Fatalf("expected 24 zero bytes, got %d", len(record))
	}

	if err := store.Write(ctx, addr, make([]byte, 8)); !errors.Is(err, ErrRecordSize) {
		t.Fatalf("expected size mismatch, got %v", err)
	}

	data := make([]byte, 24)
	data[0] = 0xAB
	if err := store.Write(ctx, addr, data); err != nil {
		t.Fatalf("write: %v", err)
	}
	record, err = store.Read(ctx, addr)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if record[0] != 0xAB {
		t.Fatalf("record not persisted")
	}

	if err := store.Write(ctx, identity.Random(), data); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected not found writing unallocated address, got %v", err)
	}

	if err := store.Release(ctx, addr); err != nil {
		t.Fatalf("release: %v", err)
	}
	if _, err := store.Read(ctx, addr); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected not found after release, got %v", err)
	}
	if err := store.Release(ctx, addr); err != nil {
		t.Fatalf("release of unallocated address: %v", err)
	}
	if err := store.Allocate(ctx, addr, 24, payer); err != nil {
		t.Fatalf("re-allocate after release: %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	runStoreSuite(t, NewMemoryStore())
}

func TestRedisStore(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	runStoreSuite(t, NewRedisStore(client))
}
