package middleware

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/stakevault/stakevault/internal/logging"
)

// depositFixture serves a stand-in staking deposit route behind the
// idempotency middleware and counts how many times the handler actually ran.
type depositFixture struct {
	app    *fiber.App
	redis  *miniredis.Miniredis
	calls  int
	reject bool
}

func newDepositFixture(t *testing.T) *depositFixture {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { cache.Close() })

	f := &depositFixture{app: fiber.New(), redis: mr}
	f.app.Use(Idempotency(cache, time.Minute, logging.Discard()))
	f.app.Post("/staking/deposit", func(c *fiber.Ctx) error {
		f.calls++
		if f.reject {
			return fiber.NewError(fiber.StatusBadRequest, "amount must be greater than zero")
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"total_staked": 150})
	})
	return f
}

func (f *depositFixture) deposit(t *testing.T, key string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, "/staking/deposit", strings.NewReader(`{"amount":50}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if key != "" {
		req.Header.Set(idempotencyKeyHeader, key)
	}

	resp, err := f.app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	resp.Body.Close()
	return resp.StatusCode, string(body)
}

func TestIdempotencyRequiresHeader(t *testing.T) {
	f := newDepositFixture(t)

	status, _ := f.deposit(t, "")
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected %d got %d", fiber.StatusBadRequest, status)
	}
	if f.calls != 0 {
		t.Fatalf("handler must not run without a key, ran %d times", f.calls)
	}
}

func TestIdempotencyReplaysWithoutRerunningDeposit(t *testing.T) {
	f := newDepositFixture(t)

	status, body := f.deposit(t, "dep-1")
	if status != fiber.StatusCreated {
		t.Fatalf("expected status %d got %d", fiber.StatusCreated, status)
	}

	replayStatus, replayBody := f.deposit(t, "dep-1")
	if replayStatus != status || replayBody != body {
		t.Fatalf("replay mismatch: %d %q vs %d %q", replayStatus, replayBody, status, body)
	}
	if f.calls != 1 {
		t.Fatalf("duplicate key must not move value twice, handler ran %d times", f.calls)
	}

	// A different key is a different deposit.
	if status, _ := f.deposit(t, "dep-2"); status != fiber.StatusCreated {
		t.Fatalf("fresh key must reach the handler, got %d", status)
	}
	if f.calls != 2 {
		t.Fatalf("expected two handler runs, got %d", f.calls)
	}
}

func TestIdempotencyReleasesReservationOnHandlerError(t *testing.T) {
	f := newDepositFixture(t)
	f.reject = true

	if status, _ := f.deposit(t, "dep-err"); status != fiber.StatusBadRequest {
		t.Fatalf("expected rejection, got %d", status)
	}

	// The failed attempt must not cache: a corrected retry runs the handler.
	f.reject = false
	if status, _ := f.deposit(t, "dep-err"); status != fiber.StatusCreated {
		t.Fatalf("retry after failure must reach the handler, got %d", status)
	}
	if f.calls != 2 {
		t.Fatalf("expected both attempts to run the handler, got %d", f.calls)
	}
}

func TestIdempotencyRejectsInFlightDuplicate(t *testing.T) {
	f := newDepositFixture(t)

	if err := f.redis.Set(idempotencyPrefix+"dep-busy", inProgressMarker); err != nil {
		t.Fatalf("seed in-progress marker: %v", err)
	}

	status, _ := f.deposit(t, "dep-busy")
	if status != fiber.StatusConflict {
		t.Fatalf("expected %d for in-flight duplicate, got %d", fiber.StatusConflict, status)
	}
	if f.calls != 0 {
		t.Fatalf("in-flight duplicate must not run the handler, ran %d times", f.calls)
	}
}
