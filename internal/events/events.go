package events

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/stakevault/stakevault/internal/identity"
)

const (
	// KindVaultInitialized marks provisioning of a token type's vault.
	KindVaultInitialized = "vault_initialized"
	// KindTokensStaked marks a completed deposit.
	KindTokensStaked = "tokens_staked"
	// KindMintInitialized marks creation of a mint.
	KindMintInitialized = "mint_initialized"
	// KindTokensMinted marks an issuance.
	KindTokensMinted = "tokens_minted"
	// KindTokensTransferred marks a peer-to-peer transfer.
	KindTokensTransferred = "tokens_transferred"
)

// Event is an immutable notification record of a completed operation. Events
// exist for external observability only and carry no authority.
type Event struct {
	ID     string
	Kind   string
	Actor  identity.Identity
	Target identity.Identity
	Amount uint64
	Total  uint64
}

// Sink delivers events downstream. Delivery is append-only and best effort;
// it is never part of operation correctness.
type Sink interface {
	Emit(ctx context.Context, event Event) error
}

// LoggerSink writes events to the structured log.
type LoggerSink struct {
	logger *slog.Logger
}

// NewLoggerSink builds a sink backed by the provided logger.
func NewLoggerSink(logger *slog.Logger) *LoggerSink {
	return &LoggerSink{logger: logger}
}

// Emit logs the event.
func (s *LoggerSink) Emit(_ context.Context, event Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	s.logger.Info("event",
		slog.String("event_id", event.ID),
		slog.String("kind", event.Kind),
		slog.String("actor", event.Actor.String()),
		slog.String("target", event.Target.String()),
		slog.Uint64("amount", event.Amount),
		slog.Uint64("total", event.Total),
	)
	return nil
}
