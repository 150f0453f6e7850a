// Package momo models the external mobile-money provider. The real
// MTN/Orange integrations live behind Provider; the core only sees an
// opaque accept/decline outcome bounded by the caller's context.
package momo

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Charge is a single debit request sent to the provider.
type Charge struct {
	Provider    string
	PhoneNumber string
	Amount      decimal.Decimal
	Reference   string
}

// Result is the provider's answer to a charge.
type Result struct {
	Accepted      bool
	TransactionID string
	Reason        string
}

// Provider performs mobile-money charges. Implementations must respect
// ctx cancellation and deadlines; a charge whose outcome is unknown when
// the context expires returns ctx.Err().
type Provider interface {
	Charge(ctx context.Context, charge Charge) (*Result, error)
}

// simulatedProvider approximates provider behaviour for development and
// tests: a short processing delay followed by a weighted coin flip.
type simulatedProvider struct {
	successRate float64
	delay       time.Duration
	logger      zerolog.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulatedProvider creates a provider that accepts charges with the
// given probability after a fixed delay.
func NewSimulatedProvider(successRate float64, delay time.Duration, logger zerolog.Logger) Provider {
	return &simulatedProvider{
		successRate: successRate,
		delay:       delay,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		logger:      logger.With().Str("component", "momo-simulator").Logger(),
	}
}

func (p *simulatedProvider) Charge(ctx context.Context, charge Charge) (*Result, error) {
	select {
	case <-time.After(p.delay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	p.mu.Lock()
	roll := p.rng.Float64()
	p.mu.Unlock()

	if roll >= p.successRate {
		p.logger.Info().
			Str("provider", charge.Provider).
			Str("reference", charge.Reference).
			Msg("simulated charge declined")
		return &Result{Accepted: false, Reason: "declined by provider"}, nil
	}

	txnID := TransactionID(charge.Provider)
	p.logger.Info().
		Str("provider", charge.Provider).
		Str("reference", charge.Reference).
		Str("transaction_id", txnID).
		Msg("simulated charge accepted")

	return &Result{Accepted: true, TransactionID: txnID}, nil
}

// TransactionID builds a provider-prefixed transaction id, e.g.
// MTN_1712345678901_3FA2B1.
func TransactionID(provider string) string {
	prefix := "ORG"
	if strings.EqualFold(provider, "MTN") {
		prefix = "MTN"
	}
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("%s_%d_%s", prefix, time.Now().UnixMilli(), suffix)
}
