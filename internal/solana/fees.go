package solana

import (
	"context"
	"strconv"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultPriorityFee is returned when sampling fails. Fee
	// estimation is best-effort and must never block a swap.
	DefaultPriorityFee = 5000

	// MinPriorityFee floors the computed fee.
	MinPriorityFee = 1000

	largeTradeThreshold  = 1_000_000
	mediumTradeThreshold = 100_000
)

// FeeSampler provides recent per-transaction prioritization fee
// observations. *rpc.Client satisfies it.
type FeeSampler interface {
	GetRecentPrioritizationFees(ctx context.Context, accounts solana.PublicKeySlice) ([]rpc.PriorizationFeeResult, error)
}

// FeeEstimator derives a priority fee from recent network samples and
// trade size: mean(samples) scaled by a size multiplier, floored at
// MinPriorityFee. Thresholds compare the raw smallest-unit amount with
// no decimal normalization, so tokens with different decimals are
// scaled on the same axis.
type FeeEstimator struct {
	sampler FeeSampler
	logger  *logrus.Logger
}

func NewFeeEstimator(sampler FeeSampler, logger *logrus.Logger) *FeeEstimator {
	return &FeeEstimator{
		sampler: sampler,
		logger:  logger,
	}
}

// Estimate never fails: any sampling or parsing problem falls back to
// DefaultPriorityFee.
func (e *FeeEstimator) Estimate(ctx context.Context, tradeAmount string) uint64 {
	fees, err := e.sampler.GetRecentPrioritizationFees(ctx, nil)
	if err != nil {
		e.logger.WithError(err).Warn("failed to sample prioritization fees, using default")
		return DefaultPriorityFee
	}
	if len(fees) == 0 {
		e.logger.Warn("empty prioritization fee sample, using default")
		return DefaultPriorityFee
	}

	var sum float64
	for _, fee := range fees {
		sum += float64(fee.PrioritizationFee)
	}
	mean := sum / float64(len(fees))

	fee := mean * float64(sizeMultiplier(tradeAmount))
	if fee < MinPriorityFee {
		fee = MinPriorityFee
	}
	return uint64(fee)
}

// sizeMultiplier is strict-greater on both thresholds: exactly 100000
// stays at 1x.
func sizeMultiplier(tradeAmount string) uint64 {
	amount, err := strconv.ParseFloat(tradeAmount, 64)
	if err != nil {
		return 1
	}
	switch {
	case amount > largeTradeThreshold:
		return 3
	case amount > mediumTradeThreshold:
		return 2
	default:
		return 1
	}
}
