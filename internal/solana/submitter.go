package solana

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/sirupsen/logrus"

	"github.com/keene2/meme-server/internal/swap"
)

const (
	defaultConfirmTimeout = 60 * time.Second
	defaultPollInterval   = time.Second
)

// RPC is the slice of the Solana JSON-RPC surface the submitter needs.
// *rpc.Client satisfies it.
type RPC interface {
	SimulateTransaction(ctx context.Context, tx *solana.Transaction) (*rpc.SimulateTransactionResponse, error)
	SendRawTransactionWithOpts(ctx context.Context, rawTx []byte, opts rpc.TransactionOpts) (solana.Signature, error)
	GetSignatureStatuses(ctx context.Context, searchTransactionHistory bool, sigs ...solana.Signature) (*rpc.GetSignatureStatusesResult, error)
}

// Submitter runs the decode -> simulate -> broadcast -> confirm pipeline
// for user-signed transactions. Each step's postcondition gates the
// next: a transaction that fails simulation is never broadcast, and the
// confirmation wait is bounded by confirmTimeout.
type Submitter struct {
	rpc            RPC
	confirmTimeout time.Duration
	pollInterval   time.Duration
	logger         *logrus.Logger
}

func NewSubmitter(rpcClient RPC, confirmTimeout time.Duration, logger *logrus.Logger) *Submitter {
	if confirmTimeout <= 0 {
		confirmTimeout = defaultConfirmTimeout
	}
	return &Submitter{
		rpc:            rpcClient,
		confirmTimeout: confirmTimeout,
		pollInterval:   defaultPollInterval,
		logger:         logger,
	}
}

// Submit broadcasts a signed transaction and waits for it to reach
// confirmed commitment. Payloads carrying the mock prefix short-circuit
// the pipeline with a synthetic success so the credential-less
// quote -> build -> submit path completes without a live network.
func (s *Submitter) Submit(ctx context.Context, sub swap.Submission) (*swap.SubmissionResult, error) {
	raw, err := base64.StdEncoding.DecodeString(sub.SignedTransaction)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base64: %v", swap.ErrDecode, err)
	}

	tx, err := solana.TransactionFromBytes(raw)
	if err != nil {
		if bytes.HasPrefix(raw, []byte(swap.MockPayloadPrefix)) {
			txID := swap.NewMockTxID()
			s.logger.WithField("txId", txID).Info("mock transaction submitted")
			return &swap.SubmissionResult{
				Source:       swap.SourceMock,
				TxID:         txID,
				MevProtected: sub.EnableMevProtection,
			}, nil
		}
		return nil, fmt.Errorf("%w: %v", swap.ErrDecode, err)
	}

	sim, err := s.rpc.SimulateTransaction(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", swap.ErrSimulation, err)
	}
	if sim != nil && sim.Value != nil && sim.Value.Err != nil {
		return nil, fmt.Errorf("%w: %v", swap.ErrSimulation, sim.Value.Err)
	}

	sig, err := s.rpc.SendRawTransactionWithOpts(ctx, raw, rpc.TransactionOpts{
		SkipPreflight:       false,
		PreflightCommitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", swap.ErrBroadcast, err)
	}

	if err := s.waitForConfirmation(ctx, sig); err != nil {
		return nil, err
	}

	s.logger.WithField("txId", sig.String()).Info("transaction confirmed")

	return &swap.SubmissionResult{
		Source:       swap.SourceLive,
		TxID:         sig.String(),
		MevProtected: sub.EnableMevProtection,
	}, nil
}

// waitForConfirmation polls the signature status until the transaction
// reaches confirmed commitment, fails on-chain, or the timeout expires.
func (s *Submitter) waitForConfirmation(ctx context.Context, sig solana.Signature) error {
	ctx, cancel := context.WithTimeout(ctx, s.confirmTimeout)
	defer cancel()

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return fmt.Errorf("%w after %s (tx %s)", swap.ErrConfirmationTimeout, s.confirmTimeout, sig)
			}
			return ctx.Err()
		case <-ticker.C:
			out, err := s.rpc.GetSignatureStatuses(ctx, true, sig)
			if err != nil {
				return fmt.Errorf("failed to get signature status: %w", err)
			}
			if out == nil || len(out.Value) == 0 || out.Value[0] == nil {
				continue
			}

			status := out.Value[0]
			if status.Err != nil {
				return fmt.Errorf("%w: %v", swap.ErrTransactionFailed, status.Err)
			}
			switch status.ConfirmationStatus {
			case rpc.ConfirmationStatusConfirmed, rpc.ConfirmationStatusFinalized:
				return nil
			}
		}
	}
}
