package solana

import (
	"context"
	"encoding/base64"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keene2/meme-server/internal/swap"
)

type fakeRPC struct {
	simErr      error
	simValueErr any
	sendErr     error
	sendSig     solana.Signature
	statusErr   any
	statusState rpc.ConfirmationStatusType

	// statusDelay is how many polls return no status before the final
	// one appears.
	statusDelay int

	simCalls    int
	sendCalls   int
	statusCalls int
}

func (f *fakeRPC) SimulateTransaction(_ context.Context, _ *solana.Transaction) (*rpc.SimulateTransactionResponse, error) {
	f.simCalls++
	if f.simErr != nil {
		return nil, f.simErr
	}
	return &rpc.SimulateTransactionResponse{
		Value: &rpc.SimulateTransactionResult{Err: f.simValueErr},
	}, nil
}

func (f *fakeRPC) SendRawTransactionWithOpts(_ context.Context, _ []byte, opts rpc.TransactionOpts) (solana.Signature, error) {
	f.sendCalls++
	if opts.SkipPreflight {
		panic("preflight must not be skipped")
	}
	if f.sendErr != nil {
		return solana.Signature{}, f.sendErr
	}
	return f.sendSig, nil
}

func (f *fakeRPC) GetSignatureStatuses(_ context.Context, _ bool, _ ...solana.Signature) (*rpc.GetSignatureStatusesResult, error) {
	f.statusCalls++
	if f.statusCalls <= f.statusDelay {
		return &rpc.GetSignatureStatusesResult{Value: []*rpc.SignatureStatusesResult{nil}}, nil
	}
	return &rpc.GetSignatureStatusesResult{
		Value: []*rpc.SignatureStatusesResult{{
			Err:                f.statusErr,
			ConfirmationStatus: f.statusState,
		}},
	}, nil
}

func newTestSubmitter(rpcClient RPC) *Submitter {
	s := NewSubmitter(rpcClient, time.Second, testLogger())
	s.pollInterval = time.Millisecond
	return s
}

// signedTxBase64 builds and signs a minimal transfer transaction, the
// way a wallet would before calling submit.
func signedTxBase64(t *testing.T) (string, solana.Signature) {
	t.Helper()

	wallet := solana.NewWallet()
	to := solana.NewWallet().PublicKey()

	tx, err := solana.NewTransaction(
		[]solana.Instruction{
			system.NewTransferInstruction(1000, wallet.PublicKey(), to).Build(),
		},
		solana.Hash{},
		solana.TransactionPayer(wallet.PublicKey()),
	)
	require.NoError(t, err)

	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(wallet.PublicKey()) {
			return &wallet.PrivateKey
		}
		return nil
	})
	require.NoError(t, err)

	raw, err := tx.MarshalBinary()
	require.NoError(t, err)
	return base64.StdEncoding.EncodeToString(raw), tx.Signatures[0]
}

func TestSubmit_InvalidBase64(t *testing.T) {
	client := &fakeRPC{}
	submitter := newTestSubmitter(client)

	_, err := submitter.Submit(context.Background(), swap.Submission{SignedTransaction: "not-base64!!!"})
	require.ErrorIs(t, err, swap.ErrDecode)
	assert.Zero(t, client.simCalls)
	assert.Zero(t, client.sendCalls)
}

func TestSubmit_UndecodableTransaction(t *testing.T) {
	client := &fakeRPC{}
	submitter := newTestSubmitter(client)

	garbage := base64.StdEncoding.EncodeToString([]byte("definitely not a transaction"))
	_, err := submitter.Submit(context.Background(), swap.Submission{SignedTransaction: garbage})
	require.ErrorIs(t, err, swap.ErrDecode)
	assert.Zero(t, client.sendCalls)
}

func TestSubmit_MockPayloadShortCircuits(t *testing.T) {
	client := &fakeRPC{}
	submitter := newTestSubmitter(client)

	result, err := submitter.Submit(context.Background(), swap.Submission{
		SignedTransaction:   swap.NewMockPayload(),
		EnableMevProtection: true,
	})
	require.NoError(t, err)

	assert.Equal(t, swap.SourceMock, result.Source)
	assert.Regexp(t, `^mock_tx_\d+_[0-9a-z]{9}$`, result.TxID)
	assert.True(t, result.MevProtected)

	assert.Zero(t, client.simCalls, "mock payloads never reach the network")
	assert.Zero(t, client.sendCalls)

	second, err := submitter.Submit(context.Background(), swap.Submission{SignedTransaction: swap.NewMockPayload()})
	require.NoError(t, err)
	assert.NotEqual(t, result.TxID, second.TxID)
}

func TestSubmit_SimulationRPCError(t *testing.T) {
	client := &fakeRPC{simErr: assert.AnError}
	submitter := newTestSubmitter(client)
	payload, _ := signedTxBase64(t)

	_, err := submitter.Submit(context.Background(), swap.Submission{SignedTransaction: payload})
	require.ErrorIs(t, err, swap.ErrSimulation)
	assert.Zero(t, client.sendCalls, "failed simulation must block broadcast")
}

func TestSubmit_SimulationProgramError(t *testing.T) {
	client := &fakeRPC{simValueErr: map[string]any{"InstructionError": []any{0, "Custom"}}}
	submitter := newTestSubmitter(client)
	payload, _ := signedTxBase64(t)

	_, err := submitter.Submit(context.Background(), swap.Submission{SignedTransaction: payload})
	require.ErrorIs(t, err, swap.ErrSimulation)
	assert.Zero(t, client.sendCalls)
}

func TestSubmit_BroadcastError(t *testing.T) {
	client := &fakeRPC{sendErr: assert.AnError}
	submitter := newTestSubmitter(client)
	payload, _ := signedTxBase64(t)

	_, err := submitter.Submit(context.Background(), swap.Submission{SignedTransaction: payload})
	require.ErrorIs(t, err, swap.ErrBroadcast)
}

func TestSubmit_ConfirmedTransaction(t *testing.T) {
	payload, sig := signedTxBase64(t)
	client := &fakeRPC{
		sendSig:     sig,
		statusState: rpc.ConfirmationStatusConfirmed,
		statusDelay: 2,
	}
	submitter := newTestSubmitter(client)

	result, err := submitter.Submit(context.Background(), swap.Submission{SignedTransaction: payload})
	require.NoError(t, err)

	assert.Equal(t, swap.SourceLive, result.Source)
	assert.Equal(t, sig.String(), result.TxID)
	assert.Equal(t, 1, client.simCalls)
	assert.Equal(t, 1, client.sendCalls)
	assert.GreaterOrEqual(t, client.statusCalls, 3, "polling continues past missing statuses")
}

func TestSubmit_FinalizedCountsAsConfirmed(t *testing.T) {
	payload, sig := signedTxBase64(t)
	client := &fakeRPC{sendSig: sig, statusState: rpc.ConfirmationStatusFinalized}
	submitter := newTestSubmitter(client)

	result, err := submitter.Submit(context.Background(), swap.Submission{SignedTransaction: payload})
	require.NoError(t, err)
	assert.Equal(t, sig.String(), result.TxID)
}

func TestSubmit_OnChainFailure(t *testing.T) {
	payload, sig := signedTxBase64(t)
	client := &fakeRPC{
		sendSig:   sig,
		statusErr: map[string]any{"InstructionError": []any{0, map[string]any{"Custom": 6001}}},
	}
	submitter := newTestSubmitter(client)

	_, err := submitter.Submit(context.Background(), swap.Submission{SignedTransaction: payload})
	require.ErrorIs(t, err, swap.ErrTransactionFailed)
}

func TestSubmit_ConfirmationTimeout(t *testing.T) {
	payload, sig := signedTxBase64(t)
	client := &fakeRPC{
		sendSig: sig,
		// the status never materializes
		statusDelay: 1 << 30,
	}
	submitter := NewSubmitter(client, 50*time.Millisecond, testLogger())
	submitter.pollInterval = time.Millisecond

	_, err := submitter.Submit(context.Background(), swap.Submission{SignedTransaction: payload})
	require.ErrorIs(t, err, swap.ErrConfirmationTimeout)
	assert.Equal(t, 1, client.sendCalls, "a timed-out transaction is not re-broadcast")
}
