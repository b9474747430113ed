package chain

import (
	"context"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubReader struct {
	existing map[solana.PublicKey]bool
	err      error
}

func (s *stubReader) GetAccountInfoWithOpts(_ context.Context, account solana.PublicKey, _ *rpc.GetAccountInfoOpts) (*rpc.GetAccountInfoResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.existing[account] {
		return &rpc.GetAccountInfoResult{}, nil
	}
	return nil, rpc.ErrNotFound
}

func TestTokenAccounts_ExistingAccountIsNotRecreated(t *testing.T) {
	ws := testWorkspace(t)
	owner := solana.NewWallet().PublicKey()
	ata, _, err := solana.FindAssociatedTokenAddress(owner, ws.Mint)
	require.NoError(t, err)

	submitter := &recordingSubmitter{}
	resolver := NewTokenAccounts(ws, &stubReader{existing: map[solana.PublicKey]bool{ata: true}}, submitter, newKey(t))

	got, err := resolver.ResolveOrCreate(context.Background(), owner, nil)
	require.NoError(t, err)
	assert.Equal(t, ata, got)
	assert.Empty(t, submitter.submissions)
}

func TestTokenAccounts_CreatesMissingAccount(t *testing.T) {
	ws := testWorkspace(t)
	owner := solana.NewWallet().PublicKey()
	authority := newKey(t)

	submitter := &recordingSubmitter{}
	resolver := NewTokenAccounts(ws, &stubReader{}, submitter, authority)

	got, err := resolver.ResolveOrCreate(context.Background(), owner, nil)
	require.NoError(t, err)

	sub := submitter.last(t)
	assert.Equal(t, authority.PublicKey(), sub.signers[0].PublicKey())
	instruction := sub.instructions[0]
	assert.Equal(t, solana.SPLAssociatedTokenAccountProgramID, instruction.ProgramID())
	assertAccounts(t, instruction, []metaExpectation{
		{key: authority.PublicKey(), writable: true, signer: true},
		{key: got, writable: true},
		{key: owner},
		{key: ws.Mint},
		{key: solana.SystemProgramID},
		{key: solana.TokenProgramID},
	})
	data, err := instruction.Data()
	require.NoError(t, err)
	assert.Equal(t, []byte{1}, data)
}

func TestTokenAccounts_ExplicitPayer(t *testing.T) {
	ws := testWorkspace(t)
	payer := newKey(t)

	submitter := &recordingSubmitter{}
	resolver := NewTokenAccounts(ws, &stubReader{}, submitter, newKey(t))

	_, err := resolver.ResolveOrCreate(context.Background(), payer.PublicKey(), payer)
	require.NoError(t, err)
	assert.Equal(t, payer.PublicKey(), submitter.last(t).signers[0].PublicKey())
}

func TestTokenAccounts_ReaderFailure(t *testing.T) {
	ws := testWorkspace(t)
	resolver := NewTokenAccounts(ws, &stubReader{err: errors.New("connection refused")}, &recordingSubmitter{}, newKey(t))

	_, err := resolver.ResolveOrCreate(context.Background(), solana.NewWallet().PublicKey(), nil)
	assert.Error(t, err)
}
