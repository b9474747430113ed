package chain

import (
	"context"
	"sync"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"
)

const (
	testProgramID = "J9mANdmdHKN8xANP1LTdpRhDxPYcWWgn7N2FiEU8A3Vr"
	testMint      = "So11111111111111111111111111111111111111112"
)

func testWorkspace(t *testing.T) *Workspace {
	t.Helper()
	ws, err := NewWorkspace(testProgramID, testMint, "confirmed", "devnet")
	require.NoError(t, err)
	return ws
}

func newKey(t *testing.T) solana.PrivateKey {
	t.Helper()
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	return key
}

type submission struct {
	signers      []solana.PrivateKey
	instructions []solana.Instruction
}

// recordingSubmitter captures submissions instead of sending them
type recordingSubmitter struct {
	mu          sync.Mutex
	submissions []submission
	err         error
}

func (r *recordingSubmitter) Submit(_ context.Context, signers []solana.PrivateKey, instructions ...solana.Instruction) (solana.Signature, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.submissions = append(r.submissions, submission{signers: signers, instructions: instructions})
	if r.err != nil {
		return solana.Signature{}, r.err
	}
	return solana.Signature{1, 2, 3}, nil
}

func (r *recordingSubmitter) last(t *testing.T) submission {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.submissions)
	return r.submissions[len(r.submissions)-1]
}
