package chain

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWorkspace(t *testing.T) {
	ws, err := NewWorkspace(testProgramID, testMint, "finalized", "devnet")
	require.NoError(t, err)

	assert.Equal(t, solana.MustPublicKeyFromBase58(testProgramID), ws.ProgramID)
	assert.Equal(t, rpc.CommitmentFinalized, ws.Commitment)
}

func TestNewWorkspace_Invalid(t *testing.T) {
	_, err := NewWorkspace("not-a-key", testMint, "confirmed", "devnet")
	assert.Error(t, err)

	_, err = NewWorkspace(testProgramID, testMint, "eventually", "devnet")
	assert.Error(t, err)
}

func TestExplorerURL(t *testing.T) {
	sig := solana.Signature{1}

	ws := testWorkspace(t)
	assert.Equal(t, "https://explorer.solana.com/tx/"+sig.String()+"?cluster=devnet", ws.ExplorerURL(sig))

	ws.ExplorerCluster = "mainnet-beta"
	assert.Equal(t, "https://explorer.solana.com/tx/"+sig.String(), ws.ExplorerURL(sig))
}
