package wallet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSealer_RoundTrip(t *testing.T) {
	sealer, err := NewSealer("passphrase", []byte("salt"))
	require.NoError(t, err)

	sealed, err := sealer.Seal("user-1", []byte("secret bytes"))
	require.NoError(t, err)

	opened, err := sealer.Open("user-1", sealed)
	require.NoError(t, err)
	assert.Equal(t, []byte("secret bytes"), opened)
}

func TestSealer_FreshNoncePerSeal(t *testing.T) {
	sealer, err := NewSealer("passphrase", []byte("salt"))
	require.NoError(t, err)

	a, err := sealer.Seal("user-1", []byte("same"))
	require.NoError(t, err)
	b, err := sealer.Seal("user-1", []byte("same"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestSealer_Rejects(t *testing.T) {
	sealer, err := NewSealer("passphrase", []byte("salt"))
	require.NoError(t, err)
	sealed, err := sealer.Seal("user-1", []byte("secret"))
	require.NoError(t, err)

	t.Run("wrong user", func(t *testing.T) {
		_, err := sealer.Open("user-2", sealed)
		assert.Error(t, err)
	})

	t.Run("wrong passphrase", func(t *testing.T) {
		other, err := NewSealer("other", []byte("salt"))
		require.NoError(t, err)
		_, err = other.Open("user-1", sealed)
		assert.Error(t, err)
	})

	t.Run("truncated", func(t *testing.T) {
		_, err := sealer.Open("user-1", sealed[:10])
		assert.Error(t, err)
	})
}

func TestNewSealer_RequiresInputs(t *testing.T) {
	_, err := NewSealer("", []byte("salt"))
	assert.Error(t, err)
	_, err = NewSealer("passphrase", nil)
	assert.Error(t, err)
}
