package wallet

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tyler-smith/go-bip39"
)

func TestGenerateMnemonic(t *testing.T) {
	mnemonic, err := GenerateMnemonic()
	require.NoError(t, err)

	assert.Len(t, strings.Fields(mnemonic), 12)
	assert.True(t, bip39.IsMnemonicValid(mnemonic))

	other, err := GenerateMnemonic()
	require.NoError(t, err)
	assert.NotEqual(t, mnemonic, other)
}

func TestKeyPairFromMnemonic_Deterministic(t *testing.T) {
	mnemonic := "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

	first, err := KeyPairFromMnemonic(mnemonic)
	require.NoError(t, err)
	second, err := KeyPairFromMnemonic(mnemonic)
	require.NoError(t, err)

	assert.Equal(t, first.SecretKey, second.SecretKey)
	assert.Equal(t, first.PublicKey, first.SecretKey.PublicKey().String())
	assert.Len(t, first.SecretKey, 64)
}

func TestKeyPairFromMnemonic_Invalid(t *testing.T) {
	_, err := KeyPairFromMnemonic("not a real mnemonic phrase")
	assert.Error(t, err)
}

func TestWipe(t *testing.T) {
	b := []byte{1, 2, 3}
	Wipe(b)
	assert.Equal(t, []byte{0, 0, 0}, b)
	Wipe(nil)
}
