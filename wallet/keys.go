package wallet

import (
	"crypto/ed25519"
	"crypto/subtle"
	"fmt"

	"escrowbot/models"

	"github.com/gagliardetto/solana-go"
	"github.com/tyler-smith/go-bip39"
)

// mnemonicEntropyBits gives a 12-word phrase
const mnemonicEntropyBits = 128

// GenerateMnemonic returns a new BIP-39 phrase from fresh entropy
func GenerateMnemonic() (string, error) {
	entropy, err := bip39.NewEntropy(mnemonicEntropyBits)
	if err != nil {
		return "", fmt.Errorf("failed to generate entropy: %w", err)
	}
	defer Wipe(entropy)

	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("failed to encode mnemonic: %w", err)
	}
	return mnemonic, nil
}

// KeyPairFromMnemonic derives the signing key from the first 32 bytes of the
// phrase's BIP-39 seed (empty passphrase).
func KeyPairFromMnemonic(mnemonic string) (*models.KeyPair, error) {
	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, "")
	if err != nil {
		return nil, fmt.Errorf("invalid mnemonic: %w", err)
	}
	defer Wipe(seed)

	secretKey := solana.PrivateKey(ed25519.NewKeyFromSeed(seed[:ed25519.SeedSize]))
	return &models.KeyPair{
		SecretKey: secretKey,
		PublicKey: secretKey.PublicKey().String(),
	}, nil
}

// Wipe overwrites b with zeros
func Wipe(b []byte) {
	if len(b) == 0 {
		return
	}
	subtle.ConstantTimeCopy(1, b, make([]byte, len(b)))
}
