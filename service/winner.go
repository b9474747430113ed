package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

type cryptoRandom struct{}

// NewCryptoRandom returns a RandomSource backed by the operating system CSPRNG
func NewCryptoRandom() RandomSource {
	return cryptoRandom{}
}

func (cryptoRandom) Intn(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic(fmt.Sprintf("crypto/rand failed: %v", err))
	}
	return int(v.Int64())
}

// PickWinner flips a fair coin between the two bettors. The stake plays no
// part in the odds.
func PickWinner(src RandomSource, initializerID, joinerID string) (winnerID, loserID string) {
	if src.Intn(2) == 0 {
		return initializerID, joinerID
	}
	return joinerID, initializerID
}
