package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBetSession_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from     BetPhase
		to       BetPhase
		expected bool
	}{
		{BetPhaseOpened, BetPhaseJoined, true},
		{BetPhaseOpened, BetPhaseCancelled, true},
		{BetPhaseOpened, BetPhaseSettled, false},
		{BetPhaseJoined, BetPhaseSettled, true},
		{BetPhaseJoined, BetPhaseCancelled, false},
		{BetPhaseJoined, BetPhaseOpened, false},
		{BetPhaseSettled, BetPhaseOpened, false},
		{BetPhaseCancelled, BetPhaseJoined, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			session := &BetSession{Phase: tt.from}
			assert.Equal(t, tt.expected, session.CanTransitionTo(tt.to))
		})
	}
}

func TestKeyPair_StringOmitsSecret(t *testing.T) {
	kp := KeyPair{SecretKey: []byte{1, 2, 3, 4}, PublicKey: "pub"}

	assert.Equal(t, "KeyPair{PublicKey:pub}", kp.String())
	assert.NotContains(t, kp.GoString(), "1 2 3 4")
}

func TestNewAccount_StringOmitsMnemonic(t *testing.T) {
	account := NewAccount{ExternalID: "42", PublicKey: "pub", Mnemonic: "abandon abandon ability"}

	assert.NotContains(t, account.String(), "abandon")
	assert.Contains(t, account.String(), "pub")
}
