package service

import (
	"fmt"
	"strings"
)

// LogoutPolicy selects which bettors are logged out after a settlement
type LogoutPolicy string

const (
	// LogoutInitializer logs out only the initializer
	LogoutInitializer LogoutPolicy = "initializer"
	// LogoutBoth logs out both bettors
	LogoutBoth LogoutPolicy = "both"
	// LogoutNone keeps both sessions
	LogoutNone LogoutPolicy = "none"
)

// ParseLogoutPolicy parses a config value
func ParseLogoutPolicy(s string) (LogoutPolicy, error) {
	switch policy := LogoutPolicy(strings.ToLower(strings.TrimSpace(s))); policy {
	case "":
		return LogoutInitializer, nil
	case LogoutInitializer, LogoutBoth, LogoutNone:
		return policy, nil
	default:
		return "", fmt.Errorf("unknown logout policy %q", s)
	}
}

// Targets returns the user IDs to log out
func (p LogoutPolicy) Targets(initializerID, joinerID string) []string {
	switch p {
	case LogoutBoth:
		if initializerID == joinerID {
			return []string{initializerID}
		}
		return []string{initializerID, joinerID}
	case LogoutNone:
		return nil
	default:
		return []string{initializerID}
	}
}
