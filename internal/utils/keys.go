package utils

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/hkdf"
)

// SessionKeyConfig holds the parameters used to stretch the session secret
type SessionKeyConfig struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	Salt        []byte
}

// DefaultSessionKeyConfig returns the default configuration for session key derivation
func DefaultSessionKeyConfig() *SessionKeyConfig {
	return &SessionKeyConfig{
		Memory:      64 * 1024, // 64 MB
		Iterations:  1,
		Parallelism: 2,
		Salt:        []byte("event-checkout/session-cookie"),
	}
}

// SessionKeys are the cookie authentication and encryption keys
type SessionKeys struct {
	HashKey  []byte // 64 bytes, HMAC-SHA256
	BlockKey []byte // 32 bytes, AES-256
}

// DeriveSessionKeys stretches secret with Argon2id and expands the result into
// independent cookie signing and encryption keys. The same secret always yields the same keys,
// so cookies survive restarts.
func DeriveSessionKeys(secret string, config *SessionKeyConfig) (*SessionKeys, error) {
	if secret == "" {
		return nil, errors.New("session secret is required")
	}
	if config == nil {
		config = DefaultSessionKeyConfig()
	}

	master := argon2.IDKey([]byte(secret), config.Salt, config.Iterations, config.Memory, config.Parallelism, 32)

	keys := &SessionKeys{
		HashKey:  make([]byte, 64),
		BlockKey: make([]byte, 32),
	}
	if err := expand(master, "cookie-hash", keys.HashKey); err != nil {
		return nil, err
	}
	if err := expand(master, "cookie-block", keys.BlockKey); err != nil {
		return nil, err
	}
	return keys, nil
}

func expand(master []byte, info string, out []byte) error {
	reader := hkdf.Expand(sha256.New, master, []byte(info))
	if _, err := io.ReadFull(reader, out); err != nil {
		return fmt.Errorf("failed to derive %s key: %w", info, err)
	}
	return nil
}
