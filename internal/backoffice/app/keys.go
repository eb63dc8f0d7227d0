package app

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/elmagroup/backoffice/pkg/cryptox"
	"github.com/elmagroup/backoffice/pkg/jwtx"
)

// SessionKeys is the signing key for session tokens and the key set used
// to verify them.
type SessionKeys struct {
	Signer   *jwtx.EdDSASigner
	KeySet   *jwtx.KeySet
	Verifier jwtx.Verifier
}

// InitSessionKeys loads the Ed25519 key at cfg.SessionKeyFile, creating it
// if it does not exist. With no file configured a fresh key is generated
// and every session is invalidated on restart.
func InitSessionKeys(cfg Config, logger *slog.Logger) (*SessionKeys, error) {
	pemKey, err := loadOrCreateKey(cfg.SessionKeyFile)
	if err != nil {
		return nil, err
	}

	if cfg.SessionKeyFile == "" {
		logger.Warn("SESSION_KEY_FILE not set: using an ephemeral signing key, sessions end on restart")
	} else {
		logger.Info("session signing key loaded", "path", cfg.SessionKeyFile)
	}

	signer, err := jwtx.NewSignerEdDSA(keyID(pemKey), pemKey)
	if err != nil {
		return nil, fmt.Errorf("failed to parse session key: %w", err)
	}

	keys := jwtx.NewKeySet()
	keys.AddSigner(signer)

	return &SessionKeys{
		Signer:   signer,
		KeySet:   keys,
		Verifier: jwtx.NewVerifierEdDSA(keys, cfg.SessionIssuer),
	}, nil
}

func loadOrCreateKey(path string) ([]byte, error) {
	if path == "" {
		return cryptox.GenerateEd25519Key()
	}

	data, err := os.ReadFile(path)
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read session key: %w", err)
	}

	data, err = cryptox.GenerateEd25519Key()
	if err != nil {
		return nil, err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("failed to create session key directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return nil, fmt.Errorf("failed to write session key: %w", err)
	}
	return data, nil
}

// keyID is stable for a given key so tokens survive restarts.
func keyID(pemKey []byte) string {
	sum := sha256.Sum256(pemKey)
	return base64.RawURLEncoding.EncodeToString(sum[:8])
}
