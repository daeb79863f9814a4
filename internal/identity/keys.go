package identity

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LoadOrGenerateKeyHex loads or generates the PASETO v4 symmetric key.
// The key is stored in <dataPath>/auth.key as a hex-encoded string. If the
// file doesn't exist, a new key is generated and saved.
func LoadOrGenerateKeyHex(dataPath string) (string, error) {
	keyPath := filepath.Join(dataPath, "auth.key")

	//#nosec G304 -- Auth key path is derived from validated data path
	if keyBytes, err := os.ReadFile(keyPath); err == nil {
		keyHex := strings.TrimSpace(string(keyBytes))
		if len(keyHex) != keyHexSize {
			return "", fmt.Errorf("invalid auth key length: expected %d hex chars, got %d", keyHexSize, len(keyHex))
		}
		return keyHex, nil
	}

	keyHex := GenerateKeyHex()

	if err := os.MkdirAll(dataPath, 0o700); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}

	if err := os.WriteFile(keyPath, []byte(keyHex), 0o600); err != nil {
		return "", fmt.Errorf("failed to save auth key: %w", err)
	}

	return keyHex, nil
}
