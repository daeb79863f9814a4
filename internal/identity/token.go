package identity

import (
	"encoding/hex"
	"fmt"
	"time"

	"aidanwoods.dev/go-paseto"

	"github.com/tickstack/tickstack-server/internal/errors"
	"github.com/tickstack/tickstack-server/internal/id"
)

const (
	tokenIssuer   = "tickstack-server"
	tokenAudience = "tickstack-client"

	// PASETO v4 symmetric key requirements.
	keyBytesSize = 32 // 256 bits
	keyHexSize   = 64 // 32 bytes as hex string
)

// Claims are the verified contents of an access token.
type Claims struct {
	OwnerID    string
	TokenID    string
	IssuedAt   time.Time
	Expiration time.Time
}

// TokenService issues and verifies PASETO v4.local access tokens carrying
// the principal identifier.
type TokenService struct {
	symmetricKey  paseto.V4SymmetricKey
	tokenDuration time.Duration
}

// NewTokenService creates a token service from a hex-encoded 32-byte key.
func NewTokenService(keyHex string, tokenDuration time.Duration) (*TokenService, error) {
	if len(keyHex) != keyHexSize {
		return nil, fmt.Errorf("PASETO v4 key must be exactly %d hex characters (%d bytes), got %d", keyHexSize, keyBytesSize, len(keyHex))
	}

	keyBytes, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, fmt.Errorf("invalid hex string for PASETO key: %w", err)
	}

	key, err := paseto.V4SymmetricKeyFromBytes(keyBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to create PASETO symmetric key: %w", err)
	}

	return &TokenService{
		symmetricKey:  key,
		tokenDuration: tokenDuration,
	}, nil
}

// GenerateKeyHex produces a fresh random key in the hex form NewTokenService expects.
func GenerateKeyHex() string {
	key := paseto.NewV4SymmetricKey()
	return key.ExportHex()
}

// IssueToken creates an encrypted access token for the given principal.
func (s *TokenService) IssueToken(ownerID string) (string, error) {
	if ownerID == "" {
		return "", errors.Validation("owner id cannot be empty")
	}

	now := time.Now()

	token := paseto.NewToken()
	token.SetIssuer(tokenIssuer)
	token.SetSubject(ownerID)
	token.SetAudience(tokenAudience)
	token.SetIssuedAt(now)
	token.SetNotBefore(now)
	token.SetExpiration(now.Add(s.tokenDuration))

	tokenID, err := id.Handle("token")
	if err != nil {
		return "", fmt.Errorf("generate token ID: %w", err)
	}
	token.SetJti(tokenID)

	return token.V4Encrypt(s.symmetricKey, nil), nil
}

// VerifyToken verifies an access token and returns its claims.
// Invalid or expired tokens yield an Unauthenticated error.
func (s *TokenService) VerifyToken(tokenString string) (*Claims, error) {
	parser := paseto.NewParser()
	parser.AddRule(paseto.ForAudience(tokenAudience))
	parser.AddRule(paseto.IssuedBy(tokenIssuer))
	parser.AddRule(paseto.NotExpired())
	parser.AddRule(paseto.ValidAt(time.Now()))

	token, err := parser.ParseV4Local(s.symmetricKey, tokenString, nil)
	if err != nil {
		return nil, errors.Unauthenticated("invalid or expired token").WithCause(err)
	}

	subject, err := token.GetSubject()
	if err != nil || subject == "" {
		return nil, errors.Unauthenticated("token missing subject")
	}

	claims := &Claims{OwnerID: subject}
	if jti, err := token.GetJti(); err == nil {
		claims.TokenID = jti
	}
	if iat, err := token.GetIssuedAt(); err == nil {
		claims.IssuedAt = iat
	}
	if exp, err := token.GetExpiration(); err == nil {
		claims.Expiration = exp
	}

	return claims, nil
}
