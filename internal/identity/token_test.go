package identity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/tickstack/tickstack-server/internal/errors"
)

func newTestTokenService(t *testing.T, duration time.Duration) *TokenService {
	t.Helper()
	svc, err := NewTokenService(GenerateKeyHex(), duration)
	require.NoError(t, err)
	return svc
}

func TestTokenService_IssueAndVerify(t *testing.T) {
	svc := newTestTokenService(t, time.Hour)

	token, err := svc.IssueToken("owner1")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "owner1", claims.OwnerID)
	assert.NotEmpty(t, claims.TokenID)
	assert.True(t, claims.Expiration.After(time.Now()))
}

func TestTokenService_EmptyOwnerRejected(t *testing.T) {
	svc := newTestTokenService(t, time.Hour)

	_, err := svc.IssueToken("")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestTokenService_ExpiredToken(t *testing.T) {
	svc := newTestTokenService(t, -time.Minute)

	token, err := svc.IssueToken("owner1")
	require.NoError(t, err)

	_, err = svc.VerifyToken(token)
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
}

func TestTokenService_GarbageToken(t *testing.T) {
	svc := newTestTokenService(t, time.Hour)

	_, err := svc.VerifyToken("v4.local.not-a-real-token")
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
}

func TestTokenService_WrongKeyRejected(t *testing.T) {
	issuer := newTestTokenService(t, time.Hour)
	verifier := newTestTokenService(t, time.Hour)

	token, err := issuer.IssueToken("owner1")
	require.NoError(t, err)

	_, err = verifier.VerifyToken(token)
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
}

func TestNewTokenService_KeyValidation(t *testing.T) {
	_, err := NewTokenService("tooshort", time.Hour)
	assert.Error(t, err)

	notHex := make([]byte, 64)
	for i := range notHex {
		notHex[i] = 'z'
	}
	_, err = NewTokenService(string(notHex), time.Hour)
	assert.Error(t, err)
}

func TestStaticProvider(t *testing.T) {
	owner, err := NewStatic("owner1").CurrentOwnerID(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "owner1", owner)

	_, err = NewStatic("").CurrentOwnerID(t.Context())
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
}

func TestContextProvider(t *testing.T) {
	var provider FromContext

	ctx := WithOwner(t.Context(), "owner1")
	owner, err := provider.CurrentOwnerID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "owner1", owner)

	_, err = provider.CurrentOwnerID(t.Context())
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
}
