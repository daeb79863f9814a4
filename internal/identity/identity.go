// Package identity resolves the authenticated principal that scopes every
// read and write. The provider is injected explicitly so tests can supply
// fake principals instead of relying on ambient global state.
package identity

import (
	"context"

	"github.com/tickstack/tickstack-server/internal/errors"
)

// Provider resolves the current principal's identifier.
type Provider interface {
	// CurrentOwnerID returns the identifier of the signed-in principal,
	// or an Unauthenticated error when nobody is signed in.
	CurrentOwnerID(ctx context.Context) (string, error)
}

// Static is a provider with a fixed principal, used for single-user
// deployments where the owner is set in configuration.
type Static struct {
	OwnerID string
}

// NewStatic creates a static provider for the given principal.
func NewStatic(ownerID string) *Static {
	return &Static{OwnerID: ownerID}
}

// CurrentOwnerID implements Provider.
func (s *Static) CurrentOwnerID(_ context.Context) (string, error) {
	if s.OwnerID == "" {
		return "", errors.Unauthenticated("no principal signed in")
	}
	return s.OwnerID, nil
}

type ctxKey struct{}

// WithOwner stamps the principal onto the context. The HTTP auth
// middleware does this after verifying the bearer token.
func WithOwner(ctx context.Context, ownerID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, ownerID)
}

// FromContext is a provider that reads the principal previously stamped
// onto the request context.
type FromContext struct{}

// CurrentOwnerID implements Provider.
func (FromContext) CurrentOwnerID(ctx context.Context) (string, error) {
	owner, ok := ctx.Value(ctxKey{}).(string)
	if !ok || owner == "" {
		return "", errors.Unauthenticated("no principal signed in")
	}
	return owner, nil
}
