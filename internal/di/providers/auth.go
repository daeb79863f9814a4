package providers

import (
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/tickstack/tickstack-server/internal/config"
	"github.com/tickstack/tickstack-server/internal/identity"
)

// ProvideTokenService provides the PASETO token service. The symmetric key
// comes from configuration when set, otherwise it is loaded from (or
// generated into) the data directory.
func ProvideTokenService(i do.Injector) (*identity.TokenService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*slog.Logger](i)

	keyHex := cfg.Auth.AccessTokenKey
	if keyHex == "" {
		loaded, err := identity.LoadOrGenerateKeyHex(cfg.Data.BasePath)
		if err != nil {
			return nil, err
		}
		keyHex = loaded
	}

	log.Info("Authentication key loaded",
		"access_token_duration", cfg.Auth.AccessTokenDuration,
	)

	return identity.NewTokenService(keyHex, cfg.Auth.AccessTokenDuration)
}

// ProvideIdentity provides the principal resolver used by the services.
// The HTTP middleware stamps the verified principal onto each request
// context; the provider reads it back.
func ProvideIdentity(i do.Injector) (identity.Provider, error) {
	return identity.FromContext{}, nil
}
