package auth

import (
	"context"
	"errors"
)

// Identity is the profile asserted by an external identity provider.
type Identity struct {
	Email     string
	FirstName string
	LastName  string
}

// IdentityVerifier validates a provider-issued id token and returns the
// asserted identity. Token verification itself happens outside this service;
// implementations wrap the provider SDK or a token-introspection endpoint.
type IdentityVerifier interface {
	Verify(ctx context.Context, idToken string) (Identity, error)
}

// ErrVerifierUnavailable is returned when no provider is configured.
var ErrVerifierUnavailable = errors.New("identity verifier not configured")

type disabledVerifier struct{}

func (disabledVerifier) Verify(ctx context.Context, idToken string) (Identity, error) {
	return Identity{}, ErrVerifierUnavailable
}

// NewDisabledVerifier returns a verifier that rejects every token. Used when
// GOOGLE_OAUTH_CLIENT_ID is not set.
func NewDisabledVerifier() IdentityVerifier {
	return disabledVerifier{}
}
