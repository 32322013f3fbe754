package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const tokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"

// ErrInvalidIDToken is returned when the provider rejects the id token or it
// was issued for a different client.
var ErrInvalidIDToken = errors.New("invalid id token")

// googleVerifier validates Google id tokens against the tokeninfo endpoint
// and checks the audience against the configured OAuth client id.
type googleVerifier struct {
	clientID string
	client   *http.Client
}

// NewGoogleVerifier returns an IdentityVerifier backed by Google's tokeninfo
// endpoint, or a disabled verifier when no client id is configured.
func NewGoogleVerifier(clientID string) IdentityVerifier {
	if clientID == "" {
		return NewDisabledVerifier()
	}
	return &googleVerifier{
		clientID: clientID,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (v *googleVerifier) Verify(ctx context.Context, idToken string) (Identity, error) {
	endpoint := tokenInfoURL + "?id_token=" + url.QueryEscape(idToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Identity{}, err
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return Identity{}, fmt.Errorf("tokeninfo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Identity{}, ErrInvalidIDToken
	}

	var info struct {
		Audience      string `json:"aud"`
		Email         string `json:"email"`
		EmailVerified string `json:"email_verified"`
		GivenName     string `json:"given_name"`
		FamilyName    string `json:"family_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return Identity{}, err
	}

	if info.Audience != v.clientID {
		return Identity{}, ErrInvalidIDToken
	}
	if info.Email == "" || info.EmailVerified != "true" {
		return Identity{}, ErrInvalidIDToken
	}

	return Identity{
		Email:     info.Email,
		FirstName: info.GivenName,
		LastName:  info.FamilyName,
	}, nil
}
