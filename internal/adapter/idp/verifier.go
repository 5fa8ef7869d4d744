// Package idp verifies identity-provider session tokens and fetches user
// profiles from the provider's API.
package idp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/agentmart/agentmart-backend/internal/auth"
	"github.com/agentmart/agentmart-backend/internal/domain"
)

// Verifier validates provider-issued session tokens locally and resolves the
// full user profile over the provider's HTTP API when one is needed.
type Verifier struct {
	issuer        string
	signingSecret []byte
	profileURL    string
	httpClient    *http.Client
	log           *slog.Logger
}

// NewVerifier creates a session verifier from IdentityProviderConfig values.
func NewVerifier(issuer, signingSecret, profileURL string, timeout time.Duration, logger *slog.Logger) *Verifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Verifier{
		issuer:        issuer,
		signingSecret: []byte(signingSecret),
		profileURL:    strings.TrimRight(profileURL, "/"),
		httpClient:    &http.Client{Timeout: timeout},
		log:           logger.With("adapter", "idp"),
	}
}

// sessionClaims is the claim set the provider signs into a session token.
type sessionClaims struct {
	jwt.RegisteredClaims
	SessionID string  `json:"sid"`
	Email     string  `json:"email"`
	Name      *string `json:"name,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

// profileResponse is the provider's user profile payload.
type profileResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email_address"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	ImageURL  string `json:"image_url"`
}

// VerifySession checks the session token's signature, issuer and expiry and
// returns the identity it asserts. Any defect in the token maps to
// domain.ErrUnauthenticated; the caller never learns which check failed.
func (v *Verifier) VerifySession(ctx context.Context, sessionToken string) (*auth.ExternalIdentity, error) {
	if sessionToken == "" {
		return nil, fmt.Errorf("idp: empty session token: %w", domain.ErrUnauthenticated)
	}

	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(sessionToken, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return v.signingSecret, nil
	},
		jwt.WithIssuer(v.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithValidMethods([]string{"HS256"}),
	)
	if err != nil {
		v.log.DebugContext(ctx, "session token rejected", slog.String("error", err.Error()))
		return nil, fmt.Errorf("idp: invalid session token: %w", domain.ErrUnauthenticated)
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("idp: session token missing subject: %w", domain.ErrUnauthenticated)
	}

	return &auth.ExternalIdentity{
		ExternalUserID: claims.Subject,
		SessionID:      claims.SessionID,
		Email:          strings.ToLower(strings.TrimSpace(claims.Email)),
		Name:           claims.Name,
		AvatarURL:      claims.AvatarURL,
	}, nil
}

// FetchProfile loads the full profile for an external user id from the
// provider API. Used during auto-provisioning when the session token alone
// does not carry enough profile data.
func (v *Verifier) FetchProfile(ctx context.Context, externalUserID string) (*auth.ExternalIdentity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		v.profileURL+"/users/"+externalUserID, nil)
	if err != nil {
		return nil, fmt.Errorf("idp: create profile request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := v.doWithRetry(ctx, req)
	if err != nil {
		v.log.ErrorContext(ctx, "profile fetch failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("idp: provider unavailable: %w", domain.ErrUnauthenticated)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("idp: read profile response: %w", domain.ErrUnauthenticated)
	}

	if resp.StatusCode != http.StatusOK {
		v.log.ErrorContext(ctx, "profile fetch failed",
			slog.Int("status", resp.StatusCode),
			slog.String("external_user_id", externalUserID))
		return nil, fmt.Errorf("idp: profile fetch status %d: %w", resp.StatusCode, domain.ErrUnauthenticated)
	}

	var profile profileResponse
	if err := json.Unmarshal(body, &profile); err != nil {
		return nil, fmt.Errorf("idp: invalid profile response: %w", domain.ErrUnauthenticated)
	}
	if profile.ID == "" || profile.Email == "" {
		return nil, fmt.Errorf("idp: profile missing required fields: %w", domain.ErrUnauthenticated)
	}

	identity := &auth.ExternalIdentity{
		ExternalUserID: profile.ID,
		Email:          strings.ToLower(strings.TrimSpace(profile.Email)),
	}
	if name := strings.TrimSpace(profile.FirstName + " " + profile.LastName); name != "" {
		identity.Name = &name
	}
	if profile.ImageURL != "" {
		identity.AvatarURL = &profile.ImageURL
	}

	return identity, nil
}

// doWithRetry executes an HTTP request, retrying once on 5xx or network
// errors with a 500ms backoff. GET-only, so the body replay concern the
// OAuth exchange had does not apply here.
func (v *Verifier) doWithRetry(ctx context.Context, req *http.Request) (*http.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resp, err := v.httpClient.Do(req)
	if err != nil || (resp != nil && resp.StatusCode >= 500) {
		if resp != nil {
			resp.Body.Close()
		}

		select {
		case <-time.After(500 * time.Millisecond):
		case <-ctx.Done():
			return nil, ctx.Err()
		}

		resp, err = v.httpClient.Do(req)
	}

	return resp, err
}
