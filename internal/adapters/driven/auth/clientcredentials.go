// Package auth provides access tokens for the remote mailbox service.
package auth

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/markz0r/M365PowerKit/internal/core/domain"
	"github.com/markz0r/M365PowerKit/internal/core/ports/driven"
)

// DefaultAuthority is the token authority for the hosted service.
const DefaultAuthority = "https://login.microsoftonline.com"

// Ensure ClientCredentialsProvider implements the interface.
var _ driven.TokenProvider = (*ClientCredentialsProvider)(nil)

// ClientCredentialsProvider provides app-only access tokens via the
// OAuth2 client credentials grant. The underlying token source caches
// tokens and refreshes them before expiry, so poll loops can call
// GetToken on every request.
type ClientCredentialsProvider struct {
	config clientcredentials.Config

	mu     sync.Mutex
	source oauth2.TokenSource
}

// NewClientCredentialsProvider creates a token provider for the tenant
// named in settings.
func NewClientCredentialsProvider(settings domain.ServiceSettings) *ClientCredentialsProvider {
	return NewClientCredentialsProviderWithAuthority(settings, DefaultAuthority)
}

// NewClientCredentialsProviderWithAuthority creates a token provider
// against a custom authority. Useful for tests and sovereign clouds.
func NewClientCredentialsProviderWithAuthority(settings domain.ServiceSettings, authority string) *ClientCredentialsProvider {
	return &ClientCredentialsProvider{
		config: clientcredentials.Config{
			ClientID:     settings.ClientID,
			ClientSecret: settings.ClientSecret,
			TokenURL:     fmt.Sprintf("%s/%s/oauth2/v2.0/token", authority, settings.TenantID),
			Scopes:       []string{settings.Scope},
		},
	}
}

// GetToken returns a valid access token, fetching or refreshing through
// the token endpoint when the cached one has expired.
func (p *ClientCredentialsProvider) GetToken(ctx context.Context) (string, error) {
	if p.config.ClientID == "" || p.config.ClientSecret == "" {
		return "", fmt.Errorf("%w: client ID and secret are required", domain.ErrInvalidInput)
	}

	p.mu.Lock()
	if p.source == nil {
		// The source outlives any single request; its refresh calls
		// must not inherit a request-scoped cancellation.
		p.source = p.config.TokenSource(context.Background())
	}
	source := p.source
	p.mu.Unlock()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	token, err := source.Token()
	if err != nil {
		return "", fmt.Errorf("fetch token: %w", err)
	}
	return token.AccessToken, nil
}
