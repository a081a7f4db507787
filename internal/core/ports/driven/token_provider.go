package driven

import "context"

// TokenProvider provides access tokens for authenticated API calls.
// Implementations handle acquisition and refresh transparently.
type TokenProvider interface {
	// GetToken returns a valid access token, refreshing if the cached
	// one has expired.
	GetToken(ctx context.Context) (string, error)
}
