package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markz0r/M365PowerKit/internal/core/domain"
)

func testServiceSettings() domain.ServiceSettings {
	return domain.ServiceSettings{
		BaseURL:      "https://graph.example.com",
		TenantID:     "tenant-1",
		ClientID:     "client-1",
		ClientSecret: "secret-1",
		Scope:        "https://graph.microsoft.com/.default",
	}
}

// TestClientCredentialsProvider_GetToken tests the token fetch and the
// request shape sent to the token endpoint.
func TestClientCredentialsProvider_GetToken(t *testing.T) {
	var gotPath, gotGrant, gotScope string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotPath = r.URL.Path
		gotGrant = r.Form.Get("grant_type")
		gotScope = r.Form.Get("scope")

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
			"access_token": "token-abc",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	}))
	defer server.Close()

	provider := NewClientCredentialsProviderWithAuthority(testServiceSettings(), server.URL)

	token, err := provider.GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "token-abc", token)
	assert.Equal(t, "/tenant-1/oauth2/v2.0/token", gotPath)
	assert.Equal(t, "client_credentials", gotGrant)
	assert.Equal(t, "https://graph.microsoft.com/.default", gotScope)
}

// TestClientCredentialsProvider_CachesToken tests that an unexpired
// token is reused without another endpoint call.
func TestClientCredentialsProvider_CachesToken(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
			"access_token": "token-abc",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	}))
	defer server.Close()

	provider := NewClientCredentialsProviderWithAuthority(testServiceSettings(), server.URL)

	for i := 0; i < 3; i++ {
		token, err := provider.GetToken(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "token-abc", token)
	}
	assert.Equal(t, 1, calls)
}

// TestClientCredentialsProvider_MissingCredentials tests the guard for
// unset client ID or secret.
func TestClientCredentialsProvider_MissingCredentials(t *testing.T) {
	settings := testServiceSettings()
	settings.ClientSecret = ""
	provider := NewClientCredentialsProvider(settings)

	_, err := provider.GetToken(context.Background())
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// TestClientCredentialsProvider_EndpointError tests that a rejected
// grant surfaces as an error.
func TestClientCredentialsProvider_EndpointError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_client"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	provider := NewClientCredentialsProviderWithAuthority(testServiceSettings(), server.URL)

	_, err := provider.GetToken(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch token")
}
