package backoffice_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/elmagroup/backoffice/pkg/backofficesdk"
)

// TestRateLimitLogin verifies that password guessing against one account
// is throttled after 5 attempts per minute.
func TestRateLimitLogin(t *testing.T) {
	client := setupContainer(t, nil)
	ctx := t.Context()
	bootstrapGM(t, client)

	// bootstrapGM already logged in once.
	for i := range 4 {
		_, err := client.Login(ctx, gmUsername, "wrong-password")
		requireCode(t, err, backofficesdk.ErrorCodeUnauthorized)
		t.Logf("attempt %d rejected without rate limiting", i+2)
	}

	_, err := client.Login(ctx, gmUsername, "wrong-password")
	var apiErr *backofficesdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	require.Equal(t, backofficesdk.ErrorCodeRateLimited, apiErr.Code)

	// Another account from the same address is a separate bucket.
	_, err = client.Login(ctx, "someone-else", "wrong-password")
	requireCode(t, err, backofficesdk.ErrorCodeUnauthorized)
}

// TestRateLimitBootstrap verifies the one-time setup endpoint is throttled.
func TestRateLimitBootstrap(t *testing.T) {
	client := setupContainer(t, nil)
	ctx := t.Context()
	req := backofficesdk.BootstrapRequest{Username: gmUsername, Email: gmEmail, Password: gmPassword}

	for range 5 {
		_, err := client.Bootstrap(ctx, "wrong-token", req)
		requireCode(t, err, backofficesdk.ErrorCodeUnauthorized)
	}

	_, err := client.Bootstrap(ctx, "wrong-token", req)
	requireCode(t, err, backofficesdk.ErrorCodeRateLimited)
}
