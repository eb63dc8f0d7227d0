package backofficesdk_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/elmagroup/backoffice/pkg/backofficesdk"
)

func TestAPIErrorDecoding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/sessions", r.URL.Path)
		require.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		require.NoError(t, r.ParseForm())
		require.Equal(t, "gm", r.PostFormValue("login"))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"Invalid login or password"}`))
	}))
	defer srv.Close()

	_, err := backofficesdk.NewClient(srv.URL+"/").Login(context.Background(), "gm", "pw")
	require.Error(t, err)

	var apiErr *backofficesdk.APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	require.Equal(t, "Invalid login or password", apiErr.Description)
	require.True(t, backofficesdk.HasCode(err, backofficesdk.ErrorCodeUnauthorized))
	require.ErrorIs(t, err, &backofficesdk.APIError{Code: backofficesdk.ErrorCodeUnauthorized})
	require.NotErrorIs(t, err, &backofficesdk.APIError{Code: backofficesdk.ErrorCodeForbidden})
}

func TestNonJSONErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := backofficesdk.NewClient(srv.URL).Liveness(context.Background())

	var apiErr *backofficesdk.APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	require.Equal(t, backofficesdk.ErrorCodeServerError, apiErr.Code)
}

func TestSessionSendsBearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		require.Equal(t, "2", r.URL.Query().Get("page"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"entries":[{"id":"a","action":"promote_admin"}],"page":2,"per_page":30,"total":31}`))
	}))
	defer srv.Close()

	s := backofficesdk.NewSession(backofficesdk.NewClient(srv.URL), "tok", 60, backofficesdk.UserResponse{})
	page, err := s.AuditLog(context.Background(), 2)
	require.NoError(t, err)
	require.Equal(t, 31, page.Total)
	require.Equal(t, "promote_admin", page.Entries[0].Action)
}
