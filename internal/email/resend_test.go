package email

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ciplastic/support-tickets/internal/config"
	"github.com/ciplastic/support-tickets/pkg/util"
)

func newTestClient(endpoint, apiKey string) *ResendClient {
	client := NewResendClient(config.ResendConfig{
		APIKey: apiKey,
		From:   "Ciplastic CRM <onboarding@resend.dev>",
	})
	if endpoint != "" {
		client.endpoint = endpoint
	}
	return client
}

func TestNotifyResolutionSuccess(t *testing.T) {
	var captured sendRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer re_test_key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_ = json.NewEncoder(w).Encode(sendResponse{ID: "msg-123"})
	}))
	defer server.Close()

	client := newTestClient(server.URL, "re_test_key")
	id, err := client.NotifyResolution(context.Background(), "paciente@example.com", 7, "No puedo entrar", "Ana")
	require.NoError(t, err)
	assert.Equal(t, "msg-123", id)

	assert.Equal(t, []string{"paciente@example.com"}, captured.To)
	assert.Equal(t, "Tu ticket #00007 ha sido resuelto", captured.Subject)
	assert.Contains(t, captured.HTML, "Ana")
	assert.Contains(t, captured.HTML, "#00007")
	assert.Contains(t, captured.HTML, "No puedo entrar")
}

func TestNotifyResolutionProviderFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	client := newTestClient(server.URL, "re_test_key")
	_, err := client.NotifyResolution(context.Background(), "paciente@example.com", 1, "Titulo", "Ana")
	require.Error(t, err)
	assert.Equal(t, "EMAIL_SEND_FAILED", util.ToDomainError(err).Code)
}

func TestNotifyResolutionTransportFailureKeepsCause(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	client := newTestClient(server.URL, "re_test_key")
	_, err := client.NotifyResolution(context.Background(), "paciente@example.com", 1, "Titulo", "Ana")
	require.Error(t, err)

	domainErr := util.ToDomainError(err)
	assert.Equal(t, "EMAIL_SEND_FAILED", domainErr.Code)
	require.NotNil(t, domainErr.Err, "the transport error must be wrapped for diagnostics")
	assert.Contains(t, domainErr.Error(), "connection refused")
}

func TestNotifyResolutionEmptyEmail(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	client := newTestClient(server.URL, "re_test_key")
	_, err := client.NotifyResolution(context.Background(), "  ", 1, "Titulo", "Ana")
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", util.ToDomainError(err).Code)
	assert.False(t, called, "no network call expected without a recipient")
}

func TestNotifyResolutionMissingAPIKey(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	client := newTestClient(server.URL, "")
	_, err := client.NotifyResolution(context.Background(), "paciente@example.com", 1, "Titulo", "Ana")
	require.Error(t, err)
	assert.Equal(t, "CONFIG_MISSING", util.ToDomainError(err).Code)
	assert.False(t, called, "no network call expected without a credential")
}
