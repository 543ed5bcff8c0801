package network

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientFactory_NewHTTPClient_FreshPerCall(t *testing.T) {
	factory := NewClientFactory("")

	a := factory.NewHTTPClient(2 * time.Second)
	b := factory.NewHTTPClient(2 * time.Second)
	require.NotSame(t, a, b)
	assert.Equal(t, 2*time.Second, a.Timeout)
}

func TestClientFactory_TestProxy(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	factory := NewClientFactory("")
	assert.NoError(t, factory.TestProxy(context.Background(), server.URL))
}

func TestClientFactory_TestProxy_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	factory := NewClientFactory("")
	assert.Error(t, factory.TestProxy(context.Background(), server.URL))
}
