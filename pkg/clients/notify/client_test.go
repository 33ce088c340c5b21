package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/candelento/balanza/internal/config"
)

func TestNotifyChangePostsEvent(t *testing.T) {
	var received ChangeEvent
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewClient(config.NotifyConfig{WebhookURL: server.URL})
	err := client.NotifyChange(context.Background(), ChangeEvent{Type: "compra", ID: 3, Date: "2024-03-15"})
	require.NoError(t, err)

	assert.Equal(t, "compra", received.Type)
	assert.Equal(t, 3, received.ID)
	assert.Equal(t, "2024-03-15", received.Date)
}

func TestNotifyChangeRejectsErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(config.NotifyConfig{WebhookURL: server.URL})
	err := client.NotifyChange(context.Background(), ChangeEvent{Type: "venta"})
	assert.ErrorContains(t, err, "unexpected status 502")
}
