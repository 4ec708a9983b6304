package generation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"picturebook-server/internal/config"
)

func TestOllamaClient_ZeroTimeoutMeansNoDeadline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		var req map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "json", req["format"])

		w.Header().Set("Content-Type", "application/x-ndjson")
		_, _ = w.Write([]byte(`{"model":"llama3","message":{"role":"assistant","content":"{\"title\":\"t\"}"},"done":true,"prompt_eval_count":5,"eval_count":7}` + "\n"))
	}))
	defer srv.Close()

	cfg := &config.Config{AIClientType: "ollama", AIBaseURL: srv.URL + "/v1", AIModel: "llama3"}
	client, err := NewAIClient(cfg, zap.NewNop())
	require.NoError(t, err)

	text, usage, err := client.GenerateText(context.Background(), "system", "user", GenerationParams{JSONOutput: true})
	require.NoError(t, err)
	assert.Equal(t, `{"title":"t"}`, text)
	assert.Equal(t, 12, usage.TotalTokens)
}

func TestNewAIClient_UnknownType(t *testing.T) {
	_, err := NewAIClient(&config.Config{AIClientType: "carrier-pigeon"}, zap.NewNop())
	assert.ErrorContains(t, err, "unknown AI client type")
}
