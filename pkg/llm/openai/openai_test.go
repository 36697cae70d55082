package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/trainer/pkg/types"
)

func completionServer(t *testing.T, status int, body string, calls *int32, seen *map[string]interface{}) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		if seen != nil {
			_ = json.NewDecoder(r.Body).Decode(seen)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

const okBody = `{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "created": 1700000000,
  "model": "gemini-2.0-flash",
  "choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "Warm up for 5 minutes."}}]
}`

func TestNewProvider(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("OPENAI_BASE_URL", "")

	_, err := NewProvider("")
	assert.Error(t, err)

	p, err := NewProvider("k")
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, p.GetModel())
	assert.Equal(t, DefaultBaseURL, p.GetBaseURL())
	assert.Equal(t, "openai", p.GetModelInfo().Provider)

	t.Setenv("OPENAI_API_KEY", "env-key")
	t.Setenv("OPENAI_BASE_URL", "http://localhost:9999/v1")
	p, err = NewProvider("", WithModel("gemini-2.0-flash"))
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.0-flash", p.GetModel())
	assert.Equal(t, "http://localhost:9999/v1", p.GetBaseURL())
	assert.Equal(t, "http://localhost:9999/v1", p.GetModelInfo().Metadata["base_url"])
}

func TestProvider_Complete(t *testing.T) {
	var calls int32
	var req map[string]interface{}
	srv := completionServer(t, http.StatusOK, okBody, &calls, &req)

	p, err := NewProvider("test-key", WithBaseURL(srv.URL+"/v1"), WithModel("gemini-2.0-flash"))
	require.NoError(t, err)

	msg, err := p.Complete(context.Background(), []*types.Message{
		types.NewSystemMessage("Be brief."),
		types.NewUserMessage("Recommend a workout."),
	})
	require.NoError(t, err)
	assert.Equal(t, types.RoleAssistant, msg.Role)
	assert.Equal(t, "Warm up for 5 minutes.", msg.Content)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	assert.Equal(t, "gemini-2.0-flash", req["model"])
	messages, ok := req["messages"].([]interface{})
	require.True(t, ok)
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].(map[string]interface{})["role"])
	assert.Equal(t, "user", messages[1].(map[string]interface{})["role"])
}

func TestProvider_CompleteErrorIsNotRetried(t *testing.T) {
	var calls int32
	srv := completionServer(t, http.StatusServiceUnavailable, `{"error":{"message":"overloaded"}}`, &calls, nil)

	p, err := NewProvider("test-key", WithBaseURL(srv.URL+"/v1"))
	require.NoError(t, err)

	_, err = p.Complete(context.Background(), []*types.Message{types.NewUserMessage("hi")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestProvider_CompleteNoChoices(t *testing.T) {
	var calls int32
	srv := completionServer(t, http.StatusOK, `{"id":"x","object":"chat.completion","created":1,"model":"m","choices":[]}`, &calls, nil)

	p, err := NewProvider("test-key", WithBaseURL(srv.URL+"/v1"))
	require.NoError(t, err)

	_, err = p.Complete(context.Background(), []*types.Message{types.NewUserMessage("hi")})
	assert.Error(t, err)
}

func TestProvider_CompleteHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	t.Cleanup(srv.Close)

	p, err := NewProvider("test-key", WithBaseURL(srv.URL+"/v1"))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = p.Complete(ctx, []*types.Message{types.NewUserMessage("hi")})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
