package plan_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/planforge/internal/plan"
)

func TestChatClient(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	newClient := func(url string) *plan.ChatClient {
		return plan.NewChatClient(plan.GeneratorConfig{
			APIKey:      "test-key",
			APIURL:      url,
			Model:       "kimi-for-coding",
			Temperature: 0.7,
			Timeout:     5 * time.Second,
		})
	}

	t.Run("sends chat request and returns first choice", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			var body struct {
				Model    string `json:"model"`
				Messages []struct {
					Role    string `json:"role"`
					Content string `json:"content"`
				} `json:"messages"`
				Temperature    float64 `json:"temperature"`
				ResponseFormat struct {
					Type string `json:"type"`
				} `json:"response_format"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "kimi-for-coding", body.Model)
			require.Len(t, body.Messages, 1)
			assert.Equal(t, "user", body.Messages[0].Role)
			assert.Equal(t, "génère un plan", body.Messages[0].Content)
			assert.Equal(t, "json_object", body.ResponseFormat.Type)

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"executiveSummary\":\"ok\"}"}}]}`))
		}))
		t.Cleanup(srv.Close)

		got, err := newClient(srv.URL).Complete(ctx, "génère un plan")
		require.NoError(t, err)
		assert.Equal(t, `{"executiveSummary":"ok"}`, got)
	})

	t.Run("non-200 status is an error", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "rate limited", http.StatusTooManyRequests)
		}))
		t.Cleanup(srv.Close)

		_, err := newClient(srv.URL).Complete(ctx, "p")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "429")
	})

	t.Run("empty choices is an error", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"choices":[]}`))
		}))
		t.Cleanup(srv.Close)

		_, err := newClient(srv.URL).Complete(ctx, "p")
		require.Error(t, err)
	})

	t.Run("context cancellation aborts the call", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		}))
		t.Cleanup(srv.Close)

		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := newClient(srv.URL).Complete(cancelled, "p")
		require.Error(t, err)
	})
}
