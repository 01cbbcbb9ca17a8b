package volc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc, interval time.Duration) *ArkClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	logger, _ := test.NewNullLogger()
	return NewArkClient(Config{BaseURL: srv.URL, APIKey: "secret", ImageInterval: interval, Logger: logger})
}

func TestGenerateImages(t *testing.T) {
	t.Run("request body and url response", func(t *testing.T) {
		var got map[string]any
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, imagesPath, r.URL.Path)
			assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			_, _ = w.Write([]byte(`{"data":[{"url":"https://cdn.example.com/a.png"}]}`))
		}, 0)

		urls, err := c.GenerateImages(context.Background(), ImageGenParams{
			Prompt:                    "a cat",
			Size:                      "2K",
			SequentialImageGeneration: "disabled",
			ImageInputs:               []string{"data:image/png;base64,AAAA"},
			ResponseFormat:            "url",
			Watermark:                 true,
		})

		require.NoError(t, err)
		assert.Equal(t, []string{"https://cdn.example.com/a.png"}, urls)
		assert.Equal(t, "seedream-4-0-250828", got["model"])
		assert.Equal(t, "2K", got["size"])
		assert.Equal(t, "url", got["response_format"])
		assert.Equal(t, true, got["watermark"])
		assert.Equal(t, "data:image/png;base64,AAAA", got["image"])
		assert.NotContains(t, got, "sequential_image_generation_options")
	})

	t.Run("base64 response", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"data":[{"b64_json":"QUJD","format":"jpeg"},{"b64_json":"REVG"}]}`))
		}, 0)

		urls, err := c.GenerateImages(context.Background(), ImageGenParams{Prompt: "x"})

		require.NoError(t, err)
		assert.Equal(t, []string{"data:image/jpeg;base64,QUJD", "data:image/png;base64,REVG"}, urls)
	})

	t.Run("api error", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"code":"InvalidParameter","message":"bad size"}}`))
		}, 0)

		_, err := c.GenerateImages(context.Background(), ImageGenParams{Prompt: "x"})

		require.Error(t, err)
		assert.Equal(t, "http 400: InvalidParameter: bad size", err.Error())
	})

	t.Run("non json error body is truncated", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(strings.Repeat("x", 500)))
		}, 0)

		_, err := c.GenerateImages(context.Background(), ImageGenParams{Prompt: "x"})

		require.Error(t, err)
		assert.Len(t, err.Error(), len("http 502: ")+200)
	})

	t.Run("empty data", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"data":[]}`))
		}, 0)

		_, err := c.GenerateImages(context.Background(), ImageGenParams{Prompt: "x"})

		assert.EqualError(t, err, "no images returned")
	})

	t.Run("rate limit honours context", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"data":[{"url":"u"}]}`))
		}, time.Hour)

		_, err := c.GenerateImages(context.Background(), ImageGenParams{Prompt: "x"})
		require.NoError(t, err)

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		_, err = c.GenerateImages(ctx, ImageGenParams{Prompt: "x"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rate limit")
	})
}

func TestGenerateImages_Mock(t *testing.T) {
	c := NewArkClient(Config{Mock: true})

	urls, err := c.GenerateImages(context.Background(), ImageGenParams{Prompt: "x"})

	require.NoError(t, err)
	require.Len(t, urls, 1)
	assert.True(t, strings.HasPrefix(urls[0], "data:image/png;base64,"))
	assert.True(t, c.Configured())
	assert.False(t, NewArkClient(Config{}).Configured())
}

func TestNewChatModel_RequiresModel(t *testing.T) {
	_, err := NewChatModel(context.Background(), Config{APIKey: "k"}, ChatModelOptions{})
	assert.EqualError(t, err, "model required")
}
