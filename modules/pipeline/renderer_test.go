package pipeline

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cadence-scheduler-server/modules/common/config"
)

func newTestRenderer(t *testing.T, handler http.HandlerFunc) *Renderer {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewRenderer(&config.Config{
		RenderAPIEndpoint: server.URL,
		RenderAPIKey:      "render-key",
	})
}

func TestRenderBase64Response(t *testing.T) {
	video := []byte("fake-mp4-bytes")

	renderer := newTestRenderer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer render-key", r.Header.Get("Authorization"))

		var req renderRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "item-1", req.ContentItemID)
		assert.Equal(t, 2, req.SceneNumber)
		assert.Equal(t, "a calm beach at dawn", req.Prompt)

		json.NewEncoder(w).Encode(renderResponse{
			VideoBase64: base64.StdEncoding.EncodeToString(video),
		})
	})

	data, err := renderer.Render(context.Background(), "item-1", 2, "a calm beach at dawn")
	require.NoError(t, err)
	assert.Equal(t, video, data)
}

func TestRenderURLResponse(t *testing.T) {
	video := []byte("downloaded-mp4-bytes")

	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/result.mp4" {
			w.Write(video)
			return
		}
		json.NewEncoder(w).Encode(renderResponse{
			VideoURL: fmt.Sprintf("%s/result.mp4", server.URL),
		})
	}))
	t.Cleanup(server.Close)

	renderer := NewRenderer(&config.Config{RenderAPIEndpoint: server.URL, RenderAPIKey: "k"})

	data, err := renderer.Render(context.Background(), "item-1", 1, "prompt")
	require.NoError(t, err)
	assert.Equal(t, video, data)
}

func TestRenderEmptyResponse(t *testing.T) {
	renderer := newTestRenderer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})

	_, err := renderer.Render(context.Background(), "item-1", 1, "prompt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "neither video_base64 nor video_url")
}

func TestRenderAPIError(t *testing.T) {
	renderer := newTestRenderer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("render farm offline"))
	})

	_, err := renderer.Render(context.Background(), "item-1", 1, "prompt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
	assert.Contains(t, err.Error(), "render farm offline")
}

func TestRenderUnconfiguredEndpoint(t *testing.T) {
	renderer := NewRenderer(&config.Config{})

	_, err := renderer.Render(context.Background(), "item-1", 1, "prompt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}
