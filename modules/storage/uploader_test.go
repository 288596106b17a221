package storage

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadSuccess(t *testing.T) {
	var gotPath, gotContentType, gotUpsert, gotAuth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		gotUpsert = r.Header.Get("x-upsert")
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	u := NewUploader(server.URL, "", "service-key")

	path, publicURL, err := u.Upload(context.Background(), []byte("mp4-bytes"), "item-1/scene-1.mp4")
	require.NoError(t, err)

	assert.Equal(t, "generated-videos/item-1/scene-1.mp4", path)
	assert.Equal(t, server.URL+"/storage/v1/object/public/generated-videos/item-1/scene-1.mp4", publicURL)

	assert.Equal(t, "/storage/v1/object/generated-videos/item-1/scene-1.mp4", gotPath)
	assert.Equal(t, "video/mp4", gotContentType)
	assert.Equal(t, "false", gotUpsert, "overwriting an existing object must be disallowed")
	assert.Equal(t, "Bearer service-key", gotAuth)
}

func TestUploadConflict(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))
	defer server.Close()

	u := NewUploader(server.URL, "", "service-key")

	path, publicURL, err := u.Upload(context.Background(), []byte("mp4-bytes"), "item-1/scene-1.mp4")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConflict))
	assert.Empty(t, path, "a conflicting upload must not return a path")
	assert.Empty(t, publicURL)
}

func TestUploadRemoteError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message":"bucket quota exceeded"}`))
	}))
	defer server.Close()

	u := NewUploader(server.URL, "", "service-key")

	_, _, err := u.Upload(context.Background(), []byte("mp4-bytes"), "item-1/scene-1.mp4")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrConflict))
	assert.Contains(t, err.Error(), "bucket quota exceeded", "the remote storage error message must be preserved")
}

func TestPublicURL(t *testing.T) {
	u := NewUploader("https://proj.supabase.co", "", "key")
	assert.Equal(t,
		"https://proj.supabase.co/storage/v1/object/public/generated-videos/a.mp4",
		u.PublicURL("a.mp4"))
}

func TestPublicURLWithConfiguredBase(t *testing.T) {
	u := NewUploader("https://proj.supabase.co", "https://cdn.example/public/", "key")
	assert.Equal(t,
		"https://cdn.example/public/generated-videos/a.mp4",
		u.PublicURL("a.mp4"))
}
