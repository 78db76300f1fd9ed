package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/booking-project/internal/config"
)

type recordedRequest struct {
	method string
	path   string
	body   []byte
}

func newTestStore(t *testing.T, endpoint string) *S3Store {
	t.Helper()
	store, err := NewS3Store(context.Background(), config.StorageConfig{
		S3Bucket:   "media",
		S3Region:   "us-east-1",
		S3Endpoint: endpoint,
		AccessKey:  "test-access",
		SecretKey:  "test-secret",
	})
	require.NoError(t, err)
	return store
}

func TestPresignURL(t *testing.T) {
	store := newTestStore(t, "http://localhost:9000")

	link, err := store.PresignURL(context.Background(), "avatars/u1/a.png", 10*time.Minute)
	require.NoError(t, err)

	parsed, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "localhost:9000", parsed.Host)
	assert.Equal(t, "/media/avatars/u1/a.png", parsed.Path)
	assert.Equal(t, "600", parsed.Query().Get("X-Amz-Expires"))
	assert.NotEmpty(t, parsed.Query().Get("X-Amz-Signature"))
}

func TestUploadAndDelete(t *testing.T) {
	var (
		mu       sync.Mutex
		requests []recordedRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		requests = append(requests, recordedRequest{method: r.Method, path: r.URL.Path, body: body})
		mu.Unlock()

		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	store := newTestStore(t, srv.URL)

	require.NoError(t, store.Upload(context.Background(), "avatars/u1/a.png", "image/png", []byte("png-bytes")))
	require.NoError(t, store.Delete(context.Background(), "avatars/u1/a.png"))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, requests, 2)
	assert.Equal(t, http.MethodPut, requests[0].method)
	assert.Equal(t, "/media/avatars/u1/a.png", requests[0].path)
	assert.Equal(t, http.MethodDelete, requests[1].method)
	assert.Equal(t, "/media/avatars/u1/a.png", requests[1].path)
}

func TestDelete_Error(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	store := newTestStore(t, srv.URL)
	err := store.Delete(context.Background(), "avatars/u1/a.png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "avatars/u1/a.png")
}
