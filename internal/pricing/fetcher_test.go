package pricing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newCatalogServer serves body and counts requests.
func newCatalogServer(t *testing.T, body string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestFetcher_EnsureLocalCopy(t *testing.T) {
	body := strings.Repeat(`{"products":{}}`, 500) // spans several chunks
	srv, hits := newCatalogServer(t, body)

	dest := filepath.Join(t.TempDir(), "nested", "dir", FullCatalogFile)
	f := NewFetcher(srv.Client(), 0, zerolog.Nop())

	require.NoError(t, f.EnsureLocalCopy(context.Background(), srv.URL, dest))

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, body, string(got))
	assert.Equal(t, int32(1), hits.Load())

	entries, err := os.ReadDir(filepath.Dir(dest))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file should have been renamed away")
}

func TestFetcher_Idempotent(t *testing.T) {
	srv, hits := newCatalogServer(t, `{"products":{}}`)
	dest := filepath.Join(t.TempDir(), FullCatalogFile)
	f := NewFetcher(srv.Client(), 0, zerolog.Nop())

	require.NoError(t, f.EnsureLocalCopy(context.Background(), srv.URL, dest))
	require.NoError(t, f.EnsureLocalCopy(context.Background(), srv.URL, dest))

	assert.Equal(t, int32(1), hits.Load(), "second call must not hit the network")
}

func TestFetcher_ExistingFileIsNotRefreshed(t *testing.T) {
	srv, hits := newCatalogServer(t, `{"new":true}`)
	dest := filepath.Join(t.TempDir(), FullCatalogFile)
	require.NoError(t, os.WriteFile(dest, []byte(`{"old":true}`), 0o644))

	f := NewFetcher(srv.Client(), 0, zerolog.Nop())
	require.NoError(t, f.EnsureLocalCopy(context.Background(), srv.URL, dest))

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, `{"old":true}`, string(got))
	assert.Zero(t, hits.Load())
}

func TestFetcher_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), FullCatalogFile)
	f := NewFetcher(srv.Client(), 0, zerolog.Nop())

	err := f.EnsureLocalCopy(context.Background(), srv.URL, dest)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBadStatus))
	assert.Contains(t, err.Error(), "403")

	_, statErr := os.Stat(dest)
	assert.True(t, errors.Is(statErr, os.ErrNotExist), "failed download must not leave a file behind")
}

func TestFetcher_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	dest := filepath.Join(t.TempDir(), FullCatalogFile)
	err := NewFetcher(nil, 0, zerolog.Nop()).EnsureLocalCopy(context.Background(), url, dest)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to fetch")
}

func TestFetcher_CancelledContext(t *testing.T) {
	srv, _ := newCatalogServer(t, `{}`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dest := filepath.Join(t.TempDir(), FullCatalogFile)
	err := NewFetcher(srv.Client(), 0, zerolog.Nop()).EnsureLocalCopy(ctx, srv.URL, dest)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}
