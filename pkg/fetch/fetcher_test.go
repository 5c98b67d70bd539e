package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaspreet-dot-casa/pvcli/pkg/manifest"
)

func cabDescriptor(name string) manifest.Descriptor {
	return manifest.Descriptor{Name: name, Kind: manifest.KindCabPackage}
}

func TestFetcher_Fetch_Success(t *testing.T) {
	content := []byte("cabinet payload")
	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		assert.Equal(t, "/Pack.cab", r.URL.Path)
		w.Header().Set("Content-Length", fmt.Sprintf("%d", len(content)))
		w.WriteHeader(http.StatusOK)
		w.Write(content)
	}))
	defer server.Close()

	store := t.TempDir()
	fetcher := NewFetcher(store)

	local, err := fetcher.Fetch(context.Background(), server.URL, cabDescriptor("Pack.cab"))
	require.NoError(t, err)
	assert.True(t, local.Present)
	assert.Equal(t, filepath.Join(store, "Pack.cab"), local.Path)

	data, err := os.ReadFile(local.Path)
	require.NoError(t, err)
	assert.Equal(t, content, data)

	// Temp file must be gone after publish
	_, err = os.Stat(local.Path + partialSuffix)
	assert.True(t, os.IsNotExist(err))
}

func TestFetcher_Fetch_SkipsExistingWithoutNetwork(t *testing.T) {
	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		w.Write([]byte("payload"))
	}))
	defer server.Close()

	store := t.TempDir()
	fetcher := NewFetcher(store)

	first, err := fetcher.Fetch(context.Background(), server.URL, cabDescriptor("Pack.cab"))
	require.NoError(t, err)
	require.True(t, first.Present)
	require.Equal(t, int32(1), atomic.LoadInt32(&requests))

	second, err := fetcher.Fetch(context.Background(), server.URL, cabDescriptor("Pack.cab"))
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&requests), "second fetch must not hit the network")
}

func TestFetcher_Fetch_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	fetcher := NewFetcher(t.TempDir())

	local, err := fetcher.Fetch(context.Background(), server.URL, cabDescriptor("Pack.cab"))
	require.Error(t, err)
	assert.False(t, local.Present)

	var fetchErr *Error
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, "Pack.cab", fetchErr.Name)
	assert.Contains(t, fetchErr.Error(), "HTTP 404")
}

func TestFetcher_Fetch_InterruptedTransferLeavesNoFile(t *testing.T) {
	// Advertise more bytes than we send, then cut the connection.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "1000")
		w.WriteHeader(http.StatusOK)
		// Returning with fewer bytes than declared makes the server cut
		// the connection, which the client sees as an unexpected EOF.
		w.Write([]byte("partial"))
	}))
	defer server.Close()

	store := t.TempDir()
	fetcher := NewFetcher(store)

	local, err := fetcher.Fetch(context.Background(), server.URL, cabDescriptor("Pack.cab"))
	require.Error(t, err)
	assert.False(t, local.Present)

	// Neither the final path nor the temp path may exist.
	_, err = os.Stat(filepath.Join(store, "Pack.cab"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(store, "Pack.cab"+partialSuffix))
	assert.True(t, os.IsNotExist(err))
}

func TestFetcher_Fetch_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	fetcher := NewFetcher(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := fetcher.Fetch(ctx, server.URL, cabDescriptor("Pack.cab"))
	assert.Error(t, err)
}

func TestFetcher_Fetch_ReportsProgress(t *testing.T) {
	content := []byte("progress tracked payload")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", fmt.Sprintf("%d", len(content)))
		w.Write(content)
	}))
	defer server.Close()

	fetcher := NewFetcher(t.TempDir())

	var calls int32
	var last int64
	fetcher.SetProgress(func(name string, downloaded, total int64) {
		atomic.AddInt32(&calls, 1)
		atomic.StoreInt64(&last, downloaded)
		assert.Equal(t, "Pack.cab", name)
	})

	_, err := fetcher.Fetch(context.Background(), server.URL, cabDescriptor("Pack.cab"))
	require.NoError(t, err)
	assert.Greater(t, atomic.LoadInt32(&calls), int32(0))
	assert.Equal(t, int64(len(content)), atomic.LoadInt64(&last))
}

func TestFetcher_FetchAll_OrderAndIsolation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/B.cab" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte("payload"))
	}))
	defer server.Close()

	fetcher := NewFetcher(t.TempDir())
	m := manifest.Manifest{cabDescriptor("A.cab"), cabDescriptor("B.cab"), cabDescriptor("C.cab")}

	locals, errs := fetcher.FetchAll(context.Background(), server.URL, m, 1)
	require.Len(t, locals, 3)
	require.Len(t, errs, 3)

	assert.True(t, locals[0].Present)
	assert.NoError(t, errs[0])
	assert.False(t, locals[1].Present)
	assert.Error(t, errs[1])
	assert.True(t, locals[2].Present)
	assert.NoError(t, errs[2])
}

func TestFetcher_FetchAll_Concurrent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("payload for " + r.URL.Path))
	}))
	defer server.Close()

	store := t.TempDir()
	fetcher := NewFetcher(store)

	var m manifest.Manifest
	for i := 0; i < 8; i++ {
		m = append(m, cabDescriptor(fmt.Sprintf("Pack-%d.cab", i)))
	}

	locals, errs := fetcher.FetchAll(context.Background(), server.URL, m, 4)
	for i := range m {
		require.NoError(t, errs[i])
		assert.True(t, locals[i].Present)
		assert.Equal(t, m[i].Name, locals[i].Descriptor.Name)
	}
}
