// Package fetch retrieves manifest artifacts into a local content store.
//
// Fetches are idempotent: an artifact already present in the store is never
// re-downloaded, which is what makes a provisioning run resumable. Downloads
// are written to a temporary path and published with a rename only on full
// success, so a partially-written file is never visible at the final path.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jaspreet-dot-casa/pvcli/pkg/manifest"
)

// partialSuffix marks in-flight downloads in the store directory.
const partialSuffix = ".partial"

// ProgressCallback is called with download progress updates for one artifact.
type ProgressCallback func(name string, downloaded, total int64)

// LocalArtifact is a descriptor plus its location in the local store.
type LocalArtifact struct {
	Descriptor manifest.Descriptor
	Path       string
	Present    bool
}

// Error wraps a per-artifact fetch failure. Fetch failures are non-fatal to
// a batch: the pipeline records them and continues.
type Error struct {
	Name string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Name, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Fetcher downloads artifacts into a store directory.
type Fetcher struct {
	storeDir   string
	client     *http.Client
	onProgress ProgressCallback
}

// NewFetcher creates a fetcher writing into storeDir.
func NewFetcher(storeDir string) *Fetcher {
	return &Fetcher{
		storeDir: storeDir,
		client: &http.Client{
			Timeout: 30 * time.Minute, // language packs run to hundreds of MB
		},
	}
}

// SetProgress registers a progress callback for downloads.
func (f *Fetcher) SetProgress(cb ProgressCallback) {
	f.onProgress = cb
}

// Path returns the final store path for a descriptor.
func (f *Fetcher) Path(desc manifest.Descriptor) string {
	return filepath.Join(f.storeDir, desc.Name)
}

// Fetch retrieves one artifact from base into the store. If the artifact is
// already present it returns immediately without any network access. On any
// transport error or non-2xx status it returns a *Error and an artifact with
// Present=false.
func (f *Fetcher) Fetch(ctx context.Context, base string, desc manifest.Descriptor) (LocalArtifact, error) {
	local := LocalArtifact{Descriptor: desc, Path: f.Path(desc)}

	if _, err := os.Stat(local.Path); err == nil {
		local.Present = true
		return local, nil
	}

	src, err := url.JoinPath(base, desc.Name)
	if err != nil {
		return local, &Error{Name: desc.Name, Err: err}
	}
	if err := f.download(ctx, src, local.Path, desc.Name); err != nil {
		return local, &Error{Name: desc.Name, Err: err}
	}

	local.Present = true
	return local, nil
}

// FetchAll fetches every manifest entry, returning artifacts and errors in
// manifest order. workers bounds concurrent downloads; values below 2 mean
// sequential. Concurrent fetches are safe because each artifact publishes to
// a distinct path and only via rename-on-success.
func (f *Fetcher) FetchAll(ctx context.Context, base string, m manifest.Manifest, workers int) ([]LocalArtifact, []error) {
	locals := make([]LocalArtifact, len(m))
	errs := make([]error, len(m))

	if workers < 2 {
		for i, desc := range m {
			locals[i], errs[i] = f.Fetch(ctx, base, desc)
		}
		return locals, errs
	}

	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i, desc := range m {
		wg.Add(1)
		go func(idx int, d manifest.Descriptor) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			locals[idx], errs[idx] = f.Fetch(ctx, base, d)
		}(i, desc)
	}
	wg.Wait()

	return locals, errs
}

// download retrieves src to a temporary file and renames it to dest on
// success only.
func (f *Fetcher) download(ctx context.Context, src, dest, name string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	tmpPath := dest + partialSuffix
	out, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	renamed := false
	defer func() {
		out.Close()
		if !renamed {
			os.Remove(tmpPath)
		}
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("download failed: HTTP %d", resp.StatusCode)
	}

	reader := &progressReader{
		reader:     resp.Body,
		name:       name,
		total:      resp.ContentLength,
		onProgress: f.onProgress,
	}

	written, err := io.Copy(out, reader)
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}
	if resp.ContentLength >= 0 && written != resp.ContentLength {
		return fmt.Errorf("download truncated: got %d of %d bytes", written, resp.ContentLength)
	}

	// Close before rename so the published file is fully flushed.
	out.Close()

	if err := os.Rename(tmpPath, dest); err != nil {
		return fmt.Errorf("failed to publish file: %w", err)
	}
	renamed = true

	return nil
}

// progressReader wraps a response body and reports progress.
type progressReader struct {
	reader     io.Reader
	name       string
	total      int64
	downloaded int64
	onProgress ProgressCallback
}

func (r *progressReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.downloaded += int64(n)
	if r.onProgress != nil {
		r.onProgress(r.name, r.downloaded, r.total)
	}
	return n, err
}
