package manifest

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrManifestEmpty is returned when a manifest contains no recognized
// artifact names after filtering.
var ErrManifestEmpty = errors.New("manifest contains no recognized artifacts")

// UnavailableError indicates the manifest source could not be retrieved.
type UnavailableError struct {
	Source string
	Err    error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("manifest unavailable: %s: %v", e.Source, e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// Loader loads manifests from a URL or a local path.
type Loader struct {
	client   *http.Client
	suffixes map[string]Kind
}

// NewLoader creates a loader with the default suffix set.
func NewLoader() *Loader {
	return &Loader{
		client:   &http.Client{Timeout: 30 * time.Second},
		suffixes: DefaultSuffixes,
	}
}

// SetSuffixes replaces the recognized suffix set. Keys must be lowercase
// extensions including the leading dot.
func (l *Loader) SetSuffixes(suffixes map[string]Kind) {
	l.suffixes = suffixes
}

// Load retrieves and parses a manifest. The source may be an http(s) URL or
// a local file path. It returns an UnavailableError if the source cannot be
// read and ErrManifestEmpty if no lines match a recognized suffix.
func (l *Loader) Load(ctx context.Context, source string) (Manifest, error) {
	var r io.ReadCloser

	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return nil, &UnavailableError{Source: source, Err: err}
		}
		resp, err := l.client.Do(req)
		if err != nil {
			return nil, &UnavailableError{Source: source, Err: err}
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			resp.Body.Close()
			return nil, &UnavailableError{Source: source, Err: fmt.Errorf("HTTP %d", resp.StatusCode)}
		}
		r = resp.Body
	} else {
		f, err := os.Open(source)
		if err != nil {
			return nil, &UnavailableError{Source: source, Err: err}
		}
		r = f
	}
	defer r.Close()

	m, err := l.parse(r)
	if err != nil {
		if errors.Is(err, ErrManifestEmpty) {
			return nil, err
		}
		return nil, &UnavailableError{Source: source, Err: err}
	}
	return m, nil
}

// parse reads one filename per line. Lines are trimmed; blank lines and
// lines without a recognized suffix are dropped without error so manifests
// may carry comments or unrelated filenames. No deduplication is performed.
func (l *Loader) parse(r io.Reader) (Manifest, error) {
	var m Manifest

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		kind, ok := l.kindFor(line)
		if !ok {
			continue
		}
		m = append(m, Descriptor{Name: line, Kind: kind})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	if len(m) == 0 {
		return nil, ErrManifestEmpty
	}
	return m, nil
}

// kindFor matches the filename suffix case-insensitively against the
// configured suffix set.
func (l *Loader) kindFor(name string) (Kind, bool) {
	ext := strings.ToLower(filepath.Ext(name))
	kind, ok := l.suffixes[ext]
	return kind, ok
}
