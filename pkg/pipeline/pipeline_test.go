package pipeline

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaspreet-dot-casa/pvcli/pkg/installer"
	"github.com/jaspreet-dot-casa/pvcli/pkg/manifest"
)

// fakeSystem records native calls; every install succeeds and registers the
// package so later queries see it.
type fakeSystem struct {
	installedPackages map[string]bool
	installedApps     map[string]bool

	addPackageCalls int32
	addAppCalls     int32
	runCalls        int32
}

func newFakeSystem() *fakeSystem {
	return &fakeSystem{
		installedPackages: make(map[string]bool),
		installedApps:     make(map[string]bool),
	}
}

func (f *fakeSystem) PackageInstalled(_ context.Context, displayName string) (bool, error) {
	return f.installedPackages[displayName], nil
}

func (f *fakeSystem) AddPackage(_ context.Context, path, _ string) (int, error) {
	atomic.AddInt32(&f.addPackageCalls, 1)
	name := filepath.Base(path)
	d := manifest.Descriptor{Name: name}
	f.installedPackages[d.DisplayName()] = true
	return 0, nil
}

func (f *fakeSystem) AppInstalled(_ context.Context, displayName string) (bool, error) {
	return f.installedApps[displayName], nil
}

func (f *fakeSystem) AddAppPackage(_ context.Context, _ string) error {
	atomic.AddInt32(&f.addAppCalls, 1)
	return nil
}

func (f *fakeSystem) RunInstaller(_ context.Context, _ string) (int, error) {
	atomic.AddInt32(&f.runCalls, 1)
	return 0, nil
}

// newArtifactServer serves manifest.txt plus artifact payloads, returning
// 404 for names in missing. It counts artifact requests per name.
func newArtifactServer(t *testing.T, manifestBody string, missing map[string]bool, counts *map[string]*int32) *httptest.Server {
	t.Helper()
	m := make(map[string]*int32)
	*counts = m
	var mu sync.Mutex
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := filepath.Base(r.URL.Path)
		if name == "manifest.txt" {
			w.Write([]byte(manifestBody))
			return
		}
		mu.Lock()
		if m[name] == nil {
			var c int32
			m[name] = &c
		}
		counter := m[name]
		mu.Unlock()
		atomic.AddInt32(counter, 1)
		if missing[name] {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte("payload of " + name))
	}))
}

func newTestPipeline(t *testing.T, server *httptest.Server, sys installer.System, store string) *Pipeline {
	t.Helper()
	return New(Config{
		BaseURL:        server.URL,
		ManifestSource: server.URL + "/manifest.txt",
		StoreDir:       store,
	}, sys)
}

func TestPipeline_Run_FreshRun(t *testing.T) {
	var counts map[string]*int32
	server := newArtifactServer(t, "A.cab\n# comment\nB.exe\n\n", nil, &counts)
	defer server.Close()

	sys := newFakeSystem()
	p := newTestPipeline(t, server, sys, t.TempDir())

	rep, err := p.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, rep.Records, 2, "comment and blank line must be ignored")

	assert.Equal(t, "A.cab", rep.Records[0].Artifact.Name)
	assert.Equal(t, installer.StatusInstalled, rep.Records[0].Status)
	assert.Equal(t, "B.exe", rep.Records[1].Artifact.Name)
	assert.Equal(t, installer.StatusInstalled, rep.Records[1].Status)

	assert.Equal(t, 2, rep.Counts.Attempted)
	assert.Equal(t, 2, rep.Counts.Succeeded)
	assert.True(t, rep.Clean())
	assert.NotEmpty(t, rep.RunID)
}

func TestPipeline_Run_FailureIsolation(t *testing.T) {
	var counts map[string]*int32
	server := newArtifactServer(t, "A.cab\nB.cab\nC.cab\n", map[string]bool{"B.cab": true}, &counts)
	defer server.Close()

	sys := newFakeSystem()
	p := newTestPipeline(t, server, sys, t.TempDir())

	rep, err := p.Run(context.Background())
	require.NoError(t, err, "a per-artifact fetch failure is not fatal")
	require.Len(t, rep.Records, 3)

	assert.Equal(t, installer.StatusInstalled, rep.Records[0].Status)
	assert.Equal(t, installer.StatusSkipped, rep.Records[1].Status)
	assert.Contains(t, rep.Records[1].Detail, "B.cab")
	assert.Equal(t, installer.StatusInstalled, rep.Records[2].Status)

	assert.Equal(t, 2, rep.Counts.Succeeded)
	assert.Equal(t, 1, rep.Counts.Skipped)
	assert.Zero(t, rep.Counts.Failed)
	assert.False(t, rep.Clean())
}

func TestPipeline_Run_ResumeAfterCrash(t *testing.T) {
	var counts map[string]*int32
	server := newArtifactServer(t, "A.cab\n", nil, &counts)
	defer server.Close()

	store := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(store, "A.cab"), []byte("already here"), 0644))

	sys := newFakeSystem()
	sys.installedPackages["A"] = true

	p := newTestPipeline(t, server, sys, store)

	rep, err := p.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, rep.Records, 1)

	assert.Equal(t, installer.StatusAlreadyInstalled, rep.Records[0].Status)
	assert.Nil(t, counts["A.cab"], "no fetch call for an artifact already in the store")
	assert.Zero(t, atomic.LoadInt32(&sys.addPackageCalls), "no install call for an installed package")
}

func TestPipeline_Run_SecondRunConverges(t *testing.T) {
	var counts map[string]*int32
	server := newArtifactServer(t, "A.cab\nB.exe\n", nil, &counts)
	defer server.Close()

	store := t.TempDir()
	sys := newFakeSystem()
	p := newTestPipeline(t, server, sys, store)

	first, err := p.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, first.Counts.Succeeded)
	require.Equal(t, int32(1), atomic.LoadInt32(counts["A.cab"]))

	second, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, installer.StatusAlreadyInstalled, second.Records[0].Status)
	assert.Equal(t, int32(1), atomic.LoadInt32(counts["A.cab"]), "re-run must not re-download")
	assert.Equal(t, int32(1), atomic.LoadInt32(&sys.addPackageCalls), "re-run must not re-install")
}

func TestPipeline_Run_EmptyManifestIsFatal(t *testing.T) {
	var counts map[string]*int32
	server := newArtifactServer(t, "# comments only\n# nothing else\n", nil, &counts)
	defer server.Close()

	p := newTestPipeline(t, server, newFakeSystem(), t.TempDir())

	_, err := p.Run(context.Background())
	assert.ErrorIs(t, err, manifest.ErrManifestEmpty)
}

func TestPipeline_Run_ManifestUnavailableIsFatal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	p := New(Config{
		BaseURL:        server.URL,
		ManifestSource: server.URL + "/manifest.txt",
		StoreDir:       t.TempDir(),
	}, newFakeSystem())

	_, err := p.Run(context.Background())
	require.Error(t, err)

	var unavailable *manifest.UnavailableError
	assert.ErrorAs(t, err, &unavailable)
}

func TestPipeline_Run_ParallelFetchSequentialInstall(t *testing.T) {
	var counts map[string]*int32
	server := newArtifactServer(t, "A.cab\nB.cab\nC.cab\nD.cab\n", nil, &counts)
	defer server.Close()

	sys := newFakeSystem()
	p := New(Config{
		BaseURL:        server.URL,
		ManifestSource: server.URL + "/manifest.txt",
		StoreDir:       t.TempDir(),
		FetchWorkers:   3,
	}, sys)

	rep, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, rep.Counts.Succeeded)

	// Records stay in manifest order even with parallel fetch.
	names := []string{"A.cab", "B.cab", "C.cab", "D.cab"}
	for i, rec := range rep.Records {
		assert.Equal(t, names[i], rec.Artifact.Name)
	}
}

func TestPipeline_Run_DuplicateManifestEntries(t *testing.T) {
	var counts map[string]*int32
	server := newArtifactServer(t, "A.cab\nA.cab\n", nil, &counts)
	defer server.Close()

	sys := newFakeSystem()
	p := newTestPipeline(t, server, sys, t.TempDir())

	rep, err := p.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, rep.Records, 2, "duplicates yield two records")

	assert.Equal(t, installer.StatusInstalled, rep.Records[0].Status)
	assert.Equal(t, installer.StatusAlreadyInstalled, rep.Records[1].Status)
	assert.Equal(t, int32(1), atomic.LoadInt32(&sys.addPackageCalls))
}
