// Package history persists provisioning run reports so operators can review
// past runs and decide whether to proceed to downstream configuration steps.
package history

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jaspreet-dot-casa/pvcli/pkg/pipeline"
)

// Record is one artifact outcome within a stored run.
type Record struct {
	Name      string    `yaml:"name"`
	Kind      string    `yaml:"kind"`
	Status    string    `yaml:"status"`
	Detail    string    `yaml:"detail,omitempty"`
	Timestamp time.Time `yaml:"timestamp"`
}

// Run is one stored provisioning run.
type Run struct {
	ID         string    `yaml:"id"`
	StartedAt  time.Time `yaml:"started_at"`
	FinishedAt time.Time `yaml:"finished_at"`
	Attempted  int       `yaml:"attempted"`
	Succeeded  int       `yaml:"succeeded"`
	Unverified int       `yaml:"unverified,omitempty"`
	Failed     int       `yaml:"failed"`
	Skipped    int       `yaml:"skipped"`
	Records    []Record  `yaml:"records"`
}

// state is the on-disk shape of the history file.
type state struct {
	Runs []Run `yaml:"runs"`
}

// Store manages the run-history file.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore creates a store backed by the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// FromReport converts a pipeline report into a storable run.
func FromReport(rep *pipeline.Report) Run {
	run := Run{
		ID:         rep.RunID,
		StartedAt:  rep.StartedAt,
		FinishedAt: rep.FinishedAt,
		Attempted:  rep.Counts.Attempted,
		Succeeded:  rep.Counts.Succeeded,
		Unverified: rep.Counts.Unverified,
		Failed:     rep.Counts.Failed,
		Skipped:    rep.Counts.Skipped,
	}
	for _, rec := range rep.Records {
		run.Records = append(run.Records, Record{
			Name:      rec.Artifact.Name,
			Kind:      rec.Artifact.Kind.String(),
			Status:    rec.Status.String(),
			Detail:    rec.Detail,
			Timestamp: rec.Timestamp,
		})
	}
	return run
}

// Append adds a run to the history file, creating it if needed. A corrupt
// history file is replaced rather than blocking the append.
func (s *Store) Append(run Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.load()
	if err != nil {
		st = &state{}
	}
	st.Runs = append(st.Runs, run)
	return s.save(st)
}

// List returns all stored runs, oldest first. A missing file yields an
// empty list.
func (s *Store) List() ([]Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.load()
	if err != nil {
		return nil, err
	}
	return st.Runs, nil
}

// Last returns the most recent run, or nil if there is none.
func (s *Store) Last() (*Run, error) {
	runs, err := s.List()
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, nil
	}
	return &runs[len(runs)-1], nil
}

func (s *Store) load() (*state, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &state{}, nil
		}
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	var st state
	if err := yaml.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("failed to parse history: %w", err)
	}
	return &st, nil
}

func (s *Store) save(st *state) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}
	data, err := yaml.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}
	return nil
}
