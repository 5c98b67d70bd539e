package pipeline

import (
	"time"

	"github.com/jaspreet-dot-casa/pvcli/pkg/installer"
)

// Counts aggregates record statuses across a run.
type Counts struct {
	Attempted  int
	Succeeded  int
	Unverified int
	Failed     int
	Skipped    int
}

// Report is the aggregate outcome of one pipeline run: one record per
// manifest entry, in manifest order. It is built incrementally during the
// run and immutable once Run returns.
type Report struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Records    []installer.Record
	Counts     Counts
}

// add appends a record and updates the counts.
func (r *Report) add(rec installer.Record) {
	r.Records = append(r.Records, rec)
	r.Counts.Attempted++
	switch {
	case rec.Status.Succeeded():
		r.Counts.Succeeded++
	case rec.Status == installer.StatusInstalledUnverified:
		r.Counts.Unverified++
	case rec.Status == installer.StatusSkipped:
		r.Counts.Skipped++
	default:
		r.Counts.Failed++
	}
}

// Clean reports whether every artifact reached a success state.
func (r *Report) Clean() bool {
	return r.Counts.Succeeded == r.Counts.Attempted
}
