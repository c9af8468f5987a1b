// Package download streams direct media URLs into the gallery album.
package download

import (
	"time"

	"github.com/vmunix/reelmate/internal/extractor"
)

// Status tracks a job through one download.
type Status string

const (
	StatusQueued      Status = "queued"
	StatusDownloading Status = "downloading"
	StatusImporting   Status = "importing"
	StatusCompleted   Status = "completed"
	StatusFailed      Status = "failed"
)

// Request describes one media file to fetch.
type Request struct {
	URL       string // direct media URL from the descriptor
	Quality   extractor.Quality
	Title     string
	SourceURL string // the post the media came from
	Platform  extractor.Platform
}

// ProgressFunc receives the completed fraction in [0,1]. Successive values
// never decrease.
type ProgressFunc func(fraction float64)

// Job is a snapshot of one download in flight.
type Job struct {
	ID        string
	Request   Request
	Status    Status
	Written   int64
	Expected  int64 // -1 when the server sent no length
	CachePath string
	StartedAt time.Time
	Err       error
}

// Fraction returns written/expected clamped to [0,1], or 0 when the length is unknown.
func (j Job) Fraction() float64 {
	return fraction(j.Written, j.Expected)
}

func fraction(written, expected int64) float64 {
	if expected <= 0 {
		return 0
	}
	f := float64(written) / float64(expected)
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}
