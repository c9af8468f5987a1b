// Package catalog builds the download history from the gallery album.
package catalog

import (
	"fmt"
	"strings"
	"time"

	"github.com/vmunix/reelmate/internal/library"
)

// UnknownSize is shown for records whose file could not be stat'ed.
const UnknownSize = "unknown size"

// Quality labels. QualityUnknown covers assets indexed without one.
const (
	QualityBest    = "best"
	QualityMedium  = "medium"
	QualityUnknown = "unknown"
)

// Record is one downloaded video as seen in the album.
type Record struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Filename  string    `json:"filename"`
	LocalURI  string    `json:"local_uri"`
	SourceURL string    `json:"source_url,omitempty"`
	Quality   string    `json:"quality"`
	SizeBytes int64     `json:"size_bytes"`
	SizeKnown bool      `json:"size_known"`
	SizeText  string    `json:"size_text"`
	CreatedAt time.Time `json:"created_at"`
	Platform  string    `json:"platform,omitempty"`
}

// FormatSize renders bytes as mebibytes with one decimal, e.g. "12.3 MB".
func FormatSize(bytes int64) string {
	return fmt.Sprintf("%.1f MB", float64(bytes)/(1024*1024))
}

// FromAsset converts an index row. Size comes from the row; List replaces
// it with the live file size.
func FromAsset(a *library.Asset) Record {
	r := Record{
		ID:        a.ID,
		Title:     a.Title,
		Filename:  a.Filename,
		LocalURI:  "file://" + a.Path,
		SourceURL: a.SourceURL,
		Quality:   a.Quality,
		CreatedAt: a.CreatedAt,
		Platform:  a.Platform,
	}
	if r.Title == "" {
		r.Title = a.Filename
	}
	if r.Quality == "" {
		r.Quality = QualityUnknown
	}
	r.setSize(a.SizeBytes, a.SizeBytes > 0)
	return r
}

func (r *Record) setSize(bytes int64, known bool) {
	r.SizeKnown = known
	if !known {
		r.SizeBytes = 0
		r.SizeText = UnknownSize
		return
	}
	r.SizeBytes = bytes
	r.SizeText = FormatSize(bytes)
}

// Path returns the filesystem path of the record's file.
func (r Record) Path() string {
	return strings.TrimPrefix(r.LocalURI, "file://")
}
