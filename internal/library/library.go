// Package library is the gallery asset index: albums and the media files
// imported into them.
package library

import (
	"time"
)

// MediaType distinguishes videos from still images.
type MediaType string

const (
	MediaVideo MediaType = "video"
	MediaImage MediaType = "image"
)

// Origin records how an asset entered the gallery.
type Origin string

const (
	OriginDownload Origin = "download" // fetched from an extractor URL
	OriginStatus   Origin = "status"   // copied from a messaging status folder
	OriginRescan   Origin = "rescan"   // found on disk without an index row
)

// Album is a named directory in the gallery.
type Album struct {
	ID        int64
	Name      string
	Path      string
	CreatedAt time.Time
}

// Asset is one imported media file.
type Asset struct {
	ID        int64
	Album     string
	Filename  string
	Path      string
	MediaType MediaType
	Origin    Origin
	SizeBytes int64
	Title     string
	SourceURL string
	Quality   string // "best", "medium", or empty when unknown
	Platform  string
	CreatedAt time.Time
}
