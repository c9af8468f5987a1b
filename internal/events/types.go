package events

import (
	"fmt"
	"path/filepath"
)

// Entity types
const (
	EntityDownload = "download"
	EntityAsset    = "asset"
	EntityStatus   = "status"
)

// Event type constants
const (
	EventDownloadStarted    = "download.started"
	EventDownloadCompleted  = "download.completed"
	EventDownloadFailed     = "download.failed"
	EventAssetImported      = "asset.imported"
	EventAssetDeleted       = "asset.deleted"
	EventStatusConnected    = "status.connected"
	EventStatusDisconnected = "status.disconnected"
	EventStatusSaved        = "status.saved"
	EventStatusAccessLost   = "status.access_lost"
)

// DownloadStarted is emitted when streaming begins.
type DownloadStarted struct {
	BaseEvent
	SourceURL string `json:"source_url"`
	MediaURL  string `json:"media_url"`
	Title     string `json:"title"`
	Quality   string `json:"quality"`
}

// DownloadCompleted is emitted once the file is in the gallery.
// EntityID is the asset ID.
type DownloadCompleted struct {
	BaseEvent
	SourceURL string `json:"source_url"`
	Title     string `json:"title"`
	Quality   string `json:"quality"`
	Path      string `json:"path"`
	SizeBytes int64  `json:"size_bytes"`
}

// DownloadFailed is emitted when a download ends without an asset.
type DownloadFailed struct {
	BaseEvent
	SourceURL string `json:"source_url"`
	Title     string `json:"title"`
	Kind      string `json:"kind"`
	Reason    string `json:"reason"`
	Retryable bool   `json:"retryable"`
}

// AssetImported is emitted for every new gallery asset.
type AssetImported struct {
	BaseEvent
	Album     string `json:"album"`
	Path      string `json:"path"`
	MediaType string `json:"media_type"`
	Origin    string `json:"origin"`
	SizeBytes int64  `json:"size_bytes"`
}

// AssetDeleted is emitted when an asset and its file are removed.
type AssetDeleted struct {
	BaseEvent
	Path  string `json:"path"`
	Title string `json:"title"`
}

// StatusConnected is emitted after the user grants a status folder.
type StatusConnected struct {
	BaseEvent
	Variant string `json:"variant"`
	Dir     string `json:"dir"`
}

// StatusDisconnected is emitted when the stored grant is cleared.
type StatusDisconnected struct {
	BaseEvent
	Dir string `json:"dir"`
}

// StatusSaved is emitted when a status item is copied into the gallery.
// EntityID is the new asset ID.
type StatusSaved struct {
	BaseEvent
	SourceURI string `json:"source_uri"`
	Path      string `json:"path"`
	MediaType string `json:"media_type"`
}

// StatusAccessLost is emitted when a granted folder cannot be read.
type StatusAccessLost struct {
	BaseEvent
	Dir          string `json:"dir"`
	Reason       string `json:"reason"`
	GrantCleared bool   `json:"grant_cleared"`
}

func (e *DownloadStarted) Summary() string {
	return fmt.Sprintf("downloading %q (%s)", e.Title, e.Quality)
}

func (e *DownloadCompleted) Summary() string {
	return fmt.Sprintf("saved %q (%s) to %s", e.Title, e.Quality, filepath.Base(e.Path))
}

func (e *DownloadFailed) Summary() string {
	if e.Title == "" {
		return "download failed: " + e.Reason
	}
	return fmt.Sprintf("download of %q failed: %s", e.Title, e.Reason)
}

func (e *AssetImported) Summary() string {
	return fmt.Sprintf("imported %s into %s", filepath.Base(e.Path), e.Album)
}

func (e *AssetDeleted) Summary() string {
	return "deleted " + filepath.Base(e.Path)
}

func (e *StatusConnected) Summary() string {
	return fmt.Sprintf("connected %s statuses at %s", e.Variant, e.Dir)
}

func (e *StatusDisconnected) Summary() string {
	return "disconnected statuses at " + e.Dir
}

func (e *StatusSaved) Summary() string {
	return fmt.Sprintf("saved status %s as %s", filepath.Base(e.SourceURI), filepath.Base(e.Path))
}

func (e *StatusAccessLost) Summary() string {
	if e.GrantCleared {
		return fmt.Sprintf("lost access to %s, grant cleared", e.Dir)
	}
	return fmt.Sprintf("lost access to %s", e.Dir)
}
