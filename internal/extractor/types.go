// Package extractor resolves social-media post URLs to direct media URLs
// through a remote extraction service.
package extractor

import (
	"fmt"
	"net/url"
	"strings"
)

// Quality selects one of the descriptor's media URLs.
type Quality string

const (
	QualityBest   Quality = "best"
	QualityMedium Quality = "medium"
)

// ParseQuality accepts "best" or "medium", case-insensitively.
func ParseQuality(s string) (Quality, error) {
	switch Quality(strings.ToLower(strings.TrimSpace(s))) {
	case QualityBest:
		return QualityBest, nil
	case QualityMedium:
		return QualityMedium, nil
	default:
		return "", fmt.Errorf("unknown quality %q (want best or medium)", s)
	}
}

// Platform is the social network a source URL belongs to.
type Platform string

const (
	PlatformInstagram Platform = "instagram"
	PlatformFacebook  Platform = "facebook"
	PlatformOther     Platform = "other"
)

// DetectPlatform classifies a source URL by its host.
func DetectPlatform(sourceURL string) Platform {
	host := strings.ToLower(sourceURL)
	if u, err := url.Parse(sourceURL); err == nil && u.Host != "" {
		host = strings.ToLower(u.Hostname())
	}
	switch {
	case strings.Contains(host, "instagram"):
		return PlatformInstagram
	case strings.Contains(host, "facebook"), strings.Contains(host, "fb.watch"):
		return PlatformFacebook
	default:
		return PlatformOther
	}
}

// Descriptor is what the extraction service returns for one post.
type Descriptor struct {
	Title            string   `json:"title"`
	BestQualityURL   string   `json:"best_quality"`
	MediumQualityURL string   `json:"medium_quality"`
	ThumbnailURL     string   `json:"thumbnail,omitempty"`
	SourceURL        string   `json:"source_url"`
	Platform         Platform `json:"platform"`
}

// URLFor returns the media URL for q.
func (d *Descriptor) URLFor(q Quality) (string, error) {
	var u string
	switch q {
	case QualityBest:
		u = d.BestQualityURL
	case QualityMedium:
		u = d.MediumQualityURL
	default:
		return "", fmt.Errorf("unknown quality %q", q)
	}
	if u == "" {
		return "", fmt.Errorf("no %s quality link for this video", q)
	}
	return u, nil
}

// Qualities lists the qualities that have a link, best first.
func (d *Descriptor) Qualities() []Quality {
	var qs []Quality
	if d.BestQualityURL != "" {
		qs = append(qs, QualityBest)
	}
	if d.MediumQualityURL != "" {
		qs = append(qs, QualityMedium)
	}
	return qs
}

// response is the wire format. Error is set instead of the links on failure.
type response struct {
	Title         string  `json:"title"`
	BestQuality   string  `json:"best_quality"`
	MediumQuality string  `json:"medium_quality"`
	Thumbnail     string  `json:"thumbnail"`
	Error         *string `json:"error"`
}
