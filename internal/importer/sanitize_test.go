// internal/importer/sanitize_test.go
package importer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDownloadFilename(t *testing.T) {
	tests := []struct {
		title, quality, want string
	}{
		{"X", "best", "X_best.mp4"},
		{"My Reel #1!", "medium", "My_Reel__1__medium.mp4"},
		{"café", "best", "cafe_best.mp4"},
		{"Ação", "best", "Acao_best.mp4"},
		{"Canção de Ninar", "medium", "Cancao_de_Ninar_medium.mp4"},
		{"日本", "best", "___best.mp4"},
		{"", "best", "video_best.mp4"},
		{"../../etc", "best", "______etc_best.mp4"},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, DownloadFilename(tt.title, tt.quality))
		})
	}
}

func TestDownloadFilename_Truncates(t *testing.T) {
	name := DownloadFilename(strings.Repeat("a", 500), "best")
	assert.Equal(t, maxStemLen+len("_best.mp4"), len(name))
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple", "IMG-20240501-WA0001.jpg", "IMG-20240501-WA0001.jpg"},
		{"path separators", "Status/Name\\Here", "Status Name Here"},
		{"path traversal", "../../../etc/passwd", "etc passwd"},
		{"double dots", "clip..mp4", "clip.mp4"},
		{"illegal chars", "clip: *best* <one>", "clip best one"},
		{"null bytes", "clip\x00name", "clipname"},
		{"multiple spaces", "clip   name", "clip name"},
		{"leading/trailing", "  .clip.  ", "clip"},
		{"pipe", "This|That", "This That"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeFilename(tt.input)
			assert.Equal(t, tt.want, got, "SanitizeFilename(%q)", tt.input)
		})
	}
}

func TestValidatePath(t *testing.T) {
	root := "/gallery/ReelMate"

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"valid subpath", "/gallery/ReelMate/clip_best.mp4", false},
		{"exact root", "/gallery/ReelMate", false},
		{"traversal attempt", "/gallery/ReelMate/../etc/passwd", true},
		{"sibling album", "/gallery/ReelMateOther/x.mp4", true},
		{"sneaky traversal", "/gallery/ReelMate/foo/../../../etc/passwd", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.path, root)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrPathTraversal)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestQualityAndTitleFromFilename(t *testing.T) {
	tests := []struct {
		name, quality, title string
	}{
		{"My_Reel_best.mp4", "best", "My Reel"},
		{"My_Reel_medium_2.mp4", "medium", "My Reel"},
		{"WA_Status_1714567890.mp4", "", "WA Status 1714567890"},
		{"holiday.mov", "", "holiday"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.quality, qualityFromFilename(tt.name))
			assert.Equal(t, tt.title, titleFromFilename(tt.name))
		})
	}
}
