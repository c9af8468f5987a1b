package status

import (
	"os"
	"path/filepath"
	"strings"
)

// statusDirName is the folder messaging apps keep statuses in.
const statusDirName = ".Statuses"

// Variant is one known location of a status folder, relative to the
// storage root.
type Variant struct {
	ID    string
	Label string
	Path  string
}

// Variants are tried in order when suggesting a folder.
var Variants = []Variant{
	{ID: "com.whatsapp", Label: "WhatsApp", Path: "Android/media/com.whatsapp/WhatsApp/Media/.Statuses"},
	{ID: "com.whatsapp.w4b", Label: "WhatsApp Business", Path: "Android/media/com.whatsapp.w4b/WhatsApp Business/Media/.Statuses"},
	{ID: "legacy", Label: "WhatsApp (legacy storage)", Path: "WhatsApp/Media/.Statuses"},
}

// IsStatusDir reports whether path exists, is a directory and is named .Statuses.
func IsStatusDir(path string) bool {
	if filepath.Base(path) != statusDirName {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// variantFor names the variant whose path dir ends with, or "custom".
func variantFor(dir string) string {
	clean := filepath.ToSlash(filepath.Clean(dir))
	for _, v := range Variants {
		if strings.HasSuffix(clean, "/"+v.Path) || clean == v.Path {
			return v.ID
		}
	}
	return "custom"
}
