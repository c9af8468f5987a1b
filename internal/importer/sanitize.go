// internal/importer/sanitize.go
package importer

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// nonAlnum matches everything the download naming scheme replaces with '_'.
var nonAlnum = regexp.MustCompile(`[^a-zA-Z0-9]`)

// illegalChars are characters not allowed in filenames on common filesystems.
var illegalChars = regexp.MustCompile(`[<>:"/\\|?*\x00]`)

// multiSpace matches multiple consecutive spaces.
var multiSpace = regexp.MustCompile(`\s+`)

// multiDot matches multiple consecutive dots.
var multiDot = regexp.MustCompile(`\.{2,}`)

// maxStemLen bounds the title part of generated names.
const maxStemLen = 120

// DownloadFilename builds "<title>_<quality>.mp4". Accents are folded first
// ("Ação" becomes "Acao"), then every character that is not an ASCII letter
// or digit is replaced with '_'.
func DownloadFilename(title, quality string) string {
	stem := nonAlnum.ReplaceAllString(foldAccents(title), "_")
	if len(stem) > maxStemLen {
		stem = stem[:maxStemLen]
	}
	if stem == "" {
		stem = "video"
	}
	return stem + "_" + quality + ".mp4"
}

// foldAccents strips combining marks after canonical decomposition.
func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return folded
}

// SanitizeFilename removes or replaces characters that are unsafe for filenames.
// This prevents path traversal and filesystem errors.
func SanitizeFilename(name string) string {
	// Remove null bytes
	name = strings.ReplaceAll(name, "\x00", "")

	// Replace path separators with space
	name = strings.ReplaceAll(name, "/", " ")
	name = strings.ReplaceAll(name, "\\", " ")

	// Replace illegal characters with space
	name = illegalChars.ReplaceAllString(name, " ")

	// Collapse multiple dots to single dot
	name = multiDot.ReplaceAllString(name, ".")

	// Collapse multiple spaces to single space
	name = multiSpace.ReplaceAllString(name, " ")

	// Trim leading/trailing whitespace and dots
	name = strings.Trim(name, " .")

	return name
}

// ValidatePath ensures the path is within the expected root directory.
// Returns ErrPathTraversal if the path would escape the root.
func ValidatePath(path, expectedRoot string) error {
	cleanPath := filepath.Clean(path)
	cleanRoot := filepath.Clean(expectedRoot)

	// Ensure root ends with separator for prefix check
	if !strings.HasSuffix(cleanRoot, string(filepath.Separator)) {
		cleanRoot += string(filepath.Separator)
	}

	if cleanPath != filepath.Clean(expectedRoot) && !strings.HasPrefix(cleanPath, cleanRoot) {
		return ErrPathTraversal
	}

	return nil
}

// qualitySuffix matches the "_<quality>" tail of DownloadFilename output,
// including the numeric suffix added on name collisions.
var qualitySuffix = regexp.MustCompile(`_(best|medium)(?:_\d+)?$`)

// qualityFromFilename recovers the quality label from a download filename.
// Returns "" when the name does not follow the download naming scheme.
func qualityFromFilename(name string) string {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	m := qualitySuffix.FindStringSubmatch(stem)
	if m == nil {
		return ""
	}
	return m[1]
}

// titleFromFilename turns a stored filename back into a display title.
func titleFromFilename(name string) string {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	stem = qualitySuffix.ReplaceAllString(stem, "")
	title := strings.TrimSpace(strings.ReplaceAll(stem, "_", " "))
	return multiSpace.ReplaceAllString(title, " ")
}
