package utils

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	// Characters invalid in filenames on most filesystems
	invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	whitespaceChars      = regexp.MustCompile(`[\r\n\t]`)
	multipleSpaces       = regexp.MustCompile(`\s+`)
)

const maxFilenameBytes = 200

// SanitizeFilename makes a book title safe to use as a markdown file name.
// Characters that are invalid on common filesystems or that break wiki
// links (hashtags, square brackets) are removed or replaced.
func SanitizeFilename(filename string) string {
	filename = invalidFilenameChars.ReplaceAllString(filename, "")
	filename = whitespaceChars.ReplaceAllString(filename, " ")
	filename = multipleSpaces.ReplaceAllString(filename, " ")
	filename = strings.TrimSpace(filename)

	filename = strings.ReplaceAll(filename, "#", "")
	filename = strings.ReplaceAll(filename, "[", "(")
	filename = strings.ReplaceAll(filename, "]", ")")

	if len(filename) > maxFilenameBytes {
		cut := maxFilenameBytes
		for cut > 0 && !utf8.RuneStart(filename[cut]) {
			cut--
		}
		filename = strings.TrimSpace(filename[:cut])
	}

	if filename == "" {
		filename = "Untitled"
	}

	return filename
}

// BookFilename names the export file of a book. Books sharing a title are
// told apart by author, and by a short ID prefix when that is not enough.
func BookFilename(title, author, id string, taken map[string]bool) string {
	name := SanitizeFilename(title)
	if taken[name] && author != "" {
		name = SanitizeFilename(title + " - " + author)
	}
	if taken[name] {
		short := id
		if len(short) > 8 {
			short = short[:8]
		}
		name = SanitizeFilename(name + " " + short)
	}
	return name + ".md"
}
