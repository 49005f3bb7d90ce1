package security

import (
	"path/filepath"
	"regexp"
	"strings"
)

// maxFilenameLength is the longest basename accepted, in bytes.
const maxFilenameLength = 255

// validFilename is a whitelist, not a blacklist: any character outside this
// set rejects the name. Enumerating known-bad characters is perpetually
// incomplete; a strict whitelist is exhaustive by construction.
var validFilename = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// SanitizeFilename reduces an attacker-controlled filename to a safe basename
// or rejects it with KindPathTraversal. The returned name contains only
// [A-Za-z0-9._-], does not start with a dot, and is at most 255 bytes.
func SanitizeFilename(filename string) (string, *Rejection) {
	if filename == "" {
		return "", reject(KindPathTraversal, "empty filename")
	}

	// Dangerous patterns are checked against the raw input, not the
	// basename: "a/../b.wav" must reject outright, not silently reduce to
	// a clean-looking name.
	for _, pattern := range []string{"..", "\\", "\x00", "\r", "\n"} {
		if strings.Contains(filename, pattern) {
			return "", reject(KindPathTraversal, "filename contains dangerous pattern")
		}
	}
	if strings.HasPrefix(filename, "/") {
		return "", reject(KindPathTraversal, "absolute path not allowed")
	}

	// A relative directory prefix is reduced to its basename.
	base := filepath.Base(filename)

	if !validFilename.MatchString(base) {
		return "", reject(KindPathTraversal, "filename contains invalid characters")
	}

	if strings.HasPrefix(base, ".") {
		return "", reject(KindPathTraversal, "hidden files not allowed")
	}

	if len(base) > maxFilenameLength {
		return "", reject(KindPathTraversal, "filename too long")
	}

	return base, nil
}
