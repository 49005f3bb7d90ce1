package security

import (
	"path/filepath"
	"strings"
)

// DefaultAllowedExtensions is the extension allow-set used when the
// configuration does not override it.
var DefaultAllowedExtensions = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".webm": true,
	".m4a":  true,
	".ogg":  true,
	".flac": true,
}

// ValidateExtension extracts the lower-cased extension (including the leading
// dot) from an already-sanitized filename and checks it against the allow-set.
//
// The extension only establishes the expectation that the content signature
// check must confirm; it is never trusted on its own.
func ValidateExtension(sanitized string, allowed map[string]bool) (string, *Rejection) {
	ext := strings.ToLower(filepath.Ext(sanitized))
	if ext == "" {
		return "", reject(KindMissingExtension, "file must have an extension")
	}

	if !allowed[ext] {
		return "", reject(KindUnsupportedExtension, "unsupported file format "+ext)
	}

	return ext, nil
}
