package security

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
)

// tempFilePrefix marks pipeline-owned files in the temp directory.
const tempFilePrefix = "voicenotes_audio_"

// randomSuffix returns a cryptographically random hex string. Random naming
// keeps temp paths unguessable and collision-free under concurrent uploads;
// a counter would be neither.
func randomSuffix() (string, error) {
	var buf [16]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", fmt.Errorf("random suffix: %w", err)
	}
	return hex.EncodeToString(buf[:]), nil
}

// CreateSecureTempFile writes the payload to a freshly allocated file in dir
// (os.TempDir when empty) and returns its path. The file is created with
// O_EXCL and mode 0600, so there is no window where it exists with wider
// permissions or could be swapped underneath us. On any write failure the
// partial file is removed before the error propagates.
func CreateSecureTempFile(payload []byte, extension string, dir string) (string, *Rejection) {
	if dir == "" {
		dir = os.TempDir()
	}

	suffix, err := randomSuffix()
	if err != nil {
		return "", reject(KindTempFileAllocation, err.Error())
	}

	path := filepath.Join(dir, tempFilePrefix+suffix+extension)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return "", reject(KindTempFileAllocation, fmt.Sprintf("create temp file: %v", err))
	}

	if _, err := f.Write(payload); err != nil {
		f.Close()
		os.Remove(path)
		return "", reject(KindTempFileAllocation, fmt.Sprintf("write temp file: %v", err))
	}

	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", reject(KindTempFileAllocation, fmt.Sprintf("close temp file: %v", err))
	}

	return path, nil
}

// CleanupTempFile removes a temp file if it still exists. Removal failures
// are returned so callers can log them; there is nothing else to do about
// them at this layer.
func CleanupTempFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	return os.Remove(path)
}

// WithTempFile allocates a secure temp file for the payload, invokes fn with
// its path, and removes the file on every exit path: normal return, error
// return, or panic inside fn. The file exists only for the duration of the
// callback; callers cannot leak it.
func WithTempFile(payload []byte, extension string, dir string, fn func(path string) error) error {
	path, rej := CreateSecureTempFile(payload, extension, dir)
	if rej != nil {
		return rej
	}
	defer CleanupTempFile(path)

	return fn(path)
}
