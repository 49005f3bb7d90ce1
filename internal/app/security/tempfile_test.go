package security

import (
	"errors"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSecureTempFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	payload := []byte("RIFF\x24\x08\x00\x00WAVEfmt payload bytes")

	path, rej := CreateSecureTempFile(payload, ".wav", dir)
	require.Nil(t, rej)
	defer os.Remove(path)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, payload, got, "written file must be byte-identical to the payload")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm(), "temp file must be owner-only from creation")
	assert.True(t, strings.HasSuffix(path, ".wav"))
}

func TestCreateSecureTempFileUniquePaths(t *testing.T) {
	dir := t.TempDir()
	payload := []byte("identical content for every goroutine....")

	const workers = 16
	paths := make(chan string, workers)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			path, rej := CreateSecureTempFile(payload, ".mp3", dir)
			if rej == nil {
				paths <- path
			}
		}()
	}
	wg.Wait()
	close(paths)

	seen := make(map[string]bool)
	for path := range paths {
		assert.False(t, seen[path], "concurrent uploads must never share a path")
		seen[path] = true
		os.Remove(path)
	}
	assert.Len(t, seen, workers)
}

func TestWithTempFileCleansUpOnSuccess(t *testing.T) {
	dir := t.TempDir()

	var observed string
	err := WithTempFile([]byte("payload"), ".mp3", dir, func(path string) error {
		observed = path
		_, statErr := os.Stat(path)
		return statErr
	})
	require.NoError(t, err)

	_, statErr := os.Stat(observed)
	assert.True(t, os.IsNotExist(statErr), "temp file must be gone after the scope exits")
}

func TestWithTempFileCleansUpOnError(t *testing.T) {
	dir := t.TempDir()
	downstream := errors.New("transcription failed")

	var observed string
	err := WithTempFile([]byte("payload"), ".mp3", dir, func(path string) error {
		observed = path
		return downstream
	})
	assert.ErrorIs(t, err, downstream)

	_, statErr := os.Stat(observed)
	assert.True(t, os.IsNotExist(statErr))
}

func TestWithTempFileCleansUpOnPanic(t *testing.T) {
	dir := t.TempDir()

	var observed string
	func() {
		defer func() {
			require.NotNil(t, recover())
		}()
		WithTempFile([]byte("payload"), ".mp3", dir, func(path string) error {
			observed = path
			panic("downstream collaborator exploded")
		})
	}()

	_, statErr := os.Stat(observed)
	assert.True(t, os.IsNotExist(statErr), "cleanup must fire even when the callback panics")
}

func TestCreateSecureTempFileBadDirectory(t *testing.T) {
	_, rej := CreateSecureTempFile([]byte("payload"), ".mp3", "/nonexistent/dir/for/sure")
	require.NotNil(t, rej)
	assert.Equal(t, KindTempFileAllocation, rej.Kind)
}

func TestCleanupTempFileMissingIsNoError(t *testing.T) {
	assert.NoError(t, CleanupTempFile(""))
	assert.NoError(t, CleanupTempFile("/tmp/voicenotes_does_not_exist_123456"))
}
