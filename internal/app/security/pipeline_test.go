package security

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wavPayload(size int) []byte {
	payload := make([]byte, size)
	copy(payload, "RIFF\x24\x08\x00\x00WAVEfmt ")
	for i := 16; i < size; i++ {
		if i%48 == 47 {
			payload[i] = '\n'
			continue
		}
		payload[i] = byte(1 + i%180)
	}
	return payload
}

func TestValidatorAcceptsWellFormedUpload(t *testing.T) {
	v := NewValidator(DefaultConfig(), nil)

	info, rej := v.Validate("note.wav", wavPayload(2048))
	require.Nil(t, rej)
	assert.Equal(t, "note.wav", info.Filename)
	assert.Equal(t, ".wav", info.Extension)
	assert.Equal(t, "wav", info.Format)
	assert.Equal(t, int64(2048), info.Size)
	assert.Empty(t, info.HeuristicWarning)
}

func TestValidatorRejectionKinds(t *testing.T) {
	v := NewValidator(DefaultConfig(), nil)

	tests := []struct {
		name     string
		filename string
		payload  []byte
		kind     RejectionKind
	}{
		{"traversal", "../../etc/passwd", wavPayload(64), KindPathTraversal},
		{"no_extension", "notewav", wavPayload(64), KindMissingExtension},
		{"bad_extension", "note.txt", wavPayload(64), KindUnsupportedExtension},
		{"riff_not_wave", "note.wav", append([]byte("RIFF\x00\x00\x00\x00XXXX"), make([]byte, 52)...), KindContentMismatch},
		{"mp3_in_wav_clothing", "note.wav", append([]byte{0xFF, 0xFB, 0x90, 0x00}, wavPayload(60)[4:]...), KindContentMismatch},
		{"garbage", "note.mp3", []byte("this is not audio at all, not even close"), KindUnrecognizedContent},
		{"tiny", "note.mp3", []byte{0xFF, 0xFB}, KindUnrecognizedContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, rej := v.Validate(tt.filename, tt.payload)
			require.NotNil(t, rej)
			assert.Equal(t, tt.kind, rej.Kind)
		})
	}
}

func TestValidatorSizeLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxUploadSize = 1024
	v := NewValidator(cfg, nil)

	_, rej := v.Validate("note.wav", wavPayload(2048))
	require.NotNil(t, rej)
	assert.Equal(t, KindSizeExceeded, rej.Kind)
}

func TestValidatorHeuristicPolicy(t *testing.T) {
	// A structurally valid WAV whose data section is NUL padding trips the
	// null-ratio heuristic.
	payload := make([]byte, 2048)
	copy(payload, "RIFF\x24\x08\x00\x00WAVEfmt ")

	warnCfg := DefaultConfig()
	warnCfg.HeuristicPolicy = HeuristicWarn
	info, rej := NewValidator(warnCfg, nil).Validate("note.wav", payload)
	require.Nil(t, rej, "warn policy lets flagged uploads through")
	assert.NotEmpty(t, info.HeuristicWarning)

	rejectCfg := DefaultConfig()
	rejectCfg.HeuristicPolicy = HeuristicReject
	_, rej = NewValidator(rejectCfg, nil).Validate("note.wav", payload)
	require.NotNil(t, rej)
	assert.Equal(t, KindSuspiciousContent, rej.Kind)
}

func TestValidatorStageRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TempDir = t.TempDir()
	v := NewValidator(cfg, nil)

	payload := wavPayload(4096)
	var staged string

	info, rej := v.Stage("note.wav", payload, func(path string, info *Validated) error {
		staged = path
		got, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, payload, got)
		return nil
	})
	require.Nil(t, rej)
	assert.Equal(t, "wav", info.Format)

	_, statErr := os.Stat(staged)
	assert.True(t, os.IsNotExist(statErr))
}

func TestValidatorStageDownstreamFailure(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TempDir = t.TempDir()
	v := NewValidator(cfg, nil)

	var staged string
	_, rej := v.Stage("note.wav", wavPayload(4096), func(path string, _ *Validated) error {
		staged = path
		return os.ErrDeadlineExceeded
	})
	require.NotNil(t, rej)
	assert.Equal(t, KindDownstreamProcessing, rej.Kind)

	_, statErr := os.Stat(staged)
	assert.True(t, os.IsNotExist(statErr), "temp file must be removed on downstream failure")
}

func TestGenericMessagesNeverEchoInput(t *testing.T) {
	v := NewValidator(DefaultConfig(), nil)
	hostile := "../../etc/passwd\r\nX-Injected: yes"

	_, rej := v.Validate(hostile, wavPayload(64))
	require.NotNil(t, rej)

	msg := GenericMessage(rej.Kind)
	assert.NotContains(t, msg, "passwd")
	assert.NotContains(t, msg, "\n")
	assert.NotEmpty(t, msg)
}
