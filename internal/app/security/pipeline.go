package security

import (
	"fmt"
	"log/slog"
)

// HeuristicPolicy decides what a malware-heuristic hit does to the request.
type HeuristicPolicy string

const (
	// HeuristicWarn logs the hit and lets the upload proceed. The
	// statistical heuristics (null ratio, line-run length) fire on plenty
	// of legitimate audio, so this is the default.
	HeuristicWarn HeuristicPolicy = "warn"

	// HeuristicReject turns any hit into a SuspiciousContent rejection.
	HeuristicReject HeuristicPolicy = "reject"
)

// Config holds the validation pipeline settings.
type Config struct {
	// AllowedExtensions is the extension allow-set. Nil means the default
	// set (.mp3, .wav, .webm, .m4a, .ogg, .flac).
	AllowedExtensions map[string]bool

	// MaxUploadSize is the largest accepted payload in bytes.
	MaxUploadSize int64

	// TempDir is where validated payloads are staged. Empty means the
	// system temp directory.
	TempDir string

	// HeuristicPolicy selects reject-vs-warn for malware heuristic hits.
	HeuristicPolicy HeuristicPolicy
}

// DefaultMaxUploadSize is the default upload ceiling: 25 MiB.
const DefaultMaxUploadSize int64 = 25 * 1024 * 1024

// DefaultConfig returns the pipeline defaults: 25 MiB limit, default
// extension set, warn-only heuristics.
func DefaultConfig() Config {
	return Config{
		AllowedExtensions: DefaultAllowedExtensions,
		MaxUploadSize:     DefaultMaxUploadSize,
		HeuristicPolicy:   HeuristicWarn,
	}
}

// Validated describes an upload that passed every stage.
type Validated struct {
	// Filename is the sanitized basename.
	Filename string

	// Extension is the confirmed extension, including the leading dot.
	Extension string

	// Format is the container format detected from the content signature.
	Format string

	// Size is the payload length in bytes.
	Size int64

	// HeuristicWarning carries the scan reason when the scanner fired but
	// policy let the upload through.
	HeuristicWarning string
}

// Validator runs the secure ingestion pipeline. It holds no per-request
// state; a single instance is safe for concurrent use.
type Validator struct {
	config Config
	logger *slog.Logger
}

// NewValidator creates a Validator with the given configuration, filling in
// defaults for zero values.
func NewValidator(config Config, logger *slog.Logger) *Validator {
	if config.AllowedExtensions == nil {
		config.AllowedExtensions = DefaultAllowedExtensions
	}
	if config.MaxUploadSize <= 0 {
		config.MaxUploadSize = DefaultConfig().MaxUploadSize
	}
	if config.HeuristicPolicy == "" {
		config.HeuristicPolicy = HeuristicWarn
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{config: config, logger: logger}
}

// Config returns the validator's effective configuration.
func (v *Validator) Config() Config {
	return v.config
}

// Validate runs the full pipeline on an untrusted filename and payload:
// filename sanitization, extension allow-list, size check, content signature
// verification, malware heuristics. Exactly one of the results is non-nil.
func (v *Validator) Validate(filename string, payload []byte) (*Validated, *Rejection) {
	sanitized, rej := SanitizeFilename(filename)
	if rej != nil {
		v.logger.Warn("filename rejected",
			"kind", string(rej.Kind),
			"filename", LogSafe(filename),
		)
		return nil, rej
	}

	ext, rej := ValidateExtension(sanitized, v.config.AllowedExtensions)
	if rej != nil {
		v.logger.Warn("extension rejected",
			"kind", string(rej.Kind),
			"filename", sanitized,
		)
		return nil, rej
	}

	if int64(len(payload)) > v.config.MaxUploadSize {
		rej := reject(KindSizeExceeded,
			fmt.Sprintf("payload %d bytes exceeds limit %d", len(payload), v.config.MaxUploadSize))
		v.logger.Warn("payload too large",
			"filename", sanitized,
			"size", len(payload),
			"limit", v.config.MaxUploadSize,
		)
		return nil, rej
	}

	format, rej := ValidateSignature(payload, ext)
	if rej != nil {
		v.logger.Warn("content signature rejected",
			"kind", string(rej.Kind),
			"filename", sanitized,
			"extension", ext,
			"detail", rej.Detail,
		)
		return nil, rej
	}

	result := &Validated{
		Filename:  sanitized,
		Extension: ext,
		Format:    format,
		Size:      int64(len(payload)),
	}

	if scan := ScanForMalware(payload); scan.Suspicious {
		if v.config.HeuristicPolicy == HeuristicReject {
			rej := reject(KindSuspiciousContent, scan.Reason)
			v.logger.Warn("heuristic scan rejected upload",
				"filename", sanitized,
				"reason", scan.Reason,
			)
			return nil, rej
		}
		result.HeuristicWarning = scan.Reason
		v.logger.Warn("heuristic scan flagged upload",
			"filename", sanitized,
			"reason", scan.Reason,
		)
	}

	return result, nil
}

// Stage runs Validate and, on success, stages the payload in a secure temp
// file for the duration of fn. The temp file is removed on every exit path.
func (v *Validator) Stage(filename string, payload []byte, fn func(path string, info *Validated) error) (*Validated, *Rejection) {
	info, rej := v.Validate(filename, payload)
	if rej != nil {
		return nil, rej
	}

	err := WithTempFile(payload, info.Extension, v.config.TempDir, func(path string) error {
		return fn(path, info)
	})
	if err != nil {
		if r, ok := err.(*Rejection); ok {
			return nil, r
		}
		return nil, reject(KindDownstreamProcessing, err.Error())
	}

	return info, nil
}
