package security

import (
	"path/filepath"
	"strings"
)

// RejectionKind classifies why an upload was refused. The kind is what gets
// logged; clients only ever see the generic message for the kind.
type RejectionKind string

const (
	KindPathTraversal          RejectionKind = "path_traversal"
	KindMissingExtension       RejectionKind = "missing_extension"
	KindUnsupportedExtension   RejectionKind = "unsupported_extension"
	KindContentMismatch        RejectionKind = "content_mismatch"
	KindUnrecognizedContent    RejectionKind = "unrecognized_content"
	KindSuspiciousContent      RejectionKind = "suspicious_content"
	KindSizeExceeded           RejectionKind = "size_exceeded"
	KindTempFileAllocation     RejectionKind = "temp_file_allocation_failure"
	KindDownstreamProcessing   RejectionKind = "downstream_processing_failure"
)

// Rejection is the typed result of a failed validation stage. Detail carries
// operator-facing context and must never be surfaced to clients.
type Rejection struct {
	Kind   RejectionKind
	Detail string
}

// Error implements the error interface so a Rejection can travel through
// error-returning call chains without losing its kind.
func (r *Rejection) Error() string {
	return string(r.Kind) + ": " + r.Detail
}

func reject(kind RejectionKind, detail string) *Rejection {
	return &Rejection{Kind: kind, Detail: detail}
}

// genericMessages maps every rejection kind to a fixed client-facing string.
// None of these echo attacker input, internal paths, or which heuristic fired.
var genericMessages = map[RejectionKind]string{
	KindPathTraversal:        "Invalid filename provided",
	KindMissingExtension:     "Invalid file format or content",
	KindUnsupportedExtension: "Invalid file format or content",
	KindContentMismatch:      "Invalid file format or content",
	KindUnrecognizedContent:  "Invalid file format or content",
	KindSuspiciousContent:    "Invalid file format or content",
	KindSizeExceeded:         "File size exceeds maximum allowed size",
	KindTempFileAllocation:   "Internal server error occurred",
	KindDownstreamProcessing: "Audio processing failed",
}

// GenericMessage returns the safe client-facing message for a rejection kind.
func GenericMessage(kind RejectionKind) string {
	if msg, ok := genericMessages[kind]; ok {
		return msg
	}
	return "An error occurred while processing your request"
}

// LogSafe reduces an untrusted filename to something safe to write into a log
// line: basename only, control characters replaced, bounded length. This is a
// log-injection defense, not a validation step.
func LogSafe(filename string) string {
	if filename == "" {
		return "empty"
	}

	base := filepath.Base(filename)
	if idx := strings.LastIndex(base, "\\"); idx != -1 {
		base = base[idx+1:]
	}

	var b strings.Builder
	for _, r := range base {
		if r < 0x20 || r == 0x7F {
			b.WriteRune('_')
			continue
		}
		b.WriteRune(r)
	}
	safe := b.String()

	if len(safe) > 255 {
		safe = safe[:252] + "..."
	}
	if safe == "" {
		return "sanitized"
	}
	return safe
}
