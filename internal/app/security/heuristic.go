package security

import "bytes"

// heuristicScanWindow bounds the scan cost regardless of upload size.
const heuristicScanWindow = 1024

const (
	// nullByteRatioThreshold flags padding/anomaly when more than half of
	// the scanned window is NUL bytes.
	nullByteRatioThreshold = 0.5

	// maxRunWithoutLineBreak flags overflow-style payloads: a run of more
	// than this many bytes without any line-break marker.
	maxRunWithoutLineBreak = 800
)

// suspiciousPatterns are overt non-audio indicators: executable headers,
// script shebangs, markup, archive signatures and call-like tokens. A hit is
// advisory; a byte-for-byte valid audio container can still trip one of these
// as a false positive.
var suspiciousPatterns = []struct {
	pattern []byte
	reason  string
}{
	{[]byte("MZ"), "DOS/PE executable header"},
	{[]byte("\x7fELF"), "ELF executable header"},
	{[]byte{0xFE, 0xED, 0xFA, 0xCE}, "Mach-O executable header"},
	{[]byte{0xFE, 0xED, 0xFA, 0xCF}, "Mach-O 64-bit executable header"},
	{[]byte{0xCE, 0xFA, 0xED, 0xFE}, "Mach-O executable header (LE)"},
	{[]byte{0xCF, 0xFA, 0xED, 0xFE}, "Mach-O 64-bit executable header (LE)"},
	{[]byte("#!/bin/"), "script shebang"},
	{[]byte("#!/usr/bin/"), "script shebang"},
	{[]byte("<script"), "embedded script markup"},
	{[]byte("<?php"), "embedded PHP markup"},
	{[]byte("PK\x03\x04"), "ZIP archive signature"},
	{[]byte("Rar!"), "RAR archive signature"},
	{[]byte{0x1F, 0x8B}, "GZIP signature"},
	{[]byte("eval("), "suspicious call token"},
	{[]byte("system("), "suspicious call token"},
	{[]byte("exec("), "suspicious call token"},
}

// ScanResult reports the outcome of the heuristic scan. Reason is
// operator-facing only and never leaves the server.
type ScanResult struct {
	Suspicious bool
	Reason     string
}

// ScanForMalware inspects the first 1024 bytes of the payload for overt
// non-audio payload indicators. It is a defense-in-depth check, additive to
// signature validation and never a replacement for it; whether a hit
// hard-rejects or only warns is the caller's policy.
func ScanForMalware(payload []byte) ScanResult {
	window := payload
	if len(window) > heuristicScanWindow {
		window = window[:heuristicScanWindow]
	}
	if len(window) == 0 {
		return ScanResult{}
	}

	for _, p := range suspiciousPatterns {
		if bytes.Contains(window, p.pattern) {
			return ScanResult{Suspicious: true, Reason: p.reason}
		}
	}

	nulls := bytes.Count(window, []byte{0x00})
	if float64(nulls)/float64(len(window)) > nullByteRatioThreshold {
		return ScanResult{Suspicious: true, Reason: "excessive null-byte ratio"}
	}

	if run := longestRunWithoutBreak(window); run > maxRunWithoutLineBreak {
		return ScanResult{Suspicious: true, Reason: "overlong run without line breaks"}
	}

	return ScanResult{}
}

// longestRunWithoutBreak returns the longest stretch of bytes between
// line-break markers in the window.
func longestRunWithoutBreak(window []byte) int {
	longest, current := 0, 0
	for _, b := range window {
		if b == '\n' || b == '\r' {
			if current > longest {
				longest = current
			}
			current = 0
			continue
		}
		current++
	}
	if current > longest {
		longest = current
	}
	return longest
}
