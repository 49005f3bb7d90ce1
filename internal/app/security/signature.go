package security

import "bytes"

// minSignaturePayload is the smallest payload that can carry any recognizable
// container header. Anything shorter rejects immediately.
const minSignaturePayload = 20

// SignatureRecord maps a leading byte sequence to the audio format it
// identifies. deepCheck, when set, must also pass before the match counts:
// several containers share prefixes with unrelated formats.
type SignatureRecord struct {
	prefix    []byte
	extension string
	format    string
	deepCheck func(payload []byte) bool
}

// signatureTable is scanned in order; the first prefix present at offset 0
// selects the candidate format. Read-only after initialization, safe for
// unsynchronized concurrent reads.
var signatureTable = []SignatureRecord{
	// MP3 frame sync words for MPEG-1, MPEG-2 and MPEG-2.5 Layer 3,
	// plus the ID3v2 tag most encoders prepend.
	{prefix: []byte{0xFF, 0xFB}, extension: ".mp3", format: "mp3"},
	{prefix: []byte{0xFF, 0xF3}, extension: ".mp3", format: "mp3"},
	{prefix: []byte{0xFF, 0xF2}, extension: ".mp3", format: "mp3"},
	{prefix: []byte("ID3"), extension: ".mp3", format: "mp3"},

	// RIFF is a generic container (AVI, WEBP, ...); only RIFF with the
	// WAVE literal at offset 8 is a WAV file.
	{prefix: []byte("RIFF"), extension: ".wav", format: "wav", deepCheck: hasWaveMarker},

	{prefix: []byte("OggS"), extension: ".ogg", format: "ogg"},
	{prefix: []byte("fLaC"), extension: ".flac", format: "flac"},

	// MP4/M4A boxes start with a 4-byte size; the ftyp literal must occur
	// near the start or the leading zeros are something else entirely.
	{prefix: []byte{0x00, 0x00, 0x00, 0x20}, extension: ".m4a", format: "m4a", deepCheck: hasFtypBox},
	{prefix: []byte{0x00, 0x00, 0x00, 0x18}, extension: ".m4a", format: "m4a", deepCheck: hasFtypBox},
	{prefix: []byte{0x00, 0x00, 0x00, 0x1C}, extension: ".m4a", format: "m4a", deepCheck: hasFtypBox},

	// Matroska/WebM EBML header. Truncated EBML streams are rejected by
	// the minimum-length deep check.
	{prefix: []byte{0x1A, 0x45, 0xDF, 0xA3}, extension: ".webm", format: "webm", deepCheck: longEnoughForEBML},
}

func hasWaveMarker(payload []byte) bool {
	return len(payload) > 12 && bytes.Equal(payload[8:12], []byte("WAVE"))
}

func hasFtypBox(payload []byte) bool {
	window := payload
	if len(window) > 32 {
		window = window[:32]
	}
	return bytes.Contains(window, []byte("ftyp"))
}

func longEnoughForEBML(payload []byte) bool {
	return len(payload) > 32
}

// ValidateSignature checks the payload's magic number against the signature
// table and cross-checks the detected format against the extension confirmed
// by ValidateExtension. It returns the detected format name on success.
//
// The decision is total: every byte string classifies as either a format
// match or a typed rejection, never a panic.
func ValidateSignature(payload []byte, extension string) (string, *Rejection) {
	if len(payload) < minSignaturePayload {
		return "", reject(KindUnrecognizedContent, "payload too small to carry a container header")
	}

	for _, record := range signatureTable {
		if !bytes.HasPrefix(payload, record.prefix) {
			continue
		}

		if record.deepCheck != nil && !record.deepCheck(payload) {
			return "", reject(KindContentMismatch, "prefix matched "+record.format+" but deep check failed")
		}

		if record.extension != extension {
			return "", reject(KindContentMismatch, "content is "+record.format+" but extension is "+extension)
		}

		return record.format, nil
	}

	// No table entry matched. The extension is never trusted as a fallback.
	return "", reject(KindUnrecognizedContent, "no known audio signature at offset 0")
}
