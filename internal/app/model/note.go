package model

import "time"

// Note is one ingested dictation: the accepted upload's metadata, its raw
// transcript and, when requested, the structured note derived from it.
type Note struct {
	ID             string
	Filename       string
	Format         string
	SizeBytes      int64
	Transcript     string
	StructuredNote string
	Warning        string
	CreatedAt      time.Time
}
