package model

// LogLine is a single line of an archive file, addressed by its absolute
// 0-based index. Immutable once cached.
type LogLine struct {
	Index   int    `json:"index"`
	Content string `json:"content"`
}

// FileMetadata describes the currently selected archive file. It is fetched
// once per selection and replaced wholesale on the next one, never merged.
type FileMetadata struct {
	SizeBytes      int64   `json:"size"`
	EstimatedLines int     `json:"estimated_lines"`
	SizeMB         float64 `json:"size_mb"`
}

// Known reports whether the metadata carries usable values at all.
func (m FileMetadata) Known() bool {
	return m.SizeBytes > 0 || m.EstimatedLines > 0
}
