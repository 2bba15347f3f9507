package audio

import (
	"path/filepath"
	"strings"
)

// DefaultFormat is assumed when a filename carries no recognizable extension.
// Browser recordings arrive as webm/opus, making it the safe default.
const DefaultFormat = "webm"

var knownFormats = map[string]bool{
	"webm": true,
	"mp3":  true,
	"wav":  true,
	"m4a":  true,
	"ogg":  true,
	"mp4":  true,
	"flac": true,
	"aac":  true,
}

// DetectFormat derives the container format tag from a filename extension hint.
func DetectFormat(filename string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if !knownFormats[ext] {
		return DefaultFormat
	}
	return ext
}

// KnownFormat reports whether the filename carries a recognized audio
// container extension.
func KnownFormat(filename string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	return knownFormats[ext]
}
