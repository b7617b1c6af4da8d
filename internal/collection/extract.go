package collection

import (
	"fmt"
	"regexp"
)

// Extractor recognizes provider keys inside free-form pasted text.
type Extractor struct {
	Name    string
	pattern *regexp.Regexp
}

var (
	// GeminiKeys matches Google AI Studio keys.
	GeminiKeys = Extractor{Name: "gemini", pattern: regexp.MustCompile(`AIzaSy\S{33}`)}
	// VertexKeys matches Vertex AI express-mode keys.
	VertexKeys = Extractor{Name: "vertex", pattern: regexp.MustCompile(`AQ\.[a-zA-Z0-9_\-]{50}`)}
)

// Extract returns every match in text order. Duplicates are kept; the editor
// removes them on merge.
func (x Extractor) Extract(text string) []string {
	if x.pattern == nil {
		return nil
	}
	return x.pattern.FindAllString(text, -1)
}

// Level classifies a Notice.
type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
)

// Notice is the operator notification produced by a bulk operation.
type Notice struct {
	Level Level
	Text  string
	Count int
}

// BulkAdd extracts keys from text and merges them into e.
func BulkAdd(e *Editor, x Extractor, text string) Notice {
	keys := x.Extract(text)
	if len(keys) == 0 {
		return Notice{Level: LevelWarning, Text: "No valid keys recognized in the input."}
	}
	added := e.AddBulk(keys)
	if added == 0 {
		return Notice{Level: LevelInfo, Text: "All recognized keys already exist."}
	}
	return Notice{Level: LevelSuccess, Text: fmt.Sprintf("%d unique %s added", added, plural(added, "key", "keys")), Count: added}
}

// BulkDelete extracts keys from text and removes them from e.
func BulkDelete(e *Editor, x Extractor, text string) Notice {
	keys := x.Extract(text)
	if len(keys) == 0 {
		return Notice{Level: LevelWarning, Text: "No valid keys recognized in the input."}
	}
	removed := e.DeleteBulk(keys)
	if removed == 0 {
		return Notice{Level: LevelInfo, Text: "None of the recognized keys were configured."}
	}
	return Notice{Level: LevelSuccess, Text: fmt.Sprintf("%d %s deleted", removed, plural(removed, "key", "keys")), Count: removed}
}

// Redact shortens a key for display: first and last six characters, or three
// for short keys. Counts runes, so the result stays valid UTF-8.
func Redact(key string) string {
	r := []rune(key)
	switch {
	case len(r) <= 6:
		return key
	case len(r) <= 12:
		return string(r[:3]) + "..." + string(r[len(r)-3:])
	}
	return string(r[:6]) + "..." + string(r[len(r)-6:])
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
