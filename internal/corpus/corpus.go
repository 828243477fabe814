// Package corpus loads and cleans the Süper Lig source documents that feed
// the ingestion pipeline. Records come from a JSON/JSONL file, an HTTP
// endpoint, or the built-in sample set.
package corpus

import (
	"regexp"
	"strings"
)

// Record is one raw source document before chunking and embedding.
type Record struct {
	Title string `json:"title"`
	Text  string `json:"text"`
	URL   string `json:"url"`
}

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	// specialCharRe strips everything except word characters, whitespace,
	// Turkish letters and basic punctuation.
	specialCharRe = regexp.MustCompile(`[^\w\sçğıöşüÇĞIİÖŞÜ.,!?()-]`)
)

// Preprocess collapses runs of whitespace, removes special characters while
// preserving Turkish letters, and trims the result.
func Preprocess(text string) string {
	text = whitespaceRe.ReplaceAllString(text, " ")
	text = specialCharRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}
