// Package lang detects the natural language of free-text queries.
package lang

import (
	"strings"

	"github.com/abadojack/whatlanggo"
)

// langNames maps ISO 639-3 codes to the lower-case language names used by
// the time-phrase tables and output templates.
var langNames = map[string]string{
	"eng": "english",
	"swe": "swedish",
	"spa": "spanish",
	"deu": "german",
	"fra": "french",
	"ita": "italian",
	"por": "portuguese",
	"nld": "dutch",
	"pol": "polish",
	"rus": "russian",
}

// Detector resolves query text to a supported language name.
// Detection never fails: unsupported or ambiguous input falls back to the
// configured default.
type Detector struct {
	defaultLanguage string
}

// NewDetector creates a detector with the given default language.
func NewDetector(defaultLanguage string) *Detector {
	if defaultLanguage == "" {
		defaultLanguage = "english"
	}
	return &Detector{defaultLanguage: strings.ToLower(defaultLanguage)}
}

// Detect returns the language name for text, or the default when the text
// is empty, unrecognized, or outside the supported set.
func (d *Detector) Detect(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return d.defaultLanguage
	}

	info := whatlanggo.Detect(text)
	name, ok := langNames[whatlanggo.LangToString(info.Lang)]
	if !ok {
		return d.defaultLanguage
	}
	return name
}

// Default returns the configured fallback language.
func (d *Detector) Default() string {
	return d.defaultLanguage
}

// Supported reports whether the given language name has localized tables.
func Supported(language string) bool {
	for _, name := range langNames {
		if name == language {
			return true
		}
	}
	return false
}
