package router

import (
	"strings"
	"unicode/utf8"
)

// The classifier is a generative model, so its tool_name output is untrusted
// free text. Observed failure shapes: names wrapped in quotes (ASCII and
// full-width), several names listed with commas, names chained with question
// marks, and arbitrarily long garbage.
const (
	toolNameMaxLen = 50
	quoteChars     = "'\"`‘’“”「」『』"
)

// validTools is the closed set of operation names the dispatcher accepts.
var validTools = []string{
	"get_schedule",
	"send_fan_letter",
	"recommend_song",
	"get_weather",
}

// IsValidTool reports whether name is a whitelisted operation name.
func IsValidTool(name string) bool {
	for _, tool := range validTools {
		if name == tool {
			return true
		}
	}
	return false
}

// SanitizeToolName recovers a whitelisted operation name from raw classifier
// output, or returns "" when nothing valid survives. The steps run in a fixed
// order: overlong input is discarded outright, quotes are stripped before any
// comparison, and comma/question-mark truncation happens before the whitelist
// check so a valid name wrapped in noise is still recovered.
func SanitizeToolName(raw string) string {
	if raw == "" {
		return ""
	}
	if utf8.RuneCountInString(raw) > toolNameMaxLen {
		return ""
	}

	name := strings.TrimSpace(raw)
	name = strings.Trim(name, quoteChars)
	for _, q := range quoteChars {
		name = strings.ReplaceAll(name, string(q), "")
	}

	if i := strings.Index(name, ","); i >= 0 {
		name = strings.TrimSpace(name[:i])
	}
	if i := strings.Index(name, "?"); i >= 0 {
		name = strings.TrimSpace(name[:i])
	}

	if name == "" || !IsValidTool(name) {
		return ""
	}
	return name
}
