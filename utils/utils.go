package utils

import (
	"encoding/json"
	"net/http"
	"strings"
	"unicode"
	"unicode/utf8"
)

// WriteError writes the uniform {"error", "status"} body.
func WriteError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":  message,
		"status": statusCode,
	})
}

// CollapseWhitespace replaces every run of whitespace with a single space.
func CollapseWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// TruncateWords cuts text to at most limit runes, preferring the last word
// boundary, and appends suffix when anything was removed.
func TruncateWords(text string, limit int, suffix string) (string, bool) {
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text, false
	}

	runes := []rune(text)
	cut := limit
	for i := limit; i > limit/2; i-- {
		if unicode.IsSpace(runes[i]) {
			cut = i
			break
		}
	}

	return strings.TrimRightFunc(string(runes[:cut]), unicode.IsSpace) + suffix, true
}
