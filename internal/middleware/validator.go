package middleware

import (
	"fmt"
	"strings"
)

// Input validation and sanitization utilities

// Row-budget bounds offered by the analyze form.
const (
	MinRows     = 5
	MaxRowsCap  = 50
	DefaultRows = 15
)

// MaxUploadBytes caps the accepted CSV upload size (8 MiB).
const MaxUploadBytes = 8 << 20

// ClampRows bounds the requested row budget to [MinRows, MaxRowsCap];
// zero or negative means the default.
func ClampRows(n int) int {
	if n <= 0 {
		return DefaultRows
	}
	if n < MinRows {
		return MinRows
	}
	if n > MaxRowsCap {
		return MaxRowsCap
	}
	return n
}

// ValidateColumnName checks the selected text column parameter
func ValidateColumnName(column string) error {
	if strings.TrimSpace(column) == "" {
		return fmt.Errorf("column cannot be empty")
	}
	if strings.ContainsAny(column, "\x00\n\r") {
		return fmt.Errorf("invalid characters in column name")
	}
	return nil
}

// ValidateUploadType checks the multipart file content type for CSV uploads.
// Browsers disagree on CSV MIME types, so a small allowlist is used and an
// empty type is accepted (the CSV parser is the real gate).
func ValidateUploadType(contentType string) error {
	if contentType == "" {
		return nil
	}
	mime := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	allowed := map[string]bool{
		"text/csv":                 true,
		"application/csv":          true,
		"application/vnd.ms-excel": true,
		"text/plain":               true,
		"application/octet-stream": true,
	}
	if !allowed[mime] {
		return fmt.Errorf("unsupported upload type: %s (expected a CSV file)", mime)
	}
	return nil
}

// SanitizeString removes dangerous characters from strings
func SanitizeString(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")

	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(result.String())
}
