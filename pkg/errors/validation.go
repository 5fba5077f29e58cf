package errors

import (
	"strings"
	"unicode"
)

// ValidateCommitID validates a commit identifier for safety and correctness.
// Identifiers are opaque tokens, so the rules are intentionally minimal:
//
//   - No empty identifiers
//   - No control characters or null bytes
//   - Maximum length of 256 characters
//
// Content-addressed stores typically use hex digests here, but nothing in
// the checker depends on that, so no charset is enforced.
func ValidateCommitID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidCommitID, "commit id cannot be empty")
	}

	if len(id) > 256 {
		return New(ErrCodeInvalidCommitID, "commit id too long (max 256 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidCommitID, "commit id contains control characters")
		}
	}

	return nil
}

// ValidatePath validates a commit-log file path supplied on the command
// line or in a config file. It prevents path traversal out of the working
// tree and rejects unreasonable input.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	return nil
}

// ValidateSourceLabel validates the free-form source label attached to
// validation reports (e.g. a repository name or ingest batch id).
func ValidateSourceLabel(source string) error {
	if len(source) > 256 {
		return New(ErrCodeInvalidInput, "source label too long (max 256 characters)")
	}
	if strings.ContainsRune(source, '\x00') {
		return New(ErrCodeInvalidInput, "source label contains null byte")
	}
	return nil
}
