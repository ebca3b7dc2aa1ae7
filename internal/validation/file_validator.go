// Package validation checks uploaded files before ingestion touches
// them: supported extension, sane filename, non-empty content within
// the configured size limit.
package validation

import (
	"fmt"
	"path/filepath"
	"strings"
)

// UploadKind is the ingestion route picked from the file extension.
type UploadKind string

const (
	UploadCSV  UploadKind = "csv"
	UploadXLSX UploadKind = "xlsx"
)

// FileValidator validates upload metadata against configured limits.
type FileValidator struct {
	maxBytes int64
}

// NewFileValidator creates a validator with the given upload cap.
func NewFileValidator(maxBytes int64) *FileValidator {
	return &FileValidator{maxBytes: maxBytes}
}

// Validate checks the filename and size and returns the ingestion
// route. Size zero means the upload was empty.
func (v *FileValidator) Validate(filename string, size int64) (UploadKind, error) {
	if strings.TrimSpace(filename) == "" {
		return "", fmt.Errorf("missing filename")
	}
	if strings.ContainsAny(filename, "/\\") || strings.Contains(filename, "..") {
		return "", fmt.Errorf("invalid filename %q", filename)
	}
	if size <= 0 {
		return "", fmt.Errorf("empty upload")
	}
	if v.maxBytes > 0 && size > v.maxBytes {
		return "", fmt.Errorf("upload of %d bytes exceeds limit of %d", size, v.maxBytes)
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".txt":
		return UploadCSV, nil
	case ".xlsx":
		return UploadXLSX, nil
	default:
		return "", fmt.Errorf("unsupported file type %q, expected .csv or .xlsx", filepath.Ext(filename))
	}
}
