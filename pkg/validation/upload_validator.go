package validation

import (
	"fmt"
	"path/filepath"
	"strings"

	apperrors "go-outfit-advisor/internal/errors"
)

// UploadValidator checks uploaded clothing image files before they enter
// the pipeline.
type UploadValidator struct {
	allowedExtensions map[string]bool
	maxBytes          int64
}

// NewUploadValidator creates a validator with the default extension set and
// total-size limit.
func NewUploadValidator(maxBytes int64) *UploadValidator {
	return &UploadValidator{
		allowedExtensions: map[string]bool{
			".png":  true,
			".jpg":  true,
			".jpeg": true,
			".gif":  true,
			".bmp":  true,
			".webp": true,
		},
		maxBytes: maxBytes,
	}
}

// ValidateFilename checks that the file carries an allowed image extension
func (v *UploadValidator) ValidateFilename(name string) error {
	if strings.TrimSpace(name) == "" {
		return apperrors.NewValidationError("filename cannot be empty", nil)
	}
	ext := strings.ToLower(filepath.Ext(name))
	if !v.allowedExtensions[ext] {
		return apperrors.NewValidationError(
			fmt.Sprintf("unsupported file type %q", ext), nil)
	}
	return nil
}

// ValidateSize checks the declared size against the total request limit
func (v *UploadValidator) ValidateSize(size int64) error {
	if size <= 0 {
		return apperrors.NewValidationError("file is empty", nil)
	}
	if v.maxBytes > 0 && size > v.maxBytes {
		return apperrors.NewValidationError(
			fmt.Sprintf("file exceeds %d byte limit", v.maxBytes), nil)
	}
	return nil
}

// AllowedExtensions returns the accepted extension list, sorted for display
func (v *UploadValidator) AllowedExtensions() []string {
	out := make([]string, 0, len(v.allowedExtensions))
	for ext := range v.allowedExtensions {
		out = append(out, ext)
	}
	return out
}
