package upload

import (
	"bytes"
	"fmt"
	"image"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// ValidationError reports a file rejected before any network activity:
// oversized, empty, or not a decodable image.
type ValidationError struct {
	Name   string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid image %q: %s", e.Name, e.Reason)
}

func validateImage(name string, data []byte, maxBytes int64) error {
	if len(data) == 0 {
		return &ValidationError{Name: name, Reason: "empty file"}
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return &ValidationError{Name: name, Reason: fmt.Sprintf("%d bytes exceeds limit of %d", len(data), maxBytes)}
	}
	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return &ValidationError{Name: name, Reason: "not a supported image type"}
	}
	return nil
}
