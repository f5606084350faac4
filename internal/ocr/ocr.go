// Package ocr reads ingredient text from label photos.
package ocr

import (
	"context"
	"errors"
)

var (
	// ErrDisabled is returned when no recognizer backend is configured.
	ErrDisabled = errors.New("ocr: recognizer disabled")
	// ErrNoText means the image was processed but contained no readable text.
	ErrNoText = errors.New("ocr: no text found")
)

// Recognizer extracts plain text from an encoded image.
type Recognizer interface {
	Recognize(ctx context.Context, image []byte, mimeType string) (string, error)
}

// Disabled rejects every image with ErrDisabled.
type Disabled struct{}

func (Disabled) Recognize(context.Context, []byte, string) (string, error) {
	return "", ErrDisabled
}
