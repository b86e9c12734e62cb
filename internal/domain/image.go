package domain

import "errors"

var (
	ErrImageTypeNotSupported = errors.New("image type not supported")
	ErrImageTooLarge         = errors.New("image too large")
)

// Image is a prepared upload attached to a disaster report.
type Image struct {
	Name        string
	ContentType string
	Data        []byte
	Width       int
	Height      int
}

// Portrait reports whether the image is at least as tall as it is wide.
func (i Image) Portrait() bool {
	return i.Height >= i.Width
}
