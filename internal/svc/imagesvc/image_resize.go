package imagesvc

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"strings"

	"golang.org/x/image/draw"
)

// ErrUnknownInterpolator is returned when an unsupported interpolation method is specified.
var ErrUnknownInterpolator = errors.New("unknown interpolator")

//nolint:gochecknoglobals
var (
	// interpolMap maps interpolator names to their implementations.
	// Supported values: "nearestneighbor", "catmullrom", "bilinear", "approxbilinear".
	interpolMap = map[string]draw.Interpolator{
		"nearestneighbor": draw.NearestNeighbor,
		"catmullrom":      draw.CatmullRom,
		"bilinear":        draw.BiLinear,
		"approxbilinear":  draw.ApproxBiLinear,
	}
)

func getInterpolatorByName(name string) (draw.Interpolator, error) {
	interpol, ok := interpolMap[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownInterpolator, name)
	}

	return interpol, nil
}

// fitWithin returns the size of a w×h image scaled down so that neither edge
// exceeds maxEdge, keeping the aspect ratio. Smaller images keep their size.
func fitWithin(w, h, maxEdge int) (int, int) {
	if maxEdge <= 0 || (w <= maxEdge && h <= maxEdge) {
		return w, h
	}

	if w >= h {
		return maxEdge, max(1, h*maxEdge/w)
	}

	return max(1, w*maxEdge/h), maxEdge
}

// scaleImage draws original into a width×height bitmap with interpol.
func scaleImage(original image.Image, width, height int, interpol draw.Interpolator) image.Image {
	bitmap := image.NewRGBA(image.Rect(0, 0, width, height))
	interpol.Scale(bitmap, bitmap.Bounds(), original, original.Bounds(), draw.Over, nil)

	return bitmap
}

// encodeImage encodes a Go image.Image object into binary format.
func encodeImage(bitmap image.Image, ctype string) ([]byte, error) {
	var buffer bytes.Buffer

	encoder, err := getEncoderByType(ctype)
	if err != nil {
		return nil, fmt.Errorf("get encoder: %w", err)
	}

	if err := encoder(&buffer, bitmap); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}

	return buffer.Bytes(), nil
}
