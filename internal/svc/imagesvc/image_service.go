package imagesvc

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"golang.org/x/image/draw"

	"github.com/mkrupp/disastermap/internal/domain"
	"github.com/mkrupp/disastermap/internal/infra/logging"
)

// WarningLandscape is attached to prepared images wider than they are tall.
const WarningLandscape = "Landscape images may be cropped on the disaster cards; portrait images are recommended."

// ImageService checks and prepares images attached to disaster reports.
type ImageService struct {
	cfg      ImageConfig
	interpol draw.Interpolator
	log      logging.Logger
}

// NewImageService creates a new ImageService.
// Returns an error if the configured interpolator is unknown.
func NewImageService(cfg ImageConfig) (*ImageService, error) {
	interpol, err := getInterpolatorByName(cfg.Interpolator)
	if err != nil {
		return nil, fmt.Errorf("get interpolator: %w", err)
	}

	return &ImageService{
		cfg:      cfg,
		interpol: interpol,
		log:      logging.GetLogger("svc.imagesvc.image_service"),
	}, nil
}

// MaxSize returns the maximum allowed file size in bytes.
func (s *ImageService) MaxSize() int64 {
	return s.cfg.MaxBytes
}

// Prepare checks an upload and downscales it to the configured max edge.
// It returns warnings the user should see but that do not block the upload.
func (s *ImageService) Prepare(ctx context.Context, name string, data []byte) (img domain.Image, warnings []string, err error) {
	log := s.log.With(logging.Group("image", "name", name, "size", len(data)))

	defer func() {
		if err != nil {
			log.WarnContext(ctx, "image rejected", "error", err)
		} else {
			log.DebugContext(ctx, "image prepared", "width", img.Width, "height", img.Height)
		}
	}()

	if s.cfg.MaxBytes > 0 && int64(len(data)) > s.cfg.MaxBytes {
		return domain.Image{}, nil, fmt.Errorf("%w: %s exceeds %s", domain.ErrImageTooLarge,
			humanize.IBytes(uint64(len(data))), humanize.IBytes(uint64(s.cfg.MaxBytes)))
	}

	ctype, err := DetectType(data)
	if err != nil {
		return domain.Image{}, nil, err
	}

	decoder, err := getDecoderByType(ctype)
	if err != nil {
		return domain.Image{}, nil, err
	}

	original, err := decoder(bytes.NewReader(data))
	if err != nil {
		return domain.Image{}, nil, fmt.Errorf("%w: decode: %w", domain.ErrImageTypeNotSupported, err)
	}

	bounds := original.Bounds()
	width, height := fitWithin(bounds.Dx(), bounds.Dy(), s.cfg.MaxEdge)

	if width != bounds.Dx() || height != bounds.Dy() {
		data, err = encodeImage(scaleImage(original, width, height, s.interpol), ctype)
		if err != nil {
			return domain.Image{}, nil, fmt.Errorf("encode image: %w", err)
		}
	}

	img = domain.Image{
		Name:        filepath.Base(name),
		ContentType: ctype,
		Data:        data,
		Width:       width,
		Height:      height,
	}

	if !img.Portrait() {
		warnings = append(warnings, WarningLandscape)
	}

	return img, warnings, nil
}
