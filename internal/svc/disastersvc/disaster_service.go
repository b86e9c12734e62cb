// Package disastersvc lists and edits disaster reports through the REST API.
package disastersvc

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mkrupp/disastermap/internal/domain"
	"github.com/mkrupp/disastermap/internal/infra/logging"
	"github.com/mkrupp/disastermap/internal/svc/disastersvc/disasterclient"
	"github.com/mkrupp/disastermap/internal/svc/imagesvc"
)

const (
	msgListFailed   = "Failed to fetch disaster data"
	msgNotFound     = "Disaster not found"
	msgCreateFailed = "Failed to create disaster"
	msgUpdateFailed = "Failed to update disaster"
	msgDeleteFailed = "Failed to delete disaster"
)

// ListResult is the outcome of List.
type ListResult struct {
	domain.Result

	Disasters []domain.DisasterRecord `json:"disasters" yaml:"disasters"`
	// Total counts the records before the query filtered them.
	Total int `json:"total" yaml:"total"`
}

// GetResult is the outcome of Get. A missing record fails with an Err
// matching domain.ErrNotFound.
type GetResult struct {
	domain.Result

	Disaster *domain.DisasterRecord `json:"disaster,omitempty" yaml:"disaster,omitempty"`
}

// CreateResult is the outcome of Create.
type CreateResult struct {
	domain.Result

	Disaster *domain.DisasterRecord `json:"disaster,omitempty" yaml:"disaster,omitempty"`
	Warnings []string               `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Upload is an image file as chosen by the user, before preparation.
type Upload struct {
	Name string
	Data []byte
}

// DisasterService performs the disaster operations of the pages. Like the
// auth operations it reports failures in its results and never returns errors.
type DisasterService struct {
	Client disasterclient.DisasterClient
	Images *imagesvc.ImageService
	Log    logging.Logger
}

// NewDisasterService creates a new DisasterService.
func NewDisasterService(client disasterclient.DisasterClient, images *imagesvc.ImageService) *DisasterService {
	return &DisasterService{
		Client: client,
		Images: images,
		Log:    logging.GetLogger("svc.disastersvc.disaster_service"),
	}
}

// List fetches every disaster and applies q.
func (s *DisasterService) List(ctx context.Context, q Query) ListResult {
	records, err := s.Client.List(ctx)
	if err != nil {
		s.Log.WarnContext(ctx, "list disasters failed", "error", err)

		return ListResult{Result: domain.Failed(fmt.Errorf("list: %w", err), msgListFailed)}
	}

	return ListResult{
		Result:    domain.Succeeded(""),
		Disasters: q.Apply(records),
		Total:     len(records),
	}
}

// Get fetches one disaster.
func (s *DisasterService) Get(ctx context.Context, id domain.ID) GetResult {
	log := s.Log.With(logging.Group("disaster", "id", id))

	if err := checkID(id); err != nil {
		return GetResult{Result: domain.Failed(err, msgNotFound)}
	}

	record, err := s.Client.Get(ctx, id)
	if err != nil {
		log.WarnContext(ctx, "get disaster failed", "error", err)

		fallback := msgListFailed
		if errors.Is(err, domain.ErrNotFound) {
			fallback = msgNotFound
		}

		return GetResult{Result: domain.Failed(fmt.Errorf("get: %w", err), fallback)}
	}

	return GetResult{Result: domain.Succeeded(""), Disaster: &record}
}

// Create validates input, prepares the optional upload and reports the disaster.
func (s *DisasterService) Create(ctx context.Context, input domain.DisasterInput, upload *Upload) (res CreateResult) {
	var err error

	defer func() {
		if err != nil {
			s.Log.WarnContext(ctx, "create disaster failed", "error", err)
		} else {
			s.Log.InfoContext(ctx, "disaster created")
		}
	}()

	if err = input.Validate(); err != nil {
		return CreateResult{Result: domain.Failed(err, msgCreateFailed)}
	}

	var (
		image    *domain.Image
		warnings []string
	)

	if upload != nil && len(upload.Data) > 0 {
		if s.Images == nil {
			err = fmt.Errorf("%w: image uploads are disabled", domain.ErrImageTypeNotSupported)

			return CreateResult{Result: domain.Failed(err, msgCreateFailed)}
		}

		var prepared domain.Image

		prepared, warnings, err = s.Images.Prepare(ctx, upload.Name, upload.Data)
		if err != nil {
			err = errors.Join(domain.NewInputError("image", imageReason(err)), err)

			return CreateResult{Result: domain.Failed(err, msgCreateFailed)}
		}

		image = &prepared
	}

	resp, err := s.Client.Create(ctx, input, image)
	if err != nil {
		err = fmt.Errorf("create: %w", err)

		return CreateResult{Result: domain.Failed(err, msgCreateFailed), Warnings: warnings}
	}

	return CreateResult{
		Result:   domain.Succeeded(orDefault(resp.Message, "Disaster reported")),
		Disaster: resp.Disaster,
		Warnings: warnings,
	}
}

// Update validates input and saves it over the disaster id.
func (s *DisasterService) Update(ctx context.Context, id domain.ID, input domain.DisasterInput) domain.Result {
	log := s.Log.With(logging.Group("disaster", "id", id))

	err := checkID(id)
	if err == nil {
		err = input.Validate()
	}

	if err != nil {
		log.WarnContext(ctx, "update disaster rejected", "error", err)

		return domain.Failed(err, msgUpdateFailed)
	}

	msg, err := s.Client.Update(ctx, id, input)
	if err != nil {
		log.WarnContext(ctx, "update disaster failed", "error", err)

		return domain.Failed(fmt.Errorf("update: %w", err), msgUpdateFailed)
	}

	log.InfoContext(ctx, "disaster updated")

	return domain.Succeeded(orDefault(msg, "Disaster updated"))
}

// Delete removes the disaster id.
func (s *DisasterService) Delete(ctx context.Context, id domain.ID) domain.Result {
	log := s.Log.With(logging.Group("disaster", "id", id))

	if err := checkID(id); err != nil {
		return domain.Failed(err, msgDeleteFailed)
	}

	msg, err := s.Client.Delete(ctx, id)
	if err != nil {
		log.WarnContext(ctx, "delete disaster failed", "error", err)

		return domain.Failed(fmt.Errorf("delete: %w", err), msgDeleteFailed)
	}

	log.InfoContext(ctx, "disaster deleted")

	return domain.Succeeded(orDefault(msg, "Disaster deleted"))
}

func checkID(id domain.ID) error {
	if strings.TrimSpace(id.String()) == "" {
		return domain.NewInputError("id", "is required")
	}

	return nil
}

func imageReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrImageTooLarge):
		return "is too large"
	case errors.Is(err, domain.ErrImageTypeNotSupported):
		return "must be a JPEG or PNG file"
	default:
		return "could not be processed"
	}
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}

	return s
}
