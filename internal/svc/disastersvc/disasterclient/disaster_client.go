package disasterclient

import (
	"context"

	"github.com/mkrupp/disastermap/internal/domain"
)

// CreateResponse is the answer of POST /api/disasters.
type CreateResponse struct {
	Message  string                 `json:"message"`
	Disaster *domain.DisasterRecord `json:"disaster,omitempty"`
}

// DisasterClient defines the disaster endpoints of the REST API.
type DisasterClient interface {
	// List returns every disaster. The stored token is sent when present.
	List(ctx context.Context) ([]domain.DisasterRecord, error)

	// Get returns one disaster. A missing disaster yields an error matching domain.ErrNotFound.
	Get(ctx context.Context, id domain.ID) (domain.DisasterRecord, error)

	// Create reports a new disaster, with an optional image.
	Create(ctx context.Context, input domain.DisasterInput, image *domain.Image) (CreateResponse, error)

	// Update replaces the editable fields of a disaster.
	Update(ctx context.Context, id domain.ID, input domain.DisasterInput) (string, error)

	// Delete removes a disaster.
	Delete(ctx context.Context, id domain.ID) (string, error)
}
