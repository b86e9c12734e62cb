package disasterclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"sort"
	"strconv"

	"github.com/mkrupp/disastermap/internal/domain"
	http_ "github.com/mkrupp/disastermap/internal/infra/transport/http"
)

const disastersPath = "/api/disasters"

// HTTPClient implements DisasterClient on top of the shared API client.
type HTTPClient struct {
	api *http_.APIClient
}

var _ DisasterClient = (*HTTPClient)(nil)

// NewHTTPClient creates a new HTTPClient sending its requests through api.
func NewHTTPClient(api *http_.APIClient) *HTTPClient {
	return &HTTPClient{api: api}
}

// List implements DisasterClient.List. Both a bare array and a
// {"disasters": [...]} envelope are accepted.
func (c *HTTPClient) List(ctx context.Context) ([]domain.DisasterRecord, error) {
	var raw json.RawMessage

	if err := c.api.Do(ctx, http_.Request{
		Method:   http.MethodGet,
		Path:     disastersPath,
		Endpoint: "disasters.list",
		Auth:     http_.AuthStored,
	}, &raw); err != nil {
		return nil, err //nolint:wrapcheck
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []domain.DisasterRecord{}, nil
	}

	var records []domain.DisasterRecord

	if raw[0] == '{' {
		var envelope struct {
			Disasters []domain.DisasterRecord `json:"disasters"`
		}

		if err := json.Unmarshal(raw, &envelope); err != nil {
			return nil, errors.Join(domain.ErrServerFailure, fmt.Errorf("decode list: %w", err))
		}

		records = envelope.Disasters
	} else if err := json.Unmarshal(raw, &records); err != nil {
		return nil, errors.Join(domain.ErrServerFailure, fmt.Errorf("decode list: %w", err))
	}

	if records == nil {
		records = []domain.DisasterRecord{}
	}

	return records, nil
}

// Get implements DisasterClient.Get.
func (c *HTTPClient) Get(ctx context.Context, id domain.ID) (domain.DisasterRecord, error) {
	var record domain.DisasterRecord

	err := c.api.Do(ctx, http_.Request{
		Method:   http.MethodGet,
		Path:     recordPath(id),
		Endpoint: "disasters.get",
		Auth:     http_.AuthStored,
	}, &record)

	return record, err //nolint:wrapcheck
}

// Create implements DisasterClient.Create. Without an image the input is
// sent as JSON, with one as multipart/form-data carrying an "image" part.
func (c *HTTPClient) Create(ctx context.Context, input domain.DisasterInput, image *domain.Image) (CreateResponse, error) {
	req := http_.Request{
		Method:   http.MethodPost,
		Path:     disastersPath,
		Endpoint: "disasters.create",
		Auth:     http_.AuthRequired,
	}

	if image == nil {
		req.JSON = input
	} else {
		body, contentType, err := multipartBody(input, image)
		if err != nil {
			return CreateResponse{}, fmt.Errorf("build multipart body: %w", err)
		}

		req.Body, req.ContentType = body, contentType
	}

	var resp CreateResponse

	err := c.api.Do(ctx, req, &resp)

	return resp, err //nolint:wrapcheck
}

// Update implements DisasterClient.Update.
func (c *HTTPClient) Update(ctx context.Context, id domain.ID, input domain.DisasterInput) (string, error) {
	return c.message(ctx, http_.Request{
		Method:   http.MethodPut,
		Path:     recordPath(id),
		Endpoint: "disasters.update",
		JSON:     input,
		Auth:     http_.AuthRequired,
	})
}

// Delete implements DisasterClient.Delete.
func (c *HTTPClient) Delete(ctx context.Context, id domain.ID) (string, error) {
	return c.message(ctx, http_.Request{
		Method:   http.MethodDelete,
		Path:     recordPath(id),
		Endpoint: "disasters.delete",
		Auth:     http_.AuthRequired,
	})
}

func (c *HTTPClient) message(ctx context.Context, req http_.Request) (string, error) {
	var resp domain.MessageResponse

	if err := c.api.Do(ctx, req, &resp); err != nil {
		return "", err //nolint:wrapcheck
	}

	return resp.Message, nil
}

func recordPath(id domain.ID) string {
	return disastersPath + "/" + http_.PathEscape(id.String())
}

// multipartBody writes the set fields of input as form fields, followed by
// the image part.
func multipartBody(input domain.DisasterInput, image *domain.Image) (*bytes.Buffer, string, error) {
	fields, err := formFields(input)
	if err != nil {
		return nil, "", err
	}

	var (
		body   bytes.Buffer
		writer = multipart.NewWriter(&body)
	)

	for _, field := range fields {
		if err := writer.WriteField(field[0], field[1]); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", field[0], err)
		}
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, image.Name))
	header.Set("Content-Type", image.ContentType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("create image part: %w", err)
	}

	if _, err := part.Write(image.Data); err != nil {
		return nil, "", fmt.Errorf("write image part: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("close writer: %w", err)
	}

	return &body, writer.FormDataContentType(), nil
}

// formFields flattens input into sorted name/value pairs using its JSON names.
func formFields(input domain.DisasterInput) ([][2]string, error) {
	data, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("marshal input: %w", err)
	}

	var values map[string]any
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("unmarshal input: %w", err)
	}

	fields := make([][2]string, 0, len(values))

	for name, value := range values {
		var s string

		switch v := value.(type) {
		case string:
			s = v
		case float64:
			s = strconv.FormatFloat(v, 'f', -1, 64)
		default:
			s = fmt.Sprint(v)
		}

		fields = append(fields, [2]string{name, s})
	}

	sort.Slice(fields, func(i, j int) bool { return fields[i][0] < fields[j][0] })

	return fields, nil
}
