package shellsvc

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/mkrupp/disastermap/internal/domain"
	context_ "github.com/mkrupp/disastermap/internal/infra/context"
	"github.com/mkrupp/disastermap/internal/infra/logging"
	http_ "github.com/mkrupp/disastermap/internal/infra/transport/http"
	"github.com/mkrupp/disastermap/internal/svc/disastersvc"
)

const (
	maxFormBytes    = 1 << 20
	msgInvalidInput = "Invalid request body"
)

// HandleCreate reports a disaster from a JSON, form or multipart body. A
// multipart body may carry the image in its "image" part.
func (ht *HTTPTransport) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := ht.actionLog(r)

	input, upload, err := ht.readDisaster(r)
	if err != nil {
		log.WarnContext(ctx, "create input rejected", "error", err)
		http_.WriteResult(w, domain.Failed(err, msgInvalidInput))

		return
	}

	res := ht.disasters.Create(ctx, input, upload)
	log.DebugContext(ctx, "create handled", "success", res.Success)

	status := http_.StatusForResult(res.Result)
	if res.Success && res.Disaster != nil {
		w.Header().Set("Location", "/disasters/"+url.PathEscape(res.Disaster.ID.String()))
		status = http.StatusCreated
	}

	http_.WriteJSON(w, status, res)
}

// HandleUpdate saves the disaster {id}.
func (ht *HTTPTransport) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := domain.ID(mux.Vars(r)["id"])
	log := ht.actionLog(r).With(logging.Group("disaster", "id", id))

	input, _, err := ht.readDisaster(r)
	if err != nil {
		log.WarnContext(ctx, "update input rejected", "error", err)
		http_.WriteResult(w, domain.Failed(err, msgInvalidInput))

		return
	}

	http_.WriteResult(w, ht.disasters.Update(ctx, id, input))
}

// HandleDelete removes the disaster {id}.
func (ht *HTTPTransport) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := domain.ID(mux.Vars(r)["id"])

	res := ht.disasters.Delete(r.Context(), id)
	ht.actionLog(r).DebugContext(r.Context(), "delete handled", "id", id, "success", res.Success)
	http_.WriteResult(w, res)
}

// actionLog returns a logger naming the request and the user the guard
// admitted it for.
func (ht *HTTPTransport) actionLog(r *http.Request) logging.Logger {
	log := ht.log.With(logging.Group("http", "method", r.Method, "uri", r.RequestURI))

	if session, ok := context_.SessionFromContext(r.Context()); ok && session.User != nil {
		log = log.With(logging.Group("user", "id", session.User.ID, "role", session.User.Role))
	}

	return log
}

// readDisaster decodes the disaster input of a request. Only multipart
// bodies carry an upload.
func (ht *HTTPTransport) readDisaster(r *http.Request) (domain.DisasterInput, *disastersvc.Upload, error) {
	var input domain.DisasterInput

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch mediaType {
	case "application/json":
		if err := http_.ReadInput(r, &input); err != nil {
			return input, nil, err
		}

		return input, nil, nil
	case "multipart/form-data":
		limit := int64(maxFormBytes)
		if ht.disasters.Images != nil {
			limit += ht.disasters.Images.MaxSize()
		}

		r.Body = http.MaxBytesReader(nil, r.Body, limit)

		if err := r.ParseMultipartForm(maxFormBytes); err != nil {
			return input, nil, errors.Join(domain.ErrInvalidInput, fmt.Errorf("parse multipart: %w", err))
		}

		input, err := inputFromForm(r.MultipartForm.Value)
		if err != nil {
			return input, nil, err
		}

		upload, err := readUpload(r)

		return input, upload, err
	default:
		r.Body = http.MaxBytesReader(nil, r.Body, maxFormBytes)

		if err := r.ParseForm(); err != nil {
			return input, nil, errors.Join(domain.ErrInvalidInput, fmt.Errorf("parse form: %w", err))
		}

		input, err := inputFromForm(r.PostForm)

		return input, nil, err
	}
}

func readUpload(r *http.Request) (*disastersvc.Upload, error) {
	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil //nolint:nilnil
	}

	if err != nil {
		return nil, errors.Join(domain.ErrInvalidInput, fmt.Errorf("form file: %w", err))
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, errors.Join(domain.ErrInvalidInput, fmt.Errorf("read image: %w", err))
	}

	return &disastersvc.Upload{Name: header.Filename, Data: data}, nil
}

// inputFromForm converts form fields into a disaster input. Numeric fields
// left empty stay unset.
func inputFromForm(values map[string][]string) (domain.DisasterInput, error) {
	fields := make(map[string]any, len(values))

	for key, vals := range values {
		if len(vals) == 0 {
			continue
		}

		value := strings.TrimSpace(vals[0])

		switch key {
		case "latitude", "longitude", "damage_estimate":
			if value == "" {
				continue
			}

			f, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return domain.DisasterInput{}, domain.NewInputError(key, "must be a number") //nolint:exhaustruct
			}

			fields[key] = f
		case "casualties":
			if value == "" {
				continue
			}

			n, err := strconv.Atoi(value)
			if err != nil {
				return domain.DisasterInput{}, domain.NewInputError(key, "must be a whole number") //nolint:exhaustruct
			}

			fields[key] = n
		default:
			fields[key] = value
		}
	}

	var input domain.DisasterInput

	data, err := json.Marshal(fields)
	if err != nil {
		return input, fmt.Errorf("marshal form: %w", err)
	}

	if err := json.Unmarshal(data, &input); err != nil {
		return input, errors.Join(domain.ErrInvalidInput, fmt.Errorf("decode form: %w", err))
	}

	return input, nil
}
