package handler

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"moments_api/internal/httputil"
	"moments_api/internal/model"
)

// Options carries the settings shared by every handler.
type Options struct {
	// PageSize is the number of results per list page.
	PageSize int

	// UnauthenticatedStatus is written when an anonymous viewer attempts a
	// write: 401 or 403.
	UnauthenticatedStatus int
}

// base holds request parsing and error mapping shared by the handlers.
type base struct {
	opts Options
}

// maxFormBytes bounds multipart bodies: one image plus the text fields.
const maxFormBytes = model.MaxPostImageSizeBytes + 1<<20

var (
	errInvalidBody = errors.New("invalid request body")
	errInvalidID   = errors.New("invalid id")
)

// writeError maps a service error onto an HTTP response.
func (b base) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *model.ValidationError
	switch {
	case errors.As(err, &validationErr):
		httputil.WriteValidationError(w, validationErr.Field, validationErr.Message)
	case errors.Is(err, errInvalidBody):
		httputil.WriteBadRequest(w, "Invalid request body")
	case errors.Is(err, model.ErrNotAuthenticated):
		httputil.WriteNotAuthenticated(w, b.unauthenticatedStatus(), "Authentication credentials were not provided.")
	case errors.Is(err, model.ErrForbidden):
		httputil.WriteForbidden(w, "You do not have permission to perform this action.")
	case errors.Is(err, model.ErrInvalidPage):
		httputil.WriteNotFound(w, "Invalid page.")
	case errors.Is(err, errInvalidID),
		errors.Is(err, model.ErrPostNotFound),
		errors.Is(err, model.ErrCommentNotFound),
		errors.Is(err, model.ErrLikeNotFound),
		errors.Is(err, model.ErrFollowerNotFound),
		errors.Is(err, model.ErrProfileNotFound),
		errors.Is(err, model.ErrUserNotFound):
		httputil.WriteNotFound(w, "Not found.")
	case errors.Is(err, model.ErrUsernameExists):
		httputil.WriteConflict(w, "A user with that username already exists.")
	default:
		logrus.WithError(err).WithFields(logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"request_id": chimw.GetReqID(r.Context()),
		}).Error("Request failed")
		httputil.WriteInternalError(w, "Internal server error")
	}
}

func (b base) unauthenticatedStatus() int {
	if b.opts.UnauthenticatedStatus == http.StatusUnauthorized {
		return http.StatusUnauthorized
	}
	return http.StatusForbidden
}

// idParam reads the {id} URL parameter.
func idParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidID
	}
	return id, nil
}

// listOptions parses page, ordering and search. A page that is not a
// positive number is reported the same way as a page past the end.
func (b base) listOptions(r *http.Request) (model.ListOptions, error) {
	q := r.URL.Query()
	opts := model.ListOptions{
		Page:     1,
		PageSize: b.opts.PageSize,
		Search:   strings.TrimSpace(q.Get("search")),
	}

	if raw := q.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return opts, model.ErrInvalidPage
		}
		opts.Page = page
	}
	if err := opts.Validate(); err != nil {
		return opts, err
	}

	for _, field := range strings.Split(q.Get("ordering"), ",") {
		field = strings.TrimSpace(field)
		desc := strings.HasPrefix(field, "-")
		field = strings.TrimPrefix(field, "-")
		if field == "" {
			continue
		}
		opts.Ordering = append(opts.Ordering, model.Ordering{Field: field, Desc: desc})
	}

	return opts, nil
}

// queryID reads an optional id filter from the query string.
func queryID(r *http.Request, name string) (*int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, model.NewValidationError(name, "Select a valid choice. That choice is not one of the available choices.")
	}
	return &id, nil
}

// writePage writes the paginated list envelope.
func writePage[T any](w http.ResponseWriter, r *http.Request, opts model.ListOptions, results []T, total int) {
	if results == nil {
		results = []T{}
	}
	next, previous := httputil.PageLinks(r, opts.Page, opts.HasNext(total))
	httputil.WriteJSON(w, http.StatusOK, model.Page[T]{
		Count:    total,
		Next:     next,
		Previous: previous,
		Results:  results,
	})
}

func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errInvalidBody
	}
	return nil
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}

// parseMultipart reads a multipart body, rejecting bodies too large to hold
// an acceptable image.
func parseMultipart(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseMultipartForm(maxFormBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return model.NewValidationError("image", "Image size larger than 2MB")
		}
		return errInvalidBody
	}
	return nil
}

// formString returns a multipart text field, or nil when it was not sent.
func formString(r *http.Request, key string) *string {
	if r.MultipartForm == nil {
		return nil
	}
	values, ok := r.MultipartForm.Value[key]
	if !ok || len(values) == 0 {
		return nil
	}
	return &values[0]
}

// formImage returns the uploaded "image" file, or nil when none was sent.
func formImage(r *http.Request) (*model.ImageUpload, error) {
	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, errInvalidBody
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, errInvalidBody
	}
	if len(data) == 0 {
		return nil, model.NewValidationError("image", "The submitted file is empty.")
	}

	return &model.ImageUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        int64(len(data)),
		Data:        data,
	}, nil
}
