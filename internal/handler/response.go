package handler

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/Abdurahmanit/GroupProject/village-market/internal/domain"
	"github.com/Abdurahmanit/GroupProject/village-market/internal/platform/logger"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const maxJSONBody = 1 << 20

// ErrorResponse is the JSON body of every failed request. Error carries the
// raw cause outside production only.
type ErrorResponse struct {
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
	Error   string            `json:"error,omitempty"`
}

// Responder writes JSON responses and translates domain errors to statuses.
type Responder struct {
	logger      *logger.Logger
	exposeCause bool
}

func NewResponder(log *logger.Logger, production bool) *Responder {
	return &Responder{logger: log.Named("HTTPResponder"), exposeCause: !production}
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

// StatusFor maps an error to its HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrUploadRejected),
		errors.Is(err, domain.ErrDuplicateEmail):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrPendingApproval),
		errors.Is(err, domain.ErrInvalidToken),
		errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict),
		errors.Is(err, domain.ErrEventUnavailable),
		errors.Is(err, domain.ErrCapacityExceeded):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func messageFor(status int, err error) string {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return "Validation failed"
	case errors.Is(err, domain.ErrUploadRejected):
		return strings.TrimPrefix(err.Error(), domain.ErrUploadRejected.Error()+": ")
	case status == http.StatusInternalServerError:
		return "Internal server error"
	}
	for _, sentinel := range []error{
		domain.ErrDuplicateEmail, domain.ErrInvalidCredentials, domain.ErrPendingApproval,
		domain.ErrInvalidToken, domain.ErrUnauthorized, domain.ErrForbidden, domain.ErrNotFound,
		domain.ErrConflict, domain.ErrEventUnavailable, domain.ErrCapacityExceeded,
	} {
		if errors.Is(err, sentinel) {
			return capitalize(sentinel.Error())
		}
	}
	return http.StatusText(status)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Error writes err with the status StatusFor assigns to it.
func (rs *Responder) Error(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	body := ErrorResponse{Message: messageFor(status, err)}

	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		body.Fields = verr.Fields
	}
	if rs.exposeCause {
		body.Error = err.Error()
	}

	fields := []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.Error(err),
	}
	if status >= http.StatusInternalServerError {
		rs.logger.Error("Request failed", fields...)
	} else {
		rs.logger.Debug("Request rejected", fields...)
	}
	respondWithJSON(w, status, body)
}

func (rs *Responder) JSON(w http.ResponseWriter, code int, payload interface{}) {
	respondWithJSON(w, code, payload)
}

func parseIntQueryParam(r *http.Request, key string, defaultValue int) int {
	valStr := r.URL.Query().Get(key)
	if valStr == "" {
		return defaultValue
	}
	valInt, err := strconv.Atoi(valStr)
	if err != nil {
		return defaultValue
	}
	return valInt
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && strings.HasPrefix(mediaType, "multipart/")
}

// decodeJSONMap reads a JSON object body. An empty body yields an empty map.
func decodeJSONMap(w http.ResponseWriter, r *http.Request) (map[string]any, error) {
	fields := map[string]any{}
	if r.Body == nil || r.ContentLength == 0 {
		return fields, nil
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := dec.Decode(&fields); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]any{}, nil
		}
		return nil, domain.NewValidationError("body", "request body must be a JSON object")
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

// decodeJSON reads a JSON body into dst through the same coercion used for forms.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	fields, err := decodeJSONMap(w, r)
	if err != nil {
		return err
	}
	return domain.DecodeFields(fields, dst)
}

// formFields turns multipart values into a nested field map. Keys of the form
// "location[city]" or "location.city" become nested objects and repeated
// keys become lists.
func formFields(values map[string][]string) map[string]any {
	out := map[string]any{}
	for key, vals := range values {
		if len(vals) == 0 {
			continue
		}
		var v any = vals[0]
		if len(vals) > 1 {
			list := make([]any, len(vals))
			for i, s := range vals {
				list[i] = s
			}
			v = list
		}
		setPath(out, splitKey(key), v)
	}
	return out
}

func splitKey(key string) []string {
	key = strings.TrimSuffix(key, "[]")
	key = strings.ReplaceAll(key, "]", "")
	key = strings.ReplaceAll(key, "[", ".")
	parts := strings.Split(key, ".")
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func setPath(dst map[string]any, path []string, v any) {
	if len(path) == 0 {
		return
	}
	if len(path) == 1 {
		dst[path[0]] = v
		return
	}
	child, ok := dst[path[0]].(map[string]any)
	if !ok {
		child = map[string]any{}
		dst[path[0]] = child
	}
	setPath(child, path[1:], v)
}
