package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/dmitrijs2005/imagevault/internal/common"
	"github.com/go-chi/chi/v5/middleware"
)

const maxJSONBody = 16 << 10

// envelope is the uniform response body.
type envelope struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeOK(w http.ResponseWriter, status int, data any, msg string) {
	writeJSON(w, status, envelope{StatusCode: status, Data: data, Message: msg, Success: true})
}

func writeFail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, envelope{StatusCode: status, Data: nil, Message: msg, Success: false})
}

// writeError maps a service error to a status code and writes the error envelope.
func (s *HTTPServer) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(r.Context(), "request failed", "error", err.Error(), "path", r.URL.Path, "request_id", middleware.GetReqID(r.Context()))
	}
	writeFail(w, status, msg)
}

func statusFor(err error) (int, string) {
	var ve *common.ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, ve.Message
	case errors.Is(err, common.ErrorInvalidInput):
		return http.StatusBadRequest, "invalid input"
	case errors.Is(err, common.ErrorAlreadyExists):
		return http.StatusBadRequest, "already exists"
	case errors.Is(err, common.ErrorNotEmpty):
		return http.StatusBadRequest, "folder is not empty"
	case errors.Is(err, common.ErrorUnauthorized):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, common.ErrorUnauthenticated):
		return http.StatusUnauthorized, "unauthenticated"
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, common.ErrorUploadFailed):
		return http.StatusInternalServerError, "upload failed"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

// decodeJSON reads a size-limited JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return common.NewValidationError("request body is empty")
		}
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return common.NewValidationError(fmt.Sprintf("request body exceeds %d bytes", mbe.Limit))
		}
		return common.NewValidationError("malformed json")
	}
	return nil
}
