package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	listing "github.com/Abdurahmanit/GroupProject/classifieds-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/classifieds-service/internal/platform/logger"
	user "github.com/Abdurahmanit/GroupProject/classifieds-service/internal/user/domain"
	"go.uber.org/zap"
)

var (
	errBadRequest   = errors.New("malformed request")
	errNotMultipart = errors.New("expected multipart/form-data or application/json")
	errUploadTooBig = errors.New("upload exceeds the size limit")
	errUnauthorized = errors.New("authentication required")
)

type problem struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// statusFor maps an error to its HTTP status and a stable machine-readable code.
// Order matters: a storage failure may also carry ErrUnsupportedFormat.
func statusFor(err error) (int, string) {
	var ve *listing.ValidationError
	switch {
	case errors.As(err, &ve), errors.Is(err, listing.ErrValidation):
		return http.StatusBadRequest, "validation_failed"
	case errors.Is(err, errBadRequest), errors.Is(err, errNotMultipart):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, errUploadTooBig):
		return http.StatusRequestEntityTooLarge, "upload_too_large"
	case errors.Is(err, listing.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType, "unsupported_format"
	case errors.Is(err, errUnauthorized), errors.Is(err, user.ErrInvalidCredentials):
		return http.StatusUnauthorized, "unauthenticated"
	case errors.Is(err, listing.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, listing.ErrListingNotFound), errors.Is(err, user.ErrUserNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, user.ErrUsernameTaken):
		return http.StatusConflict, "username_taken"
	case errors.Is(err, user.ErrPasswordMismatch), errors.Is(err, user.ErrWeakPassword), errors.Is(err, user.ErrMissingField):
		return http.StatusBadRequest, "validation_failed"
	case errors.Is(err, listing.ErrStorage):
		return http.StatusBadGateway, "storage_unavailable"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func writeError(w http.ResponseWriter, log *logger.Logger, err error) {
	status, code := statusFor(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		log.Error("request failed", zap.Int("status", status), zap.Error(err))
		if status == http.StatusInternalServerError {
			msg = "internal server error"
		}
	}
	writeProblem(w, status, code, msg)
}

func writeProblem(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, problem{Error: code, Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}
