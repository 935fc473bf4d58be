package handlers

import (
	"net/http"

	"github.com/transpoze/drivegate/internal/logger"
	gwerrors "github.com/transpoze/drivegate/pkg/errors"
)

// StatusFor maps a gateway error code to an HTTP status.
func StatusFor(code gwerrors.ErrorCode) int {
	switch code {
	case gwerrors.ErrInvalidArguments:
		return http.StatusBadRequest
	case gwerrors.ErrNotFound:
		return http.StatusNotFound
	case gwerrors.ErrRemoteUnavailable, gwerrors.ErrCreateFailed, gwerrors.ErrUploadFailed:
		return http.StatusBadGateway
	case gwerrors.ErrConversionFailed:
		return http.StatusUnprocessableEntity
	case gwerrors.ErrPayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err as a problem response. Errors without a gateway
// code are logged and reported as a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := gwerrors.CodeOf(err)
	status := StatusFor(code)

	if code == 0 {
		logger.ErrorCtx(r.Context(), "Unhandled error", logger.KeyError, err)
		InternalServerError(w, "internal error")
		return
	}

	if status >= http.StatusInternalServerError {
		logger.WarnCtx(r.Context(), "Request failed", logger.KeyStatus, status, logger.KeyError, err)
	} else {
		logger.DebugCtx(r.Context(), "Request rejected", logger.KeyStatus, status, logger.KeyError, err)
	}

	writeProblem(w, &Problem{
		Type:     "about:blank",
		Title:    http.StatusText(status),
		Status:   status,
		Detail:   err.Error(),
		Instance: r.URL.Path,
		Code:     code.String(),
	})
}
