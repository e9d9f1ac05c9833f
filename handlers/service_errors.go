package handlers

import (
	"net/http"

	"github.com/upb/campaign-hub/middleware"
	"github.com/upb/campaign-hub/services"
	"github.com/upb/campaign-hub/utils"
	"go.uber.org/zap"
)

// HandleServiceError maps domain errors to HTTP responses. Internal causes
// are logged and never written to the client.
func HandleServiceError(w http.ResponseWriter, r *http.Request, err error, logger *zap.Logger) {
	if err == nil {
		return
	}

	message := services.GetErrorMessage(err)
	details := services.GetErrorDetails(err)
	requestID := middleware.GetRequestIDFromContext(r.Context())

	var status int
	switch {
	case services.IsNotFoundError(err):
		status = http.StatusNotFound
	case services.IsValidationError(err):
		status = http.StatusBadRequest
	case services.IsUnauthenticatedError(err):
		status = http.StatusUnauthorized
	case services.IsForbiddenError(err):
		status = http.StatusForbidden
	case services.IsInvalidStateTransitionError(err):
		if writeErr := utils.WriteInvalidStateTransition(w, message, details); writeErr != nil {
			logger.Error("failed to write state transition response", zap.Error(writeErr))
		}
		return
	case services.IsConflictError(err):
		status = http.StatusConflict
	case services.IsRateLimitError(err):
		status = http.StatusTooManyRequests
	case services.IsPayloadTooLargeError(err):
		status = http.StatusRequestEntityTooLarge
	case services.IsExternalError(err):
		logger.Warn("external dependency failed",
			zap.String("request_id", requestID),
			zap.Error(err))
		status = http.StatusBadGateway
		details = nil
	case services.IsResolutionFailure(err), services.IsInternalError(err):
		logger.Error("internal server error",
			zap.String("request_id", requestID),
			zap.String("error_type", string(services.GetErrorType(err))),
			zap.Error(err))
		_ = utils.WriteInternalServerError(w, "An internal error occurred")
		return
	default:
		logger.Error("unhandled error type",
			zap.String("request_id", requestID),
			zap.Error(err))
		_ = utils.WriteInternalServerError(w, "An unexpected error occurred")
		return
	}

	if writeErr := utils.WriteError(w, status, message, details); writeErr != nil {
		logger.Error("failed to write error response", zap.Error(writeErr))
	}
}

// HandleValidationError handles validation errors from request parsing
func HandleValidationError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if utils.IsValidationError(err) {
		fields := utils.GetValidationFields(err)
		details := make(map[string]interface{}, len(fields))
		for k, v := range fields {
			details[k] = v
		}
		if err := utils.WriteBadRequest(w, "Validation failed", details); err != nil {
			logger.Error("failed to write validation error response", zap.Error(err))
		}
		return
	}

	if err := utils.WriteBadRequest(w, err.Error(), nil); err != nil {
		logger.Error("failed to write validation error response", zap.Error(err))
	}
}
