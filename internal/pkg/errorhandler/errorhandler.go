package errorhandler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/cloudban/cloudban-api/internal/pkg/logger"
	"github.com/cloudban/cloudban-api/internal/pkg/response"
)

// HandleError logs an unexpected error with the request-scoped logger and
// answers with a generic INTERNAL_ERROR so internals never reach the client.
func HandleError(ctx context.Context, w http.ResponseWriter, operation string, err error) {
	logger.FromContext(ctx).Error().
		Err(err).
		Str("operation", operation).
		Msg("Request error")

	response.InternalError(w)
}

// LogValidationError logs validation errors with details
func LogValidationError(ctx context.Context, fieldErrors map[string]string) {
	errJSON, _ := json.Marshal(fieldErrors)
	logger.FromContext(ctx).Debug().
		RawJSON("validation_errors", errJSON).
		Msg("Validation error")
}

// ValidationFailed logs and writes a 422 VALIDATION_ERROR response.
func ValidationFailed(ctx context.Context, w http.ResponseWriter, fieldErrors map[string]string) {
	LogValidationError(ctx, fieldErrors)
	response.ValidationError(w, fieldErrors)
}
