package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/resume-studio/internal/auth"
	"github.com/jonathan/resume-studio/internal/document"
	"github.com/jonathan/resume-studio/internal/enhance"
	"github.com/jonathan/resume-studio/internal/export"
	"github.com/jonathan/resume-studio/internal/ordering"
	"github.com/jonathan/resume-studio/internal/session"
	"github.com/jonathan/resume-studio/internal/storage"
	"github.com/jonathan/resume-studio/internal/subscription"
	"github.com/jonathan/resume-studio/internal/templates"
)

// ErrValidation indicates a malformed request
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validation  *ErrValidation
		fieldErr    *document.ValidationError
		notFound    *document.SectionNotFoundError
		outOfRange  *ordering.OutOfRangeError
		unknown     *templates.UnknownTemplateError
		quota       *subscription.QuotaExceededError
		timeout     *export.TimeoutError
		badFormat   *export.UnsupportedFormatError
		badStrategy *export.UnsupportedStrategyError
		enhanceErr  *enhance.Error
		storageErr  *storage.Error
	)

	switch {
	case errors.As(err, &validation), errors.As(err, &fieldErr),
		errors.As(err, &badFormat), errors.As(err, &badStrategy):
		return http.StatusBadRequest
	case errors.As(err, &outOfRange):
		return http.StatusUnprocessableEntity
	case errors.Is(err, auth.ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.As(err, &quota):
		return http.StatusPaymentRequired
	case errors.Is(err, session.ErrSessionNotFound), errors.As(err, &notFound), errors.As(err, &unknown):
		return http.StatusNotFound
	case errors.Is(err, export.ErrExportInProgress):
		return http.StatusConflict
	case errors.As(err, &timeout):
		return http.StatusGatewayTimeout
	case errors.As(err, &enhanceErr):
		return http.StatusBadGateway
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &storageErr), errors.Is(err, session.ErrNoExporter):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
