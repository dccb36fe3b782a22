package apperrors

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Sentinel errors for the failure classes the API distinguishes. Wrap them
// with fmt.Errorf("...: %w", ...) so callers can classify via errors.Is.
var (
	// ErrValidation marks missing or malformed required fields.
	ErrValidation = errors.New("validation error")
	// ErrNotFound marks an unknown correlation handle or store id.
	ErrNotFound = errors.New("not found")
	// ErrConfiguration marks missing key material for an optional feature.
	// It surfaces only when the dependent feature is actually invoked.
	ErrConfiguration = errors.New("configuration error")
	// ErrIntegrity marks a cipher authentication failure. It must never be
	// masked as a different error class.
	ErrIntegrity = errors.New("integrity error")
)

// UpstreamError carries the status code of a non-2xx response from an
// external service (the third-party store API or the record store).
type UpstreamError struct {
	StatusCode int
	Service    string
	Body       string
}

func (e *UpstreamError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s request failed: status=%d body=%s", e.Service, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s request failed: status=%d", e.Service, e.StatusCode)
}

// Validationf returns a ValidationError with a formatted message.
func Validationf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrValidation)...)
}

// NotFoundf returns a NotFoundError with a formatted message.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
}

// HTTPStatus maps an error to the status code the API responds with.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return fiber.StatusOK
	case errors.Is(err, ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrConfiguration), errors.Is(err, ErrIntegrity):
		return fiber.StatusInternalServerError
	default:
		var ue *UpstreamError
		if errors.As(err, &ue) {
			return fiber.StatusBadGateway
		}
		return fiber.StatusInternalServerError
	}
}
