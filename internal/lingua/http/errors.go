package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/lingua/internal/lingua/service"
	"github.com/aussiebroadwan/lingua/pkg/httpx"
	"github.com/aussiebroadwan/lingua/pkg/linguasdk"
	"github.com/aussiebroadwan/lingua/pkg/slogx"
)

// writeError maps a service error onto its API error. Unknown errors are
// logged and reported as server errors.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := apiError(err)
	if apiErr == linguasdk.ErrServerError {
		slogx.FromContext(r.Context()).Error("request failed", "error", err)
	}
	apiErr.WriteError(w)
}

func apiError(err error) *linguasdk.APIError {
	switch {
	case errors.Is(err, httpx.ErrBadBody):
		return linguasdk.ErrInvalidRequest.WithDescription("invalid JSON body")
	case errors.Is(err, service.ErrInvalidInput):
		return linguasdk.ErrInvalidRequest.WithDescription(detail(err, service.ErrInvalidInput))
	case errors.Is(err, service.ErrInvalidCredentials):
		return linguasdk.ErrInvalidCredentials
	case errors.Is(err, service.ErrNotFound):
		return linguasdk.ErrNotFound
	case errors.Is(err, service.ErrConflict):
		return linguasdk.ErrConflict.WithDescription(detail(err, service.ErrConflict))
	case errors.Is(err, service.ErrForbidden):
		return linguasdk.ErrAccessDenied.WithDescription(detail(err, service.ErrForbidden))
	case errors.Is(err, service.ErrAuthNotReady):
		return linguasdk.ErrUnavailable
	case errors.Is(err, service.ErrMFARequired):
		return linguasdk.ErrMFARequired
	case errors.Is(err, service.ErrInvalidTOTPCode):
		return linguasdk.ErrInvalidCode
	case errors.Is(err, service.ErrMFAAlreadyEnabled):
		return linguasdk.ErrMFAAlreadyEnabled
	case errors.Is(err, service.ErrMFANotEnrolled):
		return linguasdk.ErrMFANotEnrolled
	case errors.Is(err, service.ErrMFANotEnabled):
		return linguasdk.ErrMFANotEnabled
	case errors.Is(err, service.ErrBootstrapAlready):
		return linguasdk.ErrAlreadyBootstrapped
	case errors.Is(err, service.ErrBootstrapUnauthorized):
		return linguasdk.ErrAccessDenied.WithDescription("invalid bootstrap token")
	}
	return linguasdk.ErrServerError
}

// detail strips the sentinel prefix from a wrapped error, leaving the part
// that is safe to show the client.
func detail(err, sentinel error) string {
	msg := err.Error()
	if rest, ok := strings.CutPrefix(msg, sentinel.Error()+": "); ok {
		return rest
	}
	if msg == sentinel.Error() {
		return strings.ReplaceAll(msg, "_", " ")
	}
	return msg
}
