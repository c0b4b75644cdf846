package errcode

import (
	"net/http"

	appErr "github.com/xxxsen/dermaai/internal/pkg/errors"
)

var statusByKind = map[appErr.Kind]int{
	appErr.KindValidation:     http.StatusBadRequest,
	appErr.KindConflict:       http.StatusConflict,
	appErr.KindNotFound:       http.StatusNotFound,
	appErr.KindUnauthorized:   http.StatusUnauthorized,
	appErr.KindAlreadyInState: http.StatusBadRequest,
	appErr.KindTooMany:        http.StatusTooManyRequests,
	appErr.KindTransient:      http.StatusServiceUnavailable,
	appErr.KindUpstream:       http.StatusBadGateway,
	appErr.KindInternal:       http.StatusInternalServerError,
}

// HTTPStatus maps an error kind to the status code returned at the HTTP boundary.
func HTTPStatus(kind appErr.Kind) int {
	if status, ok := statusByKind[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}
