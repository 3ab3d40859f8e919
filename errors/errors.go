package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

var (
	ErrScenarioNotFound = fmt.Errorf("unknown scenario")
	ErrUnknownRoom      = fmt.Errorf("unknown room")
	ErrSlowSubscriber   = fmt.Errorf("subscriber buffer full")
	ErrWorkerPanic      = fmt.Errorf("worker panic")
	ErrEmptyWords       = fmt.Errorf("no words have been found")
)

// MapToHTTPStatus translates a domain error into the HTTP status the REST
// surface should answer with. Anything unrecognized is a server fault.
func MapToHTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case stderrors.Is(err, ErrScenarioNotFound), stderrors.Is(err, ErrUnknownRoom):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
