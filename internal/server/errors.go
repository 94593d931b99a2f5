package server

import (
	"context"
	"errors"
	"net/http"

	"rift-rewind/internal/service"
	"rift-rewind/internal/state"

	"connectrpc.com/connect"
)

func toConnectError(err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, service.ErrUpstream):
		// upstream details stay in the logs
		return connect.NewError(connect.CodeUnavailable, service.ErrUpstream)
	case errors.Is(err, service.ErrUnknownSession):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, service.ErrNoProfile), errors.Is(err, service.ErrNoDuo):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.Is(err, state.ErrStale):
		return connect.NewError(connect.CodeAborted, err)
	case errors.Is(err, state.ErrBusy):
		return connect.NewError(connect.CodeResourceExhausted, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}

func httpStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrUnknownSession):
		return http.StatusNotFound
	case errors.Is(err, service.ErrNoProfile):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
