package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/hisab/internal/auth"
	"github.com/mmynk/hisab/internal/storage"
)

var (
	errNotMember   = errors.New("not a member of this group")
	errNotManager  = errors.New("only the group manager can do this")
	errMissingID   = errors.New("group_id is required")
	errPayeeAbsent = errors.New("user is not a member of this group")
)

// toConnectError maps sentinel errors to Connect codes. Errors that already
// carry a code pass through unchanged.
func toConnectError(err error) error {
	var connectErr *connect.Error
	switch {
	case errors.As(err, &connectErr):
		return err
	case errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, storage.ErrAlreadyExists):
		return connect.NewError(connect.CodeAlreadyExists, err)
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrMissingToken):
		return connect.NewError(connect.CodeUnauthenticated, err)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}

func invalidArgument(format string, args ...any) error {
	return connect.NewError(connect.CodeInvalidArgument, fmt.Errorf(format, args...))
}

// fail logs err against op and returns it as a Connect error.
func fail(op string, err error, attrs ...any) error {
	err = toConnectError(err)
	if connect.CodeOf(err) == connect.CodeInternal {
		slog.Error(op+" failed", append(attrs, "error", err)...)
	}
	return err
}
