// Package recovery turns engine error reports and panics raised while serving
// a request into gRPC status errors.
package recovery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/hugr-lab/pgext-go/catalog"
	"github.com/hugr-lab/pgext-go/pgsys"
)

// Code returns the gRPC code an error is reported with.
//
// Data exceptions (SQLSTATE class 22) and invalid parameters are the
// caller's fault and map to InvalidArgument; a cancelled statement maps to
// Canceled; every other report is Internal.
func Code(err error) codes.Code {
	if err == nil {
		return codes.OK
	}
	if s, ok := status.FromError(err); ok {
		return s.Code()
	}
	var rep *pgsys.ErrorReport
	switch {
	case errors.As(err, &rep):
		switch {
		case rep.Code.Class() == "22":
			return codes.InvalidArgument
		case rep.Code == pgsys.ErrcodeQueryCanceled:
			return codes.Canceled
		}
		return codes.Internal
	case errors.Is(err, catalog.ErrInvalidParameters):
		return codes.InvalidArgument
	case errors.Is(err, context.Canceled):
		return codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		return codes.DeadlineExceeded
	}
	return codes.Internal
}

// Status converts err to a gRPC status error. Status errors pass through.
func Status(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	return status.Error(Code(err), err.Error())
}

// RecoverToError wraps a function call with panic recovery.
// An engine report that escapes fn keeps its classification; any other
// panic becomes an Internal status.
//
// Example:
//
//	err := recovery.RecoverToError(logger, "Invoke", func() error {
//	    rdr, err = fn.Invoke(ctx, params, batchSize)
//	    return err
//	})
func RecoverToError(logger *slog.Logger, operation string, fn func() error) (err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if rep, ok := r.(*pgsys.ErrorReport); ok {
			logger.Error("Engine error escaped",
				"operation", operation,
				"sqlstate", string(rep.Code),
				"error", rep.Message,
			)
			err = Status(rep)
			return
		}

		logger.Error("Panic recovered",
			"operation", operation,
			"panic", r,
			"stack", string(debug.Stack()),
		)
		err = status.Errorf(codes.Internal, "%s panicked: %v", operation, r)
	}()

	return Status(fn())
}

// RecoverToValue wraps a function that returns a value and error.
// If the function panics, returns zero value and error.
func RecoverToValue[T any](logger *slog.Logger, operation string, fn func() (T, error)) (result T, err error) {
	err = RecoverToError(logger, operation, func() error {
		var ferr error
		result, ferr = fn()
		return ferr
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}

// Recover wraps a void function with panic recovery.
// Logs the panic but doesn't return an error.
// Use for cleanup operations where errors can't be returned.
func Recover(logger *slog.Logger, operation string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Panic recovered in cleanup",
				"operation", operation,
				"panic", fmt.Sprint(r),
				"stack", string(debug.Stack()),
			)
		}
	}()

	fn()
}
