package recovery

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/hugr-lab/pgext-go/catalog"
	"github.com/hugr-lab/pgext-go/pgsys"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func report(code pgsys.SQLState) *pgsys.ErrorReport {
	return &pgsys.ErrorReport{Level: pgsys.ERROR, Code: code, Message: "boom"}
}

func TestCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want codes.Code
	}{
		{"nil", nil, codes.OK},
		{"division by zero", report(pgsys.ErrcodeDivisionByZero), codes.InvalidArgument},
		{"wrapped datetime overflow", fmt.Errorf("call: %w", report(pgsys.ErrcodeDatetimeFieldOverflow)), codes.InvalidArgument},
		{"canceled statement", report(pgsys.ErrcodeQueryCanceled), codes.Canceled},
		{"datatype mismatch", report(pgsys.ErrcodeDatatypeMismatch), codes.Internal},
		{"internal", report(pgsys.ErrcodeInternalError), codes.Internal},
		{"invalid parameters", fmt.Errorf("f: %w", catalog.ErrInvalidParameters), codes.InvalidArgument},
		{"context canceled", context.Canceled, codes.Canceled},
		{"deadline", context.DeadlineExceeded, codes.DeadlineExceeded},
		{"status", status.Error(codes.NotFound, "nope"), codes.NotFound},
		{"other", errors.New("disk on fire"), codes.Internal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Code(tt.err); got != tt.want {
				t.Errorf("Code() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestRecoverToError(t *testing.T) {
	t.Run("returned report", func(t *testing.T) {
		err := RecoverToError(discard, "op", func() error { return report(pgsys.ErrcodeDivisionByZero) })
		if status.Code(err) != codes.InvalidArgument {
			t.Errorf("err = %v", err)
		}
	})

	t.Run("escaped report", func(t *testing.T) {
		err := RecoverToError(discard, "op", func() error {
			pgsys.Ereport(pgsys.ERROR, pgsys.ErrcodeInvalidParameterValue, "bad value")
			return nil
		})
		if status.Code(err) != codes.InvalidArgument {
			t.Errorf("err = %v", err)
		}
	})

	t.Run("panic", func(t *testing.T) {
		err := RecoverToError(discard, "op", func() error { panic("oops") })
		s, _ := status.FromError(err)
		if s.Code() != codes.Internal || s.Message() != "op panicked: oops" {
			t.Errorf("err = %v", err)
		}
	})

	t.Run("success", func(t *testing.T) {
		if err := RecoverToError(discard, "op", func() error { return nil }); err != nil {
			t.Errorf("err = %v", err)
		}
	})
}

func TestRecoverToValue(t *testing.T) {
	v, err := RecoverToValue(discard, "op", func() (int, error) { return 42, nil })
	if v != 42 || err != nil {
		t.Errorf("got %d, %v", v, err)
	}
	v, err = RecoverToValue(discard, "op", func() (int, error) { panic("oops") })
	if v != 0 || status.Code(err) != codes.Internal {
		t.Errorf("got %d, %v", v, err)
	}
}

func TestRecover(t *testing.T) {
	ran := false
	Recover(discard, "cleanup", func() {
		ran = true
		panic("ignored")
	})
	if !ran {
		t.Error("function did not run")
	}
}
