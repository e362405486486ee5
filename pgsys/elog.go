package pgsys

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
)

// ErrorLevel is the severity of an engine report.
type ErrorLevel int

const (
	DEBUG5 ErrorLevel = iota + 10
	DEBUG4
	DEBUG3
	DEBUG2
	DEBUG1
	LOG
	INFO
	NOTICE
	WARNING
	ERROR
	FATAL
	PANIC
)

func (l ErrorLevel) String() string {
	switch l {
	case DEBUG5, DEBUG4, DEBUG3, DEBUG2, DEBUG1:
		return "DEBUG"
	case LOG:
		return "LOG"
	case INFO:
		return "INFO"
	case NOTICE:
		return "NOTICE"
	case WARNING:
		return "WARNING"
	case ERROR:
		return "ERROR"
	case FATAL:
		return "FATAL"
	case PANIC:
		return "PANIC"
	}
	return fmt.Sprintf("ErrorLevel(%d)", int(l))
}

func (l ErrorLevel) slogLevel() slog.Level {
	switch {
	case l <= DEBUG1:
		return slog.LevelDebug
	case l <= NOTICE:
		return slog.LevelInfo
	case l == WARNING:
		return slog.LevelWarn
	}
	return slog.LevelError
}

// SQLState is a five character SQLSTATE error code.
type SQLState string

// Error codes raised by the engine model.
const (
	ErrcodeSuccessfulCompletion      SQLState = "00000"
	ErrcodeWarning                   SQLState = "01000"
	ErrcodeFeatureNotSupported       SQLState = "0A000"
	ErrcodeDataException             SQLState = "22000"
	ErrcodeDatetimeFieldOverflow     SQLState = "22008"
	ErrcodeDivisionByZero            SQLState = "22012"
	ErrcodeInvalidDatetimeFormat     SQLState = "22007"
	ErrcodeInvalidParameterValue     SQLState = "22023"
	ErrcodeNumericValueOutOfRange    SQLState = "22003"
	ErrcodeInvalidTextRepresentation SQLState = "22P02"
	ErrcodeNullValueNotAllowed       SQLState = "22004"
	ErrcodeDatatypeMismatch          SQLState = "42804"
	ErrcodeUndefinedFunction         SQLState = "42883"
	ErrcodeQueryCanceled             SQLState = "57014"
	ErrcodeProgramLimitExceeded      SQLState = "54000"
	ErrcodeOutOfMemory               SQLState = "53200"
	ErrcodeInternalError             SQLState = "XX000"
)

// Class returns the two character class of the code.
func (s SQLState) Class() string {
	if len(s) < 2 {
		return ""
	}
	return string(s[:2])
}

// ErrorReport is an engine error. Reports at ERROR or above abort the current
// operation by unwinding to the closest catch boundary.
type ErrorReport struct {
	Level   ErrorLevel
	Code    SQLState
	Message string
	Detail  string
	Hint    string
}

func (e *ErrorReport) Error() string {
	return fmt.Sprintf("%s: %s (SQLSTATE %s)", e.Level, e.Message, e.Code)
}

// Is matches another report with the same code.
func (e *ErrorReport) Is(target error) bool {
	t, ok := target.(*ErrorReport)
	return ok && t.Code == e.Code && t.Message == ""
}

// Raise aborts with the report when its level is ERROR or higher and logs it
// otherwise.
func (e *ErrorReport) Raise() {
	if e.Level >= ERROR {
		panic(e)
	}
	Logger().Log(context.Background(), e.Level.slogLevel(), e.Message,
		"level", e.Level.String(),
		"sqlstate", string(e.Code),
	)
}

var logger atomic.Pointer[slog.Logger]

// SetLogger sets the destination of reports below ERROR. A nil logger
// restores slog.Default.
func SetLogger(l *slog.Logger) {
	logger.Store(l)
}

// Logger returns the engine logger.
func Logger() *slog.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	return slog.Default()
}

// Ereport raises an engine report. At ERROR and above it does not return.
func Ereport(level ErrorLevel, code SQLState, msg string) {
	(&ErrorReport{Level: level, Code: code, Message: msg}).Raise()
}

// Ereportf is Ereport with a format string.
func Ereportf(level ErrorLevel, code SQLState, format string, args ...any) {
	Ereport(level, code, fmt.Sprintf(format, args...))
}

// ReportError raises err as an ERROR. A wrapped *ErrorReport keeps its code;
// anything else is reported as a data exception.
func ReportError(err error) {
	var rep *ErrorReport
	if errors.As(err, &rep) {
		cp := *rep
		cp.Level = max(cp.Level, ERROR)
		panic(&cp)
	}
	panic(&ErrorReport{Level: ERROR, Code: ErrcodeDataException, Message: err.Error()})
}

// TryCatch runs a body with engine abort handling. Build it with PgTry.
type TryCatch[T any] struct {
	body    func() T
	catches map[SQLState]func(*ErrorReport) T
	others  func(*ErrorReport) T
	panics  func(any) T
	finally func()
}

// PgTry starts a catch boundary around body:
//
//	v := pgsys.PgTry(func() int32 { return parse(s) }).
//		CatchWhen(pgsys.ErrcodeInvalidDatetimeFormat, func(*pgsys.ErrorReport) int32 { return 0 }).
//		Execute()
//
// Reports not matched by a handler are raised again after Finally runs.
func PgTry[T any](body func() T) *TryCatch[T] {
	return &TryCatch[T]{body: body, catches: make(map[SQLState]func(*ErrorReport) T)}
}

// CatchWhen handles reports with the given code.
func (t *TryCatch[T]) CatchWhen(code SQLState, h func(*ErrorReport) T) *TryCatch[T] {
	t.catches[code] = h
	return t
}

// CatchOthers handles reports no CatchWhen handler matched.
func (t *TryCatch[T]) CatchOthers(h func(*ErrorReport) T) *TryCatch[T] {
	t.others = h
	return t
}

// CatchPanic handles Go panics that are not engine reports.
func (t *TryCatch[T]) CatchPanic(h func(any) T) *TryCatch[T] {
	t.panics = h
	return t
}

// Finally registers fn to run after the body and any handler, whether or not
// they abort.
func (t *TryCatch[T]) Finally(fn func()) *TryCatch[T] {
	t.finally = fn
	return t
}

// Execute runs the body and dispatches any abort to the handlers.
func (t *TryCatch[T]) Execute() T {
	if t.finally != nil {
		defer t.finally()
	}
	saved := current
	result, r, aborted := t.run()
	if !aborted {
		return result
	}
	if !saved.deleted {
		current = saved
	}
	if rep, ok := r.(*ErrorReport); ok {
		if h, ok := t.catches[rep.Code]; ok {
			return h(rep)
		}
		if t.others != nil {
			return t.others(rep)
		}
		panic(rep)
	}
	if t.panics != nil {
		return t.panics(r)
	}
	panic(r)
}

func (t *TryCatch[T]) run() (result T, r any, aborted bool) {
	defer func() {
		if rec := recover(); rec != nil {
			r = rec
			aborted = true
		}
	}()
	return t.body(), nil, false
}

// CatchReport runs fn and returns the engine report it aborted with, if any.
// Go panics that are not reports propagate.
func CatchReport(fn func()) (rep *ErrorReport) {
	return PgTry(func() *ErrorReport {
		fn()
		return nil
	}).CatchOthers(func(r *ErrorReport) *ErrorReport {
		return r
	}).Execute()
}
