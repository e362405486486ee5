package pgsys

import (
	"context"
	"fmt"
)

// NewFmgrInfo creates call-site information for a function whose cross-call
// data lives in mcx.
func NewFmgrInfo(name string, mcx *MemoryContext) *FmgrInfo {
	return &FmgrInfo{FnName: name, FnMcxt: mcx}
}

// NewCallInfo builds the call information for one call.
func NewCallInfo(flinfo *FmgrInfo, args ...NullableDatum) *FunctionCallInfo {
	flinfo.FnNargs = len(args)
	return &FunctionCallInfo{Flinfo: flinfo, Args: args}
}

// Arg is a non-null call argument.
func Arg(d Datum) NullableDatum { return NullableDatum{Value: d} }

// NullArg is a null call argument.
func NullArg() NullableDatum { return NullableDatum{IsNull: true} }

// FunctionCallInvoke calls fn and converts an engine abort into an error.
func FunctionCallInvoke(fn PGFunction, fcinfo *FunctionCallInfo) (Datum, error) {
	var d Datum
	if rep := CatchReport(func() { d = fn(fcinfo) }); rep != nil {
		return Datum{}, rep
	}
	return d, nil
}

// DirectFunctionCall calls fn with non-null arguments in the current memory
// context. It returns false when fn returns null.
func DirectFunctionCall(fn PGFunction, args ...Datum) (Datum, bool) {
	nargs := make([]NullableDatum, len(args))
	for i, a := range args {
		nargs[i] = Arg(a)
	}
	fcinfo := NewCallInfo(NewFmgrInfo("", CurrentMemoryContext()), nargs...)
	d := fn(fcinfo)
	if fcinfo.IsNull {
		return Datum{}, false
	}
	return d, true
}

// ExecSetReturning drives a value-per-call set-returning function until it
// reports the end of its result set, passing every value to emit.
//
// Each sub-call runs with a per-value memory context that is reset before the
// next sub-call, so emit must copy any by-reference value it keeps. When the
// function aborts, ctx is cancelled or emit fails, the sequence is shut down
// and its multi-call context released.
func ExecSetReturning(ctx context.Context, fn PGFunction, flinfo *FmgrInfo, args []NullableDatum, expected TupleDesc, emit func(d Datum, isNull bool) error) error {
	if flinfo.FnMcxt == nil {
		flinfo.FnMcxt = CurrentMemoryContext()
	}
	flinfo.FnRetset = true
	flinfo.FnNargs = len(args)

	perValue := flinfo.FnMcxt.NewChild("ExprContext")
	defer perValue.Delete()

	rsi := &ReturnSetInfo{
		ExpectedDesc: expected,
		AllowedModes: SFRMValuePerCall,
		ReturnMode:   SFRMValuePerCall,
	}
	defer rsi.Shutdown()

	for calls := 0; ; calls++ {
		if err := ctx.Err(); err != nil {
			return &ErrorReport{Level: ERROR, Code: ErrcodeQueryCanceled, Message: fmt.Sprintf("canceling statement due to user request: %v", err)}
		}
		perValue.Reset()
		fcinfo := &FunctionCallInfo{Flinfo: flinfo, ResultInfo: rsi, Args: args}
		rsi.IsDone = ExprSingleResult

		var d Datum
		rep := CatchReport(func() {
			perValue.Run(func() { d = fn(fcinfo) })
		})
		if rep != nil {
			return rep
		}

		Logger().Debug("set-returning sub-call",
			"function", flinfo.FnName,
			"call", calls,
			"done", rsi.IsDone.String(),
		)

		switch rsi.IsDone {
		case ExprEndResult:
			return nil
		case ExprSingleResult:
			return emit(d, fcinfo.IsNull)
		}
		if err := emit(d, fcinfo.IsNull); err != nil {
			return err
		}
	}
}

// ExecSetReturningCollect runs ExecSetReturning and collects the results with
// conv, which is called while each value is still valid.
func ExecSetReturningCollect[T any](ctx context.Context, fn PGFunction, flinfo *FmgrInfo, args []NullableDatum, expected TupleDesc, conv func(d Datum, isNull bool) T) ([]T, error) {
	var out []T
	err := ExecSetReturning(ctx, fn, flinfo, args, expected, func(d Datum, isNull bool) error {
		out = append(out, conv(d, isNull))
		return nil
	})
	return out, err
}
