package callconv

import (
	"github.com/hugr-lab/pgext-go/pgsys"
)

// ReturnShipping is implemented by every type a wrapped function may return.
// S is the implementing type itself and V the value it yields per sub-call.
//
// PrepareCall, BoxReturn, RetFromContext and FinishCall do not depend on the
// receiver and are called on the zero value of S.
type ReturnShipping[S, V any] interface {
	// PrepareCall inspects the call info, initializes multi-call state when
	// needed and decides whether the body runs or a saved shipper resumes.
	PrepareCall(fcinfo *pgsys.FunctionCallInfo) CallCx
	// LabelRet takes the first value out of the shipper.
	LabelRet() Ret[S, V]
	// BoxReturn converts a result into the datum handed to the engine and
	// sets the call's result flags.
	BoxReturn(fcinfo *pgsys.FunctionCallInfo, ret Ret[S, V]) pgsys.Datum
	// IntoContext saves the shipper in the multi-call context.
	IntoContext(fcinfo *pgsys.FunctionCallInfo)
	// RetFromContext resumes the saved shipper.
	RetFromContext(fcinfo *pgsys.FunctionCallInfo) Ret[S, V]
	// FinishCall tells the engine the sequence is done.
	FinishCall(fcinfo *pgsys.FunctionCallInfo)
}

// Ship runs one sub-call of a wrapped function. body is only called when
// there is no saved state to resume from.
func Ship[S ReturnShipping[S, V], V any](fcinfo *pgsys.FunctionCallInfo, body func() S) pgsys.Datum {
	var shipper S
	cx := shipper.PrepareCall(fcinfo)
	var ret Ret[S, V]
	if cx.State == Continuing {
		ret = shipper.RetFromContext(fcinfo)
	} else {
		cx.Memcx.Run(func() { ret = body().LabelRet() })
	}
	return shipper.BoxReturn(fcinfo, ret)
}

// Wrap adapts a Go function into an engine-callable one.
//
//	numbers := callconv.Wrap(func(fcinfo *pgsys.FunctionCallInfo) callconv.SetOf[datum.Int32] {
//		return callconv.SetOfValues[datum.Int32](10, 20, 30)
//	})
func Wrap[S ReturnShipping[S, V], V any](body func(fcinfo *pgsys.FunctionCallInfo) S) pgsys.PGFunction {
	return func(fcinfo *pgsys.FunctionCallInfo) pgsys.Datum {
		return Ship[S, V](fcinfo, func() S { return body(fcinfo) })
	}
}
