package callconv

import (
	"github.com/hugr-lab/pgext-go/nullable"
	"github.com/hugr-lab/pgext-go/pgsys"
)

// Optional is a shipper that may be absent. An absent shipper yields
// nothing: a null scalar, or an empty set.
type Optional[S ReturnShipping[S, V], V any] struct {
	inner nullable.Nullable[S]
}

// Some wraps a present shipper.
func Some[S ReturnShipping[S, V], V any](s S) Optional[S, V] {
	return Optional[S, V]{inner: nullable.Valid(s)}
}

// None is the absent shipper.
func None[S ReturnShipping[S, V], V any]() Optional[S, V] {
	return Optional[S, V]{inner: nullable.Null[S]()}
}

func (o Optional[S, V]) PrepareCall(fcinfo *pgsys.FunctionCallInfo) CallCx {
	var inner S
	return inner.PrepareCall(fcinfo)
}

func (o Optional[S, V]) LabelRet() Ret[Optional[S, V], V] {
	inner, ok := o.inner.Option()
	if !ok {
		return Zero[Optional[S, V], V]()
	}
	return mapRet(inner.LabelRet(), Some[S, V])
}

func (o Optional[S, V]) BoxReturn(fcinfo *pgsys.FunctionCallInfo, ret Ret[Optional[S, V], V]) pgsys.Datum {
	var inner S
	out := Ret[S, V]{Kind: ret.Kind, Value: ret.Value}
	if ret.Kind == KindMany {
		rest, ok := ret.Rest.inner.Option()
		if !ok {
			return inner.BoxReturn(fcinfo, Zero[S, V]())
		}
		out.Rest = rest
	}
	return inner.BoxReturn(fcinfo, out)
}

func (o Optional[S, V]) IntoContext(fcinfo *pgsys.FunctionCallInfo) {
	if inner, ok := o.inner.Option(); ok {
		inner.IntoContext(fcinfo)
	}
}

func (o Optional[S, V]) RetFromContext(fcinfo *pgsys.FunctionCallInfo) Ret[Optional[S, V], V] {
	var inner S
	return mapRet(inner.RetFromContext(fcinfo), Some[S, V])
}

func (o Optional[S, V]) FinishCall(fcinfo *pgsys.FunctionCallInfo) {
	var inner S
	inner.FinishCall(fcinfo)
}

// Fallible is a shipper or the error that prevented building it. The error
// is raised as an engine error when the result is labelled; it never comes
// back to the engine as a value.
type Fallible[S ReturnShipping[S, V], V any] struct {
	inner S
	err   error
}

// Ok wraps a shipper.
func Ok[S ReturnShipping[S, V], V any](s S) Fallible[S, V] {
	return Fallible[S, V]{inner: s}
}

// Err wraps a failure. A nil err is treated as the zero shipper.
func Err[S ReturnShipping[S, V], V any](err error) Fallible[S, V] {
	return Fallible[S, V]{err: err}
}

// Try wraps the usual (value, error) pair.
func Try[S ReturnShipping[S, V], V any](s S, err error) Fallible[S, V] {
	return Fallible[S, V]{inner: s, err: err}
}

// unwrapOrReport returns the shipper or aborts with its error. An error
// carrying an engine report keeps its code.
func (f Fallible[S, V]) unwrapOrReport() S {
	if f.err != nil {
		pgsys.ReportError(f.err)
	}
	return f.inner
}

func (f Fallible[S, V]) PrepareCall(fcinfo *pgsys.FunctionCallInfo) CallCx {
	var inner S
	return inner.PrepareCall(fcinfo)
}

func (f Fallible[S, V]) LabelRet() Ret[Fallible[S, V], V] {
	return mapRet(f.unwrapOrReport().LabelRet(), Ok[S, V])
}

func (f Fallible[S, V]) BoxReturn(fcinfo *pgsys.FunctionCallInfo, ret Ret[Fallible[S, V], V]) pgsys.Datum {
	var inner S
	return inner.BoxReturn(fcinfo, mapRet(ret, Fallible[S, V].unwrapOrReport))
}

func (f Fallible[S, V]) IntoContext(fcinfo *pgsys.FunctionCallInfo) {
	if f.err == nil {
		f.inner.IntoContext(fcinfo)
	}
}

func (f Fallible[S, V]) RetFromContext(fcinfo *pgsys.FunctionCallInfo) Ret[Fallible[S, V], V] {
	var inner S
	return mapRet(inner.RetFromContext(fcinfo), Ok[S, V])
}

func (f Fallible[S, V]) FinishCall(fcinfo *pgsys.FunctionCallInfo) {
	var inner S
	inner.FinishCall(fcinfo)
}
