package callconv

import (
	"github.com/hugr-lab/pgext-go/datum"
	"github.com/hugr-lab/pgext-go/pgsys"
)

// Value is the result of a function returning a single T.
type Value[T datum.IntoDatum] struct {
	v T
}

// Scalar wraps a single result value.
func Scalar[T datum.IntoDatum](v T) Value[T] { return Value[T]{v: v} }

// Get returns the wrapped value.
func (s Value[T]) Get() T { return s.v }

// PrepareCall runs the body in the caller's memory context.
func (s Value[T]) PrepareCall(*pgsys.FunctionCallInfo) CallCx {
	return CallCx{State: Uninitialized, Memcx: pgsys.CurrentMemoryContext()}
}

func (s Value[T]) LabelRet() Ret[Value[T], T] { return Once[Value[T]](s.v) }

func (s Value[T]) BoxReturn(fcinfo *pgsys.FunctionCallInfo, ret Ret[Value[T], T]) pgsys.Datum {
	switch ret.Kind {
	case KindZero:
		return pgsys.ReturnNull(fcinfo)
	case KindMany:
		panic("callconv: a scalar result cannot continue")
	}
	d, isNull := ret.Value.IntoDatum()
	if isNull {
		return pgsys.ReturnNull(fcinfo)
	}
	return d
}

func (s Value[T]) IntoContext(*pgsys.FunctionCallInfo) { outsideSequence("IntoContext") }

func (s Value[T]) RetFromContext(*pgsys.FunctionCallInfo) Ret[Value[T], T] {
	outsideSequence("RetFromContext")
	return Ret[Value[T], T]{}
}

func (s Value[T]) FinishCall(*pgsys.FunctionCallInfo) { outsideSequence("FinishCall") }

// Unit is the result of a function returning void.
type Unit struct{}

func (Unit) PrepareCall(*pgsys.FunctionCallInfo) CallCx {
	return CallCx{State: Uninitialized, Memcx: pgsys.CurrentMemoryContext()}
}

func (Unit) LabelRet() Ret[Unit, datum.Void] { return Zero[Unit, datum.Void]() }

// BoxReturn returns a zero datum; void results are not null.
func (Unit) BoxReturn(*pgsys.FunctionCallInfo, Ret[Unit, datum.Void]) pgsys.Datum {
	return pgsys.Datum{}
}

func (Unit) IntoContext(*pgsys.FunctionCallInfo) { outsideSequence("IntoContext") }

func (Unit) RetFromContext(*pgsys.FunctionCallInfo) Ret[Unit, datum.Void] {
	outsideSequence("RetFromContext")
	return Ret[Unit, datum.Void]{}
}

func (Unit) FinishCall(*pgsys.FunctionCallInfo) { outsideSequence("FinishCall") }
