package callconv

import (
	"github.com/hugr-lab/pgext-go/datum"
	"github.com/hugr-lab/pgext-go/pgsys"
)

// SetOf is the result of a function returning setof T.
type SetOf[T datum.IntoDatum] struct {
	p Producer[T]
}

// NewSetOf returns a set drawn from p. A nil producer is an empty set.
func NewSetOf[T datum.IntoDatum](p Producer[T]) SetOf[T] { return SetOf[T]{p: p} }

// SetOfValues returns a set of the given values.
func SetOfValues[T datum.IntoDatum](values ...T) SetOf[T] { return NewSetOf(FromSlice(values)) }

func (s SetOf[T]) PrepareCall(fcinfo *pgsys.FunctionCallInfo) CallCx {
	return prepareValuePerCall(fcinfo)
}

func (s SetOf[T]) LabelRet() Ret[SetOf[T], T] {
	if s.p == nil {
		return Zero[SetOf[T], T]()
	}
	v, ok := s.p.Next()
	if !ok {
		return Zero[SetOf[T], T]()
	}
	return Many(s, v)
}

func (s SetOf[T]) BoxReturn(fcinfo *pgsys.FunctionCallInfo, ret Ret[SetOf[T], T]) pgsys.Datum {
	switch ret.Kind {
	case KindZero:
		return emptySet(fcinfo)
	case KindMany:
		ret.Rest.IntoContext(fcinfo)
	}
	fcx := derefFcx(fcinfo)
	d, isNull := ret.Value.IntoDatum()
	if isNull {
		return pgsys.SRFReturnNextNull(fcinfo, fcx)
	}
	return pgsys.SRFReturnNext(fcinfo, fcx, d)
}

func (s SetOf[T]) IntoContext(fcinfo *pgsys.FunctionCallInfo) {
	saveProducer(fcinfo, s.p)
}

func (s SetOf[T]) RetFromContext(fcinfo *pgsys.FunctionCallInfo) Ret[SetOf[T], T] {
	v, ok := resumeProducer[T](fcinfo)
	if !ok {
		return Zero[SetOf[T], T]()
	}
	return Once[SetOf[T]](v)
}

func (s SetOf[T]) FinishCall(fcinfo *pgsys.FunctionCallInfo) { emptySet(fcinfo) }

// saveProducer leaks p into the multi-call context, which owns it from then
// on.
func saveProducer[T any](fcinfo *pgsys.FunctionCallInfo, p Producer[T]) {
	fcx := derefFcx(fcinfo)
	fcx.UserFctx = fcx.MultiCallMemoryCtx.LeakAndDropOnDelete(p)
}

func resumeProducer[T any](fcinfo *pgsys.FunctionCallInfo) (T, bool) {
	fcx := derefFcx(fcinfo)
	if fcx.UserFctx == nil {
		outsideSequence("RetFromContext")
	}
	return pgsys.Unbox(fcx.UserFctx).(Producer[T]).Next()
}

// Row is one row of a table function's result.
type Row interface {
	Columns() []datum.IntoDatum
}

// Record is a row given as its column values.
type Record []datum.IntoDatum

func (r Record) Columns() []datum.IntoDatum { return r }

// TableOf is the result of a function returning table(...) or setof a
// composite type. Rows are formed against the row descriptor the caller
// expects, resolved once per sequence.
type TableOf[R Row] struct {
	p Producer[R]
}

// NewTableOf returns a table drawn from p.
func NewTableOf[R Row](p Producer[R]) TableOf[R] { return TableOf[R]{p: p} }

func (t TableOf[R]) PrepareCall(fcinfo *pgsys.FunctionCallInfo) CallCx {
	return prepareValuePerCall(fcinfo)
}

func (t TableOf[R]) LabelRet() Ret[TableOf[R], R] {
	if t.p == nil {
		return Zero[TableOf[R], R]()
	}
	row, ok := t.p.Next()
	if !ok {
		return Zero[TableOf[R], R]()
	}
	return Many(t, row)
}

func (t TableOf[R]) BoxReturn(fcinfo *pgsys.FunctionCallInfo, ret Ret[TableOf[R], R]) pgsys.Datum {
	switch ret.Kind {
	case KindZero:
		return emptySet(fcinfo)
	case KindMany:
		ret.Rest.IntoContext(fcinfo)
	}
	fcx := derefFcx(fcinfo)
	cols := ret.Value.Columns()
	values := make([]pgsys.Datum, len(cols))
	isnull := make([]bool, len(cols))
	for i, c := range cols {
		values[i], isnull[i] = c.IntoDatum()
	}
	tup := pgsys.HeapFormTuple(fcx.TupleDesc, values, isnull)
	return pgsys.SRFReturnNext(fcinfo, fcx, pgsys.HeapTupleGetDatum(tup))
}

// IntoContext also caches the caller's row descriptor in the multi-call
// record.
func (t TableOf[R]) IntoContext(fcinfo *pgsys.FunctionCallInfo) {
	fcx := derefFcx(fcinfo)
	fcx.MultiCallMemoryCtx.Run(func() {
		_, desc := pgsys.GetCallResultType(fcinfo)
		fcx.TupleDesc = desc
		saveProducer(fcinfo, t.p)
	})
}

func (t TableOf[R]) RetFromContext(fcinfo *pgsys.FunctionCallInfo) Ret[TableOf[R], R] {
	row, ok := resumeProducer[R](fcinfo)
	if !ok {
		return Zero[TableOf[R], R]()
	}
	return Once[TableOf[R]](row)
}

func (t TableOf[R]) FinishCall(fcinfo *pgsys.FunctionCallInfo) { emptySet(fcinfo) }
