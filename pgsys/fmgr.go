package pgsys

import (
	"unsafe"

	"github.com/apache/arrow-go/v18/arrow"
)

// TupleDesc describes the columns of a row.
type TupleDesc = *arrow.Schema

// PGFunction is the calling convention of every engine-callable function.
type PGFunction func(fcinfo *FunctionCallInfo) Datum

// FmgrInfo is the per-call-site lookup information of a function. It lives
// as long as the call site, across all sub-calls of a set-returning
// function.
type FmgrInfo struct {
	FnName   string
	FnOid    Oid
	FnNargs  int
	FnStrict bool
	FnRetset bool
	// FnMcxt is the context FnExtra data belongs to.
	FnMcxt *MemoryContext
	// FnExtra is free for the function's own use across sub-calls.
	FnExtra unsafe.Pointer
}

// FunctionCallInfo carries the arguments and result flags of one call.
type FunctionCallInfo struct {
	Flinfo     *FmgrInfo
	ResultInfo *ReturnSetInfo
	Collation  Oid
	IsNull     bool
	Args       []NullableDatum
}

// NArgs returns the number of arguments.
func (f *FunctionCallInfo) NArgs() int { return len(f.Args) }

// Arg returns argument i.
func (f *FunctionCallInfo) Arg(i int) Datum {
	if i < 0 || i >= len(f.Args) {
		Ereportf(ERROR, ErrcodeInternalError, "argument %d out of range for %s", i, f.Flinfo.FnName)
	}
	return f.Args[i].Value
}

// ArgIsNull reports whether argument i is null.
func (f *FunctionCallInfo) ArgIsNull(i int) bool {
	if i < 0 || i >= len(f.Args) {
		return true
	}
	return f.Args[i].IsNull
}

// ReturnNull marks the result of the call as null.
func ReturnNull(fcinfo *FunctionCallInfo) Datum {
	fcinfo.IsNull = true
	return Datum{}
}

// ExprDoneCond is the per-sub-call status a set-returning function reports.
type ExprDoneCond int

const (
	ExprSingleResult ExprDoneCond = iota
	ExprMultipleResult
	ExprEndResult
)

func (c ExprDoneCond) String() string {
	switch c {
	case ExprSingleResult:
		return "ExprSingleResult"
	case ExprMultipleResult:
		return "ExprMultipleResult"
	case ExprEndResult:
		return "ExprEndResult"
	}
	return "ExprDoneCond(?)"
}

// SetFunctionReturnMode is a bit set of the protocols a caller accepts.
type SetFunctionReturnMode int

const (
	SFRMValuePerCall SetFunctionReturnMode = 1 << iota
	SFRMMaterialize
)

type shutdownCallback struct {
	fn      func()
	removed bool
}

// ReturnSetInfo is the caller side of the set-returning protocol.
type ReturnSetInfo struct {
	ExpectedDesc TupleDesc
	AllowedModes SetFunctionReturnMode
	ReturnMode   SetFunctionReturnMode
	IsDone       ExprDoneCond

	callbacks []*shutdownCallback
}

// RegisterShutdownCallback arranges for fn to run if the caller stops the
// sequence early. The returned function unregisters it.
func (r *ReturnSetInfo) RegisterShutdownCallback(fn func()) (unregister func()) {
	cb := &shutdownCallback{fn: fn}
	r.callbacks = append(r.callbacks, cb)
	return func() { cb.removed = true }
}

// Shutdown runs the registered callbacks that are still active.
func (r *ReturnSetInfo) Shutdown() {
	for len(r.callbacks) > 0 {
		cb := r.callbacks[len(r.callbacks)-1]
		r.callbacks = r.callbacks[:len(r.callbacks)-1]
		if !cb.removed {
			cb.fn()
		}
	}
}

// TypeFuncClass classifies a function's result type.
type TypeFuncClass int

const (
	TypeFuncScalar TypeFuncClass = iota
	TypeFuncComposite
	TypeFuncRecord
)

// GetCallResultType reports what kind of value the caller expects.
func GetCallResultType(fcinfo *FunctionCallInfo) (TypeFuncClass, TupleDesc) {
	rsi := fcinfo.ResultInfo
	switch {
	case rsi != nil && rsi.ExpectedDesc != nil:
		return TypeFuncComposite, rsi.ExpectedDesc
	case fcinfo.Flinfo != nil && fcinfo.Flinfo.FnRetset && rsi == nil:
		return TypeFuncRecord, nil
	}
	return TypeFuncScalar, nil
}

// FuncCallContext is the multi-call record of a value-per-call
// set-returning function.
type FuncCallContext struct {
	// CallCntr counts values returned so far.
	CallCntr uint64
	// MaxCalls is an optional upper bound set by the function.
	MaxCalls uint64
	// UserFctx is the function's own state. It must point into
	// MultiCallMemoryCtx.
	UserFctx unsafe.Pointer
	// MultiCallMemoryCtx lives for the whole sequence and is deleted when it
	// ends.
	MultiCallMemoryCtx *MemoryContext
	// TupleDesc is the cached output row descriptor, if any.
	TupleDesc TupleDesc

	unregister func()
}

// SRFIsFirstCall reports whether no multi-call record exists yet.
func SRFIsFirstCall(fcinfo *FunctionCallInfo) bool {
	return fcinfo.Flinfo.FnExtra == nil
}

// InitMultiFuncCall creates the multi-call record and its memory context on
// the first sub-call.
func InitMultiFuncCall(fcinfo *FunctionCallInfo) *FuncCallContext {
	rsi := fcinfo.ResultInfo
	if rsi == nil || rsi.AllowedModes&SFRMValuePerCall == 0 {
		Ereport(ERROR, ErrcodeFeatureNotSupported, "set-valued function called in context that cannot accept a set")
	}
	flinfo := fcinfo.Flinfo
	if flinfo.FnExtra != nil {
		Ereport(ERROR, ErrcodeInternalError, "init_MultiFuncCall cannot be called more than once")
	}
	fcx := &FuncCallContext{
		MultiCallMemoryCtx: flinfo.FnMcxt.NewChild("SRF multi-call context"),
	}
	flinfo.FnExtra = unsafe.Pointer(fcx)
	fcx.unregister = rsi.RegisterShutdownCallback(func() {
		shutdownMultiFuncCall(flinfo, fcx)
	})
	return fcx
}

// PerMultiFuncCall returns the record created by InitMultiFuncCall.
func PerMultiFuncCall(fcinfo *FunctionCallInfo) *FuncCallContext {
	if fcinfo.Flinfo.FnExtra == nil {
		Ereport(ERROR, ErrcodeInternalError, "per_MultiFuncCall called outside a multi-call sequence")
	}
	return (*FuncCallContext)(fcinfo.Flinfo.FnExtra)
}

// EndMultiFuncCall tears down the multi-call record after the last value.
func EndMultiFuncCall(fcinfo *FunctionCallInfo, fcx *FuncCallContext) {
	if fcx.unregister != nil {
		fcx.unregister()
	}
	shutdownMultiFuncCall(fcinfo.Flinfo, fcx)
}

func shutdownMultiFuncCall(flinfo *FmgrInfo, fcx *FuncCallContext) {
	flinfo.FnExtra = nil
	fcx.MultiCallMemoryCtx.Delete()
	fcx.UserFctx = nil
}

// SRFReturnNext counts a value and tells the caller more may follow.
func SRFReturnNext(fcinfo *FunctionCallInfo, fcx *FuncCallContext, d Datum) Datum {
	fcx.CallCntr++
	fcinfo.ResultInfo.IsDone = ExprMultipleResult
	return d
}

// SRFReturnNextNull is SRFReturnNext for a null value.
func SRFReturnNextNull(fcinfo *FunctionCallInfo, fcx *FuncCallContext) Datum {
	fcx.CallCntr++
	fcinfo.ResultInfo.IsDone = ExprMultipleResult
	return ReturnNull(fcinfo)
}

// SRFReturnDone ends the sequence and returns the null terminator.
func SRFReturnDone(fcinfo *FunctionCallInfo, fcx *FuncCallContext) Datum {
	EndMultiFuncCall(fcinfo, fcx)
	fcinfo.ResultInfo.IsDone = ExprEndResult
	return ReturnNull(fcinfo)
}
