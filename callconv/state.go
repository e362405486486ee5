// Package callconv ships Go return values back to the engine.
//
// A function returning a single value boxes it and returns. A set-returning
// function is called repeatedly by the engine, once per result value; the
// first sub-call runs the Go body, and every later sub-call resumes the
// producer saved in the multi-call context. Shippers compose: Optional and
// Fallible forward the whole protocol to the shipper they wrap.
package callconv

import (
	"github.com/hugr-lab/pgext-go/pgsys"
)

// State is where a call stands in the set-returning protocol.
type State int

const (
	// Uninitialized means no multi-call record exists.
	Uninitialized State = iota
	// FirstCall means the record exists and no value has been returned.
	FirstCall
	// Continuing means values have been returned and more may follow.
	Continuing
	// Exhausted means the engine has been told the sequence is done.
	Exhausted
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "Uninitialized"
	case FirstCall:
		return "FirstCall"
	case Continuing:
		return "Continuing"
	case Exhausted:
		return "Exhausted"
	}
	return "State(?)"
}

// StateOf reports the protocol state recorded in a call info.
func StateOf(fcinfo *pgsys.FunctionCallInfo) State {
	if rsi := fcinfo.ResultInfo; rsi != nil && rsi.IsDone == pgsys.ExprEndResult {
		return Exhausted
	}
	if fcinfo.Flinfo == nil || fcinfo.Flinfo.FnExtra == nil {
		return Uninitialized
	}
	if derefFcx(fcinfo).CallCntr == 0 {
		return FirstCall
	}
	return Continuing
}

// CallCx tells Ship how to proceed with a sub-call. When State is
// Continuing the shipper restores its saved producer; otherwise the body
// runs with Memcx as the current memory context.
type CallCx struct {
	State State
	Memcx *pgsys.MemoryContext
}

func derefFcx(fcinfo *pgsys.FunctionCallInfo) *pgsys.FuncCallContext {
	if fcinfo.Flinfo == nil || fcinfo.Flinfo.FnExtra == nil {
		panic("callconv: no multi-call sequence is active")
	}
	return (*pgsys.FuncCallContext)(fcinfo.Flinfo.FnExtra)
}

// prepareValuePerCall creates the multi-call record on the first sub-call.
// State that must survive to the next sub-call belongs in the multi-call
// context, never in the per-call one.
func prepareValuePerCall(fcinfo *pgsys.FunctionCallInfo) CallCx {
	if pgsys.SRFIsFirstCall(fcinfo) {
		fcx := pgsys.InitMultiFuncCall(fcinfo)
		return CallCx{State: FirstCall, Memcx: fcx.MultiCallMemoryCtx}
	}
	return CallCx{State: Continuing}
}

// emptySet ends the sequence without a value.
func emptySet(fcinfo *pgsys.FunctionCallInfo) pgsys.Datum {
	return pgsys.SRFReturnDone(fcinfo, derefFcx(fcinfo))
}

func outsideSequence(op string) {
	panic("callconv: " + op + " called outside a multi-call sequence")
}
