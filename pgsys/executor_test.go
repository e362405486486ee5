package pgsys

import (
	"context"
	"errors"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
)

// countdown is a hand-written value-per-call function using the multi-call
// macros directly.
func countdown(fcinfo *FunctionCallInfo) Datum {
	if SRFIsFirstCall(fcinfo) {
		fcx := InitMultiFuncCall(fcinfo)
		fcx.MaxCalls = uint64(fcinfo.Arg(0).Int32())
	}
	fcx := PerMultiFuncCall(fcinfo)
	if fcx.CallCntr < fcx.MaxCalls {
		return SRFReturnNext(fcinfo, fcx, Int32Datum(int32(fcx.MaxCalls-fcx.CallCntr)))
	}
	return SRFReturnDone(fcinfo, fcx)
}

func TestExecSetReturning(t *testing.T) {
	mcx, alloc := newTestContext(t)
	defer alloc.AssertSize(t, 0)
	defer mcx.Delete()

	flinfo := NewFmgrInfo("countdown", mcx)
	got, err := ExecSetReturningCollect(context.Background(), countdown, flinfo,
		[]NullableDatum{Arg(Int32Datum(3))}, nil,
		func(d Datum, _ bool) int32 { return d.Int32() })
	if err != nil {
		t.Fatalf("ExecSetReturning: %v", err)
	}
	want := []int32{3, 2, 1}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("value %d = %d, want %d", i, got[i], want[i])
		}
	}
	if flinfo.FnExtra != nil {
		t.Error("multi-call record left behind")
	}
	if len(mcx.Children()) != 0 {
		t.Errorf("contexts left behind: %d", len(mcx.Children()))
	}
}

func TestExecSetReturningStopsEarly(t *testing.T) {
	mcx, alloc := newTestContext(t)
	defer alloc.AssertSize(t, 0)
	defer mcx.Delete()

	stop := errors.New("stop")
	flinfo := NewFmgrInfo("countdown", mcx)
	n := 0
	err := ExecSetReturning(context.Background(), countdown, flinfo,
		[]NullableDatum{Arg(Int32Datum(10))}, nil,
		func(Datum, bool) error {
			n++
			if n == 2 {
				return stop
			}
			return nil
		})
	if !errors.Is(err, stop) {
		t.Fatalf("err = %v, want %v", err, stop)
	}
	if flinfo.FnExtra != nil {
		t.Error("shutdown did not clear the multi-call record")
	}
	if len(mcx.Children()) != 0 {
		t.Errorf("contexts left behind: %d", len(mcx.Children()))
	}
}

func TestExecSetReturningCanceled(t *testing.T) {
	mcx, alloc := newTestContext(t)
	defer alloc.AssertSize(t, 0)
	defer mcx.Delete()

	ctx, cancel := context.WithCancel(context.Background())
	flinfo := NewFmgrInfo("countdown", mcx)
	err := ExecSetReturning(ctx, countdown, flinfo, []NullableDatum{Arg(Int32Datum(10))}, nil,
		func(Datum, bool) error {
			cancel()
			return nil
		})
	var rep *ErrorReport
	if !errors.As(err, &rep) || rep.Code != ErrcodeQueryCanceled {
		t.Fatalf("err = %v, want query canceled", err)
	}
}

func TestExecSetReturningAbort(t *testing.T) {
	mcx, alloc := newTestContext(t)
	defer alloc.AssertSize(t, 0)
	defer mcx.Delete()

	failing := func(fcinfo *FunctionCallInfo) Datum {
		if SRFIsFirstCall(fcinfo) {
			fcx := InitMultiFuncCall(fcinfo)
			fcx.UserFctx = fcx.MultiCallMemoryCtx.Alloc(64)
		}
		fcx := PerMultiFuncCall(fcinfo)
		if fcx.CallCntr == 1 {
			Ereport(ERROR, ErrcodeDivisionByZero, "division by zero")
		}
		return SRFReturnNext(fcinfo, fcx, Int32Datum(1))
	}
	flinfo := NewFmgrInfo("failing", mcx)
	err := ExecSetReturning(context.Background(), failing, flinfo, nil, nil,
		func(Datum, bool) error { return nil })
	var rep *ErrorReport
	if !errors.As(err, &rep) || rep.Code != ErrcodeDivisionByZero {
		t.Fatalf("err = %v, want division by zero", err)
	}
	if flinfo.FnExtra != nil {
		t.Error("abort did not clear the multi-call record")
	}
}

func TestInitMultiFuncCallTwice(t *testing.T) {
	mcx, alloc := newTestContext(t)
	defer alloc.AssertSize(t, 0)
	defer mcx.Delete()

	rsi := &ReturnSetInfo{AllowedModes: SFRMValuePerCall}
	defer rsi.Shutdown()
	fcinfo := &FunctionCallInfo{Flinfo: NewFmgrInfo("f", mcx), ResultInfo: rsi}
	InitMultiFuncCall(fcinfo)
	if rep := CatchReport(func() { InitMultiFuncCall(fcinfo) }); rep == nil {
		t.Fatal("second InitMultiFuncCall must fail")
	}
}

func TestPerMultiFuncCallWithoutRecord(t *testing.T) {
	fcinfo := &FunctionCallInfo{Flinfo: &FmgrInfo{}}
	if rep := CatchReport(func() { PerMultiFuncCall(fcinfo) }); rep == nil {
		t.Fatal("PerMultiFuncCall outside a sequence must fail")
	}
}

func TestInitMultiFuncCallNeedsSetContext(t *testing.T) {
	fcinfo := &FunctionCallInfo{Flinfo: &FmgrInfo{}}
	rep := CatchReport(func() { InitMultiFuncCall(fcinfo) })
	if rep == nil || rep.Code != ErrcodeFeatureNotSupported {
		t.Fatalf("report = %v, want feature not supported", rep)
	}
}

func TestGetCallResultType(t *testing.T) {
	desc := arrow.NewSchema([]arrow.Field{{Name: "a", Type: arrow.PrimitiveTypes.Int32}}, nil)
	tests := []struct {
		name   string
		fcinfo *FunctionCallInfo
		want   TypeFuncClass
	}{
		{"composite", &FunctionCallInfo{Flinfo: &FmgrInfo{}, ResultInfo: &ReturnSetInfo{ExpectedDesc: desc}}, TypeFuncComposite},
		{"scalar", &FunctionCallInfo{Flinfo: &FmgrInfo{}}, TypeFuncScalar},
		{"record", &FunctionCallInfo{Flinfo: &FmgrInfo{FnRetset: true}}, TypeFuncRecord},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := GetCallResultType(tt.fcinfo)
			if got != tt.want {
				t.Errorf("GetCallResultType = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHeapTuple(t *testing.T) {
	desc := arrow.NewSchema([]arrow.Field{
		{Name: "a", Type: arrow.PrimitiveTypes.Int32},
		{Name: "b", Type: arrow.PrimitiveTypes.Int32, Nullable: true},
		{Name: "c", Type: arrow.PrimitiveTypes.Int32},
	}, nil)
	tup := HeapFormTuple(desc,
		[]Datum{Int32Datum(1), Int32Datum(0), Int32Datum(3)},
		[]bool{false, true, false})

	if !tup.HasNulls() {
		t.Error("HasNulls = false")
	}
	if d, null := tup.Attr(0); null || d.Int32() != 1 {
		t.Errorf("attr 0 = %d, %v", d.Int32(), null)
	}
	if _, null := tup.Attr(1); !null {
		t.Error("attr 1 should be null")
	}
	if d, null := tup.Attr(2); null || d.Int32() != 3 {
		t.Errorf("attr 2 = %d, %v", d.Int32(), null)
	}

	values, isnull := HeapDeformTuple(DatumGetHeapTuple(HeapTupleGetDatum(tup)))
	if values[2].Int32() != 3 || !isnull[1] || isnull[0] {
		t.Errorf("deform = %v %v", values, isnull)
	}

	rep := CatchReport(func() { HeapFormTuple(desc, []Datum{Int32Datum(1)}, []bool{false}) })
	if rep == nil || rep.Code != ErrcodeDatatypeMismatch {
		t.Errorf("column count mismatch report = %v", rep)
	}
}

func TestDirectFunctionCall(t *testing.T) {
	mcx, alloc := newTestContext(t)
	defer alloc.AssertSize(t, 0)
	defer mcx.Delete()

	mcx.Run(func() {
		d, ok := DirectFunctionCall(DateIn, PointerDatum(Pstrdup("2000-01-02")))
		if !ok || d.Int32() != 1 {
			t.Errorf("date_in = %d, %v", d.Int32(), ok)
		}
		_, ok = DirectFunctionCall(func(fcinfo *FunctionCallInfo) Datum { return ReturnNull(fcinfo) })
		if ok {
			t.Error("null result reported as a value")
		}
	})
}
