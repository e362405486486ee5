package datetime

import (
	"cmp"

	"github.com/hugr-lab/pgext-go/datum"
	"github.com/hugr-lab/pgext-go/pgsys"
)

// routines are the engine functions backing one type.
type routines struct {
	eq, cmp, hash, extract, in, out pgsys.PGFunction
}

var (
	dateRoutines        = routines{pgsys.DateEq, pgsys.DateCmp, pgsys.DateHash, pgsys.ExtractDate, pgsys.DateIn, pgsys.DateOut}
	timeRoutines        = routines{pgsys.TimeEq, pgsys.TimeCmp, pgsys.TimeHash, pgsys.ExtractTime, pgsys.TimeIn, pgsys.TimeOut}
	timetzRoutines      = routines{pgsys.TimetzEq, pgsys.TimetzCmp, pgsys.TimetzHash, pgsys.ExtractTimetz, pgsys.TimetzIn, pgsys.TimetzOut}
	timestampRoutines   = routines{pgsys.TimestampEq, pgsys.TimestampCmp, pgsys.TimestampHash, pgsys.ExtractTimestamp, pgsys.TimestampIn, pgsys.TimestampOut}
	timestamptzRoutines = routines{pgsys.TimestampEq, pgsys.TimestampCmp, pgsys.TimestampHash, pgsys.ExtractTimestamptz, pgsys.TimestamptzIn, pgsys.TimestamptzOut}
	intervalRoutines    = routines{pgsys.IntervalEq, pgsys.IntervalCmp, pgsys.IntervalHash, pgsys.ExtractInterval, pgsys.IntervalIn, pgsys.IntervalOut}
)

// scratch runs fn in a short-lived child of the current memory context so
// that boxed arguments and results do not outlive the call.
func scratch[T any](fn func() T) T {
	mcx := pgsys.CurrentMemoryContext().NewChild("datetime")
	defer mcx.Delete()
	var out T
	mcx.Run(func() { out = fn() })
	return out
}

func boxed(v datum.IntoDatum) pgsys.Datum {
	d, _ := v.IntoDatum()
	return d
}

func (r routines) equal(a, b datum.IntoDatum) bool {
	return scratch(func() bool {
		d, _ := pgsys.DirectFunctionCall(r.eq, boxed(a), boxed(b))
		return d.Bool()
	})
}

func (r routines) compare(a, b datum.IntoDatum) int {
	return scratch(func() int {
		d, _ := pgsys.DirectFunctionCall(r.cmp, boxed(a), boxed(b))
		return cmp.Compare(d.Int32(), 0)
	})
}

func (r routines) hashOf(v datum.IntoDatum) int32 {
	return scratch(func() int32 {
		d, _ := pgsys.DirectFunctionCall(r.hash, boxed(v))
		return d.Int32()
	})
}

// extractPart returns false when the engine yields null for the field, as it
// does for most fields of infinite values.
func (r routines) extractPart(p Part, v datum.IntoDatum) (float64, bool) {
	type result struct {
		v  float64
		ok bool
	}
	res := scratch(func() result {
		d, ok := pgsys.DirectFunctionCall(r.extract, boxed(p), boxed(v))
		if !ok {
			return result{}
		}
		return result{d.Float8(), true}
	})
	return res.v, res.ok
}

func (r routines) format(v datum.IntoDatum) string {
	return scratch(func() string {
		d, _ := pgsys.DirectFunctionCall(r.out, boxed(v))
		return pgsys.CString(d.Pointer())
	})
}

func reportAsError(rep *pgsys.ErrorReport) error { return rep }

// parse runs the input routine. Malformed and out of range input comes back
// as the engine's report; any other engine error keeps propagating.
func parse[T any, P datum.FromDatum[T]](r routines, s string) (T, error) {
	var v T
	err := scratch(func() error {
		return pgsys.PgTry(func() error {
			d, _ := pgsys.DirectFunctionCall(r.in,
				pgsys.PointerDatum(pgsys.Pstrdup(s)),
				pgsys.OidDatum(pgsys.InvalidOid),
				pgsys.Int32Datum(-1))
			P(&v).FromDatum(d)
			return nil
		}).
			CatchWhen(pgsys.ErrcodeDatetimeFieldOverflow, reportAsError).
			CatchWhen(pgsys.ErrcodeInvalidDatetimeFormat, reportAsError).
			Execute()
	})
	return v, err
}
