package datetime

import (
	"github.com/hugr-lab/pgext-go/oid"
	"github.com/hugr-lab/pgext-go/pgsys"
)

// Date is a calendar date, counted in days from 2000-01-01.
type Date pgsys.DateADT

func (v Date) IntoDatum() (pgsys.Datum, bool) { return pgsys.Int32Datum(int32(v)), false }
func (v Date) TypeOid() oid.BuiltinOid        { return oid.DateOid }
func (v *Date) FromDatum(d pgsys.Datum)       { *v = Date(d.Int32()) }

func (v Date) Equal(o Date) bool              { return dateRoutines.equal(v, o) }
func (v Date) Compare(o Date) int             { return dateRoutines.compare(v, o) }
func (v Date) Hash() int32                    { return dateRoutines.hashOf(v) }
func (v Date) Extract(p Part) (float64, bool) { return dateRoutines.extractPart(p, v) }
func (v Date) String() string                 { return dateRoutines.format(v) }

// ParseDate parses the engine's textual date input.
func ParseDate(s string) (Date, error) { return parse[Date](dateRoutines, s) }

// Time is a time of day in microseconds.
type Time pgsys.TimeADT

func (v Time) IntoDatum() (pgsys.Datum, bool) { return pgsys.Int64Datum(int64(v)), false }
func (v Time) TypeOid() oid.BuiltinOid        { return oid.TimeOid }
func (v *Time) FromDatum(d pgsys.Datum)       { *v = Time(d.Int64()) }

func (v Time) Equal(o Time) bool              { return timeRoutines.equal(v, o) }
func (v Time) Compare(o Time) int             { return timeRoutines.compare(v, o) }
func (v Time) Hash() int32                    { return timeRoutines.hashOf(v) }
func (v Time) Extract(p Part) (float64, bool) { return timeRoutines.extractPart(p, v) }
func (v Time) String() string                 { return timeRoutines.format(v) }

func ParseTime(s string) (Time, error) { return parse[Time](timeRoutines, s) }

// TimeTz is a time of day with a zone. Zone is in seconds west of UTC, the
// way the engine stores it.
type TimeTz pgsys.TimeTzADT

// NewTimeTz builds a value from microseconds and an offset east of UTC.
func NewTimeTz(usec int64, offsetEast int32) TimeTz {
	return TimeTz{Time: usec, Zone: -offsetEast}
}

func (v TimeTz) IntoDatum() (pgsys.Datum, bool) {
	return pgsys.TimeTzADTDatum(pgsys.TimeTzADT(v)), false
}

func (v TimeTz) TypeOid() oid.BuiltinOid { return oid.TimetzOid }

func (v *TimeTz) FromDatum(d pgsys.Datum) { *v = TimeTz(pgsys.DatumGetTimeTzADT(d)) }

func (v TimeTz) Equal(o TimeTz) bool            { return timetzRoutines.equal(v, o) }
func (v TimeTz) Compare(o TimeTz) int           { return timetzRoutines.compare(v, o) }
func (v TimeTz) Hash() int32                    { return timetzRoutines.hashOf(v) }
func (v TimeTz) Extract(p Part) (float64, bool) { return timetzRoutines.extractPart(p, v) }
func (v TimeTz) String() string                 { return timetzRoutines.format(v) }

func ParseTimeTz(s string) (TimeTz, error) { return parse[TimeTz](timetzRoutines, s) }

// Timestamp is a zone-less point in time, in microseconds from
// 2000-01-01 00:00:00.
type Timestamp pgsys.Timestamp

func (v Timestamp) IntoDatum() (pgsys.Datum, bool) { return pgsys.Int64Datum(int64(v)), false }
func (v Timestamp) TypeOid() oid.BuiltinOid        { return oid.TimestampOid }
func (v *Timestamp) FromDatum(d pgsys.Datum)       { *v = Timestamp(d.Int64()) }

func (v Timestamp) Equal(o Timestamp) bool         { return timestampRoutines.equal(v, o) }
func (v Timestamp) Compare(o Timestamp) int        { return timestampRoutines.compare(v, o) }
func (v Timestamp) Hash() int32                    { return timestampRoutines.hashOf(v) }
func (v Timestamp) Extract(p Part) (float64, bool) { return timestampRoutines.extractPart(p, v) }
func (v Timestamp) String() string                 { return timestampRoutines.format(v) }

func ParseTimestamp(s string) (Timestamp, error) { return parse[Timestamp](timestampRoutines, s) }

// TimestampTz is an absolute point in time in microseconds from
// 2000-01-01 00:00:00 UTC. It prints in the session time zone.
type TimestampTz pgsys.Timestamp

func (v TimestampTz) IntoDatum() (pgsys.Datum, bool) { return pgsys.Int64Datum(int64(v)), false }
func (v TimestampTz) TypeOid() oid.BuiltinOid        { return oid.TimestamptzOid }
func (v *TimestampTz) FromDatum(d pgsys.Datum)       { *v = TimestampTz(d.Int64()) }

func (v TimestampTz) Equal(o TimestampTz) bool       { return timestamptzRoutines.equal(v, o) }
func (v TimestampTz) Compare(o TimestampTz) int      { return timestamptzRoutines.compare(v, o) }
func (v TimestampTz) Hash() int32                    { return timestamptzRoutines.hashOf(v) }
func (v TimestampTz) Extract(p Part) (float64, bool) { return timestamptzRoutines.extractPart(p, v) }
func (v TimestampTz) String() string                 { return timestamptzRoutines.format(v) }

func ParseTimestampTz(s string) (TimestampTz, error) {
	return parse[TimestampTz](timestamptzRoutines, s)
}

// Interval is a span of months, days and microseconds kept apart, since
// their lengths are not fixed relative to one another.
type Interval pgsys.Interval

func (v Interval) IntoDatum() (pgsys.Datum, bool) {
	return pgsys.IntervalDatum(pgsys.Interval(v)), false
}

func (v Interval) TypeOid() oid.BuiltinOid { return oid.IntervalOid }

func (v *Interval) FromDatum(d pgsys.Datum) { *v = Interval(pgsys.DatumGetInterval(d)) }

// Equal reports whether the spans are equal once normalized; 1 day equals
// 24 hours.
func (v Interval) Equal(o Interval) bool { return intervalRoutines.equal(v, o) }

func (v Interval) Compare(o Interval) int         { return intervalRoutines.compare(v, o) }
func (v Interval) Hash() int32                    { return intervalRoutines.hashOf(v) }
func (v Interval) Extract(p Part) (float64, bool) { return intervalRoutines.extractPart(p, v) }
func (v Interval) String() string                 { return intervalRoutines.format(v) }

func ParseInterval(s string) (Interval, error) { return parse[Interval](intervalRoutines, s) }
