package pgsys

import (
	"math"
	"strings"
	"sync"
	"time"
	"unsafe"
)

const (
	USecsPerSec    int64 = 1_000_000
	USecsPerMinute       = 60 * USecsPerSec
	USecsPerHour         = 60 * USecsPerMinute
	USecsPerDay          = 24 * USecsPerHour
	SecsPerDay           = 86400
	DaysPerMonth         = 30
	MonthsPerYear        = 12

	// PostgresEpochJDate is the Julian day of 2000-01-01, the zero of dates
	// and timestamps.
	PostgresEpochJDate = 2451545
	// UnixEpochJDate is the Julian day of 1970-01-01.
	UnixEpochJDate = 2440588

	unixEpochOffsetSecs = (PostgresEpochJDate - UnixEpochJDate) * SecsPerDay

	DateNoBegin = math.MinInt32
	DateNoEnd   = math.MaxInt32
	DTNoBegin   = math.MinInt64
	DTNoEnd     = math.MaxInt64

	// minTimestamp is 4714-11-24 00:00:00 BC; endTimestamp is 294277-01-01.
	minTimestamp int64 = -211813488000000000
	endTimestamp int64 = 9223371331200000000

	// Julian day range of dates: 4714-11-24 BC up to 5874898-01-01.
	dateMinJulian = 0
	dateEndJulian = 2147483494

	maxTzDispSecs = 15 * 3600
)

// DateADT is days since 2000-01-01.
type DateADT int32

// TimeADT is microseconds since midnight.
type TimeADT int64

// TimeTzADT is a time of day with a fixed zone offset in seconds west of
// UTC.
type TimeTzADT struct {
	Time int64
	Zone int32
}

// Timestamp is microseconds since 2000-01-01 00:00:00 (local for timestamp,
// UTC for timestamptz).
type Timestamp int64

// Interval is a span with separately kept months and days.
type Interval struct {
	Time  int64
	Day   int32
	Month int32
}

// Tm is a broken-down time. Year 0 is 1 BC.
type Tm struct {
	Year, Mon, Mday int
	Hour, Min, Sec  int
	Fsec            int64
	Gmtoff          int
	Zone            string
}

// Date2J returns the Julian day of a Gregorian date.
func Date2J(year, month, day int) int {
	if month > 2 {
		month++
		year += 4800
	} else {
		month += 13
		year += 4799
	}
	century := year / 100
	julian := year*365 - 32167
	julian += year/4 - century + century/4
	julian += 7834*month/256 + day
	return julian
}

// J2Date converts a Julian day back to a Gregorian date.
func J2Date(jd int) (year, month, day int) {
	julian := uint32(jd)
	julian += 32044
	quad := julian / 146097
	extra := (julian-quad*146097)*4 + 3
	julian += 60 + quad*3 + extra/146097
	quad = julian / 1461
	julian -= quad * 1461
	y := julian * 4 / 1461
	if y != 0 {
		julian = (julian+305)%365 + 123
	} else {
		julian = (julian+306)%366 + 123
	}
	y += quad * 4
	year = int(y) - 4800
	quad = julian * 2141 / 65536
	day = int(julian - 7834*quad/256)
	month = int((quad+10)%MonthsPerYear + 1)
	return year, month, day
}

// J2Day returns the day of week of a Julian day, Sunday being 0.
func J2Day(jd int) int {
	d := (jd + 1) % 7
	if d < 0 {
		d += 7
	}
	return d
}

func isLeap(y int) bool {
	return y%4 == 0 && (y%100 != 0 || y%400 == 0)
}

var daysInMonth = [2][13]int{
	{0, 31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31},
	{0, 31, 29, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31},
}

// DaysInMonth returns the length of a month.
func DaysInMonth(year, month int) int {
	if isLeap(year) {
		return daysInMonth[1][month]
	}
	return daysInMonth[0][month]
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// IsValidTimestamp reports whether ts is a finite timestamp in range.
func IsValidTimestamp(ts int64) bool {
	return ts >= minTimestamp && ts < endTimestamp
}

// Timestamp2Tm breaks a timestamp down. With a non-nil loc the timestamp is
// taken as UTC and converted to the zone, and tzWest is the offset applied.
func Timestamp2Tm(dt int64, loc *time.Location) (tm Tm, tzWest int, ok bool) {
	if dt == DTNoBegin || dt == DTNoEnd || !IsValidTimestamp(dt) {
		return Tm{}, 0, false
	}
	if loc != nil {
		secs := floorDiv(dt, USecsPerSec) + unixEpochOffsetSecs
		name, off := time.Unix(secs, 0).In(loc).Zone()
		tm.Zone = name
		tm.Gmtoff = off
		tzWest = -off
		dt += int64(off) * USecsPerSec
	}
	date := floorDiv(dt, USecsPerDay)
	t := dt - date*USecsPerDay
	tm.Year, tm.Mon, tm.Mday = J2Date(int(date) + PostgresEpochJDate)
	tm.Hour = int(t / USecsPerHour)
	t -= int64(tm.Hour) * USecsPerHour
	tm.Min = int(t / USecsPerMinute)
	t -= int64(tm.Min) * USecsPerMinute
	tm.Sec = int(t / USecsPerSec)
	tm.Fsec = t - int64(tm.Sec)*USecsPerSec
	return tm, tzWest, true
}

// Tm2Timestamp assembles a timestamp, subtracting tzWest seconds of zone
// displacement.
func Tm2Timestamp(tm Tm, tzWest int) (int64, bool) {
	jd := Date2J(tm.Year, tm.Mon, tm.Mday)
	if jd < dateMinJulian || jd >= dateEndJulian {
		return 0, false
	}
	days := int64(jd - PostgresEpochJDate)
	t := int64(tm.Hour)*USecsPerHour + int64(tm.Min)*USecsPerMinute + int64(tm.Sec)*USecsPerSec + tm.Fsec
	if days > (math.MaxInt64-t)/USecsPerDay || days < math.MinInt64/USecsPerDay+1 {
		return 0, false
	}
	dt := days*USecsPerDay + t + int64(tzWest)*USecsPerSec
	if !IsValidTimestamp(dt) {
		return 0, false
	}
	return dt, true
}

// Timezone abbreviation classes returned by DecodeTimezoneAbbrev.
const (
	UnknownField = iota
	TZ
	DTZ
	DYNTZ
)

type tzAbbrev struct {
	kind   int
	offset int // seconds east of UTC
	zone   string
}

var tzAbbrevs = map[string]tzAbbrev{
	"utc":  {TZ, 0, ""},
	"gmt":  {TZ, 0, ""},
	"z":    {TZ, 0, ""},
	"zulu": {TZ, 0, ""},
	"wet":  {TZ, 0, ""},
	"west": {DTZ, 3600, ""},
	"bst":  {DTZ, 3600, ""},
	"cet":  {TZ, 3600, ""},
	"cest": {DTZ, 7200, ""},
	"eet":  {TZ, 7200, ""},
	"eest": {DTZ, 10800, ""},
	"msk":  {DYNTZ, 0, "Europe/Moscow"},
	"ist":  {TZ, 19800, ""},
	"jst":  {TZ, 32400, ""},
	"aest": {TZ, 36000, ""},
	"aedt": {DTZ, 39600, ""},
	"nzst": {TZ, 43200, ""},
	"nzdt": {DTZ, 46800, ""},
	"hst":  {TZ, -36000, ""},
	"akst": {TZ, -32400, ""},
	"akdt": {DTZ, -28800, ""},
	"pst":  {TZ, -28800, ""},
	"pdt":  {DTZ, -25200, ""},
	"mst":  {TZ, -25200, ""},
	"mdt":  {DTZ, -21600, ""},
	"cst":  {TZ, -21600, ""},
	"cdt":  {DTZ, -18000, ""},
	"est":  {TZ, -18000, ""},
	"edt":  {DTZ, -14400, ""},
}

// DowncaseIdentifier lowercases an identifier the way the engine does for
// unquoted names.
func DowncaseIdentifier(s string) string {
	return strings.ToLower(s)
}

// DecodeTimezoneAbbrev looks up a lowercase zone abbreviation. For TZ and
// DTZ the offset is in seconds east of UTC; for DYNTZ the zone to resolve it
// in is returned.
func DecodeTimezoneAbbrev(lowzone string) (kind int, offset int, loc *time.Location) {
	a, ok := tzAbbrevs[lowzone]
	if !ok {
		return UnknownField, 0, nil
	}
	if a.kind == DYNTZ {
		l, err := time.LoadLocation(a.zone)
		if err != nil {
			return UnknownField, 0, nil
		}
		return DYNTZ, 0, l
	}
	return a.kind, a.offset, nil
}

// DetermineTimeZoneAbbrevOffsetTS resolves a dynamic abbreviation at the
// given instant and returns seconds west of UTC.
func DetermineTimeZoneAbbrevOffsetTS(ts int64, loc *time.Location) (tzWest int, isDST bool) {
	secs := floorDiv(ts, USecsPerSec) + unixEpochOffsetSecs
	t := time.Unix(secs, 0).In(loc)
	_, off := t.Zone()
	return -off, t.IsDST()
}

var tzCache sync.Map

// PgTzset loads a zone from the zone database; nil when unknown.
func PgTzset(name string) *time.Location {
	if v, ok := tzCache.Load(name); ok {
		return v.(*time.Location)
	}
	if name == "" || strings.ContainsAny(name, " \t") {
		return nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil
	}
	tzCache.Store(name, loc)
	return loc
}

// resolveZone turns a zone token into a location or a fixed west offset.
func resolveZone(tok string, at func(loc *time.Location) int) (tzWest int, ok bool) {
	kind, off, loc := DecodeTimezoneAbbrev(DowncaseIdentifier(tok))
	switch kind {
	case TZ, DTZ:
		return -off, true
	case DYNTZ:
		return at(loc), true
	}
	if loc := PgTzset(tok); loc != nil {
		return at(loc), true
	}
	return 0, false
}

var (
	sessionTZ    = time.UTC
	xactStart    int64
	xactStartSet bool
)

// SetSessionTimeZone sets the zone timestamptz values are displayed in.
func SetSessionTimeZone(name string) bool {
	loc := PgTzset(name)
	if loc == nil {
		return false
	}
	sessionTZ = loc
	return true
}

// SessionTimeZone returns the session display zone.
func SessionTimeZone() *time.Location { return sessionTZ }

// GetCurrentTransactionStartTimestamp returns the start of the current
// transaction as a timestamptz.
func GetCurrentTransactionStartTimestamp() int64 {
	if xactStartSet {
		return xactStart
	}
	now := time.Now()
	return (now.Unix()-unixEpochOffsetSecs)*USecsPerSec + int64(now.Nanosecond()/1000)
}

// SetCurrentTransactionStartTimestamp pins the transaction start time.
func SetCurrentTransactionStartTimestamp(ts int64) {
	xactStart = ts
	xactStartSet = true
}

// ResetCurrentTransactionStartTimestamp returns to using the wall clock.
func ResetCurrentTransactionStartTimestamp() {
	xactStartSet = false
}

func allocTimeTz(v TimeTzADT) Datum {
	p := Palloc(int(unsafe.Sizeof(TimeTzADT{})))
	*(*TimeTzADT)(p) = v
	return PointerDatum(p)
}

func allocInterval(v Interval) Datum {
	p := Palloc(int(unsafe.Sizeof(Interval{})))
	*(*Interval)(p) = v
	return PointerDatum(p)
}

// TimeTzADTDatum copies v into the current memory context.
func TimeTzADTDatum(v TimeTzADT) Datum { return allocTimeTz(v) }

// DatumGetTimeTzADT reads a timetz datum.
func DatumGetTimeTzADT(d Datum) TimeTzADT { return *(*TimeTzADT)(d.Pointer()) }

// IntervalDatum copies v into the current memory context.
func IntervalDatum(v Interval) Datum { return allocInterval(v) }

// DatumGetInterval reads an interval datum.
func DatumGetInterval(d Datum) Interval { return *(*Interval)(d.Pointer()) }
