package pgsys

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"github.com/zeebo/xxh3"
)

const (
	dateTypeName        = "date"
	timeTypeName        = "time without time zone"
	timeTzTypeName      = "time with time zone"
	timestampTypeName   = "timestamp without time zone"
	timestampTzTypeName = "timestamp with time zone"
	intervalTypeName    = "interval"
)

type dtUnit int

const (
	unitCentury dtUnit = iota
	unitDay
	unitDecade
	unitDow
	unitDoy
	unitEpoch
	unitHour
	unitIsoDow
	unitIsoYear
	unitJulian
	unitMicroseconds
	unitMillennium
	unitMilliseconds
	unitMinute
	unitMonth
	unitQuarter
	unitSecond
	unitTimezone
	unitTimezoneHour
	unitTimezoneMinute
	unitWeek
	unitYear
)

var dtUnitNames = map[dtUnit][]string{
	unitCentury:        {"century", "centuries", "c"},
	unitDay:            {"day", "days", "d"},
	unitDecade:         {"decade", "decades"},
	unitDow:            {"dow"},
	unitDoy:            {"doy"},
	unitEpoch:          {"epoch"},
	unitHour:           {"hour", "hours", "h", "hr", "hrs"},
	unitIsoDow:         {"isodow"},
	unitIsoYear:        {"isoyear"},
	unitJulian:         {"julian", "j"},
	unitMicroseconds:   {"microseconds", "microsecond", "usec", "usecs", "us"},
	unitMillennium:     {"millennium", "millennia", "mil", "mils"},
	unitMilliseconds:   {"milliseconds", "millisecond", "msec", "msecs", "ms"},
	unitMinute:         {"minute", "minutes", "min", "mins", "m"},
	unitMonth:          {"month", "months", "mon", "mons"},
	unitQuarter:        {"quarter", "qtr"},
	unitSecond:         {"second", "seconds", "sec", "secs", "s"},
	unitTimezone:       {"timezone"},
	unitTimezoneHour:   {"timezone_hour"},
	unitTimezoneMinute: {"timezone_minute"},
	unitWeek:           {"week", "weeks", "w"},
	unitYear:           {"year", "years", "y", "yr", "yrs"},
}

var dtUnits = func() map[string]dtUnit {
	m := make(map[string]dtUnit)
	for u, names := range dtUnitNames {
		for _, n := range names {
			m[n] = u
		}
	}
	return m
}()

func decodeUnit(d Datum, typeName string) (dtUnit, string) {
	name := DowncaseIdentifier(TextDatumGetCString(d))
	u, ok := dtUnits[name]
	if !ok {
		Ereportf(ERROR, ErrcodeInvalidParameterValue, "unit \"%s\" not recognized for type %s", name, typeName)
	}
	return u, name
}

func unsupportedUnit(name, typeName string) {
	Ereportf(ERROR, ErrcodeFeatureNotSupported, "unit \"%s\" not supported for type %s", name, typeName)
}

// isMonotonicUnit reports whether infinite inputs extract to an infinite
// value for the unit rather than null.
func isMonotonicUnit(u dtUnit) bool {
	switch u {
	case unitYear, unitDecade, unitCentury, unitMillennium, unitJulian, unitIsoYear, unitEpoch:
		return true
	}
	return false
}

// Date2IsoWeek returns the ISO 8601 week number of a date.
func Date2IsoWeek(year, mon, mday int) int {
	dayn := Date2J(year, mon, mday)
	day4 := Date2J(year, 1, 4)
	day0 := J2Day(day4 - 1)
	if dayn < day4-day0 {
		day4 = Date2J(year-1, 1, 4)
		day0 = J2Day(day4 - 1)
	}
	result := (dayn-(day4-day0))/7 + 1
	if result >= 52 {
		day4 = Date2J(year+1, 1, 4)
		day0 = J2Day(day4 - 1)
		if dayn >= day4-day0 {
			result = (dayn-(day4-day0))/7 + 1
		}
	}
	return result
}

// Date2IsoYear returns the ISO 8601 week-numbering year of a date.
func Date2IsoYear(year, mon, mday int) int {
	dayn := Date2J(year, mon, mday)
	day4 := Date2J(year, 1, 4)
	day0 := J2Day(day4 - 1)
	if dayn < day4-day0 {
		day4 = Date2J(year-1, 1, 4)
		day0 = J2Day(day4 - 1)
		year--
	}
	result := (dayn-(day4-day0))/7 + 1
	if result >= 52 {
		day4 = Date2J(year+1, 1, 4)
		day0 = J2Day(day4 - 1)
		if dayn >= day4-day0 {
			year++
		}
	}
	return year
}

// extractTm computes calendar and clock units of a broken-down time.
func extractTm(u dtUnit, tm Tm) (float64, bool) {
	year := tm.Year
	switch u {
	case unitMicroseconds:
		return float64(tm.Sec)*1e6 + float64(tm.Fsec), true
	case unitMilliseconds:
		return float64(tm.Sec)*1e3 + float64(tm.Fsec)/1e3, true
	case unitSecond:
		return float64(tm.Sec) + float64(tm.Fsec)/1e6, true
	case unitMinute:
		return float64(tm.Min), true
	case unitHour:
		return float64(tm.Hour), true
	case unitDay:
		return float64(tm.Mday), true
	case unitMonth:
		return float64(tm.Mon), true
	case unitQuarter:
		return float64((tm.Mon-1)/3 + 1), true
	case unitWeek:
		return float64(Date2IsoWeek(year, tm.Mon, tm.Mday)), true
	case unitYear:
		if year > 0 {
			return float64(year), true
		}
		return float64(year - 1), true
	case unitDecade:
		if year >= 0 {
			return float64(year / 10), true
		}
		return float64(-((8 - (year - 1)) / 10)), true
	case unitCentury:
		if year > 0 {
			return float64((year + 99) / 100), true
		}
		return float64(-((99 - (year - 1)) / 100)), true
	case unitMillennium:
		if year > 0 {
			return float64((year + 999) / 1000), true
		}
		return float64(-((999 - (year - 1)) / 1000)), true
	case unitJulian:
		secs := float64(tm.Hour*3600+tm.Min*60+tm.Sec) + float64(tm.Fsec)/1e6
		return float64(Date2J(year, tm.Mon, tm.Mday)) + secs/SecsPerDay, true
	case unitIsoYear:
		iy := Date2IsoYear(year, tm.Mon, tm.Mday)
		if iy <= 0 {
			iy--
		}
		return float64(iy), true
	case unitDow:
		return float64(J2Day(Date2J(year, tm.Mon, tm.Mday))), true
	case unitIsoDow:
		dow := J2Day(Date2J(year, tm.Mon, tm.Mday))
		if dow == 0 {
			dow = 7
		}
		return float64(dow), true
	case unitDoy:
		return float64(Date2J(year, tm.Mon, tm.Mday) - Date2J(year, 1, 1) + 1), true
	}
	return 0, false
}

func float8Result(fcinfo *FunctionCallInfo, v float64, ok bool) Datum {
	if !ok {
		return ReturnNull(fcinfo)
	}
	return Float8Datum(v)
}

func hashInt64(v int64) Datum {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(v))
	return Int32Datum(int32(xxh3.Hash(buf[:])))
}

func cmpInt64(a, b int64) int32 {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func cstringArg(fcinfo *FunctionCallInfo) string {
	return CString(fcinfo.Arg(0).Pointer())
}

func cstringResult(s string) Datum {
	return PointerDatum(Pstrdup(s))
}

func encodeDate(y, m, d int) (string, string) {
	if y > 0 {
		return fmt.Sprintf("%04d-%02d-%02d", y, m, d), ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", 1-y, m, d), " BC"
}

func appendSeconds(b *strings.Builder, sec int, fsec int64) {
	fmt.Fprintf(b, "%02d", sec)
	if fsec != 0 {
		frac := strings.TrimRight(fmt.Sprintf("%06d", abs64(fsec)), "0")
		b.WriteString(".")
		b.WriteString(frac)
	}
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

func encodeTime(b *strings.Builder, usec int64) {
	h := usec / USecsPerHour
	usec -= h * USecsPerHour
	m := usec / USecsPerMinute
	usec -= m * USecsPerMinute
	s := usec / USecsPerSec
	fmt.Fprintf(b, "%02d:%02d:", h, m)
	appendSeconds(b, int(s), usec-s*USecsPerSec)
}

func encodeTz(b *strings.Builder, tzWest int) {
	east := -tzWest
	sign := '+'
	if east < 0 {
		sign = '-'
		east = -east
	}
	h, m, s := east/3600, (east/60)%60, east%60
	fmt.Fprintf(b, "%c%02d", sign, h)
	if m != 0 || s != 0 {
		fmt.Fprintf(b, ":%02d", m)
	}
	if s != 0 {
		fmt.Fprintf(b, ":%02d", s)
	}
}

// DateIn parses a date from its text form.
func DateIn(fcinfo *FunctionCallInfo) Datum {
	return Int32Datum(int32(parseDateIn(cstringArg(fcinfo))))
}

// DateOut formats a date.
func DateOut(fcinfo *FunctionCallInfo) Datum {
	return cstringResult(FormatDate(DateADT(fcinfo.Arg(0).Int32())))
}

// FormatDate renders a date in ISO style.
func FormatDate(d DateADT) string {
	switch d {
	case DateNoEnd:
		return "infinity"
	case DateNoBegin:
		return "-infinity"
	}
	ds, era := encodeDate(J2Date(int(d) + PostgresEpochJDate))
	return ds + era
}

func DateEq(fcinfo *FunctionCallInfo) Datum {
	return BoolDatum(fcinfo.Arg(0).Int32() == fcinfo.Arg(1).Int32())
}

func DateCmp(fcinfo *FunctionCallInfo) Datum {
	return Int32Datum(cmpInt64(int64(fcinfo.Arg(0).Int32()), int64(fcinfo.Arg(1).Int32())))
}

// DateHash hashes a date as an eight byte integer.
func DateHash(fcinfo *FunctionCallInfo) Datum {
	return hashInt64(int64(fcinfo.Arg(0).Int32()))
}

// ExtractDate implements extract(unit from date).
func ExtractDate(fcinfo *FunctionCallInfo) Datum {
	u, name := decodeUnit(fcinfo.Arg(0), dateTypeName)
	d := fcinfo.Arg(1).Int32()
	switch u {
	case unitHour, unitMinute, unitSecond, unitMilliseconds, unitMicroseconds,
		unitTimezone, unitTimezoneHour, unitTimezoneMinute:
		unsupportedUnit(name, dateTypeName)
	}
	if d == DateNoBegin || d == DateNoEnd {
		if !isMonotonicUnit(u) {
			return ReturnNull(fcinfo)
		}
		if d == DateNoEnd {
			return Float8Datum(math.Inf(1))
		}
		return Float8Datum(math.Inf(-1))
	}
	if u == unitEpoch {
		return Float8Datum(float64(int64(d)+PostgresEpochJDate-UnixEpochJDate) * SecsPerDay)
	}
	var tm Tm
	tm.Year, tm.Mon, tm.Mday = J2Date(int(d) + PostgresEpochJDate)
	v, ok := extractTm(u, tm)
	return float8Result(fcinfo, v, ok)
}

// TimeIn parses a time of day.
func TimeIn(fcinfo *FunctionCallInfo) Datum {
	return Int64Datum(int64(parseTimeIn(cstringArg(fcinfo))))
}

// TimeOut formats a time of day.
func TimeOut(fcinfo *FunctionCallInfo) Datum {
	return cstringResult(FormatTime(TimeADT(fcinfo.Arg(0).Int64())))
}

// FormatTime renders a time of day.
func FormatTime(t TimeADT) string {
	var b strings.Builder
	encodeTime(&b, int64(t))
	return b.String()
}

func TimeEq(fcinfo *FunctionCallInfo) Datum {
	return BoolDatum(fcinfo.Arg(0).Int64() == fcinfo.Arg(1).Int64())
}

func TimeCmp(fcinfo *FunctionCallInfo) Datum {
	return Int32Datum(cmpInt64(fcinfo.Arg(0).Int64(), fcinfo.Arg(1).Int64()))
}

func TimeHash(fcinfo *FunctionCallInfo) Datum {
	return hashInt64(fcinfo.Arg(0).Int64())
}

func timeTm(usec int64) Tm {
	var tm Tm
	tm.Hour = int(usec / USecsPerHour)
	usec -= int64(tm.Hour) * USecsPerHour
	tm.Min = int(usec / USecsPerMinute)
	usec -= int64(tm.Min) * USecsPerMinute
	tm.Sec = int(usec / USecsPerSec)
	tm.Fsec = usec - int64(tm.Sec)*USecsPerSec
	return tm
}

func extractClock(u dtUnit, usec int64) (float64, bool) {
	switch u {
	case unitMicroseconds, unitMilliseconds, unitSecond, unitMinute, unitHour:
		return extractTm(u, timeTm(usec))
	}
	return 0, false
}

// ExtractTime implements extract(unit from time).
func ExtractTime(fcinfo *FunctionCallInfo) Datum {
	u, name := decodeUnit(fcinfo.Arg(0), timeTypeName)
	t := fcinfo.Arg(1).Int64()
	if u == unitEpoch {
		return Float8Datum(float64(t) / 1e6)
	}
	v, ok := extractClock(u, t)
	if !ok {
		unsupportedUnit(name, timeTypeName)
	}
	return Float8Datum(v)
}

// TimetzIn parses a time of day with zone.
func TimetzIn(fcinfo *FunctionCallInfo) Datum {
	return TimeTzADTDatum(parseTimeTzIn(cstringArg(fcinfo)))
}

// TimetzOut formats a time of day with zone.
func TimetzOut(fcinfo *FunctionCallInfo) Datum {
	return cstringResult(FormatTimeTz(DatumGetTimeTzADT(fcinfo.Arg(0))))
}

// FormatTimeTz renders a time of day with its zone offset.
func FormatTimeTz(t TimeTzADT) string {
	var b strings.Builder
	encodeTime(&b, t.Time)
	encodeTz(&b, int(t.Zone))
	return b.String()
}

func timetzCmp(a, b TimeTzADT) int32 {
	t1 := a.Time + int64(a.Zone)*USecsPerSec
	t2 := b.Time + int64(b.Zone)*USecsPerSec
	if c := cmpInt64(t1, t2); c != 0 {
		return c
	}
	return cmpInt64(int64(a.Zone), int64(b.Zone))
}

func TimetzEq(fcinfo *FunctionCallInfo) Datum {
	return BoolDatum(timetzCmp(DatumGetTimeTzADT(fcinfo.Arg(0)), DatumGetTimeTzADT(fcinfo.Arg(1))) == 0)
}

func TimetzCmp(fcinfo *FunctionCallInfo) Datum {
	return Int32Datum(timetzCmp(DatumGetTimeTzADT(fcinfo.Arg(0)), DatumGetTimeTzADT(fcinfo.Arg(1))))
}

func TimetzHash(fcinfo *FunctionCallInfo) Datum {
	t := DatumGetTimeTzADT(fcinfo.Arg(0))
	var buf [12]byte
	binary.LittleEndian.PutUint64(buf[:8], uint64(t.Time))
	binary.LittleEndian.PutUint32(buf[8:], uint32(t.Zone))
	return Int32Datum(int32(xxh3.Hash(buf[:])))
}

// ExtractTimetz implements extract(unit from timetz).
func ExtractTimetz(fcinfo *FunctionCallInfo) Datum {
	u, name := decodeUnit(fcinfo.Arg(0), timeTzTypeName)
	t := DatumGetTimeTzADT(fcinfo.Arg(1))
	east := -int(t.Zone)
	switch u {
	case unitEpoch:
		return Float8Datum(float64(t.Time)/1e6 + float64(t.Zone))
	case unitTimezone:
		return Float8Datum(float64(east))
	case unitTimezoneHour:
		return Float8Datum(float64(east / 3600))
	case unitTimezoneMinute:
		return Float8Datum(float64((east / 60) % 60))
	}
	v, ok := extractClock(u, t.Time)
	if !ok {
		unsupportedUnit(name, timeTzTypeName)
	}
	return Float8Datum(v)
}

// TimestampIn parses a timestamp without zone.
func TimestampIn(fcinfo *FunctionCallInfo) Datum {
	return Int64Datum(parseTimestampIn(cstringArg(fcinfo), false))
}

// TimestampOut formats a timestamp without zone.
func TimestampOut(fcinfo *FunctionCallInfo) Datum {
	return cstringResult(FormatTimestamp(fcinfo.Arg(0).Int64(), false))
}

// FormatTimestamp renders a timestamp; with withTz the value is shown in
// the session zone with its offset.
func FormatTimestamp(ts int64, withTz bool) string {
	switch ts {
	case DTNoEnd:
		return "infinity"
	case DTNoBegin:
		return "-infinity"
	}
	loc := SessionTimeZone()
	if !withTz {
		loc = nil
	}
	tm, tzWest, ok := Timestamp2Tm(ts, loc)
	if !ok {
		Ereport(ERROR, ErrcodeDatetimeFieldOverflow, "timestamp out of range")
	}
	var b strings.Builder
	ds, era := encodeDate(tm.Year, tm.Mon, tm.Mday)
	b.WriteString(ds)
	b.WriteByte(' ')
	encodeTime(&b, int64(tm.Hour)*USecsPerHour+int64(tm.Min)*USecsPerMinute+int64(tm.Sec)*USecsPerSec+tm.Fsec)
	if withTz {
		encodeTz(&b, tzWest)
	}
	b.WriteString(era)
	return b.String()
}

func TimestampEq(fcinfo *FunctionCallInfo) Datum {
	return BoolDatum(fcinfo.Arg(0).Int64() == fcinfo.Arg(1).Int64())
}

func TimestampCmp(fcinfo *FunctionCallInfo) Datum {
	return Int32Datum(cmpInt64(fcinfo.Arg(0).Int64(), fcinfo.Arg(1).Int64()))
}

func TimestampHash(fcinfo *FunctionCallInfo) Datum {
	return hashInt64(fcinfo.Arg(0).Int64())
}

func extractTimestamp(fcinfo *FunctionCallInfo, withTz bool) Datum {
	typeName := timestampTypeName
	if withTz {
		typeName = timestampTzTypeName
	}
	u, name := decodeUnit(fcinfo.Arg(0), typeName)
	ts := fcinfo.Arg(1).Int64()
	tzUnit := u == unitTimezone || u == unitTimezoneHour || u == unitTimezoneMinute
	if tzUnit && !withTz {
		unsupportedUnit(name, typeName)
	}
	if ts == DTNoBegin || ts == DTNoEnd {
		if !isMonotonicUnit(u) {
			return ReturnNull(fcinfo)
		}
		if ts == DTNoEnd {
			return Float8Datum(math.Inf(1))
		}
		return Float8Datum(math.Inf(-1))
	}
	if u == unitEpoch {
		return Float8Datum(float64(ts)/1e6 + unixEpochOffsetSecs)
	}
	loc := SessionTimeZone()
	if !withTz {
		loc = nil
	}
	tm, tzWest, ok := Timestamp2Tm(ts, loc)
	if !ok {
		Ereport(ERROR, ErrcodeDatetimeFieldOverflow, "timestamp out of range")
	}
	switch u {
	case unitTimezone:
		return Float8Datum(float64(-tzWest))
	case unitTimezoneHour:
		return Float8Datum(float64(-tzWest / 3600))
	case unitTimezoneMinute:
		return Float8Datum(float64((-tzWest / 60) % 60))
	}
	v, ok := extractTm(u, tm)
	return float8Result(fcinfo, v, ok)
}

// ExtractTimestamp implements extract(unit from timestamp).
func ExtractTimestamp(fcinfo *FunctionCallInfo) Datum { return extractTimestamp(fcinfo, false) }

// TimestamptzIn parses a timestamp with zone.
func TimestamptzIn(fcinfo *FunctionCallInfo) Datum {
	return Int64Datum(parseTimestampIn(cstringArg(fcinfo), true))
}

// TimestamptzOut formats a timestamp with zone in the session zone.
func TimestamptzOut(fcinfo *FunctionCallInfo) Datum {
	return cstringResult(FormatTimestamp(fcinfo.Arg(0).Int64(), true))
}

// ExtractTimestamptz implements extract(unit from timestamptz).
func ExtractTimestamptz(fcinfo *FunctionCallInfo) Datum { return extractTimestamp(fcinfo, true) }

// IntervalIn parses an interval.
func IntervalIn(fcinfo *FunctionCallInfo) Datum {
	return IntervalDatum(parseIntervalIn(cstringArg(fcinfo)))
}

// IntervalOut formats an interval in the engine's traditional style.
func IntervalOut(fcinfo *FunctionCallInfo) Datum {
	return cstringResult(FormatInterval(DatumGetInterval(fcinfo.Arg(0))))
}

func addIntervalPart(b *strings.Builder, value int64, units string, isZero, isBefore *bool) {
	if value == 0 {
		return
	}
	if !*isZero {
		b.WriteByte(' ')
	}
	if *isBefore && value > 0 {
		b.WriteByte('+')
	}
	plural := ""
	if value != 1 {
		plural = "s"
	}
	fmt.Fprintf(b, "%d %s%s", value, units, plural)
	*isBefore = value < 0
	*isZero = false
}

// FormatInterval renders an interval, e.g. "1 year 2 mons 3 days 04:05:06".
func FormatInterval(iv Interval) string {
	var b strings.Builder
	isZero, isBefore := true, false
	addIntervalPart(&b, int64(iv.Month/MonthsPerYear), "year", &isZero, &isBefore)
	addIntervalPart(&b, int64(iv.Month%MonthsPerYear), "mon", &isZero, &isBefore)
	addIntervalPart(&b, int64(iv.Day), "day", &isZero, &isBefore)

	t := iv.Time
	hour := t / USecsPerHour
	t -= hour * USecsPerHour
	minute := t / USecsPerMinute
	t -= minute * USecsPerMinute
	sec := t / USecsPerSec
	fsec := t - sec*USecsPerSec
	if isZero || hour != 0 || minute != 0 || sec != 0 || fsec != 0 {
		minus := hour < 0 || minute < 0 || sec < 0 || fsec < 0
		if !isZero {
			b.WriteByte(' ')
		}
		switch {
		case minus:
			b.WriteByte('-')
		case isBefore:
			b.WriteByte('+')
		}
		fmt.Fprintf(&b, "%02d:%02d:", abs64(hour), abs64(minute))
		appendSeconds(&b, int(abs64(sec)), abs64(fsec))
	}
	return b.String()
}

// intervalSpan normalizes an interval to whole days and a remainder within a
// day, treating a month as 30 days.
func intervalSpan(iv Interval) (days, usec int64) {
	days = int64(iv.Month)*DaysPerMonth + int64(iv.Day)
	q := floorDiv(iv.Time, USecsPerDay)
	return days + q, iv.Time - q*USecsPerDay
}

// IntervalCompare orders intervals by their normalized span.
func IntervalCompare(a, b Interval) int32 {
	ad, at := intervalSpan(a)
	bd, bt := intervalSpan(b)
	if c := cmpInt64(ad, bd); c != 0 {
		return c
	}
	return cmpInt64(at, bt)
}

func IntervalEq(fcinfo *FunctionCallInfo) Datum {
	return BoolDatum(IntervalCompare(DatumGetInterval(fcinfo.Arg(0)), DatumGetInterval(fcinfo.Arg(1))) == 0)
}

func IntervalCmp(fcinfo *FunctionCallInfo) Datum {
	return Int32Datum(IntervalCompare(DatumGetInterval(fcinfo.Arg(0)), DatumGetInterval(fcinfo.Arg(1))))
}

// IntervalHash hashes the normalized span so equal intervals hash alike.
func IntervalHash(fcinfo *FunctionCallInfo) Datum {
	days, usec := intervalSpan(DatumGetInterval(fcinfo.Arg(0)))
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[:8], uint64(days))
	binary.LittleEndian.PutUint64(buf[8:], uint64(usec))
	return Int32Datum(int32(xxh3.Hash(buf[:])))
}

// ExtractInterval implements extract(unit from interval).
func ExtractInterval(fcinfo *FunctionCallInfo) Datum {
	u, name := decodeUnit(fcinfo.Arg(0), intervalTypeName)
	iv := DatumGetInterval(fcinfo.Arg(1))
	year := int64(iv.Month / MonthsPerYear)
	mon := int64(iv.Month % MonthsPerYear)
	t := iv.Time
	hour := t / USecsPerHour
	t -= hour * USecsPerHour
	minute := t / USecsPerMinute
	t -= minute * USecsPerMinute
	sec := t / USecsPerSec
	fsec := t - sec*USecsPerSec

	var v float64
	switch u {
	case unitMicroseconds:
		v = float64(sec)*1e6 + float64(fsec)
	case unitMilliseconds:
		v = float64(sec)*1e3 + float64(fsec)/1e3
	case unitSecond:
		v = float64(sec) + float64(fsec)/1e6
	case unitMinute:
		v = float64(minute)
	case unitHour:
		v = float64(hour)
	case unitDay:
		v = float64(iv.Day)
	case unitMonth:
		v = float64(mon)
	case unitQuarter:
		v = float64(mon/3 + 1)
	case unitYear:
		v = float64(year)
	case unitDecade:
		v = float64(year / 10)
	case unitCentury:
		v = float64(year / 100)
	case unitMillennium:
		v = float64(year / 1000)
	case unitEpoch:
		v = 365.25*SecsPerDay*float64(year) +
			DaysPerMonth*SecsPerDay*float64(mon) +
			SecsPerDay*float64(iv.Day) +
			float64(iv.Time)/1e6
	default:
		unsupportedUnit(name, intervalTypeName)
	}
	return Float8Datum(v)
}
