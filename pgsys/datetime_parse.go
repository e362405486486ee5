package pgsys

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	dateRe     = regexp.MustCompile(`^(\d{1,7})-(\d{1,2})-(\d{1,2})$`)
	timeRe     = regexp.MustCompile(`^(\d{1,2}):(\d{1,2})(?::(\d{1,2})(?:\.(\d+))?)?`)
	numTzRe    = regexp.MustCompile(`^([+-])(\d{1,2})(?::?(\d{2}))?(?::?(\d{2}))?$`)
	intervalRe = regexp.MustCompile(`^([+-])?(\d+):(\d{1,2})(?::(\d{1,2})(?:\.(\d+))?)?$`)
	isoIntvlRe = regexp.MustCompile(`^p(?:([-\d.]+)y)?(?:([-\d.]+)m)?(?:([-\d.]+)w)?(?:([-\d.]+)d)?(?:t(?:([-\d.]+)h)?(?:([-\d.]+)m)?(?:([-\d.]+)s)?)?$`)
)

type dtInput struct {
	typ   string
	input string
}

func (in dtInput) badFormat() {
	Ereportf(ERROR, ErrcodeInvalidDatetimeFormat, "invalid input syntax for type %s: \"%s\"", in.typ, in.input)
}

func (in dtInput) fieldOverflow() {
	Ereportf(ERROR, ErrcodeDatetimeFieldOverflow, "date/time field value out of range: \"%s\"", in.input)
}

func (in dtInput) valueOutOfRange() {
	Ereportf(ERROR, ErrcodeDatetimeFieldOverflow, "%s out of range: \"%s\"", in.typ, in.input)
}

func (in dtInput) tzOverflow() {
	Ereportf(ERROR, ErrcodeDatetimeFieldOverflow, "time zone displacement out of range: \"%s\"", in.input)
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// fracToUsec rounds a string of fractional second digits to microseconds.
func fracToUsec(digits string) int64 {
	if digits == "" {
		return 0
	}
	if len(digits) > 7 {
		digits = digits[:7]
	}
	for len(digits) < 7 {
		digits += "0"
	}
	v, _ := strconv.ParseInt(digits, 10, 64)
	return (v + 5) / 10
}

func stripEra(s string) (string, bool) {
	lower := strings.ToLower(s)
	switch {
	case strings.HasSuffix(lower, " bc"):
		return strings.TrimSpace(s[:len(s)-3]), true
	case strings.HasSuffix(lower, " ad"):
		return strings.TrimSpace(s[:len(s)-3]), false
	}
	return s, false
}

func (in dtInput) parseDate(tok string, bc bool) (y, m, d int) {
	mm := dateRe.FindStringSubmatch(tok)
	if mm == nil {
		in.badFormat()
	}
	y, m, d = atoi(mm[1]), atoi(mm[2]), atoi(mm[3])
	if bc {
		if y == 0 {
			in.fieldOverflow()
		}
		y = 1 - y
	}
	if m < 1 || m > MonthsPerYear || d < 1 || d > DaysInMonth(y, m) {
		in.fieldOverflow()
	}
	return y, m, d
}

// parseTime parses the leading time of day of s and returns the rest.
func (in dtInput) parseTime(s string) (usec int64, rest string) {
	mm := timeRe.FindStringSubmatchIndex(s)
	if mm == nil {
		in.badFormat()
	}
	group := func(i int) string {
		if mm[2*i] < 0 {
			return ""
		}
		return s[mm[2*i]:mm[2*i+1]]
	}
	h, mi, sec := atoi(group(1)), atoi(group(2)), atoi(group(3))
	fsec := fracToUsec(group(4))
	if h > 24 || mi > 59 || sec > 60 {
		in.fieldOverflow()
	}
	usec = int64(h)*USecsPerHour + int64(mi)*USecsPerMinute + int64(sec)*USecsPerSec + fsec
	if usec > USecsPerDay {
		in.fieldOverflow()
	}
	return usec, strings.TrimSpace(s[mm[1]:])
}

// parseZone decodes a zone token into seconds west of UTC. Named zones are
// resolved for the local wall time given by at.
func (in dtInput) parseZone(tok string, at func(loc *time.Location) int) int {
	if mm := numTzRe.FindStringSubmatch(tok); mm != nil {
		secs := atoi(mm[2])*3600 + atoi(mm[3])*60 + atoi(mm[4])
		if atoi(mm[2]) > 15 || atoi(mm[3]) > 59 || atoi(mm[4]) > 59 || secs > maxTzDispSecs {
			in.tzOverflow()
		}
		if mm[1] == "-" {
			return secs
		}
		return -secs
	}
	tzWest, ok := resolveZone(tok, at)
	if !ok {
		in.badFormat()
	}
	return tzWest
}

func localOffsetAt(y, m, d int, usec int64) func(loc *time.Location) int {
	return func(loc *time.Location) int {
		secs := usec / USecsPerSec
		t := time.Date(y, time.Month(m), d, 0, 0, int(secs), 0, loc)
		_, off := t.Zone()
		return -off
	}
}

func offsetAtTransactionStart(loc *time.Location) int {
	tzWest, _ := DetermineTimeZoneAbbrevOffsetTS(GetCurrentTransactionStartTimestamp(), loc)
	return tzWest
}

func specialTimestamp(lower string) (int64, bool) {
	switch lower {
	case "infinity", "+infinity":
		return DTNoEnd, true
	case "-infinity":
		return DTNoBegin, true
	case "epoch":
		return -unixEpochOffsetSecs * USecsPerSec, true
	}
	return 0, false
}

func parseDateIn(input string) DateADT {
	in := dtInput{typ: "date", input: input}
	s := strings.TrimSpace(input)
	switch strings.ToLower(s) {
	case "infinity", "+infinity":
		return DateNoEnd
	case "-infinity":
		return DateNoBegin
	case "epoch":
		return DateADT(UnixEpochJDate - PostgresEpochJDate)
	case "":
		in.badFormat()
	}
	s, bc := stripEra(s)
	y, m, d := in.parseDate(s, bc)
	jd := Date2J(y, m, d)
	if jd < dateMinJulian || jd >= dateEndJulian {
		in.valueOutOfRange()
	}
	return DateADT(jd - PostgresEpochJDate)
}

func parseTimeIn(input string) TimeADT {
	in := dtInput{typ: "time", input: input}
	s := strings.TrimSpace(input)
	if s == "" {
		in.badFormat()
	}
	usec, rest := in.parseTime(s)
	if rest != "" {
		in.parseZone(rest, offsetAtTransactionStart)
	}
	return TimeADT(usec)
}

func parseTimeTzIn(input string) TimeTzADT {
	in := dtInput{typ: "time with time zone", input: input}
	s := strings.TrimSpace(input)
	if s == "" {
		in.badFormat()
	}
	usec, rest := in.parseTime(s)
	var tzWest int
	if rest == "" {
		tzWest = offsetAtTransactionStart(sessionTZ)
	} else {
		tzWest = in.parseZone(rest, offsetAtTransactionStart)
	}
	return TimeTzADT{Time: usec, Zone: int32(tzWest)}
}

func splitDateTime(s string) (date, rest string) {
	if i := strings.IndexAny(s, "Tt "); i >= 0 {
		return s[:i], strings.TrimSpace(s[i+1:])
	}
	return s, ""
}

func parseTimestampIn(input string, withTz bool) int64 {
	typ := "timestamp"
	if withTz {
		typ = "timestamp with time zone"
	}
	in := dtInput{typ: typ, input: input}
	s := strings.TrimSpace(input)
	if s == "" {
		in.badFormat()
	}
	if v, ok := specialTimestamp(strings.ToLower(s)); ok {
		return v
	}
	s, bc := stripEra(s)
	datePart, rest := splitDateTime(s)
	y, m, d := in.parseDate(datePart, bc)

	var usec int64
	zone := ""
	if rest != "" {
		if timeRe.MatchString(rest) {
			usec, zone = in.parseTime(rest)
		} else {
			zone = rest
		}
	}
	tm := Tm{Year: y, Mon: m, Mday: d}
	tm.Hour = int(usec / USecsPerHour)
	tm.Min = int(usec % USecsPerHour / USecsPerMinute)
	tm.Sec = int(usec % USecsPerMinute / USecsPerSec)
	tm.Fsec = usec % USecsPerSec

	tzWest := 0
	switch {
	case zone != "":
		tzWest = in.parseZone(zone, localOffsetAt(y, m, d, usec))
		if !withTz {
			tzWest = 0
		}
	case withTz:
		tzWest = localOffsetAt(y, m, d, usec)(sessionTZ)
	}
	ts, ok := Tm2Timestamp(tm, tzWest)
	if !ok {
		in.valueOutOfRange()
	}
	return ts
}

func intervalUnitUsec(unit string) (usec float64, days float64, months float64, ok bool) {
	switch unit {
	case "microsecond", "microseconds", "usec", "usecs", "us":
		return 1, 0, 0, true
	case "millisecond", "milliseconds", "msec", "msecs", "ms":
		return 1e3, 0, 0, true
	case "second", "seconds", "sec", "secs", "s":
		return 1e6, 0, 0, true
	case "minute", "minutes", "min", "mins", "m":
		return 60e6, 0, 0, true
	case "hour", "hours", "hr", "hrs", "h":
		return 3600e6, 0, 0, true
	case "day", "days", "d":
		return 0, 1, 0, true
	case "week", "weeks", "w":
		return 0, 7, 0, true
	case "month", "months", "mon", "mons":
		return 0, 0, 1, true
	case "year", "years", "yr", "yrs", "y":
		return 0, 0, 12, true
	case "decade", "decades":
		return 0, 0, 120, true
	case "century", "centuries":
		return 0, 0, 1200, true
	case "millennium", "millennia":
		return 0, 0, 12000, true
	}
	return 0, 0, 0, false
}

type intervalAcc struct {
	months float64
	days   float64
	usec   float64
}

func (a *intervalAcc) add(v float64, unit string) bool {
	usec, days, months, ok := intervalUnitUsec(unit)
	if !ok {
		return false
	}
	switch {
	case months != 0:
		whole := math.Trunc(v * months)
		a.months += whole
		if months == 1 {
			// fractional months spill into days and time
			frac := (v - math.Trunc(v)) * DaysPerMonth
			a.days += math.Trunc(frac)
			a.usec += (frac - math.Trunc(frac)) * float64(USecsPerDay)
		} else {
			a.months += math.Round(v*months - whole)
		}
	case days != 0:
		total := v * days
		a.days += math.Trunc(total)
		a.usec += (total - math.Trunc(total)) * float64(USecsPerDay)
	default:
		a.usec += v * usec
	}
	return true
}

func (in dtInput) parseISOInterval(s string) Interval {
	mm := isoIntvlRe.FindStringSubmatch(s)
	if mm == nil || s == "p" || s == "pt" {
		in.badFormat()
	}
	var acc intervalAcc
	units := []string{"", "year", "month", "week", "day", "hour", "minute", "second"}
	for i := 1; i < len(mm); i++ {
		if mm[i] == "" {
			continue
		}
		v, err := strconv.ParseFloat(mm[i], 64)
		if err != nil {
			in.badFormat()
		}
		acc.add(v, units[i])
	}
	return in.finishInterval(acc)
}

func (in dtInput) finishInterval(acc intervalAcc) Interval {
	usec := math.Round(acc.usec)
	if math.Abs(acc.months) > math.MaxInt32 || math.Abs(acc.days) > math.MaxInt32 || math.Abs(usec) >= math.MaxInt64 {
		Ereportf(ERROR, ErrcodeDatetimeFieldOverflow, "interval out of range")
	}
	return Interval{Month: int32(acc.months), Day: int32(acc.days), Time: int64(usec)}
}

func parseIntervalIn(input string) Interval {
	in := dtInput{typ: "interval", input: input}
	s := strings.ToLower(strings.TrimSpace(input))
	if s == "" {
		in.badFormat()
	}
	if strings.HasPrefix(s, "p") {
		return in.parseISOInterval(s)
	}
	ago := false
	if strings.HasSuffix(s, " ago") {
		ago = true
		s = strings.TrimSpace(strings.TrimSuffix(s, " ago"))
	}
	s = strings.TrimSpace(strings.TrimPrefix(s, "@"))

	var acc intervalAcc
	fields := strings.Fields(s)
	if len(fields) == 0 {
		in.badFormat()
	}
	for i := 0; i < len(fields); i++ {
		f := fields[i]
		if mm := intervalRe.FindStringSubmatch(f); mm != nil {
			h, mi, sec := atoi(mm[2]), atoi(mm[3]), atoi(mm[4])
			if mi > 59 || sec > 60 {
				in.fieldOverflow()
			}
			usec := float64(int64(h)*USecsPerHour+int64(mi)*USecsPerMinute+int64(sec)*USecsPerSec) + float64(fracToUsec(mm[5]))
			if mm[1] == "-" {
				usec = -usec
			}
			acc.usec += usec
			continue
		}
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			in.badFormat()
		}
		unit := "second"
		if i+1 < len(fields) {
			if _, _, _, ok := intervalUnitUsec(fields[i+1]); ok {
				unit = fields[i+1]
				i++
			}
		}
		acc.add(v, unit)
	}
	if ago {
		acc.months, acc.days, acc.usec = -acc.months, -acc.days, -acc.usec
	}
	return in.finishInterval(acc)
}
