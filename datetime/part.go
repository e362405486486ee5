// Package datetime wraps the engine's date and time types.
//
// Every operation is delegated to the engine routine of the same name, so
// comparison, hashing, field extraction and text conversion agree exactly
// with what SQL sees. The wrappers must be used inside a memory context.
package datetime

import (
	"fmt"

	"github.com/hugr-lab/pgext-go/oid"
	"github.com/hugr-lab/pgext-go/pgsys"
)

// Part is a field that can be extracted from a datetime value.
type Part int

const (
	Century Part = iota
	Day
	Decade
	DayOfWeek
	DayOfYear
	Epoch
	Hour
	ISODayOfWeek
	ISOYear
	Julian
	Microseconds
	Millennium
	Milliseconds
	Minute
	Month
	Quarter
	Second
	Timezone
	TimezoneHour
	TimezoneMinute
	Week
	Year
)

var partNames = [...]string{
	Century:        "century",
	Day:            "day",
	Decade:         "decade",
	DayOfWeek:      "dow",
	DayOfYear:      "doy",
	Epoch:          "epoch",
	Hour:           "hour",
	ISODayOfWeek:   "isodow",
	ISOYear:        "isoyear",
	Julian:         "julian",
	Microseconds:   "microseconds",
	Millennium:     "millennium",
	Milliseconds:   "milliseconds",
	Minute:         "minute",
	Month:          "month",
	Quarter:        "quarter",
	Second:         "second",
	Timezone:       "timezone",
	TimezoneHour:   "timezone_hour",
	TimezoneMinute: "timezone_minute",
	Week:           "week",
	Year:           "year",
}

// String returns the name the engine uses for the field.
func (p Part) String() string {
	if p < 0 || int(p) >= len(partNames) {
		return fmt.Sprintf("Part(%d)", int(p))
	}
	return partNames[p]
}

// ParsePart looks up a field by its engine name.
func ParsePart(s string) (Part, bool) {
	s = pgsys.DowncaseIdentifier(s)
	for p, name := range partNames {
		if name == s {
			return Part(p), true
		}
	}
	return 0, false
}

// Parts lists every field.
func Parts() []Part {
	out := make([]Part, len(partNames))
	for i := range out {
		out[i] = Part(i)
	}
	return out
}

func (p Part) IntoDatum() (pgsys.Datum, bool) { return pgsys.CStringGetTextDatum(p.String()), false }

func (p Part) TypeOid() oid.BuiltinOid { return oid.TextOid }
