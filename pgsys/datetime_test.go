package pgsys

import (
	"testing"
)

func TestJulianRoundTrip(t *testing.T) {
	tests := []struct {
		y, m, d int
		jd      int
	}{
		{2000, 1, 1, PostgresEpochJDate},
		{1970, 1, 1, UnixEpochJDate},
		{2024, 2, 29, 2460370},
		{-4713, 11, 24, 0},
	}
	for _, tt := range tests {
		if got := Date2J(tt.y, tt.m, tt.d); got != tt.jd {
			t.Errorf("Date2J(%d-%d-%d) = %d, want %d", tt.y, tt.m, tt.d, got, tt.jd)
		}
		y, m, d := J2Date(tt.jd)
		if y != tt.y || m != tt.m || d != tt.d {
			t.Errorf("J2Date(%d) = %d-%d-%d", tt.jd, y, m, d)
		}
	}
}

func TestIsoWeek(t *testing.T) {
	tests := []struct {
		y, m, d        int
		week, isoYear int
	}{
		{2005, 1, 1, 53, 2004},
		{2006, 1, 1, 52, 2005},
		{2012, 12, 31, 1, 2013},
		{2023, 6, 15, 24, 2023},
	}
	for _, tt := range tests {
		if got := Date2IsoWeek(tt.y, tt.m, tt.d); got != tt.week {
			t.Errorf("week(%d-%d-%d) = %d, want %d", tt.y, tt.m, tt.d, got, tt.week)
		}
		if got := Date2IsoYear(tt.y, tt.m, tt.d); got != tt.isoYear {
			t.Errorf("isoyear(%d-%d-%d) = %d, want %d", tt.y, tt.m, tt.d, got, tt.isoYear)
		}
	}
}

func TestDateInErrors(t *testing.T) {
	tests := []struct {
		input string
		code  SQLState
	}{
		{"2023-02-30", ErrcodeDatetimeFieldOverflow},
		{"2023-13-01", ErrcodeDatetimeFieldOverflow},
		{"not a date", ErrcodeInvalidDatetimeFormat},
		{"", ErrcodeInvalidDatetimeFormat},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			rep := CatchReport(func() { parseDateIn(tt.input) })
			if rep == nil || rep.Code != tt.code {
				t.Errorf("report = %v, want %s", rep, tt.code)
			}
		})
	}
}

func TestTimestampRoundTrip(t *testing.T) {
	old := SessionTimeZone()
	defer func() { sessionTZ = old }()
	SetSessionTimeZone("UTC")

	tests := []struct {
		input  string
		withTz bool
		want   string
	}{
		{"2023-01-15 10:30:00", false, "2023-01-15 10:30:00"},
		{"2023-01-15T10:30:00.250", false, "2023-01-15 10:30:00.25"},
		{"2023-01-15 10:30:00+02", true, "2023-01-15 08:30:00+00"},
		{"2023-01-15 10:30:00 EST", true, "2023-01-15 15:30:00+00"},
		{"0044-03-15 12:00:00 BC", false, "0044-03-15 12:00:00 BC"},
		{"infinity", true, "infinity"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := FormatTimestamp(parseTimestampIn(tt.input, tt.withTz), tt.withTz)
			if got != tt.want {
				t.Errorf("round trip = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIntervalFormat(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1 year 2 months 3 days 04:05:06", "1 year 2 mons 3 days 04:05:06"},
		{"0", "00:00:00"},
		{"-1 days 02:00:00", "-1 days +02:00:00"},
		{"1.5 hours", "01:30:00"},
		{"P1Y2M3DT4H5M6S", "1 year 2 mons 3 days 04:05:06"},
		{"3 days ago", "-3 days"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := FormatInterval(parseIntervalIn(tt.input)); got != tt.want {
				t.Errorf("FormatInterval = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIntervalCompareNormalizes(t *testing.T) {
	a := Interval{Month: 1}
	b := Interval{Day: 30}
	c := Interval{Time: 30 * USecsPerDay}
	if IntervalCompare(a, b) != 0 || IntervalCompare(b, c) != 0 {
		t.Error("1 mon, 30 days and 720 hours should compare equal")
	}
	if IntervalCompare(Interval{Day: 1}, Interval{Time: USecsPerDay - 1}) != 1 {
		t.Error("1 day should be greater than 23:59:59.999999")
	}
}
