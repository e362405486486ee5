package datetime

import (
	"fmt"

	"github.com/hugr-lab/pgext-go/pgsys"
)

// TimezoneOffset returns the current offset of a zone in seconds east of
// UTC. The zone may be an abbreviation known to the engine or a zone
// database name. Abbreviations with a history are resolved at the start of
// the current transaction.
func TimezoneOffset(zone string) (int32, error) {
	kind, offset, loc := pgsys.DecodeTimezoneAbbrev(pgsys.DowncaseIdentifier(zone))
	switch kind {
	case pgsys.TZ, pgsys.DTZ:
		return int32(offset), nil
	case pgsys.DYNTZ:
		tzWest, _ := pgsys.DetermineTimeZoneAbbrevOffsetTS(pgsys.GetCurrentTransactionStartTimestamp(), loc)
		return int32(-tzWest), nil
	}

	loc = pgsys.PgTzset(zone)
	if loc == nil {
		return 0, &pgsys.ErrorReport{
			Level:   pgsys.ERROR,
			Code:    pgsys.ErrcodeInvalidParameterValue,
			Message: fmt.Sprintf("time zone %q not recognized", zone),
		}
	}
	_, tzWest, ok := pgsys.Timestamp2Tm(pgsys.GetCurrentTransactionStartTimestamp(), loc)
	if !ok {
		return 0, &pgsys.ErrorReport{
			Level:   pgsys.ERROR,
			Code:    pgsys.ErrcodeDatetimeFieldOverflow,
			Message: "timestamp out of range",
		}
	}
	return int32(-tzWest), nil
}
