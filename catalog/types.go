package catalog

import (
	"fmt"
	"math"
	"time"
	"unsafe"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/google/uuid"
	"github.com/paulmach/orb"

	"github.com/hugr-lab/pgext-go/datetime"
	"github.com/hugr-lab/pgext-go/datum"
	"github.com/hugr-lab/pgext-go/oid"
	"github.com/hugr-lab/pgext-go/pgsys"
)

const (
	// Days and microseconds between the Unix epoch and 2000-01-01.
	epochDays = pgsys.PostgresEpochJDate - pgsys.UnixEpochJDate
	epochUsec = int64(epochDays) * pgsys.USecsPerDay
)

// typeInfo ties an engine type to its Arrow column type and to the Go type
// name used in generated SQL.
type typeInfo struct {
	arrow  func() arrow.DataType
	goType string
	// appendTo appends a non-null datum to a builder of the Arrow type.
	appendTo func(b array.Builder, d pgsys.Datum)
	// datumOf converts a decoded request parameter in the current memory
	// context.
	datumOf func(v any) (pgsys.Datum, error)
}

var types = map[oid.BuiltinOid]typeInfo{
	oid.Int2Oid: {
		arrow:    func() arrow.DataType { return arrow.PrimitiveTypes.Int16 },
		goType:   "datum.Int16",
		appendTo: func(b array.Builder, d pgsys.Datum) { b.(*array.Int16Builder).Append(d.Int16()) },
		datumOf:  intParam(math.MinInt16, math.MaxInt16, func(v int64) datum.IntoDatum { return datum.Int16(v) }),
	},
	oid.Int4Oid: {
		arrow:    func() arrow.DataType { return arrow.PrimitiveTypes.Int32 },
		goType:   "datum.Int32",
		appendTo: func(b array.Builder, d pgsys.Datum) { b.(*array.Int32Builder).Append(d.Int32()) },
		datumOf:  intParam(math.MinInt32, math.MaxInt32, func(v int64) datum.IntoDatum { return datum.Int32(v) }),
	},
	oid.Int8Oid: {
		arrow:    func() arrow.DataType { return arrow.PrimitiveTypes.Int64 },
		goType:   "datum.Int64",
		appendTo: func(b array.Builder, d pgsys.Datum) { b.(*array.Int64Builder).Append(d.Int64()) },
		datumOf:  intParam(math.MinInt64, math.MaxInt64, func(v int64) datum.IntoDatum { return datum.Int64(v) }),
	},
	oid.OidOid: {
		arrow:    func() arrow.DataType { return arrow.PrimitiveTypes.Uint32 },
		goType:   "datum.OidValue",
		appendTo: func(b array.Builder, d pgsys.Datum) { b.(*array.Uint32Builder).Append(d.UInt32()) },
		datumOf:  intParam(0, math.MaxUint32, func(v int64) datum.IntoDatum { return datum.OidValue(v) }),
	},
	oid.Float4Oid: {
		arrow:    func() arrow.DataType { return arrow.PrimitiveTypes.Float32 },
		goType:   "datum.Float4",
		appendTo: func(b array.Builder, d pgsys.Datum) { b.(*array.Float32Builder).Append(d.Float4()) },
		datumOf:  floatParam(func(v float64) datum.IntoDatum { return datum.Float4(v) }),
	},
	oid.Float8Oid: {
		arrow:    func() arrow.DataType { return arrow.PrimitiveTypes.Float64 },
		goType:   "datum.Float8",
		appendTo: func(b array.Builder, d pgsys.Datum) { b.(*array.Float64Builder).Append(d.Float8()) },
		datumOf:  floatParam(func(v float64) datum.IntoDatum { return datum.Float8(v) }),
	},
	oid.BoolOid: {
		arrow:    func() arrow.DataType { return arrow.FixedWidthTypes.Boolean },
		goType:   "datum.Bool",
		appendTo: func(b array.Builder, d pgsys.Datum) { b.(*array.BooleanBuilder).Append(d.Bool()) },
		datumOf: func(v any) (pgsys.Datum, error) {
			b, ok := v.(bool)
			if !ok {
				return pgsys.Datum{}, paramTypeError("boolean", v)
			}
			return into(datum.Bool(b))
		},
	},
	oid.TextOid: {
		arrow:    func() arrow.DataType { return arrow.BinaryTypes.String },
		goType:   "datum.Text",
		appendTo: func(b array.Builder, d pgsys.Datum) { b.(*array.StringBuilder).Append(pgsys.TextDatumGetCString(d)) },
		datumOf: func(v any) (pgsys.Datum, error) {
			s, ok := v.(string)
			if !ok {
				return pgsys.Datum{}, paramTypeError("text", v)
			}
			return into(datum.Text(s))
		},
	},
	oid.ByteaOid: {
		arrow:    func() arrow.DataType { return arrow.BinaryTypes.Binary },
		goType:   "datum.Bytea",
		appendTo: func(b array.Builder, d pgsys.Datum) { b.(*array.BinaryBuilder).Append(pgsys.VarData(d.Pointer())) },
		datumOf: func(v any) (pgsys.Datum, error) {
			switch v := v.(type) {
			case []byte:
				return into(datum.Bytea(v))
			case string:
				return into(datum.Bytea(v))
			}
			return pgsys.Datum{}, paramTypeError("bytea", v)
		},
	},
	oid.UUIDOid: {
		arrow:  func() arrow.DataType { return &arrow.FixedSizeBinaryType{ByteWidth: 16} },
		goType: "datum.UUID",
		appendTo: func(b array.Builder, d pgsys.Datum) {
			b.(*array.FixedSizeBinaryBuilder).Append(unsafe.Slice((*byte)(d.Pointer()), 16))
		},
		datumOf: func(v any) (pgsys.Datum, error) {
			switch v := v.(type) {
			case string:
				u, err := uuid.Parse(v)
				if err != nil {
					return pgsys.Datum{}, fmt.Errorf("%w: %v", ErrInvalidParameters, err)
				}
				return into(datum.UUID(u))
			case []byte:
				u, err := uuid.FromBytes(v)
				if err != nil {
					return pgsys.Datum{}, fmt.Errorf("%w: %v", ErrInvalidParameters, err)
				}
				return into(datum.UUID(u))
			}
			return pgsys.Datum{}, paramTypeError("uuid", v)
		},
	},
	oid.DateOid: {
		arrow:  func() arrow.DataType { return arrow.FixedWidthTypes.Date32 },
		goType: "datetime.Date",
		appendTo: func(b array.Builder, d pgsys.Datum) {
			b.(*array.Date32Builder).Append(arrow.Date32(d.Int32() + epochDays))
		},
		datumOf: func(v any) (pgsys.Datum, error) {
			switch v := v.(type) {
			case string:
				return parsed(datetime.ParseDate(v))
			case time.Time:
				y, m, d := v.Date()
				return into(datetime.Date(pgsys.Date2J(y, int(m), d) - pgsys.PostgresEpochJDate))
			}
			return pgsys.Datum{}, paramTypeError("date", v)
		},
	},
	oid.TimeOid: {
		arrow:    func() arrow.DataType { return arrow.FixedWidthTypes.Time64us },
		goType:   "datetime.Time",
		appendTo: func(b array.Builder, d pgsys.Datum) { b.(*array.Time64Builder).Append(arrow.Time64(d.Int64())) },
		datumOf: func(v any) (pgsys.Datum, error) {
			s, ok := v.(string)
			if !ok {
				return pgsys.Datum{}, paramTypeError("time", v)
			}
			return parsed(datetime.ParseTime(s))
		},
	},
	oid.TimetzOid: {
		arrow:  func() arrow.DataType { return arrow.BinaryTypes.String },
		goType: "datetime.TimeTz",
		appendTo: func(b array.Builder, d pgsys.Datum) {
			var v datetime.TimeTz
			v.FromDatum(d)
			b.(*array.StringBuilder).Append(v.String())
		},
		datumOf: func(v any) (pgsys.Datum, error) {
			s, ok := v.(string)
			if !ok {
				return pgsys.Datum{}, paramTypeError("time with time zone", v)
			}
			return parsed(datetime.ParseTimeTz(s))
		},
	},
	oid.TimestampOid: {
		arrow:    func() arrow.DataType { return &arrow.TimestampType{Unit: arrow.Microsecond} },
		goType:   "datetime.Timestamp",
		appendTo: appendTimestamp,
		datumOf: func(v any) (pgsys.Datum, error) {
			switch v := v.(type) {
			case string:
				return parsed(datetime.ParseTimestamp(v))
			case time.Time:
				return into(datetime.Timestamp(v.UnixMicro() - epochUsec))
			}
			return pgsys.Datum{}, paramTypeError("timestamp", v)
		},
	},
	oid.TimestamptzOid: {
		arrow:    func() arrow.DataType { return &arrow.TimestampType{Unit: arrow.Microsecond, TimeZone: "UTC"} },
		goType:   "datetime.TimestampTz",
		appendTo: appendTimestamp,
		datumOf: func(v any) (pgsys.Datum, error) {
			switch v := v.(type) {
			case string:
				return parsed(datetime.ParseTimestampTz(v))
			case time.Time:
				return into(datetime.TimestampTz(v.UnixMicro() - epochUsec))
			}
			return pgsys.Datum{}, paramTypeError("timestamp with time zone", v)
		},
	},
	oid.IntervalOid: {
		arrow:  func() arrow.DataType { return arrow.FixedWidthTypes.MonthDayNanoInterval },
		goType: "datetime.Interval",
		appendTo: func(b array.Builder, d pgsys.Datum) {
			iv := pgsys.DatumGetInterval(d)
			b.(*array.MonthDayNanoIntervalBuilder).Append(arrow.MonthDayNanoInterval{
				Months:      iv.Month,
				Days:        iv.Day,
				Nanoseconds: iv.Time * 1000,
			})
		},
		datumOf: func(v any) (pgsys.Datum, error) {
			s, ok := v.(string)
			if !ok {
				return pgsys.Datum{}, paramTypeError("interval", v)
			}
			return parsed(datetime.ParseInterval(s))
		},
	},
	oid.PointOid: {
		arrow:  func() arrow.DataType { return NewGeometryExtensionType() },
		goType: "datum.Point",
		appendTo: func(b array.Builder, d pgsys.Datum) {
			var p datum.Point
			p.FromDatum(d)
			appendGeometry(b, orb.Point(p))
		},
		datumOf: func(v any) (pgsys.Datum, error) {
			xy, err := coordinates(v, 2)
			if err != nil {
				return pgsys.Datum{}, err
			}
			return into(datum.Point{xy[0], xy[1]})
		},
	},
	oid.BoxOid: {
		arrow:  func() arrow.DataType { return NewGeometryExtensionType() },
		goType: "datum.Box",
		appendTo: func(b array.Builder, d pgsys.Datum) {
			var box datum.Box
			box.FromDatum(d)
			appendGeometry(b, box.Bound().ToPolygon())
		},
		datumOf: func(v any) (pgsys.Datum, error) {
			c, err := coordinates(v, 4)
			if err != nil {
				return pgsys.Datum{}, err
			}
			return into(datum.Box{Min: orb.Point{c[0], c[1]}, Max: orb.Point{c[2], c[3]}})
		},
	},
}

func lookupType(t oid.BuiltinOid) (typeInfo, error) {
	info, ok := types[t]
	if !ok {
		return typeInfo{}, fmt.Errorf("%w: %s", ErrUnsupportedType, t)
	}
	return info, nil
}

// ArrowType returns the Arrow column type of an engine type.
func ArrowType(t oid.BuiltinOid) (arrow.DataType, error) {
	info, err := lookupType(t)
	if err != nil {
		return nil, err
	}
	return info.arrow(), nil
}

// GoTypeName returns the Go type name under which an engine type appears in
// generated SQL type mappings.
func GoTypeName(t oid.BuiltinOid) (string, error) {
	info, err := lookupType(t)
	if err != nil {
		return "", err
	}
	return info.goType, nil
}

func appendTimestamp(b array.Builder, d pgsys.Datum) {
	v := d.Int64()
	// Infinities keep their sentinel values.
	if v != math.MinInt64 && v != math.MaxInt64 {
		v += epochUsec
	}
	b.(*array.TimestampBuilder).Append(arrow.Timestamp(v))
}

func into(v datum.IntoDatum) (pgsys.Datum, error) {
	d, _ := v.IntoDatum()
	return d, nil
}

func parsed(v datum.IntoDatum, err error) (pgsys.Datum, error) {
	if err != nil {
		return pgsys.Datum{}, fmt.Errorf("%w: %w", ErrInvalidParameters, err)
	}
	return into(v)
}

func paramTypeError(want string, v any) error {
	return fmt.Errorf("%w: cannot use %T as %s", ErrInvalidParameters, v, want)
}

// intParam accepts any integer kind MessagePack decodes to, and whole floats.
func intParam(lo, hi int64, box func(int64) datum.IntoDatum) func(any) (pgsys.Datum, error) {
	return func(v any) (pgsys.Datum, error) {
		var n int64
		switch v := v.(type) {
		case int:
			n = int64(v)
		case int8:
			n = int64(v)
		case int16:
			n = int64(v)
		case int32:
			n = int64(v)
		case int64:
			n = v
		case uint8:
			n = int64(v)
		case uint16:
			n = int64(v)
		case uint32:
			n = int64(v)
		case uint64:
			if v > math.MaxInt64 {
				return pgsys.Datum{}, fmt.Errorf("%w: %d is out of range", ErrInvalidParameters, v)
			}
			n = int64(v)
		case float64:
			if v != math.Trunc(v) || v < math.MinInt64 || v >= math.MaxInt64 {
				return pgsys.Datum{}, fmt.Errorf("%w: %v is not an integer", ErrInvalidParameters, v)
			}
			n = int64(v)
		default:
			return pgsys.Datum{}, paramTypeError("integer", v)
		}
		if n < lo || n > hi {
			return pgsys.Datum{}, fmt.Errorf("%w: %d is out of range", ErrInvalidParameters, n)
		}
		return into(box(n))
	}
}

func floatParam(box func(float64) datum.IntoDatum) func(any) (pgsys.Datum, error) {
	return func(v any) (pgsys.Datum, error) {
		switch v := v.(type) {
		case float32:
			return into(box(float64(v)))
		case float64:
			return into(box(v))
		case int64:
			return into(box(float64(v)))
		case int8, int16, int32, uint8, uint16, uint32, uint64, int:
			f, _ := toFloat(v)
			return into(box(f))
		}
		return pgsys.Datum{}, paramTypeError("floating point", v)
	}
}

func toFloat(v any) (float64, bool) {
	switch v := v.(type) {
	case float32:
		return float64(v), true
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	}
	return 0, false
}

// coordinates reads a list of n numbers.
func coordinates(v any, n int) ([]float64, error) {
	list, ok := v.([]any)
	if !ok || len(list) != n {
		return nil, fmt.Errorf("%w: want a list of %d coordinates, got %T", ErrInvalidParameters, n, v)
	}
	out := make([]float64, n)
	for i, c := range list {
		f, ok := toFloat(c)
		if !ok {
			return nil, paramTypeError("coordinate", c)
		}
		out[i] = f
	}
	return out, nil
}
