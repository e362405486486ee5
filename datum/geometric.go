package datum

import (
	"unsafe"

	"github.com/paulmach/orb"

	"github.com/hugr-lab/pgext-go/oid"
	"github.com/hugr-lab/pgext-go/pgsys"
)

// pgPoint and pgBox are the engine's in-memory layouts.
type pgPoint struct {
	X, Y float64
}

type pgBox struct {
	High, Low pgPoint
}

// Point is the engine point type.
type Point orb.Point

func (v Point) IntoDatum() (pgsys.Datum, bool) {
	p := (*pgPoint)(pgsys.Palloc(int(unsafe.Sizeof(pgPoint{}))))
	p.X, p.Y = v[0], v[1]
	return pgsys.PointerDatum(unsafe.Pointer(p)), false
}

func (v Point) TypeOid() oid.BuiltinOid { return oid.PointOid }

func (v *Point) FromDatum(d pgsys.Datum) {
	p := (*pgPoint)(d.Pointer())
	*v = Point{p.X, p.Y}
}

// Box is the engine box type. The engine stores the upper right corner
// first; boxes are normalized so that Min holds the lower left corner.
type Box orb.Bound

func (v Box) IntoDatum() (pgsys.Datum, bool) {
	b := (*pgBox)(pgsys.Palloc(int(unsafe.Sizeof(pgBox{}))))
	b.High = pgPoint{max(v.Min[0], v.Max[0]), max(v.Min[1], v.Max[1])}
	b.Low = pgPoint{min(v.Min[0], v.Max[0]), min(v.Min[1], v.Max[1])}
	return pgsys.PointerDatum(unsafe.Pointer(b)), false
}

func (v Box) TypeOid() oid.BuiltinOid { return oid.BoxOid }

func (v *Box) FromDatum(d pgsys.Datum) {
	b := (*pgBox)(d.Pointer())
	*v = Box{Min: orb.Point{b.Low.X, b.Low.Y}, Max: orb.Point{b.High.X, b.High.Y}}
}

// Bound returns the box as an orb bound.
func (v Box) Bound() orb.Bound { return orb.Bound(v) }
