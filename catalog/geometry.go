package catalog

import (
	"fmt"
	"reflect"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"
)

const geometryExtensionName = "geoarrow.wkb"

// GeometryExtensionType carries engine geometric values as WKB in Binary
// columns. Points become WKB points and boxes become closed rectangular
// polygons.
type GeometryExtensionType struct {
	arrow.ExtensionBase
}

func NewGeometryExtensionType() *GeometryExtensionType {
	return &GeometryExtensionType{
		ExtensionBase: arrow.ExtensionBase{Storage: arrow.BinaryTypes.Binary},
	}
}

func (g *GeometryExtensionType) ArrayType() reflect.Type {
	return reflect.TypeOf(GeometryArray{})
}

func (g *GeometryExtensionType) ExtensionName() string { return geometryExtensionName }

func (g *GeometryExtensionType) String() string {
	return "extension<" + geometryExtensionName + ">"
}

func (g *GeometryExtensionType) Serialize() string { return "" }

func (g *GeometryExtensionType) Deserialize(storageType arrow.DataType, _ string) (arrow.ExtensionType, error) {
	if !arrow.TypeEqual(storageType, arrow.BinaryTypes.Binary) {
		return nil, fmt.Errorf("invalid storage type for geometry: %s (expected Binary)", storageType)
	}
	return NewGeometryExtensionType(), nil
}

func (g *GeometryExtensionType) ExtensionEquals(other arrow.ExtensionType) bool {
	o, ok := other.(*GeometryExtensionType)
	return ok && arrow.TypeEqual(g.StorageType(), o.StorageType())
}

// GeometryArray is the array type of geometry columns. Storage holds the
// WKB values.
type GeometryArray struct {
	array.ExtensionArrayBase
}

// Geometry decodes value i.
func (a *GeometryArray) Geometry(i int) (orb.Geometry, error) {
	return DecodeGeometry(a.Storage().(*array.Binary).Value(i))
}

// EncodeGeometry converts a geometry to WKB.
func EncodeGeometry(geom orb.Geometry) ([]byte, error) {
	if geom == nil {
		return nil, fmt.Errorf("cannot encode nil geometry")
	}
	return wkb.Marshal(geom)
}

// DecodeGeometry converts WKB back to a geometry.
func DecodeGeometry(b []byte) (orb.Geometry, error) {
	if len(b) == 0 {
		return nil, fmt.Errorf("cannot decode empty WKB data")
	}
	return wkb.Unmarshal(b)
}

// appendGeometry appends to the builder of a geometry column.
func appendGeometry(b array.Builder, geom orb.Geometry) {
	storage := b.(*array.ExtensionBuilder).StorageBuilder().(*array.BinaryBuilder)
	// Points and polygons always marshal.
	buf, err := EncodeGeometry(geom)
	if err != nil {
		storage.AppendNull()
		return
	}
	storage.Append(buf)
}

func init() {
	_ = arrow.RegisterExtensionType(NewGeometryExtensionType())
}
