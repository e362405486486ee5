// Command ext is a minimal extension binary whose symbol table the
// pgext-schema tests scan.
package main

import (
	"fmt"

	"github.com/hugr-lab/pgext-go/sqlgraph"
)

func PgextMarker() sqlgraph.Control {
	return sqlgraph.Control{Name: "probe", Version: "0.1", Schema: "probe"}
}

func PgextTypeMappings() sqlgraph.TypeMappings {
	return sqlgraph.TypeMappings{"main.Weight": "numeric"}
}

func PgextInternalsSchemaProbeUtil() sqlgraph.Entity {
	return sqlgraph.Schema{Name: "probe_util"}
}

func PgextInternalsFunctionProbeSeries() sqlgraph.Entity {
	return sqlgraph.Function{
		Name:    "probe_series",
		Schema:  "probe_util",
		Args:    []sqlgraph.Arg{{Name: "n", GoType: "datum.Int64"}},
		Returns: sqlgraph.Returns{Kind: sqlgraph.ReturnsSetOf, GoType: "main.Weight"},
		Strict:  true,
	}
}

// exported keeps the entry points reachable for the linker.
var exported = []any{
	PgextMarker,
	PgextTypeMappings,
	PgextInternalsSchemaProbeUtil,
	PgextInternalsFunctionProbeSeries,
}

func main() {
	fmt.Println(len(exported), "entry points")
}
