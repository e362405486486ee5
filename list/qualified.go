package list

import (
	"strings"
	"unsafe"

	"github.com/hugr-lab/pgext-go/pgsys"
)

// QualifiedName builds the list of String nodes the engine uses for dotted
// names such as schema.function.
type QualifiedName struct {
	mcx   *pgsys.MemoryContext
	parts List[Pointer]
}

// NewQualifiedName allocates the nodes for parts in mcx.
func NewQualifiedName(mcx *pgsys.MemoryContext, parts ...string) *QualifiedName {
	q := &QualifiedName{mcx: mcx}
	for _, p := range parts {
		q.Push(p)
	}
	return q
}

// ParseQualifiedName splits a dotted name.
func ParseQualifiedName(mcx *pgsys.MemoryContext, name string) *QualifiedName {
	return NewQualifiedName(mcx, strings.Split(name, ".")...)
}

// Push appends one name part.
func (q *QualifiedName) Push(part string) {
	var node unsafe.Pointer
	q.mcx.Run(func() { node = pgsys.MakeString(part) })
	q.parts.PushInContext(node, q.mcx)
}

func (q *QualifiedName) Len() int { return q.parts.Len() }

// Strings reads the parts back.
func (q *QualifiedName) Strings() []string {
	out := make([]string, 0, q.parts.Len())
	for p := range q.parts.Values() {
		out = append(out, pgsys.StrVal(p))
	}
	return out
}

func (q *QualifiedName) String() string {
	return strings.Join(q.Strings(), ".")
}

// IntoList hands the node list to the engine.
func (q *QualifiedName) IntoList() unsafe.Pointer {
	return q.parts.IntoNullable()
}
