package pgsys

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/apache/arrow-go/v18/arrow/memory"
)

const (
	// MaxAllocSize is the largest single chunk a memory context hands out.
	MaxAllocSize = 0x3fffffff

	// ClobberByte fills freed or vacated arena memory when AssertEnabled is set.
	ClobberByte = 0x7F

	minChunkSize = 8
)

// Dropper is implemented by values handed to LeakAndDropOnDelete that hold
// resources of their own.
type Dropper interface {
	Drop()
}

type chunk struct {
	buf []byte
	ctx *MemoryContext
}

// registry maps every live chunk to its owning context. It keeps chunk
// buffers reachable for the garbage collector, since pointers stored inside
// arena memory are invisible to it.
var registry = struct {
	sync.Mutex
	chunks map[uintptr]*chunk
}{chunks: make(map[uintptr]*chunk)}

func lookupChunk(p unsafe.Pointer) (*chunk, bool) {
	registry.Lock()
	defer registry.Unlock()
	ch, ok := registry.chunks[uintptr(p)]
	return ch, ok
}

// MemoryContext is an arena. Everything allocated in it is released together
// by Reset or Delete; single chunks may be released early with Free.
type MemoryContext struct {
	name      string
	parent    *MemoryContext
	children  []*MemoryContext
	alloc     memory.Allocator
	chunks    map[uintptr]*chunk
	boxes     map[uintptr]any
	callbacks []func()
	deleted   bool
}

// NewMemoryContext creates a top-level context whose chunks come from alloc.
// A nil alloc uses memory.DefaultAllocator.
func NewMemoryContext(name string, alloc memory.Allocator) *MemoryContext {
	if alloc == nil {
		alloc = memory.DefaultAllocator
	}
	return &MemoryContext{
		name:   name,
		alloc:  alloc,
		chunks: make(map[uintptr]*chunk),
		boxes:  make(map[uintptr]any),
	}
}

// NewChild creates a context that is reset and deleted together with c.
func (c *MemoryContext) NewChild(name string) *MemoryContext {
	c.checkLive()
	child := NewMemoryContext(name, c.alloc)
	child.parent = c
	c.children = append(c.children, child)
	return child
}

func (c *MemoryContext) Name() string { return c.name }

func (c *MemoryContext) Parent() *MemoryContext { return c.parent }

func (c *MemoryContext) Children() []*MemoryContext { return c.children }

// IsDeleted reports whether Delete has been called on c or one of its parents.
func (c *MemoryContext) IsDeleted() bool { return c.deleted }

// Allocator returns the allocator backing the context.
func (c *MemoryContext) Allocator() memory.Allocator { return c.alloc }

// Allocated returns the number of bytes held by live chunks of c, excluding
// its children.
func (c *MemoryContext) Allocated() int {
	n := 0
	for _, ch := range c.chunks {
		n += len(ch.buf)
	}
	return n
}

// NumChunks returns the number of live chunks owned by c.
func (c *MemoryContext) NumChunks() int { return len(c.chunks) }

func (c *MemoryContext) String() string {
	return fmt.Sprintf("MemoryContext(%s)", c.name)
}

func (c *MemoryContext) checkLive() {
	if c.deleted {
		panic(fmt.Sprintf("pgsys: use of deleted memory context %q", c.name))
	}
}

// Alloc returns size zeroed bytes of arena memory. Failure aborts with an
// engine error.
func (c *MemoryContext) Alloc(size int) unsafe.Pointer {
	c.checkLive()
	if size < 0 || size > MaxAllocSize {
		Ereport(ERROR, ErrcodeProgramLimitExceeded, fmt.Sprintf("invalid memory alloc request size %d", size))
	}
	n := max(size, minChunkSize)
	buf := c.alloc.Allocate(n)
	if len(buf) < n {
		Ereport(ERROR, ErrcodeOutOfMemory, fmt.Sprintf("out of memory: failed on request of size %d in memory context %q", size, c.name))
	}
	clear(buf)
	p := unsafe.Pointer(unsafe.SliceData(buf))
	ch := &chunk{buf: buf, ctx: c}
	c.chunks[uintptr(p)] = ch

	registry.Lock()
	registry.chunks[uintptr(p)] = ch
	registry.Unlock()
	return p
}

// Realloc resizes a chunk owned by c. The contents up to the smaller of the
// two sizes are preserved; the returned pointer replaces p.
func (c *MemoryContext) Realloc(p unsafe.Pointer, size int) unsafe.Pointer {
	ch, ok := lookupChunk(p)
	if !ok {
		Ereport(ERROR, ErrcodeInternalError, "repalloc called with invalid pointer")
	}
	if ch.ctx != c {
		Ereport(ERROR, ErrcodeInternalError, fmt.Sprintf("repalloc of chunk owned by %q through %q", ch.ctx.name, c.name))
	}
	return c.realloc(ch, p, size)
}

func (c *MemoryContext) realloc(ch *chunk, p unsafe.Pointer, size int) unsafe.Pointer {
	c.checkLive()
	if size < 0 || size > MaxAllocSize {
		Ereport(ERROR, ErrcodeProgramLimitExceeded, fmt.Sprintf("invalid memory alloc request size %d", size))
	}
	n := max(size, minChunkSize)
	old := len(ch.buf)
	buf := c.alloc.Reallocate(n, ch.buf)
	if len(buf) < n {
		Ereport(ERROR, ErrcodeOutOfMemory, fmt.Sprintf("out of memory: failed on request of size %d in memory context %q", size, c.name))
	}
	if n > old {
		clear(buf[old:])
	}
	np := unsafe.Pointer(unsafe.SliceData(buf))
	ch.buf = buf
	if np != p {
		delete(c.chunks, uintptr(p))
		c.chunks[uintptr(np)] = ch

		registry.Lock()
		delete(registry.chunks, uintptr(p))
		registry.chunks[uintptr(np)] = ch
		registry.Unlock()
	}
	return np
}

// Free releases a single chunk owned by c.
func (c *MemoryContext) Free(p unsafe.Pointer) {
	ch, ok := lookupChunk(p)
	if !ok {
		Ereport(ERROR, ErrcodeInternalError, "pfree called with invalid pointer")
	}
	if ch.ctx != c {
		Ereport(ERROR, ErrcodeInternalError, fmt.Sprintf("pfree of chunk owned by %q through %q", ch.ctx.name, c.name))
	}
	c.free(p, ch)
}

func (c *MemoryContext) free(p unsafe.Pointer, ch *chunk) {
	if v, ok := c.boxes[uintptr(p)]; ok {
		delete(c.boxes, uintptr(p))
		if d, ok := v.(Dropper); ok {
			d.Drop()
		}
	}
	if AssertEnabled {
		for i := range ch.buf {
			ch.buf[i] = ClobberByte
		}
	}
	c.alloc.Free(ch.buf)
	delete(c.chunks, uintptr(p))

	registry.Lock()
	delete(registry.chunks, uintptr(p))
	registry.Unlock()
}

// RegisterResetCallback arranges for fn to run the next time c is reset or
// deleted. Callbacks run in reverse registration order.
func (c *MemoryContext) RegisterResetCallback(fn func()) {
	c.checkLive()
	c.callbacks = append(c.callbacks, fn)
}

// LeakAndDropOnDelete hands ownership of v to the context and returns an
// opaque handle for it. The value lives until the context is reset or
// deleted; if it implements Dropper, Drop is called at that point.
func (c *MemoryContext) LeakAndDropOnDelete(v any) unsafe.Pointer {
	p := c.Alloc(minChunkSize)
	c.boxes[uintptr(p)] = v
	return p
}

// Unbox returns the value behind a handle produced by LeakAndDropOnDelete.
func Unbox(p unsafe.Pointer) any {
	ch, ok := lookupChunk(p)
	if !ok {
		panic("pgsys: unbox of a pointer that is not a live chunk")
	}
	v, ok := ch.ctx.boxes[uintptr(p)]
	if !ok {
		panic("pgsys: unbox of a chunk that holds no value")
	}
	return v
}

// Reset releases every chunk of c and deletes its children. The context
// itself stays usable.
func (c *MemoryContext) Reset() {
	c.checkLive()
	for len(c.children) > 0 {
		c.children[len(c.children)-1].Delete()
	}
	for len(c.callbacks) > 0 {
		fn := c.callbacks[len(c.callbacks)-1]
		c.callbacks = c.callbacks[:len(c.callbacks)-1]
		fn()
	}
	for _, ch := range c.chunks {
		c.free(unsafe.Pointer(unsafe.SliceData(ch.buf)), ch)
	}
}

// Delete resets c, detaches it from its parent and marks it unusable.
func (c *MemoryContext) Delete() {
	if c.deleted {
		return
	}
	if c == TopMemoryContext {
		panic("pgsys: TopMemoryContext cannot be deleted")
	}
	c.Reset()
	if p := c.parent; p != nil {
		for i, child := range p.children {
			if child == c {
				p.children = append(p.children[:i], p.children[i+1:]...)
				break
			}
		}
	}
	c.deleted = true
	if current == c {
		current = c.parent
		if current == nil {
			current = TopMemoryContext
		}
	}
}

// Run executes fn with c as the current memory context, restoring the
// previous one afterwards even when fn aborts.
func (c *MemoryContext) Run(fn func()) {
	old := SwitchTo(c)
	defer SwitchTo(old)
	fn()
}

// TopMemoryContext is the root of the context tree.
var TopMemoryContext = NewMemoryContext("TopMemoryContext", nil)

var current = TopMemoryContext

// CurrentMemoryContext returns the context implicit allocations go to.
func CurrentMemoryContext() *MemoryContext { return current }

// SwitchTo makes c the current memory context and returns the previous one.
func SwitchTo(c *MemoryContext) *MemoryContext {
	c.checkLive()
	old := current
	current = c
	return old
}

// GetMemoryChunkContext returns the context that owns the chunk at p.
func GetMemoryChunkContext(p unsafe.Pointer) *MemoryContext {
	ch, ok := lookupChunk(p)
	if !ok {
		Ereport(ERROR, ErrcodeInternalError, "GetMemoryChunkContext called with invalid pointer")
	}
	return ch.ctx
}

// GetMemoryChunkSpace returns the usable size of the chunk at p.
func GetMemoryChunkSpace(p unsafe.Pointer) int {
	ch, ok := lookupChunk(p)
	if !ok {
		Ereport(ERROR, ErrcodeInternalError, "GetMemoryChunkSpace called with invalid pointer")
	}
	return len(ch.buf)
}

// IsChunk reports whether p is the start of a live arena chunk.
func IsChunk(p unsafe.Pointer) bool {
	_, ok := lookupChunk(p)
	return ok
}

// Palloc allocates size zeroed bytes in the current memory context.
func Palloc(size int) unsafe.Pointer { return current.Alloc(size) }

// Pfree releases a chunk through its owning context.
func Pfree(p unsafe.Pointer) {
	GetMemoryChunkContext(p).Free(p)
}

// Repalloc resizes a chunk within its owning context.
func Repalloc(p unsafe.Pointer, size int) unsafe.Pointer {
	ch, ok := lookupChunk(p)
	if !ok {
		Ereport(ERROR, ErrcodeInternalError, "repalloc called with invalid pointer")
	}
	return ch.ctx.realloc(ch, p, size)
}

// Pstrdup copies s into the current memory context as a NUL terminated
// string.
func Pstrdup(s string) unsafe.Pointer {
	p := Palloc(len(s) + 1)
	copy(unsafe.Slice((*byte)(p), len(s)), s)
	return p
}

// CString reads the NUL terminated string at p.
func CString(p unsafe.Pointer) string {
	if p == nil {
		return ""
	}
	n := 0
	for *(*byte)(unsafe.Add(p, n)) != 0 {
		n++
	}
	return string(unsafe.Slice((*byte)(p), n))
}

var backendMu sync.Mutex

// WithBackend runs fn while holding the process-wide backend lock. Code that
// calls into the engine from several goroutines must go through it.
func WithBackend(fn func()) {
	backendMu.Lock()
	defer backendMu.Unlock()
	fn()
}
