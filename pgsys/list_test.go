package pgsys

import (
	"testing"
	"unsafe"
)

func TestListLayout(t *testing.T) {
	if ListHeaderSize != 24 {
		t.Errorf("ListHeaderSize = %d, want 24", ListHeaderSize)
	}
	if ListCellSize != 8 {
		t.Errorf("ListCellSize = %d, want 8", ListCellSize)
	}
	if ListInlineCapacity != 5 {
		t.Errorf("ListInlineCapacity = %d, want 5", ListInlineCapacity)
	}
}

func TestLappendGrowsOutOfInlineStorage(t *testing.T) {
	mcx, alloc := newTestContext(t)
	defer alloc.AssertSize(t, 0)
	defer mcx.Delete()

	mcx.Run(func() {
		var l *List
		for i := range ListInlineCapacity {
			l = LappendInt(l, int32(i))
		}
		if !l.UsesInlineStorage() {
			t.Fatal("list left inline storage before it was full")
		}
		if GetMemoryChunkSpace(unsafe.Pointer(l)) != ListBlockSize {
			t.Errorf("first block = %d bytes, want %d", GetMemoryChunkSpace(unsafe.Pointer(l)), ListBlockSize)
		}

		l = LappendInt(l, 99)
		if l.UsesInlineStorage() {
			t.Fatal("list still inline after growing")
		}
		if AssertEnabled {
			raw := unsafe.Slice((*byte)(unsafe.Pointer(l.InitialElements())), ListInlineCapacity*ListCellSize)
			for i, b := range raw {
				if b != ClobberByte {
					t.Fatalf("vacated inline byte %d = %x, want %x", i, b, ClobberByte)
				}
			}
		}
		for i := range ListInlineCapacity {
			if got := l.Cell(i).IntValue(); got != int32(i) {
				t.Errorf("cell %d = %d, want %d", i, got, i)
			}
		}
		if got := l.Cell(ListInlineCapacity).IntValue(); got != 99 {
			t.Errorf("last cell = %d, want 99", got)
		}
		ListFree(l)
	})
}

func TestLappendTagMismatch(t *testing.T) {
	mcx, alloc := newTestContext(t)
	defer alloc.AssertSize(t, 0)
	defer mcx.Delete()

	mcx.Run(func() {
		l := LappendOid(nil, 16)
		rep := CatchReport(func() { LappendInt(l, 1) })
		if rep == nil {
			t.Fatal("appending an int to an oid list must fail")
		}
	})
}

func TestMakeString(t *testing.T) {
	mcx, alloc := newTestContext(t)
	defer alloc.AssertSize(t, 0)
	defer mcx.Delete()

	mcx.Run(func() {
		var l *List
		for _, s := range []string{"pg_catalog", "int4"} {
			l = Lappend(l, MakeString(s))
		}
		if NodeTagOf(unsafe.Pointer(l)) != T_List {
			t.Errorf("tag = %s", NodeTagOf(unsafe.Pointer(l)))
		}
		got := []string{StrVal(l.Cell(0).PtrValue()), StrVal(l.Cell(1).PtrValue())}
		if got[0] != "pg_catalog" || got[1] != "int4" {
			t.Errorf("names = %v", got)
		}
	})
}
