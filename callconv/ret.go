package callconv

import "fmt"

// RetKind classifies the outcome of one sub-call.
type RetKind uint8

const (
	// KindZero means there is no value.
	KindZero RetKind = iota
	// KindOnce means there is a value and nothing to save.
	KindOnce
	// KindMany means there is a value and a shipper to resume from.
	KindMany
)

func (k RetKind) String() string {
	switch k {
	case KindZero:
		return "Zero"
	case KindOnce:
		return "Once"
	case KindMany:
		return "Many"
	}
	return fmt.Sprintf("RetKind(%d)", uint8(k))
}

// Ret is a labelled result: shipper S produced value V.
type Ret[S, V any] struct {
	Kind  RetKind
	Rest  S
	Value V
}

func Zero[S, V any]() Ret[S, V]                { return Ret[S, V]{Kind: KindZero} }
func Once[S, V any](v V) Ret[S, V]             { return Ret[S, V]{Kind: KindOnce, Value: v} }
func Many[S, V any](rest S, first V) Ret[S, V] { return Ret[S, V]{Kind: KindMany, Rest: rest, Value: first} }

// mapRet relabels the shipper of a result.
func mapRet[S, T, V any](r Ret[S, V], f func(S) T) Ret[T, V] {
	out := Ret[T, V]{Kind: r.Kind, Value: r.Value}
	if r.Kind == KindMany {
		out.Rest = f(r.Rest)
	}
	return out
}
