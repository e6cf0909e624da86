package mathx

import "golang.org/x/exp/constraints"

// Min/Max for the binding and lighting clamps.
func Min[T constraints.Ordered](a, b T) T {
	if a < b {
		return a
	}
	return b
}

func Max[T constraints.Ordered](a, b T) T {
	if a > b {
		return a
	}
	return b
}
