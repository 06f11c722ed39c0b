package memory

import (
	"unsafe"

	"golang.org/x/exp/constraints"
)

// NextPowerOf2 returns the smallest power of two not less than v. Containers
// use it for capacity growth so bulk blocks come in few distinct sizes.
func NextPowerOf2[I constraints.Integer](v I) I {
	n := I(1)
	for n < v {
		n <<= 1
	}
	return n
}

// AddressOf returns the address of the first element of s.
func AddressOf[T any](s []T) uintptr {
	return uintptr(unsafe.Pointer(&s[0]))
}

// Fill assigns v to every element of s.
func Fill[T any](s []T, v T) {
	for i := range s {
		s[i] = v
	}
}
