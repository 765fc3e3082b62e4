// Package sorting holds two small in-place sorts: a recursive quicksort for
// ordered types and a comparator-driven insertion sweep for anything else.
package sorting

import (
	"cmp"
	"fmt"
	"reflect"
	"unicode/utf16"

	"clonekit/internal/value"
)

// QuickSort sorts s in place in ascending order and returns it.
//
// The first element of each range is the pivot. The partition moves a hole
// from the low end to the high end and back, so no swaps are needed.
// Elements are ordered as by cmp.Compare, so NaNs sort first.
func QuickSort[T cmp.Ordered](s []T) []T {
	quickSort(s, 0, len(s)-1)
	return s
}

func quickSort[T cmp.Ordered](s []T, low, high int) {
	if low >= high {
		return
	}
	pivot := s[low]
	l, h := low, high
	for l != h {
		for h > l && !cmp.Less(s[h], pivot) {
			h--
		}
		s[l] = s[h]
		for l < h && !cmp.Less(pivot, s[l]) {
			l++
		}
		s[h] = s[l]
	}
	s[l] = pivot
	quickSort(s, low, l-1)
	quickSort(s, l+1, high)
}

// InsertionSweep sorts s in place and returns it. It walks forward; when a
// neighbour pair is out of order (compare > 0) it swaps them and sweeps back
// to the start, swapping every out-of-order pair on the way.
//
// A nil compare orders elements by the code points of their fmt string form
// (see ASCIIGreater). Records (maps, structs, objects) never move under the
// default ordering.
func InsertionSweep[T any](s []T, compare func(a, b T) int) []T {
	if compare == nil {
		compare = defaultCompare[T]
	}
	for i := 0; i < len(s)-1; i++ {
		if compare(s[i], s[i+1]) <= 0 {
			continue
		}
		s[i], s[i+1] = s[i+1], s[i]
		for j := i - 1; j >= 0; j-- {
			if compare(s[j], s[j+1]) > 0 {
				s[j], s[j+1] = s[j+1], s[j]
			}
		}
	}
	return s
}

func defaultCompare[T any](a, b T) int {
	if isRecord(a) || isRecord(b) {
		return 0
	}
	if ASCIIGreater(fmt.Sprint(a), fmt.Sprint(b)) {
		return 1
	}
	return 0
}

func isRecord(x any) bool {
	switch v := x.(type) {
	case *value.Object:
		return v.Kind() == value.KindObject
	case value.Value:
		return false
	}
	rv := reflect.ValueOf(x)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return false
		}
		rv = rv.Elem()
	}
	return rv.Kind() == reflect.Map || rv.Kind() == reflect.Struct
}

// ASCIIGreater reports whether cur sorts after next by UTF-16 code unit, so
// characters outside the BMP compare by their surrogates. The strings are
// compared up to the shorter length; if that prefix is equal,
// cur is greater only when it is the longer string. Nothing is greater than
// an empty string.
func ASCIIGreater(cur, next string) bool {
	a, b := utf16.Encode([]rune(cur)), utf16.Encode([]rune(next))
	n := min(len(a), len(b))
	if n == 0 {
		return false
	}
	for i := 0; i < n; i++ {
		switch {
		case a[i] > b[i]:
			return true
		case a[i] < b[i]:
			return false
		}
	}
	return len(a) > len(b)
}
