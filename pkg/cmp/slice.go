package cmp

// check two slices hold equal elements in the same order.
func SliceEq[T comparable](a []T, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	for nth := range a {
		if a[nth] != b[nth] {
			return false
		}
	}
	return true
}

// SliceEq, but elements are compared with pred.
func SliceEqWith[T any, U any](a []T, b []U, pred func(a T, b U) bool) bool {
	if len(a) != len(b) {
		return false
	}
	for nth := range a {
		if !pred(a[nth], b[nth]) {
			return false
		}
	}
	return true
}

// check two slices hold the same elements, ignoring order.
//
// Elements are matched one-to-one: duplicates in a must be matched by
// as many duplicates in b.
func SliceContentEq[T comparable](a []T, b []T) bool {
	return SliceContentEqWith(a, b, func(x, y T) bool { return x == y })
}

// SliceContentEq, but elements are compared with pred.
func SliceContentEqWith[T any, U any](a []T, b []U, pred func(a T, b U) bool) bool {
	if len(a) != len(b) {
		return false
	}
	used := make([]bool, len(b))
A:
	for _, va := range a {
		for nth, vb := range b {
			if used[nth] || !pred(va, vb) {
				continue
			}
			used[nth] = true
			continue A
		}
		return false
	}
	return true
}
