package cmp

// check two maps hold the same keys with equal values.
func MapEq[K comparable, V comparable](a map[K]V, b map[K]V) bool {
	return MapEqWith(a, b, func(x, y V) bool { return x == y })
}

// MapEq, but values are compared with pred.
func MapEqWith[K comparable, V any, U any](a map[K]V, b map[K]U, pred func(a V, b U) bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k, va := range a {
		vb, ok := b[k]
		if !ok || !pred(va, vb) {
			return false
		}
	}
	return true
}
