package slices

// apply mapper to each element, collecting results in order.
func Map[T any, R any](sli []T, mapper func(v T) R) []R {
	ret := make([]R, len(sli))
	for nth, v := range sli {
		ret[nth] = mapper(v)
	}
	return ret
}

// collect elements passing the predicate, keeping order.
func Filter[T any](sli []T, pred func(v T) bool) []T {
	ret := []T{}
	for _, v := range sli {
		if pred(v) {
			ret = append(ret, v)
		}
	}
	return ret
}

// keys of a map. Ordering is not defined.
func KeysOf[K comparable, T any](m map[K]T) []K {
	ret := make([]K, 0, len(m))
	for k := range m {
		ret = append(ret, k)
	}
	return ret
}

// values of a map. Ordering is not defined.
func ValuesOf[K comparable, T any](m map[K]T) []T {
	ret := make([]T, 0, len(m))
	for _, v := range m {
		ret = append(ret, v)
	}
	return ret
}

// first element passing the predicate, and whether one was found.
func First[T any](sli []T, pred func(v T) bool) (T, bool) {
	for _, v := range sli {
		if pred(v) {
			return v, true
		}
	}
	return *new(T), false
}

// whether any element passes the predicate.
func Contains[T any](sli []T, pred func(v T) bool) bool {
	_, ok := First(sli, pred)
	return ok
}
