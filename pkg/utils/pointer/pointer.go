package pointer

func Ref[T any](t T) *T {
	return &t
}

func SafeDeref[T any](ptr *T) T {
	if ptr == nil {
		return *new(T)
	}
	return *ptr
}
