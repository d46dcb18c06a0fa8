package try

// something having a `Fatal` method. *testing.T and log.Logger qualify.
type Fataler interface {
	Fatal(...any)
}

// wrapper of a (T, error) pair.
//
// When the error is nil the Either is "ok" and the T value is valid;
// otherwise the value is not to be used.
type Either[T any] interface {
	// the wrapped pair.
	Get() (T, error)

	// the T value when ok; otherwise ftl.Fatal(err) is called.
	// If ftl has a Helper() method (like *testing.T), it is called first.
	OrFatal(ftl Fataler) T

	// the T value when ok, otherwise the given default.
	OrDefault(T) T
}

func To[T any](ok T, ng error) Either[T] {
	if ng == nil {
		return tryOk[T]{ok}
	}
	return tryNg[T]{ng}
}

type tryOk[T any] struct {
	value T
}

func (ok tryOk[T]) Get() (T, error)   { return ok.value, nil }
func (ok tryOk[T]) OrFatal(Fataler) T { return ok.value }
func (ok tryOk[T]) OrDefault(T) T     { return ok.value }

type tryNg[T any] struct {
	err error
}

func (ng tryNg[T]) Get() (T, error) { return *new(T), ng.err }

func (ng tryNg[T]) OrFatal(ftl Fataler) T {
	if hlp, ok := ftl.(interface{ Helper() }); ok {
		hlp.Helper()
	}
	ftl.Fatal(ng.err)
	return *new(T)
}

func (ng tryNg[T]) OrDefault(d T) T { return d }
