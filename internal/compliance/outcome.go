package compliance

// Outcome is an answer together with how it was produced. Degraded is set
// when a deterministic fallback replaced a failed or malformed model answer.
type Outcome[T any] struct {
	Value    T
	Degraded bool
	Reason   string
}

// Fresh wraps a value produced by the normal path.
func Fresh[T any](v T) Outcome[T] {
	return Outcome[T]{Value: v}
}

// Fallback wraps a value produced by a fallback path.
func Fallback[T any](v T, reason string) Outcome[T] {
	return Outcome[T]{Value: v, Degraded: true, Reason: reason}
}
