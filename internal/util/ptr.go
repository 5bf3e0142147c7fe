package util

// Ptr returns a pointer to v, for optional fields set from literals.
func Ptr[T any](v T) *T {
	return &v
}

// ValueOr dereferences p, or returns def when p is nil.
func ValueOr[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}
