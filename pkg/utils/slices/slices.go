package slices

// Map applies f to each element.
func Map[T any, R any](sli []T, f func(T) R) []R {
	ret := make([]R, len(sli))
	for i, v := range sli {
		ret[i] = f(v)
	}
	return ret
}

// First finds the first element satisfying pred.
func First[T any](sli []T, pred func(T) bool) (T, bool) {
	for _, v := range sli {
		if pred(v) {
			return v, true
		}
	}
	return *new(T), false
}
