package display

// History keeps the most recent values up to a fixed capacity. Appending
// to a full History drops the oldest value.
type History[T any] struct {
	buf   []T
	start int
	size  int
}

// NewHistory returns an empty History of the given capacity.
func NewHistory[T any](capacity int) *History[T] {
	if capacity < 1 {
		panic("display: history capacity must be positive")
	}
	return &History[T]{buf: make([]T, capacity)}
}

// Append adds v, dropping the oldest value when full.
func (h *History[T]) Append(v T) {
	if h.size < len(h.buf) {
		h.buf[(h.start+h.size)%len(h.buf)] = v
		h.size++
		return
	}
	h.buf[h.start] = v
	h.start = (h.start + 1) % len(h.buf)
}

// Values returns the retained values, oldest first.
func (h *History[T]) Values() []T {
	out := make([]T, h.size)
	for i := range out {
		out[i] = h.buf[(h.start+i)%len(h.buf)]
	}
	return out
}

// Len returns the number of retained values.
func (h *History[T]) Len() int { return h.size }

// Cap returns the maximum number of retained values.
func (h *History[T]) Cap() int { return len(h.buf) }
