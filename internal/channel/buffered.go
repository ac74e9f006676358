package channel

// Chan is a Channel over a native Go channel. A zero capacity gives an
// unbuffered channel where every Send waits for a receiver.
type Chan[T any] struct {
	ch chan T
}

// NewBuffered creates a channel with the given buffer size.
func NewBuffered[T any](size int) *Chan[T] {
	if size < 0 {
		size = 0
	}
	return &Chan[T]{ch: make(chan T, size)}
}

// NewUnbuffered creates a channel with no buffer.
func NewUnbuffered[T any]() *Chan[T] {
	return NewBuffered[T](0)
}

func (c *Chan[T]) Send(v T) {
	c.ch <- v
}

func (c *Chan[T]) TrySend(v T) bool {
	select {
	case c.ch <- v:
		return true
	default:
		return false
	}
}

func (c *Chan[T]) Receive() <-chan T {
	return c.ch
}

func (c *Chan[T]) Drain(max int) []T {
	var out []T
	for max <= 0 || len(out) < max {
		select {
		case v, ok := <-c.ch:
			if !ok {
				return out
			}
			out = append(out, v)
		default:
			return out
		}
	}
	return out
}

// Len returns the number of buffered items; always 0 when unbuffered.
func (c *Chan[T]) Len() int {
	return len(c.ch)
}

func (c *Chan[T]) Close() {
	close(c.ch)
}
