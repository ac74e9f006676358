// Package channel wraps Go channels behind small interfaces so producers and
// the write-behind worker only see the half they use.
package channel

// Receiver is the consuming half.
type Receiver[T any] interface {
	Receive() <-chan T
	// Drain takes up to max buffered values without blocking. max <= 0
	// means everything currently buffered.
	Drain(max int) []T
	Len() int
}

// Sender is the producing half.
type Sender[T any] interface {
	Send(T)
	// TrySend delivers v only if it can do so without blocking.
	TrySend(T) bool
}

// Channel combines both halves.
type Channel[T any] interface {
	Receiver[T]
	Sender[T]
	Close()
}

// New creates a buffered channel. Builds tagged debug always get an
// unbuffered one so every send has to meet the worker.
func New[T any](size int) Channel[T] {
	if debugBuild {
		size = 0
	}
	return NewBuffered[T](size)
}
