package queue

// Option configures an InMemoryQueue.
type Option func(*InMemoryQueue)

// WithCapacity sets the maximum number of jobs the queue will accept.
func WithCapacity(n int) Option {
	return func(q *InMemoryQueue) {
		if n > 0 {
			q.capacity = n
			q.bufferSize = n
		}
	}
}

// WithBufferSize sets the channel buffer size independently of the
// logical capacity.
func WithBufferSize(n int) Option {
	return func(q *InMemoryQueue) {
		if n > 0 {
			q.bufferSize = n
		}
	}
}
