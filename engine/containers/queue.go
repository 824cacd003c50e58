package containers

// Queue is a FIFO backed by a ring buffer that doubles its capacity when
// full, so Enqueue never drops a value.
type Queue[T any] struct {
	data       []T
	readIndex  int
	writeIndex int
	count      int
}

// Create a new Queue with the given initial capacity.
func NewQueue[T any](capacity int) *Queue[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Queue[T]{
		data: make([]T, capacity),
	}
}

// Enqueue adds an element to the back of the queue.
func (q *Queue[T]) Enqueue(value T) {
	if q.IsFull() {
		q.grow()
	}
	q.data[q.writeIndex] = value
	q.writeIndex = (q.writeIndex + 1) % len(q.data)
	q.count++
}

// Dequeue removes and returns the front element in the queue.
func (q *Queue[T]) Dequeue() (T, bool) {
	var zero T
	if q.IsEmpty() {
		return zero, false
	}
	value := q.data[q.readIndex]
	q.data[q.readIndex] = zero
	q.readIndex = (q.readIndex + 1) % len(q.data)
	q.count--
	return value, true
}

// Peek returns the front element without removing it.
func (q *Queue[T]) Peek() (T, bool) {
	if q.IsEmpty() {
		var zero T
		return zero, false
	}
	return q.data[q.readIndex], true
}

func (q *Queue[T]) Len() int {
	return q.count
}

func (q *Queue[T]) Cap() int {
	return len(q.data)
}

// IsEmpty checks if the queue is empty
func (q *Queue[T]) IsEmpty() bool {
	return q.count == 0
}

// IsFull checks if the queue is full
func (q *Queue[T]) IsFull() bool {
	return q.count == len(q.data)
}

func (q *Queue[T]) grow() {
	data := make([]T, len(q.data)*2)
	for i := 0; i < q.count; i++ {
		data[i] = q.data[(q.readIndex+i)%len(q.data)]
	}
	q.data = data
	q.readIndex = 0
	q.writeIndex = q.count
}
