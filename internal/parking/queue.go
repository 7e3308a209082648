package parking

import (
	"fmt"
	"strings"
)

// Queue is the entrance gate: an unbounded FIFO of car IDs.
type Queue struct {
	front *car
	rear  *car
	size  int
}

func NewQueue() *Queue {
	return &Queue{}
}

func (q *Queue) Enqueue(id int) {
	c := newCar(id)
	if q.rear == nil {
		q.front = c
		q.rear = c
	} else {
		q.rear.next = c
		q.rear = c
	}
	q.size++
}

func (q *Queue) Dequeue() (int, error) {
	if q.front == nil {
		return 0, ErrEmpty
	}
	c := q.front
	q.front = c.next
	if q.front == nil {
		q.rear = nil
	}
	c.next = nil
	q.size--
	return c.id, nil
}

func (q *Queue) PeekFront() (int, error) {
	if q.front == nil {
		return 0, ErrEmpty
	}
	return q.front.id, nil
}

func (q *Queue) Contains(id int) bool {
	for c := q.front; c != nil; c = c.next {
		if c.id == id {
			return true
		}
	}
	return false
}

func (q *Queue) Size() int {
	return q.size
}

func (q *Queue) IsEmpty() bool {
	return q.size == 0
}

// IDs returns the queued car IDs from front to rear.
func (q *Queue) IDs() []int {
	ids := make([]int, 0, q.size)
	for c := q.front; c != nil; c = c.next {
		ids = append(ids, c.id)
	}
	return ids
}

func (q *Queue) String() string {
	if q.front == nil {
		return "(empty)"
	}
	var b strings.Builder
	b.WriteString("Front -> ")
	for c := q.front; c != nil; c = c.next {
		fmt.Fprintf(&b, "%d", c.id)
		if c.next != nil {
			b.WriteString(" -> ")
		}
	}
	b.WriteString(" <- Rear")
	return b.String()
}
