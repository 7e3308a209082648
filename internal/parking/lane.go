package parking

import (
	"fmt"
	"strings"
)

// NotFound is returned by Lane.FindPosition when the car is not in the lane.
const NotFound = -1

// Lane is a single-file parking lane: a LIFO stack of car IDs with a fixed
// capacity. Only the top car can leave.
type Lane struct {
	top      *car
	size     int
	capacity int
}

func NewLane(capacity int) *Lane {
	return &Lane{capacity: capacity}
}

// Push places id on top of the lane. It reports false, leaving the lane
// untouched, when the lane is full.
func (l *Lane) Push(id int) bool {
	if l.IsFull() {
		return false
	}
	c := newCar(id)
	c.next = l.top
	l.top = c
	l.size++
	return true
}

func (l *Lane) Pop() (int, error) {
	if l.top == nil {
		return 0, ErrEmpty
	}
	c := l.top
	l.top = c.next
	c.next = nil
	l.size--
	return c.id, nil
}

func (l *Lane) PeekTop() (int, error) {
	if l.top == nil {
		return 0, ErrEmpty
	}
	return l.top.id, nil
}

// FindPosition returns the 1-based position of id counted from the top, or
// NotFound.
func (l *Lane) FindPosition(id int) int {
	pos := 1
	for c := l.top; c != nil; c = c.next {
		if c.id == id {
			return pos
		}
		pos++
	}
	return NotFound
}

func (l *Lane) Size() int {
	return l.size
}

func (l *Lane) Capacity() int {
	return l.capacity
}

func (l *Lane) IsEmpty() bool {
	return l.size == 0
}

func (l *Lane) IsFull() bool {
	return l.size >= l.capacity
}

// Sort orders the lane ascending by car ID from top to bottom. Equal IDs
// keep their relative order. Nodes are relinked, not copied.
func (l *Lane) Sort() {
	l.top = mergeSort(l.top)
}

// IDs returns the parked car IDs from top to bottom.
func (l *Lane) IDs() []int {
	ids := make([]int, 0, l.size)
	for c := l.top; c != nil; c = c.next {
		ids = append(ids, c.id)
	}
	return ids
}

func (l *Lane) String() string {
	if l.top == nil {
		return "  (empty)"
	}
	var b strings.Builder
	pos := 1
	for c := l.top; c != nil; c = c.next {
		fmt.Fprintf(&b, "  Position %d -> CarID: %d", pos, c.id)
		if c.next != nil {
			b.WriteByte('\n')
		}
		pos++
	}
	return b.String()
}

func mergeSort(head *car) *car {
	if head == nil || head.next == nil {
		return head
	}
	front, back := split(head)
	return merge(mergeSort(front), mergeSort(back))
}

// split cuts the chain after the slow pointer's node. For odd lengths the
// front half gets the extra node.
func split(head *car) (front, back *car) {
	slow, fast := head, head.next
	for fast != nil {
		fast = fast.next
		if fast != nil {
			slow = slow.next
			fast = fast.next
		}
	}
	back = slow.next
	slow.next = nil
	return head, back
}

// merge relinks two sorted chains into one. On equal IDs a wins.
func merge(a, b *car) *car {
	var head car
	tail := &head
	for a != nil && b != nil {
		if a.id <= b.id {
			tail.next = a
			a = a.next
		} else {
			tail.next = b
			b = b.next
		}
		tail = tail.next
	}
	if a != nil {
		tail.next = a
	} else {
		tail.next = b
	}
	return head.next
}
