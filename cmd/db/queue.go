package db

import "strings"

type element struct {
	value string
	next  *element
}

// Queue is a singly linked queue of strings. A nil *Queue is a valid absent
// queue: mutators report false and readers report nothing.
//
// Queue is not safe for concurrent use.
type Queue struct {
	head  *element
	tail  *element
	size  int
	alloc Allocator
}

func NewQueue() *Queue {
	return NewQueueWith(nil)
}

// NewQueueWith creates an empty queue drawing storage from alloc. It returns
// nil if alloc refuses the queue's own block.
func NewQueueWith(alloc Allocator) *Queue {
	if alloc == nil {
		alloc = Heap{}
	}
	if !alloc.Malloc(queueBlockSize) {
		return nil
	}

	return &Queue{alloc: alloc}
}

// Free releases every element and the queue itself. The queue must not be
// used afterwards.
func (q *Queue) Free() {
	if q == nil {
		return
	}

	for q.head != nil {
		node := q.head
		q.head = node.next
		node.next = nil
		q.release(node)
	}

	q.tail = nil
	q.size = 0
	q.alloc.Free(queueBlockSize)
}

func (q *Queue) InsertHead(item string) bool {
	if q == nil {
		return false
	}

	node, ok := q.newElement(item)
	if !ok {
		return false
	}

	node.next = q.head
	q.head = node
	if q.tail == nil {
		q.tail = node
	}
	q.size++
	return true
}

func (q *Queue) InsertTail(item string) bool {
	if q == nil {
		return false
	}

	node, ok := q.newElement(item)
	if !ok {
		return false
	}

	if q.tail == nil {
		q.head, q.tail = node, node
	} else {
		q.tail.next = node
		q.tail = node
	}
	q.size++
	return true
}

// RemoveHead detaches the first element. If sp is non-nil the removed string
// is copied into it, truncated to len(sp)-1 bytes and NUL terminated. sp is
// left untouched when there is nothing to remove.
func (q *Queue) RemoveHead(sp []byte) bool {
	if q == nil || q.head == nil {
		return false
	}

	head := q.head
	if sp != nil {
		copyOut(sp, head.value)
	}

	q.head = head.next
	if q.head == nil {
		q.tail = nil
	}
	q.size--

	head.next = nil
	q.release(head)
	return true
}

func (q *Queue) Size() int {
	if q == nil || q.head == nil {
		return 0
	}

	return q.size
}

// Peek returns the head value without removing it.
func (q *Queue) Peek() (string, bool) {
	if q == nil || q.head == nil {
		return "", false
	}

	return q.head.value, true
}

// Values returns the stored strings from head to tail.
func (q *Queue) Values() []string {
	if q == nil {
		return nil
	}

	out := make([]string, 0, q.size)
	for node := q.head; node != nil; node = node.next {
		out = append(out, node.value)
	}
	return out
}

// Reverse flips every link in place. No element is allocated or freed.
func (q *Queue) Reverse() {
	if q == nil || q.head == nil {
		return
	}

	var prev *element
	cur := q.head
	for cur != nil {
		next := cur.next
		cur.next = prev
		prev = cur
		cur = next
	}

	q.head, q.tail = q.tail, q.head
}

func (q *Queue) newElement(item string) (*element, bool) {
	if !q.alloc.Malloc(elementBlockSize) {
		return nil, false
	}
	if !q.alloc.Malloc(len(item) + 1) {
		q.alloc.Free(elementBlockSize)
		return nil, false
	}

	return &element{value: strings.Clone(item)}, true
}

func (q *Queue) release(node *element) {
	q.alloc.Free(len(node.value) + 1)
	q.alloc.Free(elementBlockSize)
	node.value = ""
}

func copyOut(sp []byte, value string) {
	if len(sp) == 0 {
		return
	}

	n := copy(sp[:len(sp)-1], value)
	sp[n] = 0
}

// CString returns the contents of sp up to its first NUL byte.
func CString(sp []byte) string {
	if i := strings.IndexByte(string(sp), 0); i >= 0 {
		return string(sp[:i])
	}
	return string(sp)
}
