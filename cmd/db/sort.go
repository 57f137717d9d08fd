package db

// Sort orders the queue ascending by byte-wise string comparison. Elements
// are relinked in place; equal strings keep their relative order.
func (q *Queue) Sort() {
	if q == nil || q.head == nil || q.head.next == nil {
		return
	}

	q.head = mergeSort(q.head)

	// merge does not track the last element
	tail := q.head
	for tail.next != nil {
		tail = tail.next
	}
	q.tail = tail
}

func mergeSort(head *element) *element {
	if head == nil || head.next == nil {
		return head
	}

	slow, fast := head, head.next
	for fast != nil && fast.next != nil {
		slow = slow.next
		fast = fast.next.next
	}
	right := slow.next
	slow.next = nil

	return merge(mergeSort(head), mergeSort(right))
}

func merge(left, right *element) *element {
	var head *element
	link := &head
	for left != nil && right != nil {
		if right.value < left.value {
			*link = right
			right = right.next
		} else {
			*link = left
			left = left.next
		}
		link = &(*link).next
	}

	if left != nil {
		*link = left
	} else {
		*link = right
	}
	return head
}
