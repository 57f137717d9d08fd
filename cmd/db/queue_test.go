package db

import (
	"math/rand"
	"reflect"
	"testing"
)

// checkLinks verifies size, tail and termination of the chain.
func checkLinks(t *testing.T, q *Queue) {
	t.Helper()

	if q.size == 0 {
		if q.head != nil || q.tail != nil {
			t.Error("Expected head and tail to be nil on an empty queue")
		}
		return
	}

	n := 0
	var last *element
	for node := q.head; node != nil && n <= q.size; node = node.next {
		last = node
		n++
	}
	if n != q.size {
		t.Errorf("Expected %d reachable elements, found %d", q.size, n)
	}
	if last != q.tail {
		t.Error("Expected tail to be the last reachable element")
	}
	if q.tail.next != nil {
		t.Error("Expected tail to terminate the chain")
	}
}

func TestQueue(t *testing.T) {
	q := NewQueue()
	q.InsertTail("5")
	q.InsertTail("7")
	q.InsertTail("9")

	if q.Size() != 3 {
		t.Error("Expected Size() to be 3")
	}

	buf := make([]byte, 16)
	if !q.RemoveHead(buf) || CString(buf) != "5" {
		t.Error("Expected RemoveHead() to return 5")
	}
	if !q.RemoveHead(buf) || CString(buf) != "7" {
		t.Error("Expected RemoveHead() to return 7")
	}

	if v, ok := q.Peek(); !ok || v != "9" {
		t.Error("Expected Peek() to return 9")
	}
	if q.Size() != 1 {
		t.Error("Expected Size() to be 1")
	}
	if !q.RemoveHead(buf) || CString(buf) != "9" {
		t.Error("Expected RemoveHead() to return 9")
	}
	if q.Size() != 0 {
		t.Error("Expected Size() to be 0")
	}
	checkLinks(t, q)

	q.InsertHead("11")
	if q.Size() != 1 {
		t.Error("Expected Size() to be 1")
	}
	checkLinks(t, q)
	if !q.RemoveHead(buf) || CString(buf) != "11" {
		t.Error("Expected RemoveHead() to return 11")
	}
	if q.RemoveHead(buf) {
		t.Error("Expected RemoveHead() on an empty queue to fail")
	}
	if _, ok := q.Peek(); ok {
		t.Error("Expected Peek() to find nothing")
	}
	q.Free()
}

func TestInsertHeadThenRemove(t *testing.T) {
	q := NewQueue()
	q.InsertTail("first")
	q.InsertHead("hello there!")

	buf := make([]byte, 64)
	if !q.RemoveHead(buf) || CString(buf) != "hello there!" {
		t.Errorf("Expected RemoveHead() to return 'hello there!', got %q", CString(buf))
	}
	checkLinks(t, q)
}

func TestInsertHeadBecomesTail(t *testing.T) {
	q := NewQueue()
	q.InsertHead("only")
	if q.head != q.tail {
		t.Error("Expected first insert to set both head and tail")
	}
	q.InsertTail("last")
	if q.tail.value != "last" || q.head.value != "only" {
		t.Error("Expected head 'only' and tail 'last'")
	}
	checkLinks(t, q)
}

func TestNilQueue(t *testing.T) {
	var q *Queue

	q.Free()
	if q.InsertHead("a") {
		t.Error("Expected InsertHead() on nil queue to fail")
	}
	if q.InsertTail("a") {
		t.Error("Expected InsertTail() on nil queue to fail")
	}

	buf := []byte("untouched")
	if q.RemoveHead(buf) {
		t.Error("Expected RemoveHead() on nil queue to fail")
	}
	if string(buf) != "untouched" {
		t.Error("Expected buffer to be untouched")
	}
	if q.Size() != 0 {
		t.Error("Expected Size() of nil queue to be 0")
	}
	if q.Values() != nil {
		t.Error("Expected Values() of nil queue to be nil")
	}

	q.Reverse()
	q.Sort()
}

func TestRemoveHeadEmptyLeavesBuffer(t *testing.T) {
	q := NewQueue()
	buf := []byte("XXXX")
	if q.RemoveHead(buf) {
		t.Error("Expected RemoveHead() on empty queue to fail")
	}
	if string(buf) != "XXXX" {
		t.Errorf("Expected buffer to be untouched, got %q", buf)
	}
}

func TestRemoveHeadTruncates(t *testing.T) {
	q := NewQueue()
	q.InsertTail("abcdefghij")
	q.InsertTail("xy")
	q.InsertTail("z")

	buf := []byte("########")
	if !q.RemoveHead(buf[:5]) {
		t.Fatal("Expected RemoveHead() to succeed")
	}
	if string(buf[:5]) != "abcd\x00" {
		t.Errorf("Expected 'abcd' plus terminator, got %q", buf[:5])
	}
	if buf[5] != '#' {
		t.Error("Expected RemoveHead() to stay within capacity")
	}

	one := []byte{'#'}
	if !q.RemoveHead(one) || one[0] != 0 {
		t.Error("Expected a one byte buffer to hold only the terminator")
	}

	if !q.RemoveHead(nil) {
		t.Error("Expected RemoveHead(nil) to succeed")
	}
	if q.Size() != 0 {
		t.Error("Expected Size() to be 0")
	}
	checkLinks(t, q)
}

func TestInsertCopiesFullString(t *testing.T) {
	long := make([]byte, 4096)
	for i := range long {
		long[i] = byte('a' + i%26)
	}

	q := NewQueue()
	q.InsertTail(string(long))
	if v, _ := q.Peek(); v != string(long) {
		t.Error("Expected insert to keep the whole string")
	}
}

func TestReverse(t *testing.T) {
	q := NewQueue()
	q.InsertHead("a")
	q.InsertHead("b")
	q.InsertHead("c")

	q.Reverse()
	checkLinks(t, q)

	buf := make([]byte, 8)
	for _, want := range []string{"a", "b", "c"} {
		if !q.RemoveHead(buf) || CString(buf) != want {
			t.Errorf("Expected RemoveHead() to return %s, got %s", want, CString(buf))
		}
	}
}

func TestReverseInPlace(t *testing.T) {
	tr := NewTracker(0, 1)
	q := NewQueueWith(tr)
	for _, s := range []string{"1", "2", "3", "4"} {
		q.InsertTail(s)
	}

	nodes := map[*element]bool{}
	for node := q.head; node != nil; node = node.next {
		nodes[node] = true
	}
	blocks := tr.Blocks()

	q.Reverse()
	if !reflect.DeepEqual(q.Values(), []string{"4", "3", "2", "1"}) {
		t.Errorf("Expected reversed order, got %v", q.Values())
	}
	for node := q.head; node != nil; node = node.next {
		if !nodes[node] {
			t.Error("Expected Reverse() to reuse existing elements")
		}
	}
	if tr.Blocks() != blocks {
		t.Error("Expected Reverse() not to allocate")
	}

	q.Reverse()
	if !reflect.DeepEqual(q.Values(), []string{"1", "2", "3", "4"}) {
		t.Error("Expected Reverse() twice to restore the order")
	}
	checkLinks(t, q)

	single := NewQueue()
	single.InsertTail("x")
	single.Reverse()
	if single.head != single.tail || single.Size() != 1 {
		t.Error("Expected single element queue to be unchanged")
	}
}

func TestAllocationFailure(t *testing.T) {
	tr := NewTracker(0, 1)
	q := NewQueueWith(tr)
	q.InsertTail("keep")
	blocks, bytes := tr.Blocks(), tr.Bytes()

	tr.FailPercent = 100
	if q.InsertHead("nope") || q.InsertTail("nope") {
		t.Error("Expected inserts to fail when allocation is refused")
	}
	if tr.Blocks() != blocks || tr.Bytes() != bytes {
		t.Error("Expected failed inserts not to leak blocks")
	}
	if !reflect.DeepEqual(q.Values(), []string{"keep"}) || q.Size() != 1 {
		t.Error("Expected failed inserts not to modify the queue")
	}
	checkLinks(t, q)

	if NewQueueWith(tr) != nil {
		t.Error("Expected NewQueueWith() to return nil when allocation is refused")
	}

	tr.FailPercent = 0
	q.Free()
	if tr.Blocks() != 0 || tr.Bytes() != 0 {
		t.Errorf("Expected Free() to release everything, %d blocks remain", tr.Blocks())
	}
}

// refuseNth refuses only the nth allocation request.
type refuseNth struct {
	n      int
	calls  int
	blocks int
}

func (r *refuseNth) Malloc(int) bool {
	r.calls++
	if r.calls == r.n {
		return false
	}
	r.blocks++
	return true
}

func (r *refuseNth) Free(int) { r.blocks-- }

func TestInsertRollsBackElement(t *testing.T) {
	// queue block, element block, then the string copy
	alloc := &refuseNth{n: 3}
	q := NewQueueWith(alloc)
	if q == nil {
		t.Fatal("Expected queue block to be granted")
	}

	if q.InsertTail("x") {
		t.Error("Expected InsertTail() to fail on string allocation")
	}
	if alloc.blocks != 1 {
		t.Errorf("Expected only the queue block to remain, got %d", alloc.blocks)
	}
	if q.Size() != 0 {
		t.Error("Expected Size() to be 0")
	}
}

func TestSizeTracksOperations(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	tr := NewTracker(20, 7)
	q := NewQueue()
	q.alloc = tr

	want := 0
	for i := 0; i < 2000; i++ {
		switch rng.Intn(3) {
		case 0:
			if q.InsertHead(randomString(rng)) {
				want++
			}
		case 1:
			if q.InsertTail(randomString(rng)) {
				want++
			}
		case 2:
			if q.RemoveHead(nil) {
				want--
			}
		}
		if q.Size() != want {
			t.Fatalf("Expected Size() to be %d, got %d", want, q.Size())
		}
	}
	checkLinks(t, q)
	if tr.Blocks() != 2*want {
		t.Errorf("Expected %d outstanding blocks, got %d", 2*want, tr.Blocks())
	}
}

func randomString(rng *rand.Rand) string {
	b := make([]byte, rng.Intn(8))
	for i := range b {
		b[i] = byte('a' + rng.Intn(4))
	}
	return string(b)
}
