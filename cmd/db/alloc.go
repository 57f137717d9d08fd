package db

import (
	"math/rand"
	"unsafe"
)

var (
	queueBlockSize   = int(unsafe.Sizeof(Queue{}))
	elementBlockSize = int(unsafe.Sizeof(element{}))
)

// Allocator hands out storage for the queue, its elements and their strings.
// Malloc reports whether a block of size bytes could be obtained.
type Allocator interface {
	Malloc(size int) bool
	Free(size int)
}

// Heap never refuses a request and keeps no books.
type Heap struct{}

func (Heap) Malloc(int) bool {
	return true
}

func (Heap) Free(int) {}

// Tracker counts outstanding blocks and fails a percentage of requests.
type Tracker struct {
	FailPercent int
	blocks      int
	bytes       int
	rng         *rand.Rand
}

func NewTracker(failPercent int, seed int64) *Tracker {
	return &Tracker{FailPercent: failPercent, rng: rand.New(rand.NewSource(seed))}
}

func (t *Tracker) Malloc(size int) bool {
	if t.FailPercent > 0 {
		if t.rng == nil {
			t.rng = rand.New(rand.NewSource(1))
		}
		if t.rng.Intn(100) < t.FailPercent {
			return false
		}
	}

	t.blocks++
	t.bytes += size
	return true
}

func (t *Tracker) Free(size int) {
	t.blocks--
	t.bytes -= size
}

// Blocks returns the number of blocks handed out and not yet freed.
func (t *Tracker) Blocks() int {
	return t.blocks
}

func (t *Tracker) Bytes() int {
	return t.bytes
}
