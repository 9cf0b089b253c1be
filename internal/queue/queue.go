// Package queue provides a value-based binary min-heap keyed by a float32
// priority. The partitioner's under-fill correction uses it to pick boundary
// donors without re-sorting full slices each round.
package queue

// Item represents an entry in the priority queue.
// Value-based (no pointers) for cache locality and zero allocations.
type Item struct {
	Record   int     // Record is the caller-defined payload, typically a row index.
	Priority float32 // Priority orders the queue.
}

// PriorityQueue is a binary min-heap of Items: the top holds the smallest
// priority.
type PriorityQueue struct {
	items []Item
}

// NewMin creates a min-heap with the given initial capacity.
func NewMin(capacity int) *PriorityQueue {
	return &PriorityQueue{items: make([]Item, 0, capacity)}
}

// Len returns the number of elements in the heap.
func (pq *PriorityQueue) Len() int { return len(pq.items) }

// Top returns the top element without removing it.
func (pq *PriorityQueue) Top() (Item, bool) {
	if len(pq.items) == 0 {
		return Item{}, false
	}
	return pq.items[0], true
}

// Push inserts an item while maintaining the heap invariant.
func (pq *PriorityQueue) Push(item Item) {
	pq.items = append(pq.items, item)
	pq.siftUp(len(pq.items) - 1)
}

// Pop removes and returns the top element from the heap.
func (pq *PriorityQueue) Pop() (Item, bool) {
	n := len(pq.items)
	if n == 0 {
		return Item{}, false
	}

	item := pq.items[0]
	pq.items[0] = pq.items[n-1]
	pq.items = pq.items[:n-1]

	if len(pq.items) > 0 {
		pq.siftDown(0)
	}

	return item, true
}

// Reset clears the priority queue without freeing memory.
func (pq *PriorityQueue) Reset() {
	pq.items = pq.items[:0]
}

func (pq *PriorityQueue) less(i, j int) bool {
	if pq.items[i].Priority != pq.items[j].Priority {
		return pq.items[i].Priority < pq.items[j].Priority
	}
	// Equal priorities resolve by record index for determinism.
	return pq.items[i].Record < pq.items[j].Record
}

func (pq *PriorityQueue) swap(i, j int) {
	pq.items[i], pq.items[j] = pq.items[j], pq.items[i]
}

func (pq *PriorityQueue) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !pq.less(i, parent) {
			break
		}
		pq.swap(i, parent)
		i = parent
	}
}

func (pq *PriorityQueue) siftDown(i int) {
	n := len(pq.items)
	for {
		left := 2*i + 1
		if left >= n {
			break
		}
		child := left
		right := left + 1
		if right < n && pq.less(right, left) {
			child = right
		}
		if !pq.less(child, i) {
			break
		}
		pq.swap(i, child)
		i = child
	}
}
