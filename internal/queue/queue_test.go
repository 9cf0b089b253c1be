package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinHeapOrder(t *testing.T) {
	pq := NewMin(4)
	for i, p := range []float32{5, 1, 3, 2, 4} {
		pq.Push(Item{Record: i, Priority: p})
	}

	var got []float32
	for pq.Len() > 0 {
		item, ok := pq.Pop()
		require.True(t, ok)
		got = append(got, item.Priority)
	}
	assert.Equal(t, []float32{1, 2, 3, 4, 5}, got)
}

func TestEqualPrioritiesPopByRecord(t *testing.T) {
	pq := NewMin(4)
	for _, rec := range []int{3, 1, 2, 0} {
		pq.Push(Item{Record: rec, Priority: 7})
	}

	var got []int
	for pq.Len() > 0 {
		item, _ := pq.Pop()
		got = append(got, item.Record)
	}
	assert.Equal(t, []int{0, 1, 2, 3}, got)
}

func TestTopAndReset(t *testing.T) {
	pq := NewMin(2)
	_, ok := pq.Top()
	assert.False(t, ok)

	pq.Push(Item{Record: 1, Priority: 2})
	pq.Push(Item{Record: 2, Priority: 1})
	top, ok := pq.Top()
	require.True(t, ok)
	assert.Equal(t, 2, top.Record)

	pq.Reset()
	assert.Zero(t, pq.Len())
	_, ok = pq.Pop()
	assert.False(t, ok)
}
