package utils

import (
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testChunk(data string) Item[[]byte] {
	return Item[[]byte]{Data: []byte(data), Size: uint64(len(data))}
}

var initialCapacity = 2

func TestQueueResize(t *testing.T) {
	q := NewQueue[[]byte](initialCapacity)
	require.Equal(t, 0, q.Len())
	require.Equal(t, false, q.Closed())

	for i := 0; i < initialCapacity; i++ {
		q.Add(testChunk(strconv.Itoa(i)))
	}
	q.Add(testChunk("resize here"))
	require.Equal(t, initialCapacity*2, q.Cap())
	q.Remove()

	q.Add(testChunk("new resize here"))
	require.Equal(t, initialCapacity*2, q.Cap())
	q.Add(testChunk("one more item, no resize must happen"))
	require.Equal(t, initialCapacity*2, q.Cap())

	require.Equal(t, initialCapacity+2, q.Len())
}

func TestQueueFIFO(t *testing.T) {
	q := NewQueue[[]byte](initialCapacity)

	for i := 0; i < 100; i++ {
		q.Add(testChunk(strconv.Itoa(i)))

		// interleave removals to move head around the ring
		if i%3 == 0 {
			item, ok := q.Remove()
			require.True(t, ok)
			require.Equal(t, strconv.Itoa(i/3), string(item.Data))
		}
	}

	next := 34

	for {
		item, ok := q.Remove()
		if !ok {
			break
		}

		assert.Equal(t, strconv.Itoa(next), string(item.Data))
		next++
	}

	assert.Equal(t, 100, next)
}

func TestQueueSize(t *testing.T) {
	q := NewQueue[[]byte](initialCapacity)
	require.EqualValues(t, 0, q.Size())
	q.Add(testChunk("1"))
	q.Add(testChunk("22"))
	require.EqualValues(t, 3, q.Size())
	q.Remove()
	require.EqualValues(t, 2, q.Size())
}

func TestQueueWait(t *testing.T) {
	q := NewQueue[[]byte](initialCapacity)
	q.Add(testChunk("12"))
	q.Add(testChunk("23"))

	ok := q.Wait()
	require.Equal(t, true, ok)
	s, ok := q.Remove()
	require.Equal(t, true, ok)
	require.Equal(t, "12", string(s.Data))

	ok = q.Wait()
	require.Equal(t, true, ok)
	s, ok = q.Remove()
	require.Equal(t, true, ok)
	require.Equal(t, "23", string(s.Data))
	require.EqualValues(t, 0, q.Size())

	go func() {
		time.Sleep(10 * time.Millisecond)
		q.Add(testChunk("3"))
	}()

	ok = q.Wait()
	require.Equal(t, true, ok)
	s, ok = q.Remove()
	require.Equal(t, true, ok)
	require.Equal(t, "3", string(s.Data))
}

func TestQueueCloseKeepsPendingItems(t *testing.T) {
	q := NewQueue[[]byte](initialCapacity)

	_, ok := q.Remove()
	require.Equal(t, false, ok)

	q.Add(testChunk("1"))
	q.Add(testChunk("2"))
	q.Close()

	ok = q.Add(testChunk("3"))
	require.Equal(t, false, ok)
	require.Equal(t, true, q.Closed())

	require.True(t, q.Wait())
	s, ok := q.Remove()
	require.True(t, ok)
	assert.Equal(t, "1", string(s.Data))

	require.True(t, q.Wait())
	s, ok = q.Remove()
	require.True(t, ok)
	assert.Equal(t, "2", string(s.Data))

	require.False(t, q.Wait())
}

func TestQueueCloseWakesWaiters(t *testing.T) {
	q := NewQueue[[]byte](initialCapacity)

	var wg sync.WaitGroup
	results := make([]bool, 3)

	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = q.Wait()
		}(i)
	}

	time.Sleep(10 * time.Millisecond)
	q.Close()
	wg.Wait()

	for _, res := range results {
		assert.False(t, res)
	}
}
