package registry

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBindings(t *testing.T) {
	b := NewBindings()

	_, ok := b.Lookup("c1")
	assert.False(t, ok)

	b.Bind("c1", "room-a")
	roomID, ok := b.Lookup("c1")
	assert.True(t, ok)
	assert.Equal(t, "room-a", roomID)
	assert.Equal(t, 1, b.Len())

	roomID, ok = b.Unbind("c1")
	assert.True(t, ok)
	assert.Equal(t, "room-a", roomID)

	_, ok = b.Unbind("c1")
	assert.False(t, ok)
	assert.Equal(t, 0, b.Len())
}

func TestBindings_UnbindOnlyOnce(t *testing.T) {
	b := NewBindings()
	b.Bind("c1", "room-a")

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := b.Unbind("c1"); ok {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
}
