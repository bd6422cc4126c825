package lstore

import (
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPutGetRemove(t *testing.T) {
	s := NewLocalStore()

	old, loaded := s.Put("k1", "v1")
	assert.False(t, loaded)
	assert.Empty(t, old)

	old, loaded = s.Put("k1", "v2")
	assert.True(t, loaded)
	assert.Equal(t, "v1", old)

	value, ok := s.Get("k1")
	assert.True(t, ok)
	assert.Equal(t, "v2", value)

	_, ok = s.Get("missing")
	assert.False(t, ok)

	old, loaded = s.Remove("k1")
	assert.True(t, loaded)
	assert.Equal(t, "v2", old)

	_, loaded = s.Remove("k1")
	assert.False(t, loaded)
	assert.Equal(t, 0, s.Size())
}

func TestSizeAndClear(t *testing.T) {
	s := NewLocalStore()
	for i := 0; i < 100; i++ {
		s.Put(strconv.Itoa(i), "v")
	}
	assert.Equal(t, 100, s.Size())
	assert.Equal(t, 100, s.Clear())
	assert.Equal(t, 0, s.Size())
	assert.Equal(t, 0, s.Clear())
}

func TestConcurrentAccess(t *testing.T) {
	s := NewLocalStore()
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				key := strconv.Itoa(w) + ":" + strconv.Itoa(i)
				s.Put(key, key)
				value, ok := s.Get(key)
				assert.True(t, ok)
				assert.Equal(t, key, value)
			}
		}(w)
	}
	wg.Wait()
	assert.Equal(t, 8000, s.Size())
}
