package kv

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_GetSet(t *testing.T) {
	s := New[string, int]()

	s.Set("foo", 42)
	val, ok := s.Get("foo")
	assert.True(t, ok)
	assert.Equal(t, 42, val)

	_, ok = s.Get("bar")
	assert.False(t, ok)
}

func TestStore_GetOrCreate(t *testing.T) {
	s := New[string, int]()
	calls := 0
	create := func() (int, error) {
		calls++
		return 7, nil
	}

	val, created, err := s.GetOrCreate("a", create)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, 7, val)

	val, created, err = s.GetOrCreate("a", create)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, 7, val)
	assert.Equal(t, 1, calls)

	_, _, err = s.GetOrCreate("b", func() (int, error) { return 0, errors.New("boom") })
	require.Error(t, err)
	_, ok := s.Get("b")
	assert.False(t, ok, "failed create must not store a value")
}

func TestStore_Take(t *testing.T) {
	s := New[string, string]()
	s.Set("key", "value")

	val, ok := s.Take("key")
	assert.True(t, ok)
	assert.Equal(t, "value", val)

	_, ok = s.Get("key")
	assert.False(t, ok)

	_, ok = s.Take("key")
	assert.False(t, ok)
}

func TestStore_DeleteFunc(t *testing.T) {
	s := New[int, string]()
	for i := range 6 {
		s.Set(i, string(rune('a'+i)))
	}

	removed := s.DeleteFunc(func(k int, _ string) bool { return k%2 == 0 })

	assert.ElementsMatch(t, []string{"a", "c", "e"}, removed)
	assert.ElementsMatch(t, []int{1, 3, 5}, s.Keys())
}

func TestStore_Drain(t *testing.T) {
	s := New[string, int]()
	s.Set("a", 1)
	s.Set("b", 2)

	vals := s.Drain()

	assert.ElementsMatch(t, []int{1, 2}, vals)
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.Values())
}

func TestStore_Keys(t *testing.T) {
	s := New[string, int]()
	s.Set("a", 1)
	s.Set("b", 2)

	keys := s.Keys()
	assert.Len(t, keys, 2)
	assert.Contains(t, keys, "a")
	assert.Contains(t, keys, "b")
	assert.ElementsMatch(t, []int{1, 2}, s.Values())
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s := New[int, int]()
	var wg sync.WaitGroup

	for i := range 100 {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, _, _ = s.GetOrCreate(n%10, func() (int, error) { return n, nil })
			s.Get(n % 10)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 10, s.Len())
}
