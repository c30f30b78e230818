// Package resource holds expensive, process-lifetime handles such as loaded
// models and HTTP clients.
package resource

import (
	"io"
	"sync"
)

// Cache constructs a value on first use and hands the same value to every
// later caller. Construction runs at most once even under concurrent first
// use; a construction error is cached too, so a broken resource is not
// rebuilt on every request.
type Cache[T any] struct {
	get  func() (T, error)
	mu   sync.Mutex
	used bool
}

// NewCache returns a Cache that builds its value with build.
func NewCache[T any](build func() (T, error)) *Cache[T] {
	c := &Cache[T]{}
	c.get = sync.OnceValues(func() (T, error) {
		c.mu.Lock()
		c.used = true
		c.mu.Unlock()
		return build()
	})
	return c
}

// Get returns the cached value, building it on first call.
func (c *Cache[T]) Get() (T, error) {
	return c.get()
}

// Built reports whether construction has started.
func (c *Cache[T]) Built() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.used
}

// Close closes the value if it was built successfully and implements io.Closer.
func (c *Cache[T]) Close() error {
	if !c.Built() {
		return nil
	}
	v, err := c.get()
	if err != nil {
		return nil
	}
	if closer, ok := any(v).(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
