package db

import (
	"context"
	"errors"
)

// Collection is typed whole-collection access to one named collection.
type Collection[T any] struct {
	store *Store
	name  string
	empty func() T
}

func NewCollection[T any](store *Store, name string, empty func() T) *Collection[T] {
	return &Collection[T]{store: store, name: name, empty: empty}
}

func (c *Collection[T]) Name() string {
	return c.name
}

// Load returns the current contents. A collection that does not exist yet is
// created with its empty default.
func (c *Collection[T]) Load(ctx context.Context) (T, error) {
	l := c.store.lock(c.name)
	l.Lock()
	defer l.Unlock()
	return c.load(ctx)
}

// Save replaces the whole collection.
func (c *Collection[T]) Save(ctx context.Context, v T) error {
	l := c.store.lock(c.name)
	l.Lock()
	defer l.Unlock()
	return c.store.writeRaw(ctx, c.name, v)
}

// Update runs fn on the current contents and writes the result back, holding
// the collection lock for the whole cycle. Returning ErrSkipWrite from fn
// keeps the stored contents untouched; any other error aborts the write.
func (c *Collection[T]) Update(ctx context.Context, fn func(v *T) error) error {
	l := c.store.lock(c.name)
	l.Lock()
	defer l.Unlock()

	v, err := c.load(ctx)
	if err != nil {
		return err
	}
	if err := fn(&v); err != nil {
		if errors.Is(err, ErrSkipWrite) {
			return nil
		}
		return err
	}
	return c.store.writeRaw(ctx, c.name, v)
}

// ErrSkipWrite tells Update that nothing changed.
var ErrSkipWrite = errors.New("skip write")

func (c *Collection[T]) load(ctx context.Context) (T, error) {
	data, err := c.store.readRaw(ctx, c.name)
	if err != nil {
		return c.empty(), err
	}
	v := c.empty()
	exists, err := c.store.decode(c.name, data, &v)
	if errors.Is(err, errCorrupt) {
		return c.empty(), nil
	}
	if !exists {
		if err := c.store.writeRaw(ctx, c.name, v); err != nil {
			return v, err
		}
	}
	return v, nil
}
