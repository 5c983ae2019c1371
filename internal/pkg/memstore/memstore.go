// Package memstore is an in-memory document collection used to exercise
// repositories without a MongoDB server. Documents are kept as BSON so every
// read returns an independent copy shaped exactly as the driver would decode it.
package memstore

import (
	"errors"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrDuplicateID = errors.New("memstore: duplicate _id")

type Collection[T any] struct {
	mu    sync.Mutex
	docs  map[primitive.ObjectID][]byte
	order []primitive.ObjectID
	idOf  func(*T) primitive.ObjectID

	reads  int
	writes int
}

func New[T any](idOf func(*T) primitive.ObjectID) *Collection[T] {
	return &Collection[T]{docs: map[primitive.ObjectID][]byte{}, idOf: idOf}
}

// Reads and Writes count round trips since creation.
func (c *Collection[T]) Reads() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reads
}

func (c *Collection[T]) Writes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.writes
}

func (c *Collection[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.docs)
}

func (c *Collection[T]) Insert(doc *T) error {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writes++
	id := c.idOf(doc)
	if _, ok := c.docs[id]; ok {
		return ErrDuplicateID
	}
	c.docs[id] = raw
	c.order = append(c.order, id)
	return nil
}

// Get returns a decoded copy, or nil when id is absent.
func (c *Collection[T]) Get(id primitive.ObjectID) (*T, error) {
	c.mu.Lock()
	raw, ok := c.docs[id]
	c.reads++
	c.mu.Unlock()
	if !ok {
		return nil, nil
	}
	return decode[T](raw)
}

// ReplaceIf stores doc over the document with the same id when match accepts
// the stored copy. It reports whether a document was replaced.
func (c *Collection[T]) ReplaceIf(doc *T, match func(stored *T) bool) (bool, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return false, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writes++
	id := c.idOf(doc)
	current, ok := c.docs[id]
	if !ok {
		return false, nil
	}
	if match != nil {
		stored, err := decode[T](current)
		if err != nil {
			return false, err
		}
		if !match(stored) {
			return false, nil
		}
	}
	c.docs[id] = raw
	return true, nil
}

// UpdateEach applies fn to every document accepted by match and returns how
// many were rewritten.
func (c *Collection[T]) UpdateEach(match func(*T) bool, fn func(*T)) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writes++
	n := 0
	for _, id := range c.order {
		doc, err := decode[T](c.docs[id])
		if err != nil {
			return n, err
		}
		if match != nil && !match(doc) {
			continue
		}
		fn(doc)
		raw, err := bson.Marshal(doc)
		if err != nil {
			return n, err
		}
		c.docs[id] = raw
		n++
	}
	return n, nil
}

func (c *Collection[T]) Delete(id primitive.ObjectID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writes++
	if _, ok := c.docs[id]; !ok {
		return false
	}
	delete(c.docs, id)
	for i, o := range c.order {
		if o == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return true
}

// Find returns copies of the documents accepted by match in insertion order,
// re-sorted with less when it is not nil.
func (c *Collection[T]) Find(match func(*T) bool, less func(a, b *T) bool) ([]T, error) {
	c.mu.Lock()
	c.reads++
	raws := make([][]byte, 0, len(c.order))
	for _, id := range c.order {
		raws = append(raws, c.docs[id])
	}
	c.mu.Unlock()

	out := []T{}
	for _, raw := range raws {
		doc, err := decode[T](raw)
		if err != nil {
			return nil, err
		}
		if match == nil || match(doc) {
			out = append(out, *doc)
		}
	}
	if less != nil {
		sort.SliceStable(out, func(i, j int) bool { return less(&out[i], &out[j]) })
	}
	return out, nil
}

func decode[T any](raw []byte) (*T, error) {
	var doc T
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}
