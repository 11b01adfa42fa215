package container

// Seq is a restartable functional iteration over a finite sequence of
// elements. Calling the Seq invokes yield once per element until the
// sequence is exhausted or yield returns false.
//
// A Seq produced by a Map's Keys() must support at least one full
// traversal; implementations backed by snapshots may support many.
type Seq[E any] func(yield func(E) bool)

// Map is the minimal associative capability the grid generator depends
// on. Any conforming implementation is interchangeable: a wrapper over
// the native Go map, a from-scratch hash table, or anything else that
// honors these three operations.
//
// No ordering guarantee is made over Keys().
type Map[K comparable, V any] interface {
	// Get returns the value bound to key and whether it was present.
	Get(key K) (V, bool)

	// Put binds value to key and returns the previous value, if any.
	Put(key K, value V) (V, bool)

	// Keys iterates over every key currently in the map.
	Keys() Seq[K]
}

// Factory constructs a Map with a capacity hint. It is the injection
// seam through which callers supply their own container technology to
// the palette binder.
type Factory[K comparable, V any] func(capacity int) Map[K, V]

// Builtin adapts the native Go map to the Map capability.
type Builtin[K comparable, V any] struct {
	m map[K]V
}

// NewBuiltin returns a Map backed by a native Go map with the given
// capacity hint.
func NewBuiltin[K comparable, V any](capacity int) Map[K, V] {
	if capacity < 0 {
		capacity = 0
	}
	return &Builtin[K, V]{m: make(map[K]V, capacity)}
}

func (b *Builtin[K, V]) Get(key K) (V, bool) {
	v, ok := b.m[key]
	return v, ok
}

func (b *Builtin[K, V]) Put(key K, value V) (V, bool) {
	prev, ok := b.m[key]
	b.m[key] = value
	return prev, ok
}

func (b *Builtin[K, V]) Keys() Seq[K] {
	return func(yield func(K) bool) {
		for k := range b.m {
			if !yield(k) {
				return
			}
		}
	}
}

// Len reports the number of entries. Not part of the Map capability;
// provided for callers that hold the concrete type.
func (b *Builtin[K, V]) Len() int {
	return len(b.m)
}
