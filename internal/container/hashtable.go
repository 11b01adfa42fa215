package container

// HashFunc maps a key to a non-negative bucket hash.
type HashFunc[K comparable] func(K) uint64

// HashTable is a from-scratch chained hash table implementing the Map
// capability. The caller supplies the hash function, so the table works
// for any comparable key type without reflection.
//
// The table grows (doubling bucket count) once the load factor exceeds
// maxLoadFactor. It is not safe for concurrent use.
type HashTable[K comparable, V any] struct {
	buckets [][]tableEntry[K, V]
	size    int
	hash    HashFunc[K]
}

type tableEntry[K comparable, V any] struct {
	key   K
	value V
}

const (
	minBuckets    = 8
	maxLoadFactor = 4.0
)

// NewHashTable creates a chained hash table sized for the given number
// of expected entries, hashing keys with hash.
func NewHashTable[K comparable, V any](capacity int, hash HashFunc[K]) *HashTable[K, V] {
	n := minBuckets
	for float64(capacity)/float64(n) > maxLoadFactor {
		n *= 2
	}
	return &HashTable[K, V]{
		buckets: make([][]tableEntry[K, V], n),
		hash:    hash,
	}
}

func (t *HashTable[K, V]) bucketFor(key K) int {
	return int(t.hash(key) % uint64(len(t.buckets)))
}

// Get returns the value bound to key and whether it was present.
func (t *HashTable[K, V]) Get(key K) (V, bool) {
	for _, e := range t.buckets[t.bucketFor(key)] {
		if e.key == key {
			return e.value, true
		}
	}
	var zero V
	return zero, false
}

// Put binds value to key, returning the previous value if the key was
// already present.
func (t *HashTable[K, V]) Put(key K, value V) (V, bool) {
	b := t.bucketFor(key)
	for i, e := range t.buckets[b] {
		if e.key == key {
			prev := e.value
			t.buckets[b][i].value = value
			return prev, true
		}
	}
	t.buckets[b] = append(t.buckets[b], tableEntry[K, V]{key: key, value: value})
	t.size++
	if float64(t.size)/float64(len(t.buckets)) > maxLoadFactor {
		t.grow()
	}
	var zero V
	return zero, false
}

func (t *HashTable[K, V]) grow() {
	old := t.buckets
	t.buckets = make([][]tableEntry[K, V], len(old)*2)
	for _, bucket := range old {
		for _, e := range bucket {
			b := t.bucketFor(e.key)
			t.buckets[b] = append(t.buckets[b], e)
		}
	}
}

// Keys iterates over every key in bucket order.
func (t *HashTable[K, V]) Keys() Seq[K] {
	return func(yield func(K) bool) {
		for _, bucket := range t.buckets {
			for _, e := range bucket {
				if !yield(e.key) {
					return
				}
			}
		}
	}
}

// Len reports the number of entries stored.
func (t *HashTable[K, V]) Len() int {
	return t.size
}
