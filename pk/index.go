package pk

import (
	"errors"
	"sync"

	"github.com/google/btree"
	"github.com/hupe1980/tuplego/model"
)

// ErrDuplicateKey is returned when index construction encounters a key
// that is already present. The whole build aborts; there is no partial
// index.
var ErrDuplicateKey = errors.New("pk: duplicate primary key value")

// btreeDegree matches the default used throughout the btree docs; the
// index is read-mostly so the exact fan-out is not critical.
const btreeDegree = 32

type entry struct {
	key model.Key
	loc model.Location
}

func lessEntry(a, b entry) bool { return a.key < b.key }

// Index is an ordered primary-key index with logarithmic lookups.
//
// The mutex is taken exclusively only while Build populates the tree;
// after construction all access is shared. Lock acquisition may block;
// callers needing cancellation must act before requesting the lock.
type Index struct {
	mu   sync.RWMutex
	tree *btree.BTreeG[entry]
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{tree: btree.NewG(btreeDegree, lessEntry)}
}

// Build populates the index from the source iterator under the
// exclusive lock. The source must yield every (key, location) pair of
// the dataset; yielding a key twice aborts the build with
// ErrDuplicateKey and leaves the index unusable.
func (idx *Index) Build(source func(yield func(model.Key, model.Location) error) error) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.tree = btree.NewG(btreeDegree, lessEntry)
	return source(func(key model.Key, loc model.Location) error {
		if _, dup := idx.tree.ReplaceOrInsert(entry{key: key, loc: loc}); dup {
			return ErrDuplicateKey
		}
		return nil
	})
}

// Lookup returns the location stored for key.
func (idx *Index) Lookup(key model.Key) (model.Location, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	e, ok := idx.tree.Get(entry{key: key})
	if !ok {
		return model.Location{}, false
	}
	return e.loc, true
}

// Ascend iterates all entries in ascending key order until fn returns
// false.
func (idx *Index) Ascend(fn func(key model.Key, loc model.Location) bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	idx.tree.Ascend(func(e entry) bool {
		return fn(e.key, e.loc)
	})
}

// Len returns the number of indexed keys.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.tree.Len()
}
