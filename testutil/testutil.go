package testutil

import (
	"encoding/binary"
	"math/rand"
	"sync"

	"github.com/hupe1980/tuplego/model"
	"github.com/hupe1980/tuplego/schema"
	"github.com/hupe1980/tuplego/store"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Int63 returns a non-negative pseudo-random int64.
func (r *RNG) Int63() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Int63()
}

// Bytes fills a fresh slice of length n with pseudo-random bytes.
func (r *RNG) Bytes(n int) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	b := make([]byte, n)
	r.rand.Read(b)
	return b
}

// Perm returns a pseudo-random permutation of [0,n).
func (r *RNG) Perm(n int) []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Perm(n)
}

// TestSchema returns a three-column schema used across the test suite:
// an 8-byte primary key "id", a 4-byte "score" and a 2-byte "flag".
func TestSchema() *schema.Schema {
	return schema.MustNew([]schema.Column{
		{Name: "id", Width: 8},
		{Name: "score", Width: 4},
		{Name: "flag", Width: 2},
	}, "id")
}

// EncodeValue little-endian encodes v into width bytes, truncating high
// bytes that do not fit.
func EncodeValue(v uint64, width int) []byte {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	out := make([]byte, width)
	copy(out, buf[:width])
	return out
}

// SequentialBatch builds a batch of n rows against sch whose primary
// keys run startKey, startKey+1, ... with every column populated.
func SequentialBatch(sch *schema.Schema, startKey model.Key, n int) *store.Batch {
	b := store.NewBatchBuilder(sch)
	pkIdx := sch.PrimaryKeyIndex()
	for i := 0; i < n; i++ {
		values := make([][]byte, sch.NumColumns())
		for col := 0; col < sch.NumColumns(); col++ {
			if col == pkIdx {
				values[col] = EncodeValue(uint64(startKey)+uint64(i), sch.Column(col).Width)
			} else {
				values[col] = EncodeValue(uint64(i*31+col), sch.Column(col).Width)
			}
		}
		if err := b.AppendRow(values); err != nil {
			panic(err)
		}
	}
	return b.Build()
}

// RandomBatch builds a batch of n rows with the given primary keys and
// random payloads. nullRate is the probability that a non-key column is
// null.
func (r *RNG) RandomBatch(sch *schema.Schema, keys []model.Key, nullRate float64) *store.Batch {
	b := store.NewBatchBuilder(sch)
	pkIdx := sch.PrimaryKeyIndex()
	for _, key := range keys {
		values := make([][]byte, sch.NumColumns())
		for col := 0; col < sch.NumColumns(); col++ {
			if col == pkIdx {
				values[col] = EncodeValue(uint64(key), sch.Column(col).Width)
				continue
			}
			if r.float64() < nullRate {
				continue
			}
			values[col] = r.Bytes(sch.Column(col).Width)
		}
		if err := b.AppendRow(values); err != nil {
			panic(err)
		}
	}
	return b.Build()
}

// DistinctKeys returns n distinct pseudo-random keys.
func (r *RNG) DistinctKeys(n int) []model.Key {
	seen := make(map[model.Key]struct{}, n)
	keys := make([]model.Key, 0, n)
	for len(keys) < n {
		k := model.Key(r.Int63())
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	return keys
}

// FullRow builds a projected row covering every column of sch with
// deterministic per-column payloads derived from seed.
func FullRow(sch *schema.Schema, seed uint64) model.ProjectedRow {
	ids := make([]model.ColumnID, sch.NumColumns())
	values := make([][]byte, sch.NumColumns())
	for col := 0; col < sch.NumColumns(); col++ {
		ids[col] = model.ColumnID(col)
		values[col] = EncodeValue(seed+uint64(col)*7919, sch.Column(col).Width)
	}
	return model.NewProjectedRow(ids, values)
}

func (r *RNG) float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}
