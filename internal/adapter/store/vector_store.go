package store

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"go.etcd.io/bbolt"
	"studyrag/internal/domain"
)

var (
	bucketVectors = []byte("vectors")
	bucketMeta    = []byte("meta")
	keyMeta       = []byte("index_meta")
)

// VectorStore holds chunk embeddings with a parallel chunk array: position i
// in both slices refers to the same chunk. It is append-only during a build
// and replaced wholesale on rebuild.
//
// Search is exact brute-force L2; fine at study-notes scale.
type VectorStore struct {
	dimension int
	vectors   [][]float32
	chunks    []domain.Chunk
}

type indexMeta struct {
	Dimension int    `json:"dimension"`
	Count     int    `json:"count"`
	Model     string `json:"model,omitempty"`
}

// New creates an empty store for vectors of the given dimension.
func New(dimension int) *VectorStore {
	return &VectorStore{dimension: dimension}
}

// Add appends chunks and their embeddings. Both slices must have equal
// length and every vector must match the store dimension.
func (s *VectorStore) Add(chunks []domain.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("%w: %d chunks but %d vectors", domain.ErrInvalidInput, len(chunks), len(vectors))
	}
	for i, v := range vectors {
		if len(v) != s.dimension {
			return fmt.Errorf("%w: vector %d has dimension %d, expected %d", domain.ErrInvalidInput, i, len(v), s.dimension)
		}
	}
	s.chunks = append(s.chunks, chunks...)
	s.vectors = append(s.vectors, vectors...)
	return nil
}

// Search returns the k chunks closest to the query vector by L2 distance,
// ascending. Ties break toward the earlier insertion. Returns min(k, n)
// results; an empty store is an error.
func (s *VectorStore) Search(query []float32, k int) ([]domain.SearchResult, error) {
	if len(s.chunks) == 0 {
		return nil, domain.ErrEmptyIndex
	}
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", domain.ErrInvalidInput, k)
	}
	if len(query) != s.dimension {
		return nil, fmt.Errorf("%w: query dimension %d, expected %d", domain.ErrInvalidInput, len(query), s.dimension)
	}

	results := make([]domain.SearchResult, len(s.chunks))
	for i := range s.chunks {
		results[i] = domain.SearchResult{
			Chunk:    s.chunks[i],
			Distance: l2Distance(query, s.vectors[i]),
		}
	}

	// Stable sort preserves insertion order among equal distances.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Distance < results[j].Distance
	})

	if k > len(results) {
		k = len(results)
	}
	return results[:k], nil
}

// Count returns the number of stored chunks.
func (s *VectorStore) Count() int {
	return len(s.chunks)
}

// Dimension returns the embedding dimension.
func (s *VectorStore) Dimension() int {
	return s.dimension
}

// Chunks returns the stored chunks in insertion order.
func (s *VectorStore) Chunks() []domain.Chunk {
	return s.chunks
}

// Vectors returns the stored embeddings in insertion order.
func (s *VectorStore) Vectors() [][]float32 {
	return s.vectors
}

// IndexFile returns the vector artifact path for a prefix.
func IndexFile(pathPrefix string) string {
	return pathPrefix + ".index"
}

// ChunksFile returns the chunk metadata artifact path for a prefix.
func ChunksFile(pathPrefix string) string {
	return pathPrefix + "_chunks.json"
}

// Exists reports whether both persisted artifacts are present at the prefix.
func Exists(pathPrefix string) bool {
	if _, err := os.Stat(IndexFile(pathPrefix)); err != nil {
		return false
	}
	if _, err := os.Stat(ChunksFile(pathPrefix)); err != nil {
		return false
	}
	return true
}

// Remove deletes the persisted artifacts at the prefix, returning the paths
// it removed.
func Remove(pathPrefix string) ([]string, error) {
	var removed []string
	for _, path := range []string{IndexFile(pathPrefix), ChunksFile(pathPrefix)} {
		err := os.Remove(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return removed, err
		}
		removed = append(removed, path)
	}
	return removed, nil
}

// Save persists the store as two sibling artifacts: <prefix>.index, a bbolt
// file with the vectors keyed by insertion sequence, and <prefix>_chunks.json
// with the parallel chunk metadata. Any existing artifacts are replaced.
//
// The two files are written one after the other, so a concurrent reader can
// observe one updated and the other stale. Known gap; the load path detects
// the resulting length mismatch.
func (s *VectorStore) Save(pathPrefix string) error {
	if err := os.MkdirAll(filepath.Dir(pathPrefix), 0755); err != nil {
		return fmt.Errorf("failed to create index directory: %w", err)
	}

	indexFile := IndexFile(pathPrefix)
	if err := os.Remove(indexFile); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to replace index file: %w", err)
	}

	db, err := bbolt.Open(indexFile, 0600, nil)
	if err != nil {
		return fmt.Errorf("failed to open index file: %w", err)
	}
	defer db.Close()

	err = db.Update(func(tx *bbolt.Tx) error {
		vb, err := tx.CreateBucketIfNotExists(bucketVectors)
		if err != nil {
			return err
		}
		mb, err := tx.CreateBucketIfNotExists(bucketMeta)
		if err != nil {
			return err
		}

		for i, vec := range s.vectors {
			data, err := json.Marshal(vec)
			if err != nil {
				return err
			}
			if err := vb.Put(itob(uint64(i)), data); err != nil {
				return err
			}
		}

		meta := indexMeta{Dimension: s.dimension, Count: len(s.vectors)}
		data, err := json.Marshal(meta)
		if err != nil {
			return err
		}
		return mb.Put(keyMeta, data)
	})
	if err != nil {
		return fmt.Errorf("failed to write vectors: %w", err)
	}

	data, err := json.Marshal(s.chunks)
	if err != nil {
		return fmt.Errorf("failed to marshal chunks: %w", err)
	}
	if err := os.WriteFile(ChunksFile(pathPrefix), data, 0644); err != nil {
		return fmt.Errorf("failed to write chunks file: %w", err)
	}

	return nil
}

// Load reads a store persisted by Save. It fails with ErrNotInitialized if
// either artifact is missing and ErrCorruptIndex if the artifacts disagree.
func Load(pathPrefix string) (*VectorStore, error) {
	if !Exists(pathPrefix) {
		return nil, fmt.Errorf("%w: no index at %s", domain.ErrNotInitialized, pathPrefix)
	}

	data, err := os.ReadFile(ChunksFile(pathPrefix))
	if err != nil {
		return nil, fmt.Errorf("failed to read chunks file: %w", err)
	}
	var chunks []domain.Chunk
	if err := json.Unmarshal(data, &chunks); err != nil {
		return nil, fmt.Errorf("%w: unreadable chunks file: %v", domain.ErrCorruptIndex, err)
	}

	db, err := bbolt.Open(IndexFile(pathPrefix), 0600, &bbolt.Options{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open index file: %w", err)
	}
	defer db.Close()

	var meta indexMeta
	var vectors [][]float32

	err = db.View(func(tx *bbolt.Tx) error {
		mb := tx.Bucket(bucketMeta)
		if mb == nil {
			return fmt.Errorf("%w: missing meta bucket", domain.ErrCorruptIndex)
		}
		if data := mb.Get(keyMeta); data != nil {
			if err := json.Unmarshal(data, &meta); err != nil {
				return fmt.Errorf("%w: unreadable index meta: %v", domain.ErrCorruptIndex, err)
			}
		}

		vb := tx.Bucket(bucketVectors)
		if vb == nil {
			return fmt.Errorf("%w: missing vectors bucket", domain.ErrCorruptIndex)
		}
		// Keys are big-endian sequence numbers, so cursor order is
		// insertion order.
		return vb.ForEach(func(k, v []byte) error {
			var vec []float32
			if err := json.Unmarshal(v, &vec); err != nil {
				return fmt.Errorf("%w: unreadable vector: %v", domain.ErrCorruptIndex, err)
			}
			vectors = append(vectors, vec)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("%w: %d vectors but %d chunks at %s",
			domain.ErrCorruptIndex, len(vectors), len(chunks), pathPrefix)
	}
	if meta.Count != 0 && meta.Count != len(vectors) {
		return nil, fmt.Errorf("%w: meta says %d vectors, found %d",
			domain.ErrCorruptIndex, meta.Count, len(vectors))
	}

	dim := meta.Dimension
	if dim == 0 && len(vectors) > 0 {
		dim = len(vectors[0])
	}
	for i, vec := range vectors {
		if len(vec) != dim {
			return nil, fmt.Errorf("%w: vector %d has dimension %d, expected %d",
				domain.ErrCorruptIndex, i, len(vec), dim)
		}
	}

	return &VectorStore{
		dimension: dim,
		vectors:   vectors,
		chunks:    chunks,
	}, nil
}

func l2Distance(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}

func itob(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}
