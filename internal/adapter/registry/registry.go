package registry

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
	"studyrag/internal/adapter/store"
	"studyrag/internal/domain"
)

// Registry maps course codes to their loaded vector stores. Stores load
// lazily from disk on first use and stay cached for the process lifetime
// until explicitly invalidated. Concurrent first requests for the same
// course are collapsed into a single disk load.
//
// Course codes are case-insensitive and normalized to upper case; the
// persisted artifacts use the lower-cased code as file name.
type Registry struct {
	notesDir string
	indexDir string

	mu     sync.RWMutex
	stores map[string]*store.VectorStore
	group  singleflight.Group
	logger *slog.Logger
}

// New creates a registry over the given notes and index base directories.
func New(notesDir, indexDir string, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		notesDir: notesDir,
		indexDir: indexDir,
		stores:   make(map[string]*store.VectorStore),
		logger:   logger,
	}
}

// NotesPath returns the notes directory for a course.
func (r *Registry) NotesPath(courseCode string) string {
	return filepath.Join(r.notesDir, normalize(courseCode))
}

// IndexPrefix returns the path prefix for a course's index artifacts.
func (r *Registry) IndexPrefix(courseCode string) string {
	return filepath.Join(r.indexDir, strings.ToLower(courseCode))
}

// IsIndexed reports whether both persisted artifacts exist for the course,
// without loading anything into memory.
func (r *Registry) IsIndexed(courseCode string) bool {
	return store.Exists(r.IndexPrefix(courseCode))
}

// Store returns the course's vector store, loading it from disk on first
// use. Returns ErrNotInitialized when no persisted index exists.
func (r *Registry) Store(courseCode string) (*store.VectorStore, error) {
	code := normalize(courseCode)
	if code == "" {
		return nil, domain.ErrInvalidInput
	}

	r.mu.RLock()
	vs, ok := r.stores[code]
	r.mu.RUnlock()
	if ok {
		return vs, nil
	}

	v, err, _ := r.group.Do(code, func() (interface{}, error) {
		// Re-check under the flight: another caller may have finished
		// loading between the RUnlock above and here.
		r.mu.RLock()
		vs, ok := r.stores[code]
		r.mu.RUnlock()
		if ok {
			return vs, nil
		}

		prefix := r.IndexPrefix(code)
		vs, err := store.Load(prefix)
		if err != nil {
			return nil, err
		}
		r.logger.Info("loaded course index", "course", code, "chunks", vs.Count())

		r.mu.Lock()
		r.stores[code] = vs
		r.mu.Unlock()
		return vs, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*store.VectorStore), nil
}

// Put caches a freshly built store for a course, replacing any cached one.
func (r *Registry) Put(courseCode string, vs *store.VectorStore) {
	code := normalize(courseCode)
	r.mu.Lock()
	r.stores[code] = vs
	r.mu.Unlock()
}

// Invalidate discards the cached store for a course. The next request loads
// from disk again.
func (r *Registry) Invalidate(courseCode string) {
	code := normalize(courseCode)
	r.mu.Lock()
	delete(r.stores, code)
	r.mu.Unlock()
	r.logger.Info("invalidated course cache", "course", code)
}

// InvalidateAll discards every cached store.
func (r *Registry) InvalidateAll() {
	r.mu.Lock()
	r.stores = make(map[string]*store.VectorStore)
	r.mu.Unlock()
}

// Available lists course codes with a notes directory, sorted.
func (r *Registry) Available() []string {
	entries, err := os.ReadDir(r.notesDir)
	if err != nil {
		r.logger.Warn("notes directory not found", "dir", r.notesDir)
		return nil
	}

	var courses []string
	for _, e := range entries {
		if e.IsDir() {
			courses = append(courses, normalize(e.Name()))
		}
	}
	sort.Strings(courses)
	return courses
}

// Loaded lists currently cached course codes, sorted.
func (r *Registry) Loaded() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	courses := make([]string, 0, len(r.stores))
	for code := range r.stores {
		courses = append(courses, code)
	}
	sort.Strings(courses)
	return courses
}

// Info reports a course's index state without forcing a load.
func (r *Registry) Info(courseCode string) domain.CourseInfo {
	code := normalize(courseCode)

	r.mu.RLock()
	vs, loaded := r.stores[code]
	r.mu.RUnlock()

	notesPath := r.NotesPath(code)
	info := domain.CourseInfo{
		CourseCode: code,
		Indexed:    r.IsIndexed(code),
		Loaded:     loaded,
		NotesPath:  notesPath,
	}
	if loaded {
		info.ChunkCount = vs.Count()
	}
	if _, err := os.Stat(notesPath); err == nil {
		info.NotesExist = true
	}
	return info
}

func normalize(courseCode string) string {
	return strings.ToUpper(strings.TrimSpace(courseCode))
}
