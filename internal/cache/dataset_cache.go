package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cvazquezfgc/planificacio-renovacio-via/internal/models"
)

// ErrNilDataset is returned when a load function yields no dataset
var ErrNilDataset = errors.New("load returned no dataset")

// State of a DatasetCache
type State int

const (
	NotLoaded State = iota
	Loaded
)

func (s State) String() string {
	if s == Loaded {
		return "loaded"
	}
	return "not_loaded"
}

// LoadFunc produces the dataset held by the cache
type LoadFunc func(ctx context.Context) (*models.Dataset, error)

// DatasetCache holds the live dataset and loads it on first use.
// Concurrent Get calls on a cold cache share a single load.
type DatasetCache struct {
	load LoadFunc

	loadMu sync.Mutex // serializes loads

	mu       sync.RWMutex
	ds       *models.Dataset
	state    State
	loadedAt time.Time
}

// NewDatasetCache creates an empty cache backed by load
func NewDatasetCache(load LoadFunc) *DatasetCache {
	return &DatasetCache{load: load}
}

// Get returns the cached dataset, loading it when the cache is cold.
// A failed load leaves the cache NotLoaded.
func (c *DatasetCache) Get(ctx context.Context) (*models.Dataset, error) {
	if ds, ok := c.Peek(); ok {
		return ds, nil
	}

	c.loadMu.Lock()
	defer c.loadMu.Unlock()

	// another caller may have loaded while we waited
	if ds, ok := c.Peek(); ok {
		return ds, nil
	}

	ds, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	if ds == nil {
		return nil, ErrNilDataset
	}

	c.Set(ds)
	return ds, nil
}

// Peek returns the cached dataset without loading
func (c *DatasetCache) Peek() (*models.Dataset, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ds, c.state == Loaded
}

// Set replaces the cached dataset
func (c *DatasetCache) Set(ds *models.Dataset) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ds = ds
	c.state = Loaded
	c.loadedAt = time.Now()
}

// Invalidate drops the cached dataset; the next Get loads again
func (c *DatasetCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ds = nil
	c.state = NotLoaded
	c.loadedAt = time.Time{}
}

// State returns the current cache state
func (c *DatasetCache) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// LoadedAt returns when the dataset was put in the cache, zero when NotLoaded
func (c *DatasetCache) LoadedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loadedAt
}
