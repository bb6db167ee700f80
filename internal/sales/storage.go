package sales

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// ErrNotFound is returned when a sale with the given ID is not found.
var ErrNotFound = errors.New("sale not found")

// ErrIDAssigned is returned when trying to create a sale that already carries an ID.
var ErrIDAssigned = errors.New("sale ID is assigned by the store")

// Storage is the main interface for our sales storage layer.
type Storage interface {
	// Create persists sale and sets its store-assigned ID.
	Create(ctx context.Context, sale *Sale) error
	Read(ctx context.Context, id int64) (*Sale, error)
	Find(ctx context.Context, filter Filter) ([]*Sale, error)
	// Update loads the sale, lets apply mutate it and persists the result.
	// If apply fails nothing is written.
	Update(ctx context.Context, id int64, apply func(*Sale) error) (*Sale, error)
	Delete(ctx context.Context, id int64) error
}

// LocalStorage provides an in-memory implementation for storing sales.
type LocalStorage struct {
	mu     sync.RWMutex
	m      map[int64]Sale
	nextID int64
}

// NewLocalStorage instantiates a new LocalStorage for sales with an empty map.
func NewLocalStorage() *LocalStorage {
	return &LocalStorage{
		m:      map[int64]Sale{},
		nextID: 1,
	}
}

// Create assigns the next sequential ID. Returns ErrIDAssigned if the sale
// already has one.
func (l *LocalStorage) Create(_ context.Context, sale *Sale) error {
	if sale.ID != 0 {
		return ErrIDAssigned
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	sale.ID = l.nextID
	l.nextID++
	l.m[sale.ID] = *sale
	return nil
}

// Read retrieves a sale from the local storage by ID.
// Returns ErrNotFound if the sale is not found.
func (l *LocalStorage) Read(_ context.Context, id int64) (*Sale, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	s, ok := l.m[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

// Find returns the sales matching filter ordered by ID.
func (l *LocalStorage) Find(_ context.Context, filter Filter) ([]*Sale, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make([]*Sale, 0, len(l.m))
	for _, s := range l.m {
		if !filter.Match(&s) {
			continue
		}
		sale := s
		result = append(result, &sale)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// Update applies changes to a copy and stores it only if apply succeeds.
func (l *LocalStorage) Update(_ context.Context, id int64, apply func(*Sale) error) (*Sale, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	current, ok := l.m[id]
	if !ok {
		return nil, ErrNotFound
	}

	updated := current
	if err := apply(&updated); err != nil {
		return nil, err
	}
	updated.ID = id
	l.m[id] = updated
	return &updated, nil
}

func (l *LocalStorage) Delete(_ context.Context, id int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.m[id]; !ok {
		return ErrNotFound
	}
	delete(l.m, id)
	return nil
}
