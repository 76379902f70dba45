package memory

import (
	"context"
	"sync"

	"github.com/campusdining/dininghours/internal/core/domain"
	"github.com/campusdining/dininghours/internal/infra/storage"
)

// MemoryStorage backs the repository interfaces with maps, mirroring the
// persistence semantics of the PostgreSQL implementation. Used by tests and
// for running the pipeline without a database URL.
type MemoryStorage struct {
	locations map[string]*domain.DiningLocation
	hours     map[string][]domain.TimeSlot // key: locationID + "|" + serviceDate
	mu        sync.RWMutex
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		locations: make(map[string]*domain.DiningLocation),
		hours:     make(map[string][]domain.TimeSlot),
	}
}

func dayKey(locationID, serviceDate string) string {
	return locationID + "|" + serviceDate
}

// -----------------------------------------------------------------------------
// Location Repository
// -----------------------------------------------------------------------------

type LocationRepo struct {
	store *MemoryStorage
}

func NewLocationRepo(store *MemoryStorage) *LocationRepo {
	return &LocationRepo{store: store}
}

// Upsert inserts the identity row if absent; an existing row wins.
func (r *LocationRepo) Upsert(ctx context.Context, loc *domain.DiningLocation) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.locations[loc.ID]; ok {
		return nil
	}
	identity := *loc
	identity.Week = nil
	r.store.locations[loc.ID] = &identity
	return nil
}

func (r *LocationRepo) GetByID(ctx context.Context, id string) (*domain.DiningLocation, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	loc, ok := r.store.locations[id]
	if !ok {
		return nil, storage.ErrLocationNotFound
	}
	copied := *loc
	return &copied, nil
}

// -----------------------------------------------------------------------------
// Hours Repository
// -----------------------------------------------------------------------------

type HoursRepo struct {
	store *MemoryStorage
}

func NewHoursRepo(store *MemoryStorage) *HoursRepo {
	return &HoursRepo{store: store}
}

func (r *HoursRepo) ReplaceDay(
	ctx context.Context,
	locationID, serviceDate string,
	slots []domain.TimeSlot,
) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	copied := make([]domain.TimeSlot, len(slots))
	copy(copied, slots)
	r.store.hours[dayKey(locationID, serviceDate)] = copied
	return nil
}

func (r *HoursRepo) GetDay(
	ctx context.Context,
	locationID, serviceDate string,
) ([]domain.TimeSlot, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	slots, ok := r.store.hours[dayKey(locationID, serviceDate)]
	if !ok {
		return nil, nil
	}
	copied := make([]domain.TimeSlot, len(slots))
	copy(copied, slots)
	return copied, nil
}
