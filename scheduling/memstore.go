package scheduling

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hospitalhq/hospital_ops/models"
)

type dayKey struct {
	doctorID uuid.UUID
	day      int
}

// MemStore is an in-memory Store honoring the same optimistic-versioning
// contract as the Postgres-backed one. It backs the test suite and the
// database-less demo mode.
type MemStore struct {
	mu      sync.Mutex
	records map[dayKey]*models.Availability

	// branchOf resolves a doctor's branch for ListByBranch; nil means every
	// record is visible (single-branch test setups).
	branchOf func(doctorID uuid.UUID) uuid.UUID
}

func NewMemStore() *MemStore {
	return &MemStore{records: make(map[dayKey]*models.Availability)}
}

func (m *MemStore) UseBranchResolver(fn func(doctorID uuid.UUID) uuid.UUID) {
	m.branchOf = fn
}

func (m *MemStore) Get(ctx context.Context, doctorID uuid.UUID, dayOfWeek int) (*models.Availability, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[dayKey{doctorID, dayOfWeek}]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneAvailability(rec), nil
}

func (m *MemStore) Put(ctx context.Context, av *models.Availability, expectedVersion int64) (*models.Availability, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	key := dayKey{av.DoctorID, av.DayOfWeek}
	existing, ok := m.records[key]

	if expectedVersion == 0 {
		if ok {
			return nil, ErrVersionConflict
		}
		stored := cloneAvailability(av)
		if stored.ID == uuid.Nil {
			stored.ID = uuid.New()
		}
		stored.Version = 1
		stored.CreatedAt = time.Now()
		stored.UpdatedAt = stored.CreatedAt
		m.records[key] = stored
		return cloneAvailability(stored), nil
	}

	if !ok || existing.Version != expectedVersion {
		return nil, ErrVersionConflict
	}
	stored := cloneAvailability(av)
	stored.ID = existing.ID
	stored.Version = existing.Version + 1
	stored.CreatedAt = existing.CreatedAt
	stored.UpdatedAt = time.Now()
	m.records[key] = stored
	return cloneAvailability(stored), nil
}

func (m *MemStore) Delete(ctx context.Context, doctorID uuid.UUID, dayOfWeek int, expectedVersion int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	key := dayKey{doctorID, dayOfWeek}
	existing, ok := m.records[key]
	if !ok {
		return ErrNotFound
	}
	if existing.Version != expectedVersion {
		return ErrVersionConflict
	}
	delete(m.records, key)
	return nil
}

func (m *MemStore) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]models.Availability, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.Availability, 0, 7)
	for day := 0; day < 7; day++ {
		if rec, ok := m.records[dayKey{doctorID, day}]; ok {
			out = append(out, *cloneAvailability(rec))
		}
	}
	return out, nil
}

// ListByBranch filters through the branch resolver when one is installed.
func (m *MemStore) ListByBranch(ctx context.Context, branchID uuid.UUID) ([]models.Availability, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []models.Availability{}
	for _, rec := range m.records {
		if m.branchOf == nil || m.branchOf(rec.DoctorID) == branchID {
			out = append(out, *cloneAvailability(rec))
		}
	}
	return out, nil
}

func cloneAvailability(av *models.Availability) *models.Availability {
	out := *av
	out.Slots = make(models.SlotList, len(av.Slots))
	for i := range av.Slots {
		slot := av.Slots[i]
		slot.BookedTokens = append([]int(nil), slot.BookedTokens...)
		if slot.Grants != nil {
			grants := make(map[string]int, len(slot.Grants))
			for k, v := range slot.Grants {
				grants[k] = v
			}
			slot.Grants = grants
		}
		out.Slots[i] = slot
	}
	return &out
}

// MemDirectory is a fixed doctor roster for tests and demo mode.
type MemDirectory struct {
	mu      sync.RWMutex
	doctors map[uuid.UUID]models.Doctor
}

func NewMemDirectory(doctors ...models.Doctor) *MemDirectory {
	d := &MemDirectory{doctors: make(map[uuid.UUID]models.Doctor, len(doctors))}
	for _, doc := range doctors {
		d.doctors[doc.ID] = doc
	}
	return d
}

func (d *MemDirectory) Add(doc models.Doctor) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.doctors[doc.ID] = doc
}

func (d *MemDirectory) GetDoctor(ctx context.Context, id uuid.UUID) (*models.Doctor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	doc, ok := d.doctors[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &doc, nil
}

func (d *MemDirectory) ListByBranch(ctx context.Context, branchID uuid.UUID) ([]models.Doctor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := []models.Doctor{}
	for _, doc := range d.doctors {
		if doc.BranchID == branchID {
			out = append(out, doc)
		}
	}
	return out, nil
}
