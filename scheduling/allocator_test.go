package scheduling

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/hospitalhq/hospital_ops/models"
)

func seedSlot(t *testing.T, store *MemStore, doctorID uuid.UUID, day, tokens int) {
	t.Helper()
	av := &models.Availability{
		DoctorID:    doctorID,
		DayOfWeek:   day,
		IsAvailable: true,
		Slots: models.SlotList{
			{StartTime: "09:00", EndTime: "10:00", HoursAvailable: 1, TokenCount: tokens},
		},
	}
	if _, err := store.Put(context.Background(), av, 0); err != nil {
		t.Fatalf("seeding slot failed: %v", err)
	}
}

func TestAllocator_ReserveScenario(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	alloc := NewAllocator(store)
	doctorID := uuid.New()
	seedSlot(t, store, doctorID, 1, 3)

	// Three reserves hand out 1, 2, 3 in order.
	for want := 1; want <= 3; want++ {
		token, _, err := alloc.Reserve(ctx, doctorID, 1, 0, "")
		if err != nil {
			t.Fatalf("reserve %d failed: %v", want, err)
		}
		if token != want {
			t.Fatalf("expected token %d, got %d", want, token)
		}
	}

	// A fourth is out of capacity.
	if _, _, err := alloc.Reserve(ctx, doctorID, 1, 0, ""); !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("expected ErrCapacityExceeded, got %v", err)
	}

	// Release 2, the next reserve reuses 2 rather than inventing 4.
	if _, err := alloc.Release(ctx, doctorID, 1, 0, 2); err != nil {
		t.Fatalf("release failed: %v", err)
	}
	av, _ := store.Get(ctx, doctorID, 1)
	if got := av.Slots[0].BookedTokens; len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Fatalf("expected booked tokens [1 3], got %v", got)
	}
	token, _, err := alloc.Reserve(ctx, doctorID, 1, 0, "")
	if err != nil {
		t.Fatalf("re-reserve failed: %v", err)
	}
	if token != 2 {
		t.Fatalf("expected lowest free token 2, got %d", token)
	}
}

func TestAllocator_ReleaseIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	alloc := NewAllocator(store)
	doctorID := uuid.New()
	seedSlot(t, store, doctorID, 2, 2)

	if _, _, err := alloc.Reserve(ctx, doctorID, 2, 0, ""); err != nil {
		t.Fatalf("reserve failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := alloc.Release(ctx, doctorID, 2, 0, 1); err != nil {
			t.Fatalf("release attempt %d failed: %v", i, err)
		}
	}
	// Releasing a never-granted token is equally harmless.
	if _, err := alloc.Release(ctx, doctorID, 2, 0, 2); err != nil {
		t.Fatalf("releasing unbooked token failed: %v", err)
	}

	cap, err := alloc.PeekCapacity(ctx, doctorID, 2, 0)
	if err != nil {
		t.Fatalf("peek failed: %v", err)
	}
	if cap.Booked != 0 || cap.Capacity != 2 {
		t.Fatalf("expected 0/2 booked, got %d/%d", cap.Booked, cap.Capacity)
	}
}

func TestAllocator_IdempotencyKeyDedupes(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	alloc := NewAllocator(store)
	doctorID := uuid.New()
	seedSlot(t, store, doctorID, 3, 5)

	first, _, err := alloc.Reserve(ctx, doctorID, 3, 0, "appt-123")
	if err != nil {
		t.Fatalf("reserve failed: %v", err)
	}
	// The same key retried after an ambiguous failure gets the same token.
	second, _, err := alloc.Reserve(ctx, doctorID, 3, 0, "appt-123")
	if err != nil {
		t.Fatalf("retried reserve failed: %v", err)
	}
	if first != second {
		t.Fatalf("retry granted a second token: %d then %d", first, second)
	}

	cap, _ := alloc.PeekCapacity(ctx, doctorID, 3, 0)
	if cap.Booked != 1 {
		t.Fatalf("expected one booked token after retry, got %d", cap.Booked)
	}
}

// One token, many concurrent reserves: exactly one wins, the rest learn the
// slot is full. The capacity invariant must hold throughout.
func TestAllocator_RaceSafety(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	alloc := NewAllocator(store)
	doctorID := uuid.New()
	seedSlot(t, store, doctorID, 4, 1)

	const contenders = 20
	var wg sync.WaitGroup
	results := make(chan error, contenders)

	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := alloc.Reserve(ctx, doctorID, 4, 0, "")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	wins, full, other := 0, 0, 0
	for err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrCapacityExceeded), errors.Is(err, ErrContention):
			full++
		default:
			other++
		}
	}
	if wins != 1 {
		t.Fatalf("expected exactly 1 successful reserve, got %d", wins)
	}
	if other != 0 {
		t.Fatalf("unexpected error kinds from %d contenders", other)
	}

	av, _ := store.Get(ctx, doctorID, 4)
	if got := av.Slots[0].BookedCount(); got != 1 {
		t.Fatalf("capacity invariant violated: %d booked with capacity 1", got)
	}
}

// conflictStore always rejects writes, forcing the retry loop to give up.
type conflictStore struct {
	*MemStore
}

func (s *conflictStore) Put(ctx context.Context, av *models.Availability, expectedVersion int64) (*models.Availability, error) {
	return nil, ErrVersionConflict
}

func TestAllocator_SurfacesContention(t *testing.T) {
	ctx := context.Background()
	mem := NewMemStore()
	doctorID := uuid.New()
	seedSlot(t, mem, doctorID, 5, 3)

	alloc := NewAllocator(&conflictStore{MemStore: mem})
	if _, _, err := alloc.Reserve(ctx, doctorID, 5, 0, ""); !errors.Is(err, ErrContention) {
		t.Fatalf("expected ErrContention, got %v", err)
	}
}

func TestAllocator_UnknownSlot(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	alloc := NewAllocator(store)
	doctorID := uuid.New()
	seedSlot(t, store, doctorID, 6, 3)

	if _, _, err := alloc.Reserve(ctx, doctorID, 6, 4, ""); !errors.Is(err, ErrSlotNotFound) {
		t.Fatalf("expected ErrSlotNotFound for bad index, got %v", err)
	}
	if _, _, err := alloc.Reserve(ctx, doctorID, 0, 0, ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing day, got %v", err)
	}
}
