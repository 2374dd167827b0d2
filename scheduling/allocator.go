package scheduling

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/hospitalhq/hospital_ops/models"
)

const (
	reserveAttempts = 4
	retryBackoff    = 25 * time.Millisecond
)

// Allocator reserves and releases tokens against a slot's capacity ledger.
// It holds no locks: every mutation is a read-modify-write against the store's
// version check, retried a bounded number of times on conflict. Concurrent
// reserves against the last free token can therefore never both commit; the
// loser re-reads, sees a full slot, and gets ErrCapacityExceeded.
type Allocator struct {
	store Store
}

func NewAllocator(store Store) *Allocator {
	return &Allocator{store: store}
}

// Capacity is a read-only snapshot of one slot's ledger.
type Capacity struct {
	Capacity int `json:"capacity"`
	Booked   int `json:"booked"`
}

// Reserve grants the lowest unused token in [1, TokenCount]. idemKey, when
// non-empty, makes the grant idempotent: a retry after an ambiguous timeout
// returns the token already granted for that key instead of consuming another.
func (a *Allocator) Reserve(ctx context.Context, doctorID uuid.UUID, dayOfWeek, slotIndex int, idemKey string) (int, *models.Availability, error) {
	for attempt := 0; attempt < reserveAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(retryBackoff):
			case <-ctx.Done():
				return 0, nil, ctx.Err()
			}
		}

		av, err := a.store.Get(ctx, doctorID, dayOfWeek)
		if err != nil {
			return 0, nil, err
		}
		if slotIndex < 0 || slotIndex >= len(av.Slots) {
			return 0, nil, ErrSlotNotFound
		}
		slot := &av.Slots[slotIndex]

		if token, ok := slot.GrantFor(idemKey); ok {
			return token, av, nil
		}

		token, ok := slot.NextFreeToken()
		if !ok {
			return 0, nil, ErrCapacityExceeded
		}
		slot.Book(token)
		slot.RememberGrant(idemKey, token)

		stored, err := a.store.Put(ctx, av, av.Version)
		if err != nil {
			if errors.Is(err, ErrVersionConflict) {
				continue
			}
			return 0, nil, err
		}
		return token, stored, nil
	}
	return 0, nil, ErrContention
}

// Release frees a token. Idempotent: releasing a token that is not booked is
// a successful no-op, which is what makes ambiguous-timeout retries safe.
func (a *Allocator) Release(ctx context.Context, doctorID uuid.UUID, dayOfWeek, slotIndex, token int) (*models.Availability, error) {
	for attempt := 0; attempt < reserveAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(retryBackoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		av, err := a.store.Get(ctx, doctorID, dayOfWeek)
		if err != nil {
			return nil, err
		}
		if slotIndex < 0 || slotIndex >= len(av.Slots) {
			return nil, ErrSlotNotFound
		}

		if !av.Slots[slotIndex].Release(token) {
			return av, nil
		}

		stored, err := a.store.Put(ctx, av, av.Version)
		if err != nil {
			if errors.Is(err, ErrVersionConflict) {
				continue
			}
			return nil, err
		}
		return stored, nil
	}
	return nil, ErrContention
}

// PeekCapacity reports a slot's capacity and current booking count.
func (a *Allocator) PeekCapacity(ctx context.Context, doctorID uuid.UUID, dayOfWeek, slotIndex int) (Capacity, error) {
	av, err := a.store.Get(ctx, doctorID, dayOfWeek)
	if err != nil {
		return Capacity{}, err
	}
	if slotIndex < 0 || slotIndex >= len(av.Slots) {
		return Capacity{}, ErrSlotNotFound
	}
	slot := &av.Slots[slotIndex]
	return Capacity{Capacity: slot.TokenCount, Booked: slot.BookedCount()}, nil
}
