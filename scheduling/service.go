package scheduling

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hospitalhq/hospital_ops/models"
)

// Service is the only entry point the surrounding console talks to. Every
// operation resolves the doctor, applies the branch-scope guard, and only then
// touches the store or the allocator. The store handle is injected here, never
// reached through package globals, so tests run against MemStore.
type Service struct {
	store     Store
	directory DoctorDirectory
	allocator *Allocator
	events    EventPublisher
	audit     AuditRecorder
}

func NewService(store Store, directory DoctorDirectory, events EventPublisher, audit AuditRecorder) *Service {
	return &Service{
		store:     store,
		directory: directory,
		allocator: NewAllocator(store),
		events:    events,
		audit:     audit,
	}
}

// DaySchedule is an availability record annotated with display statuses. The
// record itself (audit stamps included) is passed through verbatim.
type DaySchedule struct {
	Availability models.Availability `json:"availability"`
	SlotStatuses []string            `json:"slot_statuses"`
	DayStatus    string              `json:"day_status"`
}

func annotate(av models.Availability) DaySchedule {
	statuses := make([]string, len(av.Slots))
	slots := make(models.SlotList, len(av.Slots))
	for i := range av.Slots {
		slot := av.Slots[i]
		statuses[i] = ClassifySlot(slot.BookedCount(), slot.TokenCount, av.IsAvailable).String()
		// Grant keys are the callers' idempotency keys. They stay server-side.
		slot.Grants = nil
		slots[i] = slot
	}
	av.Slots = slots
	return DaySchedule{
		Availability: av,
		SlotStatuses: statuses,
		DayStatus:    ClassifyDay(&av).String(),
	}
}

func (s *Service) doctorFor(ctx context.Context, doctorID uuid.UUID) (*models.Doctor, error) {
	doctor, err := s.directory.GetDoctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	return doctor, nil
}

// ListDoctorsInBranch returns the doctors the actor may schedule: the roster
// of the actor's own branch.
func (s *Service) ListDoctorsInBranch(ctx context.Context, actor models.Actor) ([]models.Doctor, error) {
	return s.directory.ListByBranch(ctx, actor.BranchID)
}

// GetWeeklySchedule returns every availability record for one doctor, with
// slot and day statuses recomputed on the way out.
func (s *Service) GetWeeklySchedule(ctx context.Context, actor models.Actor, doctorID uuid.UUID) ([]DaySchedule, error) {
	doctor, err := s.doctorFor(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	if err := Authorize(actor, doctor, false); err != nil {
		return nil, err
	}

	records, err := s.store.ListByDoctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	out := make([]DaySchedule, len(records))
	for i, av := range records {
		out[i] = annotate(av)
	}
	return out, nil
}

// BranchOverview returns every record visible to the actor's branch, for the
// dashboard's all-doctors view.
func (s *Service) BranchOverview(ctx context.Context, actor models.Actor) ([]DaySchedule, error) {
	records, err := s.store.ListByBranch(ctx, actor.BranchID)
	if err != nil {
		return nil, err
	}
	out := make([]DaySchedule, len(records))
	for i, av := range records {
		out[i] = annotate(av)
	}
	return out, nil
}

// UpsertDaySlots replaces one day's slot list. Bookings survive the edit for
// slots whose time window is unchanged; shrinking a slot's capacity below its
// carried bookings is rejected rather than silently truncated. expectedVersion
// is the version the caller last saw (0 to create); a mismatch surfaces as
// ErrVersionConflict for the caller to re-read and re-submit, since merging two
// human edits automatically is unsafe.
func (s *Service) UpsertDaySlots(ctx context.Context, actor models.Actor, doctorID uuid.UUID, dayOfWeek int, slots models.SlotList, isAvailable bool, expectedVersion int64) (*DaySchedule, error) {
	if dayOfWeek < 0 || dayOfWeek > 6 {
		return nil, &ValidationError{SlotIndex: -1, Message: "day_of_week must be in 0..6"}
	}
	doctor, err := s.doctorFor(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	if err := Authorize(actor, doctor, true); err != nil {
		return nil, err
	}

	existing, err := s.store.Get(ctx, doctorID, dayOfWeek)
	if err != nil && err != ErrNotFound {
		return nil, err
	}

	// Removing the last slot removes the record, with the same active-booking
	// protection as an explicit delete.
	if len(slots) == 0 {
		if existing == nil {
			return nil, ErrNotFound
		}
		if existing.HasBookings() {
			return nil, ErrHasActiveBookings
		}
		if err := s.store.Delete(ctx, doctorID, dayOfWeek, expectedVersion); err != nil {
			return nil, err
		}
		s.recordAudit(ctx, actor, "day.deleted", doctorID, dayOfWeek, expectedVersion, "last slot removed")
		s.publish(EventScheduleDeleted, doctor, dayOfWeek, expectedVersion, "")
		return nil, nil
	}

	// The capacity ledger belongs to this core: whatever token state the
	// caller sent is discarded, and bookings are carried over from the stored
	// record for slots that kept their time window.
	next := make(models.SlotList, len(slots))
	for i, slot := range slots {
		slot.BookedTokens = nil
		slot.Grants = nil
		if existing != nil {
			for j := range existing.Slots {
				if existing.Slots[j].SameWindow(&slot) {
					slot.BookedTokens = append([]int(nil), existing.Slots[j].BookedTokens...)
					for key, token := range existing.Slots[j].Grants {
						slot.RememberGrant(key, token)
					}
					break
				}
			}
		}
		next[i] = slot
	}

	if err := ValidateSlots(next); err != nil {
		return nil, err
	}

	now := time.Now()
	stamp := models.StampFor(actor, now)
	record := &models.Availability{
		DoctorID:    doctorID,
		DayOfWeek:   dayOfWeek,
		IsAvailable: isAvailable,
		Slots:       next,
		AddedBy:     stamp,
		UpdatedBy:   stamp,
	}
	if existing != nil {
		record.ID = existing.ID
		record.AddedBy = existing.AddedBy
	}

	stored, err := s.store.Put(ctx, record, expectedVersion)
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, actor, "day.upserted", doctorID, dayOfWeek, stored.Version, fmt.Sprintf("%d slots", len(next)))
	annotated := annotate(*stored)
	s.publish(EventScheduleUpserted, doctor, dayOfWeek, stored.Version, annotated.DayStatus)
	return &annotated, nil
}

// DeleteDay removes one day's record. Days holding reserved tokens refuse to
// go unless force is set; a forced delete revokes the reservations and leaves
// an audit row saying how many were dropped.
func (s *Service) DeleteDay(ctx context.Context, actor models.Actor, doctorID uuid.UUID, dayOfWeek int, force bool) error {
	doctor, err := s.doctorFor(ctx, doctorID)
	if err != nil {
		return err
	}
	if err := Authorize(actor, doctor, true); err != nil {
		return err
	}

	existing, err := s.store.Get(ctx, doctorID, dayOfWeek)
	if err != nil {
		return err
	}

	revoked := 0
	for i := range existing.Slots {
		revoked += existing.Slots[i].BookedCount()
	}
	if revoked > 0 && !force {
		return ErrHasActiveBookings
	}

	if err := s.store.Delete(ctx, doctorID, dayOfWeek, existing.Version); err != nil {
		return err
	}

	detail := ""
	if revoked > 0 {
		detail = fmt.Sprintf("forced: revoked %d reservations", revoked)
	}
	s.recordAudit(ctx, actor, "day.deleted", doctorID, dayOfWeek, existing.Version, detail)
	s.publish(EventScheduleDeleted, doctor, dayOfWeek, existing.Version, "")
	return nil
}

// ReserveToken grants one token against a slot. Deactivated days are not
// bookable and report ErrNotFound, matching what the dashboard shows for them.
func (s *Service) ReserveToken(ctx context.Context, actor models.Actor, doctorID uuid.UUID, dayOfWeek, slotIndex int, idemKey string) (int, error) {
	doctor, err := s.doctorFor(ctx, doctorID)
	if err != nil {
		return 0, err
	}
	if err := CanReserve(actor, doctor); err != nil {
		return 0, err
	}

	current, err := s.store.Get(ctx, doctorID, dayOfWeek)
	if err != nil {
		return 0, err
	}
	if !current.IsAvailable {
		return 0, ErrNotFound
	}

	token, stored, err := s.allocator.Reserve(ctx, doctorID, dayOfWeek, slotIndex, idemKey)
	if err != nil {
		return 0, err
	}

	s.recordAudit(ctx, actor, "token.reserved", doctorID, dayOfWeek, stored.Version, fmt.Sprintf("slot %d token %d", slotIndex, token))
	slot := &stored.Slots[slotIndex]
	s.publish(EventTokenReserved, doctor, dayOfWeek, stored.Version,
		ClassifySlot(slot.BookedCount(), slot.TokenCount, stored.IsAvailable).String())
	return token, nil
}

// ReleaseToken frees a previously granted token. Idempotent end to end.
func (s *Service) ReleaseToken(ctx context.Context, actor models.Actor, doctorID uuid.UUID, dayOfWeek, slotIndex, token int) error {
	doctor, err := s.doctorFor(ctx, doctorID)
	if err != nil {
		return err
	}
	if err := CanReserve(actor, doctor); err != nil {
		return err
	}

	stored, err := s.allocator.Release(ctx, doctorID, dayOfWeek, slotIndex, token)
	if err != nil {
		return err
	}

	s.recordAudit(ctx, actor, "token.released", doctorID, dayOfWeek, stored.Version, fmt.Sprintf("slot %d token %d", slotIndex, token))
	slot := &stored.Slots[slotIndex]
	s.publish(EventTokenReleased, doctor, dayOfWeek, stored.Version,
		ClassifySlot(slot.BookedCount(), slot.TokenCount, stored.IsAvailable).String())
	return nil
}

// PeekCapacity reports one slot's ledger after the read-side guard.
func (s *Service) PeekCapacity(ctx context.Context, actor models.Actor, doctorID uuid.UUID, dayOfWeek, slotIndex int) (Capacity, error) {
	doctor, err := s.doctorFor(ctx, doctorID)
	if err != nil {
		return Capacity{}, err
	}
	if err := Authorize(actor, doctor, false); err != nil {
		return Capacity{}, err
	}
	return s.allocator.PeekCapacity(ctx, doctorID, dayOfWeek, slotIndex)
}

func (s *Service) publish(eventType string, doctor *models.Doctor, dayOfWeek int, version int64, status string) {
	if s.events == nil {
		return
	}
	s.events.Publish(ScheduleEvent{
		Type:      eventType,
		DoctorID:  doctor.ID,
		BranchID:  doctor.BranchID,
		DayOfWeek: dayOfWeek,
		Version:   version,
		Status:    status,
		At:        time.Now(),
	})
}

func (s *Service) recordAudit(ctx context.Context, actor models.Actor, action string, doctorID uuid.UUID, dayOfWeek int, version int64, detail string) {
	if s.audit == nil {
		return
	}
	s.audit.Record(ctx, models.AuditLog{
		Action:    action,
		DoctorID:  doctorID,
		DayOfWeek: dayOfWeek,
		Version:   version,
		ActorID:   actor.ID,
		ActorRole: actor.Role,
		ActorName: actor.DisplayName,
		Detail:    detail,
	})
}
