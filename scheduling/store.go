package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hospitalhq/hospital_ops/models"
)

// Store is the persistence contract for availability records. All writes are
// conditioned on expectedVersion; a mismatch fails with ErrVersionConflict and
// never overwrites silently. expectedVersion 0 means "create": putting over an
// existing record is itself a version conflict. Successful writes increment
// Version and stamp UpdatedAt.
type Store interface {
	Get(ctx context.Context, doctorID uuid.UUID, dayOfWeek int) (*models.Availability, error)
	Put(ctx context.Context, av *models.Availability, expectedVersion int64) (*models.Availability, error)
	Delete(ctx context.Context, doctorID uuid.UUID, dayOfWeek int, expectedVersion int64) error
	ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]models.Availability, error)
	ListByBranch(ctx context.Context, branchID uuid.UUID) ([]models.Availability, error)
}

// DoctorDirectory is the staff-management collaborator. The scheduling core
// only ever reads from it; doctors are referenced by immutable id.
type DoctorDirectory interface {
	GetDoctor(ctx context.Context, id uuid.UUID) (*models.Doctor, error)
	ListByBranch(ctx context.Context, branchID uuid.UUID) ([]models.Doctor, error)
}

// ScheduleEvent is the server-confirmed notification pushed to dashboard
// clients after a mutation commits. Version lets a client discard anything
// staler than what it already shows.
type ScheduleEvent struct {
	Type      string    `json:"type"`
	DoctorID  uuid.UUID `json:"doctor_id"`
	BranchID  uuid.UUID `json:"branch_id"`
	DayOfWeek int       `json:"day_of_week"`
	Version   int64     `json:"version"`
	Status    string    `json:"status,omitempty"`
	At        time.Time `json:"at"`
}

const (
	EventScheduleUpserted = "schedule.upserted"
	EventScheduleDeleted  = "schedule.deleted"
	EventTokenReserved    = "token.reserved"
	EventTokenReleased    = "token.released"
)

// EventPublisher fans committed events out to connected clients. Implemented
// by the websocket hub; tests plug in a recorder.
type EventPublisher interface {
	Publish(ev ScheduleEvent)
}

// AuditRecorder appends one row per mutating operation. Failures to record are
// logged by implementations, never propagated into the mutation result.
type AuditRecorder interface {
	Record(ctx context.Context, entry models.AuditLog)
}
