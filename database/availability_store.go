package database

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/hospitalhq/hospital_ops/models"
	"github.com/hospitalhq/hospital_ops/scheduling"
	"gorm.io/gorm"
)

// AvailabilityStore is the Postgres-backed scheduling.Store. Concurrency
// control is the version column: every update and delete carries
// `AND version = ?` and a zero rows-affected result is a conflict, so two
// racing writers can never both commit against the same version.
type AvailabilityStore struct {
	db *gorm.DB
}

func NewAvailabilityStore(db *gorm.DB) *AvailabilityStore {
	return &AvailabilityStore{db: db}
}

func (s *AvailabilityStore) Get(ctx context.Context, doctorID uuid.UUID, dayOfWeek int) (*models.Availability, error) {
	var av models.Availability
	err := s.db.WithContext(ctx).
		Where("doctor_id = ? AND day_of_week = ?", doctorID, dayOfWeek).
		First(&av).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, scheduling.ErrNotFound
		}
		return nil, err
	}
	return &av, nil
}

func (s *AvailabilityStore) Put(ctx context.Context, av *models.Availability, expectedVersion int64) (*models.Availability, error) {
	if expectedVersion == 0 {
		record := *av
		record.ID = uuid.Nil
		record.Version = 1
		err := s.db.WithContext(ctx).Create(&record).Error
		if err != nil {
			// A duplicate (doctor_id, day_of_week) means someone else created
			// the day first; the caller must re-read it.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, scheduling.ErrVersionConflict
			}
			return nil, err
		}
		return &record, nil
	}

	update := models.Availability{
		IsAvailable: av.IsAvailable,
		Slots:       av.Slots,
		UpdatedBy:   av.UpdatedBy,
		Version:     expectedVersion + 1,
	}
	res := s.db.WithContext(ctx).Model(&models.Availability{}).
		Where("doctor_id = ? AND day_of_week = ? AND version = ?", av.DoctorID, av.DayOfWeek, expectedVersion).
		Select("IsAvailable", "Slots", "UpdatedBy", "Version").
		Updates(&update)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, scheduling.ErrVersionConflict
	}

	return s.Get(ctx, av.DoctorID, av.DayOfWeek)
}

func (s *AvailabilityStore) Delete(ctx context.Context, doctorID uuid.UUID, dayOfWeek int, expectedVersion int64) error {
	res := s.db.WithContext(ctx).
		Where("doctor_id = ? AND day_of_week = ? AND version = ?", doctorID, dayOfWeek, expectedVersion).
		Delete(&models.Availability{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := s.Get(ctx, doctorID, dayOfWeek); errors.Is(err, scheduling.ErrNotFound) {
			return scheduling.ErrNotFound
		}
		return scheduling.ErrVersionConflict
	}
	return nil
}

func (s *AvailabilityStore) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]models.Availability, error) {
	var records []models.Availability
	err := s.db.WithContext(ctx).
		Where("doctor_id = ?", doctorID).
		Order("day_of_week").
		Find(&records).Error
	return records, err
}

func (s *AvailabilityStore) ListByBranch(ctx context.Context, branchID uuid.UUID) ([]models.Availability, error) {
	var records []models.Availability
	doctorIDs := s.db.Model(&models.Doctor{}).Select("id").Where("branch_id = ?", branchID)
	err := s.db.WithContext(ctx).
		Where("doctor_id IN (?)", doctorIDs).
		Order("doctor_id, day_of_week").
		Find(&records).Error
	return records, err
}
