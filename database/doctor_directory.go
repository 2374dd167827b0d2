package database

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/hospitalhq/hospital_ops/models"
	"github.com/hospitalhq/hospital_ops/scheduling"
	"gorm.io/gorm"
)

// DoctorDirectory reads the staff roster for the scheduling core.
type DoctorDirectory struct {
	db *gorm.DB
}

func NewDoctorDirectory(db *gorm.DB) *DoctorDirectory {
	return &DoctorDirectory{db: db}
}

func (d *DoctorDirectory) GetDoctor(ctx context.Context, id uuid.UUID) (*models.Doctor, error) {
	var doctor models.Doctor
	err := d.db.WithContext(ctx).First(&doctor, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, scheduling.ErrNotFound
		}
		return nil, err
	}
	return &doctor, nil
}

func (d *DoctorDirectory) ListByBranch(ctx context.Context, branchID uuid.UUID) ([]models.Doctor, error) {
	var doctors []models.Doctor
	err := d.db.WithContext(ctx).
		Where("branch_id = ? AND active = ?", branchID, true).
		Order("full_name").
		Find(&doctors).Error
	return doctors, err
}
