package repository

import (
	"context"

	"github.com/fieldops/duty-assignment-api/internal/models"
	"gorm.io/gorm"
)

// GormPersonDirectory is a GORM implementation of PersonDirectory
type GormPersonDirectory struct {
	db *gorm.DB
}

// NewPersonDirectory creates a new PersonDirectory
func NewPersonDirectory(db *gorm.DB) PersonDirectory {
	return &GormPersonDirectory{db: db}
}

// GetOperator finds an operator by ID
func (r *GormPersonDirectory) GetOperator(ctx context.Context, id uint64) (*models.Operator, error) {
	var operator models.Operator
	if err := r.db.WithContext(ctx).First(&operator, id).Error; err != nil {
		return nil, err
	}
	return &operator, nil
}

// GetSupervisor finds a supervisor by ID
func (r *GormPersonDirectory) GetSupervisor(ctx context.Context, id uint64) (*models.Supervisor, error) {
	var supervisor models.Supervisor
	if err := r.db.WithContext(ctx).First(&supervisor, id).Error; err != nil {
		return nil, err
	}
	return &supervisor, nil
}
