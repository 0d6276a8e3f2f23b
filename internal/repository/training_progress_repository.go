package repository

import (
	"hr_training_backend/internal/model"

	"gorm.io/gorm"
)

type TrainingProgressRepository struct {
	DB *gorm.DB
}

func NewTrainingProgressRepository(db *gorm.DB) *TrainingProgressRepository {
	return &TrainingProgressRepository{DB: db}
}

func (r *TrainingProgressRepository) WithTx(tx *gorm.DB) *TrainingProgressRepository {
	return &TrainingProgressRepository{DB: tx}
}

func (r *TrainingProgressRepository) Create(progress *model.TrainingProgress) error {
	return r.DB.Create(progress).Error
}

func (r *TrainingProgressRepository) Save(progress *model.TrainingProgress) error {
	return r.DB.Save(progress).Error
}

// FindActiveSession 员工在该分配上当前进行中的会话
func (r *TrainingProgressRepository) FindActiveSession(assignmentID, employeeID string) (*model.TrainingProgress, error) {
	var progress model.TrainingProgress
	err := r.DB.Where("assignment_id = ? AND employee_id = ? AND is_active = ?", assignmentID, employeeID, true).
		Order("started_at DESC").
		First(&progress).Error
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

func (r *TrainingProgressRepository) FindActiveByAssignment(assignmentID string) ([]model.TrainingProgress, error) {
	var sessions []model.TrainingProgress
	err := r.DB.Where("assignment_id = ? AND is_active = ?", assignmentID, true).
		Order("started_at ASC").
		Find(&sessions).Error
	return sessions, err
}

func (r *TrainingProgressRepository) FindByAssignment(assignmentID string) ([]model.TrainingProgress, error) {
	var sessions []model.TrainingProgress
	err := r.DB.Where("assignment_id = ?", assignmentID).
		Order("started_at ASC").
		Find(&sessions).Error
	return sessions, err
}
