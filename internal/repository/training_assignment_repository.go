package repository

import (
	"hr_training_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TrainingAssignmentRepository struct {
	DB *gorm.DB
}

func NewTrainingAssignmentRepository(db *gorm.DB) *TrainingAssignmentRepository {
	return &TrainingAssignmentRepository{DB: db}
}

func (r *TrainingAssignmentRepository) WithTx(tx *gorm.DB) *TrainingAssignmentRepository {
	return &TrainingAssignmentRepository{DB: tx}
}

func (r *TrainingAssignmentRepository) Create(assignment *model.TrainingAssignment) error {
	return r.DB.Omit(clause.Associations).Create(assignment).Error
}

func (r *TrainingAssignmentRepository) FindByID(id string) (*model.TrainingAssignment, error) {
	var assignment model.TrainingAssignment
	err := r.DB.Preload("Module").Preload("Progress").Where("id = ?", id).First(&assignment).Error
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

// activeModuleScope 只保留模块处于启用状态的分配记录
func activeModuleScope(db *gorm.DB) *gorm.DB {
	return db.Joins("JOIN training_modules ON training_modules.id = training_assignments.module_id").
		Where("training_modules.active = ? AND training_modules.deleted_at IS NULL", true)
}

// FindByEmployee 员工所有未移除且模块启用的分配，按分配时间倒序
func (r *TrainingAssignmentRepository) FindByEmployee(employeeID string) ([]model.TrainingAssignment, error) {
	var assignments []model.TrainingAssignment
	err := r.DB.Scopes(activeModuleScope).
		Preload("Module").
		Preload("Progress").
		Where("training_assignments.employee_id = ? AND training_assignments.status <> ?", employeeID, model.AssignmentRemoved).
		Order("training_assignments.assigned_at DESC").
		Find(&assignments).Error
	return assignments, err
}

// FindForEmployeeModule 查找员工在某模块上状态不在 excluded 中的分配，forUpdate 时加行锁
func (r *TrainingAssignmentRepository) FindForEmployeeModule(employeeID, moduleID string, forUpdate bool, excluded ...model.AssignmentStatus) (*model.TrainingAssignment, error) {
	if len(excluded) == 0 {
		excluded = []model.AssignmentStatus{model.AssignmentRemoved}
	}

	db := r.DB
	if forUpdate {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var assignment model.TrainingAssignment
	err := db.Where("employee_id = ? AND module_id = ? AND status NOT IN ?", employeeID, moduleID, excluded).
		Order("assigned_at DESC").
		First(&assignment).Error
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *TrainingAssignmentRepository) Update(assignment *model.TrainingAssignment, fields map[string]interface{}) error {
	return r.DB.Model(assignment).Omit(clause.Associations).Updates(fields).Error
}

// FindOpenWithDueDate 未完成且设置了截止日期的分配，用于逾期巡检
func (r *TrainingAssignmentRepository) FindOpenWithDueDate() ([]model.TrainingAssignment, error) {
	var assignments []model.TrainingAssignment
	err := r.DB.Scopes(activeModuleScope).
		Where("training_assignments.due_date IS NOT NULL").
		Where("training_assignments.status NOT IN ?", []model.AssignmentStatus{model.AssignmentCompleted, model.AssignmentRemoved}).
		Find(&assignments).Error
	return assignments, err
}
