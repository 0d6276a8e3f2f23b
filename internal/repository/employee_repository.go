package repository

import (
	"hr_training_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EmployeeRepository struct {
	DB *gorm.DB
}

func NewEmployeeRepository(db *gorm.DB) *EmployeeRepository {
	return &EmployeeRepository{DB: db}
}

func (r *EmployeeRepository) WithTx(tx *gorm.DB) *EmployeeRepository {
	return &EmployeeRepository{DB: tx}
}

func (r *EmployeeRepository) Create(employee *model.Employee) error {
	return r.DB.Create(employee).Error
}

func (r *EmployeeRepository) FindByID(id string) (*model.Employee, error) {
	var employee model.Employee
	err := r.DB.Where("id = ?", id).First(&employee).Error
	if err != nil {
		return nil, err
	}
	return &employee, nil
}

func (r *EmployeeRepository) FindByEmail(email string) (*model.Employee, error) {
	var employee model.Employee
	err := r.DB.Where("email = ?", email).First(&employee).Error
	if err != nil {
		return nil, err
	}
	return &employee, nil
}

func (r *EmployeeRepository) Exists(id string) (bool, error) {
	var count int64
	err := r.DB.Model(&model.Employee{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// FindByIDForUpdate 锁定员工行，用于串行化同一员工的分配操作
func (r *EmployeeRepository) FindByIDForUpdate(id string) (*model.Employee, error) {
	var employee model.Employee
	err := r.DB.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&employee).Error
	if err != nil {
		return nil, err
	}
	return &employee, nil
}
