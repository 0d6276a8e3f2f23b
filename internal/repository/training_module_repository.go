package repository

import (
	"hr_training_backend/internal/model"

	"gorm.io/gorm"
)

type TrainingModuleRepository struct {
	DB *gorm.DB
}

func NewTrainingModuleRepository(db *gorm.DB) *TrainingModuleRepository {
	return &TrainingModuleRepository{DB: db}
}

func (r *TrainingModuleRepository) WithTx(tx *gorm.DB) *TrainingModuleRepository {
	return &TrainingModuleRepository{DB: tx}
}

func (r *TrainingModuleRepository) Create(module *model.TrainingModule) error {
	return r.DB.Create(module).Error
}

func (r *TrainingModuleRepository) FindByID(id string) (*model.TrainingModule, error) {
	var module model.TrainingModule
	err := r.DB.Where("id = ?", id).First(&module).Error
	if err != nil {
		return nil, err
	}
	return &module, nil
}

func (r *TrainingModuleRepository) FindActiveByID(id string) (*model.TrainingModule, error) {
	var module model.TrainingModule
	err := r.DB.Where("id = ? AND active = ?", id, true).First(&module).Error
	if err != nil {
		return nil, err
	}
	return &module, nil
}

func (r *TrainingModuleRepository) FindActiveByQRCode(code string) (*model.TrainingModule, error) {
	var module model.TrainingModule
	err := r.DB.Where("qr_code = ? AND active = ?", code, true).First(&module).Error
	if err != nil {
		return nil, err
	}
	return &module, nil
}

// List 按显示顺序返回模块，includeInactive=false 时只返回启用的模块
func (r *TrainingModuleRepository) List(includeInactive bool) ([]model.TrainingModule, error) {
	var modules []model.TrainingModule
	db := r.DB.Model(&model.TrainingModule{})
	if !includeInactive {
		db = db.Where("active = ?", true)
	}
	err := db.Order("display_order ASC").Order("title ASC").Find(&modules).Error
	return modules, err
}

// QRCodeExists 包含软删除的记录，唯一索引对它们同样生效
func (r *TrainingModuleRepository) QRCodeExists(code string) (bool, error) {
	var count int64
	err := r.DB.Unscoped().Model(&model.TrainingModule{}).Where("qr_code = ?", code).Count(&count).Error
	return count > 0, err
}

// SetQRCodeIfEmpty 仅在模块尚无二维码时写入，返回是否写入成功
func (r *TrainingModuleRepository) SetQRCodeIfEmpty(id, code string) (bool, error) {
	result := r.DB.Model(&model.TrainingModule{}).
		Where("id = ? AND (qr_code IS NULL OR qr_code = '')", id).
		Update("qr_code", code)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
