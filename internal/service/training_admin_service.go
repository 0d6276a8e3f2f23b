package service

import (
	"errors"
	"fmt"
	"hr_training_backend/internal/model"
	"hr_training_backend/internal/repository"
	"hr_training_backend/internal/util"
	"hr_training_backend/pkg/logger"
	"hr_training_backend/pkg/monitoring"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TrainingAdminService HR 维护培训模块与分配
type TrainingAdminService struct {
	EmployeeRepo   *repository.EmployeeRepository
	ModuleRepo     *repository.TrainingModuleRepository
	AssignmentRepo *repository.TrainingAssignmentRepository
	ProgressRepo   *repository.TrainingProgressRepository
	StatsCache     *repository.TrainingStatsCache
	DB             *gorm.DB

	Now func() time.Time
}

func NewTrainingAdminService(
	employeeRepo *repository.EmployeeRepository,
	moduleRepo *repository.TrainingModuleRepository,
	assignmentRepo *repository.TrainingAssignmentRepository,
	progressRepo *repository.TrainingProgressRepository,
	statsCache *repository.TrainingStatsCache,
	db *gorm.DB,
) *TrainingAdminService {
	return &TrainingAdminService{
		EmployeeRepo:   employeeRepo,
		ModuleRepo:     moduleRepo,
		AssignmentRepo: assignmentRepo,
		ProgressRepo:   progressRepo,
		StatsCache:     statsCache,
		DB:             db,
		Now:            time.Now,
	}
}

// CreateModuleRequest 创建培训模块请求
// swagger:model CreateModuleRequest
type CreateModuleRequest struct {
	Title        string `json:"title" yaml:"title" binding:"required,max=255"`
	Description  string `json:"description" yaml:"description"`
	Category     string `json:"category" yaml:"category" binding:"max=100"`
	Duration     int    `json:"duration" yaml:"duration" binding:"min=0"`
	VideoURL     string `json:"video_url" yaml:"video_url" binding:"omitempty,url"`
	Content      string `json:"content" yaml:"content"`
	Active       *bool  `json:"active" yaml:"active"`
	DisplayOrder int    `json:"display_order" yaml:"display_order"`
}

// AssignTrainingRequest 分配培训请求
// swagger:model AssignTrainingRequest
type AssignTrainingRequest struct {
	EmployeeID string     `json:"employee_id" binding:"required"`
	ModuleID   string     `json:"module_id" binding:"required"`
	DueDate    *time.Time `json:"due_date"`
	Notes      string     `json:"notes"`
}

func (s *TrainingAdminService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func (s *TrainingAdminService) CreateModule(req *CreateModuleRequest) (*model.TrainingModule, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" || req.Duration < 0 {
		return nil, util.ErrInvalidModule
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	module := &model.TrainingModule{
		Title:        title,
		Description:  req.Description,
		Category:     req.Category,
		Duration:     req.Duration,
		VideoURL:     req.VideoURL,
		Content:      req.Content,
		Active:       active,
		DisplayOrder: req.DisplayOrder,
	}
	if err := s.ModuleRepo.Create(module); err != nil {
		return nil, fmt.Errorf("create training module: %w", err)
	}

	logger.Log.Info("training module created", zap.String("module_id", module.ID), zap.String("title", module.Title))
	return module, nil
}

func (s *TrainingAdminService) ListModules(includeInactive bool) ([]model.TrainingModule, error) {
	return s.ModuleRepo.List(includeInactive)
}

// AssignTraining 每个员工在同一模块上只能有一条未移除的分配；锁定员工行保证并发下也成立
func (s *TrainingAdminService) AssignTraining(req *AssignTrainingRequest) (*model.TrainingAssignment, error) {
	var assignment *model.TrainingAssignment

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if _, err := s.EmployeeRepo.WithTx(tx).FindByIDForUpdate(req.EmployeeID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.ErrEmployeeNotFound
			}
			return err
		}

		module, err := s.ModuleRepo.WithTx(tx).FindActiveByID(req.ModuleID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.ErrModuleNotFound
			}
			return err
		}

		repo := s.AssignmentRepo.WithTx(tx)
		_, err = repo.FindForEmployeeModule(req.EmployeeID, module.ID, false)
		if err == nil {
			return util.ErrAlreadyAssigned
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		assignment = &model.TrainingAssignment{
			EmployeeID: req.EmployeeID,
			ModuleID:   module.ID,
			Status:     model.AssignmentAssigned,
			AssignedAt: s.now(),
			DueDate:    req.DueDate,
			Notes:      req.Notes,
		}
		return repo.Create(assignment)
	})
	if err != nil {
		return nil, err
	}

	monitoring.RecordTrainingEvent(monitoring.EventAssigned)
	invalidateStats(s.StatsCache, req.EmployeeID)
	logger.Log.Info("training assigned",
		zap.String("employee_id", req.EmployeeID),
		zap.String("module_id", req.ModuleID),
		zap.String("assignment_id", assignment.ID),
	)

	return s.AssignmentRepo.FindByID(assignment.ID)
}

// RemoveAssignment 软删除：状态置为 removed，并结束仍在进行的学习会话
func (s *TrainingAdminService) RemoveAssignment(id string) error {
	var employeeID string

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		repo := s.AssignmentRepo.WithTx(tx)
		assignment, err := repo.FindByID(id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.ErrAssignmentNotFound
			}
			return err
		}
		if assignment.Status == model.AssignmentRemoved {
			return util.ErrAssignmentNotFound
		}
		employeeID = assignment.EmployeeID

		if err := repo.Update(assignment, map[string]interface{}{"status": model.AssignmentRemoved}); err != nil {
			return err
		}

		progressRepo := s.ProgressRepo.WithTx(tx)
		sessions, err := progressRepo.FindActiveByAssignment(assignment.ID)
		if err != nil {
			return err
		}
		now := s.now()
		for i := range sessions {
			sessions[i].IsActive = false
			sessions[i].EndedAt = &now
			if err := progressRepo.Save(&sessions[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	monitoring.RecordTrainingEvent(monitoring.EventRemoved)
	invalidateStats(s.StatsCache, employeeID)
	logger.Log.Info("training assignment removed", zap.String("assignment_id", id), zap.String("employee_id", employeeID))
	return nil
}
