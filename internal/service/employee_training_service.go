package service

import (
	"context"
	"encoding/json"
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
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	maxQRCodeAttempts = 10
	minStatsCacheTTL  = time.Second
)

type EmployeeTrainingService struct {
	EmployeeRepo   *repository.EmployeeRepository
	ModuleRepo     *repository.TrainingModuleRepository
	AssignmentRepo *repository.TrainingAssignmentRepository
	ProgressRepo   *repository.TrainingProgressRepository
	StatsCache     *repository.TrainingStatsCache
	QRRenderer     QRRenderer
	DB             *gorm.DB

	Now       func() time.Time
	NewQRCode func() string
}

func NewEmployeeTrainingService(
	employeeRepo *repository.EmployeeRepository,
	moduleRepo *repository.TrainingModuleRepository,
	assignmentRepo *repository.TrainingAssignmentRepository,
	progressRepo *repository.TrainingProgressRepository,
	statsCache *repository.TrainingStatsCache,
	qrRenderer QRRenderer,
	db *gorm.DB,
) *EmployeeTrainingService {
	return &EmployeeTrainingService{
		EmployeeRepo:   employeeRepo,
		ModuleRepo:     moduleRepo,
		AssignmentRepo: assignmentRepo,
		ProgressRepo:   progressRepo,
		StatsCache:     statsCache,
		QRRenderer:     qrRenderer,
		DB:             db,
		Now:            time.Now,
		NewQRCode:      NewTrainingQRCode,
	}
}

type ModuleSummary struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Duration    int    `json:"duration"`
	VideoURL    string `json:"video_url"`
}

type ModuleContent struct {
	ModuleSummary
	Content string `json:"content"`
}

type AssignmentView struct {
	ID          string                 `json:"id"`
	Module      ModuleSummary          `json:"module"`
	Status      model.AssignmentStatus `json:"status"`
	AssignedAt  *string                `json:"assigned_at"`
	DueDate     *string                `json:"due_date"`
	UnlockedAt  *string                `json:"unlocked_at"`
	StartedAt   *string                `json:"started_at"`
	CompletedAt *string                `json:"completed_at"`
	Progress    int                    `json:"progress"`
	IsOverdue   bool                   `json:"is_overdue"`
	CanUnlock   bool                   `json:"can_unlock"`
	Notes       string                 `json:"notes"`
}

// ModuleOverview 所有启用模块的视图，未分配的模块 assignment_status 为 not_assigned
type ModuleOverview struct {
	ModuleSummary
	DisplayOrder     int                    `json:"display_order"`
	AssignmentID     *string                `json:"assignment_id"`
	AssignmentStatus model.AssignmentStatus `json:"assignment_status"`
	AssignedAt       *string                `json:"assigned_at"`
	DueDate          *string                `json:"due_date"`
	CompletedAt      *string                `json:"completed_at"`
	Progress         int                    `json:"progress"`
	IsOverdue        bool                   `json:"is_overdue"`
	CanUnlock        bool                   `json:"can_unlock"`
}

type AssignedTrainingModules struct {
	Assignments []AssignmentView     `json:"assignments"`
	Modules     []ModuleOverview     `json:"modules"`
	Stats       *model.TrainingStats `json:"stats"`
	// Statistics 与 Stats 相同，保留旧字段名
	Statistics  *model.TrainingStats `json:"statistics"`
}

type UnlockResult struct {
	Message       string         `json:"message"`
	Assignment    AssignmentView `json:"assignment"`
	ModuleContent ModuleContent  `json:"module_content"`
}

type ModuleContentResult struct {
	Assignment    AssignmentView `json:"assignment"`
	ModuleContent ModuleContent  `json:"module_content"`
	SessionID     string         `json:"session_id"`
}

type CompletionResult struct {
	Message    string         `json:"message"`
	Assignment AssignmentView `json:"assignment"`
}

type ProgressResult struct {
	SessionID        string `json:"session_id"`
	TimeSpentMinutes int    `json:"time_spent_minutes"`
	Progress         int    `json:"progress"`
}

type TrainingQR struct {
	ModuleID string `json:"module_id"`
	QRCode   string `json:"qr_code"`
	Payload  string `json:"payload"`
	Image    []byte `json:"-"`
}

type qrPayload struct {
	ModuleID  string `json:"module_id"`
	QRCode    string `json:"qr_code"`
	Title     string `json:"title"`
	Timestamp string `json:"timestamp"`
}

func (s *EmployeeTrainingService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func (s *EmployeeTrainingService) ensureEmployee(employeeID string) error {
	exists, err := s.EmployeeRepo.Exists(employeeID)
	if err != nil {
		return fmt.Errorf("load employee: %w", err)
	}
	if !exists {
		return util.ErrEmployeeNotFound
	}
	return nil
}

func (s *EmployeeTrainingService) activeModule(moduleID string) (*model.TrainingModule, error) {
	module, err := s.ModuleRepo.FindActiveByID(moduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrModuleNotFound
		}
		return nil, fmt.Errorf("load training module: %w", err)
	}
	return module, nil
}

func invalidateStats(cache *repository.TrainingStatsCache, employeeID string) {
	if err := cache.Invalidate(context.Background(), employeeID); err != nil {
		logger.Log.Warn("invalidate training stats cache failed",
			zap.String("employee_id", employeeID),
			zap.Error(err),
		)
	}
}

func summarize(m *model.TrainingModule) ModuleSummary {
	return ModuleSummary{
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		Category:    m.Category,
		Duration:    m.Duration,
		VideoURL:    m.VideoURL,
	}
}

func moduleContent(m *model.TrainingModule) ModuleContent {
	return ModuleContent{ModuleSummary: summarize(m), Content: m.Content}
}

func (s *EmployeeTrainingService) formatAssignment(a *model.TrainingAssignment, now time.Time) AssignmentView {
	return AssignmentView{
		ID:          a.ID,
		Module:      summarize(&a.Module),
		Status:      a.Status,
		AssignedAt:  util.FormatISO(&a.AssignedAt),
		DueDate:     util.FormatISO(a.DueDate),
		UnlockedAt:  util.FormatISO(a.UnlockedAt),
		StartedAt:   util.FormatISO(a.StartedAt),
		CompletedAt: util.FormatISO(a.CompletedAt),
		Progress:    CalculateProgress(a, a.Progress),
		IsOverdue:   IsOverdue(a, now),
		CanUnlock:   CanUnlock(a, now),
		Notes:       a.Notes,
	}
}

func (s *EmployeeTrainingService) reloadAssignment(id string) (*model.TrainingAssignment, error) {
	assignment, err := s.AssignmentRepo.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("reload training assignment: %w", err)
	}
	return assignment, nil
}

// GetAssignedTrainingModules 员工的分配列表、全部启用模块概览以及统计
func (s *EmployeeTrainingService) GetAssignedTrainingModules(employeeID string) (*AssignedTrainingModules, error) {
	if err := s.ensureEmployee(employeeID); err != nil {
		return nil, err
	}

	assignments, err := s.AssignmentRepo.FindByEmployee(employeeID)
	if err != nil {
		return nil, fmt.Errorf("load training assignments: %w", err)
	}

	modules, err := s.ModuleRepo.List(false)
	if err != nil {
		return nil, fmt.Errorf("load training modules: %w", err)
	}

	now := s.now()

	views := make([]AssignmentView, 0, len(assignments))
	byModule := make(map[string]*model.TrainingAssignment, len(assignments))
	for i := range assignments {
		a := &assignments[i]
		views = append(views, s.formatAssignment(a, now))
		// 已按分配时间倒序，保留最新的一条
		if _, ok := byModule[a.ModuleID]; !ok {
			byModule[a.ModuleID] = a
		}
	}

	overview := make([]ModuleOverview, 0, len(modules))
	for i := range modules {
		m := &modules[i]
		item := ModuleOverview{
			ModuleSummary:    summarize(m),
			DisplayOrder:     m.DisplayOrder,
			AssignmentStatus: model.NotAssigned,
		}
		if a, ok := byModule[m.ID]; ok {
			id := a.ID
			item.AssignmentID = &id
			item.AssignmentStatus = a.Status
			item.AssignedAt = util.FormatISO(&a.AssignedAt)
			item.DueDate = util.FormatISO(a.DueDate)
			item.CompletedAt = util.FormatISO(a.CompletedAt)
			item.Progress = CalculateProgress(a, a.Progress)
			item.IsOverdue = IsOverdue(a, now)
			item.CanUnlock = CanUnlock(a, now)
		}
		overview = append(overview, item)
	}

	stats := CalculateEmployeeStats(assignments, now)

	return &AssignedTrainingModules{
		Assignments: views,
		Modules:     overview,
		Stats:       stats,
		Statistics:  stats,
	}, nil
}

// UnlockTrainingViaQR 扫码解锁培训，已解锁或学习中时直接返回当前状态
func (s *EmployeeTrainingService) UnlockTrainingViaQR(employeeID, qrCode string) (*UnlockResult, error) {
	if err := s.ensureEmployee(employeeID); err != nil {
		return nil, err
	}

	module, err := s.ModuleRepo.FindActiveByQRCode(strings.TrimSpace(qrCode))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrInvalidQRCode
		}
		return nil, fmt.Errorf("load training module by qr code: %w", err)
	}

	var assignmentID string
	alreadyUnlocked := false

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		repo := s.AssignmentRepo.WithTx(tx)
		assignment, err := repo.FindForEmployeeModule(employeeID, module.ID, true,
			model.AssignmentRemoved, model.AssignmentCompleted)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.ErrAssignmentNotFound
			}
			return err
		}
		assignmentID = assignment.ID

		if assignment.Status == model.AssignmentUnlocked || assignment.Status == model.AssignmentInProgress {
			alreadyUnlocked = true
			return nil
		}

		return repo.Update(assignment, map[string]interface{}{
			"status":      model.AssignmentUnlocked,
			"unlocked_at": s.now(),
		})
	})
	if err != nil {
		return nil, err
	}

	message := "Training already unlocked"
	if !alreadyUnlocked {
		message = "Training unlocked successfully"
		monitoring.RecordTrainingEvent(monitoring.EventUnlocked)
		invalidateStats(s.StatsCache, employeeID)
		logger.Log.Info("training unlocked",
			zap.String("employee_id", employeeID),
			zap.String("module_id", module.ID),
			zap.String("assignment_id", assignmentID),
		)
	}

	assignment, err := s.reloadAssignment(assignmentID)
	if err != nil {
		return nil, err
	}

	return &UnlockResult{
		Message:       message,
		Assignment:    s.formatAssignment(assignment, s.now()),
		ModuleContent: moduleContent(module),
	}, nil
}

// ensureActiveSession 复用进行中的会话，没有时以 action 标记新建一个
func (s *EmployeeTrainingService) ensureActiveSession(repo *repository.TrainingProgressRepository, a *model.TrainingAssignment, now time.Time, action string) (*model.TrainingProgress, error) {
	session, err := repo.FindActiveSession(a.ID, a.EmployeeID)
	if err == nil {
		return session, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	session = &model.TrainingProgress{
		AssignmentID: a.ID,
		EmployeeID:   a.EmployeeID,
		ModuleID:     a.ModuleID,
		StartedAt:    now,
		IsActive:     true,
		Metadata: datatypes.JSONMap{
			"action":     action,
			"started_at": util.ISO(now),
		},
	}
	if err := repo.Create(session); err != nil {
		return nil, err
	}
	return session, nil
}

// startIfUnlocked 首次访问内容时 unlocked -> in_progress
func (s *EmployeeTrainingService) startIfUnlocked(repo *repository.TrainingAssignmentRepository, a *model.TrainingAssignment, now time.Time) (bool, error) {
	if a.Status != model.AssignmentUnlocked {
		return false, nil
	}
	if err := repo.Update(a, map[string]interface{}{
		"status":     model.AssignmentInProgress,
		"started_at": now,
	}); err != nil {
		return false, err
	}
	return true, nil
}

// GetModuleContent 查看已解锁模块的内容，并保证存在一个进行中的学习会话
func (s *EmployeeTrainingService) GetModuleContent(employeeID, moduleID string) (*ModuleContentResult, error) {
	if err := s.ensureEmployee(employeeID); err != nil {
		return nil, err
	}

	module, err := s.activeModule(moduleID)
	if err != nil {
		return nil, err
	}

	var assignmentID, sessionID string
	started := false

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		assignmentRepo := s.AssignmentRepo.WithTx(tx)
		assignment, err := assignmentRepo.FindForEmployeeModule(employeeID, module.ID, true)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.ErrAssignmentNotFound
			}
			return err
		}
		if !assignment.Status.Accessible() {
			return util.ErrTrainingLocked
		}
		assignmentID = assignment.ID

		now := s.now()
		if started, err = s.startIfUnlocked(assignmentRepo, assignment, now); err != nil {
			return err
		}

		session, err := s.ensureActiveSession(s.ProgressRepo.WithTx(tx), assignment, now, model.ProgressActionStarted)
		if err != nil {
			return err
		}
		sessionID = session.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	if started {
		monitoring.RecordTrainingEvent(monitoring.EventStarted)
		invalidateStats(s.StatsCache, employeeID)
	}

	assignment, err := s.reloadAssignment(assignmentID)
	if err != nil {
		return nil, err
	}

	return &ModuleContentResult{
		Assignment:    s.formatAssignment(assignment, s.now()),
		ModuleContent: moduleContent(module),
		SessionID:     sessionID,
	}, nil
}

// RecordProgress 为当前会话累加学习时长
func (s *EmployeeTrainingService) RecordProgress(employeeID, moduleID string, minutes int) (*ProgressResult, error) {
	if minutes <= 0 || minutes > util.MaxTrainingMinutes {
		return nil, util.ErrInvalidMinutes
	}
	if err := s.ensureEmployee(employeeID); err != nil {
		return nil, err
	}

	module, err := s.activeModule(moduleID)
	if err != nil {
		return nil, err
	}

	var assignmentID string
	var session *model.TrainingProgress

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		assignmentRepo := s.AssignmentRepo.WithTx(tx)
		assignment, err := assignmentRepo.FindForEmployeeModule(employeeID, module.ID, true)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.ErrAssignmentNotFound
			}
			return err
		}
		if assignment.Status == model.AssignmentCompleted {
			return util.ErrTrainingNotCompletable
		}
		if !assignment.Status.Accessible() {
			return util.ErrTrainingLocked
		}
		assignmentID = assignment.ID

		now := s.now()
		if _, err := s.startIfUnlocked(assignmentRepo, assignment, now); err != nil {
			return err
		}

		progressRepo := s.ProgressRepo.WithTx(tx)
		session, err = s.ensureActiveSession(progressRepo, assignment, now, model.ProgressActionStarted)
		if err != nil {
			return err
		}
		session.TimeSpentMinutes = util.AddMinutes(session.TimeSpentMinutes, minutes)
		return progressRepo.Save(session)
	})
	if err != nil {
		return nil, err
	}

	invalidateStats(s.StatsCache, employeeID)

	assignment, err := s.reloadAssignment(assignmentID)
	if err != nil {
		return nil, err
	}

	return &ProgressResult{
		SessionID:        session.ID,
		TimeSpentMinutes: session.TimeSpentMinutes,
		Progress:         CalculateProgress(assignment, assignment.Progress),
	}, nil
}

// closeSession 结束会话；时长优先取 completionData 中的 time_spent_minutes
func closeSession(session *model.TrainingProgress, completionData map[string]interface{}, now time.Time) {
	if minutes, ok := util.ToInt(completionData["time_spent_minutes"]); ok && minutes >= 0 {
		session.TimeSpentMinutes = minutes
	} else if session.TimeSpentMinutes <= 0 {
		elapsed := int(now.Sub(session.StartedAt).Minutes())
		if elapsed < 0 {
			elapsed = 0
		}
		session.TimeSpentMinutes = elapsed
	}

	metadata := datatypes.JSONMap{}
	for k, v := range session.Metadata {
		metadata[k] = v
	}
	for k, v := range completionData {
		metadata[k] = v
	}
	metadata["completed_at"] = util.ISO(now)

	session.Metadata = metadata
	session.IsActive = false
	session.EndedAt = &now
}

// CompleteTraining 完成培训并结束所有进行中的会话
func (s *EmployeeTrainingService) CompleteTraining(employeeID, moduleID string, completionData map[string]interface{}) (*CompletionResult, error) {
	if err := s.ensureEmployee(employeeID); err != nil {
		return nil, err
	}

	module, err := s.activeModule(moduleID)
	if err != nil {
		return nil, err
	}

	var assignmentID string

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		assignmentRepo := s.AssignmentRepo.WithTx(tx)
		progressRepo := s.ProgressRepo.WithTx(tx)

		assignment, err := assignmentRepo.FindForEmployeeModule(employeeID, module.ID, true)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.ErrAssignmentNotFound
			}
			return err
		}
		if !assignment.Status.Completable() {
			return util.ErrTrainingNotCompletable
		}
		assignmentID = assignment.ID

		now := s.now()

		var data datatypes.JSONMap
		if completionData != nil {
			data = make(datatypes.JSONMap, len(completionData))
			for k, v := range completionData {
				data[k] = v
			}
		}

		if err := assignmentRepo.Update(assignment, map[string]interface{}{
			"status":          model.AssignmentCompleted,
			"completed_at":    now,
			"completion_data": data,
		}); err != nil {
			return err
		}

		// 跳过内容访问直接完成时也要有一条学习记录
		if _, err := s.ensureActiveSession(progressRepo, assignment, now, model.ProgressActionCompleted); err != nil {
			return err
		}

		sessions, err := progressRepo.FindActiveByAssignment(assignment.ID)
		if err != nil {
			return err
		}
		for i := range sessions {
			closeSession(&sessions[i], completionData, now)
			if err := progressRepo.Save(&sessions[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	monitoring.RecordTrainingEvent(monitoring.EventCompleted)
	invalidateStats(s.StatsCache, employeeID)
	logger.Log.Info("training completed",
		zap.String("employee_id", employeeID),
		zap.String("module_id", module.ID),
		zap.String("assignment_id", assignmentID),
	)

	assignment, err := s.reloadAssignment(assignmentID)
	if err != nil {
		return nil, err
	}

	return &CompletionResult{
		Message:    "Training completed successfully",
		Assignment: s.formatAssignment(assignment, s.now()),
	}, nil
}

// GetEmployeeTrainingStats 统计只包含启用模块的分配，优先读取缓存
func (s *EmployeeTrainingService) GetEmployeeTrainingStats(employeeID string) (*model.TrainingStats, error) {
	if err := s.ensureEmployee(employeeID); err != nil {
		return nil, err
	}

	ctx := context.Background()
	if stats, ok := s.StatsCache.Get(ctx, employeeID); ok {
		return stats, nil
	}

	assignments, err := s.AssignmentRepo.FindByEmployee(employeeID)
	if err != nil {
		return nil, fmt.Errorf("load training assignments: %w", err)
	}

	now := s.now()
	stats := CalculateEmployeeStats(assignments, now)

	// 缓存不能跨过下一个截止时间，否则 overdue 计数会过期
	var ttl time.Duration
	if next := NextOverdueAt(assignments, now); next != nil {
		ttl = next.Sub(now)
		if ttl < minStatsCacheTTL {
			return stats, nil
		}
	}
	if err := s.StatsCache.Set(ctx, employeeID, stats, ttl); err != nil {
		logger.Log.Warn("cache training stats failed", zap.String("employee_id", employeeID), zap.Error(err))
	}
	return stats, nil
}

func (s *EmployeeTrainingService) uniqueQRCode() (string, error) {
	generate := s.NewQRCode
	if generate == nil {
		generate = NewTrainingQRCode
	}
	for i := 0; i < maxQRCodeAttempts; i++ {
		code := generate()
		exists, err := s.ModuleRepo.QRCodeExists(code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", fmt.Errorf("could not generate a unique qr code after %d attempts", maxQRCodeAttempts)
}

// GenerateTrainingQR 模块没有二维码时生成并保存，之后复用同一个码
func (s *EmployeeTrainingService) GenerateTrainingQR(moduleID string) (*TrainingQR, error) {
	module, err := s.ModuleRepo.FindByID(moduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrModuleNotFound
		}
		return nil, fmt.Errorf("load training module: %w", err)
	}

	if !module.HasQRCode() {
		code, err := s.uniqueQRCode()
		if err != nil {
			return nil, err
		}
		saved, err := s.ModuleRepo.SetQRCodeIfEmpty(module.ID, code)
		if err != nil {
			return nil, fmt.Errorf("save qr code: %w", err)
		}
		if saved {
			module.QRCode = &code
			monitoring.RecordTrainingEvent(monitoring.EventQRIssued)
			logger.Log.Info("training qr code issued", zap.String("module_id", module.ID), zap.String("qr_code", code))
		} else {
			// 并发请求已写入，使用已保存的码
			if module, err = s.ModuleRepo.FindByID(moduleID); err != nil {
				return nil, fmt.Errorf("reload training module: %w", err)
			}
		}
	}

	payload, err := json.Marshal(qrPayload{
		ModuleID:  module.ID,
		QRCode:    *module.QRCode,
		Title:     module.Title,
		Timestamp: util.ISO(s.now()),
	})
	if err != nil {
		return nil, err
	}

	qr := &TrainingQR{
		ModuleID: module.ID,
		QRCode:   *module.QRCode,
		Payload:  string(payload),
	}

	if s.QRRenderer != nil {
		image, err := s.QRRenderer.Render(qr.Payload, util.QRImageSize)
		if err != nil {
			return nil, fmt.Errorf("render qr code: %w", err)
		}
		qr.Image = image
	}
	return qr, nil
}
