package service

import (
	"fmt"
	"hr_training_backend/internal/repository"
	"hr_training_backend/pkg/logger"
	"hr_training_backend/pkg/monitoring"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// OverdueScheduler 定期统计已过截止日期的未完成分配，只更新指标不改状态
type OverdueScheduler struct {
	AssignmentRepo *repository.TrainingAssignmentRepository
	Spec           string
	Now            func() time.Time

	cron *cron.Cron
}

func NewOverdueScheduler(assignmentRepo *repository.TrainingAssignmentRepository, spec string) *OverdueScheduler {
	return &OverdueScheduler{
		AssignmentRepo: assignmentRepo,
		Spec:           spec,
		Now:            time.Now,
	}
}

// Sweep 执行一次巡检，返回逾期数量
func (s *OverdueScheduler) Sweep() (int, error) {
	assignments, err := s.AssignmentRepo.FindOpenWithDueDate()
	if err != nil {
		return 0, fmt.Errorf("load open assignments: %w", err)
	}

	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}

	overdue := 0
	for i := range assignments {
		if IsOverdue(&assignments[i], now) {
			overdue++
		}
	}

	monitoring.OverdueAssignments.Set(float64(overdue))
	return overdue, nil
}

func (s *OverdueScheduler) Start() error {
	c := cron.New()
	_, err := c.AddFunc(s.Spec, func() {
		count, err := s.Sweep()
		if err != nil {
			logger.Log.Error("overdue training sweep failed", zap.Error(err))
			return
		}
		logger.Log.Info("overdue training sweep finished", zap.Int("overdue", count))
	})
	if err != nil {
		return fmt.Errorf("invalid overdue cron spec %q: %w", s.Spec, err)
	}

	s.cron = c
	c.Start()
	logger.Log.Info("overdue training scheduler started", zap.String("spec", s.Spec))
	return nil
}

// Stop 等待正在执行的巡检结束
func (s *OverdueScheduler) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
}
