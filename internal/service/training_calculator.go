package service

import (
	"hr_training_backend/internal/model"
	"hr_training_backend/internal/util"
	"math"
	"time"
)

const (
	// 最后 5% 留给显式的完成操作
	maxTrackedProgress   = 95
	inProgressFloor      = 15
	unlockedFloor        = 5
	completedProgress    = 100
	minimalProgressFloor = 5
)

// CalculateProgress 根据分配状态和学习时长推算完成百分比
func CalculateProgress(assignment *model.TrainingAssignment, sessions []model.TrainingProgress) int {
	if assignment.Status == model.AssignmentCompleted {
		return completedProgress
	}

	totalMinutes := 0
	for _, s := range sessions {
		totalMinutes = util.AddMinutes(totalMinutes, s.TimeSpentMinutes)
	}

	duration := assignment.Module.Duration
	if duration > 0 && totalMinutes > 0 {
		progress := int(math.Round(float64(totalMinutes) / float64(duration) * maxTrackedProgress))
		if progress > maxTrackedProgress {
			progress = maxTrackedProgress
		}
		floor := 0
		switch assignment.Status {
		case model.AssignmentInProgress:
			floor = inProgressFloor
		case model.AssignmentUnlocked:
			floor = unlockedFloor
		}
		if progress < floor {
			progress = floor
		}
		return progress
	}

	if len(sessions) > 0 {
		if assignment.Status == model.AssignmentInProgress {
			return inProgressFloor
		}
		return minimalProgressFloor
	}

	switch assignment.Status {
	case model.AssignmentUnlocked:
		return unlockedFloor
	case model.AssignmentInProgress:
		return inProgressFloor
	}
	return 0
}

// IsOverdue 只读判断，不会回写 overdue 状态
func IsOverdue(assignment *model.TrainingAssignment, now time.Time) bool {
	if assignment.DueDate == nil {
		return false
	}
	return assignment.DueDate.Before(now) && assignment.Status != model.AssignmentCompleted
}

// NextOverdueAt 返回最早一个尚未过期、未完成分配的截止时间，统计中的 overdue 在该时刻之后会变化
func NextOverdueAt(assignments []model.TrainingAssignment, now time.Time) *time.Time {
	var next *time.Time
	for i := range assignments {
		a := &assignments[i]
		if a.DueDate == nil || a.Status == model.AssignmentCompleted || a.Status == model.AssignmentOverdue {
			continue
		}
		if a.DueDate.Before(now) {
			continue
		}
		if next == nil || a.DueDate.Before(*next) {
			next = a.DueDate
		}
	}
	return next
}

// CanUnlock 存储状态为 assigned 或 overdue 时可解锁；assigned 但已过期的分配返回 false，
// 由列表中的 is_overdue 提示，扫码解锁本身不受影响
func CanUnlock(assignment *model.TrainingAssignment, now time.Time) bool {
	switch assignment.Status {
	case model.AssignmentOverdue:
		return true
	case model.AssignmentAssigned:
		return !IsOverdue(assignment, now)
	}
	return false
}

func CalculateEmployeeStats(assignments []model.TrainingAssignment, now time.Time) *model.TrainingStats {
	stats := &model.TrainingStats{TotalAssigned: len(assignments)}
	if len(assignments) == 0 {
		return stats
	}

	totalProgress := 0
	for i := range assignments {
		a := &assignments[i]
		switch a.Status {
		case model.AssignmentCompleted:
			stats.Completed++
		case model.AssignmentInProgress:
			stats.InProgress++
		case model.AssignmentUnlocked:
			stats.Unlocked++
		case model.AssignmentAssigned:
			stats.Assigned++
		}
		if a.Status == model.AssignmentOverdue || IsOverdue(a, now) {
			stats.Overdue++
		}
		totalProgress += CalculateProgress(a, a.Progress)
	}

	stats.CompletionRate = math.Round(float64(totalProgress)/float64(len(assignments))*10) / 10
	return stats
}
