package model

import (
	"time"

	"gorm.io/datatypes"
)

const (
	ProgressActionStarted   = "training_started"
	ProgressActionCompleted = "created_on_completion"
)

// TrainingProgress 一次内容访问会话的学习时长记录
// swagger:model TrainingProgress
type TrainingProgress struct {
	UUIDBase
	AssignmentID     string            `gorm:"type:varchar(36);index;not null" json:"assignment_id"`
	EmployeeID       string            `gorm:"type:varchar(36);index;not null" json:"employee_id"`
	ModuleID         string            `gorm:"type:varchar(36);index;not null" json:"module_id"`
	TimeSpentMinutes int               `gorm:"default:0" json:"time_spent_minutes"`
	StartedAt        time.Time         `json:"started_at"`
	EndedAt          *time.Time        `json:"ended_at"`
	IsActive         bool              `gorm:"index" json:"is_active"`
	Metadata         datatypes.JSONMap `json:"metadata"`
}

func (TrainingProgress) TableName() string {
	return "training_progress"
}
