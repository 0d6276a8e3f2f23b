package model

import (
	"time"

	"gorm.io/datatypes"
)

type AssignmentStatus string

const (
	AssignmentAssigned   AssignmentStatus = "assigned"
	AssignmentUnlocked   AssignmentStatus = "unlocked"
	AssignmentInProgress AssignmentStatus = "in_progress"
	AssignmentOverdue    AssignmentStatus = "overdue"
	AssignmentCompleted  AssignmentStatus = "completed"
	AssignmentRemoved    AssignmentStatus = "removed"

	// NotAssigned 仅用于响应，模块尚未分配给该员工
	NotAssigned AssignmentStatus = "not_assigned"
)

// Accessible 已解锁的状态才能查看内容
func (s AssignmentStatus) Accessible() bool {
	return s == AssignmentUnlocked || s == AssignmentInProgress || s == AssignmentCompleted
}

func (s AssignmentStatus) Completable() bool {
	return s == AssignmentUnlocked || s == AssignmentInProgress
}

// TrainingAssignment 员工与培训模块的关联，每个 (employee, module) 最多一条非 removed 记录
// swagger:model TrainingAssignment
type TrainingAssignment struct {
	UUIDBase
	EmployeeID     string            `gorm:"type:varchar(36);index:idx_assignment_employee_module;not null" json:"employee_id"`
	ModuleID       string            `gorm:"type:varchar(36);index:idx_assignment_employee_module;not null" json:"module_id"`
	Status         AssignmentStatus  `gorm:"size:20;index;not null" json:"status"`
	AssignedAt     time.Time         `json:"assigned_at"`
	DueDate        *time.Time        `json:"due_date"`
	UnlockedAt     *time.Time        `json:"unlocked_at"`
	StartedAt      *time.Time        `json:"started_at"`
	CompletedAt    *time.Time        `json:"completed_at"`
	CompletionData datatypes.JSONMap `json:"completion_data"`
	Notes          string            `gorm:"type:text" json:"notes"`

	Module   TrainingModule     `gorm:"foreignKey:ModuleID" json:"module"`
	Progress []TrainingProgress `gorm:"foreignKey:AssignmentID" json:"-"`
}

func (TrainingAssignment) TableName() string {
	return "training_assignments"
}
