package model

// TrainingStats 员工培训统计，completion_rate 为各分配进度的平均值
type TrainingStats struct {
	TotalAssigned  int     `json:"total_assigned"`
	Completed      int     `json:"completed"`
	InProgress     int     `json:"in_progress"`
	Unlocked       int     `json:"unlocked"`
	Assigned       int     `json:"assigned"`
	Overdue        int     `json:"overdue"`
	CompletionRate float64 `json:"completion_rate"`
}
