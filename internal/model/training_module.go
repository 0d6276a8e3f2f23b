package model

// TrainingModule 培训模块，active=false 时对员工隐藏但保留历史
// swagger:model TrainingModule
type TrainingModule struct {
	UUIDBase
	Title        string  `gorm:"size:255;not null" json:"title"`
	Description  string  `gorm:"type:text" json:"description"`
	Category     string  `gorm:"size:100;index" json:"category"`
	Duration     int     `gorm:"default:0" json:"duration"` // 分钟
	VideoURL     string  `gorm:"size:500" json:"video_url"`
	QRCode       *string `gorm:"size:32;uniqueIndex" json:"qr_code"`
	Content      string  `gorm:"type:text" json:"content"`
	Active       bool    `gorm:"index" json:"active"`
	DisplayOrder int     `gorm:"default:0" json:"display_order"`
}

func (TrainingModule) TableName() string {
	return "training_modules"
}

func (m *TrainingModule) HasQRCode() bool {
	return m.QRCode != nil && *m.QRCode != ""
}
