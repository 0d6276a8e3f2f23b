package model

type EmployeeRole string

const (
	RoleEmployee EmployeeRole = "employee"
	RoleHR       EmployeeRole = "hr"
	RoleAdmin    EmployeeRole = "admin"
)

// Employee 员工身份信息，培训模块只关心其是否存在
// swagger:model Employee
type Employee struct {
	UUIDBase
	Name       string       `gorm:"size:100;not null" json:"name"`
	Email      string       `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Department string       `gorm:"size:100" json:"department"`
	Position   string       `gorm:"size:100" json:"position"`
	Role       EmployeeRole `gorm:"size:20;default:'employee'" json:"role"`
	Active     bool         `json:"active"`
}

func (Employee) TableName() string {
	return "employees"
}
