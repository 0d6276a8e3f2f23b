// 写入演示用的员工、培训模块与分配，并打印登录 token 与模块二维码
//
// 用法: go run ./scripts/seed -config configs -file scripts/seed/seed.yaml

package main

import (
	"errors"
	"flag"
	"hr_training_backend/internal/config"
	"hr_training_backend/internal/model"
	"hr_training_backend/internal/repository"
	"hr_training_backend/internal/service"
	"hr_training_backend/internal/util"
	"hr_training_backend/pkg/database"
	"hr_training_backend/pkg/logger"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

type seedFile struct {
	Employees []struct {
		Name       string `yaml:"name"`
		Email      string `yaml:"email"`
		Department string `yaml:"department"`
		Position   string `yaml:"position"`
		Role       string `yaml:"role"`
	} `yaml:"employees"`
	Modules     []service.CreateModuleRequest `yaml:"modules"`
	Assignments []struct {
		Email     string `yaml:"email"`
		Module    string `yaml:"module"`
		DueInDays int    `yaml:"due_in_days"`
	} `yaml:"assignments"`
}

func main() {
	configDir := flag.String("config", "configs", "配置文件所在目录")
	seedPath := flag.String("file", "scripts/seed/seed.yaml", "种子数据文件")
	flag.Parse()

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}
	logger.InitLogger(cfg)

	data, err := os.ReadFile(*seedPath)
	if err != nil {
		log.Fatalf("无法读取种子文件: %v", err)
	}

	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		log.Fatalf("解析种子文件失败: %v", err)
	}

	db, err := database.InitDB(&cfg.Database, true)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	employeeRepo := repository.NewEmployeeRepository(db)
	moduleRepo := repository.NewTrainingModuleRepository(db)
	assignmentRepo := repository.NewTrainingAssignmentRepository(db)
	progressRepo := repository.NewTrainingProgressRepository(db)
	statsCache := repository.NewTrainingStatsCache(nil, 0)

	admin := service.NewTrainingAdminService(employeeRepo, moduleRepo, assignmentRepo, progressRepo, statsCache, db)
	training := service.NewEmployeeTrainingService(employeeRepo, moduleRepo, assignmentRepo, progressRepo, statsCache, nil, db)

	employees := make(map[string]*model.Employee)
	for _, e := range seed.Employees {
		employee, err := employeeRepo.FindByEmail(e.Email)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			employee = &model.Employee{
				Name:       e.Name,
				Email:      e.Email,
				Department: e.Department,
				Position:   e.Position,
				Role:       model.EmployeeRole(e.Role),
				Active:     true,
			}
			err = employeeRepo.Create(employee)
		}
		if err != nil {
			log.Fatalf("写入员工 %s 失败: %v", e.Email, err)
		}
		employees[e.Email] = employee

		token, err := util.GenerateJWT(employee, cfg.JWT.Secret, cfg.JWT.ExpireTime)
		if err != nil {
			log.Fatalf("生成 token 失败: %v", err)
		}
		log.Printf("员工 %s (%s) token: %s", employee.Email, employee.Role, token)
	}

	modules := make(map[string]*model.TrainingModule)
	for i := range seed.Modules {
		module, err := admin.CreateModule(&seed.Modules[i])
		if err != nil {
			log.Fatalf("创建模块 %s 失败: %v", seed.Modules[i].Title, err)
		}
		modules[module.Title] = module

		qr, err := training.GenerateTrainingQR(module.ID)
		if err != nil {
			log.Fatalf("生成二维码失败: %v", err)
		}
		log.Printf("模块 %s 二维码: %s", module.Title, qr.QRCode)
	}

	for _, a := range seed.Assignments {
		employee, ok := employees[a.Email]
		if !ok {
			log.Fatalf("未知员工: %s", a.Email)
		}
		module, ok := modules[a.Module]
		if !ok {
			log.Fatalf("未知模块: %s", a.Module)
		}

		req := &service.AssignTrainingRequest{EmployeeID: employee.ID, ModuleID: module.ID}
		if a.DueInDays > 0 {
			due := time.Now().AddDate(0, 0, a.DueInDays)
			req.DueDate = &due
		}
		if _, err := admin.AssignTraining(req); err != nil && !errors.Is(err, util.ErrAlreadyAssigned) {
			log.Fatalf("分配培训失败: %v", err)
		}
	}

	log.Println("完成！")
}
