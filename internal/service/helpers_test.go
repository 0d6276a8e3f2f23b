package service

import (
	"hr_training_backend/internal/model"
	"hr_training_backend/internal/repository"
	"hr_training_backend/pkg/database"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

type testEnv struct {
	db       *gorm.DB
	training *EmployeeTrainingService
	admin    *TrainingAdminService
	now      time.Time
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// 内存库每个连接独立，只能保留一个连接
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(database.Models()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithCache(t, repository.NewTrainingStatsCache(nil, 0))
}

// newRedisTestEnv 统计缓存接入 miniredis
func newRedisTestEnv(t *testing.T) (*testEnv, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return newTestEnvWithCache(t, repository.NewTrainingStatsCache(rdb, 5*time.Minute)), mr
}

func newTestEnvWithCache(t *testing.T, cache *repository.TrainingStatsCache) *testEnv {
	t.Helper()
	db := newTestDB(t)

	employeeRepo := repository.NewEmployeeRepository(db)
	moduleRepo := repository.NewTrainingModuleRepository(db)
	assignmentRepo := repository.NewTrainingAssignmentRepository(db)
	progressRepo := repository.NewTrainingProgressRepository(db)

	env := &testEnv{db: db, now: testNow}
	clock := func() time.Time { return env.now }

	env.training = NewEmployeeTrainingService(employeeRepo, moduleRepo, assignmentRepo, progressRepo, cache, NewPNGQRRenderer(), db)
	env.training.Now = clock
	env.admin = NewTrainingAdminService(employeeRepo, moduleRepo, assignmentRepo, progressRepo, cache, db)
	env.admin.Now = clock
	return env
}

func (e *testEnv) employee(t *testing.T, email string) *model.Employee {
	t.Helper()
	emp := &model.Employee{Name: email, Email: email, Role: model.RoleEmployee, Active: true}
	if err := e.db.Create(emp).Error; err != nil {
		t.Fatalf("create employee: %v", err)
	}
	return emp
}

func (e *testEnv) module(t *testing.T, title string, duration int, qrCode string) *model.TrainingModule {
	t.Helper()
	m := &model.TrainingModule{
		Title:    title,
		Duration: duration,
		Content:  title + " content",
		Active:   true,
	}
	if qrCode != "" {
		m.QRCode = &qrCode
	}
	if err := e.db.Create(m).Error; err != nil {
		t.Fatalf("create module: %v", err)
	}
	return m
}

func (e *testEnv) assign(t *testing.T, employeeID, moduleID string, due *time.Time) *model.TrainingAssignment {
	t.Helper()
	a, err := e.admin.AssignTraining(&AssignTrainingRequest{EmployeeID: employeeID, ModuleID: moduleID, DueDate: due})
	if err != nil {
		t.Fatalf("assign training: %v", err)
	}
	return a
}

func (e *testEnv) progressRows(t *testing.T, assignmentID string) []model.TrainingProgress {
	t.Helper()
	var rows []model.TrainingProgress
	if err := e.db.Where("assignment_id = ?", assignmentID).Order("started_at ASC").Find(&rows).Error; err != nil {
		t.Fatalf("load progress: %v", err)
	}
	return rows
}
