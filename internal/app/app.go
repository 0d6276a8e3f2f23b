package app

import (
	"context"
	"hr_training_backend/internal/config"
	"hr_training_backend/internal/controller"
	"hr_training_backend/internal/repository"
	"hr_training_backend/internal/service"
	"hr_training_backend/internal/util"
	"hr_training_backend/pkg/configwatcher"
	"hr_training_backend/pkg/database"
	"hr_training_backend/pkg/logger"
	"hr_training_backend/pkg/monitoring"
	"hr_training_backend/pkg/security"
	"hr_training_backend/pkg/tracing"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	tracer          *sdktrace.TracerProvider
	stopWatcher     chan struct{}
	configCallbacks []func(*config.Config)
}

type repositories struct {
	employee   *repository.EmployeeRepository
	module     *repository.TrainingModuleRepository
	assignment *repository.TrainingAssignmentRepository
	progress   *repository.TrainingProgressRepository
	statsCache *repository.TrainingStatsCache
}

type services struct {
	storage  *service.StorageService
	training *service.EmployeeTrainingService
	admin    *service.TrainingAdminService
	overdue  *service.OverdueScheduler
}

type controllers struct {
	training *controller.EmployeeTrainingController
	admin    *controller.TrainingAdminController
	health   *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client, cfg *config.Config) *repositories {
	return &repositories{
		employee:   repository.NewEmployeeRepository(db),
		module:     repository.NewTrainingModuleRepository(db),
		assignment: repository.NewTrainingAssignmentRepository(db),
		progress:   repository.NewTrainingProgressRepository(db),
		statsCache: repository.NewTrainingStatsCache(rdb, time.Duration(cfg.Training.StatsCacheMinutes)*time.Minute),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB) *services {
	s := &services{}

	s.storage = service.NewStorageService(&cfg.Storage)
	s.training = service.NewEmployeeTrainingService(
		repos.employee,
		repos.module,
		repos.assignment,
		repos.progress,
		repos.statsCache,
		service.NewPNGQRRenderer(),
		db,
	)
	s.admin = service.NewTrainingAdminService(
		repos.employee,
		repos.module,
		repos.assignment,
		repos.progress,
		repos.statsCache,
		db,
	)
	s.overdue = service.NewOverdueScheduler(repos.assignment, cfg.Scheduler.OverdueCron)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		training: controller.NewEmployeeTrainingController(s.training),
		admin:    controller.NewTrainingAdminController(s.admin, s.training, s.storage),
		health:   controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func (a *App) startBackgroundTasks(s *services, cfg *config.Config) {
	if cfg.Scheduler.Enabled {
		if err := s.overdue.Start(); err != nil {
			logger.Log.Error("Failed to start overdue scheduler", zap.Error(err))
		}
	}

	if cfg.ConfigFile == "" {
		return
	}
	a.stopWatcher = make(chan struct{})
	go func() {
		err := configwatcher.WatchConfig(cfg.ConfigFile, func(newCfg *config.Config) {
			for _, callback := range a.configCallbacks {
				callback(newCfg)
			}
		}, a.stopWatcher)
		if err != nil {
			logger.Log.Error("Config watcher stopped", zap.Error(err))
		}
	}()
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	gin.SetMode(cfg.Server.Mode)

	// release 模式默认不自动迁移，需要 -migrate 显式开启
	migrate := cfg.Server.Mode != gin.ReleaseMode || cfg.ForceMigrate
	db, err := database.InitDB(&cfg.Database, migrate)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	app := &App{
		Config: cfg,
		DB:     db,
	}

	if cfg.MigrateOnly {
		return app
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		log.Fatalf("Failed to initialize redis: %v", err)
	}
	app.Redis = rdb

	if err := util.RegisterValidators(); err != nil {
		logger.Log.Fatal("Failed to register validators", zap.Error(err))
	}

	repos := app.initRepositories(db, rdb, cfg)
	services := app.initServices(repos, cfg, db)
	app.services = services
	controllers := app.initControllers(services, db, rdb)

	// 监控初始化
	monitoring.Init()

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(tracing.ServiceName, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers, cfg)

	if cfg.Storage.Type == util.StorageLocal {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	app.RegisterConfigCallback(logger.ApplyConfig)
	app.startBackgroundTasks(services, cfg)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	if a.stopWatcher != nil {
		close(a.stopWatcher)
	}
	if a.services != nil && a.services.overdue != nil {
		a.services.overdue.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}

	logger.Log.Info("Server exiting")
}
