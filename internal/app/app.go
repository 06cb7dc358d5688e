package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"exam_bank_backend/internal/config"
	"exam_bank_backend/internal/controller"
	"exam_bank_backend/internal/repository"
	"exam_bank_backend/internal/service"
	"exam_bank_backend/pkg/database"
	"exam_bank_backend/pkg/logger"
	"exam_bank_backend/pkg/monitoring"
	"exam_bank_backend/pkg/security"
	"exam_bank_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config   *config.Config
	Router   *gin.Engine
	DB       *gorm.DB
	Redis    *redis.Client
	services *services
}

type repositories struct {
	subject *repository.SubjectRepository
	exam    *repository.ExamRepository
}

type services struct {
	crawler  *service.CrawlerService
	storage  *service.StorageService
	question *service.QuestionService
	exam     *service.ExamService
	subject  *service.SubjectService
}

type controllers struct {
	exam    *controller.ExamController
	subject *controller.SubjectController
	health  *controller.HealthController
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		subject: repository.NewSubjectRepository(db),
		exam:    repository.NewExamRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client) *services {
	s := &services{}

	storage, err := service.NewStorageService(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to initialize storage", zap.Error(err))
	}
	s.storage = storage

	s.crawler = service.NewCrawlerService(cfg)
	s.question = service.NewQuestionService(s.crawler, repos.subject, repos.exam, s.storage, rdb, cfg, db)
	s.exam = service.NewExamService(repos.exam, rdb, cfg)
	s.subject = service.NewSubjectService(repos.subject, repos.exam)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		exam:    controller.NewExamController(s.question, s.exam),
		subject: controller.NewSubjectController(s.subject),
		health:  controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 1000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// OnConfigReload applies a freshly loaded config to the parts that support
// hot reload; only the crawler settings take effect without a restart.
func (a *App) OnConfigReload(cfg *config.Config) {
	a.services.crawler.UpdateConfig(cfg.Crawler)
	logger.Log.Info("crawler config reloaded",
		zap.Duration("fetchTimeout", cfg.Crawler.FetchTimeout),
		zap.Duration("txMaxWait", cfg.Crawler.TxMaxWait),
		zap.Duration("txTimeout", cfg.Crawler.TxTimeout))
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		// 캐시는 선택 사항이므로 Redis 없이도 기동한다
		logger.Log.Warn("Redis unavailable, running without cache", zap.Error(err))
		rdb = nil
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, db, rdb)
	app.services = services
	controllers := app.initControllers(services, db, rdb)

	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("exam-bank", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers)

	if cfg.Storage.Type != "minio" && cfg.Storage.LocalPath != "" {
		router.Static("/snapshots", cfg.Storage.LocalPath)
	}

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
