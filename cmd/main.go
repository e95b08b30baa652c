package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"listhub_v1_202602/internal/controller"
	"listhub_v1_202602/internal/middleware"
	"listhub_v1_202602/internal/model"
	"listhub_v1_202602/internal/repository"
	"listhub_v1_202602/internal/router"
	"listhub_v1_202602/internal/service"
	"listhub_v1_202602/internal/task"
	"listhub_v1_202602/pkg/database"
)

func main() {
	// 1. 初始化数据库
	db := initDatabase()

	// 2. 初始化依赖
	deps := initDependencies(db)

	// 3. 启动定时任务
	initTasks(deps)

	// 4. 初始化路由
	r := gin.Default()
	router.InitRoutes(r,
		deps.Repos.Workspace,
		deps.Repos.Member,
		deps.Controllers.Auth,
		deps.Controllers.Workspace,
		deps.Controllers.Member,
		deps.Controllers.Product,
		deps.Controllers.Audit,
		deps.Controllers.Upload,
	)

	// 5. 启动服务
	startServer(r)
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	DB          *gorm.DB
	Repos       *Repositories
	Services    *Services
	Controllers *Controllers
	Cleanup     *task.CleanupTask
}

// Repositories 仓库集合
type Repositories struct {
	User      repository.UserRepository
	Workspace repository.WorkspaceRepository
	Member    repository.MemberRepository
	Product   repository.ProductRepository
	Audit     repository.AuditLogRepository
	Uow       *repository.UnitOfWork
}

// Services 服务集合
type Services struct {
	Auth      *service.AuthService
	Workspace *service.WorkspaceService
	Member    *service.MemberService
	Product   *service.ProductService
	Audit     *service.AuditService
	Storage   service.StorageProvider
}

// Controllers 控制器集合
type Controllers struct {
	Auth      *controller.AuthController
	Workspace *controller.WorkspaceController
	Member    *controller.MemberController
	Product   *controller.ProductController
	Audit     *controller.AuditController
	Upload    *controller.UploadController
}

// ==================== 初始化函数 ====================

// initDatabase 初始化数据库
func initDatabase() *gorm.DB {
	dsn := getEnv("DATABASE_DSN", fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_USER", "listhub"),
		getEnv("DB_PASSWORD", "listhub"),
		getEnv("DB_NAME", "listhub"),
		getEnv("DB_PORT", "5432"),
	))

	return database.InitDB(dsn,
		// 账号
		&model.User{},
		// 工作区
		&model.Workspace{}, &model.WorkspaceMembership{},
		// 商品
		&model.Product{}, &model.ProductImage{},
		// 审计
		&model.AuditLog{},
	)
}

// initDependencies 初始化所有依赖
func initDependencies(db *gorm.DB) *Dependencies {
	// -------- JWT 配置 --------
	middleware.SetJWTConfig(&middleware.JWTConfig{
		SecretKey:       getEnv("JWT_SECRET", middleware.DefaultJWTConfig().SecretKey),
		AccessTokenTTL:  getEnvDuration("JWT_ACCESS_TTL", 2*time.Hour),
		RefreshTokenTTL: getEnvDuration("JWT_REFRESH_TTL", 7*24*time.Hour),
		Issuer:          getEnv("JWT_ISSUER", "listhub"),
	})

	// -------- Repo 层 --------
	repos := &Repositories{
		User:      repository.NewUserRepository(db),
		Workspace: repository.NewWorkspaceRepository(db),
		Member:    repository.NewMemberRepository(db),
		Product:   repository.NewProductRepository(db),
		Audit:     repository.NewAuditLogRepository(db),
		Uow:       repository.NewUnitOfWork(db),
	}

	// -------- 存储 --------
	storage := initStorage()

	// -------- 业务服务 --------
	auditSvc := service.NewAuditService(repos.Audit)
	services := &Services{
		Audit:   auditSvc,
		Storage: storage,
		Auth: service.NewAuthService(repos.User, repos.Member, auditSvc, &service.GoogleOAuthConfig{
			ClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
			ClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
			RedirectURI:  getEnv("GOOGLE_REDIRECT_URI", ""),
		}),
		Workspace: service.NewWorkspaceService(repos.Uow),
		Member:    service.NewMemberService(repos.Uow),
		Product:   service.NewProductService(repos.Uow),
	}

	// -------- Controller 层 --------
	controllers := &Controllers{
		Auth:      controller.NewAuthController(services.Auth),
		Workspace: controller.NewWorkspaceController(services.Workspace),
		Member:    controller.NewMemberController(services.Member),
		Product:   controller.NewProductController(services.Product),
		Audit:     controller.NewAuditController(services.Audit),
		Upload:    controller.NewUploadController(storage, services.Product),
	}

	return &Dependencies{
		DB:          db,
		Repos:       repos,
		Services:    services,
		Controllers: controllers,
	}
}

// initStorage 初始化存储
func initStorage() service.StorageProvider {
	storage, err := service.NewStorageProvider(&service.StorageConfig{
		Provider:  getEnv("STORAGE_PROVIDER", "local"),
		Bucket:    getEnv("AWS_BUCKET", ""),
		Region:    getEnv("AWS_REGION", ""),
		AccessKey: getEnv("AWS_ACCESS_KEY_ID", ""),
		SecretKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		CDNDomain: getEnv("AWS_CDN_DOMAIN", ""),
		BasePath:  getEnv("STORAGE_BASE_PATH", "listhub"),
	})
	if err != nil {
		log.Fatalf("存储初始化失败: %v", err)
	}
	return storage
}

// ==================== 定时任务 ====================

// initTasks 初始化定时任务
func initTasks(deps *Dependencies) {
	deps.Cleanup = task.NewCleanupTask(
		deps.Repos.Uow,
		getEnvDuration("INVITE_TTL", 14*24*time.Hour),
		getEnvDuration("AUDIT_RETENTION", 0),
	)
	deps.Cleanup.Start()

	log.Println("定时任务已启动")
}

// ==================== 服务启动 ====================

// startServer 启动服务
func startServer(r *gin.Engine) {
	port := getEnv("SERVER_PORT", "8080")

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	// 异步启动服务
	go func() {
		log.Printf("服务启动在 :%s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("服务启动失败: %v", err)
		}
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("正在关闭服务...")

	// 优雅关闭
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("服务强制关闭: %v", err)
	}

	log.Println("服务已退出")
}

// ==================== 工具函数 ====================

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvDuration 读取时长环境变量，支持 "72h" 或纯秒数
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
