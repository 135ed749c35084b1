package router

import (
	"frota/internal/config"
	"frota/internal/events"
	"frota/internal/handler"
	"frota/internal/middleware"
	"frota/internal/repository"
	"frota/internal/service"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Services is the composition root shared by the HTTP router and the worker
// pool. Dependency graph: Handler ← Service ← Repository ← DB.
type Services struct {
	Auth     service.AuthService
	Datasets service.DatasetService
	Reports  service.ReportService
}

// NewServices wires repositories and services. queue may be nil when mail
// delivery is not configured.
func NewServices(cfg *config.Config, db *gorm.DB, queue service.JobQueue, publisher events.Publisher) *Services {
	operadorRepo := repository.NewOperadorRepository(db)
	datasetRepo := repository.NewDatasetRepository(db)

	datasets := service.NewDatasetService(datasetRepo, publisher)
	return &Services{
		Auth:     service.NewAuthService(operadorRepo, cfg),
		Datasets: datasets,
		Reports:  service.NewReportService(datasets, queue),
	}
}

// New builds the Gin engine. counter backs the rate limiters; checks are
// reported by /health.
func New(cfg *config.Config, svcs *Services, counter middleware.WindowCounter, checks ...handler.HealthCheck) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.APIRateLimiter(counter, cfg.RateLimitPerMinute))

	authH := handler.NewAuthHandler(svcs.Auth)
	datasetsH := handler.NewDatasetsHandler(svcs.Datasets, cfg.MaxUploadMB)
	reportsH := handler.NewReportsHandler(svcs.Reports)

	// ── Routes ───────────────────────────────────────────────────────────────

	r.GET("/health", handler.Health(checks...))

	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(counter), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Roles: master manages datasets and sends mail, user only reads.
	v1 := r.Group("/v1", middleware.JWTAuth(cfg.JWTSecret))
	master := middleware.RequireRole(middleware.RolMaster)
	{
		v1.GET("/operadores", master, authH.ListarOperadores)

		v1.POST("/datasets", master, datasetsH.Import)
		v1.POST("/datasets/sample", master, datasetsH.ImportSample)
		v1.GET("/datasets", datasetsH.List)
		v1.DELETE("/datasets/:id", master, datasetsH.Delete)

		ds := v1.Group("/datasets/:id")
		{
			ds.GET("/overview", reportsH.Overview)
			ds.GET("/vehicles", reportsH.Vehicles)
			ds.GET("/usage", reportsH.Usage)
			ds.GET("/maintenances", reportsH.Maintenance)
			ds.GET("/maintenances/vehicles", reportsH.MaintainedVehicles)
			ds.GET("/maintenances/vehicles/:vehicle_id", reportsH.VehicleMaintenance)
			ds.GET("/punches", reportsH.Punches)
			ds.GET("/punches/users/:user", reportsH.UserPunches)
			ds.GET("/hours", reportsH.Hours)
			ds.GET("/hours/pdf", reportsH.HoursPDF)
			ds.POST("/hours/email", master, reportsH.EmailHours)
		}
	}

	// Swagger UI, outside production only
	if !cfg.IsProduction() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
	return r
}
