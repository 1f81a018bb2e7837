package routes

import (
	"creditapproval/config"
	"creditapproval/controllers"
	"creditapproval/middleware"
	"creditapproval/services"
	"creditapproval/utils"

	"github.com/gin-gonic/gin"
)

// Dependencies сервисы, которые обслуживает API
type Dependencies struct {
	Config    *config.Config
	Customers *services.CustomerService
	Loans     *services.LoanService
	Ingestion *services.IngestionService
	Metrics   *utils.Metrics
}

// SetupRouter создаёт gin.Engine и регистрирует все маршруты
func SetupRouter(deps Dependencies) *gin.Engine {
	cfg := deps.Config

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Logger(deps.Metrics),
		middleware.Recovery(),
		middleware.CORS(),
	)

	if cfg.RateLimit.Requests > 0 {
		limiter := utils.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
		r.Use(middleware.RateLimit(limiter, cfg.RateLimit.Requests))
	}

	customerController := controllers.NewCustomerController(deps.Customers)
	loanController := controllers.NewLoanController(deps.Loans)
	authController := controllers.NewAuthController(cfg)

	r.POST("/register", customerController.Register)
	r.POST("/check-eligibility", loanController.CheckEligibility)
	r.POST("/create-loan", loanController.CreateLoan)
	r.GET("/view-loan/:loan_id", loanController.ViewLoan)
	r.GET("/view-loans/:customer_id", loanController.ViewLoans)

	admin := r.Group("/admin")
	{
		admin.POST("/token", authController.SignIn)

		if deps.Ingestion != nil {
			ingestionController := controllers.NewIngestionController(deps.Ingestion)
			protected := admin.Group("", middleware.AdminAuth(authController.GetJWTKey()))
			protected.POST("/ingest", ingestionController.Start)
			protected.GET("/ingest/status", ingestionController.Status)
		}
	}

	return r
}
