package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rednammadhavi/laptopcare-erp/api/controllers"
	"github.com/rednammadhavi/laptopcare-erp/api/middleware"
	"github.com/rednammadhavi/laptopcare-erp/internal/auth"
	"github.com/rednammadhavi/laptopcare-erp/internal/customers"
	"github.com/rednammadhavi/laptopcare-erp/internal/inventory"
	"github.com/rednammadhavi/laptopcare-erp/internal/jobs"
	"github.com/rednammadhavi/laptopcare-erp/internal/reports"
	"github.com/rednammadhavi/laptopcare-erp/pkg/auth/session"
	"github.com/rednammadhavi/laptopcare-erp/pkg/config"
	"github.com/rednammadhavi/laptopcare-erp/pkg/db"
	"github.com/rednammadhavi/laptopcare-erp/pkg/enums"
	"github.com/rednammadhavi/laptopcare-erp/pkg/logger"
	"github.com/rednammadhavi/laptopcare-erp/pkg/metrics"
	"github.com/rednammadhavi/laptopcare-erp/pkg/redis"
)

// RouterParams collects everything the HTTP surface needs.
type RouterParams struct {
	Config      *config.Config
	Logger      *logger.Logger
	DBPinger    db.Pinger
	RedisClient *redis.Client
	Revoker     session.Revoker
	HTTPMetrics *metrics.HTTPMetrics
	Gatherer    prometheus.Gatherer

	AuthService      auth.Service
	RegisterService  auth.RegisterService
	CustomerService  customers.Service
	JobService       jobs.Service
	InventoryService inventory.Service
	ReportService    reports.Service
}

// NewRouter assembles the chi router with the full middleware stack.
func NewRouter(p RouterParams) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS),
		middleware.Metrics(p.HTTPMetrics),
	)

	authenticated := middleware.Auth(cfg.JWT, p.Revoker, logg)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)
	rateLimited := func(policy middleware.AuthRateLimitPolicy) func(http.Handler) http.Handler {
		if p.RedisClient == nil {
			return passthrough
		}
		return middleware.AuthRateLimit(policy, p.RedisClient, logg)
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, p.DBPinger, logg))
	})

	if p.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/auth", func(r chi.Router) {
		r.With(rateLimited(registerPolicy)).Post("/register", controllers.AuthRegister(p.RegisterService, logg))
		r.With(rateLimited(loginPolicy)).Post("/login", controllers.AuthLogin(p.AuthService, logg))
		r.Post("/forgot-password", controllers.AuthForgotPassword(p.AuthService, logg))
		r.Post("/reset-password", controllers.AuthResetPassword(p.AuthService, logg))

		r.Group(func(r chi.Router) {
			r.Use(authenticated)
			r.Post("/logout", controllers.AuthLogout(p.AuthService, logg))
			r.Get("/me", controllers.AuthMe(p.AuthService, logg))
			r.Put("/me", controllers.AuthUpdateMe(p.AuthService, logg))
		})
	})

	r.Route("/api/customers", func(r chi.Router) {
		r.Use(authenticated)
		r.Get("/", controllers.ListCustomers(p.CustomerService, logg))
		r.Post("/", controllers.CreateCustomer(p.CustomerService, logg))
		r.Get("/technicians/list", controllers.ListTechnicians(p.CustomerService, logg))
		r.Get("/my-customers", controllers.MyCustomers(p.CustomerService, logg))
		r.Get("/{id}", controllers.GetCustomer(p.CustomerService, logg))
		r.Put("/{id}", controllers.UpdateCustomer(p.CustomerService, logg))
		r.Delete("/{id}", controllers.DeleteCustomer(p.CustomerService, logg))
	})

	r.Route("/api/jobs", func(r chi.Router) {
		r.Use(authenticated)
		r.Get("/", controllers.ListJobs(p.JobService, logg))
		r.Post("/", controllers.CreateJob(p.JobService, logg))
		r.Get("/my-jobs", controllers.MyJobs(p.JobService, logg))
		r.Get("/{id}", controllers.GetJob(p.JobService, logg))
		r.Put("/{id}", controllers.UpdateJob(p.JobService, logg))
		r.Delete("/{id}", controllers.DeleteJob(p.JobService, logg))
	})

	r.Route("/api/inventory", func(r chi.Router) {
		r.Use(authenticated)
		r.Get("/", controllers.ListInventory(p.InventoryService, logg))
		r.Get("/{id}", controllers.GetInventoryItem(p.InventoryService, logg))

		managerial := middleware.RequireRoles(logg, enums.RoleAdmin, enums.RoleManager)
		r.With(managerial).Post("/", controllers.CreateInventoryItem(p.InventoryService, logg))
		r.With(managerial).Put("/{id}", controllers.UpdateInventoryItem(p.InventoryService, logg))
		r.With(managerial).Delete("/{id}", controllers.DeleteInventoryItem(p.InventoryService, logg))
	})

	r.Route("/api/reports", func(r chi.Router) {
		r.Use(authenticated)
		r.Get("/", controllers.GetReports(p.ReportService, logg))
	})

	return r
}

func passthrough(next http.Handler) http.Handler {
	return next
}
