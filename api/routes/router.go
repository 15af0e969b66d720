package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tripledger/tripledger-backend/api/controllers"
	"github.com/tripledger/tripledger-backend/api/middleware"
	"github.com/tripledger/tripledger-backend/internal/budgets"
	"github.com/tripledger/tripledger-backend/internal/expenses"
	"github.com/tripledger/tripledger-backend/internal/groups"
	"github.com/tripledger/tripledger-backend/internal/settlements"
	"github.com/tripledger/tripledger-backend/pkg/config"
	"github.com/tripledger/tripledger-backend/pkg/db"
	"github.com/tripledger/tripledger-backend/pkg/logger"
	"github.com/tripledger/tripledger-backend/pkg/metrics"
	"github.com/tripledger/tripledger-backend/pkg/redis"
)

// NewRouter assembles the HTTP surface: health probes, Prometheus metrics,
// and the authenticated /api/v1 ledger routes.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	registry *prometheus.Registry,
	httpMetrics *metrics.HTTPMetrics,
	groupService groups.Service,
	expenseService expenses.Service,
	settlementService settlements.Service,
	budgetService budgets.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
		middleware.Metrics(httpMetrics),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbP, redisClient))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RateLimit(cfg.RateLimit, redisClient, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Route("/groups", func(r chi.Router) {
			r.Post("/", controllers.GroupCreate(groupService, logg))
			r.Get("/", controllers.GroupList(groupService, logg))

			r.Route("/{groupID}", func(r chi.Router) {
				r.Get("/", controllers.GroupGet(groupService, logg))
				r.Post("/archive", controllers.GroupArchive(groupService, logg))
				r.Get("/balances", controllers.GroupBalances(groupService, logg))
				r.Get("/settle-up", controllers.GroupSettleUp(groupService, logg))

				r.Route("/members", func(r chi.Router) {
					r.Post("/", controllers.MemberAdd(groupService, logg))
					r.Get("/", controllers.MemberList(groupService, logg))
					r.Delete("/{memberID}", controllers.MemberRemove(groupService, logg))
				})

				r.Route("/expenses", func(r chi.Router) {
					r.Post("/", controllers.ExpenseCreate(expenseService, logg))
					r.Get("/", controllers.ExpenseList(expenseService, logg))
					r.Get("/{expenseID}", controllers.ExpenseGet(expenseService, logg))
					r.Delete("/{expenseID}", controllers.ExpenseDelete(expenseService, logg))
				})

				r.Route("/settlements", func(r chi.Router) {
					r.Post("/", controllers.SettlementCreate(settlementService, logg))
					r.Get("/", controllers.SettlementList(settlementService, logg))
				})

				r.Route("/budget", func(r chi.Router) {
					r.Put("/", controllers.BudgetUpsert(budgetService, logg))
					r.Get("/", controllers.BudgetGet(budgetService, logg))
					r.Get("/status", controllers.BudgetStatus(budgetService, logg))
				})
			})
		})
	})

	return r
}
