package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/restaus/restaus-backend/api/controllers"
	"github.com/restaus/restaus-backend/api/middleware"
	"github.com/restaus/restaus-backend/internal/auth"
	"github.com/restaus/restaus-backend/internal/menus"
	"github.com/restaus/restaus-backend/internal/orders"
	"github.com/restaus/restaus-backend/internal/payments"
	"github.com/restaus/restaus-backend/internal/tables"
	"github.com/restaus/restaus-backend/internal/users"
	"github.com/restaus/restaus-backend/pkg/config"
	"github.com/restaus/restaus-backend/pkg/enums"
	"github.com/restaus/restaus-backend/pkg/logger"
	pkgredis "github.com/restaus/restaus-backend/pkg/redis"
)

// Deps carries everything the HTTP surface needs. Idempotency is skipped when
// the store is nil so local runs without redis still work.
type Deps struct {
	Cfg      *config.Config
	Logg     *logger.Logger
	Ready    map[string]controllers.Pinger
	IdemPot  pkgredis.IdempotencyStore
	Registry *prometheus.Registry

	AuthService     auth.Service
	TablesService   tables.Service
	MenusService    menus.Service
	OrdersService   orders.Service
	PaymentsService payments.Service
	UsersRepo       *users.Repository
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(d.Logg),
		middleware.RequestID(d.Logg),
		middleware.Logging(d.Logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(d.Cfg))
		r.Get("/ready", controllers.HealthReady(d.Cfg, d.Logg, d.Ready))
	})

	if d.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", controllers.Login(d.AuthService, d.Logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(d.Cfg.JWT, d.Logg))
			if d.IdemPot != nil {
				r.Use(middleware.Idempotency(d.IdemPot, d.Logg))
			}

			admin := enums.UserRoleAdmin.String()
			waiter := enums.UserRoleWaiter.String()
			cashier := enums.UserRoleCashier.String()
			kitchen := enums.UserRoleKitchen.String()

			r.Route("/tables", func(r chi.Router) {
				r.Get("/", controllers.TableList(d.TablesService, d.Logg))
				r.Get("/{tableId}", controllers.TableDetail(d.TablesService, d.Logg))
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(admin, d.Logg))
					r.Post("/", controllers.TableCreate(d.TablesService, d.Logg))
					r.Patch("/{tableId}", controllers.TableUpdate(d.TablesService, d.Logg))
					r.Delete("/{tableId}", controllers.TableDelete(d.TablesService, d.Logg))
				})
			})

			r.Route("/menus", func(r chi.Router) {
				r.Get("/", controllers.MenuList(d.MenusService, d.Logg))
				r.Get("/{menuId}", controllers.MenuDetail(d.MenusService, d.Logg))
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(admin, d.Logg))
					r.Post("/", controllers.MenuCreate(d.MenusService, d.Logg))
					r.Patch("/{menuId}", controllers.MenuUpdate(d.MenusService, d.Logg))
					r.Delete("/{menuId}", controllers.MenuDelete(d.MenusService, d.Logg))
				})
			})

			r.Route("/categories", func(r chi.Router) {
				r.Get("/", controllers.CategoryList(d.MenusService, d.Logg))
				r.With(middleware.RequireRole(admin, d.Logg)).
					Post("/", controllers.CategoryCreate(d.MenusService, d.Logg))
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.OrderList(d.OrdersService, d.Logg))
				r.Get("/{orderId}", controllers.OrderDetail(d.OrdersService, d.Logg))
				r.With(middleware.RequireAnyRole(d.Logg, admin, waiter)).
					Post("/", controllers.OrderPlace(d.OrdersService, d.Logg))
				r.With(middleware.RequireAnyRole(d.Logg, admin, waiter, cashier)).
					Patch("/{orderId}/status", controllers.OrderUpdateStatus(d.OrdersService, d.Logg))
				r.With(middleware.RequireAnyRole(d.Logg, admin, waiter)).
					Post("/{orderId}/cancel", controllers.OrderCancel(d.OrdersService, d.Logg))
			})

			r.With(middleware.RequireAnyRole(d.Logg, admin, kitchen, waiter)).
				Patch("/order-items/{itemId}/status", controllers.OrderItemUpdateStatus(d.OrdersService, d.Logg))

			r.Route("/payments", func(r chi.Router) {
				r.Get("/", controllers.PaymentList(d.PaymentsService, d.Logg))
				r.Get("/{paymentId}", controllers.PaymentDetail(d.PaymentsService, d.Logg))
				r.With(middleware.RequireAnyRole(d.Logg, admin, cashier)).
					Post("/", controllers.PaymentProcess(d.PaymentsService, d.Logg))
			})

			r.Route("/users", func(r chi.Router) {
				r.Use(middleware.RequireRole(admin, d.Logg))
				r.Get("/", controllers.UserList(d.UsersRepo, d.Logg))
				r.Post("/", controllers.UserCreate(d.UsersRepo, d.Cfg.Password, d.Logg))
				r.Delete("/{userId}", controllers.UserDelete(d.UsersRepo, d.Logg))
			})
		})
	})

	return r
}
