package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/GlebRadaev/gofood/docs"
	authhandlers "github.com/GlebRadaev/gofood/internal/handlers/auth"
	balancehandlers "github.com/GlebRadaev/gofood/internal/handlers/balance"
	carthandlers "github.com/GlebRadaev/gofood/internal/handlers/cart"
	menuhandlers "github.com/GlebRadaev/gofood/internal/handlers/menu"
	ordershandlers "github.com/GlebRadaev/gofood/internal/handlers/orders"
	"github.com/GlebRadaev/gofood/internal/service"
	"github.com/GlebRadaev/gofood/pkg/auth"
	"github.com/GlebRadaev/gofood/pkg/idempotency"
)

//go:generate mockgen -source=handlers.go -destination=mock_handlers.go -package=handlers

type AuthHandler interface {
	Register(w http.ResponseWriter, r *http.Request)
	Login(w http.ResponseWriter, r *http.Request)
}

type OrderHandler interface {
	CreateOrder(w http.ResponseWriter, r *http.Request)
	TransitionOrder(w http.ResponseWriter, r *http.Request)
	GetOrder(w http.ResponseWriter, r *http.Request)
	ListOrders(w http.ResponseWriter, r *http.Request)
}

type BalanceHandler interface {
	GetBalance(w http.ResponseWriter, r *http.Request)
}

type CartHandler interface {
	GetCart(w http.ResponseWriter, r *http.Request)
	AddItem(w http.ResponseWriter, r *http.Request)
	RemoveItem(w http.ResponseWriter, r *http.Request)
}

type MenuHandler interface {
	ListRestaurants(w http.ResponseWriter, r *http.Request)
	ListMenu(w http.ResponseWriter, r *http.Request)
	AddItem(w http.ResponseWriter, r *http.Request)
	UpdateItem(w http.ResponseWriter, r *http.Request)
	DeleteItem(w http.ResponseWriter, r *http.Request)
}

type Handlers struct {
	AuthHandler    AuthHandler
	OrderHandler   OrderHandler
	BalanceHandler BalanceHandler
	CartHandler    CartHandler
	MenuHandler    MenuHandler

	jwtService auth.JWTServiceInterface
	guard      *idempotency.Guard
}

// New builds the HTTP layer. guard may be nil, then Idempotency-Key headers are ignored.
func New(s *service.Services, guard *idempotency.Guard) *Handlers {
	return &Handlers{
		AuthHandler:    authhandlers.New(s.AuthService),
		OrderHandler:   ordershandlers.New(s.OrderService),
		BalanceHandler: balancehandlers.New(s.BalanceService),
		CartHandler:    carthandlers.New(s.CartService),
		MenuHandler:    menuhandlers.New(s.MenuService),
		jwtService:     s.JWTService,
		guard:          guard,
	}
}

func (h *Handlers) InitRoutes(r chi.Router) chi.Router {
	r.Use(
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		cors.New(cors.Options{
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
			AllowedHeaders: []string{"Authorization", "Content-Type", idempotency.Header},
			ExposedHeaders: []string{"Authorization"},
		}).Handler,
	)
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("doc.json"),
	))
	r.Route("/api", func(r chi.Router) {
		r.Post("/user/register", h.AuthHandler.Register)
		r.Post("/user/login", h.AuthHandler.Login)
		r.Get("/restaurants", h.MenuHandler.ListRestaurants)
		r.Get("/restaurants/{restaurantID}/menu", h.MenuHandler.ListMenu)

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(h.jwtService))
			r.Route("/orders", func(r chi.Router) {
				r.With(h.idempotent).Post("/", h.OrderHandler.CreateOrder)
				r.Get("/", h.OrderHandler.ListOrders)
				r.Get("/{orderID}", h.OrderHandler.GetOrder)
				r.With(h.idempotent).Post("/{orderID}/status", h.OrderHandler.TransitionOrder)
			})
			r.Get("/balance", h.BalanceHandler.GetBalance)
			r.Route("/cart", func(r chi.Router) {
				r.Get("/", h.CartHandler.GetCart)
				r.Post("/items", h.CartHandler.AddItem)
				r.Delete("/items/{menuItemID}", h.CartHandler.RemoveItem)
			})
			r.Route("/menu", func(r chi.Router) {
				r.Post("/", h.MenuHandler.AddItem)
				r.Put("/{itemID}", h.MenuHandler.UpdateItem)
				r.Delete("/{itemID}", h.MenuHandler.DeleteItem)
			})
		})
	})

	return r
}

func (h *Handlers) idempotent(next http.Handler) http.Handler {
	if h.guard == nil {
		return next
	}
	return h.guard.Middleware(next)
}
