package service

import (
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/GlebRadaev/gofood/internal/handlers/auth"
	"github.com/GlebRadaev/gofood/internal/handlers/balance"
	"github.com/GlebRadaev/gofood/internal/handlers/cart"
	"github.com/GlebRadaev/gofood/internal/handlers/menu"
	"github.com/GlebRadaev/gofood/internal/handlers/orders"
	"github.com/GlebRadaev/gofood/internal/pg"
	"github.com/GlebRadaev/gofood/internal/repo"
	"github.com/GlebRadaev/gofood/internal/service/authservice"
	"github.com/GlebRadaev/gofood/internal/service/balanceservice"
	"github.com/GlebRadaev/gofood/internal/service/cartservice"
	"github.com/GlebRadaev/gofood/internal/service/menuservice"
	"github.com/GlebRadaev/gofood/internal/service/orderservice"
	"github.com/GlebRadaev/gofood/internal/service/settlement"
	pkgauth "github.com/GlebRadaev/gofood/pkg/auth"
)

type Options struct {
	FeeRate        decimal.Decimal
	InitialBalance decimal.Decimal
	JWTSecret      string
}

type Services struct {
	AuthService    auth.Service
	OrderService   orders.Service
	BalanceService balance.Service
	CartService    cart.Service
	MenuService    menu.Service
	JWTService     pkgauth.JWTServiceInterface
}

func New(repo *repo.Repositories, txManager pg.TXManager, opts Options) *Services {
	jwtService := pkgauth.NewJWTService(opts.JWTSecret)
	balanceService := balanceservice.New(repo.AccountRepo)
	cartService := cartservice.New(repo.CartRepo, repo.MenuRepo)
	engine := settlement.New(repo.AccountRepo, repo.OrderRepo, repo.EventRepo, txManager)
	orderService := orderservice.New(repo.OrderRepo, repo.EventRepo, cartService, engine, txManager, opts.FeeRate)
	authService := authservice.New(repo.UserRepo, balanceService, pkgauth.NewHashService(bcrypt.DefaultCost), jwtService, txManager, opts.InitialBalance)

	return &Services{
		AuthService:    authService,
		OrderService:   orderService,
		BalanceService: balanceService,
		CartService:    cartService,
		MenuService:    menuservice.New(repo.MenuRepo),
		JWTService:     jwtService,
	}
}
