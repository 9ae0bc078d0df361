package repo

import (
	"github.com/GlebRadaev/gofood/internal/pg"
	accountrepo "github.com/GlebRadaev/gofood/internal/repo/account-repo"
	cartrepo "github.com/GlebRadaev/gofood/internal/repo/cart-repo"
	eventrepo "github.com/GlebRadaev/gofood/internal/repo/event-repo"
	menurepo "github.com/GlebRadaev/gofood/internal/repo/menu-repo"
	orderrepo "github.com/GlebRadaev/gofood/internal/repo/order-repo"
	userrepo "github.com/GlebRadaev/gofood/internal/repo/user-repo"
)

// Repositories share one connection so they all join the transaction carried in the context.
type Repositories struct {
	UserRepo    *userrepo.Repository
	AccountRepo *accountrepo.Repository
	MenuRepo    *menurepo.Repository
	CartRepo    *cartrepo.Repository
	OrderRepo   *orderrepo.Repository
	EventRepo   *eventrepo.Repository
}

func New(conn pg.Database) *Repositories {
	return &Repositories{
		UserRepo:    userrepo.New(conn),
		AccountRepo: accountrepo.New(conn),
		MenuRepo:    menurepo.New(conn),
		CartRepo:    cartrepo.New(conn),
		OrderRepo:   orderrepo.New(conn),
		EventRepo:   eventrepo.New(conn),
	}
}
