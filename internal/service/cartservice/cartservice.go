package cartservice

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/GlebRadaev/gofood/internal/domain"
)

//go:generate mockgen -source=cartservice.go -destination=mock_cartservice.go -package=cartservice

type Repo interface {
	FindLines(ctx context.Context, customerID int) ([]domain.CartLine, error)
	LockLines(ctx context.Context, customerID int) ([]domain.CartLine, error)
	Add(ctx context.Context, customerID, menuItemID, quantity int) (*domain.CartLine, error)
	Decrement(ctx context.Context, customerID, menuItemID int) (int, error)
	Clear(ctx context.Context, customerID int) error
}

type Catalog interface {
	FindByID(ctx context.Context, id int) (*domain.MenuItem, error)
	FindByIDs(ctx context.Context, ids []int) ([]domain.MenuItem, error)
}

type Service struct {
	repo    Repo
	catalog Catalog
}

func New(repo Repo, catalog Catalog) *Service {
	return &Service{
		repo:    repo,
		catalog: catalog,
	}
}

// Aggregate locks the customer's cart lines and prices them against the live catalog.
// Every line must reference an available item of a single restaurant.
func (s *Service) Aggregate(ctx context.Context, customerID int) (*domain.Cart, error) {
	lines, err := s.repo.LockLines(ctx, customerID)
	if err != nil {
		zap.L().Error("failed to lock cart", zap.Int("customer_id", customerID), zap.Error(err))
		return nil, err
	}
	if len(lines) == 0 {
		return nil, domain.ErrEmptyCart
	}

	items, err := s.itemsFor(ctx, lines)
	if err != nil {
		return nil, err
	}

	cart := &domain.Cart{CustomerID: customerID}
	for _, line := range lines {
		item, ok := items[line.MenuItemID]
		if !ok || !item.Available {
			return nil, fmt.Errorf("%w: menu item %d", domain.ErrItemUnavailable, line.MenuItemID)
		}
		if cart.RestaurantID == 0 {
			cart.RestaurantID = item.RestaurantID
		} else if cart.RestaurantID != item.RestaurantID {
			return nil, domain.ErrSingleRestaurant
		}
		cart.Lines = append(cart.Lines, domain.PricedLine{CartLine: line, Item: item})
	}
	return cart, nil
}

func (s *Service) Clear(ctx context.Context, customerID int) error {
	return s.repo.Clear(ctx, customerID)
}

// GetCart returns the cart as the customer sees it. Lines whose item left the catalog
// are kept with an unavailable placeholder item so the customer can remove them.
func (s *Service) GetCart(ctx context.Context, actor domain.Identity) (*domain.Cart, error) {
	if actor.Role != domain.RoleCustomer {
		return nil, domain.ErrForbidden
	}
	lines, err := s.repo.FindLines(ctx, actor.UserID)
	if err != nil {
		zap.L().Error("failed to get cart", zap.Int("customer_id", actor.UserID), zap.Error(err))
		return nil, err
	}
	cart := &domain.Cart{CustomerID: actor.UserID}
	if len(lines) == 0 {
		return cart, nil
	}

	items, err := s.itemsFor(ctx, lines)
	if err != nil {
		return nil, err
	}
	for _, line := range lines {
		item, ok := items[line.MenuItemID]
		if !ok {
			item = domain.MenuItem{ID: line.MenuItemID}
		}
		if cart.RestaurantID == 0 {
			cart.RestaurantID = item.RestaurantID
		}
		cart.Lines = append(cart.Lines, domain.PricedLine{CartLine: line, Item: item})
	}
	return cart, nil
}

func (s *Service) AddItem(ctx context.Context, actor domain.Identity, menuItemID, quantity int) (*domain.CartLine, error) {
	if actor.Role != domain.RoleCustomer {
		return nil, domain.ErrForbidden
	}
	if !domain.ValidQuantity(quantity) {
		return nil, domain.ErrInvalidQuantity
	}

	item, err := s.catalog.FindByID(ctx, menuItemID)
	if err != nil {
		zap.L().Error("failed to find menu item", zap.Int("menu_item_id", menuItemID), zap.Error(err))
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrMenuItemNotFound
	}
	if !item.Available {
		return nil, domain.ErrItemUnavailable
	}

	lines, err := s.repo.FindLines(ctx, actor.UserID)
	if err != nil {
		zap.L().Error("failed to get cart", zap.Int("customer_id", actor.UserID), zap.Error(err))
		return nil, err
	}
	if len(lines) > 0 {
		items, err := s.itemsFor(ctx, lines)
		if err != nil {
			return nil, err
		}
		for _, other := range items {
			if other.RestaurantID != item.RestaurantID {
				return nil, domain.ErrSingleRestaurant
			}
		}
	}

	line, err := s.repo.Add(ctx, actor.UserID, menuItemID, quantity)
	if err != nil {
		zap.L().Error("failed to add cart line", zap.Int("customer_id", actor.UserID), zap.Error(err))
		return nil, err
	}
	return line, nil
}

// RemoveItem takes one unit of the item out of the cart and returns what is left of it.
func (s *Service) RemoveItem(ctx context.Context, actor domain.Identity, menuItemID int) (int, error) {
	if actor.Role != domain.RoleCustomer {
		return 0, domain.ErrForbidden
	}
	left, err := s.repo.Decrement(ctx, actor.UserID, menuItemID)
	if err != nil {
		zap.L().Error("failed to remove cart line", zap.Int("customer_id", actor.UserID), zap.Error(err))
		return 0, err
	}
	return left, nil
}

func (s *Service) itemsFor(ctx context.Context, lines []domain.CartLine) (map[int]domain.MenuItem, error) {
	ids := make([]int, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.MenuItemID)
	}
	items, err := s.catalog.FindByIDs(ctx, ids)
	if err != nil {
		zap.L().Error("failed to load menu items", zap.Ints("menu_item_ids", ids), zap.Error(err))
		return nil, err
	}
	byID := make(map[int]domain.MenuItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}
	return byID, nil
}
