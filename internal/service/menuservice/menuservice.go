package menuservice

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/GlebRadaev/gofood/internal/domain"
)

//go:generate mockgen -source=menuservice.go -destination=mock_menuservice.go -package=menuservice

type Repo interface {
	ListByRestaurant(ctx context.Context, restaurantID int) ([]domain.MenuItem, error)
	Create(ctx context.Context, item *domain.MenuItem) (*domain.MenuItem, error)
	Update(ctx context.Context, item *domain.MenuItem) error
	Delete(ctx context.Context, restaurantID, id int) error
	ListRestaurants(ctx context.Context) ([]domain.Restaurant, error)
}

type Service struct {
	repo Repo
	now  func() time.Time
}

func New(repo Repo) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

// ListRestaurants returns the restaurant directory. With openOnly it keeps those open right now.
func (s *Service) ListRestaurants(ctx context.Context, openOnly bool) ([]domain.Restaurant, error) {
	restaurants, err := s.repo.ListRestaurants(ctx)
	if err != nil {
		zap.L().Error("failed to get restaurants", zap.Error(err))
		return nil, err
	}
	if !openOnly {
		return restaurants, nil
	}

	now := s.now()
	open := restaurants[:0]
	for _, r := range restaurants {
		if r.OpenAt(now) {
			open = append(open, r)
		}
	}
	return open, nil
}

func (s *Service) ListMenu(ctx context.Context, restaurantID int) ([]domain.MenuItem, error) {
	items, err := s.repo.ListByRestaurant(ctx, restaurantID)
	if err != nil {
		zap.L().Error("failed to get menu", zap.Int("restaurant_id", restaurantID), zap.Error(err))
		return nil, err
	}
	return items, nil
}

func (s *Service) AddItem(ctx context.Context, actor domain.Identity, item domain.MenuItem) (*domain.MenuItem, error) {
	if actor.Role != domain.RoleRestaurant {
		return nil, domain.ErrForbidden
	}
	if err := validate(&item); err != nil {
		return nil, err
	}
	item.ID = 0
	item.RestaurantID = actor.UserID

	created, err := s.repo.Create(ctx, &item)
	if err != nil {
		zap.L().Error("failed to add menu item", zap.Int("restaurant_id", actor.UserID), zap.Error(err))
		return nil, err
	}
	return created, nil
}

// UpdateItem rewrites one of the actor's items. Orders already placed keep their line snapshots.
func (s *Service) UpdateItem(ctx context.Context, actor domain.Identity, item domain.MenuItem) (*domain.MenuItem, error) {
	if actor.Role != domain.RoleRestaurant {
		return nil, domain.ErrForbidden
	}
	if err := validate(&item); err != nil {
		return nil, err
	}
	item.RestaurantID = actor.UserID

	if err := s.repo.Update(ctx, &item); err != nil {
		zap.L().Info("failed to update menu item", zap.Int("menu_item_id", item.ID), zap.Error(err))
		return nil, err
	}
	return &item, nil
}

func (s *Service) DeleteItem(ctx context.Context, actor domain.Identity, id int) error {
	if actor.Role != domain.RoleRestaurant {
		return domain.ErrForbidden
	}
	if err := s.repo.Delete(ctx, actor.UserID, id); err != nil {
		zap.L().Info("failed to delete menu item", zap.Int("menu_item_id", id), zap.Error(err))
		return err
	}
	return nil
}

func validate(item *domain.MenuItem) error {
	item.Name = strings.TrimSpace(item.Name)
	if item.Name == "" {
		return domain.ErrInvalidName
	}
	if !domain.ValidPrice(item.Price) {
		return domain.ErrInvalidPrice
	}
	return nil
}
