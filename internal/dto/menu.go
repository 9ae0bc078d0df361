package dto

import "github.com/GlebRadaev/gofood/internal/domain"

type MenuItemRequestDTO struct {
	Name        string `json:"name" example:"Margherita"`
	Description string `json:"description,omitempty" example:"Tomato, mozzarella, basil"`
	Price       string `json:"price" example:"12.75"`
	Available   *bool  `json:"available,omitempty" example:"true"`
}

type MenuItemDTO struct {
	ID           int    `json:"id" example:"3"`
	RestaurantID int    `json:"restaurant_id" example:"2"`
	Name         string `json:"name" example:"Margherita"`
	Description  string `json:"description,omitempty" example:"Tomato, mozzarella, basil"`
	Price        string `json:"price" example:"12.75"`
	Available    bool   `json:"available" example:"true"`
}

func NewMenuItem(item *domain.MenuItem) MenuItemDTO {
	return MenuItemDTO{
		ID:           item.ID,
		RestaurantID: item.RestaurantID,
		Name:         item.Name,
		Description:  item.Description,
		Price:        item.Price.StringFixed(domain.MoneyPlaces),
		Available:    item.Available,
	}
}
