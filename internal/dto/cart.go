package dto

import "github.com/GlebRadaev/gofood/internal/domain"

type AddCartItemRequestDTO struct {
	MenuItemID int `json:"menu_item_id" example:"3"`
	Quantity   int `json:"quantity" example:"2"`
}

type CartLineResponseDTO struct {
	MenuItemID int `json:"menu_item_id" example:"3"`
	Quantity   int `json:"quantity" example:"2"`
}

type RemoveCartItemResponseDTO struct {
	MenuItemID int `json:"menu_item_id" example:"3"`
	Remaining  int `json:"remaining" example:"1"`
}

type CartLineDTO struct {
	MenuItemID int    `json:"menu_item_id" example:"3"`
	Name       string `json:"name" example:"Margherita"`
	Price      string `json:"price" example:"12.75"`
	Quantity   int    `json:"quantity" example:"2"`
	Subtotal   string `json:"subtotal" example:"25.50"`
	Available  bool   `json:"available" example:"true"`
}

type CartResponseDTO struct {
	RestaurantID int           `json:"restaurant_id,omitempty" example:"2"`
	Lines        []CartLineDTO `json:"lines"`
	Total        string        `json:"total" example:"25.50"`
}

func NewCartResponse(cart *domain.Cart) CartResponseDTO {
	resp := CartResponseDTO{
		RestaurantID: cart.RestaurantID,
		Lines:        []CartLineDTO{},
		Total:        cart.Total().StringFixed(domain.MoneyPlaces),
	}
	for _, l := range cart.Lines {
		resp.Lines = append(resp.Lines, CartLineDTO{
			MenuItemID: l.MenuItemID,
			Name:       l.Item.Name,
			Price:      l.Item.Price.StringFixed(domain.MoneyPlaces),
			Quantity:   l.Quantity,
			Subtotal:   domain.Round2(l.Subtotal()).StringFixed(domain.MoneyPlaces),
			Available:  l.Item.Available,
		})
	}
	return resp
}
