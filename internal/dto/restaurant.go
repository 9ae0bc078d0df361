package dto

import "github.com/GlebRadaev/gofood/internal/domain"

type RestaurantDTO struct {
	ID          int    `json:"id" example:"2"`
	Name        string `json:"name" example:"Mario's"`
	Description string `json:"description,omitempty" example:"Wood-fired pizza"`
	OpenTime    string `json:"open_time" example:"11:00"`
	CloseTime   string `json:"close_time" example:"23:00"`
}

func NewRestaurant(r *domain.Restaurant) RestaurantDTO {
	return RestaurantDTO{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		OpenTime:    r.OpenTime.String(),
		CloseTime:   r.CloseTime.String(),
	}
}
