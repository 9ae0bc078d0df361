package dto

type RegisterRequestDTO struct {
	Login       string `json:"login" example:"pizzeria"`
	Password    string `json:"password" example:"secret123"`
	Role        string `json:"role" example:"restaurant" enums:"customer,restaurant"`
	Name        string `json:"name,omitempty" example:"Mario's"`
	Description string `json:"description,omitempty" example:"Wood-fired pizza"`
	OpenTime    string `json:"open_time,omitempty" example:"11:00"`
	CloseTime   string `json:"close_time,omitempty" example:"23:00"`
}

type LoginRequestDTO struct {
	Login    string `json:"login" example:"pizzeria"`
	Password string `json:"password" example:"secret123"`
}

type AuthResponseDTO struct {
	Message string `json:"message"`
	UserID  int    `json:"user_id" example:"1"`
	Role    string `json:"role" example:"customer"`
}
