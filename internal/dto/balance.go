package dto

import "github.com/GlebRadaev/gofood/internal/domain"

type BalanceResponseDTO struct {
	Kind      string `json:"kind" example:"customer"`
	Balance   string `json:"balance" example:"100.00"`
	Held      string `json:"held" example:"25.50"`
	Available string `json:"available" example:"74.50"`
}

func NewBalanceResponse(acc *domain.Account) BalanceResponseDTO {
	return BalanceResponseDTO{
		Kind:      string(acc.Kind),
		Balance:   acc.Balance.StringFixed(domain.MoneyPlaces),
		Held:      acc.Held.StringFixed(domain.MoneyPlaces),
		Available: acc.Available().StringFixed(domain.MoneyPlaces),
	}
}
