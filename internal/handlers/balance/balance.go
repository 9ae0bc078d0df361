package balance

import (
	"context"
	"net/http"

	"github.com/GlebRadaev/gofood/internal/domain"
	"github.com/GlebRadaev/gofood/internal/dto"
	"github.com/GlebRadaev/gofood/pkg/auth"
	"github.com/GlebRadaev/gofood/pkg/utils"
)

//go:generate mockgen -source=balance.go -destination=mock_balance.go -package=balance

type Service interface {
	GetBalance(ctx context.Context, actor domain.Identity) (*domain.Account, error)
}

type BalanceHandler struct {
	balanceService Service
}

func New(balanceService Service) *BalanceHandler {
	return &BalanceHandler{
		balanceService: balanceService,
	}
}

// GetBalance godoc
//
//	@Summary		Get account balance
//	@Description	Balance of the caller's ledger account. For customers held is the amount reserved by unaccepted orders.
//	@Tags			Balance
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	dto.BalanceResponseDTO
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/balance [get]
func (h *BalanceHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.RequireIdentity(w, r)
	if !ok {
		return
	}

	account, err := h.balanceService.GetBalance(r.Context(), actor)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewBalanceResponse(account))
}
