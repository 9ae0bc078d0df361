package cart

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/GlebRadaev/gofood/internal/domain"
	"github.com/GlebRadaev/gofood/internal/dto"
	"github.com/GlebRadaev/gofood/pkg/auth"
	"github.com/GlebRadaev/gofood/pkg/utils"
)

//go:generate mockgen -source=cart.go -destination=mock_cart.go -package=cart

type Service interface {
	GetCart(ctx context.Context, actor domain.Identity) (*domain.Cart, error)
	AddItem(ctx context.Context, actor domain.Identity, menuItemID, quantity int) (*domain.CartLine, error)
	RemoveItem(ctx context.Context, actor domain.Identity, menuItemID int) (int, error)
}

type CartHandler struct {
	cartService Service
}

func New(cartService Service) *CartHandler {
	return &CartHandler{
		cartService: cartService,
	}
}

// GetCart godoc
//
//	@Summary		Get cart
//	@Description	Cart lines priced with the current catalog. Items removed from the menu show as unavailable.
//	@Tags			Cart
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	dto.CartResponseDTO
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		403	{object}	utils.Response	"Only customers have a cart"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/cart [get]
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.RequireIdentity(w, r)
	if !ok {
		return
	}

	cart, err := h.cartService.GetCart(r.Context(), actor)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewCartResponse(cart))
}

// AddItem godoc
//
//	@Summary		Add item to cart
//	@Description	Adds quantity units of a menu item. All items in a cart must come from one restaurant.
//	@Tags			Cart
//	@Accept			json
//	@Produce		json
//	@Param			request	body	dto.AddCartItemRequestDTO	true	"Item and quantity"
//	@Security		BearerAuth
//	@Success		200	{object}	dto.CartLineResponseDTO
//	@Failure		400	{object}	utils.Response	"Invalid request body"
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		403	{object}	utils.Response	"Only customers have a cart"
//	@Failure		404	{object}	utils.Response	"Menu item not found"
//	@Failure		422	{object}	utils.Response	"Invalid quantity, unavailable item or another restaurant"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/cart/items [post]
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.RequireIdentity(w, r)
	if !ok {
		return
	}

	var req dto.AddCartItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	line, err := h.cartService.AddItem(r.Context(), actor, req.MenuItemID, req.Quantity)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.CartLineResponseDTO{
		MenuItemID: line.MenuItemID,
		Quantity:   line.Quantity,
	})
}

// RemoveItem godoc
//
//	@Summary		Remove one unit from cart
//	@Description	Decrements the item quantity and drops the line when it reaches zero.
//	@Tags			Cart
//	@Produce		json
//	@Param			menuItemID	path	int	true	"Menu item id"
//	@Security		BearerAuth
//	@Success		200	{object}	dto.RemoveCartItemResponseDTO
//	@Failure		400	{object}	utils.Response	"Invalid menu item id"
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		403	{object}	utils.Response	"Only customers have a cart"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/cart/items/{menuItemID} [delete]
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.RequireIdentity(w, r)
	if !ok {
		return
	}
	menuItemID, ok := utils.IDParam(w, r, "menuItemID", "Invalid menu item id")
	if !ok {
		return
	}

	left, err := h.cartService.RemoveItem(r.Context(), actor, menuItemID)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.RemoveCartItemResponseDTO{
		MenuItemID: menuItemID,
		Remaining:  left,
	})
}
