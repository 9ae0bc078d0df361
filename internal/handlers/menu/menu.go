package menu

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/GlebRadaev/gofood/internal/domain"
	"github.com/GlebRadaev/gofood/internal/dto"
	"github.com/GlebRadaev/gofood/pkg/auth"
	"github.com/GlebRadaev/gofood/pkg/utils"
)

//go:generate mockgen -source=menu.go -destination=mock_menu.go -package=menu

type Service interface {
	ListRestaurants(ctx context.Context, openOnly bool) ([]domain.Restaurant, error)
	ListMenu(ctx context.Context, restaurantID int) ([]domain.MenuItem, error)
	AddItem(ctx context.Context, actor domain.Identity, item domain.MenuItem) (*domain.MenuItem, error)
	UpdateItem(ctx context.Context, actor domain.Identity, item domain.MenuItem) (*domain.MenuItem, error)
	DeleteItem(ctx context.Context, actor domain.Identity, id int) error
}

type MenuHandler struct {
	menuService Service
}

func New(menuService Service) *MenuHandler {
	return &MenuHandler{
		menuService: menuService,
	}
}

// ListRestaurants godoc
//
//	@Summary		Restaurant directory
//	@Description	All restaurants with their opening hours. open=true keeps those open right now.
//	@Tags			Menu
//	@Produce		json
//	@Param			open	query	bool	false	"Only restaurants open now"
//	@Success		200	{array}		dto.RestaurantDTO
//	@Failure		400	{object}	utils.Response	"Invalid open flag"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/restaurants [get]
func (h *MenuHandler) ListRestaurants(w http.ResponseWriter, r *http.Request) {
	openOnly := false
	if raw := r.URL.Query().Get("open"); raw != "" {
		var err error
		if openOnly, err = strconv.ParseBool(raw); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid open flag")
			return
		}
	}

	restaurants, err := h.menuService.ListRestaurants(r.Context(), openOnly)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	response := make([]dto.RestaurantDTO, 0, len(restaurants))
	for i := range restaurants {
		response = append(response, dto.NewRestaurant(&restaurants[i]))
	}
	utils.RespondWithJSON(w, http.StatusOK, response)
}

// ListMenu godoc
//
//	@Summary		Restaurant menu
//	@Description	Items currently offered by the restaurant.
//	@Tags			Menu
//	@Produce		json
//	@Param			restaurantID	path	int	true	"Restaurant id"
//	@Success		200	{array}		dto.MenuItemDTO
//	@Failure		400	{object}	utils.Response	"Invalid restaurant id"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/restaurants/{restaurantID}/menu [get]
func (h *MenuHandler) ListMenu(w http.ResponseWriter, r *http.Request) {
	restaurantID, ok := utils.IDParam(w, r, "restaurantID", "Invalid restaurant id")
	if !ok {
		return
	}

	items, err := h.menuService.ListMenu(r.Context(), restaurantID)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	response := make([]dto.MenuItemDTO, 0, len(items))
	for i := range items {
		response = append(response, dto.NewMenuItem(&items[i]))
	}
	utils.RespondWithJSON(w, http.StatusOK, response)
}

// AddItem godoc
//
//	@Summary		Add menu item
//	@Description	Adds an item to the calling restaurant's menu.
//	@Tags			Menu
//	@Accept			json
//	@Produce		json
//	@Param			request	body	dto.MenuItemRequestDTO	true	"Menu item"
//	@Security		BearerAuth
//	@Success		201	{object}	dto.MenuItemDTO
//	@Failure		400	{object}	utils.Response	"Invalid request body"
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		403	{object}	utils.Response	"Only restaurants manage menus"
//	@Failure		422	{object}	utils.Response	"Invalid name or price"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/menu [post]
func (h *MenuHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.RequireIdentity(w, r)
	if !ok {
		return
	}
	item, ok := decodeItem(w, r)
	if !ok {
		return
	}

	created, err := h.menuService.AddItem(r.Context(), actor, item)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dto.NewMenuItem(created))
}

// UpdateItem godoc
//
//	@Summary		Update menu item
//	@Description	Replaces name, description, price and availability. Placed orders keep their prices.
//	@Tags			Menu
//	@Accept			json
//	@Produce		json
//	@Param			itemID	path	int						true	"Menu item id"
//	@Param			request	body	dto.MenuItemRequestDTO	true	"Menu item"
//	@Security		BearerAuth
//	@Success		200	{object}	dto.MenuItemDTO
//	@Failure		400	{object}	utils.Response	"Invalid request"
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		403	{object}	utils.Response	"Only restaurants manage menus"
//	@Failure		404	{object}	utils.Response	"Menu item not found"
//	@Failure		422	{object}	utils.Response	"Invalid name or price"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/menu/{itemID} [put]
func (h *MenuHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.RequireIdentity(w, r)
	if !ok {
		return
	}
	itemID, ok := utils.IDParam(w, r, "itemID", "Invalid menu item id")
	if !ok {
		return
	}
	item, ok := decodeItem(w, r)
	if !ok {
		return
	}
	item.ID = itemID

	updated, err := h.menuService.UpdateItem(r.Context(), actor, item)
	if err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewMenuItem(updated))
}

// DeleteItem godoc
//
//	@Summary		Remove menu item
//	@Tags			Menu
//	@Param			itemID	path	int	true	"Menu item id"
//	@Security		BearerAuth
//	@Success		204
//	@Failure		400	{object}	utils.Response	"Invalid menu item id"
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		403	{object}	utils.Response	"Only restaurants manage menus"
//	@Failure		404	{object}	utils.Response	"Menu item not found"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/menu/{itemID} [delete]
func (h *MenuHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.RequireIdentity(w, r)
	if !ok {
		return
	}
	itemID, ok := utils.IDParam(w, r, "itemID", "Invalid menu item id")
	if !ok {
		return
	}

	if err := h.menuService.DeleteItem(r.Context(), actor, itemID); err != nil {
		utils.RespondWithDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// decodeItem reads the request body. A missing availability flag means available.
func decodeItem(w http.ResponseWriter, r *http.Request) (domain.MenuItem, bool) {
	var req dto.MenuItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return domain.MenuItem{}, false
	}
	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		utils.RespondWithDomainError(w, domain.ErrInvalidPrice)
		return domain.MenuItem{}, false
	}
	available := true
	if req.Available != nil {
		available = *req.Available
	}
	return domain.MenuItem{
		Name:        req.Name,
		Description: req.Description,
		Price:       price,
		Available:   available,
	}, true
}
