package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Apurer/canteen-orders/internal/domains/menu/adapters/http/mapper"
	menudomain "github.com/Apurer/canteen-orders/internal/domains/menu/domain"
	menuports "github.com/Apurer/canteen-orders/internal/domains/menu/ports"
)

// MenuAPI serves the dish catalogue and the daily menus.
type MenuAPI struct {
	service menuports.Service
}

func NewMenuAPI(service menuports.Service) MenuAPI {
	return MenuAPI{service: service}
}

// Get /v1/menu?date=&cafeId=
// Dishes on offer for a date with their remaining portions
func (api *MenuAPI) GetMenu(c *gin.Context) {
	date, ok := queryDate(c, true)
	if !ok {
		return
	}
	cafeID, ok := optionalID(c, "cafeId")
	if !ok {
		return
	}
	scope := menudomain.ScopeFor(cafeID)
	items, err := api.service.GetMenu(c.Request.Context(), scope, *date)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromDomainMenu(scope, items, date.Format(mapper.DateLayout)))
}

// Put /v1/admin/menu
// Set the portions of the listed dishes for a date
func (api *MenuAPI) LoadMenu(c *gin.Context) {
	var payload mapper.LoadMenuRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	date, err := parseDate(payload.Date)
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	entries, err := api.service.LoadMenu(c.Request.Context(), menudomain.ScopeFor(payload.CafeID), date, mapper.ToStockLines(payload.Lines))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromDomainEntries(entries))
}

// Delete /v1/admin/menu/:dishId?date=&cafeId=
// Take a dish off a date's menu
func (api *MenuAPI) RemoveEntry(c *gin.Context) {
	dishID, ok := pathID(c, "dishId")
	if !ok {
		return
	}
	date, ok := queryDate(c, true)
	if !ok {
		return
	}
	cafeID, ok := optionalID(c, "cafeId")
	if !ok {
		return
	}
	key := menudomain.NewEntryKey(menudomain.ScopeFor(cafeID), dishID, *date)
	if err := api.service.RemoveEntry(c.Request.Context(), key); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Get /v1/dishes
func (api *MenuAPI) ListDishes(c *gin.Context) {
	dishes, err := api.service.ListDishes(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromDomainDishes(dishes))
}

// Get /v1/dishes/:dishId
func (api *MenuAPI) GetDish(c *gin.Context) {
	id, ok := pathID(c, "dishId")
	if !ok {
		return
	}
	dish, err := api.service.GetDish(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromDomainDish(dish))
}

// Post /v1/admin/dishes
// Add a dish to the catalogue
func (api *MenuAPI) CreateDish(c *gin.Context) {
	var payload mapper.MutationDish
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	saved, err := api.service.SaveDish(c.Request.Context(), mapper.ToDomainDish(0, payload))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, mapper.FromDomainDish(saved))
}

// Put /v1/admin/dishes/:dishId
// Update a dish; orders already placed keep their price
func (api *MenuAPI) UpdateDish(c *gin.Context) {
	id, ok := pathID(c, "dishId")
	if !ok {
		return
	}
	var payload mapper.MutationDish
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	if _, err := api.service.GetDish(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	saved, err := api.service.SaveDish(c.Request.Context(), mapper.ToDomainDish(id, payload))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromDomainDish(saved))
}
