package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Apurer/canteen-orders/internal/domains/orders/adapters/http/mapper"
	orderdomain "github.com/Apurer/canteen-orders/internal/domains/orders/domain"
	orderports "github.com/Apurer/canteen-orders/internal/domains/orders/ports"
	apierrors "github.com/Apurer/canteen-orders/internal/shared/errors"
)

// OrderAPI exposes order history and the post-commit edits.
type OrderAPI struct {
	service orderports.Service
}

func NewOrderAPI(service orderports.Service) OrderAPI {
	return OrderAPI{service: service}
}

// Get /v1/orders?date=&status=
// Orders of the calling user, newest first
func (api *OrderAPI) ListMine(c *gin.Context) {
	filter, ok := orderFilter(c)
	if !ok {
		return
	}
	orders, err := api.service.ListForUser(c.Request.Context(), actor(c).ID, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromDomainOrders(orders))
}

// Get /v1/orders/:orderId
func (api *OrderAPI) GetOrder(c *gin.Context) {
	id, ok := pathID(c, "orderId")
	if !ok {
		return
	}
	order, err := api.service.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	caller := actor(c)
	if order.UserID != caller.ID && !caller.IsManager() {
		respondError(c, orderports.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, mapper.FromDomainOrder(order))
}

// Post /v1/orders/:orderId/cancel
// Cancel an own order before the cutoff and return its portions
func (api *OrderAPI) CancelOrder(c *gin.Context) {
	id, ok := pathID(c, "orderId")
	if !ok {
		return
	}
	order, err := api.service.Cancel(c.Request.Context(), id, actor(c).ID)
	api.respond(c, order, err)
}

// Post /v1/orders/:orderId/items
// Add a dish to a pending order at its current price
func (api *OrderAPI) AddItem(c *gin.Context) {
	id, ok := pathID(c, "orderId")
	if !ok {
		return
	}
	var payload mapper.AddItemRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	order, err := api.service.AddItem(c.Request.Context(), orderports.AddItemInput{
		OrderID:  id,
		UserID:   actor(c).ID,
		DishID:   payload.DishID,
		Quantity: payload.Quantity,
	})
	api.respond(c, order, err)
}

// Delete /v1/orders/:orderId/items/:itemId
func (api *OrderAPI) RemoveItem(c *gin.Context) {
	id, ok := pathID(c, "orderId")
	if !ok {
		return
	}
	itemID, ok := pathID(c, "itemId")
	if !ok {
		return
	}
	order, err := api.service.RemoveItem(c.Request.Context(), orderports.RemoveItemInput{
		OrderID: id,
		UserID:  actor(c).ID,
		ItemID:  itemID,
	})
	api.respond(c, order, err)
}

// Get /v1/admin/orders?date=&status=&userId=&dishId=
func (api *OrderAPI) ListAll(c *gin.Context) {
	filter, ok := orderFilter(c)
	if !ok {
		return
	}
	if filter.UserID, ok = optionalID(c, "userId"); !ok {
		return
	}
	for _, raw := range c.QueryArray("dishId") {
		dishID, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil || dishID <= 0 {
			respondProblem(c, apierrors.ErrBadRequest.WithDetail("dishId must be a positive integer"))
			return
		}
		filter.DishIDs = append(filter.DishIDs, dishID)
	}
	orders, err := api.service.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromDomainOrders(orders))
}

// Put /v1/admin/orders/:orderId/status
// Move an order to another status; inventory follows the transition
func (api *OrderAPI) ChangeStatus(c *gin.Context) {
	id, ok := pathID(c, "orderId")
	if !ok {
		return
	}
	var payload mapper.StatusRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	order, err := api.service.ChangeStatus(c.Request.Context(), orderports.ChangeStatusInput{
		OrderID: id,
		Status:  orderdomain.Status(strings.ToLower(strings.TrimSpace(payload.Status))),
		ActorID: actor(c).ID,
	})
	api.respond(c, order, err)
}

func (api *OrderAPI) respond(c *gin.Context, order *orderdomain.Order, err error) {
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromDomainOrder(order))
}

func orderFilter(c *gin.Context) (orderports.Filter, bool) {
	var filter orderports.Filter
	date, ok := queryDate(c, false)
	if !ok {
		return filter, false
	}
	filter.Date = date
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		status := orderdomain.Status(strings.ToLower(raw))
		filter.Status = &status
	}
	return filter, true
}
