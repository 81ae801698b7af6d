package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Apurer/canteen-orders/internal/domains/cart/adapters/http/mapper"
	cartdomain "github.com/Apurer/canteen-orders/internal/domains/cart/domain"
	cartports "github.com/Apurer/canteen-orders/internal/domains/cart/ports"
	ordermapper "github.com/Apurer/canteen-orders/internal/domains/orders/adapters/http/mapper"
	apierrors "github.com/Apurer/canteen-orders/internal/shared/errors"
)

// CartAPI edits session carts. Carts never touch inventory until checkout, and
// a session is only visible to the user who started it.
type CartAPI struct {
	service cartports.Service
}

func NewCartAPI(service cartports.Service) CartAPI {
	return CartAPI{service: service}
}

// Get /v1/carts/:sessionId
func (api *CartAPI) GetCart(c *gin.Context) {
	sessionID, ok := sessionParam(c)
	if !ok {
		return
	}
	cart, err := api.service.Get(c.Request.Context(), sessionID, actor(c).ID)
	api.respond(c, cart, err)
}

// Put /v1/carts/:sessionId/target
// Choose the date and cafe the cart is filled for
func (api *CartAPI) SelectTarget(c *gin.Context) {
	sessionID, ok := sessionParam(c)
	if !ok {
		return
	}
	var payload mapper.TargetRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	date, err := parseDate(payload.Date)
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	cart, err := api.service.SelectTarget(c.Request.Context(), sessionID, actor(c).ID, date, payload.CafeID, payload.OfficeID)
	api.respond(c, cart, err)
}

// Put /v1/carts/:sessionId/lines/:dishId
// Set a dish to an absolute quantity
func (api *CartAPI) SetLine(c *gin.Context) {
	sessionID, ok := sessionParam(c)
	if !ok {
		return
	}
	dishID, ok := pathID(c, "dishId")
	if !ok {
		return
	}
	var payload mapper.QuantityRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	cart, err := api.service.AddOrReplace(c.Request.Context(), sessionID, actor(c).ID, dishID, payload.Quantity)
	api.respond(c, cart, err)
}

// Post /v1/carts/:sessionId/lines/:dishId/increment
func (api *CartAPI) Increment(c *gin.Context) {
	api.step(c, api.service.Increment)
}

// Post /v1/carts/:sessionId/lines/:dishId/decrement
func (api *CartAPI) Decrement(c *gin.Context) {
	api.step(c, api.service.Decrement)
}

// Delete /v1/carts/:sessionId/lines/:dishId
func (api *CartAPI) RemoveLine(c *gin.Context) {
	sessionID, ok := sessionParam(c)
	if !ok {
		return
	}
	dishID, ok := pathID(c, "dishId")
	if !ok {
		return
	}
	cart, err := api.service.Remove(c.Request.Context(), sessionID, actor(c).ID, dishID)
	api.respond(c, cart, err)
}

// Delete /v1/carts/:sessionId
func (api *CartAPI) ClearCart(c *gin.Context) {
	sessionID, ok := sessionParam(c)
	if !ok {
		return
	}
	if err := api.service.Clear(c.Request.Context(), sessionID, actor(c).ID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Post /v1/carts/:sessionId/checkout
// Commit the cart as an order for the calling user
func (api *CartAPI) Checkout(c *gin.Context) {
	sessionID, ok := sessionParam(c)
	if !ok {
		return
	}
	order, err := api.service.Checkout(c.Request.Context(), sessionID, actor(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ordermapper.FromDomainOrder(order))
}

type stepFunc func(ctx context.Context, sessionID string, userID, dishID int64, delta int) (*cartdomain.Cart, error)

func (api *CartAPI) step(c *gin.Context, fn stepFunc) {
	sessionID, ok := sessionParam(c)
	if !ok {
		return
	}
	dishID, ok := pathID(c, "dishId")
	if !ok {
		return
	}
	var payload mapper.StepRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&payload); err != nil {
			respondBadRequest(c, err)
			return
		}
	}
	cart, err := fn(c.Request.Context(), sessionID, actor(c).ID, dishID, payload.Step())
	api.respond(c, cart, err)
}

func (api *CartAPI) respond(c *gin.Context, cart *cartdomain.Cart, err error) {
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromDomainCart(cart))
}

func sessionParam(c *gin.Context) (string, bool) {
	sessionID := strings.TrimSpace(c.Param("sessionId"))
	if sessionID == "" {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail("sessionId is required"))
		return "", false
	}
	return sessionID, true
}
