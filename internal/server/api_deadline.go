package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Apurer/canteen-orders/internal/domains/deadlines/adapters/http/mapper"
	deadlineports "github.com/Apurer/canteen-orders/internal/domains/deadlines/ports"
)

// DeadlineAPI answers cutoff questions and administers cutoff rows.
type DeadlineAPI struct {
	service deadlineports.Service
}

func NewDeadlineAPI(service deadlineports.Service) DeadlineAPI {
	return DeadlineAPI{service: service}
}

// Get /v1/deadlines/window?date=&officeId=&cafeId=
// Whether ordering and cancelling are still open for a date
func (api *DeadlineAPI) GetWindow(c *gin.Context) {
	date, ok := queryDate(c, true)
	if !ok {
		return
	}
	officeID, ok := optionalID(c, "officeId")
	if !ok {
		return
	}
	cafeID, ok := optionalID(c, "cafeId")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	scope := mapper.ToScope(officeID, cafeID)
	canOrder, err := api.service.CanOrder(ctx, *date, scope)
	if err != nil {
		respondError(c, err)
		return
	}
	canCancel, err := api.service.CanCancel(ctx, *date, scope)
	if err != nil {
		respondError(c, err)
		return
	}
	window := mapper.Window{Date: date.Format("2006-01-02"), CanOrder: canOrder, CanCancel: canCancel}
	deadline, err := api.service.Resolve(ctx, *date, scope)
	if err != nil {
		respondError(c, err)
		return
	}
	if deadline != nil {
		cutoff := deadline.Cutoff
		window.Cutoff = &cutoff
	}
	c.JSON(http.StatusOK, window)
}

// Get /v1/admin/deadlines?active=true
func (api *DeadlineAPI) ListDeadlines(c *gin.Context) {
	list, err := api.service.List(c.Request.Context(), isTruthy(c.Query("active")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromDomainDeadlines(list))
}

// Post /v1/admin/deadlines
func (api *DeadlineAPI) CreateDeadline(c *gin.Context) {
	var payload mapper.CreateRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	date, err := parseDate(payload.Date)
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	created, err := api.service.Create(c.Request.Context(), date, payload.Cutoff, mapper.ToScope(payload.OfficeID, payload.CafeID))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, mapper.FromDomainDeadline(created))
}

// Patch /v1/admin/deadlines/:deadlineId
// Move a cutoff or switch it on and off
func (api *DeadlineAPI) UpdateDeadline(c *gin.Context) {
	id, ok := pathID(c, "deadlineId")
	if !ok {
		return
	}
	var payload mapper.UpdateRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	updated, err := api.service.Update(c.Request.Context(), deadlineports.UpdateInput{
		ID:     id,
		Cutoff: payload.Cutoff,
		Active: payload.Active,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromDomainDeadline(updated))
}

// Delete /v1/admin/deadlines/:deadlineId
func (api *DeadlineAPI) DeleteDeadline(c *gin.Context) {
	id, ok := pathID(c, "deadlineId")
	if !ok {
		return
	}
	if err := api.service.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
