package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Apurer/canteen-orders/internal/domains/users/adapters/http/mapper"
	userdomain "github.com/Apurer/canteen-orders/internal/domains/users/domain"
	userports "github.com/Apurer/canteen-orders/internal/domains/users/ports"
)

// UserAPI registers chat accounts and lets managers administer them.
type UserAPI struct {
	service userports.Service
}

func NewUserAPI(service userports.Service) UserAPI {
	return UserAPI{service: service}
}

// Post /v1/users
// Register a chat account or refresh its profile
func (api *UserAPI) RegisterUser(c *gin.Context) {
	var payload mapper.RegisterRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	user, err := api.service.Register(c.Request.Context(), mapper.ToRegisterInput(payload))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromDomainUser(user))
}

// Get /v1/users/me
func (api *UserAPI) GetMe(c *gin.Context) {
	c.JSON(http.StatusOK, mapper.FromDomainUser(actor(c)))
}

// Get /v1/admin/users/:userId
func (api *UserAPI) GetUser(c *gin.Context) {
	id, ok := pathID(c, "userId")
	if !ok {
		return
	}
	user, err := api.service.Get(c.Request.Context(), id)
	api.respond(c, user, err)
}

// Get /v1/admin/managers
func (api *UserAPI) ListManagers(c *gin.Context) {
	managers, err := api.service.ListManagers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromDomainUsers(managers))
}

// Put /v1/admin/users/:userId/role
func (api *UserAPI) SetRole(c *gin.Context) {
	id, ok := pathID(c, "userId")
	if !ok {
		return
	}
	var payload mapper.RoleRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	role := userdomain.Role(strings.ToLower(strings.TrimSpace(payload.Role)))
	user, err := api.service.SetRole(c.Request.Context(), id, role)
	api.respond(c, user, err)
}

// Put /v1/admin/users/:userId/blocked
func (api *UserAPI) SetBlocked(c *gin.Context) {
	id, ok := pathID(c, "userId")
	if !ok {
		return
	}
	var payload mapper.BlockRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	user, err := api.service.SetBlocked(c.Request.Context(), id, payload.Blocked)
	api.respond(c, user, err)
}

// Put /v1/admin/users/:userId/office
func (api *UserAPI) AssignOffice(c *gin.Context) {
	id, ok := pathID(c, "userId")
	if !ok {
		return
	}
	var payload mapper.OfficeRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	user, err := api.service.AssignOffice(c.Request.Context(), id, payload.OfficeID)
	api.respond(c, user, err)
}

func (api *UserAPI) respond(c *gin.Context, user *userdomain.User, err error) {
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromDomainUser(user))
}
