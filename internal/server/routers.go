// Package server exposes the canteen ordering core over HTTP for the chat and
// admin front ends.
package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	userports "github.com/Apurer/canteen-orders/internal/domains/users/ports"
)

// Route is the information for every URI.
type Route struct {
	// Name is the name of this Route.
	Name string
	// Method is the string for the HTTP method. ex) GET, POST etc..
	Method string
	// Pattern is the pattern of the URI.
	Pattern string
	// HandlerFunc is the handler function of this route.
	HandlerFunc gin.HandlerFunc
}

// ApiHandleFunctions bundles the handlers of every API section.
type ApiHandleFunctions struct {
	MenuAPI     MenuAPI
	CartAPI     CartAPI
	OrderAPI    OrderAPI
	DeadlineAPI DeadlineAPI
	UserAPI     UserAPI
	// Users resolves the X-User-ID header for authenticated routes.
	Users userports.Service
}

// NewRouter returns a new router with every route registered.
func NewRouter(handleFunctions ApiHandleFunctions, middleware ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware...)
	router.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	v1 := router.Group("/v1")
	addRoutes(v1, publicRoutes(handleFunctions))

	authed := v1.Group("", requireUser(handleFunctions.Users))
	addRoutes(authed, userRoutes(handleFunctions))

	admin := v1.Group("/admin", requireUser(handleFunctions.Users), requireManager())
	addRoutes(admin, adminRoutes(handleFunctions))
	return router
}

func addRoutes(group *gin.RouterGroup, routes []Route) {
	for _, route := range routes {
		switch route.Method {
		case http.MethodGet:
			group.GET(route.Pattern, route.HandlerFunc)
		case http.MethodPost:
			group.POST(route.Pattern, route.HandlerFunc)
		case http.MethodPut:
			group.PUT(route.Pattern, route.HandlerFunc)
		case http.MethodPatch:
			group.PATCH(route.Pattern, route.HandlerFunc)
		case http.MethodDelete:
			group.DELETE(route.Pattern, route.HandlerFunc)
		}
	}
}

func publicRoutes(h ApiHandleFunctions) []Route {
	return []Route{
		{"GetMenu", http.MethodGet, "/menu", h.MenuAPI.GetMenu},
		{"ListDishes", http.MethodGet, "/dishes", h.MenuAPI.ListDishes},
		{"GetDish", http.MethodGet, "/dishes/:dishId", h.MenuAPI.GetDish},
		{"GetWindow", http.MethodGet, "/deadlines/window", h.DeadlineAPI.GetWindow},
		{"RegisterUser", http.MethodPost, "/users", h.UserAPI.RegisterUser},
	}
}

func userRoutes(h ApiHandleFunctions) []Route {
	return []Route{
		{"GetMe", http.MethodGet, "/users/me", h.UserAPI.GetMe},

		{"GetCart", http.MethodGet, "/carts/:sessionId", h.CartAPI.GetCart},
		{"ClearCart", http.MethodDelete, "/carts/:sessionId", h.CartAPI.ClearCart},
		{"SelectTarget", http.MethodPut, "/carts/:sessionId/target", h.CartAPI.SelectTarget},
		{"SetLine", http.MethodPut, "/carts/:sessionId/lines/:dishId", h.CartAPI.SetLine},
		{"RemoveLine", http.MethodDelete, "/carts/:sessionId/lines/:dishId", h.CartAPI.RemoveLine},
		{"Increment", http.MethodPost, "/carts/:sessionId/lines/:dishId/increment", h.CartAPI.Increment},
		{"Decrement", http.MethodPost, "/carts/:sessionId/lines/:dishId/decrement", h.CartAPI.Decrement},
		{"Checkout", http.MethodPost, "/carts/:sessionId/checkout", h.CartAPI.Checkout},

		{"ListMine", http.MethodGet, "/orders", h.OrderAPI.ListMine},
		{"GetOrder", http.MethodGet, "/orders/:orderId", h.OrderAPI.GetOrder},
		{"CancelOrder", http.MethodPost, "/orders/:orderId/cancel", h.OrderAPI.CancelOrder},
		{"AddItem", http.MethodPost, "/orders/:orderId/items", h.OrderAPI.AddItem},
		{"RemoveItem", http.MethodDelete, "/orders/:orderId/items/:itemId", h.OrderAPI.RemoveItem},
	}
}

func adminRoutes(h ApiHandleFunctions) []Route {
	return []Route{
		{"LoadMenu", http.MethodPut, "/menu", h.MenuAPI.LoadMenu},
		{"RemoveEntry", http.MethodDelete, "/menu/:dishId", h.MenuAPI.RemoveEntry},
		{"CreateDish", http.MethodPost, "/dishes", h.MenuAPI.CreateDish},
		{"UpdateDish", http.MethodPut, "/dishes/:dishId", h.MenuAPI.UpdateDish},

		{"ListAll", http.MethodGet, "/orders", h.OrderAPI.ListAll},
		{"ChangeStatus", http.MethodPut, "/orders/:orderId/status", h.OrderAPI.ChangeStatus},

		{"ListDeadlines", http.MethodGet, "/deadlines", h.DeadlineAPI.ListDeadlines},
		{"CreateDeadline", http.MethodPost, "/deadlines", h.DeadlineAPI.CreateDeadline},
		{"UpdateDeadline", http.MethodPatch, "/deadlines/:deadlineId", h.DeadlineAPI.UpdateDeadline},
		{"DeleteDeadline", http.MethodDelete, "/deadlines/:deadlineId", h.DeadlineAPI.DeleteDeadline},

		{"ListManagers", http.MethodGet, "/managers", h.UserAPI.ListManagers},
		{"GetUser", http.MethodGet, "/users/:userId", h.UserAPI.GetUser},
		{"SetRole", http.MethodPut, "/users/:userId/role", h.UserAPI.SetRole},
		{"SetBlocked", http.MethodPut, "/users/:userId/blocked", h.UserAPI.SetBlocked},
		{"AssignOffice", http.MethodPut, "/users/:userId/office", h.UserAPI.AssignOffice},
	}
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}
