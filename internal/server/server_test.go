package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartmemory "github.com/Apurer/canteen-orders/internal/domains/cart/adapters/memory"
	cartapp "github.com/Apurer/canteen-orders/internal/domains/cart/application"
	deadlinememory "github.com/Apurer/canteen-orders/internal/domains/deadlines/adapters/memory"
	deadlineapp "github.com/Apurer/canteen-orders/internal/domains/deadlines/application"
	deadlinedomain "github.com/Apurer/canteen-orders/internal/domains/deadlines/domain"
	menumemory "github.com/Apurer/canteen-orders/internal/domains/menu/adapters/memory"
	menuapp "github.com/Apurer/canteen-orders/internal/domains/menu/application"
	menudomain "github.com/Apurer/canteen-orders/internal/domains/menu/domain"
	ordermemory "github.com/Apurer/canteen-orders/internal/domains/orders/adapters/memory"
	orderapp "github.com/Apurer/canteen-orders/internal/domains/orders/application"
	usermemory "github.com/Apurer/canteen-orders/internal/domains/users/adapters/memory"
	userapp "github.com/Apurer/canteen-orders/internal/domains/users/application"
	userdomain "github.com/Apurer/canteen-orders/internal/domains/users/domain"
	userports "github.com/Apurer/canteen-orders/internal/domains/users/ports"
	apierrors "github.com/Apurer/canteen-orders/internal/shared/errors"
)

const managerChat int64 = 900

var serveDay = time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC)

type serverFixture struct {
	router    *gin.Engine
	menu      *menuapp.Service
	deadlines *deadlineapp.Service
	customer  *userdomain.User
	other     *userdomain.User
	manager   *userdomain.User
	soup      *menudomain.Dish
}

func newServerFixture(t *testing.T) *serverFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()
	now := func() time.Time { return serveDay.Add(9 * time.Hour) }

	menuRepo := menumemory.NewRepository()
	menu := menuapp.NewService(menuRepo, menumemory.NewDishRepository())
	deadlines := deadlineapp.NewService(deadlinememory.NewRepository(), deadlineapp.WithClock(now))
	users := userapp.NewService(usermemory.NewRepository(), managerChat)
	orders := orderapp.NewService(ordermemory.NewRepository(menuRepo), menu.Ledger(), deadlines, users, menu, orderapp.WithClock(now))
	carts := cartapp.NewService(cartmemory.NewSessionStore(time.Hour), menu, menu, orders, cartapp.WithClock(now))

	customer, err := users.Register(ctx, userports.RegisterInput{ChatID: 100, FullName: "Ada Customer"})
	require.NoError(t, err)
	other, err := users.Register(ctx, userports.RegisterInput{ChatID: 200, FullName: "Eve Other"})
	require.NoError(t, err)
	manager, err := users.Register(ctx, userports.RegisterInput{ChatID: managerChat, FullName: "Mia Manager"})
	require.NoError(t, err)
	soup, err := menudomain.NewDish(0, "Soup", decimal.RequireFromString("4.50"))
	require.NoError(t, err)
	soup, err = menu.SaveDish(ctx, soup)
	require.NoError(t, err)

	router := NewRouter(ApiHandleFunctions{
		MenuAPI:     NewMenuAPI(menu),
		CartAPI:     NewCartAPI(carts),
		OrderAPI:    NewOrderAPI(orders),
		DeadlineAPI: NewDeadlineAPI(deadlines),
		UserAPI:     NewUserAPI(users),
		Users:       users,
	})
	return &serverFixture{router: router, menu: menu, deadlines: deadlines, customer: customer, other: other, manager: manager, soup: soup}
}

func (f *serverFixture) do(t *testing.T, method, path string, userID int64, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID > 0 {
		req.Header.Set(HeaderUserID, strconv.FormatInt(userID, 10))
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *serverFixture) stock(t *testing.T, quantity int) {
	t.Helper()
	rec := f.do(t, http.MethodPut, "/v1/admin/menu", f.manager.ID, map[string]any{
		"date":  "2026-06-10",
		"lines": []map[string]any{{"dishId": f.soup.ID, "quantity": quantity}},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func (f *serverFixture) remaining(t *testing.T) int {
	t.Helper()
	rec := f.do(t, http.MethodGet, "/v1/menu?date=2026-06-10", 0, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var menu struct {
		Items []struct {
			ID        int64 `json:"id"`
			Remaining int   `json:"remaining"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &menu))
	for _, item := range menu.Items {
		if item.ID == f.soup.ID {
			return item.Remaining
		}
	}
	return 0
}

func (f *serverFixture) fillCart(t *testing.T, session string, quantity int) {
	t.Helper()
	rec := f.do(t, http.MethodPut, "/v1/carts/"+session+"/target", f.customer.ID, map[string]any{"date": "2026-06-10"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = f.do(t, http.MethodPut, "/v1/carts/"+session+"/lines/"+strconv.FormatInt(f.soup.ID, 10), f.customer.ID, map[string]any{"quantity": quantity})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) apierrors.ProblemDetail {
	t.Helper()
	assert.Equal(t, apierrors.ContentTypeProblemJSON, rec.Header().Get("Content-Type"))
	var problem apierrors.ProblemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	return problem
}

func TestCheckoutAndCancelRoundTrip(t *testing.T) {
	f := newServerFixture(t)
	f.stock(t, 5)

	f.fillCart(t, "chat-100", 2)
	require.Equal(t, 5, f.remaining(t), "carts do not reserve")

	rec := f.do(t, http.MethodPost, "/v1/carts/chat-100/checkout", f.customer.ID, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var order struct {
		ID     int64           `json:"id"`
		UserID int64           `json:"userId"`
		Status string          `json:"status"`
		Total  decimal.Decimal `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &order))
	assert.Equal(t, f.customer.ID, order.UserID)
	assert.Equal(t, "pending", order.Status)
	assert.True(t, order.Total.Equal(decimal.RequireFromString("9.00")))
	require.Equal(t, 3, f.remaining(t))

	rec = f.do(t, http.MethodGet, "/v1/carts/chat-100", f.customer.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"lines":[]`)

	rec = f.do(t, http.MethodPost, "/v1/orders/"+strconv.FormatInt(order.ID, 10)+"/cancel", f.customer.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"status":"cancelled"`)
	require.Equal(t, 5, f.remaining(t))
}

func TestCheckoutShortfallIsConflict(t *testing.T) {
	f := newServerFixture(t)
	f.stock(t, 3)
	f.fillCart(t, "chat-100", 3)
	require.NoError(t, f.menu.Ledger().Reserve(context.Background(), menudomain.NewEntryKey(menudomain.GlobalScope, f.soup.ID, serveDay), 2))

	rec := f.do(t, http.MethodPost, "/v1/carts/chat-100/checkout", f.customer.ID, nil)
	require.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
	problem := decodeProblem(t, rec)
	assert.Equal(t, TypeInsufficientAvailability, problem.Type)
	assert.Contains(t, problem.Extensions, "shortfalls")
	require.Equal(t, 1, f.remaining(t))

	rec = f.do(t, http.MethodGet, "/v1/carts/chat-100", f.customer.ID, nil)
	assert.Contains(t, rec.Body.String(), `"quantity":3`, "a failed checkout keeps the cart")
}

func TestCheckoutAfterCutoffIsUnprocessable(t *testing.T) {
	f := newServerFixture(t)
	f.stock(t, 3)
	f.fillCart(t, "chat-100", 1)
	_, err := f.deadlines.Create(context.Background(), serveDay, serveDay.Add(8*time.Hour), deadlinedomain.Scope{})
	require.NoError(t, err)

	rec := f.do(t, http.MethodPost, "/v1/carts/chat-100/checkout", f.customer.ID, nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
	assert.Equal(t, TypeDeadlinePassed, decodeProblem(t, rec).Type)
	require.Equal(t, 3, f.remaining(t))
}

func TestCartIsPrivateToItsOwner(t *testing.T) {
	f := newServerFixture(t)
	f.stock(t, 5)
	f.fillCart(t, "chat-100", 2)
	dishPath := "/v1/carts/chat-100/lines/" + strconv.FormatInt(f.soup.ID, 10)

	rec := f.do(t, http.MethodGet, "/v1/carts/chat-100", f.other.ID, nil)
	require.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())
	assert.Equal(t, apierrors.TypeNotFound, decodeProblem(t, rec).Type)

	rec = f.do(t, http.MethodPut, dishPath, f.other.ID, map[string]any{"quantity": 5})
	require.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())
	rec = f.do(t, http.MethodPost, dishPath+"/increment", f.other.ID, nil)
	require.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())
	rec = f.do(t, http.MethodDelete, "/v1/carts/chat-100", f.other.ID, nil)
	require.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodPost, "/v1/carts/chat-100/checkout", f.other.ID, nil)
	require.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())
	require.Equal(t, 5, f.remaining(t), "nothing was reserved")

	rec = f.do(t, http.MethodGet, "/v1/carts/chat-100", f.customer.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"quantity":2`)

	rec = f.do(t, http.MethodPost, "/v1/carts/chat-100/checkout", f.customer.ID, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Equal(t, 3, f.remaining(t))
}

func TestAuthentication(t *testing.T) {
	f := newServerFixture(t)

	rec := f.do(t, http.MethodGet, "/v1/orders", 0, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	decodeProblem(t, rec)

	rec = f.do(t, http.MethodGet, "/v1/orders", 4242, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodGet, "/v1/admin/orders", f.customer.ID, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodGet, "/v1/admin/orders", f.manager.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestManagerChangesStatus(t *testing.T) {
	f := newServerFixture(t)
	f.stock(t, 4)
	f.fillCart(t, "chat-100", 1)
	rec := f.do(t, http.MethodPost, "/v1/carts/chat-100/checkout", f.customer.ID, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var order struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &order))
	path := "/v1/admin/orders/" + strconv.FormatInt(order.ID, 10) + "/status"

	rec = f.do(t, http.MethodPut, path, f.manager.ID, map[string]string{"status": "bogus"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPut, path, f.manager.ID, map[string]string{"status": "cancelled"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, 4, f.remaining(t))

	rec = f.do(t, http.MethodGet, "/v1/admin/orders?status=cancelled", f.manager.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listed []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
}

func TestBadRequests(t *testing.T) {
	f := newServerFixture(t)

	rec := f.do(t, http.MethodGet, "/v1/menu?date=10.06.2026", 0, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodGet, "/v1/menu", 0, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPut, "/v1/carts/chat-100/lines/"+strconv.FormatInt(f.soup.ID, 10), f.customer.ID, map[string]any{"quantity": 1})
	require.Equal(t, http.StatusBadRequest, rec.Code, "no target date selected")
	assert.Equal(t, apierrors.TypeValidation, decodeProblem(t, rec).Type)

	rec = f.do(t, http.MethodGet, "/v1/orders/999", f.customer.ID, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeadlineWindow(t *testing.T) {
	f := newServerFixture(t)
	rec := f.do(t, http.MethodPost, "/v1/admin/deadlines", f.manager.ID, map[string]any{
		"date":   "2026-06-10",
		"cutoff": serveDay.Add(12 * time.Hour).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/v1/deadlines/window?date=2026-06-10", 0, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var window struct {
		CanOrder  bool       `json:"canOrder"`
		CanCancel bool       `json:"canCancel"`
		Cutoff    *time.Time `json:"cutoff"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &window))
	assert.True(t, window.CanOrder)
	assert.True(t, window.CanCancel)
	require.NotNil(t, window.Cutoff)
}
