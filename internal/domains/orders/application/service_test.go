package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"pgregory.net/rapid"

	deadlinememory "github.com/Apurer/canteen-orders/internal/domains/deadlines/adapters/memory"
	deadlineapp "github.com/Apurer/canteen-orders/internal/domains/deadlines/application"
	deadlinedomain "github.com/Apurer/canteen-orders/internal/domains/deadlines/domain"
	menumemory "github.com/Apurer/canteen-orders/internal/domains/menu/adapters/memory"
	menuapp "github.com/Apurer/canteen-orders/internal/domains/menu/application"
	menudomain "github.com/Apurer/canteen-orders/internal/domains/menu/domain"
	menuports "github.com/Apurer/canteen-orders/internal/domains/menu/ports"
	ordermemory "github.com/Apurer/canteen-orders/internal/domains/orders/adapters/memory"
	"github.com/Apurer/canteen-orders/internal/domains/orders/domain"
	"github.com/Apurer/canteen-orders/internal/domains/orders/ports"
	usersmemory "github.com/Apurer/canteen-orders/internal/domains/users/adapters/memory"
	usersapp "github.com/Apurer/canteen-orders/internal/domains/users/application"
	usersdomain "github.com/Apurer/canteen-orders/internal/domains/users/domain"
	usersports "github.com/Apurer/canteen-orders/internal/domains/users/ports"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var orderDay = time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC)

const managerChat int64 = 900

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type sentMessage struct {
	recipient int64
	message   string
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (n *recordingNotifier) Notify(_ context.Context, recipient int64, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentMessage{recipient: recipient, message: message})
	return n.err
}

func (n *recordingNotifier) Sent() []sentMessage {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]sentMessage(nil), n.sent...)
}

type fixture struct {
	svc       *Service
	menu      *menuapp.Service
	deadlines *deadlineapp.Service
	users     *usersapp.Service
	notifier  *recordingNotifier
	clock     *testClock
	customer  *usersdomain.User
	other     *usersdomain.User
	manager   *usersdomain.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	clock := &testClock{now: orderDay.Add(9 * time.Hour)}

	menuRepo := menumemory.NewRepository()
	menuSvc := menuapp.NewService(menuRepo, menumemory.NewDishRepository())
	deadlines := deadlineapp.NewService(deadlinememory.NewRepository(), deadlineapp.WithClock(clock.Now))
	users := usersapp.NewService(usersmemory.NewRepository(), managerChat)
	notifier := &recordingNotifier{}

	svc := NewService(
		ordermemory.NewRepository(menuRepo),
		menuSvc.Ledger(),
		deadlines,
		users,
		menuSvc,
		WithNotifier(notifier),
		WithClock(clock.Now),
	)

	register := func(chatID int64, name string) *usersdomain.User {
		user, err := users.Register(ctx, usersports.RegisterInput{ChatID: chatID, FullName: name})
		require.NoError(t, err)
		return user
	}
	return &fixture{
		svc:       svc,
		menu:      menuSvc,
		deadlines: deadlines,
		users:     users,
		notifier:  notifier,
		clock:     clock,
		customer:  register(100, "Ada Customer"),
		other:     register(101, "Bob Customer"),
		manager:   register(managerChat, "Mia Manager"),
	}
}

// dish creates a dish and stocks it on orderDay in the global scope.
func (f *fixture) dish(t *testing.T, name, price string, stock int) *menudomain.Dish {
	t.Helper()
	ctx := context.Background()
	dish, err := menudomain.NewDish(0, name, decimal.RequireFromString(price))
	require.NoError(t, err)
	dish, err = f.menu.SaveDish(ctx, dish)
	require.NoError(t, err)
	_, err = f.menu.LoadMenu(ctx, menudomain.GlobalScope, orderDay, []menuports.StockLine{{DishID: dish.ID, Quantity: stock}})
	require.NoError(t, err)
	return dish
}

func (f *fixture) available(t *testing.T, dishID int64) int {
	t.Helper()
	available, err := f.menu.Available(context.Background(), menudomain.NewEntryKey(menudomain.GlobalScope, dishID, orderDay))
	require.NoError(t, err)
	return available
}

func finalizeInput(userID int64, lines ...ports.Line) ports.FinalizeInput {
	return ports.FinalizeInput{UserID: userID, Date: orderDay, Lines: lines}
}

func line(dish *menudomain.Dish, quantity int) ports.Line {
	return ports.Line{DishID: dish.ID, Quantity: quantity, Price: dish.Price}
}

func TestFinalize_ReservesAndCreatesPendingOrder(t *testing.T) {
	f := newFixture(t)
	soup := f.dish(t, "Soup", "4.50", 5)

	order, err := f.svc.Finalize(context.Background(), finalizeInput(f.customer.ID, line(soup, 3)))
	require.NoError(t, err)

	require.Equal(t, 2, f.available(t, soup.ID))
	require.Equal(t, domain.StatusPending, order.Status)
	require.Len(t, order.Items, 1)
	require.Equal(t, 3, order.Items[0].Quantity)
	require.True(t, order.Total.Equal(decimal.RequireFromString("13.50")))

	sent := f.notifier.Sent()
	require.Len(t, sent, 1)
	require.Equal(t, managerChat, sent[0].recipient)
	require.Contains(t, sent[0].message, "Ada Customer")
}

func TestFinalize_ConcurrentCommitsSerializeOnInventory(t *testing.T) {
	f := newFixture(t)
	soup := f.dish(t, "Soup", "4.50", 5)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, user := range []*usersdomain.User{f.customer, f.other} {
		wg.Add(1)
		go func(i int, userID int64) {
			defer wg.Done()
			_, errs[i] = f.svc.Finalize(context.Background(), finalizeInput(userID, line(soup, 3)))
		}(i, user.ID)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		require.ErrorIs(t, err, menudomain.ErrInsufficientAvailability)
	}
	require.Equal(t, 1, succeeded)
	require.Equal(t, 2, f.available(t, soup.ID))
}

func TestFinalize_AllOrNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	soup := f.dish(t, "Soup", "4.50", 5)
	salad := f.dish(t, "Salad", "3.00", 1)

	_, err := f.svc.Finalize(ctx, finalizeInput(f.customer.ID, line(soup, 2), line(salad, 2)))
	var shortfall *menudomain.InsufficientAvailabilityError
	require.True(t, errors.As(err, &shortfall))
	require.Equal(t, []menudomain.Shortfall{{DishID: salad.ID, Requested: 2, Available: 1}}, shortfall.Shortfalls)

	require.Equal(t, 5, f.available(t, soup.ID))
	require.Equal(t, 1, f.available(t, salad.ID))
	orders, err := f.svc.List(ctx, ports.Filter{})
	require.NoError(t, err)
	require.Empty(t, orders)
}

func TestFinalize_RejectsSecondPendingOrderForDate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	soup := f.dish(t, "Soup", "4.50", 5)

	_, err := f.svc.Finalize(ctx, finalizeInput(f.customer.ID, line(soup, 1)))
	require.NoError(t, err)
	_, err = f.svc.Finalize(ctx, finalizeInput(f.customer.ID, line(soup, 1)))
	require.ErrorIs(t, err, domain.ErrDuplicateOrder)
	require.Equal(t, 4, f.available(t, soup.ID))
}

func TestFinalize_DeadlineBoundary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	soup := f.dish(t, "Soup", "4.50", 5)
	_, err := f.deadlines.Create(ctx, orderDay, orderDay.Add(12*time.Hour), deadlinedomain.Scope{})
	require.NoError(t, err)

	f.clock.Set(orderDay.Add(12*time.Hour + time.Minute))
	_, err = f.svc.Finalize(ctx, finalizeInput(f.other.ID, line(soup, 1)))
	require.ErrorIs(t, err, deadlinedomain.ErrDeadlinePassed)
	require.Equal(t, 5, f.available(t, soup.ID))

	f.clock.Set(orderDay.Add(11*time.Hour + 59*time.Minute))
	_, err = f.svc.Finalize(ctx, finalizeInput(f.customer.ID, line(soup, 1)))
	require.NoError(t, err)
}

func TestFinalize_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	soup := f.dish(t, "Soup", "4.50", 50)

	cases := map[string]ports.FinalizeInput{
		"empty cart":     finalizeInput(f.customer.ID),
		"zero quantity":  finalizeInput(f.customer.ID, line(soup, 0)),
		"over line cap":  finalizeInput(f.customer.ID, line(soup, DefaultLimits.MaxLineQuantity+1)),
		"missing date":   {UserID: f.customer.ID, Lines: []ports.Line{line(soup, 1)}},
		"date in past":   {UserID: f.customer.ID, Date: orderDay.AddDate(0, 0, -1), Lines: []ports.Line{line(soup, 1)}},
		"too far ahead":  {UserID: f.customer.ID, Date: orderDay.AddDate(0, 0, 31), Lines: []ports.Line{line(soup, 1)}},
		"negative price": finalizeInput(f.customer.ID, ports.Line{DishID: soup.ID, Quantity: 1, Price: decimal.NewFromInt(-1)}),
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.Finalize(ctx, input)
			require.ErrorIs(t, err, ErrInvalidInput)
		})
	}
	require.Equal(t, 50, f.available(t, soup.ID))
}

func TestFinalize_LineCapAppliesPerDish(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	soup := f.dish(t, "Soup", "4.50", 50)
	half := DefaultLimits.MaxLineQuantity/2 + 1

	_, err := f.svc.Finalize(ctx, finalizeInput(f.customer.ID, line(soup, half), line(soup, half)))
	require.ErrorIs(t, err, ErrInvalidInput)
	require.Equal(t, 50, f.available(t, soup.ID))

	order, err := f.svc.Finalize(ctx, finalizeInput(f.customer.ID, line(soup, half), line(soup, DefaultLimits.MaxLineQuantity-half)))
	require.NoError(t, err)
	require.Equal(t, DefaultLimits.MaxLineQuantity, order.DishQuantity(soup.ID))
	require.Equal(t, 50-DefaultLimits.MaxLineQuantity, f.available(t, soup.ID))
}

func TestFinalize_BlockedUserIsForbidden(t *testing.T) {
	f := newFixture(t)
	soup := f.dish(t, "Soup", "4.50", 5)
	_, err := f.users.SetBlocked(context.Background(), f.customer.ID, true)
	require.NoError(t, err)

	_, err = f.svc.Finalize(context.Background(), finalizeInput(f.customer.ID, line(soup, 1)))
	require.ErrorIs(t, err, ErrForbidden)
}

func TestFinalize_NotificationFailureKeepsOrder(t *testing.T) {
	f := newFixture(t)
	f.notifier.err = errors.New("chat unreachable")
	soup := f.dish(t, "Soup", "4.50", 5)

	order, err := f.svc.Finalize(context.Background(), finalizeInput(f.customer.ID, line(soup, 1)))
	require.NoError(t, err)
	require.NotZero(t, order.ID)
	require.Equal(t, 4, f.available(t, soup.ID))
}

func TestCancel_ReleasesInventory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	soup := f.dish(t, "Soup", "4.50", 5)
	order, err := f.svc.Finalize(ctx, finalizeInput(f.customer.ID, line(soup, 3)))
	require.NoError(t, err)
	require.Equal(t, 2, f.available(t, soup.ID))

	cancelled, err := f.svc.Cancel(ctx, order.ID, f.customer.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusCancelled, cancelled.Status)
	require.Equal(t, 5, f.available(t, soup.ID))

	_, err = f.svc.Cancel(ctx, order.ID, f.customer.ID)
	require.ErrorIs(t, err, ErrInvalidInput)
	require.Equal(t, 5, f.available(t, soup.ID))
}

func TestCancel_HidesOtherUsersOrders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	soup := f.dish(t, "Soup", "4.50", 5)
	order, err := f.svc.Finalize(ctx, finalizeInput(f.customer.ID, line(soup, 1)))
	require.NoError(t, err)

	_, err = f.svc.Cancel(ctx, order.ID, f.other.ID)
	require.ErrorIs(t, err, ports.ErrNotFound)
	_, err = f.svc.Cancel(ctx, 9999, f.customer.ID)
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestCancel_RejectedAfterDeadline(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	soup := f.dish(t, "Soup", "4.50", 5)
	order, err := f.svc.Finalize(ctx, finalizeInput(f.customer.ID, line(soup, 2)))
	require.NoError(t, err)
	_, err = f.deadlines.Create(ctx, orderDay, orderDay.Add(12*time.Hour), deadlinedomain.Scope{})
	require.NoError(t, err)

	f.clock.Set(orderDay.Add(12 * time.Hour))
	_, err = f.svc.Cancel(ctx, order.ID, f.customer.ID)
	require.ErrorIs(t, err, deadlinedomain.ErrDeadlinePassed)
	require.Equal(t, 3, f.available(t, soup.ID))
}

func TestCancel_CompletedOrderReportsStateBeforeDeadline(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	soup := f.dish(t, "Soup", "4.50", 5)
	order, err := f.svc.Finalize(ctx, finalizeInput(f.customer.ID, line(soup, 2)))
	require.NoError(t, err)
	_, err = f.svc.ChangeStatus(ctx, ports.ChangeStatusInput{OrderID: order.ID, Status: domain.StatusCompleted, ActorID: f.manager.ID})
	require.NoError(t, err)
	_, err = f.deadlines.Create(ctx, orderDay, orderDay.Add(12*time.Hour), deadlinedomain.Scope{})
	require.NoError(t, err)

	f.clock.Set(orderDay.Add(13 * time.Hour))
	_, err = f.svc.Cancel(ctx, order.ID, f.customer.ID)
	require.ErrorIs(t, err, domain.ErrNotCancellable)
	require.ErrorIs(t, err, ErrInvalidInput)
	require.NotErrorIs(t, err, deadlinedomain.ErrDeadlinePassed)
	require.Equal(t, 3, f.available(t, soup.ID))
}

func TestChangeStatus_RequiresManager(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	soup := f.dish(t, "Soup", "4.50", 5)
	order, err := f.svc.Finalize(ctx, finalizeInput(f.customer.ID, line(soup, 1)))
	require.NoError(t, err)

	_, err = f.svc.ChangeStatus(ctx, ports.ChangeStatusInput{OrderID: order.ID, Status: domain.StatusConfirmed, ActorID: f.customer.ID})
	require.ErrorIs(t, err, ErrForbidden)
	_, err = f.svc.ChangeStatus(ctx, ports.ChangeStatusInput{OrderID: order.ID, Status: domain.StatusConfirmed, ActorID: 4242})
	require.ErrorIs(t, err, ErrForbidden)
}

func TestChangeStatus_BypassesDeadlineAndNotifiesOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	soup := f.dish(t, "Soup", "4.50", 5)
	order, err := f.svc.Finalize(ctx, finalizeInput(f.customer.ID, line(soup, 2)))
	require.NoError(t, err)
	_, err = f.deadlines.Create(ctx, orderDay, orderDay.Add(10*time.Hour), deadlinedomain.Scope{})
	require.NoError(t, err)
	f.clock.Set(orderDay.Add(15 * time.Hour))

	updated, err := f.svc.ChangeStatus(ctx, ports.ChangeStatusInput{OrderID: order.ID, Status: domain.StatusCancelled, ActorID: f.manager.ID})
	require.NoError(t, err)
	require.Equal(t, domain.StatusCancelled, updated.Status)
	require.Equal(t, 5, f.available(t, soup.ID))

	sent := f.notifier.Sent()
	require.Equal(t, f.customer.ChatID, sent[len(sent)-1].recipient)
	require.Contains(t, sent[len(sent)-1].message, "cancelled")
}

func TestChangeStatus_LeavingCancelledFailsCleanlyWhenShort(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	soup := f.dish(t, "Soup", "4.50", 5)
	order, err := f.svc.Finalize(ctx, finalizeInput(f.customer.ID, line(soup, 3)))
	require.NoError(t, err)
	_, err = f.svc.Cancel(ctx, order.ID, f.customer.ID)
	require.NoError(t, err)
	_, err = f.svc.Finalize(ctx, finalizeInput(f.other.ID, line(soup, 4)))
	require.NoError(t, err)

	_, err = f.svc.ChangeStatus(ctx, ports.ChangeStatusInput{OrderID: order.ID, Status: domain.StatusConfirmed, ActorID: f.manager.ID})
	require.ErrorIs(t, err, menudomain.ErrInsufficientAvailability)
	require.Equal(t, 1, f.available(t, soup.ID))

	stored, err := f.svc.Get(ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusCancelled, stored.Status)
}

func TestChangeStatus_ReopeningRespectsSinglePendingOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	soup := f.dish(t, "Soup", "4.50", 5)
	first, err := f.svc.Finalize(ctx, finalizeInput(f.customer.ID, line(soup, 1)))
	require.NoError(t, err)
	_, err = f.svc.Cancel(ctx, first.ID, f.customer.ID)
	require.NoError(t, err)
	_, err = f.svc.Finalize(ctx, finalizeInput(f.customer.ID, line(soup, 1)))
	require.NoError(t, err)

	_, err = f.svc.ChangeStatus(ctx, ports.ChangeStatusInput{OrderID: first.ID, Status: domain.StatusPending, ActorID: f.manager.ID})
	require.ErrorIs(t, err, domain.ErrDuplicateOrder)
	require.Equal(t, 4, f.available(t, soup.ID))
}

func TestAddItem_ReservesAndUpdatesTotal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	soup := f.dish(t, "Soup", "4.50", 5)
	bread := f.dish(t, "Bread", "0.75", 2)
	order, err := f.svc.Finalize(ctx, finalizeInput(f.customer.ID, line(soup, 1)))
	require.NoError(t, err)

	updated, err := f.svc.AddItem(ctx, ports.AddItemInput{OrderID: order.ID, UserID: f.customer.ID, DishID: bread.ID, Quantity: 2})
	require.NoError(t, err)
	require.Len(t, updated.Items, 2)
	require.NotZero(t, updated.Items[1].ID)
	require.True(t, updated.Total.Equal(decimal.RequireFromString("6.00")))
	require.Zero(t, f.available(t, bread.ID))

	_, err = f.svc.AddItem(ctx, ports.AddItemInput{OrderID: order.ID, UserID: f.customer.ID, DishID: bread.ID, Quantity: 1})
	require.ErrorIs(t, err, menudomain.ErrInsufficientAvailability)
	stored, err := f.svc.Get(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 2)
	require.True(t, stored.Total.Equal(decimal.RequireFromString("6.00")))
}

func TestAddItem_OnlyWhilePending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	soup := f.dish(t, "Soup", "4.50", 5)
	order, err := f.svc.Finalize(ctx, finalizeInput(f.customer.ID, line(soup, 1)))
	require.NoError(t, err)
	_, err = f.svc.ChangeStatus(ctx, ports.ChangeStatusInput{OrderID: order.ID, Status: domain.StatusConfirmed, ActorID: f.manager.ID})
	require.NoError(t, err)

	_, err = f.svc.AddItem(ctx, ports.AddItemInput{OrderID: order.ID, UserID: f.customer.ID, DishID: soup.ID, Quantity: 1})
	require.ErrorIs(t, err, domain.ErrNotEditable)
	require.Equal(t, 4, f.available(t, soup.ID))
}

func TestAddItem_DeadlineBoundary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	soup := f.dish(t, "Soup", "4.50", 5)
	bread := f.dish(t, "Bread", "0.75", 4)
	order, err := f.svc.Finalize(ctx, finalizeInput(f.customer.ID, line(soup, 1)))
	require.NoError(t, err)
	_, err = f.deadlines.Create(ctx, orderDay, orderDay.Add(12*time.Hour), deadlinedomain.Scope{})
	require.NoError(t, err)

	f.clock.Set(orderDay.Add(11*time.Hour + 59*time.Minute))
	updated, err := f.svc.AddItem(ctx, ports.AddItemInput{OrderID: order.ID, UserID: f.customer.ID, DishID: bread.ID, Quantity: 1})
	require.NoError(t, err)
	require.Len(t, updated.Items, 2)
	require.Equal(t, 3, f.available(t, bread.ID))

	f.clock.Set(orderDay.Add(12 * time.Hour))
	_, err = f.svc.AddItem(ctx, ports.AddItemInput{OrderID: order.ID, UserID: f.customer.ID, DishID: bread.ID, Quantity: 2})
	require.ErrorIs(t, err, deadlinedomain.ErrDeadlinePassed)
	require.Equal(t, 3, f.available(t, bread.ID))
	require.Equal(t, 4, f.available(t, soup.ID))

	stored, err := f.svc.Get(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 2)
}

func TestAddItem_LineCapCountsItemsAlreadyHeld(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	soup := f.dish(t, "Soup", "4.50", 50)
	order, err := f.svc.Finalize(ctx, finalizeInput(f.customer.ID, line(soup, DefaultLimits.MaxLineQuantity-1)))
	require.NoError(t, err)

	_, err = f.svc.AddItem(ctx, ports.AddItemInput{OrderID: order.ID, UserID: f.customer.ID, DishID: soup.ID, Quantity: 2})
	require.ErrorIs(t, err, ErrInvalidInput)
	require.Equal(t, 50-DefaultLimits.MaxLineQuantity+1, f.available(t, soup.ID))

	_, err = f.svc.AddItem(ctx, ports.AddItemInput{OrderID: order.ID, UserID: f.customer.ID, DishID: soup.ID, Quantity: 1})
	require.NoError(t, err)
}

func TestRemoveItem_ReleasesAndReducesTotal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	soup := f.dish(t, "Soup", "4.50", 5)
	bread := f.dish(t, "Bread", "0.75", 4)
	order, err := f.svc.Finalize(ctx, finalizeInput(f.customer.ID, line(soup, 2), line(bread, 3)))
	require.NoError(t, err)
	require.True(t, order.Total.Equal(decimal.RequireFromString("11.25")))

	var breadItem domain.Item
	for _, item := range order.Items {
		if item.DishID == bread.ID {
			breadItem = item
		}
	}
	updated, err := f.svc.RemoveItem(ctx, ports.RemoveItemInput{OrderID: order.ID, UserID: f.customer.ID, ItemID: breadItem.ID})
	require.NoError(t, err)
	require.True(t, updated.Total.Equal(order.Total.Sub(breadItem.Subtotal())))
	require.Len(t, updated.Items, 1)
	require.Equal(t, 4, f.available(t, bread.ID))
	require.Equal(t, 3, f.available(t, soup.ID))

	_, err = f.svc.RemoveItem(ctx, ports.RemoveItemInput{OrderID: order.ID, UserID: f.customer.ID, ItemID: breadItem.ID})
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestList_Filters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	soup := f.dish(t, "Soup", "4.50", 5)
	bread := f.dish(t, "Bread", "0.75", 5)
	_, err := f.svc.Finalize(ctx, finalizeInput(f.customer.ID, line(soup, 1)))
	require.NoError(t, err)
	_, err = f.svc.Finalize(ctx, finalizeInput(f.other.ID, line(bread, 1)))
	require.NoError(t, err)

	mine, err := f.svc.ListForUser(ctx, f.customer.ID, ports.Filter{})
	require.NoError(t, err)
	require.Len(t, mine, 1)

	withBread, err := f.svc.List(ctx, ports.Filter{DishIDs: []int64{bread.ID}})
	require.NoError(t, err)
	require.Len(t, withBread, 1)
	require.Equal(t, f.other.ID, withBread[0].UserID)

	bogus := domain.Status("lost")
	_, err = f.svc.List(ctx, ports.Filter{Status: &bogus})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestCancelRestoreRoundTripConservesInventory(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		f := newFixture(t)
		ctx := context.Background()
		stock := rapid.IntRange(1, 40).Draw(rt, "stock")
		quantity := rapid.IntRange(1, min(stock, DefaultLimits.MaxLineQuantity)).Draw(rt, "quantity")
		soup := f.dish(t, "Soup", "4.50", stock)

		order, err := f.svc.Finalize(ctx, finalizeInput(f.customer.ID, line(soup, quantity)))
		require.NoError(rt, err)
		require.Equal(rt, stock-quantity, f.available(t, soup.ID))

		_, err = f.svc.ChangeStatus(ctx, ports.ChangeStatusInput{OrderID: order.ID, Status: domain.StatusCancelled, ActorID: f.manager.ID})
		require.NoError(rt, err)
		require.Equal(rt, stock, f.available(t, soup.ID))

		_, err = f.svc.ChangeStatus(ctx, ports.ChangeStatusInput{OrderID: order.ID, Status: domain.StatusCompleted, ActorID: f.manager.ID})
		require.NoError(rt, err)
		require.Equal(rt, stock-quantity, f.available(t, soup.ID))
	})
}
