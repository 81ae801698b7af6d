package application

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	cartmemory "github.com/Apurer/canteen-orders/internal/domains/cart/adapters/memory"
	"github.com/Apurer/canteen-orders/internal/domains/cart/domain"
	"github.com/Apurer/canteen-orders/internal/domains/cart/ports"
	menumemory "github.com/Apurer/canteen-orders/internal/domains/menu/adapters/memory"
	menuapp "github.com/Apurer/canteen-orders/internal/domains/menu/application"
	menudomain "github.com/Apurer/canteen-orders/internal/domains/menu/domain"
	menuports "github.com/Apurer/canteen-orders/internal/domains/menu/ports"
	orderdomain "github.com/Apurer/canteen-orders/internal/domains/orders/domain"
	orderports "github.com/Apurer/canteen-orders/internal/domains/orders/ports"
)

var cartDay = time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC)

const owner int64 = 77

type fakeCheckout struct {
	inputs []orderports.FinalizeInput
	err    error
}

func (f *fakeCheckout) Finalize(_ context.Context, input orderports.FinalizeInput) (*orderdomain.Order, error) {
	f.inputs = append(f.inputs, input)
	if f.err != nil {
		return nil, f.err
	}
	return &orderdomain.Order{ID: 1, UserID: input.UserID, OrderDate: input.Date, Status: orderdomain.StatusPending}, nil
}

type cartFixture struct {
	svc      *Service
	menu     *menuapp.Service
	checkout *fakeCheckout
	soup     *menudomain.Dish
}

func newCartFixture(t *testing.T, soupStock int) *cartFixture {
	t.Helper()
	ctx := context.Background()
	menu := menuapp.NewService(menumemory.NewRepository(), menumemory.NewDishRepository())
	soup, err := menudomain.NewDish(0, "Soup", decimal.RequireFromString("4.50"))
	require.NoError(t, err)
	soup, err = menu.SaveDish(ctx, soup)
	require.NoError(t, err)
	_, err = menu.LoadMenu(ctx, menudomain.GlobalScope, cartDay, []menuports.StockLine{{DishID: soup.ID, Quantity: soupStock}})
	require.NoError(t, err)

	checkout := &fakeCheckout{}
	svc := NewService(cartmemory.NewSessionStore(time.Hour), menu, menu, checkout)
	return &cartFixture{svc: svc, menu: menu, checkout: checkout, soup: soup}
}

func TestAddOrReplace_UsesLiveAvailabilityAndPrice(t *testing.T) {
	f := newCartFixture(t, 3)
	ctx := context.Background()
	_, err := f.svc.SelectTarget(ctx, "s1", owner, cartDay, nil, nil)
	require.NoError(t, err)

	cart, err := f.svc.AddOrReplace(ctx, "s1", owner, f.soup.ID, 3)
	require.NoError(t, err)
	require.Equal(t, "Soup", cart.Lines[0].Name)
	require.True(t, cart.Lines[0].Price.Equal(f.soup.Price))

	_, err = f.svc.AddOrReplace(ctx, "s1", owner, f.soup.ID, 4)
	require.ErrorIs(t, err, menudomain.ErrInsufficientAvailability)

	available, err := f.menu.Available(ctx, menudomain.NewEntryKey(menudomain.GlobalScope, f.soup.ID, cartDay))
	require.NoError(t, err)
	require.Equal(t, 3, available, "cart edits never touch the ledger")
}

func TestAddOrReplace_RequiresTarget(t *testing.T) {
	f := newCartFixture(t, 3)
	_, err := f.svc.AddOrReplace(context.Background(), "s1", owner, f.soup.ID, 1)
	require.ErrorIs(t, err, ErrInvalidInput)
	require.ErrorIs(t, err, domain.ErrNoTarget)
}

func TestAddOrReplace_DishOffMenuHasNothingFree(t *testing.T) {
	f := newCartFixture(t, 3)
	ctx := context.Background()
	f.soup.Available = false
	_, err := f.menu.SaveDish(ctx, f.soup)
	require.NoError(t, err)
	_, err = f.svc.SelectTarget(ctx, "s1", owner, cartDay, nil, nil)
	require.NoError(t, err)

	_, err = f.svc.AddOrReplace(ctx, "s1", owner, f.soup.ID, 1)
	require.ErrorIs(t, err, menudomain.ErrInsufficientAvailability)
}

func TestIncrementDecrementRemove(t *testing.T) {
	f := newCartFixture(t, 2)
	ctx := context.Background()
	_, err := f.svc.SelectTarget(ctx, "s1", owner, cartDay, nil, nil)
	require.NoError(t, err)
	_, err = f.svc.AddOrReplace(ctx, "s1", owner, f.soup.ID, 1)
	require.NoError(t, err)

	cart, err := f.svc.Increment(ctx, "s1", owner, f.soup.ID, 5)
	require.NoError(t, err)
	require.Equal(t, 3, cart.Quantity(f.soup.ID), "ceiling is available plus held")

	cart, err = f.svc.Decrement(ctx, "s1", owner, f.soup.ID, 1)
	require.NoError(t, err)
	require.Equal(t, 2, cart.Quantity(f.soup.ID))

	count, total, err := f.svc.Totals(ctx, "s1", owner)
	require.NoError(t, err)
	require.Equal(t, 1, count)
	require.True(t, total.Equal(decimal.RequireFromString("9.00")))

	cart, err = f.svc.Remove(ctx, "s1", owner, f.soup.ID)
	require.NoError(t, err)
	require.Empty(t, cart.Lines)
	require.False(t, cart.HasTarget())

	_, err = f.svc.Increment(ctx, "s1", owner, f.soup.ID, 1)
	require.ErrorIs(t, err, domain.ErrLineNotFound)
}

func TestSessionsAreIsolated(t *testing.T) {
	f := newCartFixture(t, 5)
	ctx := context.Background()
	_, err := f.svc.SelectTarget(ctx, "a", owner, cartDay, nil, nil)
	require.NoError(t, err)
	_, err = f.svc.AddOrReplace(ctx, "a", owner, f.soup.ID, 2)
	require.NoError(t, err)

	other, err := f.svc.Get(ctx, "b", owner)
	require.NoError(t, err)
	require.Empty(t, other.Lines)
}

func TestCheckout_ClearsOnlyOnSuccess(t *testing.T) {
	f := newCartFixture(t, 5)
	ctx := context.Background()
	cafe := int64(0)
	_, err := f.svc.SelectTarget(ctx, "s1", owner, cartDay, &cafe, nil)
	require.NoError(t, err)
	_, err = f.svc.AddOrReplace(ctx, "s1", owner, f.soup.ID, 2)
	require.NoError(t, err)

	f.checkout.err = menudomain.NewInsufficientAvailability(f.soup.ID, 2, 1)
	_, err = f.svc.Checkout(ctx, "s1", owner)
	require.Error(t, err)
	cart, err := f.svc.Get(ctx, "s1", owner)
	require.NoError(t, err)
	require.Len(t, cart.Lines, 1)

	f.checkout.err = nil
	order, err := f.svc.Checkout(ctx, "s1", owner)
	require.NoError(t, err)
	require.Equal(t, owner, order.UserID)

	last := f.checkout.inputs[len(f.checkout.inputs)-1]
	require.Equal(t, cartDay, last.Date)
	require.Equal(t, []orderports.Line{{DishID: f.soup.ID, Quantity: 2, Price: f.soup.Price}}, last.Lines)

	cart, err = f.svc.Get(ctx, "s1", owner)
	require.NoError(t, err)
	require.Empty(t, cart.Lines)
}

func TestCheckout_EmptyCart(t *testing.T) {
	f := newCartFixture(t, 5)
	_, err := f.svc.Checkout(context.Background(), "s1", owner)
	require.ErrorIs(t, err, domain.ErrEmptyCart)
	require.ErrorIs(t, err, ErrInvalidInput)
	require.Empty(t, f.checkout.inputs)
}

func TestClear(t *testing.T) {
	f := newCartFixture(t, 5)
	ctx := context.Background()
	_, err := f.svc.SelectTarget(ctx, "s1", owner, cartDay, nil, nil)
	require.NoError(t, err)
	_, err = f.svc.AddOrReplace(ctx, "s1", owner, f.soup.ID, 1)
	require.NoError(t, err)

	require.NoError(t, f.svc.Clear(ctx, "s1", owner))
	require.NoError(t, f.svc.Clear(ctx, "s1", owner), "clearing twice is harmless")

	cart, err := f.svc.Get(ctx, "s1", owner)
	require.NoError(t, err)
	require.Empty(t, cart.Lines)
	require.False(t, cart.HasTarget())

	require.ErrorIs(t, f.svc.Clear(ctx, "", owner), ErrInvalidInput)
}

func TestSessionBelongsToFirstWriter(t *testing.T) {
	f := newCartFixture(t, 5)
	ctx := context.Background()
	const stranger int64 = 88
	_, err := f.svc.SelectTarget(ctx, "s1", owner, cartDay, nil, nil)
	require.NoError(t, err)
	_, err = f.svc.AddOrReplace(ctx, "s1", owner, f.soup.ID, 2)
	require.NoError(t, err)

	_, err = f.svc.Get(ctx, "s1", stranger)
	require.ErrorIs(t, err, ports.ErrNotFound)
	_, _, err = f.svc.Totals(ctx, "s1", stranger)
	require.ErrorIs(t, err, ports.ErrNotFound)
	_, err = f.svc.AddOrReplace(ctx, "s1", stranger, f.soup.ID, 1)
	require.ErrorIs(t, err, ports.ErrNotFound)
	_, err = f.svc.Increment(ctx, "s1", stranger, f.soup.ID, 1)
	require.ErrorIs(t, err, ports.ErrNotFound)
	_, err = f.svc.Remove(ctx, "s1", stranger, f.soup.ID)
	require.ErrorIs(t, err, ports.ErrNotFound)
	_, err = f.svc.SelectTarget(ctx, "s1", stranger, cartDay.AddDate(0, 0, 1), nil, nil)
	require.ErrorIs(t, err, ports.ErrNotFound)
	require.ErrorIs(t, f.svc.Clear(ctx, "s1", stranger), ports.ErrNotFound)
	_, err = f.svc.Checkout(ctx, "s1", stranger)
	require.ErrorIs(t, err, ports.ErrNotFound)
	require.Empty(t, f.checkout.inputs, "a foreign checkout never reaches the orders service")

	cart, err := f.svc.Get(ctx, "s1", owner)
	require.NoError(t, err)
	require.Equal(t, owner, cart.OwnerID)
	require.Equal(t, cartDay, cart.Date)
	require.Equal(t, 2, cart.Quantity(f.soup.ID))
}

func TestGet_RequiresUser(t *testing.T) {
	f := newCartFixture(t, 5)
	_, err := f.svc.Get(context.Background(), "s1", 0)
	require.ErrorIs(t, err, ErrInvalidInput)
	require.ErrorIs(t, err, domain.ErrMissingOwner)
}
