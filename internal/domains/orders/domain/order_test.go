package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	menudomain "github.com/Apurer/canteen-orders/internal/domains/menu/domain"
)

var day = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

func price(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func requireTotalMatchesItems(t *testing.T, o *Order) {
	t.Helper()
	sum := decimal.Zero
	for _, item := range o.Items {
		sum = sum.Add(item.Subtotal())
	}
	require.True(t, sum.Equal(o.Total), "total %s != sum %s", o.Total, sum)
}

func TestTransition_Table(t *testing.T) {
	statuses := []Status{StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled}
	for _, from := range statuses {
		for _, to := range statuses {
			effect, err := Transition(from, to)
			require.NoError(t, err)
			switch {
			case from == to:
				require.Equal(t, EffectNone, effect, "%s->%s", from, to)
			case to == StatusCancelled:
				require.Equal(t, EffectRelease, effect, "%s->%s", from, to)
			case from == StatusCancelled:
				require.Equal(t, EffectReserve, effect, "%s->%s", from, to)
			default:
				require.Equal(t, EffectNone, effect, "%s->%s", from, to)
			}
		}
	}

	_, err := Transition(StatusPending, Status("shipped"))
	require.ErrorIs(t, err, ErrInvalidStatus)
}

func TestNewOrder_ComputesTotalAndDefaults(t *testing.T) {
	order, err := NewOrder(1, day.Add(15*time.Hour), nil, nil, []Item{
		{DishID: 1, Quantity: 3, Price: price("4.50")},
		{DishID: 2, Quantity: 1, Price: price("1.25")},
	})
	require.NoError(t, err)
	require.Equal(t, StatusPending, order.Status)
	require.Equal(t, day, order.OrderDate)
	require.True(t, order.Total.Equal(price("14.75")))
	requireTotalMatchesItems(t, order)
}

func TestNewOrder_Validation(t *testing.T) {
	line := []Item{{DishID: 1, Quantity: 1, Price: price("1")}}

	_, err := NewOrder(0, day, nil, nil, line)
	require.ErrorIs(t, err, ErrInvalidUser)
	_, err = NewOrder(1, time.Time{}, nil, nil, line)
	require.ErrorIs(t, err, ErrMissingDate)
	_, err = NewOrder(1, day, nil, nil, nil)
	require.ErrorIs(t, err, ErrEmptyOrder)
	_, err = NewOrder(1, day, nil, nil, []Item{{DishID: 1, Quantity: 0, Price: price("1")}})
	require.ErrorIs(t, err, ErrInvalidQuantity)
	_, err = NewOrder(1, day, nil, nil, []Item{{DishID: 1, Quantity: 1, Price: price("-1")}})
	require.ErrorIs(t, err, ErrInvalidPrice)
}

func TestAddAndRemoveItem_KeepTotalInvariant(t *testing.T) {
	order, err := NewOrder(1, day, nil, nil, []Item{{ID: 1, DishID: 1, Quantity: 2, Price: price("3.10")}})
	require.NoError(t, err)

	require.NoError(t, order.AddItem(Item{ID: 2, DishID: 2, Quantity: 3, Price: price("0.99")}))
	requireTotalMatchesItems(t, order)
	require.True(t, order.Total.Equal(price("9.17")))

	removed, err := order.RemoveItem(1)
	require.NoError(t, err)
	require.Equal(t, int64(1), removed.DishID)
	requireTotalMatchesItems(t, order)
	require.True(t, order.Total.Equal(price("2.97")))

	_, err = order.RemoveItem(1)
	require.ErrorIs(t, err, ErrItemNotFound)
}

func TestDishQuantity_SumsAcrossItems(t *testing.T) {
	order, err := NewOrder(1, day, nil, nil, []Item{
		{DishID: 1, Quantity: 2, Price: price("3.10")},
		{DishID: 2, Quantity: 1, Price: price("0.99")},
		{DishID: 1, Quantity: 4, Price: price("3.10")},
	})
	require.NoError(t, err)
	require.Equal(t, 6, order.DishQuantity(1))
	require.Equal(t, 1, order.DishQuantity(2))
	require.Zero(t, order.DishQuantity(3))
}

func TestRemoveItem_ClampsAtZero(t *testing.T) {
	order := &Order{UserID: 1, OrderDate: day, Status: StatusPending, Total: price("1.00"),
		Items: []Item{{ID: 5, DishID: 1, Quantity: 2, Price: price("1.00")}}}

	_, err := order.RemoveItem(5)
	require.NoError(t, err)
	require.True(t, order.Total.IsZero())
}

func TestEditing_RequiresPending(t *testing.T) {
	order, err := NewOrder(1, day, nil, nil, []Item{{ID: 1, DishID: 1, Quantity: 1, Price: price("1")}})
	require.NoError(t, err)
	_, err = order.ChangeStatus(StatusConfirmed)
	require.NoError(t, err)

	require.ErrorIs(t, order.AddItem(Item{DishID: 2, Quantity: 1}), ErrNotEditable)
	_, err = order.RemoveItem(1)
	require.ErrorIs(t, err, ErrNotEditable)
}

func TestCancel_OnlyFromPendingOrConfirmed(t *testing.T) {
	order, err := NewOrder(1, day, nil, nil, []Item{{DishID: 1, Quantity: 1, Price: price("1")}})
	require.NoError(t, err)

	effect, err := order.Cancel()
	require.NoError(t, err)
	require.Equal(t, EffectRelease, effect)

	_, err = order.Cancel()
	require.ErrorIs(t, err, ErrNotCancellable)

	order.Status = StatusCompleted
	_, err = order.Cancel()
	require.ErrorIs(t, err, ErrNotCancellable)
}

func TestReservations_UseCafeScope(t *testing.T) {
	cafe := int64(9)
	order, err := NewOrder(1, day, &cafe, nil, []Item{{DishID: 4, Quantity: 2, Price: price("1")}})
	require.NoError(t, err)

	require.Equal(t, []menudomain.Reservation{{Key: menudomain.NewEntryKey(9, 4, day), Quantity: 2}}, order.Reservations())
}

func TestParseStatus(t *testing.T) {
	status, err := ParseStatus(" Confirmed ")
	require.NoError(t, err)
	require.Equal(t, StatusConfirmed, status)

	_, err = ParseStatus("lost")
	require.ErrorIs(t, err, ErrInvalidStatus)
}
