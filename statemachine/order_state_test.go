package statemachine

import (
	"testing"

	"delliapp/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition_StaffRoles(t *testing.T) {
	tests := []struct {
		name    string
		from    models.OrderStatus
		to      models.OrderStatus
		typ     models.OrderType
		actor   string
		wantErr bool
	}{
		{"waiter confirms", models.StatusPending, models.StatusConfirmed, models.OrderPickup, models.MemberWaiter, false},
		{"chef cannot confirm", models.StatusPending, models.StatusConfirmed, models.OrderPickup, models.MemberChef, true},
		{"chef starts preparing", models.StatusConfirmed, models.StatusPreparing, models.OrderDelivery, models.MemberChef, false},
		{"owner may do kitchen work", models.StatusPreparing, models.StatusReady, models.OrderDineIn, models.MemberOwner, false},
		{"owner role is case-insensitive", models.StatusReady, models.StatusOutForDelivery, models.OrderDelivery, " Dono ", false},
		{"customer cancels pending", models.StatusPending, models.StatusCancelled, models.OrderDelivery, ActorCustomer, false},
		{"customer cannot cancel preparing", models.StatusPreparing, models.StatusCancelled, models.OrderPickup, ActorCustomer, true},
		{"nothing leaves delivered", models.StatusDelivered, models.StatusPending, models.OrderPickup, models.MemberOwner, true},
		{"unknown order type", models.StatusPending, models.StatusConfirmed, "", models.MemberWaiter, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanTransition(tt.from, tt.to, tt.typ, tt.actor)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestCanTransition_HandOverDependsOnOrderType(t *testing.T) {
	tests := []struct {
		name    string
		from    models.OrderStatus
		to      models.OrderStatus
		typ     models.OrderType
		actor   string
		wantErr bool
	}{
		{"courier dispatches delivery", models.StatusReady, models.StatusOutForDelivery, models.OrderDelivery, models.MemberDelivery, false},
		{"courier delivers delivery", models.StatusOutForDelivery, models.StatusDelivered, models.OrderDelivery, models.MemberDelivery, false},
		{"waiter cannot skip the courier", models.StatusReady, models.StatusDelivered, models.OrderDelivery, models.MemberWaiter, true},
		{"owner cannot skip the courier", models.StatusReady, models.StatusDelivered, models.OrderDelivery, models.MemberOwner, true},
		{"waiter hands over pickup", models.StatusReady, models.StatusDelivered, models.OrderPickup, models.MemberWaiter, false},
		{"waiter serves dine-in", models.StatusReady, models.StatusDelivered, models.OrderDineIn, models.MemberWaiter, false},
		{"courier cannot dispatch pickup", models.StatusReady, models.StatusOutForDelivery, models.OrderPickup, models.MemberDelivery, true},
		{"owner cannot dispatch dine-in", models.StatusReady, models.StatusOutForDelivery, models.OrderDineIn, models.MemberOwner, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanTransition(tt.from, tt.to, tt.typ, tt.actor)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestValidTransitionsFrom(t *testing.T) {
	assert.Equal(t,
		[]models.OrderStatus{models.StatusOutForDelivery},
		ValidTransitionsFrom(models.StatusReady, models.OrderDelivery))
	assert.Equal(t,
		[]models.OrderStatus{models.StatusDelivered},
		ValidTransitionsFrom(models.StatusReady, models.OrderPickup))
	assert.Empty(t, ValidTransitionsFrom(models.StatusOutForDelivery, models.OrderDineIn))
	assert.ElementsMatch(t,
		[]models.OrderStatus{models.StatusOutForDelivery, models.StatusDelivered},
		ValidTransitionsFrom(models.StatusReady, ""))

	assert.True(t, IsTerminal(models.StatusCancelled))
	assert.True(t, IsTerminal(models.StatusDelivered))
	assert.False(t, IsTerminal(models.StatusPending))
	assert.False(t, IsTerminal(models.StatusOutForDelivery))
}

func TestCanTransition_ErrorListsNextStates(t *testing.T) {
	err := CanTransition(models.StatusDelivered, models.StatusReady, models.OrderPickup, models.MemberChef)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "none (terminal state)")

	err = CanTransition(models.StatusReady, models.StatusDelivered, models.OrderDelivery, models.MemberWaiter)
	require.Error(t, err)
	assert.Contains(t, err.Error(), string(models.StatusOutForDelivery))
}
