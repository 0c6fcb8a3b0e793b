package statemachine

import (
	"fmt"
	"slices"
	"strings"

	"delliapp/models"
)

// ActorCustomer is the actor used for transitions performed by the ordering customer.
const ActorCustomer = "customer"

// Transition defines a valid state change and who can perform it
type Transition struct {
	From  models.OrderStatus `json:"from"`
	To    models.OrderStatus `json:"to"`
	Actor string             `json:"actor"` // member role or "customer"
	// Types limits the transition to these order types; empty means every type.
	Types []models.OrderType `json:"types,omitempty"`
}

var (
	deliveryOnly = []models.OrderType{models.OrderDelivery}
	handOver     = []models.OrderType{models.OrderPickup, models.OrderDineIn}
)

// AppliesTo reports whether the transition exists for orders of type ot.
// An empty ot matches every transition.
func (t Transition) AppliesTo(ot models.OrderType) bool {
	return ot == "" || len(t.Types) == 0 || slices.Contains(t.Types, ot)
}

// validTransitions is the authoritative state machine definition.
// The team owner (dono) may perform every staff transition.
var validTransitions = []Transition{
	// Floor staff accepts the order
	{From: models.StatusPending, To: models.StatusConfirmed, Actor: models.MemberWaiter},
	{From: models.StatusPending, To: models.StatusCancelled, Actor: models.MemberWaiter},
	{From: models.StatusPending, To: models.StatusCancelled, Actor: ActorCustomer},
	// Kitchen
	{From: models.StatusConfirmed, To: models.StatusPreparing, Actor: models.MemberChef},
	{From: models.StatusConfirmed, To: models.StatusCancelled, Actor: models.MemberWaiter},
	{From: models.StatusConfirmed, To: models.StatusCancelled, Actor: ActorCustomer},
	{From: models.StatusPreparing, To: models.StatusReady, Actor: models.MemberChef},
	// Delivery orders go through the courier
	{From: models.StatusReady, To: models.StatusOutForDelivery, Actor: models.MemberDelivery, Types: deliveryOnly},
	{From: models.StatusOutForDelivery, To: models.StatusDelivered, Actor: models.MemberDelivery, Types: deliveryOnly},
	// Pickup and dine-in are handed over at the counter/table
	{From: models.StatusReady, To: models.StatusDelivered, Actor: models.MemberWaiter, Types: handOver},
}

var orderTypes = []models.OrderType{models.OrderDelivery, models.OrderPickup, models.OrderDineIn}

type transitionKey struct {
	From  models.OrderStatus
	To    models.OrderStatus
	Type  models.OrderType
	Actor string
}

var transitionMap = func() map[transitionKey]bool {
	m := make(map[transitionKey]bool)
	for _, t := range validTransitions {
		for _, ot := range orderTypes {
			if !t.AppliesTo(ot) {
				continue
			}
			m[transitionKey{t.From, t.To, ot, t.Actor}] = true
			if t.Actor != ActorCustomer {
				m[transitionKey{t.From, t.To, ot, models.MemberOwner}] = true
			}
		}
	}
	return m
}()

// ValidTransitionsFrom returns the valid next states of an order of type ot.
// An empty ot lists the next states of any order type.
func ValidTransitionsFrom(status models.OrderStatus, ot models.OrderType) []models.OrderStatus {
	var nexts []models.OrderStatus
	seen := map[models.OrderStatus]bool{}
	for _, t := range validTransitions {
		if t.From == status && t.AppliesTo(ot) && !seen[t.To] {
			nexts = append(nexts, t.To)
			seen[t.To] = true
		}
	}
	return nexts
}

// CanTransition checks if a given actor can move an order of type ot from one state to another
func CanTransition(from, to models.OrderStatus, ot models.OrderType, actor string) error {
	actor = models.NormalizeRole(actor)
	if transitionMap[transitionKey{From: from, To: to, Type: ot, Actor: actor}] {
		return nil
	}
	return fmt.Errorf("invalid transition: %s → %s is not allowed for actor '%s' on a %s order. Valid transitions from %s are: %s",
		from, to, actor, ot, from, describeValidFrom(from, ot))
}

// IsTerminal reports whether no transition leaves status.
func IsTerminal(status models.OrderStatus) bool {
	return len(ValidTransitionsFrom(status, "")) == 0
}

func describeValidFrom(status models.OrderStatus, ot models.OrderType) string {
	nexts := ValidTransitionsFrom(status, ot)
	if len(nexts) == 0 {
		return "none (terminal state)"
	}
	names := make([]string, len(nexts))
	for i, s := range nexts {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

// GetAllTransitions returns the full state machine for documentation
func GetAllTransitions() []Transition {
	return validTransitions
}
