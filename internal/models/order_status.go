package models

import "fmt"

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusPlaced     OrderStatus = "placed"
	StatusProcessing OrderStatus = "processing"
	StatusInRoute    OrderStatus = "in_route"
	StatusDelivered  OrderStatus = "delivered"
	StatusReceived   OrderStatus = "received"
	StatusCancelled  OrderStatus = "cancelled"
)

// AllStatuses lists every status in lifecycle order.
var AllStatuses = []OrderStatus{
	StatusPlaced, StatusProcessing, StatusInRoute, StatusDelivered, StatusReceived, StatusCancelled,
}

// transitions holds the structurally legal moves. Self-loops are not legal.
var transitions = map[OrderStatus]map[OrderStatus]bool{
	StatusPlaced:     {StatusProcessing: true, StatusCancelled: true},
	StatusProcessing: {StatusInRoute: true, StatusCancelled: true},
	StatusInRoute:    {StatusDelivered: true, StatusCancelled: true},
	StatusDelivered:  {StatusReceived: true},
	StatusReceived:   {},
	StatusCancelled:  {},
}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// IsTerminal reports whether no transition leaves s.
func (s OrderStatus) IsTerminal() bool {
	return s.Valid() && len(transitions[s]) == 0
}

// CanTransition checks if from->to is allowed by the state machine.
func CanTransition(from, to OrderStatus) bool {
	next := transitions[from]
	return next != nil && next[to]
}

// ParseOrderStatus converts raw input into a known status.
func ParseOrderStatus(raw string) (OrderStatus, error) {
	s := OrderStatus(raw)
	if !s.Valid() {
		return "", fmt.Errorf("unknown order status %q", raw)
	}
	return s, nil
}
