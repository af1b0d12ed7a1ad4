package services

import (
	"fmt"

	"dinedash/internal/common"
	"dinedash/internal/models"
)

// Decision is the result of authorizing a status change. It is either
// Allowed or Denied.
type Decision interface {
	isDecision()
}

type Allowed struct{}

// Denied carries the reason a transition was rejected.
type Denied struct {
	Current models.OrderStatus
	Target  models.OrderStatus
	Role    models.Role
	Reason  string
}

func (Allowed) isDecision() {}
func (Denied) isDecision()  {}

// Err converts the denial into an InvalidTransition error.
func (d Denied) Err() error {
	return common.InvalidTransition("update order status", "cannot move order from %s to %s: %s", d.Current, d.Target, d.Reason)
}

// StatusAuthorizer decides whether role may move an order from current to
// target. It has no side effects.
type StatusAuthorizer interface {
	Authorize(role models.Role, current, target models.OrderStatus) Decision
}

type statusAuthorizer struct {
	allowed map[models.Role]map[models.OrderStatus]bool
}

func NewStatusAuthorizer() StatusAuthorizer {
	set := func(statuses ...models.OrderStatus) map[models.OrderStatus]bool {
		m := make(map[models.OrderStatus]bool, len(statuses))
		for _, s := range statuses {
			m[s] = true
		}
		return m
	}
	return &statusAuthorizer{
		allowed: map[models.Role]map[models.OrderStatus]bool{
			models.RoleAdmin:    set(models.AllStatuses...),
			models.RoleOwner:    set(models.StatusProcessing, models.StatusInRoute, models.StatusDelivered, models.StatusCancelled),
			models.RoleCustomer: set(models.StatusReceived, models.StatusCancelled),
		},
	}
}

func (a *statusAuthorizer) Authorize(role models.Role, current, target models.OrderStatus) Decision {
	deny := func(reason string) Decision {
		return Denied{Current: current, Target: target, Role: role, Reason: reason}
	}

	if !target.Valid() {
		return deny(fmt.Sprintf("unknown status %q", target))
	}
	if !models.CanTransition(current, target) {
		return deny(fmt.Sprintf("%s is not reachable from %s", target, current))
	}
	if !a.allowed[role][target] {
		return deny(fmt.Sprintf("role %q may not set status %s", role, target))
	}
	return Allowed{}
}
