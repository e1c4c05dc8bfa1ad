package order

import "storekart/internal/model"

// transitions is the order status state machine. Forward progress is
// pending → confirmed → shipped → delivered, with out_for_delivery as an
// optional stage inside shipping. Cancellation is reachable only from
// pending and confirmed. Delivered and cancelled are terminal.
var transitions = map[model.OrderStatus][]model.OrderStatus{
	model.OrderStatusPending:        {model.OrderStatusConfirmed, model.OrderStatusCancelled},
	model.OrderStatusConfirmed:      {model.OrderStatusShipped, model.OrderStatusCancelled},
	model.OrderStatusShipped:        {model.OrderStatusOutForDelivery, model.OrderStatusDelivered},
	model.OrderStatusOutForDelivery: {model.OrderStatusDelivered},
	model.OrderStatusDelivered:      nil,
	model.OrderStatusCancelled:      nil,
}

// cancellableStatuses are the source states a customer cancellation may act
// on. Once shipping begins the order can no longer be cancelled.
var cancellableStatuses = []model.OrderStatus{
	model.OrderStatusPending,
	model.OrderStatusConfirmed,
}

// CanTransition reports whether from → to is a legal transition.
func CanTransition(from, to model.OrderStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Cancellable reports whether a customer may still cancel from this status.
func Cancellable(status model.OrderStatus) bool {
	for _, s := range cancellableStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// Terminal reports whether no transition leaves this status.
func Terminal(status model.OrderStatus) bool {
	return len(transitions[status]) == 0
}
