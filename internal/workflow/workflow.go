package workflow

import (
	"errors"
	"fmt"

	"linkdesk-backend/internal/models"
)

var (
	ErrInvalidTransition = errors.New("invalid order status transition")
	ErrUnknownStatus     = errors.New("unknown order status")
)

var transitions = map[models.OrderStatus][]models.OrderStatus{
	models.OrderDraft:               {models.OrderPendingConfirmation},
	models.OrderPendingConfirmation: {models.OrderConfirmed, models.OrderDraft},
	models.OrderConfirmed:           {models.OrderSitesReady},
	models.OrderSitesReady:          {models.OrderClientReview},
	models.OrderClientReview:        {models.OrderApproved, models.OrderSitesReady},
	models.OrderApproved:            {models.OrderInProgress},
	models.OrderInProgress:          {models.OrderCompleted},
	models.OrderCompleted:           nil,
	models.OrderCancelled:           nil,
}

func Known(s models.OrderStatus) bool {
	_, ok := transitions[s]
	return ok
}

func Terminal(s models.OrderStatus) bool {
	return s == models.OrderCompleted || s == models.OrderCancelled
}

// CanTransition reports whether an order may move from one status to
// another. Any non-terminal order may be cancelled.
func CanTransition(from, to models.OrderStatus) bool {
	if !Known(from) || !Known(to) {
		return false
	}
	if to == models.OrderCancelled {
		return !Terminal(from)
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func Validate(from, to models.OrderStatus) error {
	if !Known(to) {
		return fmt.Errorf("%w: %q", ErrUnknownStatus, to)
	}
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}

// Deletable reports whether an order in status s may be removed outright.
func Deletable(s models.OrderStatus) bool {
	return s == models.OrderDraft || s == models.OrderPendingConfirmation || s == models.OrderCancelled
}
