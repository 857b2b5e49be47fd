package entity

import (
	"fmt"
	"strings"
)

// Status is the lifecycle state of an order.
type Status string

const (
	StatusPending   Status = "pending"
	StatusPreparing Status = "preparing"
	StatusReady     Status = "ready"
	StatusDelivered Status = "delivered"
	StatusCanceled  Status = "canceled"
)

// Statuses lists every valid status in display order.
func Statuses() []Status {
	return []Status{StatusPending, StatusPreparing, StatusReady, StatusDelivered, StatusCanceled}
}

// ParseStatus validates a raw status value.
func ParseStatus(s string) (Status, error) {
	switch v := Status(strings.ToLower(strings.TrimSpace(s))); v {
	case StatusPending, StatusPreparing, StatusReady, StatusDelivered, StatusCanceled:
		return v, nil
	default:
		return "", fmt.Errorf("unknown status: %q", s)
	}
}

func (s Status) String() string { return string(s) }
