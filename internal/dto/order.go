package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/bubbletea-slz/teahouse/internal/entity"
	"github.com/bubbletea-slz/teahouse/internal/filtering"
)

// OrderResponse represents an order as exposed via transport layers.
type OrderResponse struct {
	ID              int64           `json:"id"`
	PurchaseCode    string          `json:"purchaseCode"`
	Client          string          `json:"client"`
	TeaType         string          `json:"teaType"`
	Size            string          `json:"size"`
	Notes           string          `json:"notes"`
	Price           decimal.Decimal `json:"price"`
	Status          string          `json:"status"`
	CreatedAt       time.Time       `json:"createdAt"`
	StatusChangedAt time.Time       `json:"statusChangedAt"`
}

// FromOrder maps a domain order onto its transport shape.
func FromOrder(order entity.Order) OrderResponse {
	return OrderResponse{
		ID:              order.ID,
		PurchaseCode:    order.PurchaseCode,
		Client:          order.Client,
		TeaType:         string(order.TeaType),
		Size:            string(order.Size),
		Notes:           order.Notes,
		Price:           order.Price,
		Status:          string(order.Status),
		CreatedAt:       order.CreatedAt,
		StatusChangedAt: order.StatusChangedAt,
	}
}

// FromOrders maps a slice of domain orders.
func FromOrders(orders []entity.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for _, order := range orders {
		out = append(out, FromOrder(order))
	}
	return out
}

// StatisticsResponse carries the dashboard aggregates.
type StatisticsResponse struct {
	Total        int             `json:"total"`
	TodayCount   int             `json:"todayCount"`
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
	TodayRevenue decimal.Decimal `json:"todayRevenue"`
}

// FromStatistics maps engine statistics onto the transport shape.
func FromStatistics(stats filtering.Statistics) StatisticsResponse {
	return StatisticsResponse{
		Total:        stats.Total,
		TodayCount:   stats.TodayCount,
		TotalRevenue: stats.TotalRevenue,
		TodayRevenue: stats.TodayRevenue,
	}
}

// ClearAllResponse reports the number of removed orders.
type ClearAllResponse struct {
	Removed int `json:"removed"`
}
