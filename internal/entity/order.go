package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// TeaType enumerates the drinks on the menu.
type TeaType string

const (
	TeaGreen           TeaType = "green-tea"
	TeaMangoStrawberry TeaType = "mango-strawberry"
	TeaMilk            TeaType = "milk-tea"
)

// ParseTeaType validates a raw tea type value.
func ParseTeaType(s string) (TeaType, error) {
	switch t := TeaType(strings.ToLower(strings.TrimSpace(s))); t {
	case TeaGreen, TeaMangoStrawberry, TeaMilk:
		return t, nil
	default:
		return "", fmt.Errorf("unknown tea type: %q", s)
	}
}

// Size enumerates cup sizes.
type Size string

const (
	SizeSmall  Size = "small"
	SizeMedium Size = "medium"
	SizeLarge  Size = "large"
)

// ParseSize validates a raw size value.
func ParseSize(s string) (Size, error) {
	switch v := Size(strings.ToLower(strings.TrimSpace(s))); v {
	case SizeSmall, SizeMedium, SizeLarge:
		return v, nil
	default:
		return "", fmt.Errorf("unknown size: %q", s)
	}
}

// PriceList maps cup sizes to unit prices. An order snapshots its price
// from the list in effect at creation time; later list changes never
// touch existing orders.
type PriceList map[Size]decimal.Decimal

// DefaultPriceList returns the shop's standard pricing.
func DefaultPriceList() PriceList {
	return PriceList{
		SizeSmall:  decimal.NewFromFloat(15.00),
		SizeMedium: decimal.NewFromFloat(17.00),
		SizeLarge:  decimal.NewFromFloat(20.00),
	}
}

// PriceFor resolves the unit price for a size.
func (p PriceList) PriceFor(size Size) (decimal.Decimal, error) {
	price, ok := p[size]
	if !ok {
		return decimal.Zero, fmt.Errorf("no price for size %q", size)
	}
	return price, nil
}

// Order is a single customer purchase record.
type Order struct {
	bun.BaseModel `bun:"table:orders" json:"-"`

	ID              int64           `bun:",pk" json:"id"`
	PurchaseCode    string          `bun:"purchase_code,notnull" json:"purchaseCode"`
	Client          string          `bun:"client,notnull" json:"client"`
	TeaType         TeaType         `bun:"tea_type,notnull" json:"teaType"`
	Size            Size            `bun:"size,notnull" json:"size"`
	Notes           string          `bun:"notes" json:"notes"`
	Price           decimal.Decimal `bun:"price,notnull" json:"price"`
	Status          Status          `bun:"status,notnull" json:"status"`
	CreatedAt       time.Time       `bun:"created_at,notnull" json:"createdAt"`
	StatusChangedAt time.Time       `bun:"status_changed_at,notnull" json:"statusChangedAt"`
}

// PurchaseCode derives the human-facing business identifier from the
// numeric id and the creation year, e.g. id 1 in 2025 yields BTS000125.
func PurchaseCode(id int64, createdAt time.Time) string {
	return fmt.Sprintf("BTS%04d%02d", id, createdAt.Year()%100)
}

// Draft carries the caller-supplied fields for a new order. Identity,
// price, status, and timestamps are assigned by the engine.
type Draft struct {
	Client  string
	TeaType TeaType
	Size    Size
	Notes   string
}
