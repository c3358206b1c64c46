// Package domain holds the product record and the closed enumerations describing it.
package domain

import (
	"fmt"
	"time"
)

// ProductType is the category a product is sold under.
type ProductType string

const (
	Handmade ProductType = "HANDMADE"
	Bottle   ProductType = "BOTTLE"
	Bakery   ProductType = "BAKERY"
)

var productTypeDescriptions = map[ProductType]string{
	Handmade: "제조 음료",
	Bottle:   "병 음료",
	Bakery:   "베이커리",
}

// Valid reports whether t is one of the known product types.
func (t ProductType) Valid() bool {
	_, ok := productTypeDescriptions[t]
	return ok
}

// Description returns the display text for t, or an empty string for unknown types.
func (t ProductType) Description() string {
	return productTypeDescriptions[t]
}

// ParseProductType converts s into a ProductType.
func ParseProductType(s string) (ProductType, error) {
	t := ProductType(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown product type %q", s)
	}
	return t, nil
}

// SellingStatus tells whether a product can be ordered right now.
type SellingStatus string

const (
	Selling     SellingStatus = "SELLING"
	Hold        SellingStatus = "HOLD"
	StopSelling SellingStatus = "STOP_SELLING"
)

var sellingStatusDescriptions = map[SellingStatus]string{
	Selling:     "판매중",
	Hold:        "판매보류",
	StopSelling: "판매중지",
}

// Valid reports whether s is one of the known selling statuses.
func (s SellingStatus) Valid() bool {
	_, ok := sellingStatusDescriptions[s]
	return ok
}

// Description returns the display text for s, or an empty string for unknown statuses.
func (s SellingStatus) Description() string {
	return sellingStatusDescriptions[s]
}

// ParseSellingStatus converts s into a SellingStatus.
func ParseSellingStatus(s string) (SellingStatus, error) {
	st := SellingStatus(s)
	if !st.Valid() {
		return "", fmt.Errorf("unknown selling status %q", s)
	}
	return st, nil
}

// ForDisplay returns the statuses whose products are shown on the kiosk.
// A new slice is returned on every call.
func ForDisplay() []SellingStatus {
	return []SellingStatus{Selling, Hold}
}

// Product is a sellable item of the café.
type Product struct {
	ID            int64
	ProductNumber string
	Name          string
	Price         int64
	Type          ProductType
	SellingStatus SellingStatus
	CreatedAt     *time.Time
}
