package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mercagoods/storefront-backend/pkg/enums"
	"github.com/mercagoods/storefront-backend/pkg/types"
)

// Order captures a checkout result: the cart snapshot frozen at the moment the
// buyer confirmed, plus the addresses and payment method they entered.
type Order struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	SessionID       string              `gorm:"column:session_id;not null;index" json:"session_id"`
	UserID          *uuid.UUID          `gorm:"column:user_id;type:uuid;index" json:"user_id,omitempty"`
	Status          enums.OrderStatus   `gorm:"column:status;not null;default:'pending'" json:"status"`
	Currency        enums.Currency      `gorm:"column:currency;not null;default:'USD'" json:"currency"`
	ShippingAddress types.Address       `gorm:"column:shipping_address;type:jsonb;serializer:json" json:"shipping_address"`
	BillingAddress  types.Address       `gorm:"column:billing_address;type:jsonb;serializer:json" json:"billing_address"`
	PaymentMethod   enums.PaymentMethod `gorm:"column:payment_method;not null" json:"payment_method"`
	PaymentRef      string              `gorm:"column:payment_ref" json:"payment_ref,omitempty"`
	CouponCode      *string             `gorm:"column:coupon_code" json:"coupon_code,omitempty"`
	Subtotal        decimal.Decimal     `gorm:"column:subtotal;type:numeric;not null" json:"subtotal"`
	Discount        decimal.Decimal     `gorm:"column:discount;type:numeric;not null" json:"discount"`
	Tax             decimal.Decimal     `gorm:"column:tax;type:numeric;not null" json:"tax"`
	Shipping        decimal.Decimal     `gorm:"column:shipping;type:numeric;not null" json:"shipping"`
	Total           decimal.Decimal     `gorm:"column:total;type:numeric;not null" json:"total"`
	Items           []OrderLineItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	PlacedAt        time.Time           `gorm:"column:placed_at;not null" json:"placed_at"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
