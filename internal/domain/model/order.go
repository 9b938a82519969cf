package model

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusPaid      OrderStatus = "PAID"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCanceled  OrderStatus = "CANCELED"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusShipped, OrderStatusDelivered, OrderStatusCanceled:
		return true
	}
	return false
}

// 終端ステータスからは変更できない
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusCanceled || s == OrderStatusDelivered
}

// 注文（代引き / 銀行振込）。Total は送料抜き。
type Order struct {
	ID           string      `gorm:"type:uuid;primaryKey" json:"id"`
	CustomerName string      `gorm:"type:varchar(255);not null" json:"customer_name"`
	Phone        string      `gorm:"type:varchar(30);not null" json:"phone"`
	Email        string      `gorm:"type:varchar(255)" json:"email"`
	Address      string      `gorm:"type:varchar(255);not null" json:"address"`
	City         string      `gorm:"type:varchar(255);not null" json:"city"`
	Province     string      `gorm:"type:varchar(255);not null" json:"province"`
	PostalCode   string      `gorm:"type:varchar(20);not null" json:"postal_code"`
	Country      string      `gorm:"type:varchar(100);not null" json:"country"`
	Total        int64       `gorm:"not null" json:"total"`
	ShippingCost int64       `gorm:"not null;default:0" json:"shipping_cost"`
	Status       OrderStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	// 二重送信防止（任意）
	IdempotencyKey *string   `gorm:"type:varchar(255);uniqueIndex" json:"-"`
	CreatedAt      time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
