package models

import (
	"time"
)

// SaleLine is one order line mirrored into the relational sales ledger.
type SaleLine struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	OrderID     int       `gorm:"not null;index" json:"order_id"`
	UID         string    `gorm:"type:varchar(128);not null;index" json:"uid"`
	ProductID   int       `gorm:"not null;index" json:"product_id"`
	ProductName string    `gorm:"type:varchar(255)" json:"product_name"`
	Quantity    int       `gorm:"not null" json:"quantity"`
	UnitPrice   float64   `gorm:"type:decimal(12,2)" json:"unit_price"`
	Amount      float64   `gorm:"type:decimal(12,2)" json:"amount"`
	Status      string    `gorm:"type:varchar(32);default:'pendiente';index" json:"status"`
	PlacedAt    time.Time `gorm:"index" json:"placed_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (SaleLine) TableName() string {
	return "sales"
}
