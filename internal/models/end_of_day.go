package models

import (
	"time"

	"gorm.io/gorm"
)

// EndOfDay is a daily reconciliation snapshot over the day's sales.
// Immutable once generated, except for attaching the rendered report file.
type EndOfDay struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Date    time.Time `gorm:"index" json:"date"`
	PDFPath string    `gorm:"type:varchar(255)" json:"pdf_path"`
	Amount  float64   `gorm:"type:decimal(10,2);default:0" json:"amount"`

	TotalSalesCount    int     `gorm:"default:0" json:"total_sales_count"`
	CashAmount         float64 `gorm:"type:decimal(10,2);default:0" json:"cash_amount"`
	MobileMoneyAmount  float64 `gorm:"type:decimal(10,2);default:0" json:"mobile_money_amount"`
	BankTransferAmount float64 `gorm:"type:decimal(10,2);default:0" json:"bank_transfer_amount"`
	CardAmount         float64 `gorm:"type:decimal(10,2);default:0" json:"card_amount"`

	// Relationships
	Items []EndOfDayItem `gorm:"foreignKey:EndOfDayID" json:"items,omitempty"`
}

// EndOfDayItem links a snapshot to one sale covered by it (fan-out row)
type EndOfDayItem struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	EndOfDayID uint `gorm:"index" json:"end_of_day_id"`
	SaleID     uint `gorm:"index" json:"sale_id"`

	// Relationships
	Sale Sale `gorm:"foreignKey:SaleID" json:"sale,omitempty"`
}
