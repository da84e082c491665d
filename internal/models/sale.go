package models

import (
	"time"

	"gorm.io/gorm"
)

// SaleType determines the validity window of vouchers sold with the sale
type SaleType string

const (
	SaleTypeHourly      SaleType = "hourly"
	SaleTypeDayDesk     SaleType = "day desk"
	SaleTypeMeetingRoom SaleType = "meeting room"
	SaleTypeMonthly     SaleType = "monthly"
)

// PaymentMethod is how a sale was settled at the desk
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodMobileMoney  PaymentMethod = "mobile_money"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodCard         PaymentMethod = "card"
)

// Sale is one point-of-sale transaction, optionally bundling vouchers and
// optionally linked to a client. Amount and voucher set are fixed at creation.
type Sale struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Amount   float64   `gorm:"type:decimal(10,2)" json:"amount"`
	SaleType SaleType  `gorm:"type:varchar(50)" json:"sale_type"`
	Date     time.Time `gorm:"index" json:"date"`
	Cashier  string    `gorm:"type:varchar(100)" json:"cashier"`
	ClientID *uint     `gorm:"index" json:"client_id"`

	PaymentMethod    PaymentMethod `gorm:"type:varchar(50);default:'cash'" json:"payment_method"`
	PaymentReference string        `gorm:"type:varchar(100)" json:"payment_reference"`
	Notes            string        `gorm:"type:text" json:"notes"`
	PaymentMonth     *time.Time    `json:"payment_month"`
	IsMonthlyPayment bool          `gorm:"default:false" json:"is_monthly_payment"`

	// Relationships
	Client   *Client   `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Vouchers []Voucher `gorm:"many2many:sale_vouchers;" json:"vouchers,omitempty"`
}

// SaleReturn records a refund against a settled sale
type SaleReturn struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	SaleID  uint      `gorm:"index" json:"sale_id"`
	Amount  float64   `gorm:"type:decimal(10,2)" json:"amount"`
	Date    time.Time `gorm:"index" json:"date"`
	Cashier string    `gorm:"type:varchar(100)" json:"cashier"`
	Reason  string    `gorm:"type:text" json:"reason"`

	// Relationships
	Sale Sale `gorm:"foreignKey:SaleID" json:"sale,omitempty"`
}
