package models

import (
	"time"

	"gorm.io/gorm"
)

// MonthlyPaymentStatus is the billing state of one (client, month) record
type MonthlyPaymentStatus string

const (
	MonthlyPaymentPending   MonthlyPaymentStatus = "pending"
	MonthlyPaymentPaid      MonthlyPaymentStatus = "paid"
	MonthlyPaymentOverdue   MonthlyPaymentStatus = "overdue"
	MonthlyPaymentCancelled MonthlyPaymentStatus = "cancelled"
)

// MonthlyPayment is one recurring billing record per permanent client per
// calendar month. The (client_id, payment_month) unique index makes bulk
// generation idempotent. "paid" is terminal.
type MonthlyPayment struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	ClientID     uint                 `gorm:"index;uniqueIndex:idx_monthly_payment_client_month" json:"client_id"`
	SaleID       *uint                `gorm:"index" json:"sale_id"`
	Amount       float64              `gorm:"type:decimal(10,2)" json:"amount"`
	PaymentMonth time.Time            `gorm:"uniqueIndex:idx_monthly_payment_client_month" json:"payment_month"`
	DueDate      time.Time            `json:"due_date"`
	PaymentDate  *time.Time           `json:"payment_date"`
	Status       MonthlyPaymentStatus `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	Notes        string               `gorm:"type:text" json:"notes"`

	// Relationships
	Client Client `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Sale   *Sale  `gorm:"foreignKey:SaleID" json:"sale,omitempty"`
}
