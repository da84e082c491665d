package models

import (
	"time"

	"gorm.io/gorm"
)

// ClientType distinguishes walk-in customers from members on recurring billing
type ClientType string

const (
	ClientTypeCasual    ClientType = "casual"
	ClientTypePermanent ClientType = "permanent"
)

// Client is a customer of the workspace. Phone number is the natural key:
// sales look clients up by phone and create them on first contact.
type Client struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Name        string     `gorm:"type:varchar(100)" json:"name"`
	PhoneNumber string     `gorm:"type:varchar(50);uniqueIndex" json:"phonenumber"`
	Email       string     `gorm:"type:varchar(100)" json:"email"`
	ClientType  ClientType `gorm:"type:varchar(20);default:'casual'" json:"client_type"`

	MembershipStartDate *time.Time `json:"membership_start_date"`
	MembershipEndDate   *time.Time `json:"membership_end_date"`
	MonthlyFee          float64    `gorm:"type:decimal(10,2)" json:"monthly_fee"`
	IsActive            bool       `gorm:"default:true" json:"is_active"`

	// Relationships
	Sales           []Sale           `gorm:"foreignKey:ClientID" json:"sales,omitempty"`
	MonthlyPayments []MonthlyPayment `gorm:"foreignKey:ClientID" json:"monthly_payments,omitempty"`
}
