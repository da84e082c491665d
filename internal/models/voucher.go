package models

import (
	"time"

	"gorm.io/gorm"
)

// VoucherStatus is the lifecycle state of a voucher
type VoucherStatus string

const (
	VoucherStatusUnused  VoucherStatus = "unused"
	VoucherStatusSold    VoucherStatus = "sold"
	VoucherStatusUsed    VoucherStatus = "used"
	VoucherStatusExpired VoucherStatus = "expired"
	VoucherStatusPrinted VoucherStatus = "printed"
)

// VoucherFileStatus guards a batch file against double import
type VoucherFileStatus string

const (
	VoucherFileNotPopulated VoucherFileStatus = "not_populated"
	VoucherFilePopulated    VoucherFileStatus = "populated"
)

// VoucherCategory groups voucher batches (e.g. "1 Hour", "Day Pass")
type VoucherCategory struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Name string `gorm:"type:varchar(50)" json:"name"`
}

// VoucherFile is an uploaded batch source file of voucher codes.
// Each file may be populated into voucher rows exactly once.
type VoucherFile struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Name       string            `gorm:"type:varchar(100)" json:"name"`
	FilePath   string            `gorm:"type:varchar(255)" json:"file_path"`
	CategoryID uint              `gorm:"index" json:"category_id"`
	UploadedBy string            `gorm:"type:varchar(100)" json:"uploaded_by"`
	Status     VoucherFileStatus `gorm:"type:varchar(20);default:'not_populated'" json:"status"`

	// Relationships
	Category VoucherCategory `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Vouchers []Voucher       `gorm:"foreignKey:FileID" json:"vouchers,omitempty"`
}

// Voucher is a single-use access credential with bounded validity.
// It transitions unused -> sold exactly once (at sale time), is activated
// with a computed expiry, and deactivated by a scheduled task at expiry.
type Voucher struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Code     string `gorm:"type:varchar(100);uniqueIndex" json:"code"`
	Username string `gorm:"type:varchar(100)" json:"username"`
	Password string `gorm:"type:varchar(100)" json:"password"`
	FileID   uint   `gorm:"index" json:"file_id"`

	Status      VoucherStatus `gorm:"type:varchar(20);default:'unused';index" json:"status"`
	Active      bool          `gorm:"default:false" json:"active"`
	DatePrinted *time.Time    `json:"date_printed"`
	DateUsed    *time.Time    `json:"date_used"`

	ValidityDuration int        `gorm:"default:24" json:"validity_duration"` // hours
	ExpiryTime       *time.Time `json:"expiry_time"`

	// Reserved for the captive portal sync that is not modeled here
	BandwidthUp    *int `json:"bandwidth_up"`   // Kbps
	BandwidthDown  *int `json:"bandwidth_down"` // Kbps
	PortalRollID   *int `json:"portal_roll_id"`
	SyncedToPortal bool `gorm:"default:false" json:"synced_to_portal"`

	// Relationships
	File        VoucherFile  `gorm:"foreignKey:FileID" json:"file,omitempty"`
	VoucherUser *VoucherUser `gorm:"foreignKey:VoucherID" json:"voucher_user,omitempty"`
}

// VoucherLogAction classifies audit trail entries
type VoucherLogAction string

const (
	VoucherLogCreate   VoucherLogAction = "create"
	VoucherLogPopulate VoucherLogAction = "populate"
	VoucherLogPrint    VoucherLogAction = "print"
	VoucherLogUse      VoucherLogAction = "use"
	VoucherLogSync     VoucherLogAction = "sync"
	VoucherLogExpire   VoucherLogAction = "expire"
)

// VoucherLog is an append-only audit trail. Rows are never updated or deleted.
type VoucherLog struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	Actor      string           `gorm:"type:varchar(100)" json:"actor"`
	Action     string           `gorm:"type:varchar(255)" json:"action"`
	ActionType VoucherLogAction `gorm:"type:varchar(20);default:'create';index" json:"action_type"`
	VoucherID  *uint            `gorm:"index" json:"voucher_id"`
	IPAddress  string           `gorm:"type:varchar(45)" json:"ip_address"`
}

// VoucherUser is the end customer a sold voucher was handed to,
// bound 1:1 to the voucher. Code is denormalized for lookup.
type VoucherUser struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	VoucherID   uint   `gorm:"uniqueIndex" json:"voucher_id"`
	VoucherCode string `gorm:"type:varchar(100)" json:"voucher_code"`
	Name        string `gorm:"type:varchar(100)" json:"name"`
	PhoneNumber string `gorm:"type:varchar(50)" json:"phonenumber"`
	Email       string `gorm:"type:varchar(100)" json:"email"`
	DeviceMAC   string `gorm:"type:varchar(17)" json:"device_mac"`
	LastUsedIP  string `gorm:"type:varchar(45)" json:"last_used_ip"`
}
