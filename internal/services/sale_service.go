package services

import (
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"

	"workhub_app/internal/models"
)

// SaleService implements sale settlement: client resolution, the
// unused->sold voucher flip, expiry computation and deactivation scheduling,
// all inside one transaction.
type SaleService struct {
	db *gorm.DB
}

func NewSaleService(db *gorm.DB) *SaleService {
	return &SaleService{db: db}
}

// SaleClientInput is the optional client sub-object of a sale request.
// Presence with a phone number means get-or-create by phone.
type SaleClientInput struct {
	Name        string
	PhoneNumber string
	Email       string
}

// CreateSaleInput is the validated settlement payload
type CreateSaleInput struct {
	VoucherIDs       []uint
	Amount           float64
	SaleType         models.SaleType
	Cashier          string
	PaymentMethod    models.PaymentMethod
	PaymentReference string
	Notes            string
	PaymentMonth     *time.Time
	Client           *SaleClientInput
}

// VoucherCredentials are returned to the cashier for immediate display
type VoucherCredentials struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// ExpiryFor computes a voucher's expiry from the sale type and sale time.
// Day desk runs to the end of the sale's calendar day; unknown types get
// the hourly window.
func ExpiryFor(saleType models.SaleType, saleTime time.Time) time.Time {
	switch saleType {
	case models.SaleTypeHourly:
		return saleTime.Add(time.Hour)
	case models.SaleTypeMeetingRoom:
		return saleTime.Add(2 * time.Hour)
	case models.SaleTypeDayDesk:
		y, m, d := saleTime.Date()
		return time.Date(y, m, d, 23, 59, 59, 0, saleTime.Location())
	case models.SaleTypeMonthly:
		return saleTime.Add(30 * 24 * time.Hour)
	default:
		return saleTime.Add(time.Hour)
	}
}

// CreateSale settles a point-of-sale transaction. Either every mutation
// (client upsert, voucher flips, sale insert, deactivation scheduling)
// commits, or none do.
func (s *SaleService) CreateSale(in CreateSaleInput) (*models.Sale, []VoucherCredentials, error) {
	if in.Client != nil && strings.TrimSpace(in.Client.PhoneNumber) == "" {
		return nil, nil, &ValidationError{Message: "client phone number is required"}
	}

	saleTime := time.Now()

	// Monthly sales always carry the month they cover, normalized to the
	// first day so they line up with the billing records
	paymentMonth := in.PaymentMonth
	isMonthly := in.SaleType == models.SaleTypeMonthly
	if isMonthly {
		m := saleTime
		if paymentMonth != nil {
			m = *paymentMonth
		}
		first := firstOfMonth(m)
		paymentMonth = &first
	}

	var sale models.Sale
	var creds []VoucherCredentials

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var clientID *uint
		if in.Client != nil {
			client, err := GetOrCreateClientByPhone(tx, in.Client.PhoneNumber, in.Client.Name, in.Client.Email)
			if err != nil {
				return err
			}
			clientID = &client.ID
		}

		expiry := ExpiryFor(in.SaleType, saleTime)

		if len(in.VoucherIDs) > 0 {
			var unusedIDs []uint
			if err := tx.Model(&models.Voucher{}).
				Where("id IN ? AND status = ?", in.VoucherIDs, models.VoucherStatusUnused).
				Pluck("id", &unusedIDs).Error; err != nil {
				return err
			}

			if missing := missingIDs(in.VoucherIDs, unusedIDs); len(missing) > 0 {
				return &ConflictError{
					Message: fmt.Sprintf("Vouchers %v do not exist or have been sold.", missing),
				}
			}

			// Conditional flip: the status filter makes the update the
			// authoritative guard against a concurrent sale of the same
			// voucher. A shortfall means someone won the race.
			res := tx.Model(&models.Voucher{}).
				Where("id IN ? AND status = ?", in.VoucherIDs, models.VoucherStatusUnused).
				Updates(map[string]interface{}{
					"status":      models.VoucherStatusSold,
					"active":      true,
					"expiry_time": expiry,
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected != int64(len(in.VoucherIDs)) {
				// Name only the vouchers the flip did not reach. Rows we
				// won carry this sale's expiry timestamp; anything else
				// lost the race.
				var wonIDs []uint
				if err := tx.Model(&models.Voucher{}).
					Where("id IN ? AND status = ? AND expiry_time = ?",
						in.VoucherIDs, models.VoucherStatusSold, expiry).
					Pluck("id", &wonIDs).Error; err != nil {
					return err
				}
				return &ConflictError{
					Message: fmt.Sprintf("Vouchers %v do not exist or have been sold.", missingIDs(in.VoucherIDs, wonIDs)),
				}
			}
		}

		sale = models.Sale{
			Amount:           in.Amount,
			SaleType:         in.SaleType,
			Date:             saleTime,
			Cashier:          in.Cashier,
			ClientID:         clientID,
			PaymentMethod:    in.PaymentMethod,
			PaymentReference: in.PaymentReference,
			Notes:            in.Notes,
			PaymentMonth:     paymentMonth,
			IsMonthlyPayment: isMonthly,
		}
		if err := tx.Create(&sale).Error; err != nil {
			return err
		}

		if len(in.VoucherIDs) > 0 {
			refs := make([]models.Voucher, 0, len(in.VoucherIDs))
			for _, id := range in.VoucherIDs {
				refs = append(refs, models.Voucher{ID: id})
			}
			if err := tx.Model(&sale).Association("Vouchers").Append(&refs); err != nil {
				return err
			}

			for _, id := range in.VoucherIDs {
				if err := ScheduleVoucherDeactivation(tx, id, expiry); err != nil {
					return err
				}
			}

			if err := tx.Model(&models.Voucher{}).
				Where("id IN ?", in.VoucherIDs).
				Select("id", "username", "password").
				Find(&creds).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	log.Printf("Sale %d settled by %s (%d vouchers)", sale.ID, in.Cashier, len(in.VoucherIDs))
	return &sale, creds, nil
}

// GetOrCreateClientByPhone resolves a client by phone number, creating the
// record on first contact and updating name/email in place when they changed.
func GetOrCreateClientByPhone(tx *gorm.DB, phone, name, email string) (*models.Client, error) {
	var client models.Client
	err := tx.Where("phone_number = ?", phone).First(&client).Error
	if err == gorm.ErrRecordNotFound {
		client = models.Client{
			Name:        name,
			PhoneNumber: phone,
			Email:       email,
			ClientType:  models.ClientTypeCasual,
			IsActive:    true,
		}
		if err := tx.Create(&client).Error; err != nil {
			return nil, err
		}
		return &client, nil
	}
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if name != "" && name != client.Name {
		updates["name"] = name
	}
	if email != "" && email != client.Email {
		updates["email"] = email
	}
	if len(updates) > 0 {
		if err := tx.Model(&client).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return &client, nil
}

func missingIDs(requested, found []uint) []uint {
	present := make(map[uint]bool, len(found))
	for _, id := range found {
		present[id] = true
	}
	var missing []uint
	for _, id := range requested {
		if !present[id] {
			missing = append(missing, id)
		}
	}
	return missing
}
