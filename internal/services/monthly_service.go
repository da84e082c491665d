package services

import (
	"log"
	"time"

	"gorm.io/gorm"

	"workhub_app/internal/models"
)

// Monthly payments fall due on the 5th of the month they cover
const monthlyDueDay = 5

// MonthlyPaymentService drives the per-(client, month) billing state
// machine: pending -> paid via a settling sale, pending -> overdue by the
// daily sweep, pending -> cancelled administratively.
type MonthlyPaymentService struct {
	db *gorm.DB
}

func NewMonthlyPaymentService(db *gorm.DB) *MonthlyPaymentService {
	return &MonthlyPaymentService{db: db}
}

// CreatePaymentInput creates one pending record; when ProcessNow is set the
// record is settled in the same transaction.
type CreatePaymentInput struct {
	ClientID     uint
	Amount       float64
	PaymentMonth time.Time
	DueDate      *time.Time
	Notes        string

	ProcessNow       bool
	PaymentMethod    models.PaymentMethod
	PaymentReference string
	Cashier          string
}

// Create inserts a pending monthly payment, optionally settling it immediately
func (s *MonthlyPaymentService) Create(in CreatePaymentInput) (*models.MonthlyPayment, error) {
	var client models.Client
	if err := s.db.First(&client, in.ClientID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if in.ProcessNow && (in.PaymentMethod == "" || in.Cashier == "") {
		return nil, &ValidationError{Message: "payment_method and cashier are required to process a payment"}
	}

	month := firstOfMonth(in.PaymentMonth)

	var existing int64
	if err := s.db.Model(&models.MonthlyPayment{}).
		Where("client_id = ? AND payment_month = ?", in.ClientID, month).
		Count(&existing).Error; err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, &ConflictError{Message: "A payment record already exists for this client and month"}
	}

	dueDate := month.AddDate(0, 0, monthlyDueDay-1)
	if in.DueDate != nil {
		dueDate = *in.DueDate
	}

	payment := models.MonthlyPayment{
		ClientID:     in.ClientID,
		Amount:       in.Amount,
		PaymentMonth: month,
		DueDate:      dueDate,
		Status:       models.MonthlyPaymentPending,
		Notes:        in.Notes,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}
		if in.ProcessNow {
			return settlePayment(tx, &payment, in.PaymentMethod, in.PaymentReference, in.Cashier)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// ProcessPayment settles an existing pending/overdue record: creates the
// monthly Sale, links it, stamps the payment date and marks the record paid.
// Paid is terminal; re-processing is rejected.
func (s *MonthlyPaymentService) ProcessPayment(paymentID uint, method models.PaymentMethod, reference, cashier string) (*models.MonthlyPayment, error) {
	var payment models.MonthlyPayment
	if err := s.db.Preload("Client").First(&payment, paymentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if payment.Status == models.MonthlyPaymentPaid {
		return nil, &ConflictError{Message: "Payment has already been processed."}
	}
	if payment.Status == models.MonthlyPaymentCancelled {
		return nil, &ConflictError{Message: "Payment record is cancelled"}
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		return settlePayment(tx, &payment, method, reference, cashier)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Monthly payment %d processed with sale %d", payment.ID, *payment.SaleID)
	return &payment, nil
}

func settlePayment(tx *gorm.DB, payment *models.MonthlyPayment, method models.PaymentMethod, reference, cashier string) error {
	now := time.Now()
	month := payment.PaymentMonth

	sale := models.Sale{
		Amount:           payment.Amount,
		SaleType:         models.SaleTypeMonthly,
		Date:             now,
		Cashier:          cashier,
		ClientID:         &payment.ClientID,
		PaymentMethod:    method,
		PaymentReference: reference,
		Notes:            payment.Notes,
		PaymentMonth:     &month,
		IsMonthlyPayment: true,
	}
	if err := tx.Create(&sale).Error; err != nil {
		return err
	}

	payment.SaleID = &sale.ID
	payment.Status = models.MonthlyPaymentPaid
	payment.PaymentDate = &now
	return tx.Save(payment).Error
}

// Cancel administratively cancels a pending/overdue record
func (s *MonthlyPaymentService) Cancel(paymentID uint) (*models.MonthlyPayment, error) {
	var payment models.MonthlyPayment
	if err := s.db.First(&payment, paymentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if payment.Status == models.MonthlyPaymentPaid {
		return nil, &ConflictError{Message: "Paid records cannot be cancelled"}
	}

	if err := s.db.Model(&payment).Update("status", models.MonthlyPaymentCancelled).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

// GenerateResult reports the outcome of a bulk generation pass
type GenerateResult struct {
	Month   time.Time `json:"month"`
	Created int       `json:"created"`
	Skipped int       `json:"skipped"`
}

// Generate creates one pending record per active permanent client for the
// target month, skipping clients that already have one. Defaults to the
// first day of next calendar month. The unique index on (client, month) is
// the source of truth; the existence pre-check keeps the counts accurate.
func (s *MonthlyPaymentService) Generate(month *time.Time) (*GenerateResult, error) {
	var target time.Time
	if month != nil {
		target = firstOfMonth(*month)
	} else {
		now := time.Now()
		target = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, 1, 0)
	}

	var members []models.Client
	if err := s.db.Where("client_type = ? AND is_active = ?", models.ClientTypePermanent, true).
		Find(&members).Error; err != nil {
		return nil, err
	}

	result := &GenerateResult{Month: target}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, client := range members {
			var existing int64
			if err := tx.Model(&models.MonthlyPayment{}).
				Where("client_id = ? AND payment_month = ?", client.ID, target).
				Count(&existing).Error; err != nil {
				return err
			}
			if existing > 0 {
				result.Skipped++
				continue
			}

			payment := models.MonthlyPayment{
				ClientID:     client.ID,
				Amount:       client.MonthlyFee,
				PaymentMonth: target,
				DueDate:      target.AddDate(0, 0, monthlyDueDay-1),
				Status:       models.MonthlyPaymentPending,
			}
			if err := tx.Create(&payment).Error; err != nil {
				return err
			}
			result.Created++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Generated %d monthly payments for %s (%d skipped)",
		result.Created, target.Format("January 2006"), result.Skipped)
	return result, nil
}

// MarkOverdue flips every pending record whose due date has passed. Runs as
// a recurring daily task; paid and cancelled rows are untouched.
func (s *MonthlyPaymentService) MarkOverdue(now time.Time) (int64, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	res := s.db.Model(&models.MonthlyPayment{}).
		Where("status = ? AND due_date < ?", models.MonthlyPaymentPending, today).
		Update("status", models.MonthlyPaymentOverdue)
	if res.Error != nil {
		return 0, res.Error
	}

	if res.RowsAffected > 0 {
		log.Printf("Marked %d payments as overdue", res.RowsAffected)
	}
	return res.RowsAffected, nil
}

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
