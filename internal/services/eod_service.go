package services

import (
	"log"
	"time"

	"gorm.io/gorm"

	"workhub_app/internal/models"
)

// EndOfDayService builds the daily reconciliation snapshot and queues the
// report rendering/delivery job.
type EndOfDayService struct {
	db *gorm.DB
}

func NewEndOfDayService(db *gorm.DB) *EndOfDayService {
	return &EndOfDayService{db: db}
}

// dayWindow returns [start, end) of t's calendar day, computed per call
func dayWindow(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}

// Run snapshots the current calendar day: one EndOfDay row, one item per
// sale, the day's total and the per-payment-method subtotals, all in one
// transaction. The report job is enqueued afterwards and its failure never
// affects the committed snapshot. Repeated runs for the same day are
// allowed and produce separate snapshots.
func (s *EndOfDayService) Run(now time.Time) (*models.EndOfDay, error) {
	start, end := dayWindow(now)

	var eod models.EndOfDay
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var sales []models.Sale
		if err := tx.Where("date >= ? AND date < ?", start, end).Find(&sales).Error; err != nil {
			return err
		}

		eod = models.EndOfDay{Date: now, TotalSalesCount: len(sales)}
		for _, sale := range sales {
			eod.Amount += sale.Amount
			switch sale.PaymentMethod {
			case models.PaymentMethodCash:
				eod.CashAmount += sale.Amount
			case models.PaymentMethodMobileMoney:
				eod.MobileMoneyAmount += sale.Amount
			case models.PaymentMethodBankTransfer:
				eod.BankTransferAmount += sale.Amount
			case models.PaymentMethodCard:
				eod.CardAmount += sale.Amount
			}
		}

		if err := tx.Create(&eod).Error; err != nil {
			return err
		}

		if len(sales) > 0 {
			items := make([]models.EndOfDayItem, 0, len(sales))
			for _, sale := range sales {
				items = append(items, models.EndOfDayItem{EndOfDayID: eod.ID, SaleID: sale.ID})
			}
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}

		// Rendering and delivery happen in the worker, decoupled from
		// this transaction
		task := models.ScheduledTask{
			TaskName:   models.TaskGenerateEODReport,
			Arguments:  map[string]interface{}{"eod_id": float64(eod.ID)},
			Due:        now,
			Status:     models.ScheduledTaskStatusActive,
			TaskType:   models.ScheduledTaskTypeOneTime,
			MaxAttempt: 3,
		}
		return tx.Create(&task).Error
	})
	if err != nil {
		return nil, err
	}

	log.Printf("End of day %d generated: %d sales, total %.2f", eod.ID, eod.TotalSalesCount, eod.Amount)
	return &eod, nil
}

// EndOfDayItemDetail is one line of the itemized breakdown
type EndOfDayItemDetail struct {
	SaleID   uint            `json:"sale_id"`
	SaleType models.SaleType `json:"sale_type"`
	Amount   float64         `json:"amount"`
}

// Detail returns the per-sale breakdown of a snapshot
func (s *EndOfDayService) Detail(eodID uint) ([]EndOfDayItemDetail, error) {
	var count int64
	if err := s.db.Model(&models.EndOfDay{}).Where("id = ?", eodID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrNotFound
	}

	var items []models.EndOfDayItem
	if err := s.db.Preload("Sale").Where("end_of_day_id = ?", eodID).Find(&items).Error; err != nil {
		return nil, err
	}

	details := make([]EndOfDayItemDetail, 0, len(items))
	for _, item := range items {
		details = append(details, EndOfDayItemDetail{
			SaleID:   item.SaleID,
			SaleType: item.Sale.SaleType,
			Amount:   item.Sale.Amount,
		})
	}
	return details, nil
}

// SalesFor returns the sales covered by a snapshot, for report rendering
func (s *EndOfDayService) SalesFor(eod *models.EndOfDay) ([]models.Sale, error) {
	var items []models.EndOfDayItem
	if err := s.db.Preload("Sale").Preload("Sale.Client").
		Where("end_of_day_id = ?", eod.ID).Find(&items).Error; err != nil {
		return nil, err
	}
	sales := make([]models.Sale, 0, len(items))
	for _, item := range items {
		sales = append(sales, item.Sale)
	}
	return sales, nil
}
