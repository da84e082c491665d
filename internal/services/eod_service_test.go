package services

import (
	"errors"
	"testing"
	"time"

	"workhub_app/internal/models"
)

func TestRunSnapshotsDay(t *testing.T) {
	db := setupTestDB(t)
	svc := NewEndOfDayService(db)
	now := time.Now()

	sales := []models.Sale{
		{Amount: 10, SaleType: models.SaleTypeHourly, Date: now, Cashier: "alice", PaymentMethod: models.PaymentMethodCash},
		{Amount: 25, SaleType: models.SaleTypeDayDesk, Date: now, Cashier: "alice", PaymentMethod: models.PaymentMethodMobileMoney},
		{Amount: 15, SaleType: models.SaleTypeHourly, Date: now, Cashier: "bob", PaymentMethod: models.PaymentMethodCash},
		// Yesterday's sale is out of the window
		{Amount: 99, SaleType: models.SaleTypeHourly, Date: now.AddDate(0, 0, -1), Cashier: "bob", PaymentMethod: models.PaymentMethodCard},
	}
	for i := range sales {
		if err := db.Create(&sales[i]).Error; err != nil {
			t.Fatalf("seed sale: %v", err)
		}
	}

	eod, err := svc.Run(now)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if eod.TotalSalesCount != 3 {
		t.Fatalf("sales count = %d, want 3", eod.TotalSalesCount)
	}
	if eod.Amount != 50 {
		t.Fatalf("total = %v, want 50", eod.Amount)
	}
	if eod.CashAmount != 25 {
		t.Fatalf("cash subtotal = %v, want 25", eod.CashAmount)
	}
	if eod.MobileMoneyAmount != 25 {
		t.Fatalf("mobile money subtotal = %v, want 25", eod.MobileMoneyAmount)
	}
	if eod.CardAmount != 0 {
		t.Fatalf("card subtotal = %v, want 0", eod.CardAmount)
	}

	var itemCount int64
	db.Model(&models.EndOfDayItem{}).Where("end_of_day_id = ?", eod.ID).Count(&itemCount)
	if itemCount != 3 {
		t.Fatalf("expected 3 fan-out items got %d", itemCount)
	}

	// Report job enqueued for the worker
	var task models.ScheduledTask
	if err := db.Where("task_name = ? AND status = ?",
		models.TaskGenerateEODReport, models.ScheduledTaskStatusActive).First(&task).Error; err != nil {
		t.Fatalf("report task not enqueued: %v", err)
	}
	if task.TaskType != models.ScheduledTaskTypeOneTime {
		t.Fatalf("report task type = %s", task.TaskType)
	}
}

func TestRunEmptyDay(t *testing.T) {
	db := setupTestDB(t)
	svc := NewEndOfDayService(db)

	eod, err := svc.Run(time.Now())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if eod.TotalSalesCount != 0 || eod.Amount != 0 {
		t.Fatalf("empty day snapshot = %d sales, %v total", eod.TotalSalesCount, eod.Amount)
	}
}

func TestRunTwiceProducesSeparateSnapshots(t *testing.T) {
	db := setupTestDB(t)
	svc := NewEndOfDayService(db)
	now := time.Now()

	sale := models.Sale{Amount: 10, SaleType: models.SaleTypeHourly, Date: now, Cashier: "alice", PaymentMethod: models.PaymentMethodCash}
	if err := db.Create(&sale).Error; err != nil {
		t.Fatalf("seed sale: %v", err)
	}

	first, err := svc.Run(now)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := svc.Run(now)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if first.ID == second.ID {
		t.Fatalf("expected distinct snapshots")
	}
	if second.Amount != first.Amount {
		t.Fatalf("re-run total = %v, want %v", second.Amount, first.Amount)
	}
}

func TestDetail(t *testing.T) {
	db := setupTestDB(t)
	svc := NewEndOfDayService(db)
	now := time.Now()

	sale := models.Sale{Amount: 40, SaleType: models.SaleTypeMeetingRoom, Date: now, Cashier: "alice", PaymentMethod: models.PaymentMethodCard}
	if err := db.Create(&sale).Error; err != nil {
		t.Fatalf("seed sale: %v", err)
	}

	eod, err := svc.Run(now)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	items, err := svc.Detail(eod.ID)
	if err != nil {
		t.Fatalf("detail: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item got %d", len(items))
	}
	if items[0].SaleID != sale.ID || items[0].Amount != 40 || items[0].SaleType != models.SaleTypeMeetingRoom {
		t.Fatalf("unexpected item: %+v", items[0])
	}
}

func TestDetailNotFound(t *testing.T) {
	db := setupTestDB(t)
	svc := NewEndOfDayService(db)

	_, err := svc.Detail(4242)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
