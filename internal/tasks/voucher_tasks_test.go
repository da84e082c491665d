package tasks

import (
	"context"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"workhub_app/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Client{},
		&models.VoucherCategory{},
		&models.VoucherFile{},
		&models.Voucher{},
		&models.VoucherLog{},
		&models.Sale{},
		&models.SaleReturn{},
		&models.MonthlyPayment{},
		&models.EndOfDay{},
		&models.EndOfDayItem{},
		&models.ScheduledTask{},
		&models.ScheduledTaskHistory{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestDeactivateVoucherTask(t *testing.T) {
	db := setupTestDB(t)

	past := time.Now().Add(-time.Minute)
	voucher := models.Voucher{
		Code:       "TASK-1",
		Status:     models.VoucherStatusSold,
		Active:     true,
		ExpiryTime: &past,
	}
	if err := db.Create(&voucher).Error; err != nil {
		t.Fatalf("seed voucher: %v", err)
	}

	task := models.ScheduledTask{
		TaskName:  models.TaskDeactivateVoucher,
		Arguments: map[string]interface{}{"voucher_id": float64(voucher.ID)},
	}

	result, err := DeactivateVoucherTask.HandleExecution(context.Background(), db, task)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if result["status"] != "deactivated" {
		t.Fatalf("status = %v, want deactivated", result["status"])
	}

	var reloaded models.Voucher
	if err := db.First(&reloaded, voucher.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Active {
		t.Fatalf("voucher should be inactive")
	}

	// Duplicate delivery is a no-op, not an error
	result, err = DeactivateVoucherTask.HandleExecution(context.Background(), db, task)
	if err != nil {
		t.Fatalf("duplicate execute: %v", err)
	}
	if result["status"] != "noop" {
		t.Fatalf("duplicate status = %v, want noop", result["status"])
	}
}

func TestDeactivateVoucherTaskDropsMissingVoucher(t *testing.T) {
	db := setupTestDB(t)

	task := models.ScheduledTask{
		TaskName:  models.TaskDeactivateVoucher,
		Arguments: map[string]interface{}{"voucher_id": float64(12345)},
	}

	// Missing voucher must not trigger worker retries
	result, err := DeactivateVoucherTask.HandleExecution(context.Background(), db, task)
	if err != nil {
		t.Fatalf("expected nil error for missing voucher, got %v", err)
	}
	if result["status"] != "dropped" {
		t.Fatalf("status = %v, want dropped", result["status"])
	}
}

func TestMarkOverdueTask(t *testing.T) {
	db := setupTestDB(t)

	client := models.Client{Name: "Member", PhoneNumber: "0700000030", ClientType: models.ClientTypePermanent, IsActive: true}
	if err := db.Create(&client).Error; err != nil {
		t.Fatalf("seed client: %v", err)
	}
	payment := models.MonthlyPayment{
		ClientID:     client.ID,
		Amount:       100,
		PaymentMonth: time.Date(2025, 1, 1, 0, 0, 0, 0, time.Local),
		DueDate:      time.Now().AddDate(0, 0, -3),
		Status:       models.MonthlyPaymentPending,
	}
	if err := db.Create(&payment).Error; err != nil {
		t.Fatalf("seed payment: %v", err)
	}

	result, err := MarkOverdueTask.HandleExecution(context.Background(), db, models.ScheduledTask{TaskName: models.TaskMarkOverdue})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if result["marked_overdue"] != int64(1) {
		t.Fatalf("marked_overdue = %v, want 1", result["marked_overdue"])
	}
}

func TestRegistryDefinesAllTasks(t *testing.T) {
	DefineTasks()

	for _, name := range []string{
		models.TaskDeactivateVoucher,
		models.TaskMarkOverdue,
		models.TaskGenerateEODReport,
	} {
		if _, ok := GetHandler(name); !ok {
			t.Fatalf("handler %s not registered", name)
		}
	}
	if _, ok := GetHandler("nonexistent"); ok {
		t.Fatalf("unexpected handler for unknown task name")
	}
}

func TestUintArg(t *testing.T) {
	if v, err := uintArg(map[string]interface{}{"id": float64(7)}, "id"); err != nil || v != 7 {
		t.Fatalf("float64 arg = %d, %v", v, err)
	}
	if v, err := uintArg(map[string]interface{}{"id": 7}, "id"); err != nil || v != 7 {
		t.Fatalf("int arg = %d, %v", v, err)
	}
	if _, err := uintArg(map[string]interface{}{}, "id"); err == nil {
		t.Fatalf("missing arg should error")
	}
	if _, err := uintArg(map[string]interface{}{"id": "7"}, "id"); err == nil {
		t.Fatalf("string arg should error")
	}
}
