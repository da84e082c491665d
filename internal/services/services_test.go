package services

import (
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"workhub_app/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// Unique in-memory database per test to avoid cross-test collisions
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
		&models.VoucherUser{},
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

// seedVouchers creates a category, one populated file and n unused vouchers
func seedVouchers(t *testing.T, db *gorm.DB, n int) []models.Voucher {
	t.Helper()

	category := models.VoucherCategory{Name: "1 Hour"}
	if err := db.Create(&category).Error; err != nil {
		t.Fatalf("seed category: %v", err)
	}
	file := models.VoucherFile{
		Name:       "batch.txt",
		FilePath:   "media/vouchers/batch.txt",
		CategoryID: category.ID,
		UploadedBy: "tester",
		Status:     models.VoucherFilePopulated,
	}
	if err := db.Create(&file).Error; err != nil {
		t.Fatalf("seed file: %v", err)
	}

	vouchers := make([]models.Voucher, 0, n)
	for i := 0; i < n; i++ {
		v := models.Voucher{
			Code:             fmt.Sprintf("CODE-%s-%d", t.Name(), i),
			Username:         fmt.Sprintf("user%d", i),
			Password:         fmt.Sprintf("pass%d", i),
			FileID:           file.ID,
			Status:           models.VoucherStatusUnused,
			ValidityDuration: 24,
		}
		if err := db.Create(&v).Error; err != nil {
			t.Fatalf("seed voucher: %v", err)
		}
		vouchers = append(vouchers, v)
	}
	return vouchers
}
