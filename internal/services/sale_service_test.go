package services

import (
	"errors"
	"strings"
	"testing"
	"time"

	"workhub_app/internal/models"
)

func TestCreateSaleSellsVouchers(t *testing.T) {
	db := setupTestDB(t)
	vouchers := seedVouchers(t, db, 2)
	svc := NewSaleService(db)

	ids := []uint{vouchers[0].ID, vouchers[1].ID}
	sale, creds, err := svc.CreateSale(CreateSaleInput{
		VoucherIDs:    ids,
		Amount:        10,
		SaleType:      models.SaleTypeHourly,
		Cashier:       "alice",
		PaymentMethod: models.PaymentMethodCash,
		Client:        &SaleClientInput{Name: "Bob", PhoneNumber: "0700000001"},
	})
	if err != nil {
		t.Fatalf("create sale: %v", err)
	}
	if sale.ID == 0 {
		t.Fatalf("expected sale to be persisted")
	}
	if len(creds) != 2 {
		t.Fatalf("expected 2 credential sets got %d", len(creds))
	}

	var sold []models.Voucher
	if err := db.Where("id IN ?", ids).Find(&sold).Error; err != nil {
		t.Fatalf("reload vouchers: %v", err)
	}
	for _, v := range sold {
		if v.Status != models.VoucherStatusSold {
			t.Fatalf("voucher %d status = %s, want sold", v.ID, v.Status)
		}
		if !v.Active {
			t.Fatalf("voucher %d should be active", v.ID)
		}
		if v.ExpiryTime == nil {
			t.Fatalf("voucher %d has no expiry", v.ID)
		}
		until := time.Until(*v.ExpiryTime)
		if until < 55*time.Minute || until > 65*time.Minute {
			t.Fatalf("hourly expiry %v not about an hour out", until)
		}
	}

	// Client created on first contact
	var client models.Client
	if err := db.Where("phone_number = ?", "0700000001").First(&client).Error; err != nil {
		t.Fatalf("client not created: %v", err)
	}
	if sale.ClientID == nil || *sale.ClientID != client.ID {
		t.Fatalf("sale not linked to client")
	}

	// One pending deactivation task per voucher
	var taskCount int64
	if err := db.Model(&models.ScheduledTask{}).
		Where("task_name = ? AND status = ?", models.TaskDeactivateVoucher, models.ScheduledTaskStatusActive).
		Count(&taskCount).Error; err != nil {
		t.Fatalf("count tasks: %v", err)
	}
	if taskCount != 2 {
		t.Fatalf("expected 2 deactivation tasks got %d", taskCount)
	}
}

func TestCreateSaleRejectsUnavailableVouchers(t *testing.T) {
	db := setupTestDB(t)
	vouchers := seedVouchers(t, db, 2)
	svc := NewSaleService(db)

	if err := db.Model(&vouchers[1]).Update("status", models.VoucherStatusSold).Error; err != nil {
		t.Fatalf("mark sold: %v", err)
	}

	_, _, err := svc.CreateSale(CreateSaleInput{
		VoucherIDs:    []uint{vouchers[0].ID, vouchers[1].ID},
		Amount:        10,
		SaleType:      models.SaleTypeHourly,
		Cashier:       "alice",
		PaymentMethod: models.PaymentMethodCash,
		Client:        &SaleClientInput{Name: "New Guy", PhoneNumber: "0700000099"},
	})

	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected conflict error, got %v", err)
	}
	if !strings.Contains(conflict.Message, "do not exist or have been sold") {
		t.Fatalf("unexpected message: %s", conflict.Message)
	}

	// Nothing committed: no sale, no client, first voucher untouched
	var saleCount, clientCount int64
	db.Model(&models.Sale{}).Count(&saleCount)
	db.Model(&models.Client{}).Count(&clientCount)
	if saleCount != 0 || clientCount != 0 {
		t.Fatalf("expected no mutations, got %d sales %d clients", saleCount, clientCount)
	}

	var first models.Voucher
	if err := db.First(&first, vouchers[0].ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if first.Status != models.VoucherStatusUnused || first.Active {
		t.Fatalf("first voucher should be untouched")
	}
}

func TestCreateSaleWithoutVouchers(t *testing.T) {
	db := setupTestDB(t)
	svc := NewSaleService(db)

	sale, creds, err := svc.CreateSale(CreateSaleInput{
		Amount:        5,
		SaleType:      models.SaleTypeDayDesk,
		Cashier:       "alice",
		PaymentMethod: models.PaymentMethodMobileMoney,
	})
	if err != nil {
		t.Fatalf("create sale: %v", err)
	}
	if sale.ID == 0 {
		t.Fatalf("expected sale to be persisted")
	}
	if len(creds) != 0 {
		t.Fatalf("expected no credentials got %d", len(creds))
	}
}

func TestCreateSaleRequiresClientPhone(t *testing.T) {
	db := setupTestDB(t)
	svc := NewSaleService(db)

	_, _, err := svc.CreateSale(CreateSaleInput{
		Amount:   5,
		SaleType: models.SaleTypeHourly,
		Cashier:  "alice",
		Client:   &SaleClientInput{Name: "No Phone"},
	})

	var invalid *ValidationError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateSaleMonthlyDefaultsPaymentMonth(t *testing.T) {
	db := setupTestDB(t)
	svc := NewSaleService(db)

	sale, _, err := svc.CreateSale(CreateSaleInput{
		Amount:        100,
		SaleType:      models.SaleTypeMonthly,
		Cashier:       "alice",
		PaymentMethod: models.PaymentMethodBankTransfer,
	})
	if err != nil {
		t.Fatalf("create sale: %v", err)
	}
	if !sale.IsMonthlyPayment {
		t.Fatalf("monthly sale should be flagged")
	}
	if sale.PaymentMonth == nil {
		t.Fatalf("payment month should default")
	}
	now := time.Now()
	if sale.PaymentMonth.Day() != 1 || sale.PaymentMonth.Month() != now.Month() {
		t.Fatalf("payment month %v should be first of current month", sale.PaymentMonth)
	}
}

func TestCreateSaleNormalizesGivenPaymentMonth(t *testing.T) {
	db := setupTestDB(t)
	svc := NewSaleService(db)

	// Mid-month input lines up with the billing records' first-of-month key
	mid := time.Date(2025, 3, 17, 10, 0, 0, 0, time.Local)
	sale, _, err := svc.CreateSale(CreateSaleInput{
		Amount:        100,
		SaleType:      models.SaleTypeMonthly,
		Cashier:       "alice",
		PaymentMethod: models.PaymentMethodCash,
		PaymentMonth:  &mid,
	})
	if err != nil {
		t.Fatalf("create sale: %v", err)
	}
	want := time.Date(2025, 3, 1, 0, 0, 0, 0, time.Local)
	if sale.PaymentMonth == nil || !sale.PaymentMonth.Equal(want) {
		t.Fatalf("payment month = %v, want %v", sale.PaymentMonth, want)
	}
}

func TestMissingIDs(t *testing.T) {
	missing := missingIDs([]uint{1, 2, 3}, []uint{2})
	if len(missing) != 2 || missing[0] != 1 || missing[1] != 3 {
		t.Fatalf("missing = %v, want [1 3]", missing)
	}
	if missing := missingIDs([]uint{1, 2}, []uint{1, 2}); missing != nil {
		t.Fatalf("full overlap should yield nothing, got %v", missing)
	}
	if missing := missingIDs([]uint{4}, nil); len(missing) != 1 || missing[0] != 4 {
		t.Fatalf("no winners should yield all requested, got %v", missing)
	}
}

func TestExpiryFor(t *testing.T) {
	at := time.Date(2025, 6, 10, 14, 30, 0, 0, time.Local)

	if got := ExpiryFor(models.SaleTypeHourly, at); !got.Equal(at.Add(time.Hour)) {
		t.Fatalf("hourly expiry = %v", got)
	}
	if got := ExpiryFor(models.SaleTypeMeetingRoom, at); !got.Equal(at.Add(2 * time.Hour)) {
		t.Fatalf("meeting room expiry = %v", got)
	}
	want := time.Date(2025, 6, 10, 23, 59, 59, 0, time.Local)
	if got := ExpiryFor(models.SaleTypeDayDesk, at); !got.Equal(want) {
		t.Fatalf("day desk expiry = %v, want %v", got, want)
	}
	if got := ExpiryFor(models.SaleTypeMonthly, at); !got.Equal(at.Add(30 * 24 * time.Hour)) {
		t.Fatalf("monthly expiry = %v", got)
	}
	if got := ExpiryFor(models.SaleType("unknown"), at); !got.Equal(at.Add(time.Hour)) {
		t.Fatalf("unknown type expiry = %v", got)
	}
}

func TestGetOrCreateClientByPhone(t *testing.T) {
	db := setupTestDB(t)

	first, err := GetOrCreateClientByPhone(db, "0700000002", "Ada", "ada@example.com")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Same phone resolves to the same row, updating changed details
	second, err := GetOrCreateClientByPhone(db, "0700000002", "Ada Lovelace", "")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected same client, got %d and %d", first.ID, second.ID)
	}

	var reloaded models.Client
	if err := db.First(&reloaded, first.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Name != "Ada Lovelace" {
		t.Fatalf("name not updated: %s", reloaded.Name)
	}
	if reloaded.Email != "ada@example.com" {
		t.Fatalf("empty email should not clear the stored one: %q", reloaded.Email)
	}

	var count int64
	db.Model(&models.Client{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected 1 client got %d", count)
	}
}
