package services

import (
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"workhub_app/internal/models"
)

func seedMember(t *testing.T, db *gorm.DB, phone string, fee float64) models.Client {
	t.Helper()
	now := time.Now()
	client := models.Client{
		Name:                "Member " + phone,
		PhoneNumber:         phone,
		ClientType:          models.ClientTypePermanent,
		MembershipStartDate: &now,
		MonthlyFee:          fee,
		IsActive:            true,
	}
	if err := db.Create(&client).Error; err != nil {
		t.Fatalf("seed member: %v", err)
	}
	return client
}

func TestCreatePaymentNormalizesMonth(t *testing.T) {
	db := setupTestDB(t)
	svc := NewMonthlyPaymentService(db)
	client := seedMember(t, db, "0700000010", 100)

	mid := time.Date(2025, 3, 17, 10, 0, 0, 0, time.Local)
	payment, err := svc.Create(CreatePaymentInput{ClientID: client.ID, Amount: 100, PaymentMonth: mid})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if payment.PaymentMonth.Day() != 1 || payment.PaymentMonth.Month() != time.March {
		t.Fatalf("payment month %v should normalize to first of March", payment.PaymentMonth)
	}
	// Default due date is the 5th of the covered month
	if payment.DueDate.Day() != 5 || payment.DueDate.Month() != time.March {
		t.Fatalf("due date %v should be March 5th", payment.DueDate)
	}
	if payment.Status != models.MonthlyPaymentPending {
		t.Fatalf("status = %s, want pending", payment.Status)
	}
}

func TestCreatePaymentRejectsDuplicateMonth(t *testing.T) {
	db := setupTestDB(t)
	svc := NewMonthlyPaymentService(db)
	client := seedMember(t, db, "0700000011", 100)

	month := time.Date(2025, 3, 1, 0, 0, 0, 0, time.Local)
	if _, err := svc.Create(CreatePaymentInput{ClientID: client.ID, Amount: 100, PaymentMonth: month}); err != nil {
		t.Fatalf("first create: %v", err)
	}

	// Any day within the same month collides
	_, err := svc.Create(CreatePaymentInput{ClientID: client.ID, Amount: 100, PaymentMonth: month.AddDate(0, 0, 20)})
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestProcessPaymentOnce(t *testing.T) {
	db := setupTestDB(t)
	svc := NewMonthlyPaymentService(db)
	client := seedMember(t, db, "0700000012", 150)

	payment, err := svc.Create(CreatePaymentInput{
		ClientID:     client.ID,
		Amount:       150,
		PaymentMonth: time.Date(2025, 4, 1, 0, 0, 0, 0, time.Local),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	processed, err := svc.ProcessPayment(payment.ID, models.PaymentMethodMobileMoney, "MM-123", "alice")
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if processed.Status != models.MonthlyPaymentPaid {
		t.Fatalf("status = %s, want paid", processed.Status)
	}
	if processed.SaleID == nil {
		t.Fatalf("settling sale not linked")
	}
	if processed.PaymentDate == nil {
		t.Fatalf("payment date not stamped")
	}

	var sale models.Sale
	if err := db.First(&sale, *processed.SaleID).Error; err != nil {
		t.Fatalf("load sale: %v", err)
	}
	if !sale.IsMonthlyPayment || sale.SaleType != models.SaleTypeMonthly {
		t.Fatalf("settling sale not flagged monthly")
	}
	if sale.Amount != 150 {
		t.Fatalf("sale amount = %v", sale.Amount)
	}

	// Paid is terminal
	_, err = svc.ProcessPayment(payment.ID, models.PaymentMethodCash, "", "alice")
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected conflict on re-process, got %v", err)
	}
	if conflict.Message != "Payment has already been processed." {
		t.Fatalf("unexpected message: %s", conflict.Message)
	}
}

func TestCreateWithProcessNow(t *testing.T) {
	db := setupTestDB(t)
	svc := NewMonthlyPaymentService(db)
	client := seedMember(t, db, "0700000013", 200)

	payment, err := svc.Create(CreatePaymentInput{
		ClientID:      client.ID,
		Amount:        200,
		PaymentMonth:  time.Date(2025, 5, 1, 0, 0, 0, 0, time.Local),
		ProcessNow:    true,
		PaymentMethod: models.PaymentMethodCash,
		Cashier:       "alice",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if payment.Status != models.MonthlyPaymentPaid || payment.SaleID == nil {
		t.Fatalf("expected immediately settled record, got %s", payment.Status)
	}
}

func TestCreateProcessNowRequiresMethodAndCashier(t *testing.T) {
	db := setupTestDB(t)
	svc := NewMonthlyPaymentService(db)
	client := seedMember(t, db, "0700000014", 200)

	_, err := svc.Create(CreatePaymentInput{
		ClientID:     client.ID,
		Amount:       200,
		PaymentMonth: time.Now(),
		ProcessNow:   true,
	})
	var invalid *ValidationError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGenerateIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	svc := NewMonthlyPaymentService(db)

	seedMember(t, db, "0700000020", 100)
	seedMember(t, db, "0700000021", 120)

	// Inactive member and casual client are excluded
	inactive := seedMember(t, db, "0700000022", 100)
	if err := db.Model(&inactive).Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate member: %v", err)
	}
	casual := models.Client{Name: "Walk In", PhoneNumber: "0700000023", ClientType: models.ClientTypeCasual, IsActive: true}
	if err := db.Create(&casual).Error; err != nil {
		t.Fatalf("seed casual: %v", err)
	}

	month := time.Date(2025, 7, 1, 0, 0, 0, 0, time.Local)
	result, err := svc.Generate(&month)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if result.Created != 2 || result.Skipped != 0 {
		t.Fatalf("first pass created=%d skipped=%d", result.Created, result.Skipped)
	}

	// Amounts come from each member's fee
	var payments []models.MonthlyPayment
	if err := db.Order("amount asc").Find(&payments).Error; err != nil {
		t.Fatalf("load payments: %v", err)
	}
	if payments[0].Amount != 100 || payments[1].Amount != 120 {
		t.Fatalf("amounts = %v, %v", payments[0].Amount, payments[1].Amount)
	}

	again, err := svc.Generate(&month)
	if err != nil {
		t.Fatalf("second generate: %v", err)
	}
	if again.Created != 0 || again.Skipped != 2 {
		t.Fatalf("second pass created=%d skipped=%d", again.Created, again.Skipped)
	}
}

func TestGenerateDefaultsToNextMonth(t *testing.T) {
	db := setupTestDB(t)
	svc := NewMonthlyPaymentService(db)
	seedMember(t, db, "0700000024", 100)

	result, err := svc.Generate(nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	now := time.Now()
	want := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, 1, 0)
	if !result.Month.Equal(want) {
		t.Fatalf("month = %v, want %v", result.Month, want)
	}
}

func TestMarkOverdue(t *testing.T) {
	db := setupTestDB(t)
	svc := NewMonthlyPaymentService(db)
	client := seedMember(t, db, "0700000025", 100)

	now := time.Now()
	pastDue := models.MonthlyPayment{
		ClientID: client.ID, Amount: 100,
		PaymentMonth: time.Date(2025, 1, 1, 0, 0, 0, 0, time.Local),
		DueDate:      now.AddDate(0, 0, -2),
		Status:       models.MonthlyPaymentPending,
	}
	futureDue := models.MonthlyPayment{
		ClientID: client.ID, Amount: 100,
		PaymentMonth: time.Date(2025, 2, 1, 0, 0, 0, 0, time.Local),
		DueDate:      now.AddDate(0, 0, 2),
		Status:       models.MonthlyPaymentPending,
	}
	paid := models.MonthlyPayment{
		ClientID: client.ID, Amount: 100,
		PaymentMonth: time.Date(2025, 3, 1, 0, 0, 0, 0, time.Local),
		DueDate:      now.AddDate(0, 0, -10),
		Status:       models.MonthlyPaymentPaid,
	}
	for _, p := range []*models.MonthlyPayment{&pastDue, &futureDue, &paid} {
		if err := db.Create(p).Error; err != nil {
			t.Fatalf("seed payment: %v", err)
		}
	}

	updated, err := svc.MarkOverdue(now)
	if err != nil {
		t.Fatalf("mark overdue: %v", err)
	}
	if updated != 1 {
		t.Fatalf("expected 1 row flipped got %d", updated)
	}

	// Reload into fresh structs; reusing one would carry the previous
	// primary key into the next query's conditions
	var flipped models.MonthlyPayment
	if err := db.First(&flipped, pastDue.ID).Error; err != nil {
		t.Fatalf("reload past-due: %v", err)
	}
	if flipped.Status != models.MonthlyPaymentOverdue {
		t.Fatalf("past-due status = %s, want overdue", flipped.Status)
	}

	var stillPending models.MonthlyPayment
	if err := db.First(&stillPending, futureDue.ID).Error; err != nil {
		t.Fatalf("reload future-due: %v", err)
	}
	if stillPending.Status != models.MonthlyPaymentPending {
		t.Fatalf("future-due record must stay pending")
	}

	var stillPaid models.MonthlyPayment
	if err := db.First(&stillPaid, paid.ID).Error; err != nil {
		t.Fatalf("reload paid: %v", err)
	}
	if stillPaid.Status != models.MonthlyPaymentPaid {
		t.Fatalf("paid record must stay paid")
	}
}

func TestCancelPayment(t *testing.T) {
	db := setupTestDB(t)
	svc := NewMonthlyPaymentService(db)
	client := seedMember(t, db, "0700000026", 100)

	payment, err := svc.Create(CreatePaymentInput{ClientID: client.ID, Amount: 100, PaymentMonth: time.Now()})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	cancelled, err := svc.Cancel(payment.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != models.MonthlyPaymentCancelled {
		t.Fatalf("status = %s, want cancelled", cancelled.Status)
	}

	// Cancelled records cannot be settled
	_, err = svc.ProcessPayment(payment.ID, models.PaymentMethodCash, "", "alice")
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected conflict for cancelled record, got %v", err)
	}
}
