package services

import (
	"testing"
	"time"

	"workhub_app/internal/models"
)

func TestScheduleVoucherDeactivationReplacesPending(t *testing.T) {
	db := setupTestDB(t)
	vouchers := seedVouchers(t, db, 1)
	voucherID := vouchers[0].ID

	firstDue := time.Now().Add(time.Hour)
	if err := ScheduleVoucherDeactivation(db, voucherID, firstDue); err != nil {
		t.Fatalf("first schedule: %v", err)
	}

	// Rescheduling moves the due time instead of stacking a second task
	secondDue := time.Now().Add(3 * time.Hour)
	if err := ScheduleVoucherDeactivation(db, voucherID, secondDue); err != nil {
		t.Fatalf("second schedule: %v", err)
	}

	var pending []models.ScheduledTask
	if err := db.Where(
		"task_name = ? AND entity_type = ? AND entity_id = ? AND status = ?",
		models.TaskDeactivateVoucher, models.EntityTypeVoucher, voucherID, models.ScheduledTaskStatusActive,
	).Find(&pending).Error; err != nil {
		t.Fatalf("find tasks: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending task got %d", len(pending))
	}
	if pending[0].Due.Unix() != secondDue.Unix() {
		t.Fatalf("due = %v, want %v", pending[0].Due, secondDue)
	}
	if pending[0].TaskType != models.ScheduledTaskTypeOneTime {
		t.Fatalf("task type = %s, want onetime", pending[0].TaskType)
	}
}

func TestScheduleVoucherDeactivationKeepsOtherVouchers(t *testing.T) {
	db := setupTestDB(t)
	vouchers := seedVouchers(t, db, 2)

	due := time.Now().Add(time.Hour)
	if err := ScheduleVoucherDeactivation(db, vouchers[0].ID, due); err != nil {
		t.Fatalf("schedule first: %v", err)
	}
	if err := ScheduleVoucherDeactivation(db, vouchers[1].ID, due); err != nil {
		t.Fatalf("schedule second: %v", err)
	}

	var count int64
	if err := db.Model(&models.ScheduledTask{}).
		Where("task_name = ? AND status = ?", models.TaskDeactivateVoucher, models.ScheduledTaskStatusActive).
		Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 pending tasks got %d", count)
	}
}
