package services

import (
	"time"

	"gorm.io/gorm"

	"workhub_app/internal/models"
)

// ScheduleVoucherDeactivation replaces any pending deactivation task for the
// voucher with a fresh one-shot job due at the voucher's expiry time. At most
// one pending deactivation exists per voucher; rescheduling after an expiry
// extension simply moves the due time.
func ScheduleVoucherDeactivation(tx *gorm.DB, voucherID uint, due time.Time) error {
	if err := tx.Where(
		"task_name = ? AND entity_type = ? AND entity_id = ? AND status = ?",
		models.TaskDeactivateVoucher, models.EntityTypeVoucher, voucherID, models.ScheduledTaskStatusActive,
	).Delete(&models.ScheduledTask{}).Error; err != nil {
		return err
	}

	task := models.ScheduledTask{
		TaskName:   models.TaskDeactivateVoucher,
		Arguments:  map[string]interface{}{"voucher_id": float64(voucherID)},
		Due:        due,
		Status:     models.ScheduledTaskStatusActive,
		TaskType:   models.ScheduledTaskTypeOneTime,
		MaxAttempt: 3,
		EntityType: models.EntityTypeVoucher,
		EntityID:   &voucherID,
	}

	return tx.Create(&task).Error
}
