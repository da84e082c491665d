package tasks

import (
	"context"
	"log"
	"time"

	"gorm.io/gorm"

	"workhub_app/internal/models"
	"workhub_app/internal/services"
)

// DeactivateVoucherTaskDef is the one-shot expiry job scheduled per voucher
// at sale time. It must tolerate duplicate and late runs: the service-side
// check makes anything but "active and past expiry" a no-op.
type DeactivateVoucherTaskDef struct{}

// TaskID returns the unique identifier for this task
func (t *DeactivateVoucherTaskDef) TaskID() string {
	return models.TaskDeactivateVoucher
}

// HandleExecution deactivates the voucher if its expiry has passed
func (t *DeactivateVoucherTaskDef) HandleExecution(ctx context.Context, db *gorm.DB, task models.ScheduledTask) (map[string]interface{}, error) {
	voucherID, err := uintArg(task.Arguments, "voucher_id")
	if err != nil {
		return nil, err
	}

	deactivated, err := services.NewVoucherService(db).Deactivate(voucherID, time.Now())
	if err == services.ErrNotFound {
		// Voucher deleted since scheduling. Log and drop, no retry.
		log.Printf("Voucher %d not found during deactivation", voucherID)
		return map[string]interface{}{"status": "dropped", "reason": "voucher not found"}, nil
	}
	if err != nil {
		return nil, err
	}

	status := "noop"
	if deactivated {
		status = "deactivated"
	}
	return map[string]interface{}{"status": status, "voucher_id": voucherID}, nil
}

// DeactivateVoucherTask is the singleton instance of DeactivateVoucherTaskDef
var DeactivateVoucherTask = &DeactivateVoucherTaskDef{}
