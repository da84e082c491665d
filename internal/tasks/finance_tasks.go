package tasks

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/gorm"

	"workhub_app/internal/models"
	"workhub_app/internal/services"
)

// MarkOverdueTaskDef is the recurring daily sweep flipping pending monthly
// payments past their due date to overdue
type MarkOverdueTaskDef struct{}

func (t *MarkOverdueTaskDef) TaskID() string {
	return models.TaskMarkOverdue
}

func (t *MarkOverdueTaskDef) HandleExecution(ctx context.Context, db *gorm.DB, task models.ScheduledTask) (map[string]interface{}, error) {
	updated, err := services.NewMonthlyPaymentService(db).MarkOverdue(time.Now())
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"status": "success", "marked_overdue": updated}, nil
}

// MarkOverdueTask is the singleton instance of MarkOverdueTaskDef
var MarkOverdueTask = &MarkOverdueTaskDef{}

// EODReportTaskDef renders the end-of-day PDF, attaches it to the snapshot
// and emails it to the configured recipients. Enqueued by the EOD run;
// failures here never touch the committed snapshot.
type EODReportTaskDef struct{}

func (t *EODReportTaskDef) TaskID() string {
	return models.TaskGenerateEODReport
}

func (t *EODReportTaskDef) HandleExecution(ctx context.Context, db *gorm.DB, task models.ScheduledTask) (map[string]interface{}, error) {
	eodID, err := uintArg(task.Arguments, "eod_id")
	if err != nil {
		return nil, err
	}

	var eod models.EndOfDay
	if err := db.First(&eod, eodID).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch end of day %d: %w", eodID, err)
	}

	eodService := services.NewEndOfDayService(db)
	sales, err := eodService.SalesFor(&eod)
	if err != nil {
		return nil, err
	}

	reports := services.NewReportService(os.Getenv("MEDIA_ROOT"))
	pdfPath, err := reports.GenerateEODPDF(&eod, sales)
	if err != nil {
		return nil, err
	}

	if err := db.Model(&eod).Update("pdf_path", pdfPath).Error; err != nil {
		return nil, err
	}

	result := map[string]interface{}{"status": "success", "pdf": pdfPath}

	recipients := eodRecipients()
	if len(recipients) == 0 {
		log.Println("EOD_REPORT_RECIPIENTS not set, skipping report email")
		result["email"] = "skipped"
		return result, nil
	}

	dateStr := eod.Date.Format("2006-01-02")
	subject := fmt.Sprintf("End of Day Report - %s", dateStr)
	body := fmt.Sprintf(
		"End of day report for %s.\n\nTotal sales: %d\nTotal amount: %.2f\n\nCash: %.2f\nMobile money: %.2f\nBank transfer: %.2f\nCard: %.2f\n",
		dateStr, eod.TotalSalesCount, eod.Amount,
		eod.CashAmount, eod.MobileMoneyAmount, eod.BankTransferAmount, eod.CardAmount,
	)

	if err := services.NewEmailService().SendEmailWithAttachment(recipients, subject, body, pdfPath); err != nil {
		// Report is already stored; delivery failure is logged and retried
		// by the worker
		return result, fmt.Errorf("failed to send EOD report email: %w", err)
	}

	result["email"] = "sent"
	log.Printf("EOD report emailed for %s", dateStr)
	return result, nil
}

// EODReportTask is the singleton instance of EODReportTaskDef
var EODReportTask = &EODReportTaskDef{}

func eodRecipients() []string {
	raw := os.Getenv("EOD_REPORT_RECIPIENTS")
	if raw == "" {
		return nil
	}
	var recipients []string
	for _, addr := range strings.Split(raw, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			recipients = append(recipients, addr)
		}
	}
	return recipients
}
