package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"workhub_app/internal/models"
	"workhub_app/internal/services"
)

type DashboardHandler struct {
	db    *gorm.DB
	cache *services.RedisCache
}

func NewDashboardHandler(db *gorm.DB, cache *services.RedisCache) *DashboardHandler {
	return &DashboardHandler{db: db, cache: cache}
}

type dashboardStats struct {
	Date              string  `json:"date"`
	TodaySalesCount   int64   `json:"today_sales_count"`
	TodaySalesAmount  float64 `json:"today_sales_amount"`
	ActiveVouchers    int64   `json:"active_vouchers"`
	UnusedVouchers    int64   `json:"unused_vouchers"`
	TodayVoucherUsers int64   `json:"today_voucher_users"`
	PendingPayments   int64   `json:"pending_payments"`
	OverduePayments   int64   `json:"overdue_payments"`
	ActiveMemberCount int64   `json:"active_member_count"`
}

// Stats aggregates the desk dashboard numbers for the current day. The
// result is cached for a minute; the day window is computed per request.
func (h *DashboardHandler) Stats(c echo.Context) error {
	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)
	dateStr := dayStart.Format("2006-01-02")

	stats, err := services.GetOrSet(h.cache, c.Request().Context(), "dashboard_stats:"+dateStr, time.Minute,
		func() (dashboardStats, error) {
			stats := dashboardStats{Date: dateStr}

			if err := h.db.Model(&models.Sale{}).
				Where("date >= ? AND date < ?", dayStart, dayEnd).
				Count(&stats.TodaySalesCount).Error; err != nil {
				return stats, err
			}
			if err := h.db.Model(&models.Sale{}).
				Where("date >= ? AND date < ?", dayStart, dayEnd).
				Select("COALESCE(SUM(amount), 0)").Scan(&stats.TodaySalesAmount).Error; err != nil {
				return stats, err
			}

			if err := h.db.Model(&models.Voucher{}).
				Where("active = ?", true).Count(&stats.ActiveVouchers).Error; err != nil {
				return stats, err
			}
			if err := h.db.Model(&models.Voucher{}).
				Where("status = ?", models.VoucherStatusUnused).Count(&stats.UnusedVouchers).Error; err != nil {
				return stats, err
			}

			if err := h.db.Model(&models.VoucherUser{}).
				Where("created_at >= ? AND created_at < ?", dayStart, dayEnd).
				Count(&stats.TodayVoucherUsers).Error; err != nil {
				return stats, err
			}

			if err := h.db.Model(&models.MonthlyPayment{}).
				Where("status = ?", models.MonthlyPaymentPending).
				Count(&stats.PendingPayments).Error; err != nil {
				return stats, err
			}
			if err := h.db.Model(&models.MonthlyPayment{}).
				Where("status = ?", models.MonthlyPaymentOverdue).
				Count(&stats.OverduePayments).Error; err != nil {
				return stats, err
			}

			if err := h.db.Model(&models.Client{}).
				Where("client_type = ? AND is_active = ?", models.ClientTypePermanent, true).
				Count(&stats.ActiveMemberCount).Error; err != nil {
				return stats, err
			}

			return stats, nil
		})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

// TodayVoucherUsers lists the end users registered against vouchers today
func (h *DashboardHandler) TodayVoucherUsers(c echo.Context) error {
	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var users []models.VoucherUser
	if err := h.db.Where("created_at >= ? AND created_at < ?", dayStart, dayStart.AddDate(0, 0, 1)).
		Order("created_at desc").Find(&users).Error; err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}
