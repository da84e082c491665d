package handlers

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"workhub_app/internal/models"
	"workhub_app/internal/services"
)

type EndOfDayHandler struct {
	db      *gorm.DB
	eod     *services.EndOfDayService
	reports *services.ReportService
}

func NewEndOfDayHandler(db *gorm.DB) *EndOfDayHandler {
	return &EndOfDayHandler{
		db:      db,
		eod:     services.NewEndOfDayService(db),
		reports: services.NewReportService(os.Getenv("MEDIA_ROOT")),
	}
}

// RunEndOfDay snapshots the current day's sales and queues the report job
func (h *EndOfDayHandler) RunEndOfDay(c echo.Context) error {
	eod, err := h.eod.Run(time.Now())
	if err != nil {
		return serviceError(err)
	}

	endOfDayRunsTotal.Inc()
	return c.JSON(http.StatusCreated, eod)
}

func (h *EndOfDayHandler) ListEndOfDays(c echo.Context) error {
	page, offset := pageParams(c)

	query := h.db.Model(&models.EndOfDay{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var snapshots []models.EndOfDay
	if err := query.Order("date desc").Limit(defaultPageSize).Offset(offset).Find(&snapshots).Error; err != nil {
		return err
	}
	return c.JSON(http.StatusOK, paginate(snapshots, page, total))
}

func (h *EndOfDayHandler) GetEndOfDay(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var eod models.EndOfDay
	if err := h.db.First(&eod, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return serviceError(services.ErrNotFound)
		}
		return err
	}

	items, err := h.eod.Detail(id)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"end_of_day": eod,
		"items":      items,
	})
}

// DownloadPDF streams the rendered report. 404 until the worker has
// generated it.
func (h *EndOfDayHandler) DownloadPDF(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var eod models.EndOfDay
	if err := h.db.First(&eod, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return serviceError(services.ErrNotFound)
		}
		return err
	}

	if eod.PDFPath == "" {
		return echo.NewHTTPError(http.StatusNotFound, "report has not been generated yet")
	}
	if _, err := os.Stat(eod.PDFPath); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "report file is missing")
	}

	name := fmt.Sprintf("eod_report_%s.pdf", eod.Date.Format("2006-01-02"))
	return c.Attachment(eod.PDFPath, name)
}

// ExportExcel renders the snapshot's sale listing as an xlsx download
func (h *EndOfDayHandler) ExportExcel(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var eod models.EndOfDay
	if err := h.db.First(&eod, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return serviceError(services.ErrNotFound)
		}
		return err
	}

	sales, err := h.eod.SalesFor(&eod)
	if err != nil {
		return err
	}

	data, err := h.reports.ExportEODExcel(&eod, sales)
	if err != nil {
		return err
	}

	name := fmt.Sprintf("eod_sales_%s.xlsx", eod.Date.Format("2006-01-02"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	return c.Blob(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
