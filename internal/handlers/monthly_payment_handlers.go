package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"workhub_app/internal/models"
	"workhub_app/internal/services"
)

type MonthlyPaymentHandler struct {
	db       *gorm.DB
	payments *services.MonthlyPaymentService
}

func NewMonthlyPaymentHandler(db *gorm.DB) *MonthlyPaymentHandler {
	return &MonthlyPaymentHandler{db: db, payments: services.NewMonthlyPaymentService(db)}
}

type createPaymentRequest struct {
	ClientID     uint    `json:"client_id" validate:"required"`
	Amount       float64 `json:"amount" validate:"gte=0"`
	PaymentMonth string  `json:"payment_month" validate:"required"` // YYYY-MM-DD
	DueDate      string  `json:"due_date"`                          // YYYY-MM-DD
	Notes        string  `json:"notes"`

	ProcessPayment   bool   `json:"process_payment"`
	PaymentMethod    string `json:"payment_method" validate:"omitempty,oneof=cash mobile_money bank_transfer card"`
	PaymentReference string `json:"payment_reference"`
}

func (h *MonthlyPaymentHandler) CreatePayment(c echo.Context) error {
	var req createPaymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	month, err := time.ParseInLocation("2006-01-02", req.PaymentMonth, time.Local)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "payment_month must be YYYY-MM-DD")
	}

	var dueDate *time.Time
	if req.DueDate != "" {
		parsed, err := time.ParseInLocation("2006-01-02", req.DueDate, time.Local)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "due_date must be YYYY-MM-DD")
		}
		dueDate = &parsed
	}

	payment, err := h.payments.Create(services.CreatePaymentInput{
		ClientID:         req.ClientID,
		Amount:           req.Amount,
		PaymentMonth:     month,
		DueDate:          dueDate,
		Notes:            req.Notes,
		ProcessNow:       req.ProcessPayment,
		PaymentMethod:    models.PaymentMethod(req.PaymentMethod),
		PaymentReference: req.PaymentReference,
		Cashier:          actor(c),
	})
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusCreated, payment)
}

func (h *MonthlyPaymentHandler) ListPayments(c echo.Context) error {
	page, offset := pageParams(c)

	query := h.db.Model(&models.MonthlyPayment{}).Preload("Client")
	if status := c.QueryParam("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if clientID := c.QueryParam("client_id"); clientID != "" {
		query = query.Where("client_id = ?", clientID)
	}
	if monthStr := c.QueryParam("month"); monthStr != "" {
		month, err := time.ParseInLocation("2006-01-02", monthStr, time.Local)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "month must be YYYY-MM-DD")
		}
		first := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, month.Location())
		query = query.Where("payment_month = ?", first)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var payments []models.MonthlyPayment
	if err := query.Order("payment_month desc, id desc").Limit(defaultPageSize).Offset(offset).Find(&payments).Error; err != nil {
		return err
	}
	return c.JSON(http.StatusOK, paginate(payments, page, total))
}

func (h *MonthlyPaymentHandler) GetPayment(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var payment models.MonthlyPayment
	if err := h.db.Preload("Client").Preload("Sale").First(&payment, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return serviceError(services.ErrNotFound)
		}
		return err
	}
	return c.JSON(http.StatusOK, payment)
}

type processPaymentRequest struct {
	PaymentMethod    string `json:"payment_method" validate:"required,oneof=cash mobile_money bank_transfer card"`
	PaymentReference string `json:"payment_reference"`
}

// ProcessPayment settles a pending or overdue record
func (h *MonthlyPaymentHandler) ProcessPayment(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req processPaymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	payment, err := h.payments.ProcessPayment(id, models.PaymentMethod(req.PaymentMethod), req.PaymentReference, actor(c))
	if err != nil {
		return serviceError(err)
	}

	salesSettledTotal.Inc()
	return c.JSON(http.StatusOK, payment)
}

func (h *MonthlyPaymentHandler) CancelPayment(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	payment, err := h.payments.Cancel(id)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, payment)
}

type generatePaymentsRequest struct {
	Month string `json:"month"` // YYYY-MM-DD, defaults to next month
}

// GeneratePayments bulk-creates pending records for all active members
func (h *MonthlyPaymentHandler) GeneratePayments(c echo.Context) error {
	var req generatePaymentsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	var month *time.Time
	if req.Month != "" {
		parsed, err := time.ParseInLocation("2006-01-02", req.Month, time.Local)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "month must be YYYY-MM-DD")
		}
		month = &parsed
	}

	result, err := h.payments.Generate(month)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, result)
}

// MarkOverdue runs the overdue sweep on demand; the worker also runs it daily
func (h *MonthlyPaymentHandler) MarkOverdue(c echo.Context) error {
	updated, err := h.payments.MarkOverdue(time.Now())
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"marked_overdue": updated})
}
