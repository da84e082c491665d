package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"workhub_app/internal/models"
	"workhub_app/internal/services"
)

type SaleHandler struct {
	db    *gorm.DB
	sales *services.SaleService
}

func NewSaleHandler(db *gorm.DB) *SaleHandler {
	return &SaleHandler{db: db, sales: services.NewSaleService(db)}
}

type saleClientRequest struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phonenumber"`
	Email       string `json:"email" validate:"omitempty,email"`
}

type createSaleRequest struct {
	Voucher          []uint             `json:"voucher"`
	Amount           float64            `json:"amount" validate:"gte=0"`
	SaleType         string             `json:"sale_type" validate:"required,oneof='hourly' 'day desk' 'meeting room' 'monthly'"`
	Cashier          string             `json:"cashier" validate:"required"`
	PaymentMethod    string             `json:"payment_method" validate:"omitempty,oneof=cash mobile_money bank_transfer card"`
	PaymentReference string             `json:"payment_reference"`
	Notes            string             `json:"notes"`
	PaymentMonth     string             `json:"payment_month"` // YYYY-MM-DD
	Client           *saleClientRequest `json:"client"`
}

// CreateSale settles a point-of-sale transaction and returns the sale plus
// the credentials of every voucher it sold.
func (h *SaleHandler) CreateSale(c echo.Context) error {
	var req createSaleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	var paymentMonth *time.Time
	if req.PaymentMonth != "" {
		parsed, err := time.ParseInLocation("2006-01-02", req.PaymentMonth, time.Local)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "payment_month must be YYYY-MM-DD")
		}
		paymentMonth = &parsed
	}

	in := services.CreateSaleInput{
		VoucherIDs:       req.Voucher,
		Amount:           req.Amount,
		SaleType:         models.SaleType(req.SaleType),
		Cashier:          req.Cashier,
		PaymentMethod:    models.PaymentMethod(req.PaymentMethod),
		PaymentReference: req.PaymentReference,
		Notes:            req.Notes,
		PaymentMonth:     paymentMonth,
	}
	if in.PaymentMethod == "" {
		in.PaymentMethod = models.PaymentMethodCash
	}
	if req.Client != nil {
		in.Client = &services.SaleClientInput{
			Name:        req.Client.Name,
			PhoneNumber: req.Client.PhoneNumber,
			Email:       req.Client.Email,
		}
	}

	sale, creds, err := h.sales.CreateSale(in)
	if err != nil {
		return serviceError(err)
	}

	salesSettledTotal.Inc()
	vouchersSoldTotal.Add(float64(len(creds)))

	if creds == nil {
		creds = []services.VoucherCredentials{}
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"sales_data":    sale,
		"vouchers_data": creds,
	})
}

type createSaleReturnRequest struct {
	SaleID uint    `json:"sale_id" validate:"required"`
	Amount float64 `json:"amount" validate:"gt=0"`
	Reason string  `json:"reason"`
}

// CreateSaleReturn records a refund against a settled sale
func (h *SaleHandler) CreateSaleReturn(c echo.Context) error {
	var req createSaleReturnRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	var sale models.Sale
	if err := h.db.First(&sale, req.SaleID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return serviceError(services.ErrNotFound)
		}
		return err
	}

	ret := models.SaleReturn{
		SaleID:  sale.ID,
		Amount:  req.Amount,
		Date:    time.Now(),
		Cashier: actor(c),
		Reason:  req.Reason,
	}
	if err := h.db.Create(&ret).Error; err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, ret)
}

func (h *SaleHandler) ListSaleReturns(c echo.Context) error {
	page, offset := pageParams(c)

	query := h.db.Model(&models.SaleReturn{}).Preload("Sale")
	if saleID := c.QueryParam("sale_id"); saleID != "" {
		query = query.Where("sale_id = ?", saleID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var returns []models.SaleReturn
	if err := query.Order("date desc").Limit(defaultPageSize).Offset(offset).Find(&returns).Error; err != nil {
		return err
	}
	return c.JSON(http.StatusOK, paginate(returns, page, total))
}

// ListSales returns the sale ledger newest first, optionally filtered by
// sale type or calendar date
func (h *SaleHandler) ListSales(c echo.Context) error {
	page, offset := pageParams(c)

	query := h.db.Model(&models.Sale{}).Preload("Client")

	if saleType := c.QueryParam("sale_type"); saleType != "" {
		query = query.Where("sale_type = ?", saleType)
	}
	if dateStr := c.QueryParam("date"); dateStr != "" {
		day, err := time.ParseInLocation("2006-01-02", dateStr, time.Local)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "date must be YYYY-MM-DD")
		}
		query = query.Where("date >= ? AND date < ?", day, day.AddDate(0, 0, 1))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var sales []models.Sale
	if err := query.Order("date desc").Limit(defaultPageSize).Offset(offset).Find(&sales).Error; err != nil {
		return err
	}

	return c.JSON(http.StatusOK, paginate(sales, page, total))
}
